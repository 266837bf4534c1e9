package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/edmoraes/cinepos/internal/model"
)

// ErrMovieNotFound indicates that a movie was not located in the
// caller's tenant scope.
var ErrMovieNotFound = errors.New("movie not found")

// MovieRepo manages persistence for the movie catalog.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

const movieCols = `id, company_id, title, duration_minutes, rating, is_active, created_at, updated_at`

// Create inserts a new movie and populates DB defaults back onto the
// struct.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	const q = `INSERT INTO movies (company_id, title, duration_minutes, rating) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.CompanyID, m.Title, m.DurationMinutes, m.Rating)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT `+movieCols+` FROM movies WHERE id = ?`, m.ID).Scan(
		&m.ID, &m.CompanyID, &m.Title, &m.DurationMinutes, &m.Rating, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
	)
}

// GetByID retrieves a movie within the company scope.  It returns
// ErrMovieNotFound if there is no matching row.
func (r *MovieRepo) GetByID(ctx context.Context, companyID, id uint64) (*model.Movie, error) {
	var m model.Movie
	err := r.db.QueryRowContext(ctx,
		`SELECT `+movieCols+` FROM movies WHERE id = ? AND company_id = ?`, id, companyID).Scan(
		&m.ID, &m.CompanyID, &m.Title, &m.DurationMinutes, &m.Rating, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByCompany returns all movies of a company ordered by title.
func (r *MovieRepo) ListByCompany(ctx context.Context, companyID uint64) ([]model.Movie, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+movieCols+` FROM movies WHERE company_id = ? ORDER BY title`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Movie, 0)
	for rows.Next() {
		var m model.Movie
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.Title, &m.DurationMinutes, &m.Rating, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Update changes title, duration, rating and active flag of a movie
// within the company scope.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE movies SET title = ?, duration_minutes = ?, rating = ?, is_active = ? WHERE id = ? AND company_id = ?`,
		m.Title, m.DurationMinutes, m.Rating, m.IsActive, m.ID, m.CompanyID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMovieNotFound
	}
	return nil
}

// Delete removes a movie.  Movies referenced by sessions cannot be
// deleted; the FK violation surfaces as ErrConflict.
func (r *MovieRepo) Delete(ctx context.Context, companyID, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE id = ? AND company_id = ?`, id, companyID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return ErrConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMovieNotFound
	}
	return nil
}

// Package router wires the HTTP surface: which handler serves which
// path, and which role may call it.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/edmoraes/cinepos/internal/config"
	"github.com/edmoraes/cinepos/internal/handler"
	"github.com/edmoraes/cinepos/internal/middleware"
	"github.com/edmoraes/cinepos/internal/model"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	Movies       *handler.MovieHandler
	Rooms        *handler.RoomHandler
	Sessions     *handler.SessionHandler
	Reservations *handler.ReservationHandler
	Sales        *handler.SaleHandler
	Products     *handler.ProductHandler
	Discounts    *handler.DiscountHandler
	Employees    *handler.EmployeeHandler
	Tickets      *handler.TicketHandler
	Companies    *handler.CompanyHandler
}

// Register mounts all routes.  /healthz and /v1/auth/login are public;
// everything else requires a valid token, with role gates per group:
// catalog and staff administration for ADMIN/MANAGER, selling for
// every company role, company administration for SYSADMIN only.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	limiter := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)

	e.POST("/v1/auth/login", h.Auth.Login, limiter)

	v1 := e.Group("/v1", middleware.JWTAuth(cfg.JWTSecret), limiter)
	v1.GET("/me", h.Auth.Me)

	staff := []string{model.RoleAdmin, model.RoleManager, model.RoleCashier}
	managers := []string{model.RoleAdmin, model.RoleManager}

	// Catalog administration.
	admin := v1.Group("", middleware.RequireRole(managers...))
	admin.POST("/movies", h.Movies.Create)
	admin.PUT("/movies/:id", h.Movies.Update)
	admin.DELETE("/movies/:id", h.Movies.Delete)
	admin.POST("/rooms", h.Rooms.Create)
	admin.PUT("/rooms/:id", h.Rooms.Update)
	admin.PUT("/rooms/:id/seats/:seatID", h.Rooms.SetSeatActive)
	admin.POST("/sessions", h.Sessions.Create)
	admin.PUT("/sessions/:id", h.Sessions.Update)
	admin.PUT("/sessions/:id/status", h.Sessions.SetStatus)
	admin.POST("/products", h.Products.Create)
	admin.PUT("/products/:id", h.Products.Update)
	admin.POST("/discounts", h.Discounts.Create)
	admin.DELETE("/discounts/:id", h.Discounts.Delete)
	admin.POST("/tickets/:id/refund", h.Tickets.Refund)

	// Staff administration is ADMIN only.
	v1.POST("/employees", h.Employees.Create, middleware.RequireRole(model.RoleAdmin))
	v1.PUT("/employees/:id", h.Employees.Update, middleware.RequireRole(model.RoleAdmin))
	v1.GET("/employees", h.Employees.List, middleware.RequireRole(model.RoleAdmin))
	v1.GET("/employees/:id", h.Employees.Get, middleware.RequireRole(model.RoleAdmin))

	// Selling surface, open to every company role.
	sell := v1.Group("", middleware.RequireRole(staff...))
	sell.GET("/movies", h.Movies.List)
	sell.GET("/movies/:id", h.Movies.Get)
	sell.GET("/rooms", h.Rooms.List)
	sell.GET("/rooms/:id", h.Rooms.Get)
	sell.GET("/rooms/:id/seats", h.Rooms.ListSeats)
	sell.GET("/sessions", h.Sessions.List)
	sell.GET("/sessions/:id", h.Sessions.Get)
	sell.GET("/sessions/:id/availability", h.Sessions.GetAvailability)
	sell.POST("/sessions/:id/reservations", h.Reservations.Reserve)
	sell.DELETE("/reservations/:token", h.Reservations.Release)
	sell.POST("/sales", h.Sales.Create)
	sell.GET("/sales/:id", h.Sales.Get)
	sell.POST("/sales/:id/items", h.Sales.AddItem)
	sell.DELETE("/sales/:id/items/:itemID", h.Sales.RemoveItem)
	sell.POST("/sales/:id/discounts", h.Sales.ApplyDiscount)
	sell.POST("/sales/:id/finalize", h.Sales.Finalize)
	sell.POST("/sales/:id/cancel", h.Sales.Cancel)
	sell.GET("/products", h.Products.List)
	sell.GET("/products/:id", h.Products.Get)
	sell.GET("/discounts", h.Discounts.List)
	sell.GET("/discounts/:id", h.Discounts.Get)
	sell.GET("/tickets/:id", h.Tickets.Get)

	// Cross-tenant administration.
	sys := v1.Group("/admin", middleware.RequireRole(model.RoleSysAdmin))
	sys.POST("/companies", h.Companies.Create)
	sys.GET("/companies", h.Companies.List)
	sys.GET("/companies/:id", h.Companies.Get)
	sys.PUT("/companies/:id/active", h.Companies.SetActive)
}

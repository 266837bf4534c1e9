package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitReservableAllFree(t *testing.T) {
	toCreate, toRefresh, conflicts := SplitReservable([]uint64{1, 2, 3}, nil, nil, "tok-1")
	assert.Equal(t, []uint64{1, 2, 3}, toCreate)
	assert.Empty(t, toRefresh)
	assert.Empty(t, conflicts)
}

func TestSplitReservableSoldSeatConflicts(t *testing.T) {
	sold := map[uint64]bool{2: true}
	toCreate, _, conflicts := SplitReservable([]uint64{1, 2}, sold, nil, "tok-1")
	assert.Equal(t, []uint64{1}, toCreate)
	assert.Equal(t, []uint64{2}, conflicts)
}

func TestSplitReservableForeignHoldConflicts(t *testing.T) {
	// tok-2 asks for a seat tok-1 is holding: the batch must report the
	// seat as a conflict, not steal or refresh it.
	held := map[uint64]string{5: "tok-1"}
	toCreate, toRefresh, conflicts := SplitReservable([]uint64{4, 5}, nil, held, "tok-2")
	assert.Equal(t, []uint64{4}, toCreate)
	assert.Empty(t, toRefresh)
	assert.Equal(t, []uint64{5}, conflicts)
}

func TestSplitReservableOwnHoldRefreshes(t *testing.T) {
	held := map[uint64]string{5: "tok-1", 6: "tok-1"}
	toCreate, toRefresh, conflicts := SplitReservable([]uint64{5, 6, 7}, nil, held, "tok-1")
	assert.Equal(t, []uint64{7}, toCreate)
	assert.Equal(t, []uint64{5, 6}, toRefresh)
	assert.Empty(t, conflicts)
}

func TestSplitReservableReleasedSeatIsFree(t *testing.T) {
	// After tok-1 releases, the same seat is plain free for tok-2.
	toCreate, _, conflicts := SplitReservable([]uint64{5}, nil, map[uint64]string{}, "tok-2")
	assert.Equal(t, []uint64{5}, toCreate)
	assert.Empty(t, conflicts)
}

func TestDedupeIDs(t *testing.T) {
	assert.Equal(t, []uint64{3, 1, 2}, dedupeIDs([]uint64{3, 1, 3, 2, 1}))
	assert.Equal(t, []uint64{7}, dedupeIDs([]uint64{0, 7, 0}))
	assert.Empty(t, dedupeIDs(nil))
}

package services

import (
	"time"

	"rentals-api/filters"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uint
	Admin  bool
}

// CanManage reports whether the actor owns the record or is an administrator.
func (a Actor) CanManage(ownerID uint) bool {
	return a.Admin || a.UserID == ownerID
}

// Invalidator drops derived data after a write. The home statistics cache
// implements it.
type Invalidator interface {
	Invalidate()
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate() {}

// Clock returns the current time; tests replace it.
type Clock func() time.Time

// today truncates now to a UTC calendar day.
func today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// page turns a total into pagination, reporting empty and exhausted pages.
func page(total int64, spec *filters.Spec, legacyNext bool) (filters.Pagination, error) {
	return filters.Paginate(total, spec.Page, legacyNext)
}

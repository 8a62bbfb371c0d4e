// Package store provides the generic persistence layer shared by the mirror
// reconcilers and the starboard.
//
// Gorm is a plain CRUD repository with no notion of soft deletes. SoftDeleting
// wraps it and adds deleted_at semantics: reads only ever return active rows,
// deletes stamp deleted_at, and HardDelete is kept for maintenance tooling.
//
// All failures are reported as *Error so callers can branch on the kind with
// errors.Is(err, ErrConflict) or errors.Is(err, ErrNotFound).
package store

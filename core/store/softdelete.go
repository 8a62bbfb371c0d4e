package store

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Identified is a record with a stable external identity.
type Identified interface {
	Record
	Identity() string
}

// Active restricts a query to rows that were not soft-deleted.
func Active(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NULL")
}

// SoftDeleting decorates a repository with deleted_at semantics. Reads only see
// active rows, even by primary key. Rows are only removed through HardDelete.
type SoftDeleting[T Identified] struct {
	base           *Gorm[T]
	identityColumn string
	now            func() time.Time
}

// NewSoftDeleting wraps base. identityColumn holds the value returned by Identity().
func NewSoftDeleting[T Identified](base *Gorm[T], identityColumn string) *SoftDeleting[T] {
	return &SoftDeleting[T]{
		base:           base,
		identityColumn: identityColumn,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Base returns the undecorated repository.
func (r *SoftDeleting[T]) Base() *Gorm[T] {
	return r.base
}

func (r *SoftDeleting[T]) FindAllActive(ctx context.Context, scopes ...Scope) ([]T, error) {
	return r.base.FindAll(ctx, append(scopes, Active)...)
}

func (r *SoftDeleting[T]) Find(ctx context.Context, id string) (T, error) {
	return r.base.Find(ctx, id, Active)
}

func (r *SoftDeleting[T]) FindByIdentity(ctx context.Context, identity string) (T, error) {
	return r.base.FindBy(ctx, r.identityColumn, identity, Active)
}

// Create inserts a new row and fails with a conflict if the identity already exists,
// soft-deleted or not.
func (r *SoftDeleting[T]) Create(ctx context.Context, entity T) (T, error) {
	return r.base.Create(ctx, entity)
}

// CreateOrRestore is Create made idempotent by identity: when the identity is
// already stored, that row is overwritten with entity and reactivated.
func (r *SoftDeleting[T]) CreateOrRestore(ctx context.Context, entity T) (T, error) {
	created, err := r.base.Create(ctx, entity)
	if err == nil || !IsConflict(err) {
		return created, err
	}
	set := map[string]any{"updated_at": r.now(), "deleted_at": nil}
	n, err := r.base.Overwrite(ctx, r.identityColumn, entity.Identity(), entity, set)
	if err != nil {
		var zero T
		return zero, err
	}
	if n == 0 {
		var zero T
		return zero, NotFound("restore")
	}
	return r.FindByIdentity(ctx, entity.Identity())
}

// Update overwrites all attributes of the active row with entity's primary key.
func (r *SoftDeleting[T]) Update(ctx context.Context, entity T) (T, error) {
	var zero T
	if entity.PrimaryKey() == "" {
		return zero, NotFound("update")
	}
	n, err := r.base.Overwrite(ctx, "id", entity.PrimaryKey(), entity, map[string]any{"updated_at": r.now(), "deleted_at": nil}, Active)
	if err != nil {
		return zero, err
	}
	if n == 0 {
		return zero, NotFound("update")
	}
	return r.Find(ctx, entity.PrimaryKey())
}

// SoftDelete stamps deleted_at. Missing or already deleted rows are left alone.
func (r *SoftDeleting[T]) SoftDelete(ctx context.Context, id string) error {
	_, err := r.base.UpdateColumns(ctx, id, map[string]any{"deleted_at": r.now()}, Active)
	return err
}

// HardDelete removes the row permanently. Reserved for maintenance tooling.
func (r *SoftDeleting[T]) HardDelete(ctx context.Context, id string) error {
	return r.base.Delete(ctx, id)
}

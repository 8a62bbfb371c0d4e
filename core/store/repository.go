package store

import (
	"context"
	"fmt"
	"reflect"

	"gorm.io/gorm"
)

// Scope narrows a query, e.g. to one guild or to active rows.
type Scope = func(*gorm.DB) *gorm.DB

// Record is a persisted row with a store-assigned primary key in column "id".
type Record interface {
	PrimaryKey() string
}

// Repository is the generic CRUD contract. It knows nothing about soft deletes.
type Repository[T Record] interface {
	FindAll(ctx context.Context, scopes ...Scope) ([]T, error)
	Find(ctx context.Context, id string, scopes ...Scope) (T, error)
	FindBy(ctx context.Context, column string, value any, scopes ...Scope) (T, error)
	Create(ctx context.Context, entity T) (T, error)
	Overwrite(ctx context.Context, column string, value any, entity T, set map[string]any, scopes ...Scope) (int64, error)
	UpdateColumns(ctx context.Context, id string, values map[string]any, scopes ...Scope) (int64, error)
	Delete(ctx context.Context, id string) error
}

// Gorm implements Repository on top of a gorm connection.
type Gorm[T Record] struct {
	db *gorm.DB
}

// NewGorm creates a repository for T.
func NewGorm[T Record](db *gorm.DB) *Gorm[T] {
	return &Gorm[T]{db: db}
}

// WithTx returns a copy of the repository bound to a transaction.
func (r *Gorm[T]) WithTx(tx *gorm.DB) *Gorm[T] {
	return &Gorm[T]{db: tx}
}

// DB exposes the underlying connection for callers composing transactions.
func (r *Gorm[T]) DB() *gorm.DB {
	return r.db
}

func (r *Gorm[T]) query(ctx context.Context, scopes ...Scope) *gorm.DB {
	return r.db.WithContext(ctx).Model(new(T)).Scopes(scopes...)
}

func (r *Gorm[T]) FindAll(ctx context.Context, scopes ...Scope) ([]T, error) {
	var out []T
	if err := r.query(ctx, scopes...).Find(&out).Error; err != nil {
		return nil, translate("find all", err)
	}
	return out, nil
}

func (r *Gorm[T]) Find(ctx context.Context, id string, scopes ...Scope) (T, error) {
	return r.FindBy(ctx, "id", id, scopes...)
}

func (r *Gorm[T]) FindBy(ctx context.Context, column string, value any, scopes ...Scope) (T, error) {
	var out T
	err := r.query(ctx, scopes...).Where(column+" = ?", value).Take(&out).Error
	return out, translate("find", err)
}

// Create inserts the entity. Primary keys and creation times are assigned by model hooks.
func (r *Gorm[T]) Create(ctx context.Context, entity T) (T, error) {
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		var zero T
		return zero, translate("create", err)
	}
	return entity, nil
}

// Overwrite replaces every attribute of the rows matching column = value with the
// entity's values. The primary key and created_at are preserved; set overrides
// individual columns (e.g. timestamps).
func (r *Gorm[T]) Overwrite(ctx context.Context, column string, value any, entity T, set map[string]any, scopes ...Scope) (int64, error) {
	values, err := r.columns(ctx, entity)
	if err != nil {
		return 0, translate("overwrite", err)
	}
	for k, v := range set {
		values[k] = v
	}
	res := r.query(ctx, scopes...).Where(column+" = ?", value).Updates(values)
	return res.RowsAffected, translate("overwrite", res.Error)
}

func (r *Gorm[T]) UpdateColumns(ctx context.Context, id string, values map[string]any, scopes ...Scope) (int64, error) {
	res := r.query(ctx, scopes...).Where("id = ?", id).Updates(values)
	return res.RowsAffected, translate("update columns", res.Error)
}

// Delete removes the row permanently.
func (r *Gorm[T]) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	return translate("delete", res.Error)
}

// columns maps every persisted field of entity to its column, except the
// primary key and created_at.
func (r *Gorm[T]) columns(ctx context.Context, entity T) (map[string]any, error) {
	stmt := &gorm.Statement{DB: r.db}
	if err := stmt.Parse(&entity); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	rv := reflect.ValueOf(entity)
	values := make(map[string]any, len(stmt.Schema.Fields))
	for _, field := range stmt.Schema.Fields {
		if field.DBName == "" || field.PrimaryKey || field.DBName == "created_at" {
			continue
		}
		v, _ := field.ValueOf(ctx, rv)
		values[field.DBName] = v
	}
	return values, nil
}

// Transaction runs fn inside a database transaction.
func Transaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

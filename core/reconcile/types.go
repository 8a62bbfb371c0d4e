package reconcile

import (
	"context"

	"guildkeeper/core/store"
)

// Entity is the value-record contract every reconciled kind implements.
// Identity is the platform id and never changes; Matches compares the kind
// attributes only (primary key and timestamps are ignored).
type Entity[T any] interface {
	PrimaryKey() string
	Identity() string
	Matches(other T) bool
	WithPrimaryKey(id string) T
}

// Adapter specialises the engine for one entity kind.
type Adapter[T, R any] interface {
	// Name labels the kind in logs and reports (e.g. "role").
	Name() string
	// Convert turns a raw platform record into an entity. ok is false for
	// records that do not belong to this kind (e.g. a voice channel).
	Convert(guildID string, raw R) (entity T, ok bool)
	// Scope restricts the stored active set to the guild being reconciled.
	Scope(guildID string) store.Scope
}

// Store is the subset of the soft-deleting repository the engine needs.
type Store[T any] interface {
	FindAllActive(ctx context.Context, scopes ...store.Scope) ([]T, error)
	CreateOrRestore(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, entity T) (T, error)
	SoftDelete(ctx context.Context, id string) error
}

// Diff partitions the entities of one kind into the three sync actions.
// Create entries carry no primary key; Update entries carry the stored one;
// Delete entries are the stored rows themselves.
type Diff[T any] struct {
	Create []T
	Update []T
	Delete []T
}

// Empty reports whether the store already matches the live snapshot.
func (d Diff[T]) Empty() bool {
	return len(d.Create) == 0 && len(d.Update) == 0 && len(d.Delete) == 0
}

// Summary returns the number of planned actions per stage.
func (d Diff[T]) Summary() Summary {
	return Summary{Create: len(d.Create), Update: len(d.Update), Delete: len(d.Delete)}
}

// Summary provides aggregate counts for a diff.
type Summary struct {
	Create int `json:"create"`
	Update int `json:"update"`
	Delete int `json:"delete"`
}

// Total is the number of planned actions.
func (s Summary) Total() int {
	return s.Create + s.Update + s.Delete
}

// Result is the outcome of a sync for one kind.
type Result struct {
	// Kind is the adapter name.
	Kind string `json:"kind"`
	// Planned holds the diff counts computed before applying.
	Planned Summary `json:"planned"`
	// Created, Updated and Deleted count the writes that completed.
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
	// DryRun is true when nothing was applied.
	DryRun bool `json:"dry_run"`
}

// Options controls a Sync call.
type Options struct {
	// DryRun computes the diff without writing anything.
	DryRun bool
	// Reporter receives progress messages. May be nil.
	Reporter Reporter
}

// Reporter receives a message before a diff is applied and one after.
type Reporter interface {
	Before(kind string, planned Summary)
	After(result Result, err error)
}

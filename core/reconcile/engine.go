package reconcile

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine reconciles one entity kind between a live snapshot and the store.
type Engine[T Entity[T], R any] struct {
	adapter Adapter[T, R]
	store   Store[T]
	workers int
	logger  *zap.Logger
}

// NewEngine creates an engine for the kind described by adapter.
func NewEngine[T Entity[T], R any](adapter Adapter[T, R], store Store[T], cfg Config, logger *zap.Logger) *Engine[T, R] {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine[T, R]{
		adapter: adapter,
		store:   store,
		workers: workers,
		logger:  logger.With(zap.String("kind", adapter.Name())),
	}
}

// Name returns the kind label.
func (e *Engine[T, R]) Name() string {
	return e.adapter.Name()
}

// ComputeDiff converts the live records and partitions them against the
// active rows stored for the guild. It does not write anything.
func (e *Engine[T, R]) ComputeDiff(ctx context.Context, guildID string, live []R) (Diff[T], error) {
	var diff Diff[T]

	stored, err := e.store.FindAllActive(ctx, e.adapter.Scope(guildID))
	if err != nil {
		return diff, fmt.Errorf("failed to load stored %s: %w", e.Name(), err)
	}

	storedByID := make(map[string]T, len(stored))
	for _, s := range stored {
		storedByID[s.Identity()] = s
	}

	seen := make(map[string]struct{}, len(live))
	for _, raw := range live {
		entity, ok := e.adapter.Convert(guildID, raw)
		if !ok {
			continue
		}
		id := entity.Identity()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		current, exists := storedByID[id]
		switch {
		case !exists:
			diff.Create = append(diff.Create, entity.WithPrimaryKey(""))
		case !entity.Matches(current):
			diff.Update = append(diff.Update, entity.WithPrimaryKey(current.PrimaryKey()))
		}
	}

	for _, s := range stored {
		if _, ok := seen[s.Identity()]; !ok {
			diff.Delete = append(diff.Delete, s)
		}
	}

	return diff, nil
}

// Apply writes the diff: all creates, then all updates, then all soft deletes.
// Within a stage writes run concurrently. A failure stops the run and returns
// a *Failure; completed writes are not rolled back.
func (e *Engine[T, R]) Apply(ctx context.Context, diff Diff[T]) (Result, error) {
	result := Result{Kind: e.Name(), Planned: diff.Summary()}

	stages := []struct {
		stage Stage
		items []T
		count *int
		write func(context.Context, T) error
	}{
		{StageCreate, diff.Create, &result.Created, func(ctx context.Context, t T) error {
			_, err := e.store.CreateOrRestore(ctx, t)
			return err
		}},
		{StageUpdate, diff.Update, &result.Updated, func(ctx context.Context, t T) error {
			_, err := e.store.Update(ctx, t)
			return err
		}},
		{StageDelete, diff.Delete, &result.Deleted, func(ctx context.Context, t T) error {
			return e.store.SoftDelete(ctx, t.PrimaryKey())
		}},
	}

	for _, s := range stages {
		n, err := e.runStage(ctx, s.items, s.write)
		*s.count = n
		if err != nil {
			return result, &Failure{Kind: e.Name(), Stage: s.stage, Partial: result, Err: err}
		}
	}

	return result, nil
}

func (e *Engine[T, R]) runStage(ctx context.Context, items []T, write func(context.Context, T) error) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := write(gctx, item); err != nil {
				return fmt.Errorf("%s: %w", item.Identity(), err)
			}
			done.Add(1)
			return nil
		})
	}

	err := g.Wait()
	return int(done.Load()), err
}

// Sync computes the diff for the guild and applies it unless opts.DryRun is set.
func (e *Engine[T, R]) Sync(ctx context.Context, guildID string, live []R, opts Options) (Result, error) {
	diff, err := e.ComputeDiff(ctx, guildID, live)
	if err != nil {
		return Result{Kind: e.Name()}, err
	}

	planned := diff.Summary()
	if opts.Reporter != nil {
		opts.Reporter.Before(e.Name(), planned)
	}

	var result Result
	if opts.DryRun {
		result = Result{Kind: e.Name(), Planned: planned, DryRun: true}
	} else {
		result, err = e.Apply(ctx, diff)
	}

	if opts.Reporter != nil {
		opts.Reporter.After(result, err)
	}

	fields := []zap.Field{
		zap.String("guild_id", guildID),
		zap.Int("planned", planned.Total()),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("deleted", result.Deleted),
		zap.Bool("dry_run", opts.DryRun),
	}
	if err != nil {
		e.logger.Error("Reconciliation failed", append(fields, zap.Error(err))...)
		return result, err
	}
	e.logger.Info("Reconciliation finished", fields...)
	return result, nil
}

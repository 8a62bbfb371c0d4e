// Package reconcile keeps a persisted mirror of one entity kind in line with a
// live snapshot taken from the chat platform.
//
// An Engine is built per kind from an Adapter (conversion and guild scoping)
// and a Store (the soft-deleting repository). A sync runs in two steps:
//
//  1. ComputeDiff converts the live records and compares them by Identity
//     with the active stored rows. Rows only live go to Create, rows on both
//     sides whose attributes differ go to Update, rows only stored go to Delete.
//  2. Apply writes the diff stage by stage: creates, then updates, then soft
//     deletes. Each stage runs on a bounded worker group.
//
// Apply is not transactional. When a write fails the engine stops, keeps what
// was already written and returns a *Failure with the partial counts. Creates
// are idempotent by identity, so running the sync again converges.
//
// # Usage Example
//
//	engine := reconcile.NewEngine[models.Role, *discordgo.Role](mirror.RoleAdapter{}, roles, cfg.Reconcile, logger)
//	result, err := engine.Sync(ctx, guildID, snapshot.Roles, reconcile.Options{})
package reconcile

// Package mirror keeps a relational copy of each guild's structure.
//
// Four kinds are reconciled from a live snapshot, in this order: the guild
// row, category channels, text channels and roles. Each kind has an adapter
// (adapters.go) that converts discordgo objects into value records from
// feature/mirror/models and scopes the stored active set to the guild.
// Messages are mirrored too, but only when the starboard promotes one.
//
// # Components
//
//   - Service: runs syncs, archives reports, purges soft deleted rows.
//   - Handler: exposes HTTP endpoints for syncs and archived reports.
//   - Loader: registers the feature with the application.
//
// # HTTP Endpoints
//
//   - POST /mirror/:guild/sync : Sync one guild (?dry_run=true to only diff).
//   - GET /mirror/:guild/reports : List archived sync reports.
package mirror

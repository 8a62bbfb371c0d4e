// Package server holds the admin HTTP server configuration.
//
// The admin API exposes the administrative operations (reconciliation runs and
// starboard management) to operators. The cmd package starts the Fiber app;
// this package only defines its settings.
package server

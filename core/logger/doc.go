// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) and small helpers to scope log entries.
//
// # Scoping
//
// WithRayID extracts the request id stored by the rayid middleware so that all
// logs of one admin HTTP request can be correlated. WithGuild attaches the guild
// id, which is how reconciliation runs and reaction handling are correlated.
//
// # Configuration
//
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Bot started")
//
//	l := logger.WithGuild(log, guildID)
//	l.Warn("No starboard configured", zap.Error(err))
package logger

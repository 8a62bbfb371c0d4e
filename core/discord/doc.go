// Package discord is the boundary to the chat platform.
//
// Platform is the narrow interface the mirror and the starboard depend on.
// SessionPlatform implements it over a discordgo session, and
// core/discord/mocks provides a testify mock for unit tests.
package discord

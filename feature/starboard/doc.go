// Package starboard promotes popular messages to a dedicated channel.
//
// Administrators register boards (CreateBoard) and point them at channels or
// members (Redirect). Each board is backed by one or more rows in
// starboard_config; a row with no target applies to the whole guild, and
// scoped and wildcard rows apply together.
//
// # Reaction pipeline
//
//  1. Resolve the guild, channel, user and message. Anything missing, a bot
//     user or a reaction that is already gone ends the event silently.
//  2. Lock the guild (core/keylock) so events of one guild run one at a time.
//  3. Load the matching configs and, for each, check ShouldPromote.
//  4. Post the highlight, record it in starboard_highlights and mirror the
//     message. A message is posted at most once per board.
//
// Messages are kept in a MessageCache and reaction events adjust the cached
// counts, so repeated reactions do not refetch.
//
// # HTTP Endpoints
//
//   - GET /starboard/:guild : List configs.
//   - POST /starboard/:guild : Create a board ({"name": "starboard"}).
//   - PUT /starboard/:guild/:board/targets : Replace targets ({"targets": [...]}).
//   - PATCH /starboard/:guild/:board : Set the minimum ({"min_limit": 5}).
package starboard

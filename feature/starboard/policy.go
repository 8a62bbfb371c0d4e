package starboard

const (
	// LargeChannelMembers is the member count above which the bar is raised.
	LargeChannelMembers = 100
	largeChannelPenalty = 10
	starBonus           = 5
)

var starGlyphs = map[string]struct{}{
	"⭐": {},
	"🌟": {},
}

// IsStarEmoji reports whether name is one of the canonical star glyphs.
func IsStarEmoji(name string) bool {
	_, ok := starGlyphs[name]
	return ok
}

// Threshold is the adjusted score a reaction count is compared against.
func Threshold(memberCount int, emoji string, minLimit int) int {
	threshold := minLimit
	if memberCount > LargeChannelMembers {
		threshold += largeChannelPenalty
	}
	if IsStarEmoji(emoji) {
		threshold -= starBonus
	}
	return threshold
}

// ShouldPromote reports whether a reaction count clears both the raw floor
// and the adjusted threshold.
func ShouldPromote(count, memberCount int, emoji string, minLimit int) bool {
	return count >= minLimit && count >= Threshold(memberCount, emoji, minLimit)
}

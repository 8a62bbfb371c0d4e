package discord

// Config holds the bot credentials and gateway settings.
type Config struct {
	// Token is the bot token, without the "Bot " prefix.
	Token string `mapstructure:"token" default:""`
	// StateMaxMessages is how many messages per channel the gateway state keeps.
	StateMaxMessages int `mapstructure:"state_max_messages" default:"100"`
	// TimeoutSeconds bounds each REST call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"15"`
}

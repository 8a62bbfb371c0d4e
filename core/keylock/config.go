package keylock

// Config holds tuning for the per-key lock table.
type Config struct {
	// Shards is the number of independently locked buckets keys are hashed into.
	Shards int `mapstructure:"shards" default:"32"`
}

package reconcile

// Config holds tuning for reconciliation runs.
type Config struct {
	// Workers bounds concurrent store writes within one apply stage.
	Workers int `mapstructure:"workers" default:"8"`
}

// Package loader provides the feature loading system of the admin API.
//
// Each feature (mirror, starboard) implements the Feature interface and
// registers its routes when loaded.
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The Manager keeps the registry; LoadAll loads enabled features in
// registration order and stops at the first failure.
package loader

package starboard

import "errors"

// ErrResolutionMiss means a platform object vanished between the event and
// the lookup. It is expected and never reported.
var ErrResolutionMiss = errors.New("starboard: resolution miss")

// errNoBoard is returned by the repository when a board has no config.
var errNoBoard = errors.New("no starboard registered for channel")

// ConfigError is a user-facing configuration or permission problem. Its
// message is meant to be shown verbatim to the administrator.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

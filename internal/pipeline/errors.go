package pipeline

import (
	"errors"
	"fmt"
)

// ErrNativeUnsupported is returned by an Aggregator that cannot run a
// pipeline itself; callers fall back to the in-process executor.
var ErrNativeUnsupported = errors.New("native aggregation not supported")

// ConfigurationError reports a stage that cannot be executed as described.
// It is returned by New before any store interaction.
type ConfigurationError struct {
	Index  int    // position of the stage in the pipeline, -1 for a bare filter
	Stage  string // stage name, e.g. "$match"
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid %s: %s", e.Stage, e.Reason)
	}
	return fmt.Sprintf("pipeline stage %d (%s): %s", e.Index, e.Stage, e.Reason)
}

// IsConfigurationError reports whether err is, or wraps, a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

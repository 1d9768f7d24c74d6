package models

import (
	"errors"
	"strings"
)

// Failure classes of an export run. Adapters wrap their SDK errors with one
// of these so callers can classify with errors.Is.
var (
	ErrStoreUnavailable  = errors.New("record store unavailable")
	ErrStore             = errors.New("record store error")
	ErrStorageWrite      = errors.New("artifact storage write failed")
	ErrArtifactReference = errors.New("artifact reference failed")
	ErrNotification      = errors.New("notification publish failed")
)

// ConfigError reports deployment misconfiguration detected before any I/O.
type ConfigError struct {
	Missing []string
	Invalid []string
}

func (e *ConfigError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

// Empty reports whether no problems were recorded.
func (e *ConfigError) Empty() bool {
	return len(e.Missing) == 0 && len(e.Invalid) == 0
}

package diag

import (
	"fmt"
	"strings"
)

// Severity defines the importance of an offense.
type Severity uint8

const (
	// SevInfo is for informational offenses.
	SevInfo Severity = iota
	// SevWarning is for warning offenses.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseSeverity accepts the lower-case names used in config files.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return SevInfo, nil
	case "warning", "warn":
		return SevWarning, nil
	case "error", "":
		return SevError, nil
	}
	return SevError, fmt.Errorf("unknown severity %q", s)
}

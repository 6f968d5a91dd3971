package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound means the ticker is not in the reference table or the quote
	// provider does not know the symbol.
	ErrNotFound = errors.New("ticker not found")
	// ErrUpstreamUnavailable means a market-data call failed for a reason other
	// than an unknown symbol.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrSymbolNotFound is returned by quote providers for unknown symbols.
	ErrSymbolNotFound = errors.New("symbol not found")

	ErrPresetNotFound      = errors.New("preset not found")
	ErrDefaultPresetLocked = errors.New("default preset cannot be deleted")

	// ErrHistoryDisabled is returned when no evaluation store is configured.
	ErrHistoryDisabled = errors.New("evaluation history disabled")
)

// PresetValidationError lists every threshold rule a preset breaks.
type PresetValidationError struct {
	Violations []string
}

func (e *PresetValidationError) Error() string {
	return fmt.Sprintf("invalid preset: %s", strings.Join(e.Violations, "; "))
}

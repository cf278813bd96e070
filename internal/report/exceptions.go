// Package report filters annotated events and assembles the per-device
// tables consumed by the renderers.
package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olegiv/netsyslog-go/internal/novelty"
)

// ExceptionSet holds operator-suppressed event codes. Codes in the set never
// reach the rendered report, whatever their attention flag.
type ExceptionSet map[string]struct{}

// Contains reports whether code is suppressed.
func (s ExceptionSet) Contains(code string) bool {
	_, ok := s[code]
	return ok
}

// LoadExceptions reads the operator's exception file: a JSON array of code
// strings, reloaded fresh each run. Loading is best-effort: the returned set
// is always usable, and the error only says why it may be empty. Non-string
// array members are skipped, never fatal.
func LoadExceptions(path string) (ExceptionSet, error) {
	set := make(ExceptionSet)

	data, err := os.ReadFile(path)
	if err != nil {
		return set, fmt.Errorf("failed to read exceptions file %s: %w", path, err)
	}

	var entries []any
	if err := json.Unmarshal(data, &entries); err != nil {
		return set, fmt.Errorf("failed to parse exceptions file %s: %w", path, err)
	}

	for _, entry := range entries {
		if code, ok := entry.(string); ok && code != "" {
			set[code] = struct{}{}
		}
	}
	return set, nil
}

// Filter removes every event whose identity exactly matches a suppressed
// code. Removal is final for the run.
func Filter(events map[string]*novelty.Annotated, exceptions ExceptionSet) {
	for id := range events {
		if exceptions.Contains(id) {
			delete(events, id)
		}
	}
}

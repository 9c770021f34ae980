package store

import (
	"fmt"
	"strings"
)

// LoadError collects the reasons a model failed to load. Always fatal —
// callers should log it and terminate rather than attempt to continue
// with a partially loaded model.
type LoadError struct {
	Issues []string
}

func (e *LoadError) Error() string {
	if len(e.Issues) == 0 {
		return "load error: unknown failure"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0]
	}
	return "load errors: " + strings.Join(e.Issues, "; ")
}

// Add records one failure reason.
func (e *LoadError) Add(format string, args ...any) {
	e.Issues = append(e.Issues, fmt.Sprintf(format, args...))
}

// HasIssues reports whether any failure has been recorded.
func (e *LoadError) HasIssues() bool {
	return len(e.Issues) > 0
}

package distribution

import (
	"errors"
	"strings"
)

var (
	ErrInsufficientAgents = errors.New("not enough active agents")
	ErrNotFound           = errors.New("distribution not found")
	ErrStorage            = errors.New("distribution storage failure")
)

// ValidationError reports every problem found in an uploaded file.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid file: " + strings.Join(e.Errors, "; ")
}

package distribution

import (
	"fmt"
	"strings"

	"github.com/kiranshivaraju/agentlist/pkg/models"
)

const msgEmptyFile = "File is empty or invalid"

// ValidationResult is the outcome of Validate. Errors is never nil.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// Validate checks that there is at least one record and that every record
// carries each required field. Messages are reported in row order, then field
// order, with 1-based row numbers.
func Validate(records []models.Record) ValidationResult {
	if len(records) == 0 {
		return ValidationResult{IsValid: false, Errors: []string{msgEmptyFile}}
	}

	errs := []string{}
	for i, rec := range records {
		for _, field := range models.RequiredFields {
			if strings.TrimSpace(rec[field]) == "" {
				errs = append(errs, fmt.Sprintf("Row %d: Missing %s", i+1, field))
			}
		}
	}
	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// Err returns a *ValidationError when the result is invalid, nil otherwise.
func (r ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	return &ValidationError{Errors: r.Errors}
}

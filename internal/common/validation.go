package common

import "fmt"

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Validator collects field errors for a request body
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// Field validates a field and collects errors
func (v *Validator) Field(fieldName string, value any, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
		}
	}
	return v
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Err returns the first failure as an invalid-input AppError, or nil.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	first := v.errors[0]
	return NewAppError("INVALID_INPUT", first.Message, ErrInvalidInput)
}

// ValidationRule represents a single validation rule
type ValidationRule func(fieldName string, value any) *ValidationError

// Present fails when the key was absent from a decoded JSON object.
// value is the map the field was looked up in.
func Present(fieldName string, value any) *ValidationError {
	m, ok := value.(map[string]any)
	if !ok {
		return &ValidationError{Field: fieldName, Message: "No JSON data received"}
	}
	if _, ok := m[fieldName]; !ok {
		return &ValidationError{Field: fieldName, Message: "Missing required field: " + fieldName}
	}
	return nil
}

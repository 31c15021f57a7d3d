package llm

import (
	"fmt"
	"log/slog"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SanitizeFunc rewrites a document so it has a better chance of validating.
// It returns the rewritten document and a list of the changes it made.
type SanitizeFunc func(doc []byte, logger *slog.Logger) ([]byte, []string, error)

// ValidateLenient validates doc strictly first. On failure it runs sanitize
// and validates again. The returned document is the best available version
// (sanitized when sanitizing succeeded) even when err is non-nil.
func ValidateLenient(schema *jsonschema.Schema, doc []byte, sanitize SanitizeFunc, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	strictErr := ValidateJSON(schema, doc)
	if strictErr == nil {
		return doc, nil
	}
	if sanitize == nil {
		return doc, strictErr
	}

	cleaned, changes, err := sanitize(doc, logger)
	if err != nil {
		logger.Error("llm.validate.sanitize_failed", "error", err)
		return doc, fmt.Errorf("sanitize failed: %w", err)
	}
	if err := ValidateJSON(schema, cleaned); err != nil {
		logger.Warn("llm.validate.schema_validation_failed", "error", err, "changes", changes)
		return cleaned, fmt.Errorf("schema validation failed: %w", err)
	}
	logger.Warn("llm.validate.lenient_sanitize_applied", "changes", changes, "strict_error", strictErr.Error())
	return cleaned, nil
}

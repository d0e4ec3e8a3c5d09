package analysis

import (
	"errors"
	"fmt"
)

// Common analysis errors
var (
	// ErrEmptyImage is returned when the upload carries no bytes.
	ErrEmptyImage = errors.New("image is empty")

	// ErrImageTooLarge is returned when the upload exceeds the configured limit.
	ErrImageTooLarge = errors.New("image exceeds maximum upload size")

	// ErrUnsupportedFormat is returned for anything other than JPEG, PNG, WEBP or TIFF.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// AnalysisError wraps errors with additional context about the failed step.
type AnalysisError struct {
	// Op is the step that failed (e.g., "Analyze", "DetectFormat").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("analysis: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("analysis: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Is implements error matching.
func (e *AnalysisError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapAnalysisError wraps an error as an AnalysisError if it isn't already one.
func WrapAnalysisError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var analysisErr *AnalysisError
	if errors.As(err, &analysisErr) {
		return err
	}

	return &AnalysisError{Op: op, Err: err, Details: details}
}

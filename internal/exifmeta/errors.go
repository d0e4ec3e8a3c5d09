package exifmeta

import (
	"errors"
	"fmt"
)

// ErrNoMetadata is returned when the image carries no readable EXIF block.
var ErrNoMetadata = errors.New("no EXIF metadata found")

// MetadataError wraps errors with the operation that produced them.
type MetadataError struct {
	Op      string
	Err     error
	Details string
}

// Error implements the error interface.
func (e *MetadataError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("exifmeta: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("exifmeta: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *MetadataError) Unwrap() error {
	return e.Err
}

// Is implements error matching.
func (e *MetadataError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func wrapMetadataError(op string, err error, details string) error {
	if err == nil {
		return nil
	}
	var metaErr *MetadataError
	if errors.As(err, &metaErr) {
		return err
	}
	return &MetadataError{Op: op, Err: err, Details: details}
}

package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameter         = errors.New("invalid parameter")
	ErrEmptyDocument            = errors.New("empty document")
	ErrUnsupportedFormat        = errors.New("unsupported format")
	ErrModel                    = errors.New("model failure")
	ErrSummarizationUnavailable = errors.New("summarization unavailable")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

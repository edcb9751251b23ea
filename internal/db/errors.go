package db

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid marks input rejected before any write.
	ErrInvalid = errors.New("invalid input")
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrCustomCategoryLimit is returned by CheckCustomCategoryLimit once the cap is reached.
	ErrCustomCategoryLimit = errors.New("custom category limit reached")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}

package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrNoHeader is returned when a CSV source has no header row
	ErrNoHeader = errors.New("missing header row")

	// ErrMissingColumn is returned when a required column is absent
	ErrMissingColumn = errors.New("missing required column")

	// ErrMalformedRow is returned when a row cannot be read
	ErrMalformedRow = errors.New("malformed row")

	// ErrEmptyKey is returned when a movie has no title to be stored under
	ErrEmptyKey = errors.New("movie title cannot be empty")
)

// RowError locates a malformed row in its source
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// IsMissingColumn checks if an error is a "missing column" error
func IsMissingColumn(err error) bool {
	return errors.Is(err, ErrMissingColumn)
}

// IsMalformedRow checks if an error is a "malformed row" error
func IsMalformedRow(err error) bool {
	return errors.Is(err, ErrMalformedRow)
}

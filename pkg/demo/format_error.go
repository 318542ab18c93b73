// ABOUTME: Container decoding errors
// ABOUTME: Sentinel errors and a positional FormatError
package demo

import (
	"errors"
	"fmt"
)

var (
	// ErrBadMagic is returned when the data does not start with the demo magic
	ErrBadMagic = errors.New("not a demo file")

	// ErrVersion is returned for container versions this build cannot read
	ErrVersion = errors.New("unsupported demo version")
)

// FormatError describes malformed container data at a byte offset
type FormatError struct {
	Message string

	Offset int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s (offset=%d)", e.Message, e.Offset)
}

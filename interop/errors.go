// Package interop replays encoded QPACK test vectors through a decoder
// and checks the output against the plaintext QIF files of the
// qpackers interop corpus.
package interop

import (
	"errors"
	"fmt"
)

// A TrailingDataError is returned when bytes remain after the last
// complete frame, but too few to form another frame header.
type TrailingDataError struct {
	Remaining int
}

func (e *TrailingDataError) Error() string {
	return fmt.Sprintf("%d trailing bytes after the last complete frame", e.Remaining)
}

var (
	// ErrUnexpectedEnd is returned when a frame declares a length
	// longer than the remaining data.
	ErrUnexpectedEnd = errors.New("frame length exceeds remaining data")
	// ErrBadFilename is returned when a path has no usable file name
	// to derive a test case name from.
	ErrBadFilename = errors.New("missing or malformed file name")
)

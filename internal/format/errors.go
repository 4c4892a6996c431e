package format

import "errors"

var (
	// ErrSignatureMismatch indicates a buffer does not start with the regf magic.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
)

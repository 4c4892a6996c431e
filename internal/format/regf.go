package format

import "bytes"

// CheckSignature verifies that b begins with the regf base block magic.
// The scanner never requires a valid header; this is reported for context only.
func CheckSignature(b []byte) error {
	if len(b) < len(REGFSignature) {
		return ErrTruncated
	}
	if !bytes.Equal(b[:len(REGFSignature)], REGFSignature) {
		return ErrSignatureMismatch
	}
	return nil
}

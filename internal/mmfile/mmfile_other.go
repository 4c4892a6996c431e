//go:build !unix

package mmfile

import (
	"fmt"
	"os"
)

// Map reads the whole file when mmap is not available. The returned release
// function is a no-op.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("mmfile: read %s: %w", path, err)
	}
	return data, func() error { return nil }, nil
}

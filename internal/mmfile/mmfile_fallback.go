//go:build !unix && !windows

// Package mmfile provides platform-specific helpers for memory backed
// directly by the OS instead of the Go heap.
package mmfile

import "fmt"

// Anon allocates size zeroed bytes on the Go heap where no OS mapping
// primitive is available.
func Anon(size int) ([]byte, func() error, error) {
	if size < 0 {
		return nil, nil, fmt.Errorf("mmfile: negative size %d", size)
	}
	return make([]byte, size), func() error { return nil }, nil
}

// Package upstream carries provider HTTP failures across adapter boundaries
// so handlers can relay the original status code and body verbatim.
package upstream

import "fmt"

// Error is a non-2xx response from an external provider.
type Error struct {
	StatusCode int
	Body       []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Body)
}

package memory

import (
	"errors"
	"fmt"

	"github.com/inhies/go-bytesize"
)

var (
	ErrNotSupported = errors.New("locked anonymous mappings are only supported on Linux")
	ErrOutOfBounds  = errors.New("offset out of bounds")
	ErrReleased     = errors.New("region released or never acquired")
)

// ConfigurationError is returned when the requested region cannot be sized.
// No allocation is attempted after a ConfigurationError.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (c *ConfigurationError) Error() string {
	if c.Err != nil {
		return c.Reason + ": " + c.Err.Error()
	}
	return c.Reason
}

func (c *ConfigurationError) Unwrap() error {
	return c.Err
}

// AllocationError is returned when the OS refuses to map or lock the region.
type AllocationError struct {
	Size uint64
	Err  error
}

func (a *AllocationError) Error() string {
	return fmt.Sprintf("could not allocate %v locked: %v",
		bytesize.New(float64(a.Size)), a.Err)
}

func (a *AllocationError) Unwrap() error {
	return a.Err
}

// ReleaseError is returned when the OS refuses to unmap the region.
type ReleaseError struct {
	Size uint64
	Err  error
}

func (r *ReleaseError) Error() string {
	return fmt.Sprintf("could not release %v: %v",
		bytesize.New(float64(r.Size)), r.Err)
}

func (r *ReleaseError) Unwrap() error {
	return r.Err
}

// +build !linux

package host

import "os"

func pageSize() uint64 {
	return uint64(os.Getpagesize())
}

// LockLimit is a stub for non-Linux platforms.
func (h *Host) LockLimit() (Limit, error) {
	return Limit{}, ErrNotSupported
}

// +build linux

package host

import (
	"math"

	"golang.org/x/sys/unix"
)

func pageSize() uint64 {
	return uint64(unix.Getpagesize())
}

// LockLimit returns RLIMIT_MEMLOCK for the running process.
func (h *Host) LockLimit() (Limit, error) {
	var rlim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_MEMLOCK, &rlim); err != nil {
		return Limit{}, err
	}
	l := Limit{
		Current:   uint64(rlim.Cur),
		Max:       uint64(rlim.Max),
		Unlimited: uint64(rlim.Cur) == math.MaxUint64,
	}
	log.Tracef("LockLimit: %+v", l)
	return l, nil
}

// Package host answers the memory questions jaws asks the operating system:
// how much physical memory there is, how large a page is, how much of this
// process is resident and locked, and how much it may lock.
package host

import (
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/procfs"
)

var ErrNotSupported = errors.New("host query not supported on this platform")

// Usage is a point in time read of the process memory.
type Usage struct {
	Resident uint64 // VmRSS in bytes
	Locked   uint64 // VmLck in bytes
}

// Limit is the locked memory resource limit of the process.
type Limit struct {
	Current   uint64
	Max       uint64
	Unlimited bool
}

// Allows reports whether size bytes may be locked under the soft limit.
func (l Limit) Allows(size uint64) bool {
	return l.Unlimited || size <= l.Current
}

// Host queries a proc filesystem on behalf of one process.
type Host struct {
	fs       procfs.FS
	pid      int
	pageSize uint64
}

// New returns a Host for the running process using the default /proc mount.
func New() (*Host, error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return nil, err
	}
	return &Host{
		fs:       fs,
		pid:      os.Getpid(),
		pageSize: pageSize(),
	}, nil
}

// NewFromRoot returns a Host reading the proc filesystem mounted at root on
// behalf of pid.  A zero pageSize uses the OS page size.
func NewFromRoot(root string, pid int, ps uint64) (*Host, error) {
	fs, err := procfs.NewFS(root)
	if err != nil {
		return nil, err
	}
	if ps == 0 {
		ps = pageSize()
	}
	return &Host{
		fs:       fs,
		pid:      pid,
		pageSize: ps,
	}, nil
}

// PageSize returns the page size read when the Host was created.
func (h *Host) PageSize() uint64 {
	return h.pageSize
}

// TotalMemory returns the total physical memory in bytes.
func (h *Host) TotalMemory() (uint64, error) {
	mi, err := h.fs.Meminfo()
	if err != nil {
		return 0, fmt.Errorf("meminfo: %w", err)
	}
	if mi.MemTotal == nil {
		return 0, fmt.Errorf("meminfo: MemTotal not reported")
	}
	total := *mi.MemTotal * 1024 // kB
	log.Tracef("TotalMemory: %v", total)
	return total, nil
}

// Usage returns the resident and locked memory of the process.
func (h *Host) Usage() (Usage, error) {
	p, err := h.fs.Proc(h.pid)
	if err != nil {
		return Usage{}, fmt.Errorf("proc %v: %w", h.pid, err)
	}
	s, err := p.NewStatus()
	if err != nil {
		return Usage{}, fmt.Errorf("proc %v status: %w", h.pid, err)
	}
	log.Tracef("Usage: pid %v rss %v locked %v", h.pid, s.VmRSS, s.VmLck)
	return Usage{
		Resident: s.VmRSS,
		Locked:   s.VmLck,
	}, nil
}

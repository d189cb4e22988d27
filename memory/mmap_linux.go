// +build linux

package memory

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// This is linux specific.

// MAP_LOCKED locks the pages as part of the mapping and MAP_POPULATE faults
// them in before mmap returns, so there is no window where the region is
// mapped but swappable or lazily backed.
const mmapFlags = unix.MAP_PRIVATE | unix.MAP_ANONYMOUS | unix.MAP_LOCKED |
	unix.MAP_POPULATE

// mmap allocates size bytes of locked, resident, anonymous memory.
func mmap(size uint64) ([]byte, error) {
	length := int(size)
	if length <= 0 || uint64(length) != size {
		return nil, fmt.Errorf("size exceeds address space: %v", size)
	}
	return unix.Mmap(-1, 0, length, unix.PROT_READ|unix.PROT_WRITE,
		mmapFlags)
}

// munmap returns a previously allocated mmap region back to the kernel.
func munmap(p []byte) error {
	return unix.Munmap(p)
}

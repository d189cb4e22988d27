// +build !linux

package memory

// mmap allocates size bytes using memory mapping.
// This stub returns an error on non-Linux platforms.
func mmap(size uint64) ([]byte, error) {
	return nil, ErrNotSupported
}

// munmap returns a previously allocated mmap region back to the kernel.
// This stub returns an error on non-Linux platforms.
func munmap(p []byte) error {
	return ErrNotSupported
}

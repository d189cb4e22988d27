package memory

import (
	"fmt"

	"github.com/inhies/go-bytesize"
)

// Region is a locked anonymous memory mapping.  A Region is owned by exactly
// one caller which must call Release once it is done with it.
type Region struct {
	buf   []byte
	size  uint64
	unmap func([]byte) error
}

// Acquire maps size bytes of anonymous memory and locks every page into
// physical memory as part of the same request.  size must be a non zero
// multiple of pageSize.
func Acquire(size, pageSize uint64) (*Region, error) {
	if size == 0 || pageSize == 0 || size%pageSize != 0 {
		return nil, &ConfigurationError{
			Reason: fmt.Sprintf("invalid region size %v for page "+
				"size %v", size, pageSize),
		}
	}

	log.Debugf("Acquire: mapping %v (%v pages)", bytesize.New(float64(size)),
		size/pageSize)

	buf, err := mmap(size)
	if err != nil {
		return nil, &AllocationError{Size: size, Err: err}
	}

	log.Debugf("Acquire: mapped and locked %v", bytesize.New(float64(size)))

	return &Region{
		buf:   buf,
		size:  size,
		unmap: munmap,
	}, nil
}

// Size returns the length of the region in bytes.  It returns 0 for a nil or
// never acquired region.
func (r *Region) Size() uint64 {
	if r == nil {
		return 0
	}
	return r.size
}

// Mapped reports whether the region is currently mapped.
func (r *Region) Mapped() bool {
	return r != nil && r.buf != nil
}

// WriteAt stores v at offset.
func (r *Region) WriteAt(offset uint64, v byte) error {
	if !r.Mapped() {
		return ErrReleased
	}
	// Never dereference outside the mapping, regardless of the caller.
	if offset >= uint64(len(r.buf)) {
		return ErrOutOfBounds
	}
	r.buf[offset] = v
	return nil
}

// ReadAt returns the byte stored at offset.
func (r *Region) ReadAt(offset uint64) (byte, error) {
	if !r.Mapped() {
		return 0, ErrReleased
	}
	if offset >= uint64(len(r.buf)) {
		return 0, ErrOutOfBounds
	}
	return r.buf[offset], nil
}

// Release unmaps the region.  It is a no-op on a nil, never acquired or
// already released region.  The region is considered released even when the
// OS refuses the unmap; the attempt is never repeated.
func (r *Region) Release() error {
	if !r.Mapped() {
		return nil
	}

	buf := r.buf
	r.buf = nil
	if r.unmap == nil {
		return nil
	}
	if err := r.unmap(buf); err != nil {
		return &ReleaseError{Size: r.size, Err: err}
	}

	log.Debugf("Release: unmapped %v", bytesize.New(float64(r.size)))

	return nil
}

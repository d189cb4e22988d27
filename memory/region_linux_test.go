// +build linux

package memory

import (
	"errors"
	"os"
	"testing"

	"golang.org/x/sys/unix"
)

func TestAcquireLocked(t *testing.T) {
	pageSize := uint64(os.Getpagesize())
	r, err := Acquire(pageSize, pageSize)
	if err != nil {
		// Locked memory is commonly restricted in containers.
		if errors.Is(err, unix.EPERM) || errors.Is(err, unix.EAGAIN) ||
			errors.Is(err, unix.ENOMEM) {
			t.Skipf("locked mappings unavailable: %v", err)
		}
		t.Fatal(err)
	}

	if r.Size() != pageSize {
		t.Fatalf("got size %v, want %v", r.Size(), pageSize)
	}

	// Anonymous mappings are zero filled.
	v, err := r.ReadAt(pageSize - 1)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0 {
		t.Fatalf("expected zero page, got %x", v)
	}
	if err := r.WriteAt(0, 0xff); err != nil {
		t.Fatal(err)
	}

	if err := r.Release(); err != nil {
		t.Fatal(err)
	}
	if err := r.Release(); err != nil {
		t.Fatal(err)
	}
}

func TestAcquireRefused(t *testing.T) {
	// An impossible mapping must surface as an AllocationError.
	pageSize := uint64(os.Getpagesize())
	size := (uint64(1) << 62) / pageSize * pageSize
	r, err := Acquire(size, pageSize)
	var ae *AllocationError
	if !errors.As(err, &ae) {
		r.Release()
		t.Fatalf("expected AllocationError, got %v", err)
	}
	if ae.Size != size {
		t.Fatalf("got size %v, want %v", ae.Size, size)
	}
}

package load

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

var ErrOutOfBounds = errors.New("offset out of bounds")

// Mode selects what the generator does with the region.
type Mode int

const (
	ModeDynamic Mode = iota // Randomized bursty access
	ModeStatic              // Hold the region without touching it
)

func (m Mode) String() string {
	switch m {
	case ModeDynamic:
		return "dynamic"
	case ModeStatic:
		return "static"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Buffer is the memory the generator operates on.
type Buffer interface {
	Size() uint64
	WriteAt(offset uint64, v byte) error
	ReadAt(offset uint64) (byte, error)
}

// AccessError is returned when a single access fails or reads back a
// different value than was written.
type AccessError struct {
	Offset uint64
	Wrote  byte
	Read   byte
	Err    error
}

func (a *AccessError) Error() string {
	if a.Err != nil {
		return fmt.Sprintf("access at offset %v: %v", a.Offset, a.Err)
	}
	return fmt.Sprintf("access at offset %v: wrote 0x%02x read 0x%02x",
		a.Offset, a.Wrote, a.Read)
}

func (a *AccessError) Unwrap() error {
	return a.Err
}

// Sleeper suspends for d or until ctx is done, whichever comes first.  It
// returns ctx.Err() when interrupted.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	to := time.NewTimer(d)
	defer to.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-to.C:
		return nil
	}
}

// Generator drives access traffic against a Buffer.
type Generator struct {
	buf   Buffer
	src   Source
	sleep Sleeper

	cycles   uint64 // Completed cycles
	accesses uint64 // Completed accesses
}

// NewGenerator returns a generator for buf.  A nil sleep uses Sleep.
func NewGenerator(buf Buffer, src Source, sleep Sleeper) *Generator {
	if sleep == nil {
		sleep = Sleep
	}
	return &Generator{
		buf:   buf,
		src:   src,
		sleep: sleep,
	}
}

// Stats returns the number of completed cycles and accesses.
func (g *Generator) Stats() (uint64, uint64) {
	return atomic.LoadUint64(&g.cycles), atomic.LoadUint64(&g.accesses)
}

// Start runs the generator in the provided mode until ctx is done.
func (g *Generator) Start(ctx context.Context, mode Mode) error {
	switch mode {
	case ModeStatic:
		return g.Idle(ctx)
	case ModeDynamic:
		return g.Run(ctx)
	}
	return fmt.Errorf("invalid mode: %v", mode)
}

// Idle blocks until ctx is done without touching the buffer.
func (g *Generator) Idle(ctx context.Context) error {
	log.Debugf("Idle: holding %v bytes", g.buf.Size())
	<-ctx.Done()
	log.Debugf("Idle: exit")
	return nil
}

// access writes a random byte at a random offset and reads it back.
func (g *Generator) access() error {
	size := g.buf.Size()
	offset := uint64(g.src.Int63n(int64(size)))
	v := byte(g.src.Intn(256))

	// The draw is already bounded; this protects against changes to it.
	if offset >= size {
		return &AccessError{Offset: offset, Err: ErrOutOfBounds}
	}

	if err := g.buf.WriteAt(offset, v); err != nil {
		return &AccessError{Offset: offset, Err: err}
	}
	r, err := g.buf.ReadAt(offset)
	if err != nil {
		return &AccessError{Offset: offset, Err: err}
	}
	if r != v {
		return &AccessError{Offset: offset, Wrote: v, Read: r}
	}

	atomic.AddUint64(&g.accesses, 1)
	return nil
}

// burst performs count accesses.  It stops early, between accesses, when ctx
// is done.
func (g *Generator) burst(ctx context.Context, count int) error {
	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := g.access(); err != nil {
			return err
		}
	}
	return nil
}

// Run performs bursty random access until ctx is done.  Cancellation is not
// an error.
func (g *Generator) Run(ctx context.Context) error {
	if g.buf.Size() == 0 {
		return &AccessError{Err: ErrOutOfBounds}
	}

	log.Debugf("Run: random access over %v bytes", g.buf.Size())
	defer func() {
		cycles, accesses := g.Stats()
		log.Debugf("Run: exit after %v cycles %v accesses", cycles,
			accesses)
	}()

	s := NewSchedule(g.src)
	for {
		c := s.Next()
		log.Tracef("Run: cycle %+v", c)

		if err := g.burst(ctx, c.Burst); err != nil {
			return filterCanceled(ctx, err)
		}
		if err := g.sleep(ctx, c.ShortPause); err != nil {
			return filterCanceled(ctx, err)
		}
		if err := g.burst(ctx, c.SecondaryBurst); err != nil {
			return filterCanceled(ctx, err)
		}
		if err := g.sleep(ctx, c.LongPause); err != nil {
			return filterCanceled(ctx, err)
		}

		atomic.AddUint64(&g.cycles, 1)
	}
}

// filterCanceled turns the interruption of ctx into a clean exit.
func filterCanceled(ctx context.Context, err error) error {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return nil
	}
	return err
}

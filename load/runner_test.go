package load

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testBuffer is a heap backed Buffer that records every access.
type testBuffer struct {
	data    []byte
	writes  []uint64
	reads   int
	corrupt bool // Flip bits on read
}

func newTestBuffer(size int) *testBuffer {
	return &testBuffer{data: make([]byte, size)}
}

func (b *testBuffer) Size() uint64 {
	return uint64(len(b.data))
}

func (b *testBuffer) WriteAt(offset uint64, v byte) error {
	if offset >= b.Size() {
		return ErrOutOfBounds
	}
	b.writes = append(b.writes, offset)
	b.data[offset] = v
	return nil
}

func (b *testBuffer) ReadAt(offset uint64) (byte, error) {
	if offset >= b.Size() {
		return 0, ErrOutOfBounds
	}
	b.reads++
	if b.corrupt {
		return ^b.data[offset], nil
	}
	return b.data[offset], nil
}

// cancelAfter returns a Sleeper that never sleeps and cancels after n calls.
func cancelAfter(n int, cancel context.CancelFunc, calls *int) Sleeper {
	return func(ctx context.Context, d time.Duration) error {
		*calls++
		if *calls >= n {
			cancel()
			return ctx.Err()
		}
		return nil
	}
}

func TestRunOffsetsInBounds(t *testing.T) {
	for _, size := range []int{1, 7, 4096} {
		buf := newTestBuffer(size)
		ctx, cancel := context.WithCancel(context.Background())
		var calls int
		g := NewGenerator(buf, rand.New(rand.NewSource(int64(size))),
			cancelAfter(2000, cancel, &calls))

		require.NoError(t, g.Run(ctx))
		cancel()

		require.NotEmpty(t, buf.writes)
		for _, offset := range buf.writes {
			require.Less(t, offset, buf.Size())
		}
		require.Equal(t, len(buf.writes), buf.reads)

		cycles, accesses := g.Stats()
		require.Equal(t, uint64(999), cycles)
		require.Equal(t, uint64(len(buf.writes)), accesses)
	}
}

func TestRunInterruptedDuringPause(t *testing.T) {
	const seed = 11
	buf := newTestBuffer(4096)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Interrupt during the first short pause.
	var calls int
	g := NewGenerator(buf, rand.New(rand.NewSource(seed)),
		cancelAfter(1, cancel, &calls))
	require.NoError(t, g.Run(ctx))

	// Only the first primary burst ran.  The generator draws the cycle
	// before any access so replay the schedule to learn its size.
	first := NewSchedule(rand.New(rand.NewSource(seed))).Next()
	require.Len(t, buf.writes, first.Burst)
	require.Equal(t, first.Burst, buf.reads)

	cycles, _ := g.Stats()
	require.Zero(t, cycles)
}

func TestRunInterruptedRealSleep(t *testing.T) {
	buf := newTestBuffer(4096)
	ctx, cancel := context.WithCancel(context.Background())
	g := NewGenerator(buf, rand.New(rand.NewSource(1)), nil)

	errC := make(chan error, 1)
	go func() {
		errC <- g.Run(ctx)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-errC:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not observe cancellation")
	}
}

func TestRunCanceledBeforeStart(t *testing.T) {
	buf := newTestBuffer(4096)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGenerator(buf, rand.New(rand.NewSource(1)), nil)
	require.NoError(t, g.Run(ctx))
	require.Empty(t, buf.writes)
}

// liar returns the upper bound it was asked for.
type liar struct{}

func (liar) Intn(n int) int       { return n - 1 }
func (liar) Int63n(n int64) int64 { return n }

func TestRunBoundsCheck(t *testing.T) {
	buf := newTestBuffer(16)
	g := NewGenerator(buf, liar{}, func(context.Context, time.Duration) error {
		return nil
	})

	err := g.Run(context.Background())
	var ae *AccessError
	require.True(t, errors.As(err, &ae), "got %v", err)
	require.True(t, errors.Is(err, ErrOutOfBounds))
	require.Equal(t, uint64(16), ae.Offset)
	require.Empty(t, buf.writes)
}

func TestRunReadBackMismatch(t *testing.T) {
	buf := newTestBuffer(16)
	buf.corrupt = true
	g := NewGenerator(buf, rand.New(rand.NewSource(1)), nil)

	err := g.Run(context.Background())
	var ae *AccessError
	require.True(t, errors.As(err, &ae), "got %v", err)
	require.Equal(t, ^ae.Wrote, ae.Read)
	require.Len(t, buf.writes, 1)
}

func TestRunEmptyBuffer(t *testing.T) {
	g := NewGenerator(newTestBuffer(0), rand.New(rand.NewSource(1)), nil)
	err := g.Run(context.Background())
	require.True(t, errors.Is(err, ErrOutOfBounds), "got %v", err)
}

func TestIdle(t *testing.T) {
	buf := newTestBuffer(4096)
	ctx, cancel := context.WithCancel(context.Background())
	g := NewGenerator(buf, rand.New(rand.NewSource(1)), nil)

	errC := make(chan error, 1)
	go func() {
		errC <- g.Start(ctx, ModeStatic)
	}()

	select {
	case err := <-errC:
		t.Fatalf("Idle returned before interrupt: %v", err)
	case <-time.After(10 * time.Millisecond):
	}
	cancel()

	require.NoError(t, <-errC)
	require.Empty(t, buf.writes)
	require.Zero(t, buf.reads)
}

func TestStartInvalidMode(t *testing.T) {
	g := NewGenerator(newTestBuffer(1), rand.New(rand.NewSource(1)), nil)
	require.Error(t, g.Start(context.Background(), Mode(42)))
}

func TestModeString(t *testing.T) {
	require.Equal(t, "dynamic", ModeDynamic.String())
	require.Equal(t, "static", ModeStatic.String())
	require.Equal(t, "mode(7)", Mode(7).String())
}

func TestSleep(t *testing.T) {
	require.NoError(t, Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	err := Sleep(ctx, time.Hour)
	require.True(t, errors.Is(err, context.Canceled))
	require.Less(t, int64(time.Since(start)), int64(time.Second))
}

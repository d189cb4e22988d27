// Package load generates synthetic memory access traffic against a locked
// region.
//
// Traffic is bursty on purpose: every cycle performs a primary burst of
// single byte write-then-read accesses, a short pause, a secondary burst and
// a long pause.  Cycles are drawn lazily from a Schedule so that tests can
// inject a seeded Source and never sleep.
package load

import (
	"time"
)

// Burst and pause bounds.  All bounds are inclusive.
const (
	MinBurst = 5
	MaxBurst = 20

	MinSecondaryBurst = 1
	MaxSecondaryBurst = 5

	MinShortPause = 10 * time.Millisecond
	MaxShortPause = 200 * time.Millisecond

	MinLongPause = 100 * time.Millisecond
	MaxLongPause = 1500 * time.Millisecond
)

// Source is a source of uniformly distributed random numbers.  A
// *math/rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
	Int63n(n int64) int64
}

// Cycle is one iteration of the dynamic access loop.
type Cycle struct {
	Burst          int           // Primary burst access count
	ShortPause     time.Duration // Pause after the primary burst
	SecondaryBurst int           // Secondary burst access count
	LongPause      time.Duration // Pause after the secondary burst
}

// Schedule is an infinite lazy sequence of cycles.
type Schedule struct {
	src Source
}

// NewSchedule returns a schedule that draws cycles from src.
func NewSchedule(src Source) *Schedule {
	return &Schedule{src: src}
}

// intn returns a uniform integer in [min, max].
func (s *Schedule) intn(min, max int) int {
	return min + s.src.Intn(max-min+1)
}

// duration returns a uniform duration in [min, max].
func (s *Schedule) duration(min, max time.Duration) time.Duration {
	return min + time.Duration(s.src.Int63n(int64(max-min)+1))
}

// Next returns the next cycle.  It never runs out.
func (s *Schedule) Next() Cycle {
	return Cycle{
		Burst:          s.intn(MinBurst, MaxBurst),
		ShortPause:     s.duration(MinShortPause, MaxShortPause),
		SecondaryBurst: s.intn(MinSecondaryBurst, MaxSecondaryBurst),
		LongPause:      s.duration(MinLongPause, MaxLongPause),
	}
}

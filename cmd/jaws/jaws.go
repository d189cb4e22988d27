package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/businessperformancetuning/jaws/host"
	"github.com/businessperformancetuning/jaws/load"
	"github.com/businessperformancetuning/jaws/memory"
	"github.com/dustin/go-humanize"
	"github.com/inhies/go-bytesize"
)

// querier answers host memory questions.
type querier interface {
	TotalMemory() (uint64, error)
	PageSize() uint64
	Usage() (host.Usage, error)
	LockLimit() (host.Limit, error)
}

// region is an acquired memory region.
type region interface {
	load.Buffer
	Release() error
}

func acquireRegion(size, pageSize uint64) (region, error) {
	r, err := memory.Acquire(size, pageSize)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Jaws owns the single memory region of the process for the duration of a
// run.
type Jaws struct {
	sync.Mutex // Protects out

	cfg  *config
	host querier
	out  io.Writer

	acquire func(size, pageSize uint64) (region, error)
	source  load.Source
	sleep   load.Sleeper

	size uint64 // Requested bytes, valid after sizing
}

func newJaws(cfg *config, q querier, out io.Writer) *Jaws {
	return &Jaws{
		cfg:     cfg,
		host:    q,
		out:     out,
		acquire: acquireRegion,
		source:  rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:   load.Sleep,
	}
}

// printf writes a status line.
func (j *Jaws) printf(format string, args ...interface{}) {
	j.Lock()
	defer j.Unlock()
	fmt.Fprintf(j.out, format, args...)
}

// checkLockLimit warns when the locked memory limit will refuse size.
func (j *Jaws) checkLockLimit(size uint64) {
	l, err := j.host.LockLimit()
	if err != nil {
		log.Debugf("Could not read locked memory limit: %v", err)
		return
	}
	if l.Allows(size) || os.Geteuid() == 0 {
		return
	}
	log.Warnf("Locked memory limit %v is below the requested %v, "+
		"allocation will likely fail (see ulimit -l)",
		humanize.IBytes(l.Current), humanize.IBytes(size))
}

// report prints the resident and locked usage of the process next to the
// requested size.
func (j *Jaws) report() {
	u, err := j.host.Usage()
	if err != nil {
		log.Warnf("Could not read memory utilization: %v", err)
		return
	}
	j.printf("Jaws Memory Utilization: %v (locked %v) / Requested: %v\n",
		bytesize.New(float64(u.Resident)),
		bytesize.New(float64(u.Locked)),
		bytesize.New(float64(j.size)))
}

// release releases r.  A failure is logged and otherwise ignored.
func (j *Jaws) release(r region) {
	if err := r.Release(); err != nil {
		log.Errorf("Error releasing buffer: %v", err)
		return
	}
	j.printf("Memory buffer released.\n")
}

// run sizes, acquires and exercises the region until ctx is done.  An
// interruption at any point is not an error.
func (j *Jaws) run(ctx context.Context) error {
	pageSize := j.host.PageSize()
	total, err := j.host.TotalMemory()
	if err != nil {
		return fmt.Errorf("could not determine total memory: %w", err)
	}
	size, err := memory.ComputeSize(j.cfg.percentage, total, pageSize)
	if err != nil {
		return err
	}
	j.size = size

	log.Infof("Total memory %v, page size %v", humanize.IBytes(total),
		humanize.IBytes(pageSize))
	log.Infof("Consuming %v%%: %v (%v pages) mode %v", j.cfg.percentage,
		humanize.IBytes(size), humanize.Comma(int64(size/pageSize)),
		j.cfg.mode)

	j.checkLockLimit(size)

	if ctx.Err() != nil {
		log.Infof("Interrupted before allocation")
		return nil
	}

	r, err := j.acquire(size, pageSize)
	if err != nil {
		return err
	}
	defer j.release(r)

	if ctx.Err() != nil {
		log.Infof("Interrupted during allocation")
		return nil
	}

	j.report()

	g := load.NewGenerator(r, j.source, j.sleep)
	if j.cfg.mode == load.ModeStatic {
		j.printf("Static buffer created.  Press Ctrl-C to exit.\n")
	} else {
		j.printf("Starting random memory access. Press Ctrl+C to exit.\n")
	}
	err = g.Start(ctx, j.cfg.mode)

	cycles, accesses := g.Stats()
	log.Debugf("Access cycles %v accesses %v", humanize.Comma(int64(cycles)),
		humanize.Comma(int64(accesses)))

	return err
}

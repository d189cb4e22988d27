package main

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"
)

// interruptListener cancels the run when a signal arrives on sigC.  It
// returns once either happened.
func (j *Jaws) interruptListener(ctx context.Context, cancel context.CancelFunc, sigC <-chan os.Signal) error {
	select {
	case sig := <-sigC:
		cancel()
		j.printf("\nCtrl+C detected. Exiting...\n")
		log.Infof("Received signal (%v).  Shutting down...", sig)
	case <-ctx.Done():
	}
	return nil
}

// execute runs jaws until it fails or a signal arrives on sigC.  The region
// is released before execute returns.
func (j *Jaws) execute(parent context.Context, sigC <-chan os.Signal) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error {
		return j.interruptListener(ctx, cancel, sigC)
	})
	g.Go(func() error {
		defer cancel()
		return j.run(ctx)
	})
	return g.Wait()
}

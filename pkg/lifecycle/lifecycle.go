// Package lifecycle coordinates cancellation and cleanup for a single
// command invocation.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Coordinator owns the context of a run and the cleanup hooks that must
// execute when the run ends, whether it completes or is interrupted.
type Coordinator struct {
	ctx        context.Context
	cancel     context.CancelFunc
	stop       context.CancelFunc
	shutdownWg sync.WaitGroup
	once       sync.Once
}

// New creates a Coordinator whose context is cancelled by SIGINT, SIGTERM,
// cancellation of parent, or Shutdown.
func New(parent context.Context) *Coordinator {
	sigCtx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(sigCtx)
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
		stop:   stop,
	}
}

// Context returns the run context.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnShutdown registers fn to run once the run context is done.
// Hooks run concurrently with one another.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdownWg.Go(func() {
		<-c.ctx.Done()
		fn()
	})
}

// Shutdown cancels the run context and waits for shutdown hooks to complete
// within timeout. Calling Shutdown more than once is safe.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.once.Do(func() {
		c.cancel()
		c.stop()
	})

	done := make(chan struct{})
	go func() {
		c.shutdownWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}

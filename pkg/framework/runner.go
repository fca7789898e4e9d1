package framework

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/golang/glog"
)

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string {
	return r.name
}

// NamedRun wraps a Runnable with a name.
func NamedRun(name string, runnable Runnable) Runnable {
	return &namedRunnable{name: name, Runnable: runnable}
}

// Runner runs Runnables together. The first one returning stops all
// others, as the link is unusable once any of its parts has stopped.
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc
	count  int
	errCh  chan error
	exitCh chan struct{}
}

// NewRunner creates a runner with a default background context.
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a runner with a specified context.
func NewRunnerWith(ctx context.Context) *Runner {
	r := &Runner{exitCh: make(chan struct{})}
	r.ctx, r.cancel = context.WithCancel(ctx)
	return r
}

// Context returns the context runners are started with.
func (r *Runner) Context() context.Context {
	return r.ctx
}

// HandleSignals stops runners on CtrlC and SIGTERM, and forces Wait to
// return on a second signal.
func (r *Runner) HandleSignals() *Runner {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		glog.Info("stop requested")
		r.cancel()
		<-sigCh
		glog.Error("stop requested again, force exit")
		close(r.exitCh)
	}()
	return r
}

// Go spawns Runnables.
func (r *Runner) Go(runners ...Runnable) *Runner {
	if r.errCh == nil {
		r.errCh = make(chan error, len(runners))
	}
	for _, runner := range runners {
		name := strconv.Itoa(r.count)
		if named, ok := runner.(Named); ok {
			name = named.Name()
		}
		r.count++
		go func(runner Runnable, name string) {
			glog.V(4).Infof("Runner[%s] started", name)
			err := runner.Run(r.ctx)
			glog.V(4).Infof("Runner[%s] stopped: %v", name, err)
			r.cancel()
			r.errCh <- err
		}(runner, name)
	}
	return r
}

// Stop cancels all runners.
func (r *Runner) Stop() {
	r.cancel()
}

// Wait waits until all Runnables stop and aggregates their errors.
func (r *Runner) Wait() error {
	var errs AggregatedError
	for i := 0; i < r.count; i++ {
		select {
		case <-r.exitCh:
			return errors.New("forced exit")
		case err := <-r.errCh:
			errs.Add(err)
		}
	}
	return errs.Aggregate()
}

// RunWithCloser runs runnable and closes closer once ctx is done, which
// is how a runnable blocked in IO gets unblocked.
func RunWithCloser(ctx context.Context, closer io.Closer, runnable Runnable) error {
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-subCtx.Done()
		closer.Close()
	}()
	return runnable.Run(subCtx)
}

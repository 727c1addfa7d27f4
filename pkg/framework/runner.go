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

// ErrForcedExit is returned by Wait when a second stop signal arrives.
var ErrForcedExit = errors.New("forced exit")

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string { return r.name }

// NamedRun gives a Runnable a name for logs.
func NamedRun(name string, r Runnable) Runnable {
	return &namedRunnable{Runnable: r, name: name}
}

// Runner starts Runnables in goroutines and collects their errors.
type Runner struct {
	Context context.Context

	count  int
	errCh  chan error
	exitCh chan struct{}
}

// NewRunner creates a Runner with the background context.
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a Runner with ctx.
func NewRunnerWith(ctx context.Context) *Runner {
	return &Runner{
		Context: ctx,
		errCh:   make(chan error),
		exitCh:  make(chan struct{}),
	}
}

// HandleSignals cancels the context on SIGINT or SIGTERM. A second signal
// makes Wait return immediately.
func (r *Runner) HandleSignals() *Runner {
	ctx, cancel := context.WithCancel(r.Context)
	r.Context = ctx
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		glog.Info("stop requested")
		cancel()
		<-sigCh
		glog.Error("stop requested again, force exit")
		close(r.exitCh)
	}()
	return r
}

// Go starts runnables with the Runner context.
func (r *Runner) Go(runnables ...Runnable) *Runner {
	return r.GoWith(r.Context, runnables...)
}

// GoWith starts runnables with ctx.
func (r *Runner) GoWith(ctx context.Context, runnables ...Runnable) *Runner {
	for _, runnable := range runnables {
		name := strconv.Itoa(r.count)
		if named, ok := runnable.(Named); ok {
			name = named.Name()
		}
		r.count++
		go func(runnable Runnable, name string) {
			glog.V(4).Infof("runner %s started", name)
			err := runnable.Run(ctx)
			glog.V(4).Infof("runner %s stopped: %v", name, err)
			r.errCh <- err
		}(runnable, name)
	}
	return r
}

// Wait waits for all runnables and aggregates their errors. Cancellation
// is not an error.
func (r *Runner) Wait() error {
	var errs AggregatedError
	for ; r.count > 0; r.count-- {
		select {
		case <-r.exitCh:
			return ErrForcedExit
		case err := <-r.errCh:
			if !errors.Is(err, context.Canceled) {
				errs.Add(err)
			}
		}
	}
	return errs.Aggregate()
}

// RunWithContextCancel runs fn which doesn't take a context. onCancel is
// invoked when ctx is done before fn returns, and must make fn return.
func RunWithContextCancel(ctx context.Context, onCancel func(), fn func() error) error {
	errCh := make(chan error, 1)
	go func() { errCh <- fn() }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		if onCancel != nil {
			onCancel()
		}
		<-errCh
		return ctx.Err()
	}
}

// RunWithContextCloser runs fn and closes closer when ctx is done or fn
// returns, whichever happens first.
func RunWithContextCloser(ctx context.Context, closer io.Closer, fn func() error) error {
	closed := false
	err := RunWithContextCancel(ctx, func() {
		closer.Close()
		closed = true
	}, fn)
	if !closed {
		closer.Close()
	}
	return err
}

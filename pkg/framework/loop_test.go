package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testMsg struct {
	val int
}

func (m *testMsg) NewMessage() Message { return &testMsg{} }

type recorder struct {
	trace []string
}

func (r *recorder) ctl(name string) Controller {
	return ControlFunc(func(cc ControlContext) error {
		r.trace = append(r.trace, name)
		return nil
	})
}

func TestLoopPriorityOrder(t *testing.T) {
	var r recorder
	l := NewLoop()
	l.AddController(PrLvPostProc, r.ctl("post"))
	l.AddController(PrLvSense, r.ctl("sense"))
	l.AddController(PrLvControl, r.ctl("control.0"), r.ctl("control.1"))
	l.PostRunAt(PrLvSense, r.ctl("hook"))
	l.Iterate(context.Background())
	require.Equal(t, []string{"sense", "hook", "control.0", "control.1", "post"}, r.trace)

	// hooks are one-shot
	r.trace = nil
	l.Iterate(context.Background())
	require.Equal(t, []string{"sense", "control.0", "control.1", "post"}, r.trace)
}

func TestLoopMessages(t *testing.T) {
	l := NewLoop()
	var seenLater []int
	l.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		cc.Messages().Each(func(msg Message) bool {
			m := msg.(*testMsg)
			if m.val == 2 {
				cc.Messages().Add(&testMsg{val: 20})
			}
			return m.val%2 == 0
		})
		return nil
	}))
	l.AddController(PrLvPostProc, ControlFunc(func(cc ControlContext) error {
		cc.Messages().Each(func(msg Message) bool {
			seenLater = append(seenLater, msg.(*testMsg).val)
			return true
		})
		require.Zero(t, cc.Messages().Len())
		return nil
	}))
	for i := 1; i <= 4; i++ {
		l.PostMessage(&testMsg{val: i})
	}
	l.Iterate(context.Background())
	require.Equal(t, []int{1, 3, 20}, seenLater)

	// nothing carries over to the next iteration
	seenLater = nil
	l.Iterate(context.Background())
	require.Empty(t, seenLater)
}

func TestLoopPostDuringIteration(t *testing.T) {
	l := NewLoop()
	var got []int
	l.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		cc.Messages().Each(func(msg Message) bool {
			got = append(got, msg.(*testMsg).val)
			return true
		})
		if len(got) == 0 {
			cc.PostMessage(&testMsg{val: 7})
		}
		return nil
	}))
	l.Iterate(context.Background())
	require.Empty(t, got)
	l.Iterate(context.Background())
	require.Equal(t, []int{7}, got)
}

type triggerRunnable struct{}

func (r *triggerRunnable) Run(ctx context.Context) error {
	lc := LoopCtlFrom(ctx)
	lc.PostMessage(&testMsg{val: 1})
	lc.TriggerNext()
	<-ctx.Done()
	return ctx.Err()
}

func TestLoopRunTriggered(t *testing.T) {
	l := NewLoop()
	l.Interval = time.Hour
	got := make(chan int, 1)
	l.AddRunnable(&triggerRunnable{})
	l.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		cc.Messages().Each(func(msg Message) bool {
			got <- msg.(*testMsg).val
			return true
		})
		return nil
	}))
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()
	select {
	case v := <-got:
		require.Equal(t, 1, v)
	case <-time.After(time.Second):
		t.Fatal("loop not triggered")
	}
	cancel()
	require.Equal(t, context.Canceled, <-errCh)
}

func TestRunnerWait(t *testing.T) {
	boom := errors.New("boom")
	r := NewRunner()
	r.Go(
		runnableFunc(func(context.Context) error { return nil }),
		NamedRun("fail", runnableFunc(func(context.Context) error { return boom })),
		runnableFunc(func(context.Context) error { return context.Canceled }),
	)
	err := r.Wait()
	require.Error(t, err)
	require.Equal(t, []error{boom}, err.(*AggregatedError).Errors)
	require.NoError(t, NewRunner().Wait())
}

type runnableFunc func(context.Context) error

func (f runnableFunc) Run(ctx context.Context) error { return f(ctx) }

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestRunWithContextCloser(t *testing.T) {
	closed := 0
	closer := closerFunc(func() error { closed++; return nil })
	require.NoError(t, RunWithContextCloser(context.Background(), closer, func() error { return nil }))
	require.Equal(t, 1, closed)

	ctx, cancel := context.WithCancel(context.Background())
	unblock := make(chan struct{})
	closer = closerFunc(func() error { closed++; close(unblock); return nil })
	cancel()
	err := RunWithContextCloser(ctx, closer, func() error {
		<-unblock
		return errors.New("closed")
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 2, closed)
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())
	errs.Add(errors.New("a"))
	require.EqualError(t, errs.Aggregate(), "a")
	errs.Add(errors.New("b"), nil)
	require.EqualError(t, errs.Aggregate(), "multiple errors: a; b")
}

package framework

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is the iteration period when nothing triggers the loop.
const DefaultInterval = 100 * time.Millisecond

// Loop runs controllers cooperatively: in every iteration the controllers
// run one after another in a single goroutine, ordered by priority level.
// Runnables run in their own goroutines and talk to the loop through
// PostMessage and TriggerNext.
type Loop struct {
	Interval time.Duration

	levels    [PriorityLevels]level
	runnables []Runnable

	lock    sync.Mutex
	pending []Message
	wakeCh  chan struct{}
}

type level struct {
	controllers []Controller

	lock  sync.Mutex
	hooks []Controller
}

type loopKey struct{}

// LoopCtlFrom returns the LoopControl from the context passed to
// runnables and controllers.
func LoopCtlFrom(ctx context.Context) LoopControl {
	return ctx.Value(loopKey{}).(LoopControl)
}

// CtlCtxFrom returns the ControlContext of the running iteration.
func CtlCtxFrom(ctx context.Context) ControlContext {
	return ctx.Value(loopKey{}).(ControlContext)
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{
		Interval: DefaultInterval,
		wakeCh:   make(chan struct{}, 1),
	}
}

// Add installs LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController adds controllers at a priority level. Controllers which are
// also Runnable are started with the loop.
func (l *Loop) AddController(priorityLevel int, ctls ...Controller) *Loop {
	lv := &l.levels[priorityLevel]
	for _, ctl := range ctls {
		lv.controllers = append(lv.controllers, ctl)
		if r, ok := ctl.(Runnable); ok {
			l.runnables = append(l.runnables, r)
		}
	}
	return l
}

// AddRunnable adds runnables started with the loop.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runnables = append(l.runnables, runnables...)
	return l
}

// Run implements Runnable.
func (l *Loop) Run(ctx context.Context) error {
	if l.wakeCh == nil {
		l.wakeCh = make(chan struct{}, 1)
	}
	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	runner := NewRunnerWith(context.WithValue(ctx, loopKey{}, LoopControl(l)))
	runner.Go(l.runnables...)
	defer func() {
		if err := runner.Wait(); err != nil {
			glog.Errorf("loop runners: %v", err)
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-l.wakeCh:
		}
		l.Iterate(ctx)
	}
}

// RunOrFail runs the loop from main and exits on error.
func (l *Loop) RunOrFail() {
	if err := l.Run(context.Background()); err != nil && err != context.Canceled {
		log.Fatalln(err)
	}
}

// PostMessage implements LoopControl.
func (l *Loop) PostMessage(msg Message) {
	l.lock.Lock()
	l.pending = append(l.pending, msg)
	l.lock.Unlock()
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	if l.wakeCh == nil {
		return
	}
	select {
	case l.wakeCh <- struct{}{}:
	default:
	}
}

// PostRunAt implements LoopControl.
func (l *Loop) PostRunAt(priorityLevel int, hooks ...Controller) {
	lv := &l.levels[priorityLevel]
	lv.lock.Lock()
	lv.hooks = append(lv.hooks, hooks...)
	lv.lock.Unlock()
}

// Iterate runs a single iteration with the messages posted so far.
func (l *Loop) Iterate(ctx context.Context) {
	it := &iteration{Loop: l, time: time.Now()}
	l.lock.Lock()
	it.inbox.msgs, l.pending = l.pending, nil
	l.lock.Unlock()
	it.ctx = context.WithValue(ctx, loopKey{}, it)
	for i := range l.levels {
		it.priorityLevel = i
		lv := &l.levels[i]
		it.run(lv.controllers)
		lv.lock.Lock()
		hooks := lv.hooks
		lv.hooks = nil
		lv.lock.Unlock()
		it.run(hooks)
	}
}

type iteration struct {
	*Loop
	ctx           context.Context
	time          time.Time
	priorityLevel int
	inbox         Inbox
}

func (it *iteration) Context() context.Context { return it.ctx }
func (it *iteration) Time() time.Time          { return it.time }
func (it *iteration) PriorityLevel() int       { return it.priorityLevel }
func (it *iteration) Messages() *Inbox         { return &it.inbox }

func (it *iteration) run(ctls []Controller) {
	for _, ctl := range ctls {
		if err := ctl.Control(it); err != nil {
			glog.Errorf("controller error at level %d: %v", it.priorityLevel, err)
		}
	}
}

// Package orchestrator sequences peripheral tests: it owns the queue of
// requested test identifiers, runs them strictly one at a time, and collects
// their outcomes in completion order.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/techbench/diagstation/internal/diagtest"
)

var (
	// ErrRunInProgress is returned when a run is requested while another is
	// still executing. Only one test run may be in flight.
	ErrRunInProgress = errors.New("test run already in progress")
	// ErrQueueEmpty is returned when a run is requested with nothing queued.
	ErrQueueEmpty = errors.New("test queue is empty")
)

// State is the orchestrator's lifecycle position.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// EventType classifies run progress notifications.
type EventType int

const (
	EventTestStarted EventType = iota
	EventTestSkipped
	EventTestCompleted
	EventRunFinished
)

// Event is one progress notification delivered to the observer.
type Event struct {
	Type    EventType
	TestID  diagtest.ID
	Outcome *diagtest.Outcome
	Reason  string
}

// Observer receives run events. It is called from the run goroutine; the
// caller decides how to marshal events onto its own loop.
type Observer func(Event)

// Factory builds a fresh test module instance for one run.
type Factory func() diagtest.Module

// Orchestrator holds the pending queue and recorded outcomes. All state is
// owned here and exposed through query methods only.
type Orchestrator struct {
	log      *log.Helper
	observer Observer

	mu        sync.Mutex
	state     State
	queue     []diagtest.ID
	outcomes  []diagtest.Outcome
	factories map[diagtest.ID]Factory
}

// New builds an orchestrator with an empty registry.
func New(logger log.Logger, observer Observer) *Orchestrator {
	return &Orchestrator{
		log:       log.NewHelper(log.With(logger, "module", "orchestrator")),
		observer:  observer,
		factories: make(map[diagtest.ID]Factory),
	}
}

// Register installs the factory for a test identifier.
func (o *Orchestrator) Register(id diagtest.ID, f Factory) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.factories[id] = f
}

// Enqueue appends test identifiers to the pending queue, preserving request
// order and dropping duplicates already queued.
func (o *Orchestrator) Enqueue(ids ...diagtest.ID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, id := range ids {
		queued := false
		for _, q := range o.queue {
			if q == id {
				queued = true
				break
			}
		}
		if !queued {
			o.queue = append(o.queue, id)
		}
	}
}

// State reports whether a run is in flight.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Pending returns a copy of the queued identifiers.
func (o *Orchestrator) Pending() []diagtest.ID {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]diagtest.ID, len(o.queue))
	copy(out, o.queue)
	return out
}

// Outcomes returns a copy of the outcomes recorded so far, in completion
// order.
func (o *Orchestrator) Outcomes() []diagtest.Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]diagtest.Outcome, len(o.outcomes))
	copy(out, o.outcomes)
	return out
}

// Reset clears recorded outcomes and the pending queue. Rejected while a run
// is in flight.
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == Running {
		return ErrRunInProgress
	}
	o.queue = nil
	o.outcomes = nil
	return nil
}

// Run drains the queue, executing one test at a time, and returns the
// outcomes recorded during this run. A second concurrent call fails with
// ErrRunInProgress; an empty queue fails with ErrQueueEmpty. A module whose
// initialization fails is skipped and the run continues; context
// cancellation abandons the remaining queue.
func (o *Orchestrator) Run(ctx context.Context) ([]diagtest.Outcome, error) {
	o.mu.Lock()
	if o.state == Running {
		o.mu.Unlock()
		return nil, ErrRunInProgress
	}
	if len(o.queue) == 0 {
		o.mu.Unlock()
		return nil, ErrQueueEmpty
	}
	o.state = Running
	start := len(o.outcomes)
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.state = Idle
		o.mu.Unlock()
		o.emit(Event{Type: EventRunFinished})
	}()

	for {
		if err := ctx.Err(); err != nil {
			o.mu.Lock()
			dropped := len(o.queue)
			o.queue = nil
			o.mu.Unlock()
			o.log.Warnf("run cancelled with %d tests pending", dropped)
			break
		}

		id, ok := o.dequeue()
		if !ok {
			break
		}
		o.runOne(ctx, id)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]diagtest.Outcome, len(o.outcomes)-start)
	copy(out, o.outcomes[start:])
	return out, nil
}

func (o *Orchestrator) dequeue() (diagtest.ID, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.queue) == 0 {
		return "", false
	}
	id := o.queue[0]
	o.queue = o.queue[1:]
	return id, true
}

// runOne executes a single test module through its full lifecycle. Nothing
// escapes it: initialization failures skip the test, execution failures and
// panics become error results, and the run advances either way.
func (o *Orchestrator) runOne(ctx context.Context, id diagtest.ID) {
	o.mu.Lock()
	factory, known := o.factories[id]
	o.mu.Unlock()

	if !known {
		o.log.Warnf("unknown test %q, skipping", id)
		o.emit(Event{Type: EventTestSkipped, TestID: id, Reason: "unknown test identifier"})
		return
	}

	mod := factory()
	defer func() {
		if err := mod.Cleanup(); err != nil {
			o.log.Warnf("cleanup %s: %v", id, err)
		}
	}()

	if err := mod.Initialize(ctx); err != nil {
		o.log.Warnf("initialize %s: %v", id, err)
		o.record(diagtest.Outcome{Result: mod.Result(), Formatted: mod.FormattedResult()})
		o.emit(Event{Type: EventTestSkipped, TestID: id, Reason: err.Error()})
		return
	}

	o.emit(Event{Type: EventTestStarted, TestID: id})

	outcome := o.execute(ctx, id, mod)
	o.record(outcome)
	o.emit(Event{Type: EventTestCompleted, TestID: id, Outcome: &outcome})
}

func (o *Orchestrator) execute(ctx context.Context, id diagtest.ID, mod diagtest.Module) (outcome diagtest.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Errorf("test %s panicked: %v", id, r)
			res := diagtest.Result{
				ID:      id,
				Message: "test crashed",
				Error:   fmt.Sprintf("panic: %v", r),
			}
			outcome = diagtest.Outcome{
				Result:    res,
				Formatted: fmt.Sprintf("%s Test: FAIL\nError: %s", id, res.Error),
			}
		}
	}()

	if err := mod.Execute(ctx); err != nil {
		res := diagtest.Result{ID: id, Message: "test execution failed", Error: err.Error()}
		return diagtest.Outcome{
			Result:    res,
			Formatted: fmt.Sprintf("%s Test: FAIL\nError: %s", id, err.Error()),
		}
	}

	return diagtest.Outcome{Result: mod.Result(), Formatted: mod.FormattedResult()}
}

func (o *Orchestrator) record(outcome diagtest.Outcome) {
	o.mu.Lock()
	o.outcomes = append(o.outcomes, outcome)
	o.mu.Unlock()
}

func (o *Orchestrator) emit(ev Event) {
	if o.observer != nil {
		o.observer(ev)
	}
}

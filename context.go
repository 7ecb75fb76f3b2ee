package strata

import (
	"context"
	"reflect"
	"sync"
)

// UnknownResultType is the result-type tag carried by a context that has not
// been initialized for an execution yet.
const UnknownResultType = "unknown"

// VoidResult marks executions that produce no result value.
type VoidResult struct{}

// Context is the per-execution carrier threaded through every strategy in a
// pipeline. It holds the cancellation signal, the execution mode, a typed
// property bag, and the resilience events reported during the execution.
//
// Contract:
//   - Ownership: a Context is mutated only by the pipeline and its strategies.
//     It must not be retained past the execution it was acquired for.
//   - Concurrency: the event list is safe for concurrent appends (deferred
//     transition hooks may report while the execution continues); everything
//     else is single-goroutine.
//   - A strategy that replaces the cancellation signal must restore the
//     previous one on every exit path.
type Context struct {
	cancellation  context.Context
	isSynchronous bool
	resultType    string
	isVoid        bool
	initialized   bool
	props         Properties

	eventsMu sync.Mutex
	events   []ReportedResilienceEvent
}

func newContext() *Context {
	rc := &Context{}
	rc.reset()
	return rc
}

// Cancellation returns the cancellation signal for the current execution.
func (rc *Context) Cancellation() context.Context {
	return rc.cancellation
}

// SetCancellation replaces the cancellation signal. Callers must restore the
// previous signal before returning, on every exit path.
func (rc *Context) SetCancellation(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	rc.cancellation = ctx
}

// IsSynchronous reports whether the execution entered through a synchronous
// entry point.
func (rc *Context) IsSynchronous() bool {
	return rc.isSynchronous
}

// IsInitialized reports whether Initialize has been called for this
// execution.
func (rc *Context) IsInitialized() bool {
	return rc.initialized
}

// ResultType returns the name of the static result type of the current
// execution, or UnknownResultType before initialization.
func (rc *Context) ResultType() string {
	return rc.resultType
}

// IsVoid reports whether the current execution produces no result.
func (rc *Context) IsVoid() bool {
	return rc.isVoid
}

// Properties returns the typed property bag for this execution.
func (rc *Context) Properties() *Properties {
	return &rc.props
}

// AddResilienceEvent appends an event to the execution's event list.
func (rc *Context) AddResilienceEvent(evt ReportedResilienceEvent) {
	rc.eventsMu.Lock()
	rc.events = append(rc.events, evt)
	rc.eventsMu.Unlock()
}

// ResilienceEvents returns a snapshot of the events reported so far, in
// report order.
func (rc *Context) ResilienceEvents() []ReportedResilienceEvent {
	rc.eventsMu.Lock()
	defer rc.eventsMu.Unlock()
	out := make([]ReportedResilienceEvent, len(rc.events))
	copy(out, rc.events)
	return out
}

func (rc *Context) eventCount() int {
	rc.eventsMu.Lock()
	defer rc.eventsMu.Unlock()
	return len(rc.events)
}

func (rc *Context) reset() {
	rc.cancellation = context.Background()
	rc.isSynchronous = false
	rc.resultType = UnknownResultType
	rc.isVoid = false
	rc.initialized = false
	rc.props.clear()
	rc.events = rc.events[:0]
}

// Initialize prepares rc for an execution producing T. It records the result
// type tag, flags void executions, and stores the execution mode.
func Initialize[T any](rc *Context, synchronous bool) {
	rc.resultType = reflect.TypeFor[T]().String()
	_, rc.isVoid = any(*new(T)).(VoidResult)
	rc.initialized = true
	rc.isSynchronous = synchronous
}

var contextPool = sync.Pool{
	New: func() any { return newContext() },
}

// AcquireContext returns a Context from the process-wide pool with its
// cancellation set to ctx (background when nil). The returned context is
// otherwise at defaults: uninitialized, UnknownResultType, empty properties
// and events, synchronous=false.
func AcquireContext(ctx context.Context) *Context {
	rc := contextPool.Get().(*Context)
	if ctx != nil {
		rc.cancellation = ctx
	}
	return rc
}

// ReleaseContext resets rc to defaults and returns it to the pool. A
// subsequent AcquireContext may return the same instance. Releasing a nil
// context panics.
func ReleaseContext(rc *Context) {
	if rc == nil {
		panic("strata: ReleaseContext called with nil context")
	}
	rc.reset()
	contextPool.Put(rc)
}

// Package timer provides a cycle-driven event scheduler that serves as the
// interpreter's timer collaborator.
package timer

import (
	"container/heap"
	"math"
)

// Register indices.
const (
	// RegNowLow and RegNowHigh read the current cycle count.
	RegNowLow  uint32 = 0
	RegNowHigh uint32 = 1
	// RegPending reads the number of scheduled events.
	RegPending uint32 = 2
	// RegNextEvent reads the signed distance to the earliest event, or 0
	// when nothing is scheduled or a hold is active. Writing a smaller
	// distance skips time: every pending event moves closer by the
	// difference.
	RegNextEvent uint32 = 4
)

// Handler is called when an event fires.
type Handler func(now uint64)

type event struct {
	id      int
	name    string
	at      uint64
	handler Handler
	index   int
}

type eventQueue []*event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].at == q[j].at {
		return q[i].id < q[j].id
	}
	return q[i].at < q[j].at
}

func (q eventQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *eventQueue) Push(x any) {
	e := x.(*event)
	e.index = len(*q)
	*q = append(*q, e)
}

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*q = old[:n-1]
	return e
}

// Timer schedules events in CPU cycles.
type Timer struct {
	now     uint64
	nextID  int
	queue   eventQueue
	byName  map[string]*event
	onClock []func(cycles uint32)
	holds   []func() bool
}

// New creates an empty Timer.
func New() *Timer {
	return &Timer{byName: make(map[string]*event)}
}

// Now returns the current cycle count.
func (t *Timer) Now() uint64 {
	return t.now
}

// OnClock registers a function called with every batch of elapsed cycles,
// before any event that became due fires.
func (t *Timer) OnClock(fn func(cycles uint32)) {
	t.onClock = append(t.onClock, fn)
}

// Hold registers a condition that blocks time skipping while it reports
// true, for example while an interrupt is already waiting to be taken.
func (t *Timer) Hold(fn func() bool) {
	t.holds = append(t.holds, fn)
}

func (t *Timer) held() bool {
	for _, fn := range t.holds {
		if fn() {
			return true
		}
	}
	return false
}

// Schedule arranges for handler to run delay cycles from now. Scheduling a
// name that is already pending replaces the earlier event.
func (t *Timer) Schedule(name string, delay uint64, handler Handler) {
	t.Cancel(name)

	e := &event{
		id:      t.nextID,
		name:    name,
		at:      t.now + delay,
		handler: handler,
	}
	t.nextID++
	heap.Push(&t.queue, e)
	t.byName[name] = e
}

// Cancel removes a pending event.
func (t *Timer) Cancel(name string) {
	e, ok := t.byName[name]
	if !ok {
		return
	}
	heap.Remove(&t.queue, e.index)
	delete(t.byName, name)
}

// Pending reports whether an event with the given name is scheduled.
func (t *Timer) Pending(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Clock advances time and fires every event that became due.
func (t *Timer) Clock(cycles uint32) {
	t.now += uint64(cycles)
	for _, fn := range t.onClock {
		fn(cycles)
	}

	for len(t.queue) > 0 && t.queue[0].at <= t.now {
		e := heap.Pop(&t.queue).(*event)
		delete(t.byName, e.name)
		e.handler(t.now)
	}
}

// Read32 reads a timer register.
func (t *Timer) Read32(index uint32) uint32 {
	switch index {
	case RegNowLow:
		return uint32(t.now)
	case RegNowHigh:
		return uint32(t.now >> 32)
	case RegPending:
		return uint32(len(t.queue))
	case RegNextEvent:
		if t.held() {
			return 0
		}
		return uint32(t.nextEvent())
	default:
		return 0
	}
}

// Write32 writes a timer register.
func (t *Timer) Write32(index uint32, value uint32) {
	if index != RegNextEvent || len(t.queue) == 0 || t.held() {
		return
	}

	delay := int64(int32(value))
	if delay < 0 {
		delay = 0
	}
	skip := int64(t.queue[0].at-t.now) - delay
	if skip <= 0 {
		return
	}
	for _, e := range t.queue {
		e.at -= uint64(skip)
	}
}

func (t *Timer) nextEvent() int32 {
	if len(t.queue) == 0 {
		return 0
	}
	d := t.queue[0].at - t.now
	if d > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(d)
}

// Reset drops every event and returns time to zero. Clock listeners and
// holds stay registered.
func (t *Timer) Reset() {
	t.now = 0
	t.queue = nil
	t.byName = make(map[string]*event)
}

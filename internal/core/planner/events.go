package planner

// EventKind names a scheduling milestone.
type EventKind string

const (
	EventPhaseStart    EventKind = "phase_start"
	EventPhaseEnd      EventKind = "phase_end"
	EventSlotCommitted EventKind = "slot_committed"
	EventSlotMissed    EventKind = "slot_missed"
	EventDayDone       EventKind = "day_done"
)

// Event is emitted by the scheduler as it walks a day.
type Event struct {
	Kind       EventKind
	Day        int
	Phase      Phase
	Slot       string
	Clock      float64
	LocationID string
	Remaining  float64
}

// Observer receives scheduling events. Implementations must not block.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

type nopObserver struct{}

func (nopObserver) Observe(Event) {}

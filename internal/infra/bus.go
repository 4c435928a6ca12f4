package infra

import "time"

// EventType represents the type of lifecycle event published during a run
type EventType int

const (
	EventsLoaded EventType = iota
	AveragesComputed
	ResultWritten
	RunFailed
)

// String returns the string representation of the EventType
func (et EventType) String() string {
	switch et {
	case EventsLoaded:
		return "EventsLoaded"
	case AveragesComputed:
		return "AveragesComputed"
	case ResultWritten:
		return "ResultWritten"
	case RunFailed:
		return "RunFailed"
	default:
		return "Unknown"
	}
}

type Event interface{ EventType() EventType }

// EventsLoadedEvent is published once the input source has been read.
type EventsLoadedEvent struct {
	RunID  string
	Source string
	Count  int
}

func (e EventsLoadedEvent) EventType() EventType { return EventsLoaded }

// AveragesComputedEvent is published after the moving average ran.
type AveragesComputedEvent struct {
	RunID      string
	WindowSize int
	Points     int
	First      string
	Last       string
}

func (e AveragesComputedEvent) EventType() EventType { return AveragesComputed }

// ResultWrittenEvent is published once every sink accepted the result.
type ResultWrittenEvent struct {
	RunID    string
	Location string
	Elapsed  time.Duration
}

func (e ResultWrittenEvent) EventType() EventType { return ResultWritten }

// RunFailedEvent is published when any stage of a run returns an error.
type RunFailedEvent struct {
	RunID string
	Stage string
	Err   error
}

func (e RunFailedEvent) EventType() EventType { return RunFailed }

type Handler func(Event)
type Bus struct{ subs map[EventType][]Handler }

func NewBus() *Bus { return &Bus{subs: map[EventType][]Handler{}} }
func (b *Bus) Publish(e Event) {
	for _, h := range b.subs[e.EventType()] {
		h(e)
	}
}
func (b *Bus) Subscribe(evt EventType, h Handler) { b.subs[evt] = append(b.subs[evt], h) }

// SubscribeAll registers h for every known event type.
func (b *Bus) SubscribeAll(h Handler) {
	for _, evt := range []EventType{EventsLoaded, AveragesComputed, ResultWritten, RunFailed} {
		b.Subscribe(evt, h)
	}
}

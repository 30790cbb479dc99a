package core

import "sync"

// EventContext carries the payload of a run event.
type EventContext struct {
	RunID string
	Mech  string
	// Stage is the stage name the run moved to, or finished in.
	Stage string
	// Diagnostic is set for EventDiagnostic only.
	Diagnostic *Diagnostic
}

// Run event codes. Callers may define their own codes above EventUser.
type EventCode int

const (
	// A run moved to a new stage.
	/* Context usage:
	 * data.Stage is the new stage
	 */
	EventStageChanged EventCode = iota + 1

	// A recoverable problem was recorded.
	/* Context usage:
	 * data.Diagnostic
	 */
	EventDiagnostic

	// A run reached a terminal stage.
	EventRunFinished

	EventUser EventCode = 0xFF
)

// FnOnEvent should return true if handled.
type FnOnEvent func(code EventCode, sender interface{}, listener interface{}, data EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

// EventBus dispatches run events to registered listeners in registration
// order. A nil bus ignores everything.
type EventBus struct {
	mu         sync.RWMutex
	registered map[EventCode][]*registeredEvent
}

func NewEventBus() *EventBus {
	return &EventBus{registered: make(map[EventCode][]*registeredEvent)}
}

/**
 * Register to listen for when events are sent with the provided code. A
 * listener registers at most once per code; duplicates return false.
 * @param code The event code to listen for.
 * @param listener The listener instance, used to unregister. Can be nil.
 * @param onEvent The callback invoked when the event code is fired.
 */
func (b *EventBus) Register(code EventCode, listener interface{}, onEvent FnOnEvent) bool {
	if b == nil || onEvent == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.registered[code] {
		if e.listener == listener {
			LogWarn("listener already registered for event %d", code)
			return false
		}
	}
	b.registered[code] = append(b.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

// Unregister removes listener from code and reports whether it was there.
func (b *EventBus) Unregister(code EventCode, listener interface{}) bool {
	if b == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	events := b.registered[code]
	for i, e := range events {
		if e.listener == listener {
			b.registered[code] = append(events[:i:i], events[i+1:]...)
			return true
		}
	}
	return false
}

/**
 * Fires an event to listeners of the given code. If a handler returns true,
 * the event is considered handled and is not passed on to any more listeners.
 * @returns true if handled, otherwise false.
 */
func (b *EventBus) Fire(code EventCode, sender interface{}, data EventContext) bool {
	if b == nil {
		return false
	}
	b.mu.RLock()
	events := append([]*registeredEvent(nil), b.registered[code]...)
	b.mu.RUnlock()
	for _, e := range events {
		if e.callback(code, sender, e.listener, data) {
			return true
		}
	}
	return false
}

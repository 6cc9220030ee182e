package combat

import "sync"

// EventKind enumerates notifications emitted by a Battle.
type EventKind int

const (
	EventTurnStart EventKind = iota
	EventDamage
	EventHeal
	EventDefend
	EventInsufficientMP
	EventBattleEnd
)

// String returns a short label for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventTurnStart:
		return "turn_start"
	case EventDamage:
		return "damage"
	case EventHeal:
		return "heal"
	case EventDefend:
		return "defend"
	case EventInsufficientMP:
		return "insufficient_mp"
	case EventBattleEnd:
		return "battle_end"
	default:
		return "unknown"
	}
}

// Event is a notification for presentation layers. Only the fields relevant
// to Kind are set.
type Event struct {
	Kind     EventKind
	BattleID string
	// CharacterID is the acting character for turn start, defend and
	// insufficient MP, and the affected character for damage and heal.
	CharacterID string
	// EnemySide is true when CharacterID is on the enemy roster.
	EnemySide bool
	// HumanControlled is set on turn start.
	HumanControlled bool
	Amount          int
	// Victory is set on battle end.
	Victory bool
}

// Observer receives battle events. Notify is never called while the battle
// lock is held, so observers may call back into the battle.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Notify calls f(e).
func (f ObserverFunc) Notify(e Event) { f(e) }

// MultiObserver fans an event out to each observer in order.
type MultiObserver []Observer

// Notify forwards e to every non-nil observer.
func (m MultiObserver) Notify(e Event) {
	for _, o := range m {
		if o != nil {
			o.Notify(e)
		}
	}
}

type nopObserver struct{}

func (nopObserver) Notify(Event) {}

// EventQueue buffers events until a consumer drains them, typically once per
// rendered frame. It is safe for concurrent use.
type EventQueue struct {
	mu     sync.Mutex
	events []Event
}

// NewEventQueue returns an empty queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Notify appends e to the queue.
func (q *EventQueue) Notify(e Event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()
}

// Drain returns all buffered events in arrival order and empties the queue.
func (q *EventQueue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.events
	q.events = nil
	return out
}

// Len returns the number of buffered events.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

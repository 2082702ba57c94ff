package combat

// Event is one immutable entry of the battle log.
type Event struct {
	Seq     int            `json:"seq"`
	Turn    int            `json:"turn"`
	Type    string         `json:"type"`
	Ship    string         `json:"ship,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

const (
	EvShipChange     = "ship_change"
	EvMove           = "move"
	EvValue          = "value"
	EvDamage         = "damage"
	EvDeath          = "death"
	EvEffectAdded    = "effect_added"
	EvEffectChanged  = "effect_changed"
	EvEffectRemoved  = "effect_removed"
	EvActiveEffects  = "active_effects"
	EvDroneDeployed  = "drone_deployed"
	EvDroneDestroyed = "drone_destroyed"
	EvDroneApplied   = "drone_applied"
	EvActionApplied  = "action_applied"
	EvToggle         = "toggle"
	EvFire           = "fire"
	EvEndBattle      = "end_battle"
)

type subscriber struct {
	id int
	fn func(Event)
}

// Log is the append-only event sink shared by a battle and its ships.
type Log struct {
	events []Event
	subs   []subscriber
	nextID int
	turn   func() int
}

func NewLog() *Log {
	return &Log{}
}

// Add appends an event and notifies subscribers. A nil log drops the event.
func (l *Log) Add(ev Event) {
	if l == nil {
		return
	}
	ev.Seq = len(l.events)
	if l.turn != nil {
		ev.Turn = l.turn()
	}
	l.events = append(l.events, ev)
	for _, s := range append([]subscriber(nil), l.subs...) {
		s.fn(ev)
	}
}

func (l *Log) emit(typ, ship string, payload map[string]any) {
	l.Add(Event{Type: typ, Ship: ship, Payload: payload})
}

// Events returns a copy of the log content.
func (l *Log) Events() []Event {
	if l == nil {
		return nil
	}
	return append([]Event(nil), l.events...)
}

func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	return len(l.events)
}

// Count returns the number of events of one type.
func (l *Log) Count(typ string) int {
	n := 0
	for _, ev := range l.Events() {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

// Subscribe registers a listener for future events. The returned func unsubscribes it.
func (l *Log) Subscribe(fn func(Event)) func() {
	l.nextID++
	id := l.nextID
	l.subs = append(l.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range l.subs {
			if s.id == id {
				l.subs = append(l.subs[:i], l.subs[i+1:]...)
				return
			}
		}
	}
}

// Clear drops the history but keeps subscribers.
func (l *Log) Clear() {
	l.events = nil
}

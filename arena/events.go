package arena

// EventKind 核心在变更过程中产生的通知，由房间在每次变更后取走
type EventKind string

const (
	EventEliminated EventKind = "eliminated"
	EventLeft       EventKind = "left"
	EventDetonated  EventKind = "detonated"
	EventSpawned    EventKind = "spawned"
)

// Cause 淘汰原因
type Cause string

const (
	CauseBlast Cause = "blast"
	CauseBeam  Cause = "beam"
)

type Event struct {
	Kind    EventKind `json:"kind"`
	Session string    `json:"session,omitempty"`
	Name    string    `json:"name,omitempty"`
	Coins   int       `json:"coins,omitempty"`
	Rank    int       `json:"rank,omitempty"` // 离场前的排行名次
	Pos     Coord     `json:"pos"`
	Cause   Cause     `json:"cause,omitempty"`
	Entity  Kind      `json:"entity,omitempty"`
}

func (w *World) emit(e Event) { w.events = append(w.events, e) }

// DrainEvents 取走并清空累计的事件
func (w *World) DrainEvents() []Event {
	if len(w.events) == 0 {
		return nil
	}
	out := w.events
	w.events = nil
	return out
}

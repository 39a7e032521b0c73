package domain

import "time"

// EventType defines the category of the event.
type EventType string

const (
	EventNodeExpand     EventType = "node_expand"
	EventNodeMissing    EventType = "node_missing"
	EventBranchSelected EventType = "branch_selected"
	EventLoopTruncated  EventType = "loop_truncated"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NodeEvent reports the expansion of a node or a lookup of a missing one.
type NodeEvent struct {
	EventBase
	Key      string        `json:"key"`
	Depth    int           `json:"depth"`
	Children int           `json:"children"`
	Duration time.Duration `json:"duration,omitempty"`
}

// BranchEvent reports which branch of a weighted slot was realized.
type BranchEvent struct {
	EventBase
	Key     string    `json:"key"`
	Index   int       `json:"index"`
	Weights []float64 `json:"weights"`
}

// LoopEvent reports a continue loop stopped by its iteration ceiling.
type LoopEvent struct {
	EventBase
	Key   string `json:"key"`
	Limit int    `json:"limit"`
}

// LifecycleHooks defines callbacks for engine observability.
// Any of them may be nil.
type LifecycleHooks struct {
	OnNodeExpand     func(*NodeEvent)
	OnNodeMissing    func(*NodeEvent)
	OnBranchSelected func(*BranchEvent)
	OnLoopTruncated  func(*LoopEvent)
}

// Merge combines hooks so both sets fire, h first.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNodeExpand:     chain(h.OnNodeExpand, other.OnNodeExpand),
		OnNodeMissing:    chain(h.OnNodeMissing, other.OnNodeMissing),
		OnBranchSelected: chain(h.OnBranchSelected, other.OnBranchSelected),
		OnLoopTruncated:  chain(h.OnLoopTruncated, other.OnLoopTruncated),
	}
}

func chain[E any](a, b func(E)) func(E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(e E) {
		a(e)
		b(e)
	}
}

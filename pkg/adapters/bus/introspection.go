package bus

import "github.com/aretw0/introspection"

// BusState exposes internal state for observability.
type BusState struct {
	Listeners int  `json:"listeners"`
	Queued    int  `json:"queued"`
	Capacity  int  `json:"capacity"`
	Delivered int  `json:"delivered"`
	Running   bool `json:"running"`
}

// State implements introspection.Introspectable.
func (b *Bus) State() any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return BusState{
		Listeners: len(b.listeners),
		Queued:    len(b.queue),
		Capacity:  cap(b.queue),
		Delivered: b.delivered,
		Running:   b.started && !b.stopped,
	}
}

// ComponentType implements introspection.Component.
func (b *Bus) ComponentType() string {
	return "event-bus"
}

var _ introspection.Introspectable = (*Bus)(nil)
var _ introspection.Component = (*Bus)(nil)

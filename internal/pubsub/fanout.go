package pubsub

import "zapdesk/entity"

type Sink interface {
	Publish(event entity.Notification)
}

// Fanout forwards each notification to every sink. Used to tee the
// WebSocket hub and the optional broker mirror behind one publisher.
type Fanout struct {
	sinks []Sink
}

func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

func (f *Fanout) Publish(event entity.Notification) {
	for _, s := range f.sinks {
		s.Publish(event)
	}
}

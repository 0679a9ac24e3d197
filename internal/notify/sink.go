package notify

import "log"

// Sink accepts fire-and-forget reservation events. Delivery failures are the
// sink's problem; they must never surface to the operation that emitted the
// event.
type Sink interface {
	Publish(event Event) error
}

// Publisher is the broker-facing half, satisfied by pkg/rabbitmq.Publisher.
type Publisher interface {
	Publish(routingKey string, payload any) error
}

type brokerSink struct {
	pub    Publisher
	prefix string
}

// NewBrokerSink routes each event to "<prefix>.<kind>" on the broker.
func NewBrokerSink(pub Publisher, prefix string) Sink {
	return &brokerSink{pub: pub, prefix: prefix}
}

func (s *brokerSink) Publish(event Event) error {
	return s.pub.Publish(s.prefix+"."+event.Kind(), event)
}

// NopSink is used in tests and in deployments without a broker.
type NopSink struct{}

func (NopSink) Publish(Event) error { return nil }

// Emit publishes through sink and only logs on failure. It is the single
// call site pattern for the engine: state changes never roll back because a
// notification could not be delivered.
func Emit(sink Sink, event Event) {
	if sink == nil {
		return
	}
	if err := sink.Publish(event); err != nil {
		log.Printf("[notify] failed to publish %s: %v", event.Kind(), err)
	}
}

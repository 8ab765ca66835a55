package events

import "time"

type ProducerOptions func(e *EventProducer)

func WithOutputTopic(topic string) ProducerOptions {
	return func(e *EventProducer) {
		e.topic = topic
	}
}

func WithSource(source string) ProducerOptions {
	return func(e *EventProducer) {
		e.source = source
	}
}

// WithCloseTimeout bounds how long Close waits for pending events to be written.
func WithCloseTimeout(d time.Duration) ProducerOptions {
	return func(e *EventProducer) {
		e.closeTimeout = d
	}
}

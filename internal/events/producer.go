package events

import (
	"context"
	"io"
	"sync"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	QuoteCreatedMessageKind string = "quote.planner.events.quote-created"
	QuoteDeletedMessageKind string = "quote.planner.events.quote-deleted"
	defaultTopic            string = "quote.planner.events"
	defaultSource           string = "quote.planner"
	defaultCloseTimeout            = 5 * time.Second
)

// Writer is the interface to be implemented by the underlying writer.
type Writer interface {
	Write(ctx context.Context, topic string, e cloudevents.Event) error
	Close(ctx context.Context) error
}

// EventProducer is a wrapper around a Writer with the buffer.
// It has a buffer to store pending events to not block the caller if the writer takes time to write the event.
type EventProducer struct {
	buffer       *buffer
	wakeCh       chan struct{}
	doneCh       chan struct{}
	stoppedCh    chan struct{}
	closeOnce    sync.Once
	writer       Writer
	topic        string
	source       string
	closeTimeout time.Duration
}

func NewEventProducer(w Writer, opts ...ProducerOptions) *EventProducer {
	ep := &EventProducer{
		buffer:       newBuffer(),
		wakeCh:       make(chan struct{}, 1),
		doneCh:       make(chan struct{}),
		stoppedCh:    make(chan struct{}),
		writer:       w,
		topic:        defaultTopic,
		source:       defaultSource,
		closeTimeout: defaultCloseTimeout,
	}

	for _, o := range opts {
		o(ep)
	}

	go ep.run()
	return ep
}

// Write queues the body as an event of the given kind. It never waits for the
// underlying writer.
func (ep *EventProducer) Write(ctx context.Context, kind string, body io.Reader) error {
	d, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	if prevSize := ep.buffer.PushBack(&message{Kind: kind, Data: d}); prevSize == 0 {
		// unblock the consumer
		select {
		case ep.wakeCh <- struct{}{}:
		default:
		}
	}

	return nil
}

// Pending returns the number of events not yet handed to the writer.
func (ep *EventProducer) Pending() int {
	return ep.buffer.Size()
}

// Close stops the consumer after the pending events are written and closes the writer.
func (ep *EventProducer) Close() error {
	closeCtx, cancel := context.WithTimeout(context.Background(), ep.closeTimeout)
	defer cancel()

	ep.closeOnce.Do(func() { close(ep.doneCh) })

	g, ctx := errgroup.WithContext(closeCtx)
	g.Go(func() error {
		select {
		case <-ep.stoppedCh:
		case <-ctx.Done():
			zap.S().Named("event_producer").Warnw("closing with pending events", "pending", ep.buffer.Size())
		}
		return ep.writer.Close(ctx)
	})
	if err := g.Wait(); err != nil {
		zap.S().Named("event_producer").Errorf("event producer closed with error: %s", err)
		return err
	}

	zap.S().Named("event_producer").Info("event producer closed")

	return nil
}

func (ep *EventProducer) run() {
	defer close(ep.stoppedCh)

	for {
		msg := ep.buffer.Pop()
		if msg != nil {
			ep.send(msg)
			continue
		}

		select {
		case <-ep.wakeCh:
		case <-ep.doneCh:
			// flush whatever was queued before Close
			for msg := ep.buffer.Pop(); msg != nil; msg = ep.buffer.Pop() {
				ep.send(msg)
			}
			return
		}
	}
}

func (ep *EventProducer) send(msg *message) {
	e := cloudevents.NewEvent()
	e.SetID(uuid.NewString())
	e.SetSource(ep.source)
	e.SetType(msg.Kind)
	e.SetTime(time.Now().UTC())
	_ = e.SetData(*cloudevents.StringOfApplicationJSON(), msg.Data)

	if err := ep.writer.Write(context.TODO(), ep.topic, e); err != nil {
		zap.S().Named("event_producer").Errorw("failed to send message", "error", err, "event", e.ID(), "kind", msg.Kind)
	}
}

package events

import (
	"context"
	"fmt"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"go.uber.org/zap"
)

const topicExtension = "topic"

// HTTPWriter delivers events to the notification dispatcher in CloudEvents
// binary HTTP mode.
type HTTPWriter struct {
	client  cloudevents.Client
	target  string
	timeout time.Duration
}

func NewHTTPWriter(target string, timeout time.Duration) (*HTTPWriter, error) {
	p, err := cloudevents.NewHTTP(cloudevents.WithTarget(target))
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudevents http protocol: %w", err)
	}

	c, err := cloudevents.NewClient(p)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudevents client: %w", err)
	}

	return &HTTPWriter{client: c, target: target, timeout: timeout}, nil
}

func (h *HTTPWriter) Write(ctx context.Context, topic string, e cloudevents.Event) error {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	e.SetExtension(topicExtension, topic)

	result := h.client.Send(cloudevents.ContextWithTarget(ctx, h.target), e)
	if !cloudevents.IsACK(result) {
		return fmt.Errorf("failed to deliver event %s to %s: %w", e.ID(), h.target, result)
	}

	zap.S().Named("http_writer").Debugw("event delivered", "id", e.ID(), "type", e.Type())
	return nil
}

func (h *HTTPWriter) Close(_ context.Context) error {
	return nil
}

package events

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("producer", Ordered, func() {
	Context("write", func() {
		It("writes successfully", func() {
			w := newTestWriter()
			kp := NewEventProducer(w)

			err := kp.Write(context.TODO(), QuoteCreatedMessageKind, bytes.NewReader([]byte(`{"quote_id":"1"}`)))
			Expect(err).To(BeNil())
			Eventually(w.Len).Should(Equal(1))

			err = kp.Write(context.TODO(), QuoteDeletedMessageKind, bytes.NewReader([]byte(`{"quote_id":"1"}`)))
			Expect(err).To(BeNil())
			Eventually(w.Len).Should(Equal(2))

			msgs := w.Events()
			Expect(msgs[0].Type()).To(Equal(QuoteCreatedMessageKind))
			Expect(msgs[0].Source()).To(Equal(defaultSource))
			Expect(string(msgs[0].Data())).To(Equal(`{"quote_id":"1"}`))
			Expect(msgs[1].Type()).To(Equal(QuoteDeletedMessageKind))
			Expect(msgs[0].ID()).NotTo(Equal(msgs[1].ID()))
			Expect(w.topics[0]).To(Equal(defaultTopic))

			Expect(kp.Close()).To(Succeed())
			Expect(w.closed).To(BeTrue())
		})

		It("does not block while the writer is slow", func() {
			w := newTestWriter()
			w.delay = 50 * time.Millisecond
			kp := NewEventProducer(w, WithOutputTopic("leads"), WithSource("test"))

			start := time.Now()
			for i := 0; i < 5; i++ {
				Expect(kp.Write(context.TODO(), QuoteCreatedMessageKind, bytes.NewReader([]byte("{}")))).To(Succeed())
			}
			Expect(time.Since(start)).To(BeNumerically("<", 50*time.Millisecond))

			// close flushes the pending events
			Expect(kp.Close()).To(Succeed())
			Expect(w.Len()).To(Equal(5))
			Expect(kp.Pending()).To(Equal(0))
			Expect(w.topics[0]).To(Equal("leads"))
			Expect(w.Events()[0].Source()).To(Equal("test"))
		})

		It("keeps going when the writer fails", func() {
			w := newTestWriter()
			w.err = errors.New("dispatcher down")
			kp := NewEventProducer(w)

			Expect(kp.Write(context.TODO(), QuoteCreatedMessageKind, bytes.NewReader([]byte("{}")))).To(Succeed())
			Expect(kp.Write(context.TODO(), QuoteCreatedMessageKind, bytes.NewReader([]byte("{}")))).To(Succeed())
			Eventually(w.Len).Should(Equal(2))

			Expect(kp.Close()).To(Succeed())
		})

		It("can be closed twice", func() {
			kp := NewEventProducer(newTestWriter())
			Expect(kp.Close()).To(Succeed())
			Expect(kp.Close()).To(Succeed())
		})
	})

	Context("http writer", func() {
		It("delivers the event in binary mode", func() {
			var (
				mu      sync.Mutex
				headers http.Header
				body    []byte
			)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				mu.Lock()
				defer mu.Unlock()
				headers = r.Header.Clone()
				buf := new(bytes.Buffer)
				_, _ = buf.ReadFrom(r.Body)
				body = buf.Bytes()
				w.WriteHeader(http.StatusAccepted)
			}))
			defer srv.Close()

			hw, err := NewHTTPWriter(srv.URL, time.Second)
			Expect(err).To(BeNil())

			e := cloudevents.NewEvent()
			e.SetID("evt-1")
			e.SetSource(defaultSource)
			e.SetType(QuoteCreatedMessageKind)
			Expect(e.SetData(*cloudevents.StringOfApplicationJSON(), []byte(`{"quote_id":"q1"}`))).To(Succeed())

			Expect(hw.Write(context.TODO(), "leads", e)).To(Succeed())

			mu.Lock()
			defer mu.Unlock()
			Expect(headers.Get("Ce-Type")).To(Equal(QuoteCreatedMessageKind))
			Expect(headers.Get("Ce-Id")).To(Equal("evt-1"))
			Expect(headers.Get("Ce-Topic")).To(Equal("leads"))
			Expect(string(body)).To(Equal(`{"quote_id":"q1"}`))
			Expect(hw.Close(context.TODO())).To(Succeed())
		})

		It("returns an error when the dispatcher rejects the event", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer srv.Close()

			hw, err := NewHTTPWriter(srv.URL, time.Second)
			Expect(err).To(BeNil())

			e := cloudevents.NewEvent()
			e.SetID("evt-2")
			e.SetSource(defaultSource)
			e.SetType(QuoteCreatedMessageKind)

			Expect(hw.Write(context.TODO(), "leads", e)).NotTo(Succeed())
		})
	})
})

type testwriter struct {
	mu       sync.Mutex
	messages []cloudevents.Event
	topics   []string
	delay    time.Duration
	err      error
	closed   bool
}

func newTestWriter() *testwriter {
	return &testwriter{messages: []cloudevents.Event{}}
}

func (t *testwriter) Write(ctx context.Context, topic string, e cloudevents.Event) error {
	if t.delay > 0 {
		time.Sleep(t.delay)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, e)
	t.topics = append(t.topics, topic)
	return t.err
}

func (t *testwriter) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

func (t *testwriter) Events() []cloudevents.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]cloudevents.Event, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *testwriter) Close(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

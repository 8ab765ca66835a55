package service_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"sync"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	"github.com/landclear/quote-planner/internal/cache"
	"github.com/landclear/quote-planner/internal/config"
	"github.com/landclear/quote-planner/internal/estimation"
	"github.com/landclear/quote-planner/internal/estimation/calculators"
	"github.com/landclear/quote-planner/internal/events"
	"github.com/landclear/quote-planner/internal/geo"
	"github.com/landclear/quote-planner/internal/geocoding"
	"github.com/landclear/quote-planner/internal/service"
	"github.com/landclear/quote-planner/internal/store"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var base = geo.Coordinates{Lat: 35.2271, Lng: -80.8431}

var _ = Describe("quote service", Ordered, func() {
	var (
		s         store.Store
		gormdb    *gorm.DB
		assembler *estimation.Assembler
		resolver  *geocoding.Resolver
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration(context.TODO())).To(Succeed())

		assembler, err = calculators.NewAssembler(estimation.DefaultTables())
		Expect(err).To(BeNil())
		resolver = geocoding.NewResolver(base)
	})

	AfterAll(func() {
		s.Close()
	})

	request := func(email string, urgency estimation.UrgencyTier) service.QuoteRequest {
		pin := base
		return service.QuoteRequest{
			Contact:  service.Contact{Name: "Pat Example", Email: email, Phone: "704-555-0100"},
			Location: geocoding.LocationQuery{Address: "1 Main St, Charlotte, NC", Coordinates: &pin},
			Parameters: estimation.ProjectParameters{
				Acreage: 5,
				Package: estimation.PackageMedium,
				Urgency: urgency,
			},
		}
	}

	Context("create", func() {
		It("stores the quote and publishes an event", func() {
			writer := newTestWriter()
			producer := events.NewEventProducer(writer)
			defer producer.Close()

			srv := service.NewQuoteService(s, resolver, assembler, service.WithEventWriter(producer))

			q, err := srv.CreateQuote(context.TODO(), request("pat@example.com", estimation.UrgencyEmergency))
			Expect(err).To(BeNil())
			Expect(q.ID).NotTo(Equal(uuid.Nil))
			Expect(q.ContactEmail).To(Equal("pat@example.com"))
			Expect(q.Zone).To(Equal("Core"))
			Expect(q.TotalPrice.Equal(decimal.NewFromInt(16875))).To(BeTrue())
			Expect(q.Estimate.Data.UrgencyAdjustment.Equal(decimal.NewFromInt(4375))).To(BeTrue())
			Expect(q.Verified).To(BeTrue())

			count := 0
			Expect(gormdb.Raw("SELECT COUNT(*) FROM quotes").Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(1))

			Eventually(writer.Len).Should(Equal(1))
			e := writer.Events()[0]
			Expect(e.Type()).To(Equal(events.QuoteCreatedMessageKind))

			var payload events.QuoteCreatedEvent
			Expect(json.Unmarshal(e.Data(), &payload)).To(Succeed())
			Expect(payload.QuoteID).To(Equal(q.ID.String()))
			Expect(payload.ContactEmail).To(Equal("pat@example.com"))
			Expect(payload.TotalPrice.Equal(decimal.NewFromInt(16875))).To(BeTrue())
		})

		It("works without an event writer", func() {
			srv := service.NewQuoteService(s, resolver, assembler)

			q, err := srv.CreateQuote(context.TODO(), request("pat@example.com", estimation.UrgencyStandard))
			Expect(err).To(BeNil())
			Expect(q.TotalPrice.Equal(decimal.NewFromInt(12500))).To(BeTrue())
		})

		It("rejects invalid parameters", func() {
			srv := service.NewQuoteService(s, resolver, assembler)

			req := request("pat@example.com", estimation.UrgencyStandard)
			req.Parameters.Acreage = 0

			_, err := srv.CreateQuote(context.TODO(), req)
			Expect(err).NotTo(BeNil())
			var invalid *service.ErrInvalidQuoteRequest
			Expect(errors.As(err, &invalid)).To(BeTrue())

			count := 0
			Expect(gormdb.Raw("SELECT COUNT(*) FROM quotes").Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(0))
		})

		It("rejects an out of range pin", func() {
			srv := service.NewQuoteService(s, resolver, assembler)

			req := request("pat@example.com", estimation.UrgencyStandard)
			req.Location.Coordinates = &geo.Coordinates{Lat: 95, Lng: 0}

			_, err := srv.CreateQuote(context.TODO(), req)
			var invalid *service.ErrInvalidQuoteRequest
			Expect(errors.As(err, &invalid)).To(BeTrue())
		})
	})

	Context("preview", func() {
		It("does not store anything", func() {
			srv := service.NewQuoteService(s, resolver, assembler)

			est, loc, err := srv.PreviewEstimate(context.TODO(), request("pat@example.com", estimation.UrgencyPriority))
			Expect(err).To(BeNil())
			Expect(loc.Verified).To(BeTrue())
			Expect(est.TotalPrice.Equal(decimal.NewFromInt(14375))).To(BeTrue())
			Expect(est.Confidence).To(Equal(90))

			count := 0
			Expect(gormdb.Raw("SELECT COUNT(*) FROM quotes").Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(0))
		})

		It("answers repeated requests from the cache", func() {
			c := newMemoryCache()
			srv := service.NewQuoteService(s, resolver, assembler, service.WithEstimateCache(c))

			first, _, err := srv.PreviewEstimate(context.TODO(), request("pat@example.com", estimation.UrgencyStandard))
			Expect(err).To(BeNil())
			Expect(c.sets).To(Equal(1))

			second, _, err := srv.PreviewEstimate(context.TODO(), request("other@example.com", estimation.UrgencyStandard))
			Expect(err).To(BeNil())
			Expect(c.hits).To(Equal(1))
			Expect(c.sets).To(Equal(1))
			Expect(second).To(Equal(first))
		})

		It("recomputes when the cache fails", func() {
			c := newMemoryCache()
			c.err = errors.New("connection refused")
			srv := service.NewQuoteService(s, resolver, assembler, service.WithEstimateCache(c))

			est, _, err := srv.PreviewEstimate(context.TODO(), request("pat@example.com", estimation.UrgencyStandard))
			Expect(err).To(BeNil())
			Expect(est.TotalPrice.Equal(decimal.NewFromInt(12500))).To(BeTrue())
		})
	})

	Context("get, list and delete", func() {
		It("gets a stored quote", func() {
			srv := service.NewQuoteService(s, resolver, assembler)
			created, err := srv.CreateQuote(context.TODO(), request("pat@example.com", estimation.UrgencyStandard))
			Expect(err).To(BeNil())

			got, err := srv.GetQuote(context.TODO(), created.ID)
			Expect(err).To(BeNil())
			Expect(got.ID).To(Equal(created.ID))
			Expect(got.Estimate.Data.TotalPrice.Equal(decimal.NewFromInt(12500))).To(BeTrue())
		})

		It("reports a missing quote", func() {
			srv := service.NewQuoteService(s, resolver, assembler)

			_, err := srv.GetQuote(context.TODO(), uuid.New())
			var notFound *service.ErrResourceNotFound
			Expect(errors.As(err, &notFound)).To(BeTrue())

			err = srv.DeleteQuote(context.TODO(), uuid.New())
			Expect(errors.As(err, &notFound)).To(BeTrue())
		})

		It("lists by email with paging", func() {
			srv := service.NewQuoteService(s, resolver, assembler)
			for _, email := range []string{"a@example.com", "a@example.com", "a@example.com", "b@example.com"} {
				_, err := srv.CreateQuote(context.TODO(), request(email, estimation.UrgencyStandard))
				Expect(err).To(BeNil())
			}

			quotes, err := srv.ListQuotes(context.TODO(), service.QuoteFilter{Email: "A@example.com"})
			Expect(err).To(BeNil())
			Expect(quotes).To(HaveLen(3))

			quotes, err = srv.ListQuotes(context.TODO(), service.QuoteFilter{Limit: 2, Offset: 3})
			Expect(err).To(BeNil())
			Expect(quotes).To(HaveLen(1))

			count, err := srv.CountQuotes(context.TODO(), service.QuoteFilter{Zone: "Core"})
			Expect(err).To(BeNil())
			Expect(count).To(Equal(int64(4)))
		})

		It("deletes a quote and publishes an event", func() {
			writer := newTestWriter()
			producer := events.NewEventProducer(writer)
			defer producer.Close()

			srv := service.NewQuoteService(s, resolver, assembler, service.WithEventWriter(producer))
			created, err := srv.CreateQuote(context.TODO(), request("pat@example.com", estimation.UrgencyStandard))
			Expect(err).To(BeNil())

			Expect(srv.DeleteQuote(context.TODO(), created.ID)).To(Succeed())

			_, err = srv.GetQuote(context.TODO(), created.ID)
			Expect(err).NotTo(BeNil())

			Eventually(writer.Len).Should(Equal(2))
			Expect(writer.Events()[1].Type()).To(Equal(events.QuoteDeletedMessageKind))
		})
	})

	Context("export", func() {
		It("exports csv", func() {
			srv := service.NewQuoteService(s, resolver, assembler)
			_, err := srv.CreateQuote(context.TODO(), request("pat@example.com", estimation.UrgencyStandard))
			Expect(err).To(BeNil())

			var buf bytes.Buffer
			Expect(srv.ExportQuotes(context.TODO(), service.QuoteFilter{}, &buf, "csv")).To(Succeed())

			records, err := csv.NewReader(&buf).ReadAll()
			Expect(err).To(BeNil())
			Expect(records).To(HaveLen(2))
			Expect(records[1][3]).To(Equal("pat@example.com"))
			Expect(records[1][12]).To(Equal("12500.00"))

			contentType, err := srv.ExportContentType("csv")
			Expect(err).To(BeNil())
			Expect(contentType).To(Equal("text/csv"))
		})

		It("exports xlsx", func() {
			srv := service.NewQuoteService(s, resolver, assembler)

			var buf bytes.Buffer
			Expect(srv.ExportQuotes(context.TODO(), service.QuoteFilter{}, &buf, "xlsx")).To(Succeed())
			// xlsx files are zip archives
			Expect(buf.Bytes()[:2]).To(Equal([]byte("PK")))
		})

		It("rejects an unknown format", func() {
			srv := service.NewQuoteService(s, resolver, assembler)

			err := srv.ExportQuotes(context.TODO(), service.QuoteFilter{}, &bytes.Buffer{}, "pdf")
			var unsupported *service.ErrUnsupportedExportFormat
			Expect(errors.As(err, &unsupported)).To(BeTrue())

			_, err = srv.ExportContentType("pdf")
			Expect(errors.As(err, &unsupported)).To(BeTrue())
		})
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM quotes;")
	})
})

type testwriter struct {
	mu       sync.Mutex
	messages []cloudevents.Event
}

func newTestWriter() *testwriter {
	return &testwriter{messages: []cloudevents.Event{}}
}

func (t *testwriter) Write(ctx context.Context, topic string, e cloudevents.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, e)
	return nil
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
	return nil
}

type memoryCache struct {
	items map[string]estimation.Estimate
	hits  int
	sets  int
	err   error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string]estimation.Estimate{}}
}

func (m *memoryCache) Get(_ context.Context, key string) (*estimation.Estimate, error) {
	if m.err != nil {
		return nil, m.err
	}
	est, ok := m.items[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	m.hits++
	return &est, nil
}

func (m *memoryCache) Set(_ context.Context, key string, est *estimation.Estimate) error {
	if m.err != nil {
		return m.err
	}
	m.sets++
	m.items[key] = *est
	return nil
}

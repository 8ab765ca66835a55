package store_test

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/landclear/quote-planner/internal/config"
	"github.com/landclear/quote-planner/internal/estimation"
	"github.com/landclear/quote-planner/internal/geo"
	"github.com/landclear/quote-planner/internal/store"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const insertQuoteStm = "INSERT INTO quotes (id, created_at, contact_email, latitude, longitude, verified, zone, distance_meters, acreage, package, urgency, total_price, confidence, estimated_days, estimate) VALUES ('%s', '%s', '%s', 35.2, -80.8, false, '%s', 1000, 5, 'medium', 'standard', %d, 80, 3.75, '{}');"

var _ = Describe("quote store", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration(context.TODO())).To(Succeed())
	})

	AfterAll(func() {
		s.Close()
	})

	Context("create and get", func() {
		It("round-trips the estimate document", func() {
			created, err := s.Quote().Create(context.TODO(), newQuote("lead@example.com", "Primary", 16875))
			Expect(err).To(BeNil())
			Expect(created.CreatedAt.IsZero()).To(BeFalse())

			got, err := s.Quote().Get(context.TODO(), created.ID)
			Expect(err).To(BeNil())
			Expect(got.ContactEmail).To(Equal("lead@example.com"))
			Expect(got.TotalPrice.Equal(decimal.NewFromInt(16875))).To(BeTrue())
			Expect(got.Estimate).ToNot(BeNil())
			Expect(got.Estimate.Data.Assumptions).To(Equal([]string{"Urgency adjustment applied: 35% premium, emergency scheduling"}))
			Expect(got.Estimate.Data.UrgencyAdjustment.Equal(decimal.NewFromInt(4375))).To(BeTrue())
			Expect(got.Urgency).To(Equal("emergency"))
		})

		It("assigns an id when none is given", func() {
			q := newQuote("lead@example.com", "Core", 1500)
			q.ID = uuid.Nil
			created, err := s.Quote().Create(context.TODO(), q)
			Expect(err).To(BeNil())
			Expect(created.ID).ToNot(Equal(uuid.Nil))
		})

		It("rejects a duplicate id", func() {
			q := newQuote("lead@example.com", "Core", 1500)
			_, err := s.Quote().Create(context.TODO(), q)
			Expect(err).To(BeNil())

			_, err = s.Quote().Create(context.TODO(), q)
			Expect(err).To(MatchError(store.ErrDuplicateKey))
		})

		It("fails to get a missing quote", func() {
			_, err := s.Quote().Get(context.TODO(), uuid.New())
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})
	})

	Context("list", func() {
		BeforeEach(func() {
			now := time.Now().UTC()
			rows := []struct {
				email string
				zone  string
				total int
				age   time.Duration
			}{
				{"first@example.com", "Core", 12500, 3 * time.Hour},
				{"first@example.com", "Primary", 9000, 2 * time.Hour},
				{"second@example.com", "Core", 20000, time.Hour},
			}
			for _, r := range rows {
				created := now.Add(-r.age).Format("2006-01-02 15:04:05")
				tx := gormdb.Exec(fmt.Sprintf(insertQuoteStm, uuid.NewString(), created, r.email, r.zone, r.total))
				Expect(tx.Error).To(BeNil())
			}
		})

		It("lists every quote, newest first", func() {
			quotes, err := s.Quote().List(context.TODO(), store.NewQuoteQueryFilter(), nil)
			Expect(err).To(BeNil())
			Expect(quotes).To(HaveLen(3))
			Expect(quotes[0].ContactEmail).To(Equal("second@example.com"))
		})

		It("filters by email, ignoring case", func() {
			quotes, err := s.Quote().List(context.TODO(), store.NewQuoteQueryFilter().ByContactEmail("FIRST@example.com"), nil)
			Expect(err).To(BeNil())
			Expect(quotes).To(HaveLen(2))
		})

		It("filters by zone", func() {
			quotes, err := s.Quote().List(context.TODO(), store.NewQuoteQueryFilter().ByZone("Core"), nil)
			Expect(err).To(BeNil())
			Expect(quotes).To(HaveLen(2))

			count, err := s.Quote().Count(context.TODO(), store.NewQuoteQueryFilter().ByZone("Primary"))
			Expect(err).To(BeNil())
			Expect(count).To(Equal(int64(1)))
		})

		It("pages and sorts", func() {
			opts := store.NewQuoteQueryOptions().WithSortOrder(store.SortByTotalPrice).WithLimit(2)
			quotes, err := s.Quote().List(context.TODO(), nil, opts)
			Expect(err).To(BeNil())
			Expect(quotes).To(HaveLen(2))
			Expect(quotes[0].TotalPrice.Equal(decimal.NewFromInt(20000))).To(BeTrue())
			Expect(quotes[1].TotalPrice.Equal(decimal.NewFromInt(12500))).To(BeTrue())

			quotes, err = s.Quote().List(context.TODO(), nil, store.NewQuoteQueryOptions().WithLimit(2).WithOffset(2))
			Expect(err).To(BeNil())
			Expect(quotes).To(HaveLen(1))
			Expect(quotes[0].ContactEmail).To(Equal("first@example.com"))
		})
	})

	Context("statistics", func() {
		It("counts quotes per zone and package", func() {
			for _, zone := range []string{"Core", "Core", "Extended"} {
				_, err := s.Quote().Create(context.TODO(), newQuote("lead@example.com", zone, 12500))
				Expect(err).To(BeNil())
			}

			stats, err := s.Quote().Statistics(context.TODO())
			Expect(err).To(BeNil())
			Expect(stats.Total).To(Equal(int64(3)))
			Expect(stats.ByZone).To(Equal(map[string]int64{"Core": 2, "Extended": 1}))
			Expect(stats.ByPackage).To(Equal(map[string]int64{"medium": 3}))
		})

		It("is empty without quotes", func() {
			stats, err := s.Quote().Statistics(context.TODO())
			Expect(err).To(BeNil())
			Expect(stats.Total).To(BeZero())
			Expect(stats.ByZone).To(BeEmpty())
		})
	})

	Context("delete", func() {
		It("deletes a quote", func() {
			created, err := s.Quote().Create(context.TODO(), newQuote("lead@example.com", "Core", 12500))
			Expect(err).To(BeNil())

			Expect(s.Quote().Delete(context.TODO(), created.ID)).To(Succeed())

			count := -1
			Expect(gormdb.Raw("SELECT COUNT(*) FROM quotes").Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(0))
		})

		It("reports a missing quote", func() {
			Expect(s.Quote().Delete(context.TODO(), uuid.New())).To(MatchError(store.ErrRecordNotFound))
		})
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM quotes;")
	})
})

func locationFixture() estimation.PropertyLocation {
	return estimation.PropertyLocation{
		Coordinates:      geo.Coordinates{Lat: 35.3316, Lng: -80.5565},
		FormattedAddress: "12 Farm Rd, Concord, NC 28025",
		Verified:         true,
		DistanceMeters:   31000,
	}
}

func estimateFixture(total int64) estimation.Estimate {
	return estimation.Estimate{
		Package:           estimation.PackageMedium,
		Urgency:           estimation.UrgencyEmergency,
		Acreage:           5,
		PricePerAcre:      decimal.NewFromInt(2500),
		BasePrice:         decimal.NewFromInt(12500),
		UrgencyAdjustment: decimal.NewFromInt(4375),
		TotalPrice:        decimal.NewFromInt(total),
		EstimatedDays:     1.75,
		Confidence:        90,
		Assumptions:       []string{"Urgency adjustment applied: 35% premium, emergency scheduling"},
		DistanceMeters:    31000,
		LocationVerified:  true,
	}
}

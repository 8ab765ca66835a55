package store_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/landclear/quote-planner/internal/config"
	st "github.com/landclear/quote-planner/internal/store"
	"github.com/landclear/quote-planner/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

var _ = Describe("Store", Ordered, func() {
	var (
		store  st.Store
		gormDB *gorm.DB
	)

	BeforeAll(func() {
		cfg := config.NewDefault()
		db, err := st.InitDB(cfg)
		Expect(err).To(BeNil())
		gormDB = db

		store = st.NewStore(db)
		Expect(store).ToNot(BeNil())
		Expect(store.InitialMigration(context.TODO())).To(Succeed())
	})

	AfterAll(func() {
		store.Close()
	})

	Context("transaction", func() {
		It("insert a quote successfully", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			quote, err := store.Quote().Create(ctx, newQuote("a@example.com", "Core", 12500))
			Expect(quote).ToNot(BeNil())
			Expect(err).To(BeNil())

			// commit
			_, cerr := st.Commit(ctx)
			Expect(cerr).To(BeNil())

			count := 0
			err = gormDB.Raw("SELECT COUNT(*) from quotes;").Scan(&count).Error
			Expect(err).To(BeNil())
			Expect(count).To(Equal(1))
		})

		It("rollback a quote successfully", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			quote, err := store.Quote().Create(ctx, newQuote("a@example.com", "Core", 12500))
			Expect(quote).ToNot(BeNil())
			Expect(err).To(BeNil())

			// count in the same transaction
			quotes, err := store.Quote().List(ctx, st.NewQuoteQueryFilter(), nil)
			Expect(err).To(BeNil())
			Expect(quotes).To(HaveLen(1))

			// rollback
			_, cerr := st.Rollback(ctx)
			Expect(cerr).To(BeNil())

			count := 0
			err = gormDB.Raw("SELECT COUNT(*) from quotes;").Scan(&count).Error
			Expect(err).To(BeNil())
			Expect(count).To(Equal(0))
		})

		It("joins a transaction already in the context", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			nested, err := store.NewTransactionContext(ctx)
			Expect(err).To(BeNil())
			Expect(st.FromContext(nested)).To(BeIdenticalTo(st.FromContext(ctx)))

			_, err = st.Rollback(ctx)
			Expect(err).To(BeNil())
		})

		It("commit without a transaction is a no-op", func() {
			ctx, err := st.Commit(context.TODO())
			Expect(err).To(BeNil())
			Expect(st.FromContext(ctx)).To(BeNil())
		})

		AfterEach(func() {
			gormDB.Exec("DELETE from quotes;")
		})
	})

	Context("metrics", func() {
		It("counts statements run through the instrumented driver", func() {
			before := dbOpCount("query")

			_, err := store.Quote().List(context.TODO(), st.NewQuoteQueryFilter(), nil)
			Expect(err).To(BeNil())

			Expect(dbOpCount("query")).To(BeNumerically(">", before))
		})
	})
})

func dbOpCount(op string) float64 {
	families, err := prometheus.DefaultGatherer.Gather()
	Expect(err).To(BeNil())

	for _, mf := range families {
		if mf.GetName() != "quote_planner_db_op_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "op" && l.GetValue() == op {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func newQuote(email, zone string, total int64) model.Quote {
	est := estimateFixture(total)
	est.Zone = zone
	q := model.NewQuote(uuid.New(), locationFixture(), est)
	q.ContactName = "Pat Example"
	q.ContactEmail = email
	return q
}

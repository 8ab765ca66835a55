package migrations_test

import (
	"os"
	"path"

	"github.com/landclear/quote-planner/internal/config"
	"github.com/landclear/quote-planner/internal/store"
	"github.com/landclear/quote-planner/pkg/migrations"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("migrations", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
	})

	AfterAll(func() {
		s.Close()
	})

	Context("store migrations", Ordered, func() {
		It("fails to migrate the db -- migration folder does not exist", func() {
			err := migrations.MigrateStore(gormdb, "some folder")
			Expect(err).NotTo(BeNil())
		})

		It("fails to migrate the db -- migration folder is a file", func() {
			currentFolder, err := os.Getwd()
			Expect(err).To(BeNil())

			err = migrations.MigrateStore(gormdb, path.Join(currentFolder, "migrations.go"))
			Expect(err).To(MatchError(ContainSubstring("is not a folder")))
		})

		It("successfully migrate the db", func() {
			currentFolder, err := os.Getwd()
			Expect(err).To(BeNil())

			err = migrations.MigrateStore(gormdb, path.Join(currentFolder, "sql"))
			Expect(err).To(BeNil())

			tableExists := func(name string) bool {
				count := 0
				tx := gormdb.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
				Expect(tx.Error).To(BeNil())
				return count == 1
			}

			for _, table := range []string{"quotes", "goose_db_version"} {
				Expect(tableExists(table)).To(BeTrue())
			}
		})

		It("is idempotent", func() {
			currentFolder, err := os.Getwd()
			Expect(err).To(BeNil())

			Expect(migrations.MigrateStore(gormdb, path.Join(currentFolder, "sql"))).To(Succeed())
			Expect(migrations.MigrateStore(gormdb, path.Join(currentFolder, "sql"))).To(Succeed())
		})

		AfterEach(func() {
			gormdb.Exec("DROP TABLE IF EXISTS quotes;")
			gormdb.Exec("DROP TABLE IF EXISTS goose_db_version;")
		})
	})
})

package store

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Quote() Quote
	InitialMigration(ctx context.Context) error
	Close() error
}

type DataStore struct {
	db    *gorm.DB
	log   logrus.FieldLogger
	quote Quote
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		db:    db,
		log:   logrus.StandardLogger().WithField("component", "store"),
		quote: NewQuoteStore(db),
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db, s.log)
}

func (s *DataStore) Quote() Quote {
	return s.quote
}

// InitialMigration creates the schema from the models. Deployments use the
// SQL migrations instead; this is for tests and local sqlite databases.
func (s *DataStore) InitialMigration(ctx context.Context) error {
	return s.quote.InitialMigration(ctx)
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

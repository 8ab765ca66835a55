package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/landclear/quote-planner/internal/store/model"
	"gorm.io/gorm"
)

type Quote interface {
	List(ctx context.Context, filter *QuoteQueryFilter, opts *QuoteQueryOptions) (model.QuoteList, error)
	Count(ctx context.Context, filter *QuoteQueryFilter) (int64, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Quote, error)
	Create(ctx context.Context, quote model.Quote) (*model.Quote, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Statistics(ctx context.Context) (QuoteStats, error)
	InitialMigration(ctx context.Context) error
}

type QuoteStore struct {
	db *gorm.DB
}

// Make sure we conform to Quote interface
var _ Quote = (*QuoteStore)(nil)

func NewQuoteStore(db *gorm.DB) Quote {
	return &QuoteStore{db: db}
}

func (q *QuoteStore) InitialMigration(ctx context.Context) error {
	return q.getDB(ctx).AutoMigrate(&model.Quote{})
}

func (q *QuoteStore) List(ctx context.Context, filter *QuoteQueryFilter, opts *QuoteQueryOptions) (model.QuoteList, error) {
	var quotes model.QuoteList
	tx := q.getDB(ctx).Model(&quotes)

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}
	if opts != nil {
		for _, fn := range opts.QueryFn {
			tx = fn(tx)
		}
	}

	// newest first unless the options already ordered the query
	result := tx.Order("created_at DESC").Order("id").Find(&quotes)
	if result.Error != nil {
		return nil, result.Error
	}
	return quotes, nil
}

func (q *QuoteStore) Count(ctx context.Context, filter *QuoteQueryFilter) (int64, error) {
	var count int64
	tx := q.getDB(ctx).Model(&model.Quote{})
	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}
	if err := tx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (q *QuoteStore) Get(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	var quote model.Quote
	result := q.getDB(ctx).First(&quote, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &quote, nil
}

func (q *QuoteStore) Create(ctx context.Context, quote model.Quote) (*model.Quote, error) {
	if quote.ID == uuid.Nil {
		quote.ID = uuid.New()
	}
	if quote.CreatedAt.IsZero() {
		quote.CreatedAt = time.Now().UTC()
	}

	result := q.getDB(ctx).Create(&quote)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return &quote, nil
}

// Delete reports ErrRecordNotFound when no quote has the id.
func (q *QuoteStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := q.getDB(ctx).Delete(&model.Quote{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (q *QuoteStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return q.db.WithContext(ctx)
}

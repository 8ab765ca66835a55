package store

import (
	"time"

	"gorm.io/gorm"
)

type BaseQuerier struct {
	QueryFn []func(tx *gorm.DB) *gorm.DB
}

type QuoteQueryFilter BaseQuerier

func NewQuoteQueryFilter() *QuoteQueryFilter {
	return &QuoteQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *QuoteQueryFilter) ByContactEmail(email string) *QuoteQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("LOWER(contact_email) = LOWER(?)", email)
	})
	return qf
}

func (qf *QuoteQueryFilter) ByZone(zone string) *QuoteQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("zone = ?", zone)
	})
	return qf
}

func (qf *QuoteQueryFilter) ByPackage(pkg string) *QuoteQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("package = ?", pkg)
	})
	return qf
}

func (qf *QuoteQueryFilter) CreatedAfter(t time.Time) *QuoteQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("created_at >= ?", t)
	})
	return qf
}

type QuoteQueryOptions BaseQuerier

func NewQuoteQueryOptions() *QuoteQueryOptions {
	return &QuoteQueryOptions{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (o *QuoteQueryOptions) WithLimit(limit int) *QuoteQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Limit(limit)
	})
	return o
}

func (o *QuoteQueryOptions) WithOffset(offset int) *QuoteQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Offset(offset)
	})
	return o
}

type SortOrder int

const (
	SortByCreatedTime SortOrder = iota
	SortByTotalPrice
)

func (o *QuoteQueryOptions) WithSortOrder(sort SortOrder) *QuoteQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		switch sort {
		case SortByTotalPrice:
			return tx.Order("total_price DESC")
		default:
			return tx
		}
	})
	return o
}

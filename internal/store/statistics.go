package store

import (
	"context"

	"github.com/landclear/quote-planner/internal/store/model"
)

type QuoteStats struct {
	Total     int64
	ByZone    map[string]int64
	ByPackage map[string]int64
}

type groupCount struct {
	Name  string
	Total int64
}

// Statistics counts the stored quotes per zone and per package.
func (q *QuoteStore) Statistics(ctx context.Context) (QuoteStats, error) {
	stats := QuoteStats{
		ByZone:    map[string]int64{},
		ByPackage: map[string]int64{},
	}

	for column, target := range map[string]map[string]int64{
		"zone":    stats.ByZone,
		"package": stats.ByPackage,
	} {
		var rows []groupCount
		err := q.getDB(ctx).Model(&model.Quote{}).
			Select(column + " AS name, COUNT(*) AS total").
			Group(column).
			Scan(&rows).Error
		if err != nil {
			return QuoteStats{}, err
		}
		for _, r := range rows {
			target[r.Name] = r.Total
		}
	}

	for _, total := range stats.ByZone {
		stats.Total += total
	}

	return stats, nil
}

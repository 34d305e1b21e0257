package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/griha-erp/griha-erp/internal/shared"
)

// Service builds collection and defaulters reports. Expensive builds
// are deduplicated with singleflight and cached behind the versioned
// Redis cache.
type Service struct {
	repo  Repository
	cache *Cache
	group singleflight.Group
	now   func() time.Time
}

func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// Bump invalidates every cached report.
func (s *Service) Bump(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) Collection(ctx context.Context, period shared.Period) (CollectionReport, error) {
	if err := period.Validate(); err != nil {
		return CollectionReport{}, err
	}

	key, err := s.cache.BuildKey(ctx, "reports", "collection", period.String())
	if err != nil {
		return CollectionReport{}, err
	}

	var report CollectionReport
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (interface{}, error) {
		result, err, _ := s.group.Do(key, func() (interface{}, error) {
			return s.repo.CollectionSummary(ctx, period)
		})
		return result, err
	})
	if err != nil {
		return CollectionReport{}, fmt.Errorf("reports: collection %s: %w", period, err)
	}
	return report, nil
}

func (s *Service) Defaulters(ctx context.Context) (DefaultersReport, error) {
	asOf := s.now()

	key, err := s.cache.BuildKey(ctx, "reports", "defaulters", asOf.Format("2006-01-02"))
	if err != nil {
		return DefaultersReport{}, err
	}

	var report DefaultersReport
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (interface{}, error) {
		result, err, _ := s.group.Do(key, func() (interface{}, error) {
			return s.buildDefaulters(ctx, asOf)
		})
		return result, err
	})
	if err != nil {
		return DefaultersReport{}, fmt.Errorf("reports: defaulters: %w", err)
	}
	return report, nil
}

func (s *Service) buildDefaulters(ctx context.Context, asOf time.Time) (DefaultersReport, error) {
	bills, err := s.repo.ListOutstanding(ctx)
	if err != nil {
		return DefaultersReport{}, err
	}

	report := DefaultersReport{AsOf: asOf.Format("2006-01-02")}
	byProperty := make(map[string]*DefaulterRow)

	for _, bill := range bills {
		row, ok := byProperty[bill.PropertyNumber]
		if !ok {
			row = &DefaulterRow{PropertyNumber: bill.PropertyNumber, BlockName: bill.BlockName}
			byProperty[bill.PropertyNumber] = row
		}
		row.UnpaidBills++
		row.Outstanding += bill.Balance

		days := 0
		if bill.DueDate != nil {
			days = int(asOf.Sub(*bill.DueDate).Hours() / 24)
			if row.OldestDue == "" || bill.DueDate.Format("2006-01-02") < row.OldestDue {
				row.OldestDue = bill.DueDate.Format("2006-01-02")
			}
			if days > row.DaysOverdue {
				row.DaysOverdue = days
			}
		}

		switch {
		case days <= 0:
			report.Aging.Current += bill.Balance
		case days <= 30:
			report.Aging.Bucket30 += bill.Balance
		case days <= 60:
			report.Aging.Bucket60 += bill.Balance
		case days <= 90:
			report.Aging.Bucket90 += bill.Balance
		default:
			report.Aging.Bucket120 += bill.Balance
		}
	}

	for _, row := range byProperty {
		report.Defaulters = append(report.Defaulters, *row)
	}
	sort.Slice(report.Defaulters, func(i, j int) bool {
		if report.Defaulters[i].Outstanding != report.Defaulters[j].Outstanding {
			return report.Defaulters[i].Outstanding > report.Defaulters[j].Outstanding
		}
		return report.Defaulters[i].PropertyNumber < report.Defaulters[j].PropertyNumber
	})
	return report, nil
}

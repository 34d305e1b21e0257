package reports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/griha-erp/griha-erp/internal/shared"
)

type memoryReportRepo struct {
	summary     CollectionReport
	outstanding []OutstandingBill
	calls       int
}

func (r *memoryReportRepo) CollectionSummary(ctx context.Context, period shared.Period) (CollectionReport, error) {
	r.calls++
	report := r.summary
	report.Period = period
	return report, nil
}

func (r *memoryReportRepo) ListOutstanding(ctx context.Context) ([]OutstandingBill, error) {
	r.calls++
	return r.outstanding, nil
}

func newTestService(t *testing.T, repo *memoryReportRepo) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewService(repo, NewCache(client, time.Minute))
	svc.now = func() time.Time {
		return time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestCollectionReportCachesResult(t *testing.T) {
	repo := &memoryReportRepo{summary: CollectionReport{
		BillCount:   10,
		TotalBilled: 50000,
		Collected:   32000,
		Outstanding: 18000,
		PaidBills:   6,
		UnpaidBills: 4,
	}}
	svc := newTestService(t, repo)
	ctx := context.Background()
	period := shared.Period{Month: 8, Year: 2026}

	first, err := svc.Collection(ctx, period)
	require.NoError(t, err)
	require.Equal(t, 50000.0, first.TotalBilled)
	require.Equal(t, 1, repo.calls)

	second, err := svc.Collection(ctx, period)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, repo.calls)
}

func TestCollectionReportRejectsInvalidPeriod(t *testing.T) {
	svc := newTestService(t, &memoryReportRepo{})

	_, err := svc.Collection(context.Background(), shared.Period{Month: 13, Year: 2026})
	require.Error(t, err)
}

func TestBumpInvalidatesCachedReports(t *testing.T) {
	repo := &memoryReportRepo{summary: CollectionReport{TotalBilled: 1000}}
	svc := newTestService(t, repo)
	ctx := context.Background()
	period := shared.Period{Month: 8, Year: 2026}

	_, err := svc.Collection(ctx, period)
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls)

	require.NoError(t, svc.Bump(ctx))

	_, err = svc.Collection(ctx, period)
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls)
}

func TestDefaultersReportAgesOutstanding(t *testing.T) {
	due := func(daysAgo int) *time.Time {
		d := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo)
		return &d
	}
	repo := &memoryReportRepo{outstanding: []OutstandingBill{
		{PropertyNumber: "A-101", BlockName: "Block A", Balance: 500, DueDate: due(10)},
		{PropertyNumber: "A-101", BlockName: "Block A", Balance: 700, DueDate: due(45)},
		{PropertyNumber: "B-202", BlockName: "Block B", Balance: 300, DueDate: due(-5)},
		{PropertyNumber: "C-303", BlockName: "Block C", Balance: 900, DueDate: due(200)},
	}}
	svc := newTestService(t, repo)

	report, err := svc.Defaulters(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Defaulters, 3)

	require.Equal(t, 300.0, report.Aging.Current)
	require.Equal(t, 500.0, report.Aging.Bucket30)
	require.Equal(t, 700.0, report.Aging.Bucket60)
	require.Equal(t, 900.0, report.Aging.Bucket120)

	top := report.Defaulters[0]
	require.Equal(t, "A-101", top.PropertyNumber)
	require.Equal(t, 1200.0, top.Outstanding)
	require.Equal(t, 2, top.UnpaidBills)
	require.Equal(t, 45, top.DaysOverdue)
}

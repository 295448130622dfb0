package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/developerboi1/tourclean/pkg/enums"
)

type fakeRepository struct {
	statusCounts []SubmissionStatusCount
	awarded      int64
	cashouts     []CashoutAggregate
	wallets      WalletTotals
}

func (f *fakeRepository) CountSubmissionsByStatus(_ context.Context, _ *time.Time) ([]SubmissionStatusCount, error) {
	return f.statusCounts, nil
}

func (f *fakeRepository) SumPointsAwarded(_ context.Context, _ *time.Time) (int64, error) {
	return f.awarded, nil
}

func (f *fakeRepository) CashoutAggregates(_ context.Context, _ *time.Time) ([]CashoutAggregate, error) {
	return f.cashouts, nil
}

func (f *fakeRepository) WalletTotals(_ context.Context) (*WalletTotals, error) {
	totals := f.wallets
	return &totals, nil
}

func TestOverviewComputesApprovalRate(t *testing.T) {
	repo := &fakeRepository{
		statusCounts: []SubmissionStatusCount{
			{Status: enums.SubmissionStatusApproved, Count: 30},
			{Status: enums.SubmissionStatusRejected, Count: 10},
			{Status: enums.SubmissionStatusNeedsReview, Count: 5},
		},
		awarded: 2250,
		cashouts: []CashoutAggregate{
			{Status: enums.CashoutStatusSucceeded, Count: 4, Points: 800, Cash: decimal.RequireFromString("40.00")},
			{Status: enums.CashoutStatusFailed, Count: 1, Points: 200, Cash: decimal.RequireFromString("10.00")},
		},
		wallets: WalletTotals{PointsBalance: 1450, LockedPoints: 200},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	overview, err := svc.Overview(context.Background(), nil)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if overview.Submissions.Total != 45 {
		t.Fatalf("total %d, want 45", overview.Submissions.Total)
	}
	if overview.Submissions.ApprovalRate != 0.75 {
		t.Fatalf("approval rate %f, want 0.75", overview.Submissions.ApprovalRate)
	}
	if overview.PointsAwarded != 2250 {
		t.Fatalf("points awarded %d, want 2250", overview.PointsAwarded)
	}
	if overview.PointsOutstanding != 1450 || overview.PointsLocked != 200 {
		t.Fatalf("wallet totals %d/%d, want 1450/200", overview.PointsOutstanding, overview.PointsLocked)
	}
	if got := overview.CashPaidOut.StringFixed(2); got != "40.00" {
		t.Fatalf("cash paid out %s, want 40.00", got)
	}
}

func TestOverviewHandlesNoDecisions(t *testing.T) {
	repo := &fakeRepository{
		statusCounts: []SubmissionStatusCount{
			{Status: enums.SubmissionStatusQueued, Count: 3},
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	overview, err := svc.Overview(context.Background(), nil)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if overview.Submissions.ApprovalRate != 0 {
		t.Fatalf("approval rate %f, want 0 with no decisions", overview.Submissions.ApprovalRate)
	}
}

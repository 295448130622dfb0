package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/developerboi1/tourclean/pkg/enums"
	pkgerrors "github.com/developerboi1/tourclean/pkg/errors"
)

// SubmissionStats summarizes the review pipeline for the council dashboard.
type SubmissionStats struct {
	ByStatus     map[enums.SubmissionStatus]int64 `json:"by_status"`
	Total        int64                            `json:"total"`
	ApprovalRate float64                          `json:"approval_rate"`
}

// CashoutStats summarizes redemptions by status.
type CashoutStats struct {
	Status enums.CashoutStatus `json:"status"`
	Count  int64               `json:"count"`
	Points int64               `json:"points"`
	Cash   decimal.Decimal     `json:"cash"`
}

// OverviewDTO is the council reporting snapshot.
type OverviewDTO struct {
	Since             *time.Time      `json:"since,omitempty"`
	Submissions       SubmissionStats `json:"submissions"`
	PointsAwarded     int64           `json:"points_awarded"`
	PointsOutstanding int64           `json:"points_outstanding"`
	PointsLocked      int64           `json:"points_locked"`
	Cashouts          []CashoutStats  `json:"cashouts"`
	CashPaidOut       decimal.Decimal `json:"cash_paid_out"`
}

// Service computes council-facing aggregates.
type Service interface {
	Overview(ctx context.Context, since *time.Time) (*OverviewDTO, error)
}

type service struct {
	repo Repository
}

// NewService wires the analytics service with its repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "analytics repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Overview(ctx context.Context, since *time.Time) (*OverviewDTO, error) {
	statusCounts, err := s.repo.CountSubmissionsByStatus(ctx, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count submissions")
	}

	byStatus := make(map[enums.SubmissionStatus]int64, len(statusCounts))
	var total, decided, approved int64
	for _, row := range statusCounts {
		byStatus[row.Status] = row.Count
		total += row.Count
		switch row.Status {
		case enums.SubmissionStatusApproved:
			approved += row.Count
			decided += row.Count
		case enums.SubmissionStatusRejected:
			decided += row.Count
		}
	}
	approvalRate := 0.0
	if decided > 0 {
		approvalRate = float64(approved) / float64(decided)
	}

	pointsAwarded, err := s.repo.SumPointsAwarded(ctx, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum points awarded")
	}

	cashoutRows, err := s.repo.CashoutAggregates(ctx, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregate cashouts")
	}
	cashouts := make([]CashoutStats, 0, len(cashoutRows))
	cashPaid := decimal.Zero
	for _, row := range cashoutRows {
		cashouts = append(cashouts, CashoutStats{
			Status: row.Status,
			Count:  row.Count,
			Points: row.Points,
			Cash:   row.Cash,
		})
		if row.Status == enums.CashoutStatusSucceeded {
			cashPaid = cashPaid.Add(row.Cash)
		}
	}

	walletTotals, err := s.repo.WalletTotals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "wallet totals")
	}

	return &OverviewDTO{
		Since: since,
		Submissions: SubmissionStats{
			ByStatus:     byStatus,
			Total:        total,
			ApprovalRate: approvalRate,
		},
		PointsAwarded:     pointsAwarded,
		PointsOutstanding: walletTotals.PointsBalance,
		PointsLocked:      walletTotals.LockedPoints,
		Cashouts:          cashouts,
		CashPaidOut:       cashPaid,
	}, nil
}

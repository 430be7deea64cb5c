package services

import (
	"context"

	"github.com/shopspring/decimal"

	"conveyease/internal/core/domain"
	"conveyease/internal/core/workflow"
)

// DashboardService builds per-user summaries over visible bills
type DashboardService struct {
	bills *BillService
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(bills *BillService) *DashboardService {
	return &DashboardService{bills: bills}
}

// DashboardSummary represents dashboard data for one user
type DashboardSummary struct {
	Role          domain.Role               `json:"role"`
	TotalBills    int                       `json:"total_bills"`
	TotalAmount   decimal.Decimal           `json:"total_amount"`
	PendingAmount decimal.Decimal           `json:"pending_amount"`
	PaidAmount    decimal.Decimal           `json:"paid_amount"`
	ByStatus      map[domain.BillStatus]int `json:"by_status"`
	Awaiting      []*BillResponse           `json:"awaiting_action"`
	Recent        []*BillResponse           `json:"recent"`
}

const recentBills = 5

// Summary returns counts and amounts over the bills actor may see, plus
// the bills actor can move forward now
func (s *DashboardService) Summary(ctx context.Context, actor workflow.Actor) (*DashboardSummary, error) {
	visible, err := s.bills.Visible(ctx, actor)
	if err != nil {
		return nil, err
	}

	sum := &DashboardSummary{
		Role:          actor.Role,
		TotalBills:    len(visible),
		TotalAmount:   decimal.Zero,
		PendingAmount: decimal.Zero,
		PaidAmount:    decimal.Zero,
		ByStatus:      make(map[domain.BillStatus]int, len(domain.BillStatuses)),
	}
	for _, st := range domain.BillStatuses {
		sum.ByStatus[st] = 0
	}

	for _, b := range visible {
		sum.ByStatus[b.Status]++
		sum.TotalAmount = sum.TotalAmount.Add(b.Amount)
		switch {
		case b.Status == domain.StatusPaid:
			sum.PaidAmount = sum.PaidAmount.Add(b.Amount)
		case domain.IsPending(b.Status):
			sum.PendingAmount = sum.PendingAmount.Add(b.Amount)
		}
	}

	sum.Awaiting = ToBillResponses(workflow.AwaitingAction(visible, actor))

	// newest first
	n := min(recentBills, len(visible))
	sum.Recent = make([]*BillResponse, 0, n)
	for i := len(visible) - 1; i >= len(visible)-n; i-- {
		sum.Recent = append(sum.Recent, ToBillResponse(visible[i]))
	}
	return sum, nil
}

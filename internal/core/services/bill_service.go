package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"conveyease/internal/config"
	"conveyease/internal/core/domain"
	"conveyease/internal/core/workflow"
	"conveyease/internal/pkg/backoff"
)

// BillService runs bill operations on behalf of an authenticated actor:
// load, authorize, apply the workflow engine, store.
type BillService struct {
	bills  BillStore
	users  UserStore
	engine *workflow.Engine
	log    *zap.Logger

	retries   int
	baseDelay time.Duration
	maxDelay  time.Duration
	newID     func() string
}

// NewBillService creates a new bill service
func NewBillService(bills BillStore, users UserStore, engine *workflow.Engine, cfg *config.Config, log *zap.Logger) *BillService {
	return &BillService{
		bills:     bills,
		users:     users,
		engine:    engine,
		log:       log,
		retries:   cfg.Bills.WriteRetries,
		baseDelay: cfg.Bills.RetryBaseDelay,
		maxDelay:  cfg.Bills.RetryMaxDelay,
		newID:     func() string { return uuid.New().String() },
	}
}

// ConveyanceItemInput is one trip line of a new bill
type ConveyanceItemInput struct {
	Date      string          `json:"date" validate:"required,datetime=2006-01-02"`
	From      string          `json:"from" validate:"required,max=200"`
	To        string          `json:"to" validate:"required,max=200"`
	Transport string          `json:"transport" validate:"max=50"`
	Purpose   string          `json:"purpose" validate:"max=500"`
	Amount    decimal.Decimal `json:"amount"`
}

// CreateBillInput represents bill creation input
type CreateBillInput struct {
	Title  string                `json:"title" validate:"required,max=200"`
	Amount decimal.Decimal       `json:"amount"`
	Items  []ConveyanceItemInput `json:"items" validate:"omitempty,max=50,dive"`
	Draft  bool                  `json:"draft"`
}

// BillFilter narrows List results
type BillFilter struct {
	Status *domain.BillStatus
	Offset int
	Limit  int
}

// HistoryEntry is a history event with the actor's display name
type HistoryEntry struct {
	Status      domain.BillStatus `json:"status"`
	StatusLabel string            `json:"status_label"`
	Timestamp   time.Time         `json:"timestamp"`
	ActorID     string            `json:"actor_id"`
	ActorName   string            `json:"actor_name"`
	Comment     *string           `json:"comment"`
}

// BillItemResponse is one trip line in API output
type BillItemResponse struct {
	Date      string          `json:"date"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Transport string          `json:"transport,omitempty"`
	Purpose   string          `json:"purpose,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
}

// BillResponse represents bill data for API responses
type BillResponse struct {
	ID          string             `json:"id"`
	EmployeeID  string             `json:"employee_id"`
	Title       string             `json:"title"`
	Amount      decimal.Decimal    `json:"amount"`
	Status      domain.BillStatus  `json:"status"`
	StatusLabel string             `json:"status_label"`
	Items       []BillItemResponse `json:"items"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Version     int64              `json:"version"`
}

// ToBillResponse converts a bill to its API shape
func ToBillResponse(b *domain.Bill) *BillResponse {
	items := make([]BillItemResponse, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, BillItemResponse{
			Date:      it.Date.Format("2006-01-02"),
			From:      it.From,
			To:        it.To,
			Transport: it.Transport,
			Purpose:   it.Purpose,
			Amount:    it.Amount,
		})
	}
	return &BillResponse{
		ID:          b.ID,
		EmployeeID:  b.EmployeeID,
		Title:       b.Title,
		Amount:      b.Amount,
		Status:      b.Status,
		StatusLabel: b.Status.Label(),
		Items:       items,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
		Version:     b.Version,
	}
}

// ToBillResponses converts a slice of bills, never returning nil
func ToBillResponses(bills []*domain.Bill) []*BillResponse {
	out := make([]*BillResponse, 0, len(bills))
	for _, b := range bills {
		out = append(out, ToBillResponse(b))
	}
	return out
}

// Create stores a new bill owned by actor. Only employees file bills.
func (s *BillService) Create(ctx context.Context, actor workflow.Actor, input *CreateBillInput) (*domain.Bill, error) {
	if actor.Role != domain.RoleEmployee {
		return nil, fmt.Errorf("%w: only employees can file bills", domain.ErrForbidden)
	}

	items := make([]domain.ConveyanceItem, 0, len(input.Items))
	for i, it := range input.Items {
		date, err := time.Parse("2006-01-02", it.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d date %q", domain.ErrInvalidInput, i+1, it.Date)
		}
		items = append(items, domain.ConveyanceItem{
			Date:      date,
			From:      it.From,
			To:        it.To,
			Transport: it.Transport,
			Purpose:   it.Purpose,
			Amount:    it.Amount,
		})
	}

	bill, err := domain.NewBill(s.newID(), actor.ID, input.Title, input.Amount, items, input.Draft, s.engine.Now())
	if err != nil {
		return nil, err
	}
	if err := s.bills.CreateBill(ctx, bill); err != nil {
		return nil, err
	}

	s.log.Info("bill created",
		zap.String("bill_id", bill.ID),
		zap.String("employee_id", bill.EmployeeID),
		zap.String("amount", bill.Amount.StringFixed(2)),
		zap.String("status", string(bill.Status)),
	)
	return bill, nil
}

// Get returns a bill the actor is allowed to see
func (s *BillService) Get(ctx context.Context, actor workflow.Actor, id string) (*domain.Bill, error) {
	bill, err := s.bills.GetBill(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(ctx, actor, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

// Visible returns every bill the actor may see, in storage order
func (s *BillService) Visible(ctx context.Context, actor workflow.Actor) ([]*domain.Bill, error) {
	bills, err := s.bills.ListBills(ctx)
	if err != nil {
		return nil, err
	}

	var users []*domain.User
	if actor.Role == domain.RoleSupervisor {
		if users, err = s.users.ListUsers(ctx); err != nil {
			return nil, err
		}
	}
	return workflow.VisibleBills(bills, asUser(actor), users), nil
}

// List returns one page of visible bills and the total count after filtering
func (s *BillService) List(ctx context.Context, actor workflow.Actor, filter BillFilter) ([]*domain.Bill, int64, error) {
	visible, err := s.Visible(ctx, actor)
	if err != nil {
		return nil, 0, err
	}

	filtered := visible
	if filter.Status != nil {
		filtered = make([]*domain.Bill, 0, len(visible))
		for _, b := range visible {
			if b.Status == *filter.Status {
				filtered = append(filtered, b)
			}
		}
	}

	total := int64(len(filtered))
	start := min(max(filter.Offset, 0), len(filtered))
	end := len(filtered)
	if filter.Limit > 0 {
		end = min(start+filter.Limit, len(filtered))
	}
	return filtered[start:end], total, nil
}

// Transition applies a status change with optimistic concurrency. On a
// write conflict the whole read-modify-write is retried with backoff; once
// the retries are spent the error wraps both ErrWriteConflict and
// ErrTransient. Authorization failures return immediately.
func (s *BillService) Transition(ctx context.Context, actor workflow.Actor, id string, target domain.BillStatus, comment *string) (*domain.Bill, error) {
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidBillStatus, target)
	}

	for attempt := 0; ; attempt++ {
		bill, err := s.bills.GetBill(ctx, id)
		if err != nil {
			return nil, err
		}
		if attempt == 0 {
			if err := s.authorizeView(ctx, actor, bill); err != nil {
				return nil, err
			}
		}

		updated, err := s.engine.Transition(bill, actor, target, comment)
		if err != nil {
			return nil, err
		}

		err = s.bills.PutBill(ctx, updated)
		if err == nil {
			s.log.Info("bill transitioned",
				zap.String("bill_id", id),
				zap.String("from", string(bill.Status)),
				zap.String("to", string(target)),
				zap.String("actor_id", actor.ID),
				zap.Int("attempt", attempt+1),
			)
			return updated, nil
		}
		if !errors.Is(err, domain.ErrWriteConflict) {
			return nil, err
		}
		if attempt >= s.retries {
			s.log.Warn("bill write retries exhausted",
				zap.String("bill_id", id),
				zap.Int("attempts", attempt+1),
			)
			return nil, fmt.Errorf("bill %s after %d attempts: %w: %w", id, attempt+1, domain.ErrTransient, err)
		}

		delay := backoff.Delay(s.baseDelay, s.maxDelay, attempt)
		s.log.Debug("bill write conflict, retrying",
			zap.String("bill_id", id),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
		)
		if err := backoff.Sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// Options lists the transitions the actor may apply to the bill now
func (s *BillService) Options(ctx context.Context, actor workflow.Actor, id string) ([]workflow.Option, error) {
	bill, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.engine.Options(bill, actor), nil
}

// History returns the bill's events with actor names resolved.
// Unknown and system actors are shown as "System".
func (s *BillService) History(ctx context.Context, actor workflow.Actor, id string) ([]HistoryEntry, error) {
	bill, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	entries := make([]HistoryEntry, 0, len(bill.History))
	for _, e := range bill.History {
		name, ok := names[e.ActorID]
		if !ok || e.ActorID == domain.SystemActorID {
			name = domain.SystemActorName
		}
		entries = append(entries, HistoryEntry{
			Status:      e.Status,
			StatusLabel: e.Status.Label(),
			Timestamp:   e.Timestamp,
			ActorID:     e.ActorID,
			ActorName:   name,
			Comment:     e.Comment,
		})
	}
	return entries, nil
}

// authorizeView fails with ErrForbidden when actor may not see bill
func (s *BillService) authorizeView(ctx context.Context, actor workflow.Actor, bill *domain.Bill) error {
	var users []*domain.User
	if actor.Role == domain.RoleSupervisor {
		owner, err := s.users.GetUser(ctx, bill.EmployeeID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if owner != nil {
			users = []*domain.User{owner}
		}
	}
	if !workflow.CanView(bill, asUser(actor), users) {
		return fmt.Errorf("%w: bill %s", domain.ErrForbidden, bill.ID)
	}
	return nil
}

func asUser(actor workflow.Actor) *domain.User {
	return &domain.User{ID: actor.ID, Role: actor.Role}
}

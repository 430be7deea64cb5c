package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BillStatus is the position of a bill in the approval pipeline
type BillStatus string

const (
	StatusDraft                BillStatus = "DRAFT"
	StatusSubmitted            BillStatus = "SUBMITTED"
	StatusApprovedBySupervisor BillStatus = "APPROVED_BY_SUPERVISOR"
	StatusRejectedBySupervisor BillStatus = "REJECTED_BY_SUPERVISOR"
	StatusApprovedByAccounts   BillStatus = "APPROVED_BY_ACCOUNTS"
	StatusRejectedByAccounts   BillStatus = "REJECTED_BY_ACCOUNTS"
	StatusApprovedByManagement BillStatus = "APPROVED_BY_MANAGEMENT"
	StatusRejectedByManagement BillStatus = "REJECTED_BY_MANAGEMENT"
	StatusPaid                 BillStatus = "PAID"
)

// BillStatuses lists every status in pipeline order
var BillStatuses = []BillStatus{
	StatusDraft,
	StatusSubmitted,
	StatusApprovedBySupervisor,
	StatusRejectedBySupervisor,
	StatusApprovedByAccounts,
	StatusRejectedByAccounts,
	StatusApprovedByManagement,
	StatusRejectedByManagement,
	StatusPaid,
}

func (s BillStatus) IsValid() bool {
	for _, known := range BillStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Label returns the status in display form, e.g. "APPROVED BY SUPERVISOR"
func (s BillStatus) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// ParseBillStatus converts a raw value into a known status
func ParseBillStatus(raw string) (BillStatus, error) {
	s := BillStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidBillStatus, raw)
	}
	return s, nil
}

// IsTerminal reports whether no further transition can leave status
func IsTerminal(status BillStatus) bool {
	return status == StatusPaid
}

// IsRejected reports whether status is one of the REJECTED_BY_* statuses
func IsRejected(status BillStatus) bool {
	switch status {
	case StatusRejectedBySupervisor, StatusRejectedByAccounts, StatusRejectedByManagement:
		return true
	}
	return false
}

// IsPending reports whether status waits on an approver
func IsPending(status BillStatus) bool {
	return status != StatusDraft && !IsTerminal(status) && !IsRejected(status)
}

// HistoryEvent is one immutable entry of a bill's audit log
type HistoryEvent struct {
	Status    BillStatus
	Timestamp time.Time
	ActorID   string
	Comment   *string
}

// HasComment reports whether the event carries a non-blank comment
func (e HistoryEvent) HasComment() bool {
	return e.Comment != nil && strings.TrimSpace(*e.Comment) != ""
}

// ConveyanceItem is a single trip claimed on a bill
type ConveyanceItem struct {
	Date      time.Time
	From      string
	To        string
	Transport string
	Purpose   string
	Amount    decimal.Decimal
}

func (i ConveyanceItem) Validate() error {
	if i.Date.IsZero() {
		return fmt.Errorf("%w: item date is required", ErrInvalidInput)
	}
	if strings.TrimSpace(i.From) == "" || strings.TrimSpace(i.To) == "" {
		return fmt.Errorf("%w: item origin and destination are required", ErrInvalidInput)
	}
	return checkAmount(i.Amount)
}

// AmountScale is the number of decimal places kept for money
const AmountScale = 2

// MaxAmount is the largest amount a decimal(15,2) column holds
var MaxAmount = decimal.RequireFromString("9999999999999.99")

func checkAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return fmt.Errorf("%w: got %s", ErrInvalidAmount, amount)
	}
	if amount.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: %s exceeds %s", ErrInvalidAmount, amount, MaxAmount)
	}
	return nil
}

// Bill is an expense claim tracked through the approval pipeline.
//
// Status always equals the status of the last history event. History is
// append-only; the approval engine returns updated copies instead of
// mutating a bill in place.
type Bill struct {
	ID         string
	EmployeeID string
	Title      string
	Amount     decimal.Decimal
	Status     BillStatus
	Items      []ConveyanceItem
	History    []HistoryEvent
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Version is owned by storage and used for compare-and-swap on write.
	Version int64
}

// NewBill builds a bill seeded with its first history event. When items are
// given, amount may be zero and is then derived from the items.
func NewBill(id, employeeID, title string, amount decimal.Decimal, items []ConveyanceItem, draft bool, now time.Time) (*Bill, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if id == "" || employeeID == "" {
		return nil, fmt.Errorf("%w: bill id and employee id are required", ErrInvalidInput)
	}

	if len(items) > 0 {
		total := decimal.Zero
		for _, item := range items {
			if err := item.Validate(); err != nil {
				return nil, err
			}
			total = total.Add(item.Amount)
		}
		if amount.IsZero() {
			amount = total
		} else if !amount.Equal(total) {
			return nil, fmt.Errorf("%w: amount %s does not match item total %s", ErrInvalidInput, amount, total)
		}
	}
	if err := checkAmount(amount); err != nil {
		return nil, err
	}

	first := StatusSubmitted
	if draft {
		first = StatusDraft
	}

	return &Bill{
		ID:         id,
		EmployeeID: employeeID,
		Title:      title,
		Amount:     amount,
		Status:     first,
		Items:      append([]ConveyanceItem(nil), items...),
		History: []HistoryEvent{{
			Status:    first,
			Timestamp: now,
			ActorID:   employeeID,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Validate checks the structural invariants of a bill
func (b *Bill) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return ErrTitleRequired
	}
	if err := checkAmount(b.Amount); err != nil {
		return err
	}
	if !b.Status.IsValid() {
		return ErrInvalidBillStatus
	}
	if len(b.History) == 0 {
		return fmt.Errorf("%w: empty history", ErrCorruptHistory)
	}

	first := b.History[0]
	if first.Status != StatusSubmitted && first.Status != StatusDraft {
		return fmt.Errorf("%w: first event is %s", ErrCorruptHistory, first.Status)
	}
	if first.ActorID != b.EmployeeID {
		return fmt.Errorf("%w: first event not attributed to owner", ErrCorruptHistory)
	}
	if last := b.History[len(b.History)-1]; last.Status != b.Status {
		return fmt.Errorf("%w: status %s but last event is %s", ErrCorruptHistory, b.Status, last.Status)
	}
	for i := 1; i < len(b.History); i++ {
		if b.History[i].Timestamp.Before(b.History[i-1].Timestamp) {
			return fmt.Errorf("%w: event %d precedes event %d", ErrCorruptHistory, i, i-1)
		}
	}
	return nil
}

// LastEvent returns the most recent history event
func (b *Bill) LastEvent() HistoryEvent {
	return b.History[len(b.History)-1]
}

// Clone returns a deep copy of b
func (b *Bill) Clone() *Bill {
	c := *b
	c.Items = append([]ConveyanceItem(nil), b.Items...)
	c.History = make([]HistoryEvent, len(b.History))
	for i, e := range b.History {
		if e.Comment != nil {
			comment := *e.Comment
			e.Comment = &comment
		}
		c.History[i] = e
	}
	return &c
}

package workflow

import (
	"fmt"
	"strings"
	"time"

	"conveyease/internal/core/domain"
)

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Actor is the already authenticated caller acting on a bill
type Actor struct {
	ID   string
	Role domain.Role
}

// TransitionError reports a rejected transition. Kind is
// domain.ErrUnauthorized or domain.ErrCommentRequired.
type TransitionError struct {
	BillID string
	From   domain.BillStatus
	To     domain.BillStatus
	Role   domain.Role
	Kind   error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("bill %s: %s may not move %s to %s: %v", e.BillID, e.Role, e.From, e.To, e.Kind)
}

func (e *TransitionError) Unwrap() error {
	return e.Kind
}

// Engine applies the transition table to bills. It performs no I/O.
type Engine struct {
	clock Clock
}

// NewEngine creates an engine; a nil clock means SystemClock
func NewEngine(clock Clock) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Engine{clock: clock}
}

// Now exposes the engine's clock to callers creating bills
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// Transition moves bill to target on behalf of actor and returns the
// updated copy. The input bill is left untouched.
func (e *Engine) Transition(bill *domain.Bill, actor Actor, target domain.BillStatus, comment *string) (*domain.Bill, error) {
	if len(bill.History) == 0 {
		return nil, fmt.Errorf("bill %s: %w", bill.ID, domain.ErrCorruptHistory)
	}
	isOwner := actor.ID == bill.EmployeeID

	opt, ok := Lookup(bill.Status, actor.Role, isOwner, target)
	if !ok {
		return nil, e.fail(bill, actor, target, domain.ErrUnauthorized)
	}
	if opt.CommentRequired && blank(comment) {
		return nil, e.fail(bill, actor, target, domain.ErrCommentRequired)
	}

	now := e.clock.Now()
	// a clock step backwards must not reorder history
	if last := bill.LastEvent().Timestamp; now.Before(last) {
		now = last
	}

	next := bill.Clone()
	next.History = append(next.History, domain.HistoryEvent{
		Status:    target,
		Timestamp: now,
		ActorID:   actor.ID,
		Comment:   normalizeComment(comment),
	})
	next.Status = target
	next.UpdatedAt = now
	return next, nil
}

// Options lists what actor may do to bill right now
func (e *Engine) Options(bill *domain.Bill, actor Actor) []Option {
	return Permitted(bill.Status, actor.Role, actor.ID == bill.EmployeeID)
}

func (e *Engine) fail(bill *domain.Bill, actor Actor, target domain.BillStatus, kind error) error {
	return &TransitionError{
		BillID: bill.ID,
		From:   bill.Status,
		To:     target,
		Role:   actor.Role,
		Kind:   kind,
	}
}

func blank(comment *string) bool {
	return comment == nil || strings.TrimSpace(*comment) == ""
}

// normalizeComment trims the comment and drops it when blank
func normalizeComment(comment *string) *string {
	if blank(comment) {
		return nil
	}
	c := strings.TrimSpace(*comment)
	return &c
}

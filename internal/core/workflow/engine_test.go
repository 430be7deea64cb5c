package workflow

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conveyease/internal/core/domain"
)

var (
	employee   = Actor{ID: "user-1", Role: domain.RoleEmployee}
	supervisor = Actor{ID: "user-2", Role: domain.RoleSupervisor}
	accounts   = Actor{ID: "user-3", Role: domain.RoleAccounts}
	management = Actor{ID: "user-4", Role: domain.RoleManagement}
	colleague  = Actor{ID: "user-5", Role: domain.RoleEmployee}
)

// tickingClock advances one minute on every call
type tickingClock struct {
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.now = c.now.Add(time.Minute)
	return c.now
}

func newTestEngine() (*Engine, *tickingClock) {
	clock := &tickingClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	return NewEngine(clock), clock
}

func newSubmittedBill(t *testing.T, e *Engine) *domain.Bill {
	t.Helper()
	b, err := domain.NewBill("bill-1", employee.ID, "Client meeting travel", decimal.RequireFromString("150.75"), nil, false, e.Now())
	require.NoError(t, err)
	return b
}

func strPtr(s string) *string { return &s }

func TestEngineTransition(t *testing.T) {
	testCases := []struct {
		name        string
		from        domain.BillStatus
		actor       Actor
		target      domain.BillStatus
		comment     *string
		expectedErr error
	}{
		{
			name:   "supervisor_approves",
			from:   domain.StatusSubmitted,
			actor:  supervisor,
			target: domain.StatusApprovedBySupervisor,
		},
		{
			name:        "accounts_cannot_approve_submitted",
			from:        domain.StatusSubmitted,
			actor:       accounts,
			target:      domain.StatusApprovedBySupervisor,
			expectedErr: domain.ErrUnauthorized,
		},
		{
			name:        "supervisor_rejects_without_comment",
			from:        domain.StatusSubmitted,
			actor:       supervisor,
			target:      domain.StatusRejectedBySupervisor,
			expectedErr: domain.ErrCommentRequired,
		},
		{
			name:        "supervisor_rejects_with_blank_comment",
			from:        domain.StatusSubmitted,
			actor:       supervisor,
			target:      domain.StatusRejectedBySupervisor,
			comment:     strPtr("   "),
			expectedErr: domain.ErrCommentRequired,
		},
		{
			name:    "supervisor_rejects_with_comment",
			from:    domain.StatusSubmitted,
			actor:   supervisor,
			target:  domain.StatusRejectedBySupervisor,
			comment: strPtr("Please provide an itemized receipt."),
		},
		{
			name:        "accounts_rejects_without_comment",
			from:        domain.StatusApprovedBySupervisor,
			actor:       accounts,
			target:      domain.StatusRejectedByAccounts,
			expectedErr: domain.ErrCommentRequired,
		},
		{
			name:    "management_rejects_with_comment",
			from:    domain.StatusApprovedByAccounts,
			actor:   management,
			target:  domain.StatusRejectedByManagement,
			comment: strPtr("Over budget"),
		},
		{
			name:   "owner_resubmits",
			from:   domain.StatusRejectedBySupervisor,
			actor:  employee,
			target: domain.StatusSubmitted,
		},
		{
			name:        "supervisor_cannot_resubmit",
			from:        domain.StatusRejectedBySupervisor,
			actor:       supervisor,
			target:      domain.StatusSubmitted,
			expectedErr: domain.ErrUnauthorized,
		},
		{
			name:        "colleague_cannot_resubmit",
			from:        domain.StatusRejectedBySupervisor,
			actor:       colleague,
			target:      domain.StatusSubmitted,
			expectedErr: domain.ErrUnauthorized,
		},
		{
			name:        "unauthorized_wins_over_missing_comment",
			from:        domain.StatusSubmitted,
			actor:       management,
			target:      domain.StatusRejectedBySupervisor,
			expectedErr: domain.ErrUnauthorized,
		},
		{
			name:        "paid_is_terminal",
			from:        domain.StatusPaid,
			actor:       accounts,
			target:      domain.StatusPaid,
			expectedErr: domain.ErrUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			engine, _ := newTestEngine()
			bill := newSubmittedBill(t, engine)
			if tc.from != domain.StatusSubmitted {
				bill.History = append(bill.History, domain.HistoryEvent{
					Status:    tc.from,
					Timestamp: engine.Now(),
					ActorID:   domain.SystemActorID,
				})
				bill.Status = tc.from
			}
			before := bill.Clone()

			updated, err := engine.Transition(bill, tc.actor, tc.target, tc.comment)

			assert.Equal(t, before, bill, "input bill must not be mutated")
			if tc.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectedErr)
				var terr *TransitionError
				require.True(t, errors.As(err, &terr))
				assert.Equal(t, tc.from, terr.From)
				assert.Equal(t, tc.target, terr.To)
				assert.Nil(t, updated)
				return
			}

			require.NoError(t, err)
			require.Len(t, updated.History, len(bill.History)+1)
			assert.Equal(t, bill.History, updated.History[:len(bill.History)])

			last := updated.LastEvent()
			assert.Equal(t, tc.target, updated.Status)
			assert.Equal(t, tc.target, last.Status)
			assert.Equal(t, tc.actor.ID, last.ActorID)
			assert.Equal(t, last.Timestamp, updated.UpdatedAt)
			assert.Equal(t, bill.CreatedAt, updated.CreatedAt)
			assert.Equal(t, bill.EmployeeID, updated.EmployeeID)
			if tc.comment != nil {
				require.NotNil(t, last.Comment)
				assert.Equal(t, *tc.comment, *last.Comment)
			} else {
				assert.Nil(t, last.Comment)
			}
			assert.NoError(t, updated.Validate())
		})
	}
}

func TestEngineFullLifecycle(t *testing.T) {
	engine, _ := newTestEngine()
	bill := newSubmittedBill(t, engine)

	steps := []struct {
		actor  Actor
		target domain.BillStatus
	}{
		{supervisor, domain.StatusApprovedBySupervisor},
		{accounts, domain.StatusApprovedByAccounts},
		{management, domain.StatusApprovedByManagement},
		{accounts, domain.StatusPaid},
	}

	var err error
	for _, step := range steps {
		bill, err = engine.Transition(bill, step.actor, step.target, nil)
		require.NoError(t, err)
	}

	assert.Equal(t, domain.StatusPaid, bill.Status)
	require.Len(t, bill.History, 5)
	assert.Equal(t, []string{"user-1", "user-2", "user-3", "user-4", "user-3"}, actorIDs(bill))
	assert.Equal(t, "150.75", bill.Amount.StringFixed(2))
	assert.Empty(t, engine.Options(bill, accounts))
}

func TestEngineRejectAndResubmit(t *testing.T) {
	engine, _ := newTestEngine()
	bill := newSubmittedBill(t, engine)

	bill, err := engine.Transition(bill, supervisor, domain.StatusRejectedBySupervisor, strPtr(" Missing receipt "))
	require.NoError(t, err)
	assert.Equal(t, "Missing receipt", *bill.LastEvent().Comment)

	bill, err = engine.Transition(bill, employee, domain.StatusSubmitted, nil)
	require.NoError(t, err)

	bill, err = engine.Transition(bill, supervisor, domain.StatusApprovedBySupervisor, nil)
	require.NoError(t, err)

	assert.Equal(t, "bill-1", bill.ID)
	assert.Len(t, bill.History, 4)
	assert.NoError(t, bill.Validate())
}

func TestEngineClockGoingBackwards(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	engine := NewEngine(ClockFunc(func() time.Time { return now }))
	bill := newSubmittedBill(t, engine)

	now = now.Add(-time.Hour)
	updated, err := engine.Transition(bill, supervisor, domain.StatusApprovedBySupervisor, nil)
	require.NoError(t, err)
	assert.Equal(t, bill.CreatedAt, updated.UpdatedAt)
	assert.NoError(t, updated.Validate())
}

func TestEngineOptions(t *testing.T) {
	engine, _ := newTestEngine()
	bill := newSubmittedBill(t, engine)

	assert.Len(t, engine.Options(bill, supervisor), 2)
	assert.Empty(t, engine.Options(bill, employee))
	assert.Empty(t, engine.Options(bill, accounts))
}

func TestTransitionErrorMessage(t *testing.T) {
	err := &TransitionError{
		BillID: "bill-9",
		From:   domain.StatusSubmitted,
		To:     domain.StatusPaid,
		Role:   domain.RoleAccounts,
		Kind:   domain.ErrUnauthorized,
	}
	assert.Equal(t, "bill bill-9: accounts may not move SUBMITTED to PAID: unauthorized", err.Error())
}

func actorIDs(b *domain.Bill) []string {
	ids := make([]string, len(b.History))
	for i, e := range b.History {
		ids[i] = e.ActorID
	}
	return ids
}

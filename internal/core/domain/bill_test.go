package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func TestNewBill(t *testing.T) {
	item := func(amount string) ConveyanceItem {
		return ConveyanceItem{
			Date:      testNow,
			From:      "Office",
			To:        "Client HQ",
			Transport: "Taxi",
			Purpose:   "Meeting",
			Amount:    decimal.RequireFromString(amount),
		}
	}

	testCases := []struct {
		name           string
		title          string
		amount         decimal.Decimal
		items          []ConveyanceItem
		draft          bool
		expectedErr    error
		expectedAmount string
		expectedStatus BillStatus
	}{
		{
			name:           "submitted_bill",
			title:          "Client meeting travel",
			amount:         decimal.RequireFromString("150.75"),
			expectedAmount: "150.75",
			expectedStatus: StatusSubmitted,
		},
		{
			name:           "draft_bill",
			title:          "Client meeting travel",
			amount:         decimal.RequireFromString("10"),
			draft:          true,
			expectedAmount: "10",
			expectedStatus: StatusDraft,
		},
		{
			name:           "amount_derived_from_items",
			title:          "Site visits",
			items:          []ConveyanceItem{item("12.50"), item("7.25")},
			expectedAmount: "19.75",
			expectedStatus: StatusSubmitted,
		},
		{
			name:           "amount_matching_items",
			title:          "Site visits",
			amount:         decimal.RequireFromString("19.75"),
			items:          []ConveyanceItem{item("12.50"), item("7.25")},
			expectedAmount: "19.75",
			expectedStatus: StatusSubmitted,
		},
		{
			name:        "amount_not_matching_items",
			title:       "Site visits",
			amount:      decimal.RequireFromString("20"),
			items:       []ConveyanceItem{item("12.50"), item("7.25")},
			expectedErr: ErrInvalidInput,
		},
		{
			name:        "zero_item_amount",
			title:       "Site visits",
			items:       []ConveyanceItem{item("0")},
			expectedErr: ErrInvalidAmount,
		},
		{
			name:        "blank_title",
			title:       "   ",
			amount:      decimal.RequireFromString("1"),
			expectedErr: ErrTitleRequired,
		},
		{
			name:        "zero_amount",
			title:       "Lunch",
			amount:      decimal.Zero,
			expectedErr: ErrInvalidAmount,
		},
		{
			name:           "trailing_zeros_within_scale",
			title:          "Lunch",
			amount:         decimal.RequireFromString("4.500"),
			expectedAmount: "4.5",
			expectedStatus: StatusSubmitted,
		},
		{
			name:           "largest_amount",
			title:          "Relocation",
			amount:         MaxAmount,
			expectedAmount: "9999999999999.99",
			expectedStatus: StatusSubmitted,
		},
		{
			name:        "sub_cent_amount",
			title:       "Lunch",
			amount:      decimal.RequireFromString("0.004"),
			expectedErr: ErrInvalidAmount,
		},
		{
			name:        "three_decimal_places",
			title:       "Lunch",
			amount:      decimal.RequireFromString("12.345"),
			expectedErr: ErrInvalidAmount,
		},
		{
			name:        "amount_too_large",
			title:       "Lunch",
			amount:      decimal.RequireFromString("100000000000000"),
			expectedErr: ErrInvalidAmount,
		},
		{
			name:        "sub_cent_item_amount",
			title:       "Site visits",
			items:       []ConveyanceItem{item("12.50"), item("0.005")},
			expectedErr: ErrInvalidAmount,
		},
		{
			name:        "item_amount_too_large",
			title:       "Site visits",
			items:       []ConveyanceItem{item("10000000000000")},
			expectedErr: ErrInvalidAmount,
		},
		{
			name:        "negative_amount",
			title:       "Lunch",
			amount:      decimal.RequireFromString("-4"),
			expectedErr: ErrInvalidAmount,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bill, err := NewBill("bill-1", "user-1", tc.title, tc.amount, tc.items, tc.draft, testNow)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Nil(t, bill)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectedAmount, bill.Amount.String())
			assert.Equal(t, tc.expectedStatus, bill.Status)
			require.Len(t, bill.History, 1)
			assert.Equal(t, tc.expectedStatus, bill.History[0].Status)
			assert.Equal(t, "user-1", bill.History[0].ActorID)
			assert.Nil(t, bill.History[0].Comment)
			assert.Equal(t, testNow, bill.CreatedAt)
			assert.Equal(t, bill.CreatedAt, bill.UpdatedAt)
			assert.NoError(t, bill.Validate())
		})
	}
}

func TestBillValidate(t *testing.T) {
	valid := func() *Bill {
		b, err := NewBill("bill-1", "user-1", "Taxi", decimal.RequireFromString("5"), nil, false, testNow)
		require.NoError(t, err)
		return b
	}

	t.Run("empty_history", func(t *testing.T) {
		b := valid()
		b.History = nil
		assert.ErrorIs(t, b.Validate(), ErrCorruptHistory)
	})

	t.Run("status_differs_from_last_event", func(t *testing.T) {
		b := valid()
		b.Status = StatusPaid
		assert.ErrorIs(t, b.Validate(), ErrCorruptHistory)
	})

	t.Run("first_event_not_by_owner", func(t *testing.T) {
		b := valid()
		b.History[0].ActorID = "user-2"
		assert.ErrorIs(t, b.Validate(), ErrCorruptHistory)
	})

	t.Run("first_event_not_submission", func(t *testing.T) {
		b := valid()
		b.History[0].Status = StatusApprovedBySupervisor
		b.Status = StatusApprovedBySupervisor
		assert.ErrorIs(t, b.Validate(), ErrCorruptHistory)
	})

	t.Run("events_out_of_order", func(t *testing.T) {
		b := valid()
		b.History = append(b.History, HistoryEvent{
			Status:    StatusApprovedBySupervisor,
			Timestamp: testNow.Add(-time.Minute),
			ActorID:   "user-2",
		})
		b.Status = StatusApprovedBySupervisor
		assert.ErrorIs(t, b.Validate(), ErrCorruptHistory)
	})

	t.Run("unknown_status", func(t *testing.T) {
		b := valid()
		b.Status = "ARCHIVED"
		assert.True(t, errors.Is(b.Validate(), ErrInvalidBillStatus))
	})
}

func TestBillClone(t *testing.T) {
	comment := "receipt missing"
	b, err := NewBill("bill-1", "user-1", "Taxi", decimal.RequireFromString("5"), nil, false, testNow)
	require.NoError(t, err)
	b.History = append(b.History, HistoryEvent{
		Status:    StatusRejectedBySupervisor,
		Timestamp: testNow,
		ActorID:   "user-2",
		Comment:   &comment,
	})

	c := b.Clone()
	c.History[0].ActorID = "someone-else"
	*c.History[1].Comment = "changed"
	c.History = append(c.History, HistoryEvent{Status: StatusSubmitted})

	assert.Equal(t, "user-1", b.History[0].ActorID)
	assert.Equal(t, "receipt missing", *b.History[1].Comment)
	assert.Len(t, b.History, 2)
}

func TestStatusQueries(t *testing.T) {
	for _, s := range BillStatuses {
		assert.True(t, s.IsValid(), s)
		assert.Equal(t, s == StatusPaid, IsTerminal(s), s)
	}

	assert.True(t, IsRejected(StatusRejectedBySupervisor))
	assert.True(t, IsRejected(StatusRejectedByAccounts))
	assert.True(t, IsRejected(StatusRejectedByManagement))
	assert.False(t, IsRejected(StatusSubmitted))
	assert.False(t, IsRejected(StatusPaid))

	assert.True(t, IsPending(StatusApprovedByAccounts))
	assert.False(t, IsPending(StatusDraft))
	assert.False(t, IsPending(StatusRejectedByAccounts))

	assert.Equal(t, "APPROVED BY SUPERVISOR", StatusApprovedBySupervisor.Label())
}

func TestParseBillStatus(t *testing.T) {
	s, err := ParseBillStatus(" approved_by_accounts ")
	require.NoError(t, err)
	assert.Equal(t, StatusApprovedByAccounts, s)

	_, err = ParseBillStatus("CANCELLED")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

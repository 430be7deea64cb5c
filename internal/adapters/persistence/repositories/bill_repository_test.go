package repositories

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conveyease/internal/core/domain"
)

func TestHistoryRowsFromOffset(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	comment := "Please provide an itemized receipt."
	history := []domain.HistoryEvent{
		{Status: domain.StatusSubmitted, Timestamp: now, ActorID: "user-1"},
		{Status: domain.StatusRejectedBySupervisor, Timestamp: now.Add(time.Hour), ActorID: "user-2", Comment: &comment},
		{Status: domain.StatusSubmitted, Timestamp: now.Add(2 * time.Hour), ActorID: "user-1"},
	}

	rows := historyRows("bill-3", history, 1)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Seq)
	assert.Equal(t, "REJECTED_BY_SUPERVISOR", rows[0].Status)
	assert.Equal(t, &comment, rows[0].Comment)
	assert.Equal(t, 2, rows[1].Seq)
	assert.Equal(t, "bill-3", rows[1].BillID)

	assert.Empty(t, historyRows("bill-3", history, 3))
}

func TestBillModelKeepsItemOrder(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bill, err := domain.NewBill("bill-1", "user-1", "Site visits", decimal.Zero, []domain.ConveyanceItem{
		{Date: now, From: "Office", To: "Plant", Transport: "Bus", Amount: decimal.RequireFromString("4.50")},
		{Date: now, From: "Plant", To: "Office", Transport: "Taxi", Amount: decimal.RequireFromString("12.00")},
	}, false, now)
	require.NoError(t, err)

	m := toBillModel(bill)
	require.Len(t, m.Items, 2)
	assert.Equal(t, 0, m.Items[0].Position)
	assert.Equal(t, "Plant", m.Items[1].FromPlace)
	assert.Equal(t, "SUBMITTED", m.Status)

	back := toDomainBill(m)
	assert.Equal(t, bill.Items, back.Items)
	assert.Equal(t, bill.History, back.History)
	assert.True(t, bill.Amount.Equal(back.Amount))
}

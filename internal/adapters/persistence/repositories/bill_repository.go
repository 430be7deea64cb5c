package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"conveyease/internal/adapters/persistence/models"
	"conveyease/internal/core/domain"
	"conveyease/internal/core/services"
)

// billRepository implements services.BillStore on top of gorm
type billRepository struct {
	db *gorm.DB
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *gorm.DB) services.BillStore {
	return &billRepository{db: db}
}

func (r *billRepository) withChildren(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("seq") })
}

// GetBill loads a bill with its items and history
func (r *billRepository) GetBill(ctx context.Context, id string) (*domain.Bill, error) {
	var bill models.Bill
	err := r.withChildren(ctx).Where("id = ?", id).First(&bill).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrBillNotFound, id)
		}
		return nil, err
	}
	return toDomainBill(&bill), nil
}

// CreateBill inserts the bill, its items and its seed history at version 1
func (r *billRepository) CreateBill(ctx context.Context, bill *domain.Bill) error {
	m := toBillModel(bill)
	m.Version = 1

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(m).Error
	})
	if err != nil {
		return fmt.Errorf("create bill %s: %w", bill.ID, mapError(err))
	}
	bill.Version = 1
	return nil
}

// PutBill bumps the version with a conditional update and appends the
// history rows the database does not have yet, in one transaction.
// Title, amount and items are never rewritten.
func (r *billRepository) PutBill(ctx context.Context, bill *domain.Bill) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Bill{}).
			Where("id = ? AND version = ?", bill.ID, bill.Version).
			Updates(map[string]interface{}{
				"status":     string(bill.Status),
				"updated_at": bill.UpdatedAt,
				"version":    gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return mapError(res.Error)
		}

		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Bill{}).Where("id = ?", bill.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("%w: %s", domain.ErrBillNotFound, bill.ID)
			}
			return fmt.Errorf("bill %s at version %d: %w", bill.ID, bill.Version, domain.ErrWriteConflict)
		}

		var stored int64
		if err := tx.Model(&models.BillHistory{}).Where("bill_id = ?", bill.ID).Count(&stored).Error; err != nil {
			return err
		}
		if int(stored) > len(bill.History) {
			return fmt.Errorf("bill %s: history shrank: %w", bill.ID, domain.ErrCorruptHistory)
		}

		rows := historyRows(bill.ID, bill.History, int(stored))
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			// another writer appended the same seq first
			if isUniqueViolation(err) {
				return fmt.Errorf("bill %s history: %w", bill.ID, domain.ErrWriteConflict)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	bill.Version++
	return nil
}

// ListBills returns every bill, oldest first
func (r *billRepository) ListBills(ctx context.Context) ([]*domain.Bill, error) {
	var bills []*models.Bill
	if err := r.withChildren(ctx).Order("created_at, id").Find(&bills).Error; err != nil {
		return nil, err
	}

	out := make([]*domain.Bill, 0, len(bills))
	for _, b := range bills {
		out = append(out, toDomainBill(b))
	}
	return out, nil
}

// ============================================================
// Conversion
// ============================================================

func toDomainBill(m *models.Bill) *domain.Bill {
	bill := &domain.Bill{
		ID:         m.ID,
		EmployeeID: m.EmployeeID,
		Title:      m.Title,
		Amount:     m.Amount,
		Status:     domain.BillStatus(m.Status),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
		Version:    m.Version,
		History:    make([]domain.HistoryEvent, 0, len(m.History)),
	}

	for _, it := range m.Items {
		bill.Items = append(bill.Items, domain.ConveyanceItem{
			Date:      it.TripDate,
			From:      it.FromPlace,
			To:        it.ToPlace,
			Transport: it.Transport,
			Purpose:   it.Purpose,
			Amount:    it.Amount,
		})
	}

	for _, h := range m.History {
		bill.History = append(bill.History, domain.HistoryEvent{
			Status:    domain.BillStatus(h.Status),
			Timestamp: h.OccurredAt,
			ActorID:   h.ActorID,
			Comment:   h.Comment,
		})
	}
	return bill
}

func toBillModel(b *domain.Bill) *models.Bill {
	m := &models.Bill{
		ID:         b.ID,
		EmployeeID: b.EmployeeID,
		Title:      b.Title,
		Amount:     b.Amount,
		Status:     string(b.Status),
		Version:    b.Version,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
		History:    historyRows(b.ID, b.History, 0),
	}

	for i, it := range b.Items {
		m.Items = append(m.Items, models.BillItem{
			BillID:    b.ID,
			Position:  i,
			TripDate:  it.Date,
			FromPlace: it.From,
			ToPlace:   it.To,
			Transport: it.Transport,
			Purpose:   it.Purpose,
			Amount:    it.Amount,
		})
	}
	return m
}

// historyRows converts history events from index from onwards
func historyRows(billID string, history []domain.HistoryEvent, from int) []models.BillHistory {
	rows := make([]models.BillHistory, 0, len(history)-from)
	for i := from; i < len(history); i++ {
		e := history[i]
		rows = append(rows, models.BillHistory{
			BillID:     billID,
			Seq:        i,
			Status:     string(e.Status),
			ActorID:    e.ActorID,
			Comment:    e.Comment,
			OccurredAt: e.Timestamp,
		})
	}
	return rows
}

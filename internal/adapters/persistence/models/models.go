package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	PasswordHash string         `gorm:"size:255;not null" json:"-"`
	Role         string         `gorm:"size:20;not null;index" json:"role"`
	SupervisorID *string        `gorm:"size:36;index" json:"supervisor_id"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	UserID    string     `gorm:"size:36;index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:64;not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time  `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// ============================================================
// Bill Tables
// ============================================================

// Bill represents bills table. Version guards concurrent writers.
type Bill struct {
	ID         string          `gorm:"primaryKey;size:36" json:"id"`
	EmployeeID string          `gorm:"size:36;not null;index" json:"employee_id"`
	Title      string          `gorm:"size:200;not null" json:"title"`
	Amount     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status     string          `gorm:"size:32;not null;index" json:"status"`
	Version    int64           `gorm:"not null;default:1" json:"version"`
	CreatedAt  time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null;autoUpdateTime:false" json:"updated_at"`

	// Relations
	Employee *User         `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	Items    []BillItem    `gorm:"foreignKey:BillID" json:"items,omitempty"`
	History  []BillHistory `gorm:"foreignKey:BillID" json:"history,omitempty"`
}

func (Bill) TableName() string {
	return "bills"
}

// BillItem is one trip claimed on a bill (1:N with bills)
type BillItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	BillID    string          `gorm:"size:36;not null;uniqueIndex:idx_bill_items_position" json:"bill_id"`
	Position  int             `gorm:"not null;uniqueIndex:idx_bill_items_position" json:"position"`
	TripDate  time.Time       `gorm:"type:date;not null" json:"trip_date"`
	FromPlace string          `gorm:"size:200;not null" json:"from_place"`
	ToPlace   string          `gorm:"size:200;not null" json:"to_place"`
	Transport string          `gorm:"size:50" json:"transport"`
	Purpose   string          `gorm:"type:text" json:"purpose"`
	Amount    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
}

func (BillItem) TableName() string {
	return "bill_items"
}

// BillHistory is the append-only audit log of a bill. Seq is the
// event's position in the bill's history, unique per bill.
type BillHistory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BillID     string    `gorm:"size:36;not null;uniqueIndex:idx_bill_history_seq" json:"bill_id"`
	Seq        int       `gorm:"not null;uniqueIndex:idx_bill_history_seq" json:"seq"`
	Status     string    `gorm:"size:32;not null" json:"status"`
	ActorID    string    `gorm:"size:36;not null;index" json:"actor_id"`
	Comment    *string   `gorm:"type:text" json:"comment"`
	OccurredAt time.Time `gorm:"not null" json:"occurred_at"`
}

func (BillHistory) TableName() string {
	return "bill_history"
}

// AutoMigrate creates or updates every table
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Bill{},
		&BillItem{},
		&BillHistory{},
	)
}

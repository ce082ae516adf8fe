// Package domain contains persistence models for settlement records.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Invoice is one settlement record tied to a booking: a deposit collection,
// a partial payment, or the final settlement. Multiple invoices may exist
// per booking. Amount is always positive for a persisted row.
type Invoice struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	BookingID snowflake.ID `gorm:"not null;index"`
	IssuedAt  time.Time    `gorm:"not null"`
	Amount    int64        `gorm:"not null"`
	Paid      bool         `gorm:"not null;default:false"`
	CreatedBy string       `gorm:"type:text"`
	DeletedAt *time.Time   `gorm:"index"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// Repository persists invoices. All writes run on the caller's transaction
// handle so they share the checkout transaction.
type Repository interface {
	// InsertPaid writes one paid invoice for amount. An amount <= 0 performs
	// no write at all and returns (false, nil).
	InsertPaid(ctx context.Context, tx *gorm.DB, inv *Invoice) (bool, error)

	// SumPaid returns the sum of all paid, non-deleted invoice amounts for
	// the booking.
	SumPaid(ctx context.Context, tx *gorm.DB, bookingID snowflake.ID) (int64, error)

	// ListByBooking returns all non-deleted invoices for the booking, oldest
	// first.
	ListByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) ([]Invoice, error)
}

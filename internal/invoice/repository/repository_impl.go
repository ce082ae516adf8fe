package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/lodgia/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertPaid(ctx context.Context, tx *gorm.DB, inv *domain.Invoice) (bool, error) {
	if inv == nil || inv.Amount <= 0 {
		return false, nil
	}
	inv.Paid = true
	err := tx.WithContext(ctx).Exec(
		`INSERT INTO invoices (id, booking_id, issued_at, amount, paid, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.ID,
		inv.BookingID,
		inv.IssuedAt,
		inv.Amount,
		inv.Paid,
		inv.CreatedBy,
		inv.IssuedAt,
	).Error
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *repo) SumPaid(ctx context.Context, tx *gorm.DB, bookingID snowflake.ID) (int64, error) {
	var total int64
	err := tx.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0)
		 FROM invoices
		 WHERE booking_id = ? AND paid = ? AND deleted_at IS NULL`,
		bookingID,
		true,
	).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repo) ListByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := db.WithContext(ctx).
		Where("booking_id = ? AND deleted_at IS NULL", bookingID).
		Order("issued_at asc, id asc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/smallbiznis/lodgia/internal/booking/domain"
	"github.com/smallbiznis/lodgia/internal/checkout/domain"
	roomdomain "github.com/smallbiznis/lodgia/internal/room/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) LockBooking(ctx context.Context, tx *gorm.DB, bookingID snowflake.ID) (*bookingdomain.Booking, error) {
	var booking bookingdomain.Booking
	query := `SELECT id, customer_id, room_id, kind, status, planned_arrival_at, planned_departure_at,
	                 checked_in_at, actual_departure_at, deposit_amount, created_at, updated_at
	          FROM bookings
	          WHERE id = ? AND deleted_at IS NULL
	          LIMIT 1`
	if tx.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}
	if err := tx.WithContext(ctx).Raw(query, bookingID).Scan(&booking).Error; err != nil {
		return nil, err
	}
	if booking.ID == 0 {
		return nil, nil
	}
	return &booking, nil
}

func (r *repo) LockRoom(ctx context.Context, tx *gorm.DB, roomID snowflake.ID) (*roomdomain.Room, error) {
	var room roomdomain.Room
	query := `SELECT id, code, room_type_id, floor, status, occupied_since, current_kind, current_guest_name,
	                 created_at, updated_at
	          FROM rooms
	          WHERE id = ? AND deleted_at IS NULL
	          LIMIT 1`
	if tx.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}
	if err := tx.WithContext(ctx).Raw(query, roomID).Scan(&room).Error; err != nil {
		return nil, err
	}
	if room.ID == 0 {
		return nil, nil
	}
	return &room, nil
}

func (r *repo) RoomTypeCode(ctx context.Context, tx *gorm.DB, roomTypeID snowflake.ID) (string, error) {
	var code string
	err := tx.WithContext(ctx).Raw(
		`SELECT code FROM room_types WHERE id = ? LIMIT 1`,
		roomTypeID,
	).Scan(&code).Error
	if err != nil {
		return "", err
	}
	return code, nil
}

func (r *repo) UpsertExtra(ctx context.Context, tx *gorm.DB, extra *bookingdomain.BookingExtra) error {
	if extra == nil {
		return nil
	}
	if tx.Dialector.Name() == "mysql" {
		return tx.WithContext(ctx).Exec(
			`INSERT INTO booking_extras (id, booking_id, item_code, item_name, quantity, unit_price, amount,
				created_by, updated_by, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON DUPLICATE KEY UPDATE
				quantity = VALUES(quantity), unit_price = VALUES(unit_price), amount = VALUES(amount),
				updated_by = VALUES(updated_by), updated_at = VALUES(updated_at)`,
			extra.ID, extra.BookingID, extra.ItemCode, extra.ItemName,
			extra.Quantity, extra.UnitPrice, extra.Amount,
			extra.CreatedBy, extra.UpdatedBy, extra.CreatedAt, extra.UpdatedAt,
		).Error
	}
	return tx.WithContext(ctx).Exec(
		`INSERT INTO booking_extras (id, booking_id, item_code, item_name, quantity, unit_price, amount,
			created_by, updated_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (booking_id, item_code) DO UPDATE
		 SET quantity = excluded.quantity, unit_price = excluded.unit_price, amount = excluded.amount,
		     updated_by = excluded.updated_by, updated_at = excluded.updated_at`,
		extra.ID, extra.BookingID, extra.ItemCode, extra.ItemName,
		extra.Quantity, extra.UnitPrice, extra.Amount,
		extra.CreatedBy, extra.UpdatedBy, extra.CreatedAt, extra.UpdatedAt,
	).Error
}

func (r *repo) UpsertStayRate(ctx context.Context, tx *gorm.DB, info *bookingdomain.StayInfo) error {
	if info == nil {
		return nil
	}
	if tx.Dialector.Name() == "mysql" {
		return tx.WithContext(ctx).Exec(
			`INSERT INTO stay_infos (id, booking_id, nightly_rate, nights, guest_name, legacy_area,
				created_by, updated_by, created_at, updated_at)
			 VALUES (?, ?, ?, ?, '', ?, ?, ?, ?, ?)
			 ON DUPLICATE KEY UPDATE
				nightly_rate = VALUES(nightly_rate), nights = VALUES(nights),
				updated_by = VALUES(updated_by), updated_at = VALUES(updated_at)`,
			info.ID, info.BookingID, info.NightlyRate, info.Nights, info.LegacyArea,
			info.CreatedBy, info.UpdatedBy, info.CreatedAt, info.UpdatedAt,
		).Error
	}
	return tx.WithContext(ctx).Exec(
		`INSERT INTO stay_infos (id, booking_id, nightly_rate, nights, guest_name, legacy_area,
			created_by, updated_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, '', ?, ?, ?, ?, ?)
		 ON CONFLICT (booking_id) DO UPDATE
		 SET nightly_rate = excluded.nightly_rate, nights = excluded.nights,
		     updated_by = excluded.updated_by, updated_at = excluded.updated_at`,
		info.ID, info.BookingID, info.NightlyRate, info.Nights, info.LegacyArea,
		info.CreatedBy, info.UpdatedBy, info.CreatedAt, info.UpdatedAt,
	).Error
}

func (r *repo) UpsertStayGuestName(ctx context.Context, tx *gorm.DB, id, bookingID snowflake.ID, guestName, actor string, at time.Time) error {
	if tx.Dialector.Name() == "mysql" {
		return tx.WithContext(ctx).Exec(
			`INSERT INTO stay_infos (id, booking_id, nightly_rate, nights, guest_name, legacy_area,
				created_by, updated_by, created_at, updated_at)
			 VALUES (?, ?, 0, 0, ?, false, ?, ?, ?, ?)
			 ON DUPLICATE KEY UPDATE
				guest_name = VALUES(guest_name), updated_by = VALUES(updated_by), updated_at = VALUES(updated_at)`,
			id, bookingID, guestName, actor, actor, at, at,
		).Error
	}
	return tx.WithContext(ctx).Exec(
		`INSERT INTO stay_infos (id, booking_id, nightly_rate, nights, guest_name, legacy_area,
			created_by, updated_by, created_at, updated_at)
		 VALUES (?, ?, 0, 0, ?, false, ?, ?, ?, ?)
		 ON CONFLICT (booking_id) DO UPDATE
		 SET guest_name = excluded.guest_name, updated_by = excluded.updated_by, updated_at = excluded.updated_at`,
		id, bookingID, guestName, actor, actor, at, at,
	).Error
}

func (r *repo) CheckIn(ctx context.Context, tx *gorm.DB, bookingID snowflake.ID, kind bookingdomain.BookingKind, startAt, at time.Time) (int64, error) {
	result := tx.WithContext(ctx).Exec(
		`UPDATE bookings
		 SET status = ?, kind = ?, checked_in_at = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL AND status IN (?, ?)`,
		bookingdomain.BookingStatusCheckedIn,
		kind,
		startAt,
		at,
		bookingID,
		bookingdomain.BookingStatusReserved,
		bookingdomain.BookingStatusCheckedIn,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) Settle(ctx context.Context, tx *gorm.DB, bookingID snowflake.ID, departedAt, at time.Time) (int64, error) {
	result := tx.WithContext(ctx).Exec(
		`UPDATE bookings
		 SET status = ?, actual_departure_at = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL AND status IN (?, ?)`,
		bookingdomain.BookingStatusSettled,
		departedAt,
		at,
		bookingID,
		bookingdomain.BookingStatusReserved,
		bookingdomain.BookingStatusCheckedIn,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) Cancel(ctx context.Context, tx *gorm.DB, bookingID snowflake.ID, departedAt, at time.Time) (int64, error) {
	result := tx.WithContext(ctx).Exec(
		`UPDATE bookings
		 SET status = ?, actual_departure_at = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL AND status IN (?, ?)`,
		bookingdomain.BookingStatusCancelled,
		departedAt,
		at,
		bookingID,
		bookingdomain.BookingStatusReserved,
		bookingdomain.BookingStatusCheckedIn,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) MarkRoomOccupied(ctx context.Context, tx *gorm.DB, roomID snowflake.ID, kind bookingdomain.BookingKind, since time.Time, guestName string, at time.Time) (int64, error) {
	result := tx.WithContext(ctx).Exec(
		`UPDATE rooms
		 SET status = ?, current_kind = ?, occupied_since = ?, current_guest_name = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		roomdomain.RoomStatusOccupied,
		kind,
		since,
		guestName,
		at,
		roomID,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) MarkRoomNeedsCleaning(ctx context.Context, tx *gorm.DB, roomID snowflake.ID, at time.Time) (int64, error) {
	return r.clearRoom(ctx, tx, roomID, roomdomain.RoomStatusNeedsCleaning, at)
}

func (r *repo) MarkRoomVacant(ctx context.Context, tx *gorm.DB, roomID snowflake.ID, at time.Time) (int64, error) {
	return r.clearRoom(ctx, tx, roomID, roomdomain.RoomStatusVacant, at)
}

func (r *repo) clearRoom(ctx context.Context, tx *gorm.DB, roomID snowflake.ID, status roomdomain.RoomStatus, at time.Time) (int64, error) {
	result := tx.WithContext(ctx).Exec(
		`UPDATE rooms
		 SET status = ?, current_kind = NULL, occupied_since = NULL, current_guest_name = NULL, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		status,
		at,
		roomID,
	)
	return result.RowsAffected, result.Error
}

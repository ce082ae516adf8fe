package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/smallbiznis/lodgia/internal/booking/domain"
	roomdomain "github.com/smallbiznis/lodgia/internal/room/domain"
	"gorm.io/gorm"
)

// Repository holds the row-level data access used inside a checkout
// transaction. Every method takes the transaction handle explicitly so the
// one-transaction, ordered-locks contract stays type-visible.
type Repository interface {
	// LockBooking acquires an exclusive lock on the booking row. Returns
	// nil when the row is missing or soft-deleted.
	LockBooking(ctx context.Context, tx *gorm.DB, bookingID snowflake.ID) (*bookingdomain.Booking, error)

	// LockRoom acquires an exclusive lock on the room row. Returns nil when
	// the row is missing or soft-deleted.
	LockRoom(ctx context.Context, tx *gorm.DB, roomID snowflake.ID) (*roomdomain.Room, error)

	// RoomTypeCode resolves a room's type code for pricing lookups.
	RoomTypeCode(ctx context.Context, tx *gorm.DB, roomTypeID snowflake.ID) (string, error)

	// UpsertExtra writes-or-merges one extras row keyed by
	// (booking, item code); a second call overwrites rather than
	// accumulates.
	UpsertExtra(ctx context.Context, tx *gorm.DB, extra *bookingdomain.BookingExtra) error

	// UpsertStayRate writes-or-merges the nightly rate and night count
	// keyed by booking; on insert the legacy-area flag defaults false and
	// is left untouched on update.
	UpsertStayRate(ctx context.Context, tx *gorm.DB, info *bookingdomain.StayInfo) error

	// UpsertStayGuestName updates the guest display name, inserting the
	// stay-info row when absent. A blank name is a no-op.
	UpsertStayGuestName(ctx context.Context, tx *gorm.DB, id, bookingID snowflake.ID, guestName, actor string, at time.Time) error

	// CheckIn sets the booking's check-in time, rental kind and moves it
	// to CheckedIn. Returns affected rows.
	CheckIn(ctx context.Context, tx *gorm.DB, bookingID snowflake.ID, kind bookingdomain.BookingKind, startAt, at time.Time) (int64, error)

	// Settle moves the booking to Settled, recording the actual departure
	// time. Returns affected rows.
	Settle(ctx context.Context, tx *gorm.DB, bookingID snowflake.ID, departedAt, at time.Time) (int64, error)

	// Cancel moves the booking to Cancelled, recording the cancellation
	// time as actual departure. Returns affected rows.
	Cancel(ctx context.Context, tx *gorm.DB, bookingID snowflake.ID, departedAt, at time.Time) (int64, error)

	// MarkRoomOccupied sets the room Occupied with the rental kind,
	// occupancy start and guest display name. Returns affected rows.
	MarkRoomOccupied(ctx context.Context, tx *gorm.DB, roomID snowflake.ID, kind bookingdomain.BookingKind, since time.Time, guestName string, at time.Time) (int64, error)

	// MarkRoomNeedsCleaning sets the room NeedsCleaning and clears its
	// occupancy fields. Returns affected rows.
	MarkRoomNeedsCleaning(ctx context.Context, tx *gorm.DB, roomID snowflake.ID, at time.Time) (int64, error)

	// MarkRoomVacant sets the room Vacant and clears its occupancy fields.
	// Returns affected rows.
	MarkRoomVacant(ctx context.Context, tx *gorm.DB, roomID snowflake.ID, at time.Time) (int64, error)
}

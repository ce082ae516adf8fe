// Package domain contains persistence models for guest stays.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// BookingStatus represents booking lifecycle states.
type BookingStatus string

const (
	BookingStatusReserved  BookingStatus = "RESERVED"
	BookingStatusCheckedIn BookingStatus = "CHECKED_IN"
	BookingStatusSettled   BookingStatus = "SETTLED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusNoShow    BookingStatus = "NO_SHOW"
)

// IsTerminal reports whether no further mutation of the booking is permitted.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusSettled, BookingStatusCancelled, BookingStatusNoShow:
		return true
	default:
		return false
	}
}

// BookingKind distinguishes hourly from overnight rentals.
type BookingKind string

const (
	BookingKindHourly    BookingKind = "HOURLY"
	BookingKindOvernight BookingKind = "OVERNIGHT"
)

// Booking represents one stay attempt on one room.
type Booking struct {
	ID                 snowflake.ID  `gorm:"primaryKey"`
	CustomerID         snowflake.ID  `gorm:"not null;index"`
	RoomID             snowflake.ID  `gorm:"not null;index"`
	Kind               BookingKind   `gorm:"type:text;not null"`
	Status             BookingStatus `gorm:"type:text;not null;default:'RESERVED'"`
	PlannedArrivalAt   time.Time     `gorm:"not null"`
	PlannedDepartureAt time.Time     `gorm:"not null"`
	CheckedInAt        *time.Time    `gorm:""`
	ActualDepartureAt  *time.Time    `gorm:""`
	DepositAmount      int64         `gorm:"not null;default:0"`
	DeletedAt          *time.Time    `gorm:"index"`
	CreatedAt          time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Booking) TableName() string { return "bookings" }

// BookingExtra is a consumable line item attached to a booking, unique per
// (booking, item code). Amount is always recomputed as qty times unit price
// at write time.
type BookingExtra struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	BookingID snowflake.ID `gorm:"not null;index;uniqueIndex:ux_booking_extra_item"`
	ItemCode  string       `gorm:"type:text;not null;uniqueIndex:ux_booking_extra_item"`
	ItemName  string       `gorm:"type:text;not null"`
	Quantity  int64        `gorm:"not null;default:0"`
	UnitPrice int64        `gorm:"not null;default:0"`
	Amount    int64        `gorm:"not null;default:0"`
	CreatedBy string       `gorm:"type:text"`
	UpdatedBy string       `gorm:"type:text"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (BookingExtra) TableName() string { return "booking_extras" }

// StayInfo holds extended per-booking attributes needed for overnight
// billing and the guest register. One-to-one with Booking, created lazily
// on the first overnight-related write.
type StayInfo struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	BookingID   snowflake.ID `gorm:"not null;uniqueIndex:ux_stay_info_booking"`
	NightlyRate int64        `gorm:"not null;default:0"`
	Nights      int          `gorm:"not null;default:0"`
	GuestName   string       `gorm:"type:text"`
	LegacyArea  bool         `gorm:"not null;default:false"`
	CreatedBy   string       `gorm:"type:text"`
	UpdatedBy   string       `gorm:"type:text"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (StayInfo) TableName() string { return "stay_infos" }

// Fixed extras item codes. The front desk tracks exactly these two
// consumables per stay.
const (
	ExtraItemSoftDrink = "SOFT_DRINK"
	ExtraItemWater     = "WATER"
)

// ExtraItemName returns the display name for a fixed extras item code.
func ExtraItemName(code string) string {
	switch code {
	case ExtraItemSoftDrink:
		return "Soft drink"
	case ExtraItemWater:
		return "Water"
	default:
		return code
	}
}

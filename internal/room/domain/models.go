// Package domain contains persistence models for the room inventory.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/smallbiznis/lodgia/internal/booking/domain"
	"gorm.io/gorm"
)

// RoomStatus represents room occupancy states.
type RoomStatus string

const (
	RoomStatusVacant        RoomStatus = "VACANT"
	RoomStatusOccupied      RoomStatus = "OCCUPIED"
	RoomStatusNeedsCleaning RoomStatus = "NEEDS_CLEANING"
)

// RoomType is a rentable room category. NightlyPrice and DailyPrice are the
// legacy price columns still read by older reporting queries; the pricing
// service mirrors its default rates into them on save.
type RoomType struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	Code         string       `gorm:"type:text;not null;uniqueIndex"`
	Name         string       `gorm:"type:text;not null"`
	NightlyPrice int64        `gorm:"not null;default:0"`
	DailyPrice   int64        `gorm:"not null;default:0"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (RoomType) TableName() string { return "room_types" }

// Room is a physical unit. Occupancy fields are only non-null while the
// room is occupied and must stay consistent with at most one active booking.
type Room struct {
	ID               snowflake.ID               `gorm:"primaryKey"`
	Code             string                     `gorm:"type:text;not null;uniqueIndex"`
	RoomTypeID       snowflake.ID               `gorm:"not null;index"`
	Floor            int                        `gorm:"not null;default:1"`
	Status           RoomStatus                 `gorm:"type:text;not null;default:'VACANT'"`
	OccupiedSince    *time.Time                 `gorm:""`
	CurrentKind      *bookingdomain.BookingKind `gorm:"type:text"`
	CurrentGuestName *string                    `gorm:"type:text"`
	DeletedAt        *time.Time                 `gorm:"index"`
	CreatedAt        time.Time                  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time                  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Room) TableName() string { return "rooms" }

// BoardRow is one line of the front-desk room board.
type BoardRow struct {
	RoomID        snowflake.ID `json:"room_id"`
	Code          string       `json:"code"`
	Floor         int          `json:"floor"`
	RoomTypeCode  string       `json:"room_type_code"`
	Status        RoomStatus   `json:"status"`
	OccupiedSince *time.Time   `json:"occupied_since,omitempty"`
	CurrentKind   *string      `json:"current_kind,omitempty"`
	GuestName     *string      `json:"guest_name,omitempty"`
}

// Repository reads the room board.
type Repository interface {
	ListBoard(ctx context.Context, db *gorm.DB) ([]BoardRow, error)
}

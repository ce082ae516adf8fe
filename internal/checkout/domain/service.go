// Package domain defines the checkout orchestrator's public surface: six
// transactional operations over narrowly-typed request records, each
// returning the common money-movement result.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// ExtrasInput carries the quantities and unit prices for the two fixed
// consumable line items of a stay.
type ExtrasInput struct {
	SoftDrinkQty       int64 `json:"soft_drink_qty"`
	SoftDrinkUnitPrice int64 `json:"soft_drink_unit_price"`
	WaterQty           int64 `json:"water_qty"`
	WaterUnitPrice     int64 `json:"water_unit_price"`
}

// SaveHourlyRequest checks a guest into a room on the hourly tariff.
type SaveHourlyRequest struct {
	BookingID snowflake.ID `json:"booking_id"`
	RoomID    snowflake.ID `json:"room_id"`
	StartAt   time.Time    `json:"start_at"`
	GuestName string       `json:"guest_name"`
	Extras    ExtrasInput  `json:"extras"`
	Actor     string       `json:"-"`
}

// PayHourlyRequest settles an hourly stay.
type PayHourlyRequest struct {
	BookingID snowflake.ID `json:"booking_id"`
	RoomID    snowflake.ID `json:"room_id"`
	DueAmount int64        `json:"due_amount"`
	Extras    ExtrasInput  `json:"extras"`
	Actor     string       `json:"-"`
}

// CancelRequest cancels a stay without money movement.
type CancelRequest struct {
	BookingID snowflake.ID `json:"booking_id"`
	RoomID    snowflake.ID `json:"room_id"`
	Actor     string       `json:"-"`
}

// SaveOvernightRequest checks a guest in on the overnight tariff and brings
// the collected amount up to TargetCollectedAmount. Repeated saves with the
// same target never double-charge.
type SaveOvernightRequest struct {
	BookingID             snowflake.ID `json:"booking_id"`
	RoomID                snowflake.ID `json:"room_id"`
	StartAt               time.Time    `json:"start_at"`
	GuestName             string       `json:"guest_name"`
	Nights                int          `json:"nights"`
	NightlyRate           int64        `json:"nightly_rate"`
	TargetCollectedAmount int64        `json:"target_collected_amount"`
	Extras                ExtrasInput  `json:"extras"`
	Actor                 string       `json:"-"`
}

// PayOvernightRequest is SaveOvernight's collection step plus a settlement
// against the caller-supplied authoritative TotalCharge.
type PayOvernightRequest struct {
	SaveOvernightRequest
	TotalCharge int64 `json:"total_charge"`
}

// Result summarizes the money movement of one operation.
type Result struct {
	AddedCollectedAmount     int64 `json:"added_collected_amount"`
	SettlementAmount         int64 `json:"settlement_amount"`
	PaidAmountAfterOperation int64 `json:"paid_amount_after_operation"`
}

// Service is the transactional checkout core. Every operation runs inside
// exactly one database transaction, locking the booking row first and the
// room row second.
type Service interface {
	SaveHourly(ctx context.Context, req SaveHourlyRequest) (Result, error)
	PayHourly(ctx context.Context, req PayHourlyRequest) (Result, error)
	CancelHourly(ctx context.Context, req CancelRequest) (Result, error)
	SaveOvernight(ctx context.Context, req SaveOvernightRequest) (Result, error)
	CancelOvernight(ctx context.Context, req CancelRequest) (Result, error)
	PayOvernight(ctx context.Context, req PayOvernightRequest) (Result, error)
}

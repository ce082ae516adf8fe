// Package domain contains the tariff configuration model and the pricing
// service contract.
package domain

import (
	"context"
	"time"
)

// Room type codes known to the default tariff table. Tariffs are keyed by
// room type code; unknown codes fall back to the Single tariff.
const (
	RoomTypeSingle = "SINGLE"
	RoomTypeDouble = "DOUBLE"
)

// Tariff holds the per-room-type pricing parameters.
type Tariff struct {
	// Hourly rental: first hour, each following hour, and the minute
	// threshold at which a trailing partial hour rounds up to a whole one
	// (0 means any positive remainder rounds up).
	HourlyFirstRate int64 `json:"hourly_first_rate"`
	HourlyNextRate  int64 `json:"hourly_next_rate"`
	RoundUpMinutes  int   `json:"round_up_minutes"`

	// Overnight rental.
	NightlyRate int64 `json:"nightly_rate"`
	DailyRate   int64 `json:"daily_rate"`
	GraceHours  int   `json:"grace_hours"`
	LateFee     int64 `json:"late_fee"`
}

// Settings is one immutable snapshot of the tariff configuration.
type Settings struct {
	// CheckoutHour is the hour of day overnight stays must check out by.
	CheckoutHour int `json:"checkout_hour"`
	// NightStartHour opens the night window; a check-in inside
	// [NightStartHour, CheckoutHour) is billed at the night rate.
	NightStartHour int `json:"night_start_hour"`

	Tariffs     map[string]Tariff `json:"tariffs"`
	ExtraPrices map[string]int64  `json:"extra_prices"`
}

// Clone returns a deep copy so a save racing with a read never produces a
// torn snapshot.
func (s Settings) Clone() Settings {
	out := s
	out.Tariffs = make(map[string]Tariff, len(s.Tariffs))
	for code, tariff := range s.Tariffs {
		out.Tariffs[code] = tariff
	}
	out.ExtraPrices = make(map[string]int64, len(s.ExtraPrices))
	for code, price := range s.ExtraPrices {
		out.ExtraPrices[code] = price
	}
	return out
}

// TariffFor resolves the tariff for a room type code, falling back to the
// Single tariff for unknown codes.
func (s Settings) TariffFor(roomType string) Tariff {
	if tariff, ok := s.Tariffs[roomType]; ok {
		return tariff
	}
	return s.Tariffs[RoomTypeSingle]
}

// OvernightBreakdown itemizes an overnight room charge so the caller can
// render the bill.
type OvernightBreakdown struct {
	NightUnits        int       `json:"night_units"`
	DayUnits          int       `json:"day_units"`
	NightUnitPrice    int64     `json:"night_unit_price"`
	DayUnitPrice      int64     `json:"day_unit_price"`
	NightAmount       int64     `json:"night_amount"`
	DayAmount         int64     `json:"day_amount"`
	LateFee           int64     `json:"late_fee"`
	Total             int64     `json:"total"`
	FirstSegmentNight bool      `json:"first_segment_night"`
	Deadline          time.Time `json:"deadline"`
}

// Service computes room charges from the cached tariff snapshot. The
// calculation methods are pure functions of (snapshot, time inputs).
type Service interface {
	// Current returns the cached snapshot, loading it from the store on
	// first use. It never fails; a load error falls back to built-in
	// defaults.
	Current(ctx context.Context) Settings

	// Save validates and clamps every field, persists the settings as
	// key-value pairs, swaps the cached snapshot, mirrors the default
	// nightly rates into the legacy room_types price columns, and notifies
	// subscribers.
	Save(ctx context.Context, settings Settings, actor string) error

	// Invalidate drops the cached snapshot so the next Current reloads.
	Invalidate()

	// Subscribe returns a channel that receives one signal after each
	// snapshot swap.
	Subscribe() <-chan struct{}

	// BillableHours converts elapsed time into whole billable hours,
	// always at least 1.
	BillableHours(ctx context.Context, start, now time.Time, roomType string) int

	// HourlyCharge prices an hourly stay.
	HourlyCharge(ctx context.Context, start, now time.Time, roomType string) int64

	// OvernightCheckoutDeadline computes the checkout deadline including
	// grace hours.
	OvernightCheckoutDeadline(ctx context.Context, checkIn time.Time, nights int, roomType string) time.Time

	// InNightWindow reports whether the time of day falls in the night
	// window.
	InNightWindow(ctx context.Context, t time.Time) bool

	// OvernightBreakdown itemizes an overnight charge. Caller-supplied
	// rates <= 0 fall back to the room type's configured defaults; the
	// flat late fee applies only when now is strictly past the deadline.
	OvernightBreakdown(ctx context.Context, checkIn time.Time, nights int, roomType string, nightlyRate int64, now time.Time, dailyRate int64) OvernightBreakdown
}

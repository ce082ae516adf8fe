package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/lodgia/internal/clock"
	pricingdomain "github.com/smallbiznis/lodgia/internal/pricing/domain"
	"github.com/smallbiznis/lodgia/internal/pricing/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupPricing(t *testing.T) (pricingdomain.Service, *clock.FakeClock, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:pricing_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&pricingdomain.Setting{}))

	fake := clock.NewFakeClock(time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC))
	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fake,
		Repo:  repository.Provide(),
	})
	return svc, fake, db
}

func TestBillableHoursFirstHour(t *testing.T) {
	svc, _, _ := setupPricing(t)
	ctx := context.Background()
	start := time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, svc.BillableHours(ctx, start, start.Add(45*time.Minute), pricingdomain.RoomTypeSingle))
	assert.Equal(t, 1, svc.BillableHours(ctx, start, start.Add(60*time.Minute), pricingdomain.RoomTypeSingle))
	assert.Equal(t, 1, svc.BillableHours(ctx, start, start, pricingdomain.RoomTypeSingle))
	// A start in the future still bills the first hour.
	assert.Equal(t, 1, svc.BillableHours(ctx, start.Add(time.Hour), start, pricingdomain.RoomTypeSingle))
}

func TestBillableHoursRoundUpThreshold(t *testing.T) {
	svc, _, _ := setupPricing(t)
	ctx := context.Background()
	start := time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC)

	// Default threshold is 5 minutes past the hour.
	assert.Equal(t, 2, svc.BillableHours(ctx, start, start.Add(61*time.Minute), pricingdomain.RoomTypeSingle))
	assert.Equal(t, 2, svc.BillableHours(ctx, start, start.Add(124*time.Minute), pricingdomain.RoomTypeSingle))
	assert.Equal(t, 3, svc.BillableHours(ctx, start, start.Add(125*time.Minute), pricingdomain.RoomTypeSingle))
	assert.Equal(t, 2, svc.BillableHours(ctx, start, start.Add(120*time.Minute), pricingdomain.RoomTypeSingle))
}

func TestHourlyCharge(t *testing.T) {
	svc, _, _ := setupPricing(t)
	ctx := context.Background()
	start := time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC)

	// 45 minutes bills the first hour only.
	assert.Equal(t, int64(60000), svc.HourlyCharge(ctx, start, start.Add(45*time.Minute), pricingdomain.RoomTypeSingle))
	// 2h05m bills three hours.
	assert.Equal(t, int64(100000), svc.HourlyCharge(ctx, start, start.Add(125*time.Minute), pricingdomain.RoomTypeSingle))
	// Double room uses its own tariff.
	assert.Equal(t, int64(80000), svc.HourlyCharge(ctx, start, start.Add(30*time.Minute), pricingdomain.RoomTypeDouble))
	// Unknown room type falls back to the Single tariff.
	assert.Equal(t, int64(60000), svc.HourlyCharge(ctx, start, start.Add(30*time.Minute), "SUITE"))
}

func TestHourlyChargeMonotonic(t *testing.T) {
	svc, _, _ := setupPricing(t)
	ctx := context.Background()
	start := time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC)

	var prev int64
	for minutes := 0; minutes <= 10*60; minutes += 7 {
		charge := svc.HourlyCharge(ctx, start, start.Add(time.Duration(minutes)*time.Minute), pricingdomain.RoomTypeSingle)
		assert.GreaterOrEqual(t, charge, prev, "charge decreased at %d minutes", minutes)
		prev = charge
	}
}

func TestOvernightCheckoutDeadline(t *testing.T) {
	svc, _, _ := setupPricing(t)
	ctx := context.Background()

	// Evening check-in: the deadline lands on the morning after the last
	// night, plus the grace hour.
	checkIn := time.Date(2026, 1, 10, 20, 30, 0, 0, time.UTC)
	deadline := svc.OvernightCheckoutDeadline(ctx, checkIn, 2, pricingdomain.RoomTypeSingle)
	assert.Equal(t, time.Date(2026, 1, 12, 13, 0, 0, 0, time.UTC), deadline)

	// Morning check-in before the checkout hour keeps the same day.
	checkIn = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	deadline = svc.OvernightCheckoutDeadline(ctx, checkIn, 1, pricingdomain.RoomTypeSingle)
	assert.Equal(t, time.Date(2026, 1, 10, 13, 0, 0, 0, time.UTC), deadline)

	// Zero nights price as one.
	deadline = svc.OvernightCheckoutDeadline(ctx, checkIn, 0, pricingdomain.RoomTypeSingle)
	assert.Equal(t, time.Date(2026, 1, 10, 13, 0, 0, 0, time.UTC), deadline)
}

func TestInNightWindow(t *testing.T) {
	svc, _, _ := setupPricing(t)
	ctx := context.Background()

	// Default window wraps 20:00 through 12:00.
	assert.True(t, svc.InNightWindow(ctx, time.Date(2026, 1, 10, 20, 0, 0, 0, time.UTC)))
	assert.True(t, svc.InNightWindow(ctx, time.Date(2026, 1, 10, 20, 30, 0, 0, time.UTC)))
	assert.True(t, svc.InNightWindow(ctx, time.Date(2026, 1, 10, 2, 0, 0, 0, time.UTC)))
	assert.True(t, svc.InNightWindow(ctx, time.Date(2026, 1, 10, 11, 59, 0, 0, time.UTC)))
	assert.False(t, svc.InNightWindow(ctx, time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)))
	assert.False(t, svc.InNightWindow(ctx, time.Date(2026, 1, 10, 13, 0, 0, 0, time.UTC)))
	assert.False(t, svc.InNightWindow(ctx, time.Date(2026, 1, 10, 19, 59, 0, 0, time.UTC)))
}

func TestOvernightBreakdownEveningCheckIn(t *testing.T) {
	svc, _, _ := setupPricing(t)
	ctx := context.Background()

	checkIn := time.Date(2026, 1, 10, 20, 30, 0, 0, time.UTC)
	now := time.Date(2026, 1, 12, 10, 0, 0, 0, time.UTC)

	b := svc.OvernightBreakdown(ctx, checkIn, 2, pricingdomain.RoomTypeSingle, 0, now, 0)
	assert.True(t, b.FirstSegmentNight)
	assert.Equal(t, 1, b.NightUnits)
	assert.Equal(t, 1, b.DayUnits)
	assert.Equal(t, int64(200000), b.NightAmount)
	assert.Equal(t, int64(250000), b.DayAmount)
	assert.Zero(t, b.LateFee)
	assert.Equal(t, int64(450000), b.Total)
}

func TestOvernightBreakdownLateFee(t *testing.T) {
	svc, _, _ := setupPricing(t)
	ctx := context.Background()

	checkIn := time.Date(2026, 1, 10, 20, 30, 0, 0, time.UTC)
	deadline := time.Date(2026, 1, 12, 13, 0, 0, 0, time.UTC)

	onTime := svc.OvernightBreakdown(ctx, checkIn, 2, pricingdomain.RoomTypeSingle, 0, deadline, 0)
	assert.Zero(t, onTime.LateFee, "fee must not apply at the deadline itself")

	late := svc.OvernightBreakdown(ctx, checkIn, 2, pricingdomain.RoomTypeSingle, 0, deadline.Add(time.Minute), 0)
	assert.Equal(t, int64(20000), late.LateFee)
	assert.Equal(t, onTime.Total+20000, late.Total)
}

func TestOvernightBreakdownDayCheckIn(t *testing.T) {
	svc, _, _ := setupPricing(t)
	ctx := context.Background()

	checkIn := time.Date(2026, 1, 10, 14, 0, 0, 0, time.UTC)
	now := checkIn.Add(time.Hour)

	b := svc.OvernightBreakdown(ctx, checkIn, 2, pricingdomain.RoomTypeSingle, 0, now, 0)
	assert.False(t, b.FirstSegmentNight)
	assert.Zero(t, b.NightUnits)
	assert.Equal(t, 2, b.DayUnits)
	assert.Equal(t, int64(500000), b.Total)
}

func TestOvernightBreakdownCallerRate(t *testing.T) {
	svc, _, _ := setupPricing(t)
	ctx := context.Background()

	checkIn := time.Date(2026, 1, 10, 21, 0, 0, 0, time.UTC)
	now := checkIn.Add(time.Hour)

	b := svc.OvernightBreakdown(ctx, checkIn, 1, pricingdomain.RoomTypeSingle, 175000, now, 0)
	assert.Equal(t, int64(175000), b.NightUnitPrice)
	assert.Equal(t, int64(175000), b.Total)

	// A non-positive caller rate falls back to the configured tariff.
	b = svc.OvernightBreakdown(ctx, checkIn, 1, pricingdomain.RoomTypeSingle, -1, now, 0)
	assert.Equal(t, int64(200000), b.NightUnitPrice)
}

func TestSavePersistsAndReloads(t *testing.T) {
	svc, _, db := setupPricing(t)
	ctx := context.Background()

	settings := svc.Current(ctx)
	tariff := settings.Tariffs[pricingdomain.RoomTypeSingle]
	tariff.HourlyFirstRate = 75000
	tariff.NightlyRate = 225000
	settings.Tariffs[pricingdomain.RoomTypeSingle] = tariff
	settings.CheckoutHour = 11

	require.NoError(t, svc.Save(ctx, settings, "manager"))

	// The cached snapshot reflects the save immediately.
	current := svc.Current(ctx)
	assert.Equal(t, int64(75000), current.Tariffs[pricingdomain.RoomTypeSingle].HourlyFirstRate)
	assert.Equal(t, 11, current.CheckoutHour)

	// A second service instance over the same store loads the same values.
	other := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
	reloaded := other.Current(ctx)
	assert.Equal(t, int64(75000), reloaded.Tariffs[pricingdomain.RoomTypeSingle].HourlyFirstRate)
	assert.Equal(t, int64(225000), reloaded.Tariffs[pricingdomain.RoomTypeSingle].NightlyRate)
	assert.Equal(t, 11, reloaded.CheckoutHour)
}

func TestSaveClampsInvalidValues(t *testing.T) {
	svc, _, _ := setupPricing(t)
	ctx := context.Background()

	settings := svc.Current(ctx)
	settings.CheckoutHour = 30
	settings.NightStartHour = -2
	tariff := settings.Tariffs[pricingdomain.RoomTypeSingle]
	tariff.HourlyFirstRate = -100
	tariff.RoundUpMinutes = 90
	settings.Tariffs[pricingdomain.RoomTypeSingle] = tariff

	require.NoError(t, svc.Save(ctx, settings, "manager"))

	current := svc.Current(ctx)
	assert.Equal(t, 23, current.CheckoutHour)
	assert.Equal(t, 0, current.NightStartHour)
	assert.Equal(t, int64(0), current.Tariffs[pricingdomain.RoomTypeSingle].HourlyFirstRate)
	assert.Equal(t, 59, current.Tariffs[pricingdomain.RoomTypeSingle].RoundUpMinutes)
}

func TestSaveNotifiesSubscribers(t *testing.T) {
	svc, _, _ := setupPricing(t)
	ctx := context.Background()

	ch := svc.Subscribe()
	require.NoError(t, svc.Save(ctx, svc.Current(ctx), "manager"))

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a snapshot-swap signal")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	svc, _, _ := setupPricing(t)
	ctx := context.Background()

	first := svc.Current(ctx)
	first.Tariffs[pricingdomain.RoomTypeSingle] = pricingdomain.Tariff{HourlyFirstRate: 1}

	// Mutating a returned snapshot never leaks into the cache.
	second := svc.Current(ctx)
	assert.Equal(t, int64(60000), second.Tariffs[pricingdomain.RoomTypeSingle].HourlyFirstRate)
}

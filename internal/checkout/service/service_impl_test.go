package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/smallbiznis/lodgia/internal/audit/domain"
	auditrepo "github.com/smallbiznis/lodgia/internal/audit/repository"
	auditservice "github.com/smallbiznis/lodgia/internal/audit/service"
	bookingdomain "github.com/smallbiznis/lodgia/internal/booking/domain"
	checkoutdomain "github.com/smallbiznis/lodgia/internal/checkout/domain"
	checkoutrepo "github.com/smallbiznis/lodgia/internal/checkout/repository"
	"github.com/smallbiznis/lodgia/internal/clock"
	invoicedomain "github.com/smallbiznis/lodgia/internal/invoice/domain"
	invoicerepo "github.com/smallbiznis/lodgia/internal/invoice/repository"
	roomdomain "github.com/smallbiznis/lodgia/internal/room/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	svc     checkoutdomain.Service
	node    *snowflake.Node
	fake    *clock.FakeClock
	roomID  snowflake.ID
	booking snowflake.ID
}

func setupCheckout(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:checkout_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&roomdomain.RoomType{},
		&roomdomain.Room{},
		&bookingdomain.Booking{},
		&bookingdomain.BookingExtra{},
		&bookingdomain.StayInfo{},
		&invoicedomain.Invoice{},
		&auditdomain.AuditLog{},
	))

	node, err := snowflake.NewNode(7)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, 1, 10, 20, 30, 0, 0, time.UTC))

	auditSvc := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  auditrepo.Provide(),
	})
	svc := NewService(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       fake,
		Repo:        checkoutrepo.Provide(),
		InvoiceRepo: invoicerepo.Provide(),
		AuditSvc:    auditSvc,
	})

	f := &fixture{db: db, svc: svc, node: node, fake: fake}
	f.seed(t)
	return f
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	now := f.fake.Now()

	roomType := roomdomain.RoomType{
		ID:   f.node.Generate(),
		Code: "SINGLE",
		Name: "Single",
	}
	require.NoError(t, f.db.Create(&roomType).Error)

	room := roomdomain.Room{
		ID:         f.node.Generate(),
		Code:       "101",
		RoomTypeID: roomType.ID,
		Floor:      1,
		Status:     roomdomain.RoomStatusVacant,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, f.db.Create(&room).Error)
	f.roomID = room.ID

	booking := bookingdomain.Booking{
		ID:                 f.node.Generate(),
		CustomerID:         f.node.Generate(),
		RoomID:             room.ID,
		Kind:               bookingdomain.BookingKindHourly,
		Status:             bookingdomain.BookingStatusReserved,
		PlannedArrivalAt:   now,
		PlannedDepartureAt: now.Add(3 * time.Hour),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	require.NoError(t, f.db.Create(&booking).Error)
	f.booking = booking.ID
}

func (f *fixture) loadBooking(t *testing.T) bookingdomain.Booking {
	t.Helper()
	var b bookingdomain.Booking
	require.NoError(t, f.db.First(&b, "id = ?", f.booking).Error)
	return b
}

func (f *fixture) loadRoom(t *testing.T) roomdomain.Room {
	t.Helper()
	var r roomdomain.Room
	require.NoError(t, f.db.First(&r, "id = ?", f.roomID).Error)
	return r
}

func (f *fixture) invoiceCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&invoicedomain.Invoice{}).Where("booking_id = ?", f.booking).Count(&count).Error)
	return count
}

func TestSaveHourlyChecksIn(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()
	start := f.fake.Now()

	result, err := f.svc.SaveHourly(ctx, checkoutdomain.SaveHourlyRequest{
		BookingID: f.booking,
		RoomID:    f.roomID,
		StartAt:   start,
		GuestName: "Alex",
		Extras: checkoutdomain.ExtrasInput{
			SoftDrinkQty:       2,
			SoftDrinkUnitPrice: 15000,
		},
		Actor: "frontdesk",
	})
	require.NoError(t, err)
	assert.Zero(t, result.PaidAmountAfterOperation)

	booking := f.loadBooking(t)
	assert.Equal(t, bookingdomain.BookingStatusCheckedIn, booking.Status)
	assert.Equal(t, bookingdomain.BookingKindHourly, booking.Kind)
	require.NotNil(t, booking.CheckedInAt)

	room := f.loadRoom(t)
	assert.Equal(t, roomdomain.RoomStatusOccupied, room.Status)
	require.NotNil(t, room.CurrentGuestName)
	assert.Equal(t, "Alex", *room.CurrentGuestName)
	require.NotNil(t, room.OccupiedSince)

	var extras []bookingdomain.BookingExtra
	require.NoError(t, f.db.Where("booking_id = ?", f.booking).Order("item_code").Find(&extras).Error)
	require.Len(t, extras, 2)
	assert.Equal(t, int64(30000), extras[0].Amount)
	assert.Equal(t, int64(0), extras[1].Amount)
}

func TestSaveHourlyExtrasOverwrite(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()

	req := checkoutdomain.SaveHourlyRequest{
		BookingID: f.booking,
		RoomID:    f.roomID,
		StartAt:   f.fake.Now(),
		Extras: checkoutdomain.ExtrasInput{
			SoftDrinkQty:       1,
			SoftDrinkUnitPrice: 15000,
		},
		Actor: "frontdesk",
	}
	_, err := f.svc.SaveHourly(ctx, req)
	require.NoError(t, err)

	req.Extras.SoftDrinkQty = 3
	_, err = f.svc.SaveHourly(ctx, req)
	require.NoError(t, err)

	var extras []bookingdomain.BookingExtra
	require.NoError(t, f.db.Where("booking_id = ? AND item_code = ?", f.booking, bookingdomain.ExtraItemSoftDrink).Find(&extras).Error)
	require.Len(t, extras, 1, "a repeated save must overwrite, not accumulate")
	assert.Equal(t, int64(3), extras[0].Quantity)
	assert.Equal(t, int64(45000), extras[0].Amount)
}

func TestPayHourlySettles(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()

	_, err := f.svc.SaveHourly(ctx, checkoutdomain.SaveHourlyRequest{
		BookingID: f.booking,
		RoomID:    f.roomID,
		StartAt:   f.fake.Now(),
		Actor:     "frontdesk",
	})
	require.NoError(t, err)

	f.fake.Advance(2 * time.Hour)
	result, err := f.svc.PayHourly(ctx, checkoutdomain.PayHourlyRequest{
		BookingID: f.booking,
		RoomID:    f.roomID,
		DueAmount: 100000,
		Actor:     "frontdesk",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100000), result.SettlementAmount)
	assert.Equal(t, int64(100000), result.PaidAmountAfterOperation)

	booking := f.loadBooking(t)
	assert.Equal(t, bookingdomain.BookingStatusSettled, booking.Status)
	require.NotNil(t, booking.ActualDepartureAt)

	room := f.loadRoom(t)
	assert.Equal(t, roomdomain.RoomStatusNeedsCleaning, room.Status)
	assert.Nil(t, room.OccupiedSince)
	assert.Nil(t, room.CurrentGuestName)

	assert.Equal(t, int64(1), f.invoiceCount(t))
}

func TestPayHourlyZeroDueWritesNoInvoice(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()

	result, err := f.svc.PayHourly(ctx, checkoutdomain.PayHourlyRequest{
		BookingID: f.booking,
		RoomID:    f.roomID,
		DueAmount: 0,
		Actor:     "frontdesk",
	})
	require.NoError(t, err)
	assert.Zero(t, result.SettlementAmount)
	assert.Zero(t, f.invoiceCount(t))
}

func TestSaveOvernightCollectsDelta(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()

	req := checkoutdomain.SaveOvernightRequest{
		BookingID:             f.booking,
		RoomID:                f.roomID,
		StartAt:               f.fake.Now(),
		GuestName:             "Sam",
		Nights:                2,
		NightlyRate:           200000,
		TargetCollectedAmount: 200000,
		Actor:                 "frontdesk",
	}

	result, err := f.svc.SaveOvernight(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(200000), result.AddedCollectedAmount)
	assert.Equal(t, int64(200000), result.PaidAmountAfterOperation)
	assert.Equal(t, int64(1), f.invoiceCount(t))

	// Same target again: nothing more is collected.
	result, err = f.svc.SaveOvernight(ctx, req)
	require.NoError(t, err)
	assert.Zero(t, result.AddedCollectedAmount)
	assert.Equal(t, int64(200000), result.PaidAmountAfterOperation)
	assert.Equal(t, int64(1), f.invoiceCount(t))

	// A raised target collects only the difference.
	req.TargetCollectedAmount = 250000
	result, err = f.svc.SaveOvernight(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), result.AddedCollectedAmount)
	assert.Equal(t, int64(250000), result.PaidAmountAfterOperation)
	assert.Equal(t, int64(2), f.invoiceCount(t))

	var infos []bookingdomain.StayInfo
	require.NoError(t, f.db.Where("booking_id = ?", f.booking).Find(&infos).Error)
	require.Len(t, infos, 1)
	assert.Equal(t, int64(200000), infos[0].NightlyRate)
	assert.Equal(t, 2, infos[0].Nights)
	assert.Equal(t, "Sam", infos[0].GuestName)

	booking := f.loadBooking(t)
	assert.Equal(t, bookingdomain.BookingStatusCheckedIn, booking.Status)
	assert.Equal(t, bookingdomain.BookingKindOvernight, booking.Kind)
}

func TestSaveOvernightTargetBelowPaid(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()

	req := checkoutdomain.SaveOvernightRequest{
		BookingID:             f.booking,
		RoomID:                f.roomID,
		StartAt:               f.fake.Now(),
		Nights:                1,
		NightlyRate:           200000,
		TargetCollectedAmount: 200000,
		Actor:                 "frontdesk",
	}
	_, err := f.svc.SaveOvernight(ctx, req)
	require.NoError(t, err)

	// A lowered target never refunds or writes a negative invoice.
	req.TargetCollectedAmount = 100000
	result, err := f.svc.SaveOvernight(ctx, req)
	require.NoError(t, err)
	assert.Zero(t, result.AddedCollectedAmount)
	assert.Equal(t, int64(200000), result.PaidAmountAfterOperation)
	assert.Equal(t, int64(1), f.invoiceCount(t))
}

func TestPayOvernightSettlement(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()

	save := checkoutdomain.SaveOvernightRequest{
		BookingID:             f.booking,
		RoomID:                f.roomID,
		StartAt:               f.fake.Now(),
		Nights:                2,
		NightlyRate:           200000,
		TargetCollectedAmount: 200000,
		Actor:                 "frontdesk",
	}
	_, err := f.svc.SaveOvernight(ctx, save)
	require.NoError(t, err)

	f.fake.Advance(36 * time.Hour)
	result, err := f.svc.PayOvernight(ctx, checkoutdomain.PayOvernightRequest{
		SaveOvernightRequest: save,
		TotalCharge:          450000,
	})
	require.NoError(t, err)
	assert.Zero(t, result.AddedCollectedAmount)
	assert.Equal(t, int64(250000), result.SettlementAmount)
	assert.Equal(t, int64(450000), result.PaidAmountAfterOperation)

	booking := f.loadBooking(t)
	assert.Equal(t, bookingdomain.BookingStatusSettled, booking.Status)
	assert.Equal(t, roomdomain.RoomStatusNeedsCleaning, f.loadRoom(t).Status)
}

func TestPayOvernightOverpaid(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()

	save := checkoutdomain.SaveOvernightRequest{
		BookingID:             f.booking,
		RoomID:                f.roomID,
		StartAt:               f.fake.Now(),
		Nights:                1,
		NightlyRate:           200000,
		TargetCollectedAmount: 300000,
		Actor:                 "frontdesk",
	}
	_, err := f.svc.SaveOvernight(ctx, save)
	require.NoError(t, err)

	result, err := f.svc.PayOvernight(ctx, checkoutdomain.PayOvernightRequest{
		SaveOvernightRequest: save,
		TotalCharge:          200000,
	})
	require.NoError(t, err)
	assert.Zero(t, result.SettlementAmount, "an overpaid booking settles at zero")
	assert.Equal(t, int64(300000), result.PaidAmountAfterOperation)
	assert.Equal(t, int64(1), f.invoiceCount(t))
}

func TestCancelHourlyFreesRoom(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()

	_, err := f.svc.SaveHourly(ctx, checkoutdomain.SaveHourlyRequest{
		BookingID: f.booking,
		RoomID:    f.roomID,
		StartAt:   f.fake.Now(),
		Actor:     "frontdesk",
	})
	require.NoError(t, err)

	result, err := f.svc.CancelHourly(ctx, checkoutdomain.CancelRequest{
		BookingID: f.booking,
		RoomID:    f.roomID,
		Actor:     "frontdesk",
	})
	require.NoError(t, err)
	assert.Zero(t, result.SettlementAmount)

	booking := f.loadBooking(t)
	assert.Equal(t, bookingdomain.BookingStatusCancelled, booking.Status)
	require.NotNil(t, booking.ActualDepartureAt)

	room := f.loadRoom(t)
	assert.Equal(t, roomdomain.RoomStatusVacant, room.Status)
	assert.Nil(t, room.OccupiedSince)
	assert.Zero(t, f.invoiceCount(t))
}

func TestTerminalBookingRejected(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()

	_, err := f.svc.PayHourly(ctx, checkoutdomain.PayHourlyRequest{
		BookingID: f.booking,
		RoomID:    f.roomID,
		DueAmount: 60000,
		Actor:     "frontdesk",
	})
	require.NoError(t, err)

	_, err = f.svc.SaveHourly(ctx, checkoutdomain.SaveHourlyRequest{
		BookingID: f.booking,
		RoomID:    f.roomID,
		StartAt:   f.fake.Now(),
		Actor:     "frontdesk",
	})
	require.Error(t, err)
	assert.True(t, checkoutdomain.IsDomain(err))
}

func TestRoomMismatchRejected(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()

	_, err := f.svc.SaveHourly(ctx, checkoutdomain.SaveHourlyRequest{
		BookingID: f.booking,
		RoomID:    f.node.Generate(),
		StartAt:   f.fake.Now(),
		Actor:     "frontdesk",
	})
	require.Error(t, err)
	assert.True(t, checkoutdomain.IsDomain(err))
}

func TestBookingNotFoundRejected(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()

	_, err := f.svc.CancelHourly(ctx, checkoutdomain.CancelRequest{
		BookingID: f.node.Generate(),
		RoomID:    f.roomID,
		Actor:     "frontdesk",
	})
	require.Error(t, err)
	assert.True(t, checkoutdomain.IsDomain(err))
}

func TestValidationBeforeLocks(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()

	_, err := f.svc.SaveHourly(ctx, checkoutdomain.SaveHourlyRequest{
		BookingID: f.booking,
		RoomID:    f.roomID,
		StartAt:   f.fake.Now(),
		Extras:    checkoutdomain.ExtrasInput{SoftDrinkQty: -1},
		Actor:     "frontdesk",
	})
	require.Error(t, err)
	assert.True(t, checkoutdomain.IsValidation(err))

	_, err = f.svc.SaveOvernight(ctx, checkoutdomain.SaveOvernightRequest{
		BookingID:   f.booking,
		RoomID:      f.roomID,
		StartAt:     f.fake.Now(),
		Nights:      0,
		NightlyRate: 200000,
		Actor:       "frontdesk",
	})
	require.Error(t, err)
	assert.True(t, checkoutdomain.IsValidation(err))

	_, err = f.svc.PayOvernight(ctx, checkoutdomain.PayOvernightRequest{
		SaveOvernightRequest: checkoutdomain.SaveOvernightRequest{
			BookingID:   f.booking,
			RoomID:      f.roomID,
			StartAt:     f.fake.Now(),
			Nights:      1,
			NightlyRate: 200000,
			Actor:       "frontdesk",
		},
		TotalCharge: -1,
	})
	require.Error(t, err)
	assert.True(t, checkoutdomain.IsValidation(err))

	// Nothing changed.
	assert.Equal(t, bookingdomain.BookingStatusReserved, f.loadBooking(t).Status)
	assert.Equal(t, roomdomain.RoomStatusVacant, f.loadRoom(t).Status)
}

func TestAuditTrailWritten(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()

	_, err := f.svc.SaveHourly(ctx, checkoutdomain.SaveHourlyRequest{
		BookingID: f.booking,
		RoomID:    f.roomID,
		StartAt:   f.fake.Now(),
		Actor:     "frontdesk",
	})
	require.NoError(t, err)

	var logs []auditdomain.AuditLog
	require.NoError(t, f.db.Where("action = ?", "checkout.save_hourly").Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "frontdesk", logs[0].Actor)
	assert.NotEmpty(t, logs[0].CorrelationID)
	require.NotNil(t, logs[0].BookingID)
	assert.Equal(t, f.booking, *logs[0].BookingID)
}

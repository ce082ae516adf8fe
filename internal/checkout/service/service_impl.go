package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/lodgia/internal/audit/domain"
	bookingdomain "github.com/smallbiznis/lodgia/internal/booking/domain"
	checkoutdomain "github.com/smallbiznis/lodgia/internal/checkout/domain"
	"github.com/smallbiznis/lodgia/internal/clock"
	invoicedomain "github.com/smallbiznis/lodgia/internal/invoice/domain"
	obsmetrics "github.com/smallbiznis/lodgia/internal/observability/metrics"
	"github.com/smallbiznis/lodgia/internal/opscope"
	roomdomain "github.com/smallbiznis/lodgia/internal/room/domain"
	pkgdb "github.com/smallbiznis/lodgia/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        checkoutdomain.Repository
	InvoiceRepo invoicedomain.Repository
	AuditSvc    auditdomain.Service
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        checkoutdomain.Repository
	invoiceRepo invoicedomain.Repository
	auditSvc    auditdomain.Service
	obsMetrics  *obsmetrics.Metrics
}

func NewService(p Params) checkoutdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("checkout.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		invoiceRepo: p.InvoiceRepo,
		auditSvc:    p.AuditSvc,
		obsMetrics:  p.ObsMetrics,
	}
}

func (s *Service) SaveHourly(ctx context.Context, req checkoutdomain.SaveHourlyRequest) (checkoutdomain.Result, error) {
	ctx, scope := opscope.Begin(ctx, req.Actor)
	started := s.clock.Now()

	if err := validateIDs(req.BookingID, req.RoomID); err != nil {
		return s.fail("save_hourly", started, err)
	}
	if err := validateExtras(req.Extras); err != nil {
		return s.fail("save_hourly", started, err)
	}
	if req.StartAt.IsZero() {
		return s.fail("save_hourly", started, checkoutdomain.ValidationError("start time not set"))
	}

	var result checkoutdomain.Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, _, err := s.lockPair(ctx, tx, req.BookingID, req.RoomID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if err := s.upsertExtras(ctx, tx, booking.ID, req.Extras, scope.Actor, now); err != nil {
			return err
		}
		if err := s.checkIn(ctx, tx, booking.ID, bookingdomain.BookingKindHourly, req.StartAt, now); err != nil {
			return err
		}
		if err := s.occupyRoom(ctx, tx, req.RoomID, bookingdomain.BookingKindHourly, req.StartAt, req.GuestName, now); err != nil {
			return err
		}

		paid, err := s.invoiceRepo.SumPaid(ctx, tx, booking.ID)
		if err != nil {
			return err
		}
		result = checkoutdomain.Result{PaidAmountAfterOperation: paid}
		return nil
	})
	if err != nil {
		return s.fail("save_hourly", started, classifyStorage(err))
	}

	s.finish(ctx, "save_hourly", started, req.BookingID, req.RoomID, scope, result, map[string]any{
		"status":     string(bookingdomain.BookingStatusCheckedIn),
		"room":       string(roomdomain.RoomStatusOccupied),
		"kind":       string(bookingdomain.BookingKindHourly),
		"started_at": req.StartAt.UTC().Format(time.RFC3339),
	})
	return result, nil
}

func (s *Service) PayHourly(ctx context.Context, req checkoutdomain.PayHourlyRequest) (checkoutdomain.Result, error) {
	ctx, scope := opscope.Begin(ctx, req.Actor)
	started := s.clock.Now()

	if err := validateIDs(req.BookingID, req.RoomID); err != nil {
		return s.fail("pay_hourly", started, err)
	}
	if err := validateExtras(req.Extras); err != nil {
		return s.fail("pay_hourly", started, err)
	}
	if req.DueAmount < 0 {
		return s.fail("pay_hourly", started, checkoutdomain.ValidationError("due amount must not be negative"))
	}

	var result checkoutdomain.Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, _, err := s.lockPair(ctx, tx, req.BookingID, req.RoomID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if err := s.upsertExtras(ctx, tx, booking.ID, req.Extras, scope.Actor, now); err != nil {
			return err
		}
		if _, err := s.insertPaidInvoice(ctx, tx, booking.ID, req.DueAmount, scope.Actor, now); err != nil {
			return err
		}
		if err := s.settle(ctx, tx, booking.ID, now); err != nil {
			return err
		}
		if err := s.clearRoom(ctx, tx, req.RoomID, roomdomain.RoomStatusNeedsCleaning, now); err != nil {
			return err
		}

		paid, err := s.invoiceRepo.SumPaid(ctx, tx, booking.ID)
		if err != nil {
			return err
		}
		result = checkoutdomain.Result{
			SettlementAmount:         maxInt64(0, req.DueAmount),
			PaidAmountAfterOperation: paid,
		}
		return nil
	})
	if err != nil {
		return s.fail("pay_hourly", started, classifyStorage(err))
	}

	s.finish(ctx, "pay_hourly", started, req.BookingID, req.RoomID, scope, result, map[string]any{
		"status": string(bookingdomain.BookingStatusSettled),
		"room":   string(roomdomain.RoomStatusNeedsCleaning),
	})
	return result, nil
}

func (s *Service) CancelHourly(ctx context.Context, req checkoutdomain.CancelRequest) (checkoutdomain.Result, error) {
	return s.cancel(ctx, "cancel_hourly", req)
}

func (s *Service) CancelOvernight(ctx context.Context, req checkoutdomain.CancelRequest) (checkoutdomain.Result, error) {
	return s.cancel(ctx, "cancel_overnight", req)
}

func (s *Service) cancel(ctx context.Context, op string, req checkoutdomain.CancelRequest) (checkoutdomain.Result, error) {
	ctx, scope := opscope.Begin(ctx, req.Actor)
	started := s.clock.Now()

	if err := validateIDs(req.BookingID, req.RoomID); err != nil {
		return s.fail(op, started, err)
	}

	var result checkoutdomain.Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, _, err := s.lockPair(ctx, tx, req.BookingID, req.RoomID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		rows, err := s.repo.Cancel(ctx, tx, booking.ID, now, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			return checkoutdomain.DomainError("booking update affected no rows")
		}
		if err := s.clearRoom(ctx, tx, req.RoomID, roomdomain.RoomStatusVacant, now); err != nil {
			return err
		}

		paid, err := s.invoiceRepo.SumPaid(ctx, tx, booking.ID)
		if err != nil {
			return err
		}
		result = checkoutdomain.Result{PaidAmountAfterOperation: paid}
		return nil
	})
	if err != nil {
		return s.fail(op, started, classifyStorage(err))
	}

	s.finish(ctx, op, started, req.BookingID, req.RoomID, scope, result, map[string]any{
		"status": string(bookingdomain.BookingStatusCancelled),
		"room":   string(roomdomain.RoomStatusVacant),
	})
	return result, nil
}

func (s *Service) SaveOvernight(ctx context.Context, req checkoutdomain.SaveOvernightRequest) (checkoutdomain.Result, error) {
	ctx, scope := opscope.Begin(ctx, req.Actor)
	started := s.clock.Now()

	if err := validateOvernight(req); err != nil {
		return s.fail("save_overnight", started, err)
	}

	var result checkoutdomain.Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, _, err := s.lockPair(ctx, tx, req.BookingID, req.RoomID)
		if err != nil {
			return err
		}

		collected, err := s.applyOvernightStay(ctx, tx, booking.ID, req, scope.Actor)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		if err := s.checkIn(ctx, tx, booking.ID, bookingdomain.BookingKindOvernight, req.StartAt, now); err != nil {
			return err
		}
		if err := s.occupyRoom(ctx, tx, req.RoomID, bookingdomain.BookingKindOvernight, req.StartAt, req.GuestName, now); err != nil {
			return err
		}

		result = checkoutdomain.Result{
			AddedCollectedAmount:     collected.added,
			PaidAmountAfterOperation: collected.paidAfter,
		}
		return nil
	})
	if err != nil {
		return s.fail("save_overnight", started, classifyStorage(err))
	}

	s.finish(ctx, "save_overnight", started, req.BookingID, req.RoomID, scope, result, map[string]any{
		"status":       string(bookingdomain.BookingStatusCheckedIn),
		"room":         string(roomdomain.RoomStatusOccupied),
		"kind":         string(bookingdomain.BookingKindOvernight),
		"nights":       req.Nights,
		"nightly_rate": req.NightlyRate,
	})
	return result, nil
}

func (s *Service) PayOvernight(ctx context.Context, req checkoutdomain.PayOvernightRequest) (checkoutdomain.Result, error) {
	ctx, scope := opscope.Begin(ctx, req.Actor)
	started := s.clock.Now()

	if err := validateOvernight(req.SaveOvernightRequest); err != nil {
		return s.fail("pay_overnight", started, err)
	}
	if req.TotalCharge < 0 {
		return s.fail("pay_overnight", started, checkoutdomain.ValidationError("total charge must not be negative"))
	}

	var result checkoutdomain.Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, _, err := s.lockPair(ctx, tx, req.BookingID, req.RoomID)
		if err != nil {
			return err
		}

		collected, err := s.applyOvernightStay(ctx, tx, booking.ID, req.SaveOvernightRequest, scope.Actor)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		settlement := maxInt64(0, req.TotalCharge-collected.paidAfter)
		if _, err := s.insertPaidInvoice(ctx, tx, booking.ID, settlement, scope.Actor, now); err != nil {
			return err
		}
		if err := s.settle(ctx, tx, booking.ID, now); err != nil {
			return err
		}
		if err := s.clearRoom(ctx, tx, req.RoomID, roomdomain.RoomStatusNeedsCleaning, now); err != nil {
			return err
		}

		paid, err := s.invoiceRepo.SumPaid(ctx, tx, booking.ID)
		if err != nil {
			return err
		}
		result = checkoutdomain.Result{
			AddedCollectedAmount:     collected.added,
			SettlementAmount:         settlement,
			PaidAmountAfterOperation: paid,
		}
		return nil
	})
	if err != nil {
		return s.fail("pay_overnight", started, classifyStorage(err))
	}

	s.finish(ctx, "pay_overnight", started, req.BookingID, req.RoomID, scope, result, map[string]any{
		"status":       string(bookingdomain.BookingStatusSettled),
		"room":         string(roomdomain.RoomStatusNeedsCleaning),
		"total_charge": req.TotalCharge,
	})
	return result, nil
}

// lockPair acquires the booking row lock first and the room row lock second,
// the fixed order shared by all six operations, and verifies the pair.
func (s *Service) lockPair(ctx context.Context, tx *gorm.DB, bookingID, roomID snowflake.ID) (*bookingdomain.Booking, *roomdomain.Room, error) {
	booking, err := s.repo.LockBooking(ctx, tx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if booking == nil {
		return nil, nil, checkoutdomain.DomainError("booking not found")
	}
	if booking.RoomID != roomID {
		return nil, nil, checkoutdomain.DomainError("booking belongs to a different room")
	}
	if booking.Status.IsTerminal() {
		return nil, nil, checkoutdomain.DomainError("booking already in a terminal status")
	}

	room, err := s.repo.LockRoom(ctx, tx, roomID)
	if err != nil {
		return nil, nil, err
	}
	if room == nil {
		return nil, nil, checkoutdomain.DomainError("room not found")
	}
	return booking, room, nil
}

type collection struct {
	added     int64
	paidAfter int64
}

// applyOvernightStay runs SaveOvernight's shared sub-steps inside the
// caller's transaction: extras upsert, stay-info upserts and the idempotent
// collected-amount delta.
func (s *Service) applyOvernightStay(ctx context.Context, tx *gorm.DB, bookingID snowflake.ID, req checkoutdomain.SaveOvernightRequest, actor string) (collection, error) {
	now := s.clock.Now()

	if err := s.upsertExtras(ctx, tx, bookingID, req.Extras, actor, now); err != nil {
		return collection{}, err
	}

	info := &bookingdomain.StayInfo{
		ID:          s.genID.Generate(),
		BookingID:   bookingID,
		NightlyRate: maxInt64(0, req.NightlyRate),
		Nights:      req.Nights,
		CreatedBy:   actor,
		UpdatedBy:   actor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.UpsertStayRate(ctx, tx, info); err != nil {
		return collection{}, err
	}
	if name := strings.TrimSpace(req.GuestName); name != "" {
		if err := s.repo.UpsertStayGuestName(ctx, tx, s.genID.Generate(), bookingID, name, actor, now); err != nil {
			return collection{}, err
		}
	}

	alreadyPaid, err := s.invoiceRepo.SumPaid(ctx, tx, bookingID)
	if err != nil {
		return collection{}, err
	}
	added := maxInt64(0, req.TargetCollectedAmount-alreadyPaid)
	if _, err := s.insertPaidInvoice(ctx, tx, bookingID, added, actor, now); err != nil {
		return collection{}, err
	}

	return collection{added: added, paidAfter: alreadyPaid + added}, nil
}

// upsertExtras writes-or-merges the two fixed line items, quantities and
// prices clamped to zero and amounts recomputed.
func (s *Service) upsertExtras(ctx context.Context, tx *gorm.DB, bookingID snowflake.ID, extras checkoutdomain.ExtrasInput, actor string, now time.Time) error {
	items := []struct {
		code      string
		qty       int64
		unitPrice int64
	}{
		{bookingdomain.ExtraItemSoftDrink, extras.SoftDrinkQty, extras.SoftDrinkUnitPrice},
		{bookingdomain.ExtraItemWater, extras.WaterQty, extras.WaterUnitPrice},
	}

	for _, item := range items {
		qty := maxInt64(0, item.qty)
		unitPrice := maxInt64(0, item.unitPrice)
		extra := &bookingdomain.BookingExtra{
			ID:        s.genID.Generate(),
			BookingID: bookingID,
			ItemCode:  item.code,
			ItemName:  bookingdomain.ExtraItemName(item.code),
			Quantity:  qty,
			UnitPrice: unitPrice,
			Amount:    qty * unitPrice,
			CreatedBy: actor,
			UpdatedBy: actor,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.UpsertExtra(ctx, tx, extra); err != nil {
			return err
		}
	}
	return nil
}

// insertPaidInvoice writes one paid invoice unless the clamped amount is
// zero, in which case nothing is written at all.
func (s *Service) insertPaidInvoice(ctx context.Context, tx *gorm.DB, bookingID snowflake.ID, amount int64, actor string, now time.Time) (bool, error) {
	if amount <= 0 {
		return false, nil
	}
	inserted, err := s.invoiceRepo.InsertPaid(ctx, tx, &invoicedomain.Invoice{
		ID:        s.genID.Generate(),
		BookingID: bookingID,
		IssuedAt:  now,
		Amount:    amount,
		CreatedBy: actor,
	})
	if err != nil {
		return false, err
	}
	if inserted {
		s.obsMetrics.IncInvoicesWritten()
	}
	return inserted, nil
}

func (s *Service) checkIn(ctx context.Context, tx *gorm.DB, bookingID snowflake.ID, kind bookingdomain.BookingKind, startAt, now time.Time) error {
	rows, err := s.repo.CheckIn(ctx, tx, bookingID, kind, startAt, now)
	if err != nil {
		return err
	}
	if rows == 0 {
		return checkoutdomain.DomainError("booking update affected no rows")
	}
	return nil
}

func (s *Service) settle(ctx context.Context, tx *gorm.DB, bookingID snowflake.ID, now time.Time) error {
	rows, err := s.repo.Settle(ctx, tx, bookingID, now, now)
	if err != nil {
		return err
	}
	if rows == 0 {
		return checkoutdomain.DomainError("booking update affected no rows")
	}
	return nil
}

func (s *Service) occupyRoom(ctx context.Context, tx *gorm.DB, roomID snowflake.ID, kind bookingdomain.BookingKind, since time.Time, guestName string, now time.Time) error {
	rows, err := s.repo.MarkRoomOccupied(ctx, tx, roomID, kind, since, strings.TrimSpace(guestName), now)
	if err != nil {
		return err
	}
	if rows == 0 {
		return checkoutdomain.DomainError("room update affected no rows")
	}
	return nil
}

func (s *Service) clearRoom(ctx context.Context, tx *gorm.DB, roomID snowflake.ID, status roomdomain.RoomStatus, now time.Time) error {
	var (
		rows int64
		err  error
	)
	switch status {
	case roomdomain.RoomStatusVacant:
		rows, err = s.repo.MarkRoomVacant(ctx, tx, roomID, now)
	default:
		rows, err = s.repo.MarkRoomNeedsCleaning(ctx, tx, roomID, now)
	}
	if err != nil {
		return err
	}
	if rows == 0 {
		return checkoutdomain.DomainError("room update affected no rows")
	}
	return nil
}

// classifyStorage names the common storage failure modes before the generic
// infrastructure wrap.
func classifyStorage(err error) error {
	if err == nil {
		return nil
	}
	if checkoutdomain.CategoryOf(err) != "" {
		return err
	}
	if pkgdb.IsLockErr(err) {
		return checkoutdomain.InfrastructureError("lock contention", err)
	}
	if pkgdb.IsDuplicateKeyErr(err) {
		return checkoutdomain.InfrastructureError("duplicate key", err)
	}
	return checkoutdomain.Classify(err)
}

func (s *Service) fail(op string, started time.Time, err error) (checkoutdomain.Result, error) {
	outcome := string(checkoutdomain.CategoryOf(err))
	if outcome == "" {
		outcome = string(checkoutdomain.CategoryInfrastructure)
	}
	s.obsMetrics.ObserveCheckout(op, outcome, s.clock.Now().Sub(started))
	s.log.Warn("checkout operation failed", zap.String("op", op), zap.Error(err))
	return checkoutdomain.Result{}, err
}

// finish records metrics and the best-effort audit trail entry after a
// committed operation.
func (s *Service) finish(ctx context.Context, op string, started time.Time, bookingID, roomID snowflake.ID, scope opscope.Scope, result checkoutdomain.Result, snapshot map[string]any) {
	s.obsMetrics.ObserveCheckout(op, "ok", s.clock.Now().Sub(started))

	if snapshot == nil {
		snapshot = map[string]any{}
	}
	snapshot["added_collected_amount"] = result.AddedCollectedAmount
	snapshot["settlement_amount"] = result.SettlementAmount
	snapshot["paid_amount_after_operation"] = result.PaidAmountAfterOperation

	s.auditSvc.Record(ctx, auditdomain.Entry{
		EntityType: "booking",
		EntityID:   bookingID.String(),
		BookingID:  bookingID,
		RoomID:     roomID,
		Action:     "checkout." + op,
		SourceOp:   op,
		Snapshot:   snapshot,
	})

	s.log.Info("checkout operation committed",
		zap.String("op", op),
		zap.String("booking_id", bookingID.String()),
		zap.String("room_id", roomID.String()),
		zap.String("correlation_id", scope.CorrelationID),
		zap.Int64("added_collected_amount", result.AddedCollectedAmount),
		zap.Int64("settlement_amount", result.SettlementAmount),
	)
}

func validateIDs(bookingID, roomID snowflake.ID) error {
	if bookingID <= 0 {
		return checkoutdomain.ValidationError("booking id must be positive")
	}
	if roomID <= 0 {
		return checkoutdomain.ValidationError("room id must be positive")
	}
	return nil
}

func validateExtras(extras checkoutdomain.ExtrasInput) error {
	if extras.SoftDrinkQty < 0 || extras.WaterQty < 0 {
		return checkoutdomain.ValidationError("extras quantity must not be negative")
	}
	if extras.SoftDrinkUnitPrice < 0 || extras.WaterUnitPrice < 0 {
		return checkoutdomain.ValidationError("extras unit price must not be negative")
	}
	return nil
}

func validateOvernight(req checkoutdomain.SaveOvernightRequest) error {
	if err := validateIDs(req.BookingID, req.RoomID); err != nil {
		return err
	}
	if err := validateExtras(req.Extras); err != nil {
		return err
	}
	if req.StartAt.IsZero() {
		return checkoutdomain.ValidationError("start time not set")
	}
	if req.Nights <= 0 {
		return checkoutdomain.ValidationError("nights must be positive")
	}
	if req.NightlyRate <= 0 {
		return checkoutdomain.ValidationError("nightly rate must be positive")
	}
	if req.TargetCollectedAmount < 0 {
		return checkoutdomain.ValidationError("target collected amount must not be negative")
	}
	return nil
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

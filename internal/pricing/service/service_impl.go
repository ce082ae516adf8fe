package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/smallbiznis/lodgia/internal/clock"
	pricingdomain "github.com/smallbiznis/lodgia/internal/pricing/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  pricingdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  pricingdomain.Repository

	mu     sync.RWMutex
	cached *pricingdomain.Settings

	subMu sync.Mutex
	subs  []chan struct{}
}

func NewService(p Params) pricingdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("pricing.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Current(ctx context.Context) pricingdomain.Settings {
	s.mu.RLock()
	if s.cached != nil {
		snapshot := s.cached.Clone()
		s.mu.RUnlock()
		return snapshot
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil {
		return s.cached.Clone()
	}

	loaded := s.load(ctx)
	s.cached = &loaded
	return loaded.Clone()
}

func (s *Service) load(ctx context.Context) pricingdomain.Settings {
	settings := pricingdomain.Defaults()

	rows, err := s.repo.GetAll(ctx, s.db)
	if err != nil {
		s.log.Warn("failed to load tariff settings, using defaults", zap.Error(err))
		return settings
	}

	for _, row := range rows {
		applySetting(&settings, row.Key, row.Value)
	}
	return settings
}

func applySetting(settings *pricingdomain.Settings, key, value string) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return
	}

	switch key {
	case pricingdomain.KeyCheckoutHour:
		settings.CheckoutHour = clampHour(int(parsed))
		return
	case pricingdomain.KeyNightStartHour:
		settings.NightStartHour = clampHour(int(parsed))
		return
	}

	parts := strings.Split(key, ".")
	if len(parts) != 3 {
		return
	}

	if parts[0] == "Extra" && parts[2] == "UnitPrice" {
		settings.ExtraPrices[parts[1]] = clampMoney(parsed)
		return
	}

	roomType := parts[1]
	tariff, ok := settings.Tariffs[roomType]
	if !ok {
		tariff = pricingdomain.Tariff{}
	}

	switch parts[0] + "." + parts[2] {
	case "Hourly.Hour1":
		tariff.HourlyFirstRate = clampMoney(parsed)
	case "Hourly.NextHour":
		tariff.HourlyNextRate = clampMoney(parsed)
	case "Hourly.RoundUpMinutes":
		tariff.RoundUpMinutes = clampMinutes(int(parsed))
	case "Overnight.NightlyRate":
		tariff.NightlyRate = clampMoney(parsed)
	case "Overnight.DailyRate":
		tariff.DailyRate = clampMoney(parsed)
	case "Overnight.GraceHours":
		tariff.GraceHours = clampNonNegative(int(parsed))
	case "Overnight.LateFee":
		tariff.LateFee = clampMoney(parsed)
	default:
		return
	}
	settings.Tariffs[roomType] = tariff
}

func (s *Service) Save(ctx context.Context, settings pricingdomain.Settings, actor string) error {
	clamped := clampSettings(settings)
	now := s.clock.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, value := range pricingdomain.Flatten(clamped) {
			if err := s.repo.Upsert(ctx, tx, key, strconv.FormatInt(value, 10), actor, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	snapshot := clamped.Clone()
	s.cached = &snapshot
	s.mu.Unlock()

	s.mirrorLegacyPrices(ctx, clamped)
	s.notify()

	s.log.Info("tariff settings saved", zap.String("actor", actor))
	return nil
}

func clampSettings(settings pricingdomain.Settings) pricingdomain.Settings {
	out := settings.Clone()
	out.CheckoutHour = clampHour(out.CheckoutHour)
	out.NightStartHour = clampHour(out.NightStartHour)
	for roomType, tariff := range out.Tariffs {
		tariff.HourlyFirstRate = clampMoney(tariff.HourlyFirstRate)
		tariff.HourlyNextRate = clampMoney(tariff.HourlyNextRate)
		tariff.RoundUpMinutes = clampMinutes(tariff.RoundUpMinutes)
		tariff.NightlyRate = clampMoney(tariff.NightlyRate)
		tariff.DailyRate = clampMoney(tariff.DailyRate)
		tariff.GraceHours = clampNonNegative(tariff.GraceHours)
		tariff.LateFee = clampMoney(tariff.LateFee)
		out.Tariffs[roomType] = tariff
	}
	for itemCode, price := range out.ExtraPrices {
		out.ExtraPrices[itemCode] = clampMoney(price)
	}
	return out
}

// mirrorLegacyPrices copies the default nightly/daily rates into the legacy
// room_types price columns still read by older reporting queries. A missing
// table or column is non-fatal.
func (s *Service) mirrorLegacyPrices(ctx context.Context, settings pricingdomain.Settings) {
	for roomType, tariff := range settings.Tariffs {
		err := s.db.WithContext(ctx).Exec(
			`UPDATE room_types SET nightly_price = ?, daily_price = ?, updated_at = ? WHERE code = ?`,
			tariff.NightlyRate,
			tariff.DailyRate,
			s.clock.Now(),
			roomType,
		).Error
		if err != nil {
			s.log.Debug("legacy price mirror skipped", zap.String("room_type", roomType), zap.Error(err))
		}
	}
}

func (s *Service) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

func (s *Service) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()
	return ch
}

func (s *Service) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *Service) BillableHours(ctx context.Context, start, now time.Time, roomType string) int {
	tariff := s.Current(ctx).TariffFor(roomType)
	return billableHours(start, now, tariff.RoundUpMinutes)
}

func billableHours(start, now time.Time, roundUpMinutes int) int {
	if start.After(now) {
		start = now
	}
	minutes := int(now.Sub(start) / time.Minute)
	if minutes <= 60 {
		return 1
	}

	extra := minutes - 60
	hours := 1 + extra/60
	remainder := extra % 60
	if remainder > 0 && remainder >= roundUpMinutes {
		hours++
	}
	return hours
}

func (s *Service) HourlyCharge(ctx context.Context, start, now time.Time, roomType string) int64 {
	tariff := s.Current(ctx).TariffFor(roomType)
	hours := billableHours(start, now, tariff.RoundUpMinutes)

	first := clampMoney(tariff.HourlyFirstRate)
	next := clampMoney(tariff.HourlyNextRate)
	return first + int64(hours-1)*next
}

func (s *Service) OvernightCheckoutDeadline(ctx context.Context, checkIn time.Time, nights int, roomType string) time.Time {
	settings := s.Current(ctx)
	tariff := settings.TariffFor(roomType)
	return checkoutDeadline(checkIn, nights, settings.CheckoutHour, tariff.GraceHours)
}

func checkoutDeadline(checkIn time.Time, nights, checkoutHour, graceHours int) time.Time {
	if nights < 1 {
		nights = 1
	}
	deadline := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), checkoutHour, 0, 0, 0, checkIn.Location())
	if checkIn.Hour() >= checkoutHour {
		deadline = deadline.AddDate(0, 0, 1)
	}
	deadline = deadline.AddDate(0, 0, nights-1)
	return deadline.Add(time.Duration(graceHours) * time.Hour)
}

func (s *Service) InNightWindow(ctx context.Context, t time.Time) bool {
	settings := s.Current(ctx)
	return inNightWindow(t, settings.NightStartHour, settings.CheckoutHour)
}

func inNightWindow(t time.Time, nightStartHour, checkoutHour int) bool {
	if nightStartHour == checkoutHour {
		return true
	}
	tod := t.Hour()*60 + t.Minute()
	start := nightStartHour * 60
	end := checkoutHour * 60
	if nightStartHour < checkoutHour {
		return tod >= start && tod < end
	}
	// Window wraps past midnight.
	return tod >= start || tod < end
}

func (s *Service) OvernightBreakdown(ctx context.Context, checkIn time.Time, nights int, roomType string, nightlyRate int64, now time.Time, dailyRate int64) pricingdomain.OvernightBreakdown {
	settings := s.Current(ctx)
	tariff := settings.TariffFor(roomType)

	if nights < 1 {
		nights = 1
	}
	if nightlyRate <= 0 {
		nightlyRate = tariff.NightlyRate
	}
	if dailyRate <= 0 {
		dailyRate = tariff.DailyRate
	}

	breakdown := pricingdomain.OvernightBreakdown{
		NightUnitPrice:    nightlyRate,
		DayUnitPrice:      dailyRate,
		FirstSegmentNight: inNightWindow(checkIn, settings.NightStartHour, settings.CheckoutHour),
		Deadline:          checkoutDeadline(checkIn, nights, settings.CheckoutHour, tariff.GraceHours),
	}

	if breakdown.FirstSegmentNight {
		breakdown.NightUnits = 1
		breakdown.DayUnits = nights - 1
	} else {
		breakdown.NightUnits = 0
		breakdown.DayUnits = nights
	}

	breakdown.NightAmount = int64(breakdown.NightUnits) * nightlyRate
	breakdown.DayAmount = int64(breakdown.DayUnits) * dailyRate
	if now.After(breakdown.Deadline) {
		breakdown.LateFee = tariff.LateFee
	}
	breakdown.Total = breakdown.NightAmount + breakdown.DayAmount + breakdown.LateFee
	return breakdown
}

func clampMoney(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

func clampHour(v int) int {
	if v < 0 {
		return 0
	}
	if v > 23 {
		return 23
	}
	return v
}

func clampMinutes(v int) int {
	if v < 0 {
		return 0
	}
	if v > 59 {
		return 59
	}
	return v
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

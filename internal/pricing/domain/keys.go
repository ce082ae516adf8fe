package domain

import "fmt"

// Settings store keys are namespaced dotted strings; values are stored as
// culture-invariant integer strings.
const (
	KeyCheckoutHour   = "Overnight.CheckoutHour"
	KeyNightStartHour = "Overnight.NightStartHour"
)

func KeyHourlyFirst(roomType string) string {
	return fmt.Sprintf("Hourly.%s.Hour1", roomType)
}

func KeyHourlyNext(roomType string) string {
	return fmt.Sprintf("Hourly.%s.NextHour", roomType)
}

func KeyRoundUpMinutes(roomType string) string {
	return fmt.Sprintf("Hourly.%s.RoundUpMinutes", roomType)
}

func KeyNightlyRate(roomType string) string {
	return fmt.Sprintf("Overnight.%s.NightlyRate", roomType)
}

func KeyDailyRate(roomType string) string {
	return fmt.Sprintf("Overnight.%s.DailyRate", roomType)
}

func KeyGraceHours(roomType string) string {
	return fmt.Sprintf("Overnight.%s.GraceHours", roomType)
}

func KeyLateFee(roomType string) string {
	return fmt.Sprintf("Overnight.%s.LateFee", roomType)
}

func KeyExtraUnitPrice(itemCode string) string {
	return fmt.Sprintf("Extra.%s.UnitPrice", itemCode)
}

// Flatten serializes a settings snapshot into its store key-value pairs.
func Flatten(settings Settings) map[string]int64 {
	out := map[string]int64{
		KeyCheckoutHour:   int64(settings.CheckoutHour),
		KeyNightStartHour: int64(settings.NightStartHour),
	}
	for roomType, tariff := range settings.Tariffs {
		out[KeyHourlyFirst(roomType)] = tariff.HourlyFirstRate
		out[KeyHourlyNext(roomType)] = tariff.HourlyNextRate
		out[KeyRoundUpMinutes(roomType)] = int64(tariff.RoundUpMinutes)
		out[KeyNightlyRate(roomType)] = tariff.NightlyRate
		out[KeyDailyRate(roomType)] = tariff.DailyRate
		out[KeyGraceHours(roomType)] = int64(tariff.GraceHours)
		out[KeyLateFee(roomType)] = tariff.LateFee
	}
	for itemCode, price := range settings.ExtraPrices {
		out[KeyExtraUnitPrice(itemCode)] = price
	}
	return out
}

// Defaults returns the built-in tariff table used when the settings store
// is empty or unreadable.
func Defaults() Settings {
	return Settings{
		CheckoutHour:   12,
		NightStartHour: 20,
		Tariffs: map[string]Tariff{
			RoomTypeSingle: {
				HourlyFirstRate: 60000,
				HourlyNextRate:  20000,
				RoundUpMinutes:  5,
				NightlyRate:     200000,
				DailyRate:       250000,
				GraceHours:      1,
				LateFee:         20000,
			},
			RoomTypeDouble: {
				HourlyFirstRate: 80000,
				HourlyNextRate:  30000,
				RoundUpMinutes:  5,
				NightlyRate:     300000,
				DailyRate:       350000,
				GraceHours:      1,
				LateFee:         20000,
			},
		},
		ExtraPrices: map[string]int64{
			"SOFT_DRINK": 15000,
			"WATER":      10000,
		},
	}
}

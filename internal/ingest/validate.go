package ingest

import "github.com/lox/picnicweather/internal/models"

const (
	FlagTempOutOfRange     = "temp_out_of_range"
	FlagHumidityInvalid    = "humidity_invalid"
	FlagRainChanceInvalid  = "rain_chance_invalid"
	FlagWindSpeedUnlikely  = "wind_speed_unlikely"
	FlagRainNegative       = "rain_negative"
	FlagRainAmountUnlikely = "rain_amount_unlikely"
)

// ValidateForecastDay returns quality flags for values outside physical
// limits. Flagged days are still returned; the flags are only logged.
func ValidateForecastDay(d *models.DailyForecast) []string {
	var flags []string

	if d.Temp < -80 || d.Temp > 135 {
		flags = append(flags, FlagTempOutOfRange)
	}
	if d.HumidityPercent < 0 || d.HumidityPercent > 100 {
		flags = append(flags, FlagHumidityInvalid)
	}
	if d.RainChance < 0 || d.RainChance > 100 {
		flags = append(flags, FlagRainChanceInvalid)
	}
	if d.WindSpeed < 0 || d.WindSpeed > 200 {
		flags = append(flags, FlagWindSpeedUnlikely)
	}
	if d.RainInch < 0 {
		flags = append(flags, FlagRainNegative)
	} else if d.RainInch > 40 {
		flags = append(flags, FlagRainAmountUnlikely)
	}

	return flags
}

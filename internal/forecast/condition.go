package forecast

import "github.com/lox/picnicweather/internal/models"

// Classify returns the picnic condition for a day's mean temperature (°F)
// and mean rain chance (percent).
//
// The yellow rule is an OR over three clauses, so a rain chance of 49% or less
// makes a day yellow whatever the temperature. Only days that fail every
// clause are red.
func Classify(tempF, rainChancePercent float64) models.Condition {
	if tempF >= 68 && tempF <= 72 && rainChancePercent <= 10 {
		return models.ConditionGreen
	}
	if rainChancePercent <= 49 || (tempF >= 57 && tempF <= 67) || (tempF >= 73 && tempF <= 89) {
		return models.ConditionYellow
	}
	return models.ConditionRed
}

// ClassifyDay sets the Condition of d from its temperature and rain chance.
func ClassifyDay(d *models.DailyForecast) {
	d.Condition = Classify(d.Temp, d.RainChance)
}

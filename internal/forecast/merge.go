package forecast

import (
	"time"

	"github.com/lox/picnicweather/internal/models"
)

// DisplayKey is the weekday, month and day of d, ignoring the year.
func DisplayKey(d time.Time) string {
	return d.Format("Mon Jan 02")
}

// MergeDay combines a forecast day with the first historical record on the
// same weekday, month and day. Without a match the historical fields stay nil.
func MergeDay(day models.DailyForecast, history []models.DailyHistoricalAverage) models.DayDetail {
	detail := models.DayDetail{DailyForecast: day}
	key := DisplayKey(day.Date)
	for _, h := range history {
		if DisplayKey(h.Date) != key {
			continue
		}
		detail.HistAvgTemp = h.HistAvgTemp
		detail.HistAvgRain = h.HistAvgRain
		detail.HistAvgWind = h.HistAvgWind
		detail.HistAvgHumidity = h.HistAvgHumidity
		break
	}
	return detail
}

// FindDay returns the forecast day falling on date's calendar day.
func FindDay(days []models.DailyForecast, date time.Time) (models.DailyForecast, bool) {
	want := CalendarDay(date)
	for _, d := range days {
		if CalendarDay(d.Date).Equal(want) {
			return d, true
		}
	}
	return models.DailyForecast{}, false
}

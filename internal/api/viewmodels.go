package api

import (
	"time"

	"github.com/lox/picnicweather/internal/forecast"
	"github.com/lox/picnicweather/internal/models"
)

type DayCard struct {
	models.DailyForecast
	Palette forecast.Palette
	// Param is the /day?date= value for this card.
	Param string
}

type IndexData struct {
	Coordinate models.Coordinate
	Loading    bool
	Error      string
	Days       []DayCard
	UpdatedAt  time.Time
	Notice     string
}

type DayData struct {
	Coordinate models.Coordinate
	Day        models.DayDetail
	Palette    forecast.Palette
	// HistoryError is set when the averages could not be fetched; the
	// forecast is still shown.
	HistoryError string
}

func dayCards(days []models.DailyForecast) []DayCard {
	cards := make([]DayCard, 0, len(days))
	for _, d := range days {
		cards = append(cards, DayCard{
			DailyForecast: d,
			Palette:       forecast.GetPalette(d.Condition),
			Param:         d.Date.Format("2006-01-02"),
		})
	}
	return cards
}

type HealthStatus struct {
	Status        string            `json:"status"`
	Coordinate    models.Coordinate `json:"coordinate"`
	Loading       bool              `json:"loading"`
	UpdatedAt     *time.Time        `json:"updatedAt,omitempty"`
	ForecastDays  int               `json:"forecastDays"`
	ForecastErr   string            `json:"forecastError,omitempty"`
	HistoricalErr string            `json:"historicalError,omitempty"`
}

type forecastResponse struct {
	Coordinate models.Coordinate      `json:"coordinate"`
	Days       []models.DailyForecast `json:"days"`
}

type historicalResponse struct {
	Coordinate models.Coordinate               `json:"coordinate"`
	Days       []models.DailyHistoricalAverage `json:"days"`
}

type dayResponse struct {
	Coordinate      models.Coordinate `json:"coordinate"`
	Day             models.DayDetail  `json:"day"`
	HistoricalError string            `json:"historicalError,omitempty"`
}

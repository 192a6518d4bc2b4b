package models

import (
	"fmt"
	"math"
	"time"
)

// Coordinate is a resolved location. A new Coordinate starts a new fetch cycle.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Rounded returns the coordinate rounded to the given number of decimal places.
func (c Coordinate) Rounded(places int) Coordinate {
	p := math.Pow(10, float64(places))
	return Coordinate{
		Latitude:  math.Round(c.Latitude*p) / p,
		Longitude: math.Round(c.Longitude*p) / p,
	}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.2f,%.2f", c.Latitude, c.Longitude)
}

// Condition is the picnic suitability of a day.
type Condition string

const (
	ConditionGreen  Condition = "green"
	ConditionYellow Condition = "yellow"
	ConditionRed    Condition = "red"
)

// DailyForecast is one forecast day. Date is the calendar day at midnight UTC.
type DailyForecast struct {
	Date            time.Time `json:"date"`
	Temp            float64   `json:"temp"`            // °F
	RainInch        float64   `json:"rainInch"`        // inches
	RainChance      float64   `json:"rainChance"`      // 0-100
	HumidityPercent float64   `json:"humidityPercent"` // 0-100
	WindSpeed       float64   `json:"windSpeed"`       // mph
	Condition       Condition `json:"condition"`
}

// DailyHistoricalAverage holds the ten-year averages for one horizon day.
// A nil field means no samples were collected for that month-day.
type DailyHistoricalAverage struct {
	Date            time.Time `json:"date"`
	HistAvgTemp     *float64  `json:"histAvgTemp"`
	HistAvgRain     *float64  `json:"histAvgRain"`
	HistAvgWind     *float64  `json:"histAvgWind"`
	HistAvgHumidity *float64  `json:"histAvgHumidity"`
}

// DayDetail is a forecast day merged with its historical averages.
type DayDetail struct {
	DailyForecast
	HistAvgTemp     *float64 `json:"histAvgTemp"`
	HistAvgRain     *float64 `json:"histAvgRain"`
	HistAvgWind     *float64 `json:"histAvgWind"`
	HistAvgHumidity *float64 `json:"histAvgHumidity"`
}

// HasHistory reports whether any historical average was merged in.
func (d DayDetail) HasHistory() bool {
	return d.HistAvgTemp != nil || d.HistAvgRain != nil || d.HistAvgWind != nil || d.HistAvgHumidity != nil
}

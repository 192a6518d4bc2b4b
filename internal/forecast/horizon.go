package forecast

import (
	"time"

	"github.com/lox/picnicweather/internal/models"
)

const (
	// HorizonDays is the number of forecast days shown.
	HorizonDays = 14
	// HistoricalYears is how many prior years feed the historical averages.
	HistoricalYears = 10
)

// Today returns the calendar day of now in loc, as midnight UTC.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	n := now.In(loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// CalendarDay truncates t to its UTC calendar day.
func CalendarDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Horizon returns the HorizonDays calendar days starting at today.
func Horizon(today time.Time) []time.Time {
	days := make([]time.Time, HorizonDays)
	for i := range days {
		days[i] = today.AddDate(0, 0, i)
	}
	return days
}

// YearRange returns the archive date range for the horizon shifted back by
// yearOffset years. The end is derived from the start so the range stays
// ordered when the horizon crosses a new year.
func YearRange(horizon []time.Time, yearOffset int) (start, end time.Time) {
	first := horizon[0]
	start = time.Date(first.Year()-yearOffset, first.Month(), first.Day(), 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 0, len(horizon)-1)
	return start, end
}

// MonthDayKey identifies a calendar day across years, e.g. "07-04".
func MonthDayKey(d time.Time) string {
	return d.Format("01-02")
}

// Accumulator collects historical samples per month-day key.
type Accumulator struct {
	byKey map[string]*samples
}

type samples struct {
	temps      []float64
	rains      []float64
	winds      []float64
	humidities []float64
}

func NewAccumulator() *Accumulator {
	return &Accumulator{byKey: make(map[string]*samples)}
}

// Add records one archive day. Nil values are skipped for that metric only.
func (a *Accumulator) Add(day time.Time, temp, rain, wind, humidity *float64) {
	key := MonthDayKey(day)
	s, ok := a.byKey[key]
	if !ok {
		s = &samples{}
		a.byKey[key] = s
	}
	if temp != nil {
		s.temps = append(s.temps, *temp)
	}
	if rain != nil {
		s.rains = append(s.rains, *rain)
	}
	if wind != nil {
		s.winds = append(s.winds, *wind)
	}
	if humidity != nil {
		s.humidities = append(s.humidities, *humidity)
	}
}

// Samples returns the number of temperature samples held for key.
func (a *Accumulator) Samples(key string) int {
	if s, ok := a.byKey[key]; ok {
		return len(s.temps)
	}
	return 0
}

// Averages returns one record per horizon day, in horizon order.
func (a *Accumulator) Averages(horizon []time.Time) []models.DailyHistoricalAverage {
	out := make([]models.DailyHistoricalAverage, 0, len(horizon))
	for _, day := range horizon {
		avg := models.DailyHistoricalAverage{Date: day}
		if s, ok := a.byKey[MonthDayKey(day)]; ok {
			avg.HistAvgTemp = mean(s.temps)
			avg.HistAvgRain = mean(s.rains)
			avg.HistAvgWind = mean(s.winds)
			avg.HistAvgHumidity = mean(s.humidities)
		}
		out = append(out, avg)
	}
	return out
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	m := sum / float64(len(values))
	return &m
}

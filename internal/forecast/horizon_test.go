package forecast

import (
	"math"
	"testing"
	"time"
)

func ptr(f float64) *float64 { return &f }

func TestToday(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load timezone: %v", err)
	}

	// 02:30 UTC on the 20th is still the evening of the 19th in New York.
	now := time.Date(2026, 10, 20, 2, 30, 0, 0, time.UTC)
	got := Today(now, ny)
	want := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Today() = %v, want %v", got, want)
	}

	if got := Today(now, time.UTC); !got.Equal(want.AddDate(0, 0, 1)) {
		t.Errorf("Today(UTC) = %v, want %v", got, want.AddDate(0, 0, 1))
	}
}

func TestHorizon(t *testing.T) {
	today := time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)
	days := Horizon(today)
	if len(days) != HorizonDays {
		t.Fatalf("len(Horizon) = %d, want %d", len(days), HorizonDays)
	}
	if !days[0].Equal(today) {
		t.Errorf("days[0] = %v, want %v", days[0], today)
	}
	if got := days[13].Format("2006-01-02"); got != "2027-01-07" {
		t.Errorf("days[13] = %s, want 2027-01-07", got)
	}
}

func TestYearRange(t *testing.T) {
	tests := []struct {
		name      string
		today     time.Time
		offset    int
		wantStart string
		wantEnd   string
	}{
		{"mid year", time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), 1, "2025-07-01", "2025-07-14"},
		{"ten years back", time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), 10, "2016-07-01", "2016-07-14"},
		{"crosses new year", time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC), 1, "2025-12-25", "2026-01-07"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := YearRange(Horizon(tt.today), tt.offset)
			if got := start.Format("2006-01-02"); got != tt.wantStart {
				t.Errorf("start = %s, want %s", got, tt.wantStart)
			}
			if got := end.Format("2006-01-02"); got != tt.wantEnd {
				t.Errorf("end = %s, want %s", got, tt.wantEnd)
			}
		})
	}
}

func TestMonthDayKey(t *testing.T) {
	if got := MonthDayKey(time.Date(2019, 7, 4, 0, 0, 0, 0, time.UTC)); got != "07-04" {
		t.Errorf("MonthDayKey = %q, want 07-04", got)
	}
}

func TestAccumulator_Averages(t *testing.T) {
	acc := NewAccumulator()
	temps := []float64{60, 62, 64, 66, 68, 70, 72, 74, 76, 78}
	var sum float64
	for i, temp := range temps {
		sum += temp
		day := time.Date(2025-i, 7, 4, 0, 0, 0, 0, time.UTC)
		acc.Add(day, ptr(temp), ptr(0.1*float64(i)), ptr(5), ptr(50))
	}
	if got := acc.Samples("07-04"); got != 10 {
		t.Fatalf("Samples(07-04) = %d, want 10", got)
	}

	horizon := []time.Time{
		time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 5, 0, 0, 0, 0, time.UTC),
	}
	avgs := acc.Averages(horizon)
	if len(avgs) != 2 {
		t.Fatalf("len(avgs) = %d, want 2", len(avgs))
	}

	got := avgs[0]
	if !got.Date.Equal(horizon[0]) {
		t.Errorf("Date = %v, want %v", got.Date, horizon[0])
	}
	if got.HistAvgTemp == nil || math.Abs(*got.HistAvgTemp-sum/10) > 1e-9 {
		t.Errorf("HistAvgTemp = %v, want %v", got.HistAvgTemp, sum/10)
	}
	if got.HistAvgRain == nil || math.Abs(*got.HistAvgRain-0.45) > 1e-9 {
		t.Errorf("HistAvgRain = %v, want 0.45", got.HistAvgRain)
	}
	if got.HistAvgWind == nil || *got.HistAvgWind != 5 {
		t.Errorf("HistAvgWind = %v, want 5", got.HistAvgWind)
	}
	if got.HistAvgHumidity == nil || *got.HistAvgHumidity != 50 {
		t.Errorf("HistAvgHumidity = %v, want 50", got.HistAvgHumidity)
	}

	missing := avgs[1]
	if missing.HistAvgTemp != nil || missing.HistAvgRain != nil || missing.HistAvgWind != nil || missing.HistAvgHumidity != nil {
		t.Errorf("expected all nil averages for a key with no samples, got %+v", missing)
	}
}

func TestAccumulator_SkipsNullValues(t *testing.T) {
	acc := NewAccumulator()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	acc.Add(day, ptr(50), nil, ptr(10), nil)
	acc.Add(day.AddDate(-1, 0, 0), ptr(60), nil, nil, nil)

	avgs := acc.Averages([]time.Time{time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)})
	got := avgs[0]
	if got.HistAvgTemp == nil || *got.HistAvgTemp != 55 {
		t.Errorf("HistAvgTemp = %v, want 55", got.HistAvgTemp)
	}
	if got.HistAvgWind == nil || *got.HistAvgWind != 10 {
		t.Errorf("HistAvgWind = %v, want 10 (one sample)", got.HistAvgWind)
	}
	if got.HistAvgRain != nil {
		t.Errorf("HistAvgRain = %v, want nil", *got.HistAvgRain)
	}
	if got.HistAvgHumidity != nil {
		t.Errorf("HistAvgHumidity = %v, want nil", *got.HistAvgHumidity)
	}
}

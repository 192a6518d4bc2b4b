package openmeteo

import (
	"encoding/json"
	"fmt"
	"time"
)

// DailyResponse is the flat per-variable shape returned by the forecast and
// archive endpoints.
type DailyResponse struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Timezone         string  `json:"timezone"`
	UTCOffsetSeconds int64   `json:"utc_offset_seconds"`
	Daily            Series  `json:"daily"`
}

// Series holds the shared time axis and one value array per variable.
// Time entries are local calendar days as YYYY-MM-DD. Values may be null in
// the payload; those decode to nil.
type Series struct {
	Time   []string
	Values map[string][]*float64
}

func (s *Series) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	timeRaw, ok := raw["time"]
	if !ok {
		return fmt.Errorf("daily: missing time axis")
	}
	if err := json.Unmarshal(timeRaw, &s.Time); err != nil {
		return fmt.Errorf("daily.time: %w", err)
	}

	s.Values = make(map[string][]*float64, len(raw)-1)
	for name, v := range raw {
		if name == "time" {
			continue
		}
		var values []*float64
		if err := json.Unmarshal(v, &values); err != nil {
			return fmt.Errorf("daily.%s: %w", name, err)
		}
		s.Values[name] = values
	}
	return nil
}

// Days parses the time axis into the location's calendar days, each returned
// as midnight UTC. The dates are taken as written so a daylight saving change
// inside the range cannot shift them.
func (r *DailyResponse) Days() ([]time.Time, error) {
	days := make([]time.Time, len(r.Daily.Time))
	for i, s := range r.Daily.Time {
		d, err := time.Parse(dateFormat, s)
		if err != nil {
			return nil, fmt.Errorf("daily.time[%d]: %w", i, err)
		}
		days[i] = d
	}
	return days, nil
}

// Variable returns the values for name. It fails if the variable is missing
// or does not cover every point on the time axis.
func (r *DailyResponse) Variable(name string) ([]*float64, error) {
	values, ok := r.Daily.Values[name]
	if !ok {
		return nil, fmt.Errorf("missing daily variable %s", name)
	}
	if len(values) < len(r.Daily.Time) {
		return nil, fmt.Errorf("short response: %s has %d values for %d days", name, len(values), len(r.Daily.Time))
	}
	return values, nil
}

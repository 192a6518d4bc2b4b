package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/lox/picnicweather/internal/models"
)

var validate = validator.New()

// errBadRequest marks client errors for writeError.
var errBadRequest = errors.New("bad request")

type coordQuery struct {
	Lat *float64 `validate:"required_with=Lon,omitempty,gte=-90,lte=90"`
	Lon *float64 `validate:"required_with=Lat,omitempty,gte=-180,lte=180"`
}

type dateQuery struct {
	Date string `validate:"required,datetime=2006-01-02"`
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func parseFloatParam(values url.Values, name string) (*float64, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, badRequest("%s must be a number", name)
	}
	return &v, nil
}

// parseCoordinate reads lat and lon from values. ok is false when neither is
// given; both must be present together and in range.
func parseCoordinate(values url.Values) (c models.Coordinate, ok bool, err error) {
	var q coordQuery
	if q.Lat, err = parseFloatParam(values, "lat"); err != nil {
		return c, false, err
	}
	if q.Lon, err = parseFloatParam(values, "lon"); err != nil {
		return c, false, err
	}
	if err := validate.Struct(q); err != nil {
		return c, false, validationError(err)
	}
	if q.Lat == nil {
		return c, false, nil
	}
	return models.Coordinate{Latitude: *q.Lat, Longitude: *q.Lon}.Rounded(2), true, nil
}

func parseDate(values url.Values) (time.Time, error) {
	q := dateQuery{Date: strings.TrimSpace(values.Get("date"))}
	if err := validate.Struct(q); err != nil {
		return time.Time{}, validationError(err)
	}
	return time.Parse("2006-01-02", q.Date)
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return badRequest("%v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required", "required_with":
			msgs = append(msgs, field+" is required")
		case "datetime":
			msgs = append(msgs, field+" must be YYYY-MM-DD")
		default:
			msgs = append(msgs, fmt.Sprintf("%s out of range (%s=%s)", field, fe.Tag(), fe.Param()))
		}
	}
	return badRequest("%s", strings.Join(msgs, ", "))
}

// coordinateFor returns the query coordinate or the planner's current one.
func (s *Server) coordinateFor(r *http.Request) (models.Coordinate, error) {
	c, ok, err := parseCoordinate(r.URL.Query())
	if err != nil {
		return c, err
	}
	if !ok {
		return s.Planner.Coordinate(), nil
	}
	return c, nil
}

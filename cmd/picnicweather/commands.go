package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/lox/picnicweather/internal/api"
	"github.com/lox/picnicweather/internal/forecast"
	"github.com/lox/picnicweather/internal/ingest"
	"github.com/lox/picnicweather/internal/location"
	"github.com/lox/picnicweather/internal/models"
)

var stdout io.Writer = os.Stdout

type ServeCmd struct {
	Port            string        `help:"HTTP server port." default:"8080" env:"PORT"`
	RefreshInterval time.Duration `name:"refresh-interval" help:"How often the current location is refreshed." default:"30m" env:"PICNIC_REFRESH_INTERVAL"`
	NoPoll          bool          `name:"no-poll" help:"Disable background refresh."`
}

func (c *ServeCmd) Run(ctx context.Context, g *Globals) error {
	a, err := newApp(ctx, &g.Config)
	if err != nil {
		return err
	}
	defer a.Close()

	p := a.planner()
	server := api.NewServer(api.Deps{
		Planner:    p,
		Forecast:   a.forecast,
		Historical: a.historical,
		Store:      a.store,
		Geocoder:   a.client,
	}, c.Port, a.loc)

	if !c.NoPoll {
		scheduler := ingest.NewScheduler(a.store, p, c.RefreshInterval)
		go func() {
			if err := scheduler.Run(ctx); err != nil {
				log.Printf("scheduler: %v", err)
			}
		}()
	} else {
		log.Println("polling disabled (--no-poll)")
	}

	log.Printf("starting server on :%s", c.Port)
	return server.Run(ctx)
}

// LocationFlags pick the coordinate for one-shot commands. Without any of
// them the configured default is used.
type LocationFlags struct {
	Lat  *float64 `help:"Latitude."`
	Lon  *float64 `help:"Longitude."`
	City string   `help:"City name to geocode."`
	Auto bool     `help:"Locate by IP address."`
	JSON bool     `name:"json" help:"Print JSON instead of a table."`
}

func (l *LocationFlags) coordinate(ctx context.Context, g *Globals, a *app) (models.Coordinate, error) {
	if err := l.validate(); err != nil {
		return models.Coordinate{}, err
	}
	switch {
	case l.Lat != nil:
		return staticCoordinate(ctx, *l.Lat, *l.Lon)
	case l.City != "":
		return location.Resolve(ctx, location.NewCitySource(a.client, l.City))
	case l.Auto:
		return location.Resolve(ctx, a.ipSource())
	default:
		return g.Config.DefaultCoordinate().Rounded(2), nil
	}
}

func (l *LocationFlags) validate() error {
	set := 0
	if l.Lat != nil || l.Lon != nil {
		if l.Lat == nil || l.Lon == nil {
			return errors.New("--lat and --lon must be given together")
		}
		set++
	}
	if l.City != "" {
		set++
	}
	if l.Auto {
		set++
	}
	if set > 1 {
		return errors.New("use only one of --lat/--lon, --city or --auto")
	}
	return nil
}

// staticCoordinate range-checks and rounds a coordinate given on the command line.
func staticCoordinate(ctx context.Context, lat, lon float64) (models.Coordinate, error) {
	return location.Resolve(ctx, location.Static{Latitude: lat, Longitude: lon})
}

type ForecastCmd struct {
	LocationFlags
}

func (c *ForecastCmd) Run(ctx context.Context, g *Globals) error {
	a, err := newApp(ctx, &g.Config)
	if err != nil {
		return err
	}
	defer a.Close()

	coord, err := c.coordinate(ctx, g, a)
	if err != nil {
		return err
	}
	days, err := a.forecast.Fetch(ctx, coord)
	if err != nil {
		return err
	}
	if c.JSON {
		return printJSON(map[string]any{"coordinate": coord, "days": days})
	}
	return printForecast(stdout, coord, days)
}

type HistoricalCmd struct {
	LocationFlags
}

func (c *HistoricalCmd) Run(ctx context.Context, g *Globals) error {
	a, err := newApp(ctx, &g.Config)
	if err != nil {
		return err
	}
	defer a.Close()

	coord, err := c.coordinate(ctx, g, a)
	if err != nil {
		return err
	}
	avgs, err := a.historical.Fetch(ctx, coord)
	if err != nil {
		return err
	}
	if c.JSON {
		return printJSON(map[string]any{"coordinate": coord, "days": avgs})
	}
	return printHistorical(stdout, coord, avgs)
}

type DayCmd struct {
	LocationFlags
	Date string `required:"" help:"Forecast day as YYYY-MM-DD."`
}

func (c *DayCmd) Run(ctx context.Context, g *Globals) error {
	date, err := time.Parse("2006-01-02", c.Date)
	if err != nil {
		return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", c.Date)
	}

	a, err := newApp(ctx, &g.Config)
	if err != nil {
		return err
	}
	defer a.Close()

	coord, err := c.coordinate(ctx, g, a)
	if err != nil {
		return err
	}
	days, err := a.forecast.Fetch(ctx, coord)
	if err != nil {
		return err
	}
	day, ok := forecast.FindDay(days, date)
	if !ok {
		return fmt.Errorf("no forecast for %s at %s", c.Date, coord)
	}

	history, err := a.historical.Fetch(ctx, coord)
	if err != nil {
		var fe *ingest.FetchError
		if !errors.As(err, &fe) {
			return err
		}
		log.Printf("historical averages unavailable: %v", err)
	}

	detail := forecast.MergeDay(day, history)
	if c.JSON {
		return printJSON(map[string]any{"coordinate": coord, "day": detail})
	}
	return printDay(stdout, coord, detail)
}

type ClassifyCmd struct {
	Temp       float64 `arg:"" help:"Mean temperature in °F."`
	RainChance float64 `arg:"" name:"rain-chance" help:"Rain probability, 0-100."`
}

func (c *ClassifyCmd) Run() error {
	fmt.Fprintln(stdout, forecast.Classify(c.Temp, c.RainChance))
	return nil
}

type LocateCmd struct {
	City string `help:"City name to geocode instead of using the IP address."`
}

func (c *LocateCmd) Run(ctx context.Context, g *Globals) error {
	a, err := newApp(ctx, &g.Config)
	if err != nil {
		return err
	}
	defer a.Close()

	var source location.Source = a.ipSource()
	if c.City != "" {
		source = location.NewCitySource(a.client, c.City)
	}
	coord, err := location.Resolve(ctx, source)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, coord)
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printForecast(w io.Writer, coord models.Coordinate, days []models.DailyForecast) error {
	fmt.Fprintf(w, "Forecast for %s\n\n", coord)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTEMP °F\tRAIN %\tRAIN IN\tHUMIDITY %\tWIND MPH\tCONDITION")
	for _, d := range days {
		fmt.Fprintf(tw, "%s\t%.1f\t%.0f\t%.2f\t%.0f\t%.1f\t%s\n",
			forecast.DisplayKey(d.Date), d.Temp, d.RainChance, d.RainInch, d.HumidityPercent, d.WindSpeed, d.Condition)
	}
	return tw.Flush()
}

func printHistorical(w io.Writer, coord models.Coordinate, avgs []models.DailyHistoricalAverage) error {
	fmt.Fprintf(w, "Ten-year averages for %s\n\n", coord)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTEMP °F\tRAIN IN\tHUMIDITY %\tWIND MPH")
	for _, a := range avgs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			forecast.DisplayKey(a.Date), optional(a.HistAvgTemp, 1), optional(a.HistAvgRain, 2),
			optional(a.HistAvgHumidity, 0), optional(a.HistAvgWind, 1))
	}
	return tw.Flush()
}

func printDay(w io.Writer, coord models.Coordinate, d models.DayDetail) error {
	fmt.Fprintf(w, "%s at %s: %s (%s)\n\n", d.Date.Format("Monday, January 2"), coord, d.Condition,
		forecast.GetPalette(d.Condition).Label)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tFORECAST\t10-YEAR AVERAGE")
	fmt.Fprintf(tw, "Temperature °F\t%.1f\t%s\n", d.Temp, optional(d.HistAvgTemp, 1))
	fmt.Fprintf(tw, "Rain in\t%.2f\t%s\n", d.RainInch, optional(d.HistAvgRain, 2))
	fmt.Fprintf(tw, "Rain chance %%\t%.0f\t\n", d.RainChance)
	fmt.Fprintf(tw, "Humidity %%\t%.0f\t%s\n", d.HumidityPercent, optional(d.HistAvgHumidity, 0))
	fmt.Fprintf(tw, "Wind mph\t%.1f\t%s\n", d.WindSpeed, optional(d.HistAvgWind, 1))
	return tw.Flush()
}

func optional(v *float64, places int) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', places, 64)
}

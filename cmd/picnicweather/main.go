package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/lox/picnicweather/internal/config"
)

type Globals struct {
	Config config.Config `embed:""`
}

type CLI struct {
	Globals

	Serve      ServeCmd      `cmd:"" default:"1" help:"Run the web server and background refresh."`
	Forecast   ForecastCmd   `cmd:"" help:"Print the 14-day picnic forecast."`
	Historical HistoricalCmd `cmd:"" help:"Print ten-year averages for the next 14 days."`
	Day        DayCmd        `cmd:"" help:"Print one forecast day merged with its averages."`
	Classify   ClassifyCmd   `cmd:"" help:"Classify a temperature and rain chance."`
	Locate     LocateCmd     `cmd:"" help:"Resolve a coordinate from IP or a city name."`
}

// parserOptions are shared by main and the tests. Hyphen-prefixed values
// let western and southern coordinates be written as --lon -79.99.
func parserOptions() []kong.Option {
	return []kong.Option{
		kong.Name("picnicweather"),
		kong.Description("Picnic weather: a 14-day green/yellow/red forecast with ten-year averages."),
		kong.WithHyphenPrefixedParameters(true),
	}
}

func main() {
	config.LoadEnv(os.Args[1:])

	var cli CLI
	kctx := kong.Parse(&cli, append(parserOptions(), kong.UsageOnError())...)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	kctx.BindTo(ctx, (*context.Context)(nil))

	err := kctx.Run(&cli.Globals)
	kctx.FatalIfErrorf(err)
}

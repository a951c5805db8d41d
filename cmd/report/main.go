// Command report prints the text report, or the chart series as JSON, for a
// forecast document on disk.
//
// Usage:
//
//	go run ./cmd/report -file internal/domain/testdata/forecast_5days_mixed.json
//	go run ./cmd/report -file forecast.json -series -realfeel
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/forecast-report-service/internal/adapter/file"
	"github.com/couchcryptid/forecast-report-service/internal/config"
	"github.com/couchcryptid/forecast-report-service/internal/domain"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "report:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	fixMaxDefault, err := config.FixMaxTemperature()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	path := fs.String("file", "", "path to an AccuWeather daily forecast JSON document")
	series := fs.Bool("series", false, "print chart series JSON instead of the text report")
	realFeel := fs.Bool("realfeel", false, "with -series, print the RealFeel series")
	fixMax := fs.Bool("fix-max", fixMaxDefault, "render per-day maximums in their own slot")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		fs.Usage()
		return errors.New("missing required flag: -file")
	}

	forecasts, err := file.Load(*path)
	if err != nil {
		return err
	}

	if *series {
		return writeSeries(out, forecasts, *realFeel)
	}

	mode := domain.MaxTemperatureLegacy
	if *fixMax {
		mode = domain.MaxTemperatureCorrected
	}
	report, err := domain.ProcessWeather(forecasts, mode)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, report)
	return err
}

func writeSeries(out io.Writer, forecasts []domain.DailyForecast, realFeel bool) error {
	var (
		v   any
		err error
	)
	if realFeel {
		v, err = domain.BuildRealFeelSeries(forecasts)
	} else {
		v, err = domain.BuildTemperatureSeries(forecasts)
	}
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

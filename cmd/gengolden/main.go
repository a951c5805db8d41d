// Command gengolden regenerates the golden report files for a forecast
// document fixture, one per max-temperature display mode.
//
// Usage:
//
//	go run ./cmd/gengolden -in internal/domain/testdata/forecast_5days_mixed.json
//
// writes forecast_5days_mixed_legacy.txt and forecast_5days_mixed_corrected.txt
// next to the input unless -out-dir is given.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/forecast-report-service/internal/adapter/file"
	"github.com/couchcryptid/forecast-report-service/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "forecast document fixture")
	outDir := flag.String("out-dir", "", "directory for golden files (defaults to the fixture's directory)")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -in")
	}
	if *outDir == "" {
		*outDir = filepath.Dir(*in)
	}

	forecasts, err := file.Load(*in)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(*in), filepath.Ext(*in))
	for _, mode := range []domain.MaxTemperatureMode{domain.MaxTemperatureLegacy, domain.MaxTemperatureCorrected} {
		report, err := domain.ProcessWeather(forecasts, mode)
		if err != nil {
			return fmt.Errorf("%s mode: %w", mode, err)
		}
		out := filepath.Join(*outDir, fmt.Sprintf("%s_%s.txt", base, mode))
		if err := os.WriteFile(out, []byte(report), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		log.Printf("wrote %s (%d days)", out, len(forecasts))
	}
	return nil
}

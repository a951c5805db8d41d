// Package file reads forecast documents from disk.
package file

import (
	"fmt"
	"os"

	"github.com/couchcryptid/forecast-report-service/internal/domain"
)

// Load reads and parses the forecast document at path.
func Load(path string) ([]domain.DailyForecast, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read forecast file: %w", err)
	}
	forecasts, err := domain.ParseForecastDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return forecasts, nil
}

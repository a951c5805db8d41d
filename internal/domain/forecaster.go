package domain

import "context"

// Forecaster fetches daily forecasts for an AccuWeather location key.
// An empty result with a nil error means the provider had no forecast.
type Forecaster interface {
	DailyForecasts(ctx context.Context, locationKey string) ([]DailyForecast, error)
}

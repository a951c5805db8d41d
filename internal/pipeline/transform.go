package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/forecast-report-service/internal/domain"
)

// ReportTransformer implements Transformer by parsing a forecast document
// and rendering its text report.
type ReportTransformer struct {
	mode   domain.MaxTemperatureMode
	logger *slog.Logger
}

// NewTransformer creates a ReportTransformer rendering maximums in the given mode.
func NewTransformer(mode domain.MaxTemperatureMode, logger *slog.Logger) *ReportTransformer {
	return &ReportTransformer{
		mode:   mode,
		logger: logger,
	}
}

func (t *ReportTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	forecasts, err := domain.ParseForecastDocument(raw.Value)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	report, err := domain.BuildReport(forecasts, t.mode)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	t.logger.Debug("report rendered",
		"key", string(raw.Key),
		"day_count", report.Overview.DayCount,
		"mode", t.mode.String(),
	)
	return domain.NewOutputEvent(raw.Key, report), nil
}

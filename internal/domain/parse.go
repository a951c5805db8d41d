package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON key names rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseForecastDocument decodes a document with a top-level DailyForecasts
// array. A record lacking a required key fails the whole document with a
// *MissingFieldError; no partial results are returned.
func ParseForecastDocument(data []byte) ([]DailyForecast, error) {
	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", errDecode, err)
	}
	if doc.DailyForecasts == nil {
		return nil, &MissingFieldError{Index: -1, Field: "DailyForecasts"}
	}

	forecasts := make([]DailyForecast, 0, len(doc.DailyForecasts))
	for i := range doc.DailyForecasts {
		f, err := parseDailyForecast(i, &doc.DailyForecasts[i])
		if err != nil {
			return nil, err
		}
		forecasts = append(forecasts, f)
	}
	return forecasts, nil
}

func parseDailyForecast(index int, raw *rawDailyForecast) (DailyForecast, error) {
	if err := validate.Struct(raw); err != nil {
		return DailyForecast{}, missingFieldFromValidation(index, err)
	}

	minimum, err := parseReading(index, "Temperature.Minimum", raw.Temperature.Minimum)
	if err != nil {
		return DailyForecast{}, err
	}
	maximum, err := parseReading(index, "Temperature.Maximum", raw.Temperature.Maximum)
	if err != nil {
		return DailyForecast{}, err
	}

	f := DailyForecast{
		Date:        *raw.Date,
		Temperature: TemperatureRange{Minimum: minimum, Maximum: maximum},
		Day:         HalfDay{LongPhrase: *raw.Day.LongPhrase, RainProbability: *raw.Day.RainProbability},
		Night:       HalfDay{LongPhrase: *raw.Night.LongPhrase, RainProbability: *raw.Night.RainProbability},
	}

	if raw.RealFeel != nil {
		r, err := parseReading(index, "RealFeelTemperature.Minimum", raw.RealFeel.Minimum)
		if err != nil {
			return DailyForecast{}, err
		}
		f.RealFeel = &r
	}
	if raw.RealFeelShade != nil {
		r, err := parseReading(index, "RealFeelTemperatureShade.Minimum", raw.RealFeelShade.Minimum)
		if err != nil {
			return DailyForecast{}, err
		}
		f.RealFeelShade = &r
	}
	return f, nil
}

func parseReading(index int, path string, raw *rawReading) (Reading, error) {
	v, err := raw.Value.Float64()
	if err != nil {
		return Reading{}, fmt.Errorf("daily forecast %d: %s.Value: %w", index, path, err)
	}
	return Reading{
		Value:   v,
		Literal: raw.Value.String(),
		Unit:    Unit(*raw.Unit),
	}, nil
}

// missingFieldFromValidation maps the first validation failure to a
// MissingFieldError. Only "required" tags are declared, so every failure is
// an absent key.
func missingFieldFromValidation(index int, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("daily forecast %d: %w", index, err)
	}
	// Namespace is "<StructName>.<json path>"; drop the struct name.
	_, field, _ := strings.Cut(verrs[0].Namespace(), ".")
	return &MissingFieldError{Index: index, Field: field}
}

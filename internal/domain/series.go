package domain

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// TemperatureSeries holds chart-ready daily minimum and maximum temperatures
// in Celsius, one entry per distinct DayKey.
type TemperatureSeries struct {
	Days    []string  `json:"days"`
	Minimum []float64 `json:"minimum"`
	Maximum []float64 `json:"maximum"`
}

// RealFeelSeries compares the forecast minimum with the RealFeel minimums.
type RealFeelSeries struct {
	Days          []string  `json:"days"`
	Minimum       []float64 `json:"minimum"`
	RealFeel      []float64 `json:"real_feel"`
	RealFeelShade []float64 `json:"real_feel_shade"`
}

// BuildTemperatureSeries converts every value from Fahrenheit. A repeated
// DayKey keeps its first position and takes the later values.
func BuildTemperatureSeries(forecasts []DailyForecast) (TemperatureSeries, error) {
	if len(forecasts) == 0 {
		return TemperatureSeries{}, ErrEmptyInput
	}

	days := orderedmap.New[string, [2]float64]()
	for i := range forecasts {
		f := &forecasts[i]
		day, err := ConvertISODateToHuman(f.Date)
		if err != nil {
			return TemperatureSeries{}, fmt.Errorf("daily forecast %d: %w", i, err)
		}
		days.Set(day, [2]float64{
			ConvertFahrenheitToCelsius(f.Temperature.Minimum.Value),
			ConvertFahrenheitToCelsius(f.Temperature.Maximum.Value),
		})
	}

	s := TemperatureSeries{
		Days:    make([]string, 0, days.Len()),
		Minimum: make([]float64, 0, days.Len()),
		Maximum: make([]float64, 0, days.Len()),
	}
	for pair := days.Oldest(); pair != nil; pair = pair.Next() {
		s.Days = append(s.Days, pair.Key)
		s.Minimum = append(s.Minimum, pair.Value[0])
		s.Maximum = append(s.Maximum, pair.Value[1])
	}
	return s, nil
}

// BuildRealFeelSeries requires RealFeelTemperature and RealFeelTemperatureShade
// on every record.
func BuildRealFeelSeries(forecasts []DailyForecast) (RealFeelSeries, error) {
	if len(forecasts) == 0 {
		return RealFeelSeries{}, ErrEmptyInput
	}

	days := orderedmap.New[string, [3]float64]()
	for i := range forecasts {
		f := &forecasts[i]
		if f.RealFeel == nil {
			return RealFeelSeries{}, &MissingFieldError{Index: i, Field: "RealFeelTemperature.Minimum"}
		}
		if f.RealFeelShade == nil {
			return RealFeelSeries{}, &MissingFieldError{Index: i, Field: "RealFeelTemperatureShade.Minimum"}
		}
		day, err := ConvertISODateToHuman(f.Date)
		if err != nil {
			return RealFeelSeries{}, fmt.Errorf("daily forecast %d: %w", i, err)
		}
		days.Set(day, [3]float64{
			ConvertFahrenheitToCelsius(f.Temperature.Minimum.Value),
			ConvertFahrenheitToCelsius(f.RealFeel.Value),
			ConvertFahrenheitToCelsius(f.RealFeelShade.Value),
		})
	}

	s := RealFeelSeries{}
	for pair := days.Oldest(); pair != nil; pair = pair.Next() {
		s.Days = append(s.Days, pair.Key)
		s.Minimum = append(s.Minimum, pair.Value[0])
		s.RealFeel = append(s.RealFeel, pair.Value[1])
		s.RealFeelShade = append(s.RealFeelShade, pair.Value[2])
	}
	return s, nil
}

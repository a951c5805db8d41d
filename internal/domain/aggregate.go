package domain

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// dayValues maps DayKey to a Celsius value. Set on an existing key replaces
// the value but keeps the key's original position.
type dayValues = orderedmap.OrderedMap[string, float64]

// Overview summarises a multi-day forecast.
type Overview struct {
	DayCount       int
	LowestTemp     float64
	LowestTempDay  string
	HighestTemp    float64
	HighestTempDay string
	AverageLow     float64
	AverageHigh    float64
}

// FindAverages computes the overview for forecasts. Every temperature is
// converted from Fahrenheit regardless of its unit tag.
func FindAverages(forecasts []DailyForecast) (Overview, error) {
	if len(forecasts) == 0 {
		return Overview{}, ErrEmptyInput
	}

	minTemps := orderedmap.New[string, float64]()
	maxTemps := orderedmap.New[string, float64]()

	for i := range forecasts {
		f := &forecasts[i]
		day, err := ConvertISODateToHuman(f.Date)
		if err != nil {
			return Overview{}, fmt.Errorf("daily forecast %d: %w", i, err)
		}
		minTemps.Set(day, ConvertFahrenheitToCelsius(f.Temperature.Minimum.Value))
		maxTemps.Set(day, ConvertFahrenheitToCelsius(f.Temperature.Maximum.Value))
	}

	lowDay, low := firstExtreme(minTemps, func(candidate, best float64) bool { return candidate < best })
	highDay, high := firstExtreme(maxTemps, func(candidate, best float64) bool { return candidate > best })

	return Overview{
		DayCount:       len(forecasts),
		LowestTemp:     low,
		LowestTempDay:  lowDay,
		HighestTemp:    high,
		HighestTempDay: highDay,
		AverageLow:     mean(minTemps),
		AverageHigh:    mean(maxTemps),
	}, nil
}

// firstExtreme returns the earliest-inserted key holding the extreme value.
// Ties keep the earlier key because better must be strict.
func firstExtreme(m *dayValues, better func(candidate, best float64) bool) (string, float64) {
	pair := m.Oldest()
	day, best := pair.Key, pair.Value
	for pair = pair.Next(); pair != nil; pair = pair.Next() {
		if better(pair.Value, best) {
			day, best = pair.Key, pair.Value
		}
	}
	return day, best
}

// mean divides by the number of distinct days, not the number of records.
func mean(m *dayValues) float64 {
	var sum float64
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		sum += pair.Value
	}
	return roundTenths(sum / float64(m.Len()))
}

// String renders the overview block, including its trailing blank line.
func (o Overview) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d Day Overview\n", o.DayCount)
	fmt.Fprintf(&b, "    The lowest temperature will be %s, and will occur on %s.\n", FormatTemperature(o.LowestTemp), o.LowestTempDay)
	fmt.Fprintf(&b, "    The highest temperature will be %s, and will occur on %s.\n", FormatTemperature(o.HighestTemp), o.HighestTempDay)
	fmt.Fprintf(&b, "    The average low this week is %s.\n", FormatTemperature(o.AverageLow))
	fmt.Fprintf(&b, "    The average high this week is %s.\n", FormatTemperature(o.AverageHigh))
	b.WriteString("\n")
	return b.String()
}

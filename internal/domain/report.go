package domain

import (
	"fmt"
	"math/big"
	"strings"
)

// MaxTemperatureMode selects how per-day blocks render the maximum temperature.
type MaxTemperatureMode int

const (
	// MaxTemperatureLegacy reproduces the historical display defect: a
	// Fahrenheit maximum is converted into the minimum slot and the maximum
	// line shows the unconverted value.
	MaxTemperatureLegacy MaxTemperatureMode = iota

	// MaxTemperatureCorrected converts the maximum into its own slot.
	MaxTemperatureCorrected
)

func (m MaxTemperatureMode) String() string {
	switch m {
	case MaxTemperatureLegacy:
		return "legacy"
	case MaxTemperatureCorrected:
		return "corrected"
	default:
		return fmt.Sprintf("MaxTemperatureMode(%d)", int(m))
	}
}

// Report is a rendered multi-day report.
type Report struct {
	Overview Overview
	Text     string
}

// ProcessWeather renders the overview followed by one block per forecast in
// input order.
func ProcessWeather(forecasts []DailyForecast, mode MaxTemperatureMode) (string, error) {
	r, err := BuildReport(forecasts, mode)
	if err != nil {
		return "", err
	}
	return r.Text, nil
}

// BuildReport is ProcessWeather that also returns the overview it rendered.
func BuildReport(forecasts []DailyForecast, mode MaxTemperatureMode) (Report, error) {
	overview, err := FindAverages(forecasts)
	if err != nil {
		return Report{}, err
	}

	var b strings.Builder
	b.WriteString(overview.String())
	for i := range forecasts {
		block, err := formatDay(&forecasts[i], mode)
		if err != nil {
			return Report{}, fmt.Errorf("daily forecast %d: %w", i, err)
		}
		b.WriteString(block)
	}
	return Report{Overview: overview, Text: b.String()}, nil
}

func formatDay(f *DailyForecast, mode MaxTemperatureMode) (string, error) {
	day, err := ConvertISODateToHuman(f.Date)
	if err != nil {
		return "", err
	}

	minText, maxText := displayTemperatures(f.Temperature, mode)

	var b strings.Builder
	fmt.Fprintf(&b, "-------- %s --------\n", day)
	fmt.Fprintf(&b, "Minimum Temperature: %s%s\n", minText, DegreeCelsius)
	fmt.Fprintf(&b, "Maximum Temperature: %s%s\n", maxText, DegreeCelsius)
	fmt.Fprintf(&b, "Daytime: %s\n", f.Day.LongPhrase)
	fmt.Fprintf(&b, "    Chance of rain: %d%%\n", f.Day.RainProbability)
	fmt.Fprintf(&b, "Nighttime: %s\n", f.Night.LongPhrase)
	fmt.Fprintf(&b, "    Chance of rain: %d%%\n", f.Night.RainProbability)
	b.WriteString("\n")
	return b.String(), nil
}

// displayTemperatures returns the minimum and maximum as they appear in a
// day block, without the degree suffix.
func displayTemperatures(t TemperatureRange, mode MaxTemperatureMode) (string, string) {
	minText := displayReading(t.Minimum)
	maxText := displayNumber(t.Maximum)

	if t.Maximum.IsFahrenheit() {
		converted := formatDecimal(ConvertFahrenheitToCelsius(t.Maximum.Value))
		if mode == MaxTemperatureCorrected {
			maxText = converted
		} else {
			minText = converted
		}
	}
	return minText, maxText
}

// displayReading converts Fahrenheit readings and shows anything else unconverted.
func displayReading(r Reading) string {
	if r.IsFahrenheit() {
		return formatDecimal(ConvertFahrenheitToCelsius(r.Value))
	}
	return displayNumber(r)
}

// displayNumber renders an unconverted reading by its decoded value: integer
// literals stay integers (so -0 shows as 0), anything with a fraction or
// exponent is shown as a decimal.
func displayNumber(r Reading) string {
	if !strings.ContainsAny(r.Literal, ".eE") {
		if n, ok := new(big.Int).SetString(r.Literal, 10); ok {
			return n.String()
		}
	}
	return formatDecimal(r.Value)
}

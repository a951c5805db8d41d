package domain

import (
	"strconv"
	"strings"
	"time"
)

// DegreeCelsius is appended to every displayed temperature.
const DegreeCelsius = "°C"

// dayKeyLayout renders e.g. "Friday 19 June 2020".
const dayKeyLayout = "Monday 02 January 2006"

// isoLayouts are tried in order. The first accepts "Z" and "+01:00", the
// second "Z" and "+0100".
var isoLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05Z0700",
}

// FormatTemperature renders a Celsius value with the degree suffix. No
// conversion is performed.
func FormatTemperature(celsius float64) string {
	return formatDecimal(celsius) + DegreeCelsius
}

// ConvertFahrenheitToCelsius converts and rounds once to one decimal place.
func ConvertFahrenheitToCelsius(fahrenheit float64) float64 {
	return roundTenths((fahrenheit - 32) * 5 / 9)
}

// ConvertISODateToHuman turns an offset-qualified ISO-8601 timestamp into a
// DayKey, keeping the timestamp's own offset.
func ConvertISODateToHuman(iso string) (string, error) {
	var firstErr error
	for _, layout := range isoLayouts {
		t, err := time.Parse(layout, iso)
		if err == nil {
			return t.Format(dayKeyLayout), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return "", &ParseError{Input: iso, Err: firstErr}
}

// roundTenths rounds to one decimal place by correctly rounded decimal
// formatting, i.e. half-to-even on the exact binary value.
func roundTenths(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	return r
}

// formatDecimal prints the shortest decimal that round-trips, always with a
// fractional part: 100 -> "100.0", 21.65 -> "21.65".
func formatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

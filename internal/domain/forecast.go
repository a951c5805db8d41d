package domain

import "github.com/goccy/go-json"

// Unit is the temperature unit tag carried by a reading.
type Unit string

const (
	UnitFahrenheit Unit = "F"
	UnitCelsius    Unit = "C"
)

// Reading is a single temperature value with its unit tag. Literal keeps the
// number exactly as it appeared in the source document.
type Reading struct {
	Value   float64
	Literal string
	Unit    Unit
}

// IsFahrenheit reports whether the reading needs converting before display.
func (r Reading) IsFahrenheit() bool {
	return r.Unit == UnitFahrenheit
}

// TemperatureRange is a day's minimum and maximum.
type TemperatureRange struct {
	Minimum Reading
	Maximum Reading
}

// HalfDay describes the daytime or nighttime part of a forecast.
type HalfDay struct {
	LongPhrase      string
	RainProbability int
}

// DailyForecast is one element of a document's DailyForecasts array.
type DailyForecast struct {
	Date        string
	Temperature TemperatureRange
	Day         HalfDay
	Night       HalfDay

	// Optional RealFeel minimums; only the chart series builder reads them.
	RealFeel      *Reading
	RealFeelShade *Reading
}

// Raw decoding types. Every field is a pointer so absent keys can be told
// apart from zero values and reported as MissingFieldError.

type rawDocument struct {
	DailyForecasts []rawDailyForecast `json:"DailyForecasts"`
}

type rawReading struct {
	Value *json.Number `json:"Value" validate:"required"`
	Unit  *string      `json:"Unit" validate:"required"`
}

type rawTemperatureRange struct {
	Minimum *rawReading `json:"Minimum" validate:"required"`
	Maximum *rawReading `json:"Maximum" validate:"required"`
}

type rawHalfDay struct {
	LongPhrase      *string `json:"LongPhrase" validate:"required"`
	RainProbability *int    `json:"RainProbability" validate:"required"`
}

type rawRealFeelRange struct {
	Minimum *rawReading `json:"Minimum" validate:"required"`
}

type rawDailyForecast struct {
	Date          *string              `json:"Date" validate:"required"`
	Temperature   *rawTemperatureRange `json:"Temperature" validate:"required"`
	Day           *rawHalfDay          `json:"Day" validate:"required"`
	Night         *rawHalfDay          `json:"Night" validate:"required"`
	RealFeel      *rawRealFeelRange    `json:"RealFeelTemperature"`
	RealFeelShade *rawRealFeelRange    `json:"RealFeelTemperatureShade"`
}

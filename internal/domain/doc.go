// Package domain models AccuWeather daily forecast documents and renders them
// into plain-text multi-day reports.
//
// # Data Source
//
// Forecast documents follow the AccuWeather "5 Day of Daily Forecasts" shape
// (https://developer.accuweather.com/accuweather-forecast-api/apis). Only the
// DailyForecasts array is consumed; Headline and any other keys are ignored.
//
// # Forecast Conventions
//
// Dates:
//
//	ISO-8601 with a UTC offset, e.g. "2020-06-19T07:00:00+08:00".
//	The DayKey is rendered in the timestamp's own offset, never converted to UTC:
//	"2020-06-19T07:00:00+08:00"  →  "Friday 19 June 2020".
//	Offset-less timestamps are rejected.
//
// Temperatures:
//
//	{"Value": 54, "Unit": "F", "UnitType": 18}
//	Unit "F" is Fahrenheit; any other tag is read as Celsius.
//	Converted values are rounded once, to one decimal place, ties to even on
//	the exact binary value: 54°F → 12.2°C.
//	Unconverted values are displayed as their decoded number: integer
//	literals as integers, anything with a fraction or exponent as a decimal.
//
// Precipitation:
//
//	Day.RainProbability / Night.RainProbability are integer percentages.
//
// # Report Layout
//
// A report is an overview block followed by one block per record in input
// order. The overview aggregates over DayKeys: when two records share a DayKey
// the later record's temperatures replace the earlier ones but keep the
// earlier position, so averages are taken over distinct days while the
// "<n> Day Overview" heading still counts every record.
//
// Averaging converts every temperature from Fahrenheit without consulting the
// unit tag; per-day blocks do consult it. See [MaxTemperatureMode] for the
// historical maximum-temperature display defect.
package domain

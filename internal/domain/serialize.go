package domain

import (
	"strconv"
	"time"
)

// NewOutputEvent wraps a rendered report for the sink, keyed like its source
// document.
func NewOutputEvent(key []byte, report Report) OutputEvent {
	return OutputEvent{
		Key:   key,
		Value: []byte(report.Text),
		Headers: map[string]string{
			HeaderContentType: ReportContentType,
			HeaderDayCount:    strconv.Itoa(report.Overview.DayCount),
			HeaderGeneratedAt: Now().Format(time.RFC3339),
		},
	}
}

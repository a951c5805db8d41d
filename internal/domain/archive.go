package domain

import (
	"errors"
	"time"
)

// ErrReportNotFound is returned when no report is archived under a key.
var ErrReportNotFound = errors.New("report not found")

// ArchivedReport is one stored report.
type ArchivedReport struct {
	Key         string
	GeneratedAt time.Time
	DayCount    int
	Body        string
}

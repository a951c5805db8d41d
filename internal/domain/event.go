package domain

import (
	"context"
	"time"
)

// RawEvent represents an unprocessed forecast document read from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is a rendered report destined for the sink.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Header keys attached to every OutputEvent.
const (
	HeaderContentType = "content_type"
	HeaderDayCount    = "day_count"
	HeaderGeneratedAt = "generated_at"
)

// ReportContentType is the media type of rendered reports.
const ReportContentType = "text/plain; charset=utf-8"

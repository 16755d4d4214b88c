package domain

import "time"

// UsageLog records what one successful job cost. PPM output is usually larger
// than its source, so both sides are kept rather than a saving.
type UsageLog struct {
	UserID          string
	JobID           string
	PixelsProcessed int64
	SourceBytes     int64
	OutputBytes     int64
	ComputeTimeMS   int64
	CreatedAt       time.Time
}

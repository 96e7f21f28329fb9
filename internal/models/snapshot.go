package models

import "time"

// Snapshot is one balance sample per account per fixed time bucket.
// The recorder truncates "now" to the bucket start, so re-running a
// tick overwrites instead of duplicating.
type Snapshot struct {
	Account     string    `json:"account"`
	Balance     int64     `json:"balance"`
	BucketStart time.Time `json:"bucket_start"`
}

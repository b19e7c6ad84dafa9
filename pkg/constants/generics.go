package constants

import "time"

// RFC 3339 date-time format string.
// Use this format for all date-time serialization and communication with external systems.
const RFC3339DateTimeFormat = "2006-01-02T15:04:05Z07:00"

const (
	DefaultRequestTimeout    = 30 * time.Second
	DefaultStoreQueryTimeout = 5 * time.Second
)

// Admin listing and reporting
const (
	DefaultListLimit  = 100
	DefaultListOffset = 0
	TopCitiesLimit    = 10
)

const (
	AdminKeyHeader       = "x-admin-key"
	ExportFilenamePrefix = "trustlink-waitlist-"
)

package specs

import (
	"encoding/json"
	"time"
)

// InputRecordSpec represents one raw record as it appears in an input source.
//
// Input sources are the boundary between upstream event producers and the
// moving average calculation. Records carry more fields than the calculation
// needs (translation IDs, language pairs, client names); only the timestamp
// and duration are read, everything else is ignored.
type InputRecordSpec struct {
	// Time the delivery happened, as a string.
	//
	// Expected format is "YYYY-MM-DD HH:MM:SS" optionally followed by fractional
	// seconds, e.g. "2018-12-26 18:11:08.509654". Interpreted as UTC since the
	// source format carries no zone.
	Timestamp string `json:"timestamp"`

	// Measured delivery duration.
	//
	// A JSON number (or a string holding one). Kept as json.Number so the exact
	// decimal text reaches the aggregator without a float64 round trip.
	// Must not be negative.
	Duration json.Number `json:"duration"`
}

// DeliveryEventSpec represents a single timestamped duration measurement.
//
// Delivery events are the input of the moving average calculation. They must
// be supplied in non-decreasing OccurredAt order; the calculation never sorts.
type DeliveryEventSpec struct {
	// Business timestamp of the delivery.
	//
	// Any sub-minute precision is kept on the event but ignored when the event
	// is assigned to per-minute windows.
	OccurredAt time.Time `json:"occurredAt"`

	// Duration of the delivery as a decimal string.
	//
	// Stored as a string to preserve precision. The unit is whatever the
	// producer used (seconds for translation deliveries); the calculation
	// only averages it. Examples: "20", "31", "54.25".
	Duration string `json:"duration"`
}

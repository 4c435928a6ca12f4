package specs

import "encoding/json"

// MovingAverage computes a per-minute moving average of delivery durations.
//
// Process:
//  1. Truncate the first event's time to the minute (start of the grid)
//  2. Truncate the last event's time to the minute and add one minute (end of the grid)
//  3. For every minute M on the grid, average the durations of events with
//     M - WindowSize <= OccurredAt <= M
//  4. Emit one AveragePointSpec per minute; minutes with no events report 0
//
// Returns an empty slice for empty input (not an error).
// Returns error if the config or an event is invalid.
//
// This is the contract-level interface using only primitive types.
// See internal.MovingAverage for the reference implementation.
type MovingAverage func(events []DeliveryEventSpec, config MovingAverageConfigSpec) ([]AveragePointSpec, error)

// MovingAverageConfigSpec defines the trailing window used for every minute.
type MovingAverageConfigSpec struct {
	// Width of the trailing window in whole minutes.
	//
	// Must be greater than 0. A window of 10 averages every event that happened
	// during the ten minutes up to and including the current minute.
	WindowSize int `json:"window_size"`
}

// AveragePointSpec represents the moving average for a single minute.
//
// This is the output record format consumed by sinks. Field names follow the
// format downstream consumers already parse.
type AveragePointSpec struct {
	// The minute this average belongs to, formatted "YYYY-MM-DD HH:MM:SS".
	//
	// Seconds are always "00". No fractional seconds, no zone.
	Date string `json:"date"`

	// Arithmetic mean of the in-window durations.
	//
	// Rendered as a plain decimal JSON number. When no event falls in the
	// window the value is exactly 0: it is a real value, never null.
	AverageDeliveryTime json.Number `json:"average_delivery_time"`
}

// DateLayout is the Go time layout of AveragePointSpec.Date.
const DateLayout = "2006-01-02 15:04:05"

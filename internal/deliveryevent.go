package internal

import (
	"fmt"
	"time"

	"github.com/chrisconley/movingavg/specs"
)

type DeliveryEvent struct {
	OccurredAt DeliveryEventTime
	Duration   DeliveryDuration
}

func NewDeliveryEvent(spec specs.DeliveryEventSpec) (DeliveryEvent, error) {
	occurredAt, err := NewDeliveryEventTime(spec.OccurredAt)
	if err != nil {
		return DeliveryEvent{}, fmt.Errorf("invalid occurred at: %w", err)
	}

	duration, err := NewDeliveryDuration(spec.Duration)
	if err != nil {
		return DeliveryEvent{}, fmt.Errorf("invalid duration: %w", err)
	}

	return DeliveryEvent{
		OccurredAt: occurredAt,
		Duration:   duration,
	}, nil
}

type DeliveryEventTime struct {
	value time.Time
}

func NewDeliveryEventTime(value time.Time) (DeliveryEventTime, error) {
	if value.IsZero() {
		return DeliveryEventTime{}, fmt.Errorf("occurred at is required")
	}
	return DeliveryEventTime{value: value}, nil
}

func (t DeliveryEventTime) ToTime() time.Time {
	return t.value
}

// Minute returns the time with seconds and sub-second precision zeroed.
func (t DeliveryEventTime) Minute() time.Time {
	return truncateToMinute(t.value)
}

type DeliveryDuration struct {
	value Decimal
}

func NewDeliveryDuration(value string) (DeliveryDuration, error) {
	if value == "" {
		return DeliveryDuration{}, fmt.Errorf("duration is required")
	}

	d, err := NewDecimal(value)
	if err != nil {
		return DeliveryDuration{}, err
	}

	if d.IsNegative() {
		return DeliveryDuration{}, fmt.Errorf("duration cannot be negative: %s", value)
	}

	return DeliveryDuration{value: d}, nil
}

func (d DeliveryDuration) ToDecimal() Decimal {
	return d.value
}

// truncateToMinute zeroes seconds and nanoseconds in the value's own location.
func truncateToMinute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

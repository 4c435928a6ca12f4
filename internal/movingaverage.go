package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chrisconley/movingavg/specs"
)

// ErrInvalidWindowSize is returned for window sizes below one minute.
var ErrInvalidWindowSize = errors.New("the window size must be an integer greater than 0")

// MovingAverage implements specs.MovingAverage.
// Converts specs to domain objects, transforms, and converts back to specs.
func MovingAverage(
	eventSpecs []specs.DeliveryEventSpec,
	configSpec specs.MovingAverageConfigSpec,
) ([]specs.AveragePointSpec, error) {
	config, err := NewMovingAverageConfig(configSpec)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	events := make([]DeliveryEvent, len(eventSpecs))
	for i, spec := range eventSpecs {
		event, err := NewDeliveryEvent(spec)
		if err != nil {
			return nil, fmt.Errorf("invalid event at index %d: %w", i, err)
		}
		events[i] = event
	}

	points := movingAverage(events, config.Window())

	pointSpecs := make([]specs.AveragePointSpec, len(points))
	for i, point := range points {
		pointSpecs[i] = point.ToSpec()
	}
	return pointSpecs, nil
}

// movingAverage computes one AveragePoint per minute from the first event's
// minute up to one minute past the last event's minute.
//
// Events must be sorted by OccurredAt. The window for minute M is the closed
// interval [M - window, M]. Events older than a window's start are skipped
// for good since later windows only start later; events inside the window
// are summed again for every minute they stay in it.
func movingAverage(events []DeliveryEvent, window WindowSize) []AveragePoint {
	if len(events) == 0 {
		return []AveragePoint{}
	}

	firstMinute := events[0].OccurredAt.Minute()
	lastMinute := events[len(events)-1].OccurredAt.Minute().Add(time.Minute)
	numMinutes := int(lastMinute.Sub(firstMinute)/time.Minute) + 1

	points := make([]AveragePoint, 0, numMinutes)
	firstNonExpired := 0

	for minute := 0; minute < numMinutes; minute++ {
		currentTime := firstMinute.Add(time.Duration(minute) * time.Minute)
		windowStart := currentTime.Add(-window.ToDuration())

		total := NewDecimalFromInt64(0)
		count := 0

		for _, event := range events[firstNonExpired:] {
			occurredAt := event.OccurredAt.ToTime()
			if occurredAt.After(currentTime) {
				break
			}
			if occurredAt.Before(windowStart) {
				firstNonExpired++
				continue
			}
			total = total.Add(event.Duration.ToDecimal())
			count++
		}

		average := NewDecimalFromInt64(0)
		if count > 0 {
			average = total.Div(NewDecimalFromInt64(int64(count)))
		}

		points = append(points, AveragePoint{
			Minute:     currentTime,
			Average:    average,
			EventCount: count,
		})
	}

	return points
}

type MovingAverageConfig struct {
	window WindowSize
}

func NewMovingAverageConfig(spec specs.MovingAverageConfigSpec) (MovingAverageConfig, error) {
	window, err := NewWindowSize(spec.WindowSize)
	if err != nil {
		return MovingAverageConfig{}, fmt.Errorf("invalid window size: %w", err)
	}
	return MovingAverageConfig{window: window}, nil
}

func (c MovingAverageConfig) Window() WindowSize {
	return c.window
}

// WindowSize is the width of the trailing window in whole minutes.
type WindowSize struct {
	minutes int
}

func NewWindowSize(minutes int) (WindowSize, error) {
	if minutes <= 0 {
		return WindowSize{}, fmt.Errorf("%w, got %d", ErrInvalidWindowSize, minutes)
	}
	return WindowSize{minutes: minutes}, nil
}

func (w WindowSize) ToInt() int {
	return w.minutes
}

func (w WindowSize) ToDuration() time.Duration {
	return time.Duration(w.minutes) * time.Minute
}

// AveragePoint is the moving average for a single minute.
// EventCount is the number of events that were in the window.
type AveragePoint struct {
	Minute     time.Time
	Average    Decimal
	EventCount int
}

func (p AveragePoint) ToSpec() specs.AveragePointSpec {
	return specs.AveragePointSpec{
		Date:                p.Minute.Format(specs.DateLayout),
		AverageDeliveryTime: json.Number(p.Average.String()),
	}
}

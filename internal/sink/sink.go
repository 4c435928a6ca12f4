// Package sink delivers computed moving averages to their destination.
package sink

import (
	"context"
	"fmt"

	"github.com/chrisconley/movingavg/specs"
)

// Batch is the full result of one run.
type Batch struct {
	RunID      string
	Source     string
	WindowSize int
	Points     []specs.AveragePointSpec
}

// Sink writes a batch and returns where it can be found.
type Sink interface {
	Write(ctx context.Context, batch Batch) (string, error)
}

// Multi writes to every sink in order and reports the first sink's location.
type Multi []Sink

func (m Multi) Write(ctx context.Context, batch Batch) (string, error) {
	if len(m) == 0 {
		return "", fmt.Errorf("no sinks configured")
	}

	var location string
	for i, s := range m {
		loc, err := s.Write(ctx, batch)
		if err != nil {
			return "", fmt.Errorf("sink %d: %w", i, err)
		}
		if i == 0 {
			location = loc
		}
	}
	return location, nil
}

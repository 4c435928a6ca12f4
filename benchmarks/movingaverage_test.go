package benchmarks

import (
	"encoding/json"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/chrisconley/movingavg/internal"
	"github.com/chrisconley/movingavg/specs"
)

// spreadEvents returns n events, one every interval, starting 2024-01-01.
func spreadEvents(n int, interval time.Duration) []specs.DeliveryEventSpec {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	events := make([]specs.DeliveryEventSpec, n)
	for i := range events {
		events[i] = specs.DeliveryEventSpec{
			OccurredAt: start.Add(time.Duration(i) * interval),
			Duration:   strconv.Itoa(10 + i%50),
		}
	}
	return events
}

// Benchmark sparse input: one event every 7 minutes, most minutes are empty
func BenchmarkMovingAverage_Sparse(b *testing.B) {
	for _, window := range []int{1, 10, 60} {
		b.Run(fmt.Sprintf("window=%d", window), func(b *testing.B) {
			events := spreadEvents(1000, 7*time.Minute)
			config := specs.MovingAverageConfigSpec{WindowSize: window}

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if _, err := internal.MovingAverage(events, config); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// Benchmark dense input: ten events per minute. Each event is summed once per
// minute it stays in the window, so cost grows with the window size.
func BenchmarkMovingAverage_Dense(b *testing.B) {
	for _, window := range []int{1, 10, 60} {
		b.Run(fmt.Sprintf("window=%d", window), func(b *testing.B) {
			events := spreadEvents(10000, 6*time.Second)
			config := specs.MovingAverageConfigSpec{WindowSize: window}

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if _, err := internal.MovingAverage(events, config); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// Benchmark JSON serialization of a day of per-minute results
func BenchmarkAveragePoints_JSONMarshalIndent(b *testing.B) {
	points, err := internal.MovingAverage(spreadEvents(1440, time.Minute), specs.MovingAverageConfigSpec{WindowSize: 10})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := json.MarshalIndent(points, "", "  "); err != nil {
			b.Fatal(err)
		}
	}
}

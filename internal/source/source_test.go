package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("reads a JSON array in file order", func(t *testing.T) {
		// Act
		events, err := Load(context.Background(), "testdata/unbabel_events.json", "")

		// Assert
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, time.Date(2018, 12, 26, 18, 11, 8, 509654000, time.UTC), events[0].OccurredAt)
		assert.Equal(t, "20", events[0].Duration)
		assert.Equal(t, "31", events[1].Duration)
		assert.Equal(t, "54", events[2].Duration)
	})

	t.Run("reads newline-delimited JSON", func(t *testing.T) {
		fromArray, err := Load(context.Background(), "testdata/unbabel_events.json", "")
		require.NoError(t, err)

		fromLines, err := Load(context.Background(), "testdata/unbabel_events.ndjson", "")

		require.NoError(t, err)
		assert.Equal(t, fromArray, fromLines)
	})

	t.Run("reads a single event", func(t *testing.T) {
		events, err := Load(context.Background(), "testdata/single_event.json", "")

		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, time.Date(2022, 1, 1, 12, 0, 0, 0, time.UTC), events[0].OccurredAt)
		assert.Equal(t, "10", events[0].Duration)
	})

	t.Run("with missing file returns ErrSourceNotFound", func(t *testing.T) {
		_, err := Load(context.Background(), "nonexistent_file.json", "")

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSourceNotFound)
		assert.Contains(t, err.Error(), "the file 'nonexistent_file.json' does not exist")
	})

	t.Run("with directory returns ErrSourceNotFound", func(t *testing.T) {
		_, err := Load(context.Background(), t.TempDir(), "")

		assert.ErrorIs(t, err, ErrSourceNotFound)
	})

	t.Run("with empty array returns ErrEmptySource", func(t *testing.T) {
		_, err := Load(context.Background(), "testdata/empty_events.json", "")

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptySource)
		assert.Contains(t, err.Error(), "the JSON file is empty")
	})

	t.Run("with zero-byte file returns ErrEmptySource", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "blank.json")
		require.NoError(t, os.WriteFile(path, nil, 0o644))

		_, err := Load(context.Background(), path, "")

		assert.ErrorIs(t, err, ErrEmptySource)
	})
}

func TestDecode(t *testing.T) {
	decode := func(input string) error {
		_, err := Decode(context.Background(), strings.NewReader(input), "")
		return err
	}

	t.Run("accepts timestamps without fractional seconds", func(t *testing.T) {
		events, err := Decode(context.Background(),
			strings.NewReader(`[{"timestamp": "2022-01-01 12:00:05", "duration": 1.25}]`), "")

		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, time.Date(2022, 1, 1, 12, 0, 5, 0, time.UTC), events[0].OccurredAt)
		assert.Equal(t, "1.25", events[0].Duration)
	})

	t.Run("accepts numeric strings as duration", func(t *testing.T) {
		events, err := Decode(context.Background(),
			strings.NewReader(`{"timestamp": "2022-01-01 12:00:05", "duration": "7"}`), "")

		require.NoError(t, err)
		assert.Equal(t, "7", events[0].Duration)
	})

	t.Run("honors a custom layout", func(t *testing.T) {
		events, err := Decode(context.Background(),
			strings.NewReader(`[{"timestamp": "2022-01-01T12:00:05Z", "duration": 3}]`), time.RFC3339)

		require.NoError(t, err)
		assert.Equal(t, time.Date(2022, 1, 1, 12, 0, 5, 0, time.UTC), events[0].OccurredAt)
	})

	t.Run("rejects malformed timestamps", func(t *testing.T) {
		err := decode(`[{"timestamp": "26/12/2018 18:11", "duration": 20}]`)

		assert.ErrorIs(t, err, ErrMalformedRecord)
		assert.Contains(t, err.Error(), "index 0")
		assert.Contains(t, err.Error(), "invalid timestamp")
	})

	t.Run("rejects missing and negative durations", func(t *testing.T) {
		missing := decode(`[{"timestamp": "2022-01-01 12:00:00"}]`)
		negative := decode(`[{"timestamp": "2022-01-01 12:00:00", "duration": 1}, {"timestamp": "2022-01-01 12:01:00", "duration": -4}]`)

		assert.ErrorIs(t, missing, ErrMalformedRecord)
		assert.ErrorIs(t, negative, ErrMalformedRecord)
		assert.Contains(t, negative.Error(), "index 1")
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		assert.ErrorIs(t, decode(`[{"timestamp": `), ErrMalformedRecord)
		assert.ErrorIs(t, decode(`{"timestamp": "2022-01-01 12:00:00", "duration": 1} nope`), ErrMalformedRecord)
	})

	t.Run("rejects out-of-order records", func(t *testing.T) {
		err := decode(`[
			{"timestamp": "2022-01-01 12:05:00", "duration": 1},
			{"timestamp": "2022-01-01 12:04:59", "duration": 2}
		]`)

		assert.ErrorIs(t, err, ErrUnorderedSource)
	})

	t.Run("keeps records with equal timestamps", func(t *testing.T) {
		events, err := Decode(context.Background(), strings.NewReader(`[
			{"timestamp": "2022-01-01 12:05:00", "duration": 1},
			{"timestamp": "2022-01-01 12:05:00", "duration": 2}
		]`), "")

		require.NoError(t, err)
		assert.Len(t, events, 2)
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Decode(ctx, strings.NewReader(`[{"timestamp": "2022-01-01 12:00:00", "duration": 1}]`), "")

		assert.ErrorIs(t, err, context.Canceled)
	})
}

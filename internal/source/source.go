// Package source reads delivery events from JSON files.
//
// Two layouts are accepted: a JSON array of records, and newline-delimited
// JSON with one record per line. Records are returned in file order.
package source

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/chrisconley/movingavg/internal"
	"github.com/chrisconley/movingavg/specs"
)

// DefaultTimestampLayout matches "2018-12-26 18:11:08.509654". Fractional
// seconds are optional when parsing.
const DefaultTimestampLayout = "2006-01-02 15:04:05"

var (
	ErrSourceNotFound  = errors.New("source not found")
	ErrEmptySource     = errors.New("the JSON file is empty")
	ErrMalformedRecord = errors.New("malformed record")
	ErrUnorderedSource = errors.New("records are not in chronological order")
)

// Exists returns ErrSourceNotFound unless path names a readable regular file.
func Exists(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("the file '%s' does not exist: %w", path, ErrSourceNotFound)
	}
	if err != nil {
		return fmt.Errorf("cannot stat '%s': %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("'%s' is a directory: %w", path, ErrSourceNotFound)
	}
	return nil
}

// Load reads every record of the file at path. An empty layout means
// DefaultTimestampLayout.
func Load(ctx context.Context, path, layout string) ([]specs.DeliveryEventSpec, error) {
	if err := Exists(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open '%s': %w", path, err)
	}
	defer f.Close()

	events, err := Decode(ctx, f, layout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return events, nil
}

// Decode reads records from r until EOF.
func Decode(ctx context.Context, r io.Reader, layout string) ([]specs.DeliveryEventSpec, error) {
	if layout == "" {
		layout = DefaultTimestampLayout
	}

	br := bufio.NewReader(r)
	isArray, err := startsWithArray(br)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(br)
	if isArray {
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
		}
	}

	var events []specs.DeliveryEventSpec
	var previous time.Time

	for index := 0; ; index++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if isArray && !dec.More() {
			break
		}

		var record specs.InputRecordSpec
		err := dec.Decode(&record)
		if !isArray && errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w at index %d: %w", ErrMalformedRecord, index, err)
		}

		event, err := toDeliveryEvent(record, layout)
		if err != nil {
			return nil, fmt.Errorf("%w at index %d: %w", ErrMalformedRecord, index, err)
		}

		if event.OccurredAt.Before(previous) {
			return nil, fmt.Errorf("%w: record %d at %s precedes %s",
				ErrUnorderedSource, index, record.Timestamp, previous.Format(layout))
		}
		previous = event.OccurredAt

		events = append(events, event)
	}

	if isArray {
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("%w: unterminated array: %w", ErrMalformedRecord, err)
		}
	}

	if len(events) == 0 {
		return nil, ErrEmptySource
	}
	return events, nil
}

func toDeliveryEvent(record specs.InputRecordSpec, layout string) (specs.DeliveryEventSpec, error) {
	occurredAt, err := time.ParseInLocation(layout, record.Timestamp, time.UTC)
	if err != nil {
		return specs.DeliveryEventSpec{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	duration, err := internal.NewDeliveryDuration(record.Duration.String())
	if err != nil {
		return specs.DeliveryEventSpec{}, fmt.Errorf("invalid duration: %w", err)
	}

	return specs.DeliveryEventSpec{
		OccurredAt: occurredAt,
		Duration:   duration.ToDecimal().String(),
	}, nil
}

// startsWithArray reports whether the first non-space byte is '['.
// io.EOF before any content is not an error; the caller sees zero records.
func startsWithArray(br *bufio.Reader) (bool, error) {
	for {
		b, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return false, err
		}
		return b == '[', nil
	}
}

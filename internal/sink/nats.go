package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	HeaderRunID      = "Run-Id"
	HeaderWindowSize = "Window-Size"
	HeaderComplete   = "Complete"

	DefaultFlushTimeout = 5 * time.Second
)

// Publisher is the subset of *nats.Conn the NATS sink needs.
type Publisher interface {
	PublishMsg(msg *nats.Msg) error
	FlushTimeout(timeout time.Duration) error
}

// NATSSink publishes one message per point on Subject, followed by an empty
// message carrying the Complete header.
type NATSSink struct {
	conn         Publisher
	subject      string
	flushTimeout time.Duration
}

func NewNATSSink(conn Publisher, subject string) *NATSSink {
	return &NATSSink{conn: conn, subject: subject, flushTimeout: DefaultFlushTimeout}
}

// DialNATS connects to the server at url.
func DialNATS(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Name("movingavg"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}
	return nc, nil
}

func (s *NATSSink) Write(ctx context.Context, batch Batch) (string, error) {
	windowSize := strconv.Itoa(batch.WindowSize)

	for i, point := range batch.Points {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		data, err := json.Marshal(point)
		if err != nil {
			return "", fmt.Errorf("encode point %d: %w", i, err)
		}

		msg := s.newMsg(batch.RunID, windowSize)
		msg.Data = data
		if err := s.conn.PublishMsg(msg); err != nil {
			return "", fmt.Errorf("publish point %d: %w", i, err)
		}
	}

	done := s.newMsg(batch.RunID, windowSize)
	done.Header.Set(HeaderComplete, "true")
	if err := s.conn.PublishMsg(done); err != nil {
		return "", fmt.Errorf("publish completion: %w", err)
	}

	if err := s.conn.FlushTimeout(s.flushTimeout); err != nil {
		return "", fmt.Errorf("flush: %w", err)
	}
	return "nats://" + s.subject, nil
}

func (s *NATSSink) newMsg(runID, windowSize string) *nats.Msg {
	msg := nats.NewMsg(s.subject)
	msg.Header.Set(HeaderRunID, runID)
	msg.Header.Set(HeaderWindowSize, windowSize)
	return msg
}

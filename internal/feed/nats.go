package feed

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/taskflow/internal/config"
	ferrors "git.home.luguber.info/inful/taskflow/internal/foundation/errors"
)

// NATSSink publishes feed events to a JetStream stream. The stream is created
// on connect when it does not exist yet, sized for a bounded history of list
// changes.
type NATSSink struct {
	conn *nats.Conn
	js   jetstream.JetStream
}

const streamName = "TASKFLOW"

func NewNATSSink(cfg config.FeedConfig) (*NATSSink, error) {
	conn, err := nats.Connect(cfg.NATSURL, nats.Name("taskflow-feed"))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "connect to NATS").
			WithContext("url", cfg.NATSURL).
			Build()
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "create JetStream context").Build()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{cfg.Subject},
		MaxAge:   7 * 24 * time.Hour,
		MaxBytes: 64 * 1024 * 1024,
	})
	if err != nil {
		conn.Close()
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "ensure feed stream").
			WithContext("stream", streamName).
			Build()
	}

	return &NATSSink{conn: conn, js: js}, nil
}

func (s *NATSSink) Publish(ctx context.Context, subject string, data []byte) error {
	_, err := s.js.Publish(ctx, subject, data)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "publish feed event").
			WithContext("subject", subject).
			Build()
	}
	return nil
}

func (s *NATSSink) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	return nil
}

package notifypublisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// StreamName is the JetStream stream notifications are persisted on so the
// push gateway can replay what it missed.
const StreamName = "PITWALL_NOTIFICATIONS"

// Publisher is a watermill publisher backed by NATS JetStream.
type Publisher struct {
	message.Publisher

	natsConn *nc.Conn
	js       jetstream.JetStream
	logger   *slog.Logger
}

// NewNATSPublisher connects to NATS, ensures the notification stream carries
// subject, and returns a publisher for it.
func NewNATSPublisher(ctx context.Context, natsURL, subject string, logger *slog.Logger) (*Publisher, error) {
	natsConn, err := nc.Connect(natsURL, nc.RetryOnFailedConnect(true))
	if err != nil {
		logger.Error("Failed to connect to NATS", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(natsConn)
	if err != nil {
		natsConn.Close()
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	p := &Publisher{natsConn: natsConn, js: js, logger: logger}
	if err := p.ensureStream(ctx, subject); err != nil {
		natsConn.Close()
		return nil, err
	}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:       natsURL,
			Marshaler: &nats.NATSMarshaler{},
			NatsOptions: []nc.Option{
				nc.RetryOnFailedConnect(true),
			},
			JetStream: nats.JetStreamConfig{
				AutoProvision: false,
				TrackMsgId:    true,
			},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		natsConn.Close()
		logger.Error("Failed to create Watermill publisher", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}
	p.Publisher = publisher

	return p, nil
}

func (p *Publisher) ensureStream(ctx context.Context, subject string) error {
	stream, err := p.js.Stream(ctx, StreamName)
	if errors.Is(err, jetstream.ErrStreamNotFound) {
		if _, err := p.js.CreateStream(ctx, jetstream.StreamConfig{
			Name:     StreamName,
			Subjects: []string{subject},
		}); err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
		p.logger.Info("Stream created", "stream_name", StreamName, "subject", subject)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check if stream exists: %w", err)
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stream info: %w", err)
	}
	if slices.Contains(info.Config.Subjects, subject) {
		return nil
	}

	info.Config.Subjects = append(info.Config.Subjects, subject)
	if _, err := p.js.UpdateStream(ctx, info.Config); err != nil {
		return fmt.Errorf("failed to update stream with new subject: %w", err)
	}
	p.logger.Info("Stream updated with new subject", "stream_name", StreamName, "subject", subject)
	return nil
}

// Close closes the watermill publisher and the NATS connection.
func (p *Publisher) Close() error {
	var err error
	if p.Publisher != nil {
		err = p.Publisher.Close()
	}
	if p.natsConn != nil {
		p.natsConn.Close()
	}
	return err
}

//go:build integration

package containers

import (
	"context"
	"fmt"
	"log"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/wait"
)

const natsImage = "nats:2.10-alpine"

// SetupNatsContainer starts a JetStream-enabled NATS server for the
// notification publisher and returns its client URL.
func SetupNatsContainer(ctx context.Context) (*nats.NATSContainer, string, error) {
	natsContainer, err := nats.Run(ctx,
		natsImage,
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForLog("Server is ready"),
				wait.ForListeningPort("4222/tcp"),
			).WithDeadline(45*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start NATS container: %w", err)
	}

	natsURL, err := natsContainer.ConnectionString(ctx)
	if err != nil {
		if terminateErr := natsContainer.Terminate(ctx); terminateErr != nil {
			log.Printf("Failed to terminate NATS container: %v", terminateErr)
		}
		return nil, "", fmt.Errorf("failed to get NATS connection string: %w", err)
	}

	log.Printf("NATS container ready at %s", natsURL)
	return natsContainer, natsURL, nil
}

// NotificationReader drains a notification stream from its first message,
// the way a push gateway would.
type NotificationReader struct {
	conn     *natsgo.Conn
	consumer jetstream.Consumer
}

// NewNotificationReader attaches an ephemeral, explicitly acked consumer to
// stream. The stream must already exist; the publisher creates it.
func NewNotificationReader(ctx context.Context, natsURL, stream string) (*NotificationReader, error) {
	conn, err := natsgo.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	consumer, err := js.CreateOrUpdateConsumer(ctx, stream, jetstream.ConsumerConfig{
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create consumer on %s: %w", stream, err)
	}
	return &NotificationReader{conn: conn, consumer: consumer}, nil
}

// Fetch acks and returns the payloads of up to n messages, waiting at most
// maxWait for them.
func (r *NotificationReader) Fetch(n int, maxWait time.Duration) ([][]byte, error) {
	batch, err := r.consumer.Fetch(n, jetstream.FetchMaxWait(maxWait))
	if err != nil {
		return nil, err
	}
	var payloads [][]byte
	for msg := range batch.Messages() {
		payloads = append(payloads, msg.Data())
		if err := msg.Ack(); err != nil {
			return payloads, err
		}
	}
	return payloads, batch.Error()
}

func (r *NotificationReader) Close() {
	r.conn.Close()
}

//go:build integration

package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/lokah-app/lokah/internal/config"
)

func setupNATSContainer(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()

	natsContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "nats:2-alpine",
			ExposedPorts: []string{"4222/tcp"},
			Cmd:          []string{"--jetstream", "--store_dir", "/data"},
			WaitingFor:   wait.ForLog("Server is ready").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = natsContainer.Terminate(ctx) })

	host, _ := natsContainer.Host(ctx)
	port, _ := natsContainer.MappedPort(ctx, "4222")

	client, err := NewClient(ctx, config.NATSConfig{
		URL: fmt.Sprintf("nats://%s:%s", host, port.Port()),
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client
}

// ensureConsumer creates a durable reader for one event subject, starting
// from the beginning of the stream.
func ensureConsumer(t *testing.T, client *Client, name, subject string) jetstream.Consumer {
	t.Helper()
	consumer, err := client.JetStream().CreateOrUpdateConsumer(context.Background(), StreamEvents, jetstream.ConsumerConfig{
		Durable:       name,
		FilterSubject: subject,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	require.NoError(t, err)
	return consumer
}

// fetchOne reads and acks the next event on consumer.
func fetchOne[T any](t *testing.T, consumer jetstream.Consumer) T {
	t.Helper()
	msgs, err := consumer.Fetch(1, jetstream.FetchMaxWait(5*time.Second))
	require.NoError(t, err)

	var event T
	received := 0
	for m := range msgs.Messages() {
		require.NoError(t, json.Unmarshal(m.Data(), &event))
		_ = m.Ack()
		received++
	}
	require.Equal(t, 1, received)
	return event
}

func TestPublishAlternateSelfCreated(t *testing.T) {
	client := setupNATSContainer(t)
	ctx := context.Background()

	publisher := NewPublisher(client.JetStream())
	err := publisher.PublishAlternateSelfCreated(ctx, AlternateSelfCreated{
		AlternateSelfID: "0b8f6a1e-1111-4000-8000-000000000001",
		UserID:          "0b8f6a1e-2222-4000-8000-000000000002",
		Axis:            "career",
		Structured:      true,
		Timestamp:       time.Now().UTC(),
	})
	require.NoError(t, err)

	consumer := ensureConsumer(t, client, "test-selves", SubjectAlternateSelfCreated)
	received := fetchOne[AlternateSelfCreated](t, consumer)

	assert.Equal(t, "career", received.Axis)
	assert.True(t, received.Structured)
	assert.True(t, client.Healthy())
}

func TestPublishReflectionGenerated(t *testing.T) {
	client := setupNATSContainer(t)
	ctx := context.Background()

	publisher := NewPublisher(client.JetStream())
	require.NoError(t, publisher.PublishReflectionGenerated(ctx, ReflectionGenerated{
		Axis:          "location",
		EmotionalTone: "hopeful",
		InsightCount:  3,
		Structured:    true,
		Timestamp:     time.Now().UTC(),
	}))

	consumer := ensureConsumer(t, client, "test-reflections", SubjectReflectionGenerated)
	received := fetchOne[ReflectionGenerated](t, consumer)

	assert.Equal(t, 3, received.InsightCount)
	assert.Equal(t, "hopeful", received.EmotionalTone)
}

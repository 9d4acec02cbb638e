package jobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/indrapalijama/alkitab-api-v3/internal/services"
)

func newTestTopic(t *testing.T, srv *pstest.Server) *pubsub.Topic {
	t.Helper()
	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, "test-project",
		option.WithEndpoint(srv.Addr),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	topic, err := client.CreateTopic(ctx, "alkitab-lookups")
	require.NoError(t, err)
	return topic
}

func TestPubSubLookupPublisherPublishesEvent(t *testing.T) {
	srv := pstest.NewServer()
	defer srv.Close()

	publisher, err := NewPubSubLookupPublisher(newTestTopic(t, srv))
	require.NoError(t, err)
	defer publisher.Stop()

	event := services.LookupEvent{
		ID:         "01JABCDEF",
		Kind:       services.LookupKindRead,
		Book:       "Kejadian",
		ShortCode:  "Kej",
		Chapter:    1,
		Version:    "tb",
		Verses:     31,
		OccurredAt: time.Date(2025, 5, 6, 9, 0, 0, 0, time.UTC),
	}

	id, err := publisher.PublishLookupEvent(context.Background(), event)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	messages := srv.Messages()
	require.Len(t, messages, 1)

	var payload services.LookupEvent
	require.NoError(t, json.Unmarshal(messages[0].Data, &payload))
	require.Equal(t, event, payload)
	require.Equal(t, map[string]string{
		"eventId": "01JABCDEF",
		"kind":    "read",
		"book":    "Kej",
		"version": "tb",
		"chapter": "1",
	}, messages[0].Attributes)
}

func TestPubSubLookupPublisherOmitsEmptyAttributes(t *testing.T) {
	srv := pstest.NewServer()
	defer srv.Close()

	publisher, err := NewPubSubLookupPublisher(newTestTopic(t, srv))
	require.NoError(t, err)
	defer publisher.Stop()

	_, err = publisher.PublishLookupEvent(context.Background(), services.LookupEvent{
		ID:   "01JFIND",
		Kind: services.LookupKindFind,
		Book: "Mazmur",
	})
	require.NoError(t, err)

	attrs := srv.Messages()[0].Attributes
	require.NotContains(t, attrs, "chapter")
	require.NotContains(t, attrs, "book")
	require.Equal(t, "find", attrs["kind"])
}

func TestNewPubSubLookupPublisherRequiresTopic(t *testing.T) {
	_, err := NewPubSubLookupPublisher(nil)
	require.Error(t, err)

	var nilPublisher *PubSubLookupPublisher
	_, err = nilPublisher.PublishLookupEvent(context.Background(), services.LookupEvent{})
	require.Error(t, err)
}

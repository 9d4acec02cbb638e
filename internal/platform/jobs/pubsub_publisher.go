package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/pubsub"

	"github.com/indrapalijama/alkitab-api-v3/internal/services"
)

// PubSubLookupPublisher publishes lookup events to a Pub/Sub topic.
type PubSubLookupPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubLookupPublisher constructs a publisher for topic.
func NewPubSubLookupPublisher(topic *pubsub.Topic) (*PubSubLookupPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub lookup publisher: topic is required")
	}
	return &PubSubLookupPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

// PublishLookupEvent sends event as JSON; kind, book and version are also
// copied to message attributes so subscriptions can filter on them.
func (p *PubSubLookupPublisher) PublishLookupEvent(ctx context.Context, event services.LookupEvent) (string, error) {
	if p == nil || p.topic == nil {
		return "", errors.New("pubsub lookup publisher: not initialised")
	}

	data, err := p.marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal lookup event: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "eventId", event.ID)
	setAttr(attrs, "kind", string(event.Kind))
	setAttr(attrs, "book", event.ShortCode)
	setAttr(attrs, "version", event.Version)
	if event.Chapter > 0 {
		attrs["chapter"] = strconv.Itoa(event.Chapter)
	}

	id, err := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	}).Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish lookup event: %w", err)
	}
	return id, nil
}

// Stop flushes pending messages and releases the topic's goroutines.
func (p *PubSubLookupPublisher) Stop() {
	if p != nil && p.topic != nil {
		p.topic.Stop()
	}
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}

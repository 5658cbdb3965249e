package pubsub

import (
	"context"
	"encoding/json"
	"log/slog"

	deliverycontext "dispatch/internal/delivery/context"
	"dispatch/internal/domain/service"

	"cloud.google.com/go/pubsub/v2"
	pubsubpb "cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/pkg/errors"
)

// googleTopicPublisher sends compliance events to a Cloud Pub/Sub topic
type googleTopicPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topic     string
	logger    *slog.Logger
}

// NewGooglePubSubPublisher connects to projectID and fails fast when topicID does not exist
func NewGooglePubSubPublisher(ctx context.Context, projectID, topicID string, logger *slog.Logger) (service.EventPublisher, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create pubsub client")
	}

	topic := "projects/" + projectID + "/topics/" + topicID
	if _, err := client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: topic}); err != nil {
		_ = client.Close()

		return nil, errors.Wrapf(err, "compliance topic %s is not reachable", topic)
	}

	return &googleTopicPublisher{
		client:    client,
		publisher: client.Publisher(topicID),
		topic:     topic,
		logger:    logger,
	}, nil
}

func (p *googleTopicPublisher) PublishComplianceEvent(ctx context.Context, event *service.ComplianceEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to encode compliance event")
	}

	logger := deliverycontext.GetLoggerOrDefault(ctx, p.logger)

	// Get blocks until the server acks or ctx ends
	serverID, err := p.publisher.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: eventAttributes(event),
	}).Get(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to publish compliance event %s", event.EventID)
	}

	logger.Debug("Compliance event published",
		slog.String("topic", p.topic),
		slog.String("event_id", event.EventID),
		slog.String("server_id", serverID),
		slog.Bool("eligible", event.Eligible),
	)

	return nil
}

// Close flushes pending messages before releasing the client
func (p *googleTopicPublisher) Close() error {
	p.publisher.Stop()

	return errors.WithStack(p.client.Close())
}

package push

import (
	"context"
	"fmt"

	fcmapi "google.golang.org/api/fcm/v1"
	"google.golang.org/api/option"

	"github.com/beeconnect/server/internal/config"
	"github.com/beeconnect/server/internal/domain/models"
)

// Client sends notifications to a topic through the FCM HTTP v1 API.
type Client struct {
	service *fcmapi.Service
	parent  string
	topic   string
}

// NewClient builds a Firebase Cloud Messaging client. Extra client options are
// appended after the configured credentials.
func NewClient(ctx context.Context, cfg config.PushConfig, opts ...option.ClientOption) (*Client, error) {
	clientOpts := []option.ClientOption{option.WithScopes(fcmapi.FirebaseMessagingScope)}
	if cfg.CredentialsPath != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsPath))
	}
	clientOpts = append(clientOpts, opts...)

	service, err := fcmapi.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fcm client: %w", err)
	}

	return &Client{
		service: service,
		parent:  "projects/" + cfg.ProjectID,
		topic:   cfg.Topic,
	}, nil
}

// Send delivers n to the configured topic with high Android priority.
func (c *Client) Send(ctx context.Context, n models.Notification) error {
	req := &fcmapi.SendMessageRequest{Message: Message(c.topic, n)}

	msg, err := c.service.Projects.Messages.Send(c.parent, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("send push notification to topic %s: %w", c.topic, err)
	}
	if msg == nil || msg.Name == "" {
		return fmt.Errorf("send push notification to topic %s: empty message name", c.topic)
	}
	return nil
}

// Message renders n as an FCM topic message.
func Message(topic string, n models.Notification) *fcmapi.Message {
	msg := &fcmapi.Message{
		Topic: topic,
		Notification: &fcmapi.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Android: &fcmapi.AndroidConfig{Priority: "HIGH"},
	}
	if len(n.Data) > 0 {
		msg.Data = n.Data
	}
	return msg
}

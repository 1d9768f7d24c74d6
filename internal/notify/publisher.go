// Package notify announces finished exports as CloudEvents.
package notify

import (
	"context"
	"fmt"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"

	"github.com/Lllllllleong/recordexport/internal/models"
)

// EventType is the CloudEvent type of a completion notification.
const EventType = "com.recordexport.export.completed"

// Publisher sends completion notifications to a CloudEvents sink over HTTP.
type Publisher struct {
	client cloudevents.Client
	source string
}

// NewPublisher creates a Publisher that delivers to target.
func NewPublisher(target, source string) (*Publisher, error) {
	if target == "" {
		return nil, fmt.Errorf("notification target must be provided")
	}
	client, err := cloudevents.NewClientHTTP(cloudevents.WithTarget(target))
	if err != nil {
		return nil, fmt.Errorf("failed to create CloudEvents client: %w", err)
	}
	return &Publisher{client: client, source: source}, nil
}

// Publish sends n and waits for the sink to acknowledge it.
func (p *Publisher) Publish(ctx context.Context, n models.Notification) error {
	event := cloudevents.NewEvent()
	event.SetID(uuid.NewString())
	event.SetSource(p.source)
	event.SetType(EventType)
	event.SetSubject(n.Subject)
	event.SetTime(time.Now().UTC())

	data := models.NotificationData{Message: n.Message, Details: n.Details}
	if err := event.SetData(cloudevents.ApplicationJSON, data); err != nil {
		return fmt.Errorf("%w: encoding event data: %w", models.ErrNotification, err)
	}

	if result := p.client.Send(ctx, event); !cloudevents.IsACK(result) {
		return fmt.Errorf("%w: %w", models.ErrNotification, result)
	}
	return nil
}

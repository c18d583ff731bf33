package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange        = "menu.events"
	MirrorQueue           = "menu.photos.mirror"
	MirrorDeadLetterQueue = "menu.photos.mirror.dlq"
	PhotosGeneratedEvent  = "menu.photos.generated"
	deadLetterRoutingKey  = "menu.photos.dead"
)

// PhotosGenerated announces a finished run. SourceTemplate is the photo set's
// url template so the worker fetches from the same catalog the statement uses.
type PhotosGenerated struct {
	Type           string    `json:"type"`
	RunID          string    `json:"runId"`
	ItemCount      int       `json:"itemCount"`
	WarningCount   int       `json:"warningCount"`
	Identifiers    []string  `json:"identifiers"`
	SourceTemplate string    `json:"sourceTemplate,omitempty"`
	ArtifactURL    string    `json:"artifactUrl,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// EnsurePhotoTopology declares the events exchange, the mirror queue and its
// dead-letter queue. The mirror queue binds only the generated event so dead
// letters never route back into it.
func EnsurePhotoTopology(qc *Client) error {
	if qc == nil {
		return nil
	}
	if err := qc.EnsureExchange(EventsExchange); err != nil {
		return err
	}
	if _, err := qc.EnsureQueue(MirrorDeadLetterQueue, nil); err != nil {
		return err
	}
	if err := qc.BindQueue(MirrorDeadLetterQueue, EventsExchange, deadLetterRoutingKey); err != nil {
		return err
	}
	if _, err := qc.EnsureQueue(MirrorQueue, amqp.Table{
		"x-dead-letter-exchange":    EventsExchange,
		"x-dead-letter-routing-key": deadLetterRoutingKey,
	}); err != nil {
		return err
	}
	return qc.BindQueue(MirrorQueue, EventsExchange, PhotosGeneratedEvent)
}

func PublishPhotosGenerated(ctx context.Context, qc *Client, evt PhotosGenerated) error {
	if qc == nil {
		return nil
	}
	evt.Type = PhotosGeneratedEvent
	if evt.CreatedAt.IsZero() {
		evt.CreatedAt = time.Now().UTC()
	}
	return qc.PublishJSON(ctx, EventsExchange, PhotosGeneratedEvent, evt)
}

type PhotoMirrorer interface {
	MirrorIdentifiers(ctx context.Context, sourceTemplate string, identifiers []string) (int, error)
}

// ProcessPhotoEvent mirrors the photos named by a generated event. Unknown
// event types are acknowledged and ignored.
func ProcessPhotoEvent(ctx context.Context, m PhotoMirrorer, body []byte) error {
	if m == nil {
		return nil
	}
	var evt PhotosGenerated
	if err := json.Unmarshal(body, &evt); err != nil {
		return err
	}
	if strings.TrimSpace(evt.Type) != PhotosGeneratedEvent {
		return nil
	}
	if len(evt.Identifiers) == 0 {
		return nil
	}
	if _, err := m.MirrorIdentifiers(ctx, evt.SourceTemplate, evt.Identifiers); err != nil {
		return fmt.Errorf("run %s: %w", evt.RunID, err)
	}
	return nil
}

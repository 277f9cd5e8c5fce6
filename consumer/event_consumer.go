package consumer

import (
	"context"
	"time"

	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

// ChangeEventVersion is bumped whenever the message layout changes.
const ChangeEventVersion = 1

// ChangeEvent is the message published for every committed engine change.
type ChangeEvent struct {
	SchemaVersion int               `json:"schema_version"`
	Seq           uint64            `json:"seq"`
	Type          string            `json:"type"`
	Domain        string            `json:"domain"`
	Timestamp     time.Time         `json:"timestamp"`
	Actor         string            `json:"actor,omitempty"`
	Attributes    map[string]string `json:"attributes,omitempty"`
}

func NewChangeEvent(entry types.ChangeLogEntry) *ChangeEvent {
	return &ChangeEvent{
		SchemaVersion: ChangeEventVersion,
		Seq:           entry.Seq,
		Type:          entry.Type.String(),
		Domain:        entry.Type.Domain(),
		Timestamp:     entry.Timestamp,
		Actor:         entry.Actor,
		Attributes:    entry.Attributes,
	}
}

// RoutingKey is the topic the event is published under, e.g. "crowdfunding.PledgeMade".
func (e *ChangeEvent) RoutingKey() string {
	return e.Type
}

type EventPublisher interface {
	Start() error
	Publish(ctx context.Context, ev *ChangeEvent) error
	Stop() error
}

package model

import (
	"time"

	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

// ChangeLogDocument is a persisted change log entry keyed by its sequence number.
type ChangeLogDocument struct {
	Seq        uint64            `bson:"_id"`
	Type       string            `bson:"type"`
	Domain     string            `bson:"domain"`
	Timestamp  int64             `bson:"timestamp"` // unix milliseconds
	Actor      string            `bson:"actor"`
	Attributes map[string]string `bson:"attributes"`
}

func FromChangeLogEntry(entry types.ChangeLogEntry) *ChangeLogDocument {
	return &ChangeLogDocument{
		Seq:        entry.Seq,
		Type:       entry.Type.String(),
		Domain:     entry.Type.Domain(),
		Timestamp:  entry.Timestamp.UnixMilli(),
		Actor:      entry.Actor,
		Attributes: entry.Attributes,
	}
}

func (d *ChangeLogDocument) ToEntry() types.ChangeLogEntry {
	return types.ChangeLogEntry{
		Seq:        d.Seq,
		Type:       types.ChangeType(d.Type),
		Timestamp:  time.UnixMilli(d.Timestamp).UTC(),
		Actor:      d.Actor,
		Attributes: d.Attributes,
	}
}

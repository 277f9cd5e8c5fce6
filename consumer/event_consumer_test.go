package consumer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

func TestNewChangeEvent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ev := NewChangeEvent(types.ChangeLogEntry{
		Seq:        42,
		Type:       types.ChangeFundsClaimed,
		Timestamp:  now,
		Actor:      "creator",
		Attributes: map[string]string{"campaign_id": "3"},
	})

	assert.Equal(t, ChangeEventVersion, ev.SchemaVersion)
	assert.Equal(t, uint64(42), ev.Seq)
	assert.Equal(t, "crowdfunding", ev.Domain)
	assert.Equal(t, "crowdfunding.FundsClaimed", ev.RoutingKey())
	assert.Equal(t, now, ev.Timestamp)
	assert.Equal(t, "3", ev.Attributes["campaign_id"])
}

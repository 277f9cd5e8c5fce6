package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordPollerDuration(t *testing.T) {
	failing := RecordPollerDuration("test-failing", func(context.Context) error {
		return errors.New("boom")
	})
	assert.Error(t, failing(context.Background()))

	ok := RecordPollerDuration("test-ok", func(context.Context) error { return nil })
	assert.NoError(t, ok(context.Background()))

	assert.Equal(t, 2, testutil.CollectAndCount(pollerDurationHistogram))
}

func TestGauges(t *testing.T) {
	RecordTokenAmount("supply", 12.5)
	assert.InDelta(t, 12.5, testutil.ToFloat64(tokenGauge.WithLabelValues("supply")), 1e-9)

	RecordEmissions(1_500_000, 2)
	assert.InDelta(t, 2, testutil.ToFloat64(emissionsGauge.WithLabelValues("offset_tons")), 1e-9)

	before := testutil.ToFloat64(failedCampaignsCounter)
	AddFailedCampaigns(3)
	assert.InDelta(t, before+3, testutil.ToFloat64(failedCampaignsCounter), 1e-9)
}

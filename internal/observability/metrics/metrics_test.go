package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagepass/portal/internal/apierror"
	"github.com/stagepass/portal/internal/observability/statsd"
)

func TestEmitBillingAction(t *testing.T) {
	var rec statsd.Recorder
	EmitBillingAction(&rec, BillingMetric{
		Action:   "cancel",
		Role:     "artist",
		Result:   ResultError,
		Duration: 20 * time.Millisecond,
		Err:      &apierror.Error{Status: 502},
	})

	counts := rec.Named("billing.action")
	require.Len(t, counts, 1)
	assert.Equal(t, "cancel", counts[0].Tags["action"])
	assert.Equal(t, "api_5xx", counts[0].Tags["error_class"])

	timings := rec.Named("billing.duration")
	require.Len(t, timings, 1)
	assert.Equal(t, float64(20), timings[0].Value)
}

func TestEmitBackendCall(t *testing.T) {
	var rec statsd.Recorder
	EmitBackendCall(&rec, BackendMetric{Method: "GET", Endpoint: "/api/photos", Status: 200})
	EmitBackendCall(&rec, BackendMetric{Method: "GET", Endpoint: "/api/photos", Err: errors.New("dial")})

	got := rec.Named("backend.request")
	require.Len(t, got, 2)
	assert.Equal(t, "2xx", got[0].Tags["status_class"])
	assert.Equal(t, ResultSuccess, got[0].Tags["result"])
	assert.Equal(t, ResultError, got[1].Tags["result"])
	assert.NotContains(t, got[1].Tags, "status_class")
	assert.Empty(t, rec.Named("backend.duration"))
}

func TestNilSink(t *testing.T) {
	EmitBillingAction(nil, BillingMetric{Action: "resume"})
	EmitBackendCall(nil, BackendMetric{})
}

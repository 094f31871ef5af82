// Package metrics holds the portal's named metric emitters.
package metrics

import (
	"time"

	obserrors "github.com/stagepass/portal/internal/observability/errors"
	"github.com/stagepass/portal/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess  = "success"
	ResultError    = "error"
	ResultRejected = "rejected"
)

// ResultFor maps an error to ResultSuccess or ResultError.
func ResultFor(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

// BillingMetric describes one billing action.
type BillingMetric struct {
	Action   string
	Role     string
	Result   string
	Duration time.Duration
	Err      error
}

// EmitBillingAction emits billing.action counts and billing.duration timings.
func EmitBillingAction(sink statsd.Sink, in BillingMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"action": in.Action,
		"result": in.Result,
	}
	if in.Role != "" {
		tags["role"] = in.Role
	}
	emit(sink, "billing", tags, in.Duration, in.Err)
}

// BackendMetric describes one request to the marketplace API.
type BackendMetric struct {
	Method   string
	Endpoint string
	Status   int
	Duration time.Duration
	Err      error
}

// EmitBackendCall emits backend.request counts and backend.duration timings.
// Endpoint must be a route template, never a path with ids in it.
func EmitBackendCall(sink statsd.Sink, in BackendMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"method":   in.Method,
		"endpoint": in.Endpoint,
		"result":   ResultFor(in.Err),
	}
	if in.Status > 0 {
		tags["status_class"] = statusClass(in.Status)
	}
	emit(sink, "backend", tags, in.Duration, in.Err)
}

func emit(sink statsd.Sink, family string, tags map[string]string, d time.Duration, err error) {
	if err != nil && tags["result"] != ResultSuccess {
		if class := obserrors.Classify(err); class != "" {
			tags["error_class"] = class
		}
	}

	counter := family + ".action"
	if family == "backend" {
		counter = "backend.request"
	}
	sink.Count(counter, 1, tags)

	if d > 0 {
		sink.Timing(family+".duration", d, CloneTags(tags))
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

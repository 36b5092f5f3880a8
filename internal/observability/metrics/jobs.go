package metrics

import (
	"time"

	obserrors "github.com/ticketmint/ticketmint/internal/observability/errors"
	"github.com/ticketmint/ticketmint/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// MintJobMetric captures details about a mint job lifecycle event for metric emission.
type MintJobMetric struct {
	Transition string
	Result     string
	Duration   time.Duration
	Err        error
}

// EmitMintJobLifecycle emits standardised mint job lifecycle metrics.
func EmitMintJobLifecycle(sink statsd.Sink, in MintJobMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"transition": in.Transition,
		"result":     in.Result,
	}

	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("mint_job.transition", 1, tags)

	if in.Duration > 0 {
		sink.Timing("mint_job.duration", in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
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

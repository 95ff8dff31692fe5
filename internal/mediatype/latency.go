package mediatype

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// DefaultLatencyThreshold is the average response time under which a disk is
// assumed to be solid state.
const DefaultLatencyThreshold = time.Millisecond

// ClassifyFromLatencyCounters infers an SSD from sub-threshold average read
// and write latency. This is the weakest source in the chain.
func ClassifyFromLatencyCounters(ctx context.Context, p LatencyProvider, index DiskIndex, threshold time.Duration) (Verdict, error) {
	if p == nil {
		return unknown(""), errors.Wrap(ErrProviderUnavailable, "no latency provider")
	}
	if !index.Known() {
		return unknown(""), errors.Wrap(ErrNoMatch, "physical disk index not resolved")
	}
	if threshold <= 0 {
		threshold = DefaultLatencyThreshold
	}

	samples, err := p.Latency(ctx, index)
	if err != nil {
		return unknown(""), errors.Wrapf(err, "latency of disk %d", index)
	}
	if len(samples) == 0 {
		return unknown(""), errors.Wrapf(ErrNoMatch, "no latency counters for disk %d", index)
	}

	for _, s := range samples {
		if s.ReadLatency == nil || s.WriteLatency == nil {
			continue
		}
		r, w := *s.ReadLatency, *s.WriteLatency
		if r < threshold && w < threshold {
			return Verdict{SSDEstimated, fmt.Sprintf("read %s write %s", r, w)}, nil
		}
		return unknown(fmt.Sprintf("read %s write %s", r, w)), nil
	}
	return unknown(""), errors.Wrapf(ErrDataAmbiguous, "disk %d has no read/write latency samples", index)
}

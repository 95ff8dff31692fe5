package mediatype

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultQueryTimeout bounds each classifier step.
const DefaultQueryTimeout = 8 * time.Second

// Resolver determines the media type behind a logical drive. It holds no
// per-call state and may be shared between goroutines.
type Resolver struct {
	sources          Sources
	heuristics       *Heuristics
	policy           FallbackPolicy
	latencyThreshold time.Duration
	queryTimeout     time.Duration
	log              logrus.FieldLogger
}

type Option func(*Resolver)

func WithHeuristics(h *Heuristics) Option {
	return func(r *Resolver) {
		if h != nil {
			r.heuristics = h
		}
	}
}

func WithFallbackPolicy(p FallbackPolicy) Option {
	return func(r *Resolver) { r.policy = p }
}

func WithLatencyThreshold(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.latencyThreshold = d
		}
	}
}

func WithQueryTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.queryTimeout = d
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

func New(src Sources, opts ...Option) *Resolver {
	r := &Resolver{
		sources:          src,
		heuristics:       DefaultHeuristics(),
		policy:           FallbackUnanimous,
		latencyThreshold: DefaultLatencyThreshold,
		queryTimeout:     DefaultQueryTimeout,
		log:              logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Heuristics returns the data set in use.
func (r *Resolver) Heuristics() *Heuristics {
	return r.heuristics
}

type step struct {
	method Method
	// indexed steps need the physical disk index before their deadline starts.
	indexed bool
	run     func(ctx context.Context, s *resolution) (Verdict, error)
}

// chain lists the classifiers from most to least trustworthy.
func (r *Resolver) chain() []step {
	return []step{
		{MethodAuthoritative, true, func(ctx context.Context, s *resolution) (Verdict, error) {
			return ClassifyAuthoritative(ctx, r.sources.Storage, r.heuristics, s.index)
		}},
		{MethodAllDisks, false, func(ctx context.Context, s *resolution) (Verdict, error) {
			return ClassifyAllDisks(ctx, r.sources.Storage, r.heuristics, r.policy)
		}},
		{MethodRegistry, false, func(ctx context.Context, s *resolution) (Verdict, error) {
			return ClassifyFromRegistry(ctx, r.sources.Registry, r.heuristics, r.policy)
		}},
		{MethodDiskDrive, true, func(ctx context.Context, s *resolution) (Verdict, error) {
			return ClassifyFromDiskDriveRecord(ctx, r.sources.DiskDrives, r.heuristics, s.index)
		}},
		{MethodLatency, true, func(ctx context.Context, s *resolution) (Verdict, error) {
			return ClassifyFromLatencyCounters(ctx, r.sources.Latency, s.index, r.latencyThreshold)
		}},
	}
}

// Resolve classifies drive ("C", "C:" or `C:\`). It always returns a
// result; failures of individual sources are recorded in Diagnostics and
// the chain moves on. The first definitive verdict ends the chain.
func (r *Resolver) Resolve(ctx context.Context, drive string) Result {
	res := Result{Drive: drive, Classification: Unknown, DiskIndex: NoDiskIndex}

	logical, err := NormalizeDrive(drive)
	if err != nil {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Method:  MethodTopology,
			Verdict: Unknown,
			Kind:    KindOf(err),
			Err:     err,
		})
		return res
	}
	res.Drive = logical

	s := &resolution{r: r, parent: ctx, drive: logical, index: NoDiskIndex, result: &res}
	log := r.log.WithField("drive", logical)

	for _, st := range r.chain() {
		if err := ctx.Err(); err != nil {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Method:  st.method,
				Verdict: Unknown,
				Kind:    KindOf(err),
				Err:     err,
				Detail:  "not attempted",
			})
			break
		}

		if st.indexed {
			s.diskIndex()
		}
		d := s.attempt(ctx, st)
		res.Diagnostics = append(res.Diagnostics, d)

		entry := log.WithFields(logrus.Fields{
			"method":  d.Method,
			"verdict": d.Verdict,
			"elapsed": d.Elapsed,
		})
		if d.Err != nil {
			entry.WithField("error_kind", d.Kind).Debugf("classifier inconclusive: %v", d.Err)
		} else {
			entry.Debug("classifier finished")
		}

		if d.Verdict.Definitive() {
			res.Classification = d.Verdict
			res.Method = d.Method
			break
		}
	}

	res.DiskIndex = s.index
	return res
}

// resolution carries what one Resolve call learns along the chain.
type resolution struct {
	r         *Resolver
	parent    context.Context
	drive     string
	index     DiskIndex
	indexDone bool
	result    *Result
}

// diskIndex walks the topology once per call and caches the answer. The walk
// runs under the caller's context, not the budget of the step that needs it.
func (s *resolution) diskIndex() DiskIndex {
	if s.indexDone {
		return s.index
	}
	s.indexDone = true

	d := s.attempt(s.parent, step{method: MethodTopology, run: func(ctx context.Context, _ *resolution) (Verdict, error) {
		idx, err := FindPhysicalDiskIndex(ctx, s.r.sources.Partitions, s.drive)
		if err != nil {
			return unknown(""), err
		}
		s.index = idx
		return unknown(fmt.Sprintf("physical disk %d", idx)), nil
	}})
	s.result.Diagnostics = append(s.result.Diagnostics, d)
	return s.index
}

// attempt runs one step under its own deadline and turns panics into
// ProviderUnavailable diagnostics.
func (s *resolution) attempt(ctx context.Context, st step) (d Diagnostic) {
	ctx, cancel := context.WithTimeout(ctx, s.r.queryTimeout)
	defer cancel()

	start := time.Now()
	d = Diagnostic{Method: st.method, Verdict: Unknown}

	defer func() {
		if rec := recover(); rec != nil {
			d.Verdict = Unknown
			d.Err = errors.Wrapf(ErrProviderUnavailable, "panic: %v", rec)
			d.Kind = KindProviderUnavailable
		}
		d.Elapsed = time.Since(start)
	}()

	v, err := st.run(ctx, s)
	d.Verdict = v.Classification
	if d.Verdict == "" {
		d.Verdict = Unknown
	}
	d.Detail = v.Detail
	if err != nil {
		d.Verdict = Unknown
		d.Err = err
		d.Kind = KindOf(err)
	}
	return d
}

package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nhdewitt/drivescope/internal/protocol"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds one whole collection pass.
const DefaultTimeout = 30 * time.Second

// ErrTimedOut is returned when the pass deadline elapses. The report holds
// whatever finished before it.
var ErrTimedOut = errors.New("system info collection timed out")

type CollectFunc func(context.Context) (protocol.Section, error)

// Task is one named section of a collection pass.
type Task struct {
	Name    string
	Collect CollectFunc
}

type Collector struct {
	tasks    []Task
	timeout  time.Duration
	log      logrus.FieldLogger
	progress func(section string)
	now      func() time.Time
}

type Option func(*Collector)

func WithTimeout(d time.Duration) Option {
	return func(c *Collector) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Collector) {
		if l != nil {
			c.log = l
		}
	}
}

// WithProgress registers fn to be called after each section finishes.
func WithProgress(fn func(section string)) Option {
	return func(c *Collector) { c.progress = fn }
}

// New builds a collector over tasks. See SystemTasks for the default set.
func New(tasks []Task, opts ...Option) *Collector {
	c := &Collector{
		tasks:   tasks,
		timeout: DefaultTimeout,
		log:     logrus.StandardLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tasks returns the sections in run order.
func (c *Collector) Tasks() []Task {
	return c.tasks
}

// Run collects every section in order under one deadline. A failing section
// is recorded and the pass continues. When the deadline elapses the pass
// stops, every unfinished section is reported as timed out and ErrTimedOut
// is returned together with the partial report.
func (c *Collector) Run(ctx context.Context) (protocol.SystemReport, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	report := protocol.SystemReport{
		ID:        uuid.New(),
		StartedAt: c.now(),
		Sections:  make([]protocol.SectionStatus, 0, len(c.tasks)),
	}
	log := c.log.WithField("report", report.ID.String())

	for i, task := range c.tasks {
		start := c.now()
		section, err := c.collect(ctx, task)
		status := protocol.SectionStatus{
			Name:    task.Name,
			OK:      err == nil,
			Elapsed: c.now().Sub(start),
		}

		if ctx.Err() != nil && (err != nil || section == nil) {
			reason := "timed out"
			if errors.Is(ctx.Err(), context.Canceled) {
				reason = "cancelled"
			}
			status.OK = false
			status.TimedOut = true
			status.Error = reason
			report.Sections = append(report.Sections, status)
			for _, rest := range c.tasks[i+1:] {
				report.Sections = append(report.Sections, protocol.SectionStatus{
					Name: rest.Name, TimedOut: true, Error: reason,
				})
			}
			report.TimedOut = true
			report.Duration = c.now().Sub(report.StartedAt)

			if reason == "cancelled" {
				log.WithField("section", task.Name).Warn("collection cancelled")
				return report, ctx.Err()
			}
			log.WithField("section", task.Name).Warn("collection deadline elapsed")
			return report, errors.Wrapf(ErrTimedOut, "after %s", c.timeout)
		}

		if err != nil {
			status.Error = err.Error()
			log.WithField("section", task.Name).Warnf("section failed: %v", err)
		}
		if section != nil {
			report.Data = append(report.Data, section)
		}
		report.Sections = append(report.Sections, status)

		if c.progress != nil {
			c.progress(task.Name)
		}
	}

	report.Duration = c.now().Sub(report.StartedAt)
	return report, nil
}

// collect runs one task on its own goroutine so a collaborator that ignores
// ctx cannot hold the pass past its deadline.
func (c *Collector) collect(ctx context.Context, task Task) (protocol.Section, error) {
	type result struct {
		section protocol.Section
		err     error
	}

	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.log.WithField("section", task.Name).Errorf("Panic recovered in collector: %v", r)
				ch <- result{err: fmt.Errorf("panic: %v", r)}
			}
		}()

		s, err := task.Collect(ctx)
		ch <- result{section: s, err: err}
	}()

	select {
	case r := <-ch:
		return r.section, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

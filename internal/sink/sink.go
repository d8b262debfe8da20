// Package sink delivers reformulated queries to their destinations. The
// output file is always written; Kafka, Redis and PostgreSQL mirrors are
// optional and receive the same entries in the same order.
package sink

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Entry is one reformulated query.
type Entry struct {
	Index      string `json:"index"`
	Query      string `json:"query"`
	Structured string `json:"structured"`
}

// Line renders the entry as an output-file line without the newline.
func (e Entry) Line() string {
	return e.Index + ":" + e.Structured
}

// Sink receives entries in input order.
type Sink interface {
	Name() string
	Write(ctx context.Context, e Entry) error
	// Flush pushes any buffered entries to the destination.
	Flush(ctx context.Context) error
	Close() error
}

// Multi writes every entry to each sink in turn. The first sink is treated
// as primary: a write only reaches later sinks after it succeeds there.
type Multi struct {
	sinks   []Sink
	observe func(sink string, err error)
}

func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

// WithObserver reports the outcome of every per-sink write to fn.
func (m *Multi) WithObserver(fn func(sink string, err error)) *Multi {
	m.observe = fn
	return m
}

func (m *Multi) Name() string { return "multi" }

func (m *Multi) Write(ctx context.Context, e Entry) error {
	for _, s := range m.sinks {
		err := s.Write(ctx, e)
		if m.observe != nil {
			m.observe(s.Name(), err)
		}
		if err != nil {
			return fmt.Errorf("writing to %s sink: %w", s.Name(), err)
		}
	}
	return nil
}

// Flush flushes all sinks concurrently.
func (m *Multi) Flush(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range m.sinks {
		s := s
		g.Go(func() error {
			if err := s.Flush(gctx); err != nil {
				return fmt.Errorf("flushing %s sink: %w", s.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Close closes every sink, even when some of them fail, and returns the
// first error.
func (m *Multi) Close() error {
	var g errgroup.Group
	for _, s := range m.sinks {
		s := s
		g.Go(func() error {
			if err := s.Close(); err != nil {
				return fmt.Errorf("closing %s sink: %w", s.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

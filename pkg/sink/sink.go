// Package sink delivers row outcomes and run summaries back to the operator.
//
// Every sink is safe for concurrent writers: the push orchestrator reports
// skipped rows as soon as they are seen, possibly while submissions are in
// flight on other goroutines.
package sink

import (
	"context"
	"errors"
	"sync"

	"github.com/newtron-network/acipush/pkg/report"
)

// Sink receives outcomes. ref is the row's opaque result handle.
type Sink interface {
	WriteOutcome(ctx context.Context, ref string, o report.Outcome) error
	WriteRunSummary(ctx context.Context, command string, agg report.Aggregate, message string) error
}

// Multi fans writes out to every sink. All sinks are written even when one
// fails; the errors are joined.
type Multi []Sink

func (m Multi) WriteOutcome(ctx context.Context, ref string, o report.Outcome) error {
	var errs []error
	for _, s := range m {
		if err := s.WriteOutcome(ctx, ref, o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) WriteRunSummary(ctx context.Context, command string, agg report.Aggregate, message string) error {
	var errs []error
	for _, s := range m {
		if err := s.WriteRunSummary(ctx, command, agg, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops everything.
type Discard struct{}

func (Discard) WriteOutcome(context.Context, string, report.Outcome) error { return nil }

func (Discard) WriteRunSummary(context.Context, string, report.Aggregate, string) error { return nil }

// Entry is one outcome recorded by Memory.
type Entry struct {
	Ref     string
	Outcome report.Outcome
}

// Summary is one run summary recorded by Memory.
type Summary struct {
	Command   string
	Aggregate report.Aggregate
	Message   string
}

// Memory records writes in arrival order.
type Memory struct {
	mu        sync.Mutex
	entries   []Entry
	summaries []Summary
}

func (m *Memory) WriteOutcome(_ context.Context, ref string, o report.Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, Entry{Ref: ref, Outcome: o})
	return nil
}

func (m *Memory) WriteRunSummary(_ context.Context, command string, agg report.Aggregate, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries = append(m.summaries, Summary{Command: command, Aggregate: agg, Message: message})
	return nil
}

// Entries returns a copy of the recorded outcomes.
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...)
}

// Summaries returns a copy of the recorded run summaries.
func (m *Memory) Summaries() []Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Summary(nil), m.summaries...)
}

// Status returns the last outcome written for ref.
func (m *Memory) Status(ref string) (report.Outcome, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].Ref == ref {
			return m.entries[i].Outcome, true
		}
	}
	return report.Outcome{}, false
}

package report

import (
	"fmt"
	"strings"
	"time"
)

// Aggregate classifies a whole run.
type Aggregate string

const (
	AllSucceeded   Aggregate = "all-succeeded"
	PartialSuccess Aggregate = "partial-success"
	AllFailed      Aggregate = "all-failed"
)

// Message is the operator-facing summary line for the aggregate.
func (a Aggregate) Message() string {
	switch a {
	case AllSucceeded:
		return "Complete success"
	case PartialSuccess:
		return "Partial success"
	}
	return "Complete failure"
}

// Summarize classifies outcomes. Skipped rows count neither way: among the
// rest, all successes is AllSucceeded and no success is AllFailed. A run of
// only skipped rows is AllFailed; an empty run is AllSucceeded.
func Summarize(outcomes []Outcome) Aggregate {
	var succeeded, failed, skipped int
	for _, o := range outcomes {
		switch o.Kind {
		case KindSuccess:
			succeeded++
		case KindSkipped:
			skipped++
		default:
			failed++
		}
	}
	switch {
	case succeeded == 0 && failed == 0 && skipped == 0:
		return AllSucceeded
	case succeeded == 0:
		return AllFailed
	case failed == 0:
		return AllSucceeded
	}
	return PartialSuccess
}

// Counts tallies outcomes by kind.
type Counts struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// Total returns the number of rows reached.
func (c Counts) Total() int {
	return c.Succeeded + c.Failed + c.Skipped
}

// Report is the result of one command run. Outcomes are in table order.
// Rows never reached (run aborted) are absent.
type Report struct {
	RunID         string        `json:"run_id"`
	Command       string        `json:"command"`
	Table         string        `json:"table,omitempty"`
	ActionMessage string        `json:"action_message,omitempty"`
	Controller    string        `json:"controller,omitempty"`
	Outcomes      []Outcome     `json:"outcomes"`
	Aggregate     Aggregate     `json:"aggregate"`
	Aborted       bool          `json:"aborted,omitempty"`
	AbortReason   string        `json:"abort_reason,omitempty"`
	AuthError     error         `json:"-"`
	Started       time.Time     `json:"started"`
	Duration      time.Duration `json:"duration"`
}

// Finalize computes the aggregate. An aborted run is always AllFailed.
func (r *Report) Finalize() {
	if r.Aborted {
		r.Aggregate = AllFailed
		return
	}
	r.Aggregate = Summarize(r.Outcomes)
}

// Abort marks the run as stopped before any row was processed.
func (r *Report) Abort(reason string) {
	r.Aborted = true
	r.AbortReason = reason
	r.Outcomes = nil
	r.Finalize()
}

// Counts tallies the report's outcomes.
func (r *Report) Counts() Counts {
	var c Counts
	for _, o := range r.Outcomes {
		switch o.Kind {
		case KindSuccess:
			c.Succeeded++
		case KindSkipped:
			c.Skipped++
		default:
			c.Failed++
		}
	}
	return c
}

// Summary is a one-line description of the run.
func (r *Report) Summary() string {
	if r.Aborted {
		return fmt.Sprintf("Script Aborted: %s", r.AbortReason)
	}
	c := r.Counts()
	return fmt.Sprintf("%s: %d succeeded, %d failed, %d skipped",
		r.Aggregate.Message(), c.Succeeded, c.Failed, c.Skipped)
}

// String renders the human-readable report: summary, then failed and
// skipped rows listed separately.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", r.Command, r.Summary())
	if r.Aborted {
		return b.String()
	}

	section := func(title string, kind Kind) {
		first := true
		for _, o := range r.Outcomes {
			if o.Kind != kind {
				continue
			}
			if first {
				fmt.Fprintf(&b, "\n%s:\n", title)
				first = false
			}
			fmt.Fprintf(&b, "  %s\n", o)
		}
	}
	section("Failed", KindFailure)
	section("Skipped", KindSkipped)
	return b.String()
}

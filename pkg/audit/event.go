// Package audit records push runs in an append-only log.
package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/newtron-network/acipush/pkg/report"
)

// Event is one audited run of a push command.
type Event struct {
	ID          string        `json:"id"`
	RunID       string        `json:"run_id,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
	Type        EventType     `json:"type"`
	User        string        `json:"user"`
	Controller  string        `json:"controller"`
	Command     string        `json:"command"`
	Table       string        `json:"table,omitempty"`
	Aggregate   string        `json:"aggregate,omitempty"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	Skipped     int           `json:"skipped"`
	Success     bool          `json:"success"`
	Error       string        `json:"error,omitempty"`
	ExecuteMode bool          `json:"execute_mode"` // true if -x was used
	DryRun      bool          `json:"dry_run"`
	Duration    time.Duration `json:"duration"`
}

// EventType categorizes audit events
type EventType string

const (
	EventTypePreview EventType = "preview"
	EventTypeExecute EventType = "execute"
	EventTypeAbort   EventType = "abort"
)

// Severity indicates the importance of an audit event
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Filter defines criteria for querying audit events
type Filter struct {
	RunID       string
	Controller  string
	User        string
	Command     string
	Type        EventType
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	NewestFirst bool
	Limit       int
	Offset      int
}

// NewEvent creates a new audit event
func NewEvent(user, controller, command string) *Event {
	return &Event{
		ID:         uuid.NewString(),
		Timestamp:  time.Now(),
		Type:       EventTypePreview,
		User:       user,
		Controller: controller,
		Command:    command,
		DryRun:     true,
	}
}

// WithReport copies the outcome of a finished run into the event.
func (e *Event) WithReport(r *report.Report) *Event {
	c := r.Counts()
	e.RunID = r.RunID
	e.Table = r.Table
	e.Aggregate = string(r.Aggregate)
	e.Succeeded = c.Succeeded
	e.Failed = c.Failed
	e.Skipped = c.Skipped
	e.Duration = r.Duration
	e.Success = !r.Aborted && r.Aggregate == report.AllSucceeded
	if r.Aborted {
		e.Type = EventTypeAbort
		e.Error = r.AbortReason
	}
	return e
}

// WithSuccess marks the event as successful
func (e *Event) WithSuccess() *Event {
	e.Success = true
	return e
}

// WithError marks the event as failed
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets the run duration
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

// WithExecuteMode marks if execute mode was used
func (e *Event) WithExecuteMode(execute bool) *Event {
	e.ExecuteMode = execute
	e.DryRun = !execute
	if execute && e.Type == EventTypePreview {
		e.Type = EventTypeExecute
	}
	return e
}

// Severity grades the event: failed runs are errors, partly failed runs and
// runs with skipped rows are warnings.
func (e *Event) Severity() Severity {
	switch {
	case e.Error != "" || e.Aggregate == string(report.AllFailed):
		return SeverityError
	case e.Failed > 0 || e.Skipped > 0:
		return SeverityWarning
	}
	return SeverityInfo
}

// Package report folds per-row submission outcomes into a run report.
package report

import (
	"fmt"
	"strconv"
	"time"
)

// Kind tags an outcome.
type Kind string

const (
	KindSuccess Kind = "success"
	KindFailure Kind = "failure"
	KindSkipped Kind = "skipped"
)

// FailureKind says where a failed row went wrong.
type FailureKind string

const (
	FailureController FailureKind = "controller" // controller returned a non-success status
	FailureTransport  FailureKind = "transport"  // controller not reached
	FailureRender     FailureKind = "render"     // template could not be expanded
)

// Status texts written to the status sink for outcomes without a usable code.
const (
	StatusMissingFields = "Aborted - missing fields"
	StatusTransport     = "Unknown Error"
	StatusRender        = "Render Error"
)

// Sink cell colors, as RGB hex.
const (
	ColorPass    = "58D68D"
	ColorFailed  = "E74C3C"
	ColorIgnored = "F0B27A"
)

// Outcome is the result of one row.
type Outcome struct {
	Index      int           `json:"index"`
	Line       int           `json:"line,omitempty"`
	Ref        string        `json:"ref,omitempty"`
	URI        string        `json:"uri,omitempty"`
	Kind       Kind          `json:"kind"`
	StatusCode int           `json:"status_code,omitempty"`
	Failure    FailureKind   `json:"failure,omitempty"`
	Detail     string        `json:"detail,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
}

// Success records a row the controller accepted.
func Success(index, code int) Outcome {
	return Outcome{Index: index, Kind: KindSuccess, StatusCode: code}
}

// ControllerFailure records a row the controller rejected with code.
func ControllerFailure(index, code int, detail string) Outcome {
	return Outcome{Index: index, Kind: KindFailure, Failure: FailureController, StatusCode: code, Detail: detail}
}

// TransportFailure records a row whose request never got a response.
func TransportFailure(index int, detail string) Outcome {
	return Outcome{Index: index, Kind: KindFailure, Failure: FailureTransport, Detail: detail}
}

// RenderFailure records a row whose templates could not be expanded.
func RenderFailure(index int, detail string) Outcome {
	return Outcome{Index: index, Kind: KindFailure, Failure: FailureRender, Detail: detail}
}

// Skipped records a row rejected before submission.
func Skipped(index int, reason string) Outcome {
	return Outcome{Index: index, Kind: KindSkipped, Detail: reason}
}

// Status returns the text written to the row's status location: the
// controller status code when there is one, otherwise a fixed label.
func (o Outcome) Status() string {
	switch o.Kind {
	case KindSkipped:
		return StatusMissingFields
	case KindFailure:
		switch o.Failure {
		case FailureTransport:
			return StatusTransport
		case FailureRender:
			return StatusRender
		}
	}
	return strconv.Itoa(o.StatusCode)
}

// Color returns the status cell color for the outcome.
func (o Outcome) Color() string {
	switch o.Kind {
	case KindSuccess:
		return ColorPass
	case KindSkipped:
		return ColorIgnored
	}
	return ColorFailed
}

func (o Outcome) String() string {
	s := fmt.Sprintf("row %d: %s", o.Index, o.Status())
	if o.Detail != "" {
		s += " (" + o.Detail + ")"
	}
	return s
}

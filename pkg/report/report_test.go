package report

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []Outcome
		want     Aggregate
	}{
		{"all 200", []Outcome{Success(0, 200), Success(1, 200), Success(2, 200)}, AllSucceeded},
		{"200 and 404", []Outcome{Success(0, 200), ControllerFailure(1, 404, "")}, PartialSuccess},
		{"404 and 401", []Outcome{ControllerFailure(0, 404, ""), ControllerFailure(1, 401, "")}, AllFailed},
		{"transport only", []Outcome{TransportFailure(0, "refused")}, AllFailed},
		{"skipped ignored", []Outcome{Success(0, 200), Skipped(1, "missing mandatory field: tn_name")}, AllSucceeded},
		{"skipped with failure", []Outcome{ControllerFailure(0, 400, ""), Skipped(1, "x")}, AllFailed},
		{"skipped mixed", []Outcome{Success(0, 200), Skipped(1, "x"), RenderFailure(2, "bad")}, PartialSuccess},
		{"only skipped", []Outcome{Skipped(0, "x"), Skipped(1, "y")}, AllFailed},
		{"empty", nil, AllSucceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summarize(tt.outcomes); got != tt.want {
				t.Errorf("Summarize() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAggregateMessage(t *testing.T) {
	if AllSucceeded.Message() != "Complete success" ||
		PartialSuccess.Message() != "Partial success" ||
		AllFailed.Message() != "Complete failure" {
		t.Error("unexpected aggregate messages")
	}
}

func TestOutcomeStatusAndColor(t *testing.T) {
	tests := []struct {
		name   string
		o      Outcome
		status string
		color  string
	}{
		{"success", Success(0, 200), "200", ColorPass},
		{"controller", ControllerFailure(0, 404, "not found"), "404", ColorFailed},
		{"transport", TransportFailure(0, "timeout"), StatusTransport, ColorFailed},
		{"render", RenderFailure(0, "field"), StatusRender, ColorFailed},
		{"skipped", Skipped(0, "missing"), StatusMissingFields, ColorIgnored},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.o.Status(); got != tt.status {
				t.Errorf("Status() = %q, want %q", got, tt.status)
			}
			if got := tt.o.Color(); got != tt.color {
				t.Errorf("Color() = %q, want %q", got, tt.color)
			}
		})
	}
}

func sampleReport() *Report {
	r := &Report{
		Command: "push_tenant",
		Table:   "TABLE_TENANT",
		Outcomes: []Outcome{
			Success(0, 200),
			ControllerFailure(1, 400, "invalid name"),
			Skipped(2, "missing mandatory field: tn_name"),
			Success(3, 200),
		},
	}
	r.Finalize()
	return r
}

func TestReportCountsAndString(t *testing.T) {
	r := sampleReport()
	if r.Aggregate != PartialSuccess {
		t.Fatalf("Aggregate = %s", r.Aggregate)
	}
	c := r.Counts()
	if c.Succeeded != 2 || c.Failed != 1 || c.Skipped != 1 || c.Total() != 4 {
		t.Errorf("Counts() = %+v", c)
	}

	s := r.String()
	if !strings.Contains(s, "Partial success: 2 succeeded, 1 failed, 1 skipped") {
		t.Errorf("summary missing: %s", s)
	}
	failedAt := strings.Index(s, "Failed:")
	skippedAt := strings.Index(s, "Skipped:")
	if failedAt < 0 || skippedAt < failedAt {
		t.Errorf("failed and skipped sections should be listed separately:\n%s", s)
	}
	if !strings.Contains(s, "row 2: Aborted - missing fields") {
		t.Errorf("skipped row not listed:\n%s", s)
	}
	if !strings.HasPrefix(s, "push_tenant: Partial success") {
		t.Errorf("header should be plain ASCII 'command: summary':\n%s", s)
	}
}

func TestReportAbort(t *testing.T) {
	r := &Report{Command: "push_vrf", Outcomes: []Outcome{Success(0, 200)}}
	r.Abort("401 - Unauthorised")

	if r.Aggregate != AllFailed {
		t.Errorf("Aggregate = %s, want all-failed", r.Aggregate)
	}
	if len(r.Outcomes) != 0 {
		t.Error("aborted run should carry no outcomes")
	}
	if !strings.Contains(r.Summary(), "Script Aborted") {
		t.Errorf("Summary() = %q", r.Summary())
	}
}

func TestWriteMarkdown(t *testing.T) {
	aborted := &Report{Command: "push_vrf"}
	aborted.Abort("login failed")
	g := &Generator{Reports: []*Report{sampleReport(), aborted}}

	path := filepath.Join(t.TempDir(), "out", "report.md")
	if err := g.WriteMarkdown(path); err != nil {
		t.Fatalf("WriteMarkdown() failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	md := string(data)
	for _, want := range []string{
		"| push_tenant | TABLE_TENANT | Partial success | 2 | 1 | 1 |",
		"| push_vrf |  | Aborted |",
		"## Failures",
		"push_tenant row 1 (): 400 invalid name",
		"### push_vrf\nlogin failed",
		"# acipush Report - ",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.ContainsRune(md, '\u2014') {
		t.Errorf("markdown should not contain an em-dash:\n%s", md)
	}
}

func TestWriteJUnit(t *testing.T) {
	aborted := &Report{Command: "push_vrf"}
	aborted.Abort("login failed")
	g := &Generator{Reports: []*Report{sampleReport(), aborted}}

	path := filepath.Join(t.TempDir(), "junit.xml")
	if err := g.WriteJUnit(path); err != nil {
		t.Fatalf("WriteJUnit() failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var suites junitTestSuites
	if err := xml.Unmarshal(data, &suites); err != nil {
		t.Fatalf("invalid XML: %v", err)
	}
	if len(suites.Suites) != 2 {
		t.Fatalf("got %d suites, want 2", len(suites.Suites))
	}
	s := suites.Suites[0]
	if s.Tests != 4 || s.Failures != 1 || s.Skipped != 1 {
		t.Errorf("suite counts tests=%d failures=%d skipped=%d", s.Tests, s.Failures, s.Skipped)
	}
	if suites.Suites[1].Errors != 1 {
		t.Errorf("aborted suite should have one error, got %d", suites.Suites[1].Errors)
	}
}

func TestWriteJSON(t *testing.T) {
	g := &Generator{Reports: []*Report{sampleReport()}}
	path := filepath.Join(t.TempDir(), "report.json")
	if err := g.WriteJSON(path); err != nil {
		t.Fatalf("WriteJSON() failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"aggregate": "partial-success"`) {
		t.Errorf("unexpected JSON:\n%s", data)
	}
}

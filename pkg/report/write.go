package report

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DateTimeFormat is used for timestamps in written reports.
const DateTimeFormat = "2006-01-02 15:04:05"

// Generator writes reports for one or more runs.
type Generator struct {
	Reports []*Report
}

// WriteMarkdown writes a markdown report to the given path.
func (g *Generator) WriteMarkdown(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "# acipush Report - %s\n\n", time.Now().Format(DateTimeFormat))

	fmt.Fprintln(f, "| Command | Table | Result | Succeeded | Failed | Skipped | Duration |")
	fmt.Fprintln(f, "|---------|-------|--------|-----------|--------|---------|----------|")
	for _, r := range g.Reports {
		c := r.Counts()
		result := r.Aggregate.Message()
		if r.Aborted {
			result = "Aborted"
		}
		fmt.Fprintf(f, "| %s | %s | %s | %d | %d | %d | %s |\n",
			r.Command, r.Table, result, c.Succeeded, c.Failed, c.Skipped,
			r.Duration.Round(time.Millisecond))
	}

	hasFailures := false
	for _, r := range g.Reports {
		if r.Aborted {
			if !hasFailures {
				fmt.Fprintf(f, "\n## Failures\n\n")
				hasFailures = true
			}
			fmt.Fprintf(f, "### %s\n%s\n\n", r.Command, r.AbortReason)
			continue
		}
		for _, o := range r.Outcomes {
			if o.Kind != KindFailure {
				continue
			}
			if !hasFailures {
				fmt.Fprintf(f, "\n## Failures\n\n")
				hasFailures = true
			}
			fmt.Fprintf(f, "- %s row %d (%s): %s %s\n", r.Command, o.Index, o.Ref, o.Status(), o.Detail)
		}
	}

	return nil
}

// WriteJSON writes the reports as indented JSON.
func (g *Generator) WriteJSON(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(g.Reports, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// WriteJUnit writes a JUnit XML report for CI integration. Each command is
// a suite and each row a test case.
func (g *Generator) WriteJUnit(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	suites := junitTestSuites{}

	for _, r := range g.Reports {
		suite := junitTestSuite{
			Name: r.Command,
			Time: r.Duration.Seconds(),
		}

		// Aborted run: a single errored case for the whole command
		if r.Aborted {
			suite.Tests = 1
			suite.Errors = 1
			suite.Cases = append(suite.Cases, junitTestCase{
				Name:      "login",
				ClassName: r.Command,
				Error:     &junitError{Message: r.AbortReason, Type: "auth"},
			})
			suites.Suites = append(suites.Suites, suite)
			continue
		}

		for _, o := range r.Outcomes {
			suite.Tests++
			tc := junitTestCase{
				Name:      fmt.Sprintf("row %d", o.Index),
				ClassName: r.Command,
				Time:      o.Duration.Seconds(),
			}
			if o.Ref != "" {
				tc.Name += " " + o.Ref
			}

			switch o.Kind {
			case KindFailure:
				suite.Failures++
				tc.Failure = &junitFailure{
					Message: o.Status() + " " + o.Detail,
					Type:    string(o.Failure),
				}
			case KindSkipped:
				suite.Skipped++
				tc.Skipped = &junitSkipped{Message: o.Detail}
			}

			suite.Cases = append(suite.Cases, tc)
		}

		suites.Suites = append(suites.Suites, suite)
	}

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, append([]byte(xml.Header), data...), 0o644)
}

// JUnit XML types

type junitTestSuites struct {
	XMLName xml.Name         `xml:"testsuites"`
	Suites  []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Errors   int             `xml:"errors,attr"`
	Skipped  int             `xml:"skipped,attr"`
	Time     float64         `xml:"time,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
	Skipped   *junitSkipped `xml:"skipped,omitempty"`
	Error     *junitError   `xml:"error,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}

type junitSkipped struct {
	Message string `xml:"message,attr"`
}

type junitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}

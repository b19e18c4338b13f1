package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/newtron-network/acipush/pkg/cli"
	"github.com/newtron-network/acipush/pkg/report"
)

// Console prints one line per outcome.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole writes to w, or stdout when w is nil.
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w}
}

func (c *Console) WriteOutcome(_ context.Context, ref string, o report.Outcome) error {
	line := fmt.Sprintf("  %s %s", cli.DotPad(ref, 32), cli.Hex(o.Color(), o.Status()))
	if o.Detail != "" {
		line += " " + cli.Dim(o.Detail)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.w, line)
	return err
}

func (c *Console) WriteRunSummary(_ context.Context, command string, agg report.Aggregate, message string) error {
	var status string
	switch agg {
	case report.AllSucceeded:
		status = cli.Green(message)
	case report.PartialSuccess:
		status = cli.Yellow(message)
	default:
		status = cli.Red(message)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "%s: %s\n", cli.Bold(command), status)
	return err
}

// Package push drives a command run: it reads the command's table, validates
// and renders each row, submits the valid ones through a single controller
// session and folds the results into a report.
package push

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/newtron-network/acipush/pkg/apic"
	"github.com/newtron-network/acipush/pkg/audit"
	"github.com/newtron-network/acipush/pkg/render"
	"github.com/newtron-network/acipush/pkg/report"
	"github.com/newtron-network/acipush/pkg/row"
	"github.com/newtron-network/acipush/pkg/schema"
	"github.com/newtron-network/acipush/pkg/sink"
	"github.com/newtron-network/acipush/pkg/table"
	"github.com/newtron-network/acipush/pkg/util"
)

// Config is the explicit configuration of a run.
type Config struct {
	User     string
	Password string

	// Workers bounds concurrent submissions; values below 1 mean one.
	Workers int

	// APIC holds the controller address and connection options.
	APIC apic.Config
}

// Pusher runs push commands against one controller.
type Pusher struct {
	cfg      Config
	registry *schema.Registry
	tables   table.Source
	sink     sink.Sink
}

// New returns a pusher. A nil sink discards outcomes.
func New(cfg Config, registry *schema.Registry, tables table.Source, out sink.Sink) *Pusher {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if out == nil {
		out = sink.Discard{}
	}
	return &Pusher{cfg: cfg, registry: registry, tables: tables, sink: out}
}

// job is a rendered row waiting for submission.
type job struct {
	command string
	slot    int
	n       row.Normalized
	res     *render.Result
}

// Run executes command. Unknown commands and unreadable tables are returned
// as errors before any network call. Every other failure is carried by the
// report: a failed login aborts the run with no row processed, row failures
// are recorded per row and the run continues.
func (p *Pusher) Run(ctx context.Context, command string) (*report.Report, error) {
	s, rows, err := p.load(ctx, command)
	if err != nil {
		return nil, err
	}

	r := &report.Report{
		RunID:         uuid.NewString(),
		Command:       command,
		Table:         s.Table,
		ActionMessage: s.ActionMessage,
		Controller:    p.cfg.APIC.Controller,
		Started:       time.Now(),
	}
	defer p.audit(r, true)
	log := util.WithRun(r.RunID, command)

	client, err := apic.NewClient(p.cfg.APIC)
	if err != nil {
		p.abort(ctx, r, err)
		return r, nil
	}
	defer client.Close()

	session, err := client.Login(ctx, p.cfg.User, p.cfg.Password)
	if err != nil {
		p.abort(ctx, r, err)
		return r, nil
	}
	log.Infof("%s: %d rows from %s", s.ActionMessage, len(rows), s.Table)

	renderer := render.New(p.cfg.APIC.Controller)
	outcomes := make([]report.Outcome, len(rows))

	var g errgroup.Group
	g.SetLimit(p.cfg.Workers)

	for i, raw := range rows {
		n := row.Normalize(raw, s)
		if !n.Valid {
			util.WithRow(command, n.Index).Warnf("skipped: %s", n.Reason)
			outcomes[i] = p.record(ctx, command, n, "", report.Skipped(n.Index, n.Reason))
			continue
		}

		res, err := renderer.Render(&n, s)
		if err != nil {
			util.WithRow(command, n.Index).Errorf("render failed: %v", err)
			outcomes[i] = p.record(ctx, command, n, "", report.RenderFailure(n.Index, err.Error()))
			continue
		}

		j := job{command: command, slot: i, n: n, res: res}
		g.Go(func() error {
			outcomes[j.slot] = p.submit(ctx, session, j)
			return nil
		})
	}
	g.Wait()

	r.Outcomes = outcomes
	r.Duration = time.Since(r.Started)
	r.Finalize()
	log.Info(r.Summary())

	if err := p.sink.WriteRunSummary(ctx, command, r.Aggregate, r.Summary()); err != nil {
		log.Warnf("writing run summary: %v", err)
	}
	return r, nil
}

func (p *Pusher) load(ctx context.Context, command string) (*schema.EntitySchema, []row.Raw, error) {
	s, err := p.registry.Lookup(command)
	if err != nil {
		return nil, nil, err
	}
	rows, err := p.tables.Rows(ctx, s.Table)
	if err != nil {
		return nil, nil, fmt.Errorf("reading table %s for %s: %w", s.Table, command, err)
	}
	return s, rows, nil
}

func (p *Pusher) submit(ctx context.Context, session *apic.Session, j job) report.Outcome {
	log := util.WithRow(j.command, j.n.Index)
	log.Debugf("POST %s", j.res.URI)

	sr := session.Submit(ctx, j.res.URI, j.res.Body)

	var o report.Outcome
	var ce *util.ControllerError
	switch {
	case sr.OK():
		o = report.Success(j.n.Index, sr.StatusCode)
	case errors.As(sr.Err, &ce):
		o = report.ControllerFailure(j.n.Index, ce.StatusCode, ce.Text)
	default:
		o = report.TransportFailure(j.n.Index, sr.Err.Error())
	}
	o.Duration = sr.Duration
	if o.Kind != report.KindSuccess {
		log.Warnf("%s: %s", o.Status(), o.Detail)
	}
	return p.record(ctx, j.command, j.n, j.res.URI, o)
}

// record fills in the row's location and reports the outcome to the sink
// right away.
func (p *Pusher) record(ctx context.Context, command string, n row.Normalized, uri string, o report.Outcome) report.Outcome {
	o.Line = n.Line
	o.Ref = n.Ref
	o.URI = uri
	if err := p.sink.WriteOutcome(ctx, n.Ref, o); err != nil {
		util.WithRow(command, n.Index).Warnf("writing status to %s: %v", n.Ref, err)
	}
	return o
}

// abort ends a run that could not open a session.
func (p *Pusher) abort(ctx context.Context, r *report.Report, err error) {
	reason := err.Error()
	var ae *apic.AuthError
	if errors.As(err, &ae) {
		headline, advice := ae.Hint()
		reason = headline + ": " + advice
	}
	r.AuthError = err
	r.Abort(reason)
	r.Duration = time.Since(r.Started)

	log := util.WithRun(r.RunID, r.Command)
	log.Errorf("aborted: %v", err)
	if werr := p.sink.WriteRunSummary(ctx, r.Command, r.Aggregate, r.Summary()); werr != nil {
		log.Warnf("writing run summary: %v", werr)
	}
}

func (p *Pusher) audit(r *report.Report, execute bool) {
	event := audit.NewEvent(p.cfg.User, p.cfg.APIC.Controller, r.Command).
		WithExecuteMode(execute).
		WithReport(r)
	if err := audit.Log(event); err != nil {
		util.WithCommand(r.Command).Warnf("audit: %v", err)
	}
}

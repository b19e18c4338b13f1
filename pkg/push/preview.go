package push

import (
	"context"
	"time"

	"github.com/newtron-network/acipush/pkg/render"
	"github.com/newtron-network/acipush/pkg/report"
	"github.com/newtron-network/acipush/pkg/row"
	"github.com/newtron-network/acipush/pkg/util"
)

// Preview is what a row would submit. Invalid rows carry the reason they
// would be skipped; unrenderable rows carry the render error.
type Preview struct {
	Index  int    `json:"index"`
	Line   int    `json:"line,omitempty"`
	Ref    string `json:"ref,omitempty"`
	URI    string `json:"uri,omitempty"`
	Body   string `json:"body,omitempty"`
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Preview normalizes and renders every row of command without contacting
// the controller or writing to the sink.
func (p *Pusher) Preview(ctx context.Context, command string) ([]Preview, error) {
	s, rows, err := p.load(ctx, command)
	if err != nil {
		return nil, err
	}

	renderer := render.New(p.cfg.APIC.Controller)
	previews := make([]Preview, 0, len(rows))
	outcomes := make([]report.Outcome, 0, len(rows))
	for _, raw := range rows {
		n := row.Normalize(raw, s)
		pv := Preview{Index: n.Index, Line: n.Line, Ref: n.Ref}
		if !n.Valid {
			pv.Reason = n.Reason
			previews = append(previews, pv)
			outcomes = append(outcomes, report.Skipped(n.Index, n.Reason))
			continue
		}
		res, err := renderer.Render(&n, s)
		if err != nil {
			pv.Reason = err.Error()
			previews = append(previews, pv)
			outcomes = append(outcomes, report.RenderFailure(n.Index, err.Error()))
			continue
		}
		pv.URI = res.URI
		pv.Body = string(res.Body)
		pv.Valid = true
		previews = append(previews, pv)
	}

	util.WithCommand(command).Debugf("previewed %d rows", len(previews))

	r := &report.Report{Command: command, Table: s.Table, Outcomes: outcomes, Started: time.Now()}
	r.Finalize()
	p.audit(r, false)
	return previews, nil
}

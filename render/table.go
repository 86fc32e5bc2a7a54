package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/kbukum/dagpipe/dag"
)

// Mode controls the table output format.
type Mode int

const (
	ASCII    Mode = iota // Fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

// Plan renders the execution order of p: one row per node with its kind,
// upstream nodes, and role in the pipeline.
func Plan(p *dag.Pipeline, m Mode) string {
	roles := rolesOf(p)
	w := newWriter(m)
	w.AppendHeader(table.Row{"#", "Node", "Kind", "Inputs", "Role"})
	for i, n := range p.Nodes() {
		inputs := make([]string, len(n.Inputs()))
		for j, in := range n.Inputs() {
			inputs[j] = in.Name()
		}
		w.AppendRow(table.Row{i + 1, n.Name(), string(kindOf(n)), strings.Join(inputs, ", "), roleString(roles[n.ID()])})
	}
	w.SetColumnConfigs([]table.ColumnConfig{{Number: 1, Align: text.AlignRight}})
	return renderAs(w, m)
}

// Run renders the steps of one pipeline run with a summary footer.
func Run(res *dag.Result, m Mode) string {
	w := newWriter(m)
	w.AppendHeader(table.Row{"#", "Node", "Status", "Duration", "Output"})
	for i, s := range res.Steps {
		out := fmt.Sprint(s.Output)
		if s.Error != nil {
			out = s.Error.Error()
		}
		w.AppendRow(table.Row{i + 1, s.Name, string(s.Status), s.Duration.Round(time.Microsecond).String(), out})
	}
	summary := "completed"
	if res.Stopped != "" {
		summary = "stopped at " + res.Stopped
	}
	if n := len(res.Steps); n > 0 && res.Steps[n-1].Status == dag.StatusFailed {
		summary = "failed"
	}
	w.AppendFooter(table.Row{"", res.RunID.String(), summary, res.Duration.Round(time.Microsecond).String(), ""})
	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 5, WidthMax: 60},
	})
	w.Style().Format.Footer = text.FormatDefault
	return renderAs(w, m)
}

func newWriter(m Mode) table.Writer {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	return w
}

func renderAs(w table.Writer, m Mode) string {
	if m == Markdown {
		return w.RenderMarkdown()
	}
	return w.Render()
}

func roleString(r role) string {
	var parts []string
	if r.input {
		parts = append(parts, "input")
	}
	if r.output {
		parts = append(parts, "output")
	}
	if r.stop {
		parts = append(parts, "stop")
	}
	return strings.Join(parts, ", ")
}

// Package output prints human-readable summaries for dynapipe.
//
// The generated pipeline document owns stdout, because it is usually piped
// straight into `buildkite-agent pipeline upload`. Everything in this package
// therefore goes to stderr by default. Styling uses lipgloss, which drops
// colors automatically when the writer is not a terminal.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"dynapipe/internal/pipeline"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	keyStyle    = lipgloss.NewStyle().Bold(true)
	kindStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	gateStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// Printer writes styled summaries.
type Printer struct {
	out io.Writer
}

// NewPrinter returns a Printer writing to stderr.
func NewPrinter() *Printer {
	return &Printer{out: os.Stderr}
}

// NewPrinterWithWriter returns a Printer writing to w. Tests use this with a
// bytes.Buffer.
func NewPrinterWithWriter(w io.Writer) *Printer {
	return &Printer{out: w}
}

// Summary lists the generated steps, one per line, followed by totals.
func (p *Printer) Summary(label string, doc pipeline.Document) {
	fmt.Fprintln(p.out, headerStyle.Render(label))
	for i, s := range doc.Steps {
		line := fmt.Sprintf("  %d. %s %s", i+1, keyStyle.Render(s.Key), kindStyle.Render("("+stepKind(s)+")"))
		if s.Trigger != "" {
			line += " → " + s.Trigger
		}
		if s.If != "" {
			line += " " + gateStyle.Render("if "+s.If)
		}
		fmt.Fprintln(p.out, line)
	}
	fmt.Fprintln(p.out, okStyle.Render(fmt.Sprintf("✓ %d step(s), %d global env var(s)", len(doc.Steps), len(doc.Env))))
}

// ScenarioList prints the scenario names with their descriptions.
func (p *Printer) ScenarioList(items []Item) {
	fmt.Fprintln(p.out, headerStyle.Render("Scenarios"))
	for _, it := range items {
		fmt.Fprintf(p.out, "  %s  %s\n", keyStyle.Render(it.Name), it.Description)
	}
}

// Item is a named row for [Printer.ScenarioList].
type Item struct {
	Name        string
	Description string
}

// Error prints err in the error style.
func (p *Printer) Error(err error) {
	fmt.Fprintln(p.out, errorStyle.Render("✗ "+err.Error()))
}

func stepKind(s pipeline.StepDocument) string {
	switch {
	case s.Trigger != "" || s.Build != nil:
		return string(pipeline.StepTrigger)
	case s.Command != "":
		return string(pipeline.StepCommand)
	}
	return string(pipeline.StepGroup)
}

package linear

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/cicd/internal/core/domain"
	"go.trai.ch/cicd/internal/ui/style"
)

// Describer prints a validated pipeline: its stages, actions, artifact graph and hints.
type Describer struct {
	heading lipgloss.Style
	faint   lipgloss.Style
}

// NewDescriber creates a Describer rendering for w with the given color profile.
func NewDescriber(w io.Writer, profile termenv.Profile) *Describer {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(profile)
	return &Describer{
		heading: r.NewStyle().Bold(true).Foreground(style.Accent),
		faint:   r.NewStyle().Foreground(style.Muted),
	}
}

// Describe writes the description of p, declared from params, to w.
// It assumes p.Validate() has been called and returned nil.
func (d *Describer) Describe(w io.Writer, p *domain.Pipeline, params domain.Params) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", d.heading.Render(p.Name), d.faint.Render(fmt.Sprintf("%s@%s %s %s/%s",
		params.Repo.FullName(), params.Repo.Branch, style.Arrow, orUnset(params.Env.Account), orUnset(params.Env.Region))))

	b.WriteString("\n" + d.heading.Render("Stages") + "\n")
	for pos, stage := range p.Walk() {
		fmt.Fprintf(&b, "  %d  %s\n", pos, stage.Name)
		for i := range stage.Actions {
			b.WriteString("       " + d.describeAction(&stage.Actions[i]) + "\n")
		}
	}

	artifacts := p.Artifacts()
	width := 0
	for _, a := range artifacts {
		width = max(width, len(a.String()))
	}

	b.WriteString("\n" + d.heading.Render("Artifacts") + "\n")
	for _, a := range artifacts {
		producer, _ := p.Producer(a)
		line := producer.Action.String()
		if consumers := p.Consumers(a); len(consumers) > 0 {
			names := make([]string, len(consumers))
			for i, c := range consumers {
				names[i] = c.Action.String()
			}
			line += " " + style.Arrow + " " + strings.Join(names, ", ")
		}
		fmt.Fprintf(&b, "  %-*s  %s\n", width, a.String(), line)
	}

	if pairs := p.IndependentStages(); len(pairs) > 0 {
		b.WriteString("\n" + d.heading.Render("Hints") + "\n")
		for _, pair := range pairs {
			fmt.Fprintf(&b, "  %s and %s do not depend on each other; set pipeline.parallelBuilds to run them in one stage\n",
				pair.First, pair.Second)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (d *Describer) describeAction(a *domain.Action) string {
	parts := []string{a.Name.String(), d.faint.Render(a.Kind.String())}

	var inputs []string
	for _, in := range a.Inputs {
		inputs = append(inputs, in.String())
	}
	if a.Deploy != nil && !a.Deploy.TemplatePath.Artifact.IsZero() {
		inputs = append(inputs, a.Deploy.TemplatePath.String())
	}
	if len(inputs) > 0 {
		parts = append(parts, "in: "+strings.Join(inputs, ", "))
	}

	if len(a.Outputs) > 0 {
		outputs := make([]string, len(a.Outputs))
		for i, out := range a.Outputs {
			outputs[i] = out.String()
		}
		parts = append(parts, "out: "+strings.Join(outputs, ", "))
	}

	switch {
	case a.Build != nil:
		parts = append(parts, d.faint.Render(a.Build.ProjectID))
	case a.Deploy != nil:
		parts = append(parts, d.faint.Render("stack "+a.Deploy.StackName))
	}
	return strings.Join(parts, "  ")
}

func orUnset(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}

package app

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/muesli/termenv"
	"github.com/samber/lo"
	"go.trai.ch/cicd/internal/adapters/cfn"
	"go.trai.ch/cicd/internal/core/domain"
	"go.trai.ch/cicd/internal/core/ports"
	"go.trai.ch/cicd/internal/ui/output"
	"go.trai.ch/cicd/internal/ui/style"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// DefaultDeployTimeout bounds the wait for a stack operation.
const DefaultDeployTimeout = 30 * time.Minute

// DeployOptions configuration for the Deploy method.
type DeployOptions struct {
	Stages  []string
	Wait    bool
	Timeout time.Duration
}

// DeployOutcome is the result of deploying one deployment stage.
type DeployOutcome struct {
	Stage     string                 `json:"stage"`
	StackName string                 `json:"stack"`
	StackID   string                 `json:"stackId,omitempty"`
	Operation domain.DeployOperation `json:"operation,omitempty"`
	Account   string                 `json:"account,omitempty"`
	Error     string                 `json:"error,omitempty"`

	err error
}

// Deploy synthesizes every selected deployment stage, writes the assembly and creates or
// updates each stack. A failing stage does not stop the others; every failure is reported.
func (a *App) Deploy(ctx context.Context, opts DeployOptions) ([]DeployOutcome, error) {
	project, err := a.load(opts.Stages)
	if err != nil {
		return nil, err
	}
	if err := checkTargets(project); err != nil {
		return nil, err
	}

	tracer, done := a.startRun()
	defer done()

	artifacts, err := a.synthAll(ctx, tracer, project, cfn.FormatJSON)
	if err != nil {
		return nil, err
	}
	if _, err := a.persist(ctx, tracer, project.Output, artifacts); err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultDeployTimeout
	}

	outcomes := make([]DeployOutcome, len(artifacts))
	var g errgroup.Group
	for i, art := range artifacts {
		g.Go(func() error {
			outcomes[i] = a.deployOne(ctx, tracer, art, opts.Wait, timeout)
			return nil
		})
	}
	_ = g.Wait()

	var result *multierror.Error
	for _, o := range outcomes {
		if o.err != nil {
			result = multierror.Append(result, o.err)
		}
	}

	if err := a.printDeploy(outcomes); err != nil {
		return outcomes, err
	}
	if err := result.ErrorOrNil(); err != nil {
		return outcomes, zerr.Wrap(err, domain.ErrDeployFailed.Error())
	}
	return outcomes, nil
}

func (a *App) deployOne(
	ctx context.Context,
	tracer ports.Tracer,
	art *domain.StackArtifact,
	wait bool,
	timeout time.Duration,
) DeployOutcome {
	ctx, span := tracer.Start(ctx, "deploy",
		ports.WithAttribute(ports.StageAttribute, art.StageName),
		ports.WithAttribute(ports.StackAttribute, art.StackName),
		ports.WithAttribute("region", art.Env.Region),
	)
	defer span.End()

	outcome := DeployOutcome{Stage: art.StageName, StackName: art.StackName}
	res, err := a.deployer.Deploy(ctx, domain.DeployRequest{
		StackName:    art.StackName,
		Env:          art.Env,
		TemplateBody: string(art.Body),
		Wait:         wait,
		Timeout:      timeout,
	})
	if err != nil {
		err = zerr.With(err, "stage", art.StageName)
		span.RecordError(err)
		outcome.err = err
		outcome.Error = err.Error()
		return outcome
	}

	span.SetAttribute("operation", string(res.Operation))
	outcome.StackID = res.StackID
	outcome.Operation = res.Operation
	outcome.Account = res.Account
	return outcome
}

// checkTargets rejects selections where two stages would deploy the same stack into the
// same account and region. An empty account or region resolves from the default
// credentials, so two empty values count as equal.
func checkTargets(project *domain.Project) error {
	groups := lo.GroupBy(project.Environments, func(p domain.Params) string {
		return p.Env.Account + "/" + p.Env.Region
	})

	targets := lo.Keys(groups)
	slices.Sort(targets)
	for _, target := range targets {
		envs := groups[target]
		if len(envs) < 2 {
			continue
		}
		stages := lo.Map(envs, func(p domain.Params, _ int) string { return p.StageName })
		err := zerr.With(domain.ErrDuplicateTarget, "stack", project.Pipeline.StackName)
		err = zerr.With(err, "target", target)
		return zerr.With(err, "stages", strings.Join(stages, ", "))
	}
	return nil
}

func (a *App) printDeploy(outcomes []DeployOutcome) error {
	if a.json {
		return a.printJSON(outcomes)
	}

	out := output.NewWithProfile(a.stdout, a.profile())
	for _, o := range outcomes {
		if o.err != nil {
			cross := out.String(style.Cross).Foreground(termenv.ANSIRed).String()
			_, _ = fmt.Fprintf(a.stdout, "%s %s  %s failed\n", cross, o.Stage, o.StackName)
			continue
		}
		check := out.String(style.Check).Foreground(termenv.ANSIGreen).String()
		verb := deployVerb(o.Operation)
		_, _ = fmt.Fprintf(a.stdout, "%s %s  %s %s\n", check, o.Stage, o.StackName, verb)
	}
	return nil
}

func deployVerb(op domain.DeployOperation) string {
	switch op {
	case domain.DeployCreate:
		return "created"
	case domain.DeployUpdate:
		return "updated"
	case domain.DeployNoop:
		return "up to date"
	default:
		return string(op)
	}
}

// DiffOptions configuration for the Diff method.
type DiffOptions struct {
	Stages []string
	// Fail returns ErrDriftDetected when any stack differs.
	Fail bool
}

// Diff compares the deployed template of every selected stage with the synthesized one.
func (a *App) Diff(ctx context.Context, opts DiffOptions) ([]domain.TemplateDiff, error) {
	project, err := a.load(opts.Stages)
	if err != nil {
		return nil, err
	}

	tracer, done := a.startRun()
	defer done()

	artifacts, err := a.synthAll(ctx, tracer, project, cfn.FormatJSON)
	if err != nil {
		return nil, err
	}

	diffs := make([]domain.TemplateDiff, len(artifacts))
	g, gctx := errgroup.WithContext(ctx)
	for i, art := range artifacts {
		g.Go(func() error {
			d, err := a.diffOne(gctx, tracer, art)
			if err != nil {
				return err
			}
			diffs[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := a.printDiffs(diffs); err != nil {
		return diffs, err
	}
	if opts.Fail && lo.SomeBy(diffs, func(d domain.TemplateDiff) bool { return !d.Empty() }) {
		return diffs, domain.ErrDriftDetected
	}
	return diffs, nil
}

func (a *App) diffOne(ctx context.Context, tracer ports.Tracer, art *domain.StackArtifact) (domain.TemplateDiff, error) {
	ctx, span := tracer.Start(ctx, "diff",
		ports.WithAttribute(ports.StageAttribute, art.StageName),
		ports.WithAttribute(ports.StackAttribute, art.StackName),
	)
	defer span.End()

	deployed, found, err := a.deployer.CurrentTemplate(ctx, art.StackName, art.Env)
	if err != nil {
		err = zerr.With(err, "stage", art.StageName)
		span.RecordError(err)
		return domain.TemplateDiff{}, err
	}

	unified, added, removed := a.differ.Diff(deployed, string(art.Body))
	span.SetAttribute("added", added)
	span.SetAttribute("removed", removed)

	return domain.TemplateDiff{
		StackName: art.StackName,
		StageName: art.StageName,
		Exists:    found,
		Added:     added,
		Removed:   removed,
		Unified:   unified,
	}, nil
}

func (a *App) printDiffs(diffs []domain.TemplateDiff) error {
	if a.json {
		return a.printJSON(diffs)
	}

	out := output.NewWithProfile(a.stdout, a.profile())
	for i := range diffs {
		d := &diffs[i]
		header := out.String(fmt.Sprintf("Stack %s (%s)", d.StackName, d.StageName)).Bold().String()
		_, _ = fmt.Fprintln(a.stdout, header)

		switch {
		case !d.Exists:
			_, _ = fmt.Fprintf(a.stdout, "  not deployed, %d lines to create\n", d.Added)
		case d.Empty():
			_, _ = fmt.Fprintln(a.stdout, "  no differences")
			continue
		default:
			_, _ = fmt.Fprintf(a.stdout, "  %s%d %s%d\n", style.Plus, d.Added, style.Minus, d.Removed)
		}

		if d.Exists {
			for line := range strings.Lines(d.Unified) {
				_, _ = fmt.Fprintln(a.stdout, colorDiffLine(out, strings.TrimSuffix(line, "\n")))
			}
		}
	}
	return nil
}

func colorDiffLine(out *termenv.Output, line string) string {
	switch {
	case strings.HasPrefix(line, style.Plus+" "):
		return out.String(line).Foreground(termenv.ANSIGreen).String()
	case strings.HasPrefix(line, style.Minus+" "):
		return out.String(line).Foreground(termenv.ANSIRed).String()
	default:
		return line
	}
}

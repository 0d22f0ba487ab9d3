// Package app implements the application layer for cicd.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/muesli/termenv"
	"github.com/samber/lo"
	"go.trai.ch/cicd/internal/adapters/assembly"
	"go.trai.ch/cicd/internal/adapters/cfn"
	"go.trai.ch/cicd/internal/adapters/detector"
	"go.trai.ch/cicd/internal/adapters/linear"
	"go.trai.ch/cicd/internal/adapters/telemetry"
	"go.trai.ch/cicd/internal/core/domain"
	"go.trai.ch/cicd/internal/core/ports"
	"go.trai.ch/cicd/internal/engine/topology"
	"go.trai.ch/cicd/internal/ui/output"
	"go.trai.ch/cicd/internal/ui/style"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	builder      *topology.Builder
	synthesizer  ports.Synthesizer
	opener       ports.AssemblyStoreOpener
	deployer     ports.StackDeployer
	differ       ports.TemplateDiffer
	watcher      ports.Watcher
	logger       ports.Logger
	tracer       ports.Tracer

	stdout   io.Writer
	stderr   io.Writer
	json     bool
	progress bool
	mode     detector.OutputMode
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	builder *topology.Builder,
	synthesizer ports.Synthesizer,
	opener ports.AssemblyStoreOpener,
	deployer ports.StackDeployer,
	differ ports.TemplateDiffer,
	watcher ports.Watcher,
	log ports.Logger,
	tracer ports.Tracer,
) *App {
	return &App{
		configLoader: loader,
		builder:      builder,
		synthesizer:  synthesizer,
		opener:       opener,
		deployer:     deployer,
		differ:       differ,
		watcher:      watcher,
		logger:       log,
		tracer:       tracer,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
}

// WithOutput redirects results to stdout and progress to stderr.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// GlobalOptions are the settings shared by every command.
type GlobalOptions struct {
	// JSON prints results as JSON, logs as JSON lines and disables progress output.
	JSON bool
	// DebugLog is the path of the debug log file. Empty disables it.
	DebugLog string
	// OutputMode forces "interactive" or "ci" output. Empty auto-detects.
	OutputMode string
}

type jsonLogger interface {
	SetJSON(enable bool)
}

type debugFileLogger interface {
	EnableDebugFile(path string) error
}

// Configure applies the global options. It must be called before any command runs.
func (a *App) Configure(opts GlobalOptions) error {
	a.json = opts.JSON
	a.progress = !opts.JSON
	a.mode = detector.ResolveMode(detector.DetectEnvironment(), opts.OutputMode)

	if l, ok := a.logger.(jsonLogger); ok {
		l.SetJSON(opts.JSON || detector.InCI())
	}
	if opts.DebugLog != "" {
		if l, ok := a.logger.(debugFileLogger); ok {
			if err := l.EnableDebugFile(opts.DebugLog); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close releases the resources held by the logger.
func (a *App) Close() error {
	if c, ok := a.logger.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// profile returns the color profile matching the output mode.
func (a *App) profile() func() termenv.Profile {
	if a.mode == detector.ModeCI {
		return output.ColorProfileANSI
	}
	return output.ColorProfile
}

// startRun installs the progress renderer and returns the tracer to use for this run
// together with its shutdown function.
func (a *App) startRun() (ports.Tracer, func()) {
	if !a.progress {
		return a.tracer, func() {}
	}

	// Spans reach the renderer through the bridge registered on the global provider.
	renderer := linear.NewRenderer(a.stderr, a.profile())
	shutdown := telemetry.Install(telemetry.NewBridge(renderer))
	tracer := telemetry.NewOTelTracer(telemetry.InstrumentationName)

	return tracer, func() {
		_ = shutdown(context.Background())
	}
}

func (a *App) load(stages []string) (*domain.Project, error) {
	project, err := a.configLoader.Load(".", stages)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return project, nil
}

// SynthOptions configuration for the Synth method.
type SynthOptions struct {
	Stages []string
	// Output overrides the assembly location of the project file.
	Output string
	// Format is "json" (default) or "yaml".
	Format string
	// Stdout prints the templates instead of writing the assembly.
	Stdout bool
}

// SynthResult describes one synthesized template.
type SynthResult struct {
	Stage     string `json:"stage"`
	StackName string `json:"stack"`
	Location  string `json:"location,omitempty"`
	File      string `json:"file,omitempty"`
	Hash      string `json:"hash"`
	Written   bool   `json:"written"`
	Resources int    `json:"resources"`
}

// Synth renders the pipeline of every selected deployment stage into a CloudFormation
// template and writes the templates into the cloud assembly.
func (a *App) Synth(ctx context.Context, opts SynthOptions) ([]SynthResult, error) {
	project, err := a.load(opts.Stages)
	if err != nil {
		return nil, err
	}
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	tracer, done := a.startRun()
	defer done()

	artifacts, err := a.synthAll(ctx, tracer, project, format)
	if err != nil {
		return nil, err
	}

	if opts.Stdout {
		results := lo.Map(artifacts, func(art *domain.StackArtifact, _ int) SynthResult {
			return newSynthResult(art, assembly.Hash(art.Body), "", "", false)
		})
		return results, a.printTemplates(artifacts)
	}

	location := lo.CoalesceOrEmpty(opts.Output, project.Output)
	results, err := a.persist(ctx, tracer, location, artifacts)
	if err != nil {
		return nil, err
	}
	return results, a.printSynth(results)
}

// synthAll builds and synthesizes every environment concurrently. Artifacts keep the
// order of project.Environments.
func (a *App) synthAll(
	ctx context.Context,
	tracer ports.Tracer,
	project *domain.Project,
	format string,
) ([]*domain.StackArtifact, error) {
	artifacts := make([]*domain.StackArtifact, len(project.Environments))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, params := range project.Environments {
		g.Go(func() error {
			art, err := a.synthesize(ctx, tracer, project.Pipeline, params, format)
			if err != nil {
				return err
			}
			artifacts[i] = art
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func (a *App) synthesize(
	ctx context.Context,
	tracer ports.Tracer,
	opts domain.PipelineOptions,
	params domain.Params,
	format string,
) (*domain.StackArtifact, error) {
	_, span := tracer.Start(ctx, "synth",
		ports.WithAttribute(ports.StageAttribute, params.StageName),
		ports.WithAttribute("format", format),
	)
	defer span.End()

	fail := func(err error) (*domain.StackArtifact, error) {
		if params.StageName != "" {
			err = zerr.With(err, "stage", params.StageName)
		}
		span.RecordError(err)
		return nil, err
	}

	pipeline, err := a.builder.Build(params, opts)
	if err != nil {
		return fail(err)
	}

	stackName := lo.CoalesceOrEmpty(opts.StackName, domain.DefaultStackName)
	tmpl, err := a.synthesizer.Synthesize(pipeline, params, stackName)
	if err != nil {
		return fail(err)
	}

	body, err := a.synthesizer.Encode(tmpl, format)
	if err != nil {
		return fail(err)
	}
	span.SetAttribute("resources", len(tmpl.Resources))

	return &domain.StackArtifact{
		StackName: stackName,
		StageName: params.StageName,
		Env:       params.Env,
		Template:  tmpl,
		Body:      body,
		Format:    format,
	}, nil
}

// persist writes the artifacts into the assembly at location.
func (a *App) persist(
	ctx context.Context,
	tracer ports.Tracer,
	location string,
	artifacts []*domain.StackArtifact,
) ([]SynthResult, error) {
	store, err := a.opener.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := store.Close(); err != nil {
			a.logger.Warn(fmt.Sprintf("failed to close assembly store: %v", err))
		}
	}()

	results := make([]SynthResult, 0, len(artifacts))
	for _, art := range artifacts {
		result, err := a.put(ctx, tracer, store, location, art)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (a *App) put(
	ctx context.Context,
	tracer ports.Tracer,
	store ports.AssemblyStore,
	location string,
	art *domain.StackArtifact,
) (SynthResult, error) {
	ctx, span := tracer.Start(ctx, "store",
		ports.WithAttribute(ports.StageAttribute, art.StageName),
		ports.WithAttribute("location", location),
	)
	defer span.End()

	written, err := store.Put(ctx, art)
	if err != nil {
		err = zerr.With(err, "stage", art.StageName)
		span.RecordError(err)
		return SynthResult{}, err
	}

	hash, file := assembly.Hash(art.Body), art.TemplateFile()
	info, err := store.Get(ctx, art.ID())
	if err != nil {
		span.RecordError(err)
		return SynthResult{}, err
	}
	if info != nil {
		hash, file = info.TemplateHash, info.TemplateFile
	}

	span.SetAttribute("written", written)
	if written {
		a.logger.Debug(fmt.Sprintf("wrote %s (%s)", file, hash))
	} else {
		a.logger.Debug(fmt.Sprintf("%s unchanged (%s)", file, hash))
	}
	return newSynthResult(art, hash, location, file, written), nil
}

func newSynthResult(art *domain.StackArtifact, hash, location, file string, written bool) SynthResult {
	return SynthResult{
		Stage:     art.StageName,
		StackName: art.StackName,
		Location:  location,
		File:      file,
		Hash:      hash,
		Written:   written,
		Resources: len(art.Template.Resources),
	}
}

func (a *App) printSynth(results []SynthResult) error {
	if a.json {
		return a.printJSON(results)
	}

	out := output.NewWithProfile(a.stdout, a.profile())
	for _, r := range results {
		status := ""
		if !r.Written {
			status = out.String(" (unchanged)").Faint().String()
		}
		check := out.String(style.Check).Foreground(termenv.ANSIGreen).String()
		_, _ = fmt.Fprintf(a.stdout, "%s %s  %s %s %s%s\n",
			check, r.Stage, r.StackName, style.Arrow, joinLocation(r.Location, r.File), status)
	}
	return nil
}

func (a *App) printTemplates(artifacts []*domain.StackArtifact) error {
	for i, art := range artifacts {
		if i > 0 && art.Format == cfn.FormatYAML {
			if _, err := io.WriteString(a.stdout, "---\n"); err != nil {
				return err
			}
		}
		if _, err := a.stdout.Write(art.Body); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func normalizeFormat(format string) (string, error) {
	switch strings.ToLower(format) {
	case "", cfn.FormatJSON:
		return cfn.FormatJSON, nil
	case cfn.FormatYAML, "yml":
		return cfn.FormatYAML, nil
	default:
		return "", zerr.With(domain.ErrUnknownFormat, "format", format)
	}
}

// joinLocation joins a file to a directory or a blob URL.
func joinLocation(location, file string) string {
	if strings.Contains(location, "://") {
		return strings.TrimSuffix(location, "/") + "/" + file
	}
	return filepath.Join(location, filepath.FromSlash(file))
}

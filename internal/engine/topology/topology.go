// Package topology declares the fixed continuous delivery pipeline for a deployment stage.
package topology

import (
	"go.trai.ch/cicd/internal/core/domain"
	"go.trai.ch/zerr"
)

// Build environment images and build specification files. The build specification
// contents belong to the repository being built.
const (
	UIBuildImage     = "aws/codebuild/amazonlinux2-x86_64-standard:3.0"
	CDKBuildImage    = "aws/codebuild/standard:5.0"
	UIBuildSpec      = "mobile-build.yml"
	CDKBuildSpec     = "cdk-build.yml"
	ComputeTypeSmall = "BUILD_GENERAL1_SMALL"
)

// Names holds every name derived from a stage name. All of them are pure functions of
// the stage name so repeated declarations produce identical topologies.
type Names struct {
	Pipeline string

	SourceStage   string
	UIBuildStage  string
	CDKBuildStage string
	BuildStage    string
	UpdateStage   string

	SourceAction   string
	UIBuildAction  string
	CDKBuildAction string
	UpdateAction   string

	UIBuildProject  string
	CDKBuildProject string

	SourceOutput   string
	UIBuildOutput  string
	CDKBuildOutput string
}

// NamesFor derives the names for stage s.
func NamesFor(s string) Names {
	return Names{
		Pipeline: "Pipeline-" + s,

		SourceStage:   "source-" + s,
		UIBuildStage:  "UI-build-" + s,
		CDKBuildStage: "CDK-build-" + s,
		BuildStage:    "build-" + s,
		UpdateStage:   "update-" + s,

		SourceAction:   "Pipeline-Source-" + s,
		UIBuildAction:  "Pipeline-Build-UI-" + s,
		CDKBuildAction: "Pipeline-Build-CDK-" + s,
		UpdateAction:   "Pipeline-Update-" + s,

		UIBuildProject:  "UIBuildProject-" + s,
		CDKBuildProject: "CDKBuildProject-" + s,

		SourceOutput:   "source-output-" + s,
		UIBuildOutput:  "UI-Build-Output-" + s,
		CDKBuildOutput: "CDK-build-output-" + s,
	}
}

// Builder declares pipelines from deployment-stage parameters.
type Builder struct{}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build declares and validates the pipeline for the given parameters.
// Parameters are validated first: a missing field fails before any stage is declared.
func (*Builder) Build(params domain.Params, opts domain.PipelineOptions) (*domain.Pipeline, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	stackName := opts.StackName
	if stackName == "" {
		stackName = domain.DefaultStackName
	}

	n := NamesFor(params.StageName)
	sourceOutput := domain.NewInternedString(n.SourceOutput)
	uiBuildOutput := domain.NewInternedString(n.UIBuildOutput)
	cdkBuildOutput := domain.NewInternedString(n.CDKBuildOutput)

	p := domain.NewPipeline(n.Pipeline)
	p.RestartExecutionOnUpdate = opts.RestartExecutionOnUpdate
	p.CrossAccountKeys = opts.CrossAccountKeys

	source := domain.Action{
		Name:    domain.NewInternedString(n.SourceAction),
		Kind:    domain.ActionSource,
		Outputs: []domain.InternedString{sourceOutput},
		Source: &domain.SourceConfig{
			ConnectionARN: params.CodeStarConnection,
			Owner:         params.Repo.Owner,
			Repo:          params.Repo.Name,
			Branch:        params.Repo.Branch,
		},
	}

	uiBuild := domain.Action{
		Name:    domain.NewInternedString(n.UIBuildAction),
		Kind:    domain.ActionBuild,
		Inputs:  []domain.InternedString{sourceOutput},
		Outputs: []domain.InternedString{uiBuildOutput},
		Build: &domain.BuildConfig{
			ProjectID:   n.UIBuildProject,
			BuildSpec:   UIBuildSpec,
			Image:       UIBuildImage,
			ComputeType: ComputeTypeSmall,
		},
	}

	// The infrastructure build reads the source output directly, not the UI build output.
	cdkBuild := domain.Action{
		Name:    domain.NewInternedString(n.CDKBuildAction),
		Kind:    domain.ActionBuild,
		Inputs:  []domain.InternedString{sourceOutput},
		Outputs: []domain.InternedString{cdkBuildOutput},
		Build: &domain.BuildConfig{
			ProjectID:   n.CDKBuildProject,
			BuildSpec:   CDKBuildSpec,
			Image:       CDKBuildImage,
			ComputeType: ComputeTypeSmall,
			Privileged:  true,
		},
	}

	// The template is read from the root of the CDK build output, so cdk-build.yml must
	// publish the stage's assembly directory (base-directory: cdk.out/<stage>).
	update := domain.Action{
		Name: domain.NewInternedString(n.UpdateAction),
		Kind: domain.ActionDeploy,
		Deploy: &domain.DeployConfig{
			StackName:        stackName,
			TemplatePath:     domain.AtPath(cdkBuildOutput, domain.TemplateFileName(stackName)),
			AdminPermissions: true,
		},
	}

	stages := []domain.Stage{
		{Name: domain.NewInternedString(n.SourceStage), Actions: []domain.Action{source}},
	}
	if opts.ParallelBuilds {
		stages = append(stages, domain.Stage{
			Name:    domain.NewInternedString(n.BuildStage),
			Actions: []domain.Action{uiBuild, cdkBuild},
		})
	} else {
		stages = append(stages,
			domain.Stage{Name: domain.NewInternedString(n.UIBuildStage), Actions: []domain.Action{uiBuild}},
			domain.Stage{Name: domain.NewInternedString(n.CDKBuildStage), Actions: []domain.Action{cdkBuild}},
		)
	}
	stages = append(stages, domain.Stage{
		Name:    domain.NewInternedString(n.UpdateStage),
		Actions: []domain.Action{update},
	})

	for _, s := range stages {
		if err := p.AddStage(s); err != nil {
			return nil, err
		}
	}

	if err := p.Validate(); err != nil {
		return nil, zerr.With(err, "pipeline", n.Pipeline)
	}
	return p, nil
}

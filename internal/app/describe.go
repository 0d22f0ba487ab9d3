package app

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.trai.ch/cicd/internal/adapters/linear"
	"go.trai.ch/cicd/internal/core/domain"
	"go.trai.ch/zerr"
)

// DescribeOptions configuration for the Describe method.
type DescribeOptions struct {
	Stages []string
}

// DescribedPipeline is the JSON form of a declared pipeline.
type DescribedPipeline struct {
	Name      string              `json:"name"`
	Stage     string              `json:"stage"`
	Stages    []DescribedStage    `json:"stages"`
	Artifacts []DescribedArtifact `json:"artifacts"`
}

// DescribedStage is one stage of a DescribedPipeline.
type DescribedStage struct {
	Name    string            `json:"name"`
	Actions []DescribedAction `json:"actions"`
}

// DescribedAction is one action of a DescribedStage.
type DescribedAction struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Inputs  []string `json:"inputs"`
	Outputs []string `json:"outputs"`
}

// DescribedArtifact names the producer and consumers of an artifact.
type DescribedArtifact struct {
	Name      string   `json:"name"`
	Producer  string   `json:"producer"`
	Consumers []string `json:"consumers"`
}

// Describe prints the declared pipeline of every selected deployment stage.
func (a *App) Describe(_ context.Context, opts DescribeOptions) ([]DescribedPipeline, error) {
	project, err := a.load(opts.Stages)
	if err != nil {
		return nil, err
	}

	pipelines := make([]*domain.Pipeline, 0, len(project.Environments))
	for _, params := range project.Environments {
		p, err := a.builder.Build(params, project.Pipeline)
		if err != nil {
			if params.StageName != "" {
				err = zerr.With(err, "stage", params.StageName)
			}
			return nil, err
		}
		pipelines = append(pipelines, p)
	}

	described := lo.Map(pipelines, func(p *domain.Pipeline, i int) DescribedPipeline {
		return describePipeline(p, project.Environments[i].StageName)
	})
	if a.json {
		return described, a.printJSON(described)
	}

	describer := linear.NewDescriber(a.stdout, a.profile()())
	for i, p := range pipelines {
		if i > 0 {
			_, _ = fmt.Fprintln(a.stdout)
		}
		if err := describer.Describe(a.stdout, p, project.Environments[i]); err != nil {
			return nil, err
		}
	}
	return described, nil
}

func describePipeline(p *domain.Pipeline, stage string) DescribedPipeline {
	d := DescribedPipeline{Name: p.Name, Stage: stage}
	for _, s := range p.Walk() {
		d.Stages = append(d.Stages, DescribedStage{
			Name:    s.Name.String(),
			Actions: lo.Map(s.Actions, func(act domain.Action, _ int) DescribedAction { return describeAction(&act) }),
		})
	}
	d.Artifacts = lo.Map(p.Artifacts(), func(name domain.InternedString, _ int) DescribedArtifact {
		producer, _ := p.Producer(name)
		return DescribedArtifact{
			Name:      name.String(),
			Producer:  producer.Action.String(),
			Consumers: lo.Map(p.Consumers(name), func(ref domain.ArtifactRef, _ int) string { return ref.Action.String() }),
		}
	})
	return d
}

func describeAction(act *domain.Action) DescribedAction {
	return DescribedAction{
		Name:    act.Name.String(),
		Kind:    act.Kind.String(),
		Inputs:  internedStrings(act.Consumes()),
		Outputs: internedStrings(act.Outputs),
	}
}

func internedStrings(in []domain.InternedString) []string {
	return lo.Map(in, func(s domain.InternedString, _ int) string { return s.String() })
}

package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cicd/internal/core/domain"
	"go.trai.ch/zerr"
)

func names(s ...string) []domain.InternedString {
	out := make([]domain.InternedString, len(s))
	for i, v := range s {
		out[i] = domain.NewInternedString(v)
	}
	return out
}

func act(name string, kind domain.ActionKind, inputs, outputs []string) domain.Action {
	return domain.Action{
		Name:    domain.NewInternedString(name),
		Kind:    kind,
		Inputs:  names(inputs...),
		Outputs: names(outputs...),
	}
}

func deployFrom(name, artifact string) domain.Action {
	return domain.Action{
		Name: domain.NewInternedString(name),
		Kind: domain.ActionDeploy,
		Deploy: &domain.DeployConfig{
			StackName:    "Stack",
			TemplatePath: domain.AtPath(domain.NewInternedString(artifact), "Stack.template.json"),
		},
	}
}

func stage(name string, actions ...domain.Action) domain.Stage {
	return domain.Stage{Name: domain.NewInternedString(name), Actions: actions}
}

func newPipeline(t *testing.T, stages ...domain.Stage) *domain.Pipeline {
	t.Helper()
	p := domain.NewPipeline("Pipeline-dev")
	for _, s := range stages {
		require.NoError(t, p.AddStage(s))
	}
	return p
}

// fourStages mirrors the delivery topology: source, two builds reading the source, update.
func fourStages(t *testing.T) *domain.Pipeline {
	t.Helper()
	return newPipeline(t,
		stage("source", act("Source", domain.ActionSource, nil, []string{"src"})),
		stage("ui", act("BuildUI", domain.ActionBuild, []string{"src"}, []string{"ui"})),
		stage("cdk", act("BuildCDK", domain.ActionBuild, []string{"src"}, []string{"cdk"})),
		stage("update", deployFrom("Update", "cdk")),
	)
}

func TestPipeline_Validate(t *testing.T) {
	p := fourStages(t)
	assert.False(t, p.Validated())

	require.NoError(t, p.Validate())
	assert.True(t, p.Validated())

	assert.Equal(t, []string{"source", "ui", "cdk", "update"}, p.StageNames())
	assert.Equal(t, names("cdk", "src", "ui"), p.Artifacts())

	producer, ok := p.Producer(domain.NewInternedString("src"))
	require.True(t, ok)
	assert.Equal(t, "Source", producer.Action.String())
	assert.Equal(t, 1, producer.Position)

	var consumers []string
	for _, ref := range p.Consumers(domain.NewInternedString("src")) {
		consumers = append(consumers, ref.Action.String())
	}
	assert.Equal(t, []string{"BuildUI", "BuildCDK"}, consumers)

	update := p.Consumers(domain.NewInternedString("cdk"))
	require.Len(t, update, 1)
	assert.Equal(t, "Update", update[0].Action.String())
	assert.Equal(t, 4, update[0].Position)

	_, ok = p.Producer(domain.NewInternedString("missing"))
	assert.False(t, ok)
}

func TestPipeline_Validate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		pipeline string
		stages   []domain.Stage
		wantErr  error
		wantMeta map[string]any
	}{
		{
			name: "two producers of one artifact",
			stages: []domain.Stage{
				stage("source", act("A", domain.ActionSource, nil, []string{"out"})),
				stage("build", act("B", domain.ActionBuild, nil, []string{"out"})),
			},
			wantErr:  domain.ErrDuplicateProducer,
			wantMeta: map[string]any{"artifact": "out", "producers": "A, B"},
		},
		{
			name: "consumed artifact without producer",
			stages: []domain.Stage{
				stage("source", act("A", domain.ActionSource, nil, []string{"out"})),
				stage("build", act("B", domain.ActionBuild, []string{"ghost"}, nil)),
			},
			wantErr:  domain.ErrMissingProducer,
			wantMeta: map[string]any{"artifact": "ghost", "consumer": "B"},
		},
		{
			name: "template path without producer",
			stages: []domain.Stage{
				stage("source", act("A", domain.ActionSource, nil, []string{"out"})),
				stage("update", deployFrom("Update", "cdk")),
			},
			wantErr:  domain.ErrMissingProducer,
			wantMeta: map[string]any{"artifact": "cdk", "consumer": "Update"},
		},
		{
			name: "action consuming its own output",
			stages: []domain.Stage{
				stage("build", act("A", domain.ActionBuild, []string{"a"}, []string{"a"})),
			},
			wantErr:  domain.ErrArtifactOrder,
			wantMeta: map[string]any{"artifact": "a", "consumer": "A"},
		},
		{
			name: "consumer in the producing stage",
			stages: []domain.Stage{
				stage("build",
					act("A", domain.ActionBuild, nil, []string{"a"}),
					act("B", domain.ActionBuild, []string{"a"}, nil),
				),
			},
			wantErr:  domain.ErrArtifactOrder,
			wantMeta: map[string]any{"artifact": "a", "consumer": "B"},
		},
		{
			name: "consumer before the producer",
			stages: []domain.Stage{
				stage("first", act("A", domain.ActionBuild, []string{"late"}, nil)),
				stage("second", act("B", domain.ActionBuild, nil, []string{"late"})),
			},
			wantErr:  domain.ErrArtifactOrder,
			wantMeta: map[string]any{"artifact": "late", "consumer": "A"},
		},
		{
			name: "stage without actions",
			stages: []domain.Stage{
				stage("source", act("A", domain.ActionSource, nil, []string{"out"})),
				stage("empty"),
			},
			wantErr:  domain.ErrEmptyStage,
			wantMeta: map[string]any{"stage": "empty"},
		},
		{
			name: "action name reused across stages",
			stages: []domain.Stage{
				stage("source", act("A", domain.ActionSource, nil, []string{"out"})),
				stage("build", act("A", domain.ActionBuild, []string{"out"}, nil)),
			},
			wantErr:  domain.ErrDuplicateAction,
			wantMeta: map[string]any{"action": "A"},
		},
		{
			name: "action without kind",
			stages: []domain.Stage{
				stage("source", act("A", 0, nil, []string{"out"})),
			},
			wantErr:  domain.ErrUnknownActionKind,
			wantMeta: map[string]any{"action": "A"},
		},
		{
			name:     "invalid pipeline name",
			pipeline: "my pipeline",
			stages: []domain.Stage{
				stage("source", act("A", domain.ActionSource, nil, []string{"out"})),
			},
			wantErr:  domain.ErrInvalidName,
			wantMeta: map[string]any{"kind": "pipeline", "name": "my pipeline"},
		},
		{
			name: "invalid artifact name",
			stages: []domain.Stage{
				stage("source", act("A", domain.ActionSource, nil, []string{"out::file"})),
			},
			wantErr:  domain.ErrInvalidName,
			wantMeta: map[string]any{"kind": "artifact", "name": "out::file"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name := tt.pipeline
			if name == "" {
				name = "Pipeline-dev"
			}
			p := domain.NewPipeline(name)
			for _, s := range tt.stages {
				require.NoError(t, p.AddStage(s))
			}

			err := p.Validate()
			require.ErrorIs(t, err, tt.wantErr)
			assert.False(t, p.Validated())

			var zErr *zerr.Error
			require.ErrorAs(t, err, &zErr)
			for k, v := range tt.wantMeta {
				assert.Equal(t, v, zErr.Metadata()[k], k)
			}
		})
	}
}

func TestPipeline_AddStage_Duplicate(t *testing.T) {
	p := newPipeline(t, stage("source", act("A", domain.ActionSource, nil, []string{"out"})))
	require.NoError(t, p.Validate())

	err := p.AddStage(stage("source", act("B", domain.ActionBuild, []string{"out"}, nil)))
	require.ErrorIs(t, err, domain.ErrDuplicateStageName)
	assert.Equal(t, 1, p.Len())
	assert.True(t, p.Validated())

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, "source", zErr.Metadata()["stage"])
}

func TestPipeline_AddStage_InvalidatesPipeline(t *testing.T) {
	p := newPipeline(t, stage("source", act("A", domain.ActionSource, nil, []string{"out"})))
	require.NoError(t, p.Validate())

	require.NoError(t, p.AddStage(stage("build", act("B", domain.ActionBuild, []string{"out"}, nil))))
	assert.False(t, p.Validated())
}

func TestPipeline_Walk(t *testing.T) {
	p := fourStages(t)

	var positions []int
	var stages []string
	for pos, s := range p.Walk() {
		positions = append(positions, pos)
		stages = append(stages, s.Name.String())
		if s.Name.String() == "cdk" {
			break
		}
	}
	assert.Equal(t, []int{1, 2, 3}, positions)
	assert.Equal(t, []string{"source", "ui", "cdk"}, stages)

	s, ok := p.Stage(domain.NewInternedString("update"))
	require.True(t, ok)
	assert.Equal(t, "Update", s.Actions[0].Name.String())

	_, ok = p.Stage(domain.NewInternedString("missing"))
	assert.False(t, ok)
}

func TestPipeline_IndependentStages(t *testing.T) {
	t.Run("builds reading only the source", func(t *testing.T) {
		p := fourStages(t)
		require.NoError(t, p.Validate())

		pairs := p.IndependentStages()
		require.Len(t, pairs, 1)
		assert.Equal(t, "ui", pairs[0].First.String())
		assert.Equal(t, "cdk", pairs[0].Second.String())
	})

	t.Run("chained stages", func(t *testing.T) {
		p := newPipeline(t,
			stage("source", act("Source", domain.ActionSource, nil, []string{"src"})),
			stage("build", act("Build", domain.ActionBuild, []string{"src"}, []string{"cdk"})),
			stage("update", deployFrom("Update", "cdk")),
		)
		require.NoError(t, p.Validate())
		assert.Empty(t, p.IndependentStages())
	})
}

func TestAction_Consumes(t *testing.T) {
	tests := []struct {
		name   string
		action domain.Action
		want   []domain.InternedString
	}{
		{
			name:   "inputs only",
			action: act("Build", domain.ActionBuild, []string{"src", "ui"}, nil),
			want:   names("src", "ui"),
		},
		{
			name:   "template path artifact",
			action: deployFrom("Update", "cdk"),
			want:   names("cdk"),
		},
		{
			name: "template path artifact listed as input",
			action: func() domain.Action {
				a := deployFrom("Update", "cdk")
				a.Inputs = names("cdk")
				return a
			}(),
			want: names("cdk"),
		},
		{
			name:   "nothing",
			action: act("Source", domain.ActionSource, nil, []string{"src"}),
			want:   []domain.InternedString{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.action.Consumes())
		})
	}
}

func TestParseArtifactPath(t *testing.T) {
	path, ok := domain.ParseArtifactPath("CDK-build-output-dev::ReactNativeCicdStack.template.json")
	require.True(t, ok)
	assert.Equal(t, "CDK-build-output-dev", path.Artifact.String())
	assert.Equal(t, "ReactNativeCicdStack.template.json", path.File)
	assert.Equal(t, "CDK-build-output-dev::ReactNativeCicdStack.template.json", path.String())

	for _, invalid := range []string{"", "no-separator", "::file", "artifact::"} {
		_, ok := domain.ParseArtifactPath(invalid)
		assert.False(t, ok, invalid)
	}
}

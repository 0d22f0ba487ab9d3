package cfn_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cicd/internal/adapters/cfn"
	"go.trai.ch/cicd/internal/core/domain"
	"go.trai.ch/cicd/internal/engine/topology"
)

func testParams() domain.Params {
	return domain.Params{
		StageName:          "dev",
		CodeStarConnection: "arn:aws:codestar-connections:us-east-1:123456789012:connection/abc-123",
		Env:                domain.Env{Account: "123456789012", Region: "us-east-1"},
		Repo:               domain.Repo{Owner: "acme", Name: "mobile-app", Branch: "develop"},
	}
}

func synth(t *testing.T, params domain.Params, opts domain.PipelineOptions) *domain.Template {
	t.Helper()
	p, err := topology.NewBuilder().Build(params, opts)
	require.NoError(t, err)
	tmpl, err := cfn.NewSynthesizer().Synthesize(p, params, opts.StackName)
	require.NoError(t, err)
	return tmpl
}

func pipelineStages(t *testing.T, tmpl *domain.Template) []any {
	t.Helper()
	ids := tmpl.ResourcesOfType(cfn.TypePipeline)
	require.Len(t, ids, 1)
	stages, ok := tmpl.Resources[ids[0]].Properties["Stages"].([]any)
	require.True(t, ok)
	return stages
}

func TestLogicalID(t *testing.T) {
	a := cfn.LogicalID("ReactNativeCicdStack", "UIBuildProject-dev")
	b := cfn.LogicalID("ReactNativeCicdStack", "UIBuildProject-dev")
	c := cfn.LogicalID("ReactNativeCicdStack", "UIBuildProject-prod")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "ReactNativeCicdStackUIBuildProjectdev"))
	assert.Len(t, a, len("ReactNativeCicdStackUIBuildProjectdev")+8)

	// Paths that sanitize to the same prefix still differ.
	assert.NotEqual(t, cfn.LogicalID("a-b"), cfn.LogicalID("ab"))

	long := cfn.LogicalID(strings.Repeat("x", 400))
	assert.Len(t, long, 255)
}

func TestSynthesize_Resources(t *testing.T) {
	tmpl := synth(t, testParams(), domain.DefaultPipelineOptions())

	assert.Equal(t, domain.TemplateFormatVersion, tmpl.FormatVersion)
	assert.Len(t, tmpl.ResourcesOfType(cfn.TypeBucket), 1)
	assert.Len(t, tmpl.ResourcesOfType(cfn.TypeRole), 4)
	assert.Len(t, tmpl.ResourcesOfType(cfn.TypePolicy), 1)
	assert.Len(t, tmpl.ResourcesOfType(cfn.TypeProject), 2)
	assert.Len(t, tmpl.ResourcesOfType(cfn.TypePipeline), 1)
	assert.Empty(t, tmpl.ResourcesOfType(cfn.TypeKey))

	bucket := tmpl.Resources[tmpl.ResourcesOfType(cfn.TypeBucket)[0]]
	assert.Equal(t, "Retain", bucket.DeletionPolicy)

	pipelineID := tmpl.ResourcesOfType(cfn.TypePipeline)[0]
	pipeline := tmpl.Resources[pipelineID]
	assert.Equal(t, "Pipeline-dev", pipeline.Properties["Name"])
	assert.Equal(t, true, pipeline.Properties["RestartExecutionOnUpdate"])

	out, ok := tmpl.Outputs[cfn.PipelineNameOutput]
	require.True(t, ok)
	assert.Equal(t, cfn.Ref(pipelineID), out.Value)
}

func TestSynthesize_Stages(t *testing.T) {
	tmpl := synth(t, testParams(), domain.DefaultPipelineOptions())
	stages := pipelineStages(t, tmpl)
	require.Len(t, stages, 4)

	wantStages := []string{"source-dev", "UI-build-dev", "CDK-build-dev", "update-dev"}
	wantActions := []string{"Pipeline-Source-dev", "Pipeline-Build-UI-dev", "Pipeline-Build-CDK-dev", "Pipeline-Update-dev"}
	for i, raw := range stages {
		stage, ok := raw.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, wantStages[i], stage["Name"])

		actions, ok := stage["Actions"].([]any)
		require.True(t, ok)
		require.Len(t, actions, 1)
		action, ok := actions[0].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, wantActions[i], action["Name"])
		assert.Equal(t, 1, action["RunOrder"])
	}

	update := stages[3].(map[string]any)["Actions"].([]any)[0].(map[string]any)
	config := update["Configuration"].(map[string]any)
	assert.Equal(t, "ReactNativeCicdStack", config["StackName"])
	assert.Equal(t, "CREATE_UPDATE", config["ActionMode"])
	templatePath, ok := config["TemplatePath"].(string)
	require.True(t, ok)
	parsed, ok := domain.ParseArtifactPath(templatePath)
	require.True(t, ok)
	assert.Equal(t, "ReactNativeCicdStack.template.json", parsed.File)
	assert.Equal(t, []any{map[string]any{"Name": parsed.Artifact.String()}}, update["InputArtifacts"])
	assert.Equal(t, "CDK-build-output-dev", parsed.Artifact.String())
	assert.NotContains(t, update, "OutputArtifacts")

	source := stages[0].(map[string]any)["Actions"].([]any)[0].(map[string]any)
	sourceConfig := source["Configuration"].(map[string]any)
	assert.Equal(t, "acme/mobile-app", sourceConfig["FullRepositoryId"])
	assert.Equal(t, "develop", sourceConfig["BranchName"])
	assert.NotContains(t, source, "InputArtifacts")
}

func TestSynthesize_BuildProjects(t *testing.T) {
	tmpl := synth(t, testParams(), domain.DefaultPipelineOptions())

	images := make(map[string]bool)
	for _, id := range tmpl.ResourcesOfType(cfn.TypeProject) {
		env := tmpl.Resources[id].Properties["Environment"].(map[string]any)
		images[env["Image"].(string)] = env["PrivilegedMode"].(bool)
	}
	assert.Equal(t, map[string]bool{
		topology.UIBuildImage:  false,
		topology.CDKBuildImage: true,
	}, images)
}

func TestSynthesize_AdminDeployRole(t *testing.T) {
	tmpl := synth(t, testParams(), domain.DefaultPipelineOptions())

	admin := 0
	for _, id := range tmpl.ResourcesOfType(cfn.TypeRole) {
		if arns, ok := tmpl.Resources[id].Properties["ManagedPolicyArns"]; ok {
			admin++
			assert.Equal(t, []any{cfn.Sub("arn:${AWS::Partition}:iam::aws:policy/AdministratorAccess")}, arns)
		}
	}
	assert.Equal(t, 1, admin)
}

func TestSynthesize_BranchChangesOnlyBranchName(t *testing.T) {
	s := cfn.NewSynthesizer()
	changed := testParams()
	changed.Repo.Branch = "main"

	a, err := s.Encode(synth(t, testParams(), domain.DefaultPipelineOptions()), cfn.FormatJSON)
	require.NoError(t, err)
	b, err := s.Encode(synth(t, changed, domain.DefaultPipelineOptions()), cfn.FormatJSON)
	require.NoError(t, err)

	require.NotEqual(t, string(a), string(b))
	patched := strings.Replace(string(a), `"BranchName": "develop"`, `"BranchName": "main"`, 1)
	assert.Equal(t, patched, string(b))
}

func TestSynthesize_CrossAccountKeys(t *testing.T) {
	opts := domain.DefaultPipelineOptions()
	opts.CrossAccountKeys = true
	tmpl := synth(t, testParams(), opts)

	keys := tmpl.ResourcesOfType(cfn.TypeKey)
	require.Len(t, keys, 1)

	pipeline := tmpl.Resources[tmpl.ResourcesOfType(cfn.TypePipeline)[0]]
	store := pipeline.Properties["ArtifactStore"].(map[string]any)
	assert.Equal(t, map[string]any{"Id": cfn.GetAtt(keys[0], "Arn"), "Type": "KMS"}, store["EncryptionKey"])
}

func TestSynthesize_ParallelBuilds(t *testing.T) {
	opts := domain.DefaultPipelineOptions()
	opts.ParallelBuilds = true
	stages := pipelineStages(t, synth(t, testParams(), opts))
	require.Len(t, stages, 3)

	build := stages[1].(map[string]any)
	assert.Equal(t, "build-dev", build["Name"])
	assert.Len(t, build["Actions"], 2)
}

func TestSynthesize_RequiresValidatedPipeline(t *testing.T) {
	p := domain.NewPipeline("Pipeline-dev")
	_, err := cfn.NewSynthesizer().Synthesize(p, testParams(), "")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrSynthFailed.Error())

	_, err = cfn.NewSynthesizer().Synthesize(nil, testParams(), "")
	assert.ErrorContains(t, err, domain.ErrSynthFailed.Error())
}

func TestEncode(t *testing.T) {
	s := cfn.NewSynthesizer()
	tmpl := synth(t, testParams(), domain.DefaultPipelineOptions())

	first, err := s.Encode(tmpl, cfn.FormatJSON)
	require.NoError(t, err)
	second, err := s.Encode(tmpl, "")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(first, &decoded))
	assert.Equal(t, "2010-09-09", decoded["AWSTemplateFormatVersion"])
	assert.Contains(t, decoded, "Resources")
	assert.Contains(t, decoded, "Outputs")
	assert.Contains(t, string(first), "Pipeline-Build-CDK-dev")

	asYAML, err := s.Encode(tmpl, cfn.FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(asYAML), "AWSTemplateFormatVersion:")
	assert.Contains(t, string(asYAML), "Pipeline-Build-CDK-dev")

	_, err = s.Encode(tmpl, "toml")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrUnknownFormat.Error())
}

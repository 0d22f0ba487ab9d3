package domain

// TemplateFormatVersion is the only CloudFormation template format version.
const TemplateFormatVersion = "2010-09-09"

// Template is a synthesized CloudFormation template.
// Property values are plain maps and slices so both the JSON and YAML encoders can
// render them without custom marshalers.
type Template struct {
	FormatVersion string              `json:"AWSTemplateFormatVersion" yaml:"AWSTemplateFormatVersion"`
	Description   string              `json:"Description,omitempty" yaml:"Description,omitempty"`
	Resources     map[string]Resource `json:"Resources" yaml:"Resources"`
	Outputs       map[string]Output   `json:"Outputs,omitempty" yaml:"Outputs,omitempty"`
}

// Resource is a single CloudFormation resource declaration.
type Resource struct {
	Type                string         `json:"Type" yaml:"Type"`
	Properties          map[string]any `json:"Properties,omitempty" yaml:"Properties,omitempty"`
	DependsOn           []string       `json:"DependsOn,omitempty" yaml:"DependsOn,omitempty"`
	DeletionPolicy      string         `json:"DeletionPolicy,omitempty" yaml:"DeletionPolicy,omitempty"`
	UpdateReplacePolicy string         `json:"UpdateReplacePolicy,omitempty" yaml:"UpdateReplacePolicy,omitempty"`
}

// Output is a CloudFormation stack output.
type Output struct {
	Description string `json:"Description,omitempty" yaml:"Description,omitempty"`
	Value       any    `json:"Value" yaml:"Value"`
}

// ResourcesOfType returns the logical IDs of every resource with the given type.
func (t *Template) ResourcesOfType(typ string) []string {
	var ids []string
	for id, r := range t.Resources {
		if r.Type == typ {
			ids = append(ids, id)
		}
	}
	return ids
}

// StackArtifact is the synthesized output for one deployment stage.
type StackArtifact struct {
	StackName string
	StageName string
	Env       Env
	Template  *Template
	// Body is the encoded template.
	Body []byte
	// Format is the encoding of Body, "json" or "yaml".
	Format string
}

// ID returns the artifact identifier used in the assembly manifest.
func (a *StackArtifact) ID() string {
	return a.StageName + "/" + a.StackName
}

// TemplateFile returns the path of the template inside the assembly.
func (a *StackArtifact) TemplateFile() string {
	if a.Format == "yaml" {
		return a.StageName + "/" + a.StackName + YAMLTemplateSuffix
	}
	return a.StageName + "/" + TemplateFileName(a.StackName)
}

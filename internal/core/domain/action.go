package domain

import "strings"

// ActionKind is the category of work an action performs.
type ActionKind uint8

const (
	// ActionSource fetches repository content.
	ActionSource ActionKind = iota + 1
	// ActionBuild runs a build project.
	ActionBuild
	// ActionDeploy creates or updates an infrastructure stack.
	ActionDeploy
)

// String returns the lower case name of the kind.
func (k ActionKind) String() string {
	switch k {
	case ActionSource:
		return "source"
	case ActionBuild:
		return "build"
	case ActionDeploy:
		return "deploy"
	default:
		return "unknown"
	}
}

// ArtifactPathSeparator separates the artifact name from the file inside it.
const ArtifactPathSeparator = "::"

// ArtifactPath addresses a single file inside an artifact.
type ArtifactPath struct {
	Artifact InternedString
	File     string
}

// AtPath returns the path of file inside the named artifact.
func AtPath(artifact InternedString, file string) ArtifactPath {
	return ArtifactPath{Artifact: artifact, File: file}
}

// String returns the "artifact::file" form.
func (p ArtifactPath) String() string {
	return p.Artifact.String() + ArtifactPathSeparator + p.File
}

// ParseArtifactPath parses the "artifact::file" form.
func ParseArtifactPath(s string) (ArtifactPath, bool) {
	artifact, file, ok := strings.Cut(s, ArtifactPathSeparator)
	if !ok || artifact == "" || file == "" {
		return ArtifactPath{}, false
	}
	return AtPath(NewInternedString(artifact), file), true
}

// SourceConfig is the execution environment of a source action.
type SourceConfig struct {
	ConnectionARN string
	Owner         string
	Repo          string
	Branch        string
}

// BuildConfig is the execution environment of a build action.
type BuildConfig struct {
	// ProjectID is the declaration id of the build project, unique within a pipeline.
	ProjectID   string
	BuildSpec   string
	Image       string
	ComputeType string
	Privileged  bool
}

// DeployConfig is the execution environment of a deploy action.
type DeployConfig struct {
	StackName        string
	TemplatePath     ArtifactPath
	AdminPermissions bool
}

// Action is a unit of work within a stage.
// Exactly one of Source, Build and Deploy is set, matching Kind.
type Action struct {
	Name    InternedString
	Kind    ActionKind
	Inputs  []InternedString
	Outputs []InternedString

	Source *SourceConfig
	Build  *BuildConfig
	Deploy *DeployConfig
}

// Consumes returns every artifact the action reads, including the artifact behind a
// deploy template path.
func (a *Action) Consumes() []InternedString {
	consumed := make([]InternedString, 0, len(a.Inputs)+1)
	consumed = append(consumed, a.Inputs...)
	if a.Deploy != nil && !a.Deploy.TemplatePath.Artifact.IsZero() {
		seen := false
		for _, in := range a.Inputs {
			if in == a.Deploy.TemplatePath.Artifact {
				seen = true
				break
			}
		}
		if !seen {
			consumed = append(consumed, a.Deploy.TemplatePath.Artifact)
		}
	}
	return consumed
}

package domain

import (
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"
	"go.trai.ch/zerr"
)

// Repo identifies the source repository watched by the pipeline.
type Repo struct {
	Owner  string
	Name   string
	Branch string
}

// FullName returns the "owner/name" form expected by source-control connections.
func (r Repo) FullName() string {
	return r.Owner + "/" + r.Name
}

// Env is the target account and region of a deployment stage.
type Env struct {
	Account string
	Region  string
}

// Params is the deployment-stage parameter object. It is loaded before any topology is
// declared and every derived name is a function of StageName.
type Params struct {
	StageName          string
	CodeStarConnection string
	Env                Env
	Repo               Repo
	// Source is the environment file the parameters came from, for error reporting.
	Source string
}

var (
	stageNameRegex     = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	connectionARNRegex = regexp.MustCompile(`^arn:aws[a-z-]*:(codestar-connections|codeconnections):[a-z0-9-]+:\d{12}:connection/.+$`)
)

// Validate checks that every required field is present and well formed.
// All problems are reported at once so a broken environment file can be fixed in one pass.
func (p *Params) Validate() error {
	var result *multierror.Error

	if p.StageName == "" {
		result = multierror.Append(result, missing("stageName"))
	} else if !stageNameRegex.MatchString(p.StageName) {
		result = multierror.Append(result, tag(ErrInvalidName, "stageName", p.StageName))
	}

	switch {
	case p.CodeStarConnection == "":
		result = multierror.Append(result, missing("codeStarConnection"))
	case strings.HasPrefix(p.CodeStarConnection, "arn:") && !connectionARNRegex.MatchString(p.CodeStarConnection):
		result = multierror.Append(result, tag(ErrInvalidName, "codeStarConnection", p.CodeStarConnection))
	}

	if p.Repo.Owner == "" {
		result = multierror.Append(result, missing("repo.owner"))
	}
	if p.Repo.Name == "" {
		result = multierror.Append(result, missing("repo.name"))
	}
	if p.Repo.Branch == "" {
		result = multierror.Append(result, missing("repo.branch"))
	}

	if result.ErrorOrNil() != nil {
		wrapped := zerr.Wrap(paramsError{result}, ErrInvalidParams.Error())
		if p.Source != "" {
			wrapped = zerr.With(wrapped, "file", p.Source)
		}
		return wrapped
	}
	return nil
}

// paramsError lists every problem of one parameter object and matches ErrInvalidParams.
type paramsError struct {
	*multierror.Error
}

func (paramsError) Is(target error) bool {
	return target == ErrInvalidParams
}

func missing(field string) error {
	return zerr.New("missing required field " + field)
}

// PipelineOptions are the project-level switches that shape the declared topology.
type PipelineOptions struct {
	// StackName is the stack the update stage creates or updates.
	StackName string
	// ParallelBuilds declares both build actions in a single stage so the engine can run
	// them concurrently. Off by default, which keeps the serialized build stages.
	ParallelBuilds bool
	// RestartExecutionOnUpdate restarts the pipeline when its definition changes.
	RestartExecutionOnUpdate bool
	// CrossAccountKeys requests a customer managed key for the artifact bucket.
	CrossAccountKeys bool
}

// DefaultStackName is the stack the update stage targets when the project file names none.
const DefaultStackName = "ReactNativeCicdStack"

// DefaultPipelineOptions returns the options used when the project file is silent.
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		StackName:                DefaultStackName,
		ParallelBuilds:           false,
		RestartExecutionOnUpdate: true,
		CrossAccountKeys:         false,
	}
}

// Project is the loaded configuration: project settings plus one Params per deployment stage.
type Project struct {
	Root         string
	Output       string
	Pipeline     PipelineOptions
	Environments []Params
}

// Environment returns the parameters for the given stage name.
func (p *Project) Environment(stageName string) (Params, bool) {
	for _, env := range p.Environments {
		if env.StageName == stageName {
			return env, true
		}
	}
	return Params{}, false
}

// StageNames returns the configured stage names in load order.
func (p *Project) StageNames() []string {
	names := make([]string, len(p.Environments))
	for i, env := range p.Environments {
		names[i] = env.StageName
	}
	return names
}

package config

// ProjectFile represents the structure of the cicd.yaml project file.
type ProjectFile struct {
	Version      string      `mapstructure:"version"`
	Stack        string      `mapstructure:"stack"`
	Output       string      `mapstructure:"output"`
	Pipeline     PipelineDTO `mapstructure:"pipeline"`
	Environments string      `mapstructure:"environments"`
}

// PipelineDTO holds the topology switches of the project file.
type PipelineDTO struct {
	ParallelBuilds           bool `mapstructure:"parallelBuilds"`
	RestartExecutionOnUpdate bool `mapstructure:"restartExecutionOnUpdate"`
	CrossAccountKeys         bool `mapstructure:"crossAccountKeys"`
}

// EnvironmentFile represents one deployment-stage parameter file.
type EnvironmentFile struct {
	StageName          string  `mapstructure:"stageName"`
	CodeStarConnection string  `mapstructure:"codeStarConnection"`
	Env                EnvDTO  `mapstructure:"env"`
	Repo               RepoDTO `mapstructure:"repo"`
}

// EnvDTO is the target account and region.
type EnvDTO struct {
	Account string `mapstructure:"account"`
	Region  string `mapstructure:"region"`
}

// RepoDTO identifies the source repository.
type RepoDTO struct {
	Owner  string `mapstructure:"owner"`
	Name   string `mapstructure:"name"`
	Branch string `mapstructure:"branch"`
}

// environmentKeys lists the keys of EnvironmentFile a stage-scoped environment variable can
// override or supply. stageName is excluded because it selects the scope.
var environmentKeys = []string{
	"codeStarConnection",
	"env.account",
	"env.region",
	"repo.owner",
	"repo.name",
	"repo.branch",
}

// projectKeys lists every key of ProjectFile that can be overridden from the environment.
var projectKeys = []string{
	"stack",
	"output",
	"environments",
	"pipeline.parallelBuilds",
	"pipeline.restartExecutionOnUpdate",
	"pipeline.crossAccountKeys",
}

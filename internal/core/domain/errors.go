package domain

import "go.trai.ch/zerr"

var (
	// ErrConfigNotFound is returned when no project file is found walking up from the working directory.
	ErrConfigNotFound = zerr.New("could not find cicd.yaml")

	// ErrConfigReadFailed is returned when a configuration file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read configuration file")

	// ErrConfigParseFailed is returned when a configuration file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse configuration file")

	// ErrNoEnvironments is returned when the environments directory holds no parameter files.
	ErrNoEnvironments = zerr.New("no environments configured")

	// ErrEnvironmentNotFound is returned when a requested deployment stage is not configured.
	ErrEnvironmentNotFound = zerr.New("environment not found")

	// ErrDuplicateStage is returned when two environment files declare the same stage name.
	ErrDuplicateStage = zerr.New("duplicate stage name across environment files")

	// ErrInvalidParams is returned when the deployment-stage parameters are incomplete or malformed.
	ErrInvalidParams = zerr.New("invalid deployment-stage parameters")

	// ErrDuplicateStageName is returned when a pipeline declares two stages with the same name.
	ErrDuplicateStageName = zerr.New("duplicate stage name")

	// ErrDuplicateAction is returned when two actions in a pipeline share a name.
	ErrDuplicateAction = zerr.New("duplicate action name")

	// ErrEmptyStage is returned when a stage declares no actions.
	ErrEmptyStage = zerr.New("stage has no actions")

	// ErrDuplicateProducer is returned when more than one action produces the same artifact.
	ErrDuplicateProducer = zerr.New("artifact has more than one producer")

	// ErrMissingProducer is returned when an action consumes an artifact nobody produces.
	ErrMissingProducer = zerr.New("artifact has no producer")

	// ErrArtifactOrder is returned when an artifact is consumed in a stage not strictly after its producer.
	ErrArtifactOrder = zerr.New("artifact consumed before it is produced")

	// ErrInvalidName is returned when a name does not satisfy the pipeline naming rules.
	ErrInvalidName = zerr.New("invalid name")

	// ErrUnknownActionKind is returned when an action has no recognized kind.
	ErrUnknownActionKind = zerr.New("unknown action kind")

	// ErrUnknownFormat is returned when a template encoding format is not supported.
	ErrUnknownFormat = zerr.New("unknown template format")

	// ErrSynthFailed is returned when a pipeline cannot be rendered into a template.
	ErrSynthFailed = zerr.New("synthesis failed")

	// ErrStoreOpenFailed is returned when the assembly location cannot be opened.
	ErrStoreOpenFailed = zerr.New("failed to open assembly store")

	// ErrStoreReadFailed is returned when the assembly store cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read from assembly store")

	// ErrStoreWriteFailed is returned when the assembly store cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write to assembly store")

	// ErrStoreMarshalFailed is returned when the assembly manifest cannot be encoded.
	ErrStoreMarshalFailed = zerr.New("failed to marshal assembly manifest")

	// ErrStoreUnmarshalFailed is returned when the assembly manifest cannot be decoded.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal assembly manifest")

	// ErrAWSConfigFailed is returned when the AWS SDK configuration cannot be loaded.
	ErrAWSConfigFailed = zerr.New("failed to load AWS configuration")

	// ErrAccountMismatch is returned when the resolved credentials belong to another account.
	ErrAccountMismatch = zerr.New("credentials do not belong to the configured account")

	// ErrStackUnrecoverable is returned when a stack is in a state that only deletion can fix.
	ErrStackUnrecoverable = zerr.New("stack is in an unrecoverable state")

	// ErrDeployFailed is returned when creating or updating a stack fails.
	ErrDeployFailed = zerr.New("deploy failed")

	// ErrTemplateFetchFailed is returned when the deployed template cannot be retrieved.
	ErrTemplateFetchFailed = zerr.New("failed to fetch deployed template")

	// ErrWatchFailed is returned when the file watcher cannot be started.
	ErrWatchFailed = zerr.New("failed to watch configuration")

	// ErrDuplicateTarget is returned when two deployment stages would deploy the same stack
	// into the same account and region.
	ErrDuplicateTarget = zerr.New("deployment stages share a target stack")

	// ErrDriftDetected is returned by diff when a deployed stack differs from its template.
	ErrDriftDetected = zerr.New("deployed stacks differ from the synthesized templates")
)

// tag attaches metadata to a sentinel without copying it. The sentinel stays the cause, so
// errors.Is still matches it.
func tag(sentinel error, key string, value any) error {
	return zerr.With(zerr.Wrap(sentinel, ""), key, value)
}

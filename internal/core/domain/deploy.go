package domain

import "time"

// DeployOperation is what the deployer did to the stack.
type DeployOperation string

const (
	// DeployCreate means the stack did not exist and was created.
	DeployCreate DeployOperation = "create"
	// DeployUpdate means the stack existed and was updated.
	DeployUpdate DeployOperation = "update"
	// DeployNoop means the stack already matched the template.
	DeployNoop DeployOperation = "noop"
)

// DeployRequest asks the deployer to create or update a stack from a synthesized template.
type DeployRequest struct {
	StackName    string
	Env          Env
	TemplateBody string
	Wait         bool
	Timeout      time.Duration
}

// DeployResult is the outcome of a create-or-update.
type DeployResult struct {
	StackName string
	StackID   string
	Operation DeployOperation
	Account   string
}

// TemplateDiff is the line difference between a deployed and a synthesized template.
type TemplateDiff struct {
	StackName string `json:"stack"`
	StageName string `json:"stage"`
	// Exists is false when the stack has never been deployed.
	Exists  bool   `json:"exists"`
	Added   int    `json:"added"`
	Removed int    `json:"removed"`
	Unified string `json:"diff,omitempty"`
}

// Empty reports whether the templates are identical.
func (d *TemplateDiff) Empty() bool {
	return d.Exists && d.Added == 0 && d.Removed == 0
}

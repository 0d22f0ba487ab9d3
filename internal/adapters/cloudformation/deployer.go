// Package cloudformation creates and updates stacks from synthesized templates.
package cloudformation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	cfn "github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"go.trai.ch/cicd/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	// DefaultTimeout bounds how long Deploy waits for a stack operation to finish.
	DefaultTimeout = 30 * time.Minute

	// maxTemplateBodySize is the largest template CloudFormation accepts inline.
	maxTemplateBodySize = 51200

	noUpdatesMessage    = "No updates are to be performed"
	doesNotExistMessage = "does not exist"
	validationErrorCode = "ValidationError"
)

// Capabilities acknowledged on every create and update.
var capabilities = []types.Capability{
	types.CapabilityCapabilityIam,
	types.CapabilityCapabilityNamedIam,
	types.CapabilityCapabilityAutoExpand,
}

// API is the subset of the CloudFormation client used by the Deployer.
type API interface {
	DescribeStacks(ctx context.Context, in *cfn.DescribeStacksInput, optFns ...func(*cfn.Options)) (*cfn.DescribeStacksOutput, error)
	CreateStack(ctx context.Context, in *cfn.CreateStackInput, optFns ...func(*cfn.Options)) (*cfn.CreateStackOutput, error)
	UpdateStack(ctx context.Context, in *cfn.UpdateStackInput, optFns ...func(*cfn.Options)) (*cfn.UpdateStackOutput, error)
	GetTemplate(ctx context.Context, in *cfn.GetTemplateInput, optFns ...func(*cfn.Options)) (*cfn.GetTemplateOutput, error)
}

// IdentityAPI is the subset of the STS client used to resolve the caller account.
type IdentityAPI interface {
	GetCallerIdentity(ctx context.Context, in *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// clientFactory returns clients bound to the target environment.
type clientFactory func(ctx context.Context, env domain.Env) (API, IdentityAPI, error)

// waitFunc blocks until the stack operation settles or the timeout elapses.
type waitFunc func(ctx context.Context, api API, stackName string, op domain.DeployOperation, timeout time.Duration) error

// Deployer implements ports.StackDeployer with the AWS SDK.
type Deployer struct {
	clients  clientFactory
	wait     waitFunc
	newToken func() string
}

// NewDeployer creates a Deployer using the default AWS credential chain.
func NewDeployer() *Deployer {
	return &Deployer{
		clients:  defaultClients,
		wait:     waitForStack,
		newToken: uuid.NewString,
	}
}

func defaultClients(ctx context.Context, env domain.Env) (API, IdentityAPI, error) {
	var opts []func(*config.LoadOptions) error
	if env.Region != "" {
		opts = append(opts, config.WithRegion(env.Region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, nil, zerr.Wrap(err, domain.ErrAWSConfigFailed.Error())
	}
	return cfn.NewFromConfig(cfg), sts.NewFromConfig(cfg), nil
}

// Deploy creates the stack when it does not exist and updates it otherwise.
//
//nolint:cyclop // create-or-update state machine
func (d *Deployer) Deploy(ctx context.Context, req domain.DeployRequest) (*domain.DeployResult, error) {
	if len(req.TemplateBody) > maxTemplateBodySize {
		err := zerr.Wrap(zerr.New("template body exceeds the inline size limit"), domain.ErrDeployFailed.Error())
		return nil, zerr.With(zerr.With(err, "stack", req.StackName), "size", len(req.TemplateBody))
	}

	api, identity, err := d.clients(ctx, req.Env)
	if err != nil {
		return nil, err
	}

	account, err := checkAccount(ctx, identity, req.Env)
	if err != nil {
		return nil, err
	}

	stack, err := describeStack(ctx, api, req.StackName)
	if err != nil {
		return nil, deployError(err, req.StackName)
	}

	result := &domain.DeployResult{StackName: req.StackName, Account: account}

	switch {
	case stack == nil:
		out, err := api.CreateStack(ctx, &cfn.CreateStackInput{
			StackName:          aws.String(req.StackName),
			TemplateBody:       aws.String(req.TemplateBody),
			Capabilities:       capabilities,
			ClientRequestToken: aws.String(d.newToken()),
		})
		if err != nil {
			return nil, deployError(err, req.StackName)
		}
		result.Operation = domain.DeployCreate
		result.StackID = aws.ToString(out.StackId)

	case stack.StackStatus == types.StackStatusRollbackComplete:
		return nil, errors.Join(domain.ErrStackUnrecoverable, zerr.With(zerr.With(
			zerr.New("stack must be deleted before it can be deployed again"),
			"stack", req.StackName), "status", string(stack.StackStatus)))

	default:
		out, err := api.UpdateStack(ctx, &cfn.UpdateStackInput{
			StackName:          aws.String(req.StackName),
			TemplateBody:       aws.String(req.TemplateBody),
			Capabilities:       capabilities,
			ClientRequestToken: aws.String(d.newToken()),
		})
		switch {
		case isValidationError(err, noUpdatesMessage):
			result.Operation = domain.DeployNoop
			result.StackID = aws.ToString(stack.StackId)
			return result, nil
		case err != nil:
			return nil, deployError(err, req.StackName)
		}
		result.Operation = domain.DeployUpdate
		result.StackID = aws.ToString(out.StackId)
	}

	if req.Wait {
		timeout := req.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		if err := d.wait(ctx, api, req.StackName, result.Operation, timeout); err != nil {
			return nil, deployError(err, req.StackName)
		}
	}
	return result, nil
}

// CurrentTemplate returns the original template body of the deployed stack.
func (d *Deployer) CurrentTemplate(ctx context.Context, stackName string, env domain.Env) (string, bool, error) {
	api, _, err := d.clients(ctx, env)
	if err != nil {
		return "", false, err
	}

	out, err := api.GetTemplate(ctx, &cfn.GetTemplateInput{
		StackName:     aws.String(stackName),
		TemplateStage: types.TemplateStageOriginal,
	})
	if err != nil {
		if isValidationError(err, doesNotExistMessage) {
			return "", false, nil
		}
		return "", false, zerr.With(zerr.Wrap(err, domain.ErrTemplateFetchFailed.Error()), "stack", stackName)
	}
	return aws.ToString(out.TemplateBody), true, nil
}

// checkAccount resolves the caller account and compares it with the configured one.
func checkAccount(ctx context.Context, identity IdentityAPI, env domain.Env) (string, error) {
	out, err := identity.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrAWSConfigFailed.Error())
	}
	account := aws.ToString(out.Account)
	if env.Account != "" && env.Account != account {
		return "", errors.Join(domain.ErrAccountMismatch,
			zerr.With(zerr.With(zerr.New("refusing to deploy"), "expected", env.Account), "actual", account))
	}
	return account, nil
}

// describeStack returns nil when the stack does not exist.
func describeStack(ctx context.Context, api API, stackName string) (*types.Stack, error) {
	out, err := api.DescribeStacks(ctx, &cfn.DescribeStacksInput{StackName: aws.String(stackName)})
	if err != nil {
		if isValidationError(err, doesNotExistMessage) {
			return nil, nil
		}
		return nil, err
	}
	for i := range out.Stacks {
		// Deleted stacks are only returned when addressed by ID.
		if out.Stacks[i].StackStatus != types.StackStatusDeleteComplete {
			return &out.Stacks[i], nil
		}
	}
	return nil, nil
}

func waitForStack(
	ctx context.Context,
	api API,
	stackName string,
	op domain.DeployOperation,
	timeout time.Duration,
) error {
	in := &cfn.DescribeStacksInput{StackName: aws.String(stackName)}
	switch op {
	case domain.DeployCreate:
		return cfn.NewStackCreateCompleteWaiter(api).Wait(ctx, in, timeout)
	case domain.DeployUpdate:
		return cfn.NewStackUpdateCompleteWaiter(api).Wait(ctx, in, timeout)
	default:
		return nil
	}
}

func isValidationError(err error, contains string) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorCode() == validationErrorCode && strings.Contains(apiErr.ErrorMessage(), contains)
}

func deployError(err error, stackName string) error {
	return errors.Join(domain.ErrDeployFailed, zerr.With(err, "stack", stackName))
}

package cloudformation_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cfn "github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cicd/internal/adapters/cloudformation"
	"go.trai.ch/cicd/internal/core/domain"
)

const stackID = "arn:aws:cloudformation:us-east-1:123456789012:stack/ReactNativeCicdStack/abc"

type fakeCFN struct {
	stacks      []types.Stack
	describeErr error
	createErr   error
	updateErr   error
	template    string
	templateErr error

	created *cfn.CreateStackInput
	updated *cfn.UpdateStackInput
}

func (f *fakeCFN) DescribeStacks(
	_ context.Context, _ *cfn.DescribeStacksInput, _ ...func(*cfn.Options),
) (*cfn.DescribeStacksOutput, error) {
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	return &cfn.DescribeStacksOutput{Stacks: f.stacks}, nil
}

func (f *fakeCFN) CreateStack(
	_ context.Context, in *cfn.CreateStackInput, _ ...func(*cfn.Options),
) (*cfn.CreateStackOutput, error) {
	f.created = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &cfn.CreateStackOutput{StackId: aws.String(stackID)}, nil
}

func (f *fakeCFN) UpdateStack(
	_ context.Context, in *cfn.UpdateStackInput, _ ...func(*cfn.Options),
) (*cfn.UpdateStackOutput, error) {
	f.updated = in
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &cfn.UpdateStackOutput{StackId: aws.String(stackID)}, nil
}

func (f *fakeCFN) GetTemplate(
	_ context.Context, _ *cfn.GetTemplateInput, _ ...func(*cfn.Options),
) (*cfn.GetTemplateOutput, error) {
	if f.templateErr != nil {
		return nil, f.templateErr
	}
	return &cfn.GetTemplateOutput{TemplateBody: aws.String(f.template)}, nil
}

type fakeSTS struct {
	account string
	err     error
}

func (f *fakeSTS) GetCallerIdentity(
	_ context.Context, _ *sts.GetCallerIdentityInput, _ ...func(*sts.Options),
) (*sts.GetCallerIdentityOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &sts.GetCallerIdentityOutput{Account: aws.String(f.account)}, nil
}

func validationError(msg string) error {
	return &smithy.GenericAPIError{Code: "ValidationError", Message: msg}
}

func notFound() error {
	return validationError("Stack with id ReactNativeCicdStack does not exist")
}

func request() domain.DeployRequest {
	return domain.DeployRequest{
		StackName:    "ReactNativeCicdStack",
		Env:          domain.Env{Account: "123456789012", Region: "us-east-1"},
		TemplateBody: `{"Resources":{}}`,
		Wait:         true,
		Timeout:      time.Minute,
	}
}

func TestDeploy_CreatesMissingStack(t *testing.T) {
	api := &fakeCFN{describeErr: notFound()}
	var waited domain.DeployOperation
	wait := func(_ context.Context, _ cloudformation.API, name string, op domain.DeployOperation, timeout time.Duration) error {
		assert.Equal(t, "ReactNativeCicdStack", name)
		assert.Equal(t, time.Minute, timeout)
		waited = op
		return nil
	}
	d := cloudformation.NewDeployerWithClients(api, &fakeSTS{account: "123456789012"}, wait, "token-1")

	res, err := d.Deploy(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, domain.DeployCreate, res.Operation)
	assert.Equal(t, stackID, res.StackID)
	assert.Equal(t, "123456789012", res.Account)
	assert.Equal(t, domain.DeployCreate, waited)

	require.NotNil(t, api.created)
	assert.Nil(t, api.updated)
	assert.Equal(t, "token-1", aws.ToString(api.created.ClientRequestToken))
	assert.ElementsMatch(t, []types.Capability{
		types.CapabilityCapabilityIam,
		types.CapabilityCapabilityNamedIam,
		types.CapabilityCapabilityAutoExpand,
	}, api.created.Capabilities)
}

func TestDeploy_UpdatesExistingStack(t *testing.T) {
	api := &fakeCFN{stacks: []types.Stack{{
		StackName:   aws.String("ReactNativeCicdStack"),
		StackId:     aws.String(stackID),
		StackStatus: types.StackStatusUpdateComplete,
	}}}
	d := cloudformation.NewDeployerWithClients(api, &fakeSTS{account: "123456789012"}, nil, "token-2")

	res, err := d.Deploy(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, domain.DeployUpdate, res.Operation)
	assert.Nil(t, api.created)
	require.NotNil(t, api.updated)
	assert.Equal(t, `{"Resources":{}}`, aws.ToString(api.updated.TemplateBody))
}

func TestDeploy_NoUpdatesIsNoop(t *testing.T) {
	api := &fakeCFN{
		stacks: []types.Stack{{
			StackId:     aws.String(stackID),
			StackStatus: types.StackStatusCreateComplete,
		}},
		updateErr: validationError("No updates are to be performed."),
	}
	waitCalled := false
	wait := func(context.Context, cloudformation.API, string, domain.DeployOperation, time.Duration) error {
		waitCalled = true
		return nil
	}
	d := cloudformation.NewDeployerWithClients(api, &fakeSTS{account: "123456789012"}, wait, "t")

	res, err := d.Deploy(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, domain.DeployNoop, res.Operation)
	assert.Equal(t, stackID, res.StackID)
	assert.False(t, waitCalled)
}

func TestDeploy_AccountMismatch(t *testing.T) {
	api := &fakeCFN{}
	d := cloudformation.NewDeployerWithClients(api, &fakeSTS{account: "999999999999"}, nil, "t")

	_, err := d.Deploy(context.Background(), request())
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrAccountMismatch)
	assert.Nil(t, api.created)
	assert.Nil(t, api.updated)
}

func TestDeploy_NoAccountConfigured(t *testing.T) {
	api := &fakeCFN{describeErr: notFound()}
	d := cloudformation.NewDeployerWithClients(api, &fakeSTS{account: "999999999999"}, nil, "t")

	req := request()
	req.Env.Account = ""
	res, err := d.Deploy(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "999999999999", res.Account)
}

func TestDeploy_RollbackCompleteIsUnrecoverable(t *testing.T) {
	api := &fakeCFN{stacks: []types.Stack{{
		StackId:     aws.String(stackID),
		StackStatus: types.StackStatusRollbackComplete,
	}}}
	d := cloudformation.NewDeployerWithClients(api, &fakeSTS{account: "123456789012"}, nil, "t")

	_, err := d.Deploy(context.Background(), request())
	require.ErrorIs(t, err, domain.ErrStackUnrecoverable)
	assert.Nil(t, api.updated)
}

func TestDeploy_Failures(t *testing.T) {
	boom := errors.New("throttled")

	tests := []struct {
		name string
		api  *fakeCFN
		wait cloudformation.WaitFunc
	}{
		{
			name: "describe",
			api:  &fakeCFN{describeErr: boom},
		},
		{
			name: "create",
			api:  &fakeCFN{describeErr: notFound(), createErr: boom},
		},
		{
			name: "update",
			api: &fakeCFN{
				stacks:    []types.Stack{{StackStatus: types.StackStatusUpdateComplete}},
				updateErr: boom,
			},
		},
		{
			name: "wait",
			api:  &fakeCFN{describeErr: notFound()},
			wait: func(context.Context, cloudformation.API, string, domain.DeployOperation, time.Duration) error {
				return boom
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := cloudformation.NewDeployerWithClients(tt.api, &fakeSTS{account: "123456789012"}, tt.wait, "t")
			_, err := d.Deploy(context.Background(), request())
			require.ErrorIs(t, err, domain.ErrDeployFailed)
			assert.ErrorContains(t, err, "throttled")
		})
	}
}

func TestDeploy_TemplateTooLarge(t *testing.T) {
	api := &fakeCFN{}
	d := cloudformation.NewDeployerWithClients(api, &fakeSTS{account: "123456789012"}, nil, "t")

	req := request()
	req.TemplateBody = strings.Repeat(" ", 51201)
	_, err := d.Deploy(context.Background(), req)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrDeployFailed.Error())
	assert.Nil(t, api.created)
}

func TestCurrentTemplate(t *testing.T) {
	ctx := context.Background()
	env := domain.Env{Region: "us-east-1"}

	d := cloudformation.NewDeployerWithClients(&fakeCFN{template: `{"a":1}`}, &fakeSTS{}, nil, "t")
	body, found, err := d.CurrentTemplate(ctx, "ReactNativeCicdStack", env)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"a":1}`, body)

	d = cloudformation.NewDeployerWithClients(&fakeCFN{templateErr: notFound()}, &fakeSTS{}, nil, "t")
	_, found, err = d.CurrentTemplate(ctx, "ReactNativeCicdStack", env)
	require.NoError(t, err)
	assert.False(t, found)

	d = cloudformation.NewDeployerWithClients(&fakeCFN{templateErr: errors.New("denied")}, &fakeSTS{}, nil, "t")
	_, _, err = d.CurrentTemplate(ctx, "ReactNativeCicdStack", env)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrTemplateFetchFailed.Error())
}

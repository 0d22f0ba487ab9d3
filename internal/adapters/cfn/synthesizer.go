// Package cfn renders pipeline topologies into CloudFormation templates.
package cfn

import (
	"strings"

	"go.trai.ch/cicd/internal/core/domain"
	"go.trai.ch/zerr"
)

// Resource types emitted by the synthesizer.
const (
	TypeBucket   = "AWS::S3::Bucket"
	TypeKey      = "AWS::KMS::Key"
	TypeRole     = "AWS::IAM::Role"
	TypePolicy   = "AWS::IAM::Policy"
	TypeProject  = "AWS::CodeBuild::Project"
	TypePipeline = "AWS::CodePipeline::Pipeline"
)

const (
	adminPolicyARN = "arn:${AWS::Partition}:iam::aws:policy/AdministratorAccess"
	policyVersion  = "2012-10-17"
	actionVersion  = "1"
	retainPolicy   = "Retain"
)

// PipelineNameOutput is the stack output holding the physical pipeline name.
const PipelineNameOutput = "PipelineName"

// Capabilities the deploy action passes to the stack update.
var deployCapabilities = []string{"CAPABILITY_NAMED_IAM", "CAPABILITY_AUTO_EXPAND"}

// Synthesizer implements ports.Synthesizer for CloudFormation.
type Synthesizer struct{}

// NewSynthesizer creates a new Synthesizer.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

// synthesis holds the state of a single Synthesize call.
type synthesis struct {
	stack    string
	pipeline *domain.Pipeline
	params   domain.Params
	tmpl     *domain.Template

	bucketID     string
	keyID        string
	pipelineID   string
	roleID       string
	policyID     string
	deployRoleID string
	projectIDs   map[string]string
}

// Synthesize renders the pipeline and its supporting resources.
// The pipeline must have been validated.
func (*Synthesizer) Synthesize(
	pipeline *domain.Pipeline,
	params domain.Params,
	stackName string,
) (*domain.Template, error) {
	if pipeline == nil || !pipeline.Validated() {
		return nil, zerr.Wrap(zerr.New("pipeline has not been validated"), domain.ErrSynthFailed.Error())
	}
	if stackName == "" {
		stackName = domain.DefaultStackName
	}

	syn := &synthesis{
		stack:    stackName,
		pipeline: pipeline,
		params:   params,
		tmpl: &domain.Template{
			FormatVersion: domain.TemplateFormatVersion,
			Description:   "Continuous delivery pipeline for stage " + params.StageName,
			Resources:     make(map[string]domain.Resource),
			Outputs:       make(map[string]domain.Output),
		},
		projectIDs: make(map[string]string),
	}

	syn.bucketID = syn.id("ArtifactsBucket")
	syn.pipelineID = syn.id(pipeline.Name)
	syn.roleID = syn.id(pipeline.Name, "Role")
	syn.policyID = syn.id(pipeline.Name, "Role", "DefaultPolicy")

	syn.addArtifactStore()
	for _, stage := range pipeline.Walk() {
		for i := range stage.Actions {
			if err := syn.addActionResources(&stage.Actions[i]); err != nil {
				return nil, err
			}
		}
	}
	stages, err := syn.stages()
	if err != nil {
		return nil, err
	}
	syn.addPipeline(stages)

	return syn.tmpl, nil
}

func (syn *synthesis) id(path ...string) string {
	return LogicalID(append([]string{syn.stack}, path...)...)
}

func (syn *synthesis) addArtifactStore() {
	props := map[string]any{
		"PublicAccessBlockConfiguration": map[string]any{
			"BlockPublicAcls":       true,
			"BlockPublicPolicy":     true,
			"IgnorePublicAcls":      true,
			"RestrictPublicBuckets": true,
		},
	}

	if syn.pipeline.CrossAccountKeys {
		syn.keyID = syn.id("ArtifactsBucketEncryptionKey")
		syn.tmpl.Resources[syn.keyID] = domain.Resource{
			Type: TypeKey,
			Properties: map[string]any{
				"KeyPolicy": policyDocument(statement(
					[]any{"kms:*"},
					Sub("arn:${AWS::Partition}:iam::${AWS::AccountId}:root"),
					"*",
				)),
			},
			DeletionPolicy:      retainPolicy,
			UpdateReplacePolicy: retainPolicy,
		}
		props["BucketEncryption"] = map[string]any{
			"ServerSideEncryptionConfiguration": []any{
				map[string]any{"ServerSideEncryptionByDefault": map[string]any{
					"SSEAlgorithm":   "aws:kms",
					"KMSMasterKeyID": GetAtt(syn.keyID, "Arn"),
				}},
			},
		}
	} else {
		props["BucketEncryption"] = map[string]any{
			"ServerSideEncryptionConfiguration": []any{
				map[string]any{"ServerSideEncryptionByDefault": map[string]any{
					"SSEAlgorithm": "AES256",
				}},
			},
		}
	}

	syn.tmpl.Resources[syn.bucketID] = domain.Resource{
		Type:                TypeBucket,
		Properties:          props,
		DeletionPolicy:      retainPolicy,
		UpdateReplacePolicy: retainPolicy,
	}
}

func (syn *synthesis) addActionResources(action *domain.Action) error {
	switch action.Kind {
	case domain.ActionSource:
		if action.Source == nil {
			return syn.incomplete(action)
		}
	case domain.ActionBuild:
		if action.Build == nil {
			return syn.incomplete(action)
		}
		syn.addBuildProject(action.Build)
	case domain.ActionDeploy:
		if action.Deploy == nil {
			return syn.incomplete(action)
		}
		syn.addDeployRole(action.Deploy)
	default:
		return zerr.With(domain.ErrUnknownActionKind, "action", action.Name.String())
	}
	return nil
}

func (syn *synthesis) incomplete(action *domain.Action) error {
	err := zerr.Wrap(zerr.New("action has no execution environment"), domain.ErrSynthFailed.Error())
	return zerr.With(zerr.With(err, "action", action.Name.String()), "kind", action.Kind.String())
}

func (syn *synthesis) addBuildProject(build *domain.BuildConfig) {
	projectID := syn.id(build.ProjectID)
	roleID := syn.id(build.ProjectID, "Role")
	syn.projectIDs[build.ProjectID] = projectID

	syn.tmpl.Resources[roleID] = domain.Resource{
		Type: TypeRole,
		Properties: map[string]any{
			"AssumeRolePolicyDocument": assumeRole("codebuild.amazonaws.com"),
			"Policies": []any{map[string]any{
				"PolicyName": "BuildPolicy",
				"PolicyDocument": policyDocument(
					statement(
						[]any{"logs:CreateLogGroup", "logs:CreateLogStream", "logs:PutLogEvents"},
						nil,
						Sub("arn:${AWS::Partition}:logs:${AWS::Region}:${AWS::AccountId}:log-group:/aws/codebuild/*"),
					),
					statement(
						[]any{"s3:GetObject*", "s3:GetBucket*", "s3:List*", "s3:PutObject", "s3:DeleteObject*"},
						nil,
						[]any{GetAtt(syn.bucketID, "Arn"), Join("", GetAtt(syn.bucketID, "Arn"), "/*")},
					),
				),
			}},
		},
	}

	syn.tmpl.Resources[projectID] = domain.Resource{
		Type: TypeProject,
		Properties: map[string]any{
			"Source": map[string]any{
				"Type":      "CODEPIPELINE",
				"BuildSpec": build.BuildSpec,
			},
			"Artifacts": map[string]any{"Type": "CODEPIPELINE"},
			"Environment": map[string]any{
				"Type":                     "LINUX_CONTAINER",
				"ComputeType":              build.ComputeType,
				"Image":                    build.Image,
				"PrivilegedMode":           build.Privileged,
				"ImagePullCredentialsType": "CODEBUILD",
			},
			"ServiceRole": GetAtt(roleID, "Arn"),
		},
	}
}

func (syn *synthesis) addDeployRole(deploy *domain.DeployConfig) {
	syn.deployRoleID = syn.id(deploy.StackName, "DeploymentRole")

	props := map[string]any{
		"AssumeRolePolicyDocument": assumeRole("cloudformation.amazonaws.com"),
	}
	if deploy.AdminPermissions {
		props["ManagedPolicyArns"] = []any{Sub(adminPolicyARN)}
	}
	syn.tmpl.Resources[syn.deployRoleID] = domain.Resource{Type: TypeRole, Properties: props}
}

func (syn *synthesis) stages() ([]any, error) {
	stages := make([]any, 0, syn.pipeline.Len())
	for _, stage := range syn.pipeline.Walk() {
		actions := make([]any, 0, len(stage.Actions))
		for i := range stage.Actions {
			declared, err := syn.action(&stage.Actions[i])
			if err != nil {
				return nil, err
			}
			actions = append(actions, declared)
		}
		stages = append(stages, map[string]any{
			"Name":    stage.Name.String(),
			"Actions": actions,
		})
	}
	return stages, nil
}

func (syn *synthesis) action(action *domain.Action) (map[string]any, error) {
	declared := map[string]any{
		"Name":     action.Name.String(),
		"RunOrder": 1,
	}

	switch action.Kind {
	case domain.ActionSource:
		declared["ActionTypeId"] = actionType("Source", "CodeStarSourceConnection")
		declared["Configuration"] = map[string]any{
			"ConnectionArn":    action.Source.ConnectionARN,
			"FullRepositoryId": action.Source.Owner + "/" + action.Source.Repo,
			"BranchName":       action.Source.Branch,
		}
	case domain.ActionBuild:
		declared["ActionTypeId"] = actionType("Build", "CodeBuild")
		declared["Configuration"] = map[string]any{
			"ProjectName": Ref(syn.projectIDs[action.Build.ProjectID]),
		}
	case domain.ActionDeploy:
		declared["ActionTypeId"] = actionType("Deploy", "CloudFormation")
		declared["Configuration"] = map[string]any{
			"StackName":    action.Deploy.StackName,
			"ActionMode":   "CREATE_UPDATE",
			"TemplatePath": action.Deploy.TemplatePath.String(),
			"Capabilities": strings.Join(deployCapabilities, ","),
			"RoleArn":      GetAtt(syn.deployRoleID, "Arn"),
		}
	default:
		return nil, zerr.With(domain.ErrUnknownActionKind, "action", action.Name.String())
	}

	if inputs := action.Consumes(); len(inputs) > 0 {
		declared["InputArtifacts"] = artifactList(inputs)
	}
	if len(action.Outputs) > 0 {
		declared["OutputArtifacts"] = artifactList(action.Outputs)
	}
	return declared, nil
}

func (syn *synthesis) addPipeline(stages []any) {
	syn.tmpl.Resources[syn.roleID] = domain.Resource{
		Type: TypeRole,
		Properties: map[string]any{
			"AssumeRolePolicyDocument": assumeRole("codepipeline.amazonaws.com"),
		},
	}

	syn.tmpl.Resources[syn.policyID] = domain.Resource{
		Type: TypePolicy,
		Properties: map[string]any{
			"PolicyName":     syn.policyID,
			"Roles":          []any{Ref(syn.roleID)},
			"PolicyDocument": syn.pipelinePolicy(),
		},
	}

	store := map[string]any{
		"Type":     "S3",
		"Location": Ref(syn.bucketID),
	}
	if syn.keyID != "" {
		store["EncryptionKey"] = map[string]any{
			"Id":   GetAtt(syn.keyID, "Arn"),
			"Type": "KMS",
		}
	}

	syn.tmpl.Resources[syn.pipelineID] = domain.Resource{
		Type: TypePipeline,
		Properties: map[string]any{
			"Name":                     syn.pipeline.Name,
			"RoleArn":                  GetAtt(syn.roleID, "Arn"),
			"ArtifactStore":            store,
			"RestartExecutionOnUpdate": syn.pipeline.RestartExecutionOnUpdate,
			"Stages":                   stages,
		},
		DependsOn: []string{syn.policyID, syn.roleID},
	}

	syn.tmpl.Outputs[PipelineNameOutput] = domain.Output{
		Description: "Name of the continuous delivery pipeline",
		Value:       Ref(syn.pipelineID),
	}
}

func (syn *synthesis) pipelinePolicy() map[string]any {
	statements := []any{
		statement(
			[]any{"s3:GetObject*", "s3:GetBucket*", "s3:List*", "s3:PutObject", "s3:DeleteObject*"},
			nil,
			[]any{GetAtt(syn.bucketID, "Arn"), Join("", GetAtt(syn.bucketID, "Arn"), "/*")},
		),
	}

	if syn.params.CodeStarConnection != "" {
		statements = append(statements, statement(
			[]any{"codestar-connections:UseConnection"},
			nil,
			syn.params.CodeStarConnection,
		))
	}

	if len(syn.projectIDs) > 0 {
		projects := make([]any, 0, len(syn.projectIDs))
		for _, stage := range syn.pipeline.Walk() {
			for _, action := range stage.Actions {
				if action.Build != nil {
					projects = append(projects, GetAtt(syn.projectIDs[action.Build.ProjectID], "Arn"))
				}
			}
		}
		statements = append(statements, statement(
			[]any{"codebuild:BatchGetBuilds", "codebuild:StartBuild", "codebuild:StopBuild"},
			nil,
			projects,
		))
	}

	if syn.deployRoleID != "" {
		statements = append(statements,
			statement([]any{"iam:PassRole"}, nil, GetAtt(syn.deployRoleID, "Arn")),
			statement(
				[]any{
					"cloudformation:CreateStack",
					"cloudformation:DeleteStack",
					"cloudformation:DescribeStack*",
					"cloudformation:GetStackPolicy",
					"cloudformation:GetTemplate*",
					"cloudformation:SetStackPolicy",
					"cloudformation:UpdateStack",
					"cloudformation:ValidateTemplate",
				},
				nil,
				Sub("arn:${AWS::Partition}:cloudformation:${AWS::Region}:${AWS::AccountId}:stack/*"),
			),
		)
	}

	return policyDocument(statements...)
}

func actionType(category, provider string) map[string]any {
	return map[string]any{
		"Category": category,
		"Owner":    "AWS",
		"Provider": provider,
		"Version":  actionVersion,
	}
}

func artifactList(names []domain.InternedString) []any {
	list := make([]any, len(names))
	for i, n := range names {
		list[i] = map[string]any{"Name": n.String()}
	}
	return list
}

func assumeRole(service string) map[string]any {
	return policyDocument(map[string]any{
		"Effect":    "Allow",
		"Action":    "sts:AssumeRole",
		"Principal": map[string]any{"Service": service},
	})
}

func policyDocument(statements ...any) map[string]any {
	return map[string]any{
		"Version":   policyVersion,
		"Statement": statements,
	}
}

// statement returns an Allow statement. A nil principal is omitted.
func statement(actions []any, principal, resource any) map[string]any {
	s := map[string]any{
		"Effect":   "Allow",
		"Action":   actions,
		"Resource": resource,
	}
	if principal != nil {
		s["Principal"] = map[string]any{"AWS": principal}
	}
	return s
}

package stacks

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecr"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	blocks "github.com/lex00/cdk-blocks-go"
	"github.com/lex00/cdk-blocks-go/ecr"
	"github.com/lex00/cdk-blocks-go/internal/config"
)

type EcrStackProps struct {
	awscdk.StackProps
	Registry config.Registry
}

type EcrStack struct {
	awscdk.Stack
	Repository awsecr.Repository
}

// NewEcrStack creates the image repository, shared with every account in
// CROSS_ACCOUNT_ACCESS_ACCOUNT_IDS.
func NewEcrStack(scope constructs.Construct, id string, props *EcrStackProps) EcrStack {
	stack := awscdk.NewStack(scope, jsii.String(id), &props.StackProps)

	opts := &ecr.RepositoryOptions{RepositoryName: props.Registry.RepositoryName}
	if len(props.Registry.CrossAccountIDs) > 0 {
		opts.CrossAccount = blocks.Some(props.Registry.CrossAccountIDs)
	}
	repo := ecr.NewRepository(stack, "Repository", opts)
	awscdk.NewCfnOutput(stack, jsii.String("RepositoryUri"), &awscdk.CfnOutputProps{Value: repo.RepositoryUri()})
	return EcrStack{Stack: stack, Repository: repo}
}

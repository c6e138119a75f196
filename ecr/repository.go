// Package ecr provides a container registry block with optional
// cross-account push and pull access.
package ecr

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecr"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	blocks "github.com/lex00/cdk-blocks-go"
)

var pullPushActions = []string{
	"ecr:BatchCheckLayerAvailability",
	"ecr:BatchGetImage",
	"ecr:CompleteLayerUpload",
	"ecr:GetDownloadUrlForLayer",
	"ecr:InitiateLayerUpload",
	"ecr:PutImage",
	"ecr:UploadLayerPart",
}

// PullPushActions returns the actions granted to cross-account principals.
func PullPushActions() []string {
	return append([]string(nil), pullPushActions...)
}

// RepositoryOptions configures NewRepository.
type RepositoryOptions struct {
	RepositoryName string
	ScanOnPush     bool
	// MutableTags switches tag mutability from IMMUTABLE.
	MutableTags bool
	// AESEncryption switches encryption from KMS.
	AESEncryption bool
	// CrossAccount grants the pull/push actions to these account ids.
	CrossAccount blocks.Optional[[]string]
	// Retain keeps the repository when its stack is deleted.
	Retain bool
}

// NewRepository creates a KMS-encrypted repository with immutable tags.
func NewRepository(scope constructs.Construct, id string, opts *RepositoryOptions) awsecr.Repository {
	if opts == nil {
		opts = &RepositoryOptions{}
	}

	props := &awsecr.RepositoryProps{
		ImageScanOnPush:    jsii.Bool(opts.ScanOnPush),
		Encryption:         awsecr.RepositoryEncryption_KMS(),
		ImageTagMutability: awsecr.TagMutability_IMMUTABLE,
	}
	if opts.RepositoryName != "" {
		props.RepositoryName = jsii.String(opts.RepositoryName)
	}
	if opts.AESEncryption {
		props.Encryption = awsecr.RepositoryEncryption_AES_256()
	}
	if opts.MutableTags {
		props.ImageTagMutability = awsecr.TagMutability_MUTABLE
	}
	if opts.Retain {
		props.RemovalPolicy = awscdk.RemovalPolicy_RETAIN
	}

	repo := awsecr.NewRepository(scope, jsii.String(id), props)

	if accounts, ok := opts.CrossAccount.Get(); ok && len(accounts) > 0 {
		principals := make([]awsiam.IPrincipal, 0, len(accounts))
		for _, account := range accounts {
			principals = append(principals, awsiam.NewAccountPrincipal(jsii.String(account)))
		}
		repo.AddToResourcePolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
			Sid:        jsii.String("CrossAccountPullPush"),
			Effect:     awsiam.Effect_ALLOW,
			Actions:    jsii.Strings(pullPushActions...),
			Principals: &principals,
		}))
	}
	return repo
}

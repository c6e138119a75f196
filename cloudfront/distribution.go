// Package cloudfront provides a CloudFront distribution block with optional
// origin access control.
package cloudfront

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscertificatemanager"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfront"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	blocks "github.com/lex00/cdk-blocks-go"
	"github.com/lex00/cdk-blocks-go/override"
)

// DefaultRootObject is served for requests to "/".
const DefaultRootObject = "index.html"

// OACSuffix names the origin access control companion construct.
const OACSuffix = "OAC"

// OACOptions configures the origin access control.
type OACOptions struct {
	// Name defaults to the distribution id plus "OAC".
	Name        string
	Description string
}

// DistributionOptions configures NewDistribution.
type DistributionOptions struct {
	DefaultBehavior *awscloudfront.BehaviorOptions
	// CertificateArn is an ACM certificate in us-east-1.
	CertificateArn    string
	DomainNames       []string
	DefaultRootObject string
	ErrorResponses    []*awscloudfront.ErrorResponse
	WebAclID          string
	Comment           string
	// OriginAccessControl attaches an OAC to the first origin and clears its
	// legacy origin access identity.
	OriginAccessControl blocks.Optional[OACOptions]
}

// OriginAccessControlOverrides returns the overrides that point the first
// origin at oacID and blank its origin access identity.
func OriginAccessControlOverrides(oacID any) []override.Override {
	origin := override.Path{override.Key("DistributionConfig"), override.Key("Origins"), override.Index(0)}
	return []override.Override{
		{
			Path:  append(append(override.Path{}, origin...), override.Key("OriginAccessControlId")),
			Value: oacID,
		},
		{
			Path:  append(append(override.Path{}, origin...), override.Key("S3OriginConfig"), override.Key("OriginAccessIdentity")),
			Value: "",
		},
	}
}

// NewDistribution creates a distribution. With OriginAccessControl set it
// also creates id+"OAC" and patches the generated distribution to use it.
func NewDistribution(scope constructs.Construct, id string, opts *DistributionOptions) (awscloudfront.Distribution, error) {
	if opts == nil {
		opts = &DistributionOptions{}
	}

	rootObject := opts.DefaultRootObject
	if rootObject == "" {
		rootObject = DefaultRootObject
	}

	props := &awscloudfront.DistributionProps{
		DefaultBehavior:   opts.DefaultBehavior,
		DefaultRootObject: jsii.String(rootObject),
	}
	if opts.CertificateArn != "" {
		props.Certificate = awscertificatemanager.Certificate_FromCertificateArn(
			scope, jsii.String(blocks.ChildID(id, "Certificate")), jsii.String(opts.CertificateArn))
	}
	if len(opts.DomainNames) > 0 {
		props.DomainNames = jsii.Strings(opts.DomainNames...)
	}
	if len(opts.ErrorResponses) > 0 {
		responses := append([]*awscloudfront.ErrorResponse(nil), opts.ErrorResponses...)
		props.ErrorResponses = &responses
	}
	if opts.WebAclID != "" {
		props.WebAclId = jsii.String(opts.WebAclID)
	}
	if opts.Comment != "" {
		props.Comment = jsii.String(opts.Comment)
	}

	distribution := awscloudfront.NewDistribution(scope, jsii.String(id), props)

	oacOpts, ok := opts.OriginAccessControl.Get()
	if !ok {
		return distribution, nil
	}

	name := oacOpts.Name
	if name == "" {
		name = blocks.ChildID(id, OACSuffix)
	}
	config := &awscloudfront.CfnOriginAccessControl_OriginAccessControlConfigProperty{
		Name:                          jsii.String(name),
		OriginAccessControlOriginType: jsii.String("s3"),
		SigningBehavior:               jsii.String("always"),
		SigningProtocol:               jsii.String("sigv4"),
	}
	if oacOpts.Description != "" {
		config.Description = jsii.String(oacOpts.Description)
	}
	oac := awscloudfront.NewCfnOriginAccessControl(scope, jsii.String(blocks.ChildID(id, OACSuffix)), &awscloudfront.CfnOriginAccessControlProps{
		OriginAccessControlConfig: config,
	})

	cfn, ok := distribution.Node().DefaultChild().(awscdk.CfnResource)
	if !ok {
		return nil, fmt.Errorf("distribution %s: default child is not a CloudFormation resource", id)
	}
	if err := override.Apply(cfn, override.KnownProperties, OriginAccessControlOverrides(oac.AttrId())...); err != nil {
		return nil, fmt.Errorf("distribution %s: %w", id, err)
	}
	return distribution, nil
}

package stacks

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscertificatemanager"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfront"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfrontorigins"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/aws-cdk-go/awscdk/v2/awswafv2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	blocks "github.com/lex00/cdk-blocks-go"
	"github.com/lex00/cdk-blocks-go/cloudfront"
	"github.com/lex00/cdk-blocks-go/iam"
	"github.com/lex00/cdk-blocks-go/internal/config"
	"github.com/lex00/cdk-blocks-go/s3"
	"github.com/lex00/cdk-blocks-go/waf"
)

type CloudFrontStackProps struct {
	awscdk.StackProps
	WebApp config.WebApp
}

type CloudFrontStack struct {
	awscdk.Stack
	Bucket       awss3.Bucket
	Distribution awscloudfront.Distribution
	// WebACL is nil unless WEB_APP_WAF is set.
	WebACL awswafv2.CfnWebACL
}

// NewCloudFrontStack serves a private bucket through a distribution with
// origin access control. Unknown paths fall back to index.html.
func NewCloudFrontStack(scope constructs.Construct, id string, props *CloudFrontStackProps) (CloudFrontStack, error) {
	stack := awscdk.NewStack(scope, jsii.String(id), &props.StackProps)
	cfg := props.WebApp
	out := CloudFrontStack{Stack: stack}

	out.Bucket = s3.NewBucket(stack, "WebAppBucket", &s3.BucketOptions{BucketName: cfg.Bucket})

	opts := &cloudfront.DistributionOptions{
		DefaultBehavior: &awscloudfront.BehaviorOptions{
			Origin:               awscloudfrontorigins.S3BucketOrigin_WithBucketDefaults(out.Bucket, nil),
			ViewerProtocolPolicy: awscloudfront.ViewerProtocolPolicy_REDIRECT_TO_HTTPS,
		},
		CertificateArn:      cfg.CertificateArn,
		DomainNames:         cfg.DomainNames,
		ErrorResponses:      spaErrorResponses(),
		OriginAccessControl: blocks.Some(cloudfront.OACOptions{}),
	}
	if cfg.WAF {
		acl, err := waf.NewWebACL(stack, "WebAppWebACL", &waf.WebACLOptions{
			Scope: waf.ScopeCloudFront,
			Rules: waf.CannedRateLimits(),
		})
		if err != nil {
			return CloudFrontStack{}, fmt.Errorf("stack %s: %w", id, err)
		}
		out.WebACL = acl
		opts.WebAclID = *acl.AttrArn()
	}

	dist, err := cloudfront.NewDistribution(stack, "WebAppDistribution", opts)
	if err != nil {
		return CloudFrontStack{}, fmt.Errorf("stack %s: %w", id, err)
	}
	out.Distribution = dist
	out.Bucket.AddToResourcePolicy(iam.CloudFrontReadOnly(out.Bucket, *stack.Account(), *dist.DistributionId()))

	awscdk.NewCfnOutput(stack, jsii.String("DistributionDomainName"), &awscdk.CfnOutputProps{
		Value: dist.DistributionDomainName(),
	})
	return out, nil
}

func spaErrorResponses() []*awscloudfront.ErrorResponse {
	responses := make([]*awscloudfront.ErrorResponse, 0, 2)
	for _, status := range []float64{403, 404} {
		responses = append(responses, &awscloudfront.ErrorResponse{
			HttpStatus:         jsii.Number(status),
			ResponseHttpStatus: jsii.Number(200),
			ResponsePagePath:   jsii.String("/" + cloudfront.DefaultRootObject),
		})
	}
	return responses
}

type S3StackProps struct {
	awscdk.StackProps
	Storage config.Storage
}

type S3Stack struct {
	awscdk.Stack
	Bucket awss3.Bucket
}

// NewS3Stack creates the versioned, retained management zones bucket.
func NewS3Stack(scope constructs.Construct, id string, props *S3StackProps) S3Stack {
	stack := awscdk.NewStack(scope, jsii.String(id), &props.StackProps)
	bucket := s3.NewBucket(stack, "ManagementZonesBucket", &s3.BucketOptions{
		BucketName: props.Storage.ManagementZonesBucket,
		Versioned:  true,
		Retain:     true,
	})
	return S3Stack{Stack: stack, Bucket: bucket}
}

type CertificateStackProps struct {
	awscdk.StackProps
	Certificate config.Certificate
}

type CertificateStack struct {
	awscdk.Stack
	Certificate awscertificatemanager.Certificate
}

// NewCertificateStack requests a DNS-validated certificate.
func NewCertificateStack(scope constructs.Construct, id string, props *CertificateStackProps) CertificateStack {
	stack := awscdk.NewStack(scope, jsii.String(id), &props.StackProps)
	cert := awscertificatemanager.NewCertificate(stack, jsii.String("Certificate"), &awscertificatemanager.CertificateProps{
		DomainName: jsii.String(props.Certificate.DomainName),
		Validation: awscertificatemanager.CertificateValidation_FromDns(nil),
	})
	awscdk.NewCfnOutput(stack, jsii.String("CertificateArn"), &awscdk.CfnOutputProps{Value: cert.CertificateArn()})
	return CertificateStack{Stack: stack, Certificate: cert}
}

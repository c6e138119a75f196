// Package s3 provides an S3 bucket block.
package s3

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// BucketOptions configures NewBucket.
type BucketOptions struct {
	BucketName           string
	WebsiteIndexDocument string
	WebsiteErrorDocument string
	Versioned            bool
	// Retain keeps the bucket when its stack is deleted.
	Retain bool
}

// NewBucket creates an S3-managed-encryption bucket with public access blocked.
func NewBucket(scope constructs.Construct, id string, opts *BucketOptions) awss3.Bucket {
	if opts == nil {
		opts = &BucketOptions{}
	}

	props := &awss3.BucketProps{
		Encryption:        awss3.BucketEncryption_S3_MANAGED,
		BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
		EnforceSSL:        jsii.Bool(true),
		Versioned:         jsii.Bool(opts.Versioned),
	}
	if opts.BucketName != "" {
		props.BucketName = jsii.String(opts.BucketName)
	}
	if opts.WebsiteIndexDocument != "" {
		props.WebsiteIndexDocument = jsii.String(opts.WebsiteIndexDocument)
	}
	if opts.WebsiteErrorDocument != "" {
		props.WebsiteErrorDocument = jsii.String(opts.WebsiteErrorDocument)
	}
	if opts.Retain {
		props.RemovalPolicy = awscdk.RemovalPolicy_RETAIN
	}

	return awss3.NewBucket(scope, jsii.String(id), props)
}

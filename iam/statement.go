// Package iam provides policy statement helpers.
package iam

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/jsii-runtime-go"
)

// StatementOptions configures NewPolicyStatement. Effect defaults to Allow.
type StatementOptions struct {
	Sid        string
	Effect     awsiam.Effect
	Actions    []string
	Resources  []string
	Principals []awsiam.IPrincipal
	Conditions map[string]interface{}
}

// NewPolicyStatement builds a statement from opts.
func NewPolicyStatement(opts *StatementOptions) awsiam.PolicyStatement {
	if opts == nil {
		opts = &StatementOptions{}
	}
	props := &awsiam.PolicyStatementProps{
		Effect: awsiam.Effect_ALLOW,
	}
	if opts.Effect != "" {
		props.Effect = opts.Effect
	}
	if opts.Sid != "" {
		props.Sid = jsii.String(opts.Sid)
	}
	if len(opts.Actions) > 0 {
		props.Actions = jsii.Strings(opts.Actions...)
	}
	if len(opts.Resources) > 0 {
		props.Resources = jsii.Strings(opts.Resources...)
	}
	if len(opts.Principals) > 0 {
		principals := append([]awsiam.IPrincipal(nil), opts.Principals...)
		props.Principals = &principals
	}
	if len(opts.Conditions) > 0 {
		conditions := make(map[string]interface{}, len(opts.Conditions))
		for k, v := range opts.Conditions {
			conditions[k] = v
		}
		props.Conditions = &conditions
	}
	return awsiam.NewPolicyStatement(props)
}

// CloudFrontReadOnly lets the distribution distributionID in account read
// every object in bucket. The distribution ARN uses the partition of the
// bucket's stack.
func CloudFrontReadOnly(bucket awss3.IBucket, account, distributionID string) awsiam.PolicyStatement {
	distributionArn := awscdk.Stack_Of(bucket).FormatArn(&awscdk.ArnComponents{
		Service:      jsii.String("cloudfront"),
		Region:       jsii.String(""),
		Account:      jsii.String(account),
		Resource:     jsii.String("distribution"),
		ResourceName: jsii.String(distributionID),
	})
	return NewPolicyStatement(&StatementOptions{
		Sid:        "AllowCloudFrontServicePrincipalReadOnly",
		Actions:    []string{"s3:GetObject"},
		Resources:  []string{*bucket.ArnForObjects(jsii.String("*"))},
		Principals: []awsiam.IPrincipal{awsiam.NewServicePrincipal(jsii.String("cloudfront.amazonaws.com"), nil)},
		Conditions: map[string]interface{}{
			"StringEquals": map[string]interface{}{
				"AWS:SourceArn": *distributionArn,
			},
		},
	})
}

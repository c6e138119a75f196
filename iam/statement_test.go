package iam

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolved(t *testing.T, stack awscdk.Stack, stmt awsiam.PolicyStatement) map[string]interface{} {
	t.Helper()
	out, ok := stack.Resolve(stmt.ToStatementJson()).(map[string]interface{})
	require.True(t, ok)
	return out
}

func TestNewPolicyStatement(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("IamTest"), nil)

	stmt := NewPolicyStatement(&StatementOptions{
		Sid:       "ReadQueue",
		Actions:   []string{"sqs:ReceiveMessage"},
		Resources: []string{"arn:aws:sqs:us-east-1:111111111111:orders"},
	})

	json := resolved(t, stack, stmt)
	assert.Equal(t, "ReadQueue", json["Sid"])
	assert.Equal(t, "Allow", json["Effect"])
	assert.Equal(t, "sqs:ReceiveMessage", json["Action"])
	assert.Equal(t, "arn:aws:sqs:us-east-1:111111111111:orders", json["Resource"])
}

func TestNewPolicyStatement_Deny(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("IamDeny"), nil)

	stmt := NewPolicyStatement(&StatementOptions{
		Effect:    awsiam.Effect_DENY,
		Actions:   []string{"s3:DeleteObject"},
		Resources: []string{"*"},
	})
	assert.Equal(t, "Deny", resolved(t, stack, stmt)["Effect"])
}

func TestCloudFrontReadOnly(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("IamCdn"), nil)
	bucket := awss3.Bucket_FromBucketName(stack, jsii.String("Site"), jsii.String("site-bucket"))

	json := resolved(t, stack, CloudFrontReadOnly(bucket, "111111111111", "E123"))

	assert.Equal(t, "s3:GetObject", json["Action"])
	assert.Equal(t, map[string]interface{}{"Service": "cloudfront.amazonaws.com"}, json["Principal"])
	assert.Equal(t, map[string]interface{}{
		"StringEquals": map[string]interface{}{
			"AWS:SourceArn": map[string]interface{}{
				"Fn::Join": []interface{}{"", []interface{}{
					"arn:", map[string]interface{}{"Ref": "AWS::Partition"}, ":cloudfront::111111111111:distribution/E123",
				}},
			},
		},
	}, json["Condition"])
	assert.NotNil(t, json["Resource"])
}

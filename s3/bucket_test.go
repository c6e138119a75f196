package s3

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/require"
)

func TestNewBucket(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("BucketTest"), nil)

	bucket := NewBucket(stack, "WebApp", &BucketOptions{
		BucketName:           "web-app-dev",
		WebsiteIndexDocument: "index.html",
		WebsiteErrorDocument: "error.html",
		Retain:               true,
	})
	require.NotNil(t, bucket)

	template := assertions.Template_FromStack(stack, nil)
	template.HasResourceProperties(jsii.String("AWS::S3::Bucket"), map[string]interface{}{
		"BucketName": "web-app-dev",
		"WebsiteConfiguration": map[string]interface{}{
			"IndexDocument": "index.html",
			"ErrorDocument": "error.html",
		},
		"PublicAccessBlockConfiguration": map[string]interface{}{
			"BlockPublicAcls":       true,
			"BlockPublicPolicy":     true,
			"IgnorePublicAcls":      true,
			"RestrictPublicBuckets": true,
		},
	})
	template.HasResource(jsii.String("AWS::S3::Bucket"), map[string]interface{}{
		"DeletionPolicy": "Retain",
	})
}

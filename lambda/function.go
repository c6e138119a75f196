// Package lambda provides a function block whose code is fetched from S3.
package lambda

import (
	"time"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	blocks "github.com/lex00/cdk-blocks-go"
	"github.com/lex00/cdk-blocks-go/apigateway"
)

// DefaultTimeout applies when FunctionOptions.Timeout is zero.
const DefaultTimeout = 60 * time.Second

// Companion construct prefixes. Unlike other blocks these lead the id.
const (
	CodeBucketPrefix = "CodeBucket"
	RestAPIPrefix    = "RestApi"
)

// Code locates the deployment package.
type Code struct {
	Bucket        string
	Key           string
	ObjectVersion string
}

// RestAPIOptions configures the optional proxy API in front of the function.
type RestAPIOptions struct {
	Proxy blocks.Optional[bool]
}

// FunctionOptions configures NewFunction.
type FunctionOptions struct {
	FunctionName string
	// Runtime defaults to provided.al2023.
	Runtime     awslambda.Runtime
	Handler     string
	Timeout     time.Duration
	MemoryMiB   int
	Environment map[string]string
	Code        Code
	Vpc         awsec2.IVpc
	VpcSubnets  *awsec2.SubnetSelection
	RestAPI     blocks.Optional[RestAPIOptions]
}

// Function is the created function and, when requested, its REST API.
type Function struct {
	awslambda.Function
	RestAPI awsapigateway.LambdaRestApi
}

// NewFunction creates a function from an existing S3 object and lets it read
// the code bucket. With RestAPI set it also creates "RestApi"+id.
func NewFunction(scope constructs.Construct, id string, opts *FunctionOptions) Function {
	if opts == nil {
		opts = &FunctionOptions{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runtime := opts.Runtime
	if runtime == nil {
		runtime = awslambda.Runtime_PROVIDED_AL2023()
	}
	handler := opts.Handler
	if handler == "" {
		handler = "bootstrap"
	}

	bucket := awss3.Bucket_FromBucketName(scope, jsii.String(CodeBucketPrefix+id), jsii.String(opts.Code.Bucket))

	var objectVersion *string
	if opts.Code.ObjectVersion != "" {
		objectVersion = jsii.String(opts.Code.ObjectVersion)
	}
	props := &awslambda.FunctionProps{
		Runtime: runtime,
		Handler: jsii.String(handler),
		Timeout: awscdk.Duration_Seconds(jsii.Number(timeout.Seconds())),
		Code:    awslambda.Code_FromBucket(bucket, jsii.String(opts.Code.Key), objectVersion),
	}
	if opts.FunctionName != "" {
		props.FunctionName = jsii.String(opts.FunctionName)
	}
	if opts.MemoryMiB > 0 {
		props.MemorySize = jsii.Number(float64(opts.MemoryMiB))
	}
	if len(opts.Environment) > 0 {
		env := make(map[string]*string, len(opts.Environment))
		for k, v := range opts.Environment {
			env[k] = jsii.String(v)
		}
		props.Environment = &env
	}
	if opts.Vpc != nil {
		props.Vpc = opts.Vpc
		props.VpcSubnets = opts.VpcSubnets
	}

	fn := awslambda.NewFunction(scope, jsii.String(id), props)
	fn.AddToRolePolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
		Actions:   jsii.Strings("s3:GetObject"),
		Resources: jsii.Strings(*bucket.ArnForObjects(jsii.String("*"))),
	}))

	out := Function{Function: fn}
	if api, ok := opts.RestAPI.Get(); ok {
		out.RestAPI = apigateway.NewLambdaProxy(scope, RestAPIPrefix+id, &apigateway.LambdaProxyOptions{
			Handler: fn,
			Proxy:   api.Proxy,
		})
	}
	return out
}

package stacks

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	blocks "github.com/lex00/cdk-blocks-go"
	"github.com/lex00/cdk-blocks-go/internal/config"
	"github.com/lex00/cdk-blocks-go/lambda"
)

type LambdaStackProps struct {
	awscdk.StackProps
	// Vpc is optional; the function runs in its private subnets when set.
	Vpc    awsec2.IVpc
	Lambda config.Lambda
}

type LambdaStack struct {
	awscdk.Stack
	Function lambda.Function
}

// NewLambdaStack deploys the package at LAMBDA_CODE_BUCKET/LAMBDA_CODE_KEY
// behind a proxy REST API.
func NewLambdaStack(scope constructs.Construct, id string, props *LambdaStackProps) LambdaStack {
	stack := awscdk.NewStack(scope, jsii.String(id), &props.StackProps)

	opts := &lambda.FunctionOptions{
		Code:    lambda.Code{Bucket: props.Lambda.CodeBucket, Key: props.Lambda.CodeKey},
		RestAPI: blocks.Some(lambda.RestAPIOptions{}),
	}
	if props.Vpc != nil {
		opts.Vpc = props.Vpc
		opts.VpcSubnets = &awsec2.SubnetSelection{SubnetType: awsec2.SubnetType_PRIVATE_WITH_EGRESS}
	}
	fn := lambda.NewFunction(stack, "LambdaFunction", opts)
	return LambdaStack{Stack: stack, Function: fn}
}

// Package apigateway provides REST API blocks: an HTTP proxy gateway and a
// Lambda-backed proxy API.
package apigateway

import (
	"time"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	blocks "github.com/lex00/cdk-blocks-go"
)

const (
	// DefaultIntegrationTimeout is the API Gateway maximum for REST integrations.
	DefaultIntegrationTimeout = 29 * time.Second
	DefaultStageName          = "prod"
)

// HTTPProxyOptions configures NewHTTPProxy.
type HTTPProxyOptions struct {
	RestAPIName string
	// URL is the backend every request under {proxy+} is forwarded to,
	// e.g. "https://api.internal.example.com/{proxy}".
	URL                string
	IntegrationTimeout time.Duration
	StageName          string
	// EndpointTypes defaults to REGIONAL.
	EndpointTypes []awsapigateway.EndpointType
}

// NewHTTPProxy creates a REST API that forwards ANY /{proxy+} to opts.URL,
// with CORS open to all origins and methods.
func NewHTTPProxy(scope constructs.Construct, id string, opts *HTTPProxyOptions) awsapigateway.RestApi {
	if opts == nil {
		opts = &HTTPProxyOptions{}
	}
	timeout := opts.IntegrationTimeout
	if timeout <= 0 {
		timeout = DefaultIntegrationTimeout
	}
	stage := opts.StageName
	if stage == "" {
		stage = DefaultStageName
	}
	endpoints := opts.EndpointTypes
	if len(endpoints) == 0 {
		endpoints = []awsapigateway.EndpointType{awsapigateway.EndpointType_REGIONAL}
	}

	props := &awsapigateway.RestApiProps{
		EndpointTypes: &endpoints,
		Deploy:        jsii.Bool(true),
		DeployOptions: &awsapigateway.StageOptions{StageName: jsii.String(stage)},
	}
	if opts.RestAPIName != "" {
		props.RestApiName = jsii.String(opts.RestAPIName)
	}
	api := awsapigateway.NewRestApi(scope, jsii.String(id), props)

	integration := awsapigateway.NewHttpIntegration(jsii.String(opts.URL), &awsapigateway.HttpIntegrationProps{
		HttpMethod: jsii.String("ANY"),
		Proxy:      jsii.Bool(true),
		Options: &awsapigateway.IntegrationOptions{
			Timeout: awscdk.Duration_Millis(jsii.Number(float64(timeout.Milliseconds()))),
			RequestParameters: &map[string]*string{
				"integration.request.path.proxy": jsii.String("method.request.path.proxy"),
			},
		},
	})

	api.Root().AddProxy(&awsapigateway.ProxyResourceOptions{
		AnyMethod:          jsii.Bool(true),
		DefaultIntegration: integration,
		DefaultMethodOptions: &awsapigateway.MethodOptions{
			RequestParameters: &map[string]*bool{
				"method.request.path.proxy": jsii.Bool(true),
			},
		},
		DefaultCorsPreflightOptions: &awsapigateway.CorsOptions{
			AllowOrigins:     awsapigateway.Cors_ALL_ORIGINS(),
			AllowMethods:     awsapigateway.Cors_ALL_METHODS(),
			AllowHeaders:     awsapigateway.Cors_DEFAULT_HEADERS(),
			AllowCredentials: jsii.Bool(true),
		},
	})
	return api
}

// LambdaProxyOptions configures NewLambdaProxy.
type LambdaProxyOptions struct {
	Handler awslambda.IFunction
	// Proxy defaults to true: every path and method reaches Handler.
	Proxy blocks.Optional[bool]
}

// NewLambdaProxy creates a REST API backed by a single function.
func NewLambdaProxy(scope constructs.Construct, id string, opts *LambdaProxyOptions) awsapigateway.LambdaRestApi {
	if opts == nil {
		opts = &LambdaProxyOptions{}
	}
	return awsapigateway.NewLambdaRestApi(scope, jsii.String(id), &awsapigateway.LambdaRestApiProps{
		Handler: opts.Handler,
		Proxy:   jsii.Bool(opts.Proxy.OrElse(true)),
	})
}

package apigateway

import (
	"testing"
	"time"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPProxy_Defaults(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("GatewayTest"), nil)

	api := NewHTTPProxy(stack, "Gateway", &HTTPProxyOptions{
		RestAPIName: "edge",
		URL:         "https://backend.example.com/{proxy}",
	})
	require.NotNil(t, api)

	template := assertions.Template_FromStack(stack, nil)
	template.HasResourceProperties(jsii.String("AWS::ApiGateway::RestApi"), map[string]interface{}{
		"Name":                  "edge",
		"EndpointConfiguration": map[string]interface{}{"Types": []interface{}{"REGIONAL"}},
	})
	template.HasResourceProperties(jsii.String("AWS::ApiGateway::Stage"), map[string]interface{}{
		"StageName": "prod",
	})
	template.HasResourceProperties(jsii.String("AWS::ApiGateway::Resource"), map[string]interface{}{
		"PathPart": "{proxy+}",
	})
	template.HasResourceProperties(jsii.String("AWS::ApiGateway::Method"), map[string]interface{}{
		"HttpMethod": "ANY",
		"RequestParameters": map[string]interface{}{
			"method.request.path.proxy": true,
		},
		"Integration": assertions.Match_ObjectLike(&map[string]interface{}{
			"Type":                  "HTTP_PROXY",
			"IntegrationHttpMethod": "ANY",
			"Uri":                   "https://backend.example.com/{proxy}",
			"TimeoutInMillis":       29000,
			"RequestParameters": map[string]interface{}{
				"integration.request.path.proxy": "method.request.path.proxy",
			},
		}),
	})
	template.HasResourceProperties(jsii.String("AWS::ApiGateway::Method"), map[string]interface{}{
		"HttpMethod": "OPTIONS",
	})
}

func TestNewHTTPProxy_Overrides(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("GatewayStage"), nil)

	NewHTTPProxy(stack, "Gateway", &HTTPProxyOptions{
		URL:                "https://backend.example.com/{proxy}",
		IntegrationTimeout: 10 * time.Second,
		StageName:          "v1",
	})

	template := assertions.Template_FromStack(stack, nil)
	template.HasResourceProperties(jsii.String("AWS::ApiGateway::Stage"), map[string]interface{}{
		"StageName": "v1",
	})
	template.HasResourceProperties(jsii.String("AWS::ApiGateway::Method"), map[string]interface{}{
		"HttpMethod": "ANY",
		"Integration": assertions.Match_ObjectLike(&map[string]interface{}{
			"TimeoutInMillis": 10000,
		}),
	})
}

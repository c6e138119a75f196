package stacks

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecspatterns"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssecretsmanager"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	blocks "github.com/lex00/cdk-blocks-go"
	"github.com/lex00/cdk-blocks-go/ecs"
	"github.com/lex00/cdk-blocks-go/internal/config"
)

// SampleImage runs when no container image is configured.
const SampleImage = "amazon/amazon-ecs-sample"

// SecretsEnvVar receives the whole application secret in each task.
const SecretsEnvVar = "APP_SECRETS"

type EcsClusterStackProps struct {
	awscdk.StackProps
	Vpc awsec2.IVpc
}

type EcsClusterStack struct {
	awscdk.Stack
	Cluster awsecs.Cluster
}

func NewEcsClusterStack(scope constructs.Construct, id string, props *EcsClusterStackProps) EcsClusterStack {
	stack := awscdk.NewStack(scope, jsii.String(id), &props.StackProps)
	cluster := ecs.NewCluster(stack, "EcsCluster", &ecs.ClusterOptions{Vpc: props.Vpc})
	return EcsClusterStack{Stack: stack, Cluster: cluster}
}

type EcsFargateServiceStackProps struct {
	awscdk.StackProps
	Cluster awsecs.ICluster
	Service config.Service
}

type EcsFargateServiceStack struct {
	awscdk.Stack
	Service awsecspatterns.ApplicationLoadBalancedFargateService
}

// NewEcsFargateServiceStack runs the configured image behind a public load
// balancer. HTTPS is used when a certificate ARN is configured.
func NewEcsFargateServiceStack(scope constructs.Construct, id string, props *EcsFargateServiceStackProps) EcsFargateServiceStack {
	stack := awscdk.NewStack(scope, jsii.String(id), &props.StackProps)
	cfg := props.Service

	image := cfg.ContainerImage
	if image == "" {
		image = SampleImage
	}
	opts := &ecs.FargateServiceOptions{
		Cluster:       props.Cluster,
		Image:         image,
		ContainerName: cfg.ContainerName,
		ContainerPort: cfg.ContainerPort,
	}
	if cfg.CertificateArn != "" {
		opts.CertificateArn = blocks.Some(cfg.CertificateArn)
	}
	if cfg.SecretsName != "" {
		secret := awssecretsmanager.Secret_FromSecretNameV2(stack, jsii.String("ServiceSecrets"), jsii.String(cfg.SecretsName))
		opts.Secrets = map[string]awsecs.Secret{
			SecretsEnvVar: awsecs.Secret_FromSecretsManager(secret, nil),
		}
	}

	service := ecs.NewFargateService(stack, "EcsFargateService", opts)
	return EcsFargateServiceStack{Stack: stack, Service: service}
}

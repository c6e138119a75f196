package ecs

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awscertificatemanager"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecspatterns"
	"github.com/aws/aws-cdk-go/awscdk/v2/awselasticloadbalancingv2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	blocks "github.com/lex00/cdk-blocks-go"
)

// Defaults applied by NewFargateService.
const (
	DefaultCpu          = 256
	DefaultMemoryMiB    = 512
	DefaultDesiredCount = 1
)

// Companion construct suffixes.
const (
	ServiceSuffix     = "ALB"
	CertificateSuffix = "Certificate"
)

// FargateServiceOptions configures NewFargateService.
type FargateServiceOptions struct {
	Cluster awsecs.ICluster
	// Image is a registry reference such as "nginx:1.27" or an ECR URI.
	Image         string
	ContainerName string
	ContainerPort int

	Cpu          int
	MemoryMiB    int
	DesiredCount int

	// LoadBalancer reuses an existing load balancer instead of creating one.
	LoadBalancer awselasticloadbalancingv2.IApplicationLoadBalancer
	// PublicLoadBalancer defaults to true.
	PublicLoadBalancer blocks.Optional[bool]
	// CertificateArn switches the listener to HTTPS when set.
	CertificateArn blocks.Optional[string]
	AssignPublicIp bool

	TaskRole      awsiam.IRole
	ExecutionRole awsiam.IRole
	Secrets       map[string]awsecs.Secret
	Environment   map[string]string
}

// NewFargateService creates an application-load-balanced Fargate service
// registered as id+"ALB". When a certificate ARN is given, the certificate is
// imported as id+"Certificate".
func NewFargateService(scope constructs.Construct, id string, opts *FargateServiceOptions) awsecspatterns.ApplicationLoadBalancedFargateService {
	if opts == nil {
		opts = &FargateServiceOptions{}
	}

	taskImage := &awsecspatterns.ApplicationLoadBalancedTaskImageOptions{
		Image: awsecs.ContainerImage_FromRegistry(jsii.String(opts.Image), nil),
	}
	if opts.ContainerName != "" {
		taskImage.ContainerName = jsii.String(opts.ContainerName)
	}
	if opts.ContainerPort > 0 {
		taskImage.ContainerPort = jsii.Number(float64(opts.ContainerPort))
	}
	if opts.TaskRole != nil {
		taskImage.TaskRole = opts.TaskRole
	}
	if opts.ExecutionRole != nil {
		taskImage.ExecutionRole = opts.ExecutionRole
	}
	if len(opts.Secrets) > 0 {
		secrets := make(map[string]awsecs.Secret, len(opts.Secrets))
		for k, v := range opts.Secrets {
			secrets[k] = v
		}
		taskImage.Secrets = &secrets
	}
	if len(opts.Environment) > 0 {
		env := make(map[string]*string, len(opts.Environment))
		for k, v := range opts.Environment {
			env[k] = jsii.String(v)
		}
		taskImage.Environment = &env
	}

	props := &awsecspatterns.ApplicationLoadBalancedFargateServiceProps{
		Cluster:            opts.Cluster,
		Cpu:                jsii.Number(float64(orDefault(opts.Cpu, DefaultCpu))),
		MemoryLimitMiB:     jsii.Number(float64(orDefault(opts.MemoryMiB, DefaultMemoryMiB))),
		DesiredCount:       jsii.Number(float64(orDefault(opts.DesiredCount, DefaultDesiredCount))),
		PublicLoadBalancer: jsii.Bool(opts.PublicLoadBalancer.OrElse(true)),
		AssignPublicIp:     jsii.Bool(opts.AssignPublicIp),
		TaskImageOptions:   taskImage,
	}
	if opts.LoadBalancer != nil {
		props.LoadBalancer = opts.LoadBalancer
	}
	if arn, ok := opts.CertificateArn.Get(); ok && arn != "" {
		props.Certificate = awscertificatemanager.Certificate_FromCertificateArn(
			scope, jsii.String(blocks.ChildID(id, CertificateSuffix)), jsii.String(arn))
	}

	return awsecspatterns.NewApplicationLoadBalancedFargateService(scope, jsii.String(blocks.ChildID(id, ServiceSuffix)), props)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Package ecs provides ECS cluster and load-balanced Fargate service blocks.
package ecs

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecs"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// ClusterOptions configures NewCluster.
type ClusterOptions struct {
	Vpc               awsec2.IVpc
	ClusterName       string
	ContainerInsights bool
}

// NewCluster creates an ECS cluster in the given VPC.
func NewCluster(scope constructs.Construct, id string, opts *ClusterOptions) awsecs.Cluster {
	if opts == nil {
		opts = &ClusterOptions{}
	}

	props := &awsecs.ClusterProps{
		Vpc: opts.Vpc,
	}
	if opts.ClusterName != "" {
		props.ClusterName = jsii.String(opts.ClusterName)
	}
	if opts.ContainerInsights {
		props.ContainerInsights = jsii.Bool(true)
	}

	return awsecs.NewCluster(scope, jsii.String(id), props)
}

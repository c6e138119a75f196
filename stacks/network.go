// Package stacks holds the deployable units of the application. Each stack
// wires one or more blocks from configuration and exposes what other stacks
// consume.
package stacks

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/lex00/cdk-blocks-go/internal/config"
	"github.com/lex00/cdk-blocks-go/network"
)

// NetworkSubnets is the subnet layout of a VPC created by NewNetworkStack.
var NetworkSubnets = []network.SubnetGroup{
	{Name: "Public", Type: network.Public, CidrMask: 27},
	{Name: "Database", Type: network.Isolated},
	{Name: "Private", Type: network.PrivateWithEgress},
}

type NetworkStackProps struct {
	awscdk.StackProps
	Network config.Network
}

type NetworkStack struct {
	awscdk.Stack
	Vpc awsec2.IVpc
}

// NewNetworkStack creates the VPC, or imports it when Network.VpcID is set.
func NewNetworkStack(scope constructs.Construct, id string, props *NetworkStackProps) NetworkStack {
	if props == nil {
		props = &NetworkStackProps{}
	}
	stack := awscdk.NewStack(scope, jsii.String(id), &props.StackProps)
	cfg := props.Network

	if cfg.VpcID != "" {
		return NetworkStack{Stack: stack, Vpc: network.LookupVpc(stack, "Vpc", cfg.VpcID)}
	}

	vpc := network.NewVpc(stack, "Vpc", &network.VpcOptions{
		VpcName:           cfg.VpcName,
		Cidr:              cfg.Cidr,
		AvailabilityZones: cfg.AvailabilityZones,
		Subnets:           NetworkSubnets,
	})
	awscdk.NewCfnOutput(stack, jsii.String("VpcId"), &awscdk.CfnOutputProps{Value: vpc.VpcId()})
	return NetworkStack{Stack: stack, Vpc: vpc}
}

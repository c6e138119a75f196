// Package network provides VPC and security group blocks.
package network

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	blocks "github.com/lex00/cdk-blocks-go"
)

// SubnetType classifies a subnet group.
type SubnetType string

const (
	// Public subnets route to an internet gateway.
	Public SubnetType = "public"
	// Isolated subnets have no route out of the VPC.
	Isolated SubnetType = "isolated"
	// PrivateWithEgress subnets reach the internet through NAT.
	PrivateWithEgress SubnetType = "private-with-egress"
)

func (t SubnetType) cdk() awsec2.SubnetType {
	switch t {
	case Public:
		return awsec2.SubnetType_PUBLIC
	case Isolated:
		return awsec2.SubnetType_PRIVATE_ISOLATED
	default:
		return awsec2.SubnetType_PRIVATE_WITH_EGRESS
	}
}

// SubnetGroup is one named group of subnets, created once per availability zone.
type SubnetGroup struct {
	Name string
	Type SubnetType
	// CidrMask is the prefix length of each subnet. Zero lets the engine
	// split the address block evenly.
	CidrMask int
}

// DefaultGatewayEndpoints are attached to every VPC built by NewVpc.
var DefaultGatewayEndpoints = []string{"S3", "DynamoDB"}

// VpcOptions configures NewVpc.
type VpcOptions struct {
	// VpcName sets the Name tag.
	VpcName string
	// Cidr is the VPC address block, e.g. "10.64.32.0/20".
	Cidr string
	// AvailabilityZones pins the zones subnets are created in.
	AvailabilityZones []string
	// Subnets are created in order.
	Subnets []SubnetGroup
	// NatGateways overrides the engine default of one per zone.
	NatGateways blocks.Optional[int]
}

// NewVpc creates a VPC with a restricted default security group and the
// S3 and DynamoDB gateway endpoints.
func NewVpc(scope constructs.Construct, id string, opts *VpcOptions) awsec2.Vpc {
	if opts == nil {
		opts = &VpcOptions{}
	}

	props := &awsec2.VpcProps{
		RestrictDefaultSecurityGroup: jsii.Bool(true),
		GatewayEndpoints:             gatewayEndpoints(),
	}
	if opts.VpcName != "" {
		props.VpcName = jsii.String(opts.VpcName)
	}
	if opts.Cidr != "" {
		props.IpAddresses = awsec2.IpAddresses_Cidr(jsii.String(opts.Cidr))
	}
	if len(opts.AvailabilityZones) > 0 {
		props.AvailabilityZones = jsii.Strings(opts.AvailabilityZones...)
	}
	if len(opts.Subnets) > 0 {
		props.SubnetConfiguration = subnetConfiguration(opts.Subnets)
	}
	if n, ok := opts.NatGateways.Get(); ok {
		props.NatGateways = jsii.Number(float64(n))
	}

	return awsec2.NewVpc(scope, jsii.String(id), props)
}

func subnetConfiguration(groups []SubnetGroup) *[]*awsec2.SubnetConfiguration {
	configs := make([]*awsec2.SubnetConfiguration, 0, len(groups))
	for _, g := range groups {
		c := &awsec2.SubnetConfiguration{
			Name:       jsii.String(g.Name),
			SubnetType: g.Type.cdk(),
		}
		if g.CidrMask > 0 {
			c.CidrMask = jsii.Number(float64(g.CidrMask))
		}
		configs = append(configs, c)
	}
	return &configs
}

func gatewayEndpoints() *map[string]*awsec2.GatewayVpcEndpointOptions {
	return &map[string]*awsec2.GatewayVpcEndpointOptions{
		"S3": {
			Service: awsec2.GatewayVpcEndpointAwsService_S3(),
		},
		"DynamoDB": {
			Service: awsec2.GatewayVpcEndpointAwsService_DYNAMODB(),
		},
	}
}

package network

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	blocks "github.com/lex00/cdk-blocks-go"
)

// IngressRule allows inbound traffic from Peer on Connection.
type IngressRule struct {
	Peer        awsec2.IPeer
	Description string
	Connection  awsec2.Port
}

// SecurityGroupOptions configures NewSecurityGroup.
type SecurityGroupOptions struct {
	Vpc         awsec2.IVpc
	Description string
	Name        string
	// AllowAllOutbound defaults to true.
	AllowAllOutbound blocks.Optional[bool]
	// Ingress rules are added in order after the group is created.
	Ingress []IngressRule
}

// NewSecurityGroup creates a security group and adds its ingress rules.
func NewSecurityGroup(scope constructs.Construct, id string, opts *SecurityGroupOptions) awsec2.SecurityGroup {
	if opts == nil {
		opts = &SecurityGroupOptions{}
	}

	props := &awsec2.SecurityGroupProps{
		Vpc:              opts.Vpc,
		AllowAllOutbound: jsii.Bool(opts.AllowAllOutbound.OrElse(true)),
	}
	if opts.Description != "" {
		props.Description = jsii.String(opts.Description)
	}
	if opts.Name != "" {
		props.SecurityGroupName = jsii.String(opts.Name)
	}

	sg := awsec2.NewSecurityGroup(scope, jsii.String(id), props)
	for _, rule := range opts.Ingress {
		sg.AddIngressRule(rule.Peer, rule.Connection, jsii.String(rule.Description), jsii.Bool(false))
	}
	return sg
}

// AllowFromVpc is the ingress rule for traffic on port from anywhere in vpc.
func AllowFromVpc(vpc awsec2.IVpc, port int, description string) IngressRule {
	return IngressRule{
		Peer:        awsec2.Peer_Ipv4(vpc.VpcCidrBlock()),
		Description: description,
		Connection:  awsec2.Port_Tcp(jsii.Number(float64(port))),
	}
}

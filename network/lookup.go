package network

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// LookupVpc imports an existing VPC by id. The owning stack needs an explicit
// account and region; the lookup result is cached in cdk.context.json.
func LookupVpc(scope constructs.Construct, id, vpcID string) awsec2.IVpc {
	return awsec2.Vpc_FromLookup(scope, jsii.String(id), &awsec2.VpcLookupOptions{
		VpcId: jsii.String(vpcID),
	})
}

// PrivateSubnetIDs returns the ids of the VPC's private subnets.
func PrivateSubnetIDs(vpc awsec2.IVpc) []*string {
	return subnetIDs(vpc.PrivateSubnets())
}

// IsolatedSubnetIDs returns the ids of the VPC's isolated subnets.
func IsolatedSubnetIDs(vpc awsec2.IVpc) []*string {
	return subnetIDs(vpc.IsolatedSubnets())
}

// PublicSubnets returns the VPC's public subnets.
func PublicSubnets(vpc awsec2.IVpc) []awsec2.ISubnet {
	if vpc.PublicSubnets() == nil {
		return nil
	}
	return *vpc.PublicSubnets()
}

func subnetIDs(subnets *[]awsec2.ISubnet) []*string {
	if subnets == nil {
		return nil
	}
	ids := make([]*string, 0, len(*subnets))
	for _, s := range *subnets {
		ids = append(ids, s.SubnetId())
	}
	return ids
}

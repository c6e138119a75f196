package network

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blocks "github.com/lex00/cdk-blocks-go"
)

func testVpcOptions() *VpcOptions {
	return &VpcOptions{
		VpcName:           "VPC_NAME",
		Cidr:              "10.64.32.0/20",
		AvailabilityZones: []string{"us-east-1a", "us-east-1b", "us-east-1c"},
		Subnets: []SubnetGroup{
			{Name: "Public", Type: Public, CidrMask: 24},
			{Name: "Database", Type: Isolated, CidrMask: 24},
			{Name: "Private", Type: PrivateWithEgress, CidrMask: 24},
		},
	}
}

func TestNewVpc(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("NetworkTest"), nil)

	vpc := NewVpc(stack, "VPC", testVpcOptions())
	require.NotNil(t, vpc)

	template := assertions.Template_FromStack(stack, nil)
	template.HasResourceProperties(jsii.String("AWS::EC2::VPC"), map[string]interface{}{
		"CidrBlock": "10.64.32.0/20",
	})
	// three groups across three zones
	template.ResourceCountIs(jsii.String("AWS::EC2::Subnet"), jsii.Number(9))
	template.ResourceCountIs(jsii.String("AWS::EC2::VPCEndpoint"), jsii.Number(2))

	subnets := template.FindResources(jsii.String("AWS::EC2::Subnet"), nil)
	groups := map[string]int{}
	for _, res := range *subnets {
		props := (*res)["Properties"].(map[string]interface{})
		for _, tag := range props["Tags"].([]interface{}) {
			kv := tag.(map[string]interface{})
			if kv["Key"] == "aws-cdk:subnet-name" {
				groups[kv["Value"].(string)]++
			}
		}
	}
	assert.Equal(t, map[string]int{"Public": 3, "Database": 3, "Private": 3}, groups)
}

func TestNewVpc_NatGateways(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("NatTest"), nil)

	opts := testVpcOptions()
	opts.NatGateways = blocks.Some(1)
	NewVpc(stack, "VPC", opts)

	template := assertions.Template_FromStack(stack, nil)
	template.ResourceCountIs(jsii.String("AWS::EC2::NatGateway"), jsii.Number(1))
}

func TestNewSecurityGroup_IngressOrder(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("SecurityGroupTest"), nil)
	vpc := NewVpc(stack, "VPC", testVpcOptions())

	sg := NewSecurityGroup(stack, "DbSecurityGroup", &SecurityGroupOptions{
		Vpc:         vpc,
		Description: "database access",
		Ingress: []IngressRule{
			{Peer: awsec2.Peer_Ipv4(jsii.String("10.0.0.0/16")), Description: "postgres", Connection: awsec2.Port_Tcp(jsii.Number(5432))},
			{Peer: awsec2.Peer_AnyIpv4(), Description: "https", Connection: awsec2.Port_Tcp(jsii.Number(443))},
		},
	})
	require.NotNil(t, sg)

	template := assertions.Template_FromStack(stack, nil)
	groups := template.FindResources(jsii.String("AWS::EC2::SecurityGroup"), map[string]interface{}{
		"Properties": map[string]interface{}{
			"GroupDescription": "database access",
		},
	})
	require.Len(t, *groups, 1)

	for _, res := range *groups {
		props := (*res)["Properties"].(map[string]interface{})
		ingress := props["SecurityGroupIngress"].([]interface{})
		require.Len(t, ingress, 2)
		assert.Equal(t, "postgres", ingress[0].(map[string]interface{})["Description"])
		assert.Equal(t, float64(5432), ingress[0].(map[string]interface{})["FromPort"])
		assert.Equal(t, "https", ingress[1].(map[string]interface{})["Description"])
		assert.Equal(t, "0.0.0.0/0", ingress[1].(map[string]interface{})["CidrIp"])

		// default egress stays open
		egress := props["SecurityGroupEgress"].([]interface{})
		assert.Equal(t, "0.0.0.0/0", egress[0].(map[string]interface{})["CidrIp"])
	}
}

func TestNewSecurityGroup_RestrictedOutbound(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("RestrictedTest"), nil)
	vpc := NewVpc(stack, "VPC", testVpcOptions())

	NewSecurityGroup(stack, "Locked", &SecurityGroupOptions{
		Vpc:              vpc,
		Description:      "locked",
		AllowAllOutbound: blocks.Bool(false),
	})

	template := assertions.Template_FromStack(stack, nil)
	template.HasResourceProperties(jsii.String("AWS::EC2::SecurityGroup"), map[string]interface{}{
		"GroupDescription": "locked",
		"SecurityGroupEgress": assertions.Match_ArrayWith(&[]interface{}{
			assertions.Match_ObjectLike(&map[string]interface{}{
				"CidrIp": "255.255.255.255/32",
			}),
		}),
	})
}

func TestSubnetHelpers(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("HelperTest"), nil)
	vpc := NewVpc(stack, "VPC", testVpcOptions())

	assert.Len(t, PrivateSubnetIDs(vpc), 3)
	assert.Len(t, IsolatedSubnetIDs(vpc), 3)
	assert.Len(t, PublicSubnets(vpc), 3)
}

func TestLookupVpc(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("LookupTest"), &awscdk.StackProps{
		Env: &awscdk.Environment{
			Account: jsii.String("111111111111"),
			Region:  jsii.String("us-east-1"),
		},
	})

	// without cached context the lookup yields placeholder values
	vpc := LookupVpc(stack, "Vpc", "vpc-0abc")
	require.NotNil(t, vpc)
	assert.NotEmpty(t, *vpc.VpcId())
	assert.NotNil(t, stack.Node().TryFindChild(jsii.String("Vpc")))
}

package stacks

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lex00/cdk-blocks-go/internal/config"
)

func testNetwork() config.Network {
	return config.Network{
		VpcName:           "apps",
		Cidr:              "10.64.32.0/20",
		AvailabilityZones: []string{"us-east-1a", "us-east-1b", "us-east-1c"},
	}
}

func TestNewNetworkStack(t *testing.T) {
	app := awscdk.NewApp(nil)
	net := NewNetworkStack(app, "Network", &NetworkStackProps{Network: testNetwork()})
	require.NotNil(t, net.Vpc)

	template := assertions.Template_FromStack(net.Stack, nil)
	template.ResourceCountIs(jsii.String("AWS::EC2::VPC"), jsii.Number(1))
	template.HasResourceProperties(jsii.String("AWS::EC2::VPC"), map[string]interface{}{
		"CidrBlock": "10.64.32.0/20",
	})
	// one subnet per group per zone
	template.ResourceCountIs(jsii.String("AWS::EC2::Subnet"), jsii.Number(9))
	template.HasOutput(jsii.String("VpcId"), map[string]interface{}{})
}

func TestNewMessagingStack(t *testing.T) {
	app := awscdk.NewApp(nil)
	msg := NewMessagingStack(app, "Messaging", &MessagingStackProps{
		Messaging: config.Messaging{QueueName: "orders", TopicName: "events"},
	})

	template := assertions.Template_FromStack(msg.Stack, nil)
	template.ResourceCountIs(jsii.String("AWS::SQS::Queue"), jsii.Number(2))
	template.HasResourceProperties(jsii.String("AWS::SQS::Queue"), map[string]interface{}{
		"QueueName": "orders",
		"RedrivePolicy": assertions.Match_ObjectLike(&map[string]interface{}{
			"maxReceiveCount": 5,
		}),
	})
	template.HasResourceProperties(jsii.String("AWS::SNS::Topic"), map[string]interface{}{
		"TopicName": "events",
	})
	template.HasResourceProperties(jsii.String("AWS::SNS::Subscription"), map[string]interface{}{
		"Protocol":           "sqs",
		"RawMessageDelivery": true,
	})
}

func TestNewTableStack(t *testing.T) {
	app := awscdk.NewApp(nil)
	table := NewTableStack(app, "Table", &TableStackProps{})

	template := assertions.Template_FromStack(table.Stack, nil)
	template.HasResourceProperties(jsii.String("AWS::DynamoDB::GlobalTable"), map[string]interface{}{
		"GlobalSecondaryIndexes": []interface{}{
			assertions.Match_ObjectLike(&map[string]interface{}{
				"IndexName": "inverted",
				"KeySchema": []interface{}{
					map[string]interface{}{"AttributeName": "sk", "KeyType": "HASH"},
					map[string]interface{}{"AttributeName": "pk", "KeyType": "RANGE"},
				},
			}),
		},
	})
}

func TestNewCacheStack(t *testing.T) {
	app := awscdk.NewApp(nil)
	net := NewNetworkStack(app, "Network", &NetworkStackProps{Network: testNetwork()})
	cache := NewCacheStack(app, "Cache", &CacheStackProps{
		Vpc:   net.Vpc,
		Cache: config.Cache{NodeType: "cache.t4g.small"},
	})
	cache.AddDependency(net.Stack, jsii.String("cache subnets live in the VPC"))

	template := assertions.Template_FromStack(cache.Stack, nil)
	template.HasResourceProperties(jsii.String("AWS::ElastiCache::ReplicationGroup"), map[string]interface{}{
		"CacheNodeType":    "cache.t4g.small",
		"NumCacheClusters": 2,
		"MultiAZEnabled":   true,
	})
	template.HasResourceProperties(jsii.String("AWS::EC2::SecurityGroup"), map[string]interface{}{
		"SecurityGroupIngress": assertions.Match_ArrayWith(&[]interface{}{
			assertions.Match_ObjectLike(&map[string]interface{}{
				"FromPort": RedisPort,
				"ToPort":   RedisPort,
			}),
		}),
	})

	var deps []string
	for _, d := range *cache.Dependencies() {
		deps = append(deps, *d.StackName())
	}
	assert.Equal(t, []string{"Network"}, deps)
}

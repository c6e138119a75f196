package stacks

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsdynamodb"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awselasticache"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssns"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssqs"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	blocks "github.com/lex00/cdk-blocks-go"
	"github.com/lex00/cdk-blocks-go/dynamodb"
	"github.com/lex00/cdk-blocks-go/elasticache"
	"github.com/lex00/cdk-blocks-go/internal/config"
	"github.com/lex00/cdk-blocks-go/messaging"
	"github.com/lex00/cdk-blocks-go/network"
)

// RedisPort is opened to the VPC on the cache security group.
const RedisPort = 6379

type MessagingStackProps struct {
	awscdk.StackProps
	Messaging config.Messaging
}

type MessagingStack struct {
	awscdk.Stack
	Queue awssqs.Queue
	Topic awssns.Topic
}

// NewMessagingStack creates a queue with a dead-letter queue and a topic
// that fans out into it.
func NewMessagingStack(scope constructs.Construct, id string, props *MessagingStackProps) MessagingStack {
	stack := awscdk.NewStack(scope, jsii.String(id), &props.StackProps)

	queue := messaging.NewQueue(stack, "Queue", &messaging.QueueOptions{
		QueueName:  props.Messaging.QueueName,
		DeadLetter: blocks.Some(messaging.DeadLetterOptions{MaxReceiveCount: 5}),
	})
	topic := messaging.NewTopic(stack, "Topic", &messaging.TopicOptions{
		TopicName:          props.Messaging.TopicName,
		Subscription:       blocks.Some[awssqs.IQueue](queue),
		RawMessageDelivery: true,
	})
	return MessagingStack{Stack: stack, Queue: queue, Topic: topic}
}

type TableStackProps struct {
	awscdk.StackProps
}

type TableStack struct {
	awscdk.Stack
	Table awsdynamodb.TableV2
}

// NewTableStack creates a single-table design table keyed on pk/sk with one
// inverted index.
func NewTableStack(scope constructs.Construct, id string, props *TableStackProps) TableStack {
	stack := awscdk.NewStack(scope, jsii.String(id), &props.StackProps)
	table := dynamodb.NewTable(stack, "Table", &dynamodb.TableOptions{
		PartitionKey: dynamodb.Key{Name: "pk", Type: dynamodb.String},
		SortKey:      &dynamodb.Key{Name: "sk", Type: dynamodb.String},
		GlobalIndexes: []dynamodb.GlobalIndex{{
			Name:         "inverted",
			PartitionKey: dynamodb.Key{Name: "sk", Type: dynamodb.String},
			SortKey:      &dynamodb.Key{Name: "pk", Type: dynamodb.String},
		}},
	})
	return TableStack{Stack: stack, Table: table}
}

type CacheStackProps struct {
	awscdk.StackProps
	Vpc   awsec2.IVpc
	Cache config.Cache
}

type CacheStack struct {
	awscdk.Stack
	ReplicationGroup awselasticache.CfnReplicationGroup
}

// NewCacheStack creates a two-node Redis replication group reachable from
// the VPC.
func NewCacheStack(scope constructs.Construct, id string, props *CacheStackProps) CacheStack {
	stack := awscdk.NewStack(scope, jsii.String(id), &props.StackProps)
	sg := network.NewSecurityGroup(stack, "CacheSecurityGroup", &network.SecurityGroupOptions{
		Vpc:         props.Vpc,
		Description: "Redis access from the VPC",
		Ingress:     []network.IngressRule{network.AllowFromVpc(props.Vpc, RedisPort, "Allow Redis from VPC CIDR")},
	})
	group := elasticache.NewReplicationGroup(stack, "Cache", &elasticache.ReplicationGroupOptions{
		Vpc:              props.Vpc,
		Description:      "application cache",
		ClusterMode:      elasticache.ClusterModeDisabled,
		NodeType:         props.Cache.NodeType,
		NumCacheClusters: 2,
		MultiAz:          true,
		SecurityGroupIDs: []string{*sg.SecurityGroupId()},
	})
	return CacheStack{Stack: stack, ReplicationGroup: group}
}

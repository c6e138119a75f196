package messaging

import (
	"testing"
	"time"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssqs"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blocks "github.com/lex00/cdk-blocks-go"
)

func TestDeadLetterName(t *testing.T) {
	tests := []struct {
		name     string
		queue    string
		expected string
	}{
		{name: "standard", queue: "orders", expected: "orders-dlq"},
		{name: "fifo keeps suffix last", queue: "orders.fifo", expected: "orders-dlq.fifo"},
		{name: "unnamed", queue: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeadLetterName(tt.queue))
		})
	}
}

func TestNewQueue_DeadLetter(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("QueueTest"), nil)

	queue := NewQueue(stack, "Orders", &QueueOptions{
		QueueName:       "orders",
		RetentionPeriod: 4 * 24 * time.Hour,
		DeadLetter:      blocks.Some(DeadLetterOptions{MaxReceiveCount: 5}),
	})
	require.NotNil(t, queue)
	require.NotNil(t, stack.Node().TryFindChild(jsii.String("Orders-dlq")))

	template := assertions.Template_FromStack(stack, nil)
	template.ResourceCountIs(jsii.String("AWS::SQS::Queue"), jsii.Number(2))

	dlqs := template.FindResources(jsii.String("AWS::SQS::Queue"), map[string]interface{}{
		"Properties": map[string]interface{}{"QueueName": "orders-dlq"},
	})
	require.Len(t, *dlqs, 1)
	var dlqID string
	for id := range *dlqs {
		dlqID = id
	}

	template.HasResourceProperties(jsii.String("AWS::SQS::Queue"), map[string]interface{}{
		"QueueName":              "orders",
		"MessageRetentionPeriod": 345600,
		"RedrivePolicy": map[string]interface{}{
			"deadLetterTargetArn": map[string]interface{}{"Fn::GetAtt": []interface{}{dlqID, "Arn"}},
			"maxReceiveCount":     5,
		},
	})
}

func TestNewQueue_WithoutDeadLetter(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("PlainQueue"), nil)

	NewQueue(stack, "Events", &QueueOptions{QueueName: "events"})

	template := assertions.Template_FromStack(stack, nil)
	template.ResourceCountIs(jsii.String("AWS::SQS::Queue"), jsii.Number(1))
	template.HasResourceProperties(jsii.String("AWS::SQS::Queue"), map[string]interface{}{
		"RedrivePolicy": assertions.Match_Absent(),
	})
}

func TestNewQueue_FifoDeadLetter(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("FifoQueue"), nil)

	NewQueue(stack, "Payments", &QueueOptions{
		QueueName:  "payments.fifo",
		DeadLetter: blocks.Some(DeadLetterOptions{MaxReceiveCount: 3}),
	})

	template := assertions.Template_FromStack(stack, nil)
	template.HasResourceProperties(jsii.String("AWS::SQS::Queue"), map[string]interface{}{
		"QueueName": "payments-dlq.fifo",
		"FifoQueue": true,
	})
}

func TestNewTopic_Subscription(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("TopicTest"), nil)

	queue := NewQueue(stack, "Orders", &QueueOptions{QueueName: "orders"})
	topic := NewTopic(stack, "OrderEvents", &TopicOptions{
		DisplayName:  "Order events",
		Subscription: blocks.Some[awssqs.IQueue](queue),
	})
	require.NotNil(t, topic)

	template := assertions.Template_FromStack(stack, nil)
	template.HasResourceProperties(jsii.String("AWS::SNS::Topic"), map[string]interface{}{
		"DisplayName": "Order events",
	})
	template.HasResourceProperties(jsii.String("AWS::SNS::Subscription"), map[string]interface{}{
		"Protocol": "sqs",
	})
}

func TestNewTopic_NoSubscription(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("BareTopic"), nil)

	NewTopic(stack, "Alerts", nil)

	template := assertions.Template_FromStack(stack, nil)
	template.ResourceCountIs(jsii.String("AWS::SNS::Topic"), jsii.Number(1))
	template.ResourceCountIs(jsii.String("AWS::SNS::Subscription"), jsii.Number(0))
}

package messaging

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awssns"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssnssubscriptions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssqs"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	blocks "github.com/lex00/cdk-blocks-go"
)

// TopicOptions configures NewTopic.
type TopicOptions struct {
	TopicName   string
	DisplayName string
	Fifo        bool
	// Subscription subscribes a queue after the topic is created.
	Subscription blocks.Optional[awssqs.IQueue]
	// RawMessageDelivery applies to Subscription.
	RawMessageDelivery bool
}

// NewTopic creates an SNS topic and, if configured, its queue subscription.
func NewTopic(scope constructs.Construct, id string, opts *TopicOptions) awssns.Topic {
	if opts == nil {
		opts = &TopicOptions{}
	}

	props := &awssns.TopicProps{}
	if opts.TopicName != "" {
		props.TopicName = jsii.String(opts.TopicName)
	}
	if opts.DisplayName != "" {
		props.DisplayName = jsii.String(opts.DisplayName)
	}
	if opts.Fifo {
		props.Fifo = jsii.Bool(true)
	}

	topic := awssns.NewTopic(scope, jsii.String(id), props)
	if queue, ok := opts.Subscription.Get(); ok && queue != nil {
		topic.AddSubscription(awssnssubscriptions.NewSqsSubscription(queue, &awssnssubscriptions.SqsSubscriptionProps{
			RawMessageDelivery: jsii.Bool(opts.RawMessageDelivery),
		}))
	}
	return topic
}

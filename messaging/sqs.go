// Package messaging provides SQS queue and SNS topic blocks.
package messaging

import (
	"strings"
	"time"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssqs"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	blocks "github.com/lex00/cdk-blocks-go"
)

// DeadLetterSuffix names the companion dead-letter queue.
const DeadLetterSuffix = "-dlq"

const fifoSuffix = ".fifo"

// DeadLetterOptions configures the companion dead-letter queue.
type DeadLetterOptions struct {
	MaxReceiveCount int
	// RetentionPeriod of the dead-letter queue; engine default when zero.
	RetentionPeriod time.Duration
}

// QueueOptions configures NewQueue.
type QueueOptions struct {
	QueueName       string
	Fifo            bool
	RetentionPeriod time.Duration
	// DeadLetter creates a companion queue id+"-dlq" named name+"-dlq".
	DeadLetter blocks.Optional[DeadLetterOptions]
}

// DeadLetterName derives the dead-letter queue name from the primary queue
// name, keeping a FIFO suffix last: "orders" -> "orders-dlq",
// "orders.fifo" -> "orders-dlq.fifo". An empty name stays empty.
func DeadLetterName(name string) string {
	if name == "" {
		return ""
	}
	if strings.HasSuffix(name, fifoSuffix) {
		return strings.TrimSuffix(name, fifoSuffix) + DeadLetterSuffix + fifoSuffix
	}
	return name + DeadLetterSuffix
}

func (o *QueueOptions) fifo() bool {
	return o.Fifo || strings.HasSuffix(o.QueueName, fifoSuffix)
}

// NewQueue creates a queue. When DeadLetter is set the dead-letter queue is
// created first and wired as the redrive target.
func NewQueue(scope constructs.Construct, id string, opts *QueueOptions) awssqs.Queue {
	if opts == nil {
		opts = &QueueOptions{}
	}

	props := &awssqs.QueueProps{}
	if opts.QueueName != "" {
		props.QueueName = jsii.String(opts.QueueName)
	}
	if opts.fifo() {
		props.Fifo = jsii.Bool(true)
	}
	if opts.RetentionPeriod > 0 {
		props.RetentionPeriod = seconds(opts.RetentionPeriod)
	}

	if dl, ok := opts.DeadLetter.Get(); ok {
		dlqProps := &awssqs.QueueProps{}
		if name := DeadLetterName(opts.QueueName); name != "" {
			dlqProps.QueueName = jsii.String(name)
		}
		if opts.fifo() {
			dlqProps.Fifo = jsii.Bool(true)
		}
		if dl.RetentionPeriod > 0 {
			dlqProps.RetentionPeriod = seconds(dl.RetentionPeriod)
		}
		dlq := awssqs.NewQueue(scope, jsii.String(blocks.ChildID(id, DeadLetterSuffix)), dlqProps)
		props.DeadLetterQueue = &awssqs.DeadLetterQueue{
			MaxReceiveCount: jsii.Number(float64(dl.MaxReceiveCount)),
			Queue:           dlq,
		}
	}

	return awssqs.NewQueue(scope, jsii.String(id), props)
}

func seconds(d time.Duration) awscdk.Duration {
	return awscdk.Duration_Seconds(jsii.Number(d.Seconds()))
}

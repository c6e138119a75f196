// Package dynamodb provides a DynamoDB TableV2 block.
package dynamodb

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awsdynamodb"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	blocks "github.com/lex00/cdk-blocks-go"
)

// AttributeType is a key attribute type.
type AttributeType string

const (
	String AttributeType = "S"
	Number AttributeType = "N"
	Binary AttributeType = "B"
)

func (t AttributeType) cdk() awsdynamodb.AttributeType {
	switch t {
	case Number:
		return awsdynamodb.AttributeType_NUMBER
	case Binary:
		return awsdynamodb.AttributeType_BINARY
	default:
		return awsdynamodb.AttributeType_STRING
	}
}

// Key is a partition or sort key attribute.
type Key struct {
	Name string
	Type AttributeType
}

func (k *Key) attribute() *awsdynamodb.Attribute {
	if k == nil || k.Name == "" {
		return nil
	}
	return &awsdynamodb.Attribute{Name: jsii.String(k.Name), Type: k.Type.cdk()}
}

// Projection selects which attributes an index copies.
type Projection string

const (
	ProjectAll      Projection = "ALL"
	ProjectKeysOnly Projection = "KEYS_ONLY"
	ProjectInclude  Projection = "INCLUDE"
)

func (p Projection) cdk(def Projection) awsdynamodb.ProjectionType {
	if p == "" {
		p = def
	}
	switch p {
	case ProjectKeysOnly:
		return awsdynamodb.ProjectionType_KEYS_ONLY
	case ProjectInclude:
		return awsdynamodb.ProjectionType_INCLUDE
	default:
		return awsdynamodb.ProjectionType_ALL
	}
}

// GlobalIndex is a global secondary index. Projection defaults to ProjectAll.
type GlobalIndex struct {
	Name             string
	PartitionKey     Key
	SortKey          *Key
	Projection       Projection
	NonKeyAttributes []string
}

// LocalIndex is a local secondary index. Projection defaults to ProjectKeysOnly.
type LocalIndex struct {
	Name             string
	SortKey          Key
	Projection       Projection
	NonKeyAttributes []string
}

// TableOptions configures NewTable.
type TableOptions struct {
	TableName    string
	PartitionKey Key
	SortKey      *Key
	// InfrequentAccess switches the table class from STANDARD.
	InfrequentAccess bool
	// PointInTimeRecovery defaults to true.
	PointInTimeRecovery blocks.Optional[bool]
	// DeletionProtection defaults to true.
	DeletionProtection blocks.Optional[bool]
	GlobalIndexes      []GlobalIndex
	LocalIndexes       []LocalIndex
}

// NewTable creates an on-demand TableV2 with point-in-time recovery and
// deletion protection on by default.
func NewTable(scope constructs.Construct, id string, opts *TableOptions) awsdynamodb.TableV2 {
	if opts == nil {
		opts = &TableOptions{}
	}

	class := awsdynamodb.TableClass_STANDARD
	if opts.InfrequentAccess {
		class = awsdynamodb.TableClass_STANDARD_INFREQUENT_ACCESS
	}

	props := &awsdynamodb.TablePropsV2{
		PartitionKey:        opts.PartitionKey.attribute(),
		SortKey:             opts.SortKey.attribute(),
		TableClass:          class,
		PointInTimeRecovery: jsii.Bool(opts.PointInTimeRecovery.OrElse(true)),
		DeletionProtection:  jsii.Bool(opts.DeletionProtection.OrElse(true)),
	}
	if opts.TableName != "" {
		props.TableName = jsii.String(opts.TableName)
	}
	if len(opts.GlobalIndexes) > 0 {
		gsis := make([]*awsdynamodb.GlobalSecondaryIndexPropsV2, 0, len(opts.GlobalIndexes))
		for _, g := range opts.GlobalIndexes {
			gsi := &awsdynamodb.GlobalSecondaryIndexPropsV2{
				IndexName:      jsii.String(g.Name),
				PartitionKey:   g.PartitionKey.attribute(),
				SortKey:        g.SortKey.attribute(),
				ProjectionType: g.Projection.cdk(ProjectAll),
			}
			if len(g.NonKeyAttributes) > 0 {
				gsi.NonKeyAttributes = jsii.Strings(g.NonKeyAttributes...)
			}
			gsis = append(gsis, gsi)
		}
		props.GlobalSecondaryIndexes = &gsis
	}
	if len(opts.LocalIndexes) > 0 {
		lsis := make([]*awsdynamodb.LocalSecondaryIndexProps, 0, len(opts.LocalIndexes))
		for _, l := range opts.LocalIndexes {
			lsi := &awsdynamodb.LocalSecondaryIndexProps{
				IndexName:      jsii.String(l.Name),
				SortKey:        l.SortKey.attribute(),
				ProjectionType: l.Projection.cdk(ProjectKeysOnly),
			}
			if len(l.NonKeyAttributes) > 0 {
				lsi.NonKeyAttributes = jsii.Strings(l.NonKeyAttributes...)
			}
			lsis = append(lsis, lsi)
		}
		props.LocalSecondaryIndexes = &lsis
	}

	return awsdynamodb.NewTableV2(scope, jsii.String(id), props)
}

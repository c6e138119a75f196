package dynamodb

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/require"

	blocks "github.com/lex00/cdk-blocks-go"
)

func TestNewTable_Defaults(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("TableTest"), nil)

	table := NewTable(stack, "Orders", &TableOptions{
		TableName:    "orders",
		PartitionKey: Key{Name: "pk", Type: String},
		SortKey:      &Key{Name: "sk", Type: String},
	})
	require.NotNil(t, table)

	template := assertions.Template_FromStack(stack, nil)
	template.HasResourceProperties(jsii.String("AWS::DynamoDB::GlobalTable"), map[string]interface{}{
		"TableName": "orders",
		"KeySchema": []interface{}{
			map[string]interface{}{"AttributeName": "pk", "KeyType": "HASH"},
			map[string]interface{}{"AttributeName": "sk", "KeyType": "RANGE"},
		},
		"Replicas": assertions.Match_ArrayWith(&[]interface{}{
			assertions.Match_ObjectLike(&map[string]interface{}{
				"TableClass":                        "STANDARD",
				"DeletionProtectionEnabled":         true,
				"PointInTimeRecoverySpecification": map[string]interface{}{"PointInTimeRecoveryEnabled": true},
			}),
		}),
	})
}

func TestNewTable_Indexes(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("IndexTest"), nil)

	NewTable(stack, "Orders", &TableOptions{
		PartitionKey:        Key{Name: "pk", Type: String},
		SortKey:             &Key{Name: "sk", Type: String},
		PointInTimeRecovery: blocks.Bool(false),
		GlobalIndexes: []GlobalIndex{
			{Name: "by-customer", PartitionKey: Key{Name: "customer", Type: String}},
		},
		LocalIndexes: []LocalIndex{
			{Name: "by-created", SortKey: Key{Name: "created", Type: Number}},
		},
	})

	template := assertions.Template_FromStack(stack, nil)
	template.HasResourceProperties(jsii.String("AWS::DynamoDB::GlobalTable"), map[string]interface{}{
		"GlobalSecondaryIndexes": []interface{}{
			assertions.Match_ObjectLike(&map[string]interface{}{
				"IndexName":  "by-customer",
				"Projection": map[string]interface{}{"ProjectionType": "ALL"},
			}),
		},
		"LocalSecondaryIndexes": []interface{}{
			assertions.Match_ObjectLike(&map[string]interface{}{
				"IndexName":  "by-created",
				"Projection": map[string]interface{}{"ProjectionType": "KEYS_ONLY"},
			}),
		},
		"Replicas": assertions.Match_ArrayWith(&[]interface{}{
			assertions.Match_ObjectLike(&map[string]interface{}{
				"PointInTimeRecoverySpecification": map[string]interface{}{"PointInTimeRecoveryEnabled": false},
			}),
		}),
	})
}

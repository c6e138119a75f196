package stacks

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsrds"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/lex00/cdk-blocks-go/internal/config"
	"github.com/lex00/cdk-blocks-go/network"
	"github.com/lex00/cdk-blocks-go/rds"
)

// PostgresPort is opened to the VPC on every database security group.
const PostgresPort = 5432

func databaseSecurityGroup(stack awscdk.Stack, vpc awsec2.IVpc) awsec2.SecurityGroup {
	return network.NewSecurityGroup(stack, "RDSSecurityGroup", &network.SecurityGroupOptions{
		Vpc:         vpc,
		Name:        "RDS Security Group",
		Description: "RDS Security Group to control incoming and outgoing traffic",
		Ingress: []network.IngressRule{
			network.AllowFromVpc(vpc, PostgresPort, "Allow PostgreSQL from VPC CIDR"),
		},
	})
}

type RdsClusterStackProps struct {
	awscdk.StackProps
	Vpc      awsec2.IVpc
	Database config.Database
}

type RdsClusterStack struct {
	awscdk.Stack
	Cluster awsrds.DatabaseCluster
}

// NewRdsClusterStack creates an Aurora PostgreSQL cluster with the configured
// number of serverless v2 readers.
func NewRdsClusterStack(scope constructs.Construct, id string, props *RdsClusterStackProps) RdsClusterStack {
	stack := awscdk.NewStack(scope, jsii.String(id), &props.StackProps)
	sg := databaseSecurityGroup(stack, props.Vpc)

	cluster := rds.NewCluster(stack, "RdsCluster", &rds.ClusterOptions{
		DatabaseOptions: rds.DatabaseOptions{
			Vpc:            props.Vpc,
			Port:           PostgresPort,
			SecurityGroups: []awsec2.ISecurityGroup{sg},
			RotationDays:   props.Database.RotationDays,
		},
		Readers:         props.Database.Readers,
		ServerlessV2Min: 0.5,
		ServerlessV2Max: 4,
	})
	return RdsClusterStack{Stack: stack, Cluster: cluster}
}

type RdsInstanceStackProps struct {
	awscdk.StackProps
	Vpc      awsec2.IVpc
	Database config.Database
}

type RdsInstanceStack struct {
	awscdk.Stack
	Instance awsrds.DatabaseInstanceFromSnapshot
}

// NewRdsInstanceStack restores a PostgreSQL instance from
// Database.SnapshotIdentifier.
func NewRdsInstanceStack(scope constructs.Construct, id string, props *RdsInstanceStackProps) RdsInstanceStack {
	stack := awscdk.NewStack(scope, jsii.String(id), &props.StackProps)
	sg := databaseSecurityGroup(stack, props.Vpc)

	instance := rds.NewInstanceFromSnapshot(stack, "RdsInstance", &rds.InstanceFromSnapshotOptions{
		DatabaseOptions: rds.DatabaseOptions{
			Vpc:            props.Vpc,
			Port:           PostgresPort,
			SecurityGroups: []awsec2.ISecurityGroup{sg},
			RotationDays:   props.Database.RotationDays,
		},
		SnapshotIdentifier: props.Database.SnapshotIdentifier,
		AllocatedStorage:   20,
	})
	return RdsInstanceStack{Stack: stack, Instance: instance}
}

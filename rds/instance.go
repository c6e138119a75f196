package rds

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsrds"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// DefaultInstanceType is used when InstanceFromSnapshotOptions.InstanceType is empty.
const DefaultInstanceType = "t4g.medium"

// InstanceFromSnapshotOptions configures NewInstanceFromSnapshot.
type InstanceFromSnapshotOptions struct {
	DatabaseOptions

	// Engine defaults to DefaultInstanceEngine.
	Engine             awsrds.IInstanceEngine
	SnapshotIdentifier string
	// InstanceType is a class.size string such as "t4g.medium".
	InstanceType     string
	MultiAz          bool
	AllocatedStorage int
}

// NewInstanceFromSnapshot restores a single database instance from a
// snapshot into isolated subnets with credential rotation. Storage
// encryption is inherited from the snapshot, so StorageEncrypted is unused.
func NewInstanceFromSnapshot(scope constructs.Construct, id string, opts *InstanceFromSnapshotOptions) awsrds.DatabaseInstanceFromSnapshot {
	if opts == nil {
		opts = &InstanceFromSnapshotOptions{}
	}

	engine := opts.Engine
	if engine == nil {
		engine = DefaultInstanceEngine()
	}
	instanceType := opts.InstanceType
	if instanceType == "" {
		instanceType = DefaultInstanceType
	}

	props := &awsrds.DatabaseInstanceFromSnapshotProps{
		SnapshotIdentifier:      jsii.String(opts.SnapshotIdentifier),
		Engine:                  engine,
		Vpc:                     opts.Vpc,
		VpcSubnets:              isolatedSubnets(),
		Credentials:             awsrds.SnapshotCredentials_FromGeneratedSecret(jsii.String(opts.username()), nil),
		InstanceType:            awsec2.NewInstanceType(jsii.String(instanceType)),
		Port:                    opts.port(),
		MultiAz:                 jsii.Bool(opts.MultiAz),
		AutoMinorVersionUpgrade: jsii.Bool(true),
		PubliclyAccessible:      jsii.Bool(false),
		DeletionProtection:      jsii.Bool(opts.DeletionProtection.OrElse(true)),
		RemovalPolicy:           opts.RemovalPolicy.cdk(),
		SecurityGroups:          opts.securityGroups(),
	}
	if opts.AllocatedStorage > 0 {
		props.AllocatedStorage = jsii.Number(float64(opts.AllocatedStorage))
	}

	instance := awsrds.NewDatabaseInstanceFromSnapshot(scope, jsii.String(id), props)
	instance.AddRotationSingleUser(&awsrds.RotationSingleUserOptions{
		AutomaticallyAfter: opts.rotation(),
	})
	return instance
}

package rds

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awsrds"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// ClusterOptions configures NewCluster.
type ClusterOptions struct {
	DatabaseOptions

	// Engine defaults to DefaultClusterEngine.
	Engine            awsrds.IClusterEngine
	ClusterIdentifier string
	// Readers is the number of serverless v2 readers; see ReaderPlan.
	Readers         int
	ServerlessV2Min float64
	ServerlessV2Max float64
}

func (o *ClusterOptions) engine() awsrds.IClusterEngine {
	if o.Engine == nil {
		return DefaultClusterEngine()
	}
	return o.Engine
}

func (o *ClusterOptions) capacity() (lo, hi *float64) {
	if o.ServerlessV2Min > 0 {
		lo = jsii.Number(o.ServerlessV2Min)
	}
	if o.ServerlessV2Max > 0 {
		hi = jsii.Number(o.ServerlessV2Max)
	}
	return lo, hi
}

// NewCluster creates a serverless v2 Aurora cluster in isolated subnets with
// a writer, opts.Readers readers, and credential rotation.
func NewCluster(scope constructs.Construct, id string, opts *ClusterOptions) awsrds.DatabaseCluster {
	if opts == nil {
		opts = &ClusterOptions{}
	}
	lo, hi := opts.capacity()

	props := &awsrds.DatabaseClusterProps{
		Engine:                  opts.engine(),
		Writer:                  writerInstance(),
		Readers:                 readerInstances(opts.Readers),
		Vpc:                     opts.Vpc,
		VpcSubnets:              isolatedSubnets(),
		Credentials:             awsrds.Credentials_FromGeneratedSecret(jsii.String(opts.username()), nil),
		Port:                    opts.port(),
		DeletionProtection:      jsii.Bool(opts.DeletionProtection.OrElse(true)),
		RemovalPolicy:           opts.RemovalPolicy.cdk(),
		StorageEncrypted:        jsii.Bool(opts.StorageEncrypted.OrElse(true)),
		SecurityGroups:          opts.securityGroups(),
		ServerlessV2MinCapacity: lo,
		ServerlessV2MaxCapacity: hi,
	}
	if opts.ClusterIdentifier != "" {
		props.ClusterIdentifier = jsii.String(opts.ClusterIdentifier)
	}

	cluster := awsrds.NewDatabaseCluster(scope, jsii.String(id), props)
	cluster.AddRotationSingleUser(&awsrds.RotationSingleUserOptions{
		AutomaticallyAfter: opts.rotation(),
	})
	return cluster
}

// ClusterFromSnapshotOptions configures NewClusterFromSnapshot.
type ClusterFromSnapshotOptions struct {
	ClusterOptions

	// SnapshotIdentifier is the ARN or name of the cluster snapshot to restore.
	SnapshotIdentifier string
}

// NewClusterFromSnapshot restores a serverless v2 Aurora cluster from a
// snapshot with a freshly generated secret and credential rotation.
func NewClusterFromSnapshot(scope constructs.Construct, id string, opts *ClusterFromSnapshotOptions) awsrds.DatabaseClusterFromSnapshot {
	if opts == nil {
		opts = &ClusterFromSnapshotOptions{}
	}
	lo, hi := opts.capacity()

	props := &awsrds.DatabaseClusterFromSnapshotProps{
		SnapshotIdentifier:      jsii.String(opts.SnapshotIdentifier),
		Engine:                  opts.engine(),
		Writer:                  writerInstance(),
		Readers:                 readerInstances(opts.Readers),
		Vpc:                     opts.Vpc,
		VpcSubnets:              isolatedSubnets(),
		SnapshotCredentials:     awsrds.SnapshotCredentials_FromGeneratedSecret(jsii.String(opts.username()), nil),
		Port:                    opts.port(),
		DeletionProtection:      jsii.Bool(opts.DeletionProtection.OrElse(true)),
		RemovalPolicy:           opts.RemovalPolicy.cdk(),
		StorageEncrypted:        jsii.Bool(opts.StorageEncrypted.OrElse(true)),
		SecurityGroups:          opts.securityGroups(),
		ServerlessV2MinCapacity: lo,
		ServerlessV2MaxCapacity: hi,
	}
	if opts.ClusterIdentifier != "" {
		props.ClusterIdentifier = jsii.String(opts.ClusterIdentifier)
	}

	cluster := awsrds.NewDatabaseClusterFromSnapshot(scope, jsii.String(id), props)
	cluster.AddRotationSingleUser(&awsrds.RotationSingleUserOptions{
		AutomaticallyAfter: opts.rotation(),
	})
	return cluster
}

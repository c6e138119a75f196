// Package rds provides Aurora cluster and snapshot-restore database blocks.
//
// Every database built here gets a generated credentials secret and a
// single-user rotation schedule.
package rds

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsrds"
	"github.com/aws/jsii-runtime-go"

	blocks "github.com/lex00/cdk-blocks-go"
)

// DefaultRotationDays is the interval between credential rotations.
const DefaultRotationDays = 30

// DefaultUsername is the master username of the generated secret.
const DefaultUsername = "postgres"

// RemovalPolicy selects what happens to the database when its stack is deleted.
type RemovalPolicy string

const (
	RemovalSnapshot RemovalPolicy = "snapshot"
	RemovalRetain   RemovalPolicy = "retain"
	RemovalDestroy  RemovalPolicy = "destroy"
)

func (p RemovalPolicy) cdk() awscdk.RemovalPolicy {
	switch p {
	case RemovalRetain:
		return awscdk.RemovalPolicy_RETAIN
	case RemovalDestroy:
		return awscdk.RemovalPolicy_DESTROY
	default:
		return awscdk.RemovalPolicy_SNAPSHOT
	}
}

// DatabaseOptions are shared by every database factory.
type DatabaseOptions struct {
	Vpc awsec2.IVpc
	// CredentialsUsername names the master user; the password is generated
	// into a Secrets Manager secret.
	CredentialsUsername string
	Port                int
	// DeletionProtection defaults to true.
	DeletionProtection blocks.Optional[bool]
	// RemovalPolicy defaults to RemovalSnapshot.
	RemovalPolicy RemovalPolicy
	// StorageEncrypted defaults to true. It applies to clusters only; an
	// instance restored from a snapshot keeps the snapshot's encryption and
	// NewInstanceFromSnapshot ignores it.
	StorageEncrypted blocks.Optional[bool]
	SecurityGroups   []awsec2.ISecurityGroup
	// RotationDays defaults to DefaultRotationDays.
	RotationDays int
}

func (o DatabaseOptions) username() string {
	if o.CredentialsUsername == "" {
		return DefaultUsername
	}
	return o.CredentialsUsername
}

func (o DatabaseOptions) rotation() awscdk.Duration {
	days := o.RotationDays
	if days <= 0 {
		days = DefaultRotationDays
	}
	return awscdk.Duration_Days(jsii.Number(float64(days)))
}

func (o DatabaseOptions) port() *float64 {
	if o.Port <= 0 {
		return nil
	}
	return jsii.Number(float64(o.Port))
}

func (o DatabaseOptions) securityGroups() *[]awsec2.ISecurityGroup {
	if len(o.SecurityGroups) == 0 {
		return nil
	}
	sgs := append([]awsec2.ISecurityGroup(nil), o.SecurityGroups...)
	return &sgs
}

func isolatedSubnets() *awsec2.SubnetSelection {
	return &awsec2.SubnetSelection{SubnetType: awsec2.SubnetType_PRIVATE_ISOLATED}
}

// Reader is one planned serverless v2 reader instance.
type Reader struct {
	Name            string
	ScaleWithWriter bool
}

// ReaderPlan names n readers reader-1..reader-n. Only reader-1 scales with
// the writer.
func ReaderPlan(n int) []Reader {
	if n <= 0 {
		return nil
	}
	readers := make([]Reader, n)
	for i := range readers {
		readers[i] = Reader{
			Name:            fmt.Sprintf("reader-%d", i+1),
			ScaleWithWriter: i == 0,
		}
	}
	return readers
}

func readerInstances(n int) *[]awsrds.IClusterInstance {
	plan := ReaderPlan(n)
	if len(plan) == 0 {
		return nil
	}
	instances := make([]awsrds.IClusterInstance, 0, len(plan))
	for _, r := range plan {
		instances = append(instances, awsrds.ClusterInstance_ServerlessV2(jsii.String(r.Name), &awsrds.ServerlessV2ClusterInstanceProps{
			ScaleWithWriter:         jsii.Bool(r.ScaleWithWriter),
			AutoMinorVersionUpgrade: jsii.Bool(true),
			PubliclyAccessible:      jsii.Bool(false),
		}))
	}
	return &instances
}

func writerInstance() awsrds.IClusterInstance {
	return awsrds.ClusterInstance_ServerlessV2(jsii.String("writer"), &awsrds.ServerlessV2ClusterInstanceProps{
		AutoMinorVersionUpgrade: jsii.Bool(true),
		PubliclyAccessible:      jsii.Bool(false),
	})
}

// DefaultClusterEngine is Aurora PostgreSQL 16.4.
func DefaultClusterEngine() awsrds.IClusterEngine {
	return awsrds.DatabaseClusterEngine_AuroraPostgres(&awsrds.AuroraPostgresClusterEngineProps{
		Version: awsrds.AuroraPostgresEngineVersion_VER_16_4(),
	})
}

// DefaultInstanceEngine is PostgreSQL 16.4.
func DefaultInstanceEngine() awsrds.IInstanceEngine {
	return awsrds.DatabaseInstanceEngine_Postgres(&awsrds.PostgresInstanceEngineProps{
		Version: awsrds.PostgresEngineVersion_VER_16_4(),
	})
}

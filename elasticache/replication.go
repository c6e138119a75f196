// Package elasticache provides a Redis replication group block.
package elasticache

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awselasticache"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	blocks "github.com/lex00/cdk-blocks-go"
	"github.com/lex00/cdk-blocks-go/network"
)

// SubnetGroupSuffix names the subnet group companion construct.
const SubnetGroupSuffix = "SubnetGroup"

const (
	DefaultEngine   = "redis"
	DefaultNodeType = "cache.t4g.micro"
)

// ClusterMode toggles Redis cluster mode.
type ClusterMode string

const (
	ClusterModeEnabled  ClusterMode = "enabled"
	ClusterModeDisabled ClusterMode = "disabled"
)

// ReplicationGroupOptions configures NewReplicationGroup.
type ReplicationGroupOptions struct {
	// Vpc provides the private subnets of the subnet group.
	Vpc         awsec2.IVpc
	Description string
	ClusterMode ClusterMode
	// Engine defaults to redis.
	Engine        string
	EngineVersion string
	// NodeType defaults to cache.t4g.micro.
	NodeType                 string
	NumCacheClusters         int
	MultiAz                  bool
	SecurityGroupIDs         []string
	ReplicationGroupID       string
	GlobalReplicationGroupID string
}

// NewReplicationGroup creates id+"SubnetGroup" over the private subnets of
// opts.Vpc and a replication group in it, encrypted at rest.
func NewReplicationGroup(scope constructs.Construct, id string, opts *ReplicationGroupOptions) awselasticache.CfnReplicationGroup {
	if opts == nil {
		opts = &ReplicationGroupOptions{}
	}
	description := opts.Description
	if description == "" {
		description = id
	}

	subnetIDs := network.PrivateSubnetIDs(opts.Vpc)
	subnetGroup := awselasticache.NewCfnSubnetGroup(scope, jsii.String(blocks.ChildID(id, SubnetGroupSuffix)), &awselasticache.CfnSubnetGroupProps{
		Description: jsii.String(description),
		SubnetIds:   &subnetIDs,
	})

	engine := opts.Engine
	if engine == "" {
		engine = DefaultEngine
	}
	nodeType := opts.NodeType
	if nodeType == "" {
		nodeType = DefaultNodeType
	}

	props := &awselasticache.CfnReplicationGroupProps{
		ReplicationGroupDescription: jsii.String(description),
		Engine:                      jsii.String(engine),
		CacheNodeType:               jsii.String(nodeType),
		CacheSubnetGroupName:        subnetGroup.Ref(),
		MultiAzEnabled:              jsii.Bool(opts.MultiAz),
		TransitEncryptionEnabled:    jsii.Bool(false),
		AtRestEncryptionEnabled:     jsii.Bool(true),
	}
	if opts.ClusterMode != "" {
		props.ClusterMode = jsii.String(string(opts.ClusterMode))
	}
	if opts.EngineVersion != "" {
		props.EngineVersion = jsii.String(opts.EngineVersion)
	}
	if opts.NumCacheClusters > 0 {
		props.NumCacheClusters = jsii.Number(float64(opts.NumCacheClusters))
	}
	if len(opts.SecurityGroupIDs) > 0 {
		props.SecurityGroupIds = jsii.Strings(opts.SecurityGroupIDs...)
	}
	if opts.ReplicationGroupID != "" {
		props.ReplicationGroupId = jsii.String(opts.ReplicationGroupID)
	}
	if opts.GlobalReplicationGroupID != "" {
		props.GlobalReplicationGroupId = jsii.String(opts.GlobalReplicationGroupID)
	}

	return awselasticache.NewCfnReplicationGroup(scope, jsii.String(id), props)
}

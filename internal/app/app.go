// Package app composes every stack of the application from configuration
// and synthesizes the cloud assembly.
package app

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
	"go.uber.org/zap"

	"github.com/lex00/cdk-blocks-go/internal/config"
	"github.com/lex00/cdk-blocks-go/stacks"
)

// CreatedByTag is added to every stack with Config.CreatedBy as its value.
const CreatedByTag = "CreatedBy"

// Stack ids.
const (
	NetworkStackID           = "ResourcesNetworkStack"
	LambdaStackID            = "LambdaStack"
	RdsInstanceStackID       = "RdsStack"
	RdsClusterStackID        = "RdsClusterStack"
	EksClusterStackID        = "EksClusterStack"
	EcsClusterStackID        = "EcsClusterStack"
	EcsFargateServiceStackID = "EcsFargateServiceStack"
	EcrStackID               = "EcrStack"
	CloudFrontStackID        = "CloudFrontStack"
	S3StackID                = "S3Stack"
	CertificateStackID       = "CertificateStack"
	MessagingStackID         = "MessagingStack"
	TableStackID             = "TableStack"
	CacheStackID             = "CacheStack"
)

// Stacks holds every stack Build created. Optional stacks are nil when their
// configuration is absent.
type Stacks struct {
	Network     stacks.NetworkStack
	RdsCluster  stacks.RdsClusterStack
	EcsCluster  stacks.EcsClusterStack
	EcsService  stacks.EcsFargateServiceStack
	Messaging   stacks.MessagingStack
	Table       stacks.TableStack
	Cache       stacks.CacheStack
	Lambda      *stacks.LambdaStack
	RdsInstance *stacks.RdsInstanceStack
	Eks         *stacks.EksClusterStack
	Ecr         *stacks.EcrStack
	CloudFront  *stacks.CloudFrontStack
	S3          *stacks.S3Stack
	Certificate *stacks.CertificateStack

	// All lists the created stacks in creation order.
	All []awscdk.Stack
	// Skipped lists the ids of optional stacks that were not created.
	Skipped []string
}

type builder struct {
	app   awscdk.App
	cfg   config.Config
	log   *zap.Logger
	props awscdk.StackProps
	out   *Stacks
}

// Build creates the network stack first and every other stack after it in a
// fixed order, declaring the dependencies CloudFormation cannot infer.
func Build(app awscdk.App, cfg config.Config, log *zap.Logger) (*Stacks, error) {
	if log == nil {
		log = zap.NewNop()
	}
	b := &builder{app: app, cfg: cfg, log: log, props: stackProps(cfg), out: &Stacks{}}
	out := b.out

	out.Network = stacks.NewNetworkStack(app, NetworkStackID, &stacks.NetworkStackProps{StackProps: b.props, Network: cfg.Network})
	b.created(out.Network.Stack)
	vpc := out.Network.Vpc

	if cfg.Lambda.CodeBucket != "" {
		s := stacks.NewLambdaStack(app, LambdaStackID, &stacks.LambdaStackProps{StackProps: b.props, Vpc: vpc, Lambda: cfg.Lambda})
		b.created(s.Stack)
		b.dependsOnNetwork(s.Stack)
		out.Lambda = &s
	} else {
		b.skipped(LambdaStackID, "LAMBDA_CODE_BUCKET not set")
	}

	if cfg.Database.SnapshotIdentifier != "" {
		s := stacks.NewRdsInstanceStack(app, RdsInstanceStackID, &stacks.RdsInstanceStackProps{StackProps: b.props, Vpc: vpc, Database: cfg.Database})
		b.created(s.Stack)
		b.dependsOnNetwork(s.Stack)
		out.RdsInstance = &s
	} else {
		b.skipped(RdsInstanceStackID, "RDS_SNAPSHOT_IDENTIFIER not set")
	}

	out.RdsCluster = stacks.NewRdsClusterStack(app, RdsClusterStackID, &stacks.RdsClusterStackProps{StackProps: b.props, Vpc: vpc, Database: cfg.Database})
	b.created(out.RdsCluster.Stack)
	b.dependsOnNetwork(out.RdsCluster.Stack)

	if cfg.Cluster.Enabled {
		s, err := stacks.NewEksClusterStack(app, EksClusterStackID, &stacks.EksClusterStackProps{StackProps: b.props, Vpc: vpc, Config: cfg})
		if err != nil {
			return nil, err
		}
		b.created(s.Stack)
		b.dependsOnNetwork(s.Stack)
		out.Eks = &s
	} else {
		b.skipped(EksClusterStackID, "EKS_ENABLED is false")
	}

	out.EcsCluster = stacks.NewEcsClusterStack(app, EcsClusterStackID, &stacks.EcsClusterStackProps{StackProps: b.props, Vpc: vpc})
	b.created(out.EcsCluster.Stack)
	b.dependsOnNetwork(out.EcsCluster.Stack)

	out.EcsService = stacks.NewEcsFargateServiceStack(app, EcsFargateServiceStackID, &stacks.EcsFargateServiceStackProps{
		StackProps: b.props,
		Cluster:    out.EcsCluster.Cluster,
		Service:    cfg.Service,
	})
	b.created(out.EcsService.Stack)
	b.dependsOn(out.EcsService.Stack, out.EcsCluster.Stack, "service runs on the ECS cluster")

	if cfg.IsProd() || len(cfg.Registry.CrossAccountIDs) > 0 {
		s := stacks.NewEcrStack(app, EcrStackID, &stacks.EcrStackProps{StackProps: b.props, Registry: cfg.Registry})
		b.created(s.Stack)
		out.Ecr = &s
	} else {
		b.skipped(EcrStackID, "not prod and no CROSS_ACCOUNT_ACCESS_ACCOUNT_IDS")
	}

	if cfg.WebApp.Bucket != "" {
		s, err := stacks.NewCloudFrontStack(app, CloudFrontStackID, &stacks.CloudFrontStackProps{StackProps: b.props, WebApp: cfg.WebApp})
		if err != nil {
			return nil, err
		}
		b.created(s.Stack)
		out.CloudFront = &s
	} else {
		b.skipped(CloudFrontStackID, "WEB_APP_BUCKET not set")
	}

	if cfg.Storage.ManagementZonesBucket != "" {
		s := stacks.NewS3Stack(app, S3StackID, &stacks.S3StackProps{StackProps: b.props, Storage: cfg.Storage})
		b.created(s.Stack)
		out.S3 = &s
	} else {
		b.skipped(S3StackID, "MANAGEMENT_ZONES_BUCKET not set")
	}

	if cfg.Certificate.DomainName != "" {
		s := stacks.NewCertificateStack(app, CertificateStackID, &stacks.CertificateStackProps{StackProps: b.props, Certificate: cfg.Certificate})
		b.created(s.Stack)
		out.Certificate = &s
	} else {
		b.skipped(CertificateStackID, "CERTIFICATE_DOMAIN_NAME not set")
	}

	out.Messaging = stacks.NewMessagingStack(app, MessagingStackID, &stacks.MessagingStackProps{StackProps: b.props, Messaging: cfg.Messaging})
	b.created(out.Messaging.Stack)

	out.Table = stacks.NewTableStack(app, TableStackID, &stacks.TableStackProps{StackProps: b.props})
	b.created(out.Table.Stack)

	out.Cache = stacks.NewCacheStack(app, CacheStackID, &stacks.CacheStackProps{StackProps: b.props, Vpc: vpc, Cache: cfg.Cache})
	b.created(out.Cache.Stack)
	b.dependsOnNetwork(out.Cache.Stack)

	for _, s := range out.All {
		awscdk.Tags_Of(s).Add(jsii.String(CreatedByTag), jsii.String(cfg.CreatedBy), nil)
	}
	return out, nil
}

func stackProps(cfg config.Config) awscdk.StackProps {
	if cfg.Account == "" && cfg.Region == "" {
		return awscdk.StackProps{}
	}
	env := &awscdk.Environment{}
	if cfg.Account != "" {
		env.Account = jsii.String(cfg.Account)
	}
	if cfg.Region != "" {
		env.Region = jsii.String(cfg.Region)
	}
	return awscdk.StackProps{Env: env}
}

func (b *builder) created(s awscdk.Stack) {
	b.out.All = append(b.out.All, s)
	b.log.Info("stack created", zap.String("stack", *s.StackName()))
}

func (b *builder) skipped(id, reason string) {
	b.out.Skipped = append(b.out.Skipped, id)
	b.log.Info("stack skipped", zap.String("stack", id), zap.String("reason", reason))
}

func (b *builder) dependsOnNetwork(s awscdk.Stack) {
	b.dependsOn(s, b.out.Network.Stack, "uses the shared VPC")
}

func (b *builder) dependsOn(s, on awscdk.Stack, reason string) {
	s.AddDependency(on, jsii.String(reason))
	b.log.Debug("stack dependency",
		zap.String("stack", *s.StackName()),
		zap.String("dependsOn", *on.StackName()),
		zap.String("reason", reason))
}

// StackNames returns the names of every stack in creation order.
func (s *Stacks) StackNames() []string {
	names := make([]string, 0, len(s.All))
	for _, st := range s.All {
		names = append(names, *st.StackName())
	}
	return names
}

package stacks

import (
	"fmt"
	"path/filepath"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awseks"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	blocks "github.com/lex00/cdk-blocks-go"
	"github.com/lex00/cdk-blocks-go/eks"
	"github.com/lex00/cdk-blocks-go/internal/config"
	"github.com/lex00/cdk-blocks-go/network"
	"github.com/lex00/cdk-blocks-go/parser"
)

// KarpenterDiscoveryTag marks the security group Karpenter attaches to nodes.
const KarpenterDiscoveryTag = "karpenter.sh/discovery"

type EksClusterStackProps struct {
	awscdk.StackProps
	Vpc    awsec2.IVpc
	Config config.Config
}

type EksClusterStack struct {
	awscdk.Stack
	Cluster awseks.FargateCluster
}

// NewEksClusterStack creates the Fargate cluster with the Karpenter and
// ArgoCD addons read from Cluster.AddonsDir. EKS_ADMIN_PRINCIPAL_ARN, when
// set, is granted cluster admin.
func NewEksClusterStack(scope constructs.Construct, id string, props *EksClusterStackProps) (EksClusterStack, error) {
	stack := awscdk.NewStack(scope, jsii.String(id), &props.StackProps)
	cfg := props.Config

	sg := network.NewSecurityGroup(stack, "ClusterSecurityGroup", &network.SecurityGroupOptions{
		Vpc:         props.Vpc,
		Name:        "EKS Cluster Security Group",
		Description: "EKS Control Plane Security Group tagged by Karpenter",
		Ingress: []network.IngressRule{{
			Peer:        awsec2.Peer_Ipv4(props.Vpc.VpcCidrBlock()),
			Description: "Allow all traffic from VPC CIDR",
			Connection:  awsec2.Port_AllTraffic(),
		}},
	})
	awscdk.Tags_Of(sg).Add(jsii.String(KarpenterDiscoveryTag), jsii.String(cfg.Cluster.Name), nil)

	vars := parser.MapLookup(cfg.AddonVars())
	opts := &eks.ClusterOptions{
		Vpc:           props.Vpc,
		ClusterName:   cfg.Cluster.Name,
		SecurityGroup: sg,
		Karpenter:     blocks.Some(eks.AddonOptions{Dir: filepath.Join(cfg.Cluster.AddonsDir, "karpenter"), Vars: vars}),
		ArgoCD:        blocks.Some(eks.AddonOptions{Dir: filepath.Join(cfg.Cluster.AddonsDir, "argocd"), Vars: vars}),
	}
	if cfg.Cluster.AdminPrincipalArn != "" {
		opts.Access = []eks.AccessEntry{{
			ID:        "ClusterAdminPolicy",
			Principal: cfg.Cluster.AdminPrincipalArn,
			Policies:  []eks.AccessPolicy{{Name: eks.ClusterAdminPolicy, Scope: eks.ClusterScope}},
		}}
	}

	cluster, err := eks.NewCluster(stack, "EksCluster", opts)
	if err != nil {
		return EksClusterStack{}, fmt.Errorf("stack %s: %w", id, err)
	}
	return EksClusterStack{Stack: stack, Cluster: cluster}, nil
}

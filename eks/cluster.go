// Package eks provides a Fargate EKS cluster block with optional Karpenter
// and ArgoCD addons and access entries.
package eks

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awseks"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/cdklabs/awscdk-kubectl-go/kubectlv30/v2"

	blocks "github.com/lex00/cdk-blocks-go"
)

// Companion construct suffixes.
const (
	MastersRoleSuffix  = "MastersRole"
	KubectlLayerSuffix = "KubectlLayer"
)

// ClusterOptions configures NewCluster.
type ClusterOptions struct {
	Vpc           awsec2.IVpc
	ClusterName   string
	SecurityGroup awsec2.ISecurityGroup
	// Version defaults to 1.30, matching the kubectl layer.
	Version awseks.KubernetesVersion
	// AuthenticationMode defaults to API_AND_CONFIG_MAP.
	AuthenticationMode awseks.AuthenticationMode
	// EndpointAccess defaults to public and private.
	EndpointAccess awseks.EndpointAccess

	Karpenter blocks.Optional[AddonOptions]
	ArgoCD    blocks.Optional[AddonOptions]
	Access    []AccessEntry
}

// NewCluster creates a Fargate cluster on the private subnets of opts.Vpc.
// Addon files and access entries are checked before any construct is added,
// so an error leaves scope untouched.
func NewCluster(scope constructs.Construct, id string, opts *ClusterOptions) (awseks.FargateCluster, error) {
	if opts == nil {
		opts = &ClusterOptions{}
	}
	for _, entry := range opts.Access {
		if err := entry.Validate(); err != nil {
			return nil, fmt.Errorf("eks cluster %s: %w", id, err)
		}
	}

	var karpenterValues map[string]any
	karpenter, withKarpenter := opts.Karpenter.Get()
	if withKarpenter {
		values, err := loadKarpenterValues(karpenter)
		if err != nil {
			return nil, fmt.Errorf("eks cluster %s: %w", id, err)
		}
		karpenterValues = values
	}
	var argoFiles *argoCDFiles
	if argo, ok := opts.ArgoCD.Get(); ok {
		files, err := loadArgoCD(argo)
		if err != nil {
			return nil, fmt.Errorf("eks cluster %s: %w", id, err)
		}
		argoFiles = files
	}

	version := opts.Version
	if version == nil {
		version = awseks.KubernetesVersion_V1_30()
	}
	authMode := opts.AuthenticationMode
	if authMode == "" {
		authMode = awseks.AuthenticationMode_API_AND_CONFIG_MAP
	}
	endpoint := opts.EndpointAccess
	if endpoint == nil {
		endpoint = awseks.EndpointAccess_PUBLIC_AND_PRIVATE()
	}

	mastersRole := awsiam.NewRole(scope, jsii.String(blocks.ChildID(id, MastersRoleSuffix)), &awsiam.RoleProps{
		AssumedBy: awsiam.NewAccountRootPrincipal(),
	})

	props := &awseks.FargateClusterProps{
		Version: version,
		Vpc:     opts.Vpc,
		VpcSubnets: &[]*awsec2.SubnetSelection{
			{SubnetType: awsec2.SubnetType_PRIVATE_WITH_EGRESS},
		},
		ClusterLogging: &[]awseks.ClusterLoggingTypes{
			awseks.ClusterLoggingTypes_API,
			awseks.ClusterLoggingTypes_AUTHENTICATOR,
			awseks.ClusterLoggingTypes_SCHEDULER,
		},
		MastersRole:        mastersRole,
		KubectlLayer:       kubectlv30.NewKubectlV30Layer(scope, jsii.String(blocks.ChildID(id, KubectlLayerSuffix))),
		CoreDnsComputeType: awseks.CoreDnsComputeType_EC2,
		AuthenticationMode: authMode,
		EndpointAccess:     endpoint,
		DefaultProfile: &awseks.FargateProfileOptions{
			Selectors: &[]*awseks.Selector{{Namespace: jsii.String(KarpenterNamespace)}},
		},
	}
	if opts.ClusterName != "" {
		props.ClusterName = jsii.String(opts.ClusterName)
	}
	if opts.SecurityGroup != nil {
		props.SecurityGroup = opts.SecurityGroup
	}

	cluster := awseks.NewFargateCluster(scope, jsii.String(id), props)

	if withKarpenter {
		addKarpenter(scope, cluster, karpenter, karpenterValues)
	}
	if argoFiles != nil {
		addArgoCD(cluster, argoFiles)
	}
	grantAccess(cluster, opts.Access)

	return cluster, nil
}

package eks

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/aws/aws-cdk-go/awscdk/v2/awseks"
	"github.com/aws/aws-cdk-go/awscdk/v2/cloudformationinclude"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/lex00/cdk-blocks-go/parser"
)

// ErrInvalidManifest is returned for an addon manifest without a kind or name.
var ErrInvalidManifest = errors.New("invalid kubernetes manifest")

// AddonOptions locates an addon's files and the variables substituted into
// them.
type AddonOptions struct {
	Dir  string
	Vars parser.Lookup
}

// Karpenter chart coordinates.
const (
	KarpenterNamespace  = "karpenter"
	KarpenterRepository = "oci://public.ecr.aws/karpenter/karpenter"
	KarpenterVersion    = "0.37.0"
)

// ArgoCD chart coordinates.
const (
	ArgoCDNamespace  = "argocd"
	ArgoCDRepository = "https://argoproj.github.io/argo-helm"
	ArgoCDVersion    = "6.7.8"
)

// Files read from an addon directory.
const (
	KarpenterTemplateFile = "karpenter_template.yaml"
	KarpenterValuesFile   = "karpenter_values.yaml"
	ArgoCDValuesFile      = "argocd_values.yaml"
	ArgoCDDevOpsFile      = "argocd_devops_application.yaml"
	ArgoCDGithubFile      = "argocd_github_secret.yaml"
)

type argoCDFiles struct {
	values map[string]any
	devops []*map[string]interface{}
	secret []*map[string]interface{}
}

// loadKarpenterValues reads the chart values before anything is constructed.
func loadKarpenterValues(opts AddonOptions) (map[string]any, error) {
	values, err := parser.LoadYAML(filepath.Join(opts.Dir, KarpenterValuesFile), opts.Vars)
	if err != nil {
		return nil, fmt.Errorf("karpenter values: %w", err)
	}
	return values, nil
}

func addKarpenter(scope constructs.Construct, cluster awseks.FargateCluster, opts AddonOptions, values map[string]any) {
	cloudformationinclude.NewCfnInclude(scope, jsii.String("KarpenterTemplate"), &cloudformationinclude.CfnIncludeProps{
		TemplateFile: jsii.String(filepath.Join(opts.Dir, KarpenterTemplateFile)),
		Parameters: &map[string]interface{}{
			"ClusterName": cluster.ClusterName(),
			"OICPIssuer":  cluster.ClusterOpenIdConnectIssuer(),
		},
	})
	cluster.AddHelmChart(jsii.String("Karpenter"), &awseks.HelmChartOptions{
		Chart:           jsii.String("karpenter"),
		Release:         jsii.String("karpenter"),
		Repository:      jsii.String(KarpenterRepository),
		Namespace:       jsii.String(KarpenterNamespace),
		Version:         jsii.String(KarpenterVersion),
		CreateNamespace: jsii.Bool(true),
		Values:          &values,
	})
}

func loadArgoCD(opts AddonOptions) (*argoCDFiles, error) {
	values, err := parser.LoadYAML(filepath.Join(opts.Dir, ArgoCDValuesFile), opts.Vars)
	if err != nil {
		return nil, fmt.Errorf("argocd values: %w", err)
	}
	devops, err := loadManifests(filepath.Join(opts.Dir, ArgoCDDevOpsFile), nil)
	if err != nil {
		return nil, err
	}
	secret, err := loadManifests(filepath.Join(opts.Dir, ArgoCDGithubFile), opts.Vars)
	if err != nil {
		return nil, err
	}
	return &argoCDFiles{values: values, devops: devops, secret: secret}, nil
}

func addArgoCD(cluster awseks.FargateCluster, files *argoCDFiles) {
	chart := cluster.AddHelmChart(jsii.String("ArgoCDAddOn"), &awseks.HelmChartOptions{
		Chart:           jsii.String("argo-cd"),
		Release:         jsii.String("argocd"),
		Repository:      jsii.String(ArgoCDRepository),
		Namespace:       jsii.String(ArgoCDNamespace),
		Version:         jsii.String(ArgoCDVersion),
		CreateNamespace: jsii.Bool(true),
		Values:          &files.values,
	})

	// the Application and Secret kinds only exist once the chart is installed
	devops := cluster.AddManifest(jsii.String("ArgoCdDevOps"), files.devops...)
	devops.Node().AddDependency(chart)
	secret := cluster.AddManifest(jsii.String("ArgoCdGithubSecret"), files.secret...)
	secret.Node().AddDependency(chart)
}

func loadManifests(path string, vars parser.Lookup) ([]*map[string]interface{}, error) {
	docs, err := parser.LoadAllYAML(path, vars)
	if err != nil {
		return nil, err
	}
	out := make([]*map[string]interface{}, 0, len(docs))
	for i, doc := range docs {
		obj, err := CheckManifest(doc, ArgoCDNamespace)
		if err != nil {
			return nil, fmt.Errorf("%s: document %d: %w", path, i, err)
		}
		out = append(out, &obj)
	}
	return out, nil
}

// CheckManifest requires a kind and a name and defaults the namespace.
func CheckManifest(doc map[string]any, namespace string) (map[string]interface{}, error) {
	u := unstructured.Unstructured{Object: doc}
	if u.GetKind() == "" {
		return nil, fmt.Errorf("%w: missing kind", ErrInvalidManifest)
	}
	if u.GetName() == "" {
		return nil, fmt.Errorf("%w: %s has no metadata.name", ErrInvalidManifest, u.GetKind())
	}
	if u.GetNamespace() == "" {
		u.SetNamespace(namespace)
	}
	return u.Object, nil
}

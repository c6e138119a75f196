package eks

import (
	"errors"
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2/awseks"
	"github.com/aws/jsii-runtime-go"
)

var (
	// ErrNamespacesRequired is returned for a namespace-scoped policy with no
	// namespaces. Such a policy is never widened to cluster scope.
	ErrNamespacesRequired = errors.New("namespace-scoped access policy needs at least one namespace")
	// ErrPrincipalRequired is returned for an access entry with no principal.
	ErrPrincipalRequired = errors.New("access entry needs a principal ARN")
)

// PolicyName is an EKS managed access policy.
type PolicyName string

const (
	AdminPolicy        PolicyName = "AmazonEKSAdminPolicy"
	AdminViewPolicy    PolicyName = "AmazonEKSAdminViewPolicy"
	ClusterAdminPolicy PolicyName = "AmazonEKSClusterAdminPolicy"
	EditPolicy         PolicyName = "AmazonEKSEditPolicy"
	ViewPolicy         PolicyName = "AmazonEKSViewPolicy"
)

// AccessScope limits where a policy applies.
type AccessScope int

const (
	ClusterScope AccessScope = iota
	NamespaceScope
)

// AccessPolicy grants Name over the whole cluster or over Namespaces.
type AccessPolicy struct {
	Name       PolicyName
	Scope      AccessScope
	Namespaces []string
}

// AccessEntry grants Policies to the IAM principal Principal. ID names the
// access entry construct.
type AccessEntry struct {
	ID        string
	Principal string
	Policies  []AccessPolicy
}

// Validate checks the entry without touching the construct tree.
func (e AccessEntry) Validate() error {
	if e.Principal == "" {
		return fmt.Errorf("access entry %s: %w", e.ID, ErrPrincipalRequired)
	}
	for _, p := range e.Policies {
		if p.Scope == NamespaceScope && len(p.Namespaces) == 0 {
			return fmt.Errorf("access entry %s, policy %s: %w", e.ID, p.Name, ErrNamespacesRequired)
		}
	}
	return nil
}

func (p AccessPolicy) cdk() awseks.IAccessPolicy {
	opts := &awseks.AccessPolicyNameOptions{AccessScopeType: awseks.AccessScopeType_CLUSTER}
	if p.Scope == NamespaceScope {
		opts = &awseks.AccessPolicyNameOptions{
			AccessScopeType: awseks.AccessScopeType_NAMESPACE,
			Namespaces:      jsii.Strings(p.Namespaces...),
		}
	}
	return awseks.AccessPolicy_FromAccessPolicyName(jsii.String(string(p.Name)), opts)
}

func grantAccess(cluster awseks.Cluster, entries []AccessEntry) {
	for _, e := range entries {
		policies := make([]awseks.IAccessPolicy, 0, len(e.Policies))
		for _, p := range e.Policies {
			policies = append(policies, p.cdk())
		}
		cluster.GrantAccess(jsii.String(e.ID), jsii.String(e.Principal), &policies)
	}
}

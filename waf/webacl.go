// Package waf provides a WAFv2 WebACL block with canned rate-limit rules.
package waf

import (
	"errors"
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2/awswafv2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	blocks "github.com/lex00/cdk-blocks-go"
)

// ErrDuplicatePriority is returned when two rules share a priority.
var ErrDuplicatePriority = errors.New("duplicate rule priority")

// Scope is where a WebACL can be attached.
type Scope string

const (
	// ScopeCloudFront ACLs attach to distributions and must live in us-east-1.
	ScopeCloudFront Scope = "CLOUDFRONT"
	// ScopeRegional ACLs attach to load balancers, API stages and similar.
	ScopeRegional Scope = "REGIONAL"
)

// AssociationSuffix names the association companion construct.
const AssociationSuffix = "WebAclAssociation"

// WebACLOptions configures NewWebACL.
type WebACLOptions struct {
	// Scope defaults to ScopeRegional.
	Scope       Scope
	Name        string
	Description string
	// MetricName defaults to the construct id.
	MetricName string
	// MetricsEnabled and SampledRequests default to true.
	MetricsEnabled  blocks.Optional[bool]
	SampledRequests blocks.Optional[bool]
	Rules           []RateLimit
	// Association is the ARN of a regional resource to attach the ACL to.
	Association blocks.Optional[string]
}

// CheckPriorities returns ErrDuplicatePriority if two rules share a priority.
func CheckPriorities(rules []RateLimit) error {
	seen := make(map[int]string, len(rules))
	for _, r := range rules {
		if other, ok := seen[r.Priority]; ok {
			return fmt.Errorf("%w: %s and %s both use %d", ErrDuplicatePriority, other, r.Name, r.Priority)
		}
		seen[r.Priority] = r.Name
	}
	return nil
}

// NewWebACL creates a WebACL that allows by default and blocks on the given
// rate-limit rules. With Association set it also creates id+"WebAclAssociation".
func NewWebACL(scope constructs.Construct, id string, opts *WebACLOptions) (awswafv2.CfnWebACL, error) {
	if opts == nil {
		opts = &WebACLOptions{}
	}
	if err := CheckPriorities(opts.Rules); err != nil {
		return nil, fmt.Errorf("web acl %s: %w", id, err)
	}

	aclScope := opts.Scope
	if aclScope == "" {
		aclScope = ScopeRegional
	}
	metricName := opts.MetricName
	if metricName == "" {
		metricName = id
	}

	rules := make([]interface{}, 0, len(opts.Rules))
	for _, r := range opts.Rules {
		rules = append(rules, r.Rule())
	}

	props := &awswafv2.CfnWebACLProps{
		Scope: jsii.String(string(aclScope)),
		DefaultAction: &awswafv2.CfnWebACL_DefaultActionProperty{
			Allow: &awswafv2.CfnWebACL_AllowActionProperty{},
		},
		VisibilityConfig: &awswafv2.CfnWebACL_VisibilityConfigProperty{
			CloudWatchMetricsEnabled: jsii.Bool(opts.MetricsEnabled.OrElse(true)),
			MetricName:               jsii.String(metricName),
			SampledRequestsEnabled:   jsii.Bool(opts.SampledRequests.OrElse(true)),
		},
		CustomResponseBodies: &map[string]interface{}{
			TooManyRequestsBodyKey: &awswafv2.CfnWebACL_CustomResponseBodyProperty{
				Content:     jsii.String(TooManyRequestsBody),
				ContentType: jsii.String("TEXT_HTML"),
			},
		},
		Rules: &rules,
	}
	if opts.Name != "" {
		props.Name = jsii.String(opts.Name)
	}
	if opts.Description != "" {
		props.Description = jsii.String(opts.Description)
	}

	acl := awswafv2.NewCfnWebACL(scope, jsii.String(id), props)

	if arn, ok := opts.Association.Get(); ok && arn != "" {
		awswafv2.NewCfnWebACLAssociation(scope, jsii.String(blocks.ChildID(id, AssociationSuffix)), &awswafv2.CfnWebACLAssociationProps{
			ResourceArn: jsii.String(arn),
			WebAclArn:   acl.AttrArn(),
		})
	}
	return acl, nil
}

package waf

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awswafv2"
	"github.com/aws/jsii-runtime-go"
)

// TooManyRequestsBodyKey names the shared custom response body.
const TooManyRequestsBodyKey = "TooManyRequestsBody"

// TooManyRequestsBody is returned with every rate-limit block.
const TooManyRequestsBody = "<html><body><h1>Too Many Requests</h1><p>Please try again later.</p></body></html>"

// TooManyRequestsStatus is the status code of a rate-limit block.
const TooManyRequestsStatus = 429

// RateLimit describes one header-keyed rate-based blocking rule.
type RateLimit struct {
	Name     string
	Priority int
	// Limit is the number of requests allowed per EvaluationWindowSec.
	Limit               int
	EvaluationWindowSec int
	// Header is the request header requests are aggregated by.
	Header string
}

// LowRateLimit allows 10 requests per minute per x-low-rate-limit value.
func LowRateLimit() RateLimit {
	return RateLimit{Name: "low-rate-limit", Priority: 2, Limit: 10, EvaluationWindowSec: 60, Header: "x-low-rate-limit"}
}

// MediumRateLimit allows 30 requests per minute per x-medium-rate-limit value.
func MediumRateLimit() RateLimit {
	return RateLimit{Name: "medium-rate-limit", Priority: 1, Limit: 30, EvaluationWindowSec: 60, Header: "x-medium-rate-limit"}
}

// HighRateLimit allows 50 requests per minute per x-high-rate-limit value.
func HighRateLimit() RateLimit {
	return RateLimit{Name: "high-rate-limit", Priority: 0, Limit: 50, EvaluationWindowSec: 60, Header: "x-high-rate-limit"}
}

// CannedRateLimits returns the low, medium and high rules.
func CannedRateLimits() []RateLimit {
	return []RateLimit{LowRateLimit(), MediumRateLimit(), HighRateLimit()}
}

// Rule renders the rate limit as a WebACL rule that blocks with 429 and the
// shared body.
func (r RateLimit) Rule() *awswafv2.CfnWebACL_RuleProperty {
	return &awswafv2.CfnWebACL_RuleProperty{
		Name:     jsii.String(r.Name),
		Priority: jsii.Number(float64(r.Priority)),
		Action: &awswafv2.CfnWebACL_RuleActionProperty{
			Block: &awswafv2.CfnWebACL_BlockActionProperty{
				CustomResponse: &awswafv2.CfnWebACL_CustomResponseProperty{
					ResponseCode:          jsii.Number(TooManyRequestsStatus),
					CustomResponseBodyKey: jsii.String(TooManyRequestsBodyKey),
				},
			},
		},
		Statement: &awswafv2.CfnWebACL_StatementProperty{
			RateBasedStatement: &awswafv2.CfnWebACL_RateBasedStatementProperty{
				Limit:               jsii.Number(float64(r.Limit)),
				EvaluationWindowSec: jsii.Number(float64(r.EvaluationWindowSec)),
				AggregateKeyType:    jsii.String("CUSTOM_KEYS"),
				CustomKeys: &[]interface{}{
					&awswafv2.CfnWebACL_RateBasedStatementCustomKeyProperty{
						Header: &awswafv2.CfnWebACL_RateLimitHeaderProperty{
							Name: jsii.String(r.Header),
							TextTransformations: &[]interface{}{
								&awswafv2.CfnWebACL_TextTransformationProperty{
									Priority: jsii.Number(0),
									Type:     jsii.String("NONE"),
								},
							},
						},
					},
				},
			},
		},
		VisibilityConfig: &awswafv2.CfnWebACL_VisibilityConfigProperty{
			CloudWatchMetricsEnabled: jsii.Bool(true),
			MetricName:               jsii.String(r.Name),
			SampledRequestsEnabled:   jsii.Bool(true),
		},
	}
}

// Package lint audits synthesized CloudFormation templates.
//
// Rules:
//
//	BLK001: Databases should enable deletion protection
//	BLK002: Security groups must not allow all traffic from anywhere
//	BLK003: ECR repositories should use immutable tags
//	BLK004: WebACL rule priorities must be unique
//	BLK005: DynamoDB tables should enable point-in-time recovery
//	BLK006: Generated secrets should have a rotation schedule
//	BLK007: Queues should have a redrive policy unless they are a dead-letter queue
package lint

import (
	"fmt"
	"sort"
	"strings"

	cfn "github.com/lex00/cloudformation-schema-go/template"

	"github.com/lex00/cdk-blocks-go/internal/template"
)

// AllRules returns every rule in ID order.
func AllRules() []Rule {
	return []Rule{
		DatabaseDeletionProtection{},
		WorldOpenIngress{},
		MutableImageTags{},
		DuplicateWAFPriority{},
		TablePointInTimeRecovery{},
		SecretWithoutRotation{},
		QueueWithoutRedrive{},
	}
}

// prop returns the value of a top-level property, or nil.
func prop(res *cfn.Resource, name string) any {
	if p, ok := res.Properties[name]; ok && p != nil {
		return p.Value
	}
	return nil
}

// isTrue accepts both JSON booleans and the strings CloudFormation coerces.
func isTrue(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.EqualFold(val, "true")
	}
	return false
}

// sortedIDs returns the logical ids of resources of the given types.
func sortedIDs(t *cfn.Template, types ...string) []string {
	var ids []string
	for id, res := range t.Resources {
		for _, typ := range types {
			if res.ResourceType == typ {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids
}

// DatabaseDeletionProtection flags RDS clusters and instances that can be
// deleted by a stack update.
type DatabaseDeletionProtection struct{}

func (r DatabaseDeletionProtection) ID() string { return "BLK001" }
func (r DatabaseDeletionProtection) Description() string {
	return "Databases should enable deletion protection"
}

func (r DatabaseDeletionProtection) Check(stack string, t *cfn.Template) []Issue {
	var issues []Issue
	for _, id := range sortedIDs(t, "AWS::RDS::DBCluster", "AWS::RDS::DBInstance") {
		res := t.Resources[id]
		if isTrue(prop(res, "DeletionProtection")) {
			continue
		}
		// Instances that belong to a cluster inherit its protection.
		if res.ResourceType == "AWS::RDS::DBInstance" && prop(res, "DBClusterIdentifier") != nil {
			continue
		}
		issues = append(issues, Issue{
			Stack:    stack,
			Resource: id,
			Severity: SeverityWarning,
			Message:  res.ResourceType + " does not set DeletionProtection",
			Rule:     r.ID(),
		})
	}
	return issues
}

// WorldOpenIngress flags ingress rules that allow every protocol from
// 0.0.0.0/0 or ::/0.
type WorldOpenIngress struct{}

func (r WorldOpenIngress) ID() string { return "BLK002" }
func (r WorldOpenIngress) Description() string {
	return "Security groups must not allow all traffic from anywhere"
}

func (r WorldOpenIngress) Check(stack string, t *cfn.Template) []Issue {
	var issues []Issue
	flag := func(id, cidr string) {
		issues = append(issues, Issue{
			Stack:    stack,
			Resource: id,
			Severity: SeverityError,
			Message:  "all traffic is allowed from " + cidr,
			Rule:     r.ID(),
		})
	}

	for _, id := range sortedIDs(t, "AWS::EC2::SecurityGroup") {
		rules, _ := prop(t.Resources[id], "SecurityGroupIngress").([]any)
		for _, raw := range rules {
			rule, _ := raw.(map[string]any)
			if cidr, open := worldOpen(rule); open {
				flag(id, cidr)
			}
		}
	}
	for _, id := range sortedIDs(t, "AWS::EC2::SecurityGroupIngress") {
		rule := make(map[string]any)
		for name, p := range t.Resources[id].Properties {
			rule[name] = p.Value
		}
		if cidr, open := worldOpen(rule); open {
			flag(id, cidr)
		}
	}
	return issues
}

func worldOpen(rule map[string]any) (string, bool) {
	if protocol := fmt.Sprint(rule["IpProtocol"]); protocol != "-1" && protocol != "all" {
		return "", false
	}
	if rule["CidrIp"] == "0.0.0.0/0" {
		return "0.0.0.0/0", true
	}
	if rule["CidrIpv6"] == "::/0" {
		return "::/0", true
	}
	return "", false
}

// MutableImageTags flags repositories whose tags can be overwritten.
type MutableImageTags struct{}

func (r MutableImageTags) ID() string { return "BLK003" }
func (r MutableImageTags) Description() string {
	return "ECR repositories should use immutable tags"
}

func (r MutableImageTags) Check(stack string, t *cfn.Template) []Issue {
	var issues []Issue
	for _, id := range sortedIDs(t, "AWS::ECR::Repository") {
		mutability, _ := prop(t.Resources[id], "ImageTagMutability").(string)
		if mutability == "IMMUTABLE" {
			continue
		}
		issues = append(issues, Issue{
			Stack:    stack,
			Resource: id,
			Severity: SeverityWarning,
			Message:  "image tags are mutable",
			Rule:     r.ID(),
		})
	}
	return issues
}

// DuplicateWAFPriority flags WebACLs where two rules share a priority, which
// CloudFormation rejects at deploy time.
type DuplicateWAFPriority struct{}

func (r DuplicateWAFPriority) ID() string { return "BLK004" }
func (r DuplicateWAFPriority) Description() string {
	return "WebACL rule priorities must be unique"
}

func (r DuplicateWAFPriority) Check(stack string, t *cfn.Template) []Issue {
	var issues []Issue
	for _, id := range sortedIDs(t, "AWS::WAFv2::WebACL") {
		rules, _ := prop(t.Resources[id], "Rules").([]any)
		seen := make(map[string]string, len(rules))
		for _, raw := range rules {
			rule, _ := raw.(map[string]any)
			priority := fmt.Sprint(rule["Priority"])
			name := fmt.Sprint(rule["Name"])
			if other, dup := seen[priority]; dup {
				issues = append(issues, Issue{
					Stack:    stack,
					Resource: id,
					Severity: SeverityError,
					Message:  fmt.Sprintf("rules %s and %s both use priority %s", other, name, priority),
					Rule:     r.ID(),
				})
				continue
			}
			seen[priority] = name
		}
	}
	return issues
}

// TablePointInTimeRecovery flags tables without continuous backups.
type TablePointInTimeRecovery struct{}

func (r TablePointInTimeRecovery) ID() string { return "BLK005" }
func (r TablePointInTimeRecovery) Description() string {
	return "DynamoDB tables should enable point-in-time recovery"
}

func (r TablePointInTimeRecovery) Check(stack string, t *cfn.Template) []Issue {
	var issues []Issue
	for _, id := range sortedIDs(t, "AWS::DynamoDB::Table") {
		spec, _ := prop(t.Resources[id], "PointInTimeRecoverySpecification").(map[string]any)
		if isTrue(spec["PointInTimeRecoveryEnabled"]) {
			continue
		}
		issues = append(issues, Issue{
			Stack:    stack,
			Resource: id,
			Severity: SeverityWarning,
			Message:  "point-in-time recovery is not enabled",
			Rule:     r.ID(),
		})
	}
	return issues
}

// SecretWithoutRotation flags generated secrets that no rotation schedule
// points at, directly or through a secret target attachment.
type SecretWithoutRotation struct{}

func (r SecretWithoutRotation) ID() string { return "BLK006" }
func (r SecretWithoutRotation) Description() string {
	return "Generated secrets should have a rotation schedule"
}

func (r SecretWithoutRotation) Check(stack string, t *cfn.Template) []Issue {
	// attachments resolve to the secrets they attach
	attached := make(map[string][]string)
	for _, id := range sortedIDs(t, "AWS::SecretsManager::SecretTargetAttachment") {
		for _, ref := range template.References(prop(t.Resources[id], "SecretId")) {
			attached[id] = append(attached[id], ref.Target)
		}
	}

	rotated := make(map[string]bool)
	for _, id := range sortedIDs(t, "AWS::SecretsManager::RotationSchedule") {
		for _, ref := range template.References(prop(t.Resources[id], "SecretId")) {
			rotated[ref.Target] = true
			for _, secret := range attached[ref.Target] {
				rotated[secret] = true
			}
		}
	}

	var issues []Issue
	for _, id := range sortedIDs(t, "AWS::SecretsManager::Secret") {
		if prop(t.Resources[id], "GenerateSecretString") == nil || rotated[id] {
			continue
		}
		issues = append(issues, Issue{
			Stack:    stack,
			Resource: id,
			Severity: SeverityInfo,
			Message:  "generated secret has no rotation schedule",
			Rule:     r.ID(),
		})
	}
	return issues
}

// QueueWithoutRedrive flags queues that drop poison messages after the
// retention period instead of moving them to a dead-letter queue.
type QueueWithoutRedrive struct{}

func (r QueueWithoutRedrive) ID() string { return "BLK007" }
func (r QueueWithoutRedrive) Description() string {
	return "Queues should have a redrive policy unless they are a dead-letter queue"
}

func (r QueueWithoutRedrive) Check(stack string, t *cfn.Template) []Issue {
	queues := sortedIDs(t, "AWS::SQS::Queue")

	deadLetter := make(map[string]bool)
	for _, id := range queues {
		policy, _ := prop(t.Resources[id], "RedrivePolicy").(map[string]any)
		for _, ref := range template.References(policy["deadLetterTargetArn"]) {
			deadLetter[ref.Target] = true
		}
	}

	var issues []Issue
	for _, id := range queues {
		if prop(t.Resources[id], "RedrivePolicy") != nil || deadLetter[id] {
			continue
		}
		issues = append(issues, Issue{
			Stack:    stack,
			Resource: id,
			Severity: SeverityWarning,
			Message:  "queue has no redrive policy",
			Rule:     r.ID(),
		})
	}
	return issues
}

package lint

import (
	"os"
	"path/filepath"
	"testing"

	cfn "github.com/lex00/cloudformation-schema-go/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, content string) *cfn.Template {
	t.Helper()
	tmpl, err := cfn.ParseTemplateContent([]byte(content), "test.json")
	require.NoError(t, err)
	return tmpl
}

func TestAllRules_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for _, r := range AllRules() {
		assert.False(t, seen[r.ID()], "duplicate rule %s", r.ID())
		assert.NotEmpty(t, r.Description())
		seen[r.ID()] = true
	}
	assert.Len(t, seen, 7)
}

func TestDatabaseDeletionProtection(t *testing.T) {
	tmpl := parse(t, `{"Resources": {
		"Open": {"Type": "AWS::RDS::DBCluster", "Properties": {"Engine": "aurora-postgresql"}},
		"Protected": {"Type": "AWS::RDS::DBCluster", "Properties": {"DeletionProtection": true}},
		"Member": {"Type": "AWS::RDS::DBInstance", "Properties": {"DBClusterIdentifier": {"Ref": "Open"}}},
		"Single": {"Type": "AWS::RDS::DBInstance", "Properties": {"DeletionProtection": "false"}}
	}}`)

	issues := DatabaseDeletionProtection{}.Check("Rds", tmpl)
	require.Len(t, issues, 2)
	assert.Equal(t, "Open", issues[0].Resource)
	assert.Equal(t, "Single", issues[1].Resource)
	assert.Equal(t, "BLK001", issues[0].Rule)
	assert.Equal(t, "Rds", issues[0].Stack)
}

func TestWorldOpenIngress(t *testing.T) {
	tmpl := parse(t, `{"Resources": {
		"Open": {"Type": "AWS::EC2::SecurityGroup", "Properties": {"GroupDescription": "x",
			"SecurityGroupIngress": [{"CidrIp": "0.0.0.0/0", "IpProtocol": "-1"}]}},
		"Https": {"Type": "AWS::EC2::SecurityGroup", "Properties": {"GroupDescription": "x",
			"SecurityGroupIngress": [{"CidrIp": "0.0.0.0/0", "IpProtocol": "tcp", "FromPort": 443, "ToPort": 443}]}},
		"Internal": {"Type": "AWS::EC2::SecurityGroup", "Properties": {"GroupDescription": "x",
			"SecurityGroupIngress": [{"CidrIp": "10.0.0.0/16", "IpProtocol": "-1"}]}},
		"V6": {"Type": "AWS::EC2::SecurityGroupIngress", "Properties": {"GroupId": "sg-1", "CidrIpv6": "::/0", "IpProtocol": "-1"}}
	}}`)

	issues := WorldOpenIngress{}.Check("Network", tmpl)
	require.Len(t, issues, 2)
	assert.Equal(t, "Open", issues[0].Resource)
	assert.Equal(t, SeverityError, issues[0].Severity)
	assert.Equal(t, "V6", issues[1].Resource)
	assert.Contains(t, issues[1].Message, "::/0")
}

func TestMutableImageTags(t *testing.T) {
	tmpl := parse(t, `{"Resources": {
		"Default": {"Type": "AWS::ECR::Repository"},
		"Mutable": {"Type": "AWS::ECR::Repository", "Properties": {"ImageTagMutability": "MUTABLE"}},
		"Immutable": {"Type": "AWS::ECR::Repository", "Properties": {"ImageTagMutability": "IMMUTABLE"}}
	}}`)

	issues := MutableImageTags{}.Check("Ecr", tmpl)
	require.Len(t, issues, 2)
	assert.Equal(t, "Default", issues[0].Resource)
	assert.Equal(t, "Mutable", issues[1].Resource)
}

func TestDuplicateWAFPriority(t *testing.T) {
	tmpl := parse(t, `{"Resources": {
		"Acl": {"Type": "AWS::WAFv2::WebACL", "Properties": {"Scope": "CLOUDFRONT", "Rules": [
			{"Name": "high-rate-limit", "Priority": 0},
			{"Name": "medium-rate-limit", "Priority": 1},
			{"Name": "low-rate-limit", "Priority": 1}
		]}},
		"Clean": {"Type": "AWS::WAFv2::WebACL", "Properties": {"Scope": "REGIONAL", "Rules": [
			{"Name": "a", "Priority": 0},
			{"Name": "b", "Priority": 1}
		]}}
	}}`)

	issues := DuplicateWAFPriority{}.Check("Cdn", tmpl)
	require.Len(t, issues, 1)
	assert.Equal(t, "Acl", issues[0].Resource)
	assert.Equal(t, "rules medium-rate-limit and low-rate-limit both use priority 1", issues[0].Message)
}

func TestTablePointInTimeRecovery(t *testing.T) {
	tmpl := parse(t, `{"Resources": {
		"Plain": {"Type": "AWS::DynamoDB::Table", "Properties": {"BillingMode": "PAY_PER_REQUEST"}},
		"Backed": {"Type": "AWS::DynamoDB::Table", "Properties": {
			"PointInTimeRecoverySpecification": {"PointInTimeRecoveryEnabled": true}}}
	}}`)

	issues := TablePointInTimeRecovery{}.Check("Table", tmpl)
	require.Len(t, issues, 1)
	assert.Equal(t, "Plain", issues[0].Resource)
}

func TestSecretWithoutRotation(t *testing.T) {
	tmpl := parse(t, `{"Resources": {
		"Generated": {"Type": "AWS::SecretsManager::Secret", "Properties": {"GenerateSecretString": {"PasswordLength": 30}}},
		"Rotated": {"Type": "AWS::SecretsManager::Secret", "Properties": {"GenerateSecretString": {"PasswordLength": 30}}},
		"Schedule": {"Type": "AWS::SecretsManager::RotationSchedule", "Properties": {
			"SecretId": {"Ref": "Rotated"}, "RotationRules": {"AutomaticallyAfterDays": 30}}},
		"Static": {"Type": "AWS::SecretsManager::Secret", "Properties": {"SecretString": "x"}}
	}}`)

	issues := SecretWithoutRotation{}.Check("Rds", tmpl)
	require.Len(t, issues, 1)
	assert.Equal(t, "Generated", issues[0].Resource)
	assert.Equal(t, SeverityInfo, issues[0].Severity)
}

func TestSecretWithoutRotation_ThroughAttachment(t *testing.T) {
	tmpl := parse(t, `{"Resources": {
		"Secret": {"Type": "AWS::SecretsManager::Secret", "Properties": {"GenerateSecretString": {"PasswordLength": 30}}},
		"Attachment": {"Type": "AWS::SecretsManager::SecretTargetAttachment", "Properties": {
			"SecretId": {"Ref": "Secret"}, "TargetId": {"Ref": "Cluster"}, "TargetType": "AWS::RDS::DBCluster"}},
		"Schedule": {"Type": "AWS::SecretsManager::RotationSchedule", "Properties": {
			"SecretId": {"Ref": "Attachment"}, "RotationRules": {"ScheduleExpression": "rate(30 days)"}}},
		"Cluster": {"Type": "AWS::RDS::DBCluster", "Properties": {"DeletionProtection": true}},
		"Unscheduled": {"Type": "AWS::SecretsManager::Secret", "Properties": {"GenerateSecretString": {"PasswordLength": 30}}},
		"IdleAttachment": {"Type": "AWS::SecretsManager::SecretTargetAttachment", "Properties": {
			"SecretId": {"Ref": "Unscheduled"}, "TargetId": {"Ref": "Cluster"}, "TargetType": "AWS::RDS::DBCluster"}}
	}}`)

	issues := SecretWithoutRotation{}.Check("Rds", tmpl)
	require.Len(t, issues, 1)
	assert.Equal(t, "Unscheduled", issues[0].Resource)
}

func TestLintTemplate_SynthesizedRdsCluster(t *testing.T) {
	result, err := LintTemplate("RdsClusterStack", filepath.Join("testdata", "RdsCluster.template.json"), Options{})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Issues, "rotation through the secret attachment counts")
}

func TestQueueWithoutRedrive(t *testing.T) {
	tmpl := parse(t, `{"Resources": {
		"Dlq": {"Type": "AWS::SQS::Queue"},
		"Main": {"Type": "AWS::SQS::Queue", "Properties": {
			"RedrivePolicy": {"deadLetterTargetArn": {"Fn::GetAtt": ["Dlq", "Arn"]}, "maxReceiveCount": 5}}},
		"Lonely": {"Type": "AWS::SQS::Queue"}
	}}`)

	issues := QueueWithoutRedrive{}.Check("Messaging", tmpl)
	require.Len(t, issues, 1)
	assert.Equal(t, "Lonely", issues[0].Resource)
}

func TestLintTemplate_NonExistentFile(t *testing.T) {
	_, err := LintTemplate("Ghost", filepath.Join(t.TempDir(), "missing.json"), Options{})
	assert.Error(t, err)
}

func TestLintTemplate_Clean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Table.template.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Resources": {
		"Table": {"Type": "AWS::DynamoDB::Table", "Properties": {
			"PointInTimeRecoverySpecification": {"PointInTimeRecoveryEnabled": true}}}
	}}`), 0o644))

	result, err := LintTemplate("Table", path, Options{})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Issues)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnv(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env."+name), []byte(content), 0o644))
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir(), map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "DevOps - AWS CDK", cfg.CreatedBy)
	assert.Equal(t, "10.64.32.0/20", cfg.Network.Cidr)
	assert.Equal(t, []string{"us-east-1a", "us-east-1b", "us-east-1c"}, cfg.Network.AvailabilityZones)
	assert.Equal(t, "api-server", cfg.Service.ContainerName)
	assert.Equal(t, 5000, cfg.Service.ContainerPort)
	assert.Equal(t, 1, cfg.Database.Readers)
	assert.Equal(t, 30, cfg.Database.RotationDays)
	assert.Equal(t, "addons", cfg.Cluster.AddonsDir)
	assert.Equal(t, "cache.t4g.micro", cfg.Cache.NodeType)
	assert.False(t, cfg.IsProd())
}

func TestLoadFrom_FileAndProcess(t *testing.T) {
	dir := t.TempDir()
	writeEnv(t, dir, "prod", `
AWS_DEFAULT_REGION=us-east-1
AWS_DEFAULT_ACCOUNT=111111111111
VPC_NAME=core
RDS_READERS=3
WEB_APP_DOMAIN_NAMES=app.example.com,www.example.com
CROSS_ACCOUNT_ACCESS_ACCOUNT_IDS=222222222222,333333333333
EKS_ENABLED=true
EKS_CLUSTER_NAME=from-file
`)

	cfg, err := LoadFrom(dir, map[string]string{
		"ENVIRONMENT":      "prod",
		"EKS_CLUSTER_NAME": "from-process",
	})
	require.NoError(t, err)

	assert.True(t, cfg.IsProd())
	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, "111111111111", cfg.Account)
	assert.Equal(t, "core", cfg.Network.VpcName)
	assert.Equal(t, 3, cfg.Database.Readers)
	assert.Equal(t, []string{"app.example.com", "www.example.com"}, cfg.WebApp.DomainNames)
	assert.Equal(t, []string{"222222222222", "333333333333"}, cfg.Registry.CrossAccountIDs)
	assert.True(t, cfg.Cluster.Enabled)
	assert.Equal(t, "from-process", cfg.Cluster.Name, "process environment wins over the file")
}

func TestLoadFrom_UnknownEnvironment(t *testing.T) {
	_, err := LoadFrom(t.TempDir(), map[string]string{"ENVIRONMENT": "staging"})
	require.ErrorIs(t, err, ErrUnknownEnvironment)
}

func TestLoadFrom_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"not a number", map[string]string{"RDS_READERS": "three"}},
		{"negative readers", map[string]string{"RDS_READERS": "-1"}},
		{"zero rotation", map[string]string{"RDS_ROTATION_DAYS": "0"}},
		{"port out of range", map[string]string{"ECS_FARGATE_CONTAINER_PORT": "70000"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(t.TempDir(), tt.env)
			assert.Error(t, err)
		})
	}
}

func TestLoad_DoesNotModifyProcessEnvironment(t *testing.T) {
	dir := t.TempDir()
	writeEnv(t, dir, "qa", "CDK_BLOCKS_ONLY_IN_FILE=1\n")
	t.Setenv("ENVIRONMENT", "qa")

	_, err := Load(dir)
	require.NoError(t, err)

	_, present := os.LookupEnv("CDK_BLOCKS_ONLY_IN_FILE")
	assert.False(t, present)
}

func TestAddonVars(t *testing.T) {
	cfg := Config{Environment: "prod", Cluster: Cluster{
		Name:             "main",
		KarpenterRoleArn: "arn:aws:iam::111111111111:role/karpenter",
		ArgoCDDomain:     "argocd.example.com",
		GithubToken:      "token",
		GithubEmail:      "ops@example.com",
	}}

	assert.Equal(t, map[string]string{
		"EKS_CLUSTER_NAME":   "main",
		"KARPENTER_ROLE_ARN": "arn:aws:iam::111111111111:role/karpenter",
		"ARGOCD_DOMAIN":      "argocd.example.com",
		"ENVIRONMENT":        "prod",
		"GITHUB_TOKEN":       "token",
		"GITHUB_EMAIL":       "ops@example.com",
	}, cfg.AddonVars())
}

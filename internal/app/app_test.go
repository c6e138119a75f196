package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lex00/cdk-blocks-go/internal/config"
)

func baseConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(t.TempDir(), map[string]string{})
	require.NoError(t, err)
	return cfg
}

func dependencyNames(s awscdk.Stack) []string {
	var names []string
	for _, d := range *s.Dependencies() {
		names = append(names, *d.StackName())
	}
	return names
}

func TestBuild_Defaults(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	app := awscdk.NewApp(nil)

	built, err := Build(app, baseConfig(t), zap.New(core))
	require.NoError(t, err)

	assert.Equal(t, []string{
		NetworkStackID,
		RdsClusterStackID,
		EcsClusterStackID,
		EcsFargateServiceStackID,
		MessagingStackID,
		TableStackID,
		CacheStackID,
	}, built.StackNames())

	assert.Nil(t, built.Lambda)
	assert.Nil(t, built.RdsInstance)
	assert.Nil(t, built.Eks)
	assert.Nil(t, built.Ecr)
	assert.Nil(t, built.CloudFront)
	assert.Nil(t, built.S3)
	assert.Nil(t, built.Certificate)

	assert.Contains(t, dependencyNames(built.RdsCluster.Stack), NetworkStackID)
	assert.Contains(t, dependencyNames(built.EcsCluster.Stack), NetworkStackID)
	assert.Contains(t, dependencyNames(built.Cache.Stack), NetworkStackID)
	assert.Contains(t, dependencyNames(built.EcsService.Stack), EcsClusterStackID)

	assert.Equal(t, 7, logs.FilterMessage("stack created").Len())
	assert.Equal(t, 7, logs.FilterMessage("stack skipped").Len())
	assert.Equal(t, []string{
		LambdaStackID,
		RdsInstanceStackID,
		EksClusterStackID,
		EcrStackID,
		CloudFrontStackID,
		S3StackID,
		CertificateStackID,
	}, built.Skipped)
	assert.NotZero(t, logs.FilterMessage("stack dependency").Len())

	template := assertions.Template_FromStack(built.Network.Stack, nil)
	template.HasResourceProperties(jsii.String("AWS::EC2::VPC"), map[string]interface{}{
		"CidrBlock": "10.64.32.0/20",
		"Tags": assertions.Match_ArrayWith(&[]interface{}{
			map[string]interface{}{"Key": CreatedByTag, "Value": "DevOps - AWS CDK"},
		}),
	})
}

func TestBuild_OptionalStacks(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Environment = "prod"
	cfg.Lambda = config.Lambda{CodeBucket: "artifacts", CodeKey: "api.zip"}
	cfg.Database.SnapshotIdentifier = "snap-1"
	cfg.Registry = config.Registry{RepositoryName: "api", CrossAccountIDs: []string{"222222222222"}}
	cfg.WebApp = config.WebApp{Bucket: "site-bucket", WAF: true}
	cfg.Storage.ManagementZonesBucket = "zones"
	cfg.Certificate.DomainName = "example.com"

	app := awscdk.NewApp(nil)
	built, err := Build(app, cfg, nil)
	require.NoError(t, err)

	require.NotNil(t, built.Lambda)
	require.NotNil(t, built.RdsInstance)
	require.NotNil(t, built.Ecr)
	require.NotNil(t, built.CloudFront)
	require.NotNil(t, built.S3)
	require.NotNil(t, built.Certificate)
	assert.Nil(t, built.Eks)
	assert.Len(t, built.All, 13)

	assert.Contains(t, dependencyNames(built.Lambda.Stack), NetworkStackID)
	assert.Contains(t, dependencyNames(built.RdsInstance.Stack), NetworkStackID)

	cdn := assertions.Template_FromStack(built.CloudFront.Stack, nil)
	cdn.ResourceCountIs(jsii.String("AWS::WAFv2::WebACL"), jsii.Number(1))
	cdn.ResourceCountIs(jsii.String("AWS::CloudFront::OriginAccessControl"), jsii.Number(1))
	cdn.ResourceCountIs(jsii.String("AWS::S3::BucketPolicy"), jsii.Number(1))
}

func TestBuild_EksMissingAddons(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Cluster.Enabled = true
	cfg.Cluster.AddonsDir = t.TempDir()

	_, err := Build(awscdk.NewApp(nil), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), EksClusterStackID)
}

func TestSynth(t *testing.T) {
	outdir := t.TempDir()

	out, err := Synth(baseConfig(t), outdir, nil, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, outdir, out.Directory)
	assert.Contains(t, out.Stacks, NetworkStackID)
	assert.FileExists(t, filepath.Join(outdir, "manifest.json"))
	assert.FileExists(t, filepath.Join(outdir, NetworkStackID+".template.json"))
}

func TestSynth_ReturnsBuildErrors(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Cluster.Enabled = true
	cfg.Cluster.AddonsDir = t.TempDir()

	out, err := Synth(cfg, t.TempDir(), nil, nil)
	require.Error(t, err)
	assert.Nil(t, out)
}

func TestLoadContext(t *testing.T) {
	dir := t.TempDir()

	ctx, err := LoadContext(filepath.Join(dir, ContextFile))
	require.NoError(t, err)
	assert.Empty(t, ctx)

	path := filepath.Join(dir, ContextFile)
	require.NoError(t, os.WriteFile(path, []byte(`{"availability-zones:account=111111111111:region=us-east-1": ["us-east-1a"]}`), 0o644))
	ctx, err = LoadContext(path)
	require.NoError(t, err)
	assert.Len(t, ctx, 1)

	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))
	_, err = LoadContext(path)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger("debug", "text")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel))

	log, err = NewLogger("warn", "json")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.InfoLevel))

	_, err = NewLogger("loud", "text")
	assert.Error(t, err)
	for _, level := range []string{"dpanic", "panic", "fatal"} {
		_, err = NewLogger(level, "text")
		assert.Error(t, err, level)
	}
	_, err = NewLogger("info", "xml")
	assert.Error(t, err)
}

// Package config loads the application configuration from .env.<ENVIRONMENT>
// and the process environment into an immutable value.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// ErrUnknownEnvironment is returned when ENVIRONMENT is not one of
// Environments.
var ErrUnknownEnvironment = errors.New("unknown environment")

// Environments lists the accepted ENVIRONMENT values.
var Environments = []string{"dev", "prod", "qa", "uat"}

// DefaultEnvironment is used when ENVIRONMENT is unset.
const DefaultEnvironment = "dev"

// Config is read once and passed by value.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	Region      string `env:"AWS_DEFAULT_REGION"`
	Account     string `env:"AWS_DEFAULT_ACCOUNT"`
	CreatedBy   string `env:"CREATED_BY" envDefault:"DevOps - AWS CDK"`

	Network     Network
	Service     Service
	Database    Database
	WebApp      WebApp
	Registry    Registry
	Storage     Storage
	Cluster     Cluster
	Lambda      Lambda
	Messaging   Messaging
	Certificate Certificate
	Cache       Cache
}

type Network struct {
	VpcID             string   `env:"VPC_ID"`
	VpcName           string   `env:"VPC_NAME" envDefault:"VPC_NAME"`
	Cidr              string   `env:"VPC_CIDR" envDefault:"10.64.32.0/20"`
	AvailabilityZones []string `env:"AVAILABILITY_ZONES" envSeparator:"," envDefault:"us-east-1a,us-east-1b,us-east-1c"`
}

type Service struct {
	CertificateArn string `env:"ECS_FARGATE_CERTIFICATE_ARN"`
	ContainerImage string `env:"ECS_FARGATE_CONTAINER_IMAGE"`
	ContainerName  string `env:"ECS_FARGATE_CONTAINER_NAME" envDefault:"api-server"`
	ContainerPort  int    `env:"ECS_FARGATE_CONTAINER_PORT" envDefault:"5000"`
	SecretsName    string `env:"AWS_SECRETS_NAME"`
}

type Database struct {
	Readers            int    `env:"RDS_READERS" envDefault:"1"`
	SnapshotIdentifier string `env:"RDS_SNAPSHOT_IDENTIFIER"`
	RotationDays       int    `env:"RDS_ROTATION_DAYS" envDefault:"30"`
}

type WebApp struct {
	Bucket         string   `env:"WEB_APP_BUCKET"`
	DomainNames    []string `env:"WEB_APP_DOMAIN_NAMES" envSeparator:","`
	CertificateArn string   `env:"WEB_APP_CERT"`
	WAF            bool     `env:"WEB_APP_WAF"`
}

type Registry struct {
	RepositoryName  string   `env:"ECR_REPOSITORY_NAME"`
	CrossAccountIDs []string `env:"CROSS_ACCOUNT_ACCESS_ACCOUNT_IDS" envSeparator:","`
}

type Storage struct {
	ManagementZonesBucket string `env:"MANAGEMENT_ZONES_BUCKET"`
}

type Cluster struct {
	Enabled           bool   `env:"EKS_ENABLED"`
	Name              string `env:"EKS_CLUSTER_NAME"`
	KarpenterRoleArn  string `env:"KARPENTER_ROLE_ARN"`
	ArgoCDDomain      string `env:"ARGOCD_DOMAIN"`
	GithubToken       string `env:"GITHUB_TOKEN"`
	GithubEmail       string `env:"GITHUB_EMAIL"`
	AdminPrincipalArn string `env:"EKS_ADMIN_PRINCIPAL_ARN"`
	AddonsDir         string `env:"ADDONS_DIR" envDefault:"addons"`
}

type Lambda struct {
	CodeBucket string `env:"LAMBDA_CODE_BUCKET"`
	CodeKey    string `env:"LAMBDA_CODE_KEY"`
}

type Messaging struct {
	QueueName string `env:"SQS_QUEUE_NAME"`
	TopicName string `env:"SNS_TOPIC_NAME"`
}

type Certificate struct {
	DomainName string `env:"CERTIFICATE_DOMAIN_NAME"`
}

type Cache struct {
	NodeType string `env:"CACHE_NODE_TYPE" envDefault:"cache.t4g.micro"`
}

// Load reads <dir>/.env.<ENVIRONMENT> and overlays the process environment
// on it. The process environment is never modified.
func Load(dir string) (Config, error) {
	return LoadFrom(dir, environ())
}

// LoadFrom is Load with an explicit process environment.
func LoadFrom(dir string, process map[string]string) (Config, error) {
	name := process["ENVIRONMENT"]
	if name == "" {
		name = DefaultEnvironment
	}
	if !known(name) {
		return Config{}, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownEnvironment, name, strings.Join(Environments, ", "))
	}

	merged := map[string]string{}
	path := filepath.Join(dir, ".env."+name)
	fileVars, err := godotenv.Read(path)
	switch {
	case err == nil:
		for k, v := range fileVars {
			merged[k] = v
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}
	for k, v := range process {
		merged[k] = v
	}
	merged["ENVIRONMENT"] = name

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: merged}); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the struct tags cannot.
func (c Config) Validate() error {
	if !known(c.Environment) {
		return fmt.Errorf("%w: %q", ErrUnknownEnvironment, c.Environment)
	}
	if c.Database.Readers < 0 {
		return fmt.Errorf("RDS_READERS must not be negative, got %d", c.Database.Readers)
	}
	if c.Database.RotationDays <= 0 {
		return fmt.Errorf("RDS_ROTATION_DAYS must be positive, got %d", c.Database.RotationDays)
	}
	if c.Service.ContainerPort <= 0 || c.Service.ContainerPort > 65535 {
		return fmt.Errorf("ECS_FARGATE_CONTAINER_PORT out of range: %d", c.Service.ContainerPort)
	}
	return nil
}

// IsProd reports whether this is the production environment.
func (c Config) IsProd() bool {
	return c.Environment == "prod"
}

// AddonVars returns the variables substituted into the EKS addon files.
func (c Config) AddonVars() map[string]string {
	return map[string]string{
		"EKS_CLUSTER_NAME":   c.Cluster.Name,
		"KARPENTER_ROLE_ARN": c.Cluster.KarpenterRoleArn,
		"ARGOCD_DOMAIN":      c.Cluster.ArgoCDDomain,
		"ENVIRONMENT":        c.Environment,
		"GITHUB_TOKEN":       c.Cluster.GithubToken,
		"GITHUB_EMAIL":       c.Cluster.GithubEmail,
	}
}

func known(name string) bool {
	return slices.Contains(Environments, name)
}

func environ() map[string]string {
	out := map[string]string{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			out[k] = v
		}
	}
	return out
}

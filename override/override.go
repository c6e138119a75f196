// Package override applies typed property overrides to low-level
// CloudFormation resources.
//
// Overrides are the escape hatch for wiring the higher-level constructs do
// not expose yet. A Path is a sequence of typed segments, so a misspelled
// index or an empty key is caught before synthesis:
//
//	override.Apply(cfnDistribution, override.KnownProperties,
//	    override.Override{
//	        Path:  override.Path{override.Key("DistributionConfig"), override.Key("Origins"), override.Index(0), override.Key("OriginAccessControlId")},
//	        Value: oac.AttrId(),
//	    },
//	)
package override

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
)

var (
	// ErrEmptyPath is returned for an override with no segments.
	ErrEmptyPath = errors.New("override path is empty")
	// ErrInvalidSegment is returned for an empty key, a negative index, or a
	// path that starts with an index.
	ErrInvalidSegment = errors.New("invalid override path segment")
	// ErrUnknownProperty is returned when the top-level property is not part
	// of the resource type's known schema.
	ErrUnknownProperty = errors.New("unknown property for resource type")
)

// Segment is one step of a property path: a map key or a list index.
type Segment interface {
	segment() string
	validate() error
}

// Key selects a property or map entry.
type Key string

func (k Key) segment() string {
	// The engine splits override paths on dots; a literal dot is escaped.
	return strings.ReplaceAll(string(k), ".", `\.`)
}

func (k Key) validate() error {
	if k == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidSegment)
	}
	return nil
}

// Index selects a list element.
type Index int

func (i Index) segment() string {
	return strconv.Itoa(int(i))
}

func (i Index) validate() error {
	if i < 0 {
		return fmt.Errorf("%w: negative index %d", ErrInvalidSegment, int(i))
	}
	return nil
}

// Path is a structured property path below a resource's Properties.
type Path []Segment

// ParsePath builds a Path from dotted notation, treating all-digit parts as
// indexes. It exists for reading paths from configuration; code should build
// Paths from segments directly.
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}
	var p Path
	for _, part := range strings.Split(s, ".") {
		if n, err := strconv.Atoi(part); err == nil && part != "" && part[0] != '-' {
			p = append(p, Index(n))
			continue
		}
		p = append(p, Key(part))
	}
	return p
}

// Validate checks the structural rules every path must satisfy.
func (p Path) Validate() error {
	if len(p) == 0 {
		return ErrEmptyPath
	}
	if _, ok := p[0].(Key); !ok {
		return fmt.Errorf("%w: path must start with a property name", ErrInvalidSegment)
	}
	for _, seg := range p {
		if err := seg.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Root returns the top-level property name, or "" for an invalid path.
func (p Path) Root() string {
	if len(p) == 0 {
		return ""
	}
	if k, ok := p[0].(Key); ok {
		return string(k)
	}
	return ""
}

// String renders the path in the engine's dotted override syntax.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, seg := range p {
		parts[i] = seg.segment()
	}
	return strings.Join(parts, ".")
}

// Override sets Value at Path.
type Override struct {
	Path  Path
	Value any
}

// Schema maps a CloudFormation resource type to its top-level property names.
// Types absent from the schema are not checked beyond path structure.
type Schema map[string][]string

// KnownProperties covers the resource types this module overrides.
var KnownProperties = Schema{
	"AWS::CloudFront::Distribution": {"DistributionConfig", "Tags"},
	"AWS::EC2::SecurityGroup":       {"GroupDescription", "GroupName", "SecurityGroupEgress", "SecurityGroupIngress", "Tags", "VpcId"},
	"AWS::SQS::Queue":               {"ContentBasedDeduplication", "DelaySeconds", "FifoQueue", "KmsMasterKeyId", "MessageRetentionPeriod", "QueueName", "RedrivePolicy", "Tags", "VisibilityTimeout"},
}

// Check validates o against the resource type using schema.
func (s Schema) Check(resourceType string, o Override) error {
	if err := o.Path.Validate(); err != nil {
		return err
	}
	props, ok := s[resourceType]
	if !ok {
		return nil
	}
	root := o.Path.Root()
	for _, name := range props {
		if name == root {
			return nil
		}
	}
	return fmt.Errorf("%w: %s has no property %q", ErrUnknownProperty, resourceType, root)
}

// Target is the subset of awscdk.CfnResource an override needs.
type Target interface {
	CfnResourceType() *string
	AddPropertyOverride(propertyPath *string, value interface{})
}

var _ Target = awscdk.CfnResource(nil)

// Apply validates every override first and then applies them in order, so an
// invalid entry leaves the resource untouched.
func Apply(res Target, schema Schema, overrides ...Override) error {
	resourceType := ""
	if t := res.CfnResourceType(); t != nil {
		resourceType = *t
	}
	for i, o := range overrides {
		if err := schema.Check(resourceType, o); err != nil {
			return fmt.Errorf("override %d (%s): %w", i, o.Path, err)
		}
	}
	for _, o := range overrides {
		res.AddPropertyOverride(jsii.String(o.Path.String()), o.Value)
	}
	return nil
}

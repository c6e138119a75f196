package blocks

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Template represents a synthesized CloudFormation template.
type Template struct {
	AWSTemplateFormatVersion string                 `json:"AWSTemplateFormatVersion,omitempty" yaml:"AWSTemplateFormatVersion,omitempty"`
	Description              string                 `json:"Description,omitempty" yaml:"Description,omitempty"`
	Parameters               map[string]Parameter   `json:"Parameters,omitempty" yaml:"Parameters,omitempty"`
	Resources                map[string]ResourceDef `json:"Resources" yaml:"Resources"`
	Outputs                  map[string]Output      `json:"Outputs,omitempty" yaml:"Outputs,omitempty"`
}

// ResourceDef is a single resource in a CloudFormation template.
type ResourceDef struct {
	Type                string         `json:"Type" yaml:"Type"`
	Properties          map[string]any `json:"Properties,omitempty" yaml:"Properties,omitempty"`
	DependsOn           StringList     `json:"DependsOn,omitempty" yaml:"DependsOn,omitempty"`
	DeletionPolicy      string         `json:"DeletionPolicy,omitempty" yaml:"DeletionPolicy,omitempty"`
	UpdateReplacePolicy string         `json:"UpdateReplacePolicy,omitempty" yaml:"UpdateReplacePolicy,omitempty"`
}

// Parameter is a CloudFormation template parameter.
type Parameter struct {
	Type          string   `json:"Type" yaml:"Type"`
	Description   string   `json:"Description,omitempty" yaml:"Description,omitempty"`
	Default       any      `json:"Default,omitempty" yaml:"Default,omitempty"`
	AllowedValues []string `json:"AllowedValues,omitempty" yaml:"AllowedValues,omitempty"`
}

// Output is a CloudFormation template output.
type Output struct {
	Description string `json:"Description,omitempty" yaml:"Description,omitempty"`
	Value       any    `json:"Value" yaml:"Value"`
	Export      *struct {
		Name any `json:"Name" yaml:"Name"`
	} `json:"Export,omitempty" yaml:"Export,omitempty"`
}

// SynthResult is the JSON output from `cdk-blocks synth`.
type SynthResult struct {
	Success  bool          `json:"success"`
	Outdir   string        `json:"outdir,omitempty"`
	Stacks   []StackResult `json:"stacks,omitempty"`
	Skipped  []string      `json:"skipped,omitempty"`
	Errors   []string      `json:"errors,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

// StackResult describes one synthesized stack.
type StackResult struct {
	Name         string   `json:"name"`
	TemplateFile string   `json:"template_file"`
	Resources    int      `json:"resources"`
	DependsOn    []string `json:"depends_on,omitempty"`
}

// ListResult is the JSON output from `cdk-blocks list`.
type ListResult struct {
	Stacks []ListStack `json:"stacks"`
}

// ListStack is a single stack in the list output, in deployment order.
type ListStack struct {
	Name      string         `json:"name"`
	DependsOn []string       `json:"depends_on,omitempty"`
	Resources []ListResource `json:"resources"`
}

// ListResource is a single resource in the list output.
type ListResource struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ValidateResult is the JSON output from `cdk-blocks validate`.
type ValidateResult struct {
	Success   bool     `json:"success"`
	Stacks    int      `json:"stacks"`
	Resources int      `json:"resources"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// LintResult is the JSON output from `cdk-blocks lint`.
type LintResult struct {
	Success bool        `json:"success"`
	Issues  []LintIssue `json:"issues,omitempty"`
}

// LintIssue is a single audit finding against a synthesized template.
type LintIssue struct {
	Stack    string `json:"stack"`
	Resource string `json:"resource"`
	Severity string `json:"severity"` // "error", "warning", "info"
	Message  string `json:"message"`
	Rule     string `json:"rule"`
}

// DiffEntry is a single resource difference.
type DiffEntry struct {
	Stack    string   `json:"stack,omitempty"`
	Resource string   `json:"resource"`
	Type     string   `json:"type"`
	Changes  []string `json:"changes,omitempty"`
}

// TemplateDiff groups resource differences by kind.
type TemplateDiff struct {
	Added    []DiffEntry `json:"added,omitempty"`
	Removed  []DiffEntry `json:"removed,omitempty"`
	Modified []DiffEntry `json:"modified,omitempty"`
}

// DiffSummary counts differences.
type DiffSummary struct {
	Total    int `json:"total"`
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Modified int `json:"modified"`
}

// DiffResult is the JSON output from `cdk-blocks diff`.
type DiffResult struct {
	Diff    TemplateDiff `json:"diff"`
	Summary DiffSummary  `json:"summary"`
}

// StringList accepts either a single string or a list of strings, the two
// shapes CloudFormation allows for DependsOn.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = StringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*s = StringList{node.Value}
		return nil
	}
	var many []string
	if err := node.Decode(&many); err != nil {
		return err
	}
	*s = many
	return nil
}

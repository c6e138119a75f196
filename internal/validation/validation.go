// Package validation checks a synthesized cloud assembly.
//
// Two checks run over the assembly:
//   - cfn-lint-go: Validate every CloudFormation template (library dependency)
//   - stack DAG: The stack dependencies must be acyclic
package validation

import (
	"fmt"
	"os"
	"strings"

	"github.com/lex00/cfn-lint-go/pkg/lint"

	blocks "github.com/lex00/cdk-blocks-go"
	"github.com/lex00/cdk-blocks-go/internal/assembly"
)

// Finding is one cfn-lint match located in a stack of the assembly.
type Finding struct {
	Stack    string `json:"stack"`
	Resource string `json:"resource,omitempty"`
	Rule     string `json:"rule"`
	Level    string `json:"level"`
	Message  string `json:"message"`
	// Path is the dotted location below the resource, or below the template
	// root for matches outside Resources.
	Path string `json:"path,omitempty"`
}

func (f Finding) String() string {
	where := f.Stack
	if f.Resource != "" {
		where += "/" + f.Resource
	}
	if f.Path != "" {
		return fmt.Sprintf("%s: %s %s (at %s)", where, f.Rule, f.Message, f.Path)
	}
	return fmt.Sprintf("%s: %s %s", where, f.Rule, f.Message)
}

func newFinding(stack string, m lint.Match) Finding {
	f := Finding{Stack: stack, Rule: m.Rule.ID, Level: string(m.Level), Message: m.Message}

	path := make([]string, 0, len(m.Location.Path))
	for _, p := range m.Location.Path {
		path = append(path, fmt.Sprint(p))
	}
	if len(path) >= 2 && path[0] == "Resources" {
		f.Resource = path[1]
		path = path[2:]
	}
	f.Path = strings.Join(path, ".")
	return f
}

// LintStack runs cfn-lint-go over the template of one stack.
func LintStack(asm *assembly.Assembly, name string) ([]Finding, error) {
	path, err := asm.TemplatePath(name)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stack %s: %w", name, err)
	}

	matches, err := lint.New(lint.Options{}).LintFile(path)
	if err != nil {
		return nil, fmt.Errorf("running cfn-lint on %s: %w", name, err)
	}
	findings := make([]Finding, 0, len(matches))
	for _, m := range matches {
		findings = append(findings, newFinding(name, m))
	}
	return findings, nil
}

// CheckDependencies reports stack dependency cycles. Dependencies on
// artifacts other than stacks are already dropped by assembly.Load.
func CheckDependencies(asm *assembly.Assembly) []string {
	if _, err := asm.Order(); err != nil {
		return []string{fmt.Sprintf("stack dependencies: %v", err)}
	}
	return nil
}

// ValidateAssembly runs the dependency check and cfn-lint over every stack.
// Problems are reported in the result; the error is reserved for templates
// that cannot be read at all.
func ValidateAssembly(asm *assembly.Assembly) (*blocks.ValidateResult, error) {
	result := &blocks.ValidateResult{Stacks: len(asm.Stacks)}
	result.Errors = append(result.Errors, CheckDependencies(asm)...)

	for _, name := range asm.Names() {
		tmpl, err := asm.Template(name)
		if err != nil {
			return nil, fmt.Errorf("stack %s: %w", name, err)
		}
		result.Resources += len(tmpl.Resources)

		findings, err := LintStack(asm, name)
		if err != nil {
			return nil, err
		}
		for _, f := range findings {
			switch f.Level {
			case "Error":
				result.Errors = append(result.Errors, f.String())
			case "Warning":
				result.Warnings = append(result.Warnings, f.String())
			}
		}
	}

	result.Success = len(result.Errors) == 0
	return result, nil
}

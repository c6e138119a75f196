package lint

import (
	"fmt"
	"sort"

	cfn "github.com/lex00/cloudformation-schema-go/template"

	blocks "github.com/lex00/cdk-blocks-go"
	"github.com/lex00/cdk-blocks-go/internal/assembly"
)

// Issue is a single finding.
type Issue = blocks.LintIssue

// Severity levels reported in Issue.Severity.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Rule checks one template.
type Rule interface {
	ID() string
	Description() string
	Check(stack string, t *cfn.Template) []Issue
}

// Result contains the outcome of linting.
type Result struct {
	Success bool
	Issues  []Issue
}

// Options configures the linter.
type Options struct {
	// Rules to enable. If empty, all rules are enabled.
	EnabledRules []string
	// Rules to skip, applied after EnabledRules.
	DisabledRules []string
}

// LintTemplate lints a single template file as stack.
func LintTemplate(stack, path string, opts Options) (Result, error) {
	t, err := cfn.ParseTemplate(path)
	if err != nil {
		return Result{}, err
	}

	var issues []Issue
	for _, rule := range getRules(opts) {
		issues = append(issues, rule.Check(stack, t)...)
	}
	sortIssues(issues)

	return Result{
		Success: !hasErrors(issues),
		Issues:  issues,
	}, nil
}

// LintAssembly lints every stack of a cloud assembly.
func LintAssembly(asm *assembly.Assembly, opts Options) (Result, error) {
	var allIssues []Issue
	for _, name := range asm.Names() {
		path, err := asm.TemplatePath(name)
		if err != nil {
			return Result{}, err
		}
		result, err := LintTemplate(name, path, opts)
		if err != nil {
			return Result{}, fmt.Errorf("stack %s: %w", name, err)
		}
		allIssues = append(allIssues, result.Issues...)
	}
	sortIssues(allIssues)

	return Result{
		Success: !hasErrors(allIssues),
		Issues:  allIssues,
	}, nil
}

// hasErrors reports whether any issue is an error. Warnings and info do not
// fail a lint run.
func hasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Stack != b.Stack {
			return a.Stack < b.Stack
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		return a.Resource < b.Resource
	})
}

// getRules returns the rules to use based on options.
func getRules(opts Options) []Rule {
	all := AllRules()

	disabled := make(map[string]bool)
	for _, id := range opts.DisabledRules {
		disabled[id] = true
	}

	enabled := make(map[string]bool)
	for _, id := range opts.EnabledRules {
		enabled[id] = true
	}

	var filtered []Rule
	for _, r := range all {
		if len(enabled) > 0 && !enabled[r.ID()] {
			continue
		}
		if disabled[r.ID()] {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

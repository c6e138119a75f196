package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	blocks "github.com/lex00/cdk-blocks-go"
	"github.com/lex00/cdk-blocks-go/internal/assembly"
	"github.com/lex00/cdk-blocks-go/internal/lint"
)

func newLintCmd() *cobra.Command {
	var (
		outputFormat string
		enable       []string
		disable      []string
	)

	cmd := &cobra.Command{
		Use:   "lint [assembly]",
		Short: "Audit synthesized templates",
		Long: `Lint audits the templates of a synthesized cloud assembly.

Rules:
    BLK001: Databases should enable deletion protection
    BLK002: Security groups must not allow all traffic from anywhere
    BLK003: ECR repositories should use immutable tags
    BLK004: WebACL rule priorities must be unique
    BLK005: DynamoDB tables should enable point-in-time recovery
    BLK006: Generated secrets should have a rotation schedule
    BLK007: Queues should have a redrive policy unless they are a dead-letter queue

Exit status is 2 when an error-level issue is found.

Examples:
    cdk-blocks lint
    cdk-blocks lint --disable BLK005
    cdk-blocks lint prod.out -f json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(outputFormat, "text", "json"); err != nil {
				return err
			}
			result, err := runLint(assemblyDir(args), lint.Options{EnabledRules: enable, DisabledRules: disable})
			if err != nil {
				return err
			}
			if err := outputLintResult(cmd.OutOrStdout(), result, outputFormat); err != nil {
				return err
			}
			if !result.Success {
				return exitError{code: 2}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringSliceVar(&enable, "enable", nil, "Only run these rules")
	cmd.Flags().StringSliceVar(&disable, "disable", nil, "Skip these rules")

	return cmd
}

func runLint(dir string, opts lint.Options) (blocks.LintResult, error) {
	asm, err := assembly.Load(dir)
	if err != nil {
		return blocks.LintResult{}, err
	}
	result, err := lint.LintAssembly(asm, opts)
	if err != nil {
		return blocks.LintResult{}, fmt.Errorf("lint failed: %w", err)
	}
	return blocks.LintResult{Success: result.Success, Issues: result.Issues}, nil
}

func outputLintResult(w io.Writer, result blocks.LintResult, format string) error {
	if format == "json" {
		return writeJSON(w, result)
	}

	if len(result.Issues) == 0 {
		fmt.Fprintln(w, "No issues found.")
		return nil
	}
	for _, issue := range result.Issues {
		fmt.Fprintf(w, "%s/%s: %s: %s [%s]\n",
			issue.Stack, issue.Resource, issue.Severity, issue.Message, issue.Rule)
	}
	return nil
}

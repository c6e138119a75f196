package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	blocks "github.com/lex00/cdk-blocks-go"
	"github.com/lex00/cdk-blocks-go/internal/assembly"
	"github.com/lex00/cdk-blocks-go/internal/validation"
)

// newValidateCmd creates the "validate" subcommand for checking a synthesized assembly.
func newValidateCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "validate [assembly]",
		Short: "Validate synthesized templates",
		Long: `Validate checks a synthesized cloud assembly.

Checks performed:
  - cfn-lint: Every template is checked against the CloudFormation schema
  - Stack graph: Stack dependencies name known stacks and form no cycle

Examples:
    cdk-blocks validate
    cdk-blocks validate prod.out --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(outputFormat, "text", "json"); err != nil {
				return err
			}
			asm, err := assembly.Load(assemblyDir(args))
			if err != nil {
				return err
			}
			result, err := validation.ValidateAssembly(asm)
			if err != nil {
				return err
			}
			if err := outputValidateResult(cmd.OutOrStdout(), *result, outputFormat); err != nil {
				return err
			}
			if !result.Success {
				return exitError{code: 1}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func outputValidateResult(w io.Writer, result blocks.ValidateResult, format string) error {
	if format == "json" {
		return writeJSON(w, result)
	}

	if result.Success {
		fmt.Fprintf(w, "Validation passed: %d stacks, %d resources OK\n", result.Stacks, result.Resources)
	} else {
		fmt.Fprintln(w, "Validation FAILED:")
		for _, errMsg := range result.Errors {
			fmt.Fprintf(w, "  - %s\n", errMsg)
		}
	}
	if len(result.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}
	return nil
}

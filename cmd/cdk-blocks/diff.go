package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	blocks "github.com/lex00/cdk-blocks-go"
	"github.com/lex00/cdk-blocks-go/internal/differ"
)

func newDiffCmd() *cobra.Command {
	var (
		outputFormat string
		ignoreOrder  bool
	)

	cmd := &cobra.Command{
		Use:   "diff <a> <b>",
		Short: "Compare two templates or cloud assemblies",
		Long: `Diff compares two CloudFormation templates, or two cloud assembly
directories stack by stack, and reports added, removed and modified resources.

Exit status is 2 when differences are found.

Examples:
    cdk-blocks diff old.out cdk.out
    cdk-blocks diff a.template.json b.template.json --ignore-order
    cdk-blocks diff old.out cdk.out -f json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(outputFormat, "text", "json"); err != nil {
				return err
			}
			result, err := differ.ComparePaths(args[0], args[1], differ.Options{IgnoreOrder: ignoreOrder})
			if err != nil {
				return err
			}
			if err := outputDiffResult(cmd.OutOrStdout(), result, outputFormat); err != nil {
				return err
			}
			if !result.Empty() {
				return exitError{code: 2}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&ignoreOrder, "ignore-order", false, "Ignore list element order")

	return cmd
}

func outputDiffResult(w io.Writer, result *differ.Result, format string) error {
	if format == "json" {
		return writeJSON(w, blocks.DiffResult{Diff: result.Diff, Summary: result.Summary})
	}

	if result.Empty() {
		fmt.Fprintln(w, "No differences.")
		return nil
	}

	label := func(e blocks.DiffEntry) string {
		if e.Stack != "" {
			return e.Stack + "/" + e.Resource
		}
		return e.Resource
	}
	for _, e := range result.Diff.Added {
		fmt.Fprintf(w, "+ %s (%s)\n", label(e), e.Type)
	}
	for _, e := range result.Diff.Removed {
		fmt.Fprintf(w, "- %s (%s)\n", label(e), e.Type)
	}
	for _, e := range result.Diff.Modified {
		fmt.Fprintf(w, "~ %s (%s)\n", label(e), e.Type)
		for _, c := range e.Changes {
			fmt.Fprintf(w, "    %s\n", c)
		}
	}
	fmt.Fprintf(w, "\n%d added, %d removed, %d modified\n",
		result.Summary.Added, result.Summary.Removed, result.Summary.Modified)
	return nil
}

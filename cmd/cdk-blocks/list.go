package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	blocks "github.com/lex00/cdk-blocks-go"
	"github.com/lex00/cdk-blocks-go/internal/assembly"
	"github.com/lex00/cdk-blocks-go/internal/template"
)

func newListCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "list [assembly]",
		Short: "List stacks in deployment order",
		Long: `List reads a synthesized cloud assembly and prints its stacks in
deployment order with the resources of each.

Examples:
    cdk-blocks list
    cdk-blocks list prod.out --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.OutOrStdout(), assemblyDir(args), outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func runList(w io.Writer, dir, format string) error {
	if err := checkFormat(format, "text", "json"); err != nil {
		return err
	}
	asm, err := assembly.Load(dir)
	if err != nil {
		return err
	}
	ordered, err := asm.Order()
	if err != nil {
		return err
	}

	listResult := blocks.ListResult{Stacks: make([]blocks.ListStack, 0, len(ordered))}
	for _, s := range ordered {
		tmpl, err := asm.Template(s.Name)
		if err != nil {
			return err
		}
		stack := blocks.ListStack{
			Name:      s.Name,
			DependsOn: s.DependsOn,
			Resources: make([]blocks.ListResource, 0, len(tmpl.Resources)),
		}
		for _, name := range template.ResourceNames(tmpl) {
			stack.Resources = append(stack.Resources, blocks.ListResource{
				Name: name,
				Type: tmpl.Resources[name].Type,
			})
		}
		listResult.Stacks = append(listResult.Stacks, stack)
	}

	return outputListResult(w, listResult, format)
}

func outputListResult(w io.Writer, result blocks.ListResult, format string) error {
	if format == "json" {
		return writeJSON(w, result)
	}

	if len(result.Stacks) == 0 {
		fmt.Fprintln(w, "No stacks found.")
		return nil
	}

	for i, s := range result.Stacks {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d resources)", s.Name, len(s.Resources))
		if len(s.DependsOn) > 0 {
			fmt.Fprintf(w, " depends on %v", s.DependsOn)
		}
		fmt.Fprintln(w)
		for _, res := range s.Resources {
			fmt.Fprintf(w, "  %s: %s\n", res.Name, res.Type)
		}
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lex00/cdk-blocks-go/internal/assembly"
	"github.com/lex00/cdk-blocks-go/internal/graph"
)

func newGraphCmd() *cobra.Command {
	var (
		outputFormat string
		cluster      bool
		stacksOnly   bool
	)

	cmd := &cobra.Command{
		Use:   "graph [assembly]",
		Short: "Generate a graph of stack and resource dependencies",
		Long: `Generate a DOT or Mermaid graph of a synthesized cloud assembly.

Resource edges come from Ref, Fn::GetAtt (blue) and Fn::Sub references and
from DependsOn (dotted). Stack dependencies are dashed.

The output can be rendered with Graphviz:
    cdk-blocks graph | dot -Tpng -o deps.png

Or used in GitHub markdown (Mermaid format):
    cdk-blocks graph -f mermaid

Examples:
    cdk-blocks graph
    cdk-blocks graph -c                  # cluster by stack
    cdk-blocks graph --stacks-only       # stacks and their dependencies`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var graphFormat graph.Format
			switch outputFormat {
			case "dot":
				graphFormat = graph.FormatDOT
			case "mermaid":
				graphFormat = graph.FormatMermaid
			default:
				return fmt.Errorf("unknown format: %s (use 'dot' or 'mermaid')", outputFormat)
			}

			asm, err := assembly.Load(assemblyDir(args))
			if err != nil {
				return err
			}

			gen := &graph.Generator{
				Format:         graphFormat,
				ClusterByStack: cluster,
				StacksOnly:     stacksOnly,
			}
			return gen.Generate(asm, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "dot", "Output format: dot or mermaid")
	cmd.Flags().BoolVarP(&cluster, "cluster", "c", false, "Cluster resources by stack")
	cmd.Flags().BoolVar(&stacksOnly, "stacks-only", false, "Draw stacks only")

	return cmd
}

// Command cdk-blocks synthesizes the infrastructure application and inspects
// the resulting cloud assembly.
//
// Usage:
//
//	cdk-blocks synth                 Synthesize every stack into cdk.out
//	cdk-blocks list                  List stacks in deployment order
//	cdk-blocks graph -f mermaid      Render the dependency graph
//	cdk-blocks diff old.out cdk.out  Compare two assemblies
//	cdk-blocks validate              Run cfn-lint over every template
//	cdk-blocks lint                  Audit templates for risky settings
//	cdk-blocks watch                 Re-synthesize on configuration changes
//	cdk-blocks version               Show version
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/jsii-runtime-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lex00/cdk-blocks-go/internal/app"
)

// DefaultAssembly is where synth writes and the other commands read.
const DefaultAssembly = "cdk.out"

// exitError carries a process exit code without an extra message; the
// command has already reported the failure.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	os.Exit(run())
}

func run() int {
	defer jsii.Close()

	if err := newRootCmd().Execute(); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			return exit.code
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cdk-blocks",
		Short: "Synthesize and inspect the CDK infrastructure application",
		Long: `cdk-blocks builds every stack of the infrastructure application from
.env.<ENVIRONMENT> configuration and synthesizes a cloud assembly.

The cdk CLI drives synthesis through cdk.json:

    {"app": "go run ./cmd/cdk-blocks synth"}

The other commands read the synthesized assembly and never call AWS:

    cdk-blocks list
    cdk-blocks lint`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := loggerFromFlags(cmd)
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(log)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = zap.L().Sync()
		},
	}

	rootCmd.PersistentFlags().String("log-level", "info", "Log level: "+strings.Join(app.Levels, ", "))
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(
		newSynthCmd(),
		newListCmd(),
		newGraphCmd(),
		newDiffCmd(),
		newValidateCmd(),
		newLintCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// loggerFromFlags builds the zap logger selected by the persistent flags.
func loggerFromFlags(cmd *cobra.Command) (*zap.Logger, error) {
	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}
	format, err := cmd.Flags().GetString("log-format")
	if err != nil {
		return nil, err
	}
	return app.NewLogger(level, format)
}

// assemblyDir returns the optional positional assembly argument.
func assemblyDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return DefaultAssembly
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionLine())
		},
	}
}

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	blocks "github.com/lex00/cdk-blocks-go"
	"github.com/lex00/cdk-blocks-go/internal/app"
	"github.com/lex00/cdk-blocks-go/internal/assembly"
	"github.com/lex00/cdk-blocks-go/internal/config"
	"github.com/lex00/cdk-blocks-go/internal/template"
)

type synthOptions struct {
	outdir       string
	outputFormat string
	envDir       string
}

func newSynthCmd() *cobra.Command {
	var opts synthOptions

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Synthesize every stack into a cloud assembly",
		Long: `Synth loads .env.<ENVIRONMENT> from --env-dir, merges the process
environment over it, builds every stack and writes the cloud assembly.

ENVIRONMENT selects the file and defaults to dev. The output directory
defaults to $CDK_OUTDIR when the cdk CLI runs the command, else cdk.out.

Examples:
    cdk-blocks synth
    ENVIRONMENT=prod cdk-blocks synth -o prod.out
    cdk-blocks synth -f json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSynth(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outdir, "output", "o", "", "Cloud assembly directory (default $CDK_OUTDIR or cdk.out)")
	cmd.Flags().StringVarP(&opts.outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringVar(&opts.envDir, "env-dir", ".", "Directory holding .env.<ENVIRONMENT> and cdk.context.json")

	return cmd
}

func runSynth(cmd *cobra.Command, opts synthOptions) error {
	if err := checkFormat(opts.outputFormat, "text", "json"); err != nil {
		return err
	}
	result := synthesize(opts, zap.L())
	if err := outputSynthResult(cmd.OutOrStdout(), result, opts.outputFormat); err != nil {
		return err
	}
	if !result.Success {
		return exitError{code: 1}
	}
	return nil
}

// synthesize runs config load, synthesis and assembly inspection, recording
// every failure in the result.
func synthesize(opts synthOptions, log *zap.Logger) blocks.SynthResult {
	fail := func(err error) blocks.SynthResult {
		log.Error("synth failed", zap.Error(err))
		return blocks.SynthResult{Success: false, Errors: []string{err.Error()}}
	}

	cfg, err := config.Load(opts.envDir)
	if err != nil {
		return fail(err)
	}
	context, err := app.LoadContext(filepath.Join(opts.envDir, app.ContextFile))
	if err != nil {
		return fail(err)
	}

	outdir := opts.outdir
	if outdir == "" && os.Getenv("CDK_OUTDIR") == "" {
		outdir = DefaultAssembly
	}

	log.Info("synthesizing", zap.String("environment", cfg.Environment), zap.String("outdir", outdir))
	out, err := app.Synth(cfg, outdir, context, log)
	if err != nil {
		return fail(err)
	}

	asm, err := assembly.Load(out.Directory)
	if err != nil {
		return fail(err)
	}
	ordered, err := asm.Order()
	if err != nil {
		return fail(err)
	}

	result := blocks.SynthResult{Success: true, Outdir: out.Directory, Skipped: out.Skipped}
	for _, s := range ordered {
		path, err := asm.TemplatePath(s.Name)
		if err != nil {
			return fail(err)
		}
		tmpl, err := template.Load(path)
		if err != nil {
			return fail(err)
		}
		result.Stacks = append(result.Stacks, blocks.StackResult{
			Name:         s.Name,
			TemplateFile: path,
			Resources:    len(tmpl.Resources),
			DependsOn:    s.DependsOn,
		})
	}
	return result
}

func outputSynthResult(w io.Writer, result blocks.SynthResult, format string) error {
	if format == "json" {
		return writeJSON(w, result)
	}

	if !result.Success {
		fmt.Fprintln(w, "Synthesis FAILED:")
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
		return nil
	}

	fmt.Fprintf(w, "Synthesized %d stacks to %s\n\n", len(result.Stacks), result.Outdir)
	for _, s := range result.Stacks {
		fmt.Fprintf(w, "  %s (%d resources)\n", s.Name, s.Resources)
	}
	if len(result.Skipped) > 0 {
		fmt.Fprintf(w, "\nSkipped: %v\n", result.Skipped)
	}
	return nil
}

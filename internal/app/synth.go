package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
	"go.uber.org/zap"

	"github.com/lex00/cdk-blocks-go/internal/config"
)

// ContextFile holds cached lookups such as availability zones and imported
// VPCs, as written by the cdk CLI.
const ContextFile = "cdk.context.json"

// SynthOutput describes a synthesized cloud assembly.
type SynthOutput struct {
	Directory string
	Stacks    []string
	Skipped   []string
}

// Synth builds the application from cfg and writes the cloud assembly to
// outdir. An empty outdir defers to CDK_OUTDIR, as set by the cdk CLI.
// Engine failures surface as panics from the jsii runtime and are returned
// as errors.
func Synth(cfg config.Config, outdir string, context map[string]any, log *zap.Logger) (out *SynthOutput, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("synthesis failed: %v", r)
		}
	}()

	props := &awscdk.AppProps{}
	if outdir != "" {
		props.Outdir = jsii.String(outdir)
	}
	if len(context) > 0 {
		props.Context = &context
	}
	app := awscdk.NewApp(props)

	built, err := Build(app, cfg, log)
	if err != nil {
		return nil, err
	}
	assembly := app.Synth(nil)

	return &SynthOutput{
		Directory: *assembly.Directory(),
		Stacks:    built.StackNames(),
		Skipped:   built.Skipped,
	}, nil
}

// LoadContext reads a cdk.context.json file. A missing file yields an empty
// context.
func LoadContext(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var ctx map[string]any
	if err := json.Unmarshal(data, &ctx); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if ctx == nil {
		ctx = map[string]any{}
	}
	return ctx, nil
}

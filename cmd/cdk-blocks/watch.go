package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lex00/cdk-blocks-go/internal/lint"
)

// newWatchCmd creates the "watch" subcommand for re-synthesizing on configuration changes.
func newWatchCmd() *cobra.Command {
	var (
		debounce  time.Duration
		envDir    string
		addonsDir string
		outdir    string
		noLint    bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-synthesize on configuration changes",
		Long: `Watch monitors .env.* files and the addon manifests and re-synthesizes
the cloud assembly when they change.

The watch command:
- Monitors --env-dir for .env.* changes
- Monitors --addons recursively for YAML and JSON changes
- Synthesizes, then lints the new assembly (unless --no-lint)
- Debounces rapid changes to avoid excessive rebuilds

Examples:
    cdk-blocks watch
    cdk-blocks watch --addons addons --debounce 1s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.OutOrStdout(), zap.L(), watchOptions{
				debounce:  debounce,
				envDir:    envDir,
				addonsDir: addonsDir,
				outdir:    outdir,
				lint:      !noLint,
			})
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Debounce duration for rapid changes")
	cmd.Flags().StringVar(&envDir, "env-dir", ".", "Directory holding .env.<ENVIRONMENT>")
	cmd.Flags().StringVar(&addonsDir, "addons", "addons", "Addon manifest directory")
	cmd.Flags().StringVarP(&outdir, "output", "o", DefaultAssembly, "Cloud assembly directory")
	cmd.Flags().BoolVar(&noLint, "no-lint", false, "Skip lint after synthesis")

	return cmd
}

type watchOptions struct {
	debounce  time.Duration
	envDir    string
	addonsDir string
	outdir    string
	lint      bool
}

// runWatch monitors configuration and addon files and re-synthesizes on changes.
func runWatch(w io.Writer, log *zap.Logger, opts watchOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	if err := watcher.Add(opts.envDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", opts.envDir, err)
	}
	fmt.Fprintf(w, "Watching: %s\n", opts.envDir)

	if info, err := os.Stat(opts.addonsDir); err == nil && info.IsDir() {
		if err := addDirRecursive(watcher, opts.addonsDir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", opts.addonsDir, err)
		}
		fmt.Fprintf(w, "Watching: %s\n", opts.addonsDir)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	fmt.Fprintln(w, "Running initial synth...")
	synthAndLint(w, log, opts)

	var debounceTimer *time.Timer
	rebuildChan := make(chan struct{}, 1)

	fmt.Fprintln(w, "\nWatching for changes... (Ctrl+C to stop)")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isWatchedFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(opts.debounce, func() {
				select {
				case rebuildChan <- struct{}{}:
				default:
				}
			})

		case <-rebuildChan:
			fmt.Fprintf(w, "\n[%s] Change detected, re-synthesizing...\n", time.Now().Format("15:04:05"))
			synthAndLint(w, log, opts)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))

		case <-sigChan:
			fmt.Fprintln(w, "\nStopping watch...")
			return nil
		}
	}
}

// isWatchedFile reports whether a change to name should trigger a rebuild.
func isWatchedFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".env") {
		return true
	}
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	switch filepath.Ext(base) {
	case ".yaml", ".yml", ".json":
		return base != "cdk.context.json"
	}
	return false
}

// addDirRecursive adds a directory and all subdirectories to the watcher.
func addDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(filepath.Base(path), ".") && path != dir {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}

// synthAndLint synthesizes and, when enabled, lints the new assembly.
func synthAndLint(w io.Writer, log *zap.Logger, opts watchOptions) {
	result := synthesize(synthOptions{outdir: opts.outdir, envDir: opts.envDir}, log)
	_ = outputSynthResult(w, result, "text")
	if !result.Success || !opts.lint {
		return
	}

	lintResult, err := runLint(result.Outdir, lint.Options{})
	if err != nil {
		log.Error("lint failed", zap.Error(err))
		return
	}
	_ = outputLintResult(w, lintResult, "text")
}

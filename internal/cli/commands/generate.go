package commands

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/cppbind/internal/cli/config"
	"github.com/conduit-lang/cppbind/internal/cli/ui"
	"github.com/conduit-lang/cppbind/internal/errors"
	"github.com/conduit-lang/cppbind/internal/watch"
	"github.com/conduit-lang/cppbind/internal/writer"
)

var (
	generateOutput     string
	generateStrict     bool
	generateJSON       bool
	generateNoCommands bool
	generatePerHeader  bool
	generateWatch      bool
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the binding described by cppbind.yml",
		Long: `Generate the Go binding of a C++ library.

The output directory is replaced as a whole once generation and the
configured post-generation commands have succeeded. A failed run leaves
the previous output in place.`,
		Example: `  cppbind generate
  cppbind generate --config bindings/qtcore.yml --strict
  cppbind generate --output build/gfx --no-commands
  cppbind generate --watch`,
		Args: cobra.NoArgs,
		RunE: runGenerate,
	}

	cmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output directory (overrides output_dir)")
	cmd.Flags().BoolVar(&generateStrict, "strict", false, "Treat every diagnostic as an error")
	cmd.Flags().BoolVar(&generateJSON, "json", false, "Print diagnostics as JSON")
	cmd.Flags().BoolVar(&generateNoCommands, "no-commands", false, "Skip post-generation commands")
	cmd.Flags().BoolVar(&generatePerHeader, "per-header", false, "Write one shim source per header")
	cmd.Flags().BoolVarP(&generateWatch, "watch", "w", false, "Regenerate when the config, model, manifest or a dependency export changes")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	cfg, opts, err := generateOnce(cmd, logger)
	// without a config there is nothing to watch
	if !generateWatch || cfg == nil {
		return err
	}
	if err != nil {
		ui.WriteError(cmd.ErrOrStderr(), err, noColor)
	}
	return watchAndGenerate(cmd, logger, cfg, opts)
}

// generateOnce loads the config and runs the writer. The config and
// options are returned whenever the config could be loaded.
func generateOnce(cmd *cobra.Command, logger *zap.Logger) (*config.Config, writer.Options, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, writer.Options{}, err
	}
	if generateStrict {
		cfg.Strict = true
	}
	if generatePerHeader {
		cfg.PerHeader = true
	}

	opts := cfg.WriterOptions(logger)
	if generateOutput != "" {
		opts.OutputDir = generateOutput
	}
	if generateNoCommands {
		opts.PostCommands = nil
	}

	if err := cfg.Validate(); err != nil {
		return cfg, opts, reportFailure(cmd, err)
	}

	result, err := writer.Run(cmd.Context(), opts)
	if err != nil {
		return cfg, opts, reportFailure(cmd, err)
	}

	if generateJSON {
		if err := writeJSON(cmd, result.Diagnostics); err != nil {
			return cfg, opts, err
		}
	} else {
		ui.WriteDiagnostics(cmd.ErrOrStderr(), result.Diagnostics, noColor)
	}

	summary := fmt.Sprintf("Generated %s into %s (%d files, %d shim functions)",
		opts.Name, result.OutputDir, result.Files, result.FfiFunctions)
	if result.CacheHit {
		summary += ", model from cache"
	}
	ui.WriteSuccess(cmd.OutOrStdout(), summary, noColor)
	return cfg, opts, nil
}

// watchAndGenerate regenerates on every change of the run's inputs until
// the command context is cancelled. Failed runs are reported and the
// watch goes on.
func watchAndGenerate(cmd *cobra.Command, logger *zap.Logger, cfg *config.Config, opts writer.Options) error {
	fw, err := watch.NewFileWatcher(watchedFiles(cfg, opts), watch.DefaultDelay, logger)
	if err != nil {
		return err
	}

	// runs share one output directory
	var mu sync.Mutex
	fmt.Fprintf(cmd.OutOrStdout(), "Watching %d files, press Ctrl+C to stop\n", len(fw.Files()))
	return fw.Run(cmd.Context(), func(files []string) {
		mu.Lock()
		defer mu.Unlock()
		for _, f := range files {
			fmt.Fprintf(cmd.OutOrStdout(), "Changed: %s\n", f)
		}
		if _, _, err := generateOnce(cmd, logger); err != nil {
			ui.WriteError(cmd.ErrOrStderr(), err, noColor)
		}
	})
}

// watchedFiles lists the files a generation run reads
func watchedFiles(cfg *config.Config, opts writer.Options) []string {
	files := []string{cfg.File(), opts.Input, opts.Manifest}
	for _, dep := range opts.Dependencies {
		files = append(files, filepath.Join(dep, writer.ExportFile))
	}
	return files
}

// reportFailure prints a generation error and returns a short error for
// the exit status
func reportFailure(cmd *cobra.Command, err error) error {
	list := asErrorList(err)
	if list == nil {
		return err
	}
	if generateJSON {
		if jsonErr := writeJSON(cmd, list); jsonErr != nil {
			return jsonErr
		}
	} else {
		ui.WriteDiagnostics(cmd.ErrOrStderr(), list, noColor)
	}
	errCount, _, _ := list.ErrorCount()
	return fmt.Errorf("generation failed with %d error(s)", errCount)
}

func asErrorList(err error) errors.ErrorList {
	switch e := err.(type) {
	case errors.ErrorList:
		return e
	case *errors.BindError:
		return errors.ErrorList{e}
	}
	return nil
}

func writeJSON(cmd *cobra.Command, list errors.ErrorList) error {
	if list == nil {
		list = errors.ErrorList{}
	}
	out, err := list.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to encode diagnostics: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/clinipath/dxscribe/pkg/config"
	"github.com/clinipath/dxscribe/pkg/pipeline"
	"github.com/clinipath/dxscribe/pkg/provider"
)

var (
	configDir string
	debugFlag bool
	logger    *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dxscribe",
		Short: "Clinical notes analysis pipeline",
		Long: `dxscribe runs multi-stage LLM analysis over unstructured clinical
	notes: findings extraction, triage, differential diagnosis, and report
	composition, with structured output recovery and schema validation at
	every stage.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "path to config directory (default ~/.dxscribe)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(versionsCmd())
	rootCmd.AddCommand(promptsCmd())
	rootCmd.AddCommand(validateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initLogger() error {
	cfg := zap.NewProductionConfig()
	if debugFlag {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	var err error
	logger, err = cfg.Build()
	return err
}

func analyzeCmd() *cobra.Command {
	var focus string
	var pipelineName string
	var auditDir string
	var jsonOut bool
	var useMock bool

	cmd := &cobra.Command{
		Use:   "analyze [notes-file]",
		Short: "Run the analysis pipeline over clinical notes",
		Long: `Reads unstructured clinical notes from a file (or stdin when the
	argument is "-") and runs the configured pipeline version. On failure the
	failing stage and its trace identifier are reported for support escalation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, err := readNotes(args[0])
			if err != nil {
				return err
			}
			if strings.TrimSpace(notes) == "" {
				return fmt.Errorf("notes are empty")
			}

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if pipelineName == "" {
				pipelineName = cfg.Pipeline
			}

			version, err := pipeline.Lookup(pipelineName)
			if err != nil {
				return err
			}
			version, err = version.WithPromptOverrides(cfg.PromptOverrides)
			if err != nil {
				return err
			}

			invoker, err := buildInvoker(cfg, useMock)
			if err != nil {
				return err
			}

			opts := []pipeline.Option{pipeline.WithLogger(logger)}
			if auditDir != "" {
				opts = append(opts, pipeline.WithAuditDir(auditDir))
			}
			runner, err := pipeline.NewRunner(invoker, version, opts...)
			if err != nil {
				return err
			}

			result, err := runner.Run(context.Background(), pipeline.Input{Notes: notes, Focus: focus})
			if err != nil {
				var stageErr *pipeline.StageError
				if errors.As(err, &stageErr) {
					fmt.Fprintf(os.Stderr, "analysis failed at stage %s", stageErr.Stage)
					if stageErr.TraceID != "" {
						fmt.Fprintf(os.Stderr, " (trace %s)", stageErr.TraceID)
					}
					fmt.Fprintln(os.Stderr)
				}
				return err
			}

			return printResult(cmd.OutOrStdout(), result, jsonOut)
		},
	}

	cmd.Flags().StringVar(&focus, "focus", "", "clinician's stated focus, e.g. the chief complaint")
	cmd.Flags().StringVar(&pipelineName, "pipeline", "", "pipeline version to run (default from config)")
	cmd.Flags().StringVar(&auditDir, "audit-dir", "", "write per-run audit records under this directory")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the full result as JSON")
	cmd.Flags().BoolVar(&useMock, "mock", false, "use the mock adapter instead of live providers")
	_ = cmd.MarkFlagRequired("focus")

	return cmd
}

func versionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "List available pipeline versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tSTAGES")
			for _, name := range pipeline.VersionNames() {
				version, err := pipeline.Lookup(name)
				if err != nil {
					return err
				}
				stages := make([]string, 0, len(version.Stages))
				for _, stage := range version.Stages {
					stages = append(stages, stage.Name)
				}
				fmt.Fprintf(w, "%s\t%s\n", name, strings.Join(stages, " -> "))
			}
			return w.Flush()
		},
	}
}

func promptsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompts",
		Short: "List the managed-prompt catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			catalog, err := config.LoadCatalog(cfg.ConfigDir)
			if err != nil {
				return err
			}

			ids := make([]string, 0, len(catalog))
			for id := range catalog {
				ids = append(ids, id)
			}
			sort.Strings(ids)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROMPT\tADAPTER\tMODEL")
			for _, id := range ids {
				spec := catalog[id]
				model := spec.Model
				if model == "" {
					model = "(adapter default)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", id, spec.Adapter, model)
			}
			return w.Flush()
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration, catalog, and pipeline definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			catalog, err := config.LoadCatalog(cfg.ConfigDir)
			if err != nil {
				return fmt.Errorf("prompt catalog: %w", err)
			}

			for _, name := range pipeline.VersionNames() {
				version, err := pipeline.Lookup(name)
				if err != nil {
					return err
				}
				version, err = version.WithPromptOverrides(cfg.PromptOverrides)
				if err != nil {
					return err
				}
				if err := version.Validate(); err != nil {
					return fmt.Errorf("pipeline %s: %w", name, err)
				}
				for _, stage := range version.Stages {
					if _, ok := catalog[stage.PromptID]; !ok {
						return fmt.Errorf("pipeline %s stage %s references prompt %s not in catalog", name, stage.Name, stage.PromptID)
					}
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "configuration OK")
			return nil
		},
	}
}

func loadConfig() (*config.Config, error) {
	if configDir != "" {
		return config.LoadFromDir(configDir)
	}
	return config.Load()
}

func buildInvoker(cfg *config.Config, useMock bool) (*provider.Invoker, error) {
	catalog, err := config.LoadCatalog(cfg.ConfigDir)
	if err != nil {
		return nil, err
	}

	adapters := make(map[string]provider.Adapter)
	adapters["mock"] = provider.NewMockAdapter()

	if useMock {
		// Repoint every prompt at the mock adapter for offline runs. The
		// canned response carries the union of every stage schema's
		// required fields so each stage validates.
		adapters["mock"] = provider.NewMockAdapterWithResponses(nil,
			`{"symptoms": ["sample symptom"], "urgency": "LOW", `+
				`"differential": [{"condition": "sample condition"}], `+
				`"summary": "Mock summary.", "report": "Mock report."}`)
		for id, spec := range catalog {
			spec.Adapter = "mock"
			spec.Model = ""
			catalog[id] = spec
		}
		return provider.NewInvoker(catalog, adapters, logger)
	}

	if cfg.HasAdapter("anthropic") {
		a, err := provider.NewAnthropicAdapter(cfg.AnthropicAPIKey)
		if err != nil {
			return nil, err
		}
		adapters[a.Name()] = a
	}
	if cfg.HasAdapter("openai") {
		a, err := provider.NewOpenAIAdapter(cfg.OpenAIAPIKey)
		if err != nil {
			return nil, err
		}
		adapters[a.Name()] = a
	}
	if cfg.HasAdapter("google") {
		a, err := provider.NewGoogleAdapter(cfg.GoogleAPIKey)
		if err != nil {
			return nil, err
		}
		adapters[a.Name()] = a
	}

	return provider.NewInvoker(catalog, adapters, logger)
}

func readNotes(arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func printResult(out io.Writer, result *pipeline.Result, jsonOut bool) error {
	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintf(out, "Pipeline %s completed in %s\n\n", result.Pipeline, result.Metadata.Elapsed)
	if result.Report != "" {
		fmt.Fprintln(out, result.Report)
		fmt.Fprintln(out)
	}
	if result.ReasoningTrace != "" {
		fmt.Fprintln(out, "Reasoning:")
		fmt.Fprintln(out, result.ReasoningTrace)
		fmt.Fprintln(out)
	}
	for _, name := range result.Metadata.StagesCompleted {
		fmt.Fprintf(out, "stage %s: trace %s (%s)\n",
			name, result.Metadata.TraceIDs[name], result.Metadata.StageDurations[name])
	}
	return nil
}

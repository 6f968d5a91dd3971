// Package cli implements signalctl, a command line client that runs
// evaluations in-process.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"FinSignal/internal/di"
	"FinSignal/internal/domain/models"
	"FinSignal/internal/usecase"
	"FinSignal/pkg/config"
)

type options struct {
	configPath string
	debug      bool
}

// NewRootCmd creates the signalctl root command.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "signalctl",
		Short:         "Evaluate financial health signals for listed stocks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "config/config.yaml", "configuration file path")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "log upstream calls")

	root.AddCommand(newEvaluateCmd(opts))
	root.AddCommand(newSearchCmd(opts))
	return root
}

func newEvaluateCmd(opts *options) *cobra.Command {
	var (
		presetFile string
		year       int
		asJSON     bool
		timeout    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "evaluate TICKER",
		Short: "Fetch, derive and classify the metrics of one ticker",
		Example: `  signalctl evaluate 005930
  signalctl evaluate AAPL --preset-file presets/value.yaml --year 2024`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tk, err := toolkit(opts)
			if err != nil {
				return err
			}
			preset, err := loadPreset(tk.Presets, presetFile)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			snap, err := tk.Aggregator.Evaluate(ctx, usecase.EvaluateParams{Ticker: args[0], Preset: preset, AsOfYear: year})
			if err != nil {
				return err
			}
			return printSnapshot(cmd.OutOrStdout(), snap, asJSON)
		},
	}
	cmd.Flags().StringVar(&presetFile, "preset-file", "", "YAML threshold preset (built-in preset when empty)")
	cmd.Flags().IntVar(&year, "year", 0, "as-of year (current year when 0)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw snapshot as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall deadline")
	return cmd
}

func newSearchCmd(opts *options) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "search KEYWORD",
		Short: "Search the ticker table by ticker or name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			r, err := di.ProvideTickerTable(cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderSearch(usecase.NewResolver(r).Search(args[0], page)))
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "result page")
	return cmd
}

func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.LoadWithEnv(opts.configPath)
	if err != nil {
		return nil, err
	}
	cfg.Log.Format = "console"
	cfg.Log.Output = "stderr"
	cfg.Log.Level = "warn"
	if opts.debug {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func toolkit(opts *options) (*di.Toolkit, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return di.InitializeToolkit(cfg)
}

// loadPreset reads and validates a preset file. An empty path selects the
// built-in preset.
func loadPreset(svc *usecase.PresetService, path string) (*models.ThresholdPreset, error) {
	if path == "" {
		p := models.SystemPreset()
		return &p, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset: %w", err)
	}
	var p models.ThresholdPreset
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse preset: %w", err)
	}
	if err := svc.Validate(p); err != nil {
		return nil, err
	}
	return &p, nil
}

func printSnapshot(w io.Writer, s *models.Snapshot, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	_, err := fmt.Fprint(w, renderSnapshot(s))
	return err
}

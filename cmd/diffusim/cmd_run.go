package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/talgya/mini-diffusion/internal/config"
	"github.com/talgya/mini-diffusion/internal/engine"
	"github.com/talgya/mini-diffusion/internal/entropy"
	"github.com/talgya/mini-diffusion/internal/logging"
	"github.com/talgya/mini-diffusion/internal/persistence"
	"github.com/talgya/mini-diffusion/internal/report"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build a network, run one simulation and print the report",
		Example: `  diffusim run
  diffusim run --entities 50 --bp 10 --mp 40 --steps 100 --items 20 --retention 5 --seed 7
  diffusim run --config experiment.yaml --export runs.db`,
		RunE: runSimulation,
	}

	flags := cmd.Flags()
	flags.String("config", "", "YAML file with simulation settings")
	flags.Int("entities", 0, "Number of entities")
	flags.Int("bp", 0, "Entities in the general-public group")
	flags.Int("mp", 0, "Entities in the minority-public group")
	flags.Float64("bp-threshold", 0, "Lower bound of general-public appreciation")
	flags.Float64("mp-threshold", 0, "Upper bound of minority-public appreciation")
	flags.Int("steps", 0, "Maximum number of simulation steps")
	flags.Int("items", 0, "Number of items to inject")
	flags.Int("retention", 0, "Steps a received item stays consultable")
	flags.Int64("seed", 0, "Random seed (0 picks one from the clock)")
	flags.String("log-level", "", "Log level: info, debug or trace")
	flags.String("log-file", "", "Also write JSON logs to this file")
	flags.String("export", "", "Export the run to this SQLite file")
	return cmd
}

// loadConfig layers explicitly set flags over the config file or defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	cfg := config.Default()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	ints := map[string]*int{
		"entities":  &cfg.Network.Entities,
		"bp":        &cfg.Network.BPCount,
		"mp":        &cfg.Network.MPCount,
		"steps":     &cfg.Simulation.MaxSteps,
		"items":     &cfg.Simulation.Items,
		"retention": &cfg.Simulation.ItemRetention,
	}
	for name, dst := range ints {
		if flags.Changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}
	if flags.Changed("bp-threshold") {
		cfg.Network.BPThreshold, _ = flags.GetFloat64("bp-threshold")
	}
	if flags.Changed("mp-threshold") {
		cfg.Network.MPThreshold, _ = flags.GetFloat64("mp-threshold")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-file") {
		cfg.Logging.File, _ = flags.GetString("log-file")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f, ok := out.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		pterm.DisableStyling()
	}

	logger, closeLog, err := buildLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("starting simulation",
		"seed", seed,
		"entities", cfg.Network.Entities,
		"steps", cfg.Simulation.MaxSteps,
		"items", cfg.Simulation.Items,
		"retention", cfg.Simulation.ItemRetention,
	)

	net, err := engine.New(cfg.Params(), entropy.NewSource(seed), logger)
	if err != nil {
		return err
	}
	net.OnStep = func(snap engine.Snapshot) {
		visible := 0
		for _, ids := range snap.Visible {
			visible += len(ids)
		}
		logger.Debug("step", "step", snap.Step, "visible", visible, "live", len(net.LiveItems()))
	}
	sim := cfg.Simulation
	if err := net.Run(sim.MaxSteps, sim.Items, sim.ItemRetention); err != nil {
		return err
	}
	diameter := net.Diameter()

	if err := report.Write(out, net, diameter); err != nil {
		return err
	}

	exportPath, _ := cmd.Flags().GetString("export")
	if exportPath == "" {
		return nil
	}
	db, err := persistence.Open(exportPath)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer db.Close()

	runID, err := db.SaveRun(persistence.RunParams{
		Seed:          seed,
		Network:       cfg.Params(),
		MaxSteps:      sim.MaxSteps,
		ItemCount:     sim.Items,
		ItemRetention: sim.ItemRetention,
	}, net, diameter)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Fprintf(out, "Exported run %s to %s\n", runID, exportPath)
	return nil
}

func buildLogger(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, func(), error) {
	if cfg.File == "" {
		logger := logging.NewLogger(cfg.Level, w)
		slog.SetDefault(logger)
		return logger, func() {}, nil
	}
	f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := logging.NewFanoutLogger(cfg.Level, w, f)
	slog.SetDefault(logger)
	return logger, func() { f.Close() }, nil
}

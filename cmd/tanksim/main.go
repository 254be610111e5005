package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/tanksim/internal/config"
	"github.com/san-kum/tanksim/internal/experiment"
	"github.com/san-kum/tanksim/internal/logger"
	"github.com/san-kum/tanksim/internal/report"
	"github.com/san-kum/tanksim/internal/sim"
)

var (
	configFile string
	preset     string
	logLevel   string

	chartHeight int
	chartWidth  int
	format      string
	outFile     string

	log *logger.Logger
)

// simFlags maps config keys to the flags that override them. Keys double as
// TANKSIM_* environment names with dots replaced by underscores.
var simFlags = []struct {
	key  string
	flag string
}{
	{"horizon", "horizon"},
	{"step_count", "steps"},
	{"coefficient", "coefficient"},
	{"density", "density"},
	{"area", "area"},
	{"valve.open_start", "open-start"},
	{"valve.open_end", "open-end"},
	{"valve.open_value", "open-value"},
	{"initial_level", "initial-level"},
	{"integrator", "integrator"},
	{"tolerance", "tolerance"},
}

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "tanksim",
		Short:        "valve-driven tank level simulator",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = logger.Get(resolveLogLevel(cmd))
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logger.InfoLevel, "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation and print a summary",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "run simulation and chart valve opening and level",
		Args:  cobra.NoArgs,
		RunE:  plotSimulation,
	}
	addSimFlags(plotCmd)
	plotCmd.Flags().IntVar(&chartHeight, "height", report.DefaultChartHeight, "chart height")
	plotCmd.Flags().IntVar(&chartWidth, "width", report.DefaultChartWidth, "chart width")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "run simulation and write the series to stdout",
		Args:  cobra.NoArgs,
		RunE:  exportSimulation,
	}
	addSimFlags(exportCmd)
	exportCmd.Flags().StringVar(&format, "format", report.FormatCSV, "output format (csv, json)")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the same configuration",
		RunE:  compareIntegrators,
	}
	addSimFlags(compareCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the resolved configuration as yaml",
		Args:  cobra.NoArgs,
		RunE:  showConfig,
	}
	addSimFlags(configCmd)
	configCmd.Flags().StringVar(&outFile, "out", "", "write to file instead of stdout")

	rootCmd.AddCommand(runCmd, plotCmd, exportCmd, compareCmd, presetsCmd, configCmd)
	return rootCmd
}

func addSimFlags(cmd *cobra.Command) {
	def := sim.DefaultConfig()
	fs := cmd.Flags()
	fs.Float64("horizon", def.Horizon, "simulated time span (s)")
	fs.Int("steps", def.StepCount, "number of integration steps")
	fs.Float64("coefficient", def.Coefficient, "valve flow coefficient")
	fs.Float64("density", def.Density, "liquid density")
	fs.Float64("area", def.Area, "tank cross-section area")
	fs.Int("open-start", def.ValveOpenStart, "first grid index with the valve open")
	fs.Int("open-end", def.ValveOpenEnd, "grid index where the valve closes (exclusive)")
	fs.Float64("open-value", def.ValveOpenValue, "valve opening while open (%)")
	fs.Float64("initial-level", def.InitialLevel, "level at t=0")
	fs.String("integrator", config.DefaultIntegrator, "integrator (euler, rk4, rk45)")
	fs.Float64("tolerance", 0, "rk45 error tolerance (0 for default)")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("TANKSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func resolveLogLevel(cmd *cobra.Command) string {
	v := newViper()
	v.SetDefault("log_level", logger.InfoLevel)
	_ = v.BindPFlag("log_level", cmd.Root().PersistentFlags().Lookup("log-level"))
	return v.GetString("log_level")
}

// resolveConfig layers defaults, preset, config file, TANKSIM_* environment
// and explicitly set flags, in increasing precedence.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadWith(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	v := newViper()
	v.SetDefault("horizon", cfg.Horizon)
	v.SetDefault("step_count", cfg.StepCount)
	v.SetDefault("coefficient", cfg.Coefficient)
	v.SetDefault("density", cfg.Density)
	v.SetDefault("area", cfg.Area)
	v.SetDefault("valve.open_start", cfg.Valve.OpenStart)
	v.SetDefault("valve.open_end", cfg.Valve.OpenEnd)
	v.SetDefault("valve.open_value", cfg.Valve.OpenValue)
	v.SetDefault("initial_level", cfg.InitialLevel)
	v.SetDefault("integrator", cfg.Integrator)
	v.SetDefault("tolerance", cfg.Tolerance)

	for _, b := range simFlags {
		if f := cmd.Flags().Lookup(b.flag); f != nil {
			if err := v.BindPFlag(b.key, f); err != nil {
				return nil, err
			}
		}
	}

	r := &valueReader{v: v}
	resolved := &config.Config{
		Horizon:     r.float("horizon"),
		StepCount:   r.int("step_count"),
		Coefficient: r.float("coefficient"),
		Density:     r.float("density"),
		Area:        r.float("area"),
		Valve: config.ValveConfig{
			OpenStart: r.int("valve.open_start"),
			OpenEnd:   r.int("valve.open_end"),
			OpenValue: r.float("valve.open_value"),
		},
		InitialLevel: r.float("initial_level"),
		Integrator:   v.GetString("integrator"),
		Tolerance:    r.float("tolerance"),
	}
	if r.err != nil {
		return nil, r.err
	}
	return resolved, nil
}

// valueReader converts merged viper values and keeps the first failure,
// so a malformed TANKSIM_* value is reported instead of read as zero.
type valueReader struct {
	v   *viper.Viper
	err error
}

func (r *valueReader) float(key string) float64 {
	f, err := cast.ToFloat64E(r.v.Get(key))
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return f
}

func (r *valueReader) int(key string) int {
	n, err := cast.ToIntE(r.v.Get(key))
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return n
}

func simulate(cmd *cobra.Command) (*sim.Result, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}

	exp := experiment.New(cfg.Experiment())
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return nil, err
	}
	exp.GetSimulator().AddObserver(logger.NewStepObserver(log))

	log.Infow("simulation started",
		"integrator", cfg.Integrator,
		"horizon", cfg.Horizon,
		"steps", cfg.StepCount,
	)

	result, err := exp.Run(cmd.Context())
	if err != nil {
		log.Errorw("simulation failed", "error", err)
		return nil, err
	}

	log.Infow("simulation finished", "run_id", result.ID, "final_level", result.FinalLevel())
	return result, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	result, err := simulate(cmd)
	if err != nil {
		return err
	}
	return report.Summary(cmd.OutOrStdout(), result)
}

func plotSimulation(cmd *cobra.Command, args []string) error {
	result, err := simulate(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := report.Summary(out, result); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return report.Charts(out, result, report.ChartOptions{Height: chartHeight, Width: chartWidth})
}

func exportSimulation(cmd *cobra.Command, args []string) error {
	result, err := simulate(cmd)
	if err != nil {
		return err
	}
	return report.Write(cmd.OutOrStdout(), format, result)
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	names := args
	if len(names) == 0 {
		names = registry.ListIntegrators()
	}

	log.Infow("comparing integrators", "integrators", names)
	entries := experiment.Compare(cmd.Context(), registry, cfg.Experiment(), names)
	for _, e := range entries {
		if e.Err != nil {
			log.Warnw("integrator failed", "integrator", e.Integrator, "error", e.Err)
		}
	}

	return report.Comparison(cmd.OutOrStdout(), entries)
}

func listPresets(cmd *cobra.Command, args []string) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"name", "steps", "open", "value", "initial", "integ"})

	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		table.Append([]string{
			name,
			fmt.Sprintf("%d", p.StepCount),
			fmt.Sprintf("[%d,%d)", p.Valve.OpenStart, p.Valve.OpenEnd),
			fmt.Sprintf("%.4g", p.Valve.OpenValue),
			fmt.Sprintf("%.4g", p.InitialLevel),
			p.Integrator,
		})
	}

	table.Render()
	return nil
}

func showConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Experiment().Validate(); err != nil {
		return err
	}

	if outFile != "" {
		if err := config.Save(outFile, cfg); err != nil {
			return err
		}
		log.Infow("config written", "path", outFile)
		return nil
	}
	return config.Encode(cmd.OutOrStdout(), cfg)
}

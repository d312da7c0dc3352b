package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/trajsim/internal/config"
	"github.com/san-kum/trajsim/internal/experiment"
	"github.com/san-kum/trajsim/internal/logging"
	"github.com/san-kum/trajsim/internal/storage"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logFormat  string

	dt          float64
	steps       int
	seed        int64
	integs      []string
	rk2Variant  string
	solverName  string
	maxIter     int
	modelFile   string
	params      map[string]string
	figurePath  string
	svgPath     string
	noStore     bool
	noASCII     bool
	play        bool
	exportOut   string
	showHeight  int
	showWidth   int
	deleteQuiet bool
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "trajsim",
		Short:         "trajectory rollouts with explicit and implicit integrators",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "run catalog directory (default from config: runs)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log encoding (console, json)")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "roll out a model with every configured integrator",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExperiment,
	}
	runCmd.Flags().StringVar(&preset, "preset", "", "start from a named preset of the model")
	runCmd.Flags().StringVar(&modelFile, "model-file", "", "load a multibody model from JSON or YAML")
	runCmd.Flags().StringToStringVar(&params, "param", nil, "model parameter override, e.g. length=2")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	runCmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "seed for the random initial state")
	runCmd.Flags().StringSliceVar(&integs, "integrators", nil, "integrators to compare (comma separated)")
	runCmd.Flags().StringVar(&rk2Variant, "rk2-variant", "", "RK2 tableau (midpoint, heun)")
	runCmd.Flags().StringVar(&solverName, "solver", "", "implicit solver (newton, fixed_point)")
	runCmd.Flags().IntVar(&maxIter, "max-iter", 0, "implicit solver iteration cap")
	runCmd.Flags().StringVar(&figurePath, "figure", "", "energy figure PNG path")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "also write the energy figure as SVG")
	runCmd.Flags().BoolVar(&noStore, "no-store", false, "do not catalog the runs")
	runCmd.Flags().BoolVar(&noASCII, "no-ascii", false, "do not chart energy in the terminal")
	runCmd.Flags().BoolVar(&play, "play", false, "replay the runs in the terminal afterwards")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list catalogued runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print a run and chart its energy",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().IntVar(&showHeight, "height", 12, "chart height")
	showCmd.Flags().IntVar(&showWidth, "width", 72, "chart width")

	playCmd := &cobra.Command{
		Use:   "play [run_id...]",
		Short: "replay catalogued runs in the terminal",
		Args:  cobra.MinimumNArgs(1),
		RunE:  playRuns,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output file (default stdout)")

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "remove a run and its files",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}
	deleteCmd.Flags().BoolVarP(&deleteQuiet, "quiet", "q", false, "do not print the removed run")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			models := config.PresetModels()
			if len(args) > 0 {
				models = args[:1]
			}
			for _, m := range models {
				names := config.ListPresets(m)
				if len(names) == 0 {
					fmt.Fprintf(out, "no presets for model: %s\n", m)
					continue
				}
				fmt.Fprintf(out, "%s: %s\n", m, strings.Join(names, ", "))
			}
			return nil
		},
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list built-in models and integrators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			reg := experiment.NewRegistry()
			fmt.Fprintln(out, "models:")
			for _, m := range reg.ListModels() {
				fmt.Fprintf(out, "  %s\n", m)
			}
			fmt.Fprintln(out, "integrators:")
			for _, name := range reg.ListIntegrators() {
				fmt.Fprintf(out, "  %-20s %s\n", name, reg.Label(name))
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, showCmd, playCmd, exportCmd, deleteCmd, presetsCmd, modelsCmd)
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig resolves the base configuration: a preset, else a config file,
// else the defaults. A config file given alongside a preset is rejected.
func loadConfig(model string) (*config.Config, error) {
	switch {
	case preset != "" && configFile != "":
		return nil, errors.New("--preset and --config are mutually exclusive")
	case preset != "":
		if model == "" {
			model = config.DefaultConfig().Model
		}
		cfg := config.GetPreset(model, preset)
		if cfg == nil {
			return nil, errors.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		return cfg, nil
	case configFile != "":
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load config")
		}
		return cfg, nil
	default:
		return config.DefaultConfig(), nil
	}
}

func newLogger(cfg logging.Config) (*zap.Logger, error) {
	if logLevel != "" {
		cfg.Level = logLevel
	}
	if logFormat != "" {
		cfg.Encoding = logFormat
	}
	return logging.New(cfg)
}

func runsDir(cfg *config.Config) string {
	if dataDir != "" {
		return dataDir
	}
	if cfg != nil && cfg.Output.RunsDir != "" {
		return cfg.Output.RunsDir
	}
	return config.DefaultConfig().Output.RunsDir
}

// openStore opens the catalog named by --data, or by the config file.
func openStore() (*storage.Store, error) {
	var cfg *config.Config
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load config")
		}
		cfg = c
	}
	return storage.Open(runsDir(cfg))
}

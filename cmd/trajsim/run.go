package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/trajsim/internal/config"
	"github.com/san-kum/trajsim/internal/experiment"
	"github.com/san-kum/trajsim/internal/export"
	"github.com/san-kum/trajsim/internal/solver"
	"github.com/san-kum/trajsim/internal/storage"
	"github.com/san-kum/trajsim/internal/viz"
)

// applyFlags lets explicitly set flags override the loaded configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config, args []string) error {
	flags := cmd.Flags()
	if len(args) > 0 {
		cfg.Model = args[0]
	}
	if flags.Changed("model-file") {
		cfg.ModelFile = modelFile
	}
	if flags.Changed("param") {
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64, len(params))
		}
		for name, raw := range params {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return errors.Wrapf(err, "param %s", name)
			}
			cfg.Params[name] = v
		}
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("integrators") {
		cfg.Integrators = integs
	}
	if flags.Changed("rk2-variant") {
		cfg.RK2Variant = rk2Variant
	}
	if flags.Changed("solver") {
		m, err := solver.ParseMethod(solverName)
		if err != nil {
			return err
		}
		cfg.Solver.Method = m
	}
	if flags.Changed("max-iter") {
		cfg.Solver.MaxIterations = maxIter
	}
	if flags.Changed("figure") {
		cfg.Output.Figure = figurePath
	}
	if flags.Changed("svg") {
		cfg.Output.SVG = svgPath
	}
	if noStore {
		cfg.Output.Store = false
	}
	if noASCII {
		cfg.Output.ASCII = false
	}
	if dataDir != "" {
		cfg.Output.RunsDir = dataDir
	}
	return cfg.Validate()
}

// sinksFor builds the exporters selected by the output config. An empty
// figure path disables the PNG.
func sinksFor(cfg *config.Config, out io.Writer) export.Sink {
	var sinks export.MultiSink
	if cfg.Output.Figure != "" {
		sinks = append(sinks, export.NewPNGSink(cfg.Output.Figure))
	}
	if cfg.Output.SVG != "" {
		sinks = append(sinks, export.NewSVGSink(cfg.Output.SVG))
	}
	if cfg.Output.ASCII {
		sinks = append(sinks, export.NewASCIISink(out))
	}
	if cfg.Output.Summary {
		sinks = append(sinks, export.NewSummarySink(out))
	}
	return sinks
}

func runExperiment(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	model := ""
	if len(args) > 0 {
		model = args[0]
	}
	cfg, err := loadConfig(model)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg, args); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	registry := experiment.NewRegistry()
	exp := experiment.New(cfg, registry, experiment.WithLogger(logger))

	name := cfg.Model
	if cfg.ModelFile != "" {
		name = cfg.ModelFile
	}
	fmt.Fprintf(out, "running %s with %s...\n", name, strings.Join(cfg.Integrators, ", "))
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "completed in %v\n\n", time.Since(start).Round(time.Millisecond))

	if err := result.Export(sinksFor(cfg, out)); err != nil {
		return errors.Wrap(err, "export")
	}
	if cfg.Output.Figure != "" {
		logger.Info("energy figure written", zap.String("path", cfg.Output.Figure))
		fmt.Fprintf(out, "\nfigure: %s\n", cfg.Output.Figure)
	}
	if cfg.Output.SVG != "" {
		logger.Info("energy figure written", zap.String("path", cfg.Output.SVG))
		fmt.Fprintf(out, "svg: %s\n", cfg.Output.SVG)
	}

	if cfg.Output.Store {
		st, err := storage.Open(cfg.Output.RunsDir)
		if err != nil {
			return err
		}
		defer st.Close()

		saved, err := result.Save(ctx, st, cfg.Seed)
		if err != nil {
			return errors.Wrap(err, "save runs")
		}
		for _, r := range saved {
			logger.Debug("run saved", zap.String("id", r.ID), zap.String("integrator", r.Integrator))
			fmt.Fprintf(out, "run id: %s  %s\n", r.ID, r.Label)
		}
	}

	if play {
		player := &viz.TerminalPlayer{
			Title:    result.System.Name,
			Skeleton: result.System.Skeleton,
		}
		return player.Play(ctx, result.PlayerRuns()...)
	}
	return nil
}

package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/san-kum/trajsim/internal/experiment"
	"github.com/san-kum/trajsim/internal/export"
	"github.com/san-kum/trajsim/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tINTEG\tTIME\tSTEPS\tDT\tFINAL E\tREL DRIFT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.4fs\t%.6g\t%.3e\n",
			run.ID[:8],
			run.Model,
			run.Label,
			run.Created.Local().Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			run.FinalEnergy,
			run.RelDrift,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.Load(ctx, args[0])
	if err != nil {
		return err
	}
	times, energy, err := st.LoadEnergy(ctx, run.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "run: %s\n", run.ID)
	fmt.Fprintf(out, "model: %s\n", run.Model)
	fmt.Fprintf(out, "integrator: %s (%s)\n", run.Label, run.Integrator)
	fmt.Fprintf(out, "created: %s\n", run.Created.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "steps: %d  dt: %g  seed: %d\n", run.Steps, run.Dt, run.Seed)

	if len(run.Metrics) > 0 {
		fmt.Fprintln(out, "\nmetrics:")
		names := make([]string, 0, len(run.Metrics))
		for name := range run.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "  %s: %.6g\n", name, run.Metrics[name])
		}
	}
	fmt.Fprintln(out)

	chart := export.NewASCIISink(out)
	chart.Height = showHeight
	chart.Width = showWidth
	summary := export.NewSummarySink(out)
	sink := export.Multi(chart, summary)
	if err := sink.Add(run.Label, times, energy); err != nil {
		return multierr.Append(err, sink.Close())
	}
	return sink.Close()
}

func playRuns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var (
		model string
		runs  []viz.Run
	)
	for _, id := range args {
		run, err := st.Load(ctx, id)
		if err != nil {
			return err
		}
		if model == "" {
			model = run.Model
		} else if run.Model != model {
			return errors.Errorf("run %s is a %s rollout, expected %s", run.ID[:8], run.Model, model)
		}
		states, _, err := st.LoadStates(ctx, run.ID)
		if err != nil {
			return err
		}
		_, energy, err := st.LoadEnergy(ctx, run.ID)
		if err != nil {
			return err
		}
		runs = append(runs, viz.Run{Label: run.Label, States: states, Energy: energy, Dt: run.Dt})
	}

	// Models loaded from a file are not in the registry; they replay as bars.
	var skeleton viz.Skeleton
	if sys, err := experiment.NewRegistry().GetModel(model); err == nil {
		skeleton = sys.Skeleton
	}

	player := &viz.TerminalPlayer{Title: model, Skeleton: skeleton}
	return player.Play(ctx, runs...)
}

func exportRun(cmd *cobra.Command, args []string) (err error) {
	out := cmd.OutOrStdout()
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var w io.Writer = out
	if exportOut != "" {
		f, ferr := os.Create(exportOut)
		if ferr != nil {
			return ferr
		}
		defer func() { err = multierr.Append(err, f.Close()) }()
		w = f
	}
	return st.ExportJSON(cmd.Context(), args[0], w)
}

func deleteRun(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.Load(ctx, args[0])
	if err != nil {
		return err
	}
	if err := st.Delete(ctx, run.ID); err != nil {
		return err
	}
	if !deleteQuiet {
		fmt.Fprintf(out, "deleted %s (%s, %s)\n", run.ID, run.Model, run.Label)
	}
	return nil
}

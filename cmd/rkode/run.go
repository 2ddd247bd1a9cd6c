package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/rungekutta/internal/analysis"
	"github.com/san-kum/rungekutta/internal/experiment"
	"github.com/san-kum/rungekutta/internal/storage"
	"github.com/san-kum/rungekutta/internal/tableau"
	"github.com/san-kum/rungekutta/internal/tui"
)

func newRunCmd(g *globals) *cobra.Command {
	f := &runFlags{}
	var noSave bool

	cmd := &cobra.Command{
		Use:   "run [model]",
		Short: "integrate a model and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "running %s with %s (h=%g)...\n", cfg.Model, cfg.MethodName(), cfg.StepSize)

			run, runErr := experiment.New(cfg, experiment.WithLogger(g.logger)).Run(cmd.Context())
			if runErr != nil && !errors.Is(runErr, experiment.ErrDiverged) {
				return runErr
			}

			printRun(out, run)

			if !noSave {
				runID, err := storage.New(g.dataDir).Save(run)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "run id: %s\n", runID)
			}
			return runErr
		},
	}
	addRunFlags(cmd, f)
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	return cmd
}

func printRun(out io.Writer, run *experiment.Run) {
	res := run.Result
	fmt.Fprintf(out, "completed in %v\n", run.Elapsed)
	fmt.Fprintf(out, "method: %s (%s)\n", run.Method, run.Kind)
	fmt.Fprintf(out, "steps: %d\n", res.StepsTaken)
	fmt.Fprintf(out, "rows: %d\n", len(res.States))
	if n := len(res.States); n > 0 {
		fmt.Fprintf(out, "final: t=%g y=%v\n", res.Times[n-1], res.States[n-1])
	}

	if len(run.Metrics) > 0 {
		fmt.Fprintln(out, "\nmetrics:")
		for _, name := range slices.Sorted(maps.Keys(run.Metrics)) {
			fmt.Fprintf(out, "  %s: %.6g\n", name, run.Metrics[name])
		}
	}
}

func newLiveCmd(g *globals) *cobra.Command {
	f := &runFlags{}
	var speed int

	cmd := &cobra.Command{
		Use:   "live [model]",
		Short: "step a model interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd, args)
			if err != nil {
				return err
			}

			// the alternate screen owns the terminal, keep the solver quiet
			exp := experiment.New(cfg, experiment.WithLogger(slog.New(slog.DiscardHandler)))
			if err := exp.Setup(); err != nil {
				return err
			}
			times := cfg.OutputTimes()
			m, err := tui.NewLive(exp.Driver(), cfg.MethodName(), cfg.Model, times[len(times)-1], speed)
			if err != nil {
				return err
			}
			return tui.Run(m)
		},
	}
	addRunFlags(cmd, f)
	cmd.Flags().IntVar(&speed, "speed", 4, "steps per frame")
	return cmd
}

func newCompareCmd(g *globals) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "compare [model] [method1] [method2] ...",
		Short: "compare methods on the same model",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd, args[:1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "comparing methods for %s (h=%g)\n\n", cfg.Model, cfg.StepSize)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "METHOD\tKIND\tFINAL_Y0\tEXACT_ERR\tENERGY_DRIFT\tSTEPS\tTIME_MS")

			for _, method := range args[1:] {
				c := cfg.Clone()
				c.Method = method
				c.Tableau = nil

				run, err := experiment.New(c, experiment.WithLogger(g.logger)).Run(cmd.Context())
				if err != nil && (run == nil || !errors.Is(err, experiment.ErrDiverged)) {
					fmt.Fprintf(w, "%s\terror: %v\n", method, err)
					continue
				}
				final := run.Result.States[len(run.Result.States)-1]
				fmt.Fprintf(w, "%s\t%s\t%.6g\t%s\t%s\t%d\t%.2f\n",
					method,
					run.Kind,
					final[0],
					metric(run.Metrics, "exact_error"),
					metric(run.Metrics, "energy_drift"),
					run.Result.StepsTaken,
					float64(run.Elapsed.Microseconds())/1000,
				)
			}
			return w.Flush()
		},
	}
	addRunFlags(cmd, f)
	return cmd
}

func metric(ms map[string]float64, name string) string {
	v, ok := ms[name]
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.2e", v)
}

func newConvergeCmd() *cobra.Command {
	var hs []float64

	cmd := &cobra.Command{
		Use:   "converge [method...]",
		Short: "measure convergence order on dy/dt = -y",
		RunE: func(cmd *cobra.Command, args []string) error {
			methods := args
			if len(methods) == 0 {
				methods = tableau.List()
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "METHOD\tKIND\tORDER\tFITTED\tMIN_ERR")
			for _, name := range methods {
				tab, err := tableau.Get(name)
				if err != nil {
					return err
				}
				study, err := analysis.Study(cmd.Context(), tab, hs)
				if err != nil {
					fmt.Fprintf(w, "%s\t%s\t%d\terror: %v\n", name, tab.Kind(), tab.Order(), err)
					continue
				}
				minErr := study.Samples[0].Error
				for _, s := range study.Samples {
					minErr = min(minErr, s.Error)
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%.2e\n", name, tab.Kind(), tab.Order(), study.Order, minErr)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Float64SliceVar(&hs, "h", []float64{1.0 / 4, 1.0 / 8, 1.0 / 16, 1.0 / 32}, "step sizes")
	return cmd
}

func newLyapunovCmd() *cobra.Command {
	f := &runFlags{}
	var perturbation float64

	cmd := &cobra.Command{
		Use:   "lyapunov [model]",
		Short: "estimate the largest Lyapunov exponent",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd, args)
			if err != nil {
				return err
			}
			tab, err := experiment.ResolveTableau(cfg)
			if err != nil {
				return err
			}
			sys, err := experiment.ResolveModel(cfg)
			if err != nil {
				return err
			}
			y0, err := experiment.InitialState(cfg, sys)
			if err != nil {
				return err
			}

			duration := cfg.Span.Stop - cfg.Span.Start
			start := time.Now()
			lambda, err := analysis.LyapunovExponent(cmd.Context(), tab, sys, y0, cfg.StepSize, duration, perturbation)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "model: %s\nmethod: %s\nduration: %g\n", cfg.Model, tab.Name(), duration)
			fmt.Fprintf(out, "largest exponent: %.4f\n", lambda)
			if lambda > 0 {
				fmt.Fprintln(out, "trajectory is chaotic")
			}
			fmt.Fprintf(out, "computed in %v\n", time.Since(start))
			return nil
		},
	}
	addRunFlags(cmd, f)
	cmd.Flags().Float64Var(&perturbation, "perturbation", 1e-8, "initial separation")
	return cmd
}

func newPortraitCmd() *cobra.Command {
	f := &runFlags{}
	var xAxis, yAxis int

	cmd := &cobra.Command{
		Use:   "portrait [model]",
		Short: "phase portrait of a model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd, args)
			if err != nil {
				return err
			}
			exp := experiment.New(cfg, experiment.WithLogger(slog.Default()))
			if err := exp.Setup(); err != nil {
				return err
			}

			portrait, err := analysis.GeneratePhasePortrait(cmd.Context(), exp.Driver(), xAxis, yAxis, cfg.Span.Stop-cfg.T0)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s, %s: y%d vs y%d (%d points)\n\n", cfg.Model, cfg.MethodName(), yAxis, xAxis, len(portrait.Points))
			fmt.Fprint(cmd.OutOrStdout(), analysis.PlotPoints(portrait.Points, 70, 20))
			return nil
		},
	}
	addRunFlags(cmd, f)
	cmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	cmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")
	return cmd
}

func newPoincareCmd() *cobra.Command {
	f := &runFlags{}
	var cross, xAxis, yAxis int
	var threshold float64

	cmd := &cobra.Command{
		Use:   "poincare [model]",
		Short: "poincare section of a model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd, args)
			if err != nil {
				return err
			}
			exp := experiment.New(cfg, experiment.WithLogger(slog.Default()))
			if err := exp.Setup(); err != nil {
				return err
			}

			section, err := analysis.GeneratePoincareSection(cmd.Context(), exp.Driver(), cross, threshold, xAxis, yAxis, cfg.Span.Stop-cfg.T0)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: y%d crossing %g upwards, %d points\n\n", cfg.Model, cross, threshold, len(section.Points))
			if len(section.Points) == 0 {
				fmt.Fprintln(out, "no crossings detected")
				return nil
			}
			fmt.Fprint(out, analysis.PlotPoints(section.Points, 70, 20))
			return nil
		},
	}
	addRunFlags(cmd, f)
	cmd.Flags().IntVar(&cross, "cross", 2, "state index whose crossing is recorded")
	cmd.Flags().Float64Var(&threshold, "threshold", 27, "crossing value")
	cmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	cmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")
	return cmd
}

package main

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/rungekutta/internal/analysis"
	"github.com/san-kum/rungekutta/internal/config"
	"github.com/san-kum/rungekutta/internal/models"
	"github.com/san-kum/rungekutta/internal/ode"
	"github.com/san-kum/rungekutta/internal/storage"
	"github.com/san-kum/rungekutta/internal/tableau"
)

const maxPlots = 6

func newListCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := storage.New(g.dataDir).List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "no runs found")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tMETHOD\tKIND\tMODEL\tTIME\tH\tSTEPS\tROWS")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%g\t%d\t%d\n",
					run.ID,
					run.Method,
					run.Kind,
					run.Model,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.StepSize,
					run.StepsTaken,
					run.Rows,
				)
			}
			return w.Flush()
		},
	}
}

func newShowCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := storage.New(g.dataDir).Load(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(meta)
		},
	}
}

func loadRun(g *globals, runID string) (*storage.RunMetadata, *ode.Result, error) {
	st := storage.New(g.dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	res, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(res.States) == 0 || len(res.States[0]) == 0 {
		return nil, nil, fmt.Errorf("run %s has no data", runID)
	}
	return meta, res, nil
}

func component(res *ode.Result, idx int) []float64 {
	data := make([]float64, len(res.States))
	for i, y := range res.States {
		data[i] = y[idx]
	}
	return data
}

func newPlotCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, res, err := loadRun(g, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run: %s\n", meta.ID)
			fmt.Fprintf(out, "model: %s, method: %s\n", meta.Model, meta.Method)
			fmt.Fprintf(out, "samples: %d (t=%g..%g)\n\n", len(res.States), res.Times[0], res.Times[len(res.Times)-1])

			for idx := range min(len(res.States[0]), maxPlots) {
				graph := asciigraph.Plot(component(res, idx),
					asciigraph.Height(10),
					asciigraph.Width(80),
					asciigraph.Caption(fmt.Sprintf("y%d vs time", idx)),
				)
				fmt.Fprintln(out, graph)
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func newPhaseCmd(g *globals) *cobra.Command {
	var xAxis, yAxis int

	cmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, res, err := loadRun(g, args[0])
			if err != nil {
				return err
			}
			dim := len(res.States[0])
			if xAxis < 0 || yAxis < 0 || xAxis >= dim || yAxis >= dim {
				return fmt.Errorf("state dimension %d too small for axes %d, %d", dim, xAxis, yAxis)
			}

			points := make([]analysis.Point, len(res.States))
			for i, y := range res.States {
				points[i] = analysis.Point{X: y[xAxis], Y: y[yAxis]}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "phase space plot: %s\n", meta.ID)
			fmt.Fprintf(out, "x-axis: y%d, y-axis: y%d\n\n", xAxis, yAxis)
			fmt.Fprint(out, analysis.PlotPoints(points, 70, 20))
			return nil
		},
	}
	cmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	cmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")
	return cmd
}

func newAnalyzeCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, res, err := loadRun(g, args[0])
			if err != nil {
				return err
			}
			n := len(res.Requested)
			if n < 4 {
				return fmt.Errorf("run %s has too few rows for frequency analysis", meta.ID)
			}
			// rows are sampled at the requested times
			dt := (res.Requested[n-1] - res.Requested[0]) / float64(n-1)
			if !(dt > 0) {
				return fmt.Errorf("run %s has no time span", meta.ID)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "frequency analysis: %s\n", meta.ID)
			fmt.Fprintf(out, "model: %s, sample spacing %g\n\n", meta.Model, dt)

			ps := analysis.PowerSpectrum(component(res, 0))
			if len(ps) > 2 {
				fmt.Fprintln(out, asciigraph.Plot(ps[1:],
					asciigraph.Height(12),
					asciigraph.Width(80),
					asciigraph.Caption("power spectrum (y0)"),
				))
				fmt.Fprintln(out)
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "COMPONENT\tFREQUENCY\tPERIOD")
			for idx := range min(len(res.States[0]), maxPlots) {
				freq := analysis.DominantFrequency(component(res, idx), dt)
				period := "-"
				if freq > 0 {
					period = fmt.Sprintf("%.4g", 1/freq)
				}
				fmt.Fprintf(w, "y%d\t%.4g\t%s\n", idx, freq, period)
			}
			return w.Flush()
		},
	}
}

func newExportCSVCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := storage.New(g.dataDir).LoadStates(args[0])
			if err != nil {
				return err
			}
			return storage.WriteCSV(cmd.OutOrStdout(), res)
		},
	}
}

func newExportJSONCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(g.dataDir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			res, err := st.LoadStates(args[0])
			if err != nil {
				return err
			}
			return storage.WriteJSON(cmd.OutOrStdout(), meta, res)
		},
	}
}

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods [name]",
		Short: "list tableaux or print one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				tab, err := tableau.Get(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(out, tab)
				fmt.Fprint(out, butcherTable(tab))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tKIND\tSTAGES\tORDER")
			for _, name := range tableau.List() {
				tab, err := tableau.Get(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", name, tab.Kind(), tab.Stages(), tab.Order())
			}
			return w.Flush()
		},
	}
}

// butcherTable lays tab out as
//
//	c | A
//	--+--
//	  | b
func butcherTable(tab tableau.Tableau) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for i, row := range tab.Matrix() {
		fmt.Fprintf(w, "%.6g\t|", tab.Node(i))
		for _, v := range row {
			fmt.Fprintf(w, "\t%.6g", v)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "\t|%s\n", strings.Repeat("\t", tab.Stages()))
	fmt.Fprint(w, "\t|")
	for _, v := range tab.Weights() {
		fmt.Fprintf(w, "\t%.6g", v)
	}
	fmt.Fprintln(w)
	w.Flush()
	return b.String()
}

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "list models and their parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDIM\tLINEAR\tPARAMS")
			for _, name := range models.List() {
				sys, err := models.Get(name, nil)
				if err != nil {
					return err
				}
				params := sys.GetParams()
				parts := make([]string, 0, len(params))
				for _, p := range slices.Sorted(maps.Keys(params)) {
					parts = append(parts, fmt.Sprintf("%s=%g", p, params[p]))
				}
				fmt.Fprintf(w, "%s\t%d\t%v\t%s\n", name, sys.StateDim(), models.IsLinear(sys), strings.Join(parts, " "))
			}
			fmt.Fprintf(w, "%s\t-\ttrue\tlinear.matrix in config\n", config.MatrixModel)
			return w.Flush()
		},
	}
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			modelNames := slices.Sorted(maps.Keys(config.Presets))
			if len(args) == 1 {
				modelNames = args
			}
			for _, model := range modelNames {
				presets := config.ListPresets(model)
				if len(presets) == 0 {
					fmt.Fprintf(out, "no presets for model: %s\n", model)
					continue
				}
				fmt.Fprintf(out, "presets for %s:\n", model)
				for _, p := range presets {
					cfg := config.GetPreset(model, p)
					fmt.Fprintf(out, "  %-12s %s, h=%g\n", p, cfg.MethodName(), cfg.StepSize)
				}
			}
			return nil
		},
	}
}

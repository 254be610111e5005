package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/guptarohit/asciigraph"
	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"

	"github.com/san-kum/tanksim/internal/control"
	"github.com/san-kum/tanksim/internal/experiment"
	"github.com/san-kum/tanksim/internal/sim"
)

const (
	DefaultChartHeight = 10
	DefaultChartWidth  = 80
)

type ChartOptions struct {
	Height int
	Width  int
}

// Summary writes the run header, final level and metrics.
func Summary(w io.Writer, r *sim.Result) error {
	times := r.Times()

	lines := []string{
		headerStyle.Render("tank run " + r.ID),
		row("integrator", r.Integrator),
		row("points", fmt.Sprintf("%d", r.Len())),
		row("horizon", fmt.Sprintf("%.4g s", times[len(times)-1])),
		row("final level", fmt.Sprintf("%.6g", r.FinalLevel())),
		row("valve open", valveOpen(r, times)),
	}

	ls, err := Stats(r)
	if err != nil {
		return err
	}
	lines = append(lines,
		row("level mean", fmt.Sprintf("%.6g", ls.Mean)),
		row("level median", fmt.Sprintf("%.6g", ls.Median)),
		row("level stddev", fmt.Sprintf("%.6g", ls.StdDev)),
	)

	names := make([]string, 0, len(r.Metrics))
	for name := range r.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		lines = append(lines, row(name, fmt.Sprintf("%.6g", r.Metrics[name])))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// valveOpen reports how many grid points hold a non-zero opening and the
// time they span at the grid spacing.
func valveOpen(r *sim.Result, times []float64) string {
	open := control.FromValues(r.Control()).OpenPoints()
	dt := times[1] - times[0]
	return fmt.Sprintf("%d of %d points (%.4g s)", open, r.Len(), float64(open)*dt)
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

// Charts plots the valve opening and the tank level against the step index.
func Charts(w io.Writer, r *sim.Result, opts ChartOptions) error {
	if opts.Height <= 0 {
		opts.Height = DefaultChartHeight
	}
	if opts.Width <= 0 {
		opts.Width = DefaultChartWidth
	}

	series := []struct {
		caption string
		data    []float64
	}{
		{"valve opening (%)", r.Control()},
		{"tank level", r.Level()},
	}

	for _, s := range series {
		graph := asciigraph.Plot(s.data,
			asciigraph.Height(opts.Height),
			asciigraph.Width(opts.Width),
			asciigraph.Caption(s.caption),
		)
		if _, err := fmt.Fprintf(w, "%s\n\n", graph); err != nil {
			return err
		}
	}
	return nil
}

// Comparison writes one row per integrator. Levels are diffed against the
// first successful entry.
func Comparison(w io.Writer, entries []experiment.Comparison) error {
	var ref *sim.Result
	for _, e := range entries {
		if e.Err == nil {
			ref = e.Result
			break
		}
	}

	if _, err := fmt.Fprintln(w, headerStyle.Render("integrator comparison")); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"integrator", "final level", "max diff", "elapsed"})
	for _, e := range entries {
		if e.Err != nil {
			table.Append([]string{e.Integrator, errorStyle.Render(e.Err.Error()), "", ""})
			continue
		}
		table.Append([]string{
			e.Integrator,
			fmt.Sprintf("%.9g", e.Result.FinalLevel()),
			fmt.Sprintf("%.3e", MaxDiff(ref, e.Result)),
			e.Elapsed.String(),
		})
	}
	table.Render()

	if ref != nil {
		_, err := fmt.Fprintln(w, subtleStyle.Render("max diff is relative to "+ref.Integrator))
		return err
	}
	return nil
}

// MaxDiff is the largest absolute level difference between two runs on the
// same grid.
func MaxDiff(a, b *sim.Result) float64 {
	la, lb := a.Level(), b.Level()
	n := len(la)
	if len(lb) < n {
		n = len(lb)
	}

	var maxDiff float64
	for i := 0; i < n; i++ {
		d := la[i] - lb[i]
		if d < 0 {
			d = -d
		}
		if d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff
}

type LevelStats struct {
	Mean   float64
	Median float64
	StdDev float64
}

// Stats summarises the level trajectory over all grid points.
func Stats(r *sim.Result) (LevelStats, error) {
	data := stats.Float64Data(r.Level())

	mean, err := stats.Mean(data)
	if err != nil {
		return LevelStats{}, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return LevelStats{}, err
	}
	stdev, err := stats.StandardDeviation(data)
	if err != nil {
		return LevelStats{}, err
	}
	return LevelStats{Mean: mean, Median: median, StdDev: stdev}, nil
}

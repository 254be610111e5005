package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/tanksim/internal/sim"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

func Formats() []string {
	return []string{FormatCSV, FormatJSON}
}

// Write encodes r in the named format.
func Write(w io.Writer, format string, r *sim.Result) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, r)
	case FormatJSON:
		return WriteJSON(w, r)
	default:
		return fmt.Errorf("unknown format: %s (available: %v)", format, Formats())
	}
}

// WriteCSV writes one row per grid point with columns time,valve,level.
func WriteCSV(w io.Writer, r *sim.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "valve", "level"}); err != nil {
		return err
	}

	times, valve, level := r.Times(), r.Control(), r.Level()
	for i := range times {
		rec := []string{
			strconv.FormatFloat(times[i], 'g', -1, 64),
			strconv.FormatFloat(valve[i], 'g', -1, 64),
			strconv.FormatFloat(level[i], 'g', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

type resultDoc struct {
	RunID      string             `json:"run_id"`
	Integrator string             `json:"integrator"`
	Time       []float64          `json:"time"`
	Valve      []float64          `json:"valve"`
	Level      []float64          `json:"level"`
	Metrics    map[string]float64 `json:"metrics"`
}

func WriteJSON(w io.Writer, r *sim.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resultDoc{
		RunID:      r.ID,
		Integrator: r.Integrator,
		Time:       r.Times(),
		Valve:      r.Control(),
		Level:      r.Level(),
		Metrics:    r.Metrics,
	})
}

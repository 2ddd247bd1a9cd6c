package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/rungekutta/internal/ode"
)

var ErrCorrupt = errors.New("storage: malformed states file")

// WriteCSV writes one row per recorded state: the solver time, the requested
// time and the components y0..yN-1.
func WriteCSV(w io.Writer, res *ode.Result) error {
	cw := csv.NewWriter(w)

	header := []string{"time", "requested"}
	if len(res.States) > 0 {
		for i := range res.States[0] {
			header = append(header, fmt.Sprintf("y%d", i))
		}
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, y := range res.States {
		requested := res.Times[i]
		if i < len(res.Requested) {
			requested = res.Requested[i]
		}
		row := make([]string, 0, len(y)+2)
		row = append(row, formatFloat(res.Times[i]), formatFloat(requested))
		for _, v := range y {
			row = append(row, formatFloat(v))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ReadCSV parses the format written by WriteCSV.
func ReadCSV(r io.Reader) (*ode.Result, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header", ErrCorrupt)
	}

	rows := records[1:]
	res := &ode.Result{
		Requested: make([]float64, 0, len(rows)),
		Times:     make([]float64, 0, len(rows)),
		States:    make([]ode.State, 0, len(rows)),
	}
	for i, record := range rows {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %d: %w", ErrCorrupt, i+1, j, err)
			}
			vals[j] = v
		}
		if len(vals) < 2 {
			return nil, fmt.Errorf("%w: row %d too short", ErrCorrupt, i+1)
		}
		res.Times = append(res.Times, vals[0])
		res.Requested = append(res.Requested, vals[1])
		res.States = append(res.States, ode.State(vals[2:]))
	}
	return res, nil
}

// ExportData is the JSON form of a stored run.
type ExportData struct {
	RunMetadata
	Requested []float64   `json:"requested"`
	Times     []float64   `json:"times"`
	States    [][]float64 `json:"states"`
}

func WriteJSON(w io.Writer, meta *RunMetadata, res *ode.Result) error {
	data := ExportData{
		RunMetadata: *meta,
		Requested:   res.Requested,
		Times:       res.Times,
		States:      make([][]float64, len(res.States)),
	}
	for i, y := range res.States {
		data.States[i] = y
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

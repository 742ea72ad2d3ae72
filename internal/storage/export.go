package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/orbitsim/internal/sim"
)

type ExportData struct {
	System   string             `json:"system"`
	Stepper  string             `json:"stepper"`
	Dt       float64            `json:"dt"`
	Duration float64            `json:"duration"`
	Warp     float64            `json:"warp"`
	Steps    int                `json:"steps"`
	Bodies   []string           `json:"bodies"`
	Times    []float64          `json:"times"`
	States   [][]float64        `json:"states"`
	Metrics  map[string]float64 `json:"metrics"`
}

// WriteJSON emits a full run as indented JSON. Pass os.Stdout to print.
func WriteJSON(w io.Writer, system, stepper string, dt, duration, warp float64, result *sim.Result) error {
	data := ExportData{
		System:   system,
		Stepper:  stepper,
		Dt:       dt,
		Duration: duration,
		Warp:     warp,
		Steps:    result.StepsTaken,
		Bodies:   result.BodyNames,
		Times:    result.Times,
		States:   result.States,
		Metrics:  result.Metrics,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportJSON writes the run to a file, creating it if needed.
func ExportJSON(path, system, stepper string, dt, duration, warp float64, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, system, stepper, dt, duration, warp, result)
}

// WriteCSV emits the run in the same column layout the store uses.
func WriteCSV(w io.Writer, result *sim.Result) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(stateHeader(result.BodyNames)); err != nil {
		return err
	}
	for i := range result.States {
		row := []string{strconv.FormatFloat(result.Times[i], 'f', 6, 64)}
		for _, val := range result.States[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}

// ExportCSV writes the run states to a file.
func ExportCSV(path string, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteCSV(file, result)
}

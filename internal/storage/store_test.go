package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/orbitsim/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		BodyNames: []string{"earth", "moon"},
		States: [][]float64{
			{0, 0, 0, 0, 0, 0, 384.4, 0, 0, 0, 0, -1.018},
			{0, 0, 0, 0, 0, 0, 384.39, 0, -0.01, 0, 0, -1.018},
		},
		Times:      []float64{0.0, 0.02},
		Metrics:    map[string]float64{"energy_drift": 1e-9},
		StepsTaken: 1,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("earth-moon", 0.02, 60, 1, "frozen", testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.System != "earth-moon" {
		t.Errorf("expected system 'earth-moon', got '%s'", meta.System)
	}
	if meta.Stepper != "frozen" {
		t.Errorf("expected stepper 'frozen', got '%s'", meta.Stepper)
	}
	if meta.Metrics["energy_drift"] != 1e-9 {
		t.Errorf("metrics did not round-trip: %v", meta.Metrics)
	}
	if len(meta.Bodies) != 2 || meta.Bodies[1] != "moon" {
		t.Errorf("body names did not round-trip: %v", meta.Bodies)
	}

	states, times, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if len(states) != 2 || len(times) != 2 {
		t.Fatalf("expected 2 states and 2 times, got %d and %d", len(states), len(times))
	}
	if len(states[0]) != 12 {
		t.Errorf("expected 12 columns per state, got %d", len(states[0]))
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Save("binary", 0.02, 10, 1, "coupled", testResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("sol", 0.02, 60, 1, "frozen", testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	if _, err := os.Stat(filepath.Join(runDir, "metadata.json")); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}
	if _, err := os.Stat(filepath.Join(runDir, "states.csv")); os.IsNotExist(err) {
		t.Error("states.csv not created")
	}
}

func TestCSVHeaderUsesBodyNames(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, testResult()); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	for _, col := range []string{"time", "earth_x", "earth_vz", "moon_x", "moon_vz"} {
		if !strings.Contains(header, col) {
			t.Errorf("header missing column %q: %s", col, header)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, "earth-moon", "frozen", 0.02, 60, 1, testResult()); err != nil {
		t.Fatalf("write json: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("exported json does not parse: %v", err)
	}
	if data.System != "earth-moon" || data.Steps != 1 || len(data.States) != 2 {
		t.Errorf("unexpected export payload: %+v", data)
	}
}

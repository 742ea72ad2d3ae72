package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/orbitsim/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		BodyNames: []string{"alpha", "beta"},
		States: [][]float64{
			{10, 0, 0, 0, 0, 1, -10, 0, 0, 0, 0, -1},
			{9, 0, 2, 0, 0, 1, -9, 0, -2, 0, 0, -1},
			{7, 0, 4, 0, 0, 1, -7, 0, -4, 0, 0, -1},
		},
		Times: []float64{0, 1, 2},
	}
}

func TestTrajectorySVG(t *testing.T) {
	svg := TrajectorySVG(testResult(), 400, 300)

	if !strings.HasPrefix(svg, `<?xml`) || !strings.HasSuffix(svg, "</svg>") {
		t.Error("output is not a complete svg document")
	}
	if strings.Count(svg, "<path") != 2 {
		t.Errorf("expected one path per body, got %d", strings.Count(svg, "<path"))
	}
	for _, name := range []string{"alpha", "beta"} {
		if !strings.Contains(svg, ">"+name+"</text>") {
			t.Errorf("missing label for %s", name)
		}
	}
}

func TestTrajectorySVGEmptyRun(t *testing.T) {
	if svg := TrajectorySVG(&sim.Result{}, 400, 300); svg != "" {
		t.Error("expected empty output for empty run")
	}
}

func TestWriteTrajectorySVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orbits.svg")
	if err := WriteTrajectorySVG(path, testResult(), 400, 300); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("file does not contain svg markup")
	}
}

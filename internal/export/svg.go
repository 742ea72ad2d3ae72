// Package export renders recorded runs to standalone artifacts.
package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/orbitsim/internal/sim"
)

var pathColors = []string{
	"#00ff88", "#00ccff", "#ffcc00", "#ff00ff", "#ff4444", "#88ff00",
}

// TrajectorySVG draws the orbital-plane (x, z) path of every body in a run
// as one SVG, all paths sharing the same bounds so relative geometry holds.
func TrajectorySVG(result *sim.Result, width, height int) string {
	if len(result.States) < 2 || len(result.BodyNames) == 0 {
		return ""
	}

	minX, maxX, minZ, maxZ := bounds(result)
	rangeX := maxX - minX
	rangeZ := maxZ - minZ
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeZ == 0 {
		rangeZ = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minZ -= rangeZ * 0.1
	maxZ += rangeZ * 0.1
	rangeX = maxX - minX
	rangeZ = maxZ - minZ

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for bi, name := range result.BodyNames {
		base := bi * 6
		if base+2 >= len(result.States[0]) {
			break
		}
		color := pathColors[bi%len(pathColors)]

		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color))
		for i, state := range result.States {
			x := (state[base] - minX) / rangeX * float64(width)
			z := float64(height) - (state[base+2]-minZ)/rangeZ*float64(height)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, z))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, z))
			}
		}
		sb.WriteString("\"/>\n")

		last := result.States[len(result.States)-1]
		x := (last[base] - minX) / rangeX * float64(width)
		z := float64(height) - (last[base+2]-minZ)/rangeZ*float64(height)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>
<text x="%.1f" y="%.1f" fill="%s" font-size="11" font-family="monospace">%s</text>
`, x, z, color, x+6, z+4, color, name))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func bounds(result *sim.Result) (minX, maxX, minZ, maxZ float64) {
	first := true
	for bi := range result.BodyNames {
		base := bi * 6
		if base+2 >= len(result.States[0]) {
			break
		}
		for _, state := range result.States {
			x, z := state[base], state[base+2]
			if first {
				minX, maxX, minZ, maxZ = x, x, z, z
				first = false
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if z < minZ {
				minZ = z
			}
			if z > maxZ {
				maxZ = z
			}
		}
	}
	return
}

// WriteTrajectorySVG renders the run and writes it to path.
func WriteTrajectorySVG(path string, result *sim.Result, width, height int) error {
	svg := TrajectorySVG(result, width, height)
	if svg == "" {
		return fmt.Errorf("not enough data to render")
	}
	return os.WriteFile(path, []byte(svg), 0644)
}

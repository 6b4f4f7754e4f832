package path

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
)

// Delimiter separates path records in the text format.
const Delimiter = "---PATH---"

// Marshal writes paths in the persisted text format, one record per path.
func Marshal(paths []*Path) string {
	records := make([]string, 0, len(paths))
	for _, p := range paths {
		records = append(records, marshalPath(p))
	}
	return strings.Join(records, "\n"+Delimiter+"\n")
}

func marshalPath(p *Path) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "NAME:%s\n", p.Name)
	fmt.Fprintf(&sb, "SPEED:%.2f\n", p.Speed)
	fmt.Fprintf(&sb, "WAYPOINTS:%d\n", len(p.Waypoints))
	for i, w := range p.Waypoints {
		fmt.Fprintf(&sb, "WP%d:\n", i)
		fmt.Fprintf(&sb, "  POS:%s\n", formatVec(w.Frame.Position))
		fmt.Fprintf(&sb, "  FWD:%s\n", formatVec(w.Frame.Forward))
		fmt.Fprintf(&sb, "  RGT:%s\n", formatVec(w.Frame.Right))
		fmt.Fprintf(&sb, "  UP:%s\n", formatVec(w.Frame.Up))
		fmt.Fprintf(&sb, "  DOCK:%s\n", formatBool(w.Docking))
		fmt.Fprintf(&sb, "  DOCKDIR:%s\n", formatVec(w.DockingDir))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// Unmarshal parses the text format. Unparseable lines are skipped; a
// waypoint without a position, and a path without a name or waypoints, is dropped.
func Unmarshal(data string) []*Path {
	var paths []*Path
	var record []string

	flush := func() {
		if p := parseRecord(record); p != nil {
			paths = append(paths, p)
		}
		record = record[:0]
	}

	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == Delimiter {
			flush()
			continue
		}
		record = append(record, line)
	}
	flush()
	return paths
}

type pendingWaypoint struct {
	wp     Waypoint
	hasPos bool
}

func parseRecord(lines []string) *Path {
	p := &Path{Speed: DefaultSpeed}
	var wps []*pendingWaypoint
	var cur *pendingWaypoint

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "NAME:"):
			p.Name = strings.TrimSpace(strings.TrimPrefix(line, "NAME:"))
		case strings.HasPrefix(line, "SPEED:"):
			if v, err := strconv.ParseFloat(strings.TrimPrefix(line, "SPEED:"), 64); err == nil {
				p.Speed = v
			}
		case strings.HasPrefix(line, "WAYPOINTS:"):
			// the count is advisory, waypoints are taken as found
		case strings.HasPrefix(line, "WP") && strings.HasSuffix(line, ":"):
			cur = &pendingWaypoint{}
			wps = append(wps, cur)
		case cur == nil:
		case strings.HasPrefix(line, "POS:"):
			if v, ok := parseVec(strings.TrimPrefix(line, "POS:")); ok {
				cur.wp.Frame.Position = v
				cur.hasPos = true
			}
		case strings.HasPrefix(line, "FWD:"):
			if v, ok := parseVec(strings.TrimPrefix(line, "FWD:")); ok {
				cur.wp.Frame.Forward = v
			}
		case strings.HasPrefix(line, "RGT:"):
			if v, ok := parseVec(strings.TrimPrefix(line, "RGT:")); ok {
				cur.wp.Frame.Right = v
			}
		case strings.HasPrefix(line, "UP:"):
			if v, ok := parseVec(strings.TrimPrefix(line, "UP:")); ok {
				cur.wp.Frame.Up = v
			}
		case strings.HasPrefix(line, "DOCKDIR:"):
			if v, ok := parseVec(strings.TrimPrefix(line, "DOCKDIR:")); ok {
				cur.wp.DockingDir = v
			}
		case strings.HasPrefix(line, "DOCK:"):
			if b, err := strconv.ParseBool(strings.TrimSpace(strings.TrimPrefix(line, "DOCK:"))); err == nil {
				cur.wp.Docking = b
			}
		}
	}

	for _, w := range wps {
		if w.hasPos {
			p.Waypoints = append(p.Waypoints, w.wp)
		}
	}
	if p.Name == "" || len(p.Waypoints) == 0 {
		return nil
	}
	return p
}

func formatVec(v r3.Vector) string {
	return strconv.FormatFloat(v.X, 'f', 8, 64) + "," +
		strconv.FormatFloat(v.Y, 'f', 8, 64) + "," +
		strconv.FormatFloat(v.Z, 'f', 8, 64)
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func parseVec(s string) (r3.Vector, bool) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 3 {
		return r3.Vector{}, false
	}
	var xyz [3]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return r3.Vector{}, false
		}
		xyz[i] = v
	}
	return r3.Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]}, true
}

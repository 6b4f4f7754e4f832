package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/navcore/internal/sim"
)

// Channel extracts one scalar from a sample.
type Channel func(s sim.Sample) float64

var channels = map[string]Channel{
	"time":   func(s sim.Sample) float64 { return s.Time },
	"x":      func(s sim.Sample) float64 { return s.Position.X },
	"y":      func(s sim.Sample) float64 { return s.Position.Y },
	"z":      func(s sim.Sample) float64 { return s.Position.Z },
	"vx":     func(s sim.Sample) float64 { return s.Velocity.X },
	"vy":     func(s sim.Sample) float64 { return s.Velocity.Y },
	"vz":     func(s sim.Sample) float64 { return s.Velocity.Z },
	"speed":  func(s sim.Sample) float64 { return s.Speed },
	"goal":   func(s sim.Sample) float64 { return s.GoalDistance },
	"thrust": func(s sim.Sample) float64 { return s.Thrust },
}

// ChannelByName looks up a sample channel such as "goal" or "vz".
func ChannelByName(name string) (Channel, error) {
	c, ok := channels[name]
	if !ok {
		return nil, fmt.Errorf("unknown channel %q (%s)", name, strings.Join(ChannelNames(), ", "))
	}
	return c, nil
}

func ChannelNames() []string {
	names := make([]string, 0, len(channels))
	for name := range channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Point struct{ X, Y float64 }

// Portrait holds two channels of a run plotted against each other.
type Portrait struct {
	XName, YName string
	Points       []Point
}

func NewPortrait(samples []sim.Sample, xName, yName string) (*Portrait, error) {
	xc, err := ChannelByName(xName)
	if err != nil {
		return nil, err
	}
	yc, err := ChannelByName(yName)
	if err != nil {
		return nil, err
	}

	p := &Portrait{XName: xName, YName: yName, Points: make([]Point, len(samples))}
	for i, s := range samples {
		p.Points[i] = Point{X: xc(s), Y: yc(s)}
	}
	return p, nil
}

// ASCII renders the portrait on a width by height character grid, with axes
// drawn where zero is in view.
func (p *Portrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX = min(minX, pt.X)
		maxX = max(maxX, pt.X)
		minY = min(minY, pt.Y)
		maxY = max(maxY, pt.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	for _, pt := range p.Points {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			grid[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if grid[row][col] == ' ' {
				grid[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if grid[row][col] == ' ' {
				grid[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/san-kum/rungekutta/internal/ode"
)

var ErrIndex = errors.New("analysis: state index out of range")

type Point struct{ X, Y float64 }

// PhasePortrait holds the projection of a trajectory onto two components.
type PhasePortrait struct {
	XIndex, YIndex int
	Points         []Point
}

// GeneratePhasePortrait steps d until duration has elapsed from its current
// time and records components xIdx and yIdx after every step. d must already
// hold a state.
func GeneratePhasePortrait(ctx context.Context, d ode.Driver, xIdx, yIdx int, duration float64) (*PhasePortrait, error) {
	y, t0, ok := d.State()
	if !ok {
		return nil, ode.ErrStateUnset
	}
	if err := checkIndex(len(y), xIdx, yIdx); err != nil {
		return nil, err
	}

	portrait := &PhasePortrait{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, 0, int(duration/d.StepSize())+1),
	}
	err := walk(ctx, d, t0+duration, func(y ode.State, _ float64) {
		portrait.Points = append(portrait.Points, Point{X: y[xIdx], Y: y[yIdx]})
	})
	return portrait, err
}

// PoincareSection holds the points where a trajectory crossed a threshold
// upwards.
type PoincareSection struct {
	Points []Point
}

// GeneratePoincareSection records components recordX and recordY each time
// component crossIdx passes threshold going upwards. The recorded point is
// interpolated linearly between the two steps around the crossing.
func GeneratePoincareSection(
	ctx context.Context,
	d ode.Driver,
	crossIdx int,
	threshold float64,
	recordX, recordY int,
	duration float64,
) (*PoincareSection, error) {
	prev, t0, ok := d.State()
	if !ok {
		return nil, ode.ErrStateUnset
	}
	if err := checkIndex(len(prev), crossIdx, recordX, recordY); err != nil {
		return nil, err
	}

	section := &PoincareSection{}
	err := walk(ctx, d, t0+duration, func(y ode.State, _ float64) {
		before, after := prev[crossIdx], y[crossIdx]
		if before < threshold && after >= threshold {
			frac := (threshold - before) / (after - before)
			section.Points = append(section.Points, Point{
				X: prev[recordX] + frac*(y[recordX]-prev[recordX]),
				Y: prev[recordY] + frac*(y[recordY]-prev[recordY]),
			})
		}
		prev = y
	})
	return section, err
}

func walk(ctx context.Context, d ode.Driver, until float64, visit func(ode.State, float64)) error {
	_, t, _ := d.State()
	for t < until {
		if err := ctx.Err(); err != nil {
			return err
		}
		y, next, err := d.Step()
		if err != nil {
			return err
		}
		t = next
		visit(y, t)
	}
	return nil
}

func checkIndex(dim int, idx ...int) error {
	for _, i := range idx {
		if i < 0 || i >= dim {
			return fmt.Errorf("%w: %d (dim %d)", ErrIndex, i, dim)
		}
	}
	return nil
}

// PlotPoints draws points on a width x height character canvas with the axes
// drawn where they are in view.
func PlotPoints(points []Point, width, height int) string {
	if len(points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	minX, maxX = pad(minX, maxX)
	minY, maxY = pad(minY, maxY)

	col := func(x float64) int { return int((x - minX) / (maxX - minX) * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/(maxY-minY)*float64(height-1)) }

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}
	if minX <= 0 && maxX >= 0 {
		c := col(0)
		for r := range canvas {
			canvas[r][c] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		r := row(0)
		for c := range canvas[r] {
			if canvas[r][c] == '│' {
				canvas[r][c] = '┼'
			} else {
				canvas[r][c] = '─'
			}
		}
	}
	for _, p := range points {
		canvas[row(p.Y)][col(p.X)] = '•'
	}

	var sb strings.Builder
	for _, r := range canvas {
		sb.WriteString(string(r))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// pad widens [lo, hi] by 10% on each side; a flat range becomes unit width.
func pad(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		span = 1
	}
	return lo - 0.1*span, hi + 0.1*span
}

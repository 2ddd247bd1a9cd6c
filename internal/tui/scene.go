package tui

import (
	"math"
	"strings"

	"github.com/san-kum/rungekutta/internal/ode"
)

const (
	sceneWidth  = 44
	sceneHeight = 13
)

// canvas is a fixed size character grid for the scene panel.
type canvas [][]rune

func newCanvas() canvas {
	c := make(canvas, sceneHeight)
	for i := range c {
		c[i] = []rune(strings.Repeat(" ", sceneWidth))
	}
	return c
}

func (c canvas) set(x, y int, r rune) {
	if x >= 0 && x < sceneWidth && y >= 0 && y < sceneHeight {
		c[y][x] = r
	}
}

// line draws from (x1,y1) to (x2,y2) with Bresenham's algorithm.
func (c canvas) line(x1, y1, x2, y2 int, r rune) {
	dx, dy := abs(x2-x1), abs(y2-y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		c.set(x1, y1, r)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func (c canvas) String() string {
	rows := make([]string, len(c))
	for i, r := range c {
		rows[i] = string(r)
	}
	return strings.Join(rows, "\n")
}

// drawScene draws a picture of y for models that have one and bars of the
// components for the rest.
func drawScene(model string, y ode.State) string {
	c := newCanvas()
	if !y.IsValid() || len(y) == 0 {
		drawBars(c, y)
		return c.String()
	}
	switch model {
	case "pendulum":
		drawPendulum(c, y)
	case "oscillator":
		drawSpring(c, y)
	default:
		drawBars(c, y)
	}
	return c.String()
}

func drawPendulum(c canvas, y ode.State) {
	theta := y[0]
	px, py := sceneWidth/2, 1
	length := 10.0
	// characters are about twice as tall as wide
	bx := px + int(2*length*math.Sin(theta))
	by := py + int(length*math.Cos(theta))

	c.set(px, py, '+')
	c.line(px, py, bx, by, '·')
	c.set(bx, by, 'O')
}

func drawSpring(c canvas, y ode.State) {
	cy := sceneHeight / 2
	for row := cy - 2; row <= cy+2; row++ {
		c.set(2, row, '#')
	}

	mx := sceneWidth/2 + int(clamp(y[0], -2, 2)*8)
	for x := 3; x < mx-1; x += 2 {
		c.set(x, cy, '~')
	}
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			c.set(mx+dx, cy+dy, '█')
		}
	}
}

func drawBars(c canvas, y ode.State) {
	cy := sceneHeight / 2
	for x := 1; x < sceneWidth-1; x++ {
		c.set(x, cy, '─')
	}

	n := min(len(y), sceneWidth/3)
	if n == 0 {
		return
	}
	bw := max((sceneWidth-4)/n, 2)

	maxVal := 1.0
	for _, v := range y[:n] {
		if a := math.Abs(v); a > maxVal && !math.IsInf(a, 0) {
			maxVal = a
		}
	}

	for i, v := range y[:n] {
		if math.IsNaN(v) {
			continue
		}
		bx := 3 + i*bw
		bh := int(clamp(v/maxVal, -1, 1) * float64(cy-1))
		if bh > 0 {
			for row := cy - 1; row >= cy-bh; row-- {
				c.set(bx, row, '█')
			}
		} else {
			for row := cy + 1; row <= cy-bh; row++ {
				c.set(bx, row, '█')
			}
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

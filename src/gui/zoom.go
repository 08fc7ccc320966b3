package gui

import (
	"fmt"
	"math"
)

// Zoom tracks the display scale of an image view. Step is additive when
// Factor is zero, otherwise each wheel notch multiplies or divides by Factor.
type Zoom struct {
	Min, Max float64
	Step     float64
	Factor   float64
	level    float64
}

var (
	pinnedZoom = Zoom{Min: 0.2, Max: 5, Step: 0.1}
	resultZoom = Zoom{Min: 0.1, Max: 10, Factor: 1.1}
)

// Level is the current scale, 1 until the first change.
func (z *Zoom) Level() float64 {
	if z.level == 0 {
		return 1
	}
	return z.level
}

func (z *Zoom) In() float64  { return z.set(z.next(true)) }
func (z *Zoom) Out() float64 { return z.set(z.next(false)) }

func (z *Zoom) Reset() float64 { return z.set(1) }

// Wheel zooms in for a positive delta and out otherwise.
func (z *Zoom) Wheel(delta float32) float64 {
	if delta > 0 {
		return z.In()
	}
	return z.Out()
}

func (z *Zoom) next(in bool) float64 {
	l := z.Level()
	if z.Factor > 0 {
		if in {
			return l * z.Factor
		}
		return l / z.Factor
	}
	if in {
		l += z.Step
	} else {
		l -= z.Step
	}
	// keeps 0.1 steps from drifting
	return math.Round(l*1000) / 1000
}

func (z *Zoom) set(l float64) float64 {
	z.level = math.Max(z.Min, math.Min(l, z.Max))
	return z.level
}

// Percent formats the level the way the scale caption shows it.
func (z *Zoom) Percent() string {
	return fmt.Sprintf("%d%%", int(z.Level()*100+1e-9))
}

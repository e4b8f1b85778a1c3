package effects

import (
	"math"
	"strings"

	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/emojierr"
)

// Closed-form per-frame parameters. For cyclic effects the value at i = n
// equals the value at i = 0 modulo one period.

// ScrollFrames returns the frame count for content of width px to travel
// fully through a viewport at step px per frame.
func ScrollFrames(viewport, width, step int) int {
	return (viewport + width + step - 1) / step
}

// ScrollX returns the content's left edge at frame i of n. x(0) is the
// viewport width (just off the right edge) and x(n) is -width (just off the
// left edge); both show nothing.
func ScrollX(i, viewport, width, n int) int {
	d := float64(viewport + width)
	return viewport - int(math.Round(float64(i)*d/float64(n)))
}

// PartyHue returns the hue in degrees at frame i of n.
func PartyHue(i, n, cycles int, base float64) float64 {
	return base + float64(i)*360*float64(cycles)/float64(n)
}

// RotateAngle returns the clockwise rotation in degrees at frame i of n.
func RotateAngle(i, n int) float64 {
	return float64(i) * 360 / float64(n)
}

// ShakeOffset returns the horizontal offset at frame i.
func ShakeOffset(i, amplitude, period int) int {
	return int(math.Round(float64(amplitude) * math.Sin(2*math.Pi*float64(i)/float64(period))))
}

// WaveOffset returns the vertical offset at frame i for a point whose
// spatial phase is phase radians.
func WaveOffset(i, period int, amplitude, phase float64) float64 {
	return amplitude * math.Sin(2*math.Pi*float64(i)/float64(period)+phase)
}

// GrowMode selects the scale curve of the grow effect.
type GrowMode string

const (
	// Pulse loops from min up to 1 and back.
	Pulse GrowMode = "pulse"
	// Once eases out from min to 1 and does not loop seamlessly.
	Once GrowMode = "once"
)

// ParseGrowMode parses a grow mode name.
func ParseGrowMode(s string) (GrowMode, error) {
	switch m := GrowMode(strings.ToLower(s)); m {
	case Pulse, Once:
		return m, nil
	}
	return "", emojierr.New(emojierr.InvalidRequest, "grow mode %q: want pulse or once", s)
}

// GrowScale returns the scale factor at frame i of n.
func GrowScale(i, n int, minScale float64, mode GrowMode) float64 {
	if mode == Once {
		if n <= 1 {
			return 1
		}
		t := float64(i) / float64(n-1)
		return minScale + (1-minScale)*(1-math.Pow(1-t, 3))
	}
	return minScale + (1-minScale)*(1-math.Cos(2*math.Pi*float64(i)/float64(n)))/2
}

// TypingPlan returns the number of revealed clusters for each frame: reveal
// steps of perStep clusters shown framesPer frames each, starting from
// none, then hold frames of the full text. When that exceeds maxFrames,
// framesPer drops to 1 first, then steps are merged, then hold shrinks.
func TypingPlan(clusters, perStep, framesPer, hold, maxFrames int) []int {
	perStep = max(perStep, 1)
	framesPer = max(framesPer, 1)
	hold = max(hold, 1)
	steps := func() int { return (clusters + perStep - 1) / perStep }

shrink:
	for steps()*framesPer+hold > maxFrames {
		switch {
		case framesPer > 1:
			framesPer--
		case perStep < clusters:
			perStep++
		case hold > 1:
			hold--
		default:
			break shrink
		}
	}
	return planFrames(clusters, perStep, framesPer, hold, steps())
}

func planFrames(clusters, perStep, framesPer, hold, steps int) []int {
	plan := make([]int, 0, steps*framesPer+hold)
	for s := range steps {
		for range framesPer {
			plan = append(plan, s*perStep)
		}
	}
	for range hold {
		plan = append(plan, clusters)
	}
	return plan
}

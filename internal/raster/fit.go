package raster

import (
	"fmt"
	"math"

	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/fonts"
)

// Fit is the predicate the auto-sizer applies to measured text.
type Fit int

const (
	// FitBox needs the whole text box inside the canvas.
	FitBox Fit = iota
	// FitHeight only bounds the height; the text may be wider than the canvas.
	FitHeight
	// FitDiagonal needs the box diagonal inside the canvas.
	FitDiagonal
	// FitGlyph needs every single cluster inside the canvas.
	FitGlyph
)

func (f Fit) String() string {
	switch f {
	case FitBox:
		return "box"
	case FitHeight:
		return "height"
	case FitDiagonal:
		return "diagonal"
	case FitGlyph:
		return "glyph"
	default:
		return fmt.Sprintf("Fit(%d)", int(f))
	}
}

// Fits reports whether text measured as m satisfies f within avail pixels.
func (f Fit) Fits(m fonts.Metrics, avail int) bool {
	box := newLayout(m).box
	switch f {
	case FitHeight:
		return box.Dy() <= avail
	case FitDiagonal:
		return math.Hypot(float64(box.Dx()), float64(box.Dy())) <= float64(avail)
	case FitGlyph:
		if m.Ascent+m.Descent > avail {
			return false
		}
		for _, l := range m.Lines {
			for _, c := range l.Clusters {
				if max(c.Advance, c.Ink.Dx()) > avail || c.Ink.Dy() > avail {
					return false
				}
			}
		}
		return true
	default:
		return box.Dx() <= avail && box.Dy() <= avail
	}
}

// FitSize returns the largest integer point size in [minPt, maxPt] at which
// text satisfies fit within avail pixels, or minPt when none does.
func FitSize(h *fonts.Handle, text string, fit Fit, avail, minPt, maxPt int) (int, error) {
	if minPt < 1 || maxPt < minPt {
		return 0, fmt.Errorf("fit size: invalid range [%d, %d]", minPt, maxPt)
	}
	lo, hi := minPt, maxPt
	best := minPt
	for lo <= hi {
		mid := (lo + hi) / 2
		m, err := h.Measure(text, float64(mid))
		if err != nil {
			return 0, err
		}
		if fit.Fits(m, avail) {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return best, nil
}

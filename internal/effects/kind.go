// Package effects turns a base canvas into frame sequences.
//
// Dispatch is a closed map from [Kind] to a pure transform. Every periodic
// parameter is a closed-form function of the frame index (see params.go),
// so frames are computed independently and in parallel, and the sequence
// loops without a visible seam.
package effects

import (
	"strings"

	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/config"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/emojierr"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/raster"
)

// ///////////////////////////////////////////////
// Kinds
// ///////////////////////////////////////////////

// Kind names an effect.
type Kind int

const (
	None Kind = iota
	Scroll
	Party
	Rotate
	Shake
	Wave
	Typing
	Grow
	Split
	Marquee
	// Billboard is typing one cluster per frame without a cursor, like an
	// LED sign.
	Billboard
)

var kindNames = [...]string{
	None:      "none",
	Scroll:    "scroll",
	Party:     "party",
	Rotate:    "rotate",
	Shake:     "shake",
	Wave:      "wave",
	Typing:    "typing",
	Grow:      "grow",
	Split:     "split",
	Marquee:   "marquee",
	Billboard: "billboard",
}

// Kinds lists every effect in declaration order.
var Kinds = []Kind{None, Scroll, Party, Rotate, Shake, Wave, Typing, Grow, Split, Marquee, Billboard}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind parses an effect name. The empty string is [None].
func ParseKind(s string) (Kind, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return None, nil
	}
	for k, name := range kindNames {
		if name == v {
			return Kind(k), nil
		}
	}
	return None, emojierr.New(emojierr.InvalidRequest, "unknown effect %q", s)
}

// Target is the request kind an effect is applied to.
type Target int

const (
	TextTarget Target = iota
	ImageTarget
)

func (t Target) String() string {
	if t == ImageTarget {
		return "image"
	}
	return "text"
}

// Supports reports whether k can be applied to target.
func (k Kind) Supports(t Target) bool {
	if t == TextTarget {
		return k >= None && k <= Billboard
	}
	switch k {
	case None, Rotate, Shake, Party, Wave, Grow:
		return true
	}
	return false
}

// ///////////////////////////////////////////////
// Text Layout
// ///////////////////////////////////////////////

// TextLayout returns how text is sized and padded for k on a size×size
// canvas: the fit predicate, the canvas options, and the pixels available
// to the fit.
func TextLayout(k Kind, size int, tc config.TextConfig) (raster.Fit, raster.Options, int) {
	pad := raster.Options{PadX: tc.Padding, PadY: tc.Padding}
	avail := size - 2*tc.Padding
	switch k {
	case Scroll, Marquee:
		return raster.FitHeight, raster.Options{PadY: tc.ScrollPadding}, size - 2*tc.ScrollPadding
	case Rotate, Grow:
		pad.Square = true
		return raster.FitDiagonal, pad, avail
	case Split:
		return raster.FitGlyph, pad, avail
	default:
		return raster.FitBox, pad, avail
	}
}

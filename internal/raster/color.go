package raster

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/emojierr"
)

// ///////////////////////////////////////////////
// Parsing
// ///////////////////////////////////////////////

var namedColors = map[string]color.NRGBA{
	"transparent": {},
	"white":       {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	"black":       {A: 0xff},
}

// ParseColor parses "#RRGGBB", "#RRGGBBAA", or one of the names
// transparent, white, black. Other inputs are InvalidRequest.
func ParseColor(s string) (color.NRGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[v]; ok {
		return c, nil
	}
	if !strings.HasPrefix(v, "#") || (len(v) != 7 && len(v) != 9) {
		return color.NRGBA{}, emojierr.New(emojierr.InvalidRequest, "color %q: want #RRGGBB, #RRGGBBAA, transparent, white or black", s)
	}
	b, err := hex.DecodeString(v[1:])
	if err != nil {
		return color.NRGBA{}, emojierr.Wrap(emojierr.InvalidRequest, err, "color %q", s)
	}
	c := color.NRGBA{R: b[0], G: b[1], B: b[2], A: 0xff}
	if len(b) == 4 {
		c.A = b[3]
	}
	return c, nil
}

// FormatColor renders c as "#RRGGBB", or "#RRGGBBAA" when not opaque.
func FormatColor(c color.NRGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// ///////////////////////////////////////////////
// HSV
// ///////////////////////////////////////////////

// HSV converts hue (degrees, any range), saturation and value (0..1) to an
// opaque color.
func HSV(h, s, v float64) color.NRGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return color.NRGBA{R: to8(r + m), G: to8(g + m), B: to8(b + m), A: 0xff}
}

// Hue returns the hue of c in degrees, 0 for grays.
func Hue(c color.NRGBA) float64 {
	r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	hi := math.Max(r, math.Max(g, b))
	lo := math.Min(r, math.Min(g, b))
	d := hi - lo
	if d == 0 {
		return 0
	}
	var h float64
	switch hi {
	case r:
		h = math.Mod((g-b)/d, 6)
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	h *= 60
	if h < 0 {
		h += 360
	}
	return h
}

func to8(f float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, f)) * 255))
}

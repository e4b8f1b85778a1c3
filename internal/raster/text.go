package raster

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/emojierr"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/fonts"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// ///////////////////////////////////////////////
// Layout
// ///////////////////////////////////////////////

// Options controls the canvas built around rendered text.
type Options struct {
	// PadX and PadY are the margins added on each side of the text box.
	PadX, PadY int
	// Square makes the canvas a square whose side is the diagonal of the
	// text box plus padding, so the text never clips while rotating.
	Square bool
}

// layout places every cluster of m. Lines are centered horizontally and
// baselines are LineHeight apart.
type layout struct {
	// box is the union of the line boxes and every ink rectangle.
	box     image.Rectangle
	origins [][]image.Point
}

func newLayout(m fonts.Metrics) layout {
	l := layout{box: image.Rect(0, 0, m.Width, m.Height)}
	l.origins = make([][]image.Point, len(m.Lines))
	for li, line := range m.Lines {
		baseline := m.Ascent + li*m.LineHeight
		x0 := (m.Width - line.Width) / 2
		l.origins[li] = make([]image.Point, len(line.Clusters))
		for ci, c := range line.Clusters {
			o := image.Pt(x0+c.X, baseline)
			l.origins[li][ci] = o
			if !c.Blank() {
				l.box = l.box.Union(c.Ink.Add(o))
			}
		}
	}
	return l
}

// Size returns the canvas size text measured as m occupies under opts.
func Size(m fonts.Metrics, opts Options) (w, h int) {
	box := newLayout(m).box
	if opts.Square {
		side := squareSide(box, opts)
		return side, side
	}
	return box.Dx() + 2*opts.PadX, box.Dy() + 2*opts.PadY
}

func squareSide(box image.Rectangle, opts Options) int {
	d := int(math.Ceil(math.Hypot(float64(box.Dx()), float64(box.Dy()))))
	return d + 2*max(opts.PadX, opts.PadY)
}

// ///////////////////////////////////////////////
// Rendering
// ///////////////////////////////////////////////

// RenderText draws text at sizePt with fg onto a transparent content layer
// and records each cluster as a [Glyph]. bg becomes the canvas background.
func RenderText(h *fonts.Handle, text string, sizePt float64, fg, bg color.NRGBA, opts Options) (Canvas, error) {
	if strings.TrimSpace(text) == "" {
		return Canvas{}, emojierr.New(emojierr.InvalidRequest, "text is empty")
	}
	face, err := h.Face(sizePt)
	if err != nil {
		return Canvas{}, err
	}
	defer face.Close()

	m, err := h.Measure(text, sizePt)
	if err != nil {
		return Canvas{}, err
	}
	l := newLayout(m)

	w, ht := Size(m, opts)
	var shift image.Point
	if opts.Square {
		shift = image.Pt((w-l.box.Dx())/2-l.box.Min.X, (ht-l.box.Dy())/2-l.box.Min.Y)
	} else {
		shift = image.Pt(opts.PadX-l.box.Min.X, opts.PadY-l.box.Min.Y)
	}

	c := NewCanvas(w, ht, bg)
	c.Glyphs = make([]Glyph, 0, m.ClusterCount())
	src := image.NewUniform(fg)
	for li, line := range m.Lines {
		top := li*m.LineHeight + shift.Y
		for ci, cl := range line.Clusters {
			o := l.origins[li][ci].Add(shift)
			g := Glyph{
				Text: cl.Text,
				Cell: image.Rect(o.X, top, o.X+cl.Advance, top+m.Ascent+m.Descent),
			}
			if !cl.Blank() {
				g.Ink = image.NewNRGBA(cl.Ink.Add(o))
				d := font.Drawer{Dst: g.Ink, Src: src, Face: face, Dot: fixed.P(o.X, o.Y)}
				d.DrawString(cl.Text)
				Paste(c.Img, g.Ink, image.Point{})
			}
			c.Glyphs = append(c.Glyphs, g)
		}
	}
	return c, nil
}

// DrawGlyphs draws the ink of glyphs onto dst, each moved by offset(i).
func DrawGlyphs(dst *image.NRGBA, glyphs []Glyph, offset func(i int) image.Point) {
	for i, g := range glyphs {
		if g.Ink == nil {
			continue
		}
		b := g.Ink.Bounds()
		draw.Draw(dst, b.Add(offset(i)), g.Ink, b.Min, draw.Over)
	}
}

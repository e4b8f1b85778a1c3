package effects

import (
	"image"
	"image/color"

	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/raster"
	"golang.org/x/image/draw"
)

// none centers the content in a single still.
func none(base raster.Canvas, s Spec) ([]raster.Sequence, error) {
	return []raster.Sequence{raster.Still(raster.Center(base, s.Size))}, nil
}

// typing reveals clusters left to right following [TypingPlan]. A cursor
// bar follows the last revealed cluster until the text is complete.
func typing(base raster.Canvas, s Spec) ([]raster.Sequence, error) {
	c0 := raster.Center(base, s.Size)
	n := len(c0.Glyphs)
	plan := TypingPlan(n, s.GlyphsPerStep, s.FramesPerGlyph, s.HoldFrames, s.MaxFrames)
	seq := frames(s, len(plan), func(i int) raster.Canvas {
		c := c0.Blank()
		shown := plan[i]
		raster.DrawGlyphs(c.Img, c0.Glyphs[:shown], func(int) image.Point { return image.Point{} })
		if s.Cursor && shown < n {
			drawCursor(c.Img, c0.Glyphs, shown, s.Foreground)
		}
		return c
	})
	return []raster.Sequence{seq}, nil
}

// drawCursor draws a bar at the end of the shown-th glyph's predecessor, or
// at the start of the first glyph when nothing is shown.
func drawCursor(dst *image.NRGBA, glyphs []raster.Glyph, shown int, fg color.NRGBA) {
	var x int
	var cell image.Rectangle
	if shown == 0 {
		cell = glyphs[0].Cell
		x = cell.Min.X
	} else {
		cell = glyphs[shown-1].Cell
		x = cell.Max.X
	}
	h := cell.Dy()
	w := max(1, h/12)
	inset := h / 10
	bar := image.Rect(x, cell.Min.Y+inset, x+w, cell.Max.Y-inset)
	draw.Draw(dst, bar, image.NewUniform(fg), image.Point{}, draw.Over)
}

// split emits one still per visible cluster, each centered on its own
// canvas.
func split(base raster.Canvas, s Spec) ([]raster.Sequence, error) {
	var out []raster.Sequence
	for _, g := range base.Glyphs {
		if g.Blank() {
			continue
		}
		c := raster.NewCanvas(s.Size, s.Size, base.Background)
		b := g.Ink.Bounds()
		off := image.Pt((s.Size-b.Dx())/2-b.Min.X, (s.Size-b.Dy())/2-b.Min.Y)
		raster.Paste(c.Img, g.Ink, off)
		out = append(out, raster.Still(c))
	}
	return out, nil
}

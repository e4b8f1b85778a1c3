// Package raster holds the pixel model shared by the render pipeline and
// draws text into it.
//
// A [Canvas] keeps content and background apart: Img holds only content
// (transparent where nothing is drawn) and Background is applied once, by
// [Flatten], when a frame is encoded. Effects therefore move and recolor
// content without ever smearing an opaque background.
package raster

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ///////////////////////////////////////////////
// Canvas
// ///////////////////////////////////////////////

// Glyph is one rendered text cluster.
type Glyph struct {
	// Text is the cluster's text.
	Text string
	// Cell spans the cluster's advance and its line's height, in canvas
	// coordinates.
	Cell image.Rectangle
	// Ink holds only this cluster's pixels; its bounds are in canvas
	// coordinates. Nil for blank clusters. Ink images are shared between
	// canvases and must not be written to.
	Ink *image.NRGBA
}

// Blank reports whether the glyph draws nothing.
func (g Glyph) Blank() bool { return g.Ink == nil }

// Canvas is an RGBA raster plus its background policy.
type Canvas struct {
	// Img is the content layer.
	Img *image.NRGBA
	// Background is composited under Img by [Flatten]. Alpha 0 keeps the
	// output transparent.
	Background color.NRGBA
	// Glyphs lists the text clusters in reading order. Nil for images.
	Glyphs []Glyph
}

// NewCanvas returns an empty w×h canvas.
func NewCanvas(w, h int, bg color.NRGBA) Canvas {
	return Canvas{Img: image.NewNRGBA(image.Rect(0, 0, w, h)), Background: bg}
}

// Bounds returns the content bounds.
func (c Canvas) Bounds() image.Rectangle { return c.Img.Bounds() }

// IsText reports whether the canvas came from text rendering.
func (c Canvas) IsText() bool { return c.Glyphs != nil }

// Clone returns a canvas whose content can be modified without touching c.
// Glyph ink is shared.
func (c Canvas) Clone() Canvas {
	img := image.NewNRGBA(c.Img.Rect)
	copy(img.Pix, c.Img.Pix)
	out := c
	out.Img = img
	if c.Glyphs != nil {
		out.Glyphs = append([]Glyph(nil), c.Glyphs...)
	}
	return out
}

// Blank returns an empty canvas with c's size and background and no glyphs.
func (c Canvas) Blank() Canvas {
	return Canvas{Img: image.NewNRGBA(c.Img.Rect), Background: c.Background}
}

// Center places c's content in the middle of a size×size canvas, cropping
// whatever does not fit. Glyphs move with the content.
func Center(c Canvas, size int) Canvas {
	b := c.Bounds()
	off := image.Pt((size-b.Dx())/2-b.Min.X, (size-b.Dy())/2-b.Min.Y)
	out := NewCanvas(size, size, c.Background)
	draw.Draw(out.Img, b.Add(off), c.Img, b.Min, draw.Src)
	if c.Glyphs != nil {
		out.Glyphs = make([]Glyph, len(c.Glyphs))
		for i, g := range c.Glyphs {
			out.Glyphs[i] = g.Translate(off)
		}
	}
	return out
}

// Translate returns g moved by off. The ink pixels are shared, not copied.
func (g Glyph) Translate(off image.Point) Glyph {
	g.Cell = g.Cell.Add(off)
	if g.Ink != nil {
		g.Ink = &image.NRGBA{Pix: g.Ink.Pix, Stride: g.Ink.Stride, Rect: g.Ink.Rect.Add(off)}
	}
	return g
}

// Paste draws src over dst with its origin moved by off.
func Paste(dst, src *image.NRGBA, off image.Point) {
	b := src.Bounds()
	draw.Draw(dst, b.Add(off), src, b.Min, draw.Over)
}

// Flatten composites the content over the background into a new image.
func Flatten(c Canvas) *image.NRGBA {
	out := image.NewNRGBA(c.Img.Rect)
	if c.Background.A == 0 {
		copy(out.Pix, c.Img.Pix)
		return out
	}
	draw.Draw(out, out.Rect, image.NewUniform(c.Background), image.Point{}, draw.Src)
	draw.Draw(out, out.Rect, c.Img, c.Img.Rect.Min, draw.Over)
	return out
}

// ///////////////////////////////////////////////
// Frames
// ///////////////////////////////////////////////

// Frame is one canvas shown for DurationMs milliseconds. Stills use 0.
type Frame struct {
	Canvas     Canvas
	DurationMs int
}

// Sequence is an ordered list of frames encoded into one artifact.
type Sequence []Frame

// Animated reports whether the sequence has more than one frame.
func (s Sequence) Animated() bool { return len(s) > 1 }

// Still wraps a canvas as a one-frame sequence.
func Still(c Canvas) Sequence { return Sequence{{Canvas: c}} }

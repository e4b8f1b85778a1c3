// Package imaging decodes uploaded images and normalizes them onto a square
// canvas.
package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strings"

	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/emojierr"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/raster"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	_ "golang.org/x/image/webp"
)

// ///////////////////////////////////////////////
// Resize Modes
// ///////////////////////////////////////////////

// ResizeMode selects how a source is fitted to the square canvas.
type ResizeMode string

const (
	// Cover scales the shorter side to the canvas and crops the center.
	Cover ResizeMode = "cover"
	// Contain scales the longer side to the canvas and pads the rest.
	Contain ResizeMode = "contain"
	// Fill stretches each axis independently.
	Fill ResizeMode = "fill"
)

// ParseResizeMode parses a mode name, case-insensitively.
func ParseResizeMode(s string) (ResizeMode, error) {
	switch m := ResizeMode(strings.ToLower(strings.TrimSpace(s))); m {
	case Cover, Contain, Fill:
		return m, nil
	}
	return "", emojierr.New(emojierr.InvalidRequest, "resize mode %q: want cover, contain or fill", s)
}

// ///////////////////////////////////////////////
// Decoding
// ///////////////////////////////////////////////

// Decode decodes a PNG, JPEG, GIF (first frame) or WEBP image and returns
// it with its format name. Dimensions are checked against maxPixels before
// pixel data is decoded.
func Decode(src []byte, maxPixels int) (image.Image, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", emojierr.Wrap(emojierr.UnsupportedImageFormat, err, "unrecognized image container")
		}
		return nil, "", emojierr.Wrap(emojierr.DecodeError, err, "read image header")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, format, emojierr.New(emojierr.InvalidRequest, "image has zero size (%dx%d)", cfg.Width, cfg.Height)
	}
	if maxPixels > 0 && cfg.Width*cfg.Height > maxPixels {
		return nil, format, emojierr.New(emojierr.InvalidRequest, "image is %dx%d, more than %d pixels", cfg.Width, cfg.Height, maxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, format, emojierr.Wrap(emojierr.DecodeError, err, "decode %s", format)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, format, emojierr.New(emojierr.InvalidRequest, "image has zero size")
	}
	return img, format, nil
}

// ///////////////////////////////////////////////
// Normalization
// ///////////////////////////////////////////////

// Normalize decodes src and fits it to a size×size canvas with bg as the
// background policy. Areas the image does not cover stay transparent in the
// content layer, so they show bg after flattening.
func Normalize(src []byte, mode ResizeMode, bg color.NRGBA, size, maxPixels int) (raster.Canvas, error) {
	img, _, err := Decode(src, maxPixels)
	if err != nil {
		return raster.Canvas{}, err
	}
	return Fit(img, mode, bg, size)
}

// Fit resizes an already decoded image onto a size×size canvas.
func Fit(img image.Image, mode ResizeMode, bg color.NRGBA, size int) (raster.Canvas, error) {
	c := raster.NewCanvas(size, size, bg)
	sb := img.Bounds()
	w, h := float64(sb.Dx()), float64(sb.Dy())

	switch mode {
	case Cover:
		// Map the source center onto the canvas center, cropping the longer
		// axis. Transform samples only the visible region.
		s := float64(size) / math.Min(w, h)
		cx := float64(sb.Min.X) + w/2
		cy := float64(sb.Min.Y) + h/2
		s2d := f64.Aff3{
			s, 0, float64(size)/2 - s*cx,
			0, s, float64(size)/2 - s*cy,
		}
		draw.CatmullRom.Transform(c.Img, s2d, img, sb, draw.Src, nil)
	case Contain:
		s := float64(size) / math.Max(w, h)
		dw := max(1, int(math.Round(w*s)))
		dh := max(1, int(math.Round(h*s)))
		dr := image.Rect((size-dw)/2, (size-dh)/2, (size-dw)/2+dw, (size-dh)/2+dh)
		draw.CatmullRom.Scale(c.Img, dr, img, sb, draw.Src, nil)
	case Fill:
		draw.CatmullRom.Scale(c.Img, c.Img.Rect, img, sb, draw.Src, nil)
	default:
		return raster.Canvas{}, emojierr.New(emojierr.InvalidRequest, "resize mode %q: want cover, contain or fill", string(mode))
	}
	return c, nil
}

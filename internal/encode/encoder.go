// Package encode turns frame sequences into PNG and GIF artifacts that fit
// a byte ceiling.
//
// A still becomes a PNG; an animation becomes a looping GIF with one global
// palette. When an encoding is too large the palette shrinks step by step;
// frames are never dropped.
package encode

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"runtime"

	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/config"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/emojierr"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/raster"
	"golang.org/x/sync/errgroup"
)

// alphaThreshold is the highest alpha encoded as transparent in a GIF.
const alphaThreshold = 128

// Encoder encodes sequences under a byte ceiling.
type Encoder struct {
	// MaxBytes is the ceiling of one artifact.
	MaxBytes int
	// PaletteSteps are the palette sizes tried in order.
	PaletteSteps []int
	// Workers bounds frame mapping parallelism; 0 means GOMAXPROCS.
	Workers int
}

// New returns an encoder configured from the render settings.
func New(cfg config.RenderConfig) *Encoder {
	return &Encoder{
		MaxBytes:     cfg.MaxArtifactBytes,
		PaletteSteps: cfg.PaletteSteps,
		Workers:      cfg.Workers,
	}
}

// Encode encodes every sequence into one artifact, numbered 1..len(seqs).
// The first sequence that cannot fit the ceiling fails the whole set with
// ArtifactTooLarge.
func (e *Encoder) Encode(seqs []raster.Sequence) ([]Artifact, error) {
	if len(seqs) == 0 {
		return nil, emojierr.New(emojierr.InvalidRequest, "nothing to encode")
	}
	out := make([]Artifact, len(seqs))
	for i, seq := range seqs {
		a, err := e.EncodeSequence(seq)
		if err != nil {
			return nil, fmt.Errorf("artifact %d of %d: %w", i+1, len(seqs), err)
		}
		a.Index, a.Total = i+1, len(seqs)
		out[i] = a
	}
	return out, nil
}

// EncodeSequence encodes one sequence: a PNG for one frame, a GIF
// otherwise. Index and Total are left for the caller.
func (e *Encoder) EncodeSequence(seq raster.Sequence) (Artifact, error) {
	if len(seq) == 0 {
		return Artifact{}, emojierr.New(emojierr.InvalidRequest, "sequence has no frames")
	}
	if seq.Animated() {
		return e.encodeGIF(seq)
	}
	return e.encodePNG(seq[0])
}

// ///////////////////////////////////////////////
// PNG
// ///////////////////////////////////////////////

var pngEncoder = png.Encoder{CompressionLevel: png.BestCompression}

func (e *Encoder) encodePNG(f raster.Frame) (Artifact, error) {
	img := raster.Flatten(f.Canvas)
	b := img.Bounds()
	a := Artifact{Mime: MimePNG, Frames: 1, Width: b.Dx(), Height: b.Dy()}

	var buf bytes.Buffer
	if err := pngEncoder.Encode(&buf, img); err != nil {
		return Artifact{}, fmt.Errorf("encode png: %w", err)
	}
	if e.fits(buf.Len()) {
		a.Data = buf.Bytes()
		return a, nil
	}

	for _, k := range e.PaletteSteps {
		pal := quantizeTo(img, k, false)
		buf.Reset()
		if err := pngEncoder.Encode(&buf, newMapper(pal, -1, false).paletted(img, colorPalette(pal))); err != nil {
			return Artifact{}, fmt.Errorf("encode paletted png: %w", err)
		}
		if e.fits(buf.Len()) {
			a.Data = buf.Bytes()
			a.Colors = len(pal)
			return a, nil
		}
	}
	return Artifact{}, emojierr.New(emojierr.ArtifactTooLarge, "png is %d bytes at the smallest palette, limit %d", buf.Len(), e.MaxBytes)
}

// ///////////////////////////////////////////////
// GIF
// ///////////////////////////////////////////////

func (e *Encoder) encodeGIF(seq raster.Sequence) (Artifact, error) {
	imgs := make([]*image.NRGBA, len(seq))
	for i, f := range seq {
		imgs[i] = raster.Flatten(f.Canvas)
	}
	b := imgs[0].Bounds()
	a := Artifact{Mime: MimeGIF, Animated: true, Frames: len(seq), Width: b.Dx(), Height: b.Dy()}

	packed, transparent := packOpaque(imgs)
	size := 0
	for _, k := range e.PaletteSteps {
		pal, ti := gifPalette(packed, k, transparent)
		data, err := e.gifAt(seq, imgs, pal, ti)
		if err != nil {
			return Artifact{}, err
		}
		size = len(data)
		if e.fits(size) {
			a.Data = data
			a.Colors = len(pal)
			return a, nil
		}
	}
	return Artifact{}, emojierr.New(emojierr.ArtifactTooLarge, "gif with %d frames is %d bytes at the smallest palette, limit %d", len(seq), size, e.MaxBytes)
}

// gifAt encodes the frames over the global palette pal. ti is the
// transparent index, or -1 when no pixel is transparent.
func (e *Encoder) gifAt(seq raster.Sequence, imgs []*image.NRGBA, pal []color.NRGBA, ti int) ([]byte, error) {
	cp := colorPalette(pal)
	disposal := byte(gif.DisposalNone)
	if ti >= 0 {
		disposal = gif.DisposalBackground
	}
	b := imgs[0].Bounds()
	g := &gif.GIF{
		Image:     make([]*image.Paletted, len(imgs)),
		Delay:     make([]int, len(imgs)),
		Disposal:  make([]byte, len(imgs)),
		LoopCount: 0,
		// A palette color model makes the encoder write one global table.
		Config: image.Config{ColorModel: cp, Width: b.Dx(), Height: b.Dy()},
	}

	var eg errgroup.Group
	eg.SetLimit(workers(e.Workers))
	for i := range imgs {
		eg.Go(func() error {
			g.Image[i] = newMapper(pal, ti, true).paletted(imgs[i], cp)
			g.Delay[i] = seq[i].DurationMs / 10
			g.Disposal[i] = disposal
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if ti >= 0 {
		g.BackgroundIndex = uint8(ti)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		return nil, fmt.Errorf("encode gif: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Encoder) fits(n int) bool { return e.MaxBytes <= 0 || n <= e.MaxBytes }

func workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

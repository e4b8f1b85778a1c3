// Package render runs one render request end to end: validate, rasterize
// or normalize, apply the effect, encode.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/config"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/effects"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/emojierr"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/encode"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/fonts"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/imaging"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/logger"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/raster"
)

// Renderer renders requests. It is safe for concurrent use; the font
// registry is the only state shared between renders.
type Renderer struct {
	cfg    *config.Config
	fonts  *fonts.Registry
	enc    *encode.Encoder
	logger *slog.Logger
}

// New returns a renderer over cfg and the given font registry.
func New(cfg *config.Config, reg *fonts.Registry, logger *slog.Logger) *Renderer {
	return &Renderer{
		cfg:    cfg,
		fonts:  reg,
		enc:    encode.New(cfg.Render),
		logger: logger,
	}
}

// Render produces the artifacts for req. Either every artifact is returned
// or none is.
func (r *Renderer) Render(req Request) ([]encode.Artifact, error) {
	start := time.Now()
	var (
		arts  []encode.Artifact
		attrs []any
		err   error
	)
	switch q := req.(type) {
	case TextRequest:
		arts, attrs, err = r.renderText(q)
	case ImageRequest:
		arts, attrs, err = r.renderImage(q)
	default:
		err = emojierr.New(emojierr.InvalidRequest, "unsupported request type %T", req)
	}

	attrs = append(attrs, "elapsed", time.Since(start).Round(time.Millisecond))
	if err != nil {
		r.logger.Warn("render failed", append(attrs, logger.ErrorAttrs(err)...)...)
		return nil, err
	}
	frames, size := 0, 0
	for _, a := range arts {
		frames += a.Frames
		size += len(a.Data)
	}
	r.logger.Info("render complete", append(attrs, "artifacts", len(arts), "frames", frames, "bytes", size)...)
	return arts, nil
}

// ///////////////////////////////////////////////
// Text
// ///////////////////////////////////////////////

func (r *Renderer) renderText(q TextRequest) ([]encode.Artifact, []any, error) {
	attrs := []any{"request", "text", "effect", orDefault(q.Effect, effects.None.String())}
	if err := q.validate(); err != nil {
		return nil, attrs, err
	}
	kind, err := effects.ParseKind(q.Effect)
	if err != nil {
		return nil, attrs, err
	}

	h, err := r.fonts.Resolve(orDefault(q.Font, r.cfg.Text.Font))
	if err != nil {
		return nil, attrs, err
	}
	attrs = append(attrs, "font", h.ID, "font_source", h.Source.String())

	fg, err := raster.ParseColor(orDefault(q.TextColor, r.cfg.Text.Color))
	if err != nil {
		return nil, attrs, fmt.Errorf("text color: %w", err)
	}
	bg, err := raster.ParseColor(orDefault(q.Background, r.cfg.Text.Background))
	if err != nil {
		return nil, attrs, fmt.Errorf("background: %w", err)
	}

	text := BreakLines(q.Text, q.LineBreakAt)
	spec, err := effects.NewSpec(kind, effects.TextTarget, r.cfg, text, fg)
	if err != nil {
		return nil, attrs, err
	}

	fit, opts, avail := effects.TextLayout(kind, r.cfg.Render.CanvasSize, r.cfg.Text)
	size, err := raster.FitSize(h, text, fit, avail, r.cfg.Text.MinSize, r.cfg.Text.MaxSize)
	if err != nil {
		return nil, attrs, err
	}
	attrs = append(attrs, "size_pt", size)

	base, err := raster.RenderText(h, text, float64(size), fg, bg, opts)
	if err != nil {
		return nil, attrs, err
	}
	arts, err := r.apply(base, spec)
	return arts, attrs, err
}

// ///////////////////////////////////////////////
// Image
// ///////////////////////////////////////////////

func (r *Renderer) renderImage(q ImageRequest) ([]encode.Artifact, []any, error) {
	attrs := []any{"request", "image", "effect", orDefault(q.Effect, effects.None.String())}
	if err := q.validate(); err != nil {
		return nil, attrs, err
	}
	kind, err := effects.ParseKind(q.Effect)
	if err != nil {
		return nil, attrs, err
	}
	spec, err := effects.NewSpec(kind, effects.ImageTarget, r.cfg, "", color.NRGBA{})
	if err != nil {
		return nil, attrs, err
	}
	mode, err := imaging.ParseResizeMode(orDefault(q.Resize, r.cfg.Image.Resize))
	if err != nil {
		return nil, attrs, err
	}
	bg, err := raster.ParseColor(orDefault(q.Background, r.cfg.Image.Background))
	if err != nil {
		return nil, attrs, fmt.Errorf("background: %w", err)
	}

	img, format, err := imaging.Decode(q.Source, r.cfg.Image.MaxPixels)
	if err != nil {
		return nil, attrs, err
	}
	b := img.Bounds()
	attrs = append(attrs, "format", format, "source_size", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()), "resize", string(mode))

	base, err := imaging.Fit(img, mode, bg, r.cfg.Render.CanvasSize)
	if err != nil {
		return nil, attrs, err
	}
	arts, err := r.apply(base, spec)
	return arts, attrs, err
}

// ///////////////////////////////////////////////
// Effects and Encoding
// ///////////////////////////////////////////////

// apply runs the effect and encodes the result. A scroll whose segments are
// too large is re-split with half the frame budget until it fits or the
// budget reaches two frames.
func (r *Renderer) apply(base raster.Canvas, spec effects.Spec) ([]encode.Artifact, error) {
	seqs, err := effects.Apply(base, spec)
	if err != nil {
		return nil, err
	}
	arts, err := r.enc.Encode(seqs)
	if spec.Kind != effects.Scroll {
		return arts, err
	}

	var all raster.Sequence
	for _, s := range seqs {
		all = append(all, s...)
	}
	budget := spec.MaxFrames
	for errors.Is(err, emojierr.ErrArtifactTooLarge) && budget > 2 {
		budget = max(budget/2, 2)
		r.logger.Debug("scroll segment too large, splitting further", "frames", len(all), "budget", budget)
		arts, err = r.enc.Encode(effects.Segment(all, budget))
	}
	return arts, err
}

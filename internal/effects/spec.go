package effects

import (
	"image/color"
	"strings"

	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/config"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/emojierr"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/fonts"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/raster"
)

// Spec is the resolved parameter set of one effect application. Only the
// fields of Spec.Kind are meaningful.
type Spec struct {
	Kind   Kind
	Target Target
	// Size is the edge length of every output frame.
	Size int
	// FrameCount is the length of fixed-length effects.
	FrameCount int
	DurationMs int
	// MaxFrames is the frame budget of one sequence. Scroll splits into
	// segments of at most MaxFrames; typing compresses to fit it.
	MaxFrames int
	// Workers bounds frame parallelism; 0 means GOMAXPROCS.
	Workers int

	StepPx int
	Tiles  int

	Cycles    int
	TintAlpha uint8
	BaseHue   float64

	Amplitude  int
	Period     int
	GlyphPhase float64
	Wavelength int

	GlyphsPerStep  int
	FramesPerGlyph int
	HoldFrames     int
	Cursor         bool
	Foreground     color.NRGBA

	MinScale float64
	Grow     GrowMode
}

// NewSpec derives the spec for kind on target from cfg. text is the
// request text (empty for images) and fg its color; both feed
// text-dependent parameters such as marquee tiles and party's base hue.
func NewSpec(kind Kind, target Target, cfg *config.Config, text string, fg color.NRGBA) (Spec, error) {
	if !kind.Supports(target) {
		return Spec{}, emojierr.New(emojierr.UnsupportedEffectForRequestKind, "%s does not support %s requests", kind, target)
	}
	e := cfg.Effects
	s := Spec{
		Kind:       kind,
		Target:     target,
		Size:       cfg.Render.CanvasSize,
		MaxFrames:  cfg.Render.MaxFrames,
		Workers:    cfg.Render.Workers,
		Foreground: fg,
	}

	clusters, inked := countClusters(text)
	switch kind {
	case Scroll:
		s.DurationMs = e.Scroll.FrameDurationMs
		s.StepPx = e.Scroll.StepPx
	case Marquee:
		s.FrameCount = e.Marquee.FrameCount
		s.DurationMs = e.Marquee.FrameDurationMs
		s.Tiles = min(max(clusters, e.Marquee.MinTiles), e.Marquee.MaxTiles)
	case Party:
		s.FrameCount = e.Party.FrameCount
		s.DurationMs = e.Party.FrameDurationMs
		s.Cycles = e.Party.Cycles
		s.TintAlpha = uint8(e.Party.TintAlpha)
		if target == TextTarget {
			s.BaseHue = raster.Hue(fg)
		}
	case Rotate:
		s.FrameCount = e.Rotate.FrameCount
		s.DurationMs = e.Rotate.FrameDurationMs
	case Shake:
		s.FrameCount = e.Shake.FrameCount
		s.DurationMs = e.Shake.FrameDurationMs
		s.Amplitude = e.Shake.Amplitude
		s.Period = e.Shake.PeriodFrames
	case Wave:
		s.FrameCount = e.Wave.FrameCount
		s.DurationMs = e.Wave.FrameDurationMs
		s.Amplitude = e.Wave.Amplitude
		s.Period = e.Wave.PeriodFrames
		s.GlyphPhase = e.Wave.GlyphPhase
		s.Wavelength = e.Wave.Wavelength
	case Typing:
		s.DurationMs = e.Typing.FrameDurationMs
		s.GlyphsPerStep = e.Typing.GlyphsPerStep
		s.FramesPerGlyph = e.Typing.FramesPerGlyph
		s.HoldFrames = e.Typing.HoldFrames
		s.Cursor = e.Typing.Cursor
	case Billboard:
		s.DurationMs = e.Typing.FrameDurationMs
		s.GlyphsPerStep = 1
		s.FramesPerGlyph = 1
		s.HoldFrames = e.Typing.HoldFrames
	case Grow:
		s.FrameCount = e.Grow.FrameCount
		s.DurationMs = e.Grow.FrameDurationMs
		s.MinScale = e.Grow.MinScale
		mode := e.Grow.TextMode
		if target == ImageTarget {
			mode = e.Grow.ImageMode
		}
		m, err := ParseGrowMode(mode)
		if err != nil {
			return Spec{}, err
		}
		s.Grow = m
	case Split:
		if inked == 0 {
			return Spec{}, emojierr.New(emojierr.InvalidRequest, "split needs at least one visible character")
		}
		if inked > e.Split.MaxGlyphs {
			return Spec{}, emojierr.New(emojierr.InvalidRequest, "split supports at most %d characters, got %d", e.Split.MaxGlyphs, inked)
		}
	}
	return s, nil
}

// countClusters returns the number of clusters in text, ignoring line
// breaks, and how many of them are not whitespace.
func countClusters(text string) (all, inked int) {
	for _, c := range fonts.Clusters(strings.ReplaceAll(text, "\n", "")) {
		all++
		if strings.TrimSpace(c) != "" {
			inked++
		}
	}
	return all, inked
}

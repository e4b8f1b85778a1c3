package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"log/slog"
	"strings"
	"testing"

	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/config"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/emojierr"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/encode"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/fonts"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/logger"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/paths"
)

// ///////////////////////////////////////////////
// Helpers
// ///////////////////////////////////////////////

func newRenderer(t *testing.T, mutate func(*config.Config)) *Renderer {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Fonts.AllowRemote = false
	if mutate != nil {
		mutate(cfg)
	}
	reg, err := fonts.NewRegistry(cfg.Fonts, paths.DataDir{Root: t.TempDir()}, logger.Discard())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return New(cfg, reg, logger.Discard())
}

func solidPNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

var (
	red   = color.NRGBA{R: 0xff, A: 0xff}
	white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// near reports whether c is within a small per-channel distance of want;
// palette quantization may shift colors slightly.
func near(c color.Color, want color.NRGBA) bool {
	got := color.NRGBAModel.Convert(c).(color.NRGBA)
	d := func(a, b uint8) bool { return int(a)-int(b) <= 24 && int(b)-int(a) <= 24 }
	return d(got.R, want.R) && d(got.G, want.G) && d(got.B, want.B) && d(got.A, want.A)
}

// ///////////////////////////////////////////////
// Examples
// ///////////////////////////////////////////////

func TestRenderTextNone(t *testing.T) {
	r := newRenderer(t, nil)
	arts, err := r.Render(TextRequest{Text: "hi", Effect: "none", Font: "nanumgothic", TextColor: "black", Background: "transparent"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(arts) != 1 {
		t.Fatalf("artifacts = %d, want 1", len(arts))
	}
	a := arts[0]
	if a.Mime != encode.MimePNG || a.Animated || a.Total != 1 || a.Index != 1 {
		t.Errorf("artifact = %+v", a)
	}
	img, err := png.Decode(bytes.NewReader(a.Data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 128 || b.Dy() != 128 {
		t.Errorf("bounds = %v", b)
	}
	if _, _, _, al := img.At(0, 0).RGBA(); al != 0 {
		t.Error("corner should be transparent")
	}
}

func TestRenderImageContainRotate(t *testing.T) {
	r := newRenderer(t, nil)
	arts, err := r.Render(ImageRequest{
		Source:     solidPNG(t, 400, 200, red),
		Resize:     "contain",
		Background: "white",
		Effect:     "rotate",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(arts) != 1 || !arts[0].Animated || arts[0].Mime != encode.MimeGIF {
		t.Fatalf("artifacts = %+v", arts)
	}

	g, err := gif.DecodeAll(bytes.NewReader(arts[0].Data))
	if err != nil {
		t.Fatalf("gif.DecodeAll: %v", err)
	}
	if g.Config.Width != 128 || g.Config.Height != 128 {
		t.Errorf("size = %dx%d", g.Config.Width, g.Config.Height)
	}
	first := g.Image[0]
	// Unrotated: a 128×64 red band centered on white.
	for _, p := range []struct {
		x, y int
		want color.NRGBA
	}{
		{64, 64, red}, {2, 40, red}, {125, 90, red},
		{64, 10, white}, {64, 120, white}, {0, 0, white},
	} {
		if got := first.At(p.x, p.y); !near(got, p.want) {
			t.Errorf("frame 0 (%d,%d) = %v, want %v", p.x, p.y, got, p.want)
		}
	}
	// A quarter turn stands the band upright.
	q := g.Image[len(g.Image)/4]
	if got := q.At(4, 64); !near(got, white) {
		t.Errorf("quarter turn (4,64) = %v, want white", got)
	}
	if got := q.At(64, 4); !near(got, red) {
		t.Errorf("quarter turn (64,4) = %v, want red", got)
	}
}

// ///////////////////////////////////////////////
// Errors
// ///////////////////////////////////////////////

func TestRenderErrors(t *testing.T) {
	r := newRenderer(t, nil)
	img := solidPNG(t, 10, 10, red)

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{"empty text", TextRequest{Text: ""}, emojierr.ErrInvalidRequest},
		{"blank text", TextRequest{Text: " \n "}, emojierr.ErrInvalidRequest},
		{"unknown font", TextRequest{Text: "hi", Font: "NotAFont"}, emojierr.ErrUnknownFont},
		{"unknown effect", TextRequest{Text: "hi", Effect: "explode"}, emojierr.ErrInvalidRequest},
		{"bad color", TextRequest{Text: "hi", TextColor: "#12"}, emojierr.ErrInvalidRequest},
		{"negative line break", TextRequest{Text: "hi", LineBreakAt: -1}, emojierr.ErrInvalidRequest},
		{"split too long", TextRequest{Text: strings.Repeat("a", 21), Effect: "split"}, emojierr.ErrInvalidRequest},
		{"typing image", ImageRequest{Source: img, Effect: "typing"}, emojierr.ErrUnsupportedEffectForRequestKind},
		{"scroll image", ImageRequest{Source: img, Effect: "scroll"}, emojierr.ErrUnsupportedEffectForRequestKind},
		{"billboard image", ImageRequest{Source: img, Effect: "billboard"}, emojierr.ErrUnsupportedEffectForRequestKind},
		{"empty image", ImageRequest{}, emojierr.ErrInvalidRequest},
		{"not an image", ImageRequest{Source: []byte("GIF? no")}, emojierr.ErrUnsupportedImageFormat},
		{"corrupt image", ImageRequest{Source: img[:30]}, emojierr.ErrDecode},
		{"bad resize", ImageRequest{Source: img, Resize: "zoom"}, emojierr.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arts, err := r.Render(tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if arts != nil {
				t.Error("no artifacts should be returned on error")
			}
		})
	}
}

// ///////////////////////////////////////////////
// Effects
// ///////////////////////////////////////////////

func TestRenderSplit(t *testing.T) {
	r := newRenderer(t, nil)
	arts, err := r.Render(TextRequest{Text: "안녕 hi", Effect: "split"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(arts) != 4 {
		t.Fatalf("artifacts = %d, want 4", len(arts))
	}
	for i, a := range arts {
		if a.Animated || a.Index != i+1 || a.Total != 4 || a.Mime != encode.MimePNG {
			t.Errorf("artifact %d = %+v", i, a)
		}
	}
}

func TestRenderSplitKeepsGraphemeClusters(t *testing.T) {
	r := newRenderer(t, nil)
	for _, text := range []string{"कि", "กิ", "👍🏽", "🇰🇷"} {
		arts, err := r.Render(TextRequest{Text: text, Effect: "split"})
		if err != nil {
			t.Fatalf("Render(%q): %v", text, err)
		}
		if len(arts) != 1 {
			t.Errorf("Render(%q) artifacts = %d, want 1", text, len(arts))
		}
	}
}

func TestRenderBillboard(t *testing.T) {
	r := newRenderer(t, nil)
	arts, err := r.Render(TextRequest{Text: "hi", Effect: "billboard"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(arts) != 1 || !arts[0].Animated || arts[0].Mime != encode.MimeGIF {
		t.Fatalf("artifacts = %+v, want one animated gif", arts)
	}
}

func TestRenderScrollSplitsIntoSegments(t *testing.T) {
	r := newRenderer(t, nil)
	arts, err := r.Render(TextRequest{Text: "a fairly long line of scrolling text", Effect: "scroll"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(arts) < 2 {
		t.Fatalf("artifacts = %d, want > 1", len(arts))
	}
	for i, a := range arts {
		if a.Total != len(arts) || a.Index != i+1 {
			t.Errorf("artifact %d numbered %d/%d", i, a.Index, a.Total)
		}
		g, err := gif.DecodeAll(bytes.NewReader(a.Data))
		if err != nil {
			t.Fatalf("artifact %d: %v", i, err)
		}
		if len(g.Image) > 50 {
			t.Errorf("artifact %d has %d frames", i, len(g.Image))
		}
	}
}

func TestRenderScrollResplitsWhenTooLarge(t *testing.T) {
	req := TextRequest{Text: "re-split me when the artifacts get too big", Effect: "scroll"}
	base := newRenderer(t, func(c *config.Config) { c.Render.PaletteSteps = []int{256} })
	first, err := base.Render(req)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	largest := 0
	for _, a := range first {
		largest = max(largest, len(a.Data))
	}

	limit := largest * 6 / 10
	r := newRenderer(t, func(c *config.Config) {
		c.Render.PaletteSteps = []int{256}
		c.Render.MaxArtifactBytes = limit
	})
	arts, err := r.Render(req)
	if err != nil {
		t.Fatalf("Render with %d byte limit: %v", limit, err)
	}
	if len(arts) <= len(first) {
		t.Errorf("artifacts = %d, want more than %d", len(arts), len(first))
	}
	frames := 0
	for _, a := range arts {
		if len(a.Data) > limit {
			t.Errorf("artifact %d is %d bytes, limit %d", a.Index, len(a.Data), limit)
		}
		frames += a.Frames
	}
	want := 0
	for _, a := range first {
		want += a.Frames
	}
	if frames != want {
		t.Errorf("frames = %d, want %d (none dropped)", frames, want)
	}
}

func TestRenderTextEffects(t *testing.T) {
	r := newRenderer(t, nil)
	tests := []struct {
		effect    string
		artifacts int
		animated  bool
	}{
		{"party", 1, true},
		{"rotate", 1, true},
		{"shake", 1, true},
		{"wave", 1, true},
		{"typing", 1, true},
		{"grow", 1, true},
		{"marquee", 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.effect, func(t *testing.T) {
			arts, err := r.Render(TextRequest{Text: "yay", Effect: tt.effect, TextColor: "#3366ff", Background: "white"})
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if len(arts) != tt.artifacts {
				t.Fatalf("artifacts = %d, want %d", len(arts), tt.artifacts)
			}
			for _, a := range arts {
				if a.Animated != tt.animated {
					t.Errorf("animated = %v", a.Animated)
				}
				if len(a.Data) > 128*1024 {
					t.Errorf("artifact is %d bytes", len(a.Data))
				}
			}
		})
	}
}

func TestRenderImageEffects(t *testing.T) {
	r := newRenderer(t, nil)
	src := solidPNG(t, 64, 32, red)
	for _, effect := range []string{"none", "rotate", "shake", "party", "wave", "grow"} {
		t.Run(effect, func(t *testing.T) {
			arts, err := r.Render(ImageRequest{Source: src, Effect: effect})
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if len(arts) != 1 || arts[0].Animated != (effect != "none") {
				t.Errorf("artifacts = %+v", arts)
			}
		})
	}
}

func TestRenderDeterministic(t *testing.T) {
	r := newRenderer(t, nil)
	req := TextRequest{Text: "두번", Effect: "wave", Background: "#ffee00"}
	a, err := r.Render(req)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b, _ := r.Render(req)
	if !bytes.Equal(a[0].Data, b[0].Data) {
		t.Error("identical requests produced different bytes")
	}
}

func TestRenderLogsOneLine(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(t, nil)
	r.logger = slog.New(slog.NewTextHandler(&buf, nil))

	if _, err := r.Render(TextRequest{Text: "hi"}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if strings.Count(out, "\n") != 1 || !strings.Contains(out, "render complete") {
		t.Errorf("log output = %q", out)
	}
	for _, key := range []string{"effect=none", "font=nanumgothic", "artifacts=1"} {
		if !strings.Contains(out, key) {
			t.Errorf("log line missing %q: %s", key, out)
		}
	}
}

// ///////////////////////////////////////////////
// Line Breaks
// ///////////////////////////////////////////////

func TestBreakLines(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"abcdef", 0, "abcdef"},
		{"abcdef", 2, "ab\ncd\nef"},
		{"abcde", 2, "ab\ncd\ne"},
		{"안녕하세요", 3, "안녕하\n세요"},
		{"ab\ncdef", 3, "ab\ncde\nf"},
	}
	for _, tt := range tests {
		if got := BreakLines(tt.in, tt.n); got != tt.want {
			t.Errorf("BreakLines(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

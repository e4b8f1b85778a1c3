package fonts

import (
	"fmt"
	"image"
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"
)

// Handle is a loaded, read-only font. It is safe for concurrent use; every
// [Handle.Face] call returns a face owned by the caller.
type Handle struct {
	ID     string
	Source Source
	font   *opentype.Font
}

// Face returns a new face at sizePt (72 DPI, so points equal pixels). The
// caller must Close it and must not share it across goroutines.
func (h *Handle) Face(sizePt float64) (font.Face, error) {
	face, err := opentype.NewFace(h.font, &opentype.FaceOptions{
		Size:    sizePt,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font %s: face at %gpt: %w", h.ID, sizePt, err)
	}
	return face, nil
}

// ///////////////////////////////////////////////
// Metrics
// ///////////////////////////////////////////////

// Metrics is the measured layout of a (possibly multi-line) text.
type Metrics struct {
	// Width is the widest line advance; Height spans the first ascent to the
	// last descent.
	Width, Height int
	Ascent        int
	Descent       int
	LineHeight    int
	Lines         []Line
}

// Line is one measured line of text.
type Line struct {
	Width    int
	Clusters []Cluster
}

// Cluster is one visual glyph cluster within a line.
type Cluster struct {
	Text string
	// X is the pen position relative to the line start, after kerning.
	X       int
	Advance int
	// Ink is the drawn bounds relative to (X, baseline). Empty for spaces.
	Ink image.Rectangle
}

// Blank reports whether the cluster draws nothing.
func (c Cluster) Blank() bool {
	return c.Ink.Empty() || strings.TrimSpace(c.Text) == ""
}

// Measure lays out text at sizePt. Lines split on '\n'; each line is
// advanced per cluster (see [Clusters]) with kerning between clusters.
func (h *Handle) Measure(text string, sizePt float64) (Metrics, error) {
	face, err := h.Face(sizePt)
	if err != nil {
		return Metrics{}, err
	}
	defer face.Close()
	return measureFace(face, text), nil
}

func measureFace(face font.Face, text string) Metrics {
	fm := face.Metrics()
	m := Metrics{
		Ascent:     fm.Ascent.Ceil(),
		Descent:    fm.Descent.Ceil(),
		LineHeight: fm.Height.Ceil(),
	}

	for _, raw := range strings.Split(text, "\n") {
		var line Line
		pen := fixed.Int26_6(0)
		prev := rune(-1)
		for _, c := range Clusters(raw) {
			first, _ := utf8.DecodeRuneInString(c)
			if prev >= 0 {
				pen += face.Kern(prev, first)
			}
			bounds, advance := font.BoundString(face, c)
			line.Clusters = append(line.Clusters, Cluster{
				Text:    c,
				X:       pen.Round(),
				Advance: advance.Round(),
				Ink: image.Rect(
					bounds.Min.X.Floor(), bounds.Min.Y.Floor(),
					bounds.Max.X.Ceil(), bounds.Max.Y.Ceil(),
				),
			})
			pen += advance
			prev, _ = utf8.DecodeLastRuneInString(c)
		}
		line.Width = pen.Ceil()
		if line.Width > m.Width {
			m.Width = line.Width
		}
		m.Lines = append(m.Lines, line)
	}
	m.Height = m.Ascent + m.Descent + (len(m.Lines)-1)*m.LineHeight
	return m
}

// ClusterCount returns the number of clusters over all lines.
func (m Metrics) ClusterCount() int {
	n := 0
	for _, l := range m.Lines {
		n += len(l.Clusters)
	}
	return n
}

// ///////////////////////////////////////////////
// Clusters
// ///////////////////////////////////////////////

// Clusters splits s into extended grapheme clusters after NFC
// normalization, so conjoining Hangul jamo compose into syllables and a
// base with its marks, an emoji with its modifiers, or a flag pair stays
// whole. Each cluster is measured and revealed as one visual glyph.
func Clusters(s string) []string {
	s = norm.NFC.String(s)
	var out []string
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		out = append(out, cluster)
	}
	return out
}

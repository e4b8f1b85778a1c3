package render

import (
	"strings"

	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/emojierr"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/fonts"
)

// Request is a fully resolved render request: a [TextRequest] or an
// [ImageRequest].
type Request interface {
	request()
}

// TextRequest renders a short text. Empty optional fields take the
// [text] defaults from the configuration.
type TextRequest struct {
	Text       string
	Effect     string
	Font       string
	TextColor  string
	Background string
	// LineBreakAt breaks the text after every N clusters; 0 keeps it as is.
	LineBreakAt int
}

// ImageRequest renders an uploaded image. Empty optional fields take the
// [image] defaults from the configuration.
type ImageRequest struct {
	Source     []byte
	Resize     string
	Background string
	Effect     string
}

func (TextRequest) request()  {}
func (ImageRequest) request() {}

// BreakLines inserts a line break after every n clusters of each line of
// text. n <= 0 returns text unchanged.
func BreakLines(text string, n int) string {
	if n <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		cl := fonts.Clusters(line)
		var b strings.Builder
		for j, c := range cl {
			if j > 0 && j%n == 0 {
				b.WriteByte('\n')
			}
			b.WriteString(c)
		}
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}

func (r TextRequest) validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return emojierr.New(emojierr.InvalidRequest, "text is empty")
	}
	if r.LineBreakAt < 0 {
		return emojierr.New(emojierr.InvalidRequest, "line break %d is negative", r.LineBreakAt)
	}
	return nil
}

func (r ImageRequest) validate() error {
	if len(r.Source) == 0 {
		return emojierr.New(emojierr.InvalidRequest, "image source is empty")
	}
	return nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

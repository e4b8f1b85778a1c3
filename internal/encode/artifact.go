package encode

import (
	"fmt"
	"strings"
	"unicode"
)

// Mime types of encoded artifacts.
const (
	MimePNG = "image/png"
	MimeGIF = "image/gif"
)

// Artifact is one encoded output file.
type Artifact struct {
	Data     []byte
	Mime     string
	Animated bool
	// Index is 1-based within the set; Total is the set size.
	Index, Total int
	Frames       int
	Width        int
	Height       int
	// Colors is the palette size used, 0 for truecolor PNG.
	Colors int
}

// Ext returns the file extension without the dot.
func (a Artifact) Ext() string {
	if a.Mime == MimeGIF {
		return "gif"
	}
	return "png"
}

// FileName returns "base.ext" for a single artifact and "base_<index>.ext"
// for a member of a larger set.
func (a Artifact) FileName(base string) string {
	if a.Total <= 1 {
		return base + "." + a.Ext()
	}
	return fmt.Sprintf("%s_%d.%s", base, a.Index, a.Ext())
}

// ///////////////////////////////////////////////
// Names
// ///////////////////////////////////////////////

// SanitizeFileName reduces s to letters (any script, including Hangul),
// digits, and single underscores, at most 50 runes. Spaces become
// underscores. Returns "emoji" when nothing is left.
func SanitizeFileName(s string) string {
	var b strings.Builder
	for _, r := range strings.ReplaceAll(s, " ", "_") {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '_':
			if !strings.HasSuffix(b.String(), "_") {
				b.WriteRune(r)
			}
		}
	}
	out := []rune(strings.Trim(b.String(), "_"))
	if len(out) > 50 {
		out = out[:50]
	}
	if len(out) == 0 {
		return "emoji"
	}
	return string(out)
}

// SanitizeEmojiName applies Slack's emoji name rules: lowercase ASCII
// letters, digits, '_' and '-', starting with a letter, at most 100
// characters. Returns "custom_emoji" when nothing is left.
func SanitizeEmojiName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.ReplaceAll(s, " ", "_")) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out != "" && (out[0] < 'a' || out[0] > 'z') {
		out = "e_" + out
	}
	if len(out) > 100 {
		out = out[:100]
	}
	if out == "" {
		return "custom_emoji"
	}
	return out
}

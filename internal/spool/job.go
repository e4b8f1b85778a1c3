// Package spool renders job files dropped into a watched directory. A job is
// a small TOML file describing one text or image render; artifacts land in
// the output directory and the job file is moved to done/ or failed/.
package spool

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/emojierr"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/encode"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/migrate"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/render"
)

// ///////////////////////////////////////////////
// Types
// ///////////////////////////////////////////////

// Job is one spooled render. Exactly one of Text and Image is set.
//
//	version = 1
//	name = "hello"
//
//	[text]
//	text = "hello"
//	effect = "party"
type Job struct {
	Version int `toml:"version"`
	// Name is the artifact base name; empty derives it from the text or the
	// job file name.
	Name  string    `toml:"name"`
	Text  *TextJob  `toml:"text"`
	Image *ImageJob `toml:"image"`
}

// TextJob mirrors [render.TextRequest].
type TextJob struct {
	Text        string `toml:"text"`
	Effect      string `toml:"effect"`
	Font        string `toml:"font"`
	Color       string `toml:"color"`
	Background  string `toml:"background"`
	LineBreakAt int    `toml:"line_break_at"`
}

// ImageJob mirrors [render.ImageRequest]. Path is resolved against the
// directory holding the job file.
type ImageJob struct {
	Path       string `toml:"path"`
	Resize     string `toml:"resize"`
	Background string `toml:"background"`
	Effect     string `toml:"effect"`
}

// ///////////////////////////////////////////////
// Parsing
// ///////////////////////////////////////////////

// ParseJob decodes a job file, migrating older schema versions first.
// Unknown keys are rejected so that typos do not silently fall back to
// defaults.
func ParseJob(data []byte) (Job, error) {
	data, _, err := migrate.Job.Upgrade(data)
	if err != nil {
		return Job{}, emojierr.Wrap(emojierr.InvalidRequest, err, "job file")
	}

	var j Job
	md, err := toml.Decode(string(data), &j)
	if err != nil {
		return Job{}, emojierr.Wrap(emojierr.InvalidRequest, err, "job file")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Job{}, emojierr.New(emojierr.InvalidRequest, "job file: unknown keys %s", strings.Join(keys, ", "))
	}

	switch {
	case j.Text == nil && j.Image == nil:
		return Job{}, emojierr.New(emojierr.InvalidRequest, "job file: one of [text] or [image] is required")
	case j.Text != nil && j.Image != nil:
		return Job{}, emojierr.New(emojierr.InvalidRequest, "job file: [text] and [image] are mutually exclusive")
	}
	return j, nil
}

// Request converts the job into a render request. dir is the directory the
// job file was read from.
func (j Job) Request(dir string) (render.Request, error) {
	if j.Text != nil {
		return render.TextRequest{
			Text:        j.Text.Text,
			Effect:      j.Text.Effect,
			Font:        j.Text.Font,
			TextColor:   j.Text.Color,
			Background:  j.Text.Background,
			LineBreakAt: j.Text.LineBreakAt,
		}, nil
	}

	if strings.TrimSpace(j.Image.Path) == "" {
		return nil, emojierr.New(emojierr.InvalidRequest, "job file: image path is empty")
	}
	p := j.Image.Path
	if !filepath.IsAbs(p) {
		p = filepath.Join(dir, filepath.FromSlash(p))
	}
	src, err := os.ReadFile(p)
	if err != nil {
		return nil, emojierr.Wrap(emojierr.InvalidRequest, err, "read image %s", j.Image.Path)
	}
	return render.ImageRequest{
		Source:     src,
		Resize:     j.Image.Resize,
		Background: j.Image.Background,
		Effect:     j.Image.Effect,
	}, nil
}

// BaseName returns the sanitized artifact base name for a job read from
// file: the explicit name, else the text, else the job file stem.
func (j Job) BaseName(file string) string {
	switch {
	case strings.TrimSpace(j.Name) != "":
		return encode.SanitizeFileName(j.Name)
	case j.Text != nil:
		return encode.SanitizeFileName(j.Text.Text)
	}
	return encode.SanitizeFileName(stem(file))
}

// stem returns the base name of file without its extension.
func stem(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// String is used in log lines.
func (j Job) String() string {
	if j.Text != nil {
		return fmt.Sprintf("text %q", j.Text.Text)
	}
	return fmt.Sprintf("image %s", j.Image.Path)
}

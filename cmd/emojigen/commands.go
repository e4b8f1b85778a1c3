package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/atomicfile"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/encode"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/fonts"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/logger"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/spool"
)

// ///////////////////////////////////////////////
// render
// ///////////////////////////////////////////////

// renderFlags holds the parsed flags of `emojigen render`.
type renderFlags struct {
	text       string
	image      string
	effect     string
	font       string
	color      string
	background string
	resize     string
	lineBreak  int
	out        string
	name       string
}

// parseRenderFlags parses args into a job. Positional arguments form the
// text when -text is empty.
func parseRenderFlags(e *env, args []string) (spool.Job, renderFlags, error) {
	var f renderFlags
	set := flag.NewFlagSet("render", flag.ContinueOnError)
	set.SetOutput(e.stderr)
	set.StringVar(&f.text, "text", "", "Text to render")
	set.StringVar(&f.image, "image", "", "Image file to render instead of text")
	set.StringVar(&f.effect, "effect", "", "Effect: none, scroll, marquee, party, rotate, shake, wave, typing, billboard, grow, split")
	set.StringVar(&f.font, "font", "", "Font id (default from config)")
	set.StringVar(&f.color, "color", "", "Text color (#RRGGBB, #RRGGBBAA, or a name)")
	set.StringVar(&f.background, "bg", "", "Background color")
	set.StringVar(&f.resize, "resize", "", "Image resize mode: cover, contain, fill")
	set.IntVar(&f.lineBreak, "break", 0, "Insert a line break after every N characters")
	set.StringVar(&f.out, "out", ".", "Output directory")
	set.StringVar(&f.name, "name", "", "Output base name (default derived from the text or image)")
	if err := set.Parse(args); err != nil {
		return spool.Job{}, f, err
	}
	if f.text == "" {
		f.text = joinArgs(set.Args())
	}

	switch {
	case f.image != "" && f.text != "":
		fmt.Fprintln(e.stderr, "render: -image and text are mutually exclusive")
		return spool.Job{}, f, errUsage
	case f.image != "":
		name := f.name
		if name == "" {
			name = stemOf(f.image)
		}
		return spool.Job{Name: name, Image: &spool.ImageJob{
			Path:       f.image,
			Resize:     f.resize,
			Background: f.background,
			Effect:     f.effect,
		}}, f, nil
	case f.text != "":
		return spool.Job{Name: f.name, Text: &spool.TextJob{
			Text:        f.text,
			Effect:      f.effect,
			Font:        f.font,
			Color:       f.color,
			Background:  f.background,
			LineBreakAt: f.lineBreak,
		}}, f, nil
	}
	fmt.Fprintln(e.stderr, "render: text or -image is required")
	return spool.Job{}, f, errUsage
}

func stemOf(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

// cmdRender renders one request and writes the artifact set into -out.
func cmdRender(e *env, args []string) error {
	job, f, err := parseRenderFlags(e, args)
	if err != nil {
		return err
	}
	r, _, err := e.renderer()
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	req, err := job.Request(cwd)
	if err != nil {
		return err
	}
	arts, err := r.Render(req)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(f.out, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	base := job.BaseName(f.image)
	files := make([]atomicfile.File, len(arts))
	for i, a := range arts {
		files[i] = atomicfile.File{Path: filepath.Join(f.out, a.FileName(base)), Data: a.Data}
	}
	if err := atomicfile.WriteSet(files, 0o644); err != nil {
		return fmt.Errorf("write artifacts: %w", err)
	}

	for i, a := range arts {
		fmt.Fprintf(e.stdout, "%s\t%dx%d\t%d frame(s)\t%d bytes\n", files[i].Path, a.Width, a.Height, a.Frames, len(a.Data))
	}
	fmt.Fprintf(e.stdout, "emoji name: %s\n", encode.SanitizeEmojiName(base))
	return nil
}

// ///////////////////////////////////////////////
// fonts
// ///////////////////////////////////////////////

// cmdFonts resolves every font id and prints where it was loaded from.
// A font that fails to load is reported and makes the command fail.
func cmdFonts(e *env, args []string) error {
	set := flag.NewFlagSet("fonts", flag.ContinueOnError)
	set.SetOutput(e.stderr)
	if err := set.Parse(args); err != nil {
		return err
	}
	_, reg, err := e.renderer()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	var failed int
	for _, id := range fonts.IDs {
		h, err := reg.Resolve(id)
		if err != nil {
			failed++
			fmt.Fprintf(tw, "%s\terror\t%v\n", id, err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", id, h.Source.Kind, h.Source.Ref)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d font(s) failed to load", failed)
	}
	return nil
}

// ///////////////////////////////////////////////
// logs
// ///////////////////////////////////////////////

// cmdLogs prints the last -n lines of the log file.
func cmdLogs(e *env, args []string) error {
	set := flag.NewFlagSet("logs", flag.ContinueOnError)
	set.SetOutput(e.stderr)
	n := set.Int("n", 50, "Number of lines")
	if err := set.Parse(args); err != nil {
		return err
	}
	tail, err := logger.ReadTail(e.paths.Log(), *n)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read log: %w", err)
	}
	if tail != "" {
		fmt.Fprintln(e.stdout, tail)
	}
	return nil
}

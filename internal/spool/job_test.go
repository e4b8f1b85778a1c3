package spool

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/emojierr"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/render"
)

// ///////////////////////////////////////////////
// ParseJob Tests
// ///////////////////////////////////////////////

func TestParseJob(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
		check   func(t *testing.T, j Job)
	}{
		{
			name: "text job",
			data: "version = 1\nname = \"hi\"\n[text]\ntext = \"hello\"\neffect = \"party\"\nline_break_at = 3\n",
			check: func(t *testing.T, j Job) {
				if j.Text == nil || j.Text.Text != "hello" || j.Text.Effect != "party" || j.Text.LineBreakAt != 3 {
					t.Errorf("text = %+v", j.Text)
				}
				if j.Name != "hi" {
					t.Errorf("name = %q", j.Name)
				}
			},
		},
		{
			name: "image job without version",
			data: "[image]\npath = \"cat.png\"\nresize = \"contain\"\n",
			check: func(t *testing.T, j Job) {
				if j.Image == nil || j.Image.Path != "cat.png" || j.Image.Resize != "contain" {
					t.Errorf("image = %+v", j.Image)
				}
			},
		},
		{name: "neither", data: "version = 1\n", wantErr: true},
		{name: "both", data: "[text]\ntext = \"a\"\n[image]\npath = \"b.png\"\n", wantErr: true},
		{name: "unknown key", data: "[text]\ntext = \"a\"\ncolour = \"red\"\n", wantErr: true},
		{name: "newer version", data: "version = 99\n[text]\ntext = \"a\"\n", wantErr: true},
		{name: "bad toml", data: "[text\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := ParseJob([]byte(tt.data))
			if tt.wantErr {
				if !errors.Is(err, emojierr.ErrInvalidRequest) {
					t.Fatalf("err = %v, want InvalidRequest", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseJob: %v", err)
			}
			tt.check(t, j)
		})
	}
}

// ///////////////////////////////////////////////
// Request Tests
// ///////////////////////////////////////////////

func TestJobRequestText(t *testing.T) {
	j := Job{Text: &TextJob{Text: "yo", Effect: "wave", Font: "nanumgothic", Color: "#ff0000", Background: "white", LineBreakAt: 2}}
	req, err := j.Request(t.TempDir())
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	want := render.TextRequest{Text: "yo", Effect: "wave", Font: "nanumgothic", TextColor: "#ff0000", Background: "white", LineBreakAt: 2}
	if req != want {
		t.Errorf("request = %+v, want %+v", req, want)
	}
}

func TestJobRequestImage(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "cat.png"), []byte("png bytes"), 0o644)

	j := Job{Image: &ImageJob{Path: "cat.png", Effect: "rotate"}}
	req, err := j.Request(dir)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	img, ok := req.(render.ImageRequest)
	if !ok {
		t.Fatalf("request type = %T", req)
	}
	if string(img.Source) != "png bytes" || img.Effect != "rotate" {
		t.Errorf("request = %+v", img)
	}

	for _, p := range []string{"", "missing.png"} {
		_, err := Job{Image: &ImageJob{Path: p}}.Request(dir)
		if !errors.Is(err, emojierr.ErrInvalidRequest) {
			t.Errorf("path %q: err = %v, want InvalidRequest", p, err)
		}
	}
}

func TestJobBaseName(t *testing.T) {
	tests := []struct {
		name string
		job  Job
		file string
		want string
	}{
		{"explicit name", Job{Name: "party time", Text: &TextJob{Text: "x"}}, "a.toml", "party_time"},
		{"from text", Job{Text: &TextJob{Text: "안녕 hi"}}, "a.toml", "안녕_hi"},
		{"from file", Job{Image: &ImageJob{Path: "cat.png"}}, "/jobs/my-cat.toml", "mycat"},
		{"nothing usable", Job{Text: &TextJob{Text: "!!!"}}, "a.toml", "emoji"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.job.BaseName(tt.file); got != tt.want {
				t.Errorf("BaseName = %q, want %q", got, tt.want)
			}
		})
	}
}

package main

import (
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/config"
)

// ///////////////////////////////////////////////
// parseSectionPath / parentSection / sectionName Tests
// ///////////////////////////////////////////////

func TestParseSectionPath(t *testing.T) {
	tests := []struct {
		section string
		want    []string
	}{
		{"render", []string{"render"}},
		{"effects.wave", []string{"effects", "wave"}},
		{"fonts.faces.nanumgothic", []string{"fonts", "faces", "nanumgothic"}},
	}

	for _, tt := range tests {
		t.Run(tt.section, func(t *testing.T) {
			got := parseSectionPath(tt.section)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("parseSectionPath(%q) = %v, want %v", tt.section, got, tt.want)
			}
		})
	}
}

func TestParentSection(t *testing.T) {
	tests := []struct {
		section string
		want    string
	}{
		{"render", ""},
		{"effects.wave", "effects"},
		{"fonts.faces.nanumgothic", "fonts.faces"},
	}
	for _, tt := range tests {
		if got := parentSection(tt.section); got != tt.want {
			t.Errorf("parentSection(%q) = %q, want %q", tt.section, got, tt.want)
		}
	}
}

func TestSectionName(t *testing.T) {
	tests := []struct {
		section string
		want    string
	}{
		{"render", "Render"},
		{"effects.wave", "Wave"},
		{"Render", "Render"},
		{"a", "A"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := sectionName(tt.section); got != tt.want {
			t.Errorf("sectionName(%q) = %q, want %q", tt.section, got, tt.want)
		}
	}
}

// ///////////////////////////////////////////////
// injectOmitted Tests
// ///////////////////////////////////////////////

func TestInjectOmittedNoSection(t *testing.T) {
	var out []string
	injectOmitted(&out, nil, map[string]bool{}, config.ConfigDocs)
	if len(out) != 0 {
		t.Errorf("injectOmitted with nil sectionStack produced %d lines, want 0", len(out))
	}
}

func TestInjectOmittedAddsMissingKeys(t *testing.T) {
	docs := map[string]config.FieldDoc{
		"render.a":     {Comment: "first"},
		"render.b":     {Alternatives: []string{"b = 2"}},
		"render.sub.c": {Comment: "nested, skipped"},
	}
	var out []string
	emitted := map[string]bool{"render.a": true}
	injectOmitted(&out, []string{"render"}, emitted, docs)

	got := strings.Join(out, "\n")
	if strings.Contains(got, "first") || strings.Contains(got, "nested") {
		t.Errorf("unexpected docs injected:\n%s", got)
	}
	if !strings.Contains(got, "# b = 2") {
		t.Errorf("missing alternative for render.b:\n%s", got)
	}
}

// ///////////////////////////////////////////////
// generate Tests
// ///////////////////////////////////////////////

func TestGenerate(t *testing.T) {
	got, err := generate(config.ExampleConfig(), config.ConfigDocs)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	for _, want := range []string{
		"# emojigen Configuration",
		"# ///// Render /////",
		"# Byte ceiling for one PNG or GIF.",
		"# Per-font sources, tried in order",
		`# resize = "contain"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("generated config missing %q", want)
		}
	}
	if n := strings.Count(got, "# Per-font sources, tried in order"); n != 1 {
		t.Errorf("fonts.faces doc emitted %d times, want 1", n)
	}

	// The annotated output must still parse back to the example config.
	cfg := &config.Config{}
	if _, err := toml.Decode(got, cfg); err != nil {
		t.Fatalf("generated config does not parse: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("generated config invalid: %v", err)
	}
}

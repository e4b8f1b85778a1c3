// Package config provides configuration loading and defaults for emojigen.
//
// Configuration is loaded from a TOML file in the user's data directory.
// It holds every numeric constant of the render pipeline (canvas size, byte
// and frame ceilings, per-effect timing and geometry) along with font
// sources, logging, and the spool watcher settings.
package config

//go:generate go run ../../cmd/genconfig

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/atomicfile"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/migrate"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/paths"
	"github.com/bmatcuk/doublestar/v4"
)

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config represents the top-level application configuration.
type Config struct {
	// Version is the config schema version used for migrations.
	Version int `toml:"version"`
	// Render holds settings shared by every render.
	Render RenderConfig `toml:"render"`
	// Text holds text request defaults and auto-sizing bounds.
	Text TextConfig `toml:"text"`
	// Image holds image request defaults and limits.
	Image ImageConfig `toml:"image"`
	// Effects holds per-effect timing and geometry.
	Effects EffectsConfig `toml:"effects"`
	// Fonts holds font discovery and download settings.
	Fonts FontsConfig `toml:"fonts"`
	// Log holds logging settings.
	Log LogConfig `toml:"log"`
	// Watch holds spool directory settings for `emojigen watch`.
	Watch WatchConfig `toml:"watch"`
}

// RenderConfig holds settings shared by every render.
type RenderConfig struct {
	// CanvasSize is the edge length of every output frame in pixels.
	CanvasSize int `toml:"canvas_size"`
	// MaxArtifactBytes is the byte ceiling of one encoded artifact.
	MaxArtifactBytes int `toml:"max_artifact_bytes"`
	// MaxFrames is the frame budget of one animated artifact before a
	// sequence is split across files.
	MaxFrames int `toml:"max_frames"`
	// PaletteSteps lists palette sizes tried in order when an encoding
	// exceeds MaxArtifactBytes.
	PaletteSteps []int `toml:"palette_steps"`
	// Workers bounds per-render frame parallelism (0 = GOMAXPROCS).
	Workers int `toml:"workers"`
}

// TextConfig holds text request defaults and auto-sizing bounds.
type TextConfig struct {
	// Font is the default font id.
	Font string `toml:"font"`
	// Color is the default text color.
	Color string `toml:"color"`
	// Background is the default background.
	Background string `toml:"background"`
	// Padding is the margin kept around text when fitting its size.
	Padding int `toml:"padding"`
	// ScrollPadding is the vertical margin used by height-only fits.
	ScrollPadding int `toml:"scroll_padding"`
	// MinSize is the smallest point size the auto-sizer considers.
	MinSize int `toml:"min_size"`
	// MaxSize is the largest point size the auto-sizer considers.
	MaxSize int `toml:"max_size"`
}

// ImageConfig holds image request defaults and limits.
type ImageConfig struct {
	// Resize is the default resize mode: "cover", "contain", or "fill".
	Resize string `toml:"resize"`
	// Background is the default background for contain padding.
	Background string `toml:"background"`
	// MaxPixels rejects decoded sources larger than this many pixels.
	MaxPixels int `toml:"max_pixels"`
}

// EffectsConfig holds per-effect timing and geometry.
type EffectsConfig struct {
	Scroll  ScrollConfig  `toml:"scroll"`
	Marquee MarqueeConfig `toml:"marquee"`
	Party   PartyConfig   `toml:"party"`
	Rotate  RotateConfig  `toml:"rotate"`
	Shake   ShakeConfig   `toml:"shake"`
	Wave    WaveConfig    `toml:"wave"`
	Typing  TypingConfig  `toml:"typing"`
	Grow    GrowConfig    `toml:"grow"`
	Split   SplitConfig   `toml:"split"`
}

// ScrollConfig controls the single-viewport scroll effect.
type ScrollConfig struct {
	FrameDurationMs int `toml:"frame_duration_ms"`
	// StepPx is the horizontal advance per frame.
	StepPx int `toml:"step_px"`
}

// MarqueeConfig controls the multi-tile marquee effect.
type MarqueeConfig struct {
	FrameCount      int `toml:"frame_count"`
	FrameDurationMs int `toml:"frame_duration_ms"`
	// MinTiles and MaxTiles clamp the tile count derived from the text length.
	MinTiles int `toml:"min_tiles"`
	MaxTiles int `toml:"max_tiles"`
}

// PartyConfig controls the hue-cycling effect.
type PartyConfig struct {
	FrameCount      int `toml:"frame_count"`
	FrameDurationMs int `toml:"frame_duration_ms"`
	// Cycles is the number of full hue turns per loop.
	Cycles int `toml:"cycles"`
	// TintAlpha is the overlay strength applied to image content.
	TintAlpha int `toml:"tint_alpha"`
}

// RotateConfig controls the rotate effect.
type RotateConfig struct {
	FrameCount      int `toml:"frame_count"`
	FrameDurationMs int `toml:"frame_duration_ms"`
}

// ShakeConfig controls the horizontal shake effect.
type ShakeConfig struct {
	FrameCount      int `toml:"frame_count"`
	FrameDurationMs int `toml:"frame_duration_ms"`
	// Amplitude is the peak horizontal offset in pixels.
	Amplitude int `toml:"amplitude"`
	// PeriodFrames is the oscillation period; FrameCount must be a multiple of it.
	PeriodFrames int `toml:"period_frames"`
}

// WaveConfig controls the traveling-wave effect.
type WaveConfig struct {
	FrameCount      int `toml:"frame_count"`
	FrameDurationMs int `toml:"frame_duration_ms"`
	// Amplitude is the peak vertical offset in pixels.
	Amplitude int `toml:"amplitude"`
	// PeriodFrames is the temporal period; FrameCount must be a multiple of it.
	PeriodFrames int `toml:"period_frames"`
	// GlyphPhase is the phase step between neighbouring glyphs, in radians.
	GlyphPhase float64 `toml:"glyph_phase"`
	// Wavelength is the spatial period for image columns, in pixels.
	Wavelength int `toml:"wavelength"`
}

// TypingConfig controls the typewriter reveal effect.
type TypingConfig struct {
	FrameDurationMs int `toml:"frame_duration_ms"`
	// GlyphsPerStep is the number of clusters revealed per step.
	GlyphsPerStep int `toml:"glyphs_per_step"`
	// FramesPerGlyph is the number of frames each step is held.
	FramesPerGlyph int `toml:"frames_per_glyph"`
	// HoldFrames is the number of frames the full text is held.
	HoldFrames int `toml:"hold_frames"`
	// Cursor draws a bar after the last revealed glyph.
	Cursor bool `toml:"cursor"`
}

// GrowConfig controls the scale effect.
type GrowConfig struct {
	FrameCount      int `toml:"frame_count"`
	FrameDurationMs int `toml:"frame_duration_ms"`
	// MinScale is the smallest scale factor, in (0, 1).
	MinScale float64 `toml:"min_scale"`
	// TextMode and ImageMode select "pulse" (looping) or "once" (ease-out).
	TextMode  string `toml:"text_mode"`
	ImageMode string `toml:"image_mode"`
}

// SplitConfig controls per-glyph split output.
type SplitConfig struct {
	// MaxGlyphs is the largest number of non-space clusters accepted.
	MaxGlyphs int `toml:"max_glyphs"`
}

// FontsConfig holds font discovery and download settings.
type FontsConfig struct {
	// Dir is searched for local font files (relative to the data dir).
	Dir string `toml:"dir"`
	// CacheDir stores downloaded fonts (relative to the data dir).
	CacheDir string `toml:"cache_dir"`
	// AllowRemote enables downloading fonts named by FaceConfig.Remote.
	AllowRemote bool `toml:"allow_remote"`
	// TimeoutSeconds bounds one font download.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// Faces maps font ids to their sources.
	Faces map[string]FaceConfig `toml:"faces"`
}

// FaceConfig names the sources tried, in order, for one font id.
type FaceConfig struct {
	// Pattern is a doublestar glob matched under FontsConfig.Dir.
	Pattern string `toml:"pattern"`
	// Remote is a "google:FAMILY:WEIGHT" spec, empty when none exists.
	Remote string `toml:"remote,omitempty"`
	// Fallback is the bundled Go font used when nothing else loads.
	Fallback string `toml:"fallback"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `toml:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
}

// WatchConfig holds spool directory settings.
type WatchConfig struct {
	// JobsDir is watched for job files (relative to the data dir).
	JobsDir string `toml:"jobs_dir"`
	// OutDir receives rendered artifacts (relative to the data dir).
	OutDir string `toml:"out_dir"`
	// Patterns are doublestar globs a job file name must match.
	Patterns []string `toml:"patterns"`
	// PollIntervalSeconds is the fallback polling interval.
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
}

// ///////////////////////////////////////////////
// Default Configuration
// ///////////////////////////////////////////////

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: migrate.Config.CurrentVersion,
		Render: RenderConfig{
			CanvasSize:       128,
			MaxArtifactBytes: 128 * 1024,
			MaxFrames:        50,
			PaletteSteps:     []int{256, 128, 64, 32, 16},
			Workers:          0,
		},
		Text: TextConfig{
			Font:          "nanumgothic",
			Color:         "#000000",
			Background:    "transparent",
			Padding:       16,
			ScrollPadding: 4,
			MinSize:       8,
			MaxSize:       128,
		},
		Image: ImageConfig{
			Resize:     "cover",
			Background: "transparent",
			MaxPixels:  40_000_000,
		},
		Effects: EffectsConfig{
			Scroll:  ScrollConfig{FrameDurationMs: 50, StepPx: 4},
			Marquee: MarqueeConfig{FrameCount: 48, FrameDurationMs: 50, MinTiles: 2, MaxTiles: 10},
			Party:   PartyConfig{FrameCount: 12, FrameDurationMs: 100, Cycles: 1, TintAlpha: 128},
			Rotate:  RotateConfig{FrameCount: 12, FrameDurationMs: 100},
			Shake:   ShakeConfig{FrameCount: 12, FrameDurationMs: 50, Amplitude: 6, PeriodFrames: 6},
			Wave: WaveConfig{
				FrameCount:      12,
				FrameDurationMs: 100,
				Amplitude:       8,
				PeriodFrames:    12,
				GlyphPhase:      0.5,
				Wavelength:      64,
			},
			Typing: TypingConfig{
				FrameDurationMs: 150,
				GlyphsPerStep:   1,
				FramesPerGlyph:  1,
				HoldFrames:      4,
				Cursor:          true,
			},
			Grow: GrowConfig{
				FrameCount:      12,
				FrameDurationMs: 100,
				MinScale:        0.2,
				TextMode:        "once",
				ImageMode:       "pulse",
			},
			Split: SplitConfig{MaxGlyphs: 20},
		},
		Fonts: FontsConfig{
			Dir:            paths.FontsDir,
			CacheDir:       paths.FontCacheDir,
			AllowRemote:    true,
			TimeoutSeconds: 20,
			Faces: map[string]FaceConfig{
				"nanumgothic": {
					Pattern:  "**/NanumGothic*.{ttf,otf,woff2}",
					Remote:   "google:Nanum Gothic:400",
					Fallback: "goregular",
				},
				"nanumsquare": {
					Pattern:  "**/NanumSquare{.,B.,EB.,R.}{ttf,otf,woff2}",
					Fallback: "gomedium",
				},
				"nanumsquareround": {
					Pattern:  "**/NanumSquareRound*.{ttf,otf,woff2}",
					Fallback: "gobold",
				},
				"nanummyeongjo": {
					Pattern:  "**/NanumMyeongjo*.{ttf,otf,woff2}",
					Remote:   "google:Nanum Myeongjo:800",
					Fallback: "goitalic",
				},
				"notosansmono": {
					Pattern:  "**/NotoSansMono*.{ttf,otf,woff2}",
					Remote:   "google:Noto Sans Mono:700",
					Fallback: "gomonobold",
				},
				"ebsjusigyeong": {
					Pattern:  "**/EBSJusigyeong*.{ttf,otf,woff2}",
					Fallback: "gosmallcaps",
				},
			},
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
		Watch: WatchConfig{
			JobsDir:             paths.JobsDir,
			OutDir:              paths.OutDir,
			Patterns:            []string{"*.toml"},
			PollIntervalSeconds: 2,
		},
	}
}

// ///////////////////////////////////////////////
// Example Configuration
// ///////////////////////////////////////////////

// ExampleConfig returns a Config suitable for generating config.default.toml.
// For this project all defaults are good examples.
func ExampleConfig() *Config {
	return DefaultConfig()
}

// ///////////////////////////////////////////////
// Loading and Saving
// ///////////////////////////////////////////////

// Load reads and parses the configuration file from dataDir/config.toml.
// If the file doesn't exist, returns DefaultConfig. Older schema versions are
// migrated in memory, a .bak copy of the original is written, and the
// upgraded config is saved back.
func Load(dataDir string) (*Config, error) {
	path := filepath.Join(dataDir, paths.ConfigFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return parse(data, path)
}

// parse decodes data over the defaults, migrating first when needed. path
// is where the backup and migrated copy go; empty skips both.
func parse(data []byte, path string) (*Config, error) {
	version, err := migrate.Version(data)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// A file without a version key predates versioning and is treated as v1.
	if version == 0 {
		version = 1
	}

	migrated := migrate.Config.NeedsMigration(version)
	if migrated {
		if path != "" {
			if backupErr := atomicfile.Write(path+paths.ConfigBackExt, data, 0o644); backupErr != nil {
				slog.Warn("failed to write config backup", "error", backupErr)
			}
		}
		data, _, err = migrate.Config.Run(data, version)
		if err != nil {
			return nil, fmt.Errorf("migrate config: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Version = migrate.Config.CurrentVersion

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if migrated && path != "" {
		if err := cfg.Save(path); err != nil {
			slog.Warn("failed to save migrated config", "error", err)
		}
	}
	return cfg, nil
}

// Save writes the config to disk as TOML using atomic file write.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return atomicfile.Write(path, buf.Bytes(), 0o644)
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

// validLogLevels is the set of accepted log level strings.
var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

// bundledFonts is the set of accepted FaceConfig.Fallback names.
var bundledFonts = map[string]bool{
	"goregular": true, "gomedium": true, "gobold": true, "goitalic": true,
	"gomonobold": true, "gosmallcaps": true,
}

// Validate checks that all configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	r := c.Render
	if r.CanvasSize < 16 || r.CanvasSize > 1024 {
		return fmt.Errorf("render.canvas_size must be in [16, 1024], got %d", r.CanvasSize)
	}
	if r.MaxArtifactBytes <= 0 {
		return fmt.Errorf("render.max_artifact_bytes must be > 0, got %d", r.MaxArtifactBytes)
	}
	if r.MaxFrames < 2 {
		return fmt.Errorf("render.max_frames must be >= 2, got %d", r.MaxFrames)
	}
	if len(r.PaletteSteps) == 0 {
		return fmt.Errorf("render.palette_steps must not be empty")
	}
	for i, n := range r.PaletteSteps {
		if n < 2 || n > 256 {
			return fmt.Errorf("render.palette_steps[%d] must be in [2, 256], got %d", i, n)
		}
		if i > 0 && n >= r.PaletteSteps[i-1] {
			return fmt.Errorf("render.palette_steps must be strictly decreasing, got %v", r.PaletteSteps)
		}
	}
	if r.Workers < 0 {
		return fmt.Errorf("render.workers must be >= 0, got %d", r.Workers)
	}

	t := c.Text
	if t.MinSize < 1 || t.MaxSize < t.MinSize {
		return fmt.Errorf("text.min_size/max_size must satisfy 1 <= min <= max, got %d/%d", t.MinSize, t.MaxSize)
	}
	if t.Padding < 0 || 2*t.Padding >= r.CanvasSize {
		return fmt.Errorf("text.padding must be in [0, canvas_size/2), got %d", t.Padding)
	}
	if t.ScrollPadding < 0 || 2*t.ScrollPadding >= r.CanvasSize {
		return fmt.Errorf("text.scroll_padding must be in [0, canvas_size/2), got %d", t.ScrollPadding)
	}

	switch c.Image.Resize {
	case "cover", "contain", "fill":
	default:
		return fmt.Errorf("invalid image.resize %q: must be cover, contain, or fill", c.Image.Resize)
	}
	if c.Image.MaxPixels <= 0 {
		return fmt.Errorf("image.max_pixels must be > 0, got %d", c.Image.MaxPixels)
	}

	if err := c.Effects.validate(); err != nil {
		return err
	}

	for id, face := range c.Fonts.Faces {
		if face.Pattern != "" && !doublestar.ValidatePattern(face.Pattern) {
			return fmt.Errorf("invalid fonts.faces.%s.pattern %q", id, face.Pattern)
		}
		if face.Remote != "" && !strings.HasPrefix(face.Remote, "google:") {
			return fmt.Errorf("invalid fonts.faces.%s.remote %q: must start with google:", id, face.Remote)
		}
		if !bundledFonts[face.Fallback] {
			return fmt.Errorf("invalid fonts.faces.%s.fallback %q", id, face.Fallback)
		}
	}
	if c.Fonts.TimeoutSeconds <= 0 {
		return fmt.Errorf("fonts.timeout_seconds must be > 0, got %d", c.Fonts.TimeoutSeconds)
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be trace, debug, info, warn, or error", c.Log.Level)
	}

	for _, p := range c.Watch.Patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid watch.patterns entry %q", p)
		}
	}
	if c.Watch.PollIntervalSeconds <= 0 {
		return fmt.Errorf("watch.poll_interval_seconds must be > 0, got %d", c.Watch.PollIntervalSeconds)
	}
	return nil
}

func (e EffectsConfig) validate() error {
	timings := []struct {
		name           string
		count, duration int
	}{
		{"marquee", e.Marquee.FrameCount, e.Marquee.FrameDurationMs},
		{"party", e.Party.FrameCount, e.Party.FrameDurationMs},
		{"rotate", e.Rotate.FrameCount, e.Rotate.FrameDurationMs},
		{"shake", e.Shake.FrameCount, e.Shake.FrameDurationMs},
		{"wave", e.Wave.FrameCount, e.Wave.FrameDurationMs},
		{"grow", e.Grow.FrameCount, e.Grow.FrameDurationMs},
		{"scroll", 2, e.Scroll.FrameDurationMs},
		{"typing", 2, e.Typing.FrameDurationMs},
	}
	for _, tm := range timings {
		if tm.count < 2 {
			return fmt.Errorf("effects.%s.frame_count must be >= 2, got %d", tm.name, tm.count)
		}
		// GIF delays are centiseconds; anything under 20ms is clamped by viewers.
		if tm.duration < 20 {
			return fmt.Errorf("effects.%s.frame_duration_ms must be >= 20, got %d", tm.name, tm.duration)
		}
	}

	if e.Scroll.StepPx <= 0 {
		return fmt.Errorf("effects.scroll.step_px must be > 0, got %d", e.Scroll.StepPx)
	}
	if e.Marquee.MinTiles < 1 || e.Marquee.MaxTiles < e.Marquee.MinTiles {
		return fmt.Errorf("effects.marquee tiles must satisfy 1 <= min <= max, got %d/%d", e.Marquee.MinTiles, e.Marquee.MaxTiles)
	}
	if e.Party.Cycles < 1 {
		return fmt.Errorf("effects.party.cycles must be >= 1, got %d", e.Party.Cycles)
	}
	if e.Party.TintAlpha < 0 || e.Party.TintAlpha > 255 {
		return fmt.Errorf("effects.party.tint_alpha must be in [0, 255], got %d", e.Party.TintAlpha)
	}
	if e.Shake.PeriodFrames < 1 || e.Shake.FrameCount%e.Shake.PeriodFrames != 0 {
		return fmt.Errorf("effects.shake.frame_count (%d) must be a multiple of period_frames (%d)", e.Shake.FrameCount, e.Shake.PeriodFrames)
	}
	if e.Wave.PeriodFrames < 1 || e.Wave.FrameCount%e.Wave.PeriodFrames != 0 {
		return fmt.Errorf("effects.wave.frame_count (%d) must be a multiple of period_frames (%d)", e.Wave.FrameCount, e.Wave.PeriodFrames)
	}
	if e.Wave.Wavelength <= 0 {
		return fmt.Errorf("effects.wave.wavelength must be > 0, got %d", e.Wave.Wavelength)
	}
	if e.Typing.GlyphsPerStep < 1 || e.Typing.FramesPerGlyph < 1 || e.Typing.HoldFrames < 0 {
		return fmt.Errorf("effects.typing: glyphs_per_step and frames_per_glyph must be >= 1, hold_frames >= 0")
	}
	if e.Grow.MinScale <= 0 || e.Grow.MinScale >= 1 {
		return fmt.Errorf("effects.grow.min_scale must be in (0, 1), got %g", e.Grow.MinScale)
	}
	for name, mode := range map[string]string{"text_mode": e.Grow.TextMode, "image_mode": e.Grow.ImageMode} {
		if mode != "pulse" && mode != "once" {
			return fmt.Errorf("invalid effects.grow.%s %q: must be pulse or once", name, mode)
		}
	}
	if e.Split.MaxGlyphs < 1 {
		return fmt.Errorf("effects.split.max_glyphs must be >= 1, got %d", e.Split.MaxGlyphs)
	}
	return nil
}

// ///////////////////////////////////////////////
// Helpers
// ///////////////////////////////////////////////

// MatchesJob reports whether a spool file name matches any watch pattern.
func (c *Config) MatchesJob(name string) bool {
	for _, pattern := range c.Watch.Patterns {
		matched, err := doublestar.Match(pattern, name)
		if err != nil {
			slog.Warn("invalid glob pattern", "pattern", pattern, "error", err)
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

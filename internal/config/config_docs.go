package config

// ///////////////////////////////////////////////
// Documentation Types
// ///////////////////////////////////////////////

// FieldDoc holds documentation and alternative examples for a single config field.
// The genconfig tool uses [FieldDoc] values to annotate the generated config.default.toml.
type FieldDoc struct {
	// Comment is shown as a header comment above the field in the example config.
	Comment string

	// Alternatives are shown as commented-out lines below the active value.
	Alternatives []string
}

// ///////////////////////////////////////////////
// Field Documentation Map
// ///////////////////////////////////////////////

// ConfigDocs maps TOML field paths (dot-separated, e.g. "effects.shake.amplitude")
// to their [FieldDoc] entries. The genconfig tool uses this map to annotate the
// generated config.default.toml with inline comments and alternative examples.
var ConfigDocs = map[string]FieldDoc{
	// ── Root ──────────────────────────────────────────────────────
	"version": {
		Comment: "Config schema version. Do not edit.",
	},

	// ── Render ────────────────────────────────────────────────────
	"render.canvas_size": {
		Comment: "Edge length of every output frame in pixels. Slack displays emoji at 128x128.",
	},
	"render.max_artifact_bytes": {
		Comment: "Byte ceiling for one PNG or GIF. Slack rejects emoji larger than 128 KB.",
	},
	"render.max_frames": {
		Comment: "Frame budget of one GIF. Longer scroll animations are split across files.",
	},
	"render.palette_steps": {
		Comment: "Palette sizes tried in order when an encoding exceeds max_artifact_bytes.",
		Alternatives: []string{
			"palette_steps = [256, 64, 16]",
		},
	},
	"render.workers": {
		Comment: "Goroutines used to compute frames of one render. 0 uses every CPU.",
	},

	// ── Text ──────────────────────────────────────────────────────
	"text.font": {
		Comment: "Default font id: nanumgothic, nanumsquare, nanumsquareround,\nnanummyeongjo, notosansmono, or ebsjusigyeong.",
	},
	"text.color": {
		Comment: "Colors are #RRGGBB, #RRGGBBAA, or one of transparent, white, black.",
	},
	"text.background": {},
	"text.padding": {
		Comment: "Margin kept around the text when picking its point size.",
	},
	"text.scroll_padding": {
		Comment: "Vertical margin for scroll and marquee, which only fit the text height.",
	},
	"text.min_size": {
		Comment: "Point size bounds searched by the auto-sizer.",
	},
	"text.max_size": {},

	// ── Image ─────────────────────────────────────────────────────
	"image.resize": {
		Comment: "cover crops to fill, contain pads with the background, fill stretches.",
		Alternatives: []string{
			`resize = "contain"`,
			`resize = "fill"`,
		},
	},
	"image.background": {},
	"image.max_pixels": {
		Comment: "Sources with more pixels than this are rejected before resizing.",
	},

	// ── Effects ───────────────────────────────────────────────────
	"effects.scroll": {
		Comment: "Text slides through one viewport. The frame count follows from the text width.",
	},
	"effects.scroll.frame_duration_ms": {
		Comment: "Every animated effect has frame_duration_ms. Effects with a fixed length\nalso have frame_count.",
	},
	"effects.scroll.step_px": {
		Comment: "Pixels advanced per frame.",
	},
	"effects.marquee": {
		Comment: "Text slides across a row of emoji tiles meant to be placed side by side.",
	},
	"effects.marquee.frame_count":       {},
	"effects.marquee.frame_duration_ms": {},
	"effects.marquee.min_tiles": {
		Comment: "The tile count is the number of characters, clamped to [min_tiles, max_tiles].",
	},
	"effects.marquee.max_tiles": {},
	"effects.party": {
		Comment: "Text is recolored around the hue wheel; images get a hue tint overlay.",
	},
	"effects.party.frame_count":       {},
	"effects.party.frame_duration_ms": {},
	"effects.party.cycles": {
		Comment: "Full hue turns per loop.",
	},
	"effects.party.tint_alpha": {
		Comment: "Opacity (0-255) of the tint laid over image content.",
	},
	"effects.rotate.frame_count":       {},
	"effects.rotate.frame_duration_ms": {},
	"effects.shake.frame_count":        {},
	"effects.shake.frame_duration_ms":  {},
	"effects.shake.amplitude": {
		Comment: "Peak horizontal offset in pixels.",
	},
	"effects.shake.period_frames": {
		Comment: "Oscillation period. frame_count must be a multiple of it.",
	},
	"effects.wave.frame_count":       {},
	"effects.wave.frame_duration_ms": {},
	"effects.wave.amplitude": {
		Comment: "Peak vertical offset in pixels.",
	},
	"effects.wave.period_frames": {
		Comment: "Temporal period. frame_count must be a multiple of it.",
	},
	"effects.wave.glyph_phase": {
		Comment: "Phase offset in radians between neighbouring glyphs.",
	},
	"effects.wave.wavelength": {
		Comment: "Horizontal wavelength in pixels used for image columns.",
	},
	"effects.typing.frame_duration_ms": {
		Comment: "Also used by billboard, which reveals one character per frame without a cursor.",
	},
	"effects.typing.glyphs_per_step": {
		Comment: "Characters revealed per step.",
	},
	"effects.typing.frames_per_glyph": {
		Comment: "Frames each reveal step is shown. Steps are merged when the total would exceed render.max_frames.",
	},
	"effects.typing.hold_frames": {
		Comment: "Frames the complete text is held before the loop restarts. Also used by billboard.",
	},
	"effects.typing.cursor": {
		Comment: "Draw a cursor bar after the last revealed glyph.",
	},
	"effects.grow.frame_count":       {},
	"effects.grow.frame_duration_ms": {},
	"effects.grow.min_scale": {
		Comment: "Smallest scale factor, between 0 and 1.",
	},
	"effects.grow.text_mode": {
		Comment: "pulse loops smoothly between min_scale and 1; once eases out to full size.",
		Alternatives: []string{
			`text_mode = "pulse"`,
		},
	},
	"effects.grow.image_mode": {},
	"effects.split.max_glyphs": {
		Comment: "Split renders one still per character. Longer texts are rejected.",
	},

	// ── Fonts ─────────────────────────────────────────────────────
	"fonts.dir": {
		Comment: "Local font files are searched here (relative to the data directory).\nTTF, OTF and WOFF2 files are accepted.",
	},
	"fonts.cache_dir": {
		Comment: "Downloaded fonts are stored here.",
	},
	"fonts.allow_remote": {
		Comment: "Download fonts from Google Fonts when no local file matches.",
	},
	"fonts.timeout_seconds": {},
	"fonts.faces": {
		Comment: "Per-font sources, tried in order: pattern, remote, fallback.\nfallback names a bundled Go font: goregular, gomedium, gobold,\ngoitalic, gomonobold, or gosmallcaps.",
	},

	// ── Log ───────────────────────────────────────────────────────
	"log.level": {
		Comment: "Minimum log level: trace, debug, info, warn, error.",
		Alternatives: []string{
			`level = "debug"`,
		},
	},
	"log.max_size_mb": {
		Comment: "Log file size before rotation.",
	},

	// ── Watch ─────────────────────────────────────────────────────
	"watch.jobs_dir": {
		Comment: "emojigen watch renders job files dropped into jobs_dir\nand writes artifacts to out_dir.",
	},
	"watch.out_dir": {},
	"watch.patterns": {
		Comment: "Glob patterns a job file name must match.",
	},
	"watch.poll_interval_seconds": {
		Comment: "Polling interval used when filesystem notifications are unavailable.",
	},
}

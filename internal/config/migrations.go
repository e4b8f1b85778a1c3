package config

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/migrate"
)

func init() {
	migrate.Config.Register(migrate.Migration{
		Version:     2,
		Description: "move render.frame_count and render.frame_duration_ms into effects tables",
		Upgrade:     upgradeV2,
	})
}

// timedEffects are the effect tables that carry both frame_count and
// frame_duration_ms in schema v2.
var timedEffects = []string{"party", "rotate", "shake", "wave", "grow"}

// upgradeV2 copies the v1 global frame timing into every timed effect table
// that does not set its own, then drops the v1 keys. Scroll and typing only
// inherit the duration since their frame counts are derived.
func upgradeV2(data []byte) ([]byte, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode v1 config: %w", err)
	}

	render, _ := doc["render"].(map[string]any)
	count, hasCount := render["frame_count"]
	duration, hasDuration := render["frame_duration_ms"]
	delete(render, "frame_count")
	delete(render, "frame_duration_ms")

	effects, _ := doc["effects"].(map[string]any)
	if effects == nil {
		effects = map[string]any{}
	}
	table := func(name string) map[string]any {
		t, _ := effects[name].(map[string]any)
		if t == nil {
			t = map[string]any{}
			effects[name] = t
		}
		return t
	}
	setDefault := func(t map[string]any, key string, v any) {
		if _, ok := t[key]; !ok {
			t[key] = v
		}
	}

	for _, name := range timedEffects {
		t := table(name)
		if hasCount {
			setDefault(t, "frame_count", count)
		}
		if hasDuration {
			setDefault(t, "frame_duration_ms", duration)
		}
	}
	if hasDuration {
		setDefault(table("typing"), "frame_duration_ms", duration)
	}
	if hasCount || hasDuration || len(effects) > 0 {
		doc["effects"] = effects
	}
	doc["version"] = 2

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("encode v2 config: %w", err)
	}
	return buf.Bytes(), nil
}

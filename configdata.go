// Package emojigen provides embedded assets for the emojigen CLI.
//
// The root package exists solely to embed [config.default.toml] via
// [DefaultConfigTOML]. The CLI copies it into the data directory on first
// run so users start from a fully documented config.
package emojigen

import _ "embed"

// DefaultConfigTOML holds the raw bytes of config.default.toml, embedded at
// build time.
//
//go:embed config.default.toml
var DefaultConfigTOML []byte

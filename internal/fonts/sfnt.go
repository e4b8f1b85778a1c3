package fonts

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tdewolff/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/opentype"
)

// bundled maps fallback names to embedded Go fonts.
var bundled = map[string][]byte{
	"goregular":   goregular.TTF,
	"gomedium":    gomedium.TTF,
	"gobold":      gobold.TTF,
	"goitalic":    goitalic.TTF,
	"gomonobold":  gomonobold.TTF,
	"gosmallcaps": gosmallcaps.TTF,
}

// isWOFF reports whether data is a WOFF or WOFF2 container, by name or magic.
func isWOFF(name string, data []byte) bool {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".woff2") || strings.HasSuffix(lower, ".woff") {
		return true
	}
	return bytes.HasPrefix(data, []byte("wOF2")) || bytes.HasPrefix(data, []byte("wOFF"))
}

// toSFNT converts WOFF containers to SFNT and passes anything else through.
func toSFNT(name string, data []byte) ([]byte, error) {
	if !isWOFF(name, data) {
		return data, nil
	}
	sfnt, err := font.ToSFNT(data)
	if err != nil {
		return nil, fmt.Errorf("convert %s to sfnt: %w", name, err)
	}
	return sfnt, nil
}

// parse converts and parses font bytes. Collections are not supported.
func parse(name string, data []byte) (*opentype.Font, error) {
	sfnt, err := toSFNT(name, data)
	if err != nil {
		return nil, err
	}
	f, err := opentype.Parse(sfnt)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return f, nil
}

// google.go downloads font files from the Google Fonts CSS API.
//
// Specs use the format "google:FAMILY:WEIGHT" (e.g. "google:Nanum Gothic:400").
// Downloads are converted to SFNT and cached so each font is fetched once per
// machine.

package fonts

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/atomicfile"
	"github.com/hashicorp/go-retryablehttp"
)

const googleCSSEndpoint = "https://fonts.googleapis.com/css2"

// userAgent asks the CSS API for WOFF2 sources, which [parse] converts.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"

// fontURLRe extracts the first font file URL from a CSS response.
var fontURLRe = regexp.MustCompile(`url\((https?://[^)]+)\)`)

// ParseGoogleSpec parses a "google:Family:Weight" spec into its parts.
func ParseGoogleSpec(spec string) (family, weight string, ok bool) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 || parts[0] != "google" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// cacheName returns the cache file name for a family and weight.
func cacheName(family, weight string) string {
	return strings.ReplaceAll(family, " ", "_") + "-" + weight + ".ttf"
}

// fetchGoogle returns SFNT bytes for spec, from the cache when present.
func (r *Registry) fetchGoogle(spec string) ([]byte, error) {
	family, weight, ok := ParseGoogleSpec(spec)
	if !ok {
		return nil, fmt.Errorf("invalid google font spec %q: expected google:FAMILY:WEIGHT", spec)
	}

	cacheFile := filepath.Join(r.cacheDir, cacheName(family, weight))
	if data, err := os.ReadFile(cacheFile); err == nil {
		return data, nil
	}

	cssURL := fmt.Sprintf("%s?family=%s:wght@%s", r.googleCSS, url.QueryEscape(family), weight)
	css, err := r.get(cssURL, 1<<20)
	if err != nil {
		return nil, fmt.Errorf("fetch css: %w", err)
	}
	m := fontURLRe.FindSubmatch(css)
	if m == nil {
		return nil, fmt.Errorf("no font URL in css for %s wght@%s", family, weight)
	}
	fontURL := string(m[1])

	data, err := r.get(fontURL, 10<<20)
	if err != nil {
		return nil, fmt.Errorf("fetch font: %w", err)
	}
	data, err = toSFNT(fontURL, data)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(r.cacheDir, 0o755); err != nil {
		r.logger.Warn("font cache dir unavailable", "dir", r.cacheDir, "error", err)
		return data, nil
	}
	if err := atomicfile.Write(cacheFile, data, 0o644); err != nil {
		r.logger.Warn("font cache write failed", "file", cacheFile, "error", err)
	}
	return data, nil
}

// get performs a retrying GET and reads at most limit bytes of the body.
func (r *Registry) get(u string, limit int64) ([]byte, error) {
	req, err := retryablehttp.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{url: u, code: resp.StatusCode}
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

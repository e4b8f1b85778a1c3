// Package fonts resolves the six logical font ids to parsed OpenType fonts
// and measures text per glyph cluster.
//
// Each id is loaded at most once per [Registry]. The source chain is a local
// file matched by a glob under fonts.dir, then a Google Fonts download (when
// allowed), then a bundled Go font, so resolution never depends on the
// network being up.
package fonts

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/config"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/emojierr"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/paths"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/image/font/opentype"
)

// ///////////////////////////////////////////////
// Font IDs
// ///////////////////////////////////////////////

// Supported font ids.
const (
	NanumGothic      = "nanumgothic"
	NanumSquare      = "nanumsquare"
	NanumSquareRound = "nanumsquareround"
	NanumMyeongjo    = "nanummyeongjo"
	NotoSansMono     = "notosansmono"
	EBSJusigyeong    = "ebsjusigyeong"
)

// IDs lists every supported font id in display order.
var IDs = []string{NanumGothic, NanumSquare, NanumSquareRound, NanumMyeongjo, NotoSansMono, EBSJusigyeong}

// ///////////////////////////////////////////////
// Sources
// ///////////////////////////////////////////////

// SourceKind says where a font's bytes came from.
type SourceKind int

const (
	SourceLocal SourceKind = iota
	SourceRemote
	SourceBundled
)

func (k SourceKind) String() string {
	switch k {
	case SourceLocal:
		return "local"
	case SourceRemote:
		return "remote"
	default:
		return "bundled"
	}
}

// Source identifies the loaded font file.
type Source struct {
	Kind SourceKind
	// Ref is the matched path, the remote spec, or the bundled font name.
	Ref string
}

func (s Source) String() string { return s.Kind.String() + ":" + s.Ref }

// ///////////////////////////////////////////////
// Registry
// ///////////////////////////////////////////////

// Registry loads fonts by id. The entry map is built by [NewRegistry] and
// never modified afterwards; each entry guards its own first load.
type Registry struct {
	fontsDir    string
	cacheDir    string
	allowRemote bool
	googleCSS   string
	client      *retryablehttp.Client
	logger      *slog.Logger
	entries     map[string]*entry
}

type entry struct {
	face   config.FaceConfig
	once   sync.Once
	handle *Handle
	err    error
}

// Option customizes a [Registry].
type Option func(*Registry)

// WithGoogleEndpoint overrides the Google Fonts CSS API base URL.
func WithGoogleEndpoint(u string) Option {
	return func(r *Registry) { r.googleCSS = u }
}

// WithHTTPClient overrides the retrying HTTP client used for downloads.
func WithHTTPClient(c *retryablehttp.Client) Option {
	return func(r *Registry) { r.client = c }
}

// NewRegistry builds a registry from cfg. Relative directories resolve
// against root. Ids missing from cfg.Faces use the default face settings;
// keys that are not supported ids are rejected.
func NewRegistry(cfg config.FontsConfig, root paths.DataDir, logger *slog.Logger, opts ...Option) (*Registry, error) {
	defaults := config.DefaultConfig().Fonts.Faces
	for id := range cfg.Faces {
		if _, ok := defaults[id]; !ok {
			return nil, fmt.Errorf("fonts.faces.%s: not a supported font id", id)
		}
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.HTTPClient.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	client.Logger = nil

	r := &Registry{
		fontsDir:    root.Resolve(cfg.Dir),
		cacheDir:    root.Resolve(cfg.CacheDir),
		allowRemote: cfg.AllowRemote,
		googleCSS:   googleCSSEndpoint,
		client:      client,
		logger:      logger,
		entries:     make(map[string]*entry, len(IDs)),
	}
	for _, o := range opts {
		o(r)
	}
	for _, id := range IDs {
		face, ok := cfg.Faces[id]
		if !ok {
			face = defaults[id]
		}
		r.entries[id] = &entry{face: face}
	}
	return r, nil
}

// Resolve returns the handle for id, loading it on first use. Concurrent
// first calls for the same id block until the single load finishes.
func (r *Registry) Resolve(id string) (*Handle, error) {
	if strings.TrimSpace(id) == "" {
		return nil, emojierr.New(emojierr.InvalidRequest, "font id is empty")
	}
	e, ok := r.entries[strings.ToLower(id)]
	if !ok {
		return nil, emojierr.New(emojierr.UnknownFont, "%q is not one of %s", id, strings.Join(IDs, ", "))
	}
	key := strings.ToLower(id)
	e.once.Do(func() {
		e.handle, e.err = r.load(key, e.face)
	})
	return e.handle, e.err
}

// load walks the source chain for one id.
func (r *Registry) load(id string, face config.FaceConfig) (*Handle, error) {
	if h := r.loadLocal(id, face.Pattern); h != nil {
		return h, nil
	}
	if r.allowRemote && face.Remote != "" {
		data, err := r.fetchGoogle(face.Remote)
		if err == nil {
			var f *opentype.Font
			if f, err = parse(face.Remote, data); err == nil {
				r.logger.Info("font resolved", "id", id, "source", "remote", "spec", face.Remote)
				return &Handle{ID: id, Source: Source{SourceRemote, face.Remote}, font: f}, nil
			}
		}
		r.logger.Warn("remote font unavailable", "id", id, "spec", face.Remote, "error", err)
	}

	ttf, ok := bundled[face.Fallback]
	if !ok {
		return nil, fmt.Errorf("font %s: unknown bundled fallback %q", id, face.Fallback)
	}
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("font %s: parse bundled %s: %w", id, face.Fallback, err)
	}
	r.logger.Info("font resolved", "id", id, "source", "bundled", "name", face.Fallback)
	return &Handle{ID: id, Source: Source{SourceBundled, face.Fallback}, font: f}, nil
}

// loadLocal returns the first parseable file matching pattern under the
// fonts directory, or nil.
func (r *Registry) loadLocal(id, pattern string) *Handle {
	if r.fontsDir == "" || pattern == "" {
		return nil
	}
	if _, err := os.Stat(r.fontsDir); err != nil {
		return nil
	}
	fsys := os.DirFS(r.fontsDir)
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		r.logger.Warn("font glob failed", "id", id, "pattern", pattern, "error", err)
		return nil
	}
	sort.Strings(matches)
	for _, m := range matches {
		data, err := os.ReadFile(filepath.Join(r.fontsDir, filepath.FromSlash(m)))
		if err != nil {
			r.logger.Warn("font read failed", "id", id, "file", m, "error", err)
			continue
		}
		f, err := parse(m, data)
		if err != nil {
			r.logger.Warn("font parse failed", "id", id, "file", m, "error", err)
			continue
		}
		r.logger.Info("font resolved", "id", id, "source", "local", "file", m)
		return &Handle{ID: id, Source: Source{SourceLocal, m}, font: f}
	}
	return nil
}

// statusError reports an unexpected HTTP status during a download.
type statusError struct {
	url  string
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.url, e.code, http.StatusText(e.code))
}

package fonts

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/config"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/emojierr"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/logger"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/paths"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// ///////////////////////////////////////////////
// Helpers
// ///////////////////////////////////////////////

// offlineRegistry returns a registry rooted at a fresh temp dir with remote
// downloads disabled.
func offlineRegistry(t *testing.T) (*Registry, paths.DataDir) {
	t.Helper()
	cfg := config.DefaultConfig().Fonts
	cfg.AllowRemote = false
	root := paths.DataDir{Root: t.TempDir()}
	r, err := NewRegistry(cfg, root, logger.Discard())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r, root
}

func writeFont(t *testing.T, root paths.DataDir, name string, data []byte) {
	t.Helper()
	dir := filepath.Join(root.Root, "fonts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

// ///////////////////////////////////////////////
// Resolve
// ///////////////////////////////////////////////

func TestResolveErrors(t *testing.T) {
	r, _ := offlineRegistry(t)

	tests := []struct {
		id   string
		want error
	}{
		{"NotAFont", emojierr.ErrUnknownFont},
		{"hoguk", emojierr.ErrUnknownFont},
		{"", emojierr.ErrInvalidRequest},
		{"   ", emojierr.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.id), func(t *testing.T) {
			h, err := r.Resolve(tt.id)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Resolve(%q) err = %v, want %v", tt.id, err, tt.want)
			}
			if h != nil {
				t.Error("expected nil handle on error")
			}
		})
	}
}

func TestResolveBundledFallback(t *testing.T) {
	r, _ := offlineRegistry(t)

	for _, id := range IDs {
		t.Run(id, func(t *testing.T) {
			h, err := r.Resolve(id)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if h.Source.Kind != SourceBundled {
				t.Errorf("source = %v, want bundled", h.Source)
			}
			if h.ID != id {
				t.Errorf("ID = %q, want %q", h.ID, id)
			}
		})
	}
}

func TestResolveCaseInsensitive(t *testing.T) {
	r, _ := offlineRegistry(t)
	a, err := r.Resolve("NanumGothic")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	b, _ := r.Resolve("nanumgothic")
	if a != b {
		t.Error("mixed-case id should resolve to the same handle")
	}
}

func TestResolveLoadsOnce(t *testing.T) {
	r, _ := offlineRegistry(t)

	const n = 32
	handles := make([]*Handle, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		go func(i int) {
			defer wg.Done()
			h, err := r.Resolve(NanumSquare)
			if err != nil {
				t.Errorf("Resolve: %v", err)
				return
			}
			handles[i] = h
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if handles[i] != handles[0] {
			t.Fatalf("handle %d differs from handle 0", i)
		}
	}
}

func TestResolveLocalFile(t *testing.T) {
	cfg := config.DefaultConfig().Fonts
	cfg.AllowRemote = false
	root := paths.DataDir{Root: t.TempDir()}
	writeFont(t, root, "NanumGothicBold.ttf", gobold.TTF)

	r, err := NewRegistry(cfg, root, logger.Discard())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	h, err := r.Resolve(NanumGothic)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if h.Source.Kind != SourceLocal || h.Source.Ref != "NanumGothicBold.ttf" {
		t.Errorf("source = %v, want local:NanumGothicBold.ttf", h.Source)
	}

	// A pattern for another id must not pick the file up.
	other, _ := r.Resolve(NanumMyeongjo)
	if other.Source.Kind != SourceBundled {
		t.Errorf("nanummyeongjo source = %v, want bundled", other.Source)
	}
}

func TestResolveCorruptLocalFallsThrough(t *testing.T) {
	cfg := config.DefaultConfig().Fonts
	cfg.AllowRemote = false
	root := paths.DataDir{Root: t.TempDir()}
	writeFont(t, root, "NanumGothic.ttf", []byte("not a font"))

	r, err := NewRegistry(cfg, root, logger.Discard())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	h, err := r.Resolve(NanumGothic)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if h.Source.Kind != SourceBundled {
		t.Errorf("source = %v, want bundled", h.Source)
	}
}

func TestResolveRemote(t *testing.T) {
	var fontHits int
	var mu sync.Mutex
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/css2", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("family"); got != "Nanum Gothic:wght@400" {
			t.Errorf("family query = %q", got)
		}
		fmt.Fprintf(w, "@font-face { src: url(%s/files/nanum.ttf) format('truetype'); }", srv.URL)
	})
	mux.HandleFunc("/files/nanum.ttf", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		fontHits++
		mu.Unlock()
		w.Write(goregular.TTF)
	})

	cfg := config.DefaultConfig().Fonts
	cfg.AllowRemote = true
	root := paths.DataDir{Root: t.TempDir()}

	r, err := NewRegistry(cfg, root, logger.Discard(), WithGoogleEndpoint(srv.URL+"/css2"))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	h, err := r.Resolve(NanumGothic)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if h.Source.Kind != SourceRemote {
		t.Fatalf("source = %v, want remote", h.Source)
	}
	cached := filepath.Join(root.Root, "fonts", ".cache", "Nanum_Gothic-400.ttf")
	if _, err := os.Stat(cached); err != nil {
		t.Fatalf("expected cached font: %v", err)
	}

	// A fresh registry reuses the cache instead of downloading again.
	r2, _ := NewRegistry(cfg, root, logger.Discard(), WithGoogleEndpoint(srv.URL+"/css2"))
	if h2, err := r2.Resolve(NanumGothic); err != nil || h2.Source.Kind != SourceRemote {
		t.Fatalf("second Resolve = %v, %v", h2, err)
	}
	mu.Lock()
	defer mu.Unlock()
	if fontHits != 1 {
		t.Errorf("font downloaded %d times, want 1", fontHits)
	}
}

func TestResolveRemoteFailureFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := config.DefaultConfig().Fonts
	root := paths.DataDir{Root: t.TempDir()}
	r, err := NewRegistry(cfg, root, logger.Discard(), WithGoogleEndpoint(srv.URL))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	h, err := r.Resolve(NotoSansMono)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if h.Source.Kind != SourceBundled || h.Source.Ref != "gomonobold" {
		t.Errorf("source = %v, want bundled:gomonobold", h.Source)
	}
}

func TestNewRegistryRejectsUnknownFace(t *testing.T) {
	cfg := config.DefaultConfig().Fonts
	cfg.Faces["comicsans"] = config.FaceConfig{Fallback: "goregular"}
	if _, err := NewRegistry(cfg, paths.DataDir{Root: t.TempDir()}, logger.Discard()); err == nil {
		t.Fatal("expected error for unsupported face id")
	}
}

// ///////////////////////////////////////////////
// Specs and containers
// ///////////////////////////////////////////////

func TestParseGoogleSpec(t *testing.T) {
	tests := []struct {
		spec           string
		family, weight string
		ok             bool
	}{
		{"google:Nanum Gothic:400", "Nanum Gothic", "400", true},
		{"google:Inter:800", "Inter", "800", true},
		{"google:Inter", "", "", false},
		{"local:Inter:800", "", "", false},
		{"google::800", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			f, w, ok := ParseGoogleSpec(tt.spec)
			if f != tt.family || w != tt.weight || ok != tt.ok {
				t.Errorf("ParseGoogleSpec = (%q, %q, %v), want (%q, %q, %v)", f, w, ok, tt.family, tt.weight, tt.ok)
			}
		})
	}
}

func TestIsWOFF(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"a.woff2", nil, true},
		{"a.WOFF", nil, true},
		{"a.ttf", []byte("wOF2...."), true},
		{"a.ttf", []byte("wOFF...."), true},
		{"a.ttf", goregular.TTF[:8], false},
	}
	for _, tt := range tests {
		if got := isWOFF(tt.name, tt.data); got != tt.want {
			t.Errorf("isWOFF(%q, %q) = %v, want %v", tt.name, tt.data, got, tt.want)
		}
	}
}

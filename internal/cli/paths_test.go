package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/activitylens/activitylens/internal/config"
	"github.com/activitylens/activitylens/pkg/buildinfo"
	"github.com/activitylens/activitylens/pkg/cache"
)

func TestCacheDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	tests := []struct {
		name string
		xdg  string
		want string
	}{
		{"XDG", "/srv/xdg-cache", filepath.Join("/srv/xdg-cache", "activitylens")},
		{"HomeFallback", "", filepath.Join(home, ".cache", "activitylens")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CACHE_HOME", tt.xdg)
			got, err := cacheDir()
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("cacheDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	custom := filepath.Join(t.TempDir(), "frames")

	tests := []struct {
		name     string
		cache    config.CacheConfig
		noCache  bool
		wantFile bool
		wantDir  string
	}{
		{"Default", config.CacheConfig{Enabled: true}, false, true, ""},
		{"ConfiguredDir", config.CacheConfig{Enabled: true, Dir: custom}, false, true, custom},
		{"NoCacheFlag", config.CacheConfig{Enabled: true}, true, false, ""},
		{"Disabled", config.CacheConfig{}, false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Cache = tt.cache
			c, err := newCache(cfg, tt.noCache)
			if err != nil {
				t.Fatal(err)
			}
			defer c.Close()

			_, isFile := c.(*cache.FileCache)
			if isFile != tt.wantFile {
				t.Fatalf("newCache() = %T, want file cache %v", c, tt.wantFile)
			}
			if tt.wantDir != "" {
				if _, err := os.Stat(tt.wantDir); err != nil {
					t.Errorf("cache dir not created: %v", err)
				}
			}
		})
	}
}

func TestCachePathFollowsConfig(t *testing.T) {
	writeScene(t)
	dir := filepath.Join(t.TempDir(), "artifacts")
	cfg := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfg, []byte("[cache]\nenabled = true\ndir = \""+filepath.ToSlash(dir)+"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "--config", cfg, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out); got != filepath.ToSlash(dir) {
		t.Errorf("cache path = %q, want %q", got, dir)
	}
}

func TestArtifactKeyerScopedByVersion(t *testing.T) {
	old := buildinfo.Version
	defer func() { buildinfo.Version = old }()

	opts := cache.ExportKeyOpts{Format: formatDOT}
	buildinfo.Version = "v1.0.0"
	k1 := artifactKeyer().ExportKey("scene", opts)
	buildinfo.Version = "v1.1.0"
	k2 := artifactKeyer().ExportKey("scene", opts)

	if !strings.HasPrefix(k1, "v1.0.0:export:dot:") {
		t.Errorf("key %q lacks the version scope", k1)
	}
	if k1 == k2 {
		t.Error("keys from different builds must differ")
	}
}

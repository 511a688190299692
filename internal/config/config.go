// Package config loads the activitylens TOML configuration.
//
// The file lives at $XDG_CONFIG_HOME/activitylens/config.toml. Every key is
// optional; missing keys keep their defaults and command-line flags override
// both.
//
//	[render]
//	width = 1600
//	supersample = 3
//
//	[cluster]
//	features = ["host", "user"]
//
//	[styles.alert]
//	font = "mono"
//	size = 12
//	color = "#222222"
//	background = "#d94f4f"
//	shape = "diamond"
//
//	[cache]
//	enabled = true
package config

import (
	"image/color"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/activitylens/activitylens/pkg/errors"
	"github.com/activitylens/activitylens/pkg/fonts"
	"github.com/activitylens/activitylens/pkg/pipeline"
	"github.com/activitylens/activitylens/pkg/raster"
)

// Config holds activitylens configuration.
type Config struct {
	Render  RenderConfig           `toml:"render"`
	Cluster ClusterConfig          `toml:"cluster"`
	Styles  map[string]StyleConfig `toml:"styles"`
	Cache   CacheConfig            `toml:"cache"`
}

// RenderConfig controls frame geometry.
type RenderConfig struct {
	Width       int     `toml:"width"`
	Height      int     `toml:"height"`
	Scale       float64 `toml:"scale"`
	Supersample int     `toml:"supersample"`
	Labels      bool    `toml:"labels"`
}

// ClusterConfig holds the default active features.
type ClusterConfig struct {
	Features []string `toml:"features"`
}

// StyleConfig overrides or adds a raster style. Zero fields keep the value
// of the built-in style of the same name.
type StyleConfig struct {
	Font       string  `toml:"font"` // "regular" or "mono"
	Size       float64 `toml:"size"`
	Color      string  `toml:"color"`      // #rgb or #rrggbb
	Background string  `toml:"background"` // #rgb or #rrggbb
	Shape      string  `toml:"shape"`      // none, circle, box, diamond
	Padding    float64 `toml:"padding"`
}

// CacheConfig controls the artifact cache.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"` // empty means the user cache directory
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Width:       pipeline.DefaultWidth,
			Height:      pipeline.DefaultHeight,
			Scale:       pipeline.DefaultScale,
			Supersample: pipeline.DefaultSupersample,
		},
		Cache: CacheConfig{Enabled: true},
	}
}

// Dir returns the activitylens config directory path.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "activitylens")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config at path over the defaults and validates it. An empty
// path reads the default location, where a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undec[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to path, creating its directory.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Validate checks every section.
func (c *Config) Validate() error {
	opts := c.Options()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "[render]")
	}
	for _, name := range slices.Sorted(maps.Keys(c.Styles)) {
		if err := errors.ValidateName("style", name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "[styles.%s]", name)
		}
		if _, err := c.Styles[name].merge(raster.StyleSpec{}); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "[styles.%s]", name)
		}
	}
	return nil
}

// Options returns pipeline options seeded from the [render] and [cluster]
// sections.
func (c *Config) Options() pipeline.Options {
	return pipeline.Options{
		Features:    slices.Clone(c.Cluster.Features),
		Labels:      c.Render.Labels,
		Width:       c.Render.Width,
		Height:      c.Render.Height,
		Scale:       c.Render.Scale,
		Supersample: c.Render.Supersample,
	}
}

// Registry returns the default raster registry with the configured styles
// merged in.
func (c *Config) Registry() (*raster.Registry, error) {
	reg, err := raster.DefaultRegistry()
	if err != nil {
		return nil, err
	}
	for _, name := range slices.Sorted(maps.Keys(c.Styles)) {
		base, _ := reg.Style(name)
		spec, err := c.Styles[name].merge(base)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "[styles.%s]", name)
		}
		if spec.Font == nil {
			if spec.Font, err = fonts.GoRegular(); err != nil {
				return nil, err
			}
		}
		if spec.Size == 0 {
			spec.Size = 10
		}
		if err := reg.Register(name, spec); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "[styles.%s]", name)
		}
	}
	return reg, nil
}

func (s StyleConfig) merge(base raster.StyleSpec) (raster.StyleSpec, error) {
	if s.Font != "" {
		f, err := fonts.ByName(s.Font)
		if err != nil {
			return base, err
		}
		base.Font = f
	}
	if s.Size < 0 || s.Padding < 0 {
		return base, errors.New(errors.ErrCodeInvalidConfig, "size and padding must not be negative")
	}
	if s.Size > 0 {
		base.Size = s.Size
	}
	if s.Padding > 0 {
		base.Padding = s.Padding
	}
	if s.Color != "" {
		c, err := parseColor(s.Color)
		if err != nil {
			return base, err
		}
		base.Color = c
	}
	if s.Background != "" {
		c, err := parseColor(s.Background)
		if err != nil {
			return base, err
		}
		base.Background = c
	}
	if s.Shape != "" {
		shape, err := raster.ParseShape(s.Shape)
		if err != nil {
			return base, err
		}
		base.Shape = shape
	}
	return base, nil
}

func parseColor(s string) (color.RGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "color %q", s)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

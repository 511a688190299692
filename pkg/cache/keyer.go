package cache

// Keyer builds cache keys for artifacts.
type Keyer interface {
	// FrameKey keys a rasterized frame of a scene.
	FrameKey(sceneHash string, opts FrameKeyOpts) string

	// ExportKey keys a textual or vector export (DOT, SVG) of a scene.
	ExportKey(sceneHash string, opts ExportKeyOpts) string
}

// FrameKeyOpts lists every option that changes a rendered frame.
type FrameKeyOpts struct {
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Scale       float64  `json:"scale"`
	Supersample int      `json:"supersample"`
	Features    []string `json:"features,omitempty"`
	Selected    []string `json:"selected,omitempty"`
	WindowStart int64    `json:"window_start,omitempty"`
	WindowEnd   int64    `json:"window_end,omitempty"`
	Styles      string   `json:"styles,omitempty"` // registry fingerprint
	Labels      bool     `json:"labels,omitempty"`
}

// ExportKeyOpts lists every option that changes an export.
type ExportKeyOpts struct {
	Format   string   `json:"format"`
	Features []string `json:"features,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
}

// DefaultKeyer hashes the scene hash together with the options.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// FrameKey returns "frame:<sha256>".
func (DefaultKeyer) FrameKey(sceneHash string, opts FrameKeyOpts) string {
	return artifactKey("frame", sceneHash, opts)
}

// ExportKey returns "export:<format>:<sha256>".
func (DefaultKeyer) ExportKey(sceneHash string, opts ExportKeyOpts) string {
	return artifactKey("export:"+opts.Format, sceneHash, opts)
}

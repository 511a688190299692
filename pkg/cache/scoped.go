package cache

// ScopedKeyer wraps a Keyer with a prefix. The CLI prefixes keys with the
// build version.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v0.3.0:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// FrameKey generates a prefixed frame key.
func (k *ScopedKeyer) FrameKey(sceneHash string, opts FrameKeyOpts) string {
	return k.prefix + k.inner.FrameKey(sceneHash, opts)
}

// ExportKey generates a prefixed export key.
func (k *ScopedKeyer) ExportKey(sceneHash string, opts ExportKeyOpts) string {
	return k.prefix + k.inner.ExportKey(sceneHash, opts)
}

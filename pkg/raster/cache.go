package raster

import (
	"fmt"
	"image"
	"image/color"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/activitylens/activitylens/pkg/errors"
	"github.com/activitylens/activitylens/pkg/observability"
)

// Point is a position in bitmap pixels relative to an entry's anchor.
type Point struct {
	X, Y float64
}

// Entry is a rasterized bitmap.
type Entry struct {
	Image  *image.RGBA
	Width  int
	Height int

	// Anchor is the pixel inside Image that lands on the item's position.
	Anchor image.Point

	// Outline is the hit-test polygon relative to Anchor. Text entries use
	// their bounding box; node entries trace their shape.
	Outline []Point
}

// Contains reports whether (x, y), relative to the anchor, lies inside the
// entry's outline.
func (e *Entry) Contains(x, y float64) bool {
	n := len(e.Outline)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := e.Outline[i], e.Outline[j]
		if (a.Y > y) != (b.Y > y) && x < (b.X-a.X)*(y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// Factory rasterizes one entry at the given scale.
type Factory func(scale float64) (*Entry, error)

// Request pairs a key with the factory that produces its entry.
type Request struct {
	Key     string
	Factory Factory
}

type slot struct {
	entry   *Entry
	factory Factory
}

// Cache memoizes entries by key at a single render scale.
type Cache struct {
	scale float64
	slots map[string]*slot
	order []string
}

// NewCache returns an empty cache at the given scale. A non-positive scale
// is treated as 1.
func NewCache(scale float64) *Cache {
	if scale <= 0 {
		scale = 1
	}
	return &Cache{scale: scale, slots: make(map[string]*slot)}
}

// GetOrCreate returns the entry stored under key, invoking factory on a miss.
// The factory runs at most once per key until the next Clear or Scale. A
// failing factory stores nothing and its error is returned unchanged.
func (c *Cache) GetOrCreate(key string, factory Factory) (*Entry, error) {
	if s, ok := c.slots[key]; ok {
		observability.Raster().OnRasterHit(key)
		return s.entry, nil
	}
	observability.Raster().OnRasterMiss(key)
	e, err := factory(c.scale)
	if err != nil {
		return nil, err
	}
	c.slots[key] = &slot{entry: e, factory: factory}
	c.order = append(c.order, key)
	return e, nil
}

// Get returns the entry stored under key without creating it.
func (c *Cache) Get(key string) (*Entry, bool) {
	s, ok := c.slots[key]
	if !ok {
		return nil, false
	}
	return s.entry, true
}

// Prerender populates entries for a batch of requests, skipping keys that are
// already cached. It stops at the first factory error.
func (c *Cache) Prerender(reqs []Request) error {
	for _, r := range reqs {
		if _, err := c.GetOrCreate(r.Key, r.Factory); err != nil {
			return fmt.Errorf("prerender %s: %w", r.Key, err)
		}
	}
	return nil
}

// Scale sets the render scale and regenerates every entry from its stored
// factory in insertion order. An entry whose factory fails is dropped; the
// remaining entries are still regenerated and the first error is returned.
// A non-positive k is rejected and leaves the cache untouched.
func (c *Cache) Scale(k float64) error {
	if k <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %g", k)
	}
	start := time.Now()
	c.scale = k

	var first error
	kept := c.order[:0]
	for _, key := range c.order {
		s := c.slots[key]
		e, err := s.factory(k)
		if err != nil {
			delete(c.slots, key)
			if first == nil {
				first = fmt.Errorf("rescale %s: %w", key, err)
			}
			continue
		}
		s.entry = e
		kept = append(kept, key)
	}
	c.order = kept

	observability.Raster().OnRescale(k, len(c.order), time.Since(start), first)
	return first
}

// GetScale returns the current render scale.
func (c *Cache) GetScale() float64 { return c.scale }

// Clear drops every entry.
func (c *Cache) Clear() {
	c.slots = make(map[string]*slot)
	c.order = nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int { return len(c.slots) }

// Keys returns cached keys in insertion order.
func (c *Cache) Keys() []string {
	return append([]string(nil), c.order...)
}

// Draw blits the entry stored under key onto dst so that its anchor lands on
// at. It reports false if nothing is cached under key.
func (c *Cache) Draw(dst xdraw.Image, at image.Point, key string) bool {
	return c.DrawAlpha(dst, at, key, 1)
}

// DrawAlpha is Draw with a uniform opacity in [0, 1].
func (c *Cache) DrawAlpha(dst xdraw.Image, at image.Point, key string, alpha float64) bool {
	s, ok := c.slots[key]
	if !ok {
		return false
	}
	e := s.entry
	r := image.Rectangle{Min: at.Sub(e.Anchor)}
	r.Max = r.Min.Add(image.Pt(e.Width, e.Height))
	if alpha >= 1 {
		xdraw.Draw(dst, r, e.Image, image.Point{}, xdraw.Over)
		return true
	}
	if alpha <= 0 {
		return true
	}
	mask := image.NewUniform(color.Alpha{A: uint8(alpha * 255)})
	xdraw.DrawMask(dst, r, e.Image, image.Point{}, mask, image.Point{}, xdraw.Over)
	return true
}

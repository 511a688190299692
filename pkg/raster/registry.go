package raster

import (
	"fmt"
	"image/color"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"

	"github.com/activitylens/activitylens/pkg/errors"
	"github.com/activitylens/activitylens/pkg/fonts"
)

// Shape is the outline drawn behind a node label.
type Shape uint8

const (
	ShapeNone Shape = iota
	ShapeCircle
	ShapeBox
	ShapeDiamond
)

var shapeNames = map[Shape]string{
	ShapeNone:    "none",
	ShapeCircle:  "circle",
	ShapeBox:     "box",
	ShapeDiamond: "diamond",
}

func (s Shape) String() string {
	if n, ok := shapeNames[s]; ok {
		return n
	}
	return fmt.Sprintf("shape(%d)", uint8(s))
}

// ParseShape converts a shape name. The empty string is ShapeNone.
func ParseShape(s string) (Shape, error) {
	if s == "" {
		return ShapeNone, nil
	}
	for sh, n := range shapeNames {
		if strings.EqualFold(n, s) {
			return sh, nil
		}
	}
	return ShapeNone, errors.New(errors.ErrCodeInvalidConfig, "unknown shape %q", s)
}

// StyleSpec describes how a named style is rasterized.
type StyleSpec struct {
	Font       *opentype.Font
	Size       float64 // point size at scale 1
	Color      color.RGBA
	Background color.RGBA
	Shape      Shape
	Padding    float64 // pixels at scale 1
}

type faceKey struct {
	style string
	scale float64
}

// Registry maps style names to specs and caches font faces per
// (style, scale).
type Registry struct {
	styles map[string]StyleSpec
	faces  map[faceKey]font.Face
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		styles: make(map[string]StyleSpec),
		faces:  make(map[faceKey]font.Face),
	}
}

// Register adds or replaces a style. Replacing a style drops its cached
// faces; bitmaps already rendered with it stay in any Cache until Clear.
func (r *Registry) Register(name string, spec StyleSpec) error {
	if err := errors.ValidateName("style", name); err != nil {
		return err
	}
	if spec.Font == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "style %q has no font", name)
	}
	if spec.Size <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "style %q: size must be positive", name)
	}
	r.dropFaces(name)
	r.styles[name] = spec
	return nil
}

// Style returns the spec registered under name.
func (r *Registry) Style(name string) (StyleSpec, error) {
	s, ok := r.styles[name]
	if !ok {
		return StyleSpec{}, &MissingStyleError{Style: name}
	}
	return s, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.styles[name]
	return ok
}

// Names returns registered style names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.styles))
}

// Face returns the font face of a style at a render scale.
func (r *Registry) Face(name string, scale float64) (font.Face, error) {
	k := faceKey{name, scale}
	if f, ok := r.faces[k]; ok {
		return f, nil
	}
	spec, err := r.Style(name)
	if err != nil {
		return nil, err
	}
	f, err := opentype.NewFace(spec.Font, &opentype.FaceOptions{
		Size:    spec.Size * scale,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("face %s@%g: %w", name, scale, err)
	}
	r.faces[k] = f
	return f, nil
}

// Close releases every cached face.
func (r *Registry) Close() error {
	var first error
	for k, f := range r.faces {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
		delete(r.faces, k)
	}
	return first
}

// PruneFaces closes and drops cached faces built for any scale other than
// keep.
func (r *Registry) PruneFaces(keep float64) {
	for k, f := range r.faces {
		if k.scale != keep {
			_ = f.Close()
			delete(r.faces, k)
		}
	}
}

// FaceCount returns the number of cached faces.
func (r *Registry) FaceCount() int { return len(r.faces) }

// Fingerprint digests every registered style: name, font, size, colors,
// shape and padding. Two registries with equal fingerprints rasterize
// identically.
func (r *Registry) Fingerprint() string {
	d := xxhash.New()
	for _, name := range r.Names() {
		s := r.styles[name]
		fmt.Fprintf(d, "%s|%s|%g|%02x%02x%02x%02x|%02x%02x%02x%02x|%d|%g\n",
			name, fontName(s.Font), s.Size,
			s.Color.R, s.Color.G, s.Color.B, s.Color.A,
			s.Background.R, s.Background.G, s.Background.B, s.Background.A,
			s.Shape, s.Padding)
	}
	return strconv.FormatUint(d.Sum64(), 16)
}

// fontName identifies a font by its full name and glyph count.
func fontName(f *opentype.Font) string {
	if f == nil {
		return ""
	}
	name, err := f.Name(nil, sfnt.NameIDFull)
	if err != nil {
		name = "?"
	}
	return fmt.Sprintf("%s/%d", name, f.NumGlyphs())
}

func (r *Registry) dropFaces(name string) {
	for k, f := range r.faces {
		if k.style == name {
			_ = f.Close()
			delete(r.faces, k)
		}
	}
}

// Default style names.
const (
	StyleLabel   = "label"
	StyleCluster = "cluster"
	StyleEvent   = "event"
	StyleAlert   = "alert"
	StyleMono    = "mono"
)

// DefaultRegistry returns a registry holding the built-in styles, backed by
// the embedded Go fonts.
func DefaultRegistry() (*Registry, error) {
	regular, err := fonts.GoRegular()
	if err != nil {
		return nil, fmt.Errorf("load regular font: %w", err)
	}
	mono, err := fonts.GoMono()
	if err != nil {
		return nil, fmt.Errorf("load mono font: %w", err)
	}

	ink := color.RGBA{0x22, 0x22, 0x2a, 0xff}
	r := NewRegistry()
	defaults := map[string]StyleSpec{
		StyleLabel:   {Font: regular, Size: 11, Color: ink, Padding: 2},
		StyleCluster: {Font: regular, Size: 13, Color: ink, Background: color.RGBA{0xf2, 0xf0, 0xe6, 0xff}, Shape: ShapeBox, Padding: 4},
		StyleEvent:   {Font: regular, Size: 10, Color: ink, Background: color.RGBA{0x5b, 0x8d, 0xd9, 0xff}, Shape: ShapeCircle, Padding: 2},
		StyleAlert:   {Font: regular, Size: 10, Color: ink, Background: color.RGBA{0xd9, 0x4f, 0x4f, 0xff}, Shape: ShapeDiamond, Padding: 2},
		StyleMono:    {Font: mono, Size: 10, Color: ink, Padding: 2},
	}
	for _, name := range slices.Sorted(maps.Keys(defaults)) {
		if err := r.Register(name, defaults[name]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

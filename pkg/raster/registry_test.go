package raster

import (
	"errors"
	"image/color"
	"slices"
	"testing"

	"github.com/activitylens/activitylens/pkg/fonts"
)

func TestDefaultRegistry(t *testing.T) {
	reg, err := DefaultRegistry()
	if err != nil {
		t.Fatal(err)
	}
	defer reg.Close()

	want := []string{StyleAlert, StyleCluster, StyleEvent, StyleLabel, StyleMono}
	if got := reg.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	f1, err := reg.Face(StyleLabel, 2)
	if err != nil {
		t.Fatal(err)
	}
	f2, _ := reg.Face(StyleLabel, 2)
	if f1 != f2 {
		t.Error("Face should be cached per (style, scale)")
	}
	f3, _ := reg.Face(StyleLabel, 1)
	if f3 == f1 {
		t.Error("different scales should yield different faces")
	}
}

func TestRegisterValidation(t *testing.T) {
	regular, err := fonts.GoRegular()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name    string
		style   string
		spec    StyleSpec
		wantErr bool
	}{
		{"ok", "edge-label", StyleSpec{Font: regular, Size: 9}, false},
		{"bad name", "edge label", StyleSpec{Font: regular, Size: 9}, true},
		{"no font", "x", StyleSpec{Size: 9}, true},
		{"zero size", "x", StyleSpec{Font: regular}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().Register(tt.style, tt.spec)
			if (err != nil) != tt.wantErr {
				t.Errorf("Register error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFaceMissingStyle(t *testing.T) {
	_, err := NewRegistry().Face("ghost", 1)
	var mse *MissingStyleError
	if !errors.As(err, &mse) || mse.Style != "ghost" {
		t.Errorf("err = %v, want MissingStyleError for ghost", err)
	}
}

func TestParseShape(t *testing.T) {
	tests := []struct {
		in      string
		want    Shape
		wantErr bool
	}{
		{"", ShapeNone, false},
		{"circle", ShapeCircle, false},
		{"Box", ShapeBox, false},
		{"diamond", ShapeDiamond, false},
		{"hexagon", ShapeNone, true},
	}
	for _, tt := range tests {
		got, err := ParseShape(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseShape(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestTextFactory(t *testing.T) {
	reg, err := DefaultRegistry()
	if err != nil {
		t.Fatal(err)
	}
	small, err := TextFactory(reg, StyleLabel, "login failed")(1)
	if err != nil {
		t.Fatal(err)
	}
	big, err := TextFactory(reg, StyleLabel, "login failed")(2)
	if err != nil {
		t.Fatal(err)
	}
	if big.Width <= small.Width || big.Height <= small.Height {
		t.Errorf("scale 2 (%dx%d) should exceed scale 1 (%dx%d)", big.Width, big.Height, small.Width, small.Height)
	}
	if small.Anchor.X != small.Width/2 {
		t.Errorf("anchor = %v, want centered", small.Anchor)
	}
	if !small.Contains(0, 0) {
		t.Error("text outline should contain its anchor")
	}
	if !hasInk(small) {
		t.Error("text bitmap has no visible pixels")
	}
}

func TestNodeFactory(t *testing.T) {
	reg, err := DefaultRegistry()
	if err != nil {
		t.Fatal(err)
	}
	for _, style := range []string{StyleEvent, StyleAlert, StyleCluster} {
		t.Run(style, func(t *testing.T) {
			e, err := NodeFactory(reg, style, Look{Alpha: 1, Selected: true, Badge: true}, "n1")(1.5)
			if err != nil {
				t.Fatal(err)
			}
			if len(e.Outline) < 4 {
				t.Fatalf("outline has %d points", len(e.Outline))
			}
			if !e.Contains(0, 0) {
				t.Error("outline should contain the node center")
			}
			if e.Contains(float64(e.Width), 0) {
				t.Error("outline should not extend past the bitmap")
			}
			if got := e.Image.RGBAAt(e.Anchor.X, e.Anchor.Y); got.A == 0 {
				t.Error("shape center is transparent")
			}
		})
	}
}

func TestNodeFactoryAlpha(t *testing.T) {
	reg, err := DefaultRegistry()
	if err != nil {
		t.Fatal(err)
	}
	full, _ := NodeFactory(reg, StyleEvent, Look{Alpha: 1}, "")(1)
	faint, _ := NodeFactory(reg, StyleEvent, Look{Alpha: 0.25}, "")(1)
	a := full.Image.RGBAAt(full.Anchor.X, full.Anchor.Y).A
	b := faint.Image.RGBAAt(faint.Anchor.X, faint.Anchor.Y).A
	if b >= a {
		t.Errorf("faint alpha %d should be below full alpha %d", b, a)
	}
}

func hasInk(e *Entry) bool {
	for y := 0; y < e.Height; y++ {
		for x := 0; x < e.Width; x++ {
			if e.Image.RGBAAt(x, y) != (color.RGBA{}) {
				return true
			}
		}
	}
	return false
}

func TestFingerprint(t *testing.T) {
	base, err := DefaultRegistry()
	if err != nil {
		t.Fatal(err)
	}
	defer base.Close()
	same, _ := DefaultRegistry()
	defer same.Close()
	if base.Fingerprint() != same.Fingerprint() {
		t.Error("equal registries should share a fingerprint")
	}

	mono, err := fonts.GoMono()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		edit func(*StyleSpec)
	}{
		{"Background", func(s *StyleSpec) { s.Background = color.RGBA{0, 0x80, 0, 0xff} }},
		{"Color", func(s *StyleSpec) { s.Color = color.RGBA{0xff, 0, 0, 0xff} }},
		{"Size", func(s *StyleSpec) { s.Size++ }},
		{"Shape", func(s *StyleSpec) { s.Shape = ShapeBox }},
		{"Padding", func(s *StyleSpec) { s.Padding += 3 }},
		{"Font", func(s *StyleSpec) { s.Font = mono }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, _ := DefaultRegistry()
			defer reg.Close()
			spec, _ := reg.Style(StyleEvent)
			tt.edit(&spec)
			if err := reg.Register(StyleEvent, spec); err != nil {
				t.Fatal(err)
			}
			if reg.Fingerprint() == base.Fingerprint() {
				t.Errorf("changing %s kept the fingerprint", tt.name)
			}
		})
	}
}

func TestPruneFaces(t *testing.T) {
	reg, err := DefaultRegistry()
	if err != nil {
		t.Fatal(err)
	}
	defer reg.Close()

	for _, k := range []float64{1, 2, 3} {
		if _, err := reg.Face(StyleLabel, k); err != nil {
			t.Fatal(err)
		}
		if _, err := reg.Face(StyleEvent, k); err != nil {
			t.Fatal(err)
		}
	}
	if n := reg.FaceCount(); n != 6 {
		t.Fatalf("FaceCount() = %d, want 6", n)
	}
	reg.PruneFaces(2)
	if n := reg.FaceCount(); n != 2 {
		t.Errorf("FaceCount() after prune = %d, want 2", n)
	}
}

package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
)

// Look carries the per-item state a node bitmap depends on. It is decoded
// from the item's style word by the caller, so the key (style word + label
// hash) fully determines it.
type Look struct {
	Alpha    float64 // fill opacity in [0, 1]
	Selected bool    // draw a selection ring
	Badge    bool    // draw a collapsed marker
}

const circleSegments = 24

// NodeFactory rasterizes a node: the style's shape with the label beneath
// it. The anchor is the shape's center and the outline traces the shape.
func NodeFactory(reg *Registry, style string, look Look, label string) Factory {
	return func(scale float64) (*Entry, error) {
		spec, err := reg.Style(style)
		if err != nil {
			return nil, err
		}
		face, err := reg.Face(style, scale)
		if err != nil {
			return nil, err
		}

		r := spec.Size * scale
		pad := math.Ceil(spec.Padding*scale) + math.Ceil(scale) // room for the ring
		m := face.Metrics()
		lineH := float64((m.Ascent + m.Descent).Ceil())

		measure := gg.NewContext(1, 1)
		measure.SetFontFace(face)
		textW, _ := measure.MeasureString(label)

		w := int(math.Ceil(math.Max(2*(r+pad), textW+2*pad)))
		h := int(math.Ceil(2*(r+pad) + lineH))
		if label == "" {
			h = int(math.Ceil(2 * (r + pad)))
		}
		cx, cy := float64(w)/2, r+pad

		img := image.NewRGBA(image.Rect(0, 0, w, h))
		dc := gg.NewContextForRGBA(img)

		fill := withAlpha(spec.Background, look.Alpha)
		outline := shapePath(dc, spec.Shape, cx, cy, r)
		if spec.Shape != ShapeNone {
			dc.SetColor(fill)
			dc.FillPreserve()
			dc.SetColor(withAlpha(spec.Color, look.Alpha))
			dc.SetLineWidth(math.Max(1, scale/2))
			dc.Stroke()
		}
		if look.Selected {
			shapePath(dc, spec.Shape, cx, cy, r+pad/2)
			dc.SetColor(spec.Color)
			dc.SetLineWidth(math.Max(1.5, scale))
			dc.Stroke()
		}
		if look.Badge {
			dc.DrawCircle(cx+r*0.75, cy-r*0.75, math.Max(2, r/4))
			dc.SetColor(spec.Color)
			dc.Fill()
		}
		if label != "" {
			dc.SetFontFace(face)
			dc.SetColor(withAlpha(spec.Color, look.Alpha))
			dc.DrawStringAnchored(label, cx, cy+r+pad, 0.5, 1)
		}

		anchor := image.Pt(int(math.Round(cx)), int(math.Round(cy)))
		for i := range outline {
			outline[i].X -= float64(anchor.X)
			outline[i].Y -= float64(anchor.Y)
		}
		return &Entry{Image: img, Width: w, Height: h, Anchor: anchor, Outline: outline}, nil
	}
}

// shapePath adds the shape to dc's current path and returns its polygon.
func shapePath(dc *gg.Context, s Shape, cx, cy, r float64) []Point {
	var pts []Point
	switch s {
	case ShapeBox:
		dc.DrawRoundedRectangle(cx-r, cy-r, 2*r, 2*r, r/4)
		return []Point{{cx - r, cy - r}, {cx + r, cy - r}, {cx + r, cy + r}, {cx - r, cy + r}}
	case ShapeDiamond:
		pts = []Point{{cx, cy - r}, {cx + r, cy}, {cx, cy + r}, {cx - r, cy}}
	default:
		// Circles, and the hit area of shapeless nodes.
		pts = make([]Point, circleSegments)
		for i := range pts {
			a := 2 * math.Pi * float64(i) / circleSegments
			pts[i] = Point{cx + r*math.Cos(a), cy + r*math.Sin(a)}
		}
		if s == ShapeCircle {
			dc.DrawCircle(cx, cy, r)
		}
		return pts
	}
	dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.ClosePath()
	return pts
}

func withAlpha(c color.RGBA, alpha float64) color.NRGBA {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(float64(c.A) * alpha)}
}

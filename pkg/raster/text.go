package raster

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// TextFactory rasterizes text in a registered style. The anchor is the
// center of the bitmap.
func TextFactory(reg *Registry, style, text string) Factory {
	return func(scale float64) (*Entry, error) {
		spec, err := reg.Style(style)
		if err != nil {
			return nil, err
		}
		face, err := reg.Face(style, scale)
		if err != nil {
			return nil, err
		}

		pad := int(math.Ceil(spec.Padding * scale))
		m := face.Metrics()
		w := font.MeasureString(face, text).Ceil() + 2*pad
		h := (m.Ascent + m.Descent).Ceil() + 2*pad
		if w < 1 {
			w = 1
		}

		img := image.NewRGBA(image.Rect(0, 0, w, h))
		if spec.Background.A > 0 {
			xdraw.Draw(img, img.Bounds(), image.NewUniform(spec.Background), image.Point{}, xdraw.Src)
		}
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(spec.Color),
			Face: face,
			Dot:  fixed.Point26_6{X: fixed.I(pad), Y: fixed.I(pad) + m.Ascent},
		}
		d.DrawString(text)

		return &Entry{
			Image:   img,
			Width:   w,
			Height:  h,
			Anchor:  image.Pt(w/2, h/2),
			Outline: rectOutline(w, h, image.Pt(w/2, h/2)),
		}, nil
	}
}

func rectOutline(w, h int, anchor image.Point) []Point {
	x0, y0 := float64(-anchor.X), float64(-anchor.Y)
	x1, y1 := x0+float64(w), y0+float64(h)
	return []Point{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

package raster

import (
	"image"
	"image/color"
	"strconv"

	"github.com/fogleman/gg"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// MarkerStyle controls how clicked points are drawn.
type MarkerStyle struct {
	Radius float64
	Marker color.Color
	Line   color.Color
	Labels bool
}

// DefaultMarkerStyle draws 5px filled red circles joined by yellow segments.
func DefaultMarkerStyle() MarkerStyle {
	return MarkerStyle{
		Radius: 5,
		Marker: color.RGBA{R: 255, A: 255},
		Line:   color.RGBA{R: 255, G: 212, A: 255},
		Labels: true,
	}
}

// ParseColor converts a "#rrggbb" string, falling back when it cannot be parsed.
func ParseColor(hex string, fallback color.Color) color.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return fallback
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// DrawMarkers returns a copy of base with a filled circle at every point.
// Consecutive pairs (0-1, 2-3) are joined with a line. base is not modified.
func DrawMarkers(base image.Image, points []image.Point, st MarkerStyle) image.Image {
	if base == nil {
		return nil
	}
	dc := gg.NewContextForImage(base)
	if st.Radius <= 0 {
		st.Radius = DefaultMarkerStyle().Radius
	}
	if st.Marker == nil {
		st.Marker = DefaultMarkerStyle().Marker
	}
	if st.Line != nil {
		dc.SetColor(st.Line)
		dc.SetLineWidth(1.5)
		for i := 0; i+1 < len(points); i += 2 {
			a, b := points[i], points[i+1]
			dc.DrawLine(float64(a.X), float64(a.Y), float64(b.X), float64(b.Y))
			dc.Stroke()
		}
	}
	dc.SetColor(st.Marker)
	for i, p := range points {
		x, y := float64(p.X), float64(p.Y)
		dc.DrawCircle(x, y, st.Radius)
		dc.Fill()
		if st.Labels {
			// basicfont is gg's default face
			dc.DrawStringAnchored(strconv.Itoa(i+1), x+st.Radius+2, y-st.Radius-2, 0, 0)
		}
	}
	return dc.Image()
}

package export

import "math"

// PageGeometry describes the physical PDF page in millimetres.
type PageGeometry struct {
	WidthMM  float64
	HeightMM float64
	MarginMM float64
}

// A4 is the geometry both exporters print to.
var A4 = PageGeometry{WidthMM: 210, HeightMM: 297, MarginMM: 10}

// ContentWidthMM is the printable width between margins.
func (g PageGeometry) ContentWidthMM() float64 { return g.WidthMM - 2*g.MarginMM }

// ContentHeightMM is the printable height between margins.
func (g PageGeometry) ContentHeightMM() float64 { return g.HeightMM - 2*g.MarginMM }

// Slice is one horizontal band of the captured raster, in source pixels.
type Slice struct {
	Y      int
	Height int
}

// SlicePlan computes how a tall raster image is cut across physical pages.
// The capture is laid out once at a fixed width and then mechanically
// cropped; content is never reflowed. Each band covers one page's printable
// height, advancing top to bottom until the image is exhausted.
func SlicePlan(imgWidthPx, imgHeightPx int, geo PageGeometry) []Slice {
	if imgWidthPx <= 0 || imgHeightPx <= 0 {
		return nil
	}
	pxPerMM := float64(imgWidthPx) / geo.ContentWidthMM()
	bandPx := int(math.Floor(geo.ContentHeightMM() * pxPerMM))
	if bandPx <= 0 {
		return nil
	}

	var slices []Slice
	for y := 0; y < imgHeightPx; y += bandPx {
		h := bandPx
		if y+h > imgHeightPx {
			h = imgHeightPx - y
		}
		slices = append(slices, Slice{Y: y, Height: h})
	}
	return slices
}

// HeightMM converts a slice height back to printed millimetres for the
// given raster width.
func (s Slice) HeightMM(imgWidthPx int, geo PageGeometry) float64 {
	pxPerMM := float64(imgWidthPx) / geo.ContentWidthMM()
	return float64(s.Height) / pxPerMM
}

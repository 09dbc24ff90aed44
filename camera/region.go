package camera

import (
	"github.com/golang/geo/s2"
)

// Point models a map coordinate as Lon/Lat ([-180, 180], [-90, 90])
type Point [2]float64

// NewPoint creates a new Point, clamping coordinates to the valid range
func NewPoint(lng, lat float64) Point {
	return Point{normLng(lng), normLat(lat)}
}

func (p Point) IsValid() bool {
	return p[0] >= -180 && p[0] <= 180 &&
		p[1] >= -90 && p[1] <= 90
}

// Lng returns the longitude in degrees
func (p Point) Lng() float64 {
	return p[0]
}

// Lat returns the latitude in degrees
func (p Point) Lat() float64 {
	return p[1]
}

// LatLng converts the point for s2 geometry
func (p Point) LatLng() s2.LatLng {
	return s2.LatLngFromDegrees(p[1], p[0])
}

func normLng(x float64) float64 {
	if x < -180 {
		return -180
	}
	if x > 180 {
		return 180
	}
	return x
}

func normLat(y float64) float64 {
	if y < -90 {
		return -90
	}
	if y > 90 {
		return 90
	}
	return y
}

// Region is a camera region: a center coordinate plus a span in degrees
// (lng span, then lat span). It is the unit the renderer animates to and
// reports back as its viewport.
type Region struct {
	Center Point      `json:"center"`
	Span   [2]float64 `json:"span"`
}

func (r Region) IsValid() bool {
	return r.Center.IsValid() &&
		r.Span[0] > 0 && r.Span[0] <= 360 &&
		r.Span[1] > 0 && r.Span[1] <= 180
}

// Size returns the span of the region, for comparison against token limits
func (r Region) Size() [2]float64 {
	return r.Span
}

// Rect returns the s2 rect covered by the region
func (r Region) Rect() s2.Rect {
	return s2.RectFromCenterSize(r.Center.LatLng(), s2.LatLngFromDegrees(r.Span[1], r.Span[0]))
}

// Contains reports whether the point lies inside the region
func (r Region) Contains(p Point) bool {
	return r.Rect().ContainsLatLng(p.LatLng())
}

var (
	// PortugalOverview frames the continental dataset and is the fallback
	// overview when no points are loaded
	PortugalOverview = Region{Center: Point{-8.0, 39.5}, Span: [2]float64{4.5, 6.0}}

	// FocusSpan is the span used when the camera closes on one castle
	FocusSpan = [2]float64{0.05, 0.05}
	// LocateSpan is the span used when the camera centers on the user
	LocateSpan = [2]float64{0.2, 0.2}
)

// Around builds a tight region centered on p. The s2 rect math keeps the
// region inside [-90, 90] latitude near the poles.
func Around(p Point, span [2]float64) Region {
	rect := s2.RectFromCenterSize(p.LatLng(), s2.LatLngFromDegrees(span[1], span[0]))
	return fromRect(rect)
}

// FitAll builds the smallest region containing every point, expanded by
// margin degrees on each side. With no points it returns PortugalOverview.
func FitAll(pts []Point, margin float64) Region {
	if len(pts) == 0 {
		return PortugalOverview
	}
	rect := s2.EmptyRect()
	for _, p := range pts {
		rect = rect.AddPoint(p.LatLng())
	}
	rect = rect.Expanded(s2.LatLngFromDegrees(margin, margin))
	return fromRect(rect)
}

func fromRect(rect s2.Rect) Region {
	center := rect.Center()
	size := rect.Size()
	return Region{
		Center: Point{center.Lng.Degrees(), center.Lat.Degrees()},
		Span:   [2]float64{size.Lng.Degrees(), size.Lat.Degrees()},
	}
}

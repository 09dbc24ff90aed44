package camera

import (
	"math"
	"testing"
)

func TestPointValid(t *testing.T) {
	p := Point{-9.13, 38.71}
	if !p.IsValid() {
		t.Fail()
	}
	p = Point{-181, 38.71}
	if p.IsValid() {
		t.Fail()
	}
	p = Point{-9.13, 91}
	if p.IsValid() {
		t.Fail()
	}
}

func TestNewPointClamps(t *testing.T) {
	p := NewPoint(-200, 100)
	if p[0] != -180 || p[1] != 90 {
		t.Errorf("expected clamped point, got %v", p)
	}
	if !p.IsValid() {
		t.Fail()
	}
}

func TestRegionValid(t *testing.T) {
	r := Region{Center: Point{-8, 39.5}, Span: [2]float64{4.5, 6}}
	if !r.IsValid() {
		t.Fail()
	}
	r = Region{Center: Point{-8, 39.5}, Span: [2]float64{0, 6}}
	if r.IsValid() {
		t.Error("zero span should be invalid")
	}
	r = Region{Center: Point{-8, 99}, Span: [2]float64{1, 1}}
	if r.IsValid() {
		t.Error("bad center should be invalid")
	}
}

func TestAroundSpan(t *testing.T) {
	p := Point{-9.1335, 38.7139}
	r := Around(p, [2]float64{0.05, 0.05})

	if math.Abs(r.Center.Lat()-p.Lat()) > 1e-6 {
		t.Errorf("center lat drifted: %f", r.Center.Lat())
	}
	if math.Abs(r.Center.Lng()-p.Lng()) > 1e-6 {
		t.Errorf("center lng drifted: %f", r.Center.Lng())
	}
	if math.Abs(r.Span[1]-0.05) > 1e-6 {
		t.Errorf("lat span should be 0.05, got %f", r.Span[1])
	}
	if !r.Contains(p) {
		t.Error("region should contain its center")
	}
	if !r.IsValid() {
		t.Fail()
	}
}

func TestAroundClampsAtPole(t *testing.T) {
	p := Point{10, 89.99}
	r := Around(p, [2]float64{0.2, 0.2})

	top := r.Center.Lat() + r.Span[1]/2
	if top > 90+1e-9 {
		t.Errorf("region extends past the pole: top=%f", top)
	}
	if !r.IsValid() {
		t.Fail()
	}
}

func TestFitAllContainsPoints(t *testing.T) {
	pts := []Point{
		{-9.1335, 38.7139},
		{-8.2906, 41.4478},
		{-7.1631, 38.8816},
		{-8.9489, 37.0006},
	}
	r := FitAll(pts, 0.35)
	for _, p := range pts {
		if !r.Contains(p) {
			t.Errorf("region should contain %v", p)
		}
	}
	if !r.IsValid() {
		t.Fail()
	}
}

func TestFitAllMarginGrows(t *testing.T) {
	pts := []Point{{-9, 38}, {-8, 41}}
	tight := FitAll(pts, 0)
	wide := FitAll(pts, 1)
	if wide.Span[0] <= tight.Span[0] || wide.Span[1] <= tight.Span[1] {
		t.Error("margin should grow the region")
	}
}

func TestFitAllEmptyFallsBack(t *testing.T) {
	r := FitAll(nil, 0.35)
	if r != PortugalOverview {
		t.Errorf("empty input should fall back to the default overview, got %v", r)
	}
}

func TestContains(t *testing.T) {
	r := Region{Center: Point{-8, 39.5}, Span: [2]float64{4.5, 6}}
	inside := Point{-8.5, 40}
	outside := Point{3, 39.5}
	if !r.Contains(inside) {
		t.Fail()
	}
	if r.Contains(outside) {
		t.Fail()
	}
}

// Regions are plain values; their methods must work on returned copies,
// not only on addressable variables.
func TestFocusRegionContainsTarget(t *testing.T) {
	p := NewPoint(-9.1570, 39.3617)
	if !Around(p, FocusSpan).Contains(p) {
		t.Error("focus region should contain its target")
	}
	if !FitAll([]Point{p}, 0.35).Contains(p) {
		t.Error("fitted region should contain its only point")
	}
}

package warp

import (
	"math"
	"testing"

	"github.com/deepteams/nexus"
)

func rampImage(w, h int) *nexus.Image {
	img := nexus.NewGrayU8(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Pix[y*img.RowStride+x] = uint8((x*5 + y*11) % 240)
		}
	}
	return img
}

func identityParams() Params {
	return Params{Scale: 1, PlanarAngle: 0, Tilt: 1, TiltAngle: 0}
}

func TestTransformApply(t *testing.T) {
	tr := Transform{2, 0, 0, 3, 10, 20}
	x, y := tr.Apply(1, 1)
	if x != 12 || y != 23 {
		t.Errorf("Apply = (%g, %g), want (12, 23)", x, y)
	}
}

func TestWarpIdentityShape(t *testing.T) {
	img := rampImage(20, 16)
	wp := NewProcessor()
	wp.SetBgFixed(0)
	wp.Warp(img, identityParams())

	res := wp.Result()
	// Each stage adds the one-pixel border on both sides once; with
	// identity stages every buffer is the source bounding box plus two.
	if res.Width != 22 || res.Height != 18 {
		t.Errorf("result = %dx%d, want 22x18", res.Width, res.Height)
	}
}

func TestWarpIdentityPreservesInterior(t *testing.T) {
	img := rampImage(20, 16)
	wp := NewProcessor()
	wp.SetBgFixed(0)
	wp.Warp(img, identityParams())

	res := wp.Result()
	// The identity pipeline shifts the source by the accumulated
	// one-pixel borders; central pixels copy through exactly.
	for y := 4; y < 12; y++ {
		for x := 4; x < 16; x++ {
			want := img.Pix[y*img.RowStride+x]
			got := res.Pix[(y+1)*res.RowStride+(x+1)]
			if got != want {
				t.Fatalf("result(%d,%d) = %d, want %d", x+1, y+1, got, want)
			}
		}
	}
}

func TestWarpForwardInverseConsistency(t *testing.T) {
	img := rampImage(32, 24)
	wp := NewProcessor()
	wp.Warp(img, Params{Scale: 1.5, PlanarAngle: 0.3, Tilt: 1.4, TiltAngle: 0.2})

	fwd := wp.ForwardTransform()
	inv := wp.InverseTransform()

	// inverse(forward(p)) == p for a handful of source points.
	for _, p := range [][2]float64{{0, 0}, {16, 12}, {31, 23}, {5, 20}} {
		fx, fy := fwd.Apply(p[0], p[1])
		bx, by := inv.Apply(fx, fy)
		if math.Abs(bx-p[0]) > 1e-6 || math.Abs(by-p[1]) > 1e-6 {
			t.Errorf("round trip of (%g,%g) = (%g,%g)", p[0], p[1], bx, by)
		}
	}
}

func TestWarpBgFixedFillsMargin(t *testing.T) {
	img := rampImage(20, 20)
	wp := NewProcessor()
	wp.SetBgFixed(77)
	wp.Warp(img, identityParams())

	res := wp.Result()
	corners := [][2]int{{0, 0}, {res.Width - 1, 0}, {0, res.Height - 1}, {res.Width - 1, res.Height - 1}}
	for _, c := range corners {
		if got := res.Pix[c[1]*res.RowStride+c[0]]; got != 77 {
			t.Errorf("corner %v = %d, want background 77", c, got)
		}
	}
}

func TestWarpBgRepeatStaysInRange(t *testing.T) {
	img := rampImage(20, 20)
	wp := NewProcessor()
	wp.SetBgRepeat()
	wp.Warp(img, Params{Scale: 1, PlanarAngle: 0.4, Tilt: 1.2, TiltAngle: 0.1})

	// Every result pixel must be a plausible source intensity; the
	// ramp never exceeds 239.
	res := wp.Result()
	for y := 0; y < res.Height; y++ {
		for x := 0; x < res.Width; x++ {
			if res.Pix[y*res.RowStride+x] > 239 {
				t.Fatalf("pixel (%d,%d) = %d outside the source range", x, y, res.Pix[y*res.RowStride+x])
			}
		}
	}
}

func TestWarpTiltShrinksWidth(t *testing.T) {
	img := rampImage(40, 20)
	wp := NewProcessor()
	wp.SetBgFixed(0)
	wp.Warp(img, Params{Scale: 1, PlanarAngle: 0, Tilt: 2, TiltAngle: 0})

	res := wp.Result()
	// A tilt of two halves the horizontal extent (plus borders).
	if res.Width >= 30 {
		t.Errorf("tilted width = %d, want roughly half of 40", res.Width)
	}
	if res.Height < 20 || res.Height > 26 {
		t.Errorf("tilted height = %d, want near 20", res.Height)
	}
}

func TestWarpScaleGrowsResult(t *testing.T) {
	img := rampImage(20, 20)
	wp := NewProcessor()
	wp.SetBgFixed(0)
	wp.Warp(img, Params{Scale: 2, PlanarAngle: 0, Tilt: 1, TiltAngle: 0})

	res := wp.Result()
	if res.Width < 40 || res.Height < 40 {
		t.Errorf("scaled result = %dx%d, want at least 40x40", res.Width, res.Height)
	}
}

func TestWarpRotationBoundingBox(t *testing.T) {
	img := rampImage(30, 10)
	wp := NewProcessor()
	wp.SetBgFixed(0)
	wp.Warp(img, Params{Scale: 1, PlanarAngle: math.Pi / 2, Tilt: 1, TiltAngle: 0})

	res := wp.Result()
	// A quarter turn swaps the extents (within the stage borders).
	if res.Width > 18 || res.Height < 30 {
		t.Errorf("rotated result = %dx%d, want roughly 10x30 plus borders", res.Width, res.Height)
	}
}

func TestParallelChunksCoverage(t *testing.T) {
	seen := make([]int32, 1000)
	parallelChunks(len(seen), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			seen[i]++
		}
	})
	for i, v := range seen {
		if v != 1 {
			t.Fatalf("index %d visited %d times", i, v)
		}
	}
}

package detect

import (
	"testing"

	"github.com/deepteams/nexus"
)

// quadrantImage returns an image whose top-left w0 x h0 quadrant is dark
// and the rest bright, producing a single strong corner at the quadrant
// boundary.
func quadrantImage(w, h, w0, h0 int) *nexus.Image {
	img := nexus.NewGrayU8(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x >= w0 || y >= h0 {
				img.Pix[y*img.RowStride+x] = 200
			}
		}
	}
	return img
}

func TestHarrisDerivImages(t *testing.T) {
	img := quadrantImage(32, 32, 16, 16)
	var dimg [3]*nexus.Image
	HarrisDerivImages(&dimg, img, 1.2)

	for i, d := range dimg {
		if d == nil {
			t.Fatalf("dimg[%d] not allocated", i)
		}
		if d.DType != nexus.F32 {
			t.Errorf("dimg[%d] dtype = %v, want F32", i, d.DType)
		}
		if d.Width != 32 || d.Height != 32 {
			t.Errorf("dimg[%d] dims = %dx%d", i, d.Width, d.Height)
		}
	}

	// Squared derivatives are non-negative everywhere.
	for i := 0; i < 2; i++ {
		for _, v := range dimg[i].PixF {
			if v < 0 {
				t.Fatalf("dimg[%d] has negative squared derivative %g", i, v)
			}
		}
	}
}

func TestHarrisScoreImagePeakNearCorner(t *testing.T) {
	img := quadrantImage(32, 32, 16, 16)
	var dimg [3]*nexus.Image
	HarrisDerivImages(&dimg, img, 1.2)

	score := nexus.NewGrayF32(0, 0)
	HarrisScoreImage(score, &dimg, DefaultHarrisK)

	bestX, bestY := 0, 0
	best := float32(0)
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if s := score.PixF[y*score.RowStride+x]; s > best {
				best = s
				bestX, bestY = x, y
			}
		}
	}
	if best <= 0 {
		t.Fatal("no positive cornerness in a corner image")
	}
	if bestX < 13 || bestX > 18 || bestY < 13 || bestY > 18 {
		t.Errorf("score peak at (%d,%d), want near (16,16)", bestX, bestY)
	}
}

func TestHarrisDetectorFindsTheCorner(t *testing.T) {
	img := quadrantImage(32, 32, 16, 16)
	det := NewHarris()

	keys := det.Detect(img, 10, false)
	if len(keys) == 0 {
		t.Fatal("Harris found no corners")
	}

	found := false
	for _, k := range keys {
		if k.X >= 13 && k.X <= 18 && k.Y >= 13 && k.Y <= 18 {
			found = true
		}
		if k.Score < det.Threshold {
			t.Errorf("key (%d,%d) below threshold: %g", k.X, k.Y, k.Score)
		}
	}
	if !found {
		t.Error("no keypoint near the quadrant corner")
	}
}

func TestHarrisDetectMaxN(t *testing.T) {
	img := quadrantImage(64, 64, 16, 16)
	det := NewHarris()
	det.Threshold = 0 // accept every local maximum

	keys := det.Detect(img, 3, false)
	if len(keys) > 3 {
		t.Errorf("got %d keys, want at most 3", len(keys))
	}
}

func TestHarrisAdaptThreshold(t *testing.T) {
	img := quadrantImage(32, 32, 16, 16)
	det := NewHarris()
	det.Threshold = 1e30 // absurd threshold finds nothing

	det.Detect(img, 100, true)
	if det.Threshold >= 1e30 {
		t.Error("starved detector should lower its threshold")
	}
}

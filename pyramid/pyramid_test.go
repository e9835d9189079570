package pyramid

import (
	"math"
	"testing"

	"github.com/deepteams/nexus"
)

const (
	testWidth0  = 97
	testHeight0 = 97
	testNLevels = 3
	testOctaves = 3
	testSteps   = 3
	testScaleF  = 1.2
	testSigma0  = 1.5
)

func testImage(w, h int) *nexus.Image {
	img := nexus.NewGrayU8(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Pix[y*img.RowStride+x] = uint8((x*7 + y*13) % 251)
		}
	}
	return img
}

func TestFastPyramidShape(t *testing.T) {
	img := testImage(testWidth0, testHeight0)
	b := NewFastBuilder(testNLevels, 0)
	pyr := b.Build(img)

	if pyr.NLevels() != testNLevels {
		t.Fatalf("NLevels = %d, want %d", pyr.NLevels(), testNLevels)
	}
	wantDims := [][2]int{{97, 97}, {48, 48}, {24, 24}}
	for i, want := range wantDims {
		l := pyr.Level(i)
		if l.Image.Width != want[0] || l.Image.Height != want[1] {
			t.Errorf("level %d: %dx%d, want %dx%d",
				i, l.Image.Width, l.Image.Height, want[0], want[1])
		}
		if l.Scale != float32(int(1)<<i) {
			t.Errorf("level %d: scale = %g, want %d", i, l.Scale, int(1)<<i)
		}
		if l.Image.Type != nexus.Grayscale {
			t.Errorf("level %d: type = %v", i, l.Image.Type)
		}
	}
}

func TestFastPyramidLevelZeroIsSource(t *testing.T) {
	img := testImage(20, 20)
	pyr := NewFastBuilder(2, 0).Build(img)

	l0 := pyr.Level(0).Image
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if l0.Pix[y*l0.RowStride+x] != img.Pix[y*img.RowStride+x] {
				t.Fatalf("level 0 pixel (%d,%d) differs from source", x, y)
			}
		}
	}
}

func TestFinePyramidShape(t *testing.T) {
	img := testImage(testWidth0, testHeight0)
	b := NewFineBuilder(testOctaves, testSteps, testSigma0)
	pyr := b.Build(img)

	if pyr.NLevels() != testOctaves*testSteps {
		t.Fatalf("NLevels = %d, want %d", pyr.NLevels(), testOctaves*testSteps)
	}
	for i := 0; i < pyr.NLevels(); i++ {
		l := pyr.Level(i)
		wantW := testWidth0 / (1 << (i / testSteps))
		wantH := testHeight0 / (1 << (i / testSteps))
		if l.Image.Width != wantW || l.Image.Height != wantH {
			t.Errorf("level %d: %dx%d, want %dx%d", i, l.Image.Width, l.Image.Height, wantW, wantH)
		}

		wantSigma := testSigma0 * float32(math.Pow(2, float64(i)/testSteps))
		if math.Abs(float64(l.Sigma-wantSigma)) > 1e-4 {
			t.Errorf("level %d: sigma = %g, want %g", i, l.Sigma, wantSigma)
		}
	}
}

func TestScaledPyramidShape(t *testing.T) {
	img := testImage(testWidth0, testHeight0)
	b := NewScaledBuilder(testNLevels, testScaleF, testSigma0)
	pyr := b.Build(img)

	for i := 0; i < pyr.NLevels(); i++ {
		l := pyr.Level(i)
		wantW := int(float64(testWidth0) / math.Pow(testScaleF, float64(i)))
		wantH := int(float64(testHeight0) / math.Pow(testScaleF, float64(i)))
		if l.Image.Width != wantW || l.Image.Height != wantH {
			t.Errorf("level %d: %dx%d, want %dx%d", i, l.Image.Width, l.Image.Height, wantW, wantH)
		}
	}
}

func TestPyramidScaleSigmaMonotonic(t *testing.T) {
	img := testImage(64, 64)
	builders := map[string]*Builder{
		"fast":   NewFastBuilder(4, 0.8),
		"fine":   NewFineBuilder(3, 2, 1.1),
		"scaled": NewScaledBuilder(5, 1.3, 1.0),
	}
	for name, b := range builders {
		t.Run(name, func(t *testing.T) {
			pyr := b.Build(img)
			for i := 1; i < pyr.NLevels(); i++ {
				if pyr.Level(i).Scale < pyr.Level(i-1).Scale {
					t.Errorf("scale not monotonic at level %d", i)
				}
				if pyr.Level(i).Sigma < pyr.Level(i-1).Sigma {
					t.Errorf("sigma not monotonic at level %d", i)
				}
			}
		})
	}
}

func TestBuilderLevelAccessorsMatchPyramid(t *testing.T) {
	img := testImage(80, 60)
	b := NewFineBuilder(2, 3, 1.2)
	pyr := b.Build(img)

	for i := 0; i < pyr.NLevels(); i++ {
		if got, want := b.LevelScale(i), pyr.Level(i).Scale; got != want {
			t.Errorf("LevelScale(%d) = %g, pyramid has %g", i, got, want)
		}
		if got, want := b.LevelSigma(i), pyr.Level(i).Sigma; math.Abs(float64(got-want)) > 1e-5 {
			t.Errorf("LevelSigma(%d) = %g, pyramid has %g", i, got, want)
		}
	}
}

func TestBuildToReusesLevelImages(t *testing.T) {
	img := testImage(40, 40)
	b := NewFastBuilder(3, 0)
	pyr := b.Build(img)

	imgs := make([]*nexus.Image, pyr.NLevels())
	for i := range imgs {
		imgs[i] = pyr.Level(i).Image
	}

	b.BuildTo(pyr, img)
	for i := range imgs {
		if pyr.Level(i).Image != imgs[i] {
			t.Errorf("level %d image reallocated on rebuild", i)
		}
	}
}

func TestBuildEmptyImagePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for an empty source image")
		}
	}()
	NewFastBuilder(2, 0).Build(nexus.NewGrayU8(0, 0))
}

func TestBuilderKinds(t *testing.T) {
	if NewFastBuilder(1, 0).Kind() != Fast {
		t.Error("fast builder kind mismatch")
	}
	if NewFineBuilder(1, 1, 0).Kind() != Fine {
		t.Error("fine builder kind mismatch")
	}
	if NewScaledBuilder(1, 1.5, 0).Kind() != Scaled {
		t.Error("scaled builder kind mismatch")
	}
}

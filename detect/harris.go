package detect

import (
	"github.com/deepteams/nexus"
	"github.com/deepteams/nexus/internal/pool"
)

// Default Harris parameters.
const (
	DefaultHarrisK         = 0.06
	DefaultHarrisSigmaWin  = 1.2
	DefaultHarrisThreshold = 0.000005
)

// HarrisDerivImages fills dimg with the Gaussian-weighted structure tensor
// entries of the grayscale image: dimg[0] = Ix^2, dimg[1] = Iy^2,
// dimg[2] = Ix*Iy, each blurred with sigmaWin. Nil entries of dimg are
// allocated.
func HarrisDerivImages(dimg *[3]*nexus.Image, img *nexus.Image, sigmaWin float32) {
	for i := range dimg {
		if dimg[i] == nil {
			dimg[i] = nexus.NewGrayF32(0, 0)
		}
	}

	nexus.DerivX(dimg[0], img)
	nexus.DerivY(dimg[1], img)
	dimg[2].Resize(img.Width, img.Height, nexus.StrideDefault, nexus.Grayscale, nexus.F32)

	for y := 0; y < img.Height; y++ {
		x2row := dimg[0].PixF[y*dimg[0].RowStride:]
		y2row := dimg[1].PixF[y*dimg[1].RowStride:]
		xyrow := dimg[2].PixF[y*dimg[2].RowStride:]
		for x := 0; x < img.Width; x++ {
			xyrow[x] = x2row[x] * y2row[x]
			x2row[x] *= x2row[x]
			y2row[x] *= y2row[x]
		}
	}

	scratch := pool.Get(nexus.SmoothBufferSize(img.Width, img.Height, sigmaWin, sigmaWin))
	defer pool.Put(scratch)
	for i := range dimg {
		nexus.Smooth(dimg[i], dimg[i], sigmaWin, sigmaWin, scratch)
	}
}

// HarrisScoreImage writes the cornerness score det - k*trace^2 of the
// structure tensor images into the F32 score image.
func HarrisScoreImage(score *nexus.Image, dimg *[3]*nexus.Image, k float32) {
	w := dimg[0].Width
	h := dimg[0].Height
	score.Resize(w, h, nexus.StrideDefault, nexus.Grayscale, nexus.F32)

	for y := 0; y < h; y++ {
		x2row := dimg[0].PixF[y*dimg[0].RowStride:]
		y2row := dimg[1].PixF[y*dimg[1].RowStride:]
		xyrow := dimg[2].PixF[y*dimg[2].RowStride:]
		srow := score.PixF[y*score.RowStride:]
		for x := 0; x < w; x++ {
			det := x2row[x]*y2row[x] - xyrow[x]*xyrow[x]
			trace := x2row[x] + y2row[x]
			srow[x] = det - k*trace*trace
		}
	}
}

// HarrisDetectKeypoints appends the local maxima of the score image with
// score at least threshold to dst, at most maxN, in raster order. A pixel
// is a local maximum when no neighbour in its 3x3 window beats it; ties
// go to the first pixel in raster order.
func HarrisDetectKeypoints(dst []nexus.Keypoint, score *nexus.Image, threshold float32, maxN int) []nexus.Keypoint {
	w := score.Width
	h := score.Height
	stride := score.RowStride
	pix := score.PixF

	for y := 1; y < h-1; y++ {
		rowM := pix[(y-1)*stride:]
		row := pix[y*stride:]
		rowP := pix[(y+1)*stride:]
		for x := 1; x < w-1; x++ {
			if len(dst) >= maxN {
				return dst
			}
			s := row[x]
			if s < threshold {
				continue
			}
			if s <= rowM[x-1] || s <= rowM[x] || s <= rowM[x+1] || s <= row[x-1] ||
				s < row[x+1] ||
				s < rowP[x-1] || s < rowP[x] || s < rowP[x+1] {
				continue
			}
			dst = append(dst, nexus.Keypoint{
				X: int32(x), Y: int32(y),
				XS: float32(x), YS: float32(y),
				Scale: 1, Score: s,
				ID: uint64(len(dst)),
			})
		}
	}
	return dst
}

// HarrisDetector bundles the Harris stages with cached intermediate
// images and an adaptive threshold.
type HarrisDetector struct {
	SigmaWin  float32
	K         float32
	Threshold float32

	dimg [3]*nexus.Image
	simg *nexus.Image
}

// NewHarris returns a detector with the default window, sensitivity and
// threshold.
func NewHarris() *HarrisDetector {
	return &HarrisDetector{
		SigmaWin:  DefaultHarrisSigmaWin,
		K:         DefaultHarrisK,
		Threshold: DefaultHarrisThreshold,
	}
}

// Detect finds at most maxN Harris corners in the grayscale image. When
// adaptThreshold is set the detection threshold is nudged by the ratio of
// found corners to maxN, using the same factor family as the FAST
// detector.
func (d *HarrisDetector) Detect(img *nexus.Image, maxN int, adaptThreshold bool) []nexus.Keypoint {
	if d.simg == nil {
		d.simg = nexus.NewGrayF32(0, 0)
	}
	HarrisDerivImages(&d.dimg, img, d.SigmaWin)
	HarrisScoreImage(d.simg, &d.dimg, d.K)

	keys := HarrisDetectKeypoints(nil, d.simg, d.Threshold, 2*maxN)

	if adaptThreshold {
		d.Threshold *= adaptationFactor(len(keys), maxN)
	}

	if len(keys) > maxN {
		keys = keys[:maxN]
	}
	return keys
}

// ScoreImage exposes the score image of the last Detect call.
func (d *HarrisDetector) ScoreImage() *nexus.Image { return d.simg }

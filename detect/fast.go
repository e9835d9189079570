// Package detect implements corner detectors over grayscale images: the
// FAST-9 segment test with non-maximum suppression and pyramid dispatch,
// and the Harris detector built on derivative-image triples.
package detect

import (
	"github.com/deepteams/nexus"
)

// ringOffsets returns the 16 pixel offsets of the radius-3 Bresenham ring
// in the canonical Rosten/Drummond order, for a given row stride.
func ringOffsets(stride int) [16]int {
	return [16]int{
		0 + stride*3,
		1 + stride*3,
		2 + stride*2,
		3 + stride*1,
		3 + stride*0,
		3 - stride*1,
		2 - stride*2,
		1 - stride*3,
		0 - stride*3,
		-1 - stride*3,
		-2 - stride*2,
		-3 - stride*1,
		-3 + stride*0,
		-3 + stride*1,
		-2 + stride*2,
		-1 + stride*3,
	}
}

// segmentMask computes the bright and dark ring masks of the pixel at
// offset p: bit i of bright is set when ring pixel i is above center+b,
// bit i of dark when it is below center-b.
func segmentMask(pix []uint8, p int, ring *[16]int, b int) (bright, dark uint16) {
	cb := int(pix[p]) + b
	cd := int(pix[p]) - b
	for i := 0; i < 16; i++ {
		v := int(pix[p+ring[i]])
		if v > cb {
			bright |= 1 << i
		} else if v < cd {
			dark |= 1 << i
		}
	}
	return
}

// hasArc9 reports whether the circular 16-bit mask contains a contiguous
// run of at least nine set bits.
func hasArc9(mask uint16) bool {
	if mask == 0 {
		return false
	}
	x := uint32(mask) | uint32(mask)<<16
	for i := 0; i < 16; i++ {
		if (x>>i)&0x1FF == 0x1FF {
			return true
		}
	}
	return false
}

// isCorner9 runs the FAST-9 segment test for the pixel at offset p.
func isCorner9(pix []uint8, p int, ring *[16]int, b int) bool {
	bright, dark := segmentMask(pix, p, ring, b)
	return hasArc9(bright) || hasArc9(dark)
}

// FastDetectKeypoints scans the grayscale u8 image in raster order and
// appends every pixel passing the FAST-9 segment test at the given
// threshold to dst, up to maxN corners. Scores are left zero; use
// FastScoreKeypoints to fill them.
func FastDetectKeypoints(dst []nexus.Keypoint, img *nexus.Image, threshold, maxN int) []nexus.Keypoint {
	if img.Type != nexus.Grayscale || img.DType != nexus.U8 {
		panic("detect: FAST requires a grayscale u8 image")
	}

	ring := ringOffsets(img.RowStride)
	for y := 3; y < img.Height-3; y++ {
		rowOff := y * img.RowStride
		for x := 3; x < img.Width-3; x++ {
			if len(dst) >= maxN {
				return dst
			}
			if isCorner9(img.Pix, rowOff+x, &ring, threshold) {
				dst = append(dst, nexus.Keypoint{
					X: int32(x), Y: int32(y),
					XS: float32(x), YS: float32(y),
					Scale: 1, Sigma: 0,
				})
			}
		}
	}
	return dst
}

// fastCornerScore computes the corner score of an accepted pixel: the
// largest threshold for which the segment test still passes, found by
// binary search over [bStart, 255].
func fastCornerScore(pix []uint8, p int, ring *[16]int, bStart int) int {
	bmin := bStart
	bmax := 255

	for {
		b := (bmax + bmin) / 2
		if isCorner9(pix, p, ring, b) {
			bmin = b
		} else {
			bmax = b
		}

		if bmin == bmax-1 || bmin == bmax {
			return bmin
		}
	}
}

// FastScoreKeypoints fills the Score of each keypoint with the largest
// threshold at which the pixel still passes the segment test.
func FastScoreKeypoints(keys []nexus.Keypoint, img *nexus.Image, threshold int) {
	ring := ringOffsets(img.RowStride)
	for i := range keys {
		k := &keys[i]
		p := int(k.Y)*img.RowStride + int(k.X)
		keys[i].Score = float32(fastCornerScore(img.Pix, p, &ring, threshold))
	}
}

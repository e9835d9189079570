package nexus

import (
	"github.com/deepteams/nexus/internal/filter"
	"github.com/deepteams/nexus/internal/pool"
)

// SmoothBufferSize returns the scratch length needed by Smooth for a
// source of the given dimensions and sigmas. Callers that smooth in a loop
// can allocate the scratch once and pass it to every call.
func SmoothBufferSize(width, height int, sigmaX, sigmaY float32) int {
	nkx := filter.GaussianKernelSize(sigmaX, filter.KernelLoss)
	nky := filter.GaussianKernelSize(sigmaY, filter.KernelLoss)
	nk := max(nkx, nky)
	return filter.BufferSize(max(width, height), nk/2)
}

// Smooth applies a separable Gaussian of standard deviations (sigmaX,
// sigmaY) to the grayscale image src, writing an image of the same shape
// into dest. The kernel half-width is the smallest one whose dropped tail
// mass is at most 0.003; borders are mirrored. For U8 images the
// intermediate accumulation runs in float32 and the result is rounded and
// clamped. A sigma of zero along an axis leaves that axis untouched.
//
// scratch may be nil, in which case a pooled buffer is used for the call.
func Smooth(dest, src *Image, sigmaX, sigmaY float32, scratch []float32) {
	src.assertGray()

	dest.Resize(src.Width, src.Height, StrideDefault, src.Type, src.DType)

	nkx := filter.GaussianKernelSize(sigmaX, filter.KernelLoss)
	nky := filter.GaussianKernelSize(sigmaY, filter.KernelLoss)
	nkMax := max(nkx, nky)

	need := filter.BufferSize(max(src.Width, src.Height), nkMax/2)
	buf := scratch
	if len(buf) < need {
		buf = pool.Get(need)
		defer pool.Put(buf)
	}
	kernel := make([]float32, nkMax/2+1)

	// Horizontal pass: src rows into dest rows.
	krx := nkx / 2
	filter.GaussianSymKernel(kernel, krx+1, sigmaX)
	for y := 0; y < src.Height; y++ {
		switch src.DType {
		case U8:
			filter.CopyToBufferU8(buf, src.Pix[y*src.RowStride:], src.Width, 1, krx, filter.BorderMirror)
			filter.ConvolveSym(buf, src.Width, krx+1, kernel)
			drow := dest.Pix[y*dest.RowStride:]
			for x := 0; x < dest.Width; x++ {
				drow[x] = clampU8(buf[x])
			}
		case F32:
			filter.CopyToBufferF32(buf, src.PixF[y*src.RowStride:], src.Width, 1, krx, filter.BorderMirror)
			filter.ConvolveSym(buf, src.Width, krx+1, kernel)
			copy(dest.PixF[y*dest.RowStride:y*dest.RowStride+dest.Width], buf)
		}
	}

	// Vertical pass: dest columns in place.
	kry := nky / 2
	filter.GaussianSymKernel(kernel, kry+1, sigmaY)
	for x := 0; x < dest.Width; x++ {
		switch dest.DType {
		case U8:
			filter.CopyToBufferU8(buf, dest.Pix[x:], dest.Height, dest.RowStride, kry, filter.BorderMirror)
			filter.ConvolveSym(buf, dest.Height, kry+1, kernel)
			for y := 0; y < dest.Height; y++ {
				dest.Pix[x+y*dest.RowStride] = clampU8(buf[y])
			}
		case F32:
			filter.CopyToBufferF32(buf, dest.PixF[x:], dest.Height, dest.RowStride, kry, filter.BorderMirror)
			filter.ConvolveSym(buf, dest.Height, kry+1, kernel)
			for y := 0; y < dest.Height; y++ {
				dest.PixF[x+y*dest.RowStride] = buf[y]
			}
		}
	}
}

// DerivX computes the centred-difference horizontal derivative
// (I(x+1,y) - I(x-1,y)) / 2 of the grayscale image src into an F32 image.
// U8 sources are additionally normalised by 255. Border pixels are zero.
func DerivX(dest, src *Image) {
	src.assertGray()

	dest.Resize(src.Width, src.Height, StrideDefault, src.Type, F32)
	dest.SetZero()

	norm := derivNorm(src)
	for y := 1; y < src.Height-1; y++ {
		drow := dest.PixF[y*dest.RowStride:]
		switch src.DType {
		case U8:
			srow := src.Pix[y*src.RowStride:]
			for x := 1; x < dest.Width-1; x++ {
				drow[x] = (float32(srow[x+1]) - float32(srow[x-1])) * norm
			}
		case F32:
			srow := src.PixF[y*src.RowStride:]
			for x := 1; x < dest.Width-1; x++ {
				drow[x] = (srow[x+1] - srow[x-1]) * norm
			}
		}
	}
}

// DerivY computes the centred-difference vertical derivative
// (I(x,y+1) - I(x,y-1)) / 2 of the grayscale image src into an F32 image.
// U8 sources are additionally normalised by 255. Border pixels are zero.
func DerivY(dest, src *Image) {
	src.assertGray()

	dest.Resize(src.Width, src.Height, StrideDefault, src.Type, F32)
	dest.SetZero()

	norm := derivNorm(src)
	for y := 1; y < src.Height-1; y++ {
		drow := dest.PixF[y*dest.RowStride:]
		switch src.DType {
		case U8:
			srowM := src.Pix[(y-1)*src.RowStride:]
			srowP := src.Pix[(y+1)*src.RowStride:]
			for x := 1; x < dest.Width-1; x++ {
				drow[x] = (float32(srowP[x]) - float32(srowM[x])) * norm
			}
		case F32:
			srowM := src.PixF[(y-1)*src.RowStride:]
			srowP := src.PixF[(y+1)*src.RowStride:]
			for x := 1; x < dest.Width-1; x++ {
				drow[x] = (srowP[x] - srowM[x]) * norm
			}
		}
	}
}

func derivNorm(src *Image) float32 {
	if src.DType == U8 {
		return 1.0 / (2 * 255.0)
	}
	return 0.5
}

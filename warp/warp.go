// Package warp implements an affine warp processor based on the Morel-Yu
// tilt/rotation/scale decomposition. A warp runs in three stages, each
// with its own buffer: a skew rotation, a horizontal subsampling by the
// tilt factor, and a final scale-plus-rotation. Forward and inverse
// transforms are accumulated as 2x3 matrices so callers can map
// coordinates between the source and the result.
package warp

import (
	"math"

	"github.com/deepteams/nexus"
)

// BgMode selects how result pixels whose inverse map lands outside the
// source are filled.
type BgMode int

const (
	// BgFixed fills the background with a constant color.
	BgFixed BgMode = iota
	// BgRepeat clamps source coordinates to the valid range and
	// interpolates.
	BgRepeat
	// BgNoise fills the background with independent uniform bytes.
	BgNoise
)

// Params describes one affine warp. Tilt is the anisotropic horizontal
// contraction factor (>= 1), TiltAngle the skew rotation applied before
// the contraction, Scale the final isotropic scaling and PlanarAngle the
// final in-plane rotation. Angles are radians.
type Params struct {
	Scale       float64
	PlanarAngle float64
	Tilt        float64
	TiltAngle   float64
}

// Transform is a 2x3 affine matrix in column-major order: applying it to
// (x, y) yields (x*t[0] + y*t[2] + t[4], x*t[1] + y*t[3] + t[5]).
type Transform [6]float64

// Apply maps the point (x, y) through the transform.
func (t *Transform) Apply(x, y float64) (float64, float64) {
	return x*t[0] + y*t[2] + t[4], x*t[1] + y*t[3] + t[5]
}

func (t *Transform) setIdentity() {
	*t = Transform{1, 0, 0, 1, 0, 0}
}

// combine sets r = t0 * t1.
func combine(r, t0, t1 *Transform) {
	r0 := t0[0]*t1[0] + t0[2]*t1[1]
	r1 := t0[1]*t1[0] + t0[3]*t1[1]
	r2 := t0[0]*t1[2] + t0[2]*t1[3]
	r3 := t0[1]*t1[2] + t0[3]*t1[3]
	r4 := t0[0]*t1[4] + t0[2]*t1[5] + t0[4]
	r5 := t0[1]*t1[4] + t0[3]*t1[5] + t0[5]
	*r = Transform{r0, r1, r2, r3, r4, r5}
}

// Processor owns the three stage buffers of the warp pipeline and the
// accumulated transforms. Processors are reusable across frames; buffers
// are grown as needed and kept. Not safe for concurrent use.
type Processor struct {
	image *nexus.Image

	skewRotationBuffer *nexus.Image
	subsampleBuffer    *nexus.Image
	resultBuffer       *nexus.Image

	forwardT Transform
	inverseT Transform

	bgMode        BgMode
	bgColor       uint8
	postBlurSigma float32
}

// NewProcessor returns a processor with noise background fill and no post
// blur.
func NewProcessor() *Processor {
	wp := &Processor{
		skewRotationBuffer: nexus.NewGrayU8(0, 0),
		subsampleBuffer:    nexus.NewGrayU8(0, 0),
		resultBuffer:       nexus.NewGrayU8(0, 0),
		bgMode:             BgNoise,
	}
	wp.forwardT.setIdentity()
	wp.inverseT.setIdentity()
	return wp
}

// SetBgFixed selects constant background fill with the given color.
func (wp *Processor) SetBgFixed(color uint8) {
	wp.bgMode = BgFixed
	wp.bgColor = color
}

// SetBgRepeat selects clamped-source background fill.
func (wp *Processor) SetBgRepeat() { wp.bgMode = BgRepeat }

// SetBgNoise selects uniform random background fill.
func (wp *Processor) SetBgNoise() { wp.bgMode = BgNoise }

// SetPostBlurSigma sets a Gaussian blur applied to the result after the
// final stage; zero disables it.
func (wp *Processor) SetPostBlurSigma(sigma float32) { wp.postBlurSigma = sigma }

// Result returns the output buffer of the last Warp call.
func (wp *Processor) Result() *nexus.Image { return wp.resultBuffer }

// ForwardTransform returns the source-to-result transform of the last
// Warp call.
func (wp *Processor) ForwardTransform() Transform { return wp.forwardT }

// InverseTransform returns the result-to-source transform of the last
// Warp call.
func (wp *Processor) InverseTransform() Transform { return wp.inverseT }

// Warp runs the three-stage pipeline on the grayscale u8 image. The
// result and the accumulated transforms stay valid until the next call.
func (wp *Processor) Warp(img *nexus.Image, param Params) {
	if img.Type != nexus.Grayscale || img.DType != nexus.U8 {
		panic("warp: processor requires a grayscale u8 image")
	}

	wp.image = img
	wp.resizeBuffers(param.Scale, param.PlanarAngle, param.Tilt, param.TiltAngle)

	computeSkewRotationBuffer(img, wp.skewRotationBuffer, param.TiltAngle, param.Tilt)
	computeSubsampleBuffer(wp.skewRotationBuffer, wp.subsampleBuffer, param.Tilt, param.Scale)
	computeResultBuffer(wp.subsampleBuffer, wp.resultBuffer, param.Scale, param.PlanarAngle, wp.postBlurSigma)

	fillWarpBufferBg(img, wp.resultBuffer, &wp.inverseT, wp.bgMode, wp.bgColor)
}

// updateForwardTransform prepends the stage mapping centered at centerIn
// and centerOut with the given scales and rotation.
func (wp *Processor) updateForwardTransform(cInX, cInY, cOutX, cOutY, scaleX, scaleY, angle float64) {
	c := math.Cos(angle)
	s := math.Sin(angle)

	cx := scaleX * c
	sx := scaleX * s
	cy := scaleY * c
	sy := scaleY * s
	dx := cOutX - cInX*cx + cInY*sx
	dy := cOutY - cInX*sy - cInY*cy

	stage := Transform{cx, sy, -sx, cy, dx, dy}
	combine(&wp.forwardT, &stage, &wp.forwardT)
}

// updateInverseTransform appends the inverse of the same stage mapping.
func (wp *Processor) updateInverseTransform(cInX, cInY, cOutX, cOutY, scaleX, scaleY, angle float64) {
	c := math.Cos(angle)
	s := math.Sin(angle)

	cx := c / scaleX
	sx := s / scaleX
	cy := c / scaleY
	sy := s / scaleY
	dx := cInX - cOutX*cx - cOutY*sx
	dy := cInY + cOutX*sy - cOutY*cy

	stage := Transform{cx, -sy, sx, cy, dx, dy}
	combine(&wp.inverseT, &wp.inverseT, &stage)
}

// bufferBorder is the margin added around each stage's bounding box.
const bufferBorder = 1.0

// transformedBufferSize maps the four corners of the source rectangle
// through the transform accumulated so far plus the next stage, and
// returns the inclusive bounding box grown by the border.
func (wp *Processor) transformedBufferSize(width, height int, scaleX, scaleY, angle float64) (int, int) {
	c := math.Cos(angle)
	s := math.Sin(angle)
	required := Transform{scaleX * c, scaleY * s, -scaleX * s, scaleY * c, 0, 0}

	var xMin, xMax, yMin, yMax float64
	first := true
	for _, corner := range [4][2]float64{
		{0, 0}, {float64(width), 0}, {0, float64(height)}, {float64(width), float64(height)},
	} {
		x, y := wp.forwardT.Apply(corner[0], corner[1])
		x, y = required.Apply(x, y)
		if first {
			xMin, xMax, yMin, yMax = x, x, y, y
			first = false
			continue
		}
		xMin = math.Min(xMin, x)
		xMax = math.Max(xMax, x)
		yMin = math.Min(yMin, y)
		yMax = math.Max(yMax, y)
	}

	return int(xMax - xMin + 2*bufferBorder), int(yMax - yMin + 2*bufferBorder)
}

func (wp *Processor) resizeBuffers(scale, planarAngle, tilt, tiltAngle float64) {
	wp.forwardT.setIdentity()
	wp.inverseT.setIdentity()

	wp.resizeBuffer(wp.image, wp.skewRotationBuffer, 1, 1, tiltAngle)
	wp.resizeBuffer(wp.skewRotationBuffer, wp.subsampleBuffer, 1/tilt, 1, 0)
	wp.resizeBuffer(wp.subsampleBuffer, wp.resultBuffer, scale, scale, planarAngle)
}

// resizeBuffer sizes one stage's output from the source rectangle pushed
// through the transform chain, zeroes it, and accumulates the stage into
// the forward and inverse transforms.
func (wp *Processor) resizeBuffer(in, out *nexus.Image, scaleX, scaleY, angle float64) {
	wi := in.Width
	hi := in.Height
	wo, ho := wp.transformedBufferSize(wp.image.Width, wp.image.Height, scaleX, scaleY, angle)

	out.Resize(wo, ho, nexus.StrideDefault, nexus.Grayscale, in.DType)
	out.SetZero()

	cInX, cInY := float64(wi)/2, float64(hi)/2
	cOutX, cOutY := float64(wo)/2, float64(ho)/2
	wp.updateForwardTransform(cInX, cInY, cOutX, cOutY, scaleX, scaleY, angle)
	wp.updateInverseTransform(cInX, cInY, cOutX, cOutY, scaleX, scaleY, angle)
}

// Stage computations.

func computeSkewRotationBuffer(img, buffer *nexus.Image, tiltAngle, tilt float64) {
	var t [6]float32
	fillInverseTransform(&t,
		float32(img.Width)/2, float32(img.Height)/2,
		float32(buffer.Width)/2, float32(buffer.Height)/2,
		1, 1, float32(tiltAngle))
	warpBufferAffineBilinear(img, buffer, &t)

	sigmaX := 0.8 * math.Sqrt(tilt*tilt-1)
	blurInPlace(buffer, float32(sigmaX), 0)
}

func computeSubsampleBuffer(in, out *nexus.Image, tilt, scale float64) {
	var t [6]float32
	fillInverseTransform(&t,
		float32(in.Width)/2, float32(in.Height)/2,
		float32(out.Width)/2, float32(out.Height)/2,
		float32(1/tilt), 1, 0)
	warpBufferAffineBilinear(in, out, &t)

	if scale > 1 {
		sigma := float32(0.8 * math.Sqrt(scale*scale-1))
		blurInPlace(out, sigma, sigma)
	}
}

func computeResultBuffer(in, res *nexus.Image, scale, planarAngle float64, postBlurSigma float32) {
	var t [6]float32
	fillInverseTransform(&t,
		float32(in.Width)/2, float32(in.Height)/2,
		float32(res.Width)/2, float32(res.Height)/2,
		float32(scale), float32(scale), float32(planarAngle))
	warpBufferAffineBilinear(in, res, &t)

	blurInPlace(res, postBlurSigma, postBlurSigma)
}

// fillInverseTransform builds the single-precision result-to-source map
// of one stage: t[0..3] the linear part in column-major order, t[4..5]
// the translation.
func fillInverseTransform(t *[6]float32, cxIn, cyIn, cxOut, cyOut, scaleX, scaleY, angle float32) {
	c := float32(math.Cos(float64(angle)))
	s := float32(math.Sin(float64(angle)))
	cx := c / scaleX
	sx := s / scaleX
	cy := c / scaleY
	sy := s / scaleY
	t[0] = cx
	t[1] = -sy
	t[2] = sx
	t[3] = cy
	t[4] = cxIn - cxOut*cx - cyOut*sx
	t[5] = cyIn + cxOut*sy - cyOut*cy
}

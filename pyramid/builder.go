package pyramid

import (
	"math"

	"github.com/deepteams/nexus"
	"github.com/deepteams/nexus/internal/pool"
)

// Kind identifies the pyramid construction strategy of a Builder.
type Kind int

const (
	// Fast pyramids halve the previous level at each step.
	Fast Kind = iota
	// Fine pyramids build a sub-octave Gaussian scale space.
	Fine
	// Scaled pyramids use an arbitrary inter-level scale factor.
	Scaled
)

func (k Kind) String() string {
	switch k {
	case Fast:
		return "fast"
	case Fine:
		return "fine"
	case Scaled:
		return "scaled"
	}
	return "unknown"
}

// Builder constructs pyramids of one Kind. A builder holds a reusable work
// image and takes its filter scratch from the shared pool on each build.
// Builders are not safe for concurrent use; concurrent builds need one
// builder per goroutine.
type Builder struct {
	kind Kind

	nLevels      int
	nOctaves     int
	nOctaveSteps int
	scaleFactor  float32
	sigma0       float32

	work *nexus.Image
}

// NewFastBuilder returns a builder producing nLevels levels, each the
// previous one decimated by two. Level zero is the source, smoothed up to
// sigma0 when sigma0 exceeds the assumed initial blur.
func NewFastBuilder(nLevels int, sigma0 float32) *Builder {
	if nLevels < 1 {
		panic("pyramid: need at least one level")
	}
	return &Builder{kind: Fast, nLevels: nLevels, sigma0: sigma0, work: nexus.NewGrayU8(0, 0)}
}

// NewFineBuilder returns a builder producing nOctaves*nOctaveSteps levels
// whose cumulative blur follows sigma0 * 2^((o*S+s)/S).
func NewFineBuilder(nOctaves, nOctaveSteps int, sigma0 float32) *Builder {
	if nOctaves < 1 || nOctaveSteps < 1 {
		panic("pyramid: need at least one octave and one step")
	}
	return &Builder{
		kind:         Fine,
		nLevels:      nOctaves * nOctaveSteps,
		nOctaves:     nOctaves,
		nOctaveSteps: nOctaveSteps,
		sigma0:       sigma0,
		work:         nexus.NewGrayU8(0, 0),
	}
}

// NewScaledBuilder returns a builder producing nLevels levels with the
// inter-level linear scale ratio scaleFactor >= 1.
func NewScaledBuilder(nLevels int, scaleFactor, sigma0 float32) *Builder {
	if nLevels < 1 {
		panic("pyramid: need at least one level")
	}
	if scaleFactor < 1 {
		panic("pyramid: scale factor must be at least one")
	}
	return &Builder{
		kind:        Scaled,
		nLevels:     nLevels,
		scaleFactor: scaleFactor,
		sigma0:      sigma0,
		work:        nexus.NewGrayU8(0, 0),
	}
}

// Kind returns the builder's construction strategy.
func (b *Builder) Kind() Kind { return b.kind }

// NLevels returns the number of levels the builder produces.
func (b *Builder) NLevels() int { return b.nLevels }

// NOctaves returns the octave count of a Fine builder.
func (b *Builder) NOctaves() int { return b.nOctaves }

// NOctaveSteps returns the per-octave step count of a Fine builder.
func (b *Builder) NOctaveSteps() int { return b.nOctaveSteps }

// ScaleFactor returns the inter-level ratio of a Scaled builder.
func (b *Builder) ScaleFactor() float32 { return b.scaleFactor }

// Sigma0 returns the base blur of the pyramid.
func (b *Builder) Sigma0() float32 { return b.sigma0 }

// baseSigma is the effective blur of level zero: at least the initial
// camera blur.
func (b *Builder) baseSigma() float32 {
	if b.sigma0 > InitialSigma {
		return b.sigma0
	}
	return InitialSigma
}

// LevelScale returns the down-sampling factor the builder assigns to
// level i.
func (b *Builder) LevelScale(i int) float32 {
	switch b.kind {
	case Fast:
		return float32(int(1) << i)
	case Fine:
		return float32(int(1) << (i / b.nOctaveSteps))
	default:
		return float32(math.Pow(float64(b.scaleFactor), float64(i)))
	}
}

// LevelSigma returns the cumulative blur, in original-image pixels, the
// builder assigns to level i.
func (b *Builder) LevelSigma(i int) float32 {
	s0 := b.baseSigma()
	switch b.kind {
	case Fast:
		return s0 * b.LevelScale(i)
	case Fine:
		return s0 * float32(math.Pow(2, float64(i)/float64(b.nOctaveSteps)))
	default:
		return s0 * b.LevelScale(i)
	}
}

// Build constructs a fresh pyramid from the grayscale u8 image.
func (b *Builder) Build(img *nexus.Image) *Pyramid {
	pyr := &Pyramid{}
	b.BuildTo(pyr, img)
	return pyr
}

// BuildTo rebuilds pyr from the image, discarding old pixel contents but
// reusing level allocations.
func (b *Builder) BuildTo(pyr *Pyramid, img *nexus.Image) {
	if img.Type != nexus.Grayscale || img.DType != nexus.U8 {
		panic("pyramid: builders require grayscale u8 input")
	}
	if img.Width < 1 || img.Height < 1 {
		panic("pyramid: can not build a pyramid from an empty image")
	}

	pyr.resizeLevels(b.nLevels)
	switch b.kind {
	case Fast:
		b.buildFast(pyr, img)
	case Fine:
		b.buildFine(pyr, img)
	case Scaled:
		b.buildScaled(pyr, img)
	}
}

// copyBase initialises level zero: the source as is, or smoothed up to
// sigma0 when that exceeds the assumed initial blur.
func (b *Builder) copyBase(dest, img *nexus.Image, scratch []float32) {
	if b.sigma0 > InitialSigma {
		inc := incrementalSigma(b.sigma0, InitialSigma)
		nexus.Smooth(dest, img, inc, inc, scratch)
		return
	}
	dest.Copy(img)
}

func (b *Builder) buildFast(pyr *Pyramid, img *nexus.Image) {
	scratch := b.scratchFor(img)
	defer pool.Put(scratch)

	pyr.setLevel(0, img.Width, img.Height, 1, b.baseSigma())
	b.copyBase(pyr.levels[0].Image, img, scratch)

	for i := 1; i < b.nLevels; i++ {
		prev := pyr.levels[i-1].Image
		pyr.setLevel(i, prev.Width/2, prev.Height/2, b.LevelScale(i), b.LevelSigma(i))
		nexus.Downsample(pyr.levels[i].Image, prev)
	}
}

func (b *Builder) buildFine(pyr *Pyramid, img *nexus.Image) {
	scratch := b.scratchFor(img)
	defer pool.Put(scratch)

	s0 := b.baseSigma()
	S := b.nOctaveSteps

	pyr.setLevel(0, img.Width, img.Height, 1, s0)
	b.copyBase(pyr.levels[0].Image, img, scratch)

	for i := 1; i < b.nLevels; i++ {
		o := i / S
		s := i % S
		scale := b.LevelScale(i)
		sigma := b.LevelSigma(i)
		prev := &pyr.levels[i-1]

		if s != 0 {
			// Next step within the octave: incremental blur at the
			// level's own resolution.
			inc := incrementalSigma(sigma, prev.Sigma) / scale
			pyr.setLevel(i, prev.Image.Width, prev.Image.Height, scale, sigma)
			nexus.Smooth(pyr.levels[i].Image, prev.Image, inc, inc, scratch)
			continue
		}

		// New octave: bring the previous level up to the doubled blur
		// sigma0*2^o, then decimate. This preserves the scale-space
		// content across the octave boundary.
		target := s0 * float32(math.Pow(2, float64(o)))
		inc := incrementalSigma(target, prev.Sigma) / prev.Scale
		nexus.Smooth(b.work, prev.Image, inc, inc, scratch)
		pyr.setLevel(i, b.work.Width/2, b.work.Height/2, scale, sigma)
		nexus.Downsample(pyr.levels[i].Image, b.work)
	}
}

func (b *Builder) buildScaled(pyr *Pyramid, img *nexus.Image) {
	scratch := b.scratchFor(img)
	defer pool.Put(scratch)

	pyr.setLevel(0, img.Width, img.Height, 1, b.baseSigma())
	b.copyBase(pyr.levels[0].Image, img, scratch)

	for i := 1; i < b.nLevels; i++ {
		prev := &pyr.levels[i-1]
		scale := b.LevelScale(i)
		sigma := b.LevelSigma(i)

		// Smooth at the previous level's resolution, then resample to
		// the target size derived from the original dimensions.
		inc := incrementalSigma(sigma, prev.Sigma) / prev.Scale
		nexus.Smooth(b.work, prev.Image, inc, inc, scratch)

		w := int(float32(img.Width) / scale)
		h := int(float32(img.Height) / scale)
		pyr.setLevel(i, w, h, scale, sigma)
		nexus.ScaleTo(pyr.levels[i].Image, b.work, w, h)
	}
}

func (b *Builder) scratchFor(img *nexus.Image) []float32 {
	return pool.Get(nexus.SmoothBufferSize(img.Width, img.Height, 2*b.baseSigma(), 2*b.baseSigma()))
}

// incrementalSigma returns the blur that takes an image at blur have to
// the cumulative blur want, sqrt(want^2 - have^2). A target at or below
// the current blur yields zero.
func incrementalSigma(want, have float32) float32 {
	d := float64(want)*float64(want) - float64(have)*float64(have)
	if d <= 0 {
		return 0
	}
	return float32(math.Sqrt(d))
}

// Package pyramid builds multi-scale representations of grayscale images.
//
// A Pyramid is an ordered sequence of levels, each holding an image, its
// linear down-sampling factor relative to the original (scale >= 1), and
// the cumulative Gaussian blur at that level measured in original-image
// pixels. Three builder variants are provided: Fast (plain 2x halving),
// Fine (sub-octave Gaussian scale space), and Scaled (arbitrary inter-level
// scale factor).
package pyramid

import (
	"fmt"

	"github.com/deepteams/nexus"
)

// InitialSigma is the blur assumed to be present in any input image.
const InitialSigma = 0.5

// Level is one entry of a pyramid.
type Level struct {
	Image *nexus.Image
	Scale float32
	Sigma float32
}

// Pyramid is an ordered sequence of levels with strictly non-decreasing
// scales. A pyramid owns its level images; rebuilding through the same
// builder reuses their buffers.
type Pyramid struct {
	levels []Level
}

// NLevels returns the number of levels.
func (p *Pyramid) NLevels() int { return len(p.levels) }

// Level returns the i-th level. Levels are ordered coarse-ward: level 0 is
// the finest.
func (p *Pyramid) Level(i int) *Level { return &p.levels[i] }

// Levels returns the underlying level slice.
func (p *Pyramid) Levels() []Level { return p.levels }

// resizeLevels grows or shrinks the level slice to n entries, keeping the
// existing images so their buffers are reused.
func (p *Pyramid) resizeLevels(n int) {
	for len(p.levels) < n {
		p.levels = append(p.levels, Level{Image: nexus.NewGrayU8(0, 0)})
	}
	p.levels = p.levels[:n]
}

// setLevel records the scale/sigma annotation of level i and sizes its
// image.
func (p *Pyramid) setLevel(i, width, height int, scale, sigma float32) {
	if width < 1 || height < 1 {
		panic(fmt.Sprintf("pyramid: level %d would be %dx%d", i, width, height))
	}
	l := &p.levels[i]
	l.Image.Resize(width, height, nexus.StrideDefault, nexus.Grayscale, nexus.U8)
	l.Scale = scale
	l.Sigma = sigma
}

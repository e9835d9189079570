// Package brief extracts BRIEF binary descriptors from image pyramids.
//
// A descriptor bit is the sign of the intensity difference between two
// pixels at fixed offsets around the keypoint; offsets are drawn once per
// extractor from a seedable uniform sampler. Descriptors are compared with
// the Hamming distance.
package brief

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/deepteams/nexus/pyramid"
)

// Reserved seeds known to produce well-spread test pairs for the named
// extractor geometries.
const (
	GoodSeedN32R16 uint32 = 1431142416
	GoodSeedN32R24 uint32 = 1431228807
)

// minPairDistance2 is the smallest allowed squared distance between the
// two points of a test pair.
const minPairDistance2 = 3 * 3

// DefaultPyrLevelOffset is how many levels above the keypoint's own level
// descriptors are sampled by default.
const DefaultPyrLevelOffset = 2

// Extractor holds the test-pair geometry of a BRIEF descriptor. Offsets
// stores the 8*NOctets ordered pairs flat as [x0 y0 x1 y1 ...]; every
// coordinate lies in [-Radius, +Radius].
type Extractor struct {
	Radius  int
	NOctets int

	Offsets      []int32
	OffsetLimits [4]int32 // xmin, xmax, ymin, ymax

	PyrLevelOffset int
}

// New returns an extractor with freshly randomized test pairs drawn from a
// time-dependent seed. Use NewWithSeed for reproducible pair sets.
func New(nOctets, radius int) *Extractor {
	return NewWithSeed(nOctets, radius, uint32(time.Now().UnixNano()))
}

// NewWithSeed returns an extractor whose test pairs are generated from the
// given seed; equal seeds reproduce equal pair sets bit for bit.
func NewWithSeed(nOctets, radius int, seed uint32) *Extractor {
	be := &Extractor{PyrLevelOffset: DefaultPyrLevelOffset}
	be.Resize(nOctets, radius)
	be.RandomizeWithSeed(seed)
	return be
}

// Resize sets the descriptor geometry and re-randomizes the test pairs
// from a time-dependent seed.
func (be *Extractor) Resize(nOctets, radius int) {
	if nOctets <= 0 || radius <= 0 {
		panic("brief: descriptor size and radius must be positive")
	}
	n := nOctets * 8 * 4
	if cap(be.Offsets) < n {
		be.Offsets = make([]int32, n)
	}
	be.Offsets = be.Offsets[:n]
	be.NOctets = nOctets
	be.Radius = radius
	be.Randomize()
}

// Randomize redraws all test pairs from a time-dependent seed.
func (be *Extractor) Randomize() {
	be.RandomizeWithSeed(uint32(time.Now().UnixNano()))
}

// RandomizeWithSeed redraws all test pairs from the given seed. Each pair
// samples both points uniformly in the [-Radius, +Radius] square,
// redrawing the second point until the squared distance between the two
// is at least nine.
func (be *Extractor) RandomizeWithSeed(seed uint32) {
	r := NewRand(seed)

	radius := float32(be.Radius)
	sample := func() int32 {
		return int32(2 * radius * (r.Float32() - 0.5))
	}

	n := be.NOctets * 8
	for i := 0; i < n; i++ {
		x0 := sample()
		y0 := sample()

		var x1, y1 int32
		for {
			x1 = sample()
			y1 = sample()
			dx := x1 - x0
			dy := y1 - y0
			if dx*dx+dy*dy >= minPairDistance2 {
				break
			}
		}

		be.Offsets[4*i] = x0
		be.Offsets[4*i+1] = y0
		be.Offsets[4*i+2] = x1
		be.Offsets[4*i+3] = y1
	}

	be.UpdateLimits()
}

// UpdateLimits recomputes OffsetLimits from the current test pairs. It
// must be called after any manual change to Offsets.
func (be *Extractor) UpdateLimits() {
	be.OffsetLimits[0] = math.MaxInt32
	be.OffsetLimits[1] = math.MinInt32
	be.OffsetLimits[2] = math.MaxInt32
	be.OffsetLimits[3] = math.MinInt32

	n := be.NOctets * 8
	for i := 0; i < n; i++ {
		x0 := be.Offsets[4*i]
		y0 := be.Offsets[4*i+1]
		x1 := be.Offsets[4*i+2]
		y1 := be.Offsets[4*i+3]

		be.OffsetLimits[0] = min(be.OffsetLimits[0], min(x0, x1))
		be.OffsetLimits[1] = max(be.OffsetLimits[1], max(x0, x1))
		be.OffsetLimits[2] = min(be.OffsetLimits[2], min(y0, y1))
		be.OffsetLimits[3] = max(be.OffsetLimits[3], max(y0, y1))
	}
}

// sampleScale returns the level the descriptor samples from and the
// factor mapping keypoint coordinates into it.
func (be *Extractor) sampleScale(pyr *pyramid.Pyramid, level int) (int, float32) {
	sampleLevel := level + be.PyrLevelOffset
	keyScale := pyr.Level(level).Scale
	sampleScale := pyr.Level(sampleLevel).Scale
	return sampleLevel, keyScale / sampleScale
}

// CheckPointPyr reports whether a keypoint at (x, y) on the given pyramid
// level can be described: the sampling level must exist and the scaled
// offset box around the point must fall strictly inside its image.
func (be *Extractor) CheckPointPyr(pyr *pyramid.Pyramid, x, y, level int) bool {
	if level+be.PyrLevelOffset >= pyr.NLevels() {
		return false
	}
	sampleLevel, scale := be.sampleScale(pyr, level)
	img := pyr.Level(sampleLevel).Image

	xMin := int(float32(x+int(be.OffsetLimits[0])) * scale)
	xMax := int(float32(x+int(be.OffsetLimits[1])) * scale)
	yMin := int(float32(y+int(be.OffsetLimits[2])) * scale)
	yMax := int(float32(y+int(be.OffsetLimits[3])) * scale)

	return xMin >= 0 && xMax < img.Width && yMin >= 0 && yMax < img.Height
}

// ComputePyr writes the descriptor of the keypoint at (x, y, level) into
// desc, which must hold NOctets bytes. Within each octet the first test
// lands in the most significant bit. The caller is responsible for
// checking the point with CheckPointPyr first.
func (be *Extractor) ComputePyr(pyr *pyramid.Pyramid, x, y, level int, desc []byte) {
	sampleLevel, scale := be.sampleScale(pyr, level)
	img := pyr.Level(sampleLevel).Image
	pix := img.Pix
	stride := img.RowStride

	offsets := be.Offsets
	t := 0
	for i := 0; i < be.NOctets; i++ {
		var octet byte
		for j := 0; j < 8; j++ {
			x0 := int(float32(x+int(offsets[t])) * scale)
			y0 := int(float32(y+int(offsets[t+1])) * scale)
			x1 := int(float32(x+int(offsets[t+2])) * scale)
			y1 := int(float32(y+int(offsets[t+3])) * scale)
			t += 4

			i0 := pix[stride*y0+x0]
			i1 := pix[stride*y1+x1]

			octet <<= 1
			if i0 > i1 {
				octet |= 1
			}
		}
		desc[i] = octet
	}
}

// octetBitCount is the per-byte population count table used by Distance.
var octetBitCount = [256]uint8{
	0, 1, 1, 2, 1, 2, 2, 3, 1, 2, 2, 3, 2, 3, 3, 4,
	1, 2, 2, 3, 2, 3, 3, 4, 2, 3, 3, 4, 3, 4, 4, 5,
	1, 2, 2, 3, 2, 3, 3, 4, 2, 3, 3, 4, 3, 4, 4, 5,
	2, 3, 3, 4, 3, 4, 4, 5, 3, 4, 4, 5, 4, 5, 5, 6,
	1, 2, 2, 3, 2, 3, 3, 4, 2, 3, 3, 4, 3, 4, 4, 5,
	2, 3, 3, 4, 3, 4, 4, 5, 3, 4, 4, 5, 4, 5, 5, 6,
	2, 3, 3, 4, 3, 4, 4, 5, 3, 4, 4, 5, 4, 5, 5, 6,
	3, 4, 4, 5, 4, 5, 5, 6, 4, 5, 5, 6, 5, 6, 6, 7,
	1, 2, 2, 3, 2, 3, 3, 4, 2, 3, 3, 4, 3, 4, 4, 5,
	2, 3, 3, 4, 3, 4, 4, 5, 3, 4, 4, 5, 4, 5, 5, 6,
	2, 3, 3, 4, 3, 4, 4, 5, 3, 4, 4, 5, 4, 5, 5, 6,
	3, 4, 4, 5, 4, 5, 5, 6, 4, 5, 5, 6, 5, 6, 6, 7,
	2, 3, 3, 4, 3, 4, 4, 5, 3, 4, 4, 5, 4, 5, 5, 6,
	3, 4, 4, 5, 4, 5, 5, 6, 4, 5, 5, 6, 5, 6, 6, 7,
	3, 4, 4, 5, 4, 5, 5, 6, 4, 5, 5, 6, 5, 6, 6, 7,
	4, 5, 5, 6, 5, 6, 6, 7, 5, 6, 6, 7, 6, 7, 7, 8,
}

// Distance returns the Hamming distance between two descriptors of
// nOctets bytes each, in [0, 8*nOctets].
func Distance(nOctets int, desc0, desc1 []byte) int {
	dist := 0
	i := 0
	for ; i < nOctets-7; i += 8 {
		dist += int(octetBitCount[desc0[i]^desc1[i]]) +
			int(octetBitCount[desc0[i+1]^desc1[i+1]]) +
			int(octetBitCount[desc0[i+2]^desc1[i+2]]) +
			int(octetBitCount[desc0[i+3]^desc1[i+3]]) +
			int(octetBitCount[desc0[i+4]^desc1[i+4]]) +
			int(octetBitCount[desc0[i+5]^desc1[i+5]]) +
			int(octetBitCount[desc0[i+6]^desc1[i+6]]) +
			int(octetBitCount[desc0[i+7]^desc1[i+7]])
	}
	for ; i < nOctets; i++ {
		dist += int(octetBitCount[desc0[i]^desc1[i]])
	}
	return dist
}

// Write serialises the extractor: NOctets, Radius, the flat offset table
// and PyrLevelOffset, all as little-endian int32.
func (be *Extractor) Write(w io.Writer) error {
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(be.NOctets))
	binary.LittleEndian.PutUint32(hdr[4:], uint32(be.Radius))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("brief: writing extractor header: %w", err)
	}

	buf := make([]byte, 4*len(be.Offsets))
	for i, v := range be.Offsets {
		binary.LittleEndian.PutUint32(buf[4*i:], uint32(v))
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("brief: writing extractor offsets: %w", err)
	}

	binary.LittleEndian.PutUint32(hdr[0:4], uint32(be.PyrLevelOffset))
	if _, err := w.Write(hdr[0:4]); err != nil {
		return fmt.Errorf("brief: writing extractor level offset: %w", err)
	}
	return nil
}

// Read deserialises an extractor written by Write and recomputes the
// offset limits.
func (be *Extractor) Read(r io.Reader) error {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return fmt.Errorf("brief: reading extractor header: %w", err)
	}
	nOctets := int(int32(binary.LittleEndian.Uint32(hdr[0:])))
	radius := int(int32(binary.LittleEndian.Uint32(hdr[4:])))
	if nOctets <= 0 || radius <= 0 {
		return fmt.Errorf("brief: invalid extractor geometry %dx%d", nOctets, radius)
	}

	n := nOctets * 8 * 4
	buf := make([]byte, 4*n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("brief: reading extractor offsets: %w", err)
	}

	be.NOctets = nOctets
	be.Radius = radius
	be.Offsets = make([]int32, n)
	for i := range be.Offsets {
		be.Offsets[i] = int32(binary.LittleEndian.Uint32(buf[4*i:]))
	}

	if _, err := io.ReadFull(r, hdr[0:4]); err != nil {
		return fmt.Errorf("brief: reading extractor level offset: %w", err)
	}
	be.PyrLevelOffset = int(int32(binary.LittleEndian.Uint32(hdr[0:4])))

	be.UpdateLimits()
	return nil
}

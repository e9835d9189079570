package detect

import (
	"github.com/deepteams/nexus"
	"github.com/deepteams/nexus/pyramid"
)

// DefaultFastThreshold is the initial segment-test threshold of a fresh
// FastDetector.
const DefaultFastThreshold = 15

// workMultiplier sizes the unsuppressed corner buffer relative to the
// requested maximum.
const workMultiplier = 10

// FastDetector runs the FAST-9 detector with score-based non-maximum
// suppression and an optional frame-to-frame threshold adaptation. The
// zero value is not ready; use NewFast.
type FastDetector struct {
	// Threshold is the current segment-test threshold in [0, 255].
	Threshold int

	// AdaptThreshold nudges Threshold after every detection to steer
	// the corner count toward the requested maximum.
	AdaptThreshold bool

	work []nexus.Keypoint
}

// NewFast returns a detector with the default threshold and adaptation
// enabled.
func NewFast() *FastDetector {
	return &FastDetector{Threshold: DefaultFastThreshold, AdaptThreshold: true}
}

// Detect finds at most maxN suppressed corners in the grayscale u8 image,
// in raster order. Keypoint ids number the surviving corners from zero.
func (d *FastDetector) Detect(img *nexus.Image, maxN int) []nexus.Keypoint {
	d.work = FastDetectKeypoints(d.work[:0], img, d.Threshold, workMultiplier*maxN)
	FastScoreKeypoints(d.work, img, d.Threshold)

	keys := SuppressNonMax(nil, d.work, maxN)
	for i := range keys {
		keys[i].ID = uint64(i)
	}

	if d.AdaptThreshold {
		d.Threshold = adaptedFastThreshold(d.Threshold, len(d.work), maxN)
	}
	return keys
}

// DetectPyr runs per-level detection over the first nKeyLevels levels of
// the pyramid, suppresses per level, and concatenates the levels in
// ascending order. Each keypoint carries its level index and the level's
// scale and sigma.
func (d *FastDetector) DetectPyr(pyr *pyramid.Pyramid, maxN, nKeyLevels int) []nexus.Keypoint {
	if nKeyLevels > pyr.NLevels() {
		nKeyLevels = pyr.NLevels()
	}

	var keys []nexus.Keypoint
	nFound := 0
	for l := 0; l < nKeyLevels; l++ {
		level := pyr.Level(l)
		d.work = FastDetectKeypoints(d.work[:0], level.Image, d.Threshold, workMultiplier*maxN)
		FastScoreKeypoints(d.work, level.Image, d.Threshold)
		nFound += len(d.work)

		mark := len(keys)
		keys = SuppressNonMax(keys, d.work, maxN-len(keys))
		for i := mark; i < len(keys); i++ {
			keys[i].Level = int32(l)
			keys[i].Scale = level.Scale
			keys[i].Sigma = level.Sigma
			keys[i].ID = uint64(i)
		}
		if len(keys) >= maxN {
			break
		}
	}

	if d.AdaptThreshold {
		d.Threshold = adaptedFastThreshold(d.Threshold, nFound, maxN)
	}
	return keys
}

// adaptedFastThreshold scales the threshold by one of the fixed factors
// selected from the ratio of found corners to the requested maximum, and
// clamps the result to the valid segment-test range.
func adaptedFastThreshold(threshold, nFound, maxN int) int {
	t := float32(threshold) * adaptationFactor(nFound, maxN)
	if t < 1 {
		return 1
	}
	if t > 250 {
		return 250
	}
	return int(t)
}

// adaptationFactor picks the threshold multiplier for a detection that
// produced n corners against a budget of maxN.
func adaptationFactor(n, maxN int) float32 {
	r := float32(n)
	m := float32(maxN)
	switch {
	case r > 1.7*m:
		return 4.0
	case r > 1.4*m:
		return 1.9
	case r > 1.1*m:
		return 1.2
	case r > m:
		return 1.02
	case r < 0.5*m:
		return 0.25
	case r < 0.9*m:
		return 0.6
	case r < 0.95*m:
		return 0.9
	case r < 0.99*m:
		return 0.97
	}
	return 1.0
}

package nexus

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Keypoint is a detected interest point. X and Y are pixel coordinates in
// the pyramid level the point was detected on; XS and YS are sub-pixel
// refinements in the same frame. Scale and Sigma record the level's
// down-sampling factor and cumulative blur; Ori is an orientation in
// radians.
type Keypoint struct {
	X int32
	Y int32

	XS float32
	YS float32

	Level int32
	Scale float32
	Sigma float32

	Score float32
	Ori   float32

	ID uint64
}

// X0 projects the integer x coordinate to the original image frame.
func (k *Keypoint) X0() int32 { return int32(float32(k.X) * k.Scale) }

// Y0 projects the integer y coordinate to the original image frame.
func (k *Keypoint) Y0() int32 { return int32(float32(k.Y) * k.Scale) }

// XS0 projects the sub-pixel x coordinate to the original image frame.
func (k *Keypoint) XS0() float32 { return k.XS * k.Scale }

// YS0 projects the sub-pixel y coordinate to the original image frame.
func (k *Keypoint) YS0() float32 { return k.YS * k.Scale }

// keypointWireSize is the number of bytes one keypoint record occupies.
const keypointWireSize = 4*4 + 4*5 + 8

// WriteKeypoints writes keys to w in raw binary form, each record laid out
// field by field in declaration order, little endian. It returns the
// number of fully written records.
func WriteKeypoints(w io.Writer, keys []Keypoint) (int, error) {
	buf := make([]byte, keypointWireSize)
	for i := range keys {
		k := &keys[i]
		le := binary.LittleEndian
		le.PutUint32(buf[0:], uint32(k.X))
		le.PutUint32(buf[4:], uint32(k.Y))
		le.PutUint32(buf[8:], math.Float32bits(k.XS))
		le.PutUint32(buf[12:], math.Float32bits(k.YS))
		le.PutUint32(buf[16:], uint32(k.Level))
		le.PutUint32(buf[20:], math.Float32bits(k.Scale))
		le.PutUint32(buf[24:], math.Float32bits(k.Sigma))
		le.PutUint32(buf[28:], math.Float32bits(k.Score))
		le.PutUint32(buf[32:], math.Float32bits(k.Ori))
		le.PutUint64(buf[36:], k.ID)
		if _, err := w.Write(buf); err != nil {
			return i, fmt.Errorf("nexus: writing keypoint %d: %w", i, err)
		}
	}
	return len(keys), nil
}

// ReadKeypoints reads n keypoint records from r. It returns the records
// read; a short stream yields the records decoded so far and the error.
func ReadKeypoints(r io.Reader, n int) ([]Keypoint, error) {
	keys := make([]Keypoint, 0, n)
	buf := make([]byte, keypointWireSize)
	for i := 0; i < n; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return keys, fmt.Errorf("nexus: reading keypoint %d: %w", i, err)
		}
		le := binary.LittleEndian
		var k Keypoint
		k.X = int32(le.Uint32(buf[0:]))
		k.Y = int32(le.Uint32(buf[4:]))
		k.XS = math.Float32frombits(le.Uint32(buf[8:]))
		k.YS = math.Float32frombits(le.Uint32(buf[12:]))
		k.Level = int32(le.Uint32(buf[16:]))
		k.Scale = math.Float32frombits(le.Uint32(buf[20:]))
		k.Sigma = math.Float32frombits(le.Uint32(buf[24:]))
		k.Score = math.Float32frombits(le.Uint32(buf[28:]))
		k.Ori = math.Float32frombits(le.Uint32(buf[32:]))
		k.ID = le.Uint64(buf[36:])
		keys = append(keys, k)
	}
	return keys, nil
}

// MustWriteKeypoints is WriteKeypoints with the abort discipline: any
// short write panics with the diagnostic.
func MustWriteKeypoints(w io.Writer, keys []Keypoint) {
	if n, err := WriteKeypoints(w, keys); err != nil {
		panic(fmt.Sprintf("nexus: wrote %d of %d keypoints: %v", n, len(keys), err))
	}
}

// MustReadKeypoints is ReadKeypoints with the abort discipline.
func MustReadKeypoints(r io.Reader, n int) []Keypoint {
	keys, err := ReadKeypoints(r, n)
	if err != nil {
		panic(fmt.Sprintf("nexus: read %d of %d keypoints: %v", len(keys), n, err))
	}
	return keys
}

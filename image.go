package nexus

import "fmt"

// Type selects the channel layout of an Image.
type Type int

const (
	// Grayscale images have a single intensity channel.
	Grayscale Type = iota
	// RGBA images have four interleaved channels.
	RGBA
)

// NChannels returns the number of interleaved channels for the type.
func (t Type) NChannels() int {
	if t == RGBA {
		return 4
	}
	return 1
}

func (t Type) String() string {
	switch t {
	case Grayscale:
		return "gray"
	case RGBA:
		return "rgba"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// DataType selects the element type of an Image.
type DataType int

const (
	// U8 elements are unsigned bytes in [0, 255].
	U8 DataType = iota
	// F32 elements are float32, nominally in [0, 1] for intensity data.
	F32
)

func (d DataType) String() string {
	switch d {
	case U8:
		return "u8"
	case F32:
		return "f32"
	}
	return fmt.Sprintf("DataType(%d)", int(d))
}

// StrideDefault requests the minimal row stride, width times channels.
const StrideDefault = 0

// Image is a 2-D raster. Pix holds the elements of U8 images and PixF
// those of F32 images; exactly one of the two is non-nil for a non-empty
// image. RowStride is measured in elements, not bytes, and may exceed
// Width*Channels for sub-image wrapping or alignment padding.
type Image struct {
	Width  int
	Height int
	Type   Type
	DType  DataType

	Channels  int
	RowStride int

	Pix  []uint8
	PixF []float32

	mem     *MemBlock // backing storage for U8 pixels
	memF    []float32 // backing storage for F32 pixels
	wrapped bool
}

// NewImage returns an image of the given shape with zeroed pixels.
func NewImage(width, height int, typ Type, dtype DataType) *Image {
	img := &Image{mem: NewMemBlock(), Type: Grayscale, DType: U8, Channels: 1}
	img.Resize(width, height, StrideDefault, typ, dtype)
	return img
}

// NewGrayU8 returns a width x height grayscale byte image.
func NewGrayU8(width, height int) *Image { return NewImage(width, height, Grayscale, U8) }

// NewGrayF32 returns a width x height grayscale float image.
func NewGrayF32(width, height int) *Image { return NewImage(width, height, Grayscale, F32) }

// NewRGBAU8 returns a width x height RGBA byte image.
func NewRGBAU8(width, height int) *Image { return NewImage(width, height, RGBA, U8) }

// NewLike returns a zeroed image with the shape of src.
func NewLike(src *Image) *Image {
	return NewImage(src.Width, src.Height, src.Type, src.DType)
}

// Empty reports whether the image holds no pixels.
func (img *Image) Empty() bool { return img.Pix == nil && img.PixF == nil }

// Resize reshapes the image to (width, height, rowStride, typ, dtype),
// growing the backing storage as needed. A matching shape is a no-op and
// preserves pixel contents; otherwise contents are unspecified. rowStride
// is clamped up to width*channels; pass StrideDefault for the minimum.
// Zero-sized images are legal.
func (img *Image) Resize(width, height, rowStride int, typ Type, dtype DataType) {
	if width < 0 || height < 0 {
		panic("nexus: negative image dimension")
	}
	if img.Width == width && img.Height == height && img.RowStride == rowStride &&
		img.Type == typ && img.DType == dtype && !img.Empty() {
		return
	}

	nch := typ.NChannels()
	if rowStride < width*nch {
		rowStride = width * nch
	}
	n := rowStride * height

	img.Width = width
	img.Height = height
	img.Type = typ
	img.DType = dtype
	img.Channels = nch
	img.RowStride = rowStride
	img.wrapped = false

	switch dtype {
	case U8:
		if img.mem == nil {
			img.mem = NewMemBlock()
		}
		img.mem.Resize(n)
		img.Pix = img.mem.Data
		img.PixF = nil
	case F32:
		if cap(img.memF) < n {
			newCap := 2 * cap(img.memF)
			if newCap < n {
				newCap = n
			}
			img.memF = make([]float32, newCap)
		}
		img.PixF = img.memF[:n]
		img.Pix = nil
	}
}

// ResizeLike reshapes the image to the shape of src with default stride.
func (img *Image) ResizeLike(src *Image) {
	img.Resize(src.Width, src.Height, StrideDefault, src.Type, src.DType)
}

// Release drops the pixel storage and resets the image to empty.
func (img *Image) Release() {
	if img.mem != nil {
		img.mem.Release()
	}
	img.memF = nil
	img.Pix = nil
	img.PixF = nil
	img.Width = 0
	img.Height = 0
	img.Type = Grayscale
	img.Channels = 1
	img.RowStride = 0
	img.wrapped = false
}

// Copy duplicates the pixel contents and shape of src into img.
func (img *Image) Copy(src *Image) {
	img.Resize(src.Width, src.Height, src.RowStride, src.Type, src.DType)
	switch src.DType {
	case U8:
		copy(img.Pix, src.Pix)
	case F32:
		copy(img.PixF, src.PixF)
	}
}

// Clone returns a fresh copy of img.
func (img *Image) Clone() *Image {
	cpy := &Image{mem: NewMemBlock(), Type: Grayscale, DType: U8, Channels: 1}
	cpy.Copy(img)
	return cpy
}

// Swap exchanges the contents of two images, backing storage included.
func (img *Image) Swap(other *Image) {
	*img, *other = *other, *img
}

// WrapU8 installs foreign byte pixels without copying. The image keeps the
// given stride on later operations; the pixels are never reallocated unless
// a Resize changes the shape.
func (img *Image) WrapU8(pix []uint8, width, height, rowStride int, typ Type) {
	nch := typ.NChannels()
	if rowStride < width*nch {
		panic("nexus: wrap stride smaller than row length")
	}
	if len(pix) < rowStride*height {
		panic("nexus: wrap pixel slice too short")
	}
	if img.mem == nil {
		img.mem = NewMemBlock()
	}
	img.mem.Wrap(pix, false)
	img.Pix = pix
	img.PixF = nil
	img.memF = nil
	img.Width = width
	img.Height = height
	img.RowStride = rowStride
	img.Type = typ
	img.DType = U8
	img.Channels = nch
	img.wrapped = true
}

// WrapF32 installs foreign float pixels without copying.
func (img *Image) WrapF32(pix []float32, width, height, rowStride int, typ Type) {
	nch := typ.NChannels()
	if rowStride < width*nch {
		panic("nexus: wrap stride smaller than row length")
	}
	if len(pix) < rowStride*height {
		panic("nexus: wrap pixel slice too short")
	}
	img.memF = pix
	img.PixF = pix
	img.Pix = nil
	img.Width = width
	img.Height = height
	img.RowStride = rowStride
	img.Type = typ
	img.DType = F32
	img.Channels = nch
	img.wrapped = true
}

// SetZero zeroes all pixels, padding included.
func (img *Image) SetZero() {
	clear(img.Pix)
	clear(img.PixF)
}

// Gray conversion weights. Classic ITU-R 601 luma coefficients.
const (
	grayWeightR = 0.30
	grayWeightG = 0.59
	grayWeightB = 0.11
)

// RGBToGray converts one RGB byte triple to its luma value.
func RGBToGray(r, g, b uint8) uint8 {
	v := grayWeightR*float32(r) + grayWeightG*float32(g) + grayWeightB*float32(b)
	return clampU8(v)
}

func clampU8(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// ConvertType converts the image between Grayscale and RGBA in place.
// Gray to RGBA broadcasts the intensity to R=G=B and sets A to full
// opacity; RGBA to gray mixes the channels with the fixed luma weights.
// Converting to the current type or converting an empty image is a no-op.
func (img *Image) ConvertType(typ Type) {
	if img.Type == typ || img.Empty() {
		return
	}

	src := img.Clone()
	img.Resize(src.Width, src.Height, StrideDefault, typ, src.DType)

	switch {
	case src.Type == Grayscale && typ == RGBA:
		convertGrayToRGBA(img, src)
	case src.Type == RGBA && typ == Grayscale:
		convertRGBAToGray(img, src)
	default:
		panic("nexus: unhandled image type conversion")
	}
}

func convertGrayToRGBA(dest, src *Image) {
	for y := 0; y < src.Height; y++ {
		switch src.DType {
		case U8:
			srow := src.Pix[y*src.RowStride:]
			drow := dest.Pix[y*dest.RowStride:]
			for x := 0; x < src.Width; x++ {
				v := srow[x]
				drow[4*x] = v
				drow[4*x+1] = v
				drow[4*x+2] = v
				drow[4*x+3] = 255
			}
		case F32:
			srow := src.PixF[y*src.RowStride:]
			drow := dest.PixF[y*dest.RowStride:]
			for x := 0; x < src.Width; x++ {
				v := srow[x]
				drow[4*x] = v
				drow[4*x+1] = v
				drow[4*x+2] = v
				drow[4*x+3] = 1.0
			}
		}
	}
}

func convertRGBAToGray(dest, src *Image) {
	for y := 0; y < src.Height; y++ {
		switch src.DType {
		case U8:
			srow := src.Pix[y*src.RowStride:]
			drow := dest.Pix[y*dest.RowStride:]
			for x := 0; x < src.Width; x++ {
				drow[x] = RGBToGray(srow[4*x], srow[4*x+1], srow[4*x+2])
			}
		case F32:
			srow := src.PixF[y*src.RowStride:]
			drow := dest.PixF[y*dest.RowStride:]
			for x := 0; x < src.Width; x++ {
				v := grayWeightR*srow[4*x] + grayWeightG*srow[4*x+1] + grayWeightB*srow[4*x+2]
				if v < 0 {
					v = 0
				} else if v > 1 {
					v = 1
				}
				drow[x] = v
			}
		}
	}
}

func (img *Image) assertGray() {
	if img.Type != Grayscale {
		panic("nexus: operation requires a grayscale image")
	}
}

func (img *Image) assertGrayU8() {
	if img.Type != Grayscale || img.DType != U8 {
		panic("nexus: operation requires a grayscale u8 image")
	}
}

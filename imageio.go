package nexus

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LoadMode selects the channel layout a loaded file is converted to.
type LoadMode int

const (
	// LoadAsIs keeps the channel layout stored in the file.
	LoadAsIs LoadMode = iota
	// LoadGrayscale converts the decoded pixels to a single channel.
	LoadGrayscale
	// LoadRGBA converts the decoded pixels to four channels.
	LoadRGBA
)

// Format identifies an image file format handled by Load and Save.
type Format int

const (
	FormatUnknown Format = iota
	FormatPNMBinary
	FormatPNMASCII
	FormatJPEG
	FormatPNG
)

func (f Format) String() string {
	switch f {
	case FormatPNMBinary:
		return "pnm-binary"
	case FormatPNMASCII:
		return "pnm-ascii"
	case FormatJPEG:
		return "jpeg"
	case FormatPNG:
		return "png"
	}
	return "unknown"
}

// DetectFormat inspects the first magic bytes of the stream.
func DetectFormat(magic []byte) Format {
	if len(magic) < 2 {
		return FormatUnknown
	}
	if magic[0] == 'P' {
		switch magic[1] {
		case '5', '6':
			return FormatPNMBinary
		case '1', '2', '3':
			return FormatPNMASCII
		}
		return FormatUnknown
	}
	if magic[0] == 0xFF && magic[1] == 0xD8 {
		return FormatJPEG
	}
	if len(magic) >= 4 && magic[0] == 0x89 && magic[1] == 'P' && magic[2] == 'N' && magic[3] == 'G' {
		return FormatPNG
	}
	return FormatUnknown
}

// formatForFilename dispatches Save on the filename extension.
func formatForFilename(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pgm", ".ppm", ".pnm":
		return FormatPNMBinary
	case ".jpg", ".jpeg":
		return FormatJPEG
	case ".png":
		return FormatPNG
	}
	return FormatUnknown
}

// Decode reads an image from r, auto-detecting the format from its magic
// bytes, and stores the pixels into img converted per mode. On error img
// is left unchanged.
func Decode(r io.Reader, img *Image, mode LoadMode) error {
	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil && len(magic) < 2 {
		return fmt.Errorf("nexus: reading image magic: %w", err)
	}

	format := DetectFormat(magic)
	tmp := &Image{mem: NewMemBlock(), Type: Grayscale, DType: U8, Channels: 1}

	switch format {
	case FormatPNMBinary, FormatPNMASCII:
		typ := Grayscale
		if mode == LoadRGBA || (mode == LoadAsIs && (magic[1] == '3' || magic[1] == '6')) {
			typ = RGBA
		}
		if err := decodePNM(br, tmp, typ); err != nil {
			return err
		}
	case FormatJPEG, FormatPNG:
		decoded, _, err := image.Decode(br)
		if err != nil {
			return fmt.Errorf("nexus: decoding %v stream: %w", format, err)
		}
		fromStdImage(tmp, decoded, mode)
	default:
		return fmt.Errorf("nexus: unknown image format (magic % 02X)", magic)
	}

	img.Swap(tmp)
	if mode == LoadGrayscale {
		img.ConvertType(Grayscale)
	} else if mode == LoadRGBA {
		img.ConvertType(RGBA)
	}
	return nil
}

// Load reads the named image file into img, converting per mode. The
// target image is unchanged when the load fails.
func Load(img *Image, filename string, mode LoadMode) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("nexus: opening %q: %w", filename, err)
	}
	defer f.Close()
	return Decode(f, img, mode)
}

// LoadGray loads the named file as a grayscale u8 image.
func LoadGray(filename string) (*Image, error) {
	img := NewGrayU8(0, 0)
	if err := Load(img, filename, LoadGrayscale); err != nil {
		return nil, err
	}
	return img, nil
}

// Encode writes img to w in the given format. JPEG is encoded at quality
// 100; RGBA alpha is dropped for PNM and JPEG.
func Encode(w io.Writer, img *Image, format Format) error {
	if img.DType != U8 {
		return fmt.Errorf("nexus: can only save u8 images, have %v", img.DType)
	}
	switch format {
	case FormatPNMBinary:
		return encodePNM(w, img)
	case FormatJPEG:
		if err := jpeg.Encode(w, toStdImageOpaque(img), &jpeg.Options{Quality: 100}); err != nil {
			return fmt.Errorf("nexus: encoding JPEG: %w", err)
		}
		return nil
	case FormatPNG:
		if err := png.Encode(w, toStdImage(img)); err != nil {
			return fmt.Errorf("nexus: encoding PNG: %w", err)
		}
		return nil
	}
	return fmt.Errorf("nexus: can not encode format %v", format)
}

// Save writes img to the named file, dispatching the format on the
// filename extension: .pgm/.ppm/.pnm for PNM binary, .jpg/.jpeg for JPEG
// at quality 100, .png for PNG.
func Save(img *Image, filename string) error {
	format := formatForFilename(filename)
	if format == FormatUnknown {
		return fmt.Errorf("nexus: no image format for filename %q", filename)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, img, format); err != nil {
		return err
	}
	if err := os.WriteFile(filename, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("nexus: writing %q: %w", filename, err)
	}
	return nil
}

// MustLoad is Load with the abort discipline.
func MustLoad(img *Image, filename string, mode LoadMode) {
	if err := Load(img, filename, mode); err != nil {
		panic(err.Error())
	}
}

// MustSave is Save with the abort discipline.
func MustSave(img *Image, filename string) {
	if err := Save(img, filename); err != nil {
		panic(err.Error())
	}
}

// fromStdImage fills img from a decoded standard-library image. Gray
// sources stay single channel unless RGBA is requested; everything else
// lands in RGBA.
func fromStdImage(img *Image, src image.Image, mode LoadMode) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	if gray, ok := src.(*image.Gray); ok && mode != LoadRGBA {
		img.Resize(w, h, StrideDefault, Grayscale, U8)
		for y := 0; y < h; y++ {
			copy(img.Pix[y*img.RowStride:y*img.RowStride+w],
				gray.Pix[y*gray.Stride:y*gray.Stride+w])
		}
		return
	}

	img.Resize(w, h, StrideDefault, RGBA, U8)
	if nrgba, ok := src.(*image.NRGBA); ok {
		for y := 0; y < h; y++ {
			copy(img.Pix[y*img.RowStride:y*img.RowStride+4*w],
				nrgba.Pix[y*nrgba.Stride:y*nrgba.Stride+4*w])
		}
		return
	}
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.RowStride:]
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			row[4*x] = c.R
			row[4*x+1] = c.G
			row[4*x+2] = c.B
			row[4*x+3] = c.A
		}
	}
}

// toStdImage converts img to the matching standard-library image type.
func toStdImage(img *Image) image.Image {
	w, h := img.Width, img.Height
	if img.Type == Grayscale {
		out := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			copy(out.Pix[y*out.Stride:y*out.Stride+w],
				img.Pix[y*img.RowStride:y*img.RowStride+w])
		}
		return out
	}
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+4*w],
			img.Pix[y*img.RowStride:y*img.RowStride+4*w])
	}
	return out
}

// toStdImageOpaque is toStdImage with alpha forced opaque, for codecs
// that store three channels.
func toStdImageOpaque(img *Image) image.Image {
	std := toStdImage(img)
	if nrgba, ok := std.(*image.NRGBA); ok {
		for i := 3; i < len(nrgba.Pix); i += 4 {
			nrgba.Pix[i] = 255
		}
	}
	return std
}

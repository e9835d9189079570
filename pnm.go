package nexus

import (
	"bufio"
	"fmt"
	"io"
)

// PNM codec. Binary P5 (gray) and P6 (RGB) are read and written; the
// ASCII variants P1, P2 and P3 are read only. Saving from RGBA drops the
// alpha channel; loading RGB data into an RGBA image sets alpha to 255.

func encodePNM(w io.Writer, img *Image) error {
	if img.DType != U8 {
		return fmt.Errorf("nexus: PNM supports u8 images only, have %v", img.DType)
	}

	bw := bufio.NewWriter(w)
	switch img.Type {
	case Grayscale:
		fmt.Fprintf(bw, "P5\n%d %d %d\n", img.Width, img.Height, 255)
		for y := 0; y < img.Height; y++ {
			row := img.Pix[y*img.RowStride : y*img.RowStride+img.Width]
			if _, err := bw.Write(row); err != nil {
				return fmt.Errorf("nexus: writing PNM rows: %w", err)
			}
		}
	case RGBA:
		fmt.Fprintf(bw, "P6\n%d %d\n%d\n", img.Width, img.Height, 255)
		for y := 0; y < img.Height; y++ {
			row := img.Pix[y*img.RowStride:]
			for x := 0; x < img.Width; x++ {
				if _, err := bw.Write(row[4*x : 4*x+3]); err != nil {
					return fmt.Errorf("nexus: writing PNM rows: %w", err)
				}
			}
		}
	default:
		return fmt.Errorf("nexus: can not save image of unknown type %d as PNM", int(img.Type))
	}
	return bw.Flush()
}

// pnmHeader is the parsed preamble of a PNM stream.
type pnmHeader struct {
	magic  byte // '1'..'6'
	width  int
	height int
	maxVal int
}

// readPNMToken reads one whitespace-delimited token, skipping '#' comments.
func readPNMToken(br *bufio.Reader) (string, error) {
	var tok []byte
	for {
		c, err := br.ReadByte()
		if err != nil {
			if len(tok) > 0 && err == io.EOF {
				return string(tok), nil
			}
			return "", err
		}
		switch {
		case c == '#':
			if _, err := br.ReadString('\n'); err != nil && err != io.EOF {
				return "", err
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			if len(tok) > 0 {
				return string(tok), nil
			}
		default:
			tok = append(tok, c)
		}
	}
}

func readPNMInt(br *bufio.Reader) (int, error) {
	tok, err := readPNMToken(br)
	if err != nil {
		return 0, err
	}
	v := 0
	for i := 0; i < len(tok); i++ {
		if tok[i] < '0' || tok[i] > '9' {
			return 0, fmt.Errorf("nexus: malformed PNM number %q", tok)
		}
		v = v*10 + int(tok[i]-'0')
	}
	return v, nil
}

func readPNMHeader(br *bufio.Reader) (pnmHeader, error) {
	var h pnmHeader
	magic := make([]byte, 2)
	if _, err := io.ReadFull(br, magic); err != nil {
		return h, fmt.Errorf("nexus: reading PNM magic: %w", err)
	}
	if magic[0] != 'P' || magic[1] < '1' || magic[1] > '6' {
		return h, fmt.Errorf("nexus: not a PNM stream (magic %q)", magic)
	}
	h.magic = magic[1]

	var err error
	if h.width, err = readPNMInt(br); err != nil {
		return h, fmt.Errorf("nexus: reading PNM width: %w", err)
	}
	if h.height, err = readPNMInt(br); err != nil {
		return h, fmt.Errorf("nexus: reading PNM height: %w", err)
	}
	// P1/P4 bitmaps carry no max value.
	if h.magic != '1' && h.magic != '4' {
		if h.maxVal, err = readPNMInt(br); err != nil {
			return h, fmt.Errorf("nexus: reading PNM max value: %w", err)
		}
	} else {
		h.maxVal = 1
	}
	return h, nil
}

// decodePNM decodes a PNM stream into img, converting to the requested
// type. The image is only modified after the header parses; on a short
// pixel stream an error is returned and the image may hold partial rows,
// so the dispatcher decodes into a scratch image first.
func decodePNM(r io.Reader, img *Image, typ Type) error {
	br := bufio.NewReader(r)
	h, err := readPNMHeader(br)
	if err != nil {
		return err
	}
	if h.magic == '4' {
		return fmt.Errorf("nexus: PNM P4 bitmaps are not supported")
	}
	if h.maxVal <= 0 || h.maxVal > 255 {
		return fmt.Errorf("nexus: unsupported PNM max value %d", h.maxVal)
	}

	img.Resize(h.width, h.height, StrideDefault, typ, U8)

	ascii := h.magic <= '3'
	srcGray := h.magic == '1' || h.magic == '2' || h.magic == '5'

	readVal := func() (uint8, error) {
		if ascii {
			v, err := readPNMInt(br)
			if err != nil {
				return 0, err
			}
			if h.magic == '1' {
				// P1 stores 1 for black.
				if v != 0 {
					return 0, nil
				}
				return 255, nil
			}
			return uint8(v * 255 / h.maxVal), nil
		}
		c, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		return c, nil
	}

	for y := 0; y < h.height; y++ {
		row := img.Pix[y*img.RowStride:]
		for x := 0; x < h.width; x++ {
			if srcGray {
				v, err := readVal()
				if err != nil {
					return fmt.Errorf("nexus: reading PNM pixels: %w", err)
				}
				if typ == Grayscale {
					row[x] = v
				} else {
					row[4*x] = v
					row[4*x+1] = v
					row[4*x+2] = v
					row[4*x+3] = 255
				}
			} else {
				var rgb [3]uint8
				for c := range rgb {
					v, err := readVal()
					if err != nil {
						return fmt.Errorf("nexus: reading PNM pixels: %w", err)
					}
					rgb[c] = v
				}
				if typ == Grayscale {
					row[x] = RGBToGray(rgb[0], rgb[1], rgb[2])
				} else {
					row[4*x] = rgb[0]
					row[4*x+1] = rgb[1]
					row[4*x+2] = rgb[2]
					row[4*x+3] = 255
				}
			}
		}
	}
	return nil
}

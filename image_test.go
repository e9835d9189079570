package nexus

import "testing"

func TestImageNew(t *testing.T) {
	tests := []struct {
		name     string
		img      *Image
		channels int
		dtype    DataType
	}{
		{"gray-u8", NewGrayU8(7, 5), 1, U8},
		{"rgba-u8", NewRGBAU8(7, 5), 4, U8},
		{"gray-f32", NewGrayF32(7, 5), 1, F32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := tt.img
			if img.Width != 7 || img.Height != 5 {
				t.Errorf("dims = %dx%d, want 7x5", img.Width, img.Height)
			}
			if img.Channels != tt.channels {
				t.Errorf("channels = %d, want %d", img.Channels, tt.channels)
			}
			if img.RowStride < img.Width*tt.channels {
				t.Errorf("stride = %d below row length", img.RowStride)
			}
			if img.DType != tt.dtype {
				t.Errorf("dtype = %v, want %v", img.DType, tt.dtype)
			}
			switch tt.dtype {
			case U8:
				if len(img.Pix) < img.RowStride*img.Height {
					t.Error("pixel buffer too short")
				}
			case F32:
				if len(img.PixF) < img.RowStride*img.Height {
					t.Error("pixel buffer too short")
				}
			}
		})
	}
}

func TestImageZeroSize(t *testing.T) {
	img := NewGrayU8(0, 0)
	if img.Width != 0 || img.Height != 0 {
		t.Fatalf("dims = %dx%d, want 0x0", img.Width, img.Height)
	}
}

func TestImageResizeNoop(t *testing.T) {
	img := NewGrayU8(4, 4)
	img.Pix[0] = 77
	img.Resize(4, 4, img.RowStride, Grayscale, U8)
	if img.Pix[0] != 77 {
		t.Error("matching resize should be a no-op and keep pixels")
	}
}

func TestImageCopySwap(t *testing.T) {
	a := NewGrayU8(3, 2)
	for i := range a.Pix {
		a.Pix[i] = uint8(i)
	}
	b := NewGrayU8(0, 0)
	b.Copy(a)

	if b.Width != 3 || b.Height != 2 {
		t.Fatalf("copy dims = %dx%d", b.Width, b.Height)
	}
	for i := range a.Pix {
		if b.Pix[i] != a.Pix[i] {
			t.Fatalf("copy Pix[%d] = %d, want %d", i, b.Pix[i], a.Pix[i])
		}
	}

	c := NewRGBAU8(1, 1)
	c.Swap(b)
	if c.Width != 3 || c.Type != Grayscale {
		t.Errorf("after swap c is %dx%d %v", c.Width, c.Height, c.Type)
	}
	if b.Width != 1 || b.Type != RGBA {
		t.Errorf("after swap b is %dx%d %v", b.Width, b.Height, b.Type)
	}
}

func TestImageWrapU8(t *testing.T) {
	pix := make([]uint8, 6*4)
	for i := range pix {
		pix[i] = uint8(i)
	}
	img := NewGrayU8(0, 0)
	img.WrapU8(pix, 5, 4, 6, Grayscale)

	if img.Width != 5 || img.Height != 4 || img.RowStride != 6 {
		t.Fatalf("wrap shape %dx%d stride %d", img.Width, img.Height, img.RowStride)
	}
	img.Pix[0] = 99
	if pix[0] != 99 {
		t.Error("wrapped image should alias the foreign pixels")
	}
}

func TestImageConvertGrayToRGBA(t *testing.T) {
	img := NewGrayU8(2, 1)
	img.Pix[0] = 10
	img.Pix[1] = 20

	img.ConvertType(RGBA)

	want := []uint8{10, 10, 10, 255, 20, 20, 20, 255}
	for i, w := range want {
		if img.Pix[i] != w {
			t.Errorf("Pix[%d] = %d, want %d", i, img.Pix[i], w)
		}
	}
}

func TestImageConvertRGBAToGray(t *testing.T) {
	img := NewRGBAU8(1, 1)
	copy(img.Pix, []uint8{100, 50, 200, 255})

	img.ConvertType(Grayscale)

	// 0.30*100 + 0.59*50 + 0.11*200 = 81.5, rounded.
	if img.Pix[0] != 82 {
		t.Errorf("gray = %d, want 82", img.Pix[0])
	}
	if img.Channels != 1 {
		t.Errorf("channels = %d, want 1", img.Channels)
	}
}

func TestImageConvertTypeNoop(t *testing.T) {
	img := NewGrayU8(2, 2)
	img.Pix[0] = 5
	img.ConvertType(Grayscale)
	if img.Pix[0] != 5 || img.Type != Grayscale {
		t.Error("converting to the current type should be a no-op")
	}
}

func TestImageSetZero(t *testing.T) {
	img := NewGrayU8(3, 3)
	for i := range img.Pix {
		img.Pix[i] = 0xAB
	}
	img.SetZero()
	for i, v := range img.Pix {
		if v != 0 {
			t.Fatalf("Pix[%d] = %d after SetZero", i, v)
		}
	}
}

func TestRGBToGrayClamps(t *testing.T) {
	if got := RGBToGray(255, 255, 255); got != 255 {
		t.Errorf("white = %d, want 255", got)
	}
	if got := RGBToGray(0, 0, 0); got != 0 {
		t.Errorf("black = %d, want 0", got)
	}
}

package nexus

// Scale resamples the grayscale image src by the linear factor f into
// dest, producing an image of size floor(f*w) x floor(f*h). Samples are
// taken at (x/f, y/f) with bilinear interpolation; samples past the last
// row or column clamp to the nearest valid neighbour.
func Scale(dest, src *Image, f float32) {
	src.assertGray()

	dw := int(float32(src.Width) * f)
	dh := int(float32(src.Height) * f)
	dest.Resize(dw, dh, StrideDefault, src.Type, src.DType)

	inv := 1.0 / f
	switch src.DType {
	case U8:
		scaleU8(dest, src, inv)
	case F32:
		scaleF32(dest, src, inv)
	}
}

func scaleU8(dest, src *Image, inv float32) {
	lastX := src.Width - 1
	lastY := src.Height - 1
	for y := 0; y < dest.Height; y++ {
		drow := dest.Pix[y*dest.RowStride:]

		yp := float32(y) * inv
		ypi := int(yp)
		dy := yp - float32(ypi)
		y1 := ypi + 1
		if y1 > lastY {
			y1 = lastY
		}
		row0 := src.Pix[ypi*src.RowStride:]
		row1 := src.Pix[y1*src.RowStride:]

		for x := 0; x < dest.Width; x++ {
			xp := float32(x) * inv
			xpi := int(xp)
			dx := xp - float32(xpi)
			x1 := xpi + 1
			if x1 > lastX {
				x1 = lastX
			}

			i00 := float32(row0[xpi])
			i01 := float32(row0[x1])
			i10 := float32(row1[xpi])
			i11 := float32(row1[x1])

			v := (i00*(1-dx)+i01*dx)*(1-dy) + (i10*(1-dx)+i11*dx)*dy
			drow[x] = clampU8(v)
		}
	}
}

func scaleF32(dest, src *Image, inv float32) {
	lastX := src.Width - 1
	lastY := src.Height - 1
	for y := 0; y < dest.Height; y++ {
		drow := dest.PixF[y*dest.RowStride:]

		yp := float32(y) * inv
		ypi := int(yp)
		dy := yp - float32(ypi)
		y1 := ypi + 1
		if y1 > lastY {
			y1 = lastY
		}
		row0 := src.PixF[ypi*src.RowStride:]
		row1 := src.PixF[y1*src.RowStride:]

		for x := 0; x < dest.Width; x++ {
			xp := float32(x) * inv
			xpi := int(xp)
			dx := xp - float32(xpi)
			x1 := xpi + 1
			if x1 > lastX {
				x1 = lastX
			}

			i00 := row0[xpi]
			i01 := row0[x1]
			i10 := row1[xpi]
			i11 := row1[x1]

			drow[x] = (i00*(1-dx)+i01*dx)*(1-dy) + (i10*(1-dx)+i11*dx)*dy
		}
	}
}

// ScaleTo resamples the grayscale image src into dest with the explicit
// destination size (dw, dh), bilinear like Scale but with independent
// per-axis factors. Used by pyramid builders whose level sizes are derived
// from the original image rather than from a running factor.
func ScaleTo(dest, src *Image, dw, dh int) {
	src.assertGray()

	dest.Resize(dw, dh, StrideDefault, src.Type, src.DType)
	if dw == 0 || dh == 0 {
		return
	}

	invX := float32(src.Width) / float32(dw)
	invY := float32(src.Height) / float32(dh)
	lastX := src.Width - 1
	lastY := src.Height - 1

	for y := 0; y < dh; y++ {
		yp := float32(y) * invY
		ypi := int(yp)
		if ypi > lastY {
			ypi = lastY
		}
		dy := yp - float32(ypi)
		y1 := ypi + 1
		if y1 > lastY {
			y1 = lastY
		}

		for x := 0; x < dw; x++ {
			xp := float32(x) * invX
			xpi := int(xp)
			if xpi > lastX {
				xpi = lastX
			}
			dx := xp - float32(xpi)
			x1 := xpi + 1
			if x1 > lastX {
				x1 = lastX
			}

			switch src.DType {
			case U8:
				row0 := src.Pix[ypi*src.RowStride:]
				row1 := src.Pix[y1*src.RowStride:]
				i00 := float32(row0[xpi])
				i01 := float32(row0[x1])
				i10 := float32(row1[xpi])
				i11 := float32(row1[x1])
				v := (i00*(1-dx)+i01*dx)*(1-dy) + (i10*(1-dx)+i11*dx)*dy
				dest.Pix[y*dest.RowStride+x] = clampU8(v)
			case F32:
				row0 := src.PixF[ypi*src.RowStride:]
				row1 := src.PixF[y1*src.RowStride:]
				v := (row0[xpi]*(1-dx)+row0[x1]*dx)*(1-dy) +
					(row1[xpi]*(1-dx)+row1[x1]*dx)*dy
				dest.PixF[y*dest.RowStride+x] = v
			}
		}
	}
}

// Downsample decimates the grayscale image src by exactly two in both
// dimensions, keeping the samples at even coordinates.
func Downsample(dest, src *Image) {
	src.assertGray()

	dw := src.Width / 2
	dh := src.Height / 2
	dest.Resize(dw, dh, StrideDefault, src.Type, src.DType)

	for y := 0; y < dh; y++ {
		switch src.DType {
		case U8:
			srow := src.Pix[2*y*src.RowStride:]
			drow := dest.Pix[y*dest.RowStride:]
			for x := 0; x < dw; x++ {
				drow[x] = srow[2*x]
			}
		case F32:
			srow := src.PixF[2*y*src.RowStride:]
			drow := dest.PixF[y*dest.RowStride:]
			for x := 0; x < dw; x++ {
				drow[x] = srow[2*x]
			}
		}
	}
}

// The anti-aliased decimators apply the 5-tap kernel [1 6 11 6 1]/25
// before dropping every other sample along the named axis. At the first
// border the out-of-range taps fold onto their mirror images, giving
// weights [11 12 2]. At the trailing border an even source extent folds
// its one out-of-range tap, giving weights [1 6 12 6]; an odd source
// extent leaves a sample past the last output position and uses the
// unfolded kernel.
const aaNorm = 1.0 / 25.0

// downsampleAARow decimates one line of n samples (taken at the given
// stride) into dn = n/2 output samples written at dstride.
func downsampleAARowU8(dst []uint8, dstride int, src []uint8, sstride, n int) {
	dn := n / 2
	if dn == 0 {
		return
	}
	at := func(i int) float32 { return float32(src[i*sstride]) }

	if dn == 1 {
		// Single output: fold both sides.
		v := (2*at(min(2, n-1)) + 12*at(min(1, n-1)) + 11*at(0)) * aaNorm
		dst[0] = clampU8(v)
		return
	}

	dst[0] = clampU8((2*at(2) + 12*at(1) + 11*at(0)) * aaNorm)
	for x := 1; x < dn-1; x++ {
		sum := at(2*x-2) + at(2*x+2) + 6*(at(2*x-1)+at(2*x+1)) + 11*at(2*x)
		dst[x*dstride] = clampU8(sum * aaNorm)
	}
	twodn := 2 * dn
	var last float32
	if twodn == n {
		last = (at(twodn-4) + 6*(at(twodn-3)+at(twodn-1)) + 12*at(twodn-2)) * aaNorm
	} else {
		last = (at(twodn-4) + at(twodn) + 6*(at(twodn-3)+at(twodn-1)) + 11*at(twodn-2)) * aaNorm
	}
	dst[(dn-1)*dstride] = clampU8(last)
}

func downsampleAARowF32(dst []float32, dstride int, src []float32, sstride, n int) {
	dn := n / 2
	if dn == 0 {
		return
	}
	at := func(i int) float32 { return src[i*sstride] }

	if dn == 1 {
		dst[0] = (2*at(min(2, n-1)) + 12*at(min(1, n-1)) + 11*at(0)) * aaNorm
		return
	}

	dst[0] = (2*at(2) + 12*at(1) + 11*at(0)) * aaNorm
	for x := 1; x < dn-1; x++ {
		sum := at(2*x-2) + at(2*x+2) + 6*(at(2*x-1)+at(2*x+1)) + 11*at(2*x)
		dst[x*dstride] = sum * aaNorm
	}
	twodn := 2 * dn
	if twodn == n {
		dst[(dn-1)*dstride] = (at(twodn-4) + 6*(at(twodn-3)+at(twodn-1)) + 12*at(twodn-2)) * aaNorm
	} else {
		dst[(dn-1)*dstride] = (at(twodn-4) + at(twodn) + 6*(at(twodn-3)+at(twodn-1)) + 11*at(twodn-2)) * aaNorm
	}
}

// DownsampleAAX decimates the grayscale image by two along x only, with
// anti-aliasing.
func DownsampleAAX(dest, src *Image) {
	src.assertGray()

	dw := src.Width / 2
	dh := src.Height
	dest.Resize(dw, dh, StrideDefault, src.Type, src.DType)

	for y := 0; y < dh; y++ {
		switch src.DType {
		case U8:
			downsampleAARowU8(dest.Pix[y*dest.RowStride:], 1,
				src.Pix[y*src.RowStride:], 1, src.Width)
		case F32:
			downsampleAARowF32(dest.PixF[y*dest.RowStride:], 1,
				src.PixF[y*src.RowStride:], 1, src.Width)
		}
	}
}

// DownsampleAAY decimates the grayscale image by two along y only, with
// anti-aliasing.
func DownsampleAAY(dest, src *Image) {
	src.assertGray()

	dw := src.Width
	dh := src.Height / 2
	dest.Resize(dw, dh, StrideDefault, src.Type, src.DType)

	for x := 0; x < dw; x++ {
		switch src.DType {
		case U8:
			downsampleAARowU8(dest.Pix[x:], dest.RowStride,
				src.Pix[x:], src.RowStride, src.Height)
		case F32:
			downsampleAARowF32(dest.PixF[x:], dest.RowStride,
				src.PixF[x:], src.RowStride, src.Height)
		}
	}
}

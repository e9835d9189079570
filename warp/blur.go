package warp

import (
	"math/rand"
	"runtime"
	"sync"

	"github.com/deepteams/nexus"
	"github.com/deepteams/nexus/internal/filter"
	"github.com/deepteams/nexus/internal/pool"
)

// parallelChunks splits [0, n) into contiguous chunks and runs fn on each
// from its own goroutine. Fan-out is bounded by the available hardware
// parallelism; every invocation writes a disjoint range, so no locking is
// needed beyond the final join.
func parallelChunks(n int, fn func(lo, hi int)) {
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

// blurInPlace applies a separable Gaussian to the grayscale u8 image,
// rows and then columns, each pass parallel over its lines with one
// scratch buffer per worker.
func blurInPlace(img *nexus.Image, sigmaX, sigmaY float32) {
	nkx := filter.GaussianKernelSize(sigmaX, filter.KernelLoss)
	nky := filter.GaussianKernelSize(sigmaY, filter.KernelLoss)
	nkMax := max(nkx, nky)
	if nkMax <= 1 {
		return
	}
	bufLen := filter.BufferSize(max(img.Width, img.Height), nkMax/2)
	kernel := make([]float32, nkMax/2+1)

	if nkx > 1 {
		krx := nkx / 2
		filter.GaussianSymKernel(kernel, krx+1, sigmaX)
		parallelChunks(img.Height, func(lo, hi int) {
			buf := pool.Get(bufLen)
			defer pool.Put(buf)
			for y := lo; y < hi; y++ {
				row := img.Pix[y*img.RowStride:]
				filter.CopyToBufferU8(buf, row, img.Width, 1, krx, filter.BorderMirror)
				filter.ConvolveSym(buf, img.Width, krx+1, kernel)
				for x := 0; x < img.Width; x++ {
					row[x] = clampU8(buf[x])
				}
			}
		})
	}

	if nky > 1 {
		kry := nky / 2
		kernelY := make([]float32, kry+1)
		filter.GaussianSymKernel(kernelY, kry+1, sigmaY)
		parallelChunks(img.Width, func(lo, hi int) {
			buf := pool.Get(bufLen)
			defer pool.Put(buf)
			for x := lo; x < hi; x++ {
				col := img.Pix[x:]
				filter.CopyToBufferU8(buf, col, img.Height, img.RowStride, kry, filter.BorderMirror)
				filter.ConvolveSym(buf, img.Height, kry+1, kernelY)
				for y := 0; y < img.Height; y++ {
					col[y*img.RowStride] = clampU8(buf[y])
				}
			}
		})
	}
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

// warpBufferAffineBilinear fills the interior of out by sampling in
// through the result-to-source stage transform t with bilinear
// interpolation. Pixels mapping outside the source are left untouched for
// the background pass. Rows are processed in parallel.
func warpBufferAffineBilinear(in, out *nexus.Image, t *[6]float32) {
	lastX := in.Width - 1
	lastY := in.Height - 1
	inPix := in.Pix
	inStride := in.RowStride

	parallelChunks(out.Height, func(lo, hi int) {
		for y := lo; y < hi; y++ {
			drow := out.Pix[y*out.RowStride:]

			xp := float32(y)*t[2] + t[4]
			yp := float32(y)*t[3] + t[5]
			for x := 0; x < out.Width; x, xp, yp = x+1, xp+t[0], yp+t[1] {
				xpi := int(xp)
				ypi := int(yp)

				if xp < 0 || xpi >= lastX || yp < 0 || ypi >= lastY {
					continue
				}

				p0 := inPix[ypi*inStride+xpi:]
				p1 := inPix[(ypi+1)*inStride+xpi:]

				u := xp - float32(xpi)
				v := yp - float32(ypi)
				up := 1 - u
				vp := 1 - v

				val := vp*(up*float32(p0[0])+u*float32(p0[1])) +
					v*(up*float32(p1[0])+u*float32(p1[1]))
				drow[x] = clampU8(val)
			}
		}
	})
}

// fillWarpBufferBg fills the margin of the warped buffer: every pixel
// whose bilinear support box leaves the source interior is replaced per
// the background mode, using the accumulated inverse transform to map
// result coordinates back onto the source.
func fillWarpBufferBg(image, buffer *nexus.Image, t *Transform, mode BgMode, bgColor uint8) {
	lastX := image.Width - 1
	lastY := image.Height - 1

	t0 := float32(t[0])
	t1 := float32(t[1])
	t2 := float32(t[2])
	t3 := float32(t[3])
	t4 := float32(t[4])
	t5 := float32(t[5])

	for y := 0; y < buffer.Height; y++ {
		drow := buffer.Pix[y*buffer.RowStride:]

		xp := float32(y)*t2 + t4
		yp := float32(y)*t3 + t5
		for x := 0; x < buffer.Width; x, xp, yp = x+1, xp+t0, yp+t1 {
			xpi := int(xp)
			ypi := int(yp)

			u := xp - float32(xpi)
			v := yp - float32(ypi)
			up := 1 - u
			vp := 1 - v

			idx0, idx1 := xpi, xpi+1
			idy0, idy1 := ypi, ypi+1
			clamped := false

			switch mode {
			case BgFixed:
				if idx0 <= 0 || idx1 >= lastX || idy0 <= 0 || idy1 >= lastY {
					drow[x] = bgColor
				}
				continue
			case BgNoise:
				if idx0 <= 0 || idx1 >= lastX || idy0 <= 0 || idy1 >= lastY {
					drow[x] = uint8(rand.Intn(256))
				}
				continue
			case BgRepeat:
				if idx0 <= 0 {
					idx0, idx1 = 0, 0
					clamped = true
				} else if idx1 >= lastX {
					idx0, idx1 = lastX, lastX
					clamped = true
				}
				if idy0 <= 0 {
					idy0, idy1 = 0, 0
					clamped = true
				} else if idy1 >= lastY {
					idy0, idy1 = lastY, lastY
					clamped = true
				}
			}

			if clamped {
				p0 := image.Pix[idy0*image.RowStride:]
				p1 := image.Pix[idy1*image.RowStride:]
				val := vp*(up*float32(p0[idx0])+u*float32(p0[idx1])) +
					v*(up*float32(p1[idx0])+u*float32(p1[idx1]))
				drow[x] = clampU8(val)
			}
		}
	}
}

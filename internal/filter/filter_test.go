package filter

import (
	"math"
	"testing"
)

func TestGaussianKernelSize(t *testing.T) {
	if got := GaussianKernelSize(0, KernelLoss); got != 1 {
		t.Errorf("sigma 0: size = %d, want 1", got)
	}
	if got := GaussianKernelSize(-1, KernelLoss); got != 1 {
		t.Errorf("negative sigma: size = %d, want 1", got)
	}

	// Kernel sizes are odd and grow with sigma.
	prev := 1
	for _, sigma := range []float32{0.5, 1, 2, 4} {
		n := GaussianKernelSize(sigma, KernelLoss)
		if n%2 != 1 {
			t.Errorf("sigma %g: size %d is even", sigma, n)
		}
		if n < prev {
			t.Errorf("sigma %g: size %d below previous %d", sigma, n, prev)
		}
		prev = n
	}

	// The covered mass must reach 1 - loss: tail at the chosen
	// half-width is within the loss budget.
	sigma := float32(1.6)
	n := GaussianKernelSize(sigma, KernelLoss)
	k := n / 2
	tail := math.Erfc((float64(k) + 0.5) / (float64(sigma) * math.Sqrt2))
	if tail > KernelLoss {
		t.Errorf("tail mass %g exceeds loss %g", tail, KernelLoss)
	}
}

func TestGaussianSymKernelNormalised(t *testing.T) {
	for _, sigma := range []float32{0.8, 1.2, 3.0} {
		n := GaussianKernelSize(sigma, KernelLoss)/2 + 1
		kernel := make([]float32, n)
		GaussianSymKernel(kernel, n, sigma)

		sum := float64(kernel[0])
		for i := 1; i < n; i++ {
			sum += 2 * float64(kernel[i])
			if kernel[i] >= kernel[i-1] {
				t.Errorf("sigma %g: taps not decreasing at %d", sigma, i)
			}
		}
		if math.Abs(sum-1) > 1e-6 {
			t.Errorf("sigma %g: kernel sums to %g", sigma, sum)
		}
	}
}

func TestGaussianSymKernelIdentity(t *testing.T) {
	kernel := make([]float32, 1)
	GaussianSymKernel(kernel, 1, 0)
	if kernel[0] != 1 {
		t.Errorf("identity kernel = %g, want 1", kernel[0])
	}
}

func TestConvolveSymIdentity(t *testing.T) {
	data := []uint8{10, 20, 30, 40, 50}
	buf := make([]float32, BufferSize(len(data), 0))
	CopyToBufferU8(buf, data, len(data), 1, 0, BorderMirror)
	ConvolveSym(buf, len(data), 1, []float32{1})
	for i, want := range data {
		if buf[i] != float32(want) {
			t.Errorf("buf[%d] = %g, want %d", i, buf[i], want)
		}
	}
}

func TestConvolveSymBox(t *testing.T) {
	// Symmetric 3-tap box [1/3 1/3 1/3] over a constant signal keeps
	// the constant, mirror borders included.
	data := []float32{5, 5, 5, 5}
	kr := 1
	buf := make([]float32, BufferSize(len(data), kr))
	CopyToBufferF32(buf, data, len(data), 1, kr, BorderMirror)
	third := float32(1.0 / 3.0)
	ConvolveSym(buf, len(data), 2, []float32{third, third})
	for i := range data {
		if math.Abs(float64(buf[i]-5)) > 1e-5 {
			t.Errorf("buf[%d] = %g, want 5", i, buf[i])
		}
	}
}

func TestCopyToBufferMirror(t *testing.T) {
	data := []uint8{1, 2, 3, 4}
	kr := 2
	buf := make([]float32, BufferSize(len(data), kr))
	CopyToBufferU8(buf, data, len(data), 1, kr, BorderMirror)

	// Mirror reflection around the edge samples: [3 2 | 1 2 3 4 | 3 2].
	want := []float32{3, 2, 1, 2, 3, 4, 3, 2}
	for i, w := range want {
		if buf[i] != w {
			t.Errorf("buf[%d] = %g, want %g", i, buf[i], w)
		}
	}
}

func TestCopyToBufferStride(t *testing.T) {
	// Column access via stride.
	data := []float32{1, 0, 2, 0, 3, 0}
	buf := make([]float32, BufferSize(3, 0))
	CopyToBufferF32(buf, data, 3, 2, 0, BorderRepeat)
	for i, w := range []float32{1, 2, 3} {
		if buf[i] != w {
			t.Errorf("buf[%d] = %g, want %g", i, buf[i], w)
		}
	}
}

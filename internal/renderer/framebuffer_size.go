package renderer

import "math/bits"

// FrameBufferSize picks the offscreen target size for a surface of
// width x height. The rules apply in order:
//
//  1. Without NPOT support each dimension becomes the largest power of two not
//     above it, halved again when the dimension already was a power of two.
//  2. With NPOT support the surface size is used as is.
//  3. Without non-square support both dimensions become the larger one.
//  4. Smaller-textures mode halves both.
//
// The result is never below 1x1.
func FrameBufferSize(cfg Config, width, height int) (int, int) {
	if !cfg.UseNonPowerOfTwoTextures {
		width = shrinkToPowerOfTwo(width)
		height = shrinkToPowerOfTwo(height)
	}
	if !cfg.UseNonSquareTextures {
		if width > height {
			height = width
		} else {
			width = height
		}
	}
	if cfg.UseSmallerTextures {
		width /= 2
		height /= 2
	}
	return clampSize(width), clampSize(height)
}

func shrinkToPowerOfTwo(n int) int {
	if n < 1 {
		return 1
	}
	p := largestPowerOfTwo(n)
	if p == n {
		p /= 2
	}
	return p
}

// largestPowerOfTwo returns the largest power of two <= n, for n >= 1.
func largestPowerOfTwo(n int) int {
	return 1 << (bits.Len(uint(n)) - 1)
}

// nextPowerOfTwo returns the smallest power of two >= n, for n >= 1.
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

func clampSize(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

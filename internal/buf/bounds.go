package buf

import (
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n int) bool {
	_, ok := Slice(b, off, n)
	return ok
}

// Clamp returns the sub-slice [off:off+n] cut down to whatever part of it
// lies inside b. The returned start is the absolute offset of the first byte.
func Clamp(b []byte, off, n int) ([]byte, int) {
	if n <= 0 {
		return nil, 0
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok {
		end = math.MaxInt
	}
	if off < 0 {
		off = 0
	}
	if end > len(b) {
		end = len(b)
	}
	if off >= end {
		return nil, 0
	}
	return b[off:end], off
}

// AlignDown rounds off down to the nearest multiple of stride.
// Negative offsets round toward negative infinity.
func AlignDown(off, stride int) int {
	if stride <= 1 {
		return off
	}
	r := off % stride
	if r < 0 {
		r += stride
	}
	return off - r
}

// Window enumerates the stride-aligned offsets in [center-radius, center+radius)
// for which width bytes are readable from a buffer of length size. fn returning
// false stops the walk.
//
// Offsets are aligned to absolute multiples of stride so that the same field is
// visited no matter which seed offset the window was centred on.
func Window(size, center, radius, stride, width int, fn func(off int) bool) {
	if stride <= 0 {
		stride = 1
	}
	start := AlignDown(center-radius, stride)
	end := center + radius
	for off := start; off < end; off += stride {
		if off < 0 {
			continue
		}
		if off+width > size {
			return
		}
		if !fn(off) {
			return
		}
	}
}

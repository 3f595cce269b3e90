//go:build !goexperiment.simd || !amd64

// Portable fallback for accumulator updates. Used on any platform without
// GOEXPERIMENT=simd on AMD64, including ARM64, since no hand-written NEON
// kernel is carried here (see DESIGN.md).

package nnue

// accAdd adds src into dst in place: dst[i] += src[i].
func accAdd(dst, src []int16) {
	for i := range dst {
		dst[i] += src[i]
	}
}

// accSub subtracts src from dst in place: dst[i] -= src[i].
func accSub(dst, src []int16) {
	for i := range dst {
		dst[i] -= src[i]
	}
}

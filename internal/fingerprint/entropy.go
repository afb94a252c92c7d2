package fingerprint

import "math"

// MinCanvasDimension is the size both canvas sides must exceed before
// canvas operations count as fingerprinting signals.
const MinCanvasDimension = 16

// EntropyThreshold is the normalized entropy above which a canvas sample
// corroborates fingerprinting.
const EntropyThreshold = 0.5

// CanvasSample describes the canvas involved in a canvas signal.
type CanvasSample struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Pixels is an optional RGBA sample of the canvas content.
	Pixels []byte `json:"pixels,omitempty"`
}

// Eligible reports whether the canvas is large enough to count.
func (c CanvasSample) Eligible() bool {
	return c.Width > MinCanvasDimension && c.Height > MinCanvasDimension
}

// Entropy estimates how varied an RGBA pixel sample is.
// It computes the Shannon entropy of the RGB triple frequencies and
// normalizes it by log2 of the pixel count, giving a value in [0, 1].
// Samples with fewer than two pixels have zero entropy.
func Entropy(rgba []byte) float64 {
	total := len(rgba) / 4
	if total < 2 {
		return 0
	}

	freq := make(map[[3]byte]int)
	for i := 0; i+3 < len(rgba); i += 4 {
		freq[[3]byte{rgba[i], rgba[i+1], rgba[i+2]}]++
	}

	var h float64
	for _, n := range freq {
		p := float64(n) / float64(total)
		h -= p * math.Log2(p)
	}
	return min(h/math.Log2(float64(total)), 1.0)
}

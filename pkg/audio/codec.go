// Package audio provides the codec operations for the telephony bridge:
// G.711 µ-law expansion and naive 8 kHz → 16 kHz upsampling.
//
// Both operations run on every inbound media frame (~50 Hz per call), so they
// are stateless and allocation-light: one output slice per call, no
// intermediate buffers.
package audio

import "encoding/binary"

// decodeTable maps each µ-law byte to its linear PCM16 sample.
var decodeTable [256]int16

func init() {
	for i := 0; i < 256; i++ {
		u := ^uint8(i)
		sign := u & 0x80
		exponent := (u >> 4) & 0x07
		mantissa := u & 0x0F
		sample := int16((int32(mantissa)<<3+0x84)<<exponent - 0x84)
		if sign != 0 {
			sample = -sample
		}
		decodeTable[i] = sample
	}
}

// DecodeMuLaw expands µ-law bytes to little-endian PCM16.
// The output is exactly twice the input length.
func DecodeMuLaw(mulaw []byte) []byte {
	pcm := make([]byte, len(mulaw)*2)
	for i, b := range mulaw {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(decodeTable[b]))
	}
	return pcm
}

// Upsample8kTo16k doubles the sample rate of little-endian PCM16 audio by
// emitting each sample twice. No anti-imaging filter is applied; the output
// feeds a speech model, not a hi-fi path, and sample duplication keeps
// latency at zero.
func Upsample8kTo16k(pcm []byte) []byte {
	n := len(pcm) / 2
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		lo, hi := pcm[i*2], pcm[i*2+1]
		out[i*4] = lo
		out[i*4+1] = hi
		out[i*4+2] = lo
		out[i*4+3] = hi
	}
	return out
}

// Samples converts little-endian PCM16 bytes to int16 samples.
func Samples(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return samples
}

// Bytes converts int16 samples to little-endian PCM16 bytes.
func Bytes(samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	return data
}

// MeanAbs returns the mean absolute sample value of little-endian PCM16
// audio. It is the energy estimate used by the turn-taking detector.
func MeanAbs(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		if s < 0 {
			sum -= float64(s)
		} else {
			sum += float64(s)
		}
	}
	return sum / float64(n)
}

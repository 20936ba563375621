package audio

import (
	"encoding/binary"
	"testing"
)

func TestDecodeMuLawKnownValues(t *testing.T) {
	tests := []struct {
		name string
		in   byte
		want int16
	}{
		{"positive silence", 0xFF, 0},
		{"negative silence", 0x7F, 0},
		{"negative full scale", 0x00, -32124},
		{"positive full scale", 0x80, 32124},
		{"negative step", 0x01, -31100},
		{"positive step", 0x81, 31100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pcm := DecodeMuLaw([]byte{tt.in})
			if len(pcm) != 2 {
				t.Fatalf("expected 2 output bytes, got %d", len(pcm))
			}
			got := int16(binary.LittleEndian.Uint16(pcm))
			if got != tt.want {
				t.Errorf("DecodeMuLaw(0x%02X) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeMuLawLength(t *testing.T) {
	for _, n := range []int{0, 1, 160, 320} {
		in := make([]byte, n)
		out := DecodeMuLaw(in)
		if len(out) != n*2 {
			t.Errorf("input %d bytes: expected %d output bytes, got %d", n, n*2, len(out))
		}
	}
}

func TestDecodeMuLawSignSymmetry(t *testing.T) {
	// Codes differing only in the sign bit decode to negated samples.
	for code := 0; code < 128; code++ {
		neg := int16(binary.LittleEndian.Uint16(DecodeMuLaw([]byte{byte(code)})))
		pos := int16(binary.LittleEndian.Uint16(DecodeMuLaw([]byte{byte(code | 0x80)})))
		if pos != -neg {
			t.Fatalf("code 0x%02X: positive %d is not the negation of %d", code, pos, neg)
		}
	}
}

func TestUpsample8kTo16k(t *testing.T) {
	in := Bytes([]int16{100, -200, 300})
	out := Upsample8kTo16k(in)

	if len(out) != len(in)*2 {
		t.Fatalf("expected %d bytes, got %d", len(in)*2, len(out))
	}

	want := []int16{100, 100, -200, -200, 300, 300}
	got := Samples(out)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestIngressExpansionRatio(t *testing.T) {
	// A forwarded telephony frame expands 4x: one µ-law byte becomes two PCM
	// bytes at 8 kHz and four at 16 kHz.
	mulaw := make([]byte, 160) // 20ms frame
	for i := range mulaw {
		mulaw[i] = byte(i)
	}

	out := Upsample8kTo16k(DecodeMuLaw(mulaw))
	if len(out) != 4*len(mulaw) {
		t.Errorf("expected %d bytes after decode+upsample, got %d", 4*len(mulaw), len(out))
	}
}

func TestSamplesBytesRoundTrip(t *testing.T) {
	in := []int16{0, 1, -1, 32767, -32768, 12345}
	got := Samples(Bytes(in))
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("sample %d: got %d, want %d", i, got[i], in[i])
		}
	}
}

func TestMeanAbs(t *testing.T) {
	tests := []struct {
		name    string
		samples []int16
		want    float64
	}{
		{"empty", nil, 0},
		{"silence", []int16{0, 0, 0, 0}, 0},
		{"constant", []int16{600, 600}, 600},
		{"mixed signs", []int16{-400, 400, -800, 800}, 600},
		{"full scale negative", []int16{-32768}, 32768},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MeanAbs(Bytes(tt.samples))
			if got != tt.want {
				t.Errorf("MeanAbs = %f, want %f", got, tt.want)
			}
		})
	}
}

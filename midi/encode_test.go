package midi

import (
	"bytes"
	"math"
	"testing"

	"jp8080ctl/params"
)

func TestEncodeCC(t *testing.T) {
	tests := []struct {
		name            string
		cc, val, ch     int
		want            []byte
		wantCh, wantVal uint8
	}{
		{"plain", 74, 100, 1, []byte{0xB0, 74, 100}, 1, 100},
		{"channel 16", 7, 0, 16, []byte{0xBF, 7, 0}, 16, 0},
		{"value clamped high", 74, 300, 3, []byte{0xB2, 74, 127}, 3, 127},
		{"value clamped low", 74, -5, 3, []byte{0xB2, 74, 0}, 3, 0},
		{"channel clamped low", 1, 64, 0, []byte{0xB0, 1, 64}, 1, 64},
		{"channel clamped high", 1, 64, 99, []byte{0xBF, 1, 64}, 16, 64},
		{"cc clamped", 200, 1, 1, []byte{0xB0, 127, 1}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := EncodeCC(tt.cc, tt.val, tt.ch)
			if e.Kind != KindControlChange {
				t.Fatalf("kind = %v", e.Kind)
			}
			if e.Channel != tt.wantCh || e.Value != tt.wantVal {
				t.Errorf("got ch=%d val=%d, want ch=%d val=%d", e.Channel, e.Value, tt.wantCh, tt.wantVal)
			}
			if got := e.Bytes(); !bytes.Equal(got, tt.want) {
				t.Errorf("Bytes() = % X, want % X", got, tt.want)
			}
			if got := e.Message().Bytes(); !bytes.Equal(got, tt.want) {
				t.Errorf("Message() = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestCCWireValueMonotonic(t *testing.T) {
	prev := -1
	for i := 0; i <= 1000; i++ {
		v := float64(i) / 1000
		wire := int(math.Round(v * 127))
		e := EncodeCC(74, wire, 1)
		if int(e.Value) < prev {
			t.Fatalf("wire value decreased at v=%.3f: %d < %d", v, e.Value, prev)
		}
		if e.Value > 127 {
			t.Fatalf("wire value %d out of range", e.Value)
		}
		prev = int(e.Value)
	}
	if prev != 127 {
		t.Errorf("v=1.0 encoded as %d", prev)
	}
}

func TestSequenceBankProgram(t *testing.T) {
	got := SequenceBankProgram(params.Preset2B, 5, 3)
	want := []string{
		"CC(ch=3,cc=0,val=81)",
		"CC(ch=3,cc=32,val=1)",
		"ProgramChange(ch=3, program=68)",
	}
	for i, e := range got {
		if e.String() != want[i] {
			t.Errorf("event %d = %s, want %s", i, e, want[i])
		}
	}

	wire := append(append(got[0].Bytes(), got[1].Bytes()...), got[2].Bytes()...)
	wantWire := []byte{0xB2, 0x00, 81, 0xB2, 0x20, 1, 0xC2, 68}
	if !bytes.Equal(wire, wantWire) {
		t.Errorf("wire = % X, want % X", wire, wantWire)
	}
}

func TestProgramNumber(t *testing.T) {
	tests := []struct {
		bank    params.Bank
		program int
		want    int
	}{
		{params.UserA, 1, 0},
		{params.UserA, 64, 63},
		{params.UserB, 1, 64},
		{params.UserB, 64, 127},
		{params.Preset3B, 100, 127},
		{params.Preset1A, 0, 0},
	}
	for _, tt := range tests {
		if got := ProgramNumber(tt.bank, tt.program); got != tt.want {
			t.Errorf("ProgramNumber(%v, %d) = %d, want %d", tt.bank, tt.program, got, tt.want)
		}
	}
}

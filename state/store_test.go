package state

import (
	"math"
	"sync"
	"testing"

	"jp8080ctl/params"
)

func TestDefaults(t *testing.T) {
	s := NewStore()

	if got := s.Get(params.FilterCutoff); got != 0.5 {
		t.Errorf("cutoff default = %v", got)
	}
	for _, id := range []params.ID{params.Hold1, params.PortamentoSwitch, params.Modulation, params.Osc1Waveform} {
		if got := s.Get(id); got != 0 {
			t.Errorf("%s default = %v, want 0", id, got)
		}
	}
	if bank, program := s.Patch(); bank != params.UserA || program != 1 {
		t.Errorf("patch = %v/%d", bank, program)
	}
	if s.Channel() != 1 {
		t.Errorf("channel = %d", s.Channel())
	}
}

func TestSetClamps(t *testing.T) {
	s := NewStore()
	tests := []struct {
		id   params.ID
		in   float64
		want float64
	}{
		{params.FilterCutoff, 1.5, 1},
		{params.FilterCutoff, -0.2, 0},
		{params.FilterCutoff, 0.25, 0.25},
		{params.FilterCutoff, math.NaN(), 0},
		{params.Osc1Waveform, 9, 6},
		{params.Osc1Waveform, 2.4, 2},
		{params.LFO1Waveform, -1, 0},
	}
	for _, tt := range tests {
		got, err := s.Set(tt.id, tt.in)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want || s.Get(tt.id) != tt.want {
			t.Errorf("Set(%s, %v) stored %v, want %v", tt.id, tt.in, s.Get(tt.id), tt.want)
		}
	}

	if _, err := s.Set(params.ID(params.Count), 1); err == nil {
		t.Error("out of range id accepted")
	}
	if _, err := s.SetByKey("no_such_param", 1); err == nil {
		t.Error("unknown key accepted")
	}
	if _, err := s.SetByKey("filter_resonance", 0.75); err != nil {
		t.Error(err)
	}
	if v, _ := s.GetByKey("filter_resonance"); v != 0.75 {
		t.Errorf("filter_resonance = %v", v)
	}
}

func TestNudge(t *testing.T) {
	s := NewStore()

	s.Nudge(params.FilterCutoff, 0.75)
	if got := s.Get(params.FilterCutoff); got != 1 {
		t.Errorf("cutoff = %v, want 1", got)
	}

	s.Nudge(params.Osc2Waveform, -1)
	if got := s.Get(params.Osc2Waveform); got != 3 {
		t.Errorf("osc2 waveform wrapped to %v, want 3", got)
	}
	s.Nudge(params.Osc2Waveform, 1)
	if got := s.Get(params.Osc2Waveform); got != 0 {
		t.Errorf("osc2 waveform wrapped to %v, want 0", got)
	}
}

func TestChannelAndPatchClamp(t *testing.T) {
	s := NewStore()
	if got := s.SetChannel(0); got != 1 {
		t.Errorf("SetChannel(0) = %d", got)
	}
	if got := s.SetChannel(17); got != 16 {
		t.Errorf("SetChannel(17) = %d", got)
	}

	s.SetPatch(params.Bank(99), 100)
	if bank, program := s.Patch(); bank != params.UserA || program != 64 {
		t.Errorf("patch = %v/%d", bank, program)
	}
}

func TestVersionTracksChanges(t *testing.T) {
	s := NewStore()
	v := s.Version()

	s.Set(params.FilterCutoff, 0.5)
	if s.Version() != v {
		t.Error("version bumped without a change")
	}
	s.Set(params.FilterCutoff, 0.6)
	if s.Version() == v {
		t.Error("version not bumped")
	}
}

func TestCopyInto(t *testing.T) {
	s := NewStore()
	s.Set(params.DelayLevel, 0.9)
	s.SetPatch(params.Preset1B, 12)
	s.SetChannel(5)
	s.SetDevice("JP-8080 MIDI 1")

	var f Frame
	s.CopyInto(&f)
	s.Set(params.DelayLevel, 0.1)

	if f.Value(params.DelayLevel) != 0.9 {
		t.Errorf("frame shares storage with store")
	}
	if bank, program := f.Patch(); bank != params.Preset1B || program != 12 {
		t.Errorf("frame patch = %v/%d", bank, program)
	}
	if f.Channel() != 5 || f.Device() != "JP-8080 MIDI 1" {
		t.Errorf("frame target = %d %q", f.Channel(), f.Device())
	}
	if f.Value(params.ID(-1)) != 0 {
		t.Error("out of range id should read 0")
	}

	allocs := testing.AllocsPerRun(100, func() { s.CopyInto(&f) })
	if allocs != 0 {
		t.Errorf("CopyInto allocated %.0f times", allocs)
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			var f Frame
			for i := 0; i < 200; i++ {
				s.Set(params.ID(i%params.Count), float64(w)/4)
				s.CopyInto(&f)
			}
		}(w)
	}
	wg.Wait()
}

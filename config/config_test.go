package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"jp8080ctl/midi"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.Channel != 1 || cfg.Part() != midi.PartUpper || cfg.Cycle() != 10*time.Millisecond {
		t.Errorf("defaults = %+v", cfg)
	}
	if !cfg.Engine.AsyncSysEx {
		t.Error("async sysex should default on")
	}
}

func TestSaveLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Output.PortName = "JP-8080 MIDI 1"
	cfg.Output.Channel = 7
	cfg.Output.Part = "lower"
	cfg.Engine.AsyncSysEx = false
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}

	got, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.Output != cfg.Output || got.Engine != cfg.Engine {
		t.Errorf("loaded %+v, want %+v", got, cfg)
	}
	if got.Part() != midi.PartLower {
		t.Errorf("part = %v", got.Part())
	}
}

func TestLoadKeepsDefaultsForMissingFields(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".config", "jp8080ctl")
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"output":{"portName":"x","channel":40,"part":"middle"}}`), 0644)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.Channel != 16 || cfg.Output.Part != "upper" {
		t.Errorf("output not validated: %+v", cfg.Output)
	}
	if cfg.Engine.CycleMs != 10 || cfg.Engine.SysExQueue != 64 {
		t.Errorf("engine defaults lost: %+v", cfg.Engine)
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".config", "jp8080ctl")
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"output":`), 0644)

	if _, err := Load(); err == nil {
		t.Error("expected parse error")
	}
}

package state

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jp8080ctl/params"
)

func TestBlobRoundTrip(t *testing.T) {
	src := NewStore()
	src.Set(params.FilterCutoff, 0.25)
	src.Set(params.Osc1Waveform, 3)
	src.SetPatch(params.Preset3A, 40)
	src.SetChannel(9)
	src.SetName("bass")

	data, err := src.MarshalBlob()
	if err != nil {
		t.Fatal(err)
	}

	dst := NewStore()
	dst.SetDevice("keep me")
	if err := dst.UnmarshalBlob(data); err != nil {
		t.Fatal(err)
	}

	var a, b Frame
	src.CopyInto(&a)
	dst.CopyInto(&b)
	if a.values != b.values {
		t.Error("values differ after round trip")
	}
	if bank, program := dst.Patch(); bank != params.Preset3A || program != 40 {
		t.Errorf("patch = %v/%d", bank, program)
	}
	if dst.Channel() != 9 || dst.Name() != "bass" || dst.Device() != "keep me" {
		t.Errorf("channel=%d name=%q device=%q", dst.Channel(), dst.Name(), dst.Device())
	}
}

func TestBlobMissingAndUnknownKeys(t *testing.T) {
	s := NewStore()
	s.Set(params.AmpLevel, 1)

	data := []byte(`{"channel":2,"bank":"UserB","program":3,"values":{"filter_cutoff":0.1,"warp_drive":0.9,"lfo1_waveform":7}}`)
	if err := s.UnmarshalBlob(data); err != nil {
		t.Fatal(err)
	}
	if got := s.Get(params.FilterCutoff); got != 0.1 {
		t.Errorf("cutoff = %v", got)
	}
	if got := s.Get(params.AmpLevel); got != 0.5 {
		t.Errorf("missing amp_level = %v, want default", got)
	}
	if got := s.Get(params.LFO1Waveform); got != 3 {
		t.Errorf("lfo1_waveform = %v, want clamped 3", got)
	}
}

func TestBlobSchemaRejects(t *testing.T) {
	tests := map[string]string{
		"not json":      `{"channel":`,
		"missing bank":  `{"channel":1,"program":1,"values":{}}`,
		"bad bank":      `{"channel":1,"bank":"Preset4A","program":1,"values":{}}`,
		"channel range": `{"channel":17,"bank":"UserA","program":1,"values":{}}`,
		"program range": `{"channel":1,"bank":"UserA","program":65,"values":{}}`,
		"string value":  `{"channel":1,"bank":"UserA","program":1,"values":{"pan":"left"}}`,
	}
	for name, data := range tests {
		s := NewStore()
		s.Set(params.Pan, 0.8)
		if err := s.UnmarshalBlob([]byte(data)); err == nil {
			t.Errorf("%s: accepted", name)
		}
		if s.Get(params.Pan) != 0.8 {
			t.Errorf("%s: store modified by rejected blob", name)
		}
	}
}

func TestSaveLoadPatch(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, err := LoadPatch(NewStore(), ""); err == nil {
		t.Error("loading with no saves should fail")
	}

	s := NewStore()
	s.Set(params.DelayFeedback, 0.3)
	filename, err := SavePatch(s, "warm pad")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(filename, "_warm-pad.json") {
		t.Errorf("filename = %q", filename)
	}

	list, err := ListPatches()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Name != "warm-pad" {
		t.Fatalf("ListPatches = %+v", list)
	}

	loaded := NewStore()
	got, err := LoadPatch(loaded, "")
	if err != nil {
		t.Fatal(err)
	}
	if got != filename || loaded.Get(params.DelayFeedback) != 0.3 || loaded.Name() != "warm pad" {
		t.Errorf("loaded %q feedback=%v name=%q", got, loaded.Get(params.DelayFeedback), loaded.Name())
	}
}

func TestSavePatchGeneratesName(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	s := NewStore()
	filename, err := SavePatch(s, "")
	if err != nil {
		t.Fatal(err)
	}
	if s.Name() == "" || len(s.Name()) > 8 {
		t.Errorf("generated name %q", s.Name())
	}
	info, ok := parsePatchFilename(filename)
	if !ok || info.Name == "" {
		t.Errorf("filename %q has no name part", filename)
	}
}

func TestSavePatchFailureKeepsName(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	// a file where the patches directory should be
	os.MkdirAll(filepath.Join(home, ".config", "jp8080ctl"), 0755)
	os.WriteFile(filepath.Join(home, ".config", "jp8080ctl", "patches"), nil, 0644)

	s := NewStore()
	s.SetName("keep")
	if _, err := SavePatch(s, "other"); err == nil {
		t.Fatal("save into a file path succeeded")
	}
	if s.Name() != "keep" {
		t.Errorf("name changed to %q by a failed save", s.Name())
	}
}

func TestRenameAndDeletePatch(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	filename, err := SavePatch(NewStore(), "first")
	if err != nil {
		t.Fatal(err)
	}
	renamed, err := RenamePatch(filename, "lead/2")
	if err != nil {
		t.Fatal(err)
	}
	if renamed[:19] != filename[:19] || !strings.HasSuffix(renamed, "_lead-2.json") {
		t.Errorf("renamed %q -> %q", filename, renamed)
	}

	s := NewStore()
	if _, err := LoadPatch(s, renamed); err != nil {
		t.Fatal(err)
	}
	if s.Name() != "lead/2" {
		t.Errorf("loaded name %q after rename", s.Name())
	}
	if list, _ := ListPatches(); len(list) != 1 {
		t.Errorf("rename left %d files", len(list))
	}

	if _, err := RenamePatch("notes.txt", "x"); err == nil {
		t.Error("renaming a non-patch file should fail")
	}

	if err := DeletePatch(renamed); err != nil {
		t.Fatal(err)
	}
	list, _ := ListPatches()
	if len(list) != 0 {
		t.Errorf("patches left: %+v", list)
	}
}

func TestListPatchesSkipsForeignFiles(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir, _ := PatchesDir()
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, "readme.json"), []byte("{}"), 0644)
	os.WriteFile(filepath.Join(dir, "2024-01-15_14-30-00.txt"), nil, 0644)
	os.WriteFile(filepath.Join(dir, "2024-01-15_14-30-00.json"), nil, 0644)
	os.WriteFile(filepath.Join(dir, "2024-02-01_09-00-00_lead.json"), nil, 0644)

	list, err := ListPatches()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name != "lead" || list[1].Name != "" {
		t.Errorf("ListPatches = %+v", list)
	}
}

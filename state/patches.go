package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Pallinder/go-randomdata"
	"github.com/pkg/errors"
)

const timestampLayout = "2006-01-02_15-04-05"

// PatchInfo describes a saved patch file (for listing)
type PatchInfo struct {
	Filename  string
	Name      string // parsed from filename (empty if unnamed)
	Timestamp time.Time
}

// PatchesDir returns the patches directory path
func PatchesDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "jp8080ctl", "patches"), nil
}

// ListPatches returns saved patches, newest first
func ListPatches() ([]PatchInfo, error) {
	dir, err := PatchesDir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []PatchInfo{}, nil
		}
		return nil, errors.Wrap(err, "list patches")
	}

	var patches []PatchInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, ok := parsePatchFilename(entry.Name())
		if !ok {
			continue
		}
		patches = append(patches, info)
	}

	sort.Slice(patches, func(i, j int) bool {
		if !patches[i].Timestamp.Equal(patches[j].Timestamp) {
			return patches[i].Timestamp.After(patches[j].Timestamp)
		}
		return patches[i].Filename > patches[j].Filename
	})

	return patches, nil
}

// parsePatchFilename splits 2024-01-15_14-30-00[_name].json
func parsePatchFilename(filename string) (PatchInfo, bool) {
	if !strings.HasSuffix(filename, ".json") {
		return PatchInfo{}, false
	}
	base := strings.TrimSuffix(filename, ".json")
	if len(base) < len(timestampLayout) {
		return PatchInfo{}, false
	}
	ts, err := time.ParseInLocation(timestampLayout, base[:len(timestampLayout)], time.Local)
	if err != nil {
		return PatchInfo{}, false
	}

	name := ""
	if rest := base[len(timestampLayout):]; len(rest) > 1 && rest[0] == '_' {
		name = rest[1:]
	}
	return PatchInfo{Filename: filename, Name: name, Timestamp: ts}, true
}

// SavePatch writes the store to a new timestamped file and returns its
// filename. With an empty name the store's name is used, and failing that
// a generated one.
func SavePatch(s *Store, name string) (string, error) {
	if name == "" {
		name = s.Name()
	}
	if name == "" {
		name = generatedName()
	}

	dir, err := PatchesDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "create patches dir")
	}

	b := s.ToBlob()
	b.Name = name
	filename := time.Now().Format(timestampLayout) + "_" + sanitizeFilename(name) + ".json"
	if err := writeBlob(filepath.Join(dir, filename), b); err != nil {
		return "", err
	}

	// the store takes the name only once it is on disk
	s.SetName(name)
	return filename, nil
}

func writeBlob(path string, b Blob) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode patch")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "write patch %s", filepath.Base(path))
	}
	return nil
}

// LoadPatch loads a saved patch into the store (most recent if filename is
// empty) and returns the filename loaded.
func LoadPatch(s *Store, filename string) (string, error) {
	dir, err := PatchesDir()
	if err != nil {
		return "", err
	}

	if filename == "" {
		patches, err := ListPatches()
		if err != nil {
			return "", err
		}
		if len(patches) == 0 {
			return "", errors.New("no saved patches")
		}
		filename = patches[0].Filename
	}

	data, err := os.ReadFile(filepath.Join(dir, filepath.Base(filename)))
	if err != nil {
		return "", errors.Wrapf(err, "read patch %s", filename)
	}
	if err := s.UnmarshalBlob(data); err != nil {
		return "", errors.Wrapf(err, "load patch %s", filename)
	}
	return filename, nil
}

// DeletePatch deletes a saved patch file
func DeletePatch(filename string) error {
	dir, err := PatchesDir()
	if err != nil {
		return err
	}
	return os.Remove(filepath.Join(dir, filepath.Base(filename)))
}

// RenamePatch changes the name part of a saved patch, keeping its
// timestamp, and returns the new filename.
func RenamePatch(oldFilename, newName string) (string, error) {
	dir, err := PatchesDir()
	if err != nil {
		return "", err
	}

	info, ok := parsePatchFilename(filepath.Base(oldFilename))
	if !ok {
		return "", errors.Errorf("invalid patch filename %q", oldFilename)
	}
	ts := info.Filename[:len(timestampLayout)]

	newFilename := ts + ".json"
	if newName != "" {
		newFilename = ts + "_" + sanitizeFilename(newName) + ".json"
	}

	oldPath := filepath.Join(dir, info.Filename)
	data, err := os.ReadFile(oldPath)
	if err != nil {
		return "", errors.Wrapf(err, "read patch %s", info.Filename)
	}
	if err := ValidateBlob(data); err != nil {
		return "", errors.Wrapf(err, "rename patch %s", info.Filename)
	}
	var b Blob
	if err := json.Unmarshal(data, &b); err != nil {
		return "", errors.Wrap(err, "decode patch")
	}
	b.Name = newName

	if err := writeBlob(filepath.Join(dir, newFilename), b); err != nil {
		return "", err
	}
	if newFilename != info.Filename {
		if err := os.Remove(oldPath); err != nil {
			return "", errors.Wrap(err, "remove old patch")
		}
	}
	return newFilename, nil
}

func generatedName() string {
	n := randomdata.Adjective()
	if len(n) > 8 {
		n = n[:8]
	}
	return n
}

// sanitizeFilename removes/replaces characters that are problematic in filenames
func sanitizeFilename(name string) string {
	r := strings.NewReplacer(
		" ", "-", "/", "-", "\\", "-", ":", "-",
		"*", "", "?", "", "\"", "", "<", "", ">", "", "|", "",
	)
	return r.Replace(name)
}

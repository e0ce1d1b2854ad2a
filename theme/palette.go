package theme

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

//go:embed palettes/jp8080.gpl
var defaultGPL string

type RGB [3]uint8

type Palette struct {
	Name   string
	Colors []RGB
}

// Default returns the built-in panel palette
func Default() *Palette {
	p, err := ParseGPL(strings.NewReader(defaultGPL), "jp8080")
	if err != nil {
		panic(fmt.Sprintf("built-in palette: %v", err))
	}
	return p
}

// Load returns the built-in palette for an empty path, otherwise the GIMP
// palette file at path.
func Load(path string) (*Palette, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadGPL(path)
}

func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open palette")
	}
	defer f.Close()

	return ParseGPL(f, strings.TrimSuffix(filepath.Base(path), ".gpl"))
}

// ParseGPL reads a GIMP palette. fallbackName is used when the file has no
// Name: header. Lines that are not three 0-255 components are ignored.
func ParseGPL(r io.Reader, fallbackName string) (*Palette, error) {
	p := &Palette{Name: fallbackName}
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if name, ok := strings.CutPrefix(line, "Name:"); ok {
			p.Name = strings.TrimSpace(name)
			continue
		}
		if c, ok := parseRGB(line); ok {
			p.Colors = append(p.Colors, c)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read palette")
	}
	if len(p.Colors) == 0 {
		return nil, errors.Errorf("no colors found in palette %s", p.Name)
	}
	return p, nil
}

// parseRGB reads "R G B [label]"
func parseRGB(line string) (RGB, bool) {
	if line == "" || line[0] == '#' {
		return RGB{}, false
	}
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return RGB{}, false
	}
	var c RGB
	for i := range c {
		n, err := strconv.ParseUint(fields[i], 10, 8)
		if err != nil {
			return RGB{}, false
		}
		c[i] = uint8(n)
	}
	return c, true
}

// Lookup maps a normalized value onto the palette, blending neighbours
func (p *Palette) Lookup(norm float64) RGB {
	last := len(p.Colors) - 1
	switch {
	case norm <= 0 || last == 0:
		return p.Colors[0]
	case norm >= 1:
		return p.Colors[last]
	}

	pos := norm * float64(last)
	i := int(pos)
	t := pos - float64(i)

	var out RGB
	for k := range out {
		a, b := float64(p.Colors[i][k]), float64(p.Colors[i+1][k])
		out[k] = uint8(a + (b-a)*t + 0.5)
	}
	return out
}

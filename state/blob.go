package state

import (
	_ "embed"
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"

	"jp8080ctl/params"
)

//go:embed patch.schema.json
var schemaData []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func patchSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaData))
	})
	return schema, schemaErr
}

// Blob is the saved form of a Store. Values are keyed by parameter key so
// saves survive catalog reordering.
type Blob struct {
	Name    string             `json:"name,omitempty"`
	Channel int                `json:"channel"`
	Bank    string             `json:"bank"`
	Program int                `json:"program"`
	Values  map[string]float64 `json:"values"`
}

// ToBlob captures the store's contents
func (s *Store) ToBlob() Blob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b := Blob{
		Name:    s.name,
		Channel: s.channel,
		Bank:    s.bank.Key(),
		Program: s.program,
		Values:  make(map[string]float64, params.Count),
	}
	for _, p := range params.All() {
		b.Values[p.Key] = s.values[p.ID]
	}
	return b
}

// MarshalBlob serializes the store
func (s *Store) MarshalBlob() ([]byte, error) {
	return json.MarshalIndent(s.ToBlob(), "", "  ")
}

// ValidateBlob checks data against the patch schema
func ValidateBlob(data []byte) error {
	sch, err := patchSchema()
	if err != nil {
		return errors.Wrap(err, "compile patch schema")
	}
	res, err := sch.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return errors.Wrap(err, "validate patch")
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return errors.Errorf("invalid patch: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// UnmarshalBlob validates data and replaces the store contents with it.
// Parameters missing from the blob get their defaults, unknown keys are
// ignored and values are clamped. The device is left alone.
func (s *Store) UnmarshalBlob(data []byte) error {
	if err := ValidateBlob(data); err != nil {
		return err
	}
	var b Blob
	if err := json.Unmarshal(data, &b); err != nil {
		return errors.Wrap(err, "decode patch")
	}
	return s.ApplyBlob(b)
}

// ApplyBlob replaces the store contents with b
func (s *Store) ApplyBlob(b Blob) error {
	bank, err := params.ParseBank(b.Bank)
	if err != nil {
		return errors.Wrap(err, "apply patch")
	}

	var values [params.Count]float64
	for _, p := range params.All() {
		v, ok := b.Values[p.Key]
		if !ok {
			v = p.Default
		}
		values[p.ID] = Clamp(&p, v)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = values
	s.bank = bank
	s.program = params.ClampProgram(b.Program)
	s.channel = max(1, min(b.Channel, 16))
	s.name = b.Name
	s.version++
	return nil
}

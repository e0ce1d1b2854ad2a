package state

import (
	"math"
	"sync"

	"github.com/pkg/errors"

	"jp8080ctl/params"
)

// Store holds the current value of every catalog parameter plus the
// selected patch and MIDI target. It is what the surfaces edit and what the
// processor snapshots once per cycle. Safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	values  [params.Count]float64
	bank    params.Bank
	program int
	channel int
	device  string
	name    string

	// bumped on every mutation; the processor skips cycles while it is unchanged
	version uint64
}

// NewStore returns a store holding the default values
func NewStore() *Store {
	s := &Store{}
	s.Defaults()
	return s
}

// Defaults resets parameters, patch, channel and name. The device is kept.
func (s *Store) Defaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range params.All() {
		s.values[p.ID] = p.Default
	}
	s.bank = params.UserA
	s.program = 1
	s.channel = 1
	s.name = ""
	s.version++
}

// Clamp limits v to what parameter p can hold: [0,1] for CC parameters,
// a whole option index for choices.
func Clamp(p *params.Param, v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if p.IsChoice() {
		i := math.Round(v)
		return math.Max(0, math.Min(i, float64(len(p.Options)-1)))
	}
	return math.Max(0, math.Min(v, 1))
}

// Set stores v for id, clamped, and returns the stored value
func (s *Store) Set(id params.ID, v float64) (float64, error) {
	p := params.Get(id)
	if p == nil {
		return 0, errors.Errorf("unknown parameter id %d", int(id))
	}
	v = Clamp(p, v)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values[id] != v {
		s.values[id] = v
		s.version++
	}
	return v, nil
}

// SetByKey is Set addressed by the parameter's string key
func (s *Store) SetByKey(key string, v float64) (float64, error) {
	id, ok := params.ByKey(key)
	if !ok {
		return 0, errors.Errorf("unknown parameter %q", key)
	}
	return s.Set(id, v)
}

// Nudge adds delta to the current value. Choices step through their
// options and wrap around.
func (s *Store) Nudge(id params.ID, delta float64) float64 {
	p := params.Get(id)
	if p == nil {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[id] + delta
	if p.IsChoice() {
		n := len(p.Options)
		v = float64(((int(math.Round(v)) % n) + n) % n)
	} else {
		v = Clamp(p, v)
	}
	if s.values[id] != v {
		s.values[id] = v
		s.version++
	}
	return v
}

func (s *Store) Get(id params.ID) float64 {
	if params.Get(id) == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[id]
}

func (s *Store) GetByKey(key string) (float64, error) {
	id, ok := params.ByKey(key)
	if !ok {
		return 0, errors.Errorf("unknown parameter %q", key)
	}
	return s.Get(id), nil
}

// SetChannel sets the MIDI channel, clamped to 1-16
func (s *Store) SetChannel(ch int) int {
	ch = max(1, min(ch, 16))
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.channel != ch {
		s.channel = ch
		s.version++
	}
	return ch
}

func (s *Store) Channel() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.channel
}

// SetPatch selects a bank and 1-based program slot. Unknown banks select
// User A; the program is clamped to 1-64.
func (s *Store) SetPatch(bank params.Bank, program int) {
	if !bank.Valid() {
		bank = params.UserA
	}
	program = params.ClampProgram(program)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bank != bank || s.program != program {
		s.bank = bank
		s.program = program
		s.version++
	}
}

func (s *Store) Patch() (params.Bank, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bank, s.program
}

// SetDevice records the output port name the values are meant for
func (s *Store) SetDevice(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.device != name {
		s.device = name
		s.version++
	}
}

func (s *Store) Device() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.device
}

// SetName sets the patch name used when saving
func (s *Store) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	s.version++
}

func (s *Store) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// Version changes whenever anything in the store does
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// CopyInto fills f with the current contents without allocating
func (s *Store) CopyInto(f *Frame) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f.values = s.values
	f.bank = s.bank
	f.program = s.program
	f.channel = s.channel
	f.device = s.device
	f.version = s.version
}

// Snapshot returns a copy of the current contents
func (s *Store) Snapshot() *Frame {
	f := &Frame{}
	s.CopyInto(f)
	return f
}

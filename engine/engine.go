package engine

import (
	"jp8080ctl/debug"
	"jp8080ctl/midi"
	"jp8080ctl/params"
)

// encodeDT1 is swapped in tests to exercise undeliverable addresses
var encodeDT1 = midi.EncodeDT1

// Engine turns parameter snapshots into the MIDI needed to bring the device
// in line with them. Each instance owns its memory; run one per target.
// An Engine is not safe for concurrent use.
type Engine struct {
	mem  Memory
	part midi.Part

	changes []Change
	events  []midi.Event
}

// Option configures an Engine
type Option func(*Engine)

// WithPart sets the performance part SysEx parameters are written to
func WithPart(p midi.Part) Option {
	return func(e *Engine) {
		e.part = p
	}
}

// New creates an engine with empty memory, so the first Cycle sends
// everything.
func New(opts ...Option) *Engine {
	e := &Engine{
		part:    midi.PartUpper,
		changes: make([]Change, 0, params.Count),
		events:  make([]midi.Event, 0, params.Count+3),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Cycle runs one synchronization pass. The bank/program sequence comes
// first when the pair changed, then parameter changes in catalog order.
// Memory is updated with exactly the wire values emitted.
//
// The returned slice is reused by the next call.
func (e *Engine) Cycle(snap Snapshot) []midi.Event {
	e.events = e.events[:0]
	channel := snap.Channel()

	var patchChanged bool
	e.changes, patchChanged = DetectChanges(snap, &e.mem, e.changes[:0])

	if patchChanged {
		bank, program := NormalizePatch(snap.Patch())
		seq := midi.SequenceBankProgram(bank, program, channel)
		e.events = append(e.events, seq[:]...)
		e.mem.recordPatch(bank, program)
	}

	for _, c := range e.changes {
		p := params.Get(c.ID)
		switch p.Encoding.Kind {
		case params.SysExChoice:
			ev, ok := encodeDT1(e.part, p.Encoding.Address, c.Wire)
			if !ok {
				debug.LogEvery(100, "engine", "no DT1 address for %s, dropped", p.Key)
				continue
			}
			e.events = append(e.events, ev)
		default:
			e.events = append(e.events, midi.EncodeCC(int(p.Encoding.CC), c.Wire, channel))
		}
		e.mem.record(c.ID, c.Wire)
	}

	return e.events
}

// Invalidate forgets all memory so the next cycle resends everything.
// Use it when the target channel, port or part changes.
func (e *Engine) Invalidate() {
	e.mem.Reset()
}

// Forget marks one parameter unsent, typically after its delivery failed
func (e *Engine) Forget(id params.ID) {
	e.mem.Forget(id)
}

// ForgetPatch marks the bank/program pair unsent
func (e *Engine) ForgetPatch() {
	e.mem.ForgetPatch()
}

// SetPart changes the SysEx target part. The memory is invalidated since
// the new part has not received the choice values.
func (e *Engine) SetPart(p midi.Part) {
	if p == e.part {
		return
	}
	e.part = p
	e.Invalidate()
}

func (e *Engine) Part() midi.Part {
	return e.part
}

// Memory exposes the transmission memory for inspection
func (e *Engine) Memory() *Memory {
	return &e.mem
}

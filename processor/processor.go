package processor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"jp8080ctl/debug"
	"jp8080ctl/engine"
	"jp8080ctl/midi"
	"jp8080ctl/params"
	"jp8080ctl/state"
)

// DefaultCycle is the processing cycle length when none is configured
const DefaultCycle = 10 * time.Millisecond

var errQueueFull = errors.New("sysex queue full")

// Options configures a Processor
type Options struct {
	Cycle      time.Duration
	Part       midi.Part
	AsyncSysEx bool // deliver SysEx from a separate goroutine
	SysExQueue int
	History    int // recent events kept for display
}

// Record is one delivered (or failed) event
type Record struct {
	At    time.Time
	Event midi.Event
	Err   error
}

// Stats are running totals since start
type Stats struct {
	Cycles  uint64
	Sent    uint64
	Failed  uint64
	Skipped uint64 // cycles with changes but no usable port
}

// Processor runs the synchronization engine against a Store at a fixed
// rate and hands the resulting events to the output port.
type Processor struct {
	store   *state.Store
	outputs *midi.Outputs
	sysex   *midi.SysExSender // nil when SysEx is sent inline
	cycle   time.Duration

	mu          sync.Mutex // serializes Step
	eng         *engine.Engine
	frame       state.Frame
	primed      bool
	lastDevice  string
	lastChannel int
	lastVersion uint64
	dirty       bool // memory changed outside the store: cycle even if version is unchanged
	failedSysEx [][midi.DT1Len]byte

	resend atomic.Bool

	histMu  sync.RWMutex
	history []Record
	histLen int
	histPos int

	cycles  atomic.Uint64
	sent    atomic.Uint64
	failed  atomic.Uint64
	skipped atomic.Uint64

	// Notify UI of delivered events
	UpdateChan chan struct{}
}

// New creates a processor. Nothing runs until Run or Step is called.
func New(store *state.Store, outputs *midi.Outputs, opts Options) *Processor {
	if opts.Cycle <= 0 {
		opts.Cycle = DefaultCycle
	}
	if opts.Part == 0 {
		opts.Part = midi.PartUpper
	}
	if opts.History <= 0 {
		opts.History = 64
	}

	p := &Processor{
		store:      store,
		outputs:    outputs,
		cycle:      opts.Cycle,
		eng:        engine.New(engine.WithPart(opts.Part)),
		history:    make([]Record, opts.History),
		UpdateChan: make(chan struct{}, 1),
	}
	if opts.AsyncSysEx {
		p.sysex = midi.NewSysExSender(opts.SysExQueue)
	}
	return p
}

// Run steps the processor every cycle until ctx is done
func (p *Processor) Run(ctx context.Context) {
	ticker := time.NewTicker(p.cycle)
	defer ticker.Stop()

	debug.Log("proc", "running, cycle=%v async-sysex=%v", p.cycle, p.sysex != nil)
	for {
		select {
		case <-ctx.Done():
			debug.Log("proc", "stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			p.Step()
		}
	}
}

// Step runs one cycle and returns how many events went out
func (p *Processor) Step() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cycles.Add(1)
	p.store.CopyInto(&p.frame)

	device, channel := p.frame.Device(), p.frame.Channel()
	if p.primed && (device != p.lastDevice || channel != p.lastChannel) {
		debug.Log("proc", "target changed %q/%d -> %q/%d, resending", p.lastDevice, p.lastChannel, device, channel)
		p.invalidate()
	}
	if p.resend.Swap(false) {
		p.invalidate()
	}
	p.retryFailedSysEx()

	if p.primed && !p.dirty && p.frame.Version() == p.lastVersion {
		return 0
	}
	p.primed = true
	p.lastDevice, p.lastChannel = device, channel
	p.lastVersion = p.frame.Version()
	p.dirty = false

	events := p.eng.Cycle(&p.frame)
	if len(events) == 0 {
		return 0
	}

	send, err := p.outputs.Sender(device)
	if err != nil {
		// nothing reached the device, so nothing may count as sent
		p.invalidate()
		p.skipped.Add(1)
		debug.LogEvery(500, "proc", "no output: %v", err)
		return 0
	}

	n := 0
	now := time.Now()
	for i := range events {
		ev := events[i]
		if ev.Kind == midi.KindSysEx && p.sysex != nil {
			if !p.sysex.Enqueue(send, ev.Frame) {
				p.failed.Add(1)
				p.forget(ev)
				p.record(Record{At: now, Event: ev, Err: errQueueFull})
				continue
			}
		} else if err := send(ev.Message()); err != nil {
			p.failed.Add(1)
			p.forget(ev)
			// reopen the port next cycle in case it went away
			p.outputs.Forget(device)
			p.record(Record{At: now, Event: ev, Err: err})
			debug.LogEvery(100, "proc", "send %s: %v", ev, err)
			continue
		}
		p.sent.Add(1)
		p.record(Record{At: now, Event: ev})
		n++
	}

	select {
	case p.UpdateChan <- struct{}{}:
	default:
	}
	return n
}

// invalidate makes the next cycle a cold start
func (p *Processor) invalidate() {
	p.eng.Invalidate()
	p.dirty = true
}

// retryFailedSysEx forgets parameters whose DT1 frames the async sender
// could not deliver, so the engine sends them again.
func (p *Processor) retryFailedSysEx() {
	if p.sysex == nil {
		return
	}
	p.failedSysEx = p.sysex.TakeFailed(p.failedSysEx[:0])
	if len(p.failedSysEx) == 0 {
		return
	}
	for _, frame := range p.failedSysEx {
		p.forget(midi.Event{Kind: midi.KindSysEx, Frame: frame})
	}
	p.outputs.Forget(p.lastDevice)
	debug.Log("proc", "%d sysex frames failed, retrying", len(p.failedSysEx))
}

// forget makes the engine send ev's parameter again next cycle
func (p *Processor) forget(ev midi.Event) {
	p.dirty = true
	switch ev.Kind {
	case midi.KindProgramChange:
		p.eng.ForgetPatch()
	case midi.KindControlChange:
		if ev.Controller == midi.BankSelectMSB || ev.Controller == midi.BankSelectLSB {
			p.eng.ForgetPatch()
			return
		}
		if id, ok := params.ByCC(ev.Controller); ok {
			p.eng.Forget(id)
		}
	case midi.KindSysEx:
		if id, ok := params.ByAddress(ev.Frame[9]); ok {
			p.eng.Forget(id)
		}
	}
}

// SendAll makes the next cycle transmit every parameter and the patch
func (p *Processor) SendAll() {
	p.resend.Store(true)
}

// SetPart switches the performance part SysEx goes to
func (p *Processor) SetPart(part midi.Part) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if part != p.eng.Part() {
		p.eng.SetPart(part)
		p.dirty = true
	}
}

func (p *Processor) Part() midi.Part {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eng.Part()
}

func (p *Processor) record(r Record) {
	p.histMu.Lock()
	defer p.histMu.Unlock()
	p.history[p.histPos] = r
	p.histPos = (p.histPos + 1) % len(p.history)
	if p.histLen < len(p.history) {
		p.histLen++
	}
}

// History returns recent records, oldest first
func (p *Processor) History() []Record {
	p.histMu.RLock()
	defer p.histMu.RUnlock()

	out := make([]Record, 0, p.histLen)
	start := (p.histPos - p.histLen + len(p.history)) % len(p.history)
	for i := 0; i < p.histLen; i++ {
		out = append(out, p.history[(start+i)%len(p.history)])
	}
	return out
}

// Stats returns running totals. Async SysEx deliveries are counted when
// queued; their failures show up in the sender's own stats.
func (p *Processor) Stats() Stats {
	return Stats{
		Cycles:  p.cycles.Load(),
		Sent:    p.sent.Load(),
		Failed:  p.failed.Load(),
		Skipped: p.skipped.Load(),
	}
}

// Close flushes pending SysEx
func (p *Processor) Close() {
	if p.sysex != nil {
		p.sysex.Close()
		sent, dropped, failed := p.sysex.Stats()
		debug.Log("proc", "sysex sender closed: sent=%d dropped=%d failed=%d", sent, dropped, failed)
	}
}

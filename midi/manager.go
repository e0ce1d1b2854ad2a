package midi

import (
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"jp8080ctl/debug"
)

// Sender delivers one message to an output port
type Sender func(msg gomidi.Message) error

// Outputs opens output ports by name on first use and caches their senders
type Outputs struct {
	senders map[string]Sender
	mu      sync.RWMutex
	open    func(name string) (Sender, error)
}

// NewOutputs creates an output manager backed by the registered gomidi driver
func NewOutputs() *Outputs {
	return NewOutputsFunc(openPort)
}

// NewOutputsFunc creates an output manager that opens ports with open
// instead of the gomidi driver (in-process sinks, tests).
func NewOutputsFunc(open func(name string) (Sender, error)) *Outputs {
	return &Outputs{
		senders: make(map[string]Sender),
		open:    open,
	}
}

// Register installs a sender under name without touching the driver
// (in-process sinks, tests).
func (o *Outputs) Register(name string, s Sender) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.senders[name] = s
}

// Forget drops a cached sender so the next Sender call reopens the port
func (o *Outputs) Forget(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.senders, name)
}

// Sender returns the sender for the given port name, lazily opening it
func (o *Outputs) Sender(name string) (Sender, error) {
	if name == "" {
		return nil, errors.New("no output port selected")
	}

	o.mu.RLock()
	if sender, ok := o.senders[name]; ok {
		o.mu.RUnlock()
		return sender, nil
	}
	o.mu.RUnlock()

	o.mu.Lock()
	defer o.mu.Unlock()

	// Double-check after acquiring write lock
	if sender, ok := o.senders[name]; ok {
		return sender, nil
	}

	sender, err := o.open(name)
	if err != nil {
		return nil, err
	}
	o.senders[name] = sender
	debug.Log("outputs", "opened port %q", name)
	return sender, nil
}

func openPort(name string) (Sender, error) {
	port, err := findOutPort(gomidi.GetOutPorts(), name)
	if err != nil {
		return nil, err
	}
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, errors.Wrapf(err, "open output %q", name)
	}
	return send, nil
}

// findOutPort prefers an exact name match, then a case-insensitive substring
func findOutPort(ports []drivers.Out, name string) (drivers.Out, error) {
	for _, p := range ports {
		if p.String() == name {
			return p, nil
		}
	}
	lower := strings.ToLower(name)
	for _, p := range ports {
		if strings.Contains(strings.ToLower(p.String()), lower) {
			return p, nil
		}
	}
	return nil, errors.Errorf("no MIDI output matches %q", name)
}

// FindInPort resolves an input port the same way outputs are resolved
func FindInPort(name string) (drivers.In, error) {
	ports := gomidi.GetInPorts()
	for _, p := range ports {
		if p.String() == name {
			return p, nil
		}
	}
	lower := strings.ToLower(name)
	for _, p := range ports {
		if strings.Contains(strings.ToLower(p.String()), lower) {
			return p, nil
		}
	}
	return nil, errors.Errorf("no MIDI input matches %q", name)
}

// Ports lists input and output port names
type Ports struct {
	Inputs  []string
	Outputs []string
}

// ListPorts returns the current port names. Port enumeration can hang on
// some CoreMIDI setups, so it gives up after timeout.
func ListPorts(timeout time.Duration) (Ports, error) {
	ch := make(chan Ports, 1)
	go func() {
		var p Ports
		for _, in := range gomidi.GetInPorts() {
			p.Inputs = append(p.Inputs, in.String())
		}
		for _, out := range gomidi.GetOutPorts() {
			p.Outputs = append(p.Outputs, out.String())
		}
		ch <- p
	}()

	select {
	case p := <-ch:
		return p, nil
	case <-time.After(timeout):
		// User needs to run: sudo killall coreaudiod midiserver
		return Ports{}, errors.New("timed out listing MIDI ports")
	}
}

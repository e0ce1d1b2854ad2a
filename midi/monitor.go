package midi

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// MonitorLine is one decoded incoming message
type MonitorLine struct {
	At   time.Duration // driver timestamp since listening started
	Text string
	Raw  []byte
}

// Monitor listens on an input port and decodes what it sees
type Monitor struct {
	id       string
	stopFunc func()
	lines    chan MonitorLine

	mu     sync.Mutex
	closed bool
}

// NewMonitor starts listening on inPort with SysEx reception enabled
func NewMonitor(inPort drivers.In) (*Monitor, error) {
	m := &Monitor{
		id:    inPort.String(),
		lines: make(chan MonitorLine, 64),
	}

	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
		raw := append([]byte(nil), msg.Bytes()...)
		line := MonitorLine{
			At:   time.Duration(timestampms) * time.Millisecond,
			Text: DescribeMessage(raw),
			Raw:  raw,
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.closed {
			return
		}
		select {
		case m.lines <- line:
		default:
		}
	}, gomidi.UseSysEx(), gomidi.SysExBufferSize(1024))
	if err != nil {
		return nil, errors.Wrapf(err, "listen on %q", inPort.String())
	}
	m.stopFunc = stop

	return m, nil
}

func (m *Monitor) ID() string {
	return m.id
}

// Lines returns decoded messages. Lines are dropped when nobody reads.
func (m *Monitor) Lines() <-chan MonitorLine {
	return m.lines
}

func (m *Monitor) Close() error {
	if m.stopFunc != nil {
		m.stopFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.lines)
	}
	return nil
}

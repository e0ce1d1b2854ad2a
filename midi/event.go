package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// MIDI status bytes and controller numbers used on the wire
const (
	CC uint8 = 0xB0
	PC uint8 = 0xC0

	SysExStart uint8 = 0xF0
	SysExEnd   uint8 = 0xF7

	BankSelectMSB uint8 = 0
	BankSelectLSB uint8 = 32
)

// Kind tags which variant an Event holds
type Kind uint8

const (
	KindNone Kind = iota
	KindControlChange
	KindProgramChange
	KindSysEx
)

func (k Kind) String() string {
	switch k {
	case KindControlChange:
		return "CC"
	case KindProgramChange:
		return "PC"
	case KindSysEx:
		return "SysEx"
	default:
		return "none"
	}
}

// Event is one outgoing MIDI message. It is a fixed-size value so a cycle's
// worth of events can live in a pre-sized slice.
type Event struct {
	Kind       Kind
	Channel    uint8 // 1-16 as displayed; the wire carries Channel-1
	Controller uint8
	Value      uint8
	Program    uint8 // absolute 0-127 program number
	Frame      [DT1Len]byte
}

// Len is the number of bytes the event occupies on the wire
func (e *Event) Len() int {
	switch e.Kind {
	case KindControlChange:
		return 3
	case KindProgramChange:
		return 2
	case KindSysEx:
		return DT1Len
	default:
		return 0
	}
}

// AppendBytes appends the wire encoding of e to dst
func (e *Event) AppendBytes(dst []byte) []byte {
	switch e.Kind {
	case KindControlChange:
		return append(dst, CC|wireChannel(e.Channel), e.Controller&0x7F, e.Value&0x7F)
	case KindProgramChange:
		return append(dst, PC|wireChannel(e.Channel), e.Program&0x7F)
	case KindSysEx:
		return append(dst, e.Frame[:]...)
	default:
		return dst
	}
}

// Bytes returns the wire encoding of e
func (e Event) Bytes() []byte {
	return e.AppendBytes(make([]byte, 0, e.Len()))
}

// Message converts e to a gomidi message for port delivery
func (e Event) Message() gomidi.Message {
	switch e.Kind {
	case KindControlChange:
		return gomidi.ControlChange(wireChannel(e.Channel), e.Controller, e.Value)
	case KindProgramChange:
		return gomidi.ProgramChange(wireChannel(e.Channel), e.Program)
	case KindSysEx:
		return gomidi.Message(e.Bytes())
	default:
		return nil
	}
}

func (e Event) String() string {
	switch e.Kind {
	case KindControlChange:
		return fmt.Sprintf("CC(ch=%d,cc=%d,val=%d)", e.Channel, e.Controller, e.Value)
	case KindProgramChange:
		return fmt.Sprintf("ProgramChange(ch=%d, program=%d)", e.Channel, e.Program)
	case KindSysEx:
		return fmt.Sprintf("SysEx(% X)", e.Frame[:])
	default:
		return "Event(none)"
	}
}

func wireChannel(ch uint8) uint8 {
	if ch < 1 {
		return 0
	}
	if ch > 16 {
		return 15
	}
	return ch - 1
}

package midi

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"jp8080ctl/params"
)

// Roland DT1 framing for the JP-8080:
//
//	F0 41 <dev> 00 06 12 <a1> <a2> <a3> <a4> <data> <sum> F7
const (
	ManufacturerRoland byte = 0x41
	DefaultDeviceID    byte = 0x10
	CmdDT1             byte = 0x12

	// DT1Len is the length of a single-byte DT1 frame
	DT1Len = 13
)

var modelID = [2]byte{0x00, 0x06}

// Part selects the temporary performance part a DT1 message addresses
type Part byte

const (
	PartUpper Part = 0x40
	PartLower Part = 0x42
)

func (p Part) String() string {
	switch p {
	case PartUpper:
		return "upper"
	case PartLower:
		return "lower"
	default:
		return fmt.Sprintf("part(0x%02X)", byte(p))
	}
}

// ParsePart accepts "upper" or "lower". Empty input selects the upper part.
func ParsePart(s string) (Part, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "upper":
		return PartUpper, nil
	case "lower":
		return PartLower, nil
	default:
		return PartUpper, errors.Errorf("unknown part %q (want upper or lower)", s)
	}
}

// Address returns the 4-byte DT1 address of a parameter offset within the part
func (p Part) Address(offset byte) [4]byte {
	return [4]byte{0x01, 0x00, byte(p), offset}
}

// Checksum is the Roland checksum over address and data bytes: the value
// that brings their sum to a multiple of 128. It is always 0-127.
func Checksum(data ...byte) byte {
	sum := 0
	for _, b := range data {
		sum += int(b)
	}
	return byte((128 - sum%128) % 128)
}

// EncodeDT1 builds a DT1 data-set frame writing value to offset within part.
// Offsets that are not in the catalog's address table are refused (ok is
// false) because writing an undefined address corrupts unrelated device state.
func EncodeDT1(part Part, offset byte, value int) (Event, bool) {
	if _, known := params.ByAddress(offset); !known {
		return Event{}, false
	}
	addr := part.Address(offset)
	v := byte(clamp(value, 0, 127))

	e := Event{Kind: KindSysEx}
	e.Frame = [DT1Len]byte{
		SysExStart, ManufacturerRoland, DefaultDeviceID, modelID[0], modelID[1], CmdDT1,
		addr[0], addr[1], addr[2], addr[3],
		v,
		Checksum(addr[0], addr[1], addr[2], addr[3], v),
		SysExEnd,
	}
	return e, true
}

// EncodeWaveformSysEx builds the upper-part DT1 frame for a waveform choice
func EncodeWaveformSysEx(offset byte, value int) (Event, bool) {
	return EncodeDT1(PartUpper, offset, value)
}

// DT1 is a decoded data-set message
type DT1 struct {
	Device  byte
	Address [4]byte
	Data    []byte
}

// Part returns the addressed temporary performance part
func (d DT1) Part() Part {
	return Part(d.Address[2])
}

// DecodeDT1 validates and decodes a complete DT1 frame (including F0/F7)
func DecodeDT1(frame []byte) (DT1, error) {
	switch {
	case len(frame) < DT1Len:
		return DT1{}, errors.Errorf("DT1 frame too short: len=%d", len(frame))
	case frame[0] != SysExStart || frame[len(frame)-1] != SysExEnd:
		return DT1{}, errors.New("not a SysEx frame")
	case frame[1] != ManufacturerRoland:
		return DT1{}, errors.Errorf("wrong manufacturer: want %02X, got %02X", ManufacturerRoland, frame[1])
	case frame[3] != modelID[0] || frame[4] != modelID[1]:
		return DT1{}, errors.Errorf("wrong model: want %02X %02X, got %02X %02X", modelID[0], modelID[1], frame[3], frame[4])
	case frame[5] != CmdDT1:
		return DT1{}, errors.Errorf("wrong command: want %02X, got %02X", CmdDT1, frame[5])
	}

	body := frame[6 : len(frame)-2]
	want := Checksum(body...)
	got := frame[len(frame)-2]
	if want != got {
		return DT1{}, errors.Errorf("wrong checksum: calculated=%02X, got=%02X", want, got)
	}

	d := DT1{Device: frame[2]}
	copy(d.Address[:], body[:4])
	d.Data = append([]byte(nil), body[4:]...)
	return d, nil
}

// Describe renders a DT1 frame for humans: part, parameter and option names.
// Frames that fail to decode are shown raw with the reason.
func Describe(frame []byte) string {
	d, err := DecodeDT1(frame)
	if err != nil {
		return fmt.Sprintf("SysEx % X (%v)", frame, err)
	}

	addr := fmt.Sprintf("%02X %02X %02X %02X", d.Address[0], d.Address[1], d.Address[2], d.Address[3])
	if d.Address[0] != 0x01 || d.Address[1] != 0x00 || len(d.Data) == 0 {
		return fmt.Sprintf("DT1 dev=0x%02X addr=%s data=% X", d.Device, addr, d.Data)
	}

	value := int(d.Data[0])
	name := fmt.Sprintf("offset 0x%02X", d.Address[3])
	valueName := fmt.Sprintf("0x%02X", value)
	if id, ok := params.ByAddress(d.Address[3]); ok {
		p := params.Get(id)
		name = p.Name
		if value < len(p.Options) {
			valueName = p.Options[value]
		} else {
			valueName = "invalid"
		}
	}
	return fmt.Sprintf("DT1 dev=0x%02X %s part: %s = %d (%s)", d.Device, d.Part(), name, value, valueName)
}

// DescribeMessage renders any incoming message the monitor cares about
func DescribeMessage(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	if raw[0] == SysExStart {
		return Describe(raw)
	}
	status := raw[0] & 0xF0
	ch := int(raw[0]&0x0F) + 1
	switch {
	case status == CC && len(raw) >= 3:
		cc, val := raw[1], raw[2]
		switch cc {
		case BankSelectMSB:
			return fmt.Sprintf("ch%d Bank Select MSB = %d", ch, val)
		case BankSelectLSB:
			return fmt.Sprintf("ch%d Bank Select LSB = %d", ch, val)
		}
		if id, ok := params.ByCC(cc); ok {
			return fmt.Sprintf("ch%d CC#%d %s = %d", ch, cc, params.Get(id).Name, val)
		}
		return fmt.Sprintf("ch%d CC#%d = %d", ch, cc, val)
	case status == PC && len(raw) >= 2:
		return fmt.Sprintf("ch%d Program Change %d", ch, raw[1])
	default:
		return fmt.Sprintf("% X", raw)
	}
}

package midi

import "jp8080ctl/params"

// EncodeCC builds a Control Change event. Out-of-range input is clamped,
// never rejected: cc and value to 0-127, channel to 1-16.
func EncodeCC(cc, value, channel int) Event {
	return Event{
		Kind:       KindControlChange,
		Channel:    uint8(clamp(channel, 1, 16)),
		Controller: uint8(clamp(cc, 0, 127)),
		Value:      uint8(clamp(value, 0, 127)),
	}
}

// EncodeProgramChange builds a Program Change event for an absolute 0-127
// program number.
func EncodeProgramChange(program, channel int) Event {
	return Event{
		Kind:    KindProgramChange,
		Channel: uint8(clamp(channel, 1, 16)),
		Program: uint8(clamp(program, 0, 127)),
	}
}

// ProgramNumber converts a 1-based slot within a half-bank to the absolute
// wire program number using the bank's offset.
func ProgramNumber(bank params.Bank, program int) int {
	sel := bank.Select()
	return clamp(params.ClampProgram(program)-1+int(sel.Offset), 0, 127)
}

// SequenceBankProgram returns Bank Select MSB, Bank Select LSB and Program
// Change, in that order. The receiver latches the bank only when the Program
// Change arrives, so the order must be kept.
func SequenceBankProgram(bank params.Bank, program, channel int) [3]Event {
	sel := bank.Select()
	return [3]Event{
		EncodeCC(int(BankSelectMSB), int(sel.MSB), channel),
		EncodeCC(int(BankSelectLSB), int(sel.LSB), channel),
		EncodeProgramChange(ProgramNumber(bank, program), channel),
	}
}

func clamp(x, min, max int) int {
	switch {
	case x < min:
		return min
	case x > max:
		return max
	default:
		return x
	}
}

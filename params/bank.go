package params

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ProgramsPerBank is the number of program slots in one half-bank. The
// hardware labels them 11-88 (bank digit, number digit).
const ProgramsPerBank = 64

// Bank is one of the eight selectable patch half-banks.
type Bank int

const (
	UserA Bank = iota
	UserB
	Preset1A
	Preset1B
	Preset2A
	Preset2B
	Preset3A
	Preset3B
	NumBanks
)

// BankSelect is the wire addressing of a bank: Bank Select MSB (CC#0),
// LSB (CC#32) and the offset added to the 0-based program slot.
type BankSelect struct {
	MSB    uint8
	LSB    uint8
	Offset uint8
}

var bankTable = [NumBanks]struct {
	key  string
	name string
	sel  BankSelect
}{
	{"UserA", "User A (11-88)", BankSelect{80, 0, 0}},
	{"UserB", "User B (11-88)", BankSelect{80, 0, 64}},
	{"Preset1A", "Preset 1 A (11-88)", BankSelect{81, 0, 0}},
	{"Preset1B", "Preset 1 B (11-88)", BankSelect{81, 0, 64}},
	{"Preset2A", "Preset 2 A (11-88)", BankSelect{81, 1, 0}},
	{"Preset2B", "Preset 2 B (11-88)", BankSelect{81, 1, 64}},
	{"Preset3A", "Preset 3 A (11-88)", BankSelect{81, 2, 0}},
	{"Preset3B", "Preset 3 B (11-88)", BankSelect{81, 2, 64}},
}

// Valid reports whether b is one of the eight defined banks.
func (b Bank) Valid() bool {
	return b >= 0 && b < NumBanks
}

// Select returns the bank's wire addressing. Undefined banks address User A.
func (b Bank) Select() BankSelect {
	if !b.Valid() {
		return bankTable[UserA].sel
	}
	return bankTable[b].sel
}

// Key is the stable name used in saved state ("Preset2B").
func (b Bank) Key() string {
	if !b.Valid() {
		return bankTable[UserA].key
	}
	return bankTable[b].key
}

func (b Bank) String() string {
	if !b.Valid() {
		return fmt.Sprintf("Bank(%d)", int(b))
	}
	return bankTable[b].name
}

// ParseBank accepts a bank key, case-insensitively and ignoring spaces
// ("preset 2b", "Preset2B").
func ParseBank(s string) (Bank, error) {
	norm := strings.ToLower(strings.ReplaceAll(s, " ", ""))
	for i, b := range bankTable {
		if strings.ToLower(b.key) == norm {
			return Bank(i), nil
		}
	}
	return UserA, errors.Errorf("unknown bank %q", s)
}

// ClampProgram limits a user-facing program slot to 1..ProgramsPerBank.
func ClampProgram(program int) int {
	switch {
	case program < 1:
		return 1
	case program > ProgramsPerBank:
		return ProgramsPerBank
	default:
		return program
	}
}

// ProgramLabel renders a 1-based program slot as the front panel shows it:
// slot 1 is "11", slot 9 is "21", slot 64 is "88".
func ProgramLabel(program int) string {
	p := ClampProgram(program) - 1
	return fmt.Sprintf("%d%d", p/8+1, p%8+1)
}

package engine

import (
	"math"

	"jp8080ctl/params"
)

// Snapshot is the read-only view of the host parameter store the engine
// works against for one cycle.
type Snapshot interface {
	Value(id params.ID) float64
	Patch() (params.Bank, int)
	Channel() int
	Device() string
}

// Change is one parameter whose wire value differs from memory
type Change struct {
	ID   params.ID
	Wire int
}

// WireValue converts a stored value to its wire value. CC parameters scale
// [0,1] to 0-127 with rounding. Choices use the option index, clamped to
// the option list.
func WireValue(p *params.Param, v float64) int {
	if math.IsNaN(v) {
		v = 0
	}
	// clamp before converting: out-of-range float to int is undefined
	if p.IsChoice() {
		return int(math.Max(0, math.Min(math.Trunc(v), float64(len(p.Options)-1))))
	}
	v = math.Max(0, math.Min(v, 1))
	return int(math.Round(v * 127))
}

// NormalizePatch maps a bank/program pair to the form it is remembered in:
// unknown banks become UserA and the program is clamped to 1-64.
func NormalizePatch(bank params.Bank, program int) (params.Bank, int) {
	if !bank.Valid() {
		bank = params.UserA
	}
	return bank, params.ClampProgram(program)
}

// DetectChanges appends to dst every catalog parameter whose wire value
// differs from mem or was never sent, in catalog order. patchChanged
// reports whether the bank/program pair needs sending. mem is not touched.
func DetectChanges(snap Snapshot, mem *Memory, dst []Change) (changes []Change, patchChanged bool) {
	all := params.All()
	for i := range all {
		p := &all[i]
		wire := WireValue(p, snap.Value(p.ID))
		if last, ok := mem.Last(p.ID); ok && last == wire {
			continue
		}
		dst = append(dst, Change{ID: p.ID, Wire: wire})
	}

	bank, program := NormalizePatch(snap.Patch())
	lastBank, lastProgram, sent := mem.LastPatch()
	patchChanged = !sent || bank != lastBank || program != lastProgram

	return dst, patchChanged
}

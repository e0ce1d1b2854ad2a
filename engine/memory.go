package engine

import "jp8080ctl/params"

// Memory records what was last put on the wire. Values are kept in wire
// units (0-127 for CC, option index for choices) so diffing never rescales.
// The bank/program pair is remembered separately because it is only ever
// sent as a whole.
type Memory struct {
	wire [params.Count]uint8
	sent [params.Count]bool

	patchSent bool
	bank      params.Bank
	program   int
}

// Last returns the wire value last recorded for id
func (m *Memory) Last(id params.ID) (int, bool) {
	if id < 0 || int(id) >= params.Count || !m.sent[id] {
		return 0, false
	}
	return int(m.wire[id]), true
}

// LastPatch returns the bank/program pair last recorded
func (m *Memory) LastPatch() (params.Bank, int, bool) {
	return m.bank, m.program, m.patchSent
}

func (m *Memory) record(id params.ID, wire int) {
	m.wire[id] = uint8(wire)
	m.sent[id] = true
}

func (m *Memory) recordPatch(bank params.Bank, program int) {
	m.bank = bank
	m.program = program
	m.patchSent = true
}

// Forget drops the entry for id so it is sent again next cycle
func (m *Memory) Forget(id params.ID) {
	if id >= 0 && int(id) < params.Count {
		m.sent[id] = false
	}
}

// ForgetPatch drops the bank/program entry
func (m *Memory) ForgetPatch() {
	m.patchSent = false
}

// Reset forgets everything
func (m *Memory) Reset() {
	*m = Memory{}
}

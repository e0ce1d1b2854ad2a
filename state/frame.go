package state

import "jp8080ctl/params"

// Frame is a point-in-time copy of a Store. It satisfies engine.Snapshot
// and is meant to be reused across cycles via Store.CopyInto.
type Frame struct {
	values  [params.Count]float64
	bank    params.Bank
	program int
	channel int
	device  string
	version uint64
}

func (f *Frame) Value(id params.ID) float64 {
	if id < 0 || int(id) >= params.Count {
		return 0
	}
	return f.values[id]
}

func (f *Frame) Patch() (params.Bank, int) {
	return f.bank, f.program
}

func (f *Frame) Channel() int {
	return f.channel
}

func (f *Frame) Device() string {
	return f.device
}

// Version is the store version the frame was copied at
func (f *Frame) Version() uint64 {
	return f.version
}

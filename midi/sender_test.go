package midi

import (
	"errors"
	"sync"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
)

type recorder struct {
	mu   sync.Mutex
	msgs [][]byte
	err  error
}

func (r *recorder) send(msg gomidi.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, append([]byte(nil), msg.Bytes()...))
	return nil
}

func TestSysExSenderOrder(t *testing.T) {
	rec := &recorder{}
	s := NewSysExSender(16)

	for v := 0; v < 4; v++ {
		e, _ := EncodeWaveformSysEx(0x10, v)
		if !s.Enqueue(rec.send, e.Frame) {
			t.Fatalf("enqueue %d refused", v)
		}
	}
	s.Close()

	if len(rec.msgs) != 4 {
		t.Fatalf("delivered %d frames, want 4", len(rec.msgs))
	}
	for v, m := range rec.msgs {
		if m[10] != byte(v) {
			t.Errorf("frame %d carries value %d", v, m[10])
		}
	}
	if sent, dropped, failed := s.Stats(); sent != 4 || dropped != 0 || failed != 0 {
		t.Errorf("stats = %d/%d/%d", sent, dropped, failed)
	}
}

func TestSysExSenderAfterClose(t *testing.T) {
	rec := &recorder{}
	s := NewSysExSender(1)
	s.Close()
	s.Close()

	e, _ := EncodeWaveformSysEx(0x10, 1)
	if s.Enqueue(rec.send, e.Frame) {
		t.Error("enqueue after close accepted")
	}
	if _, dropped, _ := s.Stats(); dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
}

func TestSysExSenderCountsFailures(t *testing.T) {
	rec := &recorder{err: errors.New("port gone")}
	s := NewSysExSender(4)
	e, _ := EncodeWaveformSysEx(0x21, 1)
	s.Enqueue(rec.send, e.Frame)
	s.Close()

	if _, _, failed := s.Stats(); failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}

	frames := s.TakeFailed(nil)
	if len(frames) != 1 || frames[0] != e.Frame {
		t.Fatalf("failed frames = % X", frames)
	}
	if again := s.TakeFailed(nil); len(again) != 0 {
		t.Errorf("failures returned twice: % X", again)
	}
}

func TestOutputsCachesSenders(t *testing.T) {
	opened := 0
	o := NewOutputs()
	o.open = func(name string) (Sender, error) {
		opened++
		return (&recorder{}).send, nil
	}

	for i := 0; i < 3; i++ {
		if _, err := o.Sender("JP-8080"); err != nil {
			t.Fatal(err)
		}
	}
	if opened != 1 {
		t.Errorf("opened %d times, want 1", opened)
	}

	o.Forget("JP-8080")
	o.Sender("JP-8080")
	if opened != 2 {
		t.Errorf("opened %d times after Forget, want 2", opened)
	}

	if _, err := o.Sender(""); err == nil {
		t.Error("empty port name should fail")
	}
}

func TestOutputsRegister(t *testing.T) {
	o := NewOutputs()
	o.open = func(name string) (Sender, error) {
		return nil, errors.New("driver unavailable")
	}
	if _, err := o.Sender("missing"); err == nil {
		t.Error("expected open error")
	}

	rec := &recorder{}
	o.Register("virtual", rec.send)
	s, err := o.Sender("virtual")
	if err != nil {
		t.Fatal(err)
	}
	s(EncodeCC(7, 100, 1).Message())
	if len(rec.msgs) != 1 {
		t.Errorf("registered sender not used")
	}
}

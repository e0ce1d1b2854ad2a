package midi

import (
	"sync"
	"sync/atomic"

	gomidi "gitlab.com/gomidi/midi/v2"

	"jp8080ctl/debug"
)

type sysExJob struct {
	send  Sender
	frame [DT1Len]byte
}

// SysExSender delivers SysEx frames from its own goroutine so slow
// system-exclusive transmission never holds up the processing cycle.
// Frames are delivered in the order they were queued.
type SysExSender struct {
	jobs chan sysExJob
	done chan struct{}

	mu     sync.RWMutex
	closed bool

	sent    atomic.Uint64
	dropped atomic.Uint64
	failed  atomic.Uint64

	// frames whose delivery failed, until TakeFailed collects them
	failMu   sync.Mutex
	failures [][DT1Len]byte
}

// NewSysExSender starts a sender with room for queue pending frames
func NewSysExSender(queue int) *SysExSender {
	if queue < 1 {
		queue = 1
	}
	s := &SysExSender{
		jobs: make(chan sysExJob, queue),
		done: make(chan struct{}),
	}
	go s.loop()
	return s
}

// Enqueue hands a frame to the sender. It never blocks: when the queue is
// full or the sender is closed the frame is dropped and false returned.
func (s *SysExSender) Enqueue(send Sender, frame [DT1Len]byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed || send == nil {
		s.dropped.Add(1)
		return false
	}
	select {
	case s.jobs <- sysExJob{send: send, frame: frame}:
		return true
	default:
		s.dropped.Add(1)
		debug.LogEvery(10, "sysex", "queue full, dropping frame")
		return false
	}
}

func (s *SysExSender) loop() {
	defer close(s.done)
	for job := range s.jobs {
		if err := job.send(gomidi.Message(job.frame[:])); err != nil {
			s.failed.Add(1)
			s.failMu.Lock()
			s.failures = append(s.failures, job.frame)
			s.failMu.Unlock()
			debug.Warn("sysex", "send failed: %v", err)
			continue
		}
		s.sent.Add(1)
	}
}

// TakeFailed appends the frames that failed since the last call to dst.
// The owner uses it to retransmit them.
func (s *SysExSender) TakeFailed(dst [][DT1Len]byte) [][DT1Len]byte {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	dst = append(dst, s.failures...)
	s.failures = s.failures[:0]
	return dst
}

// Close stops accepting frames, delivers what is queued and waits
func (s *SysExSender) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	close(s.jobs)
	s.mu.Unlock()
	<-s.done
}

// Stats returns delivered, dropped and failed frame counts
func (s *SysExSender) Stats() (sent, dropped, failed uint64) {
	return s.sent.Load(), s.dropped.Load(), s.failed.Load()
}

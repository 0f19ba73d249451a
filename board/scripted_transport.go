package board

import (
	"context"
	"sync"
	"time"
)

type scriptedRead struct {
	line    string
	present bool
}

// ScriptedTransport is a test helper that replays a fixed sequence of
// board output. Each queued entry answers one ReadLine call, either with a
// line or with a read timeout. Once the script runs out every read times
// out, which is how an idle board behaves.
//
// Writes are recorded so tests can assert on the exact wire traffic.
// Exported for use in tests of this and dependent packages.
type ScriptedTransport struct {
	mu        sync.Mutex
	reads     []scriptedRead
	writes    []string
	readCalls int
	closed    bool
}

func NewScriptedTransport() *ScriptedTransport {
	return &ScriptedTransport{}
}

// Lines queues lines to be returned by subsequent reads.
func (t *ScriptedTransport) Lines(lines ...string) *ScriptedTransport {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, l := range lines {
		t.reads = append(t.reads, scriptedRead{line: l, present: true})
	}
	return t
}

// Silence queues n reads that time out.
func (t *ScriptedTransport) Silence(n int) *ScriptedTransport {
	t.mu.Lock()
	defer t.mu.Unlock()
	for range n {
		t.reads = append(t.reads, scriptedRead{})
	}
	return t
}

func (t *ScriptedTransport) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, ErrTransportClosed
	}
	t.writes = append(t.writes, string(p))
	return len(p), nil
}

func (t *ScriptedTransport) ReadLine(timeout time.Duration) ([]byte, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, false, ErrTransportClosed
	}
	t.readCalls++
	if len(t.reads) == 0 {
		return nil, false, nil
	}
	r := t.reads[0]
	t.reads = t.reads[1:]
	if !r.present {
		return nil, false, nil
	}
	return []byte(r.line), true, nil
}

func (t *ScriptedTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// Writes returns every command written so far, terminators included.
func (t *ScriptedTransport) Writes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.writes...)
}

// ReadCalls returns how many times ReadLine has been called.
func (t *ScriptedTransport) ReadCalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readCalls
}

// Remaining returns the queued lines not consumed yet, skipping timeouts.
func (t *ScriptedTransport) Remaining() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []string
	for _, r := range t.reads {
		if r.present {
			out = append(out, r.line)
		}
	}
	return out
}

// Closed reports whether Close has been called.
func (t *ScriptedTransport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Dialer returns a Dialer that always hands out t.
func (t *ScriptedTransport) Dialer() Dialer {
	return DialerFunc(func(ctx context.Context) (Transport, error) {
		return t, nil
	})
}

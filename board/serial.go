package board

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"i4.energy/across/fhttp/tag"
)

// maxLineLength bounds how many bytes may be buffered without a newline.
const maxLineLength = 4096

// port is the subset of serial.Port the line transport relies on.
type port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// lineTransport turns a byte-stream port into a Transport. Bytes read
// past the end of a line stay in pending for the next ReadLine call.
//
// ReadLine is not safe for concurrent use; Board serializes callers.
// Close may be called from any goroutine to abort a blocked read.
type lineTransport struct {
	port    port
	pending []byte
	buf     []byte
	closed  atomic.Bool
}

func newLineTransport(p port) *lineTransport {
	return &lineTransport{
		port: p,
		buf:  make([]byte, 256),
	}
}

func (t *lineTransport) Write(p []byte) (int, error) {
	if t.closed.Load() {
		return 0, ErrTransportClosed
	}
	return t.port.Write(p)
}

func (t *lineTransport) ReadLine(timeout time.Duration) ([]byte, bool, error) {
	deadline := time.Now().Add(timeout)

	for {
		if t.closed.Load() {
			return nil, false, ErrTransportClosed
		}

		if advance, token, _ := tag.Splitter(t.pending, false); advance > 0 {
			line := append([]byte{}, token...)
			t.pending = t.pending[advance:]
			return line, true, nil
		}

		if len(t.pending) > maxLineLength {
			t.pending = nil
			return nil, false, ErrLineTooLong
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, false, nil
		}
		if err := t.port.SetReadTimeout(remaining); err != nil {
			return nil, false, fmt.Errorf("set read timeout: %w", err)
		}

		n, err := t.port.Read(t.buf)
		if n > 0 {
			t.pending = append(t.pending, t.buf[:n]...)
		}
		if err != nil {
			if t.closed.Load() || errors.Is(err, io.EOF) {
				return nil, false, ErrTransportClosed
			}
			return nil, false, fmt.Errorf("read: %w", err)
		}
		if n == 0 {
			// go.bug.st/serial returns (0, nil) when the read timeout expires
			return nil, false, nil
		}
	}
}

func (t *lineTransport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	return t.port.Close()
}

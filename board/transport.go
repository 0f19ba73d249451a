package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// DefaultBaudRate is the UART speed the dev board firmware listens on.
const DefaultBaudRate = 115200

// Transport represents an established, line-oriented link to the dev board.
//
// A Transport is assumed to be already connected and ready for use. Writes
// send raw command bytes. ReadLine returns at most one logical line per
// call, without its terminator. If no complete line arrives within timeout,
// ReadLine reports ok == false with a nil error. That is how a silent board
// is told apart from one that sent an empty line. A non-nil error means the
// link itself failed or was closed.
//
// Typical implementations include the serial port transport returned by
// SerialDialer and in-memory fakes used for testing.
type Transport interface {
	io.Writer
	ReadLine(timeout time.Duration) (line []byte, ok bool, err error)
	Close() error
}

// Dialer opens a Transport to the dev board.
//
// Dialer abstracts how the board connection is created (for example, via a
// serial port or a test double) and is used during Board construction only.
type Dialer interface {
	// Dial creates and returns a connected Transport. It may perform
	// blocking operations and should respect cancellation of ctx.
	Dial(ctx context.Context) (Transport, error)
}

// DialerFunc adapts an ordinary function to the Dialer interface.
type DialerFunc func(ctx context.Context) (Transport, error)

func (f DialerFunc) Dial(ctx context.Context) (Transport, error) {
	return f(ctx)
}

// SerialDialer opens the board over a local serial port using
// go.bug.st/serial.
type SerialDialer struct {
	// PortName is the device path, e.g. "/dev/ttyACM0" or "COM3".
	PortName string
	// BaudRate defaults to DefaultBaudRate when zero. Ignored if Mode is set.
	BaudRate int
	// Mode overrides the full line configuration (optional).
	Mode *serial.Mode
}

func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, errors.New("board: context is nil")
	}
	if d.PortName == "" {
		return nil, errors.New("board: serial port name is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	port, err := serial.Open(d.PortName, d.mode())
	if err != nil {
		return nil, fmt.Errorf("board: open %s: %w", d.PortName, err)
	}
	return newLineTransport(port), nil
}

// mode is Mode if set, otherwise 8N1 at BaudRate.
func (d SerialDialer) mode() *serial.Mode {
	if d.Mode != nil {
		return d.Mode
	}
	baud := d.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

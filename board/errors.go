package board

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDialer is returned when a Board is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order to
	// establish a connection to the board.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNotInitialized is returned when the Dialer produced no Transport.
	ErrNotInitialized = errors.New("board not initialized")

	// ErrAlreadyClosed is returned by Close on a Board that has already been
	// closed, and by every operation attempted after Close.
	ErrAlreadyClosed = errors.New("board already closed")

	// ErrTransportClosed is returned by a Transport whose underlying link
	// has been closed, including reads aborted by a concurrent Close.
	ErrTransportClosed = errors.New("transport closed")

	// ErrTimeout is returned when no line arrived within the read budget.
	ErrTimeout = errors.New("no response from board")

	// ErrEmptyPayload is returned when the board printed the end tag of a
	// request before any body line.
	ErrEmptyPayload = errors.New("board returned no payload")

	// ErrMissingCredentials is returned by SaveWiFi when the SSID or the
	// password is empty. Nothing is sent to the board in that case.
	ErrMissingCredentials = errors.New("ssid and password are required")

	// ErrInvalidMethod is returned by Request for verbs the board does not
	// support.
	ErrInvalidMethod = errors.New("unsupported request method")

	// ErrLineTooLong is returned when the board sends more than
	// maxLineLength bytes without a newline.
	//
	// This typically indicates binary data on the line or a baud rate
	// mismatch.
	ErrLineTooLong = errors.New("response line too long")
)

// MalformedAckError is returned when the board answered, but not with the
// line the command expects.
type MalformedAckError struct {
	// Command is the command tag that was sent, e.g. "[GET/HTTP]"
	Command string

	// Line is what the board sent instead
	Line string
}

func (e *MalformedAckError) Error() string {
	return fmt.Sprintf("unexpected response to %s: %q", e.Command, e.Line)
}

// IsMalformedAck returns true if err is or wraps a MalformedAckError.
func IsMalformedAck(err error) bool {
	var e *MalformedAckError
	return errors.As(err, &e)
}

package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"i4.energy/across/fhttp/tag"
)

// Board drives a FlipperHTTP-style WiFi dev board over a line transport.
//
// Every operation writes one command and fully consumes its reply before
// returning. A mutex keeps a second command from being written while
// another reply is still being drained, so a Board may be shared between
// goroutines. Requests are never pipelined.
type Board struct {
	// mu serializes operations; one request is in flight at a time
	mu sync.Mutex
	// transport is the line link to the board, owned until Close
	transport Transport
	// config holds timeouts and retry budgets, with defaults applied
	config Config
	logger *slog.Logger
	// closed is set once by Close and checked by every operation
	closed atomic.Bool
}

// New dials the board described by config and returns a ready Board.
// The returned Board owns the transport and must be released with Close.
func New(ctx context.Context, config Config) (*Board, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	config.setDefaults()

	transport, err := config.Dialer.Dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("dial board: %w", err)
	}
	if transport == nil {
		return nil, ErrNotInitialized
	}

	return &Board{
		transport: transport,
		config:    config,
		logger:    config.Logger,
	}, nil
}

// Close releases the transport. A read blocked inside an operation is
// aborted and that operation returns an error. After Close, the Board
// cannot be reused.
func (b *Board) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return ErrAlreadyClosed
	}
	return b.transport.Close()
}

// acquire takes the operation lock. On success the caller must call
// b.mu.Unlock.
func (b *Board) acquire() error {
	b.mu.Lock()
	if b.closed.Load() {
		b.mu.Unlock()
		return ErrAlreadyClosed
	}
	return nil
}

// send writes cmd followed by the line terminator. Empty commands are
// silently skipped.
func (b *Board) send(cmd string) error {
	if cmd == "" {
		return nil
	}
	if _, err := b.transport.Write([]byte(cmd + tag.LineEnd)); err != nil {
		return fmt.Errorf("write command %q: %w", cmd, err)
	}
	return nil
}

// readData polls the transport for one line, retrying absent reads with the
// same timeout up to ReadAttempts times in total. It returns ErrTimeout
// once the attempts are used up.
func (b *Board) readData(ctx context.Context, timeout time.Duration) (string, error) {
	for range b.config.ReadAttempts {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		line, ok, err := b.transport.ReadLine(timeout)
		if err != nil {
			return "", fmt.Errorf("read line: %w", err)
		}
		if ok {
			return string(line), nil
		}
	}
	return "", ErrTimeout
}

// clearBuffer discards stale lines until a recognized status tag shows up,
// the board goes quiet, or DrainLines reads have been made. SUCCESS only
// ends the drain when requireSuccess is set. It returns the number of lines
// thrown away.
func (b *Board) clearBuffer(ctx context.Context, requireSuccess bool) int {
	discarded := 0
	for discarded < b.config.DrainLines {
		line, err := b.readData(ctx, b.config.DrainTimeout)
		if err != nil {
			return discarded
		}
		if tag.Stops(line, requireSuccess) {
			return discarded
		}
		b.logger.Debug("Discarded stale line", "line", line)
		discarded++
	}
	return discarded
}

// confirm runs a single-reply command. The first line must contain one of
// accept. The buffer is only drained when a reply arrived at all.
func (b *Board) confirm(ctx context.Context, cmd string, timeout time.Duration, accept ...string) error {
	if err := b.send(cmd); err != nil {
		return err
	}

	line, err := b.readData(ctx, timeout)
	if err != nil {
		return err
	}
	b.clearBuffer(ctx, true)

	if !tag.ContainsAny(line, accept...) {
		return &MalformedAckError{Command: cmd, Line: line}
	}
	return nil
}

// query runs a command whose reply is exactly one line and returns it.
func (b *Board) query(ctx context.Context, cmd string) (string, error) {
	if err := b.send(cmd); err != nil {
		return "", err
	}
	return b.readData(ctx, b.config.ReadTimeout)
}

// exchange is one ack-framed request: cmd is answered by the method's
// ack, zero or more body lines, then its end tag.
type exchange struct {
	method tag.Method
	// name is the command tag used in errors, so that payloads and
	// credentials do not leak into logs.
	name string
	cmd  string
	// raw bodies are always collected whole, and the blank line the
	// board prints before the end tag is dropped.
	raw bool
}

// fetch runs an HTTP request on the board. The reply is an ack line, the
// body, then the method's end tag:
//
//	[GET/SUCCESS] GET request successful.
//	{"fact":"..."}
//	[GET/END]
//
// Only silent polls count against BodyPolls; a board that keeps sending
// lines is read until it prints the end tag.
func (b *Board) fetch(ctx context.Context, x exchange) (string, error) {
	if err := b.send(x.cmd); err != nil {
		return "", err
	}

	ack, err := b.readData(ctx, b.config.ReadTimeout)
	acked := tag.IsAck(x.method, ack)
	if x.raw {
		acked = ack == x.method.BytesAck()
	}
	if err != nil || !acked {
		b.logger.Warn("Request not acknowledged", "method", x.method, "line", ack, "error", err)
		b.clearBuffer(ctx, false)
		if err != nil {
			return "", err
		}
		return "", &MalformedAckError{Command: x.name, Line: ack}
	}

	end := x.method.EndTag()
	accumulate := x.raw || b.config.BodyMode == BodyAccumulate
	var body []string

	for idle := 0; idle < b.config.BodyPolls; {
		line, err := b.readData(ctx, b.config.ReadTimeout)
		if errors.Is(err, ErrTimeout) {
			idle++
			continue
		}
		if err != nil {
			return "", err
		}

		if line == end {
			b.clearBuffer(ctx, false)
			if x.raw && len(body) > 0 && body[len(body)-1] == "" {
				body = body[:len(body)-1]
			}
			if len(body) == 0 {
				return "", ErrEmptyPayload
			}
			return strings.Join(body, "\n"), nil
		}

		if !accumulate {
			b.clearBuffer(ctx, false)
			return line, nil
		}
		body = append(body, line)
	}

	b.logger.Warn("Request body incomplete", "method", x.method, "lines", len(body))
	b.clearBuffer(ctx, false)
	return "", fmt.Errorf("waiting for %s: %w", end, ErrTimeout)
}

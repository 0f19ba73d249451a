package board_test

import (
	"time"

	gomock "go.uber.org/mock/gomock"
	"i4.energy/across/fhttp/board"
)

// MockSequenceBuilder records an ordered list of transport expectations.
type MockSequenceBuilder struct {
	transport *board.MockTransport
	calls     []any
}

func NewMockSequence(transport *board.MockTransport) *MockSequenceBuilder {
	return &MockSequenceBuilder{
		transport: transport,
		calls:     []any{},
	}
}

// Send expects cmd to be written with its line terminator.
func (b *MockSequenceBuilder) Send(cmd string) *MockSequenceBuilder {
	wire := []byte(cmd + "\n")
	b.calls = append(b.calls,
		b.transport.EXPECT().Write(wire).Return(len(wire), nil),
	)
	return b
}

// Reply expects one read with timeout that returns line.
func (b *MockSequenceBuilder) Reply(timeout time.Duration, line string) *MockSequenceBuilder {
	b.calls = append(b.calls,
		b.transport.EXPECT().ReadLine(timeout).Return([]byte(line), true, nil),
	)
	return b
}

// Silent expects n reads with timeout that return nothing.
func (b *MockSequenceBuilder) Silent(timeout time.Duration, n int) *MockSequenceBuilder {
	b.calls = append(b.calls,
		b.transport.EXPECT().ReadLine(timeout).Return(nil, false, nil).Times(n),
	)
	return b
}

func (b *MockSequenceBuilder) Build() []any {
	return b.calls
}

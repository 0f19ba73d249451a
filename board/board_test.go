package board_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"
	"i4.energy/across/fhttp/board"
)

// newScriptedBoard builds a Board on top of script with the given builder
// tweaks applied.
func newScriptedBoard(t *testing.T, script *board.ScriptedTransport, opts ...func(*board.ConfigBuilder)) *board.Board {
	t.Helper()

	builder := board.NewConfigBuilder().WithDialer(script.Dialer())
	for _, opt := range opts {
		opt(builder)
	}
	config, err := builder.Build()
	if err != nil {
		t.Fatalf("unexpected error from Build(): %v", err)
	}

	b, err := board.New(context.Background(), config)
	if err != nil {
		t.Fatalf("failed to create board: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestBoardNew(t *testing.T) {
	t.Run("Initialization Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockTransport := board.NewMockTransport(ctrl)
		mockDialer := board.NewMockDialer(ctrl)

		gomock.InOrder(
			mockDialer.EXPECT().Dial(gomock.Any()).Return(mockTransport, nil),
			mockTransport.EXPECT().Close().Return(nil),
		)

		config, err := board.NewConfigBuilder().
			WithDialer(mockDialer).
			Build()
		if err != nil {
			t.Errorf("unexpected error from Build(): %v", err)
		}

		b, err := board.New(context.Background(), config)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b == nil {
			t.Fatal("New() should return valid board on success")
		}

		if err := b.Close(); err != nil {
			t.Errorf("unexpected error from Close(): %v", err)
		}
	})

	t.Run("Dialer error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		dialErr := errors.New("connection failed")
		mockDialer := board.NewMockDialer(ctrl)
		mockDialer.EXPECT().Dial(gomock.Any()).Return(nil, dialErr)

		config, err := board.NewConfigBuilder().
			WithDialer(mockDialer).
			Build()
		if err != nil {
			t.Errorf("unexpected error from Build(): %v", err)
		}

		b, err := board.New(context.Background(), config)
		if !errors.Is(err, dialErr) {
			t.Errorf("expected wrapped dial error, got: %v", err)
		}
		if b != nil {
			t.Error("New() should return nil board when dialer fails")
		}
	})

	t.Run("ErrNoDialer when no dialer provided", func(t *testing.T) {
		b, err := board.New(context.Background(), board.Config{})
		if !errors.Is(err, board.ErrNoDialer) {
			t.Errorf("expected ErrNoDialer from New(), got: %v", err)
		}
		if b != nil {
			t.Error("New() should return nil board when no dialer provided")
		}
	})

	t.Run("ErrNotInitialized on nil transport", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDialer := board.NewMockDialer(ctrl)
		mockDialer.EXPECT().Dial(gomock.Any()).Return(nil, nil)

		_, err := board.New(context.Background(), board.Config{Dialer: mockDialer})
		if !errors.Is(err, board.ErrNotInitialized) {
			t.Errorf("expected ErrNotInitialized from New(), got: %v", err)
		}
	})
}

func TestBoardClose(t *testing.T) {
	t.Run("Returns transport error on close failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockTransport := board.NewMockTransport(ctrl)
		mockDialer := board.NewMockDialer(ctrl)

		closeError := errors.New("transport close failed")
		gomock.InOrder(
			mockDialer.EXPECT().Dial(gomock.Any()).Return(mockTransport, nil),
			mockTransport.EXPECT().Close().Return(closeError),
		)

		b, err := board.New(context.Background(), board.Config{Dialer: mockDialer})
		if err != nil {
			t.Fatalf("unexpected error from New(): %v", err)
		}

		if err := b.Close(); err != closeError {
			t.Errorf("expected transport error, got: %v", err)
		}
	})

	t.Run("ErrAlreadyClosed on double close", func(t *testing.T) {
		script := board.NewScriptedTransport()
		b := newScriptedBoard(t, script)

		if err := b.Close(); err != nil {
			t.Errorf("first close should succeed, got error: %v", err)
		}
		if !script.Closed() {
			t.Error("expected transport to be closed")
		}
		if err := b.Close(); err != board.ErrAlreadyClosed {
			t.Errorf("expected ErrAlreadyClosed on second close, got: %v", err)
		}
	})

	t.Run("Operations fail after close", func(t *testing.T) {
		script := board.NewScriptedTransport().Lines("[PONG]")
		b := newScriptedBoard(t, script)
		b.Close()

		ctx := context.Background()
		if err := b.Ping(ctx); !errors.Is(err, board.ErrAlreadyClosed) {
			t.Errorf("Ping: expected ErrAlreadyClosed, got: %v", err)
		}
		if _, err := b.Get(ctx, "http://example.com"); !errors.Is(err, board.ErrAlreadyClosed) {
			t.Errorf("Get: expected ErrAlreadyClosed, got: %v", err)
		}
		if err := b.LEDOn(); !errors.Is(err, board.ErrAlreadyClosed) {
			t.Errorf("LEDOn: expected ErrAlreadyClosed, got: %v", err)
		}
		if len(script.Writes()) != 0 {
			t.Errorf("expected no writes after close, got %q", script.Writes())
		}
	})
}

package lua

import (
	"context"
	"io"
	"log/slog"

	glua "github.com/yuin/gopher-lua"

	"i4.energy/across/fhttp/board"
)

// ModuleName is the global and require() name scripts use.
const ModuleName = "fhttp"

// Driver is the board surface exposed to scripts. *board.Board implements it.
type Driver interface {
	Ping(ctx context.Context) error
	ConnectWiFi(ctx context.Context) error
	DisconnectWiFi(ctx context.Context) error
	SaveWiFi(ctx context.Context, ssid, password string) error
	ListCommands(ctx context.Context) (string, error)
	ScanWiFi(ctx context.Context) (string, error)
	IPAddress(ctx context.Context) (string, error)
	WiFiIP(ctx context.Context) (string, error)
	ParseJSON(ctx context.Context, key, data string) (string, error)
	ParseJSONArray(ctx context.Context, key string, index int, data string) (string, error)
	LEDOn() error
	LEDOff() error
	Get(ctx context.Context, url string) (string, error)
	GetWithHeaders(ctx context.Context, url, headers string) (string, error)
	PostWithHeaders(ctx context.Context, url, headers, payload string) (string, error)
	PutWithHeaders(ctx context.Context, url, headers, payload string) (string, error)
	DeleteWithHeaders(ctx context.Context, url, headers, payload string) (string, error)
	GetBytes(ctx context.Context, url, headers string) ([]byte, error)
	PostBytes(ctx context.Context, url, headers, payload string) ([]byte, error)
	Close() error
}

// Opener connects a Driver when a script calls fhttp.init().
type Opener func(ctx context.Context) (Driver, error)

// BoardOpener returns an Opener that dials a board.Board with config.
func BoardOpener(config board.Config) Opener {
	return func(ctx context.Context) (Driver, error) {
		b, err := board.New(ctx, config)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}

// Module is the fhttp scripting API. It keeps the legacy contract: every
// call returns a boolean or a string, and failures of any kind become
// false or "". The underlying error is logged instead.
//
// A Module belongs to a single LState and is not safe for concurrent use.
type Module struct {
	open   Opener
	logger *slog.Logger
	driver Driver
}

// NewModule creates a Module that opens the board through open.
// A nil logger discards failure details.
func NewModule(open Opener, logger *slog.Logger) *Module {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Module{
		open:   open,
		logger: logger,
	}
}

// Register exposes the module as the global fhttp and makes
// require("fhttp") return the same table.
func (m *Module) Register(L *glua.LState) {
	tbl := L.SetFuncs(L.NewTable(), m.exports())
	L.SetGlobal(ModuleName, tbl)
	L.PreloadModule(ModuleName, func(L *glua.LState) int {
		L.Push(tbl)
		return 1
	})
}

// Close releases the board if a script left it open.
func (m *Module) Close() error {
	if m.driver == nil {
		return nil
	}
	err := m.driver.Close()
	m.driver = nil
	return err
}

func (m *Module) exports() map[string]glua.LGFunction {
	return map[string]glua.LGFunction{
		"init":   m.init,
		"deinit": m.deinit,

		"ping": m.boolCall("ping", func(ctx context.Context, L *glua.LState, d Driver) error {
			return d.Ping(ctx)
		}),
		"connect_wifi": m.boolCall("connect_wifi", func(ctx context.Context, L *glua.LState, d Driver) error {
			return d.ConnectWiFi(ctx)
		}),
		"disconnect_wifi": m.boolCall("disconnect_wifi", func(ctx context.Context, L *glua.LState, d Driver) error {
			return d.DisconnectWiFi(ctx)
		}),
		"save_wifi": m.boolCall("save_wifi", func(ctx context.Context, L *glua.LState, d Driver) error {
			return d.SaveWiFi(ctx, L.CheckString(1), L.CheckString(2))
		}),

		"led_on": m.voidCall("led_on", func(d Driver) error {
			return d.LEDOn()
		}),
		"led_off": m.voidCall("led_off", func(d Driver) error {
			return d.LEDOff()
		}),

		"list_commands": m.stringCall("list_commands", func(ctx context.Context, L *glua.LState, d Driver) (string, error) {
			return d.ListCommands(ctx)
		}),
		"scan_wifi": m.stringCall("scan_wifi", func(ctx context.Context, L *glua.LState, d Driver) (string, error) {
			return d.ScanWiFi(ctx)
		}),
		"ip_address": m.stringCall("ip_address", func(ctx context.Context, L *glua.LState, d Driver) (string, error) {
			return d.IPAddress(ctx)
		}),
		"wifi_ip": m.stringCall("wifi_ip", func(ctx context.Context, L *glua.LState, d Driver) (string, error) {
			return d.WiFiIP(ctx)
		}),
		"parse_json": m.stringCall("parse_json", func(ctx context.Context, L *glua.LState, d Driver) (string, error) {
			return d.ParseJSON(ctx, L.CheckString(1), L.CheckString(2))
		}),
		"parse_json_array": m.stringCall("parse_json_array", func(ctx context.Context, L *glua.LState, d Driver) (string, error) {
			return d.ParseJSONArray(ctx, L.CheckString(1), L.CheckInt(2), L.CheckString(3))
		}),
		"get": m.stringCall("get", func(ctx context.Context, L *glua.LState, d Driver) (string, error) {
			return d.Get(ctx, L.CheckString(1))
		}),
		"get_with_headers": m.stringCall("get_with_headers", func(ctx context.Context, L *glua.LState, d Driver) (string, error) {
			return d.GetWithHeaders(ctx, L.CheckString(1), L.CheckString(2))
		}),
		"post_with_headers": m.stringCall("post_with_headers", func(ctx context.Context, L *glua.LState, d Driver) (string, error) {
			return d.PostWithHeaders(ctx, L.CheckString(1), L.CheckString(2), L.CheckString(3))
		}),
		"put_with_headers": m.stringCall("put_with_headers", func(ctx context.Context, L *glua.LState, d Driver) (string, error) {
			return d.PutWithHeaders(ctx, L.CheckString(1), L.CheckString(2), L.CheckString(3))
		}),
		"delete_with_headers": m.stringCall("delete_with_headers", func(ctx context.Context, L *glua.LState, d Driver) (string, error) {
			return d.DeleteWithHeaders(ctx, L.CheckString(1), L.CheckString(2), L.CheckString(3))
		}),
		"get_bytes": m.stringCall("get_bytes", func(ctx context.Context, L *glua.LState, d Driver) (string, error) {
			body, err := d.GetBytes(ctx, L.CheckString(1), L.CheckString(2))
			return string(body), err
		}),
		"post_bytes": m.stringCall("post_bytes", func(ctx context.Context, L *glua.LState, d Driver) (string, error) {
			body, err := d.PostBytes(ctx, L.CheckString(1), L.CheckString(2), L.CheckString(3))
			return string(body), err
		}),
	}
}

// fhttp.init() -> bool
func (m *Module) init(L *glua.LState) int {
	if m.driver != nil {
		L.Push(glua.LTrue)
		return 1
	}
	d, err := m.open(stateContext(L))
	if err != nil {
		m.logger.Error("Failed to open board", "error", err)
		L.Push(glua.LFalse)
		return 1
	}
	m.driver = d
	L.Push(glua.LTrue)
	return 1
}

// fhttp.deinit() -> bool
func (m *Module) deinit(L *glua.LState) int {
	if m.driver == nil {
		L.Push(glua.LFalse)
		return 1
	}
	if err := m.Close(); err != nil {
		m.logger.Warn("Failed to close board", "error", err)
		L.Push(glua.LFalse)
		return 1
	}
	L.Push(glua.LTrue)
	return 1
}

func (m *Module) boolCall(name string, call func(context.Context, *glua.LState, Driver) error) glua.LGFunction {
	return func(L *glua.LState) int {
		if m.driver == nil {
			m.logger.Warn("Board not initialized", "call", name)
			L.Push(glua.LFalse)
			return 1
		}
		if err := call(stateContext(L), L, m.driver); err != nil {
			m.logger.Warn("Board call failed", "call", name, "error", err)
			L.Push(glua.LFalse)
			return 1
		}
		L.Push(glua.LTrue)
		return 1
	}
}

func (m *Module) stringCall(name string, call func(context.Context, *glua.LState, Driver) (string, error)) glua.LGFunction {
	return func(L *glua.LState) int {
		if m.driver == nil {
			m.logger.Warn("Board not initialized", "call", name)
			L.Push(glua.LString(""))
			return 1
		}
		s, err := call(stateContext(L), L, m.driver)
		if err != nil {
			m.logger.Warn("Board call failed", "call", name, "error", err)
			s = ""
		}
		L.Push(glua.LString(s))
		return 1
	}
}

func (m *Module) voidCall(name string, call func(Driver) error) glua.LGFunction {
	return func(L *glua.LState) int {
		if m.driver == nil {
			m.logger.Warn("Board not initialized", "call", name)
			return 0
		}
		if err := call(m.driver); err != nil {
			m.logger.Warn("Board call failed", "call", name, "error", err)
		}
		return 0
	}
}

func stateContext(L *glua.LState) context.Context {
	if ctx := L.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

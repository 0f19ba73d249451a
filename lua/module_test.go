package lua

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	glua "github.com/yuin/gopher-lua"

	"i4.energy/across/fhttp/board"
	"i4.energy/across/fhttp/tag"
)

// setupTest creates a runner whose fhttp.init() opens a board on script.
func setupTest(t *testing.T, script *board.ScriptedTransport) *Runner {
	t.Helper()

	config, err := board.NewConfigBuilder().
		WithDialer(script.Dialer()).
		Build()
	require.NoError(t, err)

	runner := NewRunner(context.Background(), NewModule(BoardOpener(config), nil))
	t.Cleanup(func() { runner.Close() })
	return runner
}

func global(r *Runner, name string) glua.LValue {
	return r.L.GetGlobal(name)
}

func TestPing(t *testing.T) {
	t.Run("PONG then timeout", func(t *testing.T) {
		r := setupTest(t, board.NewScriptedTransport().Lines("[PONG]"))

		require.NoError(t, r.DoString("ping", `ok = fhttp.init(); pong = fhttp.ping()`))
		assert.Equal(t, glua.LTrue, global(r, "ok"))
		assert.Equal(t, glua.LTrue, global(r, "pong"))
	})

	t.Run("Only timeout", func(t *testing.T) {
		r := setupTest(t, board.NewScriptedTransport())

		require.NoError(t, r.DoString("ping", `fhttp.init(); pong = fhttp.ping()`))
		assert.Equal(t, glua.LFalse, global(r, "pong"))
	})
}

func TestGet(t *testing.T) {
	ack := tag.MethodGet.Ack()

	t.Run("Empty payload collapses to empty string", func(t *testing.T) {
		r := setupTest(t, board.NewScriptedTransport().Lines(ack, "[GET/END]"))

		require.NoError(t, r.DoString("get", `fhttp.init(); body = fhttp.get("http://example.com")`))
		assert.Equal(t, glua.LString(""), global(r, "body"))
	})

	t.Run("Body line is returned", func(t *testing.T) {
		script := board.NewScriptedTransport().Lines(ack, "hello", "[GET/END]", "[PONG]")
		r := setupTest(t, script)

		require.NoError(t, r.DoString("get", `
			fhttp.init()
			body = fhttp.get("http://example.com")
			pong = fhttp.ping()
		`))
		assert.Equal(t, glua.LString("hello"), global(r, "body"))
		assert.Equal(t, glua.LTrue, global(r, "pong"))
		assert.Equal(t, []string{"[GET]http://example.com\n", "[PING]\n"}, script.Writes())
	})

	t.Run("Headers variants", func(t *testing.T) {
		script := board.NewScriptedTransport().
			Lines(tag.MethodPost.Ack(), `{"id":1}`, tag.MethodPost.EndTag())
		r := setupTest(t, script)

		require.NoError(t, r.DoString("post", `
			fhttp.init()
			body = fhttp.post_with_headers("http://x", '{"Content-Type":"application/json"}', '{"a":1}')
		`))
		assert.Equal(t, glua.LString(`{"id":1}`), global(r, "body"))
		assert.Equal(t,
			[]string{`[POST/HTTP]{"url":"http://x","headers":{"Content-Type":"application/json"},"payload":{"a":1}}` + "\n"},
			script.Writes())
	})
}

func TestBytes(t *testing.T) {
	t.Run("get_bytes returns the streamed body", func(t *testing.T) {
		script := board.NewScriptedTransport().Lines("[GET/SUCCESS]", "GIF89a", "", "[GET/END]")
		r := setupTest(t, script)

		require.NoError(t, r.DoString("bytes", `
			fhttp.init()
			body = fhttp.get_bytes("http://x/a.gif", "{}")
		`))
		assert.Equal(t, glua.LString("GIF89a"), global(r, "body"))
		assert.Equal(t, []string{`[GET/BYTES]{"url":"http://x/a.gif","headers":{}}` + "\n"}, script.Writes())
	})

	t.Run("post_bytes failure collapses to empty string", func(t *testing.T) {
		script := board.NewScriptedTransport().Lines("[ERROR] POST request failed or returned empty data.")
		r := setupTest(t, script)

		require.NoError(t, r.DoString("bytes", `
			fhttp.init()
			body = fhttp.post_bytes("http://x", "{}", '{"a":1}')
		`))
		assert.Equal(t, glua.LString(""), global(r, "body"))
	})
}

func TestSaveWiFi(t *testing.T) {
	t.Run("Empty field never transmits", func(t *testing.T) {
		script := board.NewScriptedTransport()
		r := setupTest(t, script)

		require.NoError(t, r.DoString("save", `
			fhttp.init()
			a = fhttp.save_wifi("", "x")
			b = fhttp.save_wifi("x", "")
		`))
		assert.Equal(t, glua.LFalse, global(r, "a"))
		assert.Equal(t, glua.LFalse, global(r, "b"))
		assert.Empty(t, script.Writes())
	})

	t.Run("Saved", func(t *testing.T) {
		script := board.NewScriptedTransport().Lines("[SUCCESS] Wifi settings saved.")
		r := setupTest(t, script)

		require.NoError(t, r.DoString("save", `fhttp.init(); ok = fhttp.save_wifi("a", "b")`))
		assert.Equal(t, glua.LTrue, global(r, "ok"))
		assert.Equal(t, []string{`[WIFI/SAVE]{"ssid":"a","password":"b"}` + "\n"}, script.Writes())
	})
}

func TestQueries(t *testing.T) {
	script := board.NewScriptedTransport().Lines("192.168.1.42", "203.0.113.7", "2")
	r := setupTest(t, script)

	require.NoError(t, r.DoString("query", `
		fhttp.init()
		ip = fhttp.ip_address()
		public = fhttp.wifi_ip()
		second = fhttp.parse_json_array("n", 1, '{"n":[1,2]}')
		scan = fhttp.scan_wifi()
	`))
	assert.Equal(t, glua.LString("192.168.1.42"), global(r, "ip"))
	assert.Equal(t, glua.LString("203.0.113.7"), global(r, "public"))
	assert.Equal(t, glua.LString("2"), global(r, "second"))
	assert.Equal(t, glua.LString(""), global(r, "scan"))
	assert.Equal(t, `[PARSE/ARRAY]{"key":"n","index":1,"data":{"n":[1,2]}}`+"\n", script.Writes()[2])
}

func TestLifecycle(t *testing.T) {
	t.Run("Calls before init fail softly", func(t *testing.T) {
		script := board.NewScriptedTransport().Lines("[PONG]")
		r := setupTest(t, script)

		require.NoError(t, r.DoString("early", `
			pong = fhttp.ping()
			body = fhttp.get("http://x")
			fhttp.led_on()
		`))
		assert.Equal(t, glua.LFalse, global(r, "pong"))
		assert.Equal(t, glua.LString(""), global(r, "body"))
		assert.Empty(t, script.Writes())
	})

	t.Run("deinit closes the board", func(t *testing.T) {
		script := board.NewScriptedTransport()
		r := setupTest(t, script)

		require.NoError(t, r.DoString("life", `
			fhttp.init()
			fhttp.led_on()
			closed = fhttp.deinit()
			again = fhttp.deinit()
			fhttp.led_off()
		`))
		assert.Equal(t, glua.LTrue, global(r, "closed"))
		assert.Equal(t, glua.LFalse, global(r, "again"))
		assert.True(t, script.Closed())
		assert.Equal(t, []string{"[LED/ON]\n"}, script.Writes())
	})

	t.Run("init reports dial failure", func(t *testing.T) {
		open := func(ctx context.Context) (Driver, error) {
			return nil, errors.New("no such port")
		}
		r := NewRunner(context.Background(), NewModule(open, nil))
		defer r.Close()

		require.NoError(t, r.DoString("init", `ok = fhttp.init()`))
		assert.Equal(t, glua.LFalse, global(r, "ok"))
	})

	t.Run("require returns the module", func(t *testing.T) {
		r := setupTest(t, board.NewScriptedTransport().Lines("[PONG]"))

		require.NoError(t, r.DoString("require", `
			local f = require("fhttp")
			same = (f == fhttp)
			f.init()
			pong = f.ping()
		`))
		assert.Equal(t, glua.LTrue, global(r, "same"))
		assert.Equal(t, glua.LTrue, global(r, "pong"))
	})

	t.Run("Bad arguments raise a Lua error", func(t *testing.T) {
		r := setupTest(t, board.NewScriptedTransport())

		err := r.DoString("args", `fhttp.init(); fhttp.get()`)
		assert.Error(t, err)
	})
}

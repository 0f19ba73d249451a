package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i4.energy/across/fhttp/board"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		config, err := LoadConfig(WithDefaults())
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0:8080", config.BindAddress)
		assert.Equal(t, "/dev/ttyACM0", config.SerialPort)
		assert.Equal(t, 115200, config.BaudRate)
		assert.Equal(t, "info", config.LogLevel)
		assert.Equal(t, "first-line", config.BodyMode)
		assert.Equal(t, 500*time.Millisecond, config.ReadTimeout)
	})

	t.Run("File overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fhttp.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
serial_port: /dev/ttyUSB1
baud_rate: 9600
body_mode: accumulate
read_timeout: 750ms
`), 0o600))

		config, err := LoadConfig(WithDefaults(), WithFile(path))
		require.NoError(t, err)

		assert.Equal(t, "/dev/ttyUSB1", config.SerialPort)
		assert.Equal(t, 9600, config.BaudRate)
		assert.Equal(t, "accumulate", config.BodyMode)
		assert.Equal(t, 750*time.Millisecond, config.ReadTimeout)
		assert.Equal(t, "0.0.0.0:8080", config.BindAddress)
	})

	t.Run("Empty file path is ignored", func(t *testing.T) {
		_, err := LoadConfig(WithDefaults(), WithFile(""))
		assert.NoError(t, err)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := LoadConfig(WithFile(filepath.Join(t.TempDir(), "nope.yaml")))
		assert.Error(t, err)
	})

	t.Run("Bad duration in file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fhttp.yaml")
		require.NoError(t, os.WriteFile(path, []byte("read_timeout: soon\n"), 0o600))

		_, err := LoadConfig(WithFile(path))
		assert.ErrorContains(t, err, "read_timeout")
	})

	t.Run("Env overrides file", func(t *testing.T) {
		t.Setenv("SERIAL_PORT", "/dev/ttyS0")
		t.Setenv("BAUD_RATE", "57600")
		t.Setenv("READ_TIMEOUT", "1s")

		config, err := LoadConfig(WithDefaults(), WithEnv())
		require.NoError(t, err)

		assert.Equal(t, "/dev/ttyS0", config.SerialPort)
		assert.Equal(t, 57600, config.BaudRate)
		assert.Equal(t, time.Second, config.ReadTimeout)
	})

	t.Run("Flags win", func(t *testing.T) {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		fs.String("serial-port", "", "")
		fs.String("script", "", "")
		fs.String("body-mode", "", "")
		require.NoError(t, fs.Parse([]string{"-serial-port", "/dev/ttyACM3", "-script", "demo.lua", "-body-mode", "accumulate"}))

		config, err := LoadConfig(WithDefaults(), WithFlags(fs))
		require.NoError(t, err)

		assert.Equal(t, "/dev/ttyACM3", config.SerialPort)
		assert.Equal(t, "demo.lua", config.Script)
		assert.Equal(t, "accumulate", config.BodyMode)
	})
}

func TestParseBodyMode(t *testing.T) {
	mode, err := parseBodyMode("accumulate")
	require.NoError(t, err)
	assert.Equal(t, board.BodyAccumulate, mode)

	mode, err = parseBodyMode("")
	require.NoError(t, err)
	assert.Equal(t, board.BodyFirstLine, mode)

	_, err = parseBodyMode("all")
	assert.Error(t, err)
}

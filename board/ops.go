package board

import (
	"context"
	"fmt"

	"i4.energy/across/fhttp/tag"
)

// Ping checks that the board is alive. It succeeds when the reply
// contains [PONG].
func (b *Board) Ping(ctx context.Context) error {
	if err := b.acquire(); err != nil {
		return err
	}
	defer b.mu.Unlock()

	return b.confirm(ctx, tag.Ping(), b.config.PingTimeout, tag.Pong)
}

// ConnectWiFi joins the network saved with SaveWiFi. A board that reports
// it is already connected ([INFO]) counts as success.
func (b *Board) ConnectWiFi(ctx context.Context) error {
	if err := b.acquire(); err != nil {
		return err
	}
	defer b.mu.Unlock()

	return b.confirm(ctx, tag.WiFiConnect(), b.config.ReadTimeout, tag.Success, tag.Connected, tag.Info)
}

// DisconnectWiFi leaves the current network.
func (b *Board) DisconnectWiFi(ctx context.Context) error {
	if err := b.acquire(); err != nil {
		return err
	}
	defer b.mu.Unlock()

	return b.confirm(ctx, tag.WiFiDisconnect(), b.config.ReadTimeout, tag.Disconnected, tag.WiFiStop)
}

// SaveWiFi stores network credentials on the board. Both fields are
// required; if either is empty nothing is sent.
func (b *Board) SaveWiFi(ctx context.Context, ssid, password string) error {
	cmd, ok := tag.WiFiSave(ssid, password)
	if !ok {
		return ErrMissingCredentials
	}

	if err := b.acquire(); err != nil {
		return err
	}
	defer b.mu.Unlock()

	if err := b.send(cmd); err != nil {
		return err
	}

	resp, err := b.readData(ctx, b.config.ReadTimeout)
	if err != nil {
		b.clearBuffer(ctx, false)
		return err
	}

	if !tag.ContainsAny(resp, tag.Success) {
		b.logger.Warn("Failed to save WiFi settings", "ssid", ssid, "response", resp)
		b.clearBuffer(ctx, false)
		return &MalformedAckError{Command: tag.CmdWiFiSave, Line: resp}
	}

	// the board follows [SUCCESS] with reconnect chatter
	b.clearBuffer(ctx, false)
	b.clearBuffer(ctx, false)
	return nil
}

// ListCommands returns the board's one-line command listing.
func (b *Board) ListCommands(ctx context.Context) (string, error) {
	if err := b.acquire(); err != nil {
		return "", err
	}
	defer b.mu.Unlock()

	return b.query(ctx, tag.List())
}

// ScanWiFi returns the visible networks as reported by the board.
func (b *Board) ScanWiFi(ctx context.Context) (string, error) {
	if err := b.acquire(); err != nil {
		return "", err
	}
	defer b.mu.Unlock()

	return b.query(ctx, tag.WiFiScan())
}

// IPAddress returns the board's station address.
func (b *Board) IPAddress(ctx context.Context) (string, error) {
	if err := b.acquire(); err != nil {
		return "", err
	}
	defer b.mu.Unlock()

	return b.query(ctx, tag.IPAddress())
}

// ParseJSON has the board extract key from the JSON document data.
func (b *Board) ParseJSON(ctx context.Context, key, data string) (string, error) {
	if err := b.acquire(); err != nil {
		return "", err
	}
	defer b.mu.Unlock()

	return b.query(ctx, tag.Parse(key, data))
}

// ParseJSONArray has the board extract element index of the array at key.
func (b *Board) ParseJSONArray(ctx context.Context, key string, index int, data string) (string, error) {
	if err := b.acquire(); err != nil {
		return "", err
	}
	defer b.mu.Unlock()

	return b.query(ctx, tag.ParseArray(key, index, data))
}

func (b *Board) LEDOn() error {
	if err := b.acquire(); err != nil {
		return err
	}
	defer b.mu.Unlock()

	return b.send(tag.LEDOn())
}

func (b *Board) LEDOff() error {
	if err := b.acquire(); err != nil {
		return err
	}
	defer b.mu.Unlock()

	return b.send(tag.LEDOff())
}

// Get performs a header-less GET of url on the board.
//
// With the default BodyFirstLine mode only the first body line is
// returned. ErrEmptyPayload means the board finished without a body.
func (b *Board) Get(ctx context.Context, url string) (string, error) {
	if err := b.acquire(); err != nil {
		return "", err
	}
	defer b.mu.Unlock()

	return b.fetch(ctx, exchange{
		method: tag.MethodGet,
		name:   tag.CmdGet,
		cmd:    tag.Get(url),
	})
}

// GetWithHeaders performs a GET with the given JSON object of headers.
func (b *Board) GetWithHeaders(ctx context.Context, url, headers string) (string, error) {
	return b.Request(ctx, tag.MethodGet, url, headers, "")
}

// PostWithHeaders posts the JSON payload to url.
func (b *Board) PostWithHeaders(ctx context.Context, url, headers, payload string) (string, error) {
	return b.Request(ctx, tag.MethodPost, url, headers, payload)
}

func (b *Board) PutWithHeaders(ctx context.Context, url, headers, payload string) (string, error) {
	return b.Request(ctx, tag.MethodPut, url, headers, payload)
}

func (b *Board) DeleteWithHeaders(ctx context.Context, url, headers, payload string) (string, error) {
	return b.Request(ctx, tag.MethodDelete, url, headers, payload)
}

// Request performs method against url with headers and, except for GET,
// payload. headers and payload must be JSON fragments.
func (b *Board) Request(ctx context.Context, method tag.Method, url, headers, payload string) (string, error) {
	if !method.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}

	if err := b.acquire(); err != nil {
		return "", err
	}
	defer b.mu.Unlock()

	return b.fetch(ctx, exchange{
		method: method,
		name:   "[" + string(method) + "/HTTP]",
		cmd:    tag.Request(method, url, headers, payload),
	})
}

// GetBytes performs a GET whose response the board streams verbatim
// rather than as a JSON line. The whole body up to the end tag is
// returned.
func (b *Board) GetBytes(ctx context.Context, url, headers string) ([]byte, error) {
	if err := b.acquire(); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()

	return b.fetchRaw(ctx, tag.MethodGet, tag.CmdGetBytes, tag.GetBytes(url, headers))
}

// PostBytes is GetBytes for a POST with payload.
func (b *Board) PostBytes(ctx context.Context, url, headers, payload string) ([]byte, error) {
	if err := b.acquire(); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()

	return b.fetchRaw(ctx, tag.MethodPost, tag.CmdPostBytes, tag.PostBytes(url, headers, payload))
}

func (b *Board) fetchRaw(ctx context.Context, m tag.Method, name, cmd string) ([]byte, error) {
	body, err := b.fetch(ctx, exchange{
		method: m,
		name:   name,
		cmd:    cmd,
		raw:    true,
	})
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

// WiFiIP returns the public address of the network the board is joined
// to, as the board looks it up.
func (b *Board) WiFiIP(ctx context.Context) (string, error) {
	if err := b.acquire(); err != nil {
		return "", err
	}
	defer b.mu.Unlock()

	return b.query(ctx, tag.WiFiIP())
}

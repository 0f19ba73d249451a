package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"i4.energy/across/fhttp/board"
	"i4.energy/across/fhttp/tag"
)

// Board is the part of *board.Board the HTTP bridge drives.
type Board interface {
	Ping(ctx context.Context) error
	ConnectWiFi(ctx context.Context) error
	DisconnectWiFi(ctx context.Context) error
	SaveWiFi(ctx context.Context, ssid, password string) error
	ScanWiFi(ctx context.Context) (string, error)
	IPAddress(ctx context.Context) (string, error)
	WiFiIP(ctx context.Context) (string, error)
	ListCommands(ctx context.Context) (string, error)
	LEDOn() error
	LEDOff() error
	Request(ctx context.Context, method tag.Method, url, headers, payload string) (string, error)
	GetBytes(ctx context.Context, url, headers string) ([]byte, error)
	PostBytes(ctx context.Context, url, headers, payload string) ([]byte, error)
}

// Server handles incoming HTTP requests for interacting with the
// configured board instance
type Server struct {
	Logger *slog.Logger
	Board  Board
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", s.handleAction("ping", s.Board.Ping))
	mux.HandleFunc("POST /wifi/connect", s.handleAction("connect", s.Board.ConnectWiFi))
	mux.HandleFunc("POST /wifi/disconnect", s.handleAction("disconnect", s.Board.DisconnectWiFi))
	mux.HandleFunc("POST /wifi/save", s.handleSaveWiFi)
	mux.HandleFunc("GET /wifi/scan", s.handleQuery("scan", s.Board.ScanWiFi))
	mux.HandleFunc("GET /ip", s.handleQuery("ip", s.Board.IPAddress))
	mux.HandleFunc("GET /wifi/ip", s.handleQuery("wifi ip", s.Board.WiFiIP))
	mux.HandleFunc("GET /commands", s.handleQuery("list", s.Board.ListCommands))
	mux.HandleFunc("POST /led", s.handleLED)
	mux.HandleFunc("POST /request", s.handleRequest)
	mux.ServeHTTP(w, r)
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	resp := ErrorResponse{Message: message}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) sendResult(w http.ResponseWriter, result string) {
	type ResultResponse struct {
		Result string `json:"result"`
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ResultResponse{Result: result})
}

// sendBoardError maps driver errors onto HTTP status codes.
func (s *Server) sendBoardError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, board.ErrEmptyPayload):
		w.WriteHeader(http.StatusNoContent)
		return
	case errors.Is(err, board.ErrTimeout):
		status = http.StatusGatewayTimeout
	case board.IsMalformedAck(err):
		status = http.StatusBadGateway
	case errors.Is(err, board.ErrMissingCredentials), errors.Is(err, board.ErrInvalidMethod):
		status = http.StatusBadRequest
	case errors.Is(err, board.ErrAlreadyClosed):
		status = http.StatusServiceUnavailable
	}
	s.Logger.Error("Board operation failed", "op", op, "error", err, "status", status)
	s.sendError(w, err.Error(), status)
}

// handleAction serves operations that only succeed or fail
func (s *Server) handleAction(op string, action func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := action(r.Context()); err != nil {
			s.sendBoardError(w, op, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleQuery serves operations that return a single line
func (s *Server) handleQuery(op string, query func(context.Context) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := query(r.Context())
		if err != nil {
			s.sendBoardError(w, op, err)
			return
		}
		s.sendResult(w, result)
	}
}

func (s *Server) handleSaveWiFi(w http.ResponseWriter, r *http.Request) {
	type SaveRequest struct {
		SSID     string `json:"ssid"`
		Password string `json:"password"`
	}

	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.Board.SaveWiFi(r.Context(), req.SSID, req.Password); err != nil {
		s.sendBoardError(w, "save", err)
		return
	}

	s.Logger.Info("WiFi settings saved", "ssid", req.SSID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLED(w http.ResponseWriter, r *http.Request) {
	type LEDRequest struct {
		On bool `json:"on"`
	}

	var req LEDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	action := s.Board.LEDOff
	if req.On {
		action = s.Board.LEDOn
	}
	if err := action(); err != nil {
		s.sendBoardError(w, "led", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRequest has the board perform an HTTP request and relays its body
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	type ProxyRequest struct {
		Method  string          `json:"method"`
		URL     string          `json:"url"`
		Headers json.RawMessage `json:"headers"`
		Payload json.RawMessage `json:"payload"`
		Bytes   bool            `json:"bytes"`
	}

	var req ProxyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.URL == "" {
		s.sendError(w, "'url' field is required", http.StatusBadRequest)
		return
	}

	method := tag.Method(strings.ToUpper(req.Method))
	if req.Method == "" {
		method = tag.MethodGet
	}

	headers := string(req.Headers)
	if headers == "" {
		headers = "{}"
	}
	payload := string(req.Payload)
	if payload == "" {
		payload = "{}"
	}

	if req.Bytes {
		s.relayBytes(r.Context(), w, method, req.URL, headers, payload)
		return
	}

	body, err := s.Board.Request(r.Context(), method, req.URL, headers, payload)
	if err != nil {
		s.sendBoardError(w, "request", err)
		return
	}

	s.Logger.Info("Request relayed", "method", method, "url", req.URL, "body_length", len(body))
	s.sendResult(w, body)
}

// relayBytes serves a request through the board's streamed commands,
// which exist for GET and POST only.
func (s *Server) relayBytes(ctx context.Context, w http.ResponseWriter, method tag.Method, url, headers, payload string) {
	var body []byte
	var err error
	switch method {
	case tag.MethodGet:
		body, err = s.Board.GetBytes(ctx, url, headers)
	case tag.MethodPost:
		body, err = s.Board.PostBytes(ctx, url, headers, payload)
	default:
		s.sendError(w, "'bytes' is only supported for GET and POST", http.StatusBadRequest)
		return
	}
	if err != nil {
		s.sendBoardError(w, "request bytes", err)
		return
	}

	s.Logger.Info("Request relayed", "method", method, "url", url, "bytes", len(body))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

package tag

const (
	// Line framing
	LineEnd = "\n"

	// Status tags
	Success       = "[SUCCESS]"
	Error         = "[ERROR]"
	Info          = "[INFO]"
	Pong          = "[PONG]"
	Disconnected  = "[DISCONNECTED]"
	Connected     = "[CONNECTED]"
	GetStarted    = "[GET/STARTED]"
	PostStarted   = "[POST/STARTED]"
	PutStarted    = "[PUT/STARTED]"
	DeleteStarted = "[DELETE/STARTED]"
	GetEnd        = "[GET/END]"
	PostEnd       = "[POST/END]"
	PutEnd        = "[PUT/END]"
	DeleteEnd     = "[DELETE/END]"

	// Plain-text disconnect confirmation emitted by older firmware
	WiFiStop = "WiFi stop"

	// Commands without a body
	CmdPing           = "[PING]"
	CmdList           = "[LIST]"
	CmdLEDOn          = "[LED/ON]"
	CmdLEDOff         = "[LED/OFF]"
	CmdWiFiConnect    = "[WIFI/CONNECT]"
	CmdWiFiDisconnect = "[WIFI/DISCONNECT]"
	CmdWiFiScan       = "[WIFI/SCAN]"
	CmdIPAddress      = "[IP/ADDRESS]"
	CmdWiFiIP         = "[WIFI/IP]"

	// Command prefixes followed by a body
	CmdWiFiSave   = "[WIFI/SAVE]"
	CmdParse      = "[PARSE]"
	CmdParseArray = "[PARSE/ARRAY]"
	CmdGet        = "[GET]"
	CmdGetHTTP    = "[GET/HTTP]"
	CmdPostHTTP   = "[POST/HTTP]"
	CmdPutHTTP    = "[PUT/HTTP]"
	CmdDeleteHTTP = "[DELETE/HTTP]"
	CmdGetBytes   = "[GET/BYTES]"
	CmdPostBytes  = "[POST/BYTES]"
)

// Status is the classification of a single response line.
type Status int

const (
	StatusNone Status = iota // unclassified / noise
	StatusSuccess
	StatusError
	StatusInfo
	StatusPong
	StatusDisconnected
	StatusConnected
	StatusGetStarted
	StatusPostStarted
	StatusPutStarted
	StatusDeleteStarted
	StatusGetEnd
	StatusPostEnd
	StatusPutEnd
	StatusDeleteEnd
)

var statusNames = map[Status]string{
	StatusNone:          "NONE",
	StatusSuccess:       "SUCCESS",
	StatusError:         "ERROR",
	StatusInfo:          "INFO",
	StatusPong:          "PONG",
	StatusDisconnected:  "DISCONNECTED",
	StatusConnected:     "CONNECTED",
	StatusGetStarted:    "GET_STARTED",
	StatusPostStarted:   "POST_STARTED",
	StatusPutStarted:    "PUT_STARTED",
	StatusDeleteStarted: "DELETE_STARTED",
	StatusGetEnd:        "GET_END",
	StatusPostEnd:       "POST_END",
	StatusPutEnd:        "PUT_END",
	StatusDeleteEnd:     "DELETE_END",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

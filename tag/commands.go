package tag

import "strconv"

// Method identifies one of the HTTP verbs the board can execute.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
)

// Methods lists every supported Method.
var Methods = []Method{MethodGet, MethodPost, MethodPut, MethodDelete}

// Ack returns the exact acknowledgement line the board prints once a
// request of this method has started successfully.
func (m Method) Ack() string {
	return "[" + string(m) + "/SUCCESS] " + string(m) + " request successful."
}

// BytesAck is the bare acknowledgement that precedes a streamed
// [GET/BYTES] or [POST/BYTES] response.
func (m Method) BytesAck() string {
	return "[" + string(m) + "/SUCCESS]"
}

// EndTag returns the marker printed after the last body line.
func (m Method) EndTag() string {
	return "[" + string(m) + "/END]"
}

// Valid reports whether m is one of Methods.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodDelete:
		return true
	}
	return false
}

// IsAck reports whether line is the acknowledgement for m. The comparison
// is exact, unlike Classify.
func IsAck(m Method, line string) bool {
	return line == m.Ack()
}

func Ping() string           { return CmdPing }
func List() string           { return CmdList }
func LEDOn() string          { return CmdLEDOn }
func LEDOff() string         { return CmdLEDOff }
func WiFiConnect() string    { return CmdWiFiConnect }
func WiFiDisconnect() string { return CmdWiFiDisconnect }
func WiFiScan() string       { return CmdWiFiScan }
func IPAddress() string      { return CmdIPAddress }
func WiFiIP() string         { return CmdWiFiIP }

// WiFiSave builds the credential save command. It returns false, and no
// command, if either field is empty.
func WiFiSave(ssid, password string) (string, bool) {
	if ssid == "" || password == "" {
		return "", false
	}
	return CmdWiFiSave + `{"ssid":"` + ssid + `","password":"` + password + `"}`, true
}

// Parse asks the board to extract key from data. data must already be a
// JSON fragment; it is inserted verbatim.
func Parse(key, data string) string {
	return CmdParse + `{"key":"` + key + `","data":` + data + `}`
}

// ParseArray is Parse for the element at index of an array-valued key.
func ParseArray(key string, index int, data string) string {
	return CmdParseArray + `{"key":"` + key + `","index":` + strconv.Itoa(index) + `,"data":` + data + `}`
}

// Get builds a plain GET without headers.
func Get(url string) string {
	return CmdGet + url
}

// GetHTTP builds a GET with headers. Deployed firmware expects the url key
// unquoted here, unlike the other verbs.
func GetHTTP(url, headers string) string {
	return CmdGetHTTP + `{url:"` + url + `",headers:` + headers + `}`
}

func PostHTTP(url, headers, payload string) string {
	return withPayload(CmdPostHTTP, url, headers, payload)
}

func PutHTTP(url, headers, payload string) string {
	return withPayload(CmdPutHTTP, url, headers, payload)
}

func DeleteHTTP(url, headers, payload string) string {
	return withPayload(CmdDeleteHTTP, url, headers, payload)
}

// Request builds the headers variant of m. GET ignores payload.
func Request(m Method, url, headers, payload string) string {
	switch m {
	case MethodPost:
		return PostHTTP(url, headers, payload)
	case MethodPut:
		return PutHTTP(url, headers, payload)
	case MethodDelete:
		return DeleteHTTP(url, headers, payload)
	default:
		return GetHTTP(url, headers)
	}
}

// GetBytes builds a GET whose response is streamed back unparsed. Unlike
// GetHTTP the url key is quoted.
func GetBytes(url, headers string) string {
	return CmdGetBytes + `{"url":"` + url + `","headers":` + headers + `}`
}

func PostBytes(url, headers, payload string) string {
	return withPayload(CmdPostBytes, url, headers, payload)
}

func withPayload(cmd, url, headers, payload string) string {
	return cmd + `{"url":"` + url + `","headers":` + headers + `,"payload":` + payload + `}`
}

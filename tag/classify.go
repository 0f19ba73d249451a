package tag

import (
	"bufio"
	"bytes"
	"strings"
)

// Splitter tokenizes the board's output into lines. It uses the signature
// of bufio.SplitFunc so it can be used with bufio.Scanner or called
// directly on a pending buffer.
//
// Lines are terminated by "\n". A trailing "\r" is stripped, since some
// firmware builds print with println() and emit CRLF.
//
// The atEOF parameter indicates whether any more data will be available.
// When true, any remaining data is returned as the final token.
func Splitter(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, bytes.TrimSuffix(data[0:i], []byte("\r")), nil
	}

	if atEOF {
		return len(data), bytes.TrimSuffix(data, []byte("\r")), nil
	}
	return 0, nil, nil
}

var _ bufio.SplitFunc = Splitter

// classifyOrder is checked top to bottom. SUCCESS comes last so that a
// line carrying both SUCCESS and another tag is reported as the other one.
var classifyOrder = []struct {
	literal string
	status  Status
}{
	{Error, StatusError},
	{Info, StatusInfo},
	{Pong, StatusPong},
	{Disconnected, StatusDisconnected},
	{Connected, StatusConnected},
	{GetStarted, StatusGetStarted},
	{PostStarted, StatusPostStarted},
	{PutStarted, StatusPutStarted},
	{DeleteStarted, StatusDeleteStarted},
	{GetEnd, StatusGetEnd},
	{PostEnd, StatusPostEnd},
	{PutEnd, StatusPutEnd},
	{DeleteEnd, StatusDeleteEnd},
	{Success, StatusSuccess},
}

// Classify identifies the first recognized status tag contained in line.
// The board may wrap tags in diagnostic text, so matching is by substring.
func Classify(line string) Status {
	for _, c := range classifyOrder {
		if strings.Contains(line, c.literal) {
			return c.status
		}
	}
	return StatusNone
}

// Stops reports whether a buffer drain should halt on line. Any recognized
// tag halts it, except SUCCESS which only halts when requireSuccess is set.
func Stops(line string, requireSuccess bool) bool {
	switch Classify(line) {
	case StatusNone:
		return false
	case StatusSuccess:
		return requireSuccess
	default:
		return true
	}
}

// ContainsAny reports whether line contains at least one of the needles.
func ContainsAny(line string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(line, n) {
			return true
		}
	}
	return false
}

package crowdin

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrRemote matches every *RemoteProtocolError.
var ErrRemote = errors.New("remote protocol error")

// RemoteProtocolError reports a non-success response, an unparsable body or
// an explicit error from the service. Code and Message are the service's own.
type RemoteProtocolError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
}

func (e *RemoteProtocolError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": http %d", e.StatusCode)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, " code %s", e.Code)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *RemoteProtocolError) Is(target error) bool {
	return target == ErrRemote
}

type errorEnvelope struct {
	Success *bool `json:"success"`
	Error   *struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
	} `json:"error"`
}

// parseServiceError extracts the service's error from a response body. ok is
// false when the body carries no error marker.
func parseServiceError(body []byte) (code, message string, ok bool) {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", "", false
	}
	if env.Error == nil {
		if env.Success != nil && !*env.Success {
			return "", "request was not successful", true
		}
		return "", "", false
	}
	code = strings.Trim(strings.TrimSpace(string(env.Error.Code)), `"`)
	if code == "null" {
		code = ""
	}
	return code, env.Error.Message, true
}

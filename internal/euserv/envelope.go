package euserv

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// SuccessCode is the only result code the control panel uses for success.
const SuccessCode = "100"

const (
	maxBodySize    = 1 << 20
	bodyExcerptLen = 200
)

// Envelope is the JSON document every control panel call returns.
type Envelope struct {
	Code       string          `json:"code"`
	Message    string          `json:"message,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	StatusCode int             `json:"-"`
}

// wireEnvelope is the undecoded document. The panel is not consistent about
// the JSON types of code and message.
type wireEnvelope struct {
	Code    json.RawMessage `json:"code"`
	Message json.RawMessage `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// sessionResult is the result payload of the session-acquire call.
type sessionResult struct {
	SessID struct {
		Value string `json:"value"`
	} `json:"sess_id"`
}

// SessionID extracts result.sess_id.value.
func (e *Envelope) SessionID() (string, error) {
	if len(e.Result) == 0 || string(e.Result) == "null" {
		return "", errors.New("response has no result")
	}
	var r sessionResult
	if err := json.Unmarshal(e.Result, &r); err != nil {
		return "", fmt.Errorf("decode result: %w", err)
	}
	if r.SessID.Value == "" {
		return "", errors.New("result.sess_id.value is empty")
	}
	return r.SessID.Value, nil
}

// decodeEnvelope validates a control panel response: JSON first, then the
// transport status, then the result code.
func decodeEnvelope(step Step, resp *http.Response) (*Envelope, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Step: step, Message: "read response", StatusCode: resp.StatusCode, Err: err}
	}

	var wire wireEnvelope
	err = json.Unmarshal(body, &wire)
	if err == nil && !isObject(body) {
		err = errors.New("response is not a JSON object")
	}
	if err != nil {
		return nil, &Error{
			Kind:       KindParse,
			Step:       step,
			Message:    fmt.Sprintf("response parse failed, raw content: %q", excerpt(body)),
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}
	env := Envelope{
		Code:       scalar(wire.Code),
		Message:    scalar(wire.Message),
		Result:     wire.Result,
		StatusCode: resp.StatusCode,
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Kind:       KindHTTP,
			Step:       step,
			Message:    fmt.Sprintf("HTTP error (%d): %s", resp.StatusCode, messageOr(env.Message, "unknown error")),
			StatusCode: resp.StatusCode,
		}
	}

	// Only the string "100" is success; a numeric 100 is not.
	if !isString(wire.Code) || env.Code != SuccessCode {
		return nil, &Error{
			Kind:       KindBusiness,
			Step:       step,
			Message:    "business error: " + messageOr(env.Message, "unknown error"),
			StatusCode: resp.StatusCode,
		}
	}

	return &env, nil
}

// scalar renders a JSON string or number as text. Anything else is "".
func scalar(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func isString(raw json.RawMessage) bool {
	return len(raw) > 0 && raw[0] == '"'
}

func isObject(body []byte) bool {
	body = bytes.TrimSpace(body)
	return len(body) > 0 && body[0] == '{'
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}

func excerpt(body []byte) string {
	if len(body) > bodyExcerptLen {
		return string(body[:bodyExcerptLen])
	}
	return string(body)
}

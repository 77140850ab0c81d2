// SPDX-License-Identifier: EPL-2.0

// Package result maps reply envelopes from the translation service onto a
// Result.
package result

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
)

// Status of one translation exchange.
type Status int

const (
	Success Status = iota
	BusinessError
	Timeout
	ConnectionClosed
	ProtocolError
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case BusinessError:
		return "business_error"
	case Timeout:
		return "timeout"
	case ConnectionClosed:
		return "connection_closed"
	case ProtocolError:
		return "protocol_error"
	default:
		return "unknown"
	}
}

const failedFlag = "failed"

// DefaultErrorMessage is used when a failed envelope carries no err_msg.
const DefaultErrorMessage = "unknown error"

// Result of one exchange.
type Result struct {
	Status      Status
	Translation string
	Original    string
	// Audio is the decoded audio_data field; nil when absent or not
	// valid base64.
	Audio []byte
	// Message is the service's err_msg for BusinessError and a local
	// description for the other failures.
	Message string
	// ServiceStatus echoes the envelope's status field.
	ServiceStatus string
	// Envelope is the raw reply, nil for results produced locally.
	Envelope json.RawMessage
}

// OK reports whether the exchange succeeded.
func (r Result) OK() bool { return r.Status == Success }

// HasAudio reports whether the reply carried a decodable audio payload.
func (r Result) HasAudio() bool { return len(r.Audio) > 0 }

type envelope struct {
	Result         *string         `json:"result"`
	ErrMsg         *string         `json:"err_msg"`
	TranslatedText *string         `json:"translated_text"`
	OriginalText   *string         `json:"original_text"`
	Status         json.RawMessage `json:"status"`
	AudioData      *string         `json:"audio_data"`
}

// Parse converts a reply frame. It never fails: malformed input yields a
// ProtocolError result. A business failure is reported only when the result
// field equals "failed"; everything else, empty translations included, is
// a Success.
func Parse(msg []byte) Result {
	res := Result{Envelope: json.RawMessage(bytes.Clone(msg))}

	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		res.Status = ProtocolError
		res.Message = "reply is not a JSON object"
		return res
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		res.Status = ProtocolError
		res.Message = "malformed reply: " + err.Error()
		return res
	}

	res.ServiceStatus = scalar(env.Status)

	if deref(env.Result) == failedFlag {
		res.Status = BusinessError
		res.Message = deref(env.ErrMsg)
		if res.Message == "" {
			res.Message = DefaultErrorMessage
		}
		return res
	}

	res.Status = Success
	res.Translation = strings.TrimSpace(deref(env.TranslatedText))
	res.Original = strings.TrimSpace(deref(env.OriginalText))
	if data := deref(env.AudioData); data != "" {
		if audio, err := base64.StdEncoding.DecodeString(data); err == nil {
			res.Audio = audio
		}
	}

	return res
}

// TimedOut is the result of a receive that hit its deadline.
func TimedOut() Result {
	return Result{Status: Timeout, Message: "no reply before the deadline"}
}

// Closed is the result of a receive on a connection the peer closed.
func Closed(reason string) Result {
	if reason == "" {
		reason = "connection closed"
	}
	return Result{Status: ConnectionClosed, Message: reason}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// scalar renders a JSON string as its value and any other JSON value as
// its literal text.
func scalar(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if string(raw) == "null" {
		return ""
	}
	return string(raw)
}

package execution

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

var ErrMalformedMessage = errors.New("malformed bridge message")

// Wire types for the outbound "type" field
const (
	wireInitComplete = "init-complete"
	wireInitFailed   = "init-failed"
)

type inboundMessage struct {
	ID         *uint64 `json:"id"`
	Type       string  `json:"type"`
	SourceCode *string `json:"sourceCode,omitempty"`
}

type outboundMessage struct {
	ID              uint64   `json:"id"`
	Type            string   `json:"type,omitempty"`
	Output          *string  `json:"output,omitempty"`
	Error           *string  `json:"error,omitempty"`
	ExecutionTimeMs *float64 `json:"executionTimeMs,omitempty"`
	TimedOut        bool     `json:"timedOut,omitempty"`
}

// DecodeRequest parses an inbound wire message. An execute message
// without sourceCode is rejected. cancel is attached to init requests.
func DecodeRequest(data []byte, cancel *CancelBuffer) (Request, error) {
	var msg inboundMessage
	if err := sonic.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if msg.ID == nil {
		return nil, fmt.Errorf("%w: missing id", ErrMalformedMessage)
	}

	switch Kind(msg.Type) {
	case KindInit:
		return InitRequest{ID: *msg.ID, Cancel: cancel}, nil
	case KindExecute:
		if msg.SourceCode == nil {
			return nil, fmt.Errorf("%w: execute without sourceCode", ErrMalformedMessage)
		}
		return ExecuteRequest{ID: *msg.ID, Source: *msg.SourceCode}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrMalformedMessage, msg.Type)
	}
}

// EncodeResponse renders a response in the outbound wire shape
func EncodeResponse(resp Response) ([]byte, error) {
	msg := outboundMessage{ID: resp.ResponseID()}

	switch r := resp.(type) {
	case InitComplete:
		msg.Type = wireInitComplete
	case InitFailed:
		msg.Type = wireInitFailed
		msg.Error = &r.Message
	case Completed:
		msg.Output = &r.Stdout
		if r.Stderr != "" {
			msg.Error = &r.Stderr
		}
		ms := millis(r.Elapsed)
		msg.ExecutionTimeMs = &ms
	case TimedOut:
		empty := ""
		msg.Output = &empty
		msg.Error = &r.Message
		msg.TimedOut = true
		ms := millis(r.Elapsed)
		msg.ExecutionTimeMs = &ms
	case Failed:
		empty := ""
		msg.Output = &empty
		msg.Error = &r.Message
		ms := millis(r.Elapsed)
		msg.ExecutionTimeMs = &ms
	default:
		return nil, fmt.Errorf("unknown response %T", resp)
	}

	return sonic.Marshal(msg)
}

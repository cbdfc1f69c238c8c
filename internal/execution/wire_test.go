package execution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRequest(t *testing.T) {
	cancel := NewCancelBuffer()

	tests := []struct {
		name    string
		data    string
		want    Request
		wantErr bool
	}{
		{name: "init", data: `{"id":1,"type":"init"}`, want: InitRequest{ID: 1, Cancel: cancel}},
		{name: "execute", data: `{"id":2,"type":"execute","sourceCode":"print(1)"}`, want: ExecuteRequest{ID: 2, Source: "print(1)"}},
		{name: "empty source allowed", data: `{"id":3,"type":"execute","sourceCode":""}`, want: ExecuteRequest{ID: 3}},
		{name: "execute without source", data: `{"id":4,"type":"execute"}`, wantErr: true},
		{name: "missing id", data: `{"type":"init"}`, wantErr: true},
		{name: "unknown type", data: `{"id":5,"type":"eval"}`, wantErr: true},
		{name: "not json", data: `hello`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRequest([]byte(tt.data), cancel)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedMessage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeResponse(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want string
	}{
		{
			name: "init complete",
			resp: InitComplete{ID: 1},
			want: `{"id":1,"type":"init-complete"}`,
		},
		{
			name: "init failed",
			resp: InitFailed{ID: 2, Message: "no runtime"},
			want: `{"id":2,"type":"init-failed","error":"no runtime"}`,
		},
		{
			name: "completed",
			resp: Completed{ID: 3, Stdout: "hi\n", Elapsed: 1500 * time.Microsecond},
			want: `{"id":3,"output":"hi\n","executionTimeMs":1.5}`,
		},
		{
			name: "completed with stderr",
			resp: Completed{ID: 4, Stdout: "", Stderr: "warn\n", Elapsed: 2 * time.Millisecond},
			want: `{"id":4,"output":"","error":"warn\n","executionTimeMs":2}`,
		},
		{
			name: "timed out",
			resp: TimedOut{ID: 5, Message: "Execution timed out", Elapsed: 5 * time.Second},
			want: `{"id":5,"output":"","error":"Execution timed out","executionTimeMs":5000,"timedOut":true}`,
		},
		{
			name: "failed",
			resp: Failed{ID: 6, Message: "boom", Elapsed: time.Millisecond},
			want: `{"id":6,"output":"","error":"boom","executionTimeMs":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeResponse(tt.resp)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestSummarizeAndRelabel(t *testing.T) {
	resp := Relabel(TimedOut{ID: 9, Message: "Execution timed out", Elapsed: 250 * time.Millisecond}, 42)
	assert.Equal(t, uint64(42), resp.ResponseID())

	result := Summarize(resp)
	assert.Equal(t, OutcomeTimeout, result.Status)
	assert.Equal(t, "Execution timed out", result.Error)
	assert.Equal(t, 250.0, result.ExecutionTimeMs)

	result = Summarize(Completed{Stdout: "x", Stderr: "y"})
	assert.Equal(t, OutcomeOK, result.Status)
	assert.Equal(t, "y", result.Stderr)
}

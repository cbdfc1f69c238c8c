package execution

import "time"

// Kind discriminates requests
type Kind string

const (
	KindInit    Kind = "init"
	KindExecute Kind = "execute"
)

// Outcome discriminates responses
type Outcome string

const (
	OutcomeReady   Outcome = "ready"
	OutcomeOK      Outcome = "ok"
	OutcomeTimeout Outcome = "timeout"
	OutcomeError   Outcome = "error"
)

// Request is a message from caller to worker
type Request interface {
	RequestID() uint64
	Kind() Kind
	isRequest()
}

// InitRequest asks the worker to prepare its interpreter session.
// Cancel is optional.
type InitRequest struct {
	ID     uint64
	Cancel *CancelBuffer
}

// ExecuteRequest runs Source in the session
type ExecuteRequest struct {
	ID     uint64
	Source string
}

func (r InitRequest) RequestID() uint64    { return r.ID }
func (r InitRequest) Kind() Kind           { return KindInit }
func (InitRequest) isRequest()             {}
func (r ExecuteRequest) RequestID() uint64 { return r.ID }
func (r ExecuteRequest) Kind() Kind        { return KindExecute }
func (ExecuteRequest) isRequest()          {}

// Response is a message from worker to caller, correlated by id
type Response interface {
	ResponseID() uint64
	Outcome() Outcome
	isResponse()
}

// InitComplete acknowledges a successful or repeated init
type InitComplete struct {
	ID uint64
}

// InitFailed reports that the interpreter could not be loaded
type InitFailed struct {
	ID      uint64
	Message string
}

// Completed is a normal run. Stderr may be non-empty.
type Completed struct {
	ID      uint64
	Stdout  string
	Stderr  string
	Elapsed time.Duration
}

// TimedOut is a run stopped by the cancellation signal
type TimedOut struct {
	ID      uint64
	Message string
	Elapsed time.Duration
}

// Failed is any other execute failure
type Failed struct {
	ID      uint64
	Message string
	Elapsed time.Duration
}

func (r InitComplete) ResponseID() uint64 { return r.ID }
func (InitComplete) Outcome() Outcome     { return OutcomeReady }
func (InitComplete) isResponse()          {}
func (r InitFailed) ResponseID() uint64   { return r.ID }
func (InitFailed) Outcome() Outcome       { return OutcomeError }
func (InitFailed) isResponse()            {}
func (r Completed) ResponseID() uint64    { return r.ID }
func (Completed) Outcome() Outcome        { return OutcomeOK }
func (Completed) isResponse()             {}
func (r TimedOut) ResponseID() uint64     { return r.ID }
func (TimedOut) Outcome() Outcome         { return OutcomeTimeout }
func (TimedOut) isResponse()              {}
func (r Failed) ResponseID() uint64       { return r.ID }
func (Failed) Outcome() Outcome           { return OutcomeError }
func (Failed) isResponse()                {}

// Relabel returns resp with its id replaced
func Relabel(resp Response, id uint64) Response {
	switch r := resp.(type) {
	case InitComplete:
		r.ID = id
		return r
	case InitFailed:
		r.ID = id
		return r
	case Completed:
		r.ID = id
		return r
	case TimedOut:
		r.ID = id
		return r
	case Failed:
		r.ID = id
		return r
	default:
		return resp
	}
}

// Result is the flattened view of an execute response
type Result struct {
	Status          Outcome `json:"status"`
	Stdout          string  `json:"stdout"`
	Stderr          string  `json:"stderr,omitempty"`
	Error           string  `json:"error,omitempty"`
	ExecutionTimeMs float64 `json:"executionTimeMs"`
}

// Summarize flattens an execute response
func Summarize(resp Response) Result {
	switch r := resp.(type) {
	case Completed:
		return Result{Status: OutcomeOK, Stdout: r.Stdout, Stderr: r.Stderr, ExecutionTimeMs: millis(r.Elapsed)}
	case TimedOut:
		return Result{Status: OutcomeTimeout, Error: r.Message, ExecutionTimeMs: millis(r.Elapsed)}
	case Failed:
		return Result{Status: OutcomeError, Error: r.Message, ExecutionTimeMs: millis(r.Elapsed)}
	case InitFailed:
		return Result{Status: OutcomeError, Error: r.Message}
	default:
		return Result{Status: resp.Outcome()}
	}
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

package dispatch

// Kind classifies invocation failures.
type Kind int

const (
	// OperationNotFound: the requested identity matches no catalog entry.
	OperationNotFound Kind = iota
	// UpstreamCallFailed: the upstream answered with a non-success status.
	UpstreamCallFailed
	// UnexpectedFailure: anything else that went wrong during dispatch.
	UnexpectedFailure
)

func (k Kind) String() string {
	switch k {
	case OperationNotFound:
		return "operation_not_found"
	case UpstreamCallFailed:
		return "upstream_call_failed"
	default:
		return "unexpected_failure"
	}
}

// Error describes a failed invocation. Payload carries the parsed
// upstream error body, when there is one, for diagnostics.
type Error struct {
	Kind    Kind
	Message string
	Payload any
}

// Result is the outcome of one invocation: either Text (pretty-printed
// upstream payload) or Err. Failures are returned as data, never raised
// past the dispatch boundary.
type Result struct {
	Text string
	Err  *Error
}

// OK reports whether the invocation succeeded.
func (r Result) OK() bool { return r.Err == nil }

func failure(kind Kind, msg string) Result {
	return Result{Err: &Error{Kind: kind, Message: msg}}
}

package tracer

// SpanStatus is the semantic outcome recorded on a finished span.
type SpanStatus string

const (
	StatusUndefined          SpanStatus = ""
	StatusOK                 SpanStatus = "ok"
	StatusCancelled          SpanStatus = "cancelled"
	StatusUnknown            SpanStatus = "unknown_error"
	StatusInvalidArgument    SpanStatus = "invalid_argument"
	StatusDeadlineExceeded   SpanStatus = "deadline_exceeded"
	StatusNotFound           SpanStatus = "not_found"
	StatusAlreadyExists      SpanStatus = "already_exists"
	StatusPermissionDenied   SpanStatus = "permission_denied"
	StatusResourceExhausted  SpanStatus = "resource_exhausted"
	StatusFailedPrecondition SpanStatus = "failed_precondition"
	StatusUnimplemented      SpanStatus = "unimplemented"
	StatusInternalError      SpanStatus = "internal_error"
	StatusUnavailable        SpanStatus = "unavailable"
	StatusUnauthenticated    SpanStatus = "unauthenticated"
)

// SpanStatusFromHTTPCode maps an HTTP response code to a span status.
func SpanStatusFromHTTPCode(code int) SpanStatus {
	switch {
	case code < 400:
		return StatusOK
	case code == 401:
		return StatusUnauthenticated
	case code == 403:
		return StatusPermissionDenied
	case code == 404:
		return StatusNotFound
	case code == 409:
		return StatusAlreadyExists
	case code == 413:
		return StatusFailedPrecondition
	case code == 429:
		return StatusResourceExhausted
	case code < 500:
		return StatusInvalidArgument
	case code == 501:
		return StatusUnimplemented
	case code == 503:
		return StatusUnavailable
	case code == 504:
		return StatusDeadlineExceeded
	case code < 600:
		return StatusInternalError
	default:
		return StatusUnknown
	}
}

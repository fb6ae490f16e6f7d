package service

// ApiError carries the HTTP status a failure maps to. Validation, not-found
// and conflict are expected user-facing outcomes and are never logged as
// errors; upstream failures pass the provider status/body through; internal
// failures map to 500 and are logged with context.
type ApiError struct {
	StatusCode int
	Message    string
	Err        error
	Data       any
}

func (e *ApiError) Error() string { return e.Message }

func (e *ApiError) Unwrap() error { return e.Err }

func Validation(msg string) *ApiError {
	return &ApiError{StatusCode: 400, Message: msg}
}

func NotFound(msg string) *ApiError {
	return &ApiError{StatusCode: 404, Message: msg}
}

func Conflict(msg string) *ApiError {
	return &ApiError{StatusCode: 409, Message: msg}
}

func ConflictData(msg string, data any) *ApiError {
	return &ApiError{StatusCode: 409, Message: msg, Data: data}
}

func Upstream(status int, body string) *ApiError {
	return &ApiError{StatusCode: status, Message: body}
}

func Internal(msg string, err error) *ApiError {
	return &ApiError{StatusCode: 500, Message: msg, Err: err}
}

package util

import "fmt"

// ResponseError is a locally detected request error that already knows the
// HTTP status it should surface with (validation failures, conflicts).
type ResponseError struct {
	Msg    string
	Status int
}

func (e ResponseError) Error() string { return e.Msg }

func NewResponseError(status int, format string, args ...interface{}) error {
	return ResponseError{
		Msg:    fmt.Sprintf(format, args...),
		Status: status,
	}
}

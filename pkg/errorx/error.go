package errorx

import (
	"errors"
	"fmt"
)

type Error struct {
	Code    Code
	Message string
}

func New(code Code, format string, a ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, a...)}
}

func (e Error) Error() string {
	return e.Message
}

// CodeOf returns the code of the first errorx.Error in the chain of err, or
// the code of Unknown.
func CodeOf(err error) Code {
	var xerr Error
	if errors.As(err, &xerr) {
		return xerr.Code
	}

	return Unknown.Code
}

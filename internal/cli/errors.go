package cli

import "errors"

// ErrUsage marks errors caused by bad invocation (unknown flags, missing
// required inputs). main prints these without the "Error:" prefix since
// they already embed usage text.
var ErrUsage = errors.New("cli usage error")

type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}

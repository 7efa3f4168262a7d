package errs

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalid      = errors.New("invalid")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal")
	ErrStreamFailed = errors.New("completion stream failed")
	ErrEmptyResult  = errors.New("no content produced by any chunk")
	ErrUnavailable  = errors.New("provider unavailable")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsEmptyResult(err error) bool {
	return errors.Is(err, ErrEmptyResult)
}

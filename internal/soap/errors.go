package soap

import "errors"

var (
	ErrServiceNotFound = errors.New("service not found in device description")
	ErrActionFailed    = errors.New("soap action failed")
)

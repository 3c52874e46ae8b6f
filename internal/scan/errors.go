package scan

import "errors"

var (
	ErrInvalidRange  = errors.New("nonce_end must not be before nonce_start")
	ErrRangeTooLarge = errors.New("nonce range too large")
	ErrInvalidTarget = errors.New("invalid target operation")
)

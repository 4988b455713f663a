package tracker

import "errors"

var (
	ErrTargetOutOfRange = errors.New("target sessions must be between 0 and 16")
	ErrTaskActive       = errors.New("another task already has a running session")
	ErrInvalidImport    = errors.New("invalid import data")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrInvalidDay       = errors.New("invalid day key")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidStamp     = errors.New("invalid session timestamp")
)

package domain

import "errors"

var (
	ErrLotNotFound    = errors.New("lot not found")
	ErrSectorNotFound = errors.New("sector not found")
	ErrImageNotFound  = errors.New("image not found")
	ErrNoImage        = errors.New("sector has no captured images")
	ErrDuplicate      = errors.New("record already exists")

	// ErrDetectionFailed wraps any detector or image I/O failure. A pass that
	// returns it has written nothing.
	ErrDetectionFailed = errors.New("detection failed")
)

package domain

import "errors"

var (
	ErrRunNotFound      = errors.New("run not found")
	ErrRunAlreadyExists = errors.New("run already exists")
	ErrResultNotFound   = errors.New("result not found")
	ErrInvalidRecord    = errors.New("invalid transaction record")
	ErrInvalidSeverity  = errors.New("invalid severity")
)

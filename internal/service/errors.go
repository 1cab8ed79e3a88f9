package service

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrTaskNotFound      = errors.New("task not found")
	ErrLeaveNotFound     = errors.New("leave request not found")
	ErrForbidden         = errors.New("action not allowed for your role")
	ErrInvalidTransition = errors.New("action not allowed in the current state")
	ErrLeaveConflict     = errors.New("leave overlaps an existing request")
	ErrInvalidInput      = errors.New("invalid input")
)

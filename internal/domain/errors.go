package domain

import "errors"

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrUnauthorized    = errors.New("user not authorized for room")
	ErrNotRegistered   = errors.New("client not registered")
	ErrContextMismatch = errors.New("message does not match registered session")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrPersistence     = errors.New("persistence failure")
	ErrAlreadyMember   = errors.New("user already in room member list")
	ErrNotMember       = errors.New("user not in room member list")
)

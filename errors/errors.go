package errors

import "fmt"

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrNicknameTaken    = fmt.Errorf("nickname already taken")
	ErrEmptyNickname    = fmt.Errorf("nickname is empty")
	ErrNotRegistered    = fmt.Errorf("no such session")
	ErrEmptyWords       = fmt.Errorf("no words have been found")
	ErrConnectionClosed = fmt.Errorf("connection closed")
)

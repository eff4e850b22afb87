package app

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrOwnerNotFound     = errors.New("owner not found")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrForbidden         = errors.New("document belongs to another owner")
	ErrUsernameExists    = errors.New("username already exists")
	ErrEmailExists       = errors.New("email already exists")
	ErrInvalidCredential = errors.New("invalid username or password")
)

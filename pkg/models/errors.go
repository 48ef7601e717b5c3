package models

import "errors"

// Sentinel errors returned by the engine. Check them with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidStatus = errors.New("invalid grammar status")
	ErrInvalidFormat = errors.New("invalid snapshot format")
	ErrStorage       = errors.New("storage failure")
)

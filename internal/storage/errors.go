package storage

import "errors"

// ErrHoldingNotFound is returned when no holding matches the given id
var ErrHoldingNotFound = errors.New("holding not found")

// ErrSessionNotFound is returned when no draft session matches the given id
var ErrSessionNotFound = errors.New("draft session not found")

package service

import "errors"

var (
	// ErrInputNotFound means the input table is missing or unreadable. Nothing
	// is written when a run fails with it.
	ErrInputNotFound = errors.New("input table not found or unreadable")
	// ErrOutputWrite means an artifact could not be written
	ErrOutputWrite = errors.New("failed to write output")
)

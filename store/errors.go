package store

import "errors"

var (
	ErrStoreClosed = errors.New("analytics store is closed")

	ErrStateNotFound = errors.New("no saved analytics state")

	ErrArchiveFull = errors.New("event archive buffer is full")
)

package pebble

import (
	"errors"

	"github.com/eigerco/fury/pkg/db"
)

var (
	ErrClosed          = db.ErrClosed
	ErrNotFound        = db.ErrNotFound
	ErrBatchDone       = errors.New("kv-store: batch already committed or closed")
	ErrIteratorInvalid = errors.New("kv-store: iterator is not positioned on a key")

	ErrInIteratorCreation = "kv-store: create iterator: %w"
	ErrIteratorValue      = "kv-store: read iterator value: %w"
)

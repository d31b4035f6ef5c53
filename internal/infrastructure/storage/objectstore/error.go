package objectstore

import "errors"

var (
	// ErrDuplicateKey is returned by Add when the primary key (or a unique
	// secondary index value) is already present.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNoRecord is returned by GetByID when the key is absent.
	ErrNoRecord = errors.New("record not found")

	// ErrStorage wraps any underlying engine failure, including quota and
	// I/O errors.
	ErrStorage = errors.New("storage failure")

	// ErrUnknownCollection is returned when a collection was not declared
	// at Open time.
	ErrUnknownCollection = errors.New("unknown collection")
)

package repository

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("barcode already exists")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrPersistFailure     = errors.New("persist failed")
)

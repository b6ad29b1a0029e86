package domain

import "errors"

// Failure classes of a synchronization run.
var (
	ErrConfiguration      = errors.New("configuration error")
	ErrNoProducts         = errors.New("no products fetched")
	ErrNoEligibleProducts = errors.New("no products passed the filters")
	ErrUpload             = errors.New("upload failed")
)

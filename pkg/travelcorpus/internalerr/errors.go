package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrUnknownDataset      = errors.New("unknown dataset")
	ErrEmbedderUnavailable = errors.New("embedder unavailable")
)

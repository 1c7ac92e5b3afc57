package gerr

import "errors"

var (
	ErrInvalidRequest    = errors.New("invalid snapshot request")
	ErrSnapshotNotCached = errors.New("snapshot not cached")
	ErrRateLimited       = errors.New("too many requests, please slow down")
)

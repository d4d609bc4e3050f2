package common

import "github.com/pkg/errors"

// not-found
var (
	ErrFileNotFound        = errors.New("file not found")
	ErrReadNonExistingPage = errors.New("page does not exist in file")
	ErrPageNotFound        = errors.New("page is not resident in buffer pool")
	ErrKeyNotFound         = errors.New("key not found")
)

// capacity
var (
	ErrOrderTooHighForPage = errors.New("order too high for page size")
	ErrNoFreeFrame         = errors.New("every frame is pinned")
	ErrOrderTooLow         = errors.New("order must be at least 4")
)

// state
var (
	ErrPagesStillPinned = errors.New("pages are still pinned in buffer pool")
	ErrKeyAlreadyExists = errors.New("key already exists")
	ErrNoMoreEntries    = errors.New("no more entries")
	ErrPoolShutdown     = errors.New("buffer pool is shut down")
	ErrIndexAlreadyOpen = errors.New("index is already open")
	ErrIndexClosed      = errors.New("index is closed")
	ErrTreeModified     = errors.New("tree was modified during the scan")
)

// io and input
var (
	ErrWriteFailed     = errors.New("page write failed")
	ErrCorruptSnapshot = errors.New("index snapshot checksum mismatch")
	ErrUnknownStrategy = errors.New("unknown replacement strategy")
	ErrInvalidValue    = errors.New("invalid value literal")
	ErrIndexNotCreated = errors.New("index file has no metadata")
)

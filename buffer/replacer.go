package buffer

import (
	"strings"

	"github.com/pkg/errors"

	"pagedb/common"
)

type Strategy int

const (
	FIFO Strategy = iota
	LRU
	Clock
	LFU
)

func (s Strategy) String() string {
	switch s {
	case FIFO:
		return "fifo"
	case LRU:
		return "lru"
	case Clock:
		return "clock"
	case LFU:
		return "lfu"
	}
	return "unknown"
}

func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fifo":
		return FIFO, nil
	case "lru":
		return LRU, nil
	case "clock":
		return Clock, nil
	case "lfu":
		return LFU, nil
	}
	return 0, errors.Wrap(common.ErrUnknownStrategy, name)
}

// IReplacer keeps the bookkeeping of one replacement policy. The pool calls OnLoad after a page is read into a frame
// and OnHit when an already resident page is pinned again. ChooseVictim must only ever return a frame whose pin count
// is zero.
type IReplacer interface {
	OnLoad(frameIdx int)
	OnHit(frameIdx int)
	ChooseVictim(frames []*Page) (frameIdx int, err error)
	GetSize() int
}

func NewReplacer(strategy Strategy, size int) (IReplacer, error) {
	switch strategy {
	case FIFO:
		return NewFifoReplacer(size), nil
	case LRU:
		return NewLruReplacer(size), nil
	case Clock:
		return NewClockReplacer(size), nil
	case LFU:
		return NewLfuReplacer(size), nil
	}
	return nil, errors.Wrapf(common.ErrUnknownStrategy, "strategy %d", int(strategy))
}

var errNothingUnpinned = errors.Wrap(common.ErrNoFreeFrame, "nothing is unpinned")

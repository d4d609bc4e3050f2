package buffer

var _ IReplacer = &LruReplacer{}

// LruReplacer stamps every pin with a monotonically increasing tick and evicts the unpinned frame with the smallest
// stamp.
type LruReplacer struct {
	lastUsed []uint64
	tick     uint64
}

func NewLruReplacer(poolSize int) *LruReplacer {
	return &LruReplacer{
		lastUsed: make([]uint64, poolSize),
	}
}

func (l *LruReplacer) OnLoad(frameIdx int) {
	l.touch(frameIdx)
}

func (l *LruReplacer) OnHit(frameIdx int) {
	l.touch(frameIdx)
}

func (l *LruReplacer) touch(frameIdx int) {
	l.tick++
	l.lastUsed[frameIdx] = l.tick
}

func (l *LruReplacer) ChooseVictim(frames []*Page) (int, error) {
	victim := -1
	for idx, f := range frames {
		if !f.evictable() {
			continue
		}
		if victim == -1 || l.lastUsed[idx] < l.lastUsed[victim] {
			victim = idx
		}
	}

	if victim == -1 {
		return 0, errNothingUnpinned
	}
	return victim, nil
}

func (l *LruReplacer) GetSize() int {
	return len(l.lastUsed)
}

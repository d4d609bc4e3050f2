package buffer

var _ IReplacer = &LfuReplacer{}

// LfuReplacer evicts the unpinned frame with the fewest hits. The search starts after the previous victim so that
// frames with equal counts are taken round-robin.
type LfuReplacer struct {
	refs []int
	next int
}

func NewLfuReplacer(size int) *LfuReplacer {
	return &LfuReplacer{
		refs: make([]int, size),
	}
}

func (l *LfuReplacer) OnLoad(frameIdx int) {
	l.refs[frameIdx] = 0
}

func (l *LfuReplacer) OnHit(frameIdx int) {
	l.refs[frameIdx]++
}

func (l *LfuReplacer) ChooseVictim(frames []*Page) (int, error) {
	size := l.GetSize()
	victim := -1
	for i := 0; i < size; i++ {
		idx := (l.next + i) % size
		if !frames[idx].evictable() {
			continue
		}
		if victim == -1 || l.refs[idx] < l.refs[victim] {
			victim = idx
		}
	}

	if victim == -1 {
		return 0, errNothingUnpinned
	}

	l.next = (victim + 1) % size
	return victim, nil
}

func (l *LfuReplacer) GetSize() int {
	return len(l.refs)
}

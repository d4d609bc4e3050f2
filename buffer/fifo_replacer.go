package buffer

var _ IReplacer = &FifoReplacer{}

// FifoReplacer evicts frames in load order. The scan starts right after the previous victim and skips pinned frames.
type FifoReplacer struct {
	size int
	next int
}

func NewFifoReplacer(size int) *FifoReplacer {
	return &FifoReplacer{size: size}
}

func (f *FifoReplacer) OnLoad(int) {}

func (f *FifoReplacer) OnHit(int) {}

func (f *FifoReplacer) ChooseVictim(frames []*Page) (int, error) {
	for i := 0; i < f.size; i++ {
		idx := (f.next + i) % f.size
		if frames[idx].evictable() {
			f.next = (idx + 1) % f.size
			return idx, nil
		}
	}
	return 0, errNothingUnpinned
}

func (f *FifoReplacer) GetSize() int {
	return f.size
}

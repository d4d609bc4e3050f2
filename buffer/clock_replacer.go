package buffer

var _ IReplacer = &ClockReplacer{}

// ClockReplacer is the second chance policy. Every pin sets the frame's reference bit and a hit also moves the hand
// one step forward. A victim is the first unpinned frame under the hand whose bit is already clear; unpinned frames
// passed over lose their bit.
type ClockReplacer struct {
	secondChance   []bool
	victimIterator int
}

func NewClockReplacer(size int) *ClockReplacer {
	return &ClockReplacer{
		secondChance: make([]bool, size),
	}
}

func (c *ClockReplacer) OnLoad(frameIdx int) {
	c.secondChance[frameIdx] = true
}

func (c *ClockReplacer) OnHit(frameIdx int) {
	c.secondChance[frameIdx] = true
	c.victimIterator = (c.victimIterator + 1) % c.GetSize()
}

func (c *ClockReplacer) ChooseVictim(frames []*Page) (int, error) {
	// two full sweeps are enough: the first clears every bit it meets, the second must find a clear one.
	for step := 0; step < 2*c.GetSize(); step++ {
		idx := c.victimIterator
		c.victimIterator = (c.victimIterator + 1) % c.GetSize()

		if !frames[idx].evictable() {
			continue
		}
		if c.secondChance[idx] {
			c.secondChance[idx] = false
			continue
		}
		return idx, nil
	}

	return 0, errNothingUnpinned
}

func (c *ClockReplacer) GetSize() int {
	return len(c.secondChance)
}

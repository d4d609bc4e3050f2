package buffer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"pagedb/common"
	"pagedb/disk"
)

// Pool is the page cache interface exposed to callers storing data in pages.
type Pool interface {
	Pin(pageNum int) (*Page, error)
	Unpin(pageNum int)
	MarkDirty(pageNum int) error
	ForcePage(pageNum int) error
	FlushAll() error
	Shutdown() error
}

var _ Pool = &BufferPool{}

// BufferPool caches a fixed number of pages of a single page file. At most one frame holds a given page, only
// frames with zero pin count are evicted and a dirty frame is written back before its slot is reused.
type BufferPool struct {
	poolSize    int
	strategy    Strategy
	frames      []*Page
	pageMap     map[int]int // page number => frame index which keeps that page
	Replacer    IReplacer
	DiskManager disk.Pager
	numReadIO   int
	numWriteIO  int
	closed      bool
	lock        sync.Mutex
	log         *logrus.Entry
}

// NewBufferPool opens file and creates a pool of capacity empty frames in front of it.
func NewBufferPool(file string, capacity int, strategy Strategy) (*BufferPool, error) {
	d, err := disk.OpenPageFile(file)
	if err != nil {
		return nil, err
	}

	bp, err := NewBufferPoolWithDM(d, capacity, strategy)
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	return bp, nil
}

// NewBufferPoolWithDM creates a pool on an already opened pager. The pool takes ownership of it and closes it on
// Shutdown.
func NewBufferPoolWithDM(dm disk.Pager, capacity int, strategy Strategy) (*BufferPool, error) {
	if capacity <= 0 {
		return nil, errors.Errorf("buffer pool capacity must be positive, got %d", capacity)
	}

	r, err := NewReplacer(strategy, capacity)
	if err != nil {
		return nil, err
	}

	frames := make([]*Page, capacity)
	for i := range frames {
		frames[i] = newFrame()
	}

	bp := &BufferPool{
		poolSize:    capacity,
		strategy:    strategy,
		frames:      frames,
		pageMap:     map[int]int{},
		Replacer:    r,
		DiskManager: dm,
		log: common.Logger().WithFields(logrus.Fields{
			"file":     dm.Name(),
			"capacity": capacity,
			"strategy": strategy.String(),
		}),
	}
	bp.log.Debug("buffer pool initialized")
	return bp, nil
}

func (b *BufferPool) Pin(pageNum int) (*Page, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.closed {
		return nil, common.ErrPoolShutdown
	}
	if pageNum < 0 {
		return nil, errors.Wrapf(common.ErrReadNonExistingPage, "page %d", pageNum)
	}

	if frameIdx, ok := b.pageMap[pageNum]; ok {
		p := b.frames[frameIdx]
		p.pinCount++
		b.Replacer.OnHit(frameIdx)
		return p, nil
	}

	// if page is not resident use an empty frame, else choose a victim and write it back if it is dirty.
	frameIdx := b.reserveFrame()
	if frameIdx < 0 {
		victimIdx, err := b.evictVictim()
		if err != nil {
			return nil, err
		}
		frameIdx = victimIdx
	}

	p := b.frames[frameIdx]
	if err := b.readInto(pageNum, p); err != nil {
		// the victim, if any, is already written back so the frame is simply left empty.
		p.clear()
		return nil, err
	}

	p.pageNum = pageNum
	p.isDirty = false
	p.pinCount = 1
	b.pageMap[pageNum] = frameIdx
	b.numReadIO++
	b.Replacer.OnLoad(frameIdx)
	return p, nil
}

// NewPage pins the page right after the current end of the file, growing the file by one page.
func (b *BufferPool) NewPage() (*Page, error) {
	b.lock.Lock()
	next := b.DiskManager.TotalPages()
	b.lock.Unlock()

	return b.Pin(next)
}

// Unpin releases one pin of pageNum. Unpinning a page which is not resident is ignored.
func (b *BufferPool) Unpin(pageNum int) {
	b.lock.Lock()
	defer b.lock.Unlock()

	frameIdx, ok := b.pageMap[pageNum]
	if !ok {
		return
	}

	p := b.frames[frameIdx]
	if p.pinCount > 0 {
		p.pinCount--
	}
}

func (b *BufferPool) MarkDirty(pageNum int) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	frameIdx, ok := b.pageMap[pageNum]
	if !ok {
		return errors.Wrapf(common.ErrPageNotFound, "page %d", pageNum)
	}

	b.frames[frameIdx].isDirty = true
	return nil
}

// ForcePage writes the resident page back regardless of its dirty flag or pin count.
func (b *BufferPool) ForcePage(pageNum int) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	frameIdx, ok := b.pageMap[pageNum]
	if !ok {
		return errors.Wrapf(common.ErrPageNotFound, "page %d", pageNum)
	}

	return b.writeBack(b.frames[frameIdx])
}

// FlushAll writes back every dirty page which is not pinned. Pinned dirty pages are left as they are.
func (b *BufferPool) FlushAll() error {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.flushAll()
}

func (b *BufferPool) flushAll() error {
	for _, p := range b.frames {
		if p.evictable() && p.isDirty {
			if err := b.writeBack(p); err != nil {
				return err
			}
		}
	}
	return nil
}

// Shutdown flushes the pool and releases its frames and its page file. It refuses with ErrPagesStillPinned while
// any page is pinned; the pool stays usable in that case.
func (b *BufferPool) Shutdown() error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.closed {
		return nil
	}

	if err := b.flushAll(); err != nil {
		return err
	}

	for _, p := range b.frames {
		if n := p.GetPinCount(); n > 0 {
			return errors.Wrapf(common.ErrPagesStillPinned, "page %d has pin count %d", p.pageNum, n)
		}
	}

	b.closed = true
	b.frames = nil
	b.pageMap = nil
	b.log.WithFields(logrus.Fields{"reads": b.numReadIO, "writes": b.numWriteIO}).Debug("buffer pool shut down")
	return b.DiskManager.Close()
}

// FrameContents returns the page number held by each frame, NoPage for empty frames.
func (b *BufferPool) FrameContents() []int {
	b.lock.Lock()
	defer b.lock.Unlock()

	res := make([]int, len(b.frames))
	for i, p := range b.frames {
		res[i] = p.pageNum
	}
	return res
}

func (b *BufferPool) DirtyFlags() []bool {
	b.lock.Lock()
	defer b.lock.Unlock()

	res := make([]bool, len(b.frames))
	for i, p := range b.frames {
		res[i] = p.isDirty
	}
	return res
}

func (b *BufferPool) FixCounts() []int {
	b.lock.Lock()
	defer b.lock.Unlock()

	res := make([]int, len(b.frames))
	for i, p := range b.frames {
		res[i] = p.pinCount
	}
	return res
}

func (b *BufferPool) NumReadIO() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.numReadIO
}

func (b *BufferPool) NumWriteIO() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.numWriteIO
}

func (b *BufferPool) Capacity() int {
	return b.poolSize
}

func (b *BufferPool) Strategy() Strategy {
	return b.strategy
}

func (b *BufferPool) EmptyFrameSize() int {
	b.lock.Lock()
	defer b.lock.Unlock()

	n := 0
	for _, p := range b.frames {
		if p.isEmpty() {
			n++
		}
	}
	return n
}

// String renders frames as [page dirty fixcount] where dirty is 'x' for dirty pages, e.g. "[3x0],[2 0],[-1 0]".
func (b *BufferPool) String() string {
	b.lock.Lock()
	defer b.lock.Unlock()

	parts := make([]string, len(b.frames))
	for i, p := range b.frames {
		d := " "
		if p.isDirty {
			d = "x"
		}
		parts[i] = fmt.Sprintf("[%d%s%d]", p.pageNum, d, p.pinCount)
	}
	return strings.Join(parts, ",")
}

// reserveFrame returns the first empty frame or -1 when the pool is full.
func (b *BufferPool) reserveFrame() int {
	for idx, p := range b.frames {
		if p.isEmpty() {
			return idx
		}
	}
	return -1
}

// evictVictim chooses a victim frame, writes its page to disk if it is dirty and returns the emptied frame's index.
func (b *BufferPool) evictVictim() (int, error) {
	victimIdx, err := b.Replacer.ChooseVictim(b.frames)
	if err != nil {
		return 0, err
	}

	victim := b.frames[victimIdx]
	common.Assert(victim.pinCount == 0, "a page is chosen as victim while it's pin count is not zero. pin count: %v, page: %v", victim.pinCount, victim.pageNum)

	if victim.isDirty {
		if err := b.writeBack(victim); err != nil {
			return 0, err
		}
	}

	b.log.WithField("page", victim.pageNum).Debug("evicted")
	delete(b.pageMap, victim.pageNum)
	victim.clear()
	return victimIdx, nil
}

func (b *BufferPool) readInto(pageNum int, p *Page) error {
	if err := b.DiskManager.EnsureCapacity(pageNum + 1); err != nil {
		return err
	}
	return b.DiskManager.ReadPage(pageNum, p.Data)
}

func (b *BufferPool) writeBack(p *Page) error {
	if err := b.DiskManager.WritePage(p.pageNum, p.Data); err != nil {
		return err
	}
	p.isDirty = false
	b.numWriteIO++
	return nil
}

package buffer

import (
	"pagedb/disk"
)

// NoPage marks a frame which does not hold any page.
const NoPage = -1

// Page is a frame of the pool. The pointer returned by Pin stays valid until the matching Unpin; after that the
// frame may be reused for another page.
type Page struct {
	pageNum  int
	isDirty  bool
	pinCount int
	Data     []byte
}

func newFrame() *Page {
	return &Page{
		pageNum: NoPage,
		Data:    make([]byte, disk.PageSize),
	}
}

func (p *Page) GetPageNum() int {
	return p.pageNum
}

func (p *Page) GetPinCount() int {
	return p.pinCount
}

func (p *Page) IsDirty() bool {
	return p.isDirty
}

func (p *Page) isEmpty() bool {
	return p.pageNum == NoPage
}

func (p *Page) evictable() bool {
	return !p.isEmpty() && p.pinCount == 0
}

func (p *Page) clear() {
	p.pageNum = NoPage
	p.isDirty = false
	p.pinCount = 0
	for i := range p.Data {
		p.Data[i] = 0
	}
}

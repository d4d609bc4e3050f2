package disk

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"pagedb/common"
)

const PageSize int = 4096

// Pager is what the buffer pool needs from a paged file. Every call works on whole pages.
type Pager interface {
	ReadPage(pageNum int, dest []byte) error
	WritePage(pageNum int, data []byte) error
	AppendEmptyPage() error
	EnsureCapacity(numPages int) error
	TotalPages() int
	Name() string
	Close() error
}

var _ Pager = &PageFile{}

// PageFile owns the file handle for as long as it is open. curPage is the block cursor used by the Read*Block
// helpers.
type PageFile struct {
	file       *os.File
	name       string
	totalPages int
	curPage    int
}

// CreatePageFile creates name with a single zeroed page. An existing file is truncated.
func CreatePageFile(name string) error {
	f, err := os.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return errors.Wrapf(err, "page file %s cannot be created", name)
	}

	if _, err := f.Write(make([]byte, PageSize)); err != nil {
		_ = f.Close()
		return errors.Wrapf(common.ErrWriteFailed, "page file %s: %v", name, err)
	}

	common.Logger().WithField("file", name).Debug("page file created")
	return f.Close()
}

func OpenPageFile(name string) (*PageFile, error) {
	f, err := os.OpenFile(name, os.O_RDWR, 0644)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(common.ErrFileNotFound, name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "page file %s cannot be opened", name)
	}

	stats, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "error while reading file stat")
	}

	p := &PageFile{
		file:       f,
		name:       name,
		totalPages: int(stats.Size()) / PageSize,
	}
	common.Logger().WithFields(logrus.Fields{"file": name, "pages": p.totalPages}).Debug("page file opened")
	return p, nil
}

func DestroyPageFile(name string) error {
	err := os.Remove(name)
	if os.IsNotExist(err) {
		return errors.Wrap(common.ErrFileNotFound, name)
	}
	return err
}

func (p *PageFile) Name() string {
	return p.name
}

func (p *PageFile) TotalPages() int {
	return p.totalPages
}

func (p *PageFile) BlockPos() int {
	return p.curPage
}

func (p *PageFile) ReadPage(pageNum int, dest []byte) error {
	if pageNum < 0 || pageNum >= p.totalPages {
		return errors.Wrapf(common.ErrReadNonExistingPage, "page %d of %s (total %d)", pageNum, p.name, p.totalPages)
	}

	n, err := p.file.ReadAt(dest[:PageSize], int64(pageNum)*int64(PageSize))
	if err != nil && err != io.EOF {
		return errors.Wrapf(err, "page %d of %s cannot be read", pageNum, p.name)
	}
	if n != PageSize {
		return errors.Errorf("partial page %d in %s: read %d bytes", pageNum, p.name, n)
	}

	p.curPage = pageNum
	return nil
}

// WritePage writes data at pageNum. pageNum may be at most one past the last page, in which case the file grows.
func (p *PageFile) WritePage(pageNum int, data []byte) error {
	if pageNum < 0 || pageNum > p.totalPages {
		return errors.Wrapf(common.ErrWriteFailed, "page %d out of range for %s (total %d)", pageNum, p.name, p.totalPages)
	}

	n, err := p.file.WriteAt(data[:PageSize], int64(pageNum)*int64(PageSize))
	if err != nil {
		return errors.Wrapf(common.ErrWriteFailed, "page %d of %s: %v", pageNum, p.name, err)
	}
	if n != PageSize {
		return errors.Wrapf(common.ErrWriteFailed, "short write on page %d of %s", pageNum, p.name)
	}

	if pageNum == p.totalPages {
		p.totalPages++
	}
	p.curPage = pageNum
	return nil
}

func (p *PageFile) AppendEmptyPage() error {
	return p.WritePage(p.totalPages, make([]byte, PageSize))
}

// EnsureCapacity appends zeroed pages until the file holds at least numPages pages.
func (p *PageFile) EnsureCapacity(numPages int) error {
	for p.totalPages < numPages {
		if err := p.AppendEmptyPage(); err != nil {
			return err
		}
	}
	return nil
}

func (p *PageFile) Close() error {
	if p.file == nil {
		return nil
	}
	err := p.file.Close()
	p.file = nil
	return err
}

func (p *PageFile) ReadFirstBlock(dest []byte) error {
	return p.ReadPage(0, dest)
}

func (p *PageFile) ReadPreviousBlock(dest []byte) error {
	return p.ReadPage(p.curPage-1, dest)
}

func (p *PageFile) ReadCurrentBlock(dest []byte) error {
	return p.ReadPage(p.curPage, dest)
}

func (p *PageFile) ReadNextBlock(dest []byte) error {
	return p.ReadPage(p.curPage+1, dest)
}

func (p *PageFile) ReadLastBlock(dest []byte) error {
	return p.ReadPage(p.totalPages-1, dest)
}

func (p *PageFile) WriteCurrentBlock(data []byte) error {
	return p.WritePage(p.curPage, data)
}

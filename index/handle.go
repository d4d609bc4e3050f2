package index

import (
	"github.com/sirupsen/logrus"

	"pagedb/btree"
	"pagedb/buffer"
	"pagedb/common"
	"pagedb/types"
)

// Handle is an open index. Updates live in memory until Close writes them back.
type Handle struct {
	name   string
	tree   *btree.BTree
	pool   *buffer.BufferPool
	mgr    *Manager
	log    *logrus.Entry
	closed bool
}

func (h *Handle) Name() string {
	return h.name
}

func (h *Handle) KeyType() types.DataType {
	return h.tree.KeyType()
}

func (h *Handle) NumNodes() int {
	return h.tree.NumNodes()
}

func (h *Handle) NumEntries() int {
	return h.tree.NumEntries()
}

func (h *Handle) InsertKey(key types.Value, rid btree.RID) error {
	if h.closed {
		return common.ErrIndexClosed
	}
	return h.tree.Insert(key, rid)
}

func (h *Handle) FindKey(key types.Value) (btree.RID, error) {
	if h.closed {
		return btree.RID{}, common.ErrIndexClosed
	}
	return h.tree.Find(key)
}

func (h *Handle) DeleteKey(key types.Value) error {
	if h.closed {
		return common.ErrIndexClosed
	}
	return h.tree.Delete(key)
}

// Dump renders the tree level by level.
func (h *Handle) Dump() string {
	return h.tree.Dump()
}

// OpenTreeScan starts a scan over all entries in ascending key order.
func (h *Handle) OpenTreeScan() (*Scan, error) {
	if h.closed {
		return nil, common.ErrIndexClosed
	}
	return &Scan{h: h, it: h.tree.Iterator()}, nil
}

// Close writes the entries to the index file and releases the page cache.
func (h *Handle) Close() error {
	if h.closed {
		return nil
	}

	if err := saveSnapshot(h.pool, h.tree); err != nil {
		return err
	}
	if err := h.pool.Shutdown(); err != nil {
		return err
	}

	h.log.WithFields(logrus.Fields{
		"entries": h.tree.NumEntries(),
		"nodes":   h.tree.NumNodes(),
		"reads":   h.pool.NumReadIO(),
		"writes":  h.pool.NumWriteIO(),
	}).Debug("index closed")

	h.tree.Close()
	h.closed = true
	h.mgr.release(h.name)
	return nil
}

// Scan is a forward only cursor over an index. Updates to the index make it fail with
// common.ErrTreeModified, closing the index makes it fail with common.ErrIndexClosed.
type Scan struct {
	h  *Handle
	it *btree.Iterator
}

// NextEntry returns the rid of the next entry or common.ErrNoMoreEntries.
func (s *Scan) NextEntry() (btree.RID, error) {
	_, rid, err := s.NextKeyEntry()
	return rid, err
}

// NextKeyEntry is NextEntry that also returns the key.
func (s *Scan) NextKeyEntry() (types.Value, btree.RID, error) {
	if s.it == nil {
		return types.Value{}, btree.RID{}, common.ErrNoMoreEntries
	}
	if s.h.closed {
		return types.Value{}, btree.RID{}, common.ErrIndexClosed
	}
	return s.it.NextEntry()
}

func (s *Scan) Close() {
	s.it = nil
}

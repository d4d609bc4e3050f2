package index

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"pagedb/btree"
	"pagedb/buffer"
	"pagedb/common"
	"pagedb/config"
	"pagedb/disk"
	"pagedb/types"
)

// Manager creates, opens and deletes named indexes stored as page files under the
// configured data directory.
type Manager struct {
	cfg      *config.Config
	strategy buffer.Strategy
	open     map[string]*Handle
	lock     sync.Mutex
	log      *logrus.Entry
}

func NewManager(cfg *config.Config) (*Manager, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	strategy, err := buffer.ParseStrategy(cfg.IndexStrategy)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		cfg:      cfg,
		strategy: strategy,
		open:     map[string]*Handle{},
		log:      common.Logger().WithField("component", "index"),
	}
	m.log.WithFields(logrus.Fields{"dir": cfg.DataDir, "pool_capacity": cfg.IndexPoolCapacity}).Debug("index manager initialized")
	return m, nil
}

// Shutdown closes every index that is still open.
func (m *Manager) Shutdown() error {
	m.lock.Lock()
	handles := make([]*Handle, 0, len(m.open))
	for _, h := range m.open {
		handles = append(handles, h)
	}
	m.lock.Unlock()

	for _, h := range handles {
		if err := h.Close(); err != nil {
			return err
		}
	}
	return nil
}

// CreateBtree creates an empty index file. Nodes of the index hold at most n+1 keys
// and n+2 children.
func (m *Manager) CreateBtree(name string, keyType types.DataType, n int) error {
	order := n + 2
	tree, err := btree.New(keyType, order)
	if err != nil {
		return err
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	if _, ok := m.open[name]; ok {
		return errors.Wrapf(common.ErrIndexAlreadyOpen, "index %s", name)
	}

	path := m.cfg.Path(name)
	if err := disk.CreatePageFile(path); err != nil {
		return err
	}

	pool, err := buffer.NewBufferPool(path, 1, m.strategy)
	if err != nil {
		return err
	}
	if err := saveSnapshot(pool, tree); err != nil {
		_ = pool.Shutdown()
		return err
	}
	if err := pool.Shutdown(); err != nil {
		return err
	}

	m.log.WithFields(logrus.Fields{"index": name, "key_type": keyType.String(), "order": order}).Info("index created")
	return nil
}

// OpenBtree attaches a page cache to the index file and loads its entries.
func (m *Manager) OpenBtree(name string) (*Handle, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if _, ok := m.open[name]; ok {
		return nil, errors.Wrapf(common.ErrIndexAlreadyOpen, "index %s", name)
	}

	path := m.cfg.Path(name)
	pool, err := buffer.NewBufferPool(path, m.cfg.IndexPoolCapacity, m.strategy)
	if err != nil {
		return nil, err
	}

	meta, err := readMetadata(pool)
	if err == nil {
		var tree *btree.BTree
		if tree, err = loadSnapshot(pool, meta); err == nil {
			h := &Handle{
				name: name,
				tree: tree,
				pool: pool,
				mgr:  m,
				log:  m.log.WithField("index", name),
			}
			m.open[name] = h
			h.log.WithField("entries", tree.NumEntries()).Debug("index opened")
			return h, nil
		}
	}

	_ = pool.Shutdown()
	return nil, errors.Wrapf(err, "opening index %s", name)
}

// DeleteBtree removes the index file. An open index must be closed first.
func (m *Manager) DeleteBtree(name string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if _, ok := m.open[name]; ok {
		return errors.Wrapf(common.ErrIndexAlreadyOpen, "index %s", name)
	}

	if err := disk.DestroyPageFile(m.cfg.Path(name)); err != nil {
		return err
	}
	m.log.WithField("index", name).Info("index deleted")
	return nil
}

func (m *Manager) release(name string) {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.open, name)
}

package index

import (
	"encoding/binary"

	"github.com/OneOfOne/xxhash"
	"github.com/pkg/errors"

	"pagedb/btree"
	"pagedb/buffer"
	"pagedb/common"
	"pagedb/disk"
	"pagedb/types"
)

var magic = [4]byte{'P', 'G', 'B', 'T'}

const (
	metaPage      = 0
	firstDataPage = 1
	ridSize       = 8
)

/*
metadata page layout:
-------------------------------------------------------------
| magic(4) | keyType(1) | order(4) | entries(4) | payloadLen(4) | checksum(8) |
-------------------------------------------------------------
the payload is the list of (key, rid) pairs in ascending key order, written from
page 1 onwards and split at page boundaries.
*/
type metadata struct {
	keyType    types.DataType
	order      int
	numEntries int
	payloadLen int
	checksum   uint64
}

func (m *metadata) encode(dest []byte) {
	for i := range dest {
		dest[i] = 0
	}
	copy(dest, magic[:])
	dest[4] = byte(m.keyType)
	binary.LittleEndian.PutUint32(dest[5:], uint32(m.order))
	binary.LittleEndian.PutUint32(dest[9:], uint32(m.numEntries))
	binary.LittleEndian.PutUint32(dest[13:], uint32(m.payloadLen))
	binary.LittleEndian.PutUint64(dest[17:], m.checksum)
}

func decodeMetadata(src []byte) (metadata, error) {
	if [4]byte(src[:4]) != magic {
		return metadata{}, common.ErrIndexNotCreated
	}

	return metadata{
		keyType:    types.DataType(src[4]),
		order:      int(binary.LittleEndian.Uint32(src[5:])),
		numEntries: int(binary.LittleEndian.Uint32(src[9:])),
		payloadLen: int(binary.LittleEndian.Uint32(src[13:])),
		checksum:   binary.LittleEndian.Uint64(src[17:]),
	}, nil
}

func checksum(payload []byte) uint64 {
	h := xxhash.New64()
	h.Write(payload)
	return h.Sum64()
}

func encodeEntries(tree *btree.BTree) []byte {
	var payload []byte
	it := tree.Iterator()
	for {
		k, rid, err := it.NextEntry()
		if err != nil {
			break
		}
		payload = k.AppendBinary(payload)
		payload = binary.LittleEndian.AppendUint32(payload, uint32(rid.Page))
		payload = binary.LittleEndian.AppendUint32(payload, uint32(rid.Slot))
	}
	return payload
}

func decodeEntries(tree *btree.BTree, payload []byte, n int) error {
	for i := 0; i < n; i++ {
		k, read, err := types.DecodeValue(tree.KeyType(), payload)
		if err != nil {
			return errors.Wrapf(common.ErrCorruptSnapshot, "entry %d: %v", i, err)
		}
		payload = payload[read:]
		if len(payload) < ridSize {
			return errors.Wrapf(common.ErrCorruptSnapshot, "entry %d: short rid", i)
		}

		rid := btree.RID{
			Page: int32(binary.LittleEndian.Uint32(payload)),
			Slot: int32(binary.LittleEndian.Uint32(payload[4:])),
		}
		payload = payload[ridSize:]
		if err := tree.Insert(k, rid); err != nil {
			return errors.Wrapf(common.ErrCorruptSnapshot, "entry %d: %v", i, err)
		}
	}
	return nil
}

// writePage copies src into page pageNum through the pool and marks it dirty.
func writePage(pool buffer.Pool, pageNum int, src []byte) error {
	p, err := pool.Pin(pageNum)
	if err != nil {
		return err
	}
	defer pool.Unpin(pageNum)

	n := copy(p.Data, src)
	for i := n; i < len(p.Data); i++ {
		p.Data[i] = 0
	}
	return pool.MarkDirty(pageNum)
}

func readPage(pool buffer.Pool, pageNum int, dest []byte) error {
	p, err := pool.Pin(pageNum)
	if err != nil {
		return err
	}
	defer pool.Unpin(pageNum)

	copy(dest, p.Data)
	return nil
}

func writeMetadata(pool buffer.Pool, m *metadata) error {
	buf := make([]byte, disk.PageSize)
	m.encode(buf)
	return writePage(pool, metaPage, buf)
}

func readMetadata(pool buffer.Pool) (metadata, error) {
	buf := make([]byte, disk.PageSize)
	if err := readPage(pool, metaPage, buf); err != nil {
		return metadata{}, err
	}
	return decodeMetadata(buf)
}

// saveSnapshot writes every entry of tree to the data pages and the matching
// metadata to page 0.
func saveSnapshot(pool buffer.Pool, tree *btree.BTree) error {
	payload := encodeEntries(tree)
	for off, pageNum := 0, firstDataPage; off < len(payload); off, pageNum = off+disk.PageSize, pageNum+1 {
		end := off + disk.PageSize
		if end > len(payload) {
			end = len(payload)
		}
		if err := writePage(pool, pageNum, payload[off:end]); err != nil {
			return errors.Wrapf(err, "writing snapshot page %d", pageNum)
		}
	}

	return writeMetadata(pool, &metadata{
		keyType:    tree.KeyType(),
		order:      tree.Order(),
		numEntries: tree.NumEntries(),
		payloadLen: len(payload),
		checksum:   checksum(payload),
	})
}

// loadSnapshot rebuilds the tree described by m from the data pages.
func loadSnapshot(pool buffer.Pool, m metadata) (*btree.BTree, error) {
	tree, err := btree.New(m.keyType, m.order)
	if err != nil {
		return nil, errors.Wrap(common.ErrCorruptSnapshot, err.Error())
	}

	numPages := (m.payloadLen + disk.PageSize - 1) / disk.PageSize
	payload := make([]byte, numPages*disk.PageSize)
	for i := 0; i < numPages; i++ {
		if err := readPage(pool, firstDataPage+i, payload[i*disk.PageSize:]); err != nil {
			return nil, errors.Wrapf(common.ErrCorruptSnapshot, "reading page %d: %v", firstDataPage+i, err)
		}
	}
	payload = payload[:m.payloadLen]

	if checksum(payload) != m.checksum {
		return nil, errors.Wrapf(common.ErrCorruptSnapshot, "checksum mismatch")
	}
	if err := decodeEntries(tree, payload, m.numEntries); err != nil {
		return nil, err
	}
	return tree, nil
}

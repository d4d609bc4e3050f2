package btree

import (
	"pagedb/common"
	"pagedb/types"
)

// Iterator walks the leaf chain in ascending key order. Once its tree is changed by
// Insert, Delete or Close the iterator only returns common.ErrTreeModified.
type Iterator struct {
	tree     *BTree
	curr     nodeID
	idx      int
	modCount uint64
}

// Iterator returns an iterator positioned before the smallest key.
func (tree *BTree) Iterator() *Iterator {
	it := &Iterator{tree: tree, curr: nilNode, modCount: tree.modCount}
	if leaf := tree.leftmostLeaf(); leaf != nil {
		it.curr = leaf.id
	}
	return it
}

// IteratorFrom returns an iterator positioned before the smallest key not less than
// from.
func (tree *BTree) IteratorFrom(from types.Value) (*Iterator, error) {
	if err := tree.checkKey(from); err != nil {
		return nil, err
	}

	it := &Iterator{tree: tree, curr: nilNode, modCount: tree.modCount}
	if leaf := tree.findLeaf(from); leaf != nil {
		it.curr = leaf.id
		it.idx = leaf.insertionPoint(from)
	}
	return it, nil
}

// Next returns the next rid or common.ErrNoMoreEntries.
func (it *Iterator) Next() (RID, error) {
	_, rid, err := it.NextEntry()
	return rid, err
}

func (it *Iterator) NextEntry() (types.Value, RID, error) {
	if it.modCount != it.tree.modCount {
		return types.Value{}, RID{}, common.ErrTreeModified
	}

	for it.curr != nilNode {
		n := it.tree.get(it.curr)
		if it.idx < n.numKeys() {
			k, r := n.keys[it.idx], n.rids[it.idx]
			it.idx++
			return k, r, nil
		}
		it.curr = n.next
		it.idx = 0
	}
	return types.Value{}, RID{}, common.ErrNoMoreEntries
}

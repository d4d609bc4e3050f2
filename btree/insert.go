package btree

import (
	"github.com/pkg/errors"

	"pagedb/common"
	"pagedb/types"
)

// Insert stores rid under key. Keys are unique.
func (tree *BTree) Insert(key types.Value, rid RID) error {
	if err := tree.checkKey(key); err != nil {
		return err
	}

	if tree.root == nilNode {
		tree.modCount++
		root := tree.newNode(true)
		root.keys = append(root.keys, key)
		root.rids = append(root.rids, rid)
		tree.root = root.id
		tree.numEntries++
		return nil
	}

	leaf := tree.findLeaf(key)
	if leaf.keyIndex(key) >= 0 {
		return errors.Wrapf(common.ErrKeyAlreadyExists, "key %v", key)
	}

	tree.modCount++
	tree.numEntries++
	if leaf.numKeys() < tree.order-1 {
		i := leaf.insertionPoint(key)
		leaf.keys = insertAt(leaf.keys, i, key)
		leaf.rids = insertAt(leaf.rids, i, rid)
		return nil
	}

	tree.splitLeaf(leaf, key, rid)
	return nil
}

// splitLeaf inserts into a full leaf. The lower half stays, the upper half moves to
// a new right sibling whose first key is pushed to the parent.
func (tree *BTree) splitLeaf(leaf *node, key types.Value, rid RID) {
	i := leaf.insertionPoint(key)
	keys := insertAt(append([]types.Value(nil), leaf.keys...), i, key)
	rids := insertAt(append([]RID(nil), leaf.rids...), i, rid)

	split := common.CeilHalf(tree.order - 1)
	right := tree.newNode(true)

	leaf.keys = append(leaf.keys[:0], keys[:split]...)
	leaf.rids = append(leaf.rids[:0], rids[:split]...)
	right.keys = append(right.keys, keys[split:]...)
	right.rids = append(right.rids, rids[split:]...)

	right.next = leaf.next
	leaf.next = right.id
	right.parent = leaf.parent

	tree.insertIntoParent(leaf, right.keys[0], right)
}

func (tree *BTree) insertIntoParent(left *node, key types.Value, right *node) {
	if left.parent == nilNode {
		root := tree.newNode(false)
		root.keys = append(root.keys, key)
		root.children = append(root.children, left.id, right.id)
		left.parent = root.id
		right.parent = root.id
		tree.root = root.id
		return
	}

	parent := tree.get(left.parent)
	leftIndex := parent.positionOf(left.id)
	common.Assert(leftIndex >= 0, "node %d is not a child of %d", left.id, parent.id)

	if parent.numKeys() < tree.order-1 {
		parent.keys = insertAt(parent.keys, leftIndex, key)
		parent.children = insertAt(parent.children, leftIndex+1, right.id)
		right.parent = parent.id
		return
	}

	tree.splitInternal(parent, leftIndex, key, right)
}

// splitInternal inserts key and right into a full internal node. The key in the
// middle of the overflowing node moves up and is kept in neither half.
func (tree *BTree) splitInternal(old *node, leftIndex int, key types.Value, right *node) {
	keys := insertAt(append([]types.Value(nil), old.keys...), leftIndex, key)
	children := insertAt(append([]nodeID(nil), old.children...), leftIndex+1, right.id)

	split := common.CeilHalf(tree.order - 1)
	sibling := tree.newNode(false)

	old.keys = append(old.keys[:0], keys[:split-1]...)
	old.children = append(old.children[:0], children[:split]...)
	kPrime := keys[split-1]
	sibling.keys = append(sibling.keys, keys[split:]...)
	sibling.children = append(sibling.children, children[split:]...)

	sibling.parent = old.parent
	tree.adopt(old)
	tree.adopt(sibling)

	tree.insertIntoParent(old, kPrime, sibling)
}

package btree

import (
	"pagedb/common"
	"pagedb/types"
)

// Delete removes key from the tree. Deleting a missing key is a no-op.
func (tree *BTree) Delete(key types.Value) error {
	if err := tree.checkKey(key); err != nil {
		return err
	}

	leaf := tree.findLeaf(key)
	if leaf == nil {
		return nil
	}
	i := leaf.keyIndex(key)
	if i < 0 {
		return nil
	}

	tree.modCount++
	tree.deleteEntry(leaf, i, i)
	return nil
}

// deleteEntry removes keys[keyIndex] and, for internal nodes, children[childIndex] from
// n and then restores the occupancy bounds by merging or borrowing.
func (tree *BTree) deleteEntry(n *node, keyIndex, childIndex int) {
	n.keys = removeAt(n.keys, keyIndex)
	if n.isLeaf {
		n.rids = removeAt(n.rids, keyIndex)
		tree.numEntries--
	} else {
		n.children = removeAt(n.children, childIndex)
	}

	if n.id == tree.root {
		tree.adjustRoot()
		return
	}

	if n.numKeys() >= tree.minKeys(n) {
		return
	}

	parent := tree.get(n.parent)
	neighborIndex := parent.positionOf(n.id) - 1
	kPrimeIndex := neighborIndex
	var neighbor *node
	if neighborIndex == -1 {
		kPrimeIndex = 0
		neighbor = tree.get(parent.children[1])
	} else {
		neighbor = tree.get(parent.children[neighborIndex])
	}

	capacity := tree.order - 1
	if n.isLeaf {
		capacity = tree.order
	}

	if neighbor.numKeys()+n.numKeys() < capacity {
		tree.merge(n, neighbor, neighborIndex, kPrimeIndex)
	} else {
		tree.redistribute(n, neighbor, neighborIndex, kPrimeIndex)
	}
}

func (tree *BTree) minKeys(n *node) int {
	if n.isLeaf {
		return common.CeilHalf(tree.order - 1)
	}
	return common.CeilHalf(tree.order) - 1
}

func (tree *BTree) adjustRoot() {
	root := tree.get(tree.root)
	if root.numKeys() > 0 {
		return
	}

	if root.isLeaf {
		tree.root = nilNode
	} else {
		child := tree.get(root.children[0])
		child.parent = nilNode
		tree.root = child.id
	}
	tree.release(root)
}

// merge folds the right one of n and neighbor into the left one and removes the
// separating key from their parent.
func (tree *BTree) merge(n, neighbor *node, neighborIndex, kPrimeIndex int) {
	if neighborIndex == -1 {
		n, neighbor = neighbor, n
	}
	parent := tree.get(n.parent)

	if n.isLeaf {
		neighbor.keys = append(neighbor.keys, n.keys...)
		neighbor.rids = append(neighbor.rids, n.rids...)
		neighbor.next = n.next
	} else {
		neighbor.keys = append(neighbor.keys, parent.keys[kPrimeIndex])
		neighbor.keys = append(neighbor.keys, n.keys...)
		neighbor.children = append(neighbor.children, n.children...)
		tree.adopt(neighbor)
	}

	tree.deleteEntry(parent, kPrimeIndex, kPrimeIndex+1)
	tree.release(n)
}

// redistribute moves one entry from neighbor into n and fixes the separator in the
// parent.
func (tree *BTree) redistribute(n, neighbor *node, neighborIndex, kPrimeIndex int) {
	parent := tree.get(n.parent)
	kPrime := parent.keys[kPrimeIndex]

	if neighborIndex != -1 {
		last := neighbor.numKeys() - 1
		if n.isLeaf {
			n.keys = insertAt(n.keys, 0, neighbor.keys[last])
			n.rids = insertAt(n.rids, 0, neighbor.rids[last])
			neighbor.rids = neighbor.rids[:last]
			parent.keys[kPrimeIndex] = n.keys[0]
		} else {
			moved := neighbor.children[last+1]
			n.children = insertAt(n.children, 0, moved)
			n.keys = insertAt(n.keys, 0, kPrime)
			tree.get(moved).parent = n.id
			parent.keys[kPrimeIndex] = neighbor.keys[last]
			neighbor.children = neighbor.children[:last+1]
		}
		neighbor.keys = neighbor.keys[:last]
		return
	}

	if n.isLeaf {
		n.keys = append(n.keys, neighbor.keys[0])
		n.rids = append(n.rids, neighbor.rids[0])
		neighbor.keys = removeAt(neighbor.keys, 0)
		neighbor.rids = removeAt(neighbor.rids, 0)
		parent.keys[kPrimeIndex] = neighbor.keys[0]
		return
	}

	moved := neighbor.children[0]
	n.keys = append(n.keys, kPrime)
	n.children = append(n.children, moved)
	tree.get(moved).parent = n.id
	parent.keys[kPrimeIndex] = neighbor.keys[0]
	neighbor.keys = removeAt(neighbor.keys, 0)
	neighbor.children = removeAt(neighbor.children, 0)
}

package btree

import (
	"github.com/pkg/errors"

	"pagedb/common"
	"pagedb/types"
)

// MinOrder is the smallest order for which every internal node keeps at least one key
// after a split.
const MinOrder = 4

// BTree is an in-memory B+Tree mapping unique typed keys to record ids. Nodes live
// in an arena and reference each other by id. A BTree is not safe for concurrent use.
type BTree struct {
	keyType types.DataType
	order   int
	root    nodeID

	nodes []*node
	free  []nodeID

	numNodes   int
	numEntries int

	// bumped by every change to the key set, iterators compare it against their copy
	modCount uint64
}

// New creates an empty tree. order is the maximum number of children of a node.
func New(keyType types.DataType, order int) (*BTree, error) {
	if order < MinOrder {
		return nil, errors.Wrapf(common.ErrOrderTooLow, "order %d", order)
	}
	if err := CheckOrder(keyType, order); err != nil {
		return nil, err
	}

	return &BTree{
		keyType: keyType,
		order:   order,
		root:    nilNode,
	}, nil
}

func (tree *BTree) KeyType() types.DataType {
	return tree.keyType
}

func (tree *BTree) Order() int {
	return tree.order
}

// NumNodes returns the number of live nodes.
func (tree *BTree) NumNodes() int {
	return tree.numNodes
}

// NumEntries returns the number of keys stored in leaves.
func (tree *BTree) NumEntries() int {
	return tree.numEntries
}

// Height returns the number of levels, 0 for an empty tree.
func (tree *BTree) Height() int {
	h := 0
	for c := tree.root; c != nilNode; h++ {
		n := tree.get(c)
		if n.isLeaf {
			return h + 1
		}
		c = n.children[0]
	}
	return h
}

// Close releases every node. The tree is empty afterwards.
func (tree *BTree) Close() {
	tree.nodes = nil
	tree.free = nil
	tree.root = nilNode
	tree.numNodes = 0
	tree.numEntries = 0
	tree.modCount++
}

// Find returns the rid stored under key.
func (tree *BTree) Find(key types.Value) (RID, error) {
	if err := tree.checkKey(key); err != nil {
		return RID{}, err
	}

	leaf := tree.findLeaf(key)
	if leaf == nil {
		return RID{}, common.ErrKeyNotFound
	}
	i := leaf.keyIndex(key)
	if i < 0 {
		return RID{}, common.ErrKeyNotFound
	}
	return leaf.rids[i], nil
}

func (tree *BTree) checkKey(key types.Value) error {
	if key.Type() != tree.keyType {
		return errors.Wrapf(common.ErrInvalidValue, "key %v is not of type %v", key, tree.keyType)
	}
	return key.Validate()
}

func (tree *BTree) findLeaf(key types.Value) *node {
	if tree.root == nilNode {
		return nil
	}
	n := tree.get(tree.root)
	for !n.isLeaf {
		n = tree.get(n.children[n.childIndex(key)])
	}
	return n
}

func (tree *BTree) leftmostLeaf() *node {
	if tree.root == nilNode {
		return nil
	}
	n := tree.get(tree.root)
	for !n.isLeaf {
		n = tree.get(n.children[0])
	}
	return n
}

func (tree *BTree) get(id nodeID) *node {
	common.Assert(id >= 0 && int(id) < len(tree.nodes) && tree.nodes[id] != nil, "dangling node id %d", id)
	return tree.nodes[id]
}

func (tree *BTree) newNode(isLeaf bool) *node {
	n := &node{isLeaf: isLeaf, parent: nilNode, next: nilNode}
	if l := len(tree.free); l > 0 {
		n.id = tree.free[l-1]
		tree.free = tree.free[:l-1]
		tree.nodes[n.id] = n
	} else {
		n.id = nodeID(len(tree.nodes))
		tree.nodes = append(tree.nodes, n)
	}

	if isLeaf {
		n.keys = make([]types.Value, 0, tree.order-1)
		n.rids = make([]RID, 0, tree.order-1)
	} else {
		n.keys = make([]types.Value, 0, tree.order-1)
		n.children = make([]nodeID, 0, tree.order)
	}
	tree.numNodes++
	return n
}

func (tree *BTree) release(n *node) {
	tree.nodes[n.id] = nil
	tree.free = append(tree.free, n.id)
	tree.numNodes--
}

func (tree *BTree) adopt(parent *node) {
	for _, c := range parent.children {
		tree.get(c).parent = parent.id
	}
}

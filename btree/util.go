package btree

import (
	"strings"

	"github.com/pkg/errors"

	"pagedb/common"
	"pagedb/disk"
	"pagedb/types"
)

const (
	// is leaf, key count, parent and next leaf
	nodeHeaderSize = 1 + 2 + 4 + 4
	pointerSize    = 8
)

// NodeImageSize is the size of a full node of the given order when written to a page.
func NodeImageSize(keyType types.DataType, order int) int {
	return nodeHeaderSize + (order-1)*types.GetType(keyType).Length() + order*pointerSize
}

// MaxOrder returns the largest order whose node image fits in a page.
func MaxOrder(keyType types.DataType) int {
	keyLen := types.GetType(keyType).Length()
	return (disk.PageSize - nodeHeaderSize + keyLen) / (keyLen + pointerSize)
}

func CheckOrder(keyType types.DataType, order int) error {
	if types.GetType(keyType) == nil {
		return errors.Wrapf(common.ErrInvalidValue, "data type %d", keyType)
	}
	if NodeImageSize(keyType, order) > disk.PageSize {
		return errors.Wrapf(common.ErrOrderTooHighForPage, "order %d, max %d", order, MaxOrder(keyType))
	}
	return nil
}

// Dump renders the tree level by level, nodes separated by '|'.
func (tree *BTree) Dump() string {
	if tree.root == nilNode {
		return "<empty>\n"
	}

	sb := strings.Builder{}
	level := []nodeID{tree.root}
	for len(level) > 0 {
		var next []nodeID
		for i, id := range level {
			n := tree.get(id)
			if i > 0 {
				sb.WriteString(" | ")
			}
			sb.WriteString(n.format())
			next = append(next, n.children...)
		}
		sb.WriteByte('\n')
		level = next
	}
	return sb.String()
}

// Validate checks the structural invariants of the tree: sorted keys, separator
// bounds, parent links, equal leaf depth, the leaf chain and both counters.
func (tree *BTree) Validate() error {
	if tree.root == nilNode {
		if tree.numEntries != 0 || tree.numNodes != 0 {
			return errors.Errorf("empty tree reports %d nodes and %d entries", tree.numNodes, tree.numEntries)
		}
		return nil
	}

	v := validator{tree: tree, leafDepth: -1}
	root := tree.get(tree.root)
	if root.parent != nilNode {
		return errors.Errorf("root %d has parent %d", root.id, root.parent)
	}
	if err := v.visit(root, 0, nil, nil); err != nil {
		return err
	}

	if v.nodes != tree.numNodes {
		return errors.Errorf("counted %d nodes, tree reports %d", v.nodes, tree.numNodes)
	}
	if len(v.leaves) == 0 || v.entries != tree.numEntries {
		return errors.Errorf("counted %d entries, tree reports %d", v.entries, tree.numEntries)
	}

	for i, leaf := range v.leaves {
		want := nilNode
		if i+1 < len(v.leaves) {
			want = v.leaves[i+1]
		}
		if tree.get(leaf).next != want {
			return errors.Errorf("leaf %d links to %d instead of %d", leaf, tree.get(leaf).next, want)
		}
	}
	return nil
}

type validator struct {
	tree      *BTree
	leafDepth int
	leaves    []nodeID
	nodes     int
	entries   int
}

// visit checks n and its subtree. Every key must be in [lo, hi).
func (v *validator) visit(n *node, depth int, lo, hi *types.Value) error {
	v.nodes++
	if n.numKeys() > v.tree.order-1 {
		return errors.Errorf("node %d holds %d keys", n.id, n.numKeys())
	}
	for i, k := range n.keys {
		if i > 0 && !n.keys[i-1].Less(k) {
			return errors.Errorf("node %d keys out of order at %d", n.id, i)
		}
		if lo != nil && k.Less(*lo) || hi != nil && !k.Less(*hi) {
			return errors.Errorf("node %d key %v outside its separators", n.id, k)
		}
	}

	if n.isLeaf {
		if len(n.rids) != n.numKeys() {
			return errors.Errorf("leaf %d has %d keys and %d rids", n.id, n.numKeys(), len(n.rids))
		}
		if v.leafDepth == -1 {
			v.leafDepth = depth
		} else if v.leafDepth != depth {
			return errors.Errorf("leaf %d at depth %d, expected %d", n.id, depth, v.leafDepth)
		}
		v.leaves = append(v.leaves, n.id)
		v.entries += n.numKeys()
		return nil
	}

	if n.numKeys() == 0 || len(n.children) != n.numKeys()+1 {
		return errors.Errorf("internal node %d has %d keys and %d children", n.id, n.numKeys(), len(n.children))
	}
	for i, c := range n.children {
		child := v.tree.get(c)
		if child.parent != n.id {
			return errors.Errorf("node %d has parent %d, expected %d", c, child.parent, n.id)
		}
		childLo, childHi := lo, hi
		if i > 0 {
			childLo = &n.keys[i-1]
		}
		if i < n.numKeys() {
			childHi = &n.keys[i]
		}
		if err := v.visit(child, depth+1, childLo, childHi); err != nil {
			return err
		}
	}
	return nil
}

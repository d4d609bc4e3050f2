package btree

import (
	"fmt"
	"strings"

	"pagedb/types"
)

// RID locates a record in its table file.
type RID struct {
	Page int32
	Slot int32
}

func (r RID) String() string {
	return fmt.Sprintf("%d.%d", r.Page, r.Slot)
}

type nodeID int

const nilNode nodeID = -1

// node is a slot of the tree arena. Leaves carry one rid per key, internal nodes
// carry len(keys)+1 children. Which of the two slices is in use depends on isLeaf.
type node struct {
	id       nodeID
	isLeaf   bool
	keys     []types.Value
	rids     []RID
	children []nodeID
	parent   nodeID
	next     nodeID
}

func (n *node) numKeys() int {
	return len(n.keys)
}

// keyIndex returns the position of key in a leaf, or -1.
func (n *node) keyIndex(key types.Value) int {
	for i, k := range n.keys {
		if k.Equal(key) {
			return i
		}
	}
	return -1
}

// childIndex returns the position of the child whose subtree should hold key.
// Keys equal to a separator go right.
func (n *node) childIndex(key types.Value) int {
	i := 0
	for i < len(n.keys) && !key.Less(n.keys[i]) {
		i++
	}
	return i
}

// insertionPoint returns the first position whose key is not less than key.
func (n *node) insertionPoint(key types.Value) int {
	i := 0
	for i < len(n.keys) && n.keys[i].Less(key) {
		i++
	}
	return i
}

func (n *node) positionOf(child nodeID) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

func (n *node) format() string {
	sb := strings.Builder{}
	sb.WriteByte('(')
	for i, k := range n.keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		if n.isLeaf {
			sb.WriteString(fmt.Sprintf("%v:%v", k, n.rids[i]))
		} else {
			sb.WriteString(k.String())
		}
	}
	sb.WriteByte(')')
	return sb.String()
}

func insertAt[T any](s []T, i int, v T) []T {
	var zero T
	s = append(s, zero)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func removeAt[T any](s []T, i int) []T {
	copy(s[i:], s[i+1:])
	var zero T
	s[len(s)-1] = zero
	return s[:len(s)-1]
}

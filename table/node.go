package table

import (
	"encoding/binary"
	"fmt"

	"rowlite/pager"
)

type NodeType uint8

const (
	NodeInternal NodeType = 0
	NodeLeaf     NodeType = 1
)

// The functions below are typed views over a raw page buffer. They do no
// I/O; callers fetch pages through the pager and mutate them in place.

func nodeType(p *pager.Page) NodeType {
	return NodeType(p.Data[NodeTypeOffset])
}

func setNodeType(p *pager.Page, t NodeType) {
	p.Data[NodeTypeOffset] = byte(t)
}

func isNodeRoot(p *pager.Page) bool {
	return p.Data[IsRootOffset] == 1
}

func setNodeRoot(p *pager.Page, isRoot bool) {
	if isRoot {
		p.Data[IsRootOffset] = 1
	} else {
		p.Data[IsRootOffset] = 0
	}
}

func nodeParent(p *pager.Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[ParentPointerOffset:])
}

func setNodeParent(p *pager.Page, parent uint32) {
	binary.LittleEndian.PutUint32(p.Data[ParentPointerOffset:], parent)
}

func initializeLeafNode(p *pager.Page) {
	setNodeType(p, NodeLeaf)
	setNodeRoot(p, false)
	setLeafNodeNumCells(p, 0)
	setLeafNodeNextLeaf(p, 0) // 0 means no sibling
}

func initializeInternalNode(p *pager.Page) {
	setNodeType(p, NodeInternal)
	setNodeRoot(p, false)
	setInternalNodeNumKeys(p, 0)
	// The right child starts invalid, not 0: page 0 is the root, and a
	// stale 0 here would make this node claim the root as a child.
	setInternalNodeRightChild(p, InvalidPageNum)
}

func leafNodeNumCells(p *pager.Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[LeafNodeNumCellsOffset:])
}

func setLeafNodeNumCells(p *pager.Page, n uint32) {
	binary.LittleEndian.PutUint32(p.Data[LeafNodeNumCellsOffset:], n)
}

func leafNodeNextLeaf(p *pager.Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[LeafNodeNextLeafOffset:])
}

func setLeafNodeNextLeaf(p *pager.Page, next uint32) {
	binary.LittleEndian.PutUint32(p.Data[LeafNodeNextLeafOffset:], next)
}

func leafNodeCell(p *pager.Page, cellNum uint32) []byte {
	off := LeafNodeHeaderSize + cellNum*LeafNodeCellSize
	return p.Data[off : off+LeafNodeCellSize]
}

func leafNodeKey(p *pager.Page, cellNum uint32) uint32 {
	return binary.LittleEndian.Uint32(leafNodeCell(p, cellNum))
}

func setLeafNodeKey(p *pager.Page, cellNum uint32, key uint32) {
	binary.LittleEndian.PutUint32(leafNodeCell(p, cellNum), key)
}

func leafNodeValue(p *pager.Page, cellNum uint32) []byte {
	cell := leafNodeCell(p, cellNum)
	return cell[LeafNodeValueOffset : LeafNodeValueOffset+LeafNodeValueSize]
}

func internalNodeNumKeys(p *pager.Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[InternalNodeNumKeysOffset:])
}

func setInternalNodeNumKeys(p *pager.Page, n uint32) {
	binary.LittleEndian.PutUint32(p.Data[InternalNodeNumKeysOffset:], n)
}

func internalNodeRightChild(p *pager.Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[InternalNodeRightChildOffset:])
}

func setInternalNodeRightChild(p *pager.Page, child uint32) {
	binary.LittleEndian.PutUint32(p.Data[InternalNodeRightChildOffset:], child)
}

func internalNodeCell(p *pager.Page, cellNum uint32) []byte {
	off := InternalNodeHeaderSize + cellNum*InternalNodeCellSize
	return p.Data[off : off+InternalNodeCellSize]
}

// internalNodeChild resolves child index childNum, where the index equal to
// num_keys aliases the right-child slot. The two live at different offsets;
// the alias exists only here. Dereferencing an invalid page number is a
// programming error.
func internalNodeChild(p *pager.Page, childNum uint32) uint32 {
	numKeys := internalNodeNumKeys(p)
	if childNum > numKeys {
		panic(fmt.Sprintf("table: tried to access child %d > num_keys %d", childNum, numKeys))
	}
	if childNum == numKeys {
		right := internalNodeRightChild(p)
		if right == InvalidPageNum {
			panic("table: tried to access right child of node, but was invalid page")
		}
		return right
	}
	child := binary.LittleEndian.Uint32(internalNodeCell(p, childNum))
	if child == InvalidPageNum {
		panic(fmt.Sprintf("table: tried to access child %d of node, but was invalid page", childNum))
	}
	return child
}

func setInternalNodeChild(p *pager.Page, childNum uint32, child uint32) {
	if childNum == internalNodeNumKeys(p) {
		setInternalNodeRightChild(p, child)
		return
	}
	binary.LittleEndian.PutUint32(internalNodeCell(p, childNum), child)
}

func internalNodeKey(p *pager.Page, keyNum uint32) uint32 {
	return binary.LittleEndian.Uint32(internalNodeCell(p, keyNum)[InternalNodeChildSize:])
}

func setInternalNodeKey(p *pager.Page, keyNum uint32, key uint32) {
	binary.LittleEndian.PutUint32(internalNodeCell(p, keyNum)[InternalNodeChildSize:], key)
}

// internalNodeFindChild returns the index of the child whose subtree must
// contain key: the smallest i with key_i >= key, or num_keys when every
// key is smaller.
func internalNodeFindChild(p *pager.Page, key uint32) uint32 {
	numKeys := internalNodeNumKeys(p)

	minIndex := uint32(0)
	maxIndex := numKeys // one more child than keys
	for minIndex != maxIndex {
		index := (minIndex + maxIndex) / 2
		keyToRight := internalNodeKey(p, index)
		if keyToRight >= key {
			maxIndex = index
		} else {
			minIndex = index + 1
		}
	}
	return minIndex
}

// leafNodeFind returns the cell index of key if present, otherwise the
// index at which key would be inserted.
func leafNodeFind(p *pager.Page, key uint32) uint32 {
	minIndex := uint32(0)
	onePastMaxIndex := leafNodeNumCells(p)
	for onePastMaxIndex != minIndex {
		index := (minIndex + onePastMaxIndex) / 2
		keyAtIndex := leafNodeKey(p, index)
		if key == keyAtIndex {
			return index
		}
		if key < keyAtIndex {
			onePastMaxIndex = index
		} else {
			minIndex = index + 1
		}
	}
	return minIndex
}

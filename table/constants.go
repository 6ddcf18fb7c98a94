package table

import "rowlite/pager"

// On-disk layout tables. Every byte offset inside a page is derived from
// the constants below; the accessors in node.go and the row codec in row.go
// are the only readers.
// Integers are stored little-endian.

// Row layout: id, username, email at fixed offsets. Each string column
// reserves one extra byte for a terminating NUL so short values stay
// readable as C strings in a raw page dump.
const (
	IDSize       = 4
	UsernameSize = ColumnUsernameSize + 1
	EmailSize    = ColumnEmailSize + 1

	IDOffset       = 0
	UsernameOffset = IDOffset + IDSize
	EmailOffset    = UsernameOffset + UsernameSize

	RowSize = IDSize + UsernameSize + EmailSize
)

// Column limits enforced at input.
const (
	ColumnUsernameSize = 32
	ColumnEmailSize    = 255
)

// Common node header: type, is-root flag, parent page number.
const (
	NodeTypeSize         = 1
	NodeTypeOffset       = 0
	IsRootSize           = 1
	IsRootOffset         = NodeTypeOffset + NodeTypeSize
	ParentPointerSize    = 4
	ParentPointerOffset  = IsRootOffset + IsRootSize
	CommonNodeHeaderSize = NodeTypeSize + IsRootSize + ParentPointerSize
)

// Leaf node header and body.
const (
	LeafNodeNumCellsSize   = 4
	LeafNodeNumCellsOffset = CommonNodeHeaderSize
	LeafNodeNextLeafSize   = 4
	LeafNodeNextLeafOffset = LeafNodeNumCellsOffset + LeafNodeNumCellsSize
	LeafNodeHeaderSize     = CommonNodeHeaderSize + LeafNodeNumCellsSize + LeafNodeNextLeafSize

	LeafNodeKeySize       = 4
	LeafNodeKeyOffset     = 0
	LeafNodeValueSize     = RowSize
	LeafNodeValueOffset   = LeafNodeKeyOffset + LeafNodeKeySize
	LeafNodeCellSize      = LeafNodeKeySize + LeafNodeValueSize
	LeafNodeSpaceForCells = pager.PageSize - LeafNodeHeaderSize
	LeafNodeMaxCells      = LeafNodeSpaceForCells / LeafNodeCellSize
)

// Leaf split distribution: old (left) node keeps the low half, the new
// sibling takes the rest.
const (
	LeafNodeRightSplitCount = (LeafNodeMaxCells + 1) / 2
	LeafNodeLeftSplitCount  = (LeafNodeMaxCells + 1) - LeafNodeRightSplitCount
)

// Internal node header and body.
const (
	InternalNodeNumKeysSize      = 4
	InternalNodeNumKeysOffset    = CommonNodeHeaderSize
	InternalNodeRightChildSize   = 4
	InternalNodeRightChildOffset = InternalNodeNumKeysOffset + InternalNodeNumKeysSize
	InternalNodeHeaderSize       = CommonNodeHeaderSize + InternalNodeNumKeysSize + InternalNodeRightChildSize

	InternalNodeChildSize = 4
	InternalNodeKeySize   = 4
	InternalNodeCellSize  = InternalNodeChildSize + InternalNodeKeySize

	// Kept artificially small so internal splits are reachable in tests,
	// independent of what the page could geometrically hold.
	InternalNodeMaxCells = 3
)

// InvalidPageNum marks "no page" where absence must be representable.
// The root lives on page 0, so a freshly initialized internal node cannot
// use 0 for its empty right-child slot without aliasing the root.
const InvalidPageNum = ^uint32(0)

// RootPageNum is fixed for the life of the database; root splits copy the
// old root out rather than move the root itself.
const RootPageNum = uint32(0)

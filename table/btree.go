package table

import (
	"go.uber.org/zap"

	"rowlite/pager"
)

// nodeMaxKey returns the largest key in the subtree rooted at node. For an
// internal node that is always in the right child's subtree.
func (t *Table) nodeMaxKey(node *pager.Page) (uint32, error) {
	if nodeType(node) == NodeLeaf {
		return leafNodeKey(node, leafNodeNumCells(node)-1), nil
	}
	rightChild, err := t.pager.GetPage(internalNodeRightChild(node))
	if err != nil {
		return 0, err
	}
	return t.nodeMaxKey(rightChild)
}

// updateInternalNodeKey rewrites the key recorded for the child that owned
// oldKey. When oldKey maps to the right-child slot the write lands on the
// slot one past the live cells, which the caller's following
// internalNodeInsert overwrites; the right spine's key is refreshed there,
// not here.
func updateInternalNodeKey(node *pager.Page, oldKey uint32, newKey uint32) {
	oldChildIndex := internalNodeFindChild(node, oldKey)
	setInternalNodeKey(node, oldChildIndex, newKey)
}

func (t *Table) leafNodeInsert(cursor *Cursor, key uint32, row *Row) error {
	node, err := t.pager.GetPage(cursor.pageNum)
	if err != nil {
		return err
	}

	numCells := leafNodeNumCells(node)
	if numCells >= LeafNodeMaxCells {
		return t.leafNodeSplitAndInsert(cursor, key, row)
	}

	if cursor.cellNum < numCells {
		// make room for the new cell
		for i := numCells; i > cursor.cellNum; i-- {
			copy(leafNodeCell(node, i), leafNodeCell(node, i-1))
		}
	}
	setLeafNodeNumCells(node, numCells+1)
	setLeafNodeKey(node, cursor.cellNum, key)
	SerializeRow(row, leafNodeValue(node, cursor.cellNum))
	return nil
}

// leafNodeSplitAndInsert allocates a sibling leaf, moves the upper half of
// the cells (counting the incoming one) into it, splices it into the
// sibling chain and pushes the separator into the parent. Every key left
// in the old leaf is smaller than every key in the new one.
func (t *Table) leafNodeSplitAndInsert(cursor *Cursor, key uint32, row *Row) error {
	oldNode, err := t.pager.GetPage(cursor.pageNum)
	if err != nil {
		return err
	}
	oldMax, err := t.nodeMaxKey(oldNode)
	if err != nil {
		return err
	}

	newPageNum := t.pager.UnusedPageNum()
	newNode, err := t.pager.GetPage(newPageNum)
	if err != nil {
		return err
	}
	initializeLeafNode(newNode)
	setNodeParent(newNode, nodeParent(oldNode))
	setLeafNodeNextLeaf(newNode, leafNodeNextLeaf(oldNode))
	setLeafNodeNextLeaf(oldNode, newPageNum)

	// Existing cells plus the new one are distributed evenly between the
	// old (left) and new (right) nodes, moving each entry into its final
	// slot starting from the right.
	for i := int(LeafNodeMaxCells); i >= 0; i-- {
		destinationNode := oldNode
		if i >= LeafNodeLeftSplitCount {
			destinationNode = newNode
		}
		indexWithinNode := uint32(i % LeafNodeLeftSplitCount)

		switch {
		case uint32(i) == cursor.cellNum:
			setLeafNodeKey(destinationNode, indexWithinNode, key)
			SerializeRow(row, leafNodeValue(destinationNode, indexWithinNode))
		case uint32(i) > cursor.cellNum:
			copy(leafNodeCell(destinationNode, indexWithinNode), leafNodeCell(oldNode, uint32(i-1)))
		default:
			copy(leafNodeCell(destinationNode, indexWithinNode), leafNodeCell(oldNode, uint32(i)))
		}
	}

	setLeafNodeNumCells(oldNode, LeafNodeLeftSplitCount)
	setLeafNodeNumCells(newNode, LeafNodeRightSplitCount)

	t.log.Debug("leaf split",
		zap.Uint32("old_page", cursor.pageNum),
		zap.Uint32("new_page", newPageNum),
		zap.Uint32("key", key))

	if isNodeRoot(oldNode) {
		return t.createNewRoot(newPageNum)
	}

	parentPageNum := nodeParent(oldNode)
	newMax, err := t.nodeMaxKey(oldNode)
	if err != nil {
		return err
	}
	parent, err := t.pager.GetPage(parentPageNum)
	if err != nil {
		return err
	}
	updateInternalNodeKey(parent, oldMax, newMax)
	return t.internalNodeInsert(parentPageNum, newPageNum)
}

// createNewRoot handles a split of the root. The old root's contents are
// copied out to a fresh left-child page so the root can stay on page 0,
// and page 0 is rebuilt as an internal node over the two children.
func (t *Table) createNewRoot(rightChildPageNum uint32) error {
	root, err := t.pager.GetPage(t.rootPageNum)
	if err != nil {
		return err
	}
	rightChild, err := t.pager.GetPage(rightChildPageNum)
	if err != nil {
		return err
	}
	leftChildPageNum := t.pager.UnusedPageNum()
	leftChild, err := t.pager.GetPage(leftChildPageNum)
	if err != nil {
		return err
	}

	if nodeType(root) == NodeInternal {
		// Both pages were allocated ahead of their contents. They need a
		// valid internal header before anything walks them; the caller
		// populates the right child immediately after this returns.
		initializeInternalNode(rightChild)
		initializeInternalNode(leftChild)
	}

	// left child takes the old root's data wholesale
	copy(leftChild.Data[:], root.Data[:])
	setNodeRoot(leftChild, false)

	if nodeType(leftChild) == NodeInternal {
		for i := uint32(0); i < internalNodeNumKeys(leftChild); i++ {
			child, err := t.pager.GetPage(internalNodeChild(leftChild, i))
			if err != nil {
				return err
			}
			setNodeParent(child, leftChildPageNum)
		}
		child, err := t.pager.GetPage(internalNodeRightChild(leftChild))
		if err != nil {
			return err
		}
		setNodeParent(child, leftChildPageNum)
	}

	// the root becomes a new internal node with one key and two children
	initializeInternalNode(root)
	setNodeRoot(root, true)
	setInternalNodeNumKeys(root, 1)
	setInternalNodeChild(root, 0, leftChildPageNum)
	leftChildMaxKey, err := t.nodeMaxKey(leftChild)
	if err != nil {
		return err
	}
	setInternalNodeKey(root, 0, leftChildMaxKey)
	setInternalNodeRightChild(root, rightChildPageNum)
	setNodeParent(leftChild, t.rootPageNum)
	setNodeParent(rightChild, t.rootPageNum)

	t.log.Debug("root split",
		zap.Uint32("left_child", leftChildPageNum),
		zap.Uint32("right_child", rightChildPageNum))
	return nil
}

// internalNodeInsert adds a child/key pair for childPageNum to the parent.
func (t *Table) internalNodeInsert(parentPageNum uint32, childPageNum uint32) error {
	parent, err := t.pager.GetPage(parentPageNum)
	if err != nil {
		return err
	}
	child, err := t.pager.GetPage(childPageNum)
	if err != nil {
		return err
	}
	childMaxKey, err := t.nodeMaxKey(child)
	if err != nil {
		return err
	}
	index := internalNodeFindChild(parent, childMaxKey)

	originalNumKeys := internalNodeNumKeys(parent)
	if originalNumKeys >= InternalNodeMaxCells {
		return t.internalNodeSplitAndInsert(parentPageNum, childPageNum)
	}

	rightChildPageNum := internalNodeRightChild(parent)
	// An internal node with an invalid right child is empty. This happens
	// transiently while an internal split populates a fresh sibling; the
	// first child it receives becomes the right child.
	if rightChildPageNum == InvalidPageNum {
		setInternalNodeRightChild(parent, childPageNum)
		return nil
	}

	rightChild, err := t.pager.GetPage(rightChildPageNum)
	if err != nil {
		return err
	}
	// The count is only bumped after the split check above: bumping first
	// and then splitting would leave an uninitialized key slot behind.
	setInternalNodeNumKeys(parent, originalNumKeys+1)

	rightChildMaxKey, err := t.nodeMaxKey(rightChild)
	if err != nil {
		return err
	}
	if childMaxKey > rightChildMaxKey {
		// the new child becomes the rightmost; the old right child moves
		// into the cell array under its own max key
		setInternalNodeChild(parent, originalNumKeys, rightChildPageNum)
		setInternalNodeKey(parent, originalNumKeys, rightChildMaxKey)
		setInternalNodeRightChild(parent, childPageNum)
		return nil
	}

	// make room for the new cell
	for i := originalNumKeys; i > index; i-- {
		copy(internalNodeCell(parent, i), internalNodeCell(parent, i-1))
	}
	setInternalNodeChild(parent, index, childPageNum)
	setInternalNodeKey(parent, index, childMaxKey)
	return nil
}

// internalNodeSplitAndInsert rebalances an overfull internal node into two
// and inserts childPageNum into whichever side covers its key range. The
// bubble-up terminates because each level either absorbs the insert or
// eventually reaches the root, which createNewRoot handles.
func (t *Table) internalNodeSplitAndInsert(parentPageNum uint32, childPageNum uint32) error {
	oldPageNum := parentPageNum
	oldNode, err := t.pager.GetPage(parentPageNum)
	if err != nil {
		return err
	}
	oldMax, err := t.nodeMaxKey(oldNode)
	if err != nil {
		return err
	}

	child, err := t.pager.GetPage(childPageNum)
	if err != nil {
		return err
	}
	childMax, err := t.nodeMaxKey(child)
	if err != nil {
		return err
	}

	newPageNum := t.pager.UnusedPageNum()

	// Splitting the root re-homes the old node: createNewRoot copies it
	// out into a fresh left child, and newPageNum becomes the new root's
	// right child. A non-root split instead builds the sibling empty and
	// only hangs it off the old node's parent after the key transfer,
	// because that parent may hold keys besides the ones being split.
	splittingRoot := isNodeRoot(oldNode)

	var parent, newNode *pager.Page
	if splittingRoot {
		if err := t.createNewRoot(newPageNum); err != nil {
			return err
		}
		parent, err = t.pager.GetPage(t.rootPageNum)
		if err != nil {
			return err
		}
		oldPageNum = internalNodeChild(parent, 0)
		oldNode, err = t.pager.GetPage(oldPageNum)
		if err != nil {
			return err
		}
	} else {
		parent, err = t.pager.GetPage(nodeParent(oldNode))
		if err != nil {
			return err
		}
		newNode, err = t.pager.GetPage(newPageNum)
		if err != nil {
			return err
		}
		initializeInternalNode(newNode)
	}

	// The old right child seeds the new sibling: the sibling is empty, so
	// internalNodeInsert captures it as the sibling's right child.
	curPageNum := internalNodeRightChild(oldNode)
	cur, err := t.pager.GetPage(curPageNum)
	if err != nil {
		return err
	}
	if err := t.internalNodeInsert(newPageNum, curPageNum); err != nil {
		return err
	}
	setNodeParent(cur, newPageNum)
	setInternalNodeRightChild(oldNode, InvalidPageNum)

	// move keys above the midpoint into the new sibling
	for i := InternalNodeMaxCells - 1; i > InternalNodeMaxCells/2; i-- {
		curPageNum = internalNodeChild(oldNode, uint32(i))
		cur, err = t.pager.GetPage(curPageNum)
		if err != nil {
			return err
		}
		if err := t.internalNodeInsert(newPageNum, curPageNum); err != nil {
			return err
		}
		setNodeParent(cur, newPageNum)
		setInternalNodeNumKeys(oldNode, internalNodeNumKeys(oldNode)-1)
	}

	// the highest remaining child becomes the old node's right child
	oldNumKeys := internalNodeNumKeys(oldNode)
	setInternalNodeRightChild(oldNode, internalNodeChild(oldNode, oldNumKeys-1))
	setInternalNodeNumKeys(oldNode, oldNumKeys-1)

	maxAfterSplit, err := t.nodeMaxKey(oldNode)
	if err != nil {
		return err
	}
	destinationPageNum := newPageNum
	if childMax < maxAfterSplit {
		destinationPageNum = oldPageNum
	}
	if err := t.internalNodeInsert(destinationPageNum, childPageNum); err != nil {
		return err
	}
	setNodeParent(child, destinationPageNum)

	newOldMax, err := t.nodeMaxKey(oldNode)
	if err != nil {
		return err
	}
	updateInternalNodeKey(parent, oldMax, newOldMax)

	if !splittingRoot {
		if err := t.internalNodeInsert(nodeParent(oldNode), newPageNum); err != nil {
			return err
		}
		setNodeParent(newNode, nodeParent(oldNode))
	}

	t.log.Debug("internal split",
		zap.Uint32("old_page", oldPageNum),
		zap.Uint32("new_page", newPageNum))
	return nil
}

package table

// Cursor is a logical position (page, cell) within a leaf. It borrows the
// table's pages: any Insert invalidates every cursor created earlier, so a
// cursor must not be advanced across a mutation.
type Cursor struct {
	table      *Table
	pageNum    uint32
	cellNum    uint32
	endOfTable bool
}

// Start returns a cursor on the first row in key order, with endOfTable
// already set when the table is empty.
func (t *Table) Start() (*Cursor, error) {
	cursor, err := t.find(0)
	if err != nil {
		return nil, err
	}
	node, err := t.pager.GetPage(cursor.pageNum)
	if err != nil {
		return nil, err
	}
	cursor.endOfTable = leafNodeNumCells(node) == 0
	return cursor, nil
}

// find returns the position of key, or the position where it would be
// inserted, descending from the root.
func (t *Table) find(key uint32) (*Cursor, error) {
	root, err := t.pager.GetPage(t.rootPageNum)
	if err != nil {
		return nil, err
	}
	if nodeType(root) == NodeLeaf {
		return t.leafFind(t.rootPageNum, key)
	}
	return t.internalFind(t.rootPageNum, key)
}

func (t *Table) leafFind(pageNum uint32, key uint32) (*Cursor, error) {
	node, err := t.pager.GetPage(pageNum)
	if err != nil {
		return nil, err
	}
	return &Cursor{
		table:   t,
		pageNum: pageNum,
		cellNum: leafNodeFind(node, key),
	}, nil
}

func (t *Table) internalFind(pageNum uint32, key uint32) (*Cursor, error) {
	node, err := t.pager.GetPage(pageNum)
	if err != nil {
		return nil, err
	}
	childNum := internalNodeChild(node, internalNodeFindChild(node, key))
	child, err := t.pager.GetPage(childNum)
	if err != nil {
		return nil, err
	}
	if nodeType(child) == NodeLeaf {
		return t.leafFind(childNum, key)
	}
	return t.internalFind(childNum, key)
}

// EndOfTable reports whether the cursor has moved past the last row.
func (c *Cursor) EndOfTable() bool { return c.endOfTable }

// Value returns a view on the row payload at the current position. The
// bytes alias the page buffer; decode before the next mutation.
func (c *Cursor) Value() ([]byte, error) {
	page, err := c.table.pager.GetPage(c.pageNum)
	if err != nil {
		return nil, err
	}
	return leafNodeValue(page, c.cellNum), nil
}

// Advance moves to the next row, following the sibling chain across leaf
// boundaries.
func (c *Cursor) Advance() error {
	node, err := c.table.pager.GetPage(c.pageNum)
	if err != nil {
		return err
	}
	c.cellNum++
	if c.cellNum >= leafNodeNumCells(node) {
		nextPageNum := leafNodeNextLeaf(node)
		if nextPageNum == 0 {
			// rightmost leaf
			c.endOfTable = true
		} else {
			c.pageNum = nextPageNum
			c.cellNum = 0
		}
	}
	return nil
}

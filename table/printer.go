package table

import (
	"fmt"
	"io"
)

// PrintTree writes an indented depth-first dump of the subtree rooted at
// pageNum, two spaces per level. Internal nodes interleave their children
// with the separator keys; the right child comes last.
func (t *Table) PrintTree(w io.Writer, pageNum uint32, indentationLevel int) error {
	node, err := t.pager.GetPage(pageNum)
	if err != nil {
		return err
	}

	switch nodeType(node) {
	case NodeLeaf:
		numCells := leafNodeNumCells(node)
		indent(w, indentationLevel)
		fmt.Fprintf(w, "- leaf (size %d)\n", numCells)
		for i := uint32(0); i < numCells; i++ {
			indent(w, indentationLevel+1)
			fmt.Fprintf(w, "- %d\n", leafNodeKey(node, i))
		}
	case NodeInternal:
		numKeys := internalNodeNumKeys(node)
		indent(w, indentationLevel)
		fmt.Fprintf(w, "- internal (size %d)\n", numKeys)
		if numKeys > 0 {
			for i := uint32(0); i < numKeys; i++ {
				if err := t.PrintTree(w, internalNodeChild(node, i), indentationLevel+1); err != nil {
					return err
				}
				indent(w, indentationLevel+1)
				fmt.Fprintf(w, "- key %d\n", internalNodeKey(node, i))
			}
			if err := t.PrintTree(w, internalNodeRightChild(node), indentationLevel+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func indent(w io.Writer, level int) {
	for i := 0; i < level; i++ {
		io.WriteString(w, "  ")
	}
}

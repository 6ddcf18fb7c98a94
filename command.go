package main

import (
	"fmt"
	"io"

	"rowlite/table"
)

type MetaCommandResult int

const (
	MetaCommandSuccess MetaCommandResult = iota
	MetaCommandExit
	MetaCommandUnrecognizedCommand
)

// doMetaCommand handles lines starting with '.'. The returned error is the
// fatal tier; unrecognized input is a normal result.
func doMetaCommand(input string, t *table.Table, w io.Writer) (MetaCommandResult, error) {
	switch input {
	case ".exit":
		return MetaCommandExit, nil
	case ".btree":
		fmt.Fprintln(w, "Tree:")
		if err := t.PrintTree(w, table.RootPageNum, 0); err != nil {
			return 0, err
		}
		return MetaCommandSuccess, nil
	case ".constants":
		fmt.Fprintln(w, "Constants:")
		printConstants(w)
		return MetaCommandSuccess, nil
	}
	return MetaCommandUnrecognizedCommand, nil
}

func printConstants(w io.Writer) {
	fmt.Fprintf(w, "ROW_SIZE: %d\n", table.RowSize)
	fmt.Fprintf(w, "COMMON_NODE_HEADER_SIZE: %d\n", table.CommonNodeHeaderSize)
	fmt.Fprintf(w, "LEAF_NODE_HEADER_SIZE: %d\n", table.LeafNodeHeaderSize)
	fmt.Fprintf(w, "LEAF_NODE_CELL_SIZE: %d\n", table.LeafNodeCellSize)
	fmt.Fprintf(w, "LEAF_NODE_SPACE_FOR_CELLS: %d\n", table.LeafNodeSpaceForCells)
	fmt.Fprintf(w, "LEAF_NODE_MAX_CELLS: %d\n", table.LeafNodeMaxCells)
}

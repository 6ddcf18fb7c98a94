package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rowlite/table"
)

func newMainTestTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.Open(afero.NewMemMapFs(), "test.db", nil)
	require.NoError(t, err)
	return tbl
}

func TestPrepareStatement(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  PrepareResult
	}{
		{"insert ok", "insert 1 alice a@x", PrepareSuccess},
		{"select ok", "select", PrepareSuccess},
		{"missing fields", "insert 1 alice", PrepareSyntaxError},
		{"bare insert", "insert", PrepareSyntaxError},
		{"unparsable id", "insert abc alice a@x", PrepareSyntaxError},
		{"negative id", "insert -1 alice a@x", PrepareNegativeID},
		{"username too long", "insert 1 " + strings.Repeat("a", 33) + " a@x", PrepareStringTooLong},
		{"email too long", "insert 1 alice " + strings.Repeat("a", 256), PrepareStringTooLong},
		{"unknown verb", "update foo", PrepareUnrecognizedStatement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := prepareStatement(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrepareInsertFillsRow(t *testing.T) {
	stmt, result := prepareStatement("insert 42 alice alice@example.com")
	require.Equal(t, PrepareSuccess, result)
	assert.Equal(t, StatementInsert, stmt.Type)
	assert.Equal(t, table.Row{ID: 42, Username: "alice", Email: "alice@example.com"}, stmt.RowToInsert)
}

func TestExecuteInsertAndSelect(t *testing.T) {
	tbl := newMainTestTable(t)

	stmt, result := prepareStatement("insert 1 alice a@x")
	require.Equal(t, PrepareSuccess, result)
	execResult, err := executeStatement(stmt, tbl, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, ExecuteSuccess, execResult)

	var out bytes.Buffer
	stmt, _ = prepareStatement("select")
	execResult, err = executeStatement(stmt, tbl, &out)
	require.NoError(t, err)
	assert.Equal(t, ExecuteSuccess, execResult)
	assert.Equal(t, "(1, alice, a@x)\ntotal rows: 1\n", out.String())
}

func TestExecuteInsertDuplicateKey(t *testing.T) {
	tbl := newMainTestTable(t)

	stmt, _ := prepareStatement("insert 1 a a@x")
	_, err := executeStatement(stmt, tbl, &bytes.Buffer{})
	require.NoError(t, err)

	stmt, _ = prepareStatement("insert 1 b b@x")
	execResult, err := executeStatement(stmt, tbl, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, ExecuteDuplicateKey, execResult)
}

func TestDoMetaCommand(t *testing.T) {
	tbl := newMainTestTable(t)

	result, err := doMetaCommand(".exit", tbl, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, MetaCommandExit, result)

	result, err = doMetaCommand(".foo", tbl, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, MetaCommandUnrecognizedCommand, result)
}

func TestMetaCommandConstants(t *testing.T) {
	tbl := newMainTestTable(t)

	var out bytes.Buffer
	result, err := doMetaCommand(".constants", tbl, &out)
	require.NoError(t, err)
	require.Equal(t, MetaCommandSuccess, result)

	want := `Constants:
ROW_SIZE: 293
COMMON_NODE_HEADER_SIZE: 6
LEAF_NODE_HEADER_SIZE: 14
LEAF_NODE_CELL_SIZE: 297
LEAF_NODE_SPACE_FOR_CELLS: 4082
LEAF_NODE_MAX_CELLS: 13
`
	assert.Equal(t, want, out.String())
}

func TestMetaCommandBtree(t *testing.T) {
	tbl := newMainTestTable(t)
	for _, input := range []string{
		"insert 3 c c@x",
		"insert 1 a a@x",
		"insert 2 b b@x",
	} {
		stmt, result := prepareStatement(input)
		require.Equal(t, PrepareSuccess, result)
		_, err := executeStatement(stmt, tbl, &bytes.Buffer{})
		require.NoError(t, err)
	}

	var out bytes.Buffer
	result, err := doMetaCommand(".btree", tbl, &out)
	require.NoError(t, err)
	require.Equal(t, MetaCommandSuccess, result)

	want := `Tree:
- leaf (size 3)
  - 1
  - 2
  - 3
`
	assert.Equal(t, want, out.String())
}

// Fourteen ascending inserts split the root leaf; the dump shows an
// internal root over two half-full leaves.
func TestMetaCommandBtreeAfterSplit(t *testing.T) {
	tbl := newMainTestTable(t)
	for id := 1; id <= 14; id++ {
		input := fmt.Sprintf("insert %d user%d user%d@example.com", id, id, id)
		stmt, result := prepareStatement(input)
		require.Equal(t, PrepareSuccess, result)
		_, err := executeStatement(stmt, tbl, &bytes.Buffer{})
		require.NoError(t, err)
	}

	var out bytes.Buffer
	_, err := doMetaCommand(".btree", tbl, &out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.String(), "Tree:\n- internal (size 1)\n"))
	assert.Contains(t, out.String(), "- key 7\n")
}

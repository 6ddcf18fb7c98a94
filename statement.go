package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"rowlite/table"
)

type StatementType int

const (
	StatementInsert StatementType = iota
	StatementSelect
)

type PrepareResult int

const (
	PrepareSuccess PrepareResult = iota
	PrepareNegativeID
	PrepareStringTooLong
	PrepareSyntaxError
	PrepareUnrecognizedStatement
)

type ExecuteResult int

const (
	ExecuteSuccess ExecuteResult = iota
	ExecuteDuplicateKey
)

type Statement struct {
	Type        StatementType
	RowToInsert table.Row // only used by insert
}

func prepareStatement(input string) (*Statement, PrepareResult) {
	if strings.HasPrefix(input, "insert") {
		return prepareInsert(input)
	}
	if input == "select" {
		return &Statement{Type: StatementSelect}, PrepareSuccess
	}
	return nil, PrepareUnrecognizedStatement
}

func prepareInsert(input string) (*Statement, PrepareResult) {
	fields := strings.Fields(input)
	if len(fields) < 4 {
		return nil, PrepareSyntaxError
	}
	idString, username, email := fields[1], fields[2], fields[3]

	id, err := strconv.Atoi(idString)
	if err != nil {
		return nil, PrepareSyntaxError
	}
	if id < 0 {
		return nil, PrepareNegativeID
	}
	if len(username) > table.ColumnUsernameSize {
		return nil, PrepareStringTooLong
	}
	if len(email) > table.ColumnEmailSize {
		return nil, PrepareStringTooLong
	}

	return &Statement{
		Type: StatementInsert,
		RowToInsert: table.Row{
			ID:       uint32(id),
			Username: username,
			Email:    email,
		},
	}, PrepareSuccess
}

func executeStatement(stmt *Statement, t *table.Table, w io.Writer) (ExecuteResult, error) {
	switch stmt.Type {
	case StatementInsert:
		return executeInsert(stmt, t)
	case StatementSelect:
		return executeSelect(t, w)
	}
	return ExecuteSuccess, nil
}

func executeInsert(stmt *Statement, t *table.Table) (ExecuteResult, error) {
	err := t.Insert(&stmt.RowToInsert)
	if errors.Is(err, table.ErrDuplicateKey) {
		return ExecuteDuplicateKey, nil
	}
	if err != nil {
		return 0, err
	}
	return ExecuteSuccess, nil
}

func executeSelect(t *table.Table, w io.Writer) (ExecuteResult, error) {
	cursor, err := t.Start()
	if err != nil {
		return 0, err
	}

	var row table.Row
	numRows := 0
	for !cursor.EndOfTable() {
		value, err := cursor.Value()
		if err != nil {
			return 0, err
		}
		table.DeserializeRow(value, &row)
		fmt.Fprintf(w, "%s\n", row.String())
		if err := cursor.Advance(); err != nil {
			return 0, err
		}
		numRows++
	}
	fmt.Fprintf(w, "total rows: %d\n", numRows)
	return ExecuteSuccess, nil
}

package table

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"rowlite/pager"
)

// ErrDuplicateKey is returned by Insert when the row's id is already
// present; the tree is not mutated in that case.
var ErrDuplicateKey = errors.New("duplicate key")

// Table is a single fixed-schema relation stored as a B+ tree rooted on
// page 0 of its database file.
type Table struct {
	pager       *pager.Pager
	rootPageNum uint32
	log         *zap.Logger
}

// Open opens (or creates) the database at path. A fresh file gets page 0
// initialized as an empty root leaf. Pass a nil logger to disable
// diagnostics.
func Open(fs afero.Fs, path string, log *zap.Logger) (*Table, error) {
	if log == nil {
		log = zap.NewNop()
	}
	p, err := pager.Open(fs, path)
	if err != nil {
		return nil, err
	}
	t := &Table{pager: p, rootPageNum: RootPageNum, log: log}
	if p.NumPages() == 0 {
		root, err := p.GetPage(t.rootPageNum)
		if err != nil {
			return nil, err
		}
		initializeLeafNode(root)
		setNodeRoot(root, true)
		log.Debug("initialized new database", zap.String("path", path))
	} else {
		log.Debug("opened database",
			zap.String("path", path),
			zap.Uint32("pages", p.NumPages()))
	}
	return t, nil
}

// Close flushes every resident page and closes the file. Nothing is
// durable before this runs.
func (t *Table) Close() error {
	t.log.Debug("closing database", zap.Uint32("pages", t.pager.NumPages()))
	return t.pager.CloseAll()
}

// Insert adds row under its id. Cursors created before the call are
// invalid afterwards.
func (t *Table) Insert(row *Row) error {
	cursor, err := t.find(row.ID)
	if err != nil {
		return err
	}

	leaf, err := t.pager.GetPage(cursor.pageNum)
	if err != nil {
		return err
	}
	if cursor.cellNum < leafNodeNumCells(leaf) && leafNodeKey(leaf, cursor.cellNum) == row.ID {
		return ErrDuplicateKey
	}

	if err := t.leafNodeInsert(cursor, row.ID, row); err != nil {
		return fmt.Errorf("insert key %d: %w", row.ID, err)
	}
	return nil
}

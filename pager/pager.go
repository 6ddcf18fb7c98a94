package pager

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

const (
	PageSize      = 4096
	TableMaxPages = 100
)

var (
	// ErrCorruptFile means the file length is not a whole number of pages.
	ErrCorruptFile = errors.New("db file is not a whole number of pages")
	// ErrPageOutOfBounds means a page number at or past the cache capacity.
	ErrPageOutOfBounds = errors.New("page number out of bounds")
)

// Page is one fixed-size region of the database file. Buffers are created
// lazily on first access and stay resident for the session.
type Page struct {
	Data [PageSize]byte
}

// Pager owns the database file and a fixed table of cached page buffers
// indexed by page number.
type Pager struct {
	file       afero.File
	fileLength int64
	numPages   uint32
	pages      [TableMaxPages]*Page
}

// Open opens path read/write, creating it if absent. The file length must
// be page-aligned.
func Open(fs afero.Fs, path string) (*Pager, error) {
	f, err := fs.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	fileLength := fi.Size()
	if fileLength%PageSize != 0 {
		f.Close()
		return nil, fmt.Errorf("%w: %d bytes", ErrCorruptFile, fileLength)
	}
	return &Pager{
		file:       f,
		fileLength: fileLength,
		numPages:   uint32(fileLength / PageSize),
	}, nil
}

// NumPages reports how many pages the database currently addresses,
// counting pages created in memory but not yet flushed.
func (p *Pager) NumPages() uint32 { return p.numPages }

// UnusedPageNum returns the page number the next allocation will occupy.
// Until free pages are recycled, new pages always extend the file.
func (p *Pager) UnusedPageNum() uint32 { return p.numPages }

// GetPage returns the cached buffer for pageNum, loading it from the file
// on a miss. A page past the on-disk extent comes back zeroed and extends
// NumPages.
func (p *Pager) GetPage(pageNum uint32) (*Page, error) {
	if pageNum >= TableMaxPages {
		return nil, fmt.Errorf("%w: %d >= %d", ErrPageOutOfBounds, pageNum, TableMaxPages)
	}
	if p.pages[pageNum] == nil {
		page := &Page{}
		onDisk := uint32(p.fileLength / PageSize)
		if p.fileLength%PageSize != 0 {
			// a partial trailing page still counts as present
			onDisk++
		}
		if pageNum < onDisk {
			_, err := p.file.ReadAt(page.Data[:], int64(pageNum)*PageSize)
			if err != nil && err != io.EOF && !errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("read page %d: %w", pageNum, err)
			}
		}
		p.pages[pageNum] = page
		if pageNum >= p.numPages {
			p.numPages = pageNum + 1
		}
	}
	return p.pages[pageNum], nil
}

// Flush writes pageNum's buffer back at its file offset. Flushing a page
// that was never loaded is a programming error.
func (p *Pager) Flush(pageNum uint32) error {
	page := p.pages[pageNum]
	if page == nil {
		panic(fmt.Sprintf("pager: flush of non-resident page %d", pageNum))
	}
	if _, err := p.file.WriteAt(page.Data[:], int64(pageNum)*PageSize); err != nil {
		return fmt.Errorf("write page %d: %w", pageNum, err)
	}
	return nil
}

// CloseAll flushes every resident page, releases the buffers and closes the
// file. Nothing written earlier in the session is durable until this runs.
func (p *Pager) CloseAll() error {
	for i := uint32(0); i < p.numPages; i++ {
		if p.pages[i] == nil {
			continue
		}
		if err := p.Flush(i); err != nil {
			return err
		}
		p.pages[i] = nil
	}
	if err := p.file.Close(); err != nil {
		return fmt.Errorf("close db file: %w", err)
	}
	return nil
}

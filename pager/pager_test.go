package pager

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenEmptyFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	p, err := Open(fs, "test.db")
	require.NoError(t, err)
	defer p.CloseAll()

	assert.Equal(t, uint32(0), p.NumPages())
	assert.Equal(t, uint32(0), p.UnusedPageNum())
}

func TestOpenRejectsUnalignedFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "test.db", make([]byte, 100), 0600))

	_, err := Open(fs, "test.db")
	require.ErrorIs(t, err, ErrCorruptFile)
}

func TestGetPageBeyondEOFIsZeroed(t *testing.T) {
	fs := afero.NewMemMapFs()
	p, err := Open(fs, "test.db")
	require.NoError(t, err)
	defer p.CloseAll()

	page, err := p.GetPage(0)
	require.NoError(t, err)
	for i := 0; i < PageSize; i++ {
		if page.Data[i] != 0 {
			t.Fatalf("byte %d of fresh page is 0x%X, want 0", i, page.Data[i])
		}
	}
	// touching the page extends the addressable range
	assert.Equal(t, uint32(1), p.NumPages())
	assert.Equal(t, uint32(1), p.UnusedPageNum())
}

func TestGetPageOutOfBounds(t *testing.T) {
	fs := afero.NewMemMapFs()
	p, err := Open(fs, "test.db")
	require.NoError(t, err)
	defer p.CloseAll()

	_, err = p.GetPage(TableMaxPages)
	require.ErrorIs(t, err, ErrPageOutOfBounds)

	_, err = p.GetPage(TableMaxPages - 1)
	require.NoError(t, err)
}

func TestGetPageCachesBuffer(t *testing.T) {
	fs := afero.NewMemMapFs()
	p, err := Open(fs, "test.db")
	require.NoError(t, err)
	defer p.CloseAll()

	first, err := p.GetPage(3)
	require.NoError(t, err)
	second, err := p.GetPage(3)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestFlushRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	p, err := Open(fs, "test.db")
	require.NoError(t, err)

	page, err := p.GetPage(0)
	require.NoError(t, err)
	page.Data[0] = 0xAB
	page.Data[PageSize-1] = 0xCD
	require.NoError(t, p.Flush(0))

	data, err := afero.ReadFile(fs, "test.db")
	require.NoError(t, err)
	require.Len(t, data, PageSize)
	assert.Equal(t, byte(0xAB), data[0])
	assert.Equal(t, byte(0xCD), data[PageSize-1])
	require.NoError(t, p.CloseAll())

	// a fresh pager sees the flushed content
	p2, err := Open(fs, "test.db")
	require.NoError(t, err)
	defer p2.CloseAll()
	assert.Equal(t, uint32(1), p2.NumPages())
	reloaded, err := p2.GetPage(0)
	require.NoError(t, err)
	assert.Equal(t, byte(0xAB), reloaded.Data[0])
	assert.Equal(t, byte(0xCD), reloaded.Data[PageSize-1])
}

func TestFlushNonResidentPagePanics(t *testing.T) {
	fs := afero.NewMemMapFs()
	p, err := Open(fs, "test.db")
	require.NoError(t, err)
	defer p.CloseAll()

	require.Panics(t, func() { p.Flush(0) })
}

func TestCloseAllWritesEveryResidentPage(t *testing.T) {
	fs := afero.NewMemMapFs()
	p, err := Open(fs, "test.db")
	require.NoError(t, err)

	for i := uint32(0); i < 3; i++ {
		page, err := p.GetPage(i)
		require.NoError(t, err)
		page.Data[0] = byte(i + 1)
	}
	require.NoError(t, p.CloseAll())

	data, err := afero.ReadFile(fs, "test.db")
	require.NoError(t, err)
	require.Len(t, data, 3*PageSize)
	for i := 0; i < 3; i++ {
		assert.Equal(t, byte(i+1), data[i*PageSize])
	}
}

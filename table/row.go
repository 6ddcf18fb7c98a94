package table

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Row is the fixed record stored in each leaf cell. The id doubles as the
// primary key.
type Row struct {
	ID       uint32
	Username string
	Email    string
}

func (r *Row) String() string {
	return fmt.Sprintf("(%d, %s, %s)", r.ID, r.Username, r.Email)
}

// SerializeRow packs r into dst, which must hold RowSize bytes. Strings are
// NUL-padded to their column width.
func SerializeRow(r *Row, dst []byte) {
	_ = dst[RowSize-1]
	binary.LittleEndian.PutUint32(dst[IDOffset:IDOffset+IDSize], r.ID)
	writePadded(dst[UsernameOffset:UsernameOffset+UsernameSize], r.Username)
	writePadded(dst[EmailOffset:EmailOffset+EmailSize], r.Email)
}

// DeserializeRow unpacks a RowSize-byte image into r.
func DeserializeRow(src []byte, r *Row) {
	r.ID = binary.LittleEndian.Uint32(src[IDOffset : IDOffset+IDSize])
	r.Username = cString(src[UsernameOffset : UsernameOffset+UsernameSize])
	r.Email = cString(src[EmailOffset : EmailOffset+EmailSize])
}

func writePadded(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// cString reads up to the first NUL, the way the value was written.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

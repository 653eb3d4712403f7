package libgrph

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/2x3systems/grph/grph"
)

// wireBufSz is the flush threshold of the buffered writers.
const wireBufSz = 1 << 20

// WireWriter emits the primitive fields of the binary graph format
// through an internal buffer.  A write error latches inside the buffer
// and surfaces from Flush, so callers check errors once, at the end.
type WireWriter struct {
	w     *bufio.Writer
	scrap [binary.MaxVarintLen64]byte
}

func NewWireWriter(w io.Writer) *WireWriter {
	return &WireWriter{
		w: bufio.NewWriterSize(w, wireBufSz),
	}
}

func (ww *WireWriter) PutByte(b byte) {
	ww.w.WriteByte(b)
}

func (ww *WireWriter) PutBytes(p []byte) {
	ww.w.Write(p)
}

func (ww *WireWriter) PutU32(x uint32) {
	binary.LittleEndian.PutUint32(ww.scrap[:4], x)
	ww.w.Write(ww.scrap[:4])
}

func (ww *WireWriter) PutU64(x uint64) {
	binary.LittleEndian.PutUint64(ww.scrap[:8], x)
	ww.w.Write(ww.scrap[:8])
}

// PutUvarint writes x as a little-endian base-128 varint: 7 payload bits
// per byte, high bit set on every byte but the last.
func (ww *WireWriter) PutUvarint(x uint64) {
	n := binary.PutUvarint(ww.scrap[:], x)
	ww.w.Write(ww.scrap[:n])
}

// Flush pushes all buffered bytes to the underlying writer and returns
// the first error seen by any earlier put.
func (ww *WireWriter) Flush() error {
	return ww.w.Flush()
}

// WireReader decodes primitive fields from an in-memory binary image,
// advancing a cursor.  Reads past the end return grph.ErrTruncated; a
// varint carrying more than 64 significant bits returns
// grph.ErrVarintOverflow.
type WireReader struct {
	data []byte
	pos  int
}

func NewWireReader(data []byte) *WireReader {
	return &WireReader{data: data}
}

// Pos returns the current byte offset into the image.
func (rr *WireReader) Pos() int {
	return rr.pos
}

// Remaining returns how many bytes are left past the cursor.
func (rr *WireReader) Remaining() int {
	return len(rr.data) - rr.pos
}

func (rr *WireReader) Byte() (byte, error) {
	if rr.pos >= len(rr.data) {
		return 0, grph.ErrTruncated
	}
	b := rr.data[rr.pos]
	rr.pos++
	return b, nil
}

func (rr *WireReader) Bytes(n int) ([]byte, error) {
	if len(rr.data)-rr.pos < n {
		return nil, grph.ErrTruncated
	}
	p := rr.data[rr.pos : rr.pos+n]
	rr.pos += n
	return p, nil
}

func (rr *WireReader) U32() (uint32, error) {
	p, err := rr.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(p), nil
}

func (rr *WireReader) U64() (uint64, error) {
	p, err := rr.Bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(p), nil
}

func (rr *WireReader) Uvarint() (uint64, error) {
	x, n := binary.Uvarint(rr.data[rr.pos:])
	if n > 0 {
		rr.pos += n
		return x, nil
	}
	if n < 0 {
		rr.pos += -n
		return 0, grph.ErrVarintOverflow
	}
	return 0, grph.ErrTruncated
}

package libgrph

import (
	"bufio"
	"io"
	"strconv"

	"github.com/2x3systems/grph/grph"
)

// TextEmitter renders triplets back into tab-separated text, one line
// per edge, through an internal buffer.  Call Flush before reporting
// success; the longest possible line fits the scratch buffer, so emits
// never allocate.
type TextEmitter struct {
	w     *bufio.Writer
	scrap [32]byte
}

func NewTextEmitter(w io.Writer) *TextEmitter {
	return &TextEmitter{
		w: bufio.NewWriterSize(w, wireBufSz),
	}
}

func (em *TextEmitter) EmitTriplet(a, b grph.VtxID, w byte) error {
	line := em.scrap[:0]
	line = strconv.AppendUint(line, uint64(a), 10)
	line = append(line, '\t')
	line = strconv.AppendUint(line, uint64(b), 10)
	line = append(line, '\t')
	line = strconv.AppendUint(line, uint64(w), 10)
	line = append(line, '\n')
	_, err := em.w.Write(line)
	return err
}

func (em *TextEmitter) Flush() error {
	return em.w.Flush()
}

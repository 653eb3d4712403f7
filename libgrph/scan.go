package libgrph

import (
	"bytes"
	"math"

	"github.com/pkg/errors"

	"github.com/2x3systems/grph/grph"
)

// TSVScanner streams edge triplets out of an in-memory text buffer, one
// edge per line:
//
//	idA <TAB> idB <TAB> weight
//
// All three fields are unsigned decimal.  Blank lines are skipped, a
// '\r' before the newline is dropped, and the final line may omit its
// newline.  The scanner is restartable: every ForEachTriplet call walks
// the whole buffer again.
type TSVScanner struct {
	Data []byte
}

func (sc *TSVScanner) ForEachTriplet(fn func(a, b grph.VtxID, w byte) error) error {
	data := sc.Data
	lineNum := 0

	for pos := 0; pos < len(data); {
		lineNum++

		end := bytes.IndexByte(data[pos:], '\n')
		var line []byte
		if end < 0 {
			line = data[pos:]
			pos = len(data)
		} else {
			line = data[pos : pos+end]
			pos += end + 1
		}
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		if len(line) == 0 {
			continue
		}

		a, b, w, err := parseTriplet(line)
		if err != nil {
			return errors.Wrapf(err, "line %d", lineNum)
		}
		if err := fn(a, b, w); err != nil {
			return err
		}
	}

	return nil
}

func parseTriplet(line []byte) (a, b grph.VtxID, w byte, err error) {
	fieldA, rest, err := splitTab(line)
	if err != nil {
		return
	}
	fieldB, rest, err := splitTab(rest)
	if err != nil {
		return
	}
	va, err := parseUint(fieldA, math.MaxUint32, grph.ErrIDOverflow)
	if err != nil {
		return
	}
	vb, err := parseUint(fieldB, math.MaxUint32, grph.ErrIDOverflow)
	if err != nil {
		return
	}
	vw, err := parseUint(rest, grph.MaxWeight, grph.ErrWeightRange)
	if err != nil {
		return
	}
	return grph.VtxID(va), grph.VtxID(vb), byte(vw), nil
}

func splitTab(line []byte) (field, rest []byte, err error) {
	i := bytes.IndexByte(line, '\t')
	if i < 0 {
		return nil, nil, grph.ErrInputFormat
	}
	return line[:i], line[i+1:], nil
}

// parseUint consumes a run of decimal digits, failing with rangeErr the
// moment the value exceeds max.  Since max always fits 32 bits, the
// accumulator cannot wrap.
func parseUint(field []byte, max uint64, rangeErr error) (uint64, error) {
	if len(field) == 0 {
		return 0, grph.ErrInputFormat
	}
	var v uint64
	for _, c := range field {
		if c < '0' || c > '9' {
			return 0, grph.ErrInputFormat
		}
		v = v*10 + uint64(c-'0')
		if v > max {
			return 0, rangeErr
		}
	}
	return v, nil
}

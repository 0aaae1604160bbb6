package xlsb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"unicode/utf16"
)

// Record types from [MS-XLSB] 2.3.
const (
	recRowHdr         = 0x00
	recCellBlank      = 0x01
	recCellRk         = 0x02
	recCellError      = 0x03
	recCellBool       = 0x04
	recCellReal       = 0x05
	recCellSt         = 0x06
	recCellIsst       = 0x07
	recFmlaString     = 0x08
	recFmlaNum        = 0x09
	recFmlaBool       = 0x0A
	recFmlaError      = 0x0B
	recSSTItem        = 0x13
	recBeginSheetData = 0x91
	recEndSheetData   = 0x92
	recBundleSh       = 0x9C
)

var errTruncated = errors.New("truncated record")

// maxRecordSize guards against corrupt length prefixes.
const maxRecordSize = 1 << 24

// eachRecord walks a BIFF12 stream. Record types are one or two bytes and
// record sizes up to four bytes, seven bits per byte with the high bit
// flagging continuation.
func eachRecord(b []byte, fn func(typ uint32, body []byte) error) error {
	for pos := 0; pos < len(b); {
		typ, n, err := varint(b[pos:], 2)
		if err != nil {
			return fmt.Errorf("record type at %d: %w", pos, err)
		}

		pos += n

		size, n, err := varint(b[pos:], 4)
		if err != nil {
			return fmt.Errorf("record size at %d: %w", pos, err)
		}

		pos += n

		if size > maxRecordSize || pos+int(size) > len(b) {
			return fmt.Errorf("record at %d: %w", pos, errTruncated)
		}

		if err := fn(typ, b[pos:pos+int(size)]); err != nil {
			return err
		}

		pos += int(size)
	}

	return nil
}

// varint decodes up to max bytes. Record types keep their continuation bits
// folded in the way the format defines them: type = b0&0x7F | (b1&0x7F)<<7.
func varint(b []byte, max int) (uint32, int, error) {
	var v uint32

	for i := 0; i < max; i++ {
		if i >= len(b) {
			return 0, 0, errTruncated
		}

		v |= uint32(b[i]&0x7F) << (7 * i)

		if b[i]&0x80 == 0 {
			return v, i + 1, nil
		}
	}

	return v, max, nil
}

type fieldReader struct {
	b   []byte
	off int
	err error
}

func (r *fieldReader) need(n int) bool {
	if r.err != nil {
		return false
	}

	if r.off+n > len(r.b) {
		r.err = errTruncated
		return false
	}

	return true
}

func (r *fieldReader) skip(n int) {
	if r.need(n) {
		r.off += n
	}
}

func (r *fieldReader) byte() byte {
	if !r.need(1) {
		return 0
	}

	v := r.b[r.off]
	r.off++

	return v
}

func (r *fieldReader) uint32() uint32 {
	if !r.need(4) {
		return 0
	}

	v := binary.LittleEndian.Uint32(r.b[r.off:])
	r.off += 4

	return v
}

func (r *fieldReader) float64() float64 {
	if !r.need(8) {
		return 0
	}

	v := math.Float64frombits(binary.LittleEndian.Uint64(r.b[r.off:]))
	r.off += 8

	return v
}

// wideString reads an XLWideString: a character count then UTF-16LE units.
// A count of 0xFFFFFFFF marks a null string and reports false.
func (r *fieldReader) wideString() (string, bool) {
	n := r.uint32()
	if r.err != nil {
		return "", false
	}

	if n == math.MaxUint32 {
		return "", false
	}

	if !r.need(int(n) * 2) {
		return "", false
	}

	units := make([]uint16, n)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(r.b[r.off:])
		r.off += 2
	}

	return string(utf16.Decode(units)), true
}

func isCell(typ uint32) bool {
	return typ >= recCellBlank && typ <= recFmlaError
}

// cell decodes a cell record into its column and display text. Every cell
// starts with the column index and a style/flags word.
func (wb *Workbook) cell(typ uint32, body []byte) (int, string, error) {
	rd := &fieldReader{b: body}
	c := rd.uint32()
	rd.skip(4)

	if c >= MaxColumns {
		return 0, "", fmt.Errorf("%w: column %d", ErrOutOfBounds, uint64(c)+1)
	}

	col := int(c)

	var text string

	switch typ {
	case recCellBlank:
	case recCellRk:
		text = formatFloat(rkValue(rd.uint32()))
	case recCellError, recFmlaError:
		text = errorText(rd.byte())
	case recCellBool, recFmlaBool:
		if rd.byte() != 0 {
			text = "TRUE"
		} else {
			text = "FALSE"
		}
	case recCellReal, recFmlaNum:
		text = formatFloat(rd.float64())
	case recCellSt, recFmlaString:
		text, _ = rd.wideString()
	case recCellIsst:
		idx := int(rd.uint32())
		if rd.err == nil {
			if idx >= len(wb.strings) {
				return 0, "", fmt.Errorf("shared string %d out of range", idx)
			}

			text = wb.strings[idx]
		}
	}

	if rd.err != nil {
		return 0, "", fmt.Errorf("cell record 0x%02X: %w", typ, rd.err)
	}

	return col, text, nil
}

// rkValue decodes an RkNumber: bit 0 divides by 100, bit 1 marks a 30-bit
// signed integer, otherwise the upper 30 bits are the top of an IEEE double.
func rkValue(rk uint32) float64 {
	var v float64

	if rk&0x02 != 0 {
		v = float64(int32(rk) >> 2)
	} else {
		v = math.Float64frombits(uint64(rk&0xFFFFFFFC) << 32)
	}

	if rk&0x01 != 0 {
		v /= 100
	}

	return v
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func errorText(code byte) string {
	switch code {
	case 0x00:
		return "#NULL!"
	case 0x07:
		return "#DIV/0!"
	case 0x0F:
		return "#VALUE!"
	case 0x17:
		return "#REF!"
	case 0x1D:
		return "#NAME?"
	case 0x24:
		return "#NUM!"
	case 0x2A:
		return "#N/A"
	}

	return "#ERR!"
}

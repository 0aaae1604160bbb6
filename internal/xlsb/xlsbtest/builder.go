// Package xlsbtest builds small binary workbooks for tests.
package xlsbtest

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf16"
)

type Sheet struct {
	Name string
	// Rows holds string, float64, int, bool or nil (no cell) values.
	Rows [][]any
	// FirstRow and FirstColumn offset the written cell indices.
	FirstRow    uint32
	FirstColumn uint32
}

// Build encodes the sheets into an .xlsb archive. Strings go through the
// shared string table, ints are written as RK numbers.
func Build(sheets ...Sheet) []byte {
	var (
		buf     bytes.Buffer
		zw      = zip.NewWriter(&buf)
		strs    []string
		strIdx  = map[string]int{}
		wbBody  bytes.Buffer
		relBody bytes.Buffer
	)

	relBody.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)

	for i, s := range sheets {
		relID := fmt.Sprintf("rId%d", i+1)
		target := fmt.Sprintf("worksheets/sheet%d.bin", i+1)

		fmt.Fprintf(&relBody, `<Relationship Id="%s" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="%s"/>`, relID, target)

		var sh bytes.Buffer
		sh.Write(u32(0))
		sh.Write(u32(uint32(i + 1)))
		sh.Write(wide(relID))
		sh.Write(wide(s.Name))
		writeRecord(&wbBody, 0x9C, sh.Bytes())

		var ws bytes.Buffer
		writeRecord(&ws, 0x91, nil)

		for r, row := range s.Rows {
			writeRecord(&ws, 0x00, append(u32(s.FirstRow+uint32(r)), make([]byte, 13)...))

			for c, v := range row {
				head := append(u32(s.FirstColumn+uint32(c)), u32(0)...)

				switch val := v.(type) {
				case nil:
					continue
				case string:
					idx, ok := strIdx[val]
					if !ok {
						idx = len(strs)
						strIdx[val] = idx
						strs = append(strs, val)
					}

					writeRecord(&ws, 0x07, append(head, u32(uint32(idx))...))
				case int:
					writeRecord(&ws, 0x02, append(head, u32(uint32(int32(val)<<2)|0x02)...))
				case float64:
					b := make([]byte, 8)
					binary.LittleEndian.PutUint64(b, math.Float64bits(val))
					writeRecord(&ws, 0x05, append(head, b...))
				case bool:
					b := byte(0)
					if val {
						b = 1
					}

					writeRecord(&ws, 0x04, append(head, b))
				default:
					panic(fmt.Sprintf("xlsbtest: unsupported cell type %T", v))
				}
			}
		}

		writeRecord(&ws, 0x92, nil)
		addFile(zw, "xl/"+target, ws.Bytes())
	}

	relBody.WriteString(`</Relationships>`)

	var sst bytes.Buffer
	for _, s := range strs {
		writeRecord(&sst, 0x13, append([]byte{0}, wide(s)...))
	}

	addFile(zw, "xl/workbook.bin", wbBody.Bytes())
	addFile(zw, "xl/_rels/workbook.bin.rels", relBody.Bytes())
	addFile(zw, "xl/sharedStrings.bin", sst.Bytes())

	if err := zw.Close(); err != nil {
		panic(err)
	}

	return buf.Bytes()
}

func addFile(zw *zip.Writer, name string, body []byte) {
	w, err := zw.Create(name)
	if err != nil {
		panic(err)
	}

	if _, err := w.Write(body); err != nil {
		panic(err)
	}
}

func writeRecord(buf *bytes.Buffer, typ uint32, body []byte) {
	buf.Write(varint(typ))
	buf.Write(varint(uint32(len(body))))
	buf.Write(body)
}

func varint(v uint32) []byte {
	var out []byte

	for {
		b := byte(v & 0x7F)
		v >>= 7

		if v == 0 {
			return append(out, b)
		}

		out = append(out, b|0x80)
	}
}

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)

	return b
}

func wide(s string) []byte {
	units := utf16.Encode([]rune(s))
	b := u32(uint32(len(units)))

	for _, u := range units {
		b = binary.LittleEndian.AppendUint16(b, u)
	}

	return b
}

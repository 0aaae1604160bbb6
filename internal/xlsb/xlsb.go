// Package xlsb reads cell text out of Excel binary (BIFF12) workbooks.
//
// Only the parts needed to turn a worksheet into rows of strings are decoded:
// the sheet list, shared strings and cell records. Styles, formulas and
// number formats are ignored; numbers are rendered with strconv.
package xlsb

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var (
	ErrSheetNotFound = errors.New("sheet not found")
	ErrNotWorkbook   = errors.New("not an xlsb workbook")
	ErrOutOfBounds   = errors.New("cell outside sheet bounds")
)

// Excel's worksheet limits.
const (
	MaxRows    = 1 << 20
	MaxColumns = 1 << 14
)

const (
	workbookPart = "xl/workbook.bin"
	relsPart     = "xl/_rels/workbook.bin.rels"
	sstPart      = "xl/sharedStrings.bin"
)

type sheetRef struct {
	name string
	part string
}

type Workbook struct {
	files   map[string]*zip.File
	sheets  []sheetRef
	strings []string
}

func Open(data []byte) (*Workbook, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWorkbook, err)
	}

	wb := &Workbook{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		wb.files[f.Name] = f
	}

	if _, ok := wb.files[workbookPart]; !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrNotWorkbook, workbookPart)
	}

	targets, err := wb.readRels()
	if err != nil {
		return nil, err
	}

	if err := wb.readSheets(targets); err != nil {
		return nil, err
	}

	if err := wb.readSharedStrings(); err != nil {
		return nil, err
	}

	return wb, nil
}

// Sheets returns sheet names in workbook order.
func (wb *Workbook) Sheets() []string {
	names := make([]string, len(wb.sheets))
	for i, s := range wb.sheets {
		names[i] = s.name
	}

	return names
}

// Rows returns the cell text of a sheet. Row i of the result is sheet row
// i+1; missing rows are empty and missing cells are "".
func (wb *Workbook) Rows(name string) ([][]string, error) {
	for _, s := range wb.sheets {
		if s.name == name {
			return wb.readSheet(s.part)
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
}

func (wb *Workbook) Close() error {
	return nil
}

func (wb *Workbook) part(name string) ([]byte, error) {
	f, ok := wb.files[name]
	if !ok {
		return nil, fmt.Errorf("missing part %s", name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	return b, nil
}

type relationships struct {
	Items []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

func (wb *Workbook) readRels() (map[string]string, error) {
	raw, err := wb.part(relsPart)
	if err != nil {
		return nil, err
	}

	var rels relationships
	if err := xml.Unmarshal(raw, &rels); err != nil {
		return nil, fmt.Errorf("parse %s: %w", relsPart, err)
	}

	targets := make(map[string]string, len(rels.Items))
	for _, r := range rels.Items {
		target := r.Target
		if strings.HasPrefix(target, "/") {
			target = strings.TrimPrefix(target, "/")
		} else {
			target = path.Join("xl", target)
		}

		targets[r.ID] = target
	}

	return targets, nil
}

func (wb *Workbook) readSheets(targets map[string]string) error {
	raw, err := wb.part(workbookPart)
	if err != nil {
		return err
	}

	return eachRecord(raw, func(typ uint32, body []byte) error {
		if typ != recBundleSh {
			return nil
		}

		rd := &fieldReader{b: body}
		rd.skip(8) // hsState, iTabID

		relID, ok := rd.wideString()
		name, _ := rd.wideString()

		if rd.err != nil {
			return fmt.Errorf("bundle sheet record: %w", rd.err)
		}

		if !ok {
			return nil
		}

		part, ok := targets[relID]
		if !ok {
			return fmt.Errorf("sheet %q: unknown relationship %s", name, relID)
		}

		wb.sheets = append(wb.sheets, sheetRef{name: name, part: part})

		return nil
	})
}

func (wb *Workbook) readSharedStrings() error {
	if _, ok := wb.files[sstPart]; !ok {
		return nil
	}

	raw, err := wb.part(sstPart)
	if err != nil {
		return err
	}

	return eachRecord(raw, func(typ uint32, body []byte) error {
		if typ != recSSTItem {
			return nil
		}

		rd := &fieldReader{b: body}
		rd.skip(1) // RichStr flags

		s, _ := rd.wideString()
		if rd.err != nil {
			return fmt.Errorf("shared string %d: %w", len(wb.strings), rd.err)
		}

		wb.strings = append(wb.strings, s)

		return nil
	})
}

func (wb *Workbook) readSheet(part string) ([][]string, error) {
	raw, err := wb.part(part)
	if err != nil {
		return nil, err
	}

	var (
		rows   [][]string
		cur    = -1
		inData bool
	)

	err = eachRecord(raw, func(typ uint32, body []byte) error {
		switch typ {
		case recBeginSheetData:
			inData = true
			return nil
		case recEndSheetData:
			inData = false
			return nil
		case recRowHdr:
			if !inData {
				return nil
			}

			rd := &fieldReader{b: body}
			rw := rd.uint32()

			if rd.err != nil {
				return fmt.Errorf("row header: %w", rd.err)
			}

			if rw >= MaxRows {
				return fmt.Errorf("%w: row %d", ErrOutOfBounds, uint64(rw)+1)
			}

			cur = int(rw)

			for len(rows) <= cur {
				rows = append(rows, nil)
			}

			return nil
		}

		if !inData || cur < 0 || !isCell(typ) {
			return nil
		}

		col, text, err := wb.cell(typ, body)
		if err != nil {
			return fmt.Errorf("row %d: %w", cur+1, err)
		}

		row := rows[cur]
		for len(row) <= col {
			row = append(row, "")
		}

		row[col] = text
		rows[cur] = row

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", part, err)
	}

	return rows, nil
}

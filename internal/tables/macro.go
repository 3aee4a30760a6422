package tables

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-synth/internal/macro"
)

// MacroDateColumn is the first column of the macro table.
const MacroDateColumn = "data_fim_mes"

// WriteMacro writes the macro table. Null values are empty cells.
func WriteMacro(w io.Writer, t *macro.Table) error {
	header := make([]string, 0, len(t.Columns)+1)
	header = append(header, MacroDateColumn)
	for _, c := range t.Columns {
		header = append(header, c.Name)
	}

	cw, err := newWriter(w, header)
	if err != nil {
		return fmt.Errorf("WriteMacro: %w", err)
	}

	rec := make([]string, len(header))
	for i, d := range t.Dates {
		rec[0] = d.String()
		for j, c := range t.Columns {
			rec[j+1] = ""
			if v := c.Values[i]; v.Valid {
				rec[j+1] = strconv.FormatFloat(v.Float, 'f', 4, 64)
			}
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("WriteMacro: row %s: %w", d, err)
		}
	}
	if err := flush(cw); err != nil {
		return fmt.Errorf("WriteMacro: %w", err)
	}
	return nil
}

// ReadMacro parses a macro table. Indicator columns are taken from the
// header.
func ReadMacro(r io.Reader) (*macro.Table, error) {
	cr, header, err := newReader(r, []string{MacroDateColumn}, false)
	if err != nil {
		return nil, fmt.Errorf("ReadMacro: %w", err)
	}

	t := &macro.Table{Columns: make([]macro.Column, len(header)-1)}
	for j, name := range header[1:] {
		t.Columns[j].Name = name
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ReadMacro: %w", err)
		}
		d, err := civil.ParseDate(rec[0])
		if err != nil {
			return nil, fmt.Errorf("ReadMacro: line %d: %s: %w", line, MacroDateColumn, err)
		}
		t.Dates = append(t.Dates, d)
		for j := range t.Columns {
			var v macro.Value
			if cell := rec[j+1]; cell != "" {
				f, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, fmt.Errorf("ReadMacro: line %d: %s: %w", line, t.Columns[j].Name, err)
				}
				v = macro.Value{Float: f, Valid: true}
			}
			t.Columns[j].Values = append(t.Columns[j].Values, v)
		}
	}
	return t, nil
}

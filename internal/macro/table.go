package macro

import "cloud.google.com/go/civil"

// Value is a nullable indicator value.
type Value struct {
	Float float64
	Valid bool
}

// Column is one indicator aligned with Table.Dates.
type Column struct {
	Name   string
	Values []Value
}

// Table is the merged macro table keyed by month-end date.
type Table struct {
	Dates   []civil.Date
	Columns []Column
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Len is the number of rows.
func (t *Table) Len() int {
	return len(t.Dates)
}

// FirstValidRow returns the index of the first row with any non-null value,
// or -1 when every value is null.
func (t *Table) FirstValidRow() int {
	first := -1
	for _, c := range t.Columns {
		for i, v := range c.Values {
			if v.Valid {
				if first == -1 || i < first {
					first = i
				}
				break
			}
		}
	}
	return first
}

// TrimLeading drops the leading months in which every column is null. A
// table with no values at all is left untouched.
func (t *Table) TrimLeading() *Table {
	first := t.FirstValidRow()
	if first <= 0 {
		return t
	}
	t.Dates = t.Dates[first:]
	for i := range t.Columns {
		t.Columns[i].Values = t.Columns[i].Values[first:]
	}
	return t
}

package domain

// Dataset is a rectangular table of string cells with a header row.
// Nulls mirrors Rows and marks cells that matched a configured null token.
type Dataset struct {
	Name    string     `json:"name"`
	Path    string     `json:"path"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"-"`
	Nulls   [][]bool   `json:"-"`
}

// RowCount returns the number of data rows (the header is not counted).
func (d *Dataset) RowCount() int { return len(d.Rows) }

// ColumnIndex returns the position of the named column, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell is a single value read from a column. Missing reports whether the raw
// value was one of the configured null tokens.
type Cell struct {
	Row     int
	Value   string
	Missing bool
}

// Column returns every cell of the named column in row order.
// ok is false when the column does not exist.
func (d *Dataset) Column(name string) (cells []Cell, ok bool) {
	idx := d.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	cells = make([]Cell, len(d.Rows))
	for i, row := range d.Rows {
		c := Cell{Row: i}
		if idx < len(row) {
			c.Value = row[idx]
		}
		if i < len(d.Nulls) && idx < len(d.Nulls[i]) {
			c.Missing = d.Nulls[i][idx]
		} else if idx >= len(row) {
			c.Missing = true
		}
		cells[i] = c
	}
	return cells, true
}

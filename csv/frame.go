package csv

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/deepteams/nexus/jsontree"
)

// ColumnType tags the element type of a data-frame column.
type ColumnType int

const (
	Bool ColumnType = iota
	Int
	Double
	String
	Factor
)

func (t ColumnType) String() string {
	switch t {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Double:
		return "double"
	case String:
		return "string"
	case Factor:
		return "factor"
	}
	return fmt.Sprintf("ColumnType(%d)", int(t))
}

// Column is one typed column of a data frame. Cells are stored in the
// slice matching the column type; na flags missing cells.
type Column struct {
	typ   ColumnType
	label string

	na      []bool
	bools   []bool
	ints    []int
	doubles []float64
	strings []string
	codes   []int

	levels     []string
	levelIndex map[string]int
}

// Type returns the column's element type.
func (dc *Column) Type() ColumnType { return dc.typ }

// Label returns the column's header label.
func (dc *Column) Label() string { return dc.label }

// Levels returns the interned level labels of a factor column.
func (dc *Column) Levels() []string { return dc.levels }

func newColumn(typ ColumnType, label string) *Column {
	dc := &Column{typ: typ, label: label}
	if typ == Factor {
		dc.levelIndex = make(map[string]int)
	}
	return dc
}

// grow appends one NA cell to the na flags and to the storage slice of
// the column's type.
func (dc *Column) grow() {
	dc.na = append(dc.na, true)
	switch dc.typ {
	case Bool:
		dc.bools = append(dc.bools, false)
	case Int:
		dc.ints = append(dc.ints, 0)
	case Double:
		dc.doubles = append(dc.doubles, 0)
	case String:
		dc.strings = append(dc.strings, "")
	case Factor:
		dc.codes = append(dc.codes, -1)
	}
}

// internLevel returns the index of the label in the column's level set,
// appending it on first sight.
func (dc *Column) internLevel(label string) int {
	if idx, ok := dc.levelIndex[label]; ok {
		return idx
	}
	idx := len(dc.levels)
	dc.levels = append(dc.levels, label)
	dc.levelIndex[label] = idx
	return idx
}

// DataFrame is a column-major table. All columns have the same number of
// rows; individual cells may be NA.
type DataFrame struct {
	columns []*Column
	nRows   int
}

// NewDataFrame returns an empty data frame.
func NewDataFrame() *DataFrame { return &DataFrame{} }

// NRows returns the number of rows.
func (df *DataFrame) NRows() int { return df.nRows }

// NColumns returns the number of columns.
func (df *DataFrame) NColumns() int { return len(df.columns) }

// Column returns the i-th column.
func (df *DataFrame) Column(i int) *Column { return df.columns[i] }

// ColumnIndex returns the index of the column with the given label, or
// -1.
func (df *DataFrame) ColumnIndex(label string) int {
	for i, dc := range df.columns {
		if dc.label == label {
			return i
		}
	}
	return -1
}

// AddColumn appends a column of the given type; existing rows get NA
// cells.
func (df *DataFrame) AddColumn(typ ColumnType, label string) int {
	dc := newColumn(typ, label)
	for i := 0; i < df.nRows; i++ {
		dc.grow()
	}
	df.columns = append(df.columns, dc)
	return len(df.columns) - 1
}

// AddRow appends a row of NA cells and returns its index.
func (df *DataFrame) AddRow() int {
	for _, dc := range df.columns {
		dc.grow()
	}
	df.nRows++
	return df.nRows - 1
}

func (df *DataFrame) cell(r, c int, want ColumnType) *Column {
	dc := df.columns[c]
	if dc.typ != want {
		panic(fmt.Sprintf("csv: data frame column %d is %v, not %v", c, dc.typ, want))
	}
	if r < 0 || r >= df.nRows {
		panic(fmt.Sprintf("csv: data frame row %d out of range", r))
	}
	return dc
}

// IsNA reports whether the cell at (r, c) is missing.
func (df *DataFrame) IsNA(r, c int) bool { return df.columns[c].na[r] }

// SetNA marks the cell at (r, c) missing.
func (df *DataFrame) SetNA(r, c int) { df.columns[c].na[r] = true }

// SetBool stores a boolean into a Bool column.
func (df *DataFrame) SetBool(r, c int, v bool) {
	dc := df.cell(r, c, Bool)
	dc.bools[r] = v
	dc.na[r] = false
}

// SetInt stores an integer into an Int column.
func (df *DataFrame) SetInt(r, c int, v int) {
	dc := df.cell(r, c, Int)
	dc.ints[r] = v
	dc.na[r] = false
}

// SetDouble stores a float into a Double column.
func (df *DataFrame) SetDouble(r, c int, v float64) {
	dc := df.cell(r, c, Double)
	dc.doubles[r] = v
	dc.na[r] = false
}

// SetString stores a string into a String column.
func (df *DataFrame) SetString(r, c int, v string) {
	dc := df.cell(r, c, String)
	dc.strings[r] = v
	dc.na[r] = false
}

// SetFactor stores a level label into a Factor column, interning it.
func (df *DataFrame) SetFactor(r, c int, label string) {
	dc := df.cell(r, c, Factor)
	dc.codes[r] = dc.internLevel(label)
	dc.na[r] = false
}

// Bool returns the boolean cell at (r, c).
func (df *DataFrame) Bool(r, c int) bool { return df.cell(r, c, Bool).bools[r] }

// Int returns the integer cell at (r, c).
func (df *DataFrame) Int(r, c int) int { return df.cell(r, c, Int).ints[r] }

// Double returns the float cell at (r, c).
func (df *DataFrame) Double(r, c int) float64 { return df.cell(r, c, Double).doubles[r] }

// GetString returns the string cell at (r, c).
func (df *DataFrame) GetString(r, c int) string { return df.cell(r, c, String).strings[r] }

// FactorLabel returns the level label of the factor cell at (r, c).
func (df *DataFrame) FactorLabel(r, c int) string {
	dc := df.cell(r, c, Factor)
	return dc.levels[dc.codes[r]]
}

// MakeFactor converts the String column c into a Factor column with an
// append-only interned level set, preserving NA cells.
func (df *DataFrame) MakeFactor(c int) {
	dc := df.columns[c]
	if dc.typ == Factor {
		return
	}
	if dc.typ != String {
		panic(fmt.Sprintf("csv: can only make factors from string columns, column %d is %v", c, dc.typ))
	}

	dc.typ = Factor
	dc.levelIndex = make(map[string]int)
	dc.codes = make([]int, df.nRows)
	for r := 0; r < df.nRows; r++ {
		if dc.na[r] {
			dc.codes[r] = -1
			continue
		}
		dc.codes[r] = dc.internLevel(dc.strings[r])
	}
	dc.strings = nil
}

// WriteCSV serialises the frame: a header row of escaped labels, then one
// line per row with comma-separated cells. Strings and factor labels are
// double-quoted with embedded quotes doubled; integers print as %d,
// doubles as %.15g, booleans as true/false. NA cells emit nothing.
func (df *DataFrame) WriteCSV(w io.Writer) error {
	bw := bufio.NewWriter(w)

	nc := df.NColumns()
	for i, dc := range df.columns {
		io.WriteString(bw, jsontree.ToReadable(dc.label))
		if i != nc-1 {
			io.WriteString(bw, ",")
		} else {
			io.WriteString(bw, "\n")
		}
	}

	for r := 0; r < df.nRows; r++ {
		for c, dc := range df.columns {
			if !dc.na[r] {
				switch dc.typ {
				case String:
					io.WriteString(bw, ToDoubleQuoted(dc.strings[r]))
				case Factor:
					io.WriteString(bw, ToDoubleQuoted(dc.levels[dc.codes[r]]))
				case Int:
					io.WriteString(bw, strconv.Itoa(dc.ints[r]))
				case Double:
					fmt.Fprintf(bw, "%.15g", dc.doubles[r])
				case Bool:
					if dc.bools[r] {
						io.WriteString(bw, "true")
					} else {
						io.WriteString(bw, "false")
					}
				}
			}
			if c != nc-1 {
				io.WriteString(bw, ",")
			} else {
				io.WriteString(bw, "\n")
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("csv: writing data frame: %w", err)
	}
	return nil
}

// SaveCSV writes the frame to the named file.
func (df *DataFrame) SaveCSV(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("csv: creating %q: %w", filename, err)
	}
	defer f.Close()
	return df.WriteCSV(f)
}

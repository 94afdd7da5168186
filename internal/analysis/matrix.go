package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// Matrix is a labeled square similarity matrix over compound identifiers.
// Cells hold scores in [0, 1], or NaN where the two compounds share no data
// source ("incomparable", as opposed to a genuine low score).
type Matrix struct {
	keys  []string
	index map[string]int
	cells [][]float64
}

// NewMatrix creates a keys×keys matrix with every cell set to NaN.
func NewMatrix(keys []string) *Matrix {
	index := make(map[string]int, len(keys))
	for i, k := range keys {
		index[k] = i
	}
	cells := make([][]float64, len(keys))
	for i := range cells {
		row := make([]float64, len(keys))
		for j := range row {
			row[j] = math.NaN()
		}
		cells[i] = row
	}
	return &Matrix{keys: keys, index: index, cells: cells}
}

// Keys returns the row/column labels in matrix order.
func (m *Matrix) Keys() []string {
	return m.keys
}

// Len returns the number of rows (and columns).
func (m *Matrix) Len() int {
	return len(m.keys)
}

// Get returns the cell at (row, col). ok is false if either label is absent.
// A present cell may still be NaN.
func (m *Matrix) Get(row, col string) (v float64, ok bool) {
	i, ok := m.index[row]
	if !ok {
		return 0, false
	}
	j, ok := m.index[col]
	if !ok {
		return 0, false
	}
	return m.cells[i][j], true
}

// Set writes the cell at (row, col), ignoring unknown labels.
func (m *Matrix) Set(row, col string, v float64) {
	i, ok := m.index[row]
	if !ok {
		return
	}
	j, ok := m.index[col]
	if !ok {
		return
	}
	m.cells[i][j] = v
}

// WriteCSV writes the matrix as comma-separated values: a header row with an
// empty corner cell followed by the column labels, then one row per key.
// NaN cells are written as empty fields so downstream readers keep
// "undefined" distinct from 0.
func (m *Matrix) WriteCSV(w io.Writer) error {
	return m.writeDelimited(w, ',')
}

// WriteTSV writes the matrix as a tab-separated table.
func (m *Matrix) WriteTSV(w io.Writer) error {
	return m.writeDelimited(w, '\t')
}

func (m *Matrix) writeDelimited(w io.Writer, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	header := make([]string, len(m.keys)+1)
	copy(header[1:], m.keys)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(m.keys)+1)
	for i, key := range m.keys {
		row[0] = key
		for j := range m.keys {
			v := m.cells[i][j]
			if math.IsNaN(v) {
				row[j+1] = ""
			} else {
				row[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", key, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the matrix to path as CSV.
func (m *Matrix) WriteCSVFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create matrix file: %w", err)
	}
	if err := m.WriteCSV(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

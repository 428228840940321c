// Package scores holds the tabular score container the classifier trainer
// works on: rows are sentence pairs, columns are named filter scores read
// from a jsonlines file.
package scores

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Table is a column-oriented score table. Column order is fixed at load
// time and survives copies; dropping a column removes it from the order.
type Table struct {
	names []string
	cols  map[string][]float64
	rows  int
}

// Load reads a jsonlines score file into a Table. Each line is one JSON
// object; nested objects are flattened into dot-separated column names.
// Columns are ordered by first appearance, lexicographic within a record.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scores file: %w", err)
	}
	defer f.Close()

	t := &Table{cols: make(map[string][]float64)}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("%s:%d: decode scores record: %w", path, line, err)
		}
		flat := make(map[string]float64)
		if err := flatten("", rec, flat); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		if err := t.appendRow(flat); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read scores file: %w", err)
	}
	return t, nil
}

func flatten(prefix string, rec map[string]any, out map[string]float64) error {
	for k, v := range rec {
		name := k
		if prefix != "" {
			name = prefix + "." + k
		}
		switch val := v.(type) {
		case float64:
			out[name] = val
		case bool:
			if val {
				out[name] = 1
			} else {
				out[name] = 0
			}
		case map[string]any:
			if err := flatten(name, val, out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("column %q: unsupported value type %T", name, v)
		}
	}
	return nil
}

func (t *Table) appendRow(flat map[string]float64) error {
	if t.rows == 0 {
		names := make([]string, 0, len(flat))
		for k := range flat {
			names = append(names, k)
		}
		sort.Strings(names)
		t.names = names
		for _, k := range names {
			t.cols[k] = make([]float64, 0, 64)
		}
	}
	if len(flat) != len(t.names) {
		return fmt.Errorf("record has %d columns, table has %d", len(flat), len(t.names))
	}
	for _, k := range t.names {
		v, ok := flat[k]
		if !ok {
			return fmt.Errorf("record missing column %q", k)
		}
		t.cols[k] = append(t.cols[k], v)
	}
	t.rows++
	return nil
}

// FromColumns builds a table from named columns, in the given order.
// All columns must have the same length.
func FromColumns(names []string, cols map[string][]float64) (*Table, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no columns")
	}
	t := &Table{
		names: make([]string, len(names)),
		cols:  make(map[string][]float64, len(names)),
	}
	copy(t.names, names)
	t.rows = len(cols[names[0]])
	for _, name := range names {
		col, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
		if len(col) != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", name, len(col), t.rows)
		}
		cc := make([]float64, len(col))
		copy(cc, col)
		t.cols[name] = cc
	}
	return t, nil
}

// Rows returns the number of rows.
func (t *Table) Rows() int { return t.rows }

// Columns returns the column names in table order. The slice is a copy.
func (t *Table) Columns() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Has reports whether the table carries the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Column returns the values of the named column. The slice is the
// table's backing storage; callers that mutate it must Copy first.
func (t *Table) Column(name string) ([]float64, error) {
	col, ok := t.cols[name]
	if !ok {
		return nil, fmt.Errorf("no column %q", name)
	}
	return col, nil
}

// Pop removes the named column in place and returns its values.
func (t *Table) Pop(name string) ([]float64, error) {
	col, ok := t.cols[name]
	if !ok {
		return nil, fmt.Errorf("no column %q", name)
	}
	delete(t.cols, name)
	for i, n := range t.names {
		if n == name {
			t.names = append(t.names[:i], t.names[i+1:]...)
			break
		}
	}
	return col, nil
}

// Copy returns a deep copy: new column order, new value slices.
func (t *Table) Copy() *Table {
	c := &Table{
		names: make([]string, len(t.names)),
		cols:  make(map[string][]float64, len(t.cols)),
		rows:  t.rows,
	}
	copy(c.names, t.names)
	for k, v := range t.cols {
		vv := make([]float64, len(v))
		copy(vv, v)
		c.cols[k] = vv
	}
	return c
}

// Quantile returns the p-quantile of the named column using linear
// interpolation, matching the usual dataframe quantile semantics.
func (t *Table) Quantile(name string, p float64) (float64, error) {
	col, ok := t.cols[name]
	if !ok {
		return 0, fmt.Errorf("no column %q", name)
	}
	if len(col) == 0 {
		return 0, fmt.Errorf("column %q is empty", name)
	}
	if p < 0 || p > 1 {
		return 0, fmt.Errorf("quantile %v out of [0, 1]", p)
	}
	sorted := make([]float64, len(col))
	copy(sorted, col)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.LinInterp, sorted, nil), nil
}

package engine

import (
	"cargodash/internal/models"
)

// column is a dictionary-encoded categorical column.
type column struct {
	IDs  []int32  // row -> dictionary ID
	Dict []string // ID -> value, first-seen order
	ids  map[string]int32
}

func (c *column) add(value string) {
	id, ok := c.ids[value]
	if !ok {
		id = int32(len(c.Dict))
		c.Dict = append(c.Dict, value)
		c.ids[value] = id
	}
	c.IDs = append(c.IDs, id)
}

// Dataset holds the voyages row-wise plus dictionary-encoded categorical
// columns for filtering and grouping. It is never mutated after NewDataset.
type Dataset struct {
	Path    string
	Voyages []models.Voyage

	columns map[string]*column
}

// NewDataset builds a dataset from already validated voyages.
func NewDataset(path string, voyages []models.Voyage) *Dataset {
	ds := &Dataset{
		Path:    path,
		Voyages: voyages,
		columns: make(map[string]*column, len(models.FilterColumns)),
	}

	for _, name := range models.FilterColumns {
		col := &column{
			IDs: make([]int32, 0, len(voyages)),
			ids: make(map[string]int32),
		}
		for _, v := range voyages {
			val, _ := v.Category(name)
			col.add(val)
		}
		ds.columns[name] = col
	}
	return ds
}

// Len returns the number of voyages.
func (ds *Dataset) Len() int {
	return len(ds.Voyages)
}

// Values returns the distinct values of a categorical column in first-seen order.
func (ds *Dataset) Values(name string) ([]string, bool) {
	col, ok := ds.columns[name]
	if !ok {
		return nil, false
	}
	return col.Dict, true
}

// View returns a view over every row of the dataset.
func (ds *Dataset) View() View {
	rows := make([]int, ds.Len())
	for i := range rows {
		rows[i] = i
	}
	return View{ds: ds, rows: rows}
}

// View is an ordered subset of a dataset's rows.
type View struct {
	ds   *Dataset
	rows []int
}

func (v View) Len() int {
	return len(v.rows)
}

// Dataset returns the dataset the view was derived from.
func (v View) Dataset() *Dataset {
	return v.ds
}

// Voyage returns the i-th voyage of the view.
func (v View) Voyage(i int) models.Voyage {
	return v.ds.Voyages[v.rows[i]]
}

// Voyages copies the view's rows out in order.
func (v View) Voyages() []models.Voyage {
	out := make([]models.Voyage, len(v.rows))
	for i, r := range v.rows {
		out[i] = v.ds.Voyages[r]
	}
	return out
}

// Head returns a view over the first n rows.
func (v View) Head(n int) View {
	if n < 0 || n >= len(v.rows) {
		return v
	}
	return View{ds: v.ds, rows: v.rows[:n]}
}

// TotalIntake sums the intake of every row in the view.
func (v View) TotalIntake() float64 {
	var total float64
	for _, r := range v.rows {
		total += v.ds.Voyages[r].Intake
	}
	return total
}

// Distinct counts the distinct values of a column within the view.
func (v View) Distinct(name string) int {
	col, ok := v.ds.columns[name]
	if !ok {
		return 0
	}
	seen := make(map[int32]struct{})
	for _, r := range v.rows {
		seen[col.IDs[r]] = struct{}{}
	}
	return len(seen)
}

package engine

import (
	"net/url"
	"slices"
	"strings"

	"cargodash/internal/common"
	"cargodash/internal/models"
)

// Selection maps a categorical column to the values a row may hold.
// OR within a column, AND across columns. A column that is absent or maps to
// an empty list imposes no restriction.
type Selection map[string][]string

// IsEmpty reports whether the selection restricts nothing.
func (s Selection) IsEmpty() bool {
	for _, vals := range s {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// Validate fails with a ConfigError on columns that cannot be filtered.
func (s Selection) Validate() error {
	for col := range s {
		if !slices.Contains(models.FilterColumns, col) {
			return common.NewConfigError(col, "unknown filter column (want one of %s)", strings.Join(models.FilterColumns, ", "))
		}
	}
	return nil
}

// Key returns a canonical form of the selection: columns and values sorted,
// values de-duplicated, empty columns dropped.
func (s Selection) Key() string {
	cols := make([]string, 0, len(s))
	for col, vals := range s {
		if len(vals) > 0 {
			cols = append(cols, col)
		}
	}
	slices.Sort(cols)

	var b strings.Builder
	for _, col := range cols {
		vals := slices.Clone(s[col])
		slices.Sort(vals)
		vals = slices.Compact(vals)

		b.WriteString(url.QueryEscape(col))
		b.WriteByte('=')
		for i, v := range vals {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(url.QueryEscape(v))
		}
		b.WriteByte(';')
	}
	return b.String()
}

// ParseSelection builds a selection from query parameters. A filter column
// repeats once per accepted value; values are taken whole, commas included.
// Parameters that are neither filter columns nor listed in reserved are
// rejected.
func ParseSelection(q url.Values, reserved ...string) (Selection, error) {
	sel := make(Selection)
	for key, raw := range q {
		if slices.Contains(reserved, key) {
			continue
		}
		if !slices.Contains(models.FilterColumns, key) {
			return nil, common.NewConfigError(key, "unknown query parameter")
		}
		for _, v := range raw {
			if v = strings.TrimSpace(v); v != "" {
				sel[key] = append(sel[key], v)
			}
		}
	}
	return sel, nil
}

// Filter keeps the rows whose values are accepted by every active column of
// the selection, preserving order. The receiver is left untouched.
func (v View) Filter(sel Selection) (View, error) {
	if err := sel.Validate(); err != nil {
		return View{}, err
	}
	if sel.IsEmpty() {
		return v, nil
	}

	// Translate accepted values to dictionary IDs once; values the
	// dataset has never seen cannot match any row.
	type predicate struct {
		ids    []int32
		accept map[int32]struct{}
	}
	preds := make([]predicate, 0, len(sel))
	for name, vals := range sel {
		if len(vals) == 0 {
			continue
		}
		col := v.ds.columns[name]
		p := predicate{ids: col.IDs, accept: make(map[int32]struct{}, len(vals))}
		for _, val := range vals {
			if id, ok := col.ids[val]; ok {
				p.accept[id] = struct{}{}
			}
		}
		preds = append(preds, p)
	}

	rows := make([]int, 0, len(v.rows))
	for _, r := range v.rows {
		keep := true
		for _, p := range preds {
			if _, ok := p.accept[p.ids[r]]; !ok {
				keep = false
				break
			}
		}
		if keep {
			rows = append(rows, r)
		}
	}
	return View{ds: v.ds, rows: rows}, nil
}

// Filter applies a selection to a whole dataset.
func Filter(ds *Dataset, sel Selection) (View, error) {
	return ds.View().Filter(sel)
}

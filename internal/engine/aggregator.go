package engine

import (
	"slices"
	"sort"
	"strings"

	"cargodash/internal/common"
	"cargodash/internal/models"
)

// Defaults used by the dashboard.
const (
	DefaultTopN     = 5
	DefaultLineRows = 50
)

// Bar chart estimators.
const (
	StatMean = "mean"
	StatSum  = "sum"
)

type groupStats struct {
	label  string
	intake float64
	count  int
}

// groupBy buckets the view's rows by a categorical column. Groups come back
// in the order their first row appears in the view.
func (v View) groupBy(name string) ([]groupStats, error) {
	col, ok := v.ds.columns[name]
	if !ok {
		return nil, common.NewConfigError(name, "cannot group by column (want one of %s)", strings.Join(models.FilterColumns, ", "))
	}

	slot := make(map[int32]int)
	groups := make([]groupStats, 0)
	for _, r := range v.rows {
		id := col.IDs[r]
		i, seen := slot[id]
		if !seen {
			i = len(groups)
			slot[id] = i
			groups = append(groups, groupStats{label: col.Dict[id]})
		}
		groups[i].intake += v.ds.Voyages[r].Intake
		groups[i].count++
	}
	return groups, nil
}

// Aggregate sums intake per value of column, highest first. Only the top n
// groups are kept individually; the rest are folded into a trailing "Other"
// entry. n <= 0 keeps every group. Ties keep first-encountered order.
func (v View) Aggregate(column string, n int) ([]models.AggregateItem, error) {
	groups, err := v.groupBy(column)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(groups, func(i, j int) bool { return groups[i].intake > groups[j].intake })

	items := make([]models.AggregateItem, 0, min(len(groups), max(n, 0)+1))
	for i, g := range groups {
		if n > 0 && i >= n {
			break
		}
		items = append(items, models.AggregateItem{Label: g.label, Intake: g.intake, Voyages: g.count})
	}

	if n > 0 && len(groups) > n {
		other := models.AggregateItem{Label: otherLabel(items), Other: true}
		for _, g := range groups[n:] {
			other.Intake += g.intake
			other.Voyages += g.count
		}
		items = append(items, other)
	}
	return items, nil
}

// otherLabel names the remainder bucket so it cannot be mistaken for a kept
// group that is itself called "Other".
func otherLabel(kept []models.AggregateItem) string {
	label := models.OtherLabel
	for taken := true; taken; {
		taken = slices.ContainsFunc(kept, func(it models.AggregateItem) bool { return it.Label == label })
		if taken {
			label += " (rest)"
		}
	}
	return label
}

// BarSeries returns one point per category in first-seen order, valued by
// the mean (default) or sum of intake.
func (v View) BarSeries(column, stat string) ([]models.SeriesPoint, error) {
	if stat == "" {
		stat = StatMean
	}
	if stat != StatMean && stat != StatSum {
		return nil, common.NewConfigError("stat", "unknown estimator %q (want %s or %s)", stat, StatMean, StatSum)
	}

	groups, err := v.groupBy(column)
	if err != nil {
		return nil, err
	}
	return toSeries(groups, stat), nil
}

// LineSeries plots the mean intake per category over the first limit rows
// of the view, in first-seen order. limit <= 0 uses every row.
func (v View) LineSeries(column string, limit int) ([]models.SeriesPoint, error) {
	if limit <= 0 {
		limit = -1
	}
	groups, err := v.Head(limit).groupBy(column)
	if err != nil {
		return nil, err
	}
	return toSeries(groups, StatMean), nil
}

func toSeries(groups []groupStats, stat string) []models.SeriesPoint {
	points := make([]models.SeriesPoint, len(groups))
	for i, g := range groups {
		val := g.intake
		if stat == StatMean && g.count > 0 {
			val /= float64(g.count)
		}
		points[i] = models.SeriesPoint{Label: g.label, Value: val}
	}
	return points
}

// Summarize builds the dashboard's headline numbers and one aggregate table
// per categorical column.
func (v View) Summarize(topN int) (*models.DashboardData, error) {
	data := &models.DashboardData{
		Voyages:     v.Len(),
		TotalIntake: v.TotalIntake(),
		LoadPorts:   v.Distinct(models.ColLoadPort),
		DischPorts:  v.Distinct(models.ColDischPort),
		Commodities: v.Distinct(models.ColCommodity),
		Breakdown:   make(map[string][]models.AggregateItem, len(models.FilterColumns)),
	}

	for _, col := range models.FilterColumns {
		items, err := v.Aggregate(col, topN)
		if err != nil {
			return nil, err
		}
		data.Breakdown[col] = items
	}
	return data, nil
}

// Options lists the selectable values of every filter column.
func Options(ds *Dataset) map[string][]string {
	out := make(map[string][]string, len(models.FilterColumns))
	for _, col := range models.FilterColumns {
		vals, _ := ds.Values(col)
		out[col] = slices.Clone(vals)
	}
	return out
}

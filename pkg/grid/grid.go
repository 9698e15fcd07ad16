// Package grid implements the editable money grid shared by all tabular
// screens: parent aggregates owning zero or more child rows, lazily created
// cell values per column, per-column totals and the optimistic
// edit/save/rollback protocol that keeps the in-memory grid consistent with
// the database.
package grid

import (
	"github.com/presu/presu/pkg/moneyfmt"
)

// Kind classifies an aggregate for the net/cumulative computation.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
	KindNeutral Kind = "neutral"
)

// RowKey identifies an editable row. A childless parent edits its own cell,
// expressed as ChildID == 0.
type RowKey struct {
	ParentID int64
	ChildID  int64
}

// CellKey identifies one editable cell: a row and a column (month or day).
type CellKey struct {
	Row    RowKey
	Column int
}

// Row is a leaf row owned by an aggregate.
type Row struct {
	ID   int64
	Name string
	// RetainOverlay keeps the raw user text visible until a reload completes,
	// used when later computed columns derive from this cell (indexed values).
	RetainOverlay bool
}

// Aggregate is a named grouping of rows with a computed per-column total.
type Aggregate struct {
	ID   int64
	Name string
	Kind Kind
	// Markup derives a second displayed row as total * (1 + Markup/100).
	// Zero disables it. The derived row is never persisted.
	Markup float64
	Rows   []Row
	// RetainOverlay applies to the aggregate's own cell when it has no rows.
	RetainOverlay bool
}

// Grid holds the committed cell values of a screen plus the transient editing
// overlay. Totals are always computed from the committed values, so a
// displayed total can never go stale against the cells it sums.
type Grid struct {
	columns    []int
	aggregates []Aggregate
	byParent   map[int64]*Aggregate

	values  map[CellKey]float64
	overlay map[CellKey]string
	states  map[CellKey]CellState
}

// New builds a grid for the given ordered columns and aggregates.
func New(columns []int, aggregates []Aggregate) *Grid {
	g := &Grid{
		columns:    columns,
		aggregates: aggregates,
		byParent:   make(map[int64]*Aggregate, len(aggregates)),
		values:     make(map[CellKey]float64),
		overlay:    make(map[CellKey]string),
		states:     make(map[CellKey]CellState),
	}
	for i := range g.aggregates {
		g.byParent[g.aggregates[i].ID] = &g.aggregates[i]
	}
	return g
}

// Columns returns the ordered column keys.
func (g *Grid) Columns() []int {
	return g.columns
}

// Aggregates returns the ordered aggregates.
func (g *Grid) Aggregates() []Aggregate {
	return g.aggregates
}

// SetCommitted records a stored cell value. A value of exactly zero removes
// the cell: cells only exist once a non-zero amount was entered.
func (g *Grid) SetCommitted(key CellKey, value float64) {
	if value == 0 {
		delete(g.values, key)
		return
	}
	g.values[key] = value
}

// ResetValues drops all committed values so a reload can repopulate the grid
// from the store. Aggregates, overlay and cell states are preserved.
func (g *Grid) ResetValues() {
	g.values = make(map[CellKey]float64)
}

// Value returns the committed value of a cell, zero when absent.
func (g *Grid) Value(key CellKey) float64 {
	return g.values[key]
}

// Exists reports whether the cell has a stored value.
func (g *Grid) Exists(key CellKey) bool {
	_, ok := g.values[key]
	return ok
}

// Total returns the aggregate's total for a column: the sum of its child
// cells, or its own cell when it has no children.
func (g *Grid) Total(parentID int64, column int) float64 {
	agg, ok := g.byParent[parentID]
	if !ok {
		return 0
	}
	if len(agg.Rows) == 0 {
		return g.values[CellKey{Row: RowKey{ParentID: parentID}, Column: column}]
	}
	var total float64
	for _, row := range agg.Rows {
		total += g.values[CellKey{Row: RowKey{ParentID: parentID, ChildID: row.ID}, Column: column}]
	}
	return total
}

// MarkupTotal returns the derived markup row for a column:
// total * (1 + markup/100). It is recomputed on every call.
func (g *Grid) MarkupTotal(parentID int64, column int) float64 {
	agg, ok := g.byParent[parentID]
	if !ok || agg.Markup == 0 {
		return g.Total(parentID, column)
	}
	return g.Total(parentID, column) * (1 + agg.Markup/100)
}

// GrandTotal sums all aggregate totals for a column.
func (g *Grid) GrandTotal(column int) float64 {
	var total float64
	for _, agg := range g.aggregates {
		total += g.Total(agg.ID, column)
	}
	return total
}

// Net returns income minus expense totals for a column.
func (g *Grid) Net(column int) float64 {
	var net float64
	for _, agg := range g.aggregates {
		switch agg.Kind {
		case KindIncome:
			net += g.Total(agg.ID, column)
		case KindExpense:
			net -= g.Total(agg.ID, column)
		}
	}
	return net
}

// Cumulative returns the running net up to and including the given column,
// accumulated in the grid's left-to-right column order.
func (g *Grid) Cumulative(column int) float64 {
	var sum float64
	for _, col := range g.columns {
		sum += g.Net(col)
		if col == column {
			break
		}
	}
	return sum
}

// Display returns the text shown in a cell: the editing overlay while the
// user is typing, otherwise the formatted committed value.
func (g *Grid) Display(key CellKey) string {
	if raw, editing := g.overlay[key]; editing {
		return raw
	}
	return moneyfmt.FormatForDisplay(g.values[key])
}

func (g *Grid) retainOverlay(row RowKey) bool {
	agg, ok := g.byParent[row.ParentID]
	if !ok {
		return false
	}
	if row.ChildID == 0 {
		return agg.RetainOverlay
	}
	for _, r := range agg.Rows {
		if r.ID == row.ChildID {
			return r.RetainOverlay
		}
	}
	return false
}

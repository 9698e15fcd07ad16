package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func months() []int {
	return []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
}

func TestGrid_Total(t *testing.T) {
	t.Run("parent with children sums child cells", func(t *testing.T) {
		g := New(months(), []Aggregate{
			{ID: 1, Name: "Sueldos", Rows: []Row{{ID: 10, Name: "Ana"}, {ID: 11, Name: "Luis"}}},
		})
		g.SetCommitted(CellKey{Row: RowKey{ParentID: 1, ChildID: 10}, Column: 3}, 100)
		g.SetCommitted(CellKey{Row: RowKey{ParentID: 1, ChildID: 11}, Column: 3}, 200)

		assert.Equal(t, 300.0, g.Total(1, 3))
		assert.Equal(t, 0.0, g.Total(1, 4))
	})

	t.Run("childless parent edits its own cell", func(t *testing.T) {
		g := New(months(), []Aggregate{{ID: 2, Name: "Alquiler"}})
		g.SetCommitted(CellKey{Row: RowKey{ParentID: 2}, Column: 1}, 1500)

		assert.Equal(t, 1500.0, g.Total(2, 1))
	})

	t.Run("unknown parent totals zero", func(t *testing.T) {
		g := New(months(), nil)
		assert.Equal(t, 0.0, g.Total(99, 1))
	})
}

func TestGrid_GrandTotalAndNet(t *testing.T) {
	g := New(months(), []Aggregate{
		{ID: 1, Name: "Ventas", Kind: KindIncome},
		{ID: 2, Name: "Gastos", Kind: KindExpense},
	})
	g.SetCommitted(CellKey{Row: RowKey{ParentID: 1}, Column: 1}, 1000)
	g.SetCommitted(CellKey{Row: RowKey{ParentID: 2}, Column: 1}, 400)
	g.SetCommitted(CellKey{Row: RowKey{ParentID: 1}, Column: 2}, 500)

	assert.Equal(t, 1400.0, g.GrandTotal(1))
	assert.Equal(t, 600.0, g.Net(1))
	assert.Equal(t, 500.0, g.Net(2))
	assert.Equal(t, 600.0, g.Cumulative(1))
	assert.Equal(t, 1100.0, g.Cumulative(2))
	assert.Equal(t, 1100.0, g.Cumulative(12))
}

func TestGrid_MarkupTotal(t *testing.T) {
	g := New(months(), []Aggregate{
		{ID: 1, Name: "Servicios", Markup: 20, Rows: []Row{{ID: 10}}},
		{ID: 2, Name: "Sin recargo"},
	})
	g.SetCommitted(CellKey{Row: RowKey{ParentID: 1, ChildID: 10}, Column: 5}, 100)
	g.SetCommitted(CellKey{Row: RowKey{ParentID: 2}, Column: 5}, 100)

	assert.InDelta(t, 120.0, g.MarkupTotal(1, 5), 1e-9)
	// markup of zero falls through to the plain total
	assert.Equal(t, 100.0, g.MarkupTotal(2, 5))
}

func TestGrid_SetCommittedZeroRemovesCell(t *testing.T) {
	g := New(months(), []Aggregate{{ID: 1}})
	key := CellKey{Row: RowKey{ParentID: 1}, Column: 1}

	g.SetCommitted(key, 50)
	assert.True(t, g.Exists(key))

	g.SetCommitted(key, 0)
	assert.False(t, g.Exists(key))
	assert.Equal(t, 0.0, g.Value(key))
}

func TestGrid_Display(t *testing.T) {
	g := New(months(), []Aggregate{{ID: 1}})
	key := CellKey{Row: RowKey{ParentID: 1}, Column: 1}

	assert.Equal(t, "", g.Display(key))

	g.SetCommitted(key, 1234567.89)
	assert.Equal(t, "1.234.567.89", g.Display(key))

	g.overlay[key] = "1.234.5"
	assert.Equal(t, "1.234.5", g.Display(key))
}

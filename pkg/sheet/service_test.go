package sheet

import (
	"context"
	"testing"
	"time"

	"github.com/presu/presu/internal/event_bus"
	"github.com/presu/presu/internal/utils"
	"github.com/presu/presu/pkg/budget"
	"github.com/presu/presu/pkg/grid"
	"github.com/presu/presu/pkg/indexation"
	"github.com/presu/presu/pkg/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() context.Context {
	return tenant.WithTenant(context.Background(), tenant.Tenant{Id: 1, Name: "Test"})
}

func newBudgetService() *budget.ServiceImpl {
	rates := indexation.NewService(indexation.NewStubRepository())
	clock := &utils.MockClock{FixedNow: time.Unix(1735689600, 0)}
	return budget.NewService(budget.NewStubRepository(), rates, event_bus.NewEventBus(), clock)
}

func TestServiceImpl_ImportBudget(t *testing.T) {
	ctx := testContext()

	t.Run("creates categories, concepts and cells from a workbook", func(t *testing.T) {
		// given
		budgetService := newBudgetService()
		service := NewService(budgetService, NewExporterStub())
		r := workbook(t,
			[]interface{}{"Name", "Category", "1", "2"},
			[]interface{}{"Alquiler", "Gastos", 1000, 1100},
			[]interface{}{"Ventas local", "Ingresos", 5000, ""},
		)

		// when
		result, err := service.ImportBudget(ctx, 2025, r)

		// then
		require.NoError(t, err)
		assert.Equal(t, ImportResult{Categories: 2, Concepts: 2, Cells: 3}, result)

		data, err := budgetService.GetGrid(ctx, 2025)
		require.NoError(t, err)
		require.Len(t, data.Categories, 2)
		assert.InDelta(t, 6000, data.Grid.GrandTotal(1), 1e-9)
		assert.InDelta(t, 1100, data.Grid.GrandTotal(2), 1e-9)
	})

	t.Run("groups uncategorized rows under the default category", func(t *testing.T) {
		// given
		budgetService := newBudgetService()
		service := NewService(budgetService, NewExporterStub())
		r := workbook(t,
			[]interface{}{"Name", "1"},
			[]interface{}{"Alquiler", 1000},
			[]interface{}{"Servicios", 200},
		)

		// when
		result, err := service.ImportBudget(ctx, 2025, r)

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, result.Categories)
		data, err := budgetService.GetGrid(ctx, 2025)
		require.NoError(t, err)
		require.Len(t, data.Categories, 1)
		assert.Equal(t, "Importado", data.Categories[0].Name)
		assert.Len(t, data.Categories[0].Concepts, 2)
	})

	t.Run("rejects non month value columns", func(t *testing.T) {
		service := NewService(newBudgetService(), NewExporterStub())
		r := workbook(t,
			[]interface{}{"Name", "Total"},
			[]interface{}{"Alquiler", 1000},
		)

		_, err := service.ImportBudget(ctx, 2025, r)
		assert.ErrorIs(t, err, ErrNotMonthColumn)
	})
}

func TestServiceImpl_ExportBudget(t *testing.T) {
	ctx := testContext()

	seed := func(t *testing.T, budgetService *budget.ServiceImpl) (budget.Category, budget.Concept) {
		category, err := budgetService.CreateCategory(ctx, "Gastos")
		require.NoError(t, err)
		concept, err := budgetService.CreateConcept(ctx, budget.Concept{CategoryId: category.Id, Name: "Alquiler"})
		require.NoError(t, err)
		_, err = budgetService.EditCell(ctx, 2025, category.Id, concept.Id, 1, "1.000.50")
		require.NoError(t, err)
		return category, concept
	}

	t.Run("exports the grid as a workbook", func(t *testing.T) {
		// given
		budgetService := newBudgetService()
		seed(t, budgetService)
		service := NewService(budgetService, NewExporterStub())

		// when
		f, err := service.ExportBudget(ctx, 2025)

		// then
		require.NoError(t, err)
		defer f.Close()
		name, err := f.GetCellValue("Values", "A2")
		require.NoError(t, err)
		assert.Equal(t, "Alquiler", name)
		display, err := f.GetCellValue("Display", "C2")
		require.NoError(t, err)
		assert.Equal(t, "1.000.50", display)
	})

	t.Run("appends the grid rows to a Google spreadsheet", func(t *testing.T) {
		// given
		budgetService := newBudgetService()
		category, concept := seed(t, budgetService)
		exporter := NewExporterStub()
		service := NewService(budgetService, exporter)

		// when
		err := service.ExportBudgetToGoogle(ctx, 2025, "spreadsheet-1")

		// then
		require.NoError(t, err)
		appended := exporter.Appended("spreadsheet-1")
		require.Len(t, appended, 1)
		require.Len(t, appended[0].Rows, 1)
		assert.Equal(t, "Alquiler", appended[0].Rows[0].Name)

		data, err := budgetService.GetGrid(ctx, 2025)
		require.NoError(t, err)
		key := grid.CellKey{Row: grid.RowKey{ParentID: category.Id, ChildID: concept.Id}, Column: 1}
		assert.InDelta(t, 1000.50, appended[0].Rows[0].Values[0], 1e-9)
		assert.InDelta(t, 1000.50, data.Grid.Value(key), 1e-9)
	})
}

package sheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/presu/presu/pkg/budget"
	"github.com/presu/presu/pkg/grid"
	"github.com/presu/presu/pkg/moneyfmt"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

var ErrNotMonthColumn = errors.New("value column headers must be month numbers between 1 and 12")

const defaultCategoryName = "Importado"

// BudgetService is the slice of the budget service the importer and exporter
// need.
type BudgetService interface {
	CreateCategory(ctx context.Context, name string) (budget.Category, error)
	CreateConcept(ctx context.Context, c budget.Concept) (budget.Concept, error)
	EditCell(ctx context.Context, year int, categoryId, conceptId int64, month int, rawText string) (*budget.GridData, error)
	GetGrid(ctx context.Context, year int) (*budget.GridData, error)
}

// ImportResult summarizes one workbook import.
type ImportResult struct {
	Categories int `json:"categories"`
	Concepts   int `json:"concepts"`
	Cells      int `json:"cells"`
	Skipped    int `json:"skipped"`
}

type Service interface {
	// ImportBudget loads a workbook into the budget of a year: one concept
	// per row, grouped into categories by the optional Category column.
	ImportBudget(ctx context.Context, year int, r io.Reader) (ImportResult, error)
	ExportBudget(ctx context.Context, year int) (*excelize.File, error)
	ExportBudgetToGoogle(ctx context.Context, year int, spreadsheetId string) error
}

type ServiceImpl struct {
	budget   BudgetService
	exporter Exporter
}

func NewService(budgetService BudgetService, exporter Exporter) *ServiceImpl {
	return &ServiceImpl{budget: budgetService, exporter: exporter}
}

func (s *ServiceImpl) ImportBudget(ctx context.Context, year int, r io.Reader) (ImportResult, error) {
	table, err := ParseWorkbook(r)
	if err != nil {
		return ImportResult{}, err
	}
	months, err := monthColumns(table.Columns)
	if err != nil {
		return ImportResult{}, err
	}

	result := ImportResult{Skipped: table.Skipped}
	categories := make(map[string]budget.Category)
	for _, row := range table.Rows {
		categoryName := row.Category
		if categoryName == "" {
			categoryName = defaultCategoryName
		}
		category, ok := categories[categoryName]
		if !ok {
			category, err = s.budget.CreateCategory(ctx, categoryName)
			if err != nil {
				return result, fmt.Errorf("could not create category %q: %w", categoryName, err)
			}
			categories[categoryName] = category
			result.Categories++
		}

		concept, err := s.budget.CreateConcept(ctx, budget.Concept{CategoryId: category.Id, Name: row.Name})
		if err != nil {
			return result, fmt.Errorf("could not create concept %q: %w", row.Name, err)
		}
		result.Concepts++

		for i, value := range row.Values {
			if value == 0 {
				continue
			}
			if _, err := s.budget.EditCell(ctx, year, category.Id, concept.Id, months[i], moneyfmt.FormatForDisplay(value)); err != nil {
				log.Errorf("could not import cell %s/%d: %v", row.Name, months[i], err)
				result.Skipped++
				continue
			}
			result.Cells++
		}
	}
	return result, nil
}

func (s *ServiceImpl) ExportBudget(ctx context.Context, year int) (*excelize.File, error) {
	table, err := s.budgetTable(ctx, year)
	if err != nil {
		return nil, err
	}
	return Export(table)
}

func (s *ServiceImpl) ExportBudgetToGoogle(ctx context.Context, year int, spreadsheetId string) error {
	table, err := s.budgetTable(ctx, year)
	if err != nil {
		return err
	}
	return s.exporter.AppendTable(ctx, spreadsheetId, table)
}

func (s *ServiceImpl) budgetTable(ctx context.Context, year int) (Table, error) {
	data, err := s.budget.GetGrid(ctx, year)
	if err != nil {
		return Table{}, err
	}

	table := Table{}
	for _, month := range data.Grid.Columns() {
		table.Columns = append(table.Columns, strconv.Itoa(month))
	}
	for _, category := range data.Categories {
		for _, concept := range category.Concepts {
			row := Row{Name: concept.Name, Category: category.Name}
			for _, month := range data.Grid.Columns() {
				key := grid.CellKey{Row: grid.RowKey{ParentID: category.Id, ChildID: concept.Id}, Column: month}
				row.Values = append(row.Values, data.Grid.Value(key))
			}
			table.Rows = append(table.Rows, row)
		}
		if len(category.Concepts) == 0 {
			row := Row{Name: category.Name, Category: category.Name}
			for _, month := range data.Grid.Columns() {
				key := grid.CellKey{Row: grid.RowKey{ParentID: category.Id}, Column: month}
				row.Values = append(row.Values, data.Grid.Value(key))
			}
			table.Rows = append(table.Rows, row)
		}
	}
	return table, nil
}

func monthColumns(columns []string) ([]int, error) {
	months := make([]int, 0, len(columns))
	for _, col := range columns {
		month, err := strconv.Atoi(col)
		if err != nil || month < 1 || month > 12 {
			return nil, ErrNotMonthColumn
		}
		months = append(months, month)
	}
	return months, nil
}

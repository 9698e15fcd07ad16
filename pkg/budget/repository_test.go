package budget

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/presu/presu/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var db *pgxpool.Pool

func TestMain(m *testing.M) {
	container, open := test_utils.TestWithDB()
	db = open()
	code := m.Run()
	db.Close()
	_ = container.Terminate(context.Background())
	os.Exit(code)
}

// setupTestRepository creates a fresh tenant so each test works on isolated rows.
func setupTestRepository(t *testing.T) (context.Context, Repository, int) {
	ctx := context.Background()
	repository := NewRepository(db)
	var tenantId int
	err := db.QueryRow(ctx,
		`INSERT INTO tenant (uid, name, currency, billable_users) VALUES ($1, $2, 'ARS', 1) RETURNING id`,
		uuid.NewString(), "Test Tenant",
	).Scan(&tenantId)
	require.NoError(t, err)
	return ctx, repository, tenantId
}

func TestRepositoryImpl_StoreCategory(t *testing.T) {
	// given
	ctx, repo, tenantId := setupTestRepository(t)

	// when
	id, err := repo.StoreCategory(ctx, tenantId, Category{Name: "Ventas", Position: 100})
	assert.NoError(t, err)

	// then
	categories, err := repo.ListCategories(ctx, tenantId)
	assert.NoError(t, err)
	assert.Len(t, categories, 1)
	assert.Equal(t, id, categories[0].Id)
	assert.Equal(t, "Ventas", categories[0].Name)
	assert.Equal(t, 100, categories[0].Position)
}

func TestRepositoryImpl_StoreCategory_ShouldRejectDuplicateName(t *testing.T) {
	// given
	ctx, repo, tenantId := setupTestRepository(t)
	_, err := repo.StoreCategory(ctx, tenantId, Category{Name: "Ventas", Position: 100})
	require.NoError(t, err)

	// when
	_, err = repo.StoreCategory(ctx, tenantId, Category{Name: "Ventas", Position: 200})

	// then
	assert.Error(t, err)
	assert.True(t, isUniqueViolation(err))
}

func TestRepositoryImpl_ListCategories_ShouldAttachConcepts(t *testing.T) {
	// given
	ctx, repo, tenantId := setupTestRepository(t)
	categoryId, err := repo.StoreCategory(ctx, tenantId, Category{Name: "Gastos", Position: 100})
	require.NoError(t, err)
	conceptId, err := repo.StoreConcept(ctx, tenantId, Concept{
		CategoryId:       categoryId,
		Name:             "Alquiler",
		BaseValue:        1000,
		FirstActiveMonth: 1,
		ActiveMonths:     []int{1, 2, 3},
		Indexed:          true,
	})
	require.NoError(t, err)

	// when
	categories, err := repo.ListCategories(ctx, tenantId)

	// then
	assert.NoError(t, err)
	require.Len(t, categories, 1)
	require.Len(t, categories[0].Concepts, 1)
	concept := categories[0].Concepts[0]
	assert.Equal(t, conceptId, concept.Id)
	assert.Equal(t, "Alquiler", concept.Name)
	assert.Equal(t, 1000.0, concept.BaseValue)
	assert.Equal(t, 1, concept.FirstActiveMonth)
	assert.Equal(t, []int{1, 2, 3}, concept.ActiveMonths)
	assert.True(t, concept.Indexed)
}

func TestRepositoryImpl_ListCategories_ShouldIsolateTenants(t *testing.T) {
	// given
	ctx, repo, tenantId := setupTestRepository(t)
	_, otherRepo, otherTenantId := setupTestRepository(t)
	_, err := repo.StoreCategory(ctx, tenantId, Category{Name: "Ventas", Position: 100})
	require.NoError(t, err)

	// when
	categories, err := otherRepo.ListCategories(ctx, otherTenantId)

	// then
	assert.NoError(t, err)
	assert.Empty(t, categories)
}

func TestRepositoryImpl_UpdateConceptBase(t *testing.T) {
	// given
	ctx, repo, tenantId := setupTestRepository(t)
	categoryId, err := repo.StoreCategory(ctx, tenantId, Category{Name: "Gastos", Position: 100})
	require.NoError(t, err)
	conceptId, err := repo.StoreConcept(ctx, tenantId, Concept{CategoryId: categoryId, Name: "Luz", BaseValue: 500})
	require.NoError(t, err)

	// when
	ok, err := repo.UpdateConceptBase(ctx, tenantId, conceptId, 750)

	// then
	assert.NoError(t, err)
	assert.True(t, ok)
	concept, err := repo.GetConcept(ctx, tenantId, conceptId)
	assert.NoError(t, err)
	assert.Equal(t, 750.0, concept.BaseValue)
}

func TestRepositoryImpl_GetConcept_ShouldReturnNotFound(t *testing.T) {
	// given
	ctx, repo, tenantId := setupTestRepository(t)

	// when
	_, err := repo.GetConcept(ctx, tenantId, 999)

	// then
	assert.ErrorIs(t, err, ErrConceptNotFound)
}

func TestRepositoryImpl_UpsertValue(t *testing.T) {
	// given
	ctx, repo, tenantId := setupTestRepository(t)
	categoryId, err := repo.StoreCategory(ctx, tenantId, Category{Name: "Gastos", Position: 100})
	require.NoError(t, err)
	conceptId, err := repo.StoreConcept(ctx, tenantId, Concept{CategoryId: categoryId, Name: "Luz"})
	require.NoError(t, err)
	key := ValueKey{CategoryId: categoryId, ConceptId: conceptId, Month: 3}

	// when inserting and then overwriting the same cell
	require.NoError(t, repo.UpsertValue(ctx, tenantId, 2026, key, 100))
	require.NoError(t, repo.UpsertValue(ctx, tenantId, 2026, key, 250))

	// then a single row remains with the latest value
	values, err := repo.GetValues(ctx, tenantId, 2026)
	assert.NoError(t, err)
	assert.Len(t, values, 1)
	assert.Equal(t, 250.0, values[key])
}

func TestRepositoryImpl_UpsertValue_CategoryOwnedCell(t *testing.T) {
	// given a category with no concepts, addressed with the 0 sentinel
	ctx, repo, tenantId := setupTestRepository(t)
	categoryId, err := repo.StoreCategory(ctx, tenantId, Category{Name: "Varios", Position: 100})
	require.NoError(t, err)
	key := ValueKey{CategoryId: categoryId, ConceptId: 0, Month: 5}

	// when
	require.NoError(t, repo.UpsertValue(ctx, tenantId, 2026, key, 80))
	require.NoError(t, repo.UpsertValue(ctx, tenantId, 2026, key, 90))

	// then the sentinel round-trips and the upsert hit the same row
	values, err := repo.GetValues(ctx, tenantId, 2026)
	assert.NoError(t, err)
	assert.Len(t, values, 1)
	assert.Equal(t, 90.0, values[key])

	// and delete resolves the sentinel too
	ok, err := repo.DeleteValue(ctx, tenantId, 2026, key)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestRepositoryImpl_DeleteValue_ShouldReportMissingRow(t *testing.T) {
	// given
	ctx, repo, tenantId := setupTestRepository(t)
	categoryId, err := repo.StoreCategory(ctx, tenantId, Category{Name: "Gastos", Position: 100})
	require.NoError(t, err)

	// when
	ok, err := repo.DeleteValue(ctx, tenantId, 2026, ValueKey{CategoryId: categoryId, Month: 1})

	// then
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRepositoryImpl_DeleteCategory_ShouldCascadeValues(t *testing.T) {
	// given
	ctx, repo, tenantId := setupTestRepository(t)
	categoryId, err := repo.StoreCategory(ctx, tenantId, Category{Name: "Gastos", Position: 100})
	require.NoError(t, err)
	key := ValueKey{CategoryId: categoryId, Month: 1}
	require.NoError(t, repo.UpsertValue(ctx, tenantId, 2026, key, 100))

	// when
	ok, err := repo.DeleteCategory(ctx, tenantId, categoryId)

	// then
	assert.NoError(t, err)
	assert.True(t, ok)
	values, err := repo.GetValues(ctx, tenantId, 2026)
	assert.NoError(t, err)
	assert.Empty(t, values)
}

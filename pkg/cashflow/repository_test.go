package cashflow

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

func TestRepositoryImpl_StoreSection(t *testing.T) {
	// given
	ctx, repo, tenantId := setupTestRepository(t)

	// when
	id, err := repo.StoreSection(ctx, tenantId, Section{Name: "Ingresos", Kind: KindIncome, Markup: 20, Position: 100})
	assert.NoError(t, err)

	// then
	sections, err := repo.ListSections(ctx, tenantId)
	assert.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, id, sections[0].Id)
	assert.Equal(t, KindIncome, sections[0].Kind)
	assert.Equal(t, 20.0, sections[0].Markup)
}

func TestRepositoryImpl_ListSections_ShouldAttachItems(t *testing.T) {
	// given
	ctx, repo, tenantId := setupTestRepository(t)
	sectionId, err := repo.StoreSection(ctx, tenantId, Section{Name: "Egresos", Kind: KindExpense, Position: 100})
	require.NoError(t, err)
	itemId, err := repo.StoreItem(ctx, tenantId, Item{SectionId: sectionId, Name: "Sueldos"})
	require.NoError(t, err)

	// when
	sections, err := repo.ListSections(ctx, tenantId)

	// then
	assert.NoError(t, err)
	require.Len(t, sections, 1)
	require.Len(t, sections[0].Items, 1)
	assert.Equal(t, itemId, sections[0].Items[0].Id)
	assert.Equal(t, "Sueldos", sections[0].Items[0].Name)
}

func TestRepositoryImpl_StoreItem_ShouldRejectUnknownSection(t *testing.T) {
	// given
	ctx, repo, tenantId := setupTestRepository(t)

	// when
	_, err := repo.StoreItem(ctx, tenantId, Item{SectionId: 999, Name: "Sueldos"})

	// then
	assert.ErrorIs(t, err, ErrSectionNotFound)
}

func TestRepositoryImpl_UpsertEntry(t *testing.T) {
	// given
	ctx, repo, tenantId := setupTestRepository(t)
	sectionId, err := repo.StoreSection(ctx, tenantId, Section{Name: "Egresos", Kind: KindExpense, Position: 100})
	require.NoError(t, err)
	itemId, err := repo.StoreItem(ctx, tenantId, Item{SectionId: sectionId, Name: "Sueldos"})
	require.NoError(t, err)
	key := EntryKey{SectionId: sectionId, ItemId: itemId, Month: 2}

	// when inserting and then overwriting the same cell
	require.NoError(t, repo.UpsertEntry(ctx, tenantId, 2026, key, 100))
	require.NoError(t, repo.UpsertEntry(ctx, tenantId, 2026, key, 300))

	// then a single row remains with the latest value
	entries, err := repo.GetEntries(ctx, tenantId, 2026)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 300.0, entries[key])
}

func TestRepositoryImpl_UpsertEntry_SectionOwnedCell(t *testing.T) {
	// given a section with no items, addressed with the 0 sentinel
	ctx, repo, tenantId := setupTestRepository(t)
	sectionId, err := repo.StoreSection(ctx, tenantId, Section{Name: "Varios", Kind: KindIncome, Position: 100})
	require.NoError(t, err)
	key := EntryKey{SectionId: sectionId, ItemId: 0, Month: 7}

	// when
	require.NoError(t, repo.UpsertEntry(ctx, tenantId, 2026, key, 50))
	require.NoError(t, repo.UpsertEntry(ctx, tenantId, 2026, key, 75))

	// then
	entries, err := repo.GetEntries(ctx, tenantId, 2026)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 75.0, entries[key])

	ok, err := repo.DeleteEntry(ctx, tenantId, 2026, key)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestRepositoryImpl_DeleteSection_ShouldCascadeItemsAndEntries(t *testing.T) {
	// given
	ctx, repo, tenantId := setupTestRepository(t)
	sectionId, err := repo.StoreSection(ctx, tenantId, Section{Name: "Egresos", Kind: KindExpense, Position: 100})
	require.NoError(t, err)
	itemId, err := repo.StoreItem(ctx, tenantId, Item{SectionId: sectionId, Name: "Sueldos"})
	require.NoError(t, err)
	require.NoError(t, repo.UpsertEntry(ctx, tenantId, 2026, EntryKey{SectionId: sectionId, ItemId: itemId, Month: 1}, 100))

	// when
	ok, err := repo.DeleteSection(ctx, tenantId, sectionId)

	// then
	assert.NoError(t, err)
	assert.True(t, ok)
	sections, err := repo.ListSections(ctx, tenantId)
	assert.NoError(t, err)
	assert.Empty(t, sections)
	entries, err := repo.GetEntries(ctx, tenantId, 2026)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

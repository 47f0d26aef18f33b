package store

import (
	"context"
	"testing"

	"inventory-nlu/internal/common/logger"
	"inventory-nlu/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allColumns = []string{
	"id", "name", "quantity", "price", "location", "description", "category",
	"tags", "purchase_date", "is_gift", "storage_location", "usage_location",
	"needs_repair",
}

func newItemStore(t *testing.T) (*ItemStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, logger.NewTestLogger(t)), mock
}

func itemRow(id int64, name string, price interface{}) *sqlmock.Rows {
	return sqlmock.NewRows(allColumns).
		AddRow(id, name, 1, price, "garage", "", "tools", "", nil, false, "", "", false)
}

// ==========================
// Search
// ==========================

func TestSearch_NoFiltersSelectsEverything(t *testing.T) {
	s, mock := newItemStore(t)

	mock.ExpectQuery(`SELECT ` + itemColumns + ` FROM items ORDER BY name`).
		WillReturnRows(itemRow(1, "hammer", 12.5))

	items, err := s.Search(context.Background(), models.FilterSet{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "hammer", items[0].Name)
	require.NotNil(t, items[0].Price)
	assert.Equal(t, 12.5, *items[0].Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_AppliesAllFilterColumns(t *testing.T) {
	s, mock := newItemStore(t)

	mock.ExpectQuery(`SELECT `+itemColumns+` FROM items WHERE location LIKE $1 AND category LIKE $2 AND tags LIKE $3 AND purchase_date = $4 AND needs_repair = TRUE ORDER BY name`).
		WithArgs("%garage%", "%tools%", "%vintage%", "2024-01-15").
		WillReturnRows(sqlmock.NewRows(allColumns))

	items, err := s.Search(context.Background(), models.FilterSet{
		models.FilterLocation:     "garage",
		models.FilterCategory:     "tools",
		models.FilterTags:         "vintage",
		models.FilterPurchaseDate: "2024-01-15",
		models.FilterNeedsRepair:  true,
	})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_NullableColumnsScanCleanly(t *testing.T) {
	s, mock := newItemStore(t)

	rows := sqlmock.NewRows(allColumns).
		AddRow(7, "mystery box", 3, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil)
	mock.ExpectQuery(`SELECT ` + itemColumns + ` FROM items ORDER BY name`).
		WillReturnRows(rows)

	items, err := s.Search(context.Background(), models.FilterSet{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].Price)
	assert.Empty(t, items[0].Location)
	assert.False(t, items[0].NeedsRepair)
}

func TestSearch_QueryErrorIsWrapped(t *testing.T) {
	s, mock := newItemStore(t)

	mock.ExpectQuery(`SELECT ` + itemColumns + ` FROM items ORDER BY name`).
		WillReturnError(assert.AnError)

	_, err := s.Search(context.Background(), models.FilterSet{})
	assert.ErrorContains(t, err, "item query")
}

// ==========================
// Count
// ==========================

func TestCount_WithAndWithoutFilters(t *testing.T) {
	s, mock := newItemStore(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT COUNT(*) FROM items`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
	total, err := s.Count(ctx, models.FilterSet{})
	require.NoError(t, err)
	assert.Equal(t, int64(42), total)

	mock.ExpectQuery(`SELECT COUNT(*) FROM items WHERE location LIKE $1`).
		WithArgs("%kitchen%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	narrowed, err := s.Count(ctx, models.FilterSet{models.FilterLocation: "kitchen"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), narrowed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// TotalValue
// ==========================

func TestTotalValue_SumsPriceTimesQuantity(t *testing.T) {
	s, mock := newItemStore(t)

	mock.ExpectQuery(`SELECT COALESCE(SUM(price * quantity), 0) FROM items WHERE price IS NOT NULL AND category LIKE $1`).
		WithArgs("%tools%").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(137.75))

	total, err := s.TotalValue(context.Background(), models.FilterSet{models.FilterCategory: "tools"})
	require.NoError(t, err)
	assert.Equal(t, 137.75, total)
}

func TestTotalValue_NoPricedItemsIsZero(t *testing.T) {
	s, mock := newItemStore(t)

	mock.ExpectQuery(`SELECT COALESCE(SUM(price * quantity), 0) FROM items WHERE price IS NOT NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(0))

	total, err := s.TotalValue(context.Background(), models.FilterSet{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

// ==========================
// PriceRange
// ==========================

func TestPriceRange_MoreOrdersDescending(t *testing.T) {
	s, mock := newItemStore(t)

	rows := sqlmock.NewRows(allColumns).
		AddRow(1, "drill", 1, 120.0, "garage", "", "tools", "", nil, false, "", "", false).
		AddRow(2, "saw", 1, 80.0, "garage", "", "tools", "", nil, false, "", "", false)
	mock.ExpectQuery(`SELECT ` + itemColumns + ` FROM items WHERE price > $1 ORDER BY price DESC`).
		WithArgs(50.0).
		WillReturnRows(rows)

	items, err := s.PriceRange(context.Background(), CompareMore, 50)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "drill", items[0].Name)
	assert.Equal(t, "saw", items[1].Name)
}

func TestPriceRange_LessOrdersAscending(t *testing.T) {
	s, mock := newItemStore(t)

	mock.ExpectQuery(`SELECT ` + itemColumns + ` FROM items WHERE price < $1 ORDER BY price ASC`).
		WithArgs(20.0).
		WillReturnRows(sqlmock.NewRows(allColumns))

	items, err := s.PriceRange(context.Background(), CompareLess, 20)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPriceRange_UnknownComparisonDefaultsToMore(t *testing.T) {
	s, mock := newItemStore(t)

	mock.ExpectQuery(`SELECT ` + itemColumns + ` FROM items WHERE price > $1 ORDER BY price DESC`).
		WithArgs(10.0).
		WillReturnRows(sqlmock.NewRows(allColumns))

	_, err := s.PriceRange(context.Background(), "sideways", 10)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// NeedsRepair
// ==========================

func TestNeedsRepair_IncludesRepairHistory(t *testing.T) {
	s, mock := newItemStore(t)

	mock.ExpectQuery(`SELECT ` + itemColumns + ` FROM items WHERE (needs_repair = TRUE OR EXISTS (SELECT 1 FROM repairs r WHERE r.item_id = items.id)) ORDER BY name`).
		WillReturnRows(itemRow(4, "lawnmower", nil))

	items, err := s.NeedsRepair(context.Background(), models.FilterSet{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "lawnmower", items[0].Name)
}

func TestNeedsRepair_NarrowsByLocationAndCategory(t *testing.T) {
	s, mock := newItemStore(t)

	mock.ExpectQuery(`SELECT `+itemColumns+` FROM items WHERE (needs_repair = TRUE OR EXISTS (SELECT 1 FROM repairs r WHERE r.item_id = items.id)) AND location LIKE $1 AND category LIKE $2 ORDER BY name`).
		WithArgs("%shed%", "%garden%").
		WillReturnRows(sqlmock.NewRows(allColumns))

	_, err := s.NeedsRepair(context.Background(), models.FilterSet{
		models.FilterLocation: "shed",
		models.FilterCategory: "garden",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// PurchaseHistory
// ==========================

func TestPurchaseHistory_NewestFirst(t *testing.T) {
	s, mock := newItemStore(t)

	rows := sqlmock.NewRows(allColumns).
		AddRow(1, "tv", 1, 600.0, "living room", "", "electronics", "", "2024-06-01", false, "", "", false).
		AddRow(2, "couch", 1, 900.0, "living room", "", "furniture", "", "2023-11-20", false, "", "", false)
	mock.ExpectQuery(`SELECT ` + itemColumns + ` FROM items WHERE purchase_date IS NOT NULL ORDER BY purchase_date DESC`).
		WillReturnRows(rows)

	items, err := s.PurchaseHistory(context.Background(), models.FilterSet{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "2024-06-01", items[0].PurchaseDate)
}

func TestPurchaseHistory_NarrowsByTimePeriod(t *testing.T) {
	s, mock := newItemStore(t)

	mock.ExpectQuery(`SELECT `+itemColumns+` FROM items WHERE purchase_date IS NOT NULL AND purchase_date LIKE $1 ORDER BY purchase_date DESC`).
		WithArgs("%2024%").
		WillReturnRows(sqlmock.NewRows(allColumns))

	_, err := s.PurchaseHistory(context.Background(), models.FilterSet{
		models.FilterTimePeriod: "2024",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package dispatch

import (
	"context"
	"sort"
	"testing"

	"inventory-nlu/internal/common/logger"
	"inventory-nlu/internal/models"
	"inventory-nlu/internal/nlu/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInventory answers from an in-memory item slice and records the last
// call so tests can assert what the dispatcher asked for.
type fakeInventory struct {
	items []models.Item
	err   error

	lastComparison string
	lastPrice      float64
	lastFilters    models.FilterSet
}

func priced(name string, price float64) models.Item {
	return models.Item{Name: name, Quantity: 1, Price: &price}
}

func (f *fakeInventory) Search(_ context.Context, filters models.FilterSet) ([]models.Item, error) {
	f.lastFilters = filters
	return f.items, f.err
}

func (f *fakeInventory) Count(_ context.Context, filters models.FilterSet) (int64, error) {
	f.lastFilters = filters
	return int64(len(f.items)), f.err
}

func (f *fakeInventory) TotalValue(_ context.Context, filters models.FilterSet) (float64, error) {
	f.lastFilters = filters
	var total float64
	for _, item := range f.items {
		if item.Price != nil {
			total += *item.Price * float64(item.Quantity)
		}
	}
	return total, f.err
}

func (f *fakeInventory) PriceRange(_ context.Context, comparison string, price float64) ([]models.Item, error) {
	f.lastComparison = comparison
	f.lastPrice = price
	if f.err != nil {
		return nil, f.err
	}
	matched := []models.Item{}
	for _, item := range f.items {
		if item.Price == nil {
			continue
		}
		if comparison == store.CompareLess && *item.Price < price {
			matched = append(matched, item)
		}
		if comparison != store.CompareLess && *item.Price > price {
			matched = append(matched, item)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if comparison == store.CompareLess {
			return *matched[i].Price < *matched[j].Price
		}
		return *matched[i].Price > *matched[j].Price
	})
	return matched, nil
}

func (f *fakeInventory) NeedsRepair(_ context.Context, filters models.FilterSet) ([]models.Item, error) {
	f.lastFilters = filters
	return f.items, f.err
}

func (f *fakeInventory) PurchaseHistory(_ context.Context, filters models.FilterSet) ([]models.Item, error) {
	f.lastFilters = filters
	return f.items, f.err
}

func newDispatcher(t *testing.T, inv *fakeInventory) *Dispatcher {
	t.Helper()
	return New(inv, logger.NewTestLogger(t))
}

// ==========================
// Per-Intent Payloads
// ==========================

func TestDispatch_SearchReturnsItems(t *testing.T) {
	inv := &fakeInventory{items: []models.Item{priced("hammer", 12.5)}}
	d := newDispatcher(t, inv)

	result := d.Dispatch(context.Background(), models.IntentSearch, models.FilterSet{
		models.FilterLocation: "garage",
	})

	require.False(t, result.Failed())
	assert.Equal(t, models.IntentSearch, result.Intent)
	require.Len(t, result.Items, 1)
	assert.Empty(t, result.Message)
	assert.Equal(t, "garage", inv.lastFilters[models.FilterLocation])
}

func TestDispatch_SearchEmptyIsWellFormed(t *testing.T) {
	d := newDispatcher(t, &fakeInventory{items: []models.Item{}})

	result := d.Dispatch(context.Background(), models.IntentSearch, models.FilterSet{})

	require.False(t, result.Failed())
	assert.NotNil(t, result.Items)
	assert.Empty(t, result.Items)
	assert.Equal(t, "No items found.", result.Message)
}

func TestDispatch_CountMessage(t *testing.T) {
	inv := &fakeInventory{items: []models.Item{priced("a", 1), priced("b", 2), priced("c", 3)}}
	d := newDispatcher(t, inv)

	result := d.Dispatch(context.Background(), models.IntentCount, models.FilterSet{})

	require.False(t, result.Failed())
	require.NotNil(t, result.Count)
	assert.Equal(t, int64(3), *result.Count)
	assert.Equal(t, "You have 3 matching items.", result.Message)
}

func TestDispatch_ValueMessage(t *testing.T) {
	inv := &fakeInventory{items: []models.Item{priced("drill", 120), priced("saw", 17.75)}}
	d := newDispatcher(t, inv)

	result := d.Dispatch(context.Background(), models.IntentValue, models.FilterSet{})

	require.False(t, result.Failed())
	require.NotNil(t, result.Total)
	assert.Equal(t, 137.75, *result.Total)
	assert.Equal(t, "The total value is $137.75", result.Message)
}

func TestDispatch_ValueZeroIsAnAnswer(t *testing.T) {
	d := newDispatcher(t, &fakeInventory{})

	result := d.Dispatch(context.Background(), models.IntentValue, models.FilterSet{})

	require.False(t, result.Failed())
	require.NotNil(t, result.Total)
	assert.Zero(t, *result.Total)
	assert.Equal(t, "The total value is $0.00", result.Message)
}

func TestDispatch_PriceRangeMoreThan(t *testing.T) {
	inv := &fakeInventory{items: []models.Item{priced("cheap", 10), priced("mid", 60), priced("dear", 100)}}
	d := newDispatcher(t, inv)

	result := d.Dispatch(context.Background(), models.IntentPriceRange, models.FilterSet{
		models.FilterComparison: "more",
		models.FilterPrice:      50.0,
	})

	require.False(t, result.Failed())
	require.Len(t, result.Items, 2)
	assert.Equal(t, "dear", result.Items[0].Name)
	assert.Equal(t, "mid", result.Items[1].Name)
}

func TestDispatch_PriceRangeDefaultsToMore(t *testing.T) {
	inv := &fakeInventory{}
	d := newDispatcher(t, inv)

	d.Dispatch(context.Background(), models.IntentPriceRange, models.FilterSet{
		models.FilterPrice: 25.0,
	})

	assert.Equal(t, store.CompareMore, inv.lastComparison)
	assert.Equal(t, 25.0, inv.lastPrice)
}

func TestDispatch_PriceRangeStringPriceIsParsed(t *testing.T) {
	inv := &fakeInventory{}
	d := newDispatcher(t, inv)

	d.Dispatch(context.Background(), models.IntentPriceRange, models.FilterSet{
		models.FilterComparison: "less",
		models.FilterPrice:      "42.50",
	})

	assert.Equal(t, "less", inv.lastComparison)
	assert.Equal(t, 42.5, inv.lastPrice)
}

func TestDispatch_PriceRangeUnparseablePriceIsZero(t *testing.T) {
	inv := &fakeInventory{}
	d := newDispatcher(t, inv)

	result := d.Dispatch(context.Background(), models.IntentPriceRange, models.FilterSet{
		models.FilterPrice: "a lot",
	})

	assert.Zero(t, inv.lastPrice)
	assert.Equal(t, "No items found more than $0.00", result.Message)
}

func TestDispatch_PriceRangeEmptyMessageNamesComparison(t *testing.T) {
	d := newDispatcher(t, &fakeInventory{})

	result := d.Dispatch(context.Background(), models.IntentPriceRange, models.FilterSet{
		models.FilterComparison: "less",
		models.FilterPrice:      5.0,
	})

	assert.Equal(t, "No items found less than $5.00", result.Message)
}

func TestDispatch_RepairEmpty(t *testing.T) {
	d := newDispatcher(t, &fakeInventory{items: []models.Item{}})

	result := d.Dispatch(context.Background(), models.IntentRepair, models.FilterSet{})

	require.False(t, result.Failed())
	assert.Equal(t, "No items needing repair found.", result.Message)
}

func TestDispatch_PurchaseHistoryEmpty(t *testing.T) {
	d := newDispatcher(t, &fakeInventory{items: []models.Item{}})

	result := d.Dispatch(context.Background(), models.IntentPurchaseHistory, models.FilterSet{})

	require.False(t, result.Failed())
	assert.Equal(t, "No purchase history found.", result.Message)
}

func TestDispatch_UnknownIntent(t *testing.T) {
	d := newDispatcher(t, &fakeInventory{})

	result := d.Dispatch(context.Background(), models.IntentUnknown, models.FilterSet{})

	require.False(t, result.Failed())
	assert.Equal(t, "I'm not sure how to handle that.", result.Message)
	assert.Empty(t, result.Items)
	assert.Nil(t, result.Count)
	assert.Nil(t, result.Total)
}

// ==========================
// Store Failures
// ==========================

func TestDispatch_StoreErrorsBecomeResultErrors(t *testing.T) {
	intents := []models.Intent{
		models.IntentSearch,
		models.IntentCount,
		models.IntentValue,
		models.IntentPriceRange,
		models.IntentRepair,
		models.IntentPurchaseHistory,
	}

	for _, intent := range intents {
		t.Run(string(intent), func(t *testing.T) {
			d := newDispatcher(t, &fakeInventory{err: assert.AnError})

			result := d.Dispatch(context.Background(), intent, models.FilterSet{})

			require.True(t, result.Failed())
			assert.Contains(t, result.Error, "database error:")
			assert.Equal(t, intent, result.Intent)
		})
	}
}

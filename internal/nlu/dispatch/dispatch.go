// Package dispatch routes a classified intent plus its effective filters to
// the inventory query that answers it and shapes the response payload.
package dispatch

import (
	"context"
	"fmt"

	"inventory-nlu/internal/common/logger"
	"inventory-nlu/internal/common/metrics"
	"inventory-nlu/internal/models"
	"inventory-nlu/internal/nlu/store"
)

// Inventory is the query surface the dispatcher needs; *store.ItemStore
// satisfies it.
type Inventory interface {
	Search(ctx context.Context, filters models.FilterSet) ([]models.Item, error)
	Count(ctx context.Context, filters models.FilterSet) (int64, error)
	TotalValue(ctx context.Context, filters models.FilterSet) (float64, error)
	PriceRange(ctx context.Context, comparison string, price float64) ([]models.Item, error)
	NeedsRepair(ctx context.Context, filters models.FilterSet) ([]models.Item, error)
	PurchaseHistory(ctx context.Context, filters models.FilterSet) ([]models.Item, error)
}

const unknownIntentMessage = "I'm not sure how to handle that."

type Dispatcher struct {
	inventory Inventory
	logger    logger.Logger
}

func New(inventory Inventory, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Dispatcher{inventory: inventory, logger: log}
}

// Dispatch answers a classified query. Every intent in the enum has an arm;
// a store failure produces a result carrying the error, never a panic or a
// half-filled payload.
func (d *Dispatcher) Dispatch(ctx context.Context, intent models.Intent, filters models.FilterSet) *models.QueryResult {
	result := &models.QueryResult{Intent: intent}

	switch intent {
	case models.IntentSearch:
		d.handleSearch(ctx, result, filters)
	case models.IntentCount:
		d.handleCount(ctx, result, filters)
	case models.IntentValue:
		d.handleValue(ctx, result, filters)
	case models.IntentPriceRange:
		d.handlePriceRange(ctx, result, filters)
	case models.IntentRepair:
		d.handleRepair(ctx, result, filters)
	case models.IntentPurchaseHistory:
		d.handlePurchaseHistory(ctx, result, filters)
	default:
		result.Message = unknownIntentMessage
	}

	return result
}

func (d *Dispatcher) handleSearch(ctx context.Context, result *models.QueryResult, filters models.FilterSet) {
	items, err := d.inventory.Search(ctx, filters)
	if err != nil {
		d.fail(result, "search", err)
		return
	}
	result.Items = items
	if len(items) == 0 {
		result.Message = "No items found."
	}
}

func (d *Dispatcher) handleCount(ctx context.Context, result *models.QueryResult, filters models.FilterSet) {
	count, err := d.inventory.Count(ctx, filters)
	if err != nil {
		d.fail(result, "count", err)
		return
	}
	result.Count = &count
	result.Message = fmt.Sprintf("You have %d matching items.", count)
}

func (d *Dispatcher) handleValue(ctx context.Context, result *models.QueryResult, filters models.FilterSet) {
	total, err := d.inventory.TotalValue(ctx, filters)
	if err != nil {
		d.fail(result, "value", err)
		return
	}
	result.Total = &total
	result.Message = fmt.Sprintf("The total value is $%.2f", total)
}

func (d *Dispatcher) handlePriceRange(ctx context.Context, result *models.QueryResult, filters models.FilterSet) {
	comparison := store.CompareMore
	if v, ok := filters.GetString(models.FilterComparison); ok {
		comparison = v
	}
	// An unparseable price threshold degrades to zero, matching every
	// priced item on the "more" side.
	price, _ := filters.GetFloat(models.FilterPrice)

	items, err := d.inventory.PriceRange(ctx, comparison, price)
	if err != nil {
		d.fail(result, "price_range", err)
		return
	}
	result.Items = items
	if len(items) == 0 {
		result.Message = fmt.Sprintf("No items found %s than $%.2f", comparison, price)
	}
}

func (d *Dispatcher) handleRepair(ctx context.Context, result *models.QueryResult, filters models.FilterSet) {
	items, err := d.inventory.NeedsRepair(ctx, filters)
	if err != nil {
		d.fail(result, "repair", err)
		return
	}
	result.Items = items
	if len(items) == 0 {
		result.Message = "No items needing repair found."
	}
}

func (d *Dispatcher) handlePurchaseHistory(ctx context.Context, result *models.QueryResult, filters models.FilterSet) {
	items, err := d.inventory.PurchaseHistory(ctx, filters)
	if err != nil {
		d.fail(result, "purchase_history", err)
		return
	}
	result.Items = items
	if len(items) == 0 {
		result.Message = "No purchase history found."
	}
}

func (d *Dispatcher) fail(result *models.QueryResult, stage string, err error) {
	metrics.NLUQueryErrors.WithLabelValues(stage).Inc()
	d.logger.WithError(err).Error("inventory query failed", map[string]interface{}{
		"intent": string(result.Intent),
	})
	result.Error = fmt.Sprintf("database error: %v", err)
}

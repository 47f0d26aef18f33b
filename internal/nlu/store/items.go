// Package store is the single boundary between the query pipeline and the
// inventory database. Every query is parameterized, every row leaves this
// package as a models.Item; nothing downstream ever branches on row shape.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"inventory-nlu/internal/common/logger"
	"inventory-nlu/internal/models"
)

// Comparison directions accepted by PriceRange.
const (
	CompareMore = "more"
	CompareLess = "less"
)

const itemColumns = `id, name, quantity, price, location, description, category, tags, purchase_date, is_gift, storage_location, usage_location, needs_repair`

type ItemStore struct {
	db     *sql.DB
	logger logger.Logger
}

func New(db *sql.DB, log logger.Logger) *ItemStore {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &ItemStore{db: db, logger: log}
}

// conditions accumulates WHERE clauses with $n placeholders.
type conditions struct {
	clauses []string
	args    []interface{}
}

func (c *conditions) add(clause string, arg interface{}) {
	c.clauses = append(c.clauses, fmt.Sprintf(clause, len(c.args)+1))
	c.args = append(c.args, arg)
}

func (c *conditions) addBare(clause string) {
	c.clauses = append(c.clauses, clause)
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// textConditions applies the shared LIKE constraints for location, category,
// and tags.
func textConditions(c *conditions, filters models.FilterSet) {
	if v, ok := filters.GetString(models.FilterLocation); ok {
		c.add("location LIKE $%d", "%"+v+"%")
	}
	if v, ok := filters.GetString(models.FilterCategory); ok {
		c.add("category LIKE $%d", "%"+v+"%")
	}
	if v, ok := filters.GetString(models.FilterTags); ok {
		c.add("tags LIKE $%d", "%"+v+"%")
	}
}

// Search returns items matching the optional location/category/tags/
// purchase_date/needs_repair constraints, ordered by name.
func (s *ItemStore) Search(ctx context.Context, filters models.FilterSet) ([]models.Item, error) {
	c := &conditions{}
	textConditions(c, filters)
	if v, ok := filters.GetString(models.FilterPurchaseDate); ok {
		c.add("purchase_date = $%d", v)
	}
	if filters.GetBool(models.FilterNeedsRepair) {
		c.addBare("needs_repair = TRUE")
	}

	query := `SELECT ` + itemColumns + ` FROM items` + c.where() + ` ORDER BY name`
	return s.queryItems(ctx, query, c.args...)
}

// Count returns how many items match the optional location/category/tags
// constraints.
func (s *ItemStore) Count(ctx context.Context, filters models.FilterSet) (int64, error) {
	c := &conditions{}
	textConditions(c, filters)

	query := `SELECT COUNT(*) FROM items` + c.where()

	var count int64
	if err := s.db.QueryRowContext(ctx, query, c.args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count query: %w", err)
	}
	return count, nil
}

// TotalValue returns sum(price * quantity) over priced items matching the
// optional constraints. No priced rows means zero, not an error.
func (s *ItemStore) TotalValue(ctx context.Context, filters models.FilterSet) (float64, error) {
	c := &conditions{}
	c.addBare("price IS NOT NULL")
	textConditions(c, filters)

	query := `SELECT COALESCE(SUM(price * quantity), 0) FROM items` + c.where()

	var total float64
	if err := s.db.QueryRowContext(ctx, query, c.args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("value query: %w", err)
	}
	return total, nil
}

// PriceRange returns items strictly above (more) or below (less) the given
// price, ordered by price descending or ascending respectively.
func (s *ItemStore) PriceRange(ctx context.Context, comparison string, price float64) ([]models.Item, error) {
	var query string
	switch comparison {
	case CompareLess:
		query = `SELECT ` + itemColumns + ` FROM items WHERE price < $1 ORDER BY price ASC`
	default:
		query = `SELECT ` + itemColumns + ` FROM items WHERE price > $1 ORDER BY price DESC`
	}
	return s.queryItems(ctx, query, price)
}

// NeedsRepair returns items flagged for repair or carrying any repair
// history record, under the optional location/category constraints.
func (s *ItemStore) NeedsRepair(ctx context.Context, filters models.FilterSet) ([]models.Item, error) {
	c := &conditions{}
	c.addBare("(needs_repair = TRUE OR EXISTS (SELECT 1 FROM repairs r WHERE r.item_id = items.id))")
	if v, ok := filters.GetString(models.FilterLocation); ok {
		c.add("location LIKE $%d", "%"+v+"%")
	}
	if v, ok := filters.GetString(models.FilterCategory); ok {
		c.add("category LIKE $%d", "%"+v+"%")
	}

	query := `SELECT ` + itemColumns + ` FROM items` + c.where() + ` ORDER BY name`
	return s.queryItems(ctx, query, c.args...)
}

// PurchaseHistory returns items with a recorded purchase date, newest first,
// optionally narrowed to dates containing the time_period token.
func (s *ItemStore) PurchaseHistory(ctx context.Context, filters models.FilterSet) ([]models.Item, error) {
	c := &conditions{}
	c.addBare("purchase_date IS NOT NULL")
	if v, ok := filters.GetString(models.FilterTimePeriod); ok {
		c.add("purchase_date LIKE $%d", "%"+v+"%")
	}

	query := `SELECT ` + itemColumns + ` FROM items` + c.where() + ` ORDER BY purchase_date DESC`
	return s.queryItems(ctx, query, c.args...)
}

func (s *ItemStore) queryItems(ctx context.Context, query string, args ...interface{}) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("item query: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("item scan: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("item rows: %w", err)
	}
	return items, nil
}

// scanItem maps one row onto the canonical Item, coercing nullable columns.
func scanItem(rows *sql.Rows) (models.Item, error) {
	var item models.Item
	var price sql.NullFloat64
	var location, description, category, tags sql.NullString
	var purchaseDate, storageLocation, usageLocation sql.NullString
	var isGift, needsRepair sql.NullBool

	err := rows.Scan(
		&item.ID, &item.Name, &item.Quantity, &price,
		&location, &description, &category, &tags,
		&purchaseDate, &isGift, &storageLocation, &usageLocation, &needsRepair,
	)
	if err != nil {
		return models.Item{}, err
	}

	if price.Valid {
		item.Price = &price.Float64
	}
	item.Location = location.String
	item.Description = description.String
	item.Category = category.String
	item.Tags = tags.String
	item.PurchaseDate = purchaseDate.String
	item.IsGift = isGift.Bool
	item.StorageLocation = storageLocation.String
	item.UsageLocation = usageLocation.String
	item.NeedsRepair = needsRepair.Bool

	return item, nil
}

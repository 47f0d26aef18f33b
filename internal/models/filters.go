// internal/models/filters.go
package models

import "strconv"

// Filter field names. Absence of a key means "unconstrained".
const (
	FilterLocation        = "location"
	FilterCategory        = "category"
	FilterTags            = "tags"
	FilterPurchaseDate    = "purchase_date"
	FilterIsGift          = "is_gift"
	FilterStorageLocation = "storage_location"
	FilterUsageLocation   = "usage_location"
	FilterComparison      = "comparison"
	FilterPrice           = "price"
	FilterTimePeriod      = "time_period"
	FilterNeedsRepair     = "needs_repair"
	FilterName            = "name"
	FilterUserID          = "user_id"
	FilterItemID          = "item_id"
	FilterPriceMin        = "price_min"
	FilterPriceMax        = "price_max"
)

// FilterSet maps filter field names to scalar constraint values extracted
// from a query or carried over from the previous conversational turn.
type FilterSet map[string]interface{}

// Clean returns a copy with nil and empty-string values dropped. Null
// filters are never stored.
func (f FilterSet) Clean() FilterSet {
	cleaned := make(FilterSet, len(f))
	for k, v := range f {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		cleaned[k] = v
	}
	return cleaned
}

// Clone returns a shallow copy. Values are scalars, so a shallow copy is a
// full copy.
func (f FilterSet) Clone() FilterSet {
	c := make(FilterSet, len(f))
	for k, v := range f {
		c[k] = v
	}
	return c
}

// Merge overlays other onto a copy of f. Keys in other win on collision.
func (f FilterSet) Merge(other FilterSet) FilterSet {
	merged := f.Clone()
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// GetString returns the value for key when it is a non-empty string.
func (f FilterSet) GetString(key string) (string, bool) {
	v, ok := f[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// GetBool reports whether key holds a true value.
func (f FilterSet) GetBool(key string) bool {
	v, ok := f[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// GetFloat coerces the value for key into a float64. Strings are parsed;
// unparseable or missing values report ok=false.
func (f FilterSet) GetFloat(key string) (float64, bool) {
	v, ok := f[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// Has reports whether key carries any value.
func (f FilterSet) Has(key string) bool {
	_, ok := f[key]
	return ok
}

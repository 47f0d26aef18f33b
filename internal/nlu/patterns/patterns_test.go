package patterns

import (
	"testing"

	"inventory-nlu/internal/models"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Intent Rule Tests
// ==========================

func TestMatchIntent(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantIntent models.Intent
		wantMatch  bool
	}{
		{
			name:       "price range more",
			query:      "what items cost more than 50",
			wantIntent: models.IntentPriceRange,
			wantMatch:  true,
		},
		{
			name:       "price range less with cents",
			query:      "what products cost less than 19.99",
			wantIntent: models.IntentPriceRange,
			wantMatch:  true,
		},
		{
			name:       "repair via show",
			query:      "show items that need repair",
			wantIntent: models.IntentRepair,
			wantMatch:  true,
		},
		{
			name:       "repair via list all",
			query:      "list all items due for repair",
			wantIntent: models.IntentRepair,
			wantMatch:  true,
		},
		{
			name:       "repair to be fixed",
			query:      "what items need to be fixed",
			wantIntent: models.IntentRepair,
			wantMatch:  true,
		},
		{
			name:       "purchase history last week",
			query:      "what did i buy last week",
			wantIntent: models.IntentPurchaseHistory,
			wantMatch:  true,
		},
		{
			name:       "purchase history items bought",
			query:      "what items i bought on sale",
			wantIntent: models.IntentPurchaseHistory,
			wantMatch:  true,
		},
		{
			name:       "count plain",
			query:      "how many items",
			wantIntent: models.IntentCount,
			wantMatch:  true,
		},
		{
			name:       "count with place",
			query:      "how many things in the garage",
			wantIntent: models.IntentCount,
			wantMatch:  true,
		},
		{
			name:       "value of inventory",
			query:      "what is the total value of my inventory",
			wantIntent: models.IntentValue,
			wantMatch:  true,
		},
		{
			name:       "value without total",
			query:      "what is the value of items in the closet",
			wantIntent: models.IntentValue,
			wantMatch:  true,
		},
		{
			name:       "search with place",
			query:      "show me all the items in the kitchen",
			wantIntent: models.IntentSearch,
			wantMatch:  true,
		},
		{
			name:       "search bare",
			query:      "show items",
			wantIntent: models.IntentSearch,
			wantMatch:  true,
		},
		{
			name:       "mixed case normalized",
			query:      "  Show Me ALL Items In The Garage  ",
			wantIntent: models.IntentSearch,
			wantMatch:  true,
		},
		{
			name:       "no rule matches",
			query:      "tell me a joke",
			wantIntent: models.IntentUnknown,
			wantMatch:  false,
		},
		{
			name:       "empty query",
			query:      "",
			wantIntent: models.IntentUnknown,
			wantMatch:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent, matched := MatchIntent(tt.query)
			assert.Equal(t, tt.wantMatch, matched)
			assert.Equal(t, tt.wantIntent, intent)
		})
	}
}

func TestMatchIntent_SpecificRulesBeatSearch(t *testing.T) {
	// "show items that need repair" satisfies the search expression too;
	// rule order must hand it to repair.
	intent, matched := MatchIntent("show all items that need repair")
	assert.True(t, matched)
	assert.Equal(t, models.IntentRepair, intent)
}

func TestRules_OrderStable(t *testing.T) {
	rules := Rules()
	assert.Len(t, rules, 6)
	assert.Equal(t, models.IntentPriceRange, rules[0].Intent)
	assert.Equal(t, models.IntentSearch, rules[len(rules)-1].Intent)

	// Rules() hands out a copy; mutating it must not poison the table.
	rules[0] = Rule{Intent: models.IntentSearch, Pattern: rules[len(rules)-1].Pattern}
	intent, matched := MatchIntent("what items cost more than 50")
	assert.True(t, matched)
	assert.Equal(t, models.IntentPriceRange, intent)
}

// ==========================
// Classifier Anchor Tests
// ==========================

func TestAnchors(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		pattern string
		want    bool
	}{
		{"count anchor at start", "how many items in the garage", "count", true},
		{"count anchor mid-sentence", "tell me how many items", "count", false},
		{"repair anchor short", "what needs fixing", "repair", true},
		{"repair anchor long", "what needs to be repaired", "repair", true},
		{"repair anchor miss", "what items need repair", "repair", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got bool
			switch tt.pattern {
			case "count":
				got = CountAnchor.MatchString(tt.query)
			case "repair":
				got = RepairAnchor.MatchString(tt.query)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

// ==========================
// Filter Expression Tests
// ==========================

func TestFilterExpressions(t *testing.T) {
	t.Run("location phrase captures place", func(t *testing.T) {
		m := LocationPhrase.FindStringSubmatch("items in the garage")
		assert.Len(t, m, 2)
		assert.Equal(t, "garage", m[1])
	})

	t.Run("known locations spot living room variants", func(t *testing.T) {
		assert.True(t, KnownLocations.MatchString("the living room shelf"))
		assert.True(t, KnownLocations.MatchString("livingroom"))
		assert.False(t, KnownLocations.MatchString("the attic"))
	})

	t.Run("cost comparison captures direction and amount", func(t *testing.T) {
		m := CostComparison.FindStringSubmatch("cost more than 100.50")
		assert.Len(t, m, 3)
		assert.Equal(t, "more", m[1])
		assert.Equal(t, "100.50", m[2])
	})

	t.Run("money span requires dollar sign", func(t *testing.T) {
		assert.True(t, MoneySpan.MatchString("over $25"))
		assert.False(t, MoneySpan.MatchString("over 25"))
	})

	t.Run("purchase date accepts separators", func(t *testing.T) {
		for _, q := range []string{
			"purchased on 12/05/2024",
			"purchased on 12-05-2024",
			"purchased on 2024-05-12",
		} {
			assert.True(t, PurchaseDatePhrase.MatchString(q), q)
		}
	})
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkMatchIntent(b *testing.B) {
	for i := 0; i < b.N; i++ {
		MatchIntent("show me all items in the garage")
	}
}

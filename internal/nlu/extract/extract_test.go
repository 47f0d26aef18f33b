package extract

import (
	"testing"

	"inventory-nlu/internal/common/logger"
	"inventory-nlu/internal/models"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Fake Recognizer
// ==========================

type fakeRecognizer struct {
	entities []Entity
}

func (f fakeRecognizer) Recognize(string) []Entity {
	return f.entities
}

// ==========================
// Extraction Tests
// ==========================

func TestExtract(t *testing.T) {
	e := NewDefault(logger.NewTestLogger(t))

	tests := []struct {
		name  string
		query string
		want  models.FilterSet
	}{
		{
			name:  "closed vocabulary location wins over preposition capture",
			query: "items in the garage with tag tools",
			want: models.FilterSet{
				models.FilterLocation: "garage",
				models.FilterCategory: "tools",
				models.FilterTags:     "tools",
			},
		},
		{
			name:  "preposition capture trimmed to canonical token",
			query: "show everything in the messy garage",
			want: models.FilterSet{
				models.FilterLocation: "garage",
			},
		},
		{
			name:  "cost comparison sets direction and amount",
			query: "what items cost more than 50",
			want: models.FilterSet{
				models.FilterComparison: "more",
				models.FilterPrice:      "50",
			},
		},
		{
			name:  "cost comparison with cents",
			query: "which things cost less than 19.99",
			want: models.FilterSet{
				models.FilterComparison: "less",
				models.FilterPrice:      "19.99",
			},
		},
		{
			name:  "gift flag and purchase date",
			query: "show gifts purchased on 12/05/2024",
			want: models.FilterSet{
				models.FilterIsGift:       true,
				models.FilterPurchaseDate: "12/05/2024",
			},
		},
		{
			name:  "storage location keeps raw capture",
			query: "tools stored in the attic",
			want: models.FilterSet{
				models.FilterLocation:        "attic",
				models.FilterCategory:        "tools",
				models.FilterStorageLocation: "the attic",
			},
		},
		{
			name:  "usage location",
			query: "drills used in the shed",
			want: models.FilterSet{
				models.FilterLocation:      "shed",
				models.FilterUsageLocation: "the shed",
			},
		},
		{
			name:  "time period token",
			query: "what did i buy last week",
			want: models.FilterSet{
				models.FilterTimePeriod: "week",
			},
		},
		{
			name:  "repair keywords",
			query: "what needs fixing",
			want: models.FilterSet{
				models.FilterNeedsRepair: true,
			},
		},
		{
			name:  "money span from recognizer",
			query: "show items worth $25",
			want: models.FilterSet{
				models.FilterPrice: "$25",
			},
		},
		{
			name:  "gazetteer place overridden by preposition capture",
			query: "boxes in the basement",
			want: models.FilterSet{
				models.FilterLocation: "basement",
			},
		},
		{
			name:  "explicit category phrase trumps keyword",
			query: "show category electronics with tag vintage",
			want: models.FilterSet{
				models.FilterCategory: "electronics with tag vintage",
				models.FilterTags:     "vintage",
			},
		},
		{
			name:  "no filters in text",
			query: "hello there",
			want:  models.FilterSet{},
		},
		{
			name:  "empty query",
			query: "",
			want:  models.FilterSet{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.query)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_RecognizerSeedsAreOverridden(t *testing.T) {
	e := New(fakeRecognizer{entities: []Entity{
		{Label: LabelLocation, Text: "warehouse"},
	}}, logger.NewTestLogger(t))

	// Without a lexical match the recognizer's guess stands.
	got := e.Extract("list my stuff")
	assert.Equal(t, models.FilterSet{models.FilterLocation: "warehouse"}, got)

	// Any "in X" capture replaces it.
	got = e.Extract("list my stuff in the kitchen")
	assert.Equal(t, "kitchen", got[models.FilterLocation])
}

func TestExtract_EmptyRecognizerValuesDropped(t *testing.T) {
	e := New(fakeRecognizer{entities: []Entity{
		{Label: LabelLocation, Text: ""},
		{Label: LabelMoney, Text: ""},
	}}, logger.NewTestLogger(t))

	got := e.Extract("nothing to see")
	assert.Empty(t, got)
}

func TestExtract_NeverPanicsOnOddInput(t *testing.T) {
	e := NewDefault(logger.NewTestLogger(t))

	for _, q := range []string{
		"((((",
		"in in in in",
		"tag",
		"cost more than",
		"\x00\x01",
		"在车库里的东西",
	} {
		assert.NotPanics(t, func() { e.Extract(q) }, q)
	}
}

// ==========================
// Recognizer Tests
// ==========================

func TestLexiconRecognizer(t *testing.T) {
	r := LexiconRecognizer{}

	t.Run("finds place words with punctuation", func(t *testing.T) {
		entities := r.Recognize("Is it in the attic, or the shed?")
		var places []string
		for _, e := range entities {
			if e.Label == LabelLocation {
				places = append(places, e.Text)
			}
		}
		assert.Equal(t, []string{"attic", "shed"}, places)
	})

	t.Run("finds first money span", func(t *testing.T) {
		entities := r.Recognize("between $10 and $20")
		var money []string
		for _, e := range entities {
			if e.Label == LabelMoney {
				money = append(money, e.Text)
			}
		}
		assert.Equal(t, []string{"$10"}, money)
	})

	t.Run("nothing recognized", func(t *testing.T) {
		assert.Empty(t, r.Recognize("show me everything"))
	})
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkExtract(b *testing.B) {
	e := NewDefault(logger.NewNoOpLogger())
	for i := 0; i < b.N; i++ {
		e.Extract("items in the garage with tag tools purchased on 12/05/2024")
	}
}

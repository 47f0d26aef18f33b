// Package extract turns free-text inventory questions into a FilterSet.
// Extraction is a fixed sequence of passes over the query where later
// passes overwrite earlier ones: broad entity recognition first, then
// increasingly specific lexical rules, so explicit phrasing always beats a
// generic guess. Extraction never fails; text that matches nothing yields
// an empty FilterSet.
package extract

import (
	"strings"

	"inventory-nlu/internal/common/logger"
	"inventory-nlu/internal/models"
	"inventory-nlu/internal/nlu/patterns"
)

type Extractor struct {
	recognizer EntityRecognizer
	logger     logger.Logger
}

// New creates an Extractor with an explicit recognizer (tests inject fakes
// here).
func New(recognizer EntityRecognizer, log logger.Logger) *Extractor {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Extractor{recognizer: recognizer, logger: log}
}

// NewDefault creates an Extractor backed by the built-in lexicon recognizer.
func NewDefault(log logger.Logger) *Extractor {
	return New(LexiconRecognizer{}, log)
}

// Extract runs all passes over the query and returns the cleaned FilterSet.
func (e *Extractor) Extract(query string) models.FilterSet {
	filters := models.FilterSet{}

	// 1. Broad entity pass. Location and money mentions seed the set.
	for _, entity := range e.recognizer.Recognize(query) {
		switch entity.Label {
		case LabelLocation:
			filters[models.FilterLocation] = entity.Text
		case LabelMoney:
			filters[models.FilterPrice] = entity.Text
		}
	}

	// 2. "in [the] X" beats whatever the recognizer guessed.
	if m := patterns.LocationPhrase.FindStringSubmatch(query); m != nil {
		filters[models.FilterLocation] = strings.TrimSpace(m[1])
	}

	// 3. A closed-vocabulary location wins outright, stored in canonical
	// spelling.
	if patterns.KnownLocations.MatchString(query) {
		for i, term := range patterns.LocationTerms {
			if patterns.LocationTermPatterns[i].MatchString(query) {
				filters[models.FilterLocation] = term
			}
		}
	}

	// 4. Closed-vocabulary category.
	if patterns.KnownCategories.MatchString(query) {
		for i, term := range patterns.CategoryTerms {
			if patterns.CategoryTermPatterns[i].MatchString(query) {
				filters[models.FilterCategory] = term
			}
		}
	}

	// 5. Explicit "category X" trumps the keyword guess.
	if m := patterns.CategoryPhrase.FindStringSubmatch(query); m != nil {
		filters[models.FilterCategory] = strings.TrimSpace(m[1])
	}

	// 6. Tags.
	if m := patterns.TagsPhrase.FindStringSubmatch(query); m != nil {
		filters[models.FilterTags] = strings.TrimSpace(m[1])
	}

	// 7. Purchase date, raw token.
	if m := patterns.PurchaseDatePhrase.FindStringSubmatch(query); m != nil {
		filters[models.FilterPurchaseDate] = strings.TrimSpace(m[1])
	}

	// 8. Gift flag.
	if patterns.GiftWords.MatchString(query) {
		filters[models.FilterIsGift] = true
	}

	// 9. Storage and usage locations.
	if m := patterns.StoredInPhrase.FindStringSubmatch(query); m != nil {
		filters[models.FilterStorageLocation] = strings.TrimSpace(m[1])
	}
	if m := patterns.UsedInPhrase.FindStringSubmatch(query); m != nil {
		filters[models.FilterUsageLocation] = strings.TrimSpace(m[1])
	}

	// 10. Price comparison sets direction and amount together.
	if m := patterns.CostComparison.FindStringSubmatch(query); m != nil {
		filters[models.FilterComparison] = m[1]
		filters[models.FilterPrice] = m[2]
	}

	// 11. Time period, raw token ("last week" -> "week").
	if m := patterns.TimePeriodPhrase.FindStringSubmatch(query); m != nil {
		filters[models.FilterTimePeriod] = m[1]
	}

	// 12. Repair flag.
	if patterns.RepairWords.MatchString(query) {
		filters[models.FilterNeedsRepair] = true
	}

	filters = filters.Clean()

	if len(filters) > 0 {
		e.logger.Debug("extracted filters", map[string]interface{}{
			"query":   query,
			"filters": filters,
		})
	}

	return filters
}

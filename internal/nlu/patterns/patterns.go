// Package patterns is the rule table behind the query understanding
// pipeline: the ordered intent rules used when the statistical classifier
// is overridden, and the compiled expressions the filter extractor runs.
// Everything here is fixed at init; nothing mutates at runtime.
package patterns

import (
	"regexp"
	"strings"

	"inventory-nlu/internal/models"
)

// Version identifies the rule table revision. It rides along on results so
// a logged answer can be traced back to the rules that produced it.
const Version = "1.0.0"

// Rule pairs an intent with the expression that recognizes it.
type Rule struct {
	Intent  models.Intent
	Pattern *regexp.Regexp
}

// intentRules is ordered most specific first. The generic search rule sits
// last: "show items that need repair" must reach the repair rule before
// "show ... items" can swallow it.
var intentRules = []Rule{
	{models.IntentPriceRange, regexp.MustCompile(`(?i)what\s+(?:items?|products?|things?)\s+cost\s+(?:more|less)\s+than\s+(\d+(?:\.\d{2})?)`)},
	{models.IntentRepair, regexp.MustCompile(`(?i)(?:list|what|show)\s+(?:all\s+)?(?:items?|products?|things?)\s+(?:that\s+)?(?:need|due\s+for)\s+(?:to\s+be\s+)?(?:repair|fixed)`)},
	{models.IntentPurchaseHistory, regexp.MustCompile(`(?i)what\s+(?:did\s+i\s+buy|items?\s+(?:i\s+bought))\s+(last\s+\w+|\w+\s+ago|on\s+sale)`)},
	{models.IntentCount, regexp.MustCompile(`(?i)how\s+many\s+(?:items?|products?|things?)(?:\s+in\s+(.+))?`)},
	{models.IntentValue, regexp.MustCompile(`(?i)what\s+is\s+the\s+(?:total\s+)?value\s+of\s+(?:my\s+)?(?:inventory|items?|products?|things?)(?:\s+in\s+(.+))?`)},
	{models.IntentSearch, regexp.MustCompile(`(?i)show\s+(?:me\s+)?(?:all\s+)?(?:the\s+)?(?:items?|products?|things?)(?:\s+in\s+(.+))?`)},
}

// Rules returns the ordered intent rule table.
func Rules() []Rule {
	out := make([]Rule, len(intentRules))
	copy(out, intentRules)
	return out
}

// MatchIntent runs the rule table over a query, first match wins. The query
// is lower-cased and trimmed before matching.
func MatchIntent(query string) (models.Intent, bool) {
	normalized := strings.ToLower(strings.TrimSpace(query))
	for _, rule := range intentRules {
		if rule.Pattern.MatchString(normalized) {
			return rule.Intent, true
		}
	}
	return models.IntentUnknown, false
}

// Anchors tested by the classifier's override decision. These are looser
// than the full intent rules: they only decide WHETHER the rule table gets
// a say, not which intent wins.
var (
	CountAnchor  = regexp.MustCompile(`(?i)^how\s+many\b`)
	RepairAnchor = regexp.MustCompile(`(?i)^what\s+needs\s+(?:to\s+be\s+)?(?:fix|repair)`)
)

// Filter extraction expressions, in the order the extractor applies them.
// Later passes overwrite earlier ones for the same filter key.
var (
	// LocationPhrase catches "in the garage", "in kitchen". The capture is
	// greedy across word characters and spaces; the extractor trims it.
	LocationPhrase = regexp.MustCompile(`(?i)in\s+(?:the\s+)?([\w\s]+)`)

	// KnownLocations is the closed location vocabulary. A hit here beats
	// whatever LocationPhrase or the entity recognizer found.
	KnownLocations = regexp.MustCompile(`(?i)\b(?:garage|kitchen|closet|living\s*room)\b`)

	// KnownCategories is the closed category vocabulary.
	KnownCategories = regexp.MustCompile(`(?i)\b(?:tools|clothing|electronics|appliances)\b`)

	// CategoryPhrase ("category electronics") overrides KnownCategories.
	CategoryPhrase = regexp.MustCompile(`(?i)category\s+([\w\s]+)`)

	// TagsPhrase captures comma-separated tag lists after "tag"/"tags".
	TagsPhrase = regexp.MustCompile(`(?i)tag[s]?\s+([\w\s,]+)`)

	// PurchaseDatePhrase accepts slash, dash, and ISO date tokens.
	PurchaseDatePhrase = regexp.MustCompile(`(?i)purchased\s+on\s+([\d/-]+)`)

	// GiftWords flips the is_gift flag.
	GiftWords = regexp.MustCompile(`(?i)\b(gifts?|free)\b`)

	StoredInPhrase = regexp.MustCompile(`(?i)stored\s+in\s+([\w\s]+)`)
	UsedInPhrase   = regexp.MustCompile(`(?i)used\s+in\s+([\w\s]+)`)

	// CostComparison captures direction and amount; amounts allow an
	// optional two-decimal fraction.
	CostComparison = regexp.MustCompile(`(?i)cost\s+(more|less)\s+than\s+(\d+(?:\.\d{2})?)`)

	// TimePeriodPhrase captures the unit after "last" ("last week").
	TimePeriodPhrase = regexp.MustCompile(`(?i)last\s+(\w+)`)

	// RepairWords flips the needs_repair flag.
	RepairWords = regexp.MustCompile(`(?i)\b(?:fix|repair|broken|needs?\s+fixing|needs?\s+repair)\b`)

	// MoneySpan is what the built-in entity recognizer treats as a money
	// mention ("$25", "$19.99").
	MoneySpan = regexp.MustCompile(`\$\d+(?:\.\d+)?`)
)

// Canonical vocabulary tokens. When KnownLocations/KnownCategories hit, the
// extractor walks these in order and keeps the last canonical token present
// in the query, so the stored filter value is always one of these spellings.
var (
	LocationTerms = []string{"garage", "kitchen", "closet", "living room"}
	CategoryTerms = []string{"tools", "clothing", "electronics", "appliances"}

	LocationTermPatterns = compileTerms(LocationTerms)
	CategoryTermPatterns = compileTerms(CategoryTerms)
)

func compileTerms(terms []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(terms))
	for i, term := range terms {
		out[i] = regexp.MustCompile(`(?i)\b` + term + `\b`)
	}
	return out
}

// internal/models/intent.go
package models

// Intent is the symbolic category of what the user is asking for.
type Intent string

const (
	IntentSearch          Intent = "search"
	IntentCount           Intent = "count"
	IntentValue           Intent = "value"
	IntentPriceRange      Intent = "price_range"
	IntentRepair          Intent = "repair"
	IntentPurchaseHistory Intent = "purchase_history"
	IntentUnknown         Intent = "unknown"
)

// intentLabels is the canonical ordered label set. The sequence classifier's
// probability vector aligns positionally with this slice.
var intentLabels = []Intent{
	IntentSearch,
	IntentCount,
	IntentValue,
	IntentPriceRange,
	IntentRepair,
	IntentPurchaseHistory,
	IntentUnknown,
}

// IntentLabels returns the canonical label order. The returned slice is a
// copy; callers may not mutate the label space.
func IntentLabels() []Intent {
	out := make([]Intent, len(intentLabels))
	copy(out, intentLabels)
	return out
}

// IntentFromIndex maps a predicted label index to its intent. Any index
// outside the canonical range maps to IntentUnknown instead of failing.
func IntentFromIndex(i int) Intent {
	if i < 0 || i >= len(intentLabels) {
		return IntentUnknown
	}
	return intentLabels[i]
}

// ParseIntent converts a raw label to an Intent, with IntentUnknown as the
// fallback for anything outside the closed set.
func ParseIntent(s string) Intent {
	for _, label := range intentLabels {
		if string(label) == s {
			return label
		}
	}
	return IntentUnknown
}

func (i Intent) String() string {
	return string(i)
}

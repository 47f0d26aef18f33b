package models

// ModelVersion tags every successful result so callers can correlate
// answers with the classifier revision that produced them.
const ModelVersion = "1.0.0"

// QueryResult is the single response shape for every intent. Which fields
// are populated depends on the intent that handled the query:
//
//	search, repair, purchase_history -> Items, Message (on empty)
//	count                            -> Count, Message
//	value                            -> Total, Message
//	price_range                      -> Items, Message (on empty)
//	unknown                          -> Message
//
// Error is set instead of the above when the pipeline failed; in that case
// Intent still reports what was classified (or unknown) and Confidence may
// be zero.
type QueryResult struct {
	Intent         Intent    `json:"intent"`
	Confidence     float64   `json:"confidence"`
	ModelVersion   string    `json:"modelVersion,omitempty"`
	RulesetVersion string    `json:"rulesetVersion,omitempty"`
	Items          []Item    `json:"items,omitempty"`
	Count          *int64    `json:"count,omitempty"`
	Total          *float64  `json:"total,omitempty"`
	Message        string    `json:"message,omitempty"`
	Error          string    `json:"error,omitempty"`
	Filters        FilterSet `json:"filters,omitempty"`
}

// Failed reports whether the pipeline produced an error instead of an answer.
func (r *QueryResult) Failed() bool {
	return r.Error != ""
}

package processuserquery

import "inventory-nlu/internal/models"

type Input struct {
	Query          string                 `json:"query"`
	ConversationID string                 `json:"conversationId,omitempty"`
	Context        map[string]interface{} `json:"context,omitempty"`
}

// Output mirrors models.QueryResult onto job variables. Which fields are set
// depends on the intent that answered the query.
type Output struct {
	Intent         string                 `json:"intent"`
	Confidence     float64                `json:"confidence"`
	ModelVersion   string                 `json:"modelVersion,omitempty"`
	RulesetVersion string                 `json:"rulesetVersion,omitempty"`
	ConversationID string                 `json:"conversationId"`
	Items          []models.Item          `json:"items,omitempty"`
	Count          *int64                 `json:"count,omitempty"`
	Total          *float64               `json:"total,omitempty"`
	Message        string                 `json:"message,omitempty"`
	Error          string                 `json:"error,omitempty"`
	Filters        map[string]interface{} `json:"filters,omitempty"`
}

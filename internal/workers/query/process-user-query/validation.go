package processuserquery

import "inventory-nlu/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"query"},
		Properties: map[string]validation.Property{
			"query": {
				Type:        "string",
				Description: "Natural language inventory query",
				MaxLength:   intPtr(2000),
			},
			"conversationId": {
				Type:        "string",
				Description: "Conversation identifier; generated when absent",
				MaxLength:   intPtr(128),
			},
			"context": {
				Type:        "object",
				Description: "Candidate conversation context from the caller",
			},
		},
		AdditionalProperties: true,
	}
}

func intPtr(i int) *int {
	return &i
}

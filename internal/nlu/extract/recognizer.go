package extract

import (
	"strings"

	"inventory-nlu/internal/nlu/patterns"
)

// Entity labels produced by recognizers.
const (
	LabelLocation = "LOCATION"
	LabelMoney    = "MONEY"
)

// Entity is a labeled span found in free text.
type Entity struct {
	Label string
	Text  string
}

// EntityRecognizer finds location and money mentions in a query. The
// extractor runs it as its broadest, lowest-priority pass; everything it
// finds can be overridden by the lexical rules.
type EntityRecognizer interface {
	Recognize(text string) []Entity
}

// placeWords are room/place tokens outside the closed location vocabulary.
// The closed vocabulary has its own extraction step, so listing a token in
// both places is harmless but pointless.
var placeWords = map[string]struct{}{
	"attic":    {},
	"basement": {},
	"bathroom": {},
	"bedroom":  {},
	"hallway":  {},
	"office":   {},
	"pantry":   {},
	"shed":     {},
}

// LexiconRecognizer is the built-in EntityRecognizer: a place-word gazetteer
// plus dollar-amount spans. It has no model behind it and never fails.
type LexiconRecognizer struct{}

func (LexiconRecognizer) Recognize(text string) []Entity {
	var entities []Entity

	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'")
		if _, ok := placeWords[word]; ok {
			entities = append(entities, Entity{Label: LabelLocation, Text: word})
		}
	}

	if span := patterns.MoneySpan.FindString(text); span != "" {
		entities = append(entities, Entity{Label: LabelMoney, Text: span})
	}

	return entities
}

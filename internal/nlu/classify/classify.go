// Package classify resolves a query to an (intent, confidence) pair by
// blending a statistical sequence classifier with the rule table. The model
// speaks first; rules get a say when the model is uncertain or when the
// query hits one of the anchor phrasings that are cheaper to hard-code than
// to guarantee via training data.
package classify

import (
	"context"

	"inventory-nlu/internal/common/logger"
	"inventory-nlu/internal/common/metrics"
	"inventory-nlu/internal/models"
	"inventory-nlu/internal/nlu/patterns"
)

// Confidence thresholds for the override decision.
const (
	// LowConfidenceFloor: below this the model always defers to rules.
	LowConfidenceFloor = 0.3

	// UnknownCeiling: an "unknown" prediction below this is worth a second
	// opinion; a confident unknown is left alone.
	UnknownCeiling = 0.8
)

// Prediction is what the sequence classifier returns: a probability vector
// positionally aligned with models.IntentLabels, plus the serving model's
// version tag.
type Prediction struct {
	Probabilities []float64
	ModelVersion  string
}

// SequenceClassifier is the external inference capability. Implementations
// may fail; the Classifier degrades every failure to (unknown, 0.0).
type SequenceClassifier interface {
	Predict(ctx context.Context, text string) (*Prediction, error)
}

// Sources recorded on results and metrics.
const (
	SourceModel = "model"
	SourceRule  = "rule"
)

// Override trigger labels, in decision order.
const (
	triggerLowConfidence    = "low_confidence"
	triggerCountAnchor      = "count_anchor"
	triggerRepairAnchor     = "repair_anchor"
	triggerUncertainUnknown = "uncertain_unknown"
)

// Result carries the resolved intent, its confidence, and which path won.
type Result struct {
	Intent       models.Intent
	Confidence   float64
	Source       string
	ModelVersion string
}

type Classifier struct {
	model  SequenceClassifier
	logger logger.Logger
}

func New(model SequenceClassifier, log logger.Logger) *Classifier {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Classifier{model: model, logger: log}
}

// Classify resolves query text to an intent. It never returns an error:
// inference failures degrade to (unknown, 0.0) and flow through the same
// override decision as any other uncertain prediction.
func (c *Classifier) Classify(ctx context.Context, query string) Result {
	mlIntent, mlConfidence, version := c.statistical(ctx, query)

	trigger := overrideTrigger(query, mlIntent, mlConfidence)
	if trigger == "" {
		return Result{Intent: mlIntent, Confidence: mlConfidence, Source: SourceModel, ModelVersion: version}
	}

	metrics.NLURuleOverrides.WithLabelValues(trigger).Inc()

	if ruleIntent, ok := patterns.MatchIntent(query); ok {
		c.logger.Debug("rule override applied", map[string]interface{}{
			"query":        query,
			"trigger":      trigger,
			"ruleIntent":   ruleIntent.String(),
			"mlIntent":     mlIntent.String(),
			"mlConfidence": mlConfidence,
		})
		return Result{Intent: ruleIntent, Confidence: 1.0, Source: SourceRule, ModelVersion: version}
	}

	// No rule matched: the model's answer stands, however uncertain. A
	// default intent is never invented here.
	return Result{Intent: mlIntent, Confidence: mlConfidence, Source: SourceModel, ModelVersion: version}
}

// statistical runs the external model and coerces every failure mode into
// (unknown, 0.0) instead of propagating it.
func (c *Classifier) statistical(ctx context.Context, query string) (models.Intent, float64, string) {
	prediction, err := c.model.Predict(ctx, query)
	if err != nil {
		metrics.NLUInferenceFailures.WithLabelValues("request_failed").Inc()
		c.logger.Warn("inference failed, degrading to unknown", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return models.IntentUnknown, 0.0, ""
	}

	if prediction == nil || len(prediction.Probabilities) == 0 {
		metrics.NLUInferenceFailures.WithLabelValues("empty_distribution").Inc()
		return models.IntentUnknown, 0.0, ""
	}

	best := 0
	for i, p := range prediction.Probabilities {
		if p > prediction.Probabilities[best] {
			best = i
		}
	}

	// A model whose label space outgrew ours predicts indices we cannot
	// name. Degrade instead of guessing.
	if best >= len(models.IntentLabels()) {
		metrics.NLUInferenceFailures.WithLabelValues("label_out_of_range").Inc()
		c.logger.Warn("predicted label index outside known label set", map[string]interface{}{
			"index":  best,
			"labels": len(models.IntentLabels()),
		})
		return models.IntentUnknown, 0.0, prediction.ModelVersion
	}

	return models.IntentFromIndex(best), prediction.Probabilities[best], prediction.ModelVersion
}

// overrideTrigger reports which condition hands the decision to the rule
// table, or "" when the model's answer is final. Conditions are tested in
// order; the first match wins.
func overrideTrigger(query string, mlIntent models.Intent, mlConfidence float64) string {
	switch {
	case mlConfidence < LowConfidenceFloor:
		return triggerLowConfidence
	case patterns.CountAnchor.MatchString(query):
		return triggerCountAnchor
	case patterns.RepairAnchor.MatchString(query):
		return triggerRepairAnchor
	case mlIntent == models.IntentUnknown && mlConfidence < UnknownCeiling:
		return triggerUncertainUnknown
	default:
		return ""
	}
}

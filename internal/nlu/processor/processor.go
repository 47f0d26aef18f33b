// Package processor is the top of the query understanding pipeline: one
// Process call takes a raw utterance plus a conversation id and produces the
// final annotated QueryResult.
package processor

import (
	"context"
	"strings"
	"time"

	"inventory-nlu/internal/common/logger"
	"inventory-nlu/internal/common/metrics"
	"inventory-nlu/internal/common/observability"
	"inventory-nlu/internal/models"
	"inventory-nlu/internal/nlu/classify"
	"inventory-nlu/internal/nlu/patterns"
)

// lowConfidenceThreshold marks final predictions worth counting separately;
// it is looser than the classifier's own override floor.
const lowConfidenceThreshold = 0.5

// IntentClassifier produces the hybrid intent decision for a query.
type IntentClassifier interface {
	Classify(ctx context.Context, query string) classify.Result
}

// FilterExtractor pulls structured filters out of a query.
type FilterExtractor interface {
	Extract(query string) models.FilterSet
}

// ContextManager is the conversational memory surface the processor needs.
type ContextManager interface {
	SetContext(ctx context.Context, conversationID string, candidate interface{})
	MergeWithContext(ctx context.Context, conversationID string, newFilters models.FilterSet) models.FilterSet
	SaveContext(ctx context.Context, conversationID string, filters models.FilterSet)
}

// IntentDispatcher routes a classified intent to its inventory query.
type IntentDispatcher interface {
	Dispatch(ctx context.Context, intent models.Intent, filters models.FilterSet) *models.QueryResult
}

type Processor struct {
	classifier IntentClassifier
	extractor  FilterExtractor
	contexts   ContextManager
	dispatcher IntentDispatcher
	obs        *observability.Observability
	logger     logger.Logger
}

func New(classifier IntentClassifier, extractor FilterExtractor, contexts ContextManager, dispatcher IntentDispatcher, obs *observability.Observability, log logger.Logger) *Processor {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Processor{
		classifier: classifier,
		extractor:  extractor,
		contexts:   contexts,
		dispatcher: dispatcher,
		obs:        obs,
		logger:     log,
	}
}

// Process runs one conversational turn end to end: classify, extract, merge
// with stored context, dispatch, annotate. The stored context is replaced
// with the effective filters only when the turn produced an answer.
func (p *Processor) Process(ctx context.Context, conversationID, query string) *models.QueryResult {
	start := time.Now()

	if strings.TrimSpace(query) == "" {
		return &models.QueryResult{
			Intent: models.IntentUnknown,
			Error:  "empty query",
		}
	}

	cls := p.classifier.Classify(ctx, query)
	metrics.NLUPredictions.WithLabelValues(string(cls.Intent), cls.Source).Inc()
	metrics.NLUPredictionConfidence.WithLabelValues(string(cls.Intent)).Observe(cls.Confidence)
	if cls.Confidence < lowConfidenceThreshold {
		metrics.NLULowConfidencePredictions.Inc()
	}

	extracted := p.extractor.Extract(query)
	effective := p.contexts.MergeWithContext(ctx, conversationID, extracted)

	p.logger.Debug("query classified", map[string]interface{}{
		"conversationId": conversationID,
		"intent":         string(cls.Intent),
		"confidence":     cls.Confidence,
		"source":         cls.Source,
		"filters":        len(effective),
	})

	result := p.dispatcher.Dispatch(ctx, cls.Intent, effective)
	result.Intent = cls.Intent
	result.Confidence = cls.Confidence
	result.ModelVersion = cls.ModelVersion
	if result.ModelVersion == "" {
		result.ModelVersion = models.ModelVersion
	}
	result.RulesetVersion = patterns.Version
	result.Filters = effective

	if !result.Failed() {
		p.contexts.SaveContext(ctx, conversationID, effective)
	}

	if p.obs != nil {
		status := "success"
		if result.Failed() {
			status = "error"
		}
		p.obs.RecordQueryProcessed(ctx, string(result.Intent), status)
		p.obs.RecordQueryDuration(ctx, time.Since(start), status)
	}

	return result
}

// SetConversationContext installs a caller-supplied context candidate for a
// conversation, for hosts that carry inline context alongside the query.
func (p *Processor) SetConversationContext(ctx context.Context, conversationID string, candidate interface{}) {
	p.contexts.SetContext(ctx, conversationID, candidate)
}

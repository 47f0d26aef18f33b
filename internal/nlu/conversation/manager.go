package conversation

import (
	"context"

	"inventory-nlu/internal/common/logger"
	"inventory-nlu/internal/common/metrics"
	"inventory-nlu/internal/models"
)

// contextFiltersKey is the only key retained from a caller-supplied context
// candidate.
const contextFiltersKey = "previous_filters"

// Manager owns the merge and sanitization semantics on top of a Store. A
// store failure never fails the query: reads degrade to an empty context,
// writes are logged and dropped.
type Manager struct {
	store  Store
	logger logger.Logger
}

func NewManager(store Store, log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Manager{store: store, logger: log}
}

// SetContext replaces the stored context with a sanitized copy of the
// candidate. A candidate that is not a mapping is logged and ignored: a
// malformed update must not corrupt good state. From a mapping, only the
// previous_filters sub-mapping is retained, and within it only entries with
// non-nil, non-empty values survive. This is a full replacement, not a
// merge.
func (m *Manager) SetContext(ctx context.Context, conversationID string, candidate interface{}) {
	mapping, ok := asMapping(candidate)
	if !ok {
		metrics.NLUContextStoreFailures.WithLabelValues("invalid_candidate").Inc()
		m.logger.Warn("ignoring malformed context candidate", map[string]interface{}{
			"conversationId": conversationID,
			"candidateType":  typeName(candidate),
		})
		return
	}

	filters, ok := asMapping(mapping[contextFiltersKey])
	if !ok {
		filters = models.FilterSet{}
	}

	if err := m.store.Put(ctx, conversationID, filters.Clean()); err != nil {
		metrics.NLUContextStoreFailures.WithLabelValues("put").Inc()
		m.logger.WithError(err).Warn("context store write failed", map[string]interface{}{
			"conversationId": conversationID,
		})
	}
}

// GetContext returns the stored filters for a conversation, or an empty set
// when nothing is stored or the store is unreachable.
func (m *Manager) GetContext(ctx context.Context, conversationID string) models.FilterSet {
	filters, err := m.store.Get(ctx, conversationID)
	if err != nil {
		metrics.NLUContextStoreFailures.WithLabelValues("get").Inc()
		m.logger.WithError(err).Warn("context store read failed, using empty context", map[string]interface{}{
			"conversationId": conversationID,
		})
		return models.FilterSet{}
	}
	return filters
}

// MergeWithContext overlays newFilters onto the stored context: carried-over
// keys survive unless the new turn re-specifies them.
func (m *Manager) MergeWithContext(ctx context.Context, conversationID string, newFilters models.FilterSet) models.FilterSet {
	return m.GetContext(ctx, conversationID).Merge(newFilters)
}

// SaveContext replaces the stored context after a successfully dispatched
// turn. A write failure is logged; the already-built result is unaffected.
func (m *Manager) SaveContext(ctx context.Context, conversationID string, filters models.FilterSet) {
	if err := m.store.Put(ctx, conversationID, filters.Clean()); err != nil {
		metrics.NLUContextStoreFailures.WithLabelValues("put").Inc()
		m.logger.WithError(err).Warn("context store write failed", map[string]interface{}{
			"conversationId": conversationID,
		})
	}
}

// asMapping accepts the two mapping shapes that reach this layer: decoded
// JSON objects and FilterSets built in-process.
func asMapping(v interface{}) (models.FilterSet, bool) {
	switch typed := v.(type) {
	case models.FilterSet:
		return typed, true
	case map[string]interface{}:
		return models.FilterSet(typed), true
	default:
		return nil, false
	}
}

func typeName(v interface{}) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	case []interface{}:
		return "array"
	case float64, int, int64:
		return "number"
	case bool:
		return "bool"
	default:
		return "other"
	}
}

// Package scribe is the application service for dictation sessions.  It
// owns the session registry, routes text into each session's analysis
// engine, keeps the snapshot cache warm, and raises urgent alerts when a
// session escalates.
package scribe

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/donovanp007/medscribe/internal/analysis/score"
	"github.com/donovanp007/medscribe/internal/analysis/stream"
	"github.com/donovanp007/medscribe/internal/domain/lexicon"
	"github.com/donovanp007/medscribe/internal/domain/template"
	"github.com/donovanp007/medscribe/internal/infrastructure/monitoring/logging"
	"github.com/donovanp007/medscribe/internal/infrastructure/monitoring/prometheus"
	"github.com/donovanp007/medscribe/pkg/errors"
	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

// DefaultTemplateID is bound to sessions auto-created from transcript
// messages that carry no template choice.
const DefaultTemplateID = "general_consultation"

// SnapshotCache is the optional write-through snapshot store.
type SnapshotCache interface {
	Save(ctx context.Context, sessionID string, result clinical.StreamingAnalysisResult) error
	Load(ctx context.Context, sessionID string) (*clinical.StreamingAnalysisResult, error)
	Invalidate(ctx context.Context, sessionID string) error
}

// AlertPublisher receives urgent alerts when a session escalates to high or
// urgent.  Publishing is best-effort; a failure never blocks dictation.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert clinical.UrgentAlert) error
}

// session pairs an aggregator with its serialisation lock.
type session struct {
	id          string
	mu          sync.Mutex
	agg         *stream.Aggregator
	createdAt   time.Time
	closed      bool
	lastSeq     int64
	lastUrgency clinical.UrgencyLevel
}

// Service manages dictation sessions.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*session

	registry  *template.Registry
	suggester *template.Suggester
	lex       *lexicon.Lexicon

	classifier score.Classifier
	cache      SnapshotCache
	alerts     AlertPublisher
	observer   stream.Observer
	metrics    *prometheus.AppMetrics
	log        logging.Logger

	aggOpts []stream.Option
}

// ─────────────────────────────────────────────────────────────────────────────
// Options
// ─────────────────────────────────────────────────────────────────────────────

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithClassifier routes sentence assignment through an external classifier.
func WithClassifier(c score.Classifier) ServiceOption {
	return func(s *Service) { s.classifier = c }
}

// WithSnapshotCache enables the write-through snapshot cache.
func WithSnapshotCache(c SnapshotCache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

// WithAlertPublisher enables urgent alert publishing.
func WithAlertPublisher(p AlertPublisher) ServiceOption {
	return func(s *Service) { s.alerts = p }
}

// WithObserver forwards analysis events, typically into metrics.
func WithObserver(o stream.Observer) ServiceOption {
	return func(s *Service) { s.observer = o }
}

// WithMetrics records session lifecycle metrics.
func WithMetrics(m *prometheus.AppMetrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
		if s.observer == nil {
			s.observer = NewMetricsObserver(m)
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(log logging.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// WithAggregatorOptions appends options applied to every new session
// engine, for tuning thresholds from configuration.
func WithAggregatorOptions(opts ...stream.Option) ServiceOption {
	return func(s *Service) { s.aggOpts = append(s.aggOpts, opts...) }
}

// ─────────────────────────────────────────────────────────────────────────────
// NewService — factory
// ─────────────────────────────────────────────────────────────────────────────

// NewService builds the session service over a template registry.  A nil
// registry gets the built-in templates; a nil lexicon gets the built-in
// lexicon.
func NewService(registry *template.Registry, lex *lexicon.Lexicon, opts ...ServiceOption) *Service {
	if registry == nil {
		registry = template.NewBuiltinRegistry()
	}
	if lex == nil {
		lex = lexicon.Default()
	}
	s := &Service{
		sessions:  make(map[string]*session),
		registry:  registry,
		suggester: template.NewSuggester(registry, 0),
		lex:       lex,
		log:       logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ─────────────────────────────────────────────────────────────────────────────
// Session lifecycle
// ─────────────────────────────────────────────────────────────────────────────

// CreateSession starts a session bound to a registered template and returns
// the new session id.
func (s *Service) CreateSession(ctx context.Context, templateID string) (string, error) {
	def, err := s.registry.Get(templateID)
	if err != nil {
		return "", err
	}
	return s.createSession(def, uuid.New().String())
}

// CreateSessionWithTemplate starts a session bound to an ad-hoc template
// definition that need not be registered.
func (s *Service) CreateSessionWithTemplate(ctx context.Context, def template.Definition) (string, error) {
	return s.createSession(def, uuid.New().String())
}

func (s *Service) createSession(def template.Definition, id string) (string, error) {
	opts := make([]stream.Option, 0, len(s.aggOpts)+3)
	opts = append(opts, s.aggOpts...)
	opts = append(opts, stream.WithLogger(s.log.Named("engine")))
	if s.classifier != nil {
		opts = append(opts, stream.WithClassifier(s.classifier))
	}
	if s.observer != nil {
		opts = append(opts, stream.WithObserver(s.observer))
	}

	agg, err := stream.NewAggregator(def, s.lex, opts...)
	if err != nil {
		return "", err
	}

	sess := &session{
		id:          id,
		agg:         agg,
		createdAt:   time.Now().UTC(),
		lastUrgency: clinical.UrgencyLow,
	}
	s.mu.Lock()
	if _, exists := s.sessions[id]; exists {
		// Concurrent auto-creation for the same transcript stream; the
		// first engine wins.
		s.mu.Unlock()
		return id, nil
	}
	s.sessions[id] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SessionsCreatedTotal.WithLabelValues(def.ID).Inc()
		s.metrics.SessionsActive.WithLabelValues().Set(float64(count))
	}
	s.log.Info("session created",
		logging.String("session_id", id), logging.String("template_id", def.ID))
	return id, nil
}

func (s *Service) get(sessionID string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session not found").
			WithDetail("session=" + sessionID)
	}
	return sess, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Streaming operations
// ─────────────────────────────────────────────────────────────────────────────

// AddText folds a dictation chunk into the session and returns the updated
// snapshot.
func (s *Service) AddText(ctx context.Context, sessionID, text string) (clinical.StreamingAnalysisResult, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return clinical.StreamingAnalysisResult{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return clinical.StreamingAnalysisResult{}, errors.New(errors.ErrCodeSessionClosed, "session already closed")
	}

	result, err := sess.agg.AddText(ctx, text)
	if err != nil {
		return clinical.StreamingAnalysisResult{}, err
	}

	if s.metrics != nil {
		s.metrics.ChunksProcessedTotal.WithLabelValues("api").Inc()
	}
	s.afterMutation(ctx, sess, result)
	return result, nil
}

// afterMutation refreshes the cache and raises alerts.  Called with the
// session lock held.
func (s *Service) afterMutation(ctx context.Context, sess *session, result clinical.StreamingAnalysisResult) {
	if s.cache != nil {
		if err := s.cache.Save(ctx, sess.id, result); err != nil {
			s.log.Warn("snapshot cache save failed",
				logging.String("session_id", sess.id), logging.Err(err))
		}
	}

	if result.UrgencyLevel.Rank() > sess.lastUrgency.Rank() {
		prev := sess.lastUrgency
		sess.lastUrgency = result.UrgencyLevel
		if s.alerts != nil && result.UrgencyLevel.Rank() >= clinical.UrgencyHigh.Rank() {
			_, triggers := sess.agg.UrgencyState()
			alert := clinical.NewUrgentAlert(sess.id, result.UrgencyLevel, triggers)
			if err := s.alerts.PublishAlert(ctx, alert); err != nil {
				s.log.Error("urgent alert publish failed",
					logging.String("session_id", sess.id), logging.Err(err))
			} else {
				if s.metrics != nil {
					s.metrics.AlertsPublishedTotal.WithLabelValues(string(result.UrgencyLevel)).Inc()
				}
				s.log.Info("urgent alert published",
					logging.String("session_id", sess.id),
					logging.String("from", string(prev)),
					logging.String("to", string(result.UrgencyLevel)))
			}
		}
	}
}

// Snapshot returns the session snapshot, served from the cache when warm.
func (s *Service) Snapshot(ctx context.Context, sessionID string) (clinical.StreamingAnalysisResult, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return clinical.StreamingAnalysisResult{}, err
	}

	if s.cache != nil {
		if cached, err := s.cache.Load(ctx, sessionID); err == nil && cached != nil {
			return *cached, nil
		} else if err != nil {
			s.log.Warn("snapshot cache load failed",
				logging.String("session_id", sessionID), logging.Err(err))
		}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	result := sess.agg.Snapshot()
	if s.cache != nil {
		if err := s.cache.Save(ctx, sessionID, result); err != nil {
			s.log.Warn("snapshot cache save failed",
				logging.String("session_id", sessionID), logging.Err(err))
		}
	}
	return result, nil
}

// Flush force-processes any buffered unterminated text.
func (s *Service) Flush(ctx context.Context, sessionID string) (clinical.StreamingAnalysisResult, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return clinical.StreamingAnalysisResult{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return clinical.StreamingAnalysisResult{}, errors.New(errors.ErrCodeSessionClosed, "session already closed")
	}
	result := sess.agg.Flush(ctx)
	s.afterMutation(ctx, sess, result)
	return result, nil
}

// Reset clears all accumulated content while keeping the session and its
// template binding alive.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	sess, err := s.get(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.agg.Reset()
	sess.lastUrgency = clinical.UrgencyLow
	if s.metrics != nil {
		s.metrics.SessionResetsTotal.WithLabelValues().Inc()
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, sessionID); err != nil {
			s.log.Warn("snapshot cache invalidate failed",
				logging.String("session_id", sessionID), logging.Err(err))
		}
	}
	return nil
}

// CloseSession flushes, removes the session, and drops its cached snapshot.
// The final snapshot is returned to the caller.
func (s *Service) CloseSession(ctx context.Context, sessionID string) (clinical.StreamingAnalysisResult, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return clinical.StreamingAnalysisResult{}, err
	}

	sess.mu.Lock()
	result := sess.agg.Flush(ctx)
	sess.closed = true
	sess.mu.Unlock()

	s.mu.Lock()
	delete(s.sessions, sessionID)
	count := len(s.sessions)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SessionsActive.WithLabelValues().Set(float64(count))
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, sessionID); err != nil {
			s.log.Warn("snapshot cache invalidate failed",
				logging.String("session_id", sessionID), logging.Err(err))
		}
	}
	s.log.Info("session closed", logging.String("session_id", sessionID))
	return result, nil
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// SuggestTemplate scores all registered templates against free text.
func (s *Service) SuggestTemplate(ctx context.Context, text string) *clinical.TemplateSuggestion {
	return s.suggester.Suggest(text)
}

// Templates lists the registered template definitions.
func (s *Service) Templates() []template.Definition {
	return s.registry.List()
}

// ─────────────────────────────────────────────────────────────────────────────
// Transcript ingest
// ─────────────────────────────────────────────────────────────────────────────

// AddTranscriptChunk applies a transcript message from the ingest pipeline.
// Unknown sessions are auto-created against the default template; chunks
// arriving out of order are skipped because the analysis is order-dependent.
func (s *Service) AddTranscriptChunk(ctx context.Context, chunk clinical.TranscriptChunk) error {
	if chunk.SessionID == "" {
		return errors.InvalidParam("transcript chunk has no session id")
	}

	sess, err := s.get(chunk.SessionID)
	if errors.IsCode(err, errors.ErrCodeSessionNotFound) {
		def, regErr := s.registry.Get(DefaultTemplateID)
		if regErr != nil {
			return regErr
		}
		if _, cErr := s.createSession(def, chunk.SessionID); cErr != nil {
			return cErr
		}
		sess, err = s.get(chunk.SessionID)
	}
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return errors.New(errors.ErrCodeSessionClosed, "session already closed")
	}
	if chunk.Sequence != 0 && chunk.Sequence <= sess.lastSeq {
		s.log.Warn("out-of-order transcript chunk skipped",
			logging.String("session_id", chunk.SessionID),
			logging.Int64("sequence", chunk.Sequence),
			logging.Int64("last_sequence", sess.lastSeq))
		return nil
	}
	if chunk.Sequence != 0 {
		sess.lastSeq = chunk.Sequence
	}

	result, err := sess.agg.AddText(ctx, chunk.Text)
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.ChunksProcessedTotal.WithLabelValues("transcript").Inc()
	}
	s.afterMutation(ctx, sess, result)
	return nil
}

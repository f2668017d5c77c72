// Package stream implements the incremental analysis engine: it accepts
// dictated text chunk by chunk, segments it into sentences, classifies each
// sentence into a section of the bound template, extracts entities, and
// maintains the queryable session snapshot with monotonic confidence and
// urgency.
package stream

import (
	"context"
	"strings"
	"time"

	"github.com/donovanp007/medscribe/internal/analysis/extract"
	"github.com/donovanp007/medscribe/internal/analysis/score"
	"github.com/donovanp007/medscribe/internal/analysis/segment"
	"github.com/donovanp007/medscribe/internal/domain/lexicon"
	"github.com/donovanp007/medscribe/internal/domain/template"
	"github.com/donovanp007/medscribe/internal/infrastructure/monitoring/logging"
	"github.com/donovanp007/medscribe/pkg/errors"
	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

// DefaultSimilarityThreshold is the word-overlap ratio at or above which a
// new fragment is treated as a restatement of an existing one.
const DefaultSimilarityThreshold = 0.8

// DefaultReevalIntervalChars is how much accumulated text must grow before
// the whole text is re-scanned for red flags, in addition to the
// per-sentence scan.
const DefaultReevalIntervalChars = 100

// Observer receives analysis events as they happen.  All methods are called
// with the aggregator lock held and must not block.
type Observer interface {
	SentenceAssigned(sectionID string)
	SentenceDropped()
	EntityExtracted(entityType clinical.EntityType)
	UrgencyEscalated(from, to clinical.UrgencyLevel)
}

// ─────────────────────────────────────────────────────────────────────────────
// Options
// ─────────────────────────────────────────────────────────────────────────────

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClassifier routes sentence assignment through an external classifier,
// falling back to local scoring when it fails.
func WithClassifier(c score.Classifier) Option {
	return func(a *Aggregator) { a.classifier = c }
}

// WithLogger sets the aggregator logger.
func WithLogger(log logging.Logger) Option {
	return func(a *Aggregator) { a.log = log }
}

// WithObserver registers an analysis event observer.
func WithObserver(o Observer) Option {
	return func(a *Aggregator) { a.observer = o }
}

// WithSimilarityThreshold overrides the duplicate-detection threshold.
func WithSimilarityThreshold(t float64) Option {
	return func(a *Aggregator) {
		if t > 0 {
			a.simThreshold = t
		}
	}
}

// WithReevalInterval overrides the full-text red-flag re-scan interval.
func WithReevalInterval(chars int) Option {
	return func(a *Aggregator) {
		if chars > 0 {
			a.reevalInterval = chars
		}
	}
}

// WithSegmenter overrides the sentence segmenter.
func WithSegmenter(s *segment.Segmenter) Option {
	return func(a *Aggregator) { a.segmenter = s }
}

// WithScorer overrides the local scorer.
func WithScorer(s *score.Scorer) Option {
	return func(a *Aggregator) { a.scorer = s }
}

// sectionState is the mutable accumulation for one template section.
type sectionState struct {
	section     template.Section
	fragments   []string
	confidence  float64
	entities    []clinical.Entity
	entityKeys  map[string]struct{}
	lastUpdated time.Time
}

// ─────────────────────────────────────────────────────────────────────────────
// Aggregator — single-session streaming analysis state
// ─────────────────────────────────────────────────────────────────────────────

// Aggregator is the single-session analysis engine.  It is not safe for
// concurrent use; the session layer serialises access per session.
type Aggregator struct {
	def        template.Definition
	segmenter  *segment.Segmenter
	extractor  *extract.Extractor
	scorer     *score.Scorer
	classifier score.Classifier
	lex        *lexicon.Lexicon
	log        logging.Logger
	observer   Observer

	simThreshold   float64
	reevalInterval int

	text        strings.Builder
	pending     string
	sections    map[string]*sectionState
	urgency     clinical.UrgencyLevel
	triggers    []string
	actions     []clinical.SuggestedAction
	actionSeen  map[clinical.SuggestedActionType]struct{}
	medications map[string]struct{}
	lastScanLen int
}

// NewAggregator binds a validated template definition and returns a fresh
// engine.  A nil lexicon falls back to the built-in one.
func NewAggregator(def template.Definition, lex *lexicon.Lexicon, opts ...Option) (*Aggregator, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if lex == nil {
		lex = lexicon.Default()
	}

	a := &Aggregator{
		def:            def,
		lex:            lex,
		log:            logging.NewNopLogger(),
		simThreshold:   DefaultSimilarityThreshold,
		reevalInterval: DefaultReevalIntervalChars,
		sections:       make(map[string]*sectionState, len(def.Sections)),
		urgency:        clinical.UrgencyLow,
		actionSeen:     make(map[clinical.SuggestedActionType]struct{}),
		medications:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.segmenter == nil {
		a.segmenter = segment.NewSegmenter(0)
	}
	if a.extractor == nil {
		a.extractor = extract.NewExtractor(lex)
	}
	if a.scorer == nil {
		a.scorer = score.NewScorer(lex, 0)
	}

	for _, s := range def.Sections {
		a.sections[s.ID] = &sectionState{
			section:    s,
			entityKeys: make(map[string]struct{}),
		}
	}
	return a, nil
}

// Definition returns the bound template definition.
func (a *Aggregator) Definition() template.Definition {
	return a.def
}

// ─────────────────────────────────────────────────────────────────────────────
// Streaming operations
// ─────────────────────────────────────────────────────────────────────────────

// AddText folds a dictation chunk into the session and returns the updated
// snapshot.  An empty or whitespace-only chunk is a no-op that returns the
// current snapshot.  Unterminated trailing text is buffered until the next
// chunk or an explicit Flush completes it.
func (a *Aggregator) AddText(ctx context.Context, chunk string) (clinical.StreamingAnalysisResult, error) {
	if strings.TrimSpace(chunk) == "" {
		return a.snapshot(), nil
	}

	a.text.WriteString(chunk)
	a.pending += chunk

	sentences, rest := a.segmenter.SegmentIncremental(a.pending)
	a.pending = rest

	for _, sentence := range sentences {
		a.processSentence(ctx, sentence)
	}
	a.rescanIfDue()
	a.updateActions()

	return a.snapshot(), nil
}

// Flush force-processes the buffered unterminated tail, treating it as a
// complete sentence when it meets the minimum length, and returns the
// resulting snapshot.
func (a *Aggregator) Flush(ctx context.Context) clinical.StreamingAnalysisResult {
	tail := strings.TrimSpace(a.pending)
	a.pending = ""
	if len([]rune(tail)) >= a.segmenter.MinLength() {
		a.processSentence(ctx, tail)
		a.updateActions()
	}
	return a.snapshot()
}

// Snapshot returns the current analysis state without mutating it.
func (a *Aggregator) Snapshot() clinical.StreamingAnalysisResult {
	return a.snapshot()
}

// UrgencyState returns the current urgency level and the red-flag phrases
// that produced it.
func (a *Aggregator) UrgencyState() (clinical.UrgencyLevel, []string) {
	triggers := make([]string, len(a.triggers))
	copy(triggers, a.triggers)
	return a.urgency, triggers
}

// Reset discards all accumulated content and derived state while keeping
// the template binding.
func (a *Aggregator) Reset() {
	a.text.Reset()
	a.pending = ""
	a.urgency = clinical.UrgencyLow
	a.triggers = nil
	a.actions = nil
	a.actionSeen = make(map[clinical.SuggestedActionType]struct{})
	a.medications = make(map[string]struct{})
	a.lastScanLen = 0
	for id, st := range a.sections {
		a.sections[id] = &sectionState{
			section:    st.section,
			entityKeys: make(map[string]struct{}),
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Internal pipeline
// ─────────────────────────────────────────────────────────────────────────────

func (a *Aggregator) processSentence(ctx context.Context, sentence string) {
	assignment := a.classify(ctx, sentence)
	entities := a.extractor.Extract(sentence)
	a.escalate(EvaluateUrgency(sentence, a.lex))

	for _, e := range entities {
		if e.Type == clinical.EntityMedication {
			a.medications[strings.ToLower(e.Text)] = struct{}{}
		}
		if a.observer != nil {
			a.observer.EntityExtracted(e.Type)
		}
	}

	if assignment == nil {
		// Unassignable sentences stay in the accumulated text but are not
		// attached to any section.
		if a.observer != nil {
			a.observer.SentenceDropped()
		}
		a.log.Debug("sentence below assignment floor", logging.String("sentence", sentence))
		return
	}

	st := a.sections[assignment.SectionID]
	if st == nil {
		a.log.Warn("classifier returned unknown section",
			logging.String("section_id", assignment.SectionID))
		if a.observer != nil {
			a.observer.SentenceDropped()
		}
		return
	}

	now := time.Now().UTC()
	for _, existing := range st.fragments {
		if WordOverlapSimilarity(existing, sentence) >= a.simThreshold {
			// Restatement: no new fragment, but confidence stays monotonic
			// and the timestamp advances.
			if assignment.Confidence > st.confidence {
				st.confidence = assignment.Confidence
			}
			st.lastUpdated = now
			a.mergeEntities(st, entities)
			return
		}
	}

	st.fragments = append(st.fragments, sentence)
	if assignment.Confidence > st.confidence {
		st.confidence = assignment.Confidence
	}
	st.lastUpdated = now
	a.mergeEntities(st, entities)
	if a.observer != nil {
		a.observer.SentenceAssigned(assignment.SectionID)
	}
}

// classify routes assignment through the external classifier when one is
// configured, falling back to the local scorer on any failure.
func (a *Aggregator) classify(ctx context.Context, sentence string) *score.Assignment {
	if a.classifier == nil {
		return a.scorer.AssignBestSection(sentence, a.def)
	}

	sectionID, confidence, err := a.classifier.Classify(ctx, sentence, a.def.SectionIDs())
	if err != nil {
		a.log.Warn("assist classification failed, using local scorer",
			logging.Err(err), logging.String("code", string(errors.GetCode(err))))
		return a.scorer.AssignBestSection(sentence, a.def)
	}
	if sectionID == "" || confidence < a.scorer.Floor() {
		return nil
	}
	if _, ok := a.sections[sectionID]; !ok {
		a.log.Warn("assist returned section outside template",
			logging.String("section_id", sectionID))
		return a.scorer.AssignBestSection(sentence, a.def)
	}
	return &score.Assignment{SectionID: sectionID, Confidence: confidence}
}

// mergeEntities appends entities the section has not seen before, keyed by
// (type, lowercased text).  The first occurrence wins.
func (a *Aggregator) mergeEntities(st *sectionState, entities []clinical.Entity) {
	for _, e := range entities {
		key := string(e.Type) + "\x00" + strings.ToLower(e.Text)
		if _, seen := st.entityKeys[key]; seen {
			continue
		}
		st.entityKeys[key] = struct{}{}
		st.entities = append(st.entities, e)
	}
}

// rescanIfDue re-evaluates the whole accumulated text against the red-flag
// lexicon once enough new text has arrived.  The per-sentence scan catches
// phrases inside one sentence; the full scan catches phrases the segmenter
// split across sentence boundaries.
func (a *Aggregator) rescanIfDue() {
	if a.text.Len()-a.lastScanLen < a.reevalInterval {
		return
	}
	a.lastScanLen = a.text.Len()
	a.escalate(EvaluateUrgency(a.text.String(), a.lex))
}

// escalate applies a monotonic urgency update.  Matched phrases are
// recorded even when the level does not rise, so the trigger list stays
// complete as new red flags accumulate at or below the current level.
func (a *Aggregator) escalate(level clinical.UrgencyLevel, matched []string) {
	for _, m := range matched {
		if !containsString(a.triggers, m) {
			a.triggers = append(a.triggers, m)
		}
	}
	next := clinical.MaxUrgency(a.urgency, level)
	if next == a.urgency {
		return
	}
	if a.observer != nil {
		a.observer.UrgencyEscalated(a.urgency, next)
	}
	a.log.Info("urgency escalated",
		logging.String("from", string(a.urgency)), logging.String("to", string(next)))
	a.urgency = next
}

// updateActions derives rule-based suggested actions from current state.
// Each action type is raised at most once per session.
func (a *Aggregator) updateActions() {
	if a.urgency.Rank() >= clinical.UrgencyHigh.Rank() {
		a.addAction(clinical.ActionUrgentReview,
			"Red-flag findings present; review this patient urgently.", 0.9)
	}
	if len(a.medications) >= 2 {
		a.addAction(clinical.ActionMedicationReview,
			"Multiple medications dictated; review for interactions.", 0.7)
	}
	for _, st := range a.sections {
		if st.section.Type == clinical.SectionPlan && len(st.fragments) > 0 {
			a.addAction(clinical.ActionFollowUp,
				"A management plan was dictated; confirm follow-up is scheduled.", 0.6)
			break
		}
	}
}

func (a *Aggregator) addAction(typ clinical.SuggestedActionType, text string, confidence float64) {
	if _, seen := a.actionSeen[typ]; seen {
		return
	}
	a.actionSeen[typ] = struct{}{}
	a.actions = append(a.actions, clinical.NewSuggestedAction(typ, text, confidence))
}

func (a *Aggregator) snapshot() clinical.StreamingAnalysisResult {
	sections := make(map[string]clinical.SectionSnapshot, len(a.sections))
	populated := 0
	for id, st := range a.sections {
		snap := clinical.SectionSnapshot{
			SectionID:   id,
			Title:       st.section.Title,
			Fragments:   append([]string(nil), st.fragments...),
			Confidence:  st.confidence,
			Entities:    append([]clinical.Entity(nil), st.entities...),
			LastUpdated: st.lastUpdated,
		}
		if snap.Populated() {
			populated++
		}
		sections[id] = snap
	}

	completeness := 0.0
	if len(a.sections) > 0 {
		completeness = float64(populated) / float64(len(a.sections))
	}

	return clinical.StreamingAnalysisResult{
		Text:             a.text.String(),
		Sections:         sections,
		SuggestedActions: append([]clinical.SuggestedAction(nil), a.actions...),
		UrgencyLevel:     a.urgency,
		Completeness:     completeness,
		GeneratedAt:      time.Now().UTC(),
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

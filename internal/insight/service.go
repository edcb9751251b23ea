// Package insight generates written analyses of a person's journal with a language
// model and caches them in the local store.
package insight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MyAgentHubs/logifyer/internal/db"
)

// KindPersonInsights is the cache kind of person analyses.
const KindPersonInsights = "person_insights"

// Token limits per request kind.
const (
	InsightMaxTokens = 300
	ScriptMaxTokens  = 600
)

// DefaultCacheTTL is how long a generated analysis stays valid.
const DefaultCacheTTL = 24 * time.Hour

// ErrNoIncidents is returned when a script is requested without any usable incidents.
var ErrNoIncidents = errors.New("no incidents selected")

// Completer turns a system and user prompt into text.
type Completer interface {
	Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error)
}

// Result is a generated or cached analysis.
type Result struct {
	Content     string    `json:"content"`
	Cached      bool      `json:"cached"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Service generates insights for people in one local store.
type Service struct {
	store     *db.DB
	completer Completer
	ttl       time.Duration
	maxTokens int
	log       *slog.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCacheTTL sets how long analyses are cached; non-positive keeps the default.
func WithCacheTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithMaxTokens caps analysis length; non-positive keeps the default.
func WithMaxTokens(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock replaces time.Now.
func WithClock(fn func() time.Time) Option {
	return func(s *Service) { s.now = fn }
}

// NewService returns a Service over store using c for generation.
func NewService(store *db.DB, c Completer, opts ...Option) *Service {
	s := &Service{
		store:     store,
		completer: c,
		ttl:       DefaultCacheTTL,
		maxTokens: InsightMaxTokens,
		log:       slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PersonInsights returns an analysis of a person's journal. A cached analysis is reused
// while it is unexpired and the person's incident count has not changed, unless force is set.
func (s *Service) PersonInsights(ctx context.Context, personID int64, force bool) (Result, error) {
	person, err := s.store.GetPerson(ctx, personID)
	if err != nil {
		return Result{}, err
	}
	incidents, err := s.store.ListIncidentsByPerson(ctx, personID)
	if err != nil {
		return Result{}, err
	}
	now := s.now()

	if !force {
		cached, err := s.store.CachedInsight(ctx, personID, KindPersonInsights, now)
		if err != nil {
			return Result{}, err
		}
		if cached != nil && cached.IncidentCount == len(incidents) {
			s.log.Debug("insight cache hit", "person", personID)
			return Result{Content: cached.Content, Cached: true, GeneratedAt: cached.CreatedAt}, nil
		}
	}

	total, err := s.store.PersonScore(ctx, personID, now)
	if err != nil {
		return Result{}, err
	}
	content, err := s.completer.Complete(ctx, analystSystem, analysisPrompt(person.Name, total, incidents), s.maxTokens)
	if err != nil {
		return Result{}, fmt.Errorf("generate insights: %w", err)
	}

	rec := db.InsightRecord{
		PersonID:      personID,
		Kind:          KindPersonInsights,
		Content:       content,
		IncidentCount: len(incidents),
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.ttl),
	}
	if _, err := s.store.SaveInsight(ctx, rec); err != nil {
		// The analysis is still usable without the cache entry.
		s.log.Warn("failed to cache insight", "person", personID, "error", err)
	}
	s.log.Info("insight generated", "person", personID, "incidents", len(incidents))
	return Result{Content: content, GeneratedAt: now}, nil
}

// ConfrontationScript drafts a conversation plan about the selected incidents of a person.
// Ids that do not belong to the person are ignored. Scripts are not cached.
func (s *Service) ConfrontationScript(ctx context.Context, personID int64, incidentIDs []int64) (string, error) {
	person, err := s.store.GetPerson(ctx, personID)
	if err != nil {
		return "", err
	}
	all, err := s.store.ListIncidentsByPerson(ctx, personID)
	if err != nil {
		return "", err
	}

	byID := make(map[int64]db.Incident, len(all))
	for _, inc := range all {
		byID[inc.ID] = inc
	}
	var selected []db.Incident
	for _, id := range incidentIDs {
		if inc, ok := byID[id]; ok {
			selected = append(selected, inc)
		}
	}
	if len(selected) == 0 {
		return "", ErrNoIncidents
	}

	content, err := s.completer.Complete(ctx, coachSystem, scriptPrompt(person.Name, selected), ScriptMaxTokens)
	if err != nil {
		return "", fmt.Errorf("generate script: %w", err)
	}
	return content, nil
}

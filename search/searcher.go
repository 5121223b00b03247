package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tanoret/validation-databse/core"
)

// DefaultTopK is the result count used when the caller passes topK <= 0.
const DefaultTopK = 10

// Mode identifies which scorer produced a result set. A degraded (lexical)
// set must be distinguishable from a semantic one so the caller can disclose
// which mode produced the ranking.
type Mode string

const (
	ModeSemantic Mode = "semantic"
	ModeLexical  Mode = "lexical"
)

// ResultSet is an ordered search response. Scores are comparable only
// within this set.
type ResultSet struct {
	Mode Mode
	Hits []*core.SearchResult
}

// Searcher orchestrates hybrid retrieval over a validation database:
// semantic scoring when a SemanticScorer is attached and healthy, lexical
// TF-IDF otherwise. It is the only component permitted to trigger external
// embedding calls.
type Searcher struct {
	db       *core.Database
	lexical  *LexicalIndex
	semantic *SemanticScorer
	resolver *Resolver
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithSemanticScorer attaches the optional semantic scorer. Without it the
// searcher ranks lexically only.
func WithSemanticScorer(scorer *SemanticScorer) Option {
	return func(s *Searcher) error {
		s.semantic = scorer
		return nil
	}
}

// NewSearcher creates a searcher over the database. The lexical index is
// built eagerly so the fallback path can never be missing at query time.
func NewSearcher(db *core.Database, opts ...Option) (*Searcher, error) {
	if db == nil {
		return nil, ErrDatabaseRequired
	}

	resolver, err := NewResolver(db)
	if err != nil {
		return nil, err
	}

	s := &Searcher{
		db:       db,
		lexical:  BuildLexicalIndex(db),
		resolver: resolver,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Semantic reports whether a semantic scorer is attached.
func (s *Searcher) Semantic() bool {
	return s.semantic != nil
}

// candidates resolves filters to the set of case ids eligible for scoring.
// Nil filters yield a nil set, which scorers treat as "all cases".
func (s *Searcher) candidates(filters *Filters) (map[string]bool, error) {
	if filters == nil {
		return nil, nil
	}
	allowed := make(map[string]bool)
	for _, id := range s.db.CaseIds() {
		c, err := s.db.GetCase(id)
		if err != nil {
			return nil, err
		}
		if filters.Matches(c) {
			allowed[id] = true
		}
	}
	return allowed, nil
}

// Search returns the topK most relevant cases for the query, each with its
// resolved citations. topK <= 0 selects DefaultTopK; values beyond the
// database size are clamped. Fewer than topK hits is not an error.
func (s *Searcher) Search(ctx context.Context, query string, topK int) (*ResultSet, error) {
	return s.search(ctx, query, topK, nil, nil)
}

// SearchFiltered is Search restricted to cases matching the filters. The
// candidate set is fixed before scoring, in either mode; a query can never
// surface a filtered-out case. Nil filters match every case.
func (s *Searcher) SearchFiltered(ctx context.Context, query string, topK int, filters *Filters) (*ResultSet, error) {
	return s.search(ctx, query, topK, filters, nil)
}

// SearchWithMonitor is Search with observation hooks at each stage.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, topK int, monitor SearchMonitor) (*ResultSet, error) {
	return s.search(ctx, query, topK, nil, monitor)
}

// search runs one retrieval pass.
//
// Scorer selection is strict preemption with a single fallback: semantic if
// attached, and on any semantic failure the same query is rescored
// lexically. A result set never mixes scores from both modes. If the
// lexical path fails too, the query fails with ErrSearchUnavailable.
func (s *Searcher) search(ctx context.Context, query string, topK int, filters *Filters, monitor SearchMonitor) (*ResultSet, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if strings.TrimSpace(query) == "" {
		return nil, ErrInvalidQuery
	}

	monitor.Start(query)

	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > s.db.Len() {
		topK = s.db.Len()
	}

	allowed, err := s.candidates(filters)
	if err != nil {
		return nil, err
	}

	mode := ModeLexical
	var matches []match
	if s.semantic != nil {
		mode = ModeSemantic
		monitor.ScorerSelected(mode)

		matches, err = s.semantic.score(ctx, query, allowed)
		if err != nil {
			// Degrade for this query only; the scorer stays attached.
			s.logger.Warn("semantic scoring failed, falling back to lexical", "query", query, "err", err)
			monitor.Degraded(err)
			mode = ModeLexical
		}
	}

	if mode == ModeLexical {
		monitor.ScorerSelected(mode)
		if s.lexical == nil {
			return nil, fmt.Errorf("%w: lexical index not built", ErrSearchUnavailable)
		}
		matches = s.lexical.score(query, allowed)
	}
	monitor.AfterScoring(mode, len(matches))

	if len(matches) > topK {
		matches = matches[:topK]
	}

	results := make([]*core.SearchResult, 0, len(matches))
	for i, m := range matches {
		c, err := s.db.GetCase(m.CaseId)
		if err != nil {
			// Scorers only emit ids taken from the database.
			s.logger.Error("scored case missing from database", "caseId", m.CaseId, "err", err)
			continue
		}
		results = append(results, &core.SearchResult{
			Case:      c,
			Score:     m.Score,
			Rank:      i + 1,
			Citations: s.resolver.Resolve(c),
		})
	}
	monitor.AfterProvenance(results)

	set := &ResultSet{Mode: mode, Hits: results}
	monitor.Finish(set)
	return set, nil
}

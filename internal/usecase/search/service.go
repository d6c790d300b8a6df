// Package search implements the hybrid dish search: ingredient pre-filter,
// lexical and vector retrieval channels, RRF fusion, per-dish grouping.
package search

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/greenplate/myfridge/internal/domain/document"
	"github.com/greenplate/myfridge/internal/domain/search/mode"
	"github.com/greenplate/myfridge/internal/domain/search/request"
	"github.com/greenplate/myfridge/internal/domain/search/result"
)

// DefaultCandidateWindow bounds each retrieval channel before fusion.
const DefaultCandidateWindow = 50

// Service handles dish search across its degradation ladder: hybrid,
// lexical-only (no embedder), filter-only (no query text).
type Service struct {
	repo      Repository
	embed     Embedder // nil when the provider is disabled
	window    int
	modeTotal *prometheus.CounterVec
	logger    *zap.Logger
}

// New creates a search service. embed may be nil; the service then serves
// lexical search only.
func New(repo Repository, embed Embedder, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		embed:  embed,
		window: DefaultCandidateWindow,
		logger: logger,
	}
}

// WithWindow overrides the per-channel candidate window.
func (s *Service) WithWindow(n int) *Service {
	if n > 0 {
		s.window = n
	}
	return s
}

// WithModeCounter attaches a counter vec with label "mode"
// (hybrid / lexical_only / filter_only / empty).
func (s *Service) WithModeCounter(c *prometheus.CounterVec) *Service {
	s.modeTotal = c
	return s
}

// Search runs the full pipeline and returns dish groups plus the total number
// of matched dishes before size truncation.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]result.Group, int, error) {
	if req.IsEmpty() {
		// fail-fast: nothing to search by, no store round-trip
		s.countMode("empty")
		return []result.Group{}, 0, nil
	}

	var hits []result.Hit
	var err error

	if req.Query() == "" {
		hits, err = s.repo.SearchFilterOnly(ctx, req.Filter(), s.window)
		if err != nil {
			return nil, 0, err
		}
		s.countMode("filter_only")
	} else {
		hits, err = s.searchRanked(ctx, req)
		if err != nil {
			return nil, 0, err
		}
	}

	// The index pre-filter for RATIO is disjunctive; the exact overlap
	// threshold is applied here over the returned ingredient lists.
	if f := req.Filter(); !f.IsZero() && f.Mode() == mode.Ratio {
		filtered := hits[:0]
		for _, h := range hits {
			if f.Matches(h.Ingredients()) {
				filtered = append(filtered, h)
			}
		}
		hits = filtered
	}

	groups := groupByDish(hits, req.TopKPerDish())
	total := len(groups)
	if len(groups) > req.Size() {
		groups = groups[:req.Size()]
	}

	return groups, total, nil
}

// searchRanked runs the lexical channel plus, when an embedder is available,
// the two KNN channels, and fuses them with RRF.
func (s *Service) searchRanked(ctx context.Context, req *request.Request) ([]result.Hit, error) {
	queryVec := s.embedQuery(ctx, req.Query())

	channels := make([][]result.Hit, 3)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hits, err := s.repo.SearchLexical(gctx, req.Query(), req.Filter(), s.window)
		if err != nil {
			return fmt.Errorf("lexical channel: %w", err)
		}
		channels[0] = hits
		return nil
	})
	if queryVec != nil {
		g.Go(func() error {
			hits, err := s.repo.SearchVector(
				gctx, document.CoreVectorField, queryVec, req.Filter(), s.window)
			if err != nil {
				return fmt.Errorf("core vector channel: %w", err)
			}
			channels[1] = hits
			return nil
		})
		g.Go(func() error {
			hits, err := s.repo.SearchVector(
				gctx, document.ContextVectorField, queryVec, req.Filter(), s.window)
			if err != nil {
				return fmt.Errorf("context vector channel: %w", err)
			}
			channels[2] = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if queryVec == nil {
		s.countMode("lexical_only")
		return channels[0], nil
	}

	s.countMode("hybrid")
	return fuseRRF(channels, s.window), nil
}

// embedQuery returns the query embedding, or nil when vector search has to be
// skipped. A failing provider degrades the request instead of failing it.
func (s *Service) embedQuery(ctx context.Context, query string) []float32 {
	if s.embed == nil {
		return nil
	}
	res, err := s.embed.Embed(ctx, query)
	if err != nil {
		s.logger.Warn("Embedding unavailable, degrading to lexical-only search",
			zap.Error(err))
		return nil
	}
	return res.Embedding
}

func (s *Service) countMode(m string) {
	if s.modeTotal != nil {
		s.modeTotal.WithLabelValues(m).Inc()
	}
}

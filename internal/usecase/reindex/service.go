// Package reindex implements the batch pipeline that rebuilds the search
// index from the relational catalog.
package reindex

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/greenplate/myfridge/internal/domain"
	"github.com/greenplate/myfridge/internal/domain/catalog"
	"github.com/greenplate/myfridge/internal/domain/document"
	domreindex "github.com/greenplate/myfridge/internal/domain/reindex"
)

// Pipeline defaults.
const (
	DefaultBatchSize  = 200
	DefaultBatchDelay = 100 * time.Millisecond
)

// Connectivity backoff before a run: 6 attempts, 250ms base, ×1.5, capped at 2s.
const (
	backoffAttempts = 6
	backoffBase     = 250 * time.Millisecond
	backoffFactor   = 1.5
	backoffCap      = 2 * time.Second
)

// Metrics are the pipeline counters, all optional.
type Metrics struct {
	// Documents carries label "result": indexed / skipped / vectorless.
	Documents *prometheus.CounterVec
	// Runs carries label "outcome": completed / failed_partial.
	Runs *prometheus.CounterVec
	// FailedBatches counts batches whose bulk write failed.
	FailedBatches prometheus.Counter
}

// Service runs the reindex pipeline as a single background goroutine and
// exposes its observable state.
type Service struct {
	catalog Catalog
	index   Index
	pinger  Pinger
	embed   BatchEmbedder // nil builds a vectorless (lexical-only) index
	logger  *zap.Logger

	batchSize int
	delay     time.Duration
	metrics   Metrics

	mu      sync.Mutex
	running bool
	report  domreindex.Report
}

// New creates a reindex service. embed may be nil.
func New(cat Catalog, idx Index, pinger Pinger, embed BatchEmbedder, logger *zap.Logger) *Service {
	return &Service{
		catalog:   cat,
		index:     idx,
		pinger:    pinger,
		embed:     embed,
		logger:    logger,
		batchSize: DefaultBatchSize,
		delay:     DefaultBatchDelay,
		report:    domreindex.Report{State: domreindex.StateIdle},
	}
}

// WithBatchSize overrides the recipe batch size.
func (s *Service) WithBatchSize(n int) *Service {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// WithDelay overrides the pause between batches.
func (s *Service) WithDelay(d time.Duration) *Service {
	if d >= 0 {
		s.delay = d
	}
	return s
}

// WithMetrics attaches pipeline counters.
func (s *Service) WithMetrics(m Metrics) *Service {
	s.metrics = m
	return s
}

// Trigger starts a run in the background. Exactly one run may be in flight;
// a concurrent trigger returns domain.ErrReindexRunning.
func (s *Service) Trigger(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return domain.ErrReindexRunning
	}
	s.running = true
	s.report = domreindex.Report{
		State:     domreindex.StateRunning,
		StartedAt: time.Now().UTC(),
	}
	s.mu.Unlock()

	// The run must outlive the triggering request.
	go s.run(context.WithoutCancel(ctx))
	return nil
}

// Status returns a snapshot of the current or last run.
func (s *Service) Status() domreindex.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

func (s *Service) run(ctx context.Context) {
	s.logger.Info("Reindex started",
		zap.Int("batch_size", s.batchSize),
		zap.Duration("batch_delay", s.delay),
		zap.Bool("vectorless", s.embed == nil))

	if err := s.prepare(ctx); err != nil {
		s.logger.Error("Reindex aborted", zap.Error(err))
		s.finish(true)
		return
	}

	hadFatal := false
	offset := 0
	for {
		recipes, err := s.catalog.RecipePage(ctx, offset, s.batchSize)
		if err != nil {
			s.logger.Error("Reindex catalog read failed",
				zap.Int("offset", offset), zap.Error(err))
			s.addFailedBatch()
			hadFatal = true
			break
		}
		if len(recipes) == 0 {
			break
		}

		s.processBatch(ctx, recipes)

		if len(recipes) < s.batchSize {
			// short page is the last page
			break
		}
		offset += s.batchSize
		time.Sleep(s.delay)
	}

	if err := s.index.Refresh(ctx); err != nil {
		s.logger.Error("Reindex final refresh failed", zap.Error(err))
		hadFatal = true
	}

	if n, err := s.index.Count(ctx); err != nil {
		s.logger.Warn("Index document count unavailable", zap.Error(err))
	} else {
		s.addCounts(func(r *domreindex.Report) { r.Documents = n })
	}

	s.finish(hadFatal)
}

// prepare waits for the index store with bounded exponential backoff, then
// establishes the replace boundary: index present, previous documents gone.
func (s *Service) prepare(ctx context.Context) error {
	var lastErr error
	delay := backoffBase
	for attempt := 1; attempt <= backoffAttempts; attempt++ {
		lastErr = s.pinger.Ping(ctx)
		if lastErr == nil {
			break
		}
		s.logger.Warn("Index store not ready",
			zap.Int("attempt", attempt), zap.Error(lastErr))
		if attempt == backoffAttempts {
			return fmt.Errorf("index store unreachable after %d attempts: %w",
				backoffAttempts, lastErr)
		}
		time.Sleep(delay)
		delay = time.Duration(float64(delay) * backoffFactor)
		if delay > backoffCap {
			delay = backoffCap
		}
	}

	if err := s.index.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}

	deleted, err := s.index.DeleteAll(ctx)
	if err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	s.logger.Info("Cleared previous documents", zap.Int("deleted", deleted))
	return nil
}

// processBatch flattens, embeds and writes one page of recipes. Failures
// degrade or skip; they never stop the loop.
func (s *Service) processBatch(ctx context.Context, recipes []catalog.Recipe) {
	docs := make([]document.Document, 0, len(recipes))
	skipped := 0
	for i := range recipes {
		doc, err := document.Derive(recipes[i].Dish, &recipes[i])
		if err != nil {
			s.logger.Warn("Skipping recipe",
				zap.Uint("recipe_id", recipes[i].ID), zap.Error(err))
			skipped++
			continue
		}
		docs = append(docs, doc)
	}

	s.addCounts(func(r *domreindex.Report) {
		r.Processed += len(recipes)
		r.Skipped += skipped
	})
	s.countDocuments("skipped", skipped)

	if len(docs) == 0 {
		return
	}

	if s.embed != nil {
		if err := s.embedBatch(ctx, docs); err != nil {
			// documents stay searchable lexically; vectors are lost for this batch
			s.logger.Warn("Batch embedding failed, indexing without vectors",
				zap.Int("documents", len(docs)), zap.Error(err))
			s.addCounts(func(r *domreindex.Report) { r.Vectorless += len(docs) })
			s.countDocuments("vectorless", len(docs))
		}
	}

	if err := s.index.BulkIndex(ctx, docs); err != nil {
		s.logger.Error("Bulk index failed",
			zap.Int("documents", len(docs)), zap.Error(err))
		s.addFailedBatch()
		return
	}

	s.addCounts(func(r *domreindex.Report) { r.Indexed += len(docs) })
	s.countDocuments("indexed", len(docs))
}

// embedBatch attaches both vectors to every document: one provider call for
// the core identity texts, one for the context texts.
func (s *Service) embedBatch(ctx context.Context, docs []document.Document) error {
	coreTexts := make([]string, len(docs))
	contextTexts := make([]string, len(docs))
	for i := range docs {
		coreTexts[i] = docs[i].CoreIdentityText()
		contextTexts[i] = docs[i].ContextText()
	}

	coreRes, err := s.embed.BatchEmbed(ctx, coreTexts)
	if err != nil {
		return fmt.Errorf("embed core texts: %w", err)
	}
	contextRes, err := s.embed.BatchEmbed(ctx, contextTexts)
	if err != nil {
		return fmt.Errorf("embed context texts: %w", err)
	}
	if len(coreRes.Embeddings) != len(docs) || len(contextRes.Embeddings) != len(docs) {
		return fmt.Errorf("provider returned %d/%d embeddings for %d documents: %w",
			len(coreRes.Embeddings), len(contextRes.Embeddings), len(docs),
			domain.ErrEmbeddingProviderError)
	}

	for i := range docs {
		if err := docs[i].SetVectors(coreRes.Embeddings[i], contextRes.Embeddings[i]); err != nil {
			return fmt.Errorf("document %s: %w", docs[i].ID(), err)
		}
	}
	return nil
}

func (s *Service) finish(hadFatal bool) {
	s.mu.Lock()
	s.report.FinishedAt = time.Now().UTC()
	if hadFatal || s.report.FailedBatches > 0 {
		s.report.State = domreindex.StateFailedPartial
	} else {
		s.report.State = domreindex.StateCompleted
	}
	report := s.report
	s.running = false
	s.mu.Unlock()

	outcome := "completed"
	if report.State == domreindex.StateFailedPartial {
		outcome = "failed_partial"
	}
	if s.metrics.Runs != nil {
		s.metrics.Runs.WithLabelValues(outcome).Inc()
	}

	s.logger.Info("Reindex finished",
		zap.String("state", string(report.State)),
		zap.Int("processed", report.Processed),
		zap.Int("indexed", report.Indexed),
		zap.Int("skipped", report.Skipped),
		zap.Int("vectorless", report.Vectorless),
		zap.Int("failed_batches", report.FailedBatches),
		zap.Int("documents", report.Documents),
		zap.Duration("took", report.FinishedAt.Sub(report.StartedAt)))
}

func (s *Service) addCounts(apply func(*domreindex.Report)) {
	s.mu.Lock()
	apply(&s.report)
	s.mu.Unlock()
}

func (s *Service) addFailedBatch() {
	s.addCounts(func(r *domreindex.Report) { r.FailedBatches++ })
	if s.metrics.FailedBatches != nil {
		s.metrics.FailedBatches.Inc()
	}
}

func (s *Service) countDocuments(result string, n int) {
	if s.metrics.Documents != nil && n > 0 {
		s.metrics.Documents.WithLabelValues(result).Add(float64(n))
	}
}

package reindex

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/greenplate/myfridge/internal/domain"
	"github.com/greenplate/myfridge/internal/domain/catalog"
	"github.com/greenplate/myfridge/internal/domain/document"
	domreindex "github.com/greenplate/myfridge/internal/domain/reindex"
)

// --- Mocks ---

type mockCatalog struct {
	recipes []catalog.Recipe
	err     error
	pages   int
}

func (m *mockCatalog) RecipePage(_ context.Context, offset, limit int) ([]catalog.Recipe, error) {
	m.pages++
	if m.err != nil {
		return nil, m.err
	}
	if offset >= len(m.recipes) {
		return nil, nil
	}
	end := offset + limit
	if end > len(m.recipes) {
		end = len(m.recipes)
	}
	return m.recipes[offset:end], nil
}

type mockIndex struct {
	ensureErr     error
	deleteErr     error
	bulkErr       error
	failFirstBulk bool // first BulkIndex call fails, the rest succeed
	refreshErr    error
	countErr      error

	ensured     bool
	deleted     bool
	refreshed   bool
	stored      int
	bulkBatches [][]document.Document
}

func (m *mockIndex) EnsureIndex(_ context.Context) error { m.ensured = true; return m.ensureErr }

func (m *mockIndex) DeleteAll(_ context.Context) (int, error) {
	m.deleted = true
	return 0, m.deleteErr
}

func (m *mockIndex) BulkIndex(_ context.Context, docs []document.Document) error {
	m.bulkBatches = append(m.bulkBatches, docs)
	if m.failFirstBulk && len(m.bulkBatches) == 1 {
		return errors.New("write refused")
	}
	if m.bulkErr != nil {
		return m.bulkErr
	}
	m.stored += len(docs)
	return nil
}

func (m *mockIndex) Refresh(_ context.Context) error { m.refreshed = true; return m.refreshErr }

func (m *mockIndex) Count(_ context.Context) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.stored, nil
}

type mockPinger struct {
	errs  []error // consumed in order, then nil
	calls int
}

func (m *mockPinger) Ping(_ context.Context) error {
	m.calls++
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return err
	}
	return nil
}

type mockBatchEmbedder struct {
	dim   int
	err   error
	calls int
}

func (m *mockBatchEmbedder) BatchEmbed(
	_ context.Context, texts []string,
) (domain.BatchEmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	vecs := make([][]float32, len(texts))
	for i := range vecs {
		vecs[i] = make([]float32, m.dim)
	}
	return domain.BatchEmbeddingResult{Embeddings: vecs}, nil
}

// --- Helpers ---

func testRecipes(n int) []catalog.Recipe {
	recipes := make([]catalog.Recipe, 0, n)
	for i := 1; i <= n; i++ {
		dish := &catalog.Dish{ID: uint(i), Name: "Dish"}
		recipes = append(recipes, catalog.Recipe{
			ID:           uint(i),
			DishID:       uint(i),
			Name:         "Recipe",
			Instructions: "Simmer",
			Dish:         dish,
		})
	}
	return recipes
}

func newTestService(cat Catalog, idx Index, p Pinger, emb BatchEmbedder) *Service {
	return New(cat, idx, p, emb, zap.NewNop()).WithDelay(0)
}

func waitDone(t *testing.T, svc *Service) domreindex.Report {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		report := svc.Status()
		if report.State != domreindex.StateRunning {
			return report
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("reindex run did not finish in time")
	return domreindex.Report{}
}

// --- Tests ---

func TestTrigger_CompletedRun(t *testing.T) {
	cat := &mockCatalog{recipes: testRecipes(5)}
	idx := &mockIndex{}
	emb := &mockBatchEmbedder{dim: 4}
	svc := newTestService(cat, idx, &mockPinger{}, emb)

	if err := svc.Trigger(context.Background()); err != nil {
		t.Fatalf("unexpected trigger error: %v", err)
	}
	report := waitDone(t, svc)

	if report.State != domreindex.StateCompleted {
		t.Fatalf("expected COMPLETED, got %s", report.State)
	}
	if report.Processed != 5 || report.Indexed != 5 {
		t.Errorf("expected 5 processed and indexed, got %d/%d",
			report.Processed, report.Indexed)
	}
	if report.Skipped != 0 || report.Vectorless != 0 || report.FailedBatches != 0 {
		t.Errorf("unexpected failure counters: %+v", report)
	}
	if report.Documents != 5 {
		t.Errorf("expected 5 documents in the index, got %d", report.Documents)
	}
	if !idx.ensured || !idx.deleted || !idx.refreshed {
		t.Error("expected ensure, clear and final refresh")
	}
	if report.StartedAt.IsZero() || report.FinishedAt.IsZero() {
		t.Error("expected run timestamps")
	}
	// one embed call per channel
	if emb.calls != 2 {
		t.Errorf("expected 2 provider calls, got %d", emb.calls)
	}
	if len(idx.bulkBatches) != 1 || !idx.bulkBatches[0][0].HasVectors() {
		t.Error("expected one batch of vectorized documents")
	}
}

func TestTrigger_Pagination(t *testing.T) {
	cat := &mockCatalog{recipes: testRecipes(450)}
	idx := &mockIndex{}
	svc := newTestService(cat, idx, &mockPinger{}, nil)

	if err := svc.Trigger(context.Background()); err != nil {
		t.Fatalf("unexpected trigger error: %v", err)
	}
	report := waitDone(t, svc)

	if report.Processed != 450 || report.Indexed != 450 {
		t.Errorf("expected 450 recipes, got %d/%d", report.Processed, report.Indexed)
	}
	// 200 + 200 + 50; the short third page ends the loop
	if cat.pages != 3 {
		t.Errorf("expected 3 catalog pages, got %d", cat.pages)
	}
	if len(idx.bulkBatches) != 3 {
		t.Errorf("expected 3 bulk writes, got %d", len(idx.bulkBatches))
	}
}

func TestTrigger_SecondRunRejected(t *testing.T) {
	block := make(chan struct{})
	cat := &mockCatalog{recipes: testRecipes(1)}
	svc := newTestService(cat, &mockIndex{}, &blockingPinger{release: block}, nil)

	if err := svc.Trigger(context.Background()); err != nil {
		t.Fatalf("unexpected trigger error: %v", err)
	}
	if err := svc.Trigger(context.Background()); !errors.Is(err, domain.ErrReindexRunning) {
		t.Errorf("expected ErrReindexRunning, got %v", err)
	}
	close(block)
	waitDone(t, svc)

	// finished run frees the slot
	if err := svc.Trigger(context.Background()); err != nil {
		t.Errorf("expected retrigger after completion, got %v", err)
	}
	waitDone(t, svc)
}

type blockingPinger struct{ release chan struct{} }

func (p *blockingPinger) Ping(_ context.Context) error {
	<-p.release
	return nil
}

func TestRun_DerivationFailureSkips(t *testing.T) {
	recipes := testRecipes(3)
	recipes[1].Dish = nil // cannot derive a document without its dish
	cat := &mockCatalog{recipes: recipes}
	idx := &mockIndex{}
	svc := newTestService(cat, idx, &mockPinger{}, nil)

	if err := svc.Trigger(context.Background()); err != nil {
		t.Fatalf("unexpected trigger error: %v", err)
	}
	report := waitDone(t, svc)

	if report.State != domreindex.StateCompleted {
		t.Fatalf("expected COMPLETED, got %s", report.State)
	}
	if report.Processed != 3 || report.Indexed != 2 || report.Skipped != 1 {
		t.Errorf("expected 3 processed, 2 indexed, 1 skipped; got %d/%d/%d",
			report.Processed, report.Indexed, report.Skipped)
	}
}

func TestRun_EmbedFailureDegradesToVectorless(t *testing.T) {
	cat := &mockCatalog{recipes: testRecipes(4)}
	idx := &mockIndex{}
	emb := &mockBatchEmbedder{err: errors.New("provider down")}
	svc := newTestService(cat, idx, &mockPinger{}, emb)

	if err := svc.Trigger(context.Background()); err != nil {
		t.Fatalf("unexpected trigger error: %v", err)
	}
	report := waitDone(t, svc)

	if report.State != domreindex.StateCompleted {
		t.Fatalf("expected COMPLETED, got %s", report.State)
	}
	if report.Indexed != 4 || report.Vectorless != 4 {
		t.Errorf("expected 4 indexed vectorless, got %d/%d",
			report.Indexed, report.Vectorless)
	}
	if len(idx.bulkBatches) != 1 || idx.bulkBatches[0][0].HasVectors() {
		t.Error("expected vectorless documents still written")
	}
}

func TestRun_BulkFailureMarksPartial(t *testing.T) {
	cat := &mockCatalog{recipes: testRecipes(2)}
	idx := &mockIndex{bulkErr: errors.New("write refused")}
	svc := newTestService(cat, idx, &mockPinger{}, nil)

	if err := svc.Trigger(context.Background()); err != nil {
		t.Fatalf("unexpected trigger error: %v", err)
	}
	report := waitDone(t, svc)

	if report.State != domreindex.StateFailedPartial {
		t.Fatalf("expected FAILED_PARTIAL, got %s", report.State)
	}
	if report.Indexed != 0 || report.FailedBatches != 1 {
		t.Errorf("expected 0 indexed and 1 failed batch, got %d/%d",
			report.Indexed, report.FailedBatches)
	}
	if !idx.refreshed {
		t.Error("expected final refresh even after a failed batch")
	}
}

func TestRun_BatchFailureDoesNotStopPipeline(t *testing.T) {
	cat := &mockCatalog{recipes: testRecipes(450)}
	idx := &mockIndex{failFirstBulk: true}
	svc := newTestService(cat, idx, &mockPinger{}, nil)

	if err := svc.Trigger(context.Background()); err != nil {
		t.Fatalf("unexpected trigger error: %v", err)
	}
	report := waitDone(t, svc)

	if report.State != domreindex.StateFailedPartial {
		t.Fatalf("expected FAILED_PARTIAL, got %s", report.State)
	}
	// the lost first batch does not affect the remaining two
	if len(idx.bulkBatches) != 3 {
		t.Fatalf("expected 3 bulk writes, got %d", len(idx.bulkBatches))
	}
	if report.FailedBatches != 1 {
		t.Errorf("expected 1 failed batch, got %d", report.FailedBatches)
	}
	if report.Processed != 450 || report.Indexed != 250 {
		t.Errorf("expected 450 processed and 250 indexed, got %d/%d",
			report.Processed, report.Indexed)
	}
	if report.Documents != 250 {
		t.Errorf("expected 250 documents in the index, got %d", report.Documents)
	}
}

func TestRun_CountFailureKeepsReport(t *testing.T) {
	cat := &mockCatalog{recipes: testRecipes(2)}
	idx := &mockIndex{countErr: errors.New("index gone")}
	svc := newTestService(cat, idx, &mockPinger{}, nil)

	if err := svc.Trigger(context.Background()); err != nil {
		t.Fatalf("unexpected trigger error: %v", err)
	}
	report := waitDone(t, svc)

	// the count is informational; its failure does not fail the run
	if report.State != domreindex.StateCompleted {
		t.Fatalf("expected COMPLETED, got %s", report.State)
	}
	if report.Documents != 0 {
		t.Errorf("expected zero document count, got %d", report.Documents)
	}
}

func TestRun_CatalogErrorMarksPartial(t *testing.T) {
	cat := &mockCatalog{err: errors.New("db gone")}
	idx := &mockIndex{}
	svc := newTestService(cat, idx, &mockPinger{}, nil)

	if err := svc.Trigger(context.Background()); err != nil {
		t.Fatalf("unexpected trigger error: %v", err)
	}
	report := waitDone(t, svc)

	if report.State != domreindex.StateFailedPartial {
		t.Errorf("expected FAILED_PARTIAL, got %s", report.State)
	}
}

func TestRun_PingRetriesThenSucceeds(t *testing.T) {
	cat := &mockCatalog{recipes: testRecipes(1)}
	idx := &mockIndex{}
	pinger := &mockPinger{errs: []error{errors.New("not ready")}}
	svc := newTestService(cat, idx, pinger, nil)

	if err := svc.Trigger(context.Background()); err != nil {
		t.Fatalf("unexpected trigger error: %v", err)
	}
	report := waitDone(t, svc)

	if report.State != domreindex.StateCompleted {
		t.Fatalf("expected COMPLETED after retry, got %s", report.State)
	}
	if pinger.calls != 2 {
		t.Errorf("expected 2 ping attempts, got %d", pinger.calls)
	}
}

func TestStatus_IdleBeforeFirstRun(t *testing.T) {
	svc := newTestService(&mockCatalog{}, &mockIndex{}, &mockPinger{}, nil)
	if got := svc.Status().State; got != domreindex.StateIdle {
		t.Errorf("expected IDLE, got %s", got)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaguard-server/internal/domain"
)

// memStore is an in-memory ExplanationStore with the append-only
// conflict semantics of the durable backends.
type memStore struct {
	mu      sync.Mutex
	entries map[string]*domain.CacheEntry
	puts    int
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]*domain.CacheEntry)}
}

func (s *memStore) Get(_ context.Context, key string) (*domain.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[key], nil
}

func (s *memStore) Put(_ context.Context, entry *domain.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if existing, ok := s.entries[entry.Key]; ok {
		if existing.Text == entry.Text {
			return nil
		}
		return domain.ErrCacheKeyConflict
	}
	s.entries[entry.Key] = entry
	return nil
}

func (s *memStore) Close() error { return nil }

func (s *memStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// fakeGenerator counts invocations and can fail or stall on demand.
type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	fail  error
	delay time.Duration
}

func (g *fakeGenerator) Generate(ctx context.Context, _, prompt string, _ float64, _ int) (string, error) {
	g.mu.Lock()
	g.calls++
	n := g.calls
	g.mu.Unlock()

	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if g.fail != nil {
		return "", g.fail
	}
	return fmt.Sprintf("generated text %d", n), nil
}

func (g *fakeGenerator) Provider() string             { return "fake" }
func (g *fakeGenerator) Model() string                { return "fake-model" }
func (g *fakeGenerator) Healthy(context.Context) bool { return true }

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func explainerAssessment() *domain.RiskAssessment {
	return &domain.RiskAssessment{
		Gene:          "CYP2D6",
		Drug:          "Codeine",
		Diplotype:     domain.Diplotype{Gene: "CYP2D6", Allele1: "*1", Allele2: "*4"},
		Phenotype:     domain.INTERMEDIATE,
		ActivityScore: 1.0,
		Rule: domain.DrugRule{
			Gene:       "CYP2D6",
			Drug:       "Codeine",
			Phenotype:  domain.INTERMEDIATE,
			Risk:       domain.ADJUST_DOSAGE,
			Severity:   domain.SEVERITY_MODERATE,
			Reason:     "Reduced conversion to morphine",
			Dosing:     "Use the lowest effective dose",
			Monitoring: "Monitor for inadequate analgesia",
			Citation:   "CPIC Guideline for Codeine and CYP2D6",
		},
		AssessedAt: time.Now().UTC(),
	}
}

func TestExplainer_GeneratesAllSections(t *testing.T) {
	store := newMemStore()
	gen := &fakeGenerator{}
	e := NewExplainer(testLogger(), store, gen)

	explanation, err := e.Explain(context.Background(), explainerAssessment())
	require.NoError(t, err)

	assert.NotEmpty(t, explanation.VariantInterpretation)
	assert.NotEmpty(t, explanation.RiskRationale)
	assert.NotEmpty(t, explanation.DosingRationale)
	assert.NotEmpty(t, explanation.MonitoringRationale)
	assert.Equal(t, "fake", explanation.Provider)
	assert.Equal(t, "fake-model", explanation.Model)
	assert.False(t, explanation.FromCache)

	assert.Equal(t, 4, gen.callCount(), "one generation per section")
	assert.Equal(t, 4, store.size(), "every section written before acknowledging")
}

func TestExplainer_SecondCallServedFromCache(t *testing.T) {
	store := newMemStore()
	gen := &fakeGenerator{}
	e := NewExplainer(testLogger(), store, gen)
	ctx := context.Background()

	first, err := e.Explain(ctx, explainerAssessment())
	require.NoError(t, err)
	require.False(t, first.FromCache)

	second, err := e.Explain(ctx, explainerAssessment())
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.RiskRationale, second.RiskRationale)
	assert.Equal(t, 4, gen.callCount(), "cached sections must not hit the generator again")
}

func TestExplainer_DifferentAssessmentsDoNotShareEntries(t *testing.T) {
	store := newMemStore()
	gen := &fakeGenerator{}
	e := NewExplainer(testLogger(), store, gen)
	ctx := context.Background()

	_, err := e.Explain(ctx, explainerAssessment())
	require.NoError(t, err)

	other := explainerAssessment()
	other.Drug = "Metoprolol"
	other.Rule.Drug = "Metoprolol"
	_, err = e.Explain(ctx, other)
	require.NoError(t, err)

	assert.Equal(t, 8, gen.callCount())
	assert.Equal(t, 8, store.size())
}

func TestExplainer_ConcurrentRequestsSingleFlight(t *testing.T) {
	store := newMemStore()
	gen := &fakeGenerator{delay: 30 * time.Millisecond}
	e := NewExplainer(testLogger(), store, gen)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.Explain(context.Background(), explainerAssessment())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "request %d", i)
	}

	assert.Equal(t, 4, gen.callCount(),
		"concurrent identical requests must collapse to one generation per section")
}

func TestExplainer_GeneratorFailurePropagates(t *testing.T) {
	store := newMemStore()
	gen := &fakeGenerator{fail: domain.ErrGeneratorUnavailable}
	e := NewExplainer(testLogger(), store, gen)

	_, err := e.Explain(context.Background(), explainerAssessment())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGeneratorUnavailable)
	assert.Equal(t, 0, store.size(), "nothing is cached for a failed generation")
}

func TestExplainer_CacheReadFailureSurfaces(t *testing.T) {
	e := NewExplainer(testLogger(), failingStore{}, &fakeGenerator{})

	_, err := e.Explain(context.Background(), explainerAssessment())
	require.Error(t, err)
}

func TestExplainer_NilGeneratorReturnsEmpty(t *testing.T) {
	e := NewExplainer(testLogger(), newMemStore(), nil)

	explanation, err := e.Explain(context.Background(), explainerAssessment())
	require.NoError(t, err)
	assert.True(t, explanation.IsEmpty())
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (*domain.CacheEntry, error) {
	return nil, errors.New("store offline")
}
func (failingStore) Put(context.Context, *domain.CacheEntry) error {
	return errors.New("store offline")
}

func (failingStore) Close() error { return nil }

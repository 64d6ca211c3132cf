package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dir, err := os.MkdirTemp("", "report-store-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	store, err := NewSQLiteStore(filepath.Join(dir, "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_SaveAndList(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	rec := sampleRecord()
	require.NoError(t, store.Save(ctx, rec))
	assert.NotZero(t, rec.ID)

	records, err := store.ListByPatient(ctx, "PAT-001", 0, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, "Codeine", got.Drug)
	assert.Equal(t, "High", got.RiskAssessment.RiskLabel)
	assert.Equal(t, "TOXIC", got.RiskAssessment.Risk)
	assert.Equal(t, "Ultra-Rapid Metabolizer", got.RiskAssessment.Phenotype)
	assert.InDelta(t, 3.0, got.RiskAssessment.Activity, 0.0001)
	assert.Equal(t, "*1/*1", got.Profile.Diplotype)
	assert.Equal(t, "Avoid codeine", got.Recommendation.Dosing)
	assert.True(t, got.Quality.CacheHit)
	assert.Equal(t, 2, got.Quality.GenesAnalyzed)
}

func TestSQLiteStore_ListOrderedMostRecentFirst(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i, drug := range []string{"Codeine", "Warfarin", "Metoprolol"} {
		rec := sampleRecord()
		rec.Drug = drug
		rec.Timestamp = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.Save(ctx, rec))
	}

	records, err := store.ListByPatient(ctx, "PAT-001", 0, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Metoprolol", records[0].Drug)
	assert.Equal(t, "Codeine", records[2].Drug)
}

func TestSQLiteStore_ListPagination(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rec := sampleRecord()
		rec.Drug = fmt.Sprintf("Drug-%d", i)
		rec.Timestamp = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Save(ctx, rec))
	}

	page, err := store.ListByPatient(ctx, "PAT-001", 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Drug-2", page[0].Drug)
	assert.Equal(t, "Drug-1", page[1].Drug)
}

func TestSQLiteStore_ListFiltersByPatient(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	first := sampleRecord()
	require.NoError(t, store.Save(ctx, first))

	second := sampleRecord()
	second.PatientID = "PAT-002"
	require.NoError(t, store.Save(ctx, second))

	records, err := store.ListByPatient(ctx, "PAT-002", 0, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "PAT-002", records[0].PatientID)
}

func TestSQLiteStore_ListUnknownPatientEmpty(t *testing.T) {
	store := createTestStore(t)

	records, err := store.ListByPatient(context.Background(), "nobody", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSQLiteStore_Count(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, store.Save(ctx, sampleRecord()))
	require.NoError(t, store.Save(ctx, sampleRecord()))

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

// Package report persists completed analysis reports. Persistence is an
// enrichment of the job pipeline: a failed write is logged and never
// fails the job that produced the report.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/pharmaguard-server/internal/domain"
)

// PostgresStore implements domain.ReportStore using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL report store. It expects the
// schema to already exist (created via migrations).
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Save stores one completed analysis report.
func (s *PostgresStore) Save(ctx context.Context, record *domain.ReportRecord) error {
	query := `
		INSERT INTO reports (
			patient_id, drug, assessed_at,
			risk_label, risk, severity, phenotype, activity_score,
			evidence_level, strength, citation,
			gene, diplotype, dosing, monitoring,
			explanation, generator_provider, generator_model, cache_hit, genes_analyzed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id
	`

	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	err := s.db.QueryRowContext(ctx, query,
		record.PatientID,
		record.Drug,
		record.Timestamp,
		record.RiskAssessment.RiskLabel,
		record.RiskAssessment.Risk,
		record.RiskAssessment.Severity,
		record.RiskAssessment.Phenotype,
		record.RiskAssessment.Activity,
		record.Guidelines.EvidenceLevel,
		record.Guidelines.Strength,
		record.Guidelines.Citation,
		record.Profile.Gene,
		record.Profile.Diplotype,
		record.Recommendation.Dosing,
		record.Recommendation.Monitoring,
		record.ExplanationJSON,
		record.Quality.Provider,
		record.Quality.Model,
		record.Quality.CacheHit,
		record.Quality.GenesAnalyzed,
	).Scan(&record.ID)

	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// ListByPatient retrieves reports for a patient, most recent first.
func (s *PostgresStore) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*domain.ReportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, patient_id, drug, assessed_at,
			risk_label, risk, severity, phenotype, activity_score,
			evidence_level, strength, citation,
			gene, diplotype, dosing, monitoring,
			explanation, generator_provider, generator_model, cache_hit, genes_analyzed
		FROM reports
		WHERE patient_id = $1
		ORDER BY assessed_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, patientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var records []*domain.ReportRecord
	for rows.Next() {
		rec := &domain.ReportRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.PatientID, &rec.Drug, &rec.Timestamp,
			&rec.RiskAssessment.RiskLabel, &rec.RiskAssessment.Risk,
			&rec.RiskAssessment.Severity, &rec.RiskAssessment.Phenotype,
			&rec.RiskAssessment.Activity,
			&rec.Guidelines.EvidenceLevel, &rec.Guidelines.Strength, &rec.Guidelines.Citation,
			&rec.Profile.Gene, &rec.Profile.Diplotype,
			&rec.Recommendation.Dosing, &rec.Recommendation.Monitoring,
			&rec.ExplanationJSON, &rec.Quality.Provider, &rec.Quality.Model,
			&rec.Quality.CacheHit, &rec.Quality.GenesAnalyzed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}

	return records, nil
}

// Count returns the total number of stored reports.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

package report

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pharmaguard-server/internal/domain"
)

// SQLiteStore implements domain.ReportStore on SQLite, used when no
// PostgreSQL is configured.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite report store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createReportSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

func createReportSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patient_id TEXT NOT NULL,
		drug TEXT NOT NULL,
		assessed_at DATETIME NOT NULL,
		risk_label TEXT NOT NULL DEFAULT '',
		risk TEXT NOT NULL DEFAULT '',
		severity TEXT NOT NULL DEFAULT '',
		phenotype TEXT NOT NULL DEFAULT '',
		activity_score REAL NOT NULL DEFAULT 0,
		evidence_level TEXT NOT NULL DEFAULT '',
		strength TEXT NOT NULL DEFAULT '',
		citation TEXT NOT NULL DEFAULT '',
		gene TEXT NOT NULL DEFAULT '',
		diplotype TEXT NOT NULL DEFAULT '',
		dosing TEXT NOT NULL DEFAULT '',
		monitoring TEXT NOT NULL DEFAULT '',
		explanation TEXT NOT NULL DEFAULT '',
		generator_provider TEXT NOT NULL DEFAULT '',
		generator_model TEXT NOT NULL DEFAULT '',
		cache_hit BOOLEAN NOT NULL DEFAULT 0,
		genes_analyzed INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_reports_patient ON reports(patient_id, assessed_at);
	CREATE INDEX IF NOT EXISTS idx_reports_drug ON reports(drug);
	`

	_, err := db.Exec(schema)
	return err
}

// Save stores one completed analysis report.
func (s *SQLiteStore) Save(ctx context.Context, record *domain.ReportRecord) error {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (
			patient_id, drug, assessed_at,
			risk_label, risk, severity, phenotype, activity_score,
			evidence_level, strength, citation,
			gene, diplotype, dosing, monitoring,
			explanation, generator_provider, generator_model, cache_hit, genes_analyzed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
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
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		record.ID = id
	}
	return nil
}

// ListByPatient retrieves reports for a patient, most recent first.
func (s *SQLiteStore) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*domain.ReportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, patient_id, drug, assessed_at,
			risk_label, risk, severity, phenotype, activity_score,
			evidence_level, strength, citation,
			gene, diplotype, dosing, monitoring,
			explanation, generator_provider, generator_model, cache_hit, genes_analyzed
		FROM reports
		WHERE patient_id = ?
		ORDER BY assessed_at DESC
		LIMIT ? OFFSET ?
	`, patientID, limit, offset)
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
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

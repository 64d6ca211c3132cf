package domain

import (
	"errors"
	"fmt"
	"time"
)

// DrugRule is one curated guideline entry keyed by (gene, drug, phenotype).
// Immutable reference data. The rule table must be exhaustive over every
// phenotype the resolver can produce for a gene the table claims to cover;
// a gap is a configuration defect caught at startup, not a runtime
// condition to silently default.
type DrugRule struct {
	Gene      string    `json:"gene" validate:"required"`
	Drug      string    `json:"drug" validate:"required"`
	Phenotype Phenotype `json:"phenotype" validate:"required"`

	Risk     RiskLevel `json:"risk" validate:"required"`
	Severity Severity  `json:"severity" validate:"required"`

	// Clinical narrative carried verbatim from the guideline.
	Reason     string `json:"reason"`
	Dosing     string `json:"dosing"`
	Monitoring string `json:"monitoring"`

	// Guideline provenance.
	EvidenceLevel string `json:"evidence_level"` // e.g. "1A", "2B"
	Strength      string `json:"strength"`       // e.g. "Strong", "Moderate"
	Citation      string `json:"citation"`
}

// Validate ensures the rule data is usable for clinical decision-making.
func (r *DrugRule) Validate() error {
	if r.Gene == "" {
		return fmt.Errorf("drug rule validation: %w", errors.New("gene is required"))
	}
	if r.Drug == "" {
		return fmt.Errorf("drug rule validation: %w", errors.New("drug is required"))
	}
	if !r.Phenotype.IsValid() {
		return fmt.Errorf("drug rule validation: %w", ErrInvalidPhenotype)
	}
	if !r.Risk.IsValid() {
		return fmt.Errorf("drug rule validation: %w", ErrInvalidRiskLevel)
	}
	if !r.Severity.IsValid() {
		return fmt.Errorf("drug rule validation: %w", ErrInvalidSeverity)
	}
	if r.Citation == "" {
		return fmt.Errorf("drug rule validation: %w", errors.New("citation is required"))
	}
	return nil
}

// RiskAssessment is the verdict for one (patient profile, drug) pair.
// Immutable once produced by the classifier.
type RiskAssessment struct {
	Gene          string    `json:"gene"`
	Drug          string    `json:"drug"`
	Diplotype     Diplotype `json:"diplotype"`
	Phenotype     Phenotype `json:"phenotype"`
	ActivityScore float64   `json:"activity_score"`
	Rule          DrugRule  `json:"rule"`
	AssessedAt    time.Time `json:"assessed_at"`
}

// RiskLabel returns the caller-facing label for the verdict.
func (a *RiskAssessment) RiskLabel() string {
	return a.Rule.Risk.Label()
}

// LogFields returns structured logging fields for audit trails.
func (a *RiskAssessment) LogFields() map[string]any {
	return map[string]any{
		"gene":           a.Gene,
		"drug":           a.Drug,
		"diplotype":      a.Diplotype.String(),
		"phenotype":      string(a.Phenotype),
		"activity_score": a.ActivityScore,
		"risk":           string(a.Rule.Risk),
		"severity":       string(a.Rule.Severity),
	}
}

// CacheEntry is one generated explanation section, keyed by a content
// digest of its own inputs. Entries never mutate; a changed input
// produces a new key, not an overwrite.
type CacheEntry struct {
	Key        string    `json:"key"`
	Text       string    `json:"text"`
	TemplateID string    `json:"template_id"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate ensures the entry can be persisted.
func (e *CacheEntry) Validate() error {
	if e.Key == "" {
		return fmt.Errorf("cache entry validation: %w", errors.New("key is required"))
	}
	if e.Text == "" {
		return fmt.Errorf("cache entry validation: %w", errors.New("text is required"))
	}
	return nil
}

// Explanation holds the four narrative sections attached to a verdict.
// All sections empty means the generator could not be reached; the
// verdict itself is still returned, since the rule-based verdict carries
// the clinical safety signal and must not be withheld by a downstream
// enrichment failure.
type Explanation struct {
	VariantInterpretation string `json:"variant_interpretation"`
	RiskRationale         string `json:"risk_rationale"`
	DosingRationale       string `json:"dosing_rationale"`
	MonitoringRationale   string `json:"monitoring_rationale"`
	Provider              string `json:"provider,omitempty"`
	Model                 string `json:"model,omitempty"`
	FromCache             bool   `json:"from_cache"`
}

// IsEmpty reports whether no section was generated.
func (e *Explanation) IsEmpty() bool {
	return e.VariantInterpretation == "" && e.RiskRationale == "" &&
		e.DosingRationale == "" && e.MonitoringRationale == ""
}

// DrugResult is the per-drug outcome exposed once a job completes.
// Exactly one of Assessment/FailureReason is meaningful for failed
// verdicts; a verdict with a failed explanation keeps its Assessment
// and records the failure reason alongside it.
type DrugResult struct {
	Drug          string          `json:"drug"`
	State         DrugState       `json:"state"`
	Assessment    *RiskAssessment `json:"assessment,omitempty"`
	Explanation   *Explanation    `json:"explanation,omitempty"`
	CacheHit      bool            `json:"cache_hit"`
	FailureReason string          `json:"failure_reason,omitempty"`
}

// JobSnapshot is the read-only view of a job returned to pollers.
// Per-drug results are populated only once the job is terminal, so
// callers never observe a half-finished verdict set.
type JobSnapshot struct {
	ID          string               `json:"id"`
	PatientID   string               `json:"patient_id"`
	State       JobState             `json:"state"`
	Drugs       []string             `json:"drugs"`
	DrugStates  map[string]DrugState `json:"drug_states"`
	Results     []DrugResult         `json:"results,omitempty"`
	Error       string               `json:"error,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
}

// Package domain contains core business entities and types for pharmacogenomic
// drug-safety assessment following CPIC (Clinical Pharmacogenetics Implementation
// Consortium) guidelines.
//
// Reference: Relling MV, Klein TE (2011) CPIC: Clinical Pharmacogenetics
// Implementation Consortium of the Pharmacogenomics Research Network.
// Clin Pharmacol Ther. 89(3):464-7. doi: 10.1038/clpt.2010.279
package domain

import (
	"errors"
	"fmt"
)

// Phenotype represents the metabolizer/transporter activity classification
// derived from a diplotype. These classifications follow CPIC term
// standardization for clinical pharmacogenetic test results.
//
// Reference: Caudle et al. (2017) Standardizing terms for clinical
// pharmacogenetic test results. Genet Med. 19(2):215-223
type Phenotype string

const (
	ULTRA_RAPID  Phenotype = "ULTRA_RAPID"
	RAPID        Phenotype = "RAPID"
	NORMAL       Phenotype = "NORMAL"
	INTERMEDIATE Phenotype = "INTERMEDIATE"
	POOR         Phenotype = "POOR"
	NO_FUNCTION  Phenotype = "NO_FUNCTION"
)

// RiskLevel represents the clinical risk classification for a drug given
// a patient's phenotype.
type RiskLevel string

const (
	SAFE          RiskLevel = "SAFE"
	ADJUST_DOSAGE RiskLevel = "ADJUST_DOSAGE"
	TOXIC         RiskLevel = "TOXIC"
	INEFFECTIVE   RiskLevel = "INEFFECTIVE"
	UNKNOWN_RISK  RiskLevel = "UNKNOWN"
)

// Severity represents the severity tier attached to a risk verdict.
type Severity string

const (
	SEVERITY_NONE     Severity = "none"
	SEVERITY_MODERATE Severity = "moderate"
	SEVERITY_HIGH     Severity = "high"
	SEVERITY_CRITICAL Severity = "critical"
)

// AlleleFunction represents the functional status of a single star allele.
type AlleleFunction string

const (
	FUNCTION_NORMAL    AlleleFunction = "NORMAL"
	FUNCTION_REDUCED   AlleleFunction = "REDUCED"
	FUNCTION_NONE      AlleleFunction = "NON_FUNCTIONAL"
	FUNCTION_INCREASED AlleleFunction = "INCREASED"
	FUNCTION_UNKNOWN   AlleleFunction = "UNKNOWN"
)

// Validation errors for medical data integrity
var (
	ErrInvalidPhenotype      = errors.New("invalid metabolizer phenotype")
	ErrInvalidRiskLevel      = errors.New("invalid risk level")
	ErrInvalidSeverity       = errors.New("invalid severity tier")
	ErrInvalidAlleleFunction = errors.New("invalid allele function")
)

// IsValid validates that the Phenotype uses CPIC-standardized terminology.
// This is critical for medical software to ensure only recognized phenotypes
// reach the rule table lookup.
func (p Phenotype) IsValid() bool {
	switch p {
	case ULTRA_RAPID, RAPID, NORMAL, INTERMEDIATE, POOR, NO_FUNCTION:
		return true
	default:
		return false
	}
}

// String returns the string representation of the phenotype.
// Required for proper logging and audit trails in medical software.
func (p Phenotype) String() string {
	return string(p)
}

// DisplayName returns the clinician-facing phenotype name used in reports
// and explanation prompts.
func (p Phenotype) DisplayName() string {
	switch p {
	case ULTRA_RAPID:
		return "Ultra-Rapid Metabolizer"
	case RAPID:
		return "Rapid Metabolizer"
	case NORMAL:
		return "Normal Metabolizer"
	case INTERMEDIATE:
		return "Intermediate Metabolizer"
	case POOR:
		return "Poor Metabolizer"
	case NO_FUNCTION:
		return "No Function"
	default:
		return "Unknown Phenotype"
	}
}

// LogFields returns structured logging fields for audit trails.
// Critical for medical software compliance and traceability.
func (p Phenotype) LogFields() map[string]any {
	return map[string]any{
		"phenotype":         string(p),
		"phenotype_display": p.DisplayName(),
		"is_valid":          p.IsValid(),
	}
}

// IsValid validates the risk level.
func (r RiskLevel) IsValid() bool {
	switch r {
	case SAFE, ADJUST_DOSAGE, TOXIC, INEFFECTIVE, UNKNOWN_RISK:
		return true
	default:
		return false
	}
}

// String returns the string representation of the risk level.
func (r RiskLevel) String() string {
	return string(r)
}

// Label returns the caller-facing risk label for the verdict.
// TOXIC and INEFFECTIVE both carry the clinical safety signal of an
// unacceptable outcome at standard dosing, so both map to High.
func (r RiskLevel) Label() string {
	switch r {
	case TOXIC, INEFFECTIVE:
		return "High"
	case ADJUST_DOSAGE:
		return "Moderate"
	case SAFE:
		return "Low"
	default:
		return "Unknown"
	}
}

// RequiresClinicalAction determines if the risk level requires clinical
// follow-up. Critical for medical workflow automation and patient safety.
func (r RiskLevel) RequiresClinicalAction() bool {
	switch r {
	case SAFE:
		return false
	case ADJUST_DOSAGE, TOXIC, INEFFECTIVE:
		return true
	default:
		return true // Conservative approach for unknown risk levels
	}
}

// IsValid validates the severity tier.
func (s Severity) IsValid() bool {
	switch s {
	case SEVERITY_NONE, SEVERITY_MODERATE, SEVERITY_HIGH, SEVERITY_CRITICAL:
		return true
	default:
		return false
	}
}

// String returns the string representation of the severity tier.
func (s Severity) String() string {
	return string(s)
}

// IsValid validates the allele function status.
func (f AlleleFunction) IsValid() bool {
	switch f {
	case FUNCTION_NORMAL, FUNCTION_REDUCED, FUNCTION_NONE, FUNCTION_INCREASED, FUNCTION_UNKNOWN:
		return true
	default:
		return false
	}
}

// String returns the string representation of the allele function.
func (f AlleleFunction) String() string {
	return string(f)
}

// JobState represents the overall state of an analysis job.
type JobState string

const (
	JOB_QUEUED    JobState = "queued"
	JOB_RUNNING   JobState = "running"
	JOB_COMPLETED JobState = "completed"
	JOB_FAILED    JobState = "failed"
)

// IsTerminal reports whether the job state admits no further transitions.
func (s JobState) IsTerminal() bool {
	return s == JOB_COMPLETED || s == JOB_FAILED
}

// DrugState represents the per-drug sub-state within a job.
type DrugState string

const (
	DRUG_PENDING    DrugState = "pending"
	DRUG_RESOLVING  DrugState = "resolving"
	DRUG_EXPLAINING DrugState = "explaining"
	DRUG_DONE       DrugState = "done"
	DRUG_FAILED     DrugState = "failed"
)

// IsTerminal reports whether the drug sub-state admits no further transitions.
func (s DrugState) IsTerminal() bool {
	return s == DRUG_DONE || s == DRUG_FAILED
}

// rank orders drug sub-states so transitions can be checked for
// forward-only progression.
func (s DrugState) rank() int {
	switch s {
	case DRUG_PENDING:
		return 0
	case DRUG_RESOLVING:
		return 1
	case DRUG_EXPLAINING:
		return 2
	case DRUG_DONE, DRUG_FAILED:
		return 3
	default:
		return -1
	}
}

// CanTransitionTo reports whether moving from s to next is a legal
// forward transition. Terminal states never regress.
func (s DrugState) CanTransitionTo(next DrugState) bool {
	if s.IsTerminal() {
		return false
	}
	// failed is reachable from any non-terminal state
	if next == DRUG_FAILED {
		return true
	}
	return next.rank() > s.rank()
}

// Diplotype is the unordered pair of star alleles a patient carries at
// one gene locus. Order carries no meaning; String renders alleles in a
// canonical order so *1/*4 and *4/*1 are the same diplotype.
type Diplotype struct {
	Gene    string `json:"gene"`
	Allele1 string `json:"allele1"`
	Allele2 string `json:"allele2"`
}

// String returns the canonical gene-independent rendering, e.g. "*1/*4".
func (d Diplotype) String() string {
	a, b := d.Allele1, d.Allele2
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%s/%s", a, b)
}

// IsHomozygous reports whether both alleles are identical.
func (d Diplotype) IsHomozygous() bool {
	return d.Allele1 == d.Allele2
}

// Validate ensures the diplotype carries both alleles and a gene symbol.
func (d Diplotype) Validate() error {
	if d.Gene == "" {
		return fmt.Errorf("diplotype validation: %w", errors.New("gene symbol is required"))
	}
	if d.Allele1 == "" || d.Allele2 == "" {
		return fmt.Errorf("diplotype validation: %w", errors.New("two allele labels are required"))
	}
	return nil
}

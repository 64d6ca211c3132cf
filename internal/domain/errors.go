package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for the decision engine and job pipeline.
// UnknownAllele and RuleNotFound abort only the affected drug;
// CacheKeyConflict is fatal to the offending write and keeps the
// original entry; generator errors degrade to a verdict without
// narrative. Under-reporting risk is the unacceptable failure mode,
// so a missing rule is surfaced, never defaulted to a safe verdict.
var (
	ErrUnknownAllele        = errors.New("allele not present in catalog")
	ErrUnknownGene          = errors.New("gene not present in catalog")
	ErrRuleNotFound         = errors.New("no guideline rule for gene/drug/phenotype")
	ErrUnknownDrug          = errors.New("drug not covered by rule table")
	ErrCacheKeyConflict     = errors.New("cache key already bound to different content")
	ErrGeneratorTimeout     = errors.New("explanation generator deadline exceeded")
	ErrGeneratorUnavailable = errors.New("explanation generator unavailable")
	ErrJobNotFound          = errors.New("job not found")
	ErrInvalidGenotype      = errors.New("genotype references unrecognized alleles")
	ErrJobTerminal          = errors.New("job already reached a terminal state")
)

// Error codes for API responses and structured logs.
const (
	ErrCodeInvalidGenotype  = "INVALID_GENOTYPE"
	ErrCodeUnknownAllele    = "UNKNOWN_ALLELE"
	ErrCodeRuleNotFound     = "RULE_NOT_FOUND"
	ErrCodeCacheConflict    = "CACHE_KEY_CONFLICT"
	ErrCodeGeneratorFailure = "GENERATOR_FAILURE"
	ErrCodeJobNotFound      = "JOB_NOT_FOUND"
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// APIError represents a standardized error response for external callers.
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAPIError creates a new APIError with timestamp
func NewAPIError(code, message, details, requestID string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// UnknownAlleleError carries the gene and allele that failed catalog lookup.
type UnknownAlleleError struct {
	Gene   string
	Allele string
}

// Error implements the error interface
func (e *UnknownAlleleError) Error() string {
	return fmt.Sprintf("allele %q is not in the catalog for gene %s", e.Allele, e.Gene)
}

// Unwrap allows errors.Is(err, ErrUnknownAllele) checks.
func (e *UnknownAlleleError) Unwrap() error {
	return ErrUnknownAllele
}

// RuleNotFoundError carries the unmatched (gene, drug, phenotype) triple.
type RuleNotFoundError struct {
	Gene      string
	Drug      string
	Phenotype Phenotype
}

// Error implements the error interface
func (e *RuleNotFoundError) Error() string {
	return fmt.Sprintf("no rule for gene=%s drug=%s phenotype=%s", e.Gene, e.Drug, e.Phenotype)
}

// Unwrap allows errors.Is(err, ErrRuleNotFound) checks.
func (e *RuleNotFoundError) Unwrap() error {
	return ErrRuleNotFound
}

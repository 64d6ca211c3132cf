package domain

import (
	"encoding/json"
	"time"
)

// ReportRecord is the persisted/exported result shape for one
// (patient, drug) verdict, including the narrative enrichment and
// quality metadata. Field layout mirrors the JSON report consumed by
// downstream presentation and export tooling.
type ReportRecord struct {
	ID        int64     `json:"id,omitempty"`
	PatientID string    `json:"patient_id"`
	Drug      string    `json:"drug"`
	Timestamp time.Time `json:"timestamp"`

	RiskAssessment struct {
		RiskLabel string  `json:"risk_label"`
		Risk      string  `json:"risk"`
		Severity  string  `json:"severity"`
		Phenotype string  `json:"phenotype"`
		Activity  float64 `json:"activity_score"`
	} `json:"risk_assessment"`

	Guidelines struct {
		EvidenceLevel string `json:"evidence_level"`
		Strength      string `json:"strength"`
		Citation      string `json:"citation"`
	} `json:"cpic_guidelines"`

	Profile struct {
		Gene      string `json:"gene"`
		Diplotype string `json:"diplotype"`
	} `json:"pharmacogenomic_profile"`

	Recommendation struct {
		Dosing     string `json:"dosing"`
		Monitoring string `json:"monitoring"`
	} `json:"clinical_recommendation"`

	ExplanationJSON string `json:"generated_explanation"` // serialized Explanation

	Quality struct {
		Provider      string `json:"generator_provider"`
		Model         string `json:"generator_model"`
		CacheHit      bool   `json:"cache_hit"`
		GenesAnalyzed int    `json:"genes_analyzed"`
	} `json:"quality_metrics"`
}

// NewReportRecord builds a record from a completed drug result.
func NewReportRecord(patientID string, genesAnalyzed int, res *DrugResult) *ReportRecord {
	rec := &ReportRecord{
		PatientID: patientID,
		Drug:      res.Drug,
		Timestamp: time.Now().UTC(),
	}
	if res.Assessment != nil {
		a := res.Assessment
		rec.RiskAssessment.RiskLabel = a.RiskLabel()
		rec.RiskAssessment.Risk = string(a.Rule.Risk)
		rec.RiskAssessment.Severity = string(a.Rule.Severity)
		rec.RiskAssessment.Phenotype = a.Phenotype.DisplayName()
		rec.RiskAssessment.Activity = a.ActivityScore
		rec.Guidelines.EvidenceLevel = a.Rule.EvidenceLevel
		rec.Guidelines.Strength = a.Rule.Strength
		rec.Guidelines.Citation = a.Rule.Citation
		rec.Profile.Gene = a.Gene
		rec.Profile.Diplotype = a.Diplotype.String()
		rec.Recommendation.Dosing = a.Rule.Dosing
		rec.Recommendation.Monitoring = a.Rule.Monitoring
	}
	if res.Explanation != nil {
		rec.Quality.Provider = res.Explanation.Provider
		rec.Quality.Model = res.Explanation.Model
		if raw, err := json.Marshal(res.Explanation); err == nil {
			rec.ExplanationJSON = string(raw)
		}
	}
	rec.Quality.CacheHit = res.CacheHit
	rec.Quality.GenesAnalyzed = genesAnalyzed
	return rec
}

// Package generator adapts an OpenAI-compatible chat completion service
// for producing clinical explanation text. Generated narratives are
// advisory only; risk verdicts are computed upstream and never depend
// on anything produced here.
package generator

import (
	"fmt"
	"strings"

	"github.com/pharmaguard-server/internal/domain"
)

// Template identifiers. The id participates in the explanation cache
// key, so renaming one invalidates every cached entry for that section.
const (
	TemplateVariantInterpretation = "variant_interpretation"
	TemplateRiskRationale         = "risk_rationale"
	TemplateDosingRationale       = "dosing_rationale"
	TemplateMonitoringRationale   = "monitoring_rationale"
)

// Template pairs a prompt body with the sampling parameters tuned for
// that section. Dosing guidance uses the lowest temperature.
type Template struct {
	ID          string
	SystemRole  string
	Temperature float64
	MaxTokens   int
	body        string
}

var templates = map[string]Template{
	TemplateVariantInterpretation: {
		ID:          TemplateVariantInterpretation,
		SystemRole:  "You are a genetics expert specializing in pharmacogenomics. Explain complex genetic information in patient-friendly terms.",
		Temperature: 0.5,
		MaxTokens:   180,
		body: `Explain the genetic profile for the '%s' gene:
- Diplotype: %s
- Phenotype: %s
- Activity Score: %.2f

Provide a clear explanation that includes:
1. What this diplotype means (in simple terms)
2. How the activity score relates to the phenotype
3. General implications for drug metabolism

Keep to 120-150 words. Use patient-friendly language.`,
	},
	TemplateRiskRationale: {
		ID:          TemplateRiskRationale,
		SystemRole:  "You are an expert pharmacogenomics assistant. Provide clear, accurate, and clinically relevant explanations. Avoid jargon where possible.",
		Temperature: 0.6,
		MaxTokens:   250,
		body: `Explain the pharmacogenomic risk for drug-gene interaction:

Drug: %s
Gene: %s
Phenotype: %s
Risk Level: %s
Clinical Context: %s

Provide:
1. Clear summary of the interaction and why it matters
2. Specific impact of the phenotype on drug metabolism
3. Why this is classified at this risk level
4. Key patient safety points

Keep under 180 words. Use clear, medical but accessible language.`,
	},
	TemplateDosingRationale: {
		ID:          TemplateDosingRationale,
		SystemRole:  "You are a clinical pharmacist expert in pharmacogenomics. Provide safe, evidence-based dosing recommendations.",
		Temperature: 0.4,
		MaxTokens:   220,
		body: `Provide dosing guidance based on pharmacogenomics:

Drug: %s
Patient Phenotype: %s
Gene: %s
Recommended Adjustment: %s
Risk Assessment: %s

Explain:
1. How the phenotype affects dose metabolism
2. The recommended dose adjustment (if any)
3. Key warning signs to watch for

Keep under 200 words. Emphasize safety.`,
	},
	TemplateMonitoringRationale: {
		ID:          TemplateMonitoringRationale,
		SystemRole:  "You are a pharmacogenomics educator. Explain phenotypes and their clinical significance clearly.",
		Temperature: 0.5,
		MaxTokens:   160,
		body: `Explain the monitoring plan for a pharmacogenomic finding:

Drug: %s
Gene: %s
Phenotype: %s
Monitoring Plan: %s

Explain:
1. Why this monitoring matters for this phenotype
2. What the monitoring detects
3. How often it is typically needed

Keep under 150 words. Use clear terminology.`,
	},
}

// Templates returns every template keyed by id.
func Templates() map[string]Template {
	out := make(map[string]Template, len(templates))
	for id, t := range templates {
		out[id] = t
	}
	return out
}

// TemplateByID returns the template for id.
func TemplateByID(id string) (Template, error) {
	t, ok := templates[id]
	if !ok {
		return Template{}, fmt.Errorf("unknown prompt template %q", id)
	}
	return t, nil
}

// SectionTemplates lists the templates rendered for every drug result,
// in output order.
func SectionTemplates() []string {
	return []string{
		TemplateVariantInterpretation,
		TemplateRiskRationale,
		TemplateDosingRationale,
		TemplateMonitoringRationale,
	}
}

// BuildPrompt renders the template body for an assessment.
func BuildPrompt(id string, a *domain.RiskAssessment) (string, error) {
	t, err := TemplateByID(id)
	if err != nil {
		return "", err
	}

	var prompt string
	switch id {
	case TemplateVariantInterpretation:
		prompt = fmt.Sprintf(t.body, a.Gene, a.Diplotype.String(), a.Phenotype.DisplayName(), a.ActivityScore)
	case TemplateRiskRationale:
		prompt = fmt.Sprintf(t.body, a.Drug, a.Gene, a.Phenotype.DisplayName(), a.RiskLabel(), a.Rule.Reason)
	case TemplateDosingRationale:
		prompt = fmt.Sprintf(t.body, a.Drug, a.Phenotype.DisplayName(), a.Gene, a.Rule.Dosing, a.RiskLabel())
	case TemplateMonitoringRationale:
		prompt = fmt.Sprintf(t.body, a.Drug, a.Gene, a.Phenotype.DisplayName(), a.Rule.Monitoring)
	default:
		return "", fmt.Errorf("unknown prompt template %q", id)
	}
	return strings.TrimSpace(prompt), nil
}

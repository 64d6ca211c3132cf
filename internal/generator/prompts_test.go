package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaguard-server/internal/domain"
)

func testAssessment() *domain.RiskAssessment {
	return &domain.RiskAssessment{
		Gene:          "CYP2D6",
		Drug:          "Codeine",
		Diplotype:     domain.Diplotype{Gene: "CYP2D6", Allele1: "*1", Allele2: "*1"},
		Phenotype:     domain.ULTRA_RAPID,
		ActivityScore: 2.0,
		Rule: domain.DrugRule{
			Gene:       "CYP2D6",
			Drug:       "Codeine",
			Phenotype:  domain.ULTRA_RAPID,
			Risk:       domain.TOXIC,
			Severity:   domain.SEVERITY_CRITICAL,
			Reason:     "Rapid conversion to morphine risks toxicity",
			Dosing:     "Avoid codeine; select a non-tramadol alternative",
			Monitoring: "Watch for signs of opioid toxicity",
			Citation:   "CPIC Guideline for Codeine and CYP2D6",
		},
	}
}

func TestSectionTemplates_AllDefined(t *testing.T) {
	ids := SectionTemplates()
	require.Len(t, ids, 4)

	for _, id := range ids {
		tmpl, err := TemplateByID(id)
		require.NoError(t, err, "template %s", id)
		assert.Equal(t, id, tmpl.ID)
		assert.NotEmpty(t, tmpl.SystemRole)
		assert.Greater(t, tmpl.MaxTokens, 0)
		assert.Greater(t, tmpl.Temperature, 0.0)
	}
}

func TestTemplateByID_Unknown(t *testing.T) {
	_, err := TemplateByID("drug_summary_v2")
	assert.Error(t, err)
}

func TestDosingTemplate_MostDeterministic(t *testing.T) {
	dosing, err := TemplateByID(TemplateDosingRationale)
	require.NoError(t, err)

	for _, id := range SectionTemplates() {
		tmpl, err := TemplateByID(id)
		require.NoError(t, err)
		assert.LessOrEqual(t, dosing.Temperature, tmpl.Temperature,
			"dosing guidance must use the lowest sampling temperature")
	}
}

func TestBuildPrompt(t *testing.T) {
	a := testAssessment()

	prompt, err := BuildPrompt(TemplateVariantInterpretation, a)
	require.NoError(t, err)
	assert.Contains(t, prompt, "CYP2D6")
	assert.Contains(t, prompt, "*1/*1")
	assert.Contains(t, prompt, "Ultra-Rapid Metabolizer")
	assert.Contains(t, prompt, "2.00")

	prompt, err = BuildPrompt(TemplateRiskRationale, a)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Codeine")
	assert.Contains(t, prompt, "High")
	assert.Contains(t, prompt, "Rapid conversion to morphine risks toxicity")

	prompt, err = BuildPrompt(TemplateDosingRationale, a)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Avoid codeine")

	prompt, err = BuildPrompt(TemplateMonitoringRationale, a)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Watch for signs of opioid toxicity")

	_, err = BuildPrompt("unknown", a)
	assert.Error(t, err)
}

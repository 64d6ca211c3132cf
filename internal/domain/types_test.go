package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhenotype_IsValid(t *testing.T) {
	valid := []Phenotype{ULTRA_RAPID, RAPID, NORMAL, INTERMEDIATE, POOR, NO_FUNCTION}
	for _, p := range valid {
		assert.True(t, p.IsValid(), "phenotype %s should be valid", p)
	}

	assert.False(t, Phenotype("EXTENSIVE").IsValid())
	assert.False(t, Phenotype("").IsValid())
}

func TestRiskLevel_Label(t *testing.T) {
	tests := []struct {
		risk  RiskLevel
		label string
	}{
		{TOXIC, "High"},
		{INEFFECTIVE, "High"},
		{ADJUST_DOSAGE, "Moderate"},
		{SAFE, "Low"},
		{UNKNOWN_RISK, "Unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.label, tt.risk.Label(), "risk %s", tt.risk)
	}
}

func TestRiskLevel_RequiresClinicalAction(t *testing.T) {
	assert.False(t, SAFE.RequiresClinicalAction())
	assert.True(t, ADJUST_DOSAGE.RequiresClinicalAction())
	assert.True(t, TOXIC.RequiresClinicalAction())
	assert.True(t, INEFFECTIVE.RequiresClinicalAction())
	assert.True(t, UNKNOWN_RISK.RequiresClinicalAction())
}

func TestDrugState_CanTransitionTo(t *testing.T) {
	// Forward progression is allowed
	assert.True(t, DRUG_PENDING.CanTransitionTo(DRUG_RESOLVING))
	assert.True(t, DRUG_RESOLVING.CanTransitionTo(DRUG_EXPLAINING))
	assert.True(t, DRUG_EXPLAINING.CanTransitionTo(DRUG_DONE))

	// Skipping the explaining stage is allowed
	assert.True(t, DRUG_RESOLVING.CanTransitionTo(DRUG_DONE))

	// failed is reachable from any non-terminal state
	assert.True(t, DRUG_PENDING.CanTransitionTo(DRUG_FAILED))
	assert.True(t, DRUG_RESOLVING.CanTransitionTo(DRUG_FAILED))
	assert.True(t, DRUG_EXPLAINING.CanTransitionTo(DRUG_FAILED))

	// Backward movement is refused
	assert.False(t, DRUG_EXPLAINING.CanTransitionTo(DRUG_RESOLVING))
	assert.False(t, DRUG_RESOLVING.CanTransitionTo(DRUG_PENDING))

	// Terminal states never transition
	assert.False(t, DRUG_DONE.CanTransitionTo(DRUG_FAILED))
	assert.False(t, DRUG_FAILED.CanTransitionTo(DRUG_DONE))
	assert.False(t, DRUG_DONE.CanTransitionTo(DRUG_EXPLAINING))
}

func TestJobState_IsTerminal(t *testing.T) {
	assert.False(t, JOB_QUEUED.IsTerminal())
	assert.False(t, JOB_RUNNING.IsTerminal())
	assert.True(t, JOB_COMPLETED.IsTerminal())
	assert.True(t, JOB_FAILED.IsTerminal())
}

func TestDiplotype_String_Canonical(t *testing.T) {
	a := Diplotype{Gene: "CYP2D6", Allele1: "*1", Allele2: "*4"}
	b := Diplotype{Gene: "CYP2D6", Allele1: "*4", Allele2: "*1"}

	assert.Equal(t, "*1/*4", a.String())
	assert.Equal(t, a.String(), b.String(), "allele order must not affect the rendering")
}

func TestDiplotype_IsHomozygous(t *testing.T) {
	assert.True(t, Diplotype{Gene: "TPMT", Allele1: "*1", Allele2: "*1"}.IsHomozygous())
	assert.False(t, Diplotype{Gene: "TPMT", Allele1: "*1", Allele2: "*3A"}.IsHomozygous())
}

func TestDiplotype_Validate(t *testing.T) {
	assert.NoError(t, Diplotype{Gene: "CYP2C9", Allele1: "*1", Allele2: "*3"}.Validate())
	assert.Error(t, Diplotype{Allele1: "*1", Allele2: "*3"}.Validate())
	assert.Error(t, Diplotype{Gene: "CYP2C9", Allele1: "*1"}.Validate())
}

func TestDrugRule_Validate(t *testing.T) {
	rule := DrugRule{
		Gene:      "CYP2D6",
		Drug:      "Codeine",
		Phenotype: POOR,
		Risk:      INEFFECTIVE,
		Severity:  SEVERITY_HIGH,
		Citation:  "CPIC Guideline for Codeine and CYP2D6",
	}
	assert.NoError(t, rule.Validate())

	bad := rule
	bad.Phenotype = "EXTENSIVE"
	assert.Error(t, bad.Validate())

	bad = rule
	bad.Citation = ""
	assert.Error(t, bad.Validate())
}

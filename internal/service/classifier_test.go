package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaguard-server/internal/catalog"
	"github.com/pharmaguard-server/internal/domain"
	"github.com/pharmaguard-server/internal/ruletable"
)

func newTestClassifier(t *testing.T) *RiskClassifier {
	t.Helper()
	cat := catalog.New()
	rules, err := ruletable.New()
	require.NoError(t, err)
	require.NoError(t, rules.ValidateCoverage(cat))
	return NewRiskClassifier(testLogger(), NewDiplotypeResolver(testLogger(), cat), rules)
}

func TestClassifier_Codeine_UltraRapid(t *testing.T) {
	c := newTestClassifier(t)

	assessment, err := c.Classify("Codeine", Genotypes{"CYP2D6": {"*1", "*1"}})
	require.NoError(t, err)

	assert.Equal(t, domain.ULTRA_RAPID, assessment.Phenotype)
	assert.Equal(t, domain.TOXIC, assessment.Rule.Risk)
	assert.Equal(t, "High", assessment.RiskLabel())
	assert.Equal(t, domain.SEVERITY_CRITICAL, assessment.Rule.Severity)
	assert.NotEmpty(t, assessment.Rule.Citation)
}

func TestClassifier_Codeine_PoorMetabolizer(t *testing.T) {
	c := newTestClassifier(t)

	assessment, err := c.Classify("Codeine", Genotypes{"CYP2D6": {"*4", "*4"}})
	require.NoError(t, err)

	assert.Equal(t, domain.POOR, assessment.Phenotype)
	assert.Equal(t, domain.INEFFECTIVE, assessment.Rule.Risk)
	assert.Equal(t, "High", assessment.RiskLabel())
}

func TestClassifier_Warfarin_Intermediate(t *testing.T) {
	c := newTestClassifier(t)

	assessment, err := c.Classify("Warfarin", Genotypes{"CYP2C9": {"*1", "*2"}})
	require.NoError(t, err)

	assert.Equal(t, domain.INTERMEDIATE, assessment.Phenotype)
	assert.InDelta(t, 1.8, assessment.ActivityScore, 1e-9)
	assert.Equal(t, domain.ADJUST_DOSAGE, assessment.Rule.Risk)
	assert.Contains(t, assessment.Rule.Dosing, "30-40%")
}

func TestClassifier_UnknownAllele(t *testing.T) {
	c := newTestClassifier(t)

	_, err := c.Classify("Codeine", Genotypes{"CYP2D6": {"*1", "*99"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownAllele)
}

func TestClassifier_UnknownDrug(t *testing.T) {
	c := newTestClassifier(t)

	_, err := c.Classify("Aspirin", Genotypes{"CYP2D6": {"*1", "*1"}})
	assert.ErrorIs(t, err, domain.ErrUnknownDrug)
}

func TestClassifier_MissingPrimaryGene(t *testing.T) {
	c := newTestClassifier(t)

	_, err := c.Classify("Codeine", Genotypes{"CYP2C9": {"*1", "*1"}})
	assert.ErrorIs(t, err, domain.ErrUnknownGene)
}

func TestClassifier_MultiGene_WorstMerge(t *testing.T) {
	c := newTestClassifier(t)

	// Normal CYP2D6 but poor CYP2C19: the verdict follows the most
	// impaired gene in the pair.
	assessment, err := c.Classify("Amitriptyline", Genotypes{
		"CYP2D6":  {"*1", "*41"}, // 1.5 -> RAPID
		"CYP2C19": {"*2", "*2"},  // 0.0 -> POOR
	})
	require.NoError(t, err)

	assert.Equal(t, domain.POOR, assessment.Phenotype)
	assert.Equal(t, "CYP2D6", assessment.Gene, "rule lookup stays on the primary gene")
}

func TestClassifier_MultiGene_SecondaryOptional(t *testing.T) {
	c := newTestClassifier(t)

	// Only the primary gene supplied: secondary genes sharpen, never gate.
	assessment, err := c.Classify("Simvastatin", Genotypes{"SLCO1B1": {"*1A", "*1B"}})
	require.NoError(t, err)
	assert.Equal(t, domain.NORMAL, assessment.Phenotype)
	assert.Equal(t, domain.SAFE, assessment.Rule.Risk)
}

func TestClassifier_Pure(t *testing.T) {
	c := newTestClassifier(t)
	genotypes := Genotypes{"TPMT": {"*1", "*3A"}}

	first, err := c.Classify("Azathioprine", genotypes)
	require.NoError(t, err)
	second, err := c.Classify("Azathioprine", genotypes)
	require.NoError(t, err)

	assert.Equal(t, first.Phenotype, second.Phenotype)
	assert.Equal(t, first.Rule, second.Rule)
	assert.Equal(t, first.ActivityScore, second.ActivityScore)
}

func TestClassifier_ValidateGenotypes(t *testing.T) {
	c := newTestClassifier(t)

	assert.NoError(t, c.ValidateGenotypes(Genotypes{
		"CYP2D6": {"*1", "*4"},
		"TPMT":   {"*1", "*1"},
	}))

	err := c.ValidateGenotypes(Genotypes{"CYP2D6": {"*1", "*99"}})
	assert.ErrorIs(t, err, domain.ErrUnknownAllele)

	err = c.ValidateGenotypes(Genotypes{"NOTAGENE": {"*1", "*1"}})
	assert.ErrorIs(t, err, domain.ErrUnknownGene)
}

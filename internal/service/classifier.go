package service

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pharmaguard-server/internal/domain"
	"github.com/pharmaguard-server/internal/ruletable"
)

// RiskClassifier combines resolver output with the rule table to produce
// per-drug risk assessments. Side-effect-free; assessments are not
// persisted here.
type RiskClassifier struct {
	logger   *logrus.Logger
	resolver *DiplotypeResolver
	rules    *ruletable.Table
}

// NewRiskClassifier creates a new classifier service.
func NewRiskClassifier(logger *logrus.Logger, resolver *DiplotypeResolver, rules *ruletable.Table) *RiskClassifier {
	return &RiskClassifier{
		logger:   logger,
		resolver: resolver,
		rules:    rules,
	}
}

// Genotypes maps gene symbol to the patient's two allele labels.
type Genotypes map[string][2]string

// Classify produces the risk assessment for one drug given the patient's
// genotypes. The drug name must already be canonical. Fails with
// RuleNotFound if the phenotype/drug combination has no guideline entry;
// this is surfaced to the caller, never silently downgraded to a safe
// verdict.
func (c *RiskClassifier) Classify(drug string, genotypes Genotypes) (*domain.RiskAssessment, error) {
	genes, ok := ruletable.GenesFor(drug)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownDrug, drug)
	}

	// Resolve every gene the drug depends on for which a genotype was
	// supplied. The primary gene must be present; secondary genes only
	// sharpen the verdict for multi-gene drugs.
	primary := genes[0]
	var primaryRes *Resolution
	phenotypes := make([]domain.Phenotype, 0, len(genes))
	for _, gene := range genes {
		alleles, present := genotypes[gene]
		if !present {
			continue
		}
		res, err := c.resolver.Resolve(gene, alleles[0], alleles[1])
		if err != nil {
			return nil, err
		}
		phenotypes = append(phenotypes, res.Phenotype)
		if res.Gene == primary {
			primaryRes = res
		}
	}
	if primaryRes == nil {
		return nil, fmt.Errorf("%w: no genotype for primary gene %s of drug %s", domain.ErrUnknownGene, primary, drug)
	}

	phenotype := MergeWorst(phenotypes)

	rule, err := c.rules.Lookup(primary, drug, phenotype)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"gene":      primary,
			"drug":      drug,
			"phenotype": string(phenotype),
		}).Error("No guideline rule for phenotype/drug combination")
		return nil, err
	}

	assessment := &domain.RiskAssessment{
		Gene:          primary,
		Drug:          drug,
		Diplotype:     primaryRes.Diplotype,
		Phenotype:     phenotype,
		ActivityScore: primaryRes.ActivityScore,
		Rule:          rule,
		AssessedAt:    time.Now().UTC(),
	}

	c.logger.WithFields(assessment.LogFields()).Info("Drug risk classified")
	return assessment, nil
}

// ValidateGenotypes rejects a genotype map referencing unrecognized
// alleles before any job is created. Returns the first offending allele
// wrapped in UnknownAllele, or UnknownGene for uncovered genes.
func (c *RiskClassifier) ValidateGenotypes(genotypes Genotypes) error {
	for gene, alleles := range genotypes {
		if _, err := c.resolver.Resolve(gene, alleles[0], alleles[1]); err != nil {
			return err
		}
	}
	return nil
}

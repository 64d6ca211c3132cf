// Package service implements the decision engine: diplotype resolution
// and gene-drug risk classification against the CPIC rule table.
package service

import (
	"github.com/sirupsen/logrus"

	"github.com/pharmaguard-server/internal/catalog"
	"github.com/pharmaguard-server/internal/domain"
)

// Resolution is the outcome of resolving one diplotype.
type Resolution struct {
	Gene          string
	Diplotype     domain.Diplotype
	Phenotype     domain.Phenotype
	ActivityScore float64
}

// DiplotypeResolver derives metabolizer phenotypes from allele pairs
// using the catalog's activity scores and per-gene tier tables. Pure
// lookup plus arithmetic; never blocks.
type DiplotypeResolver struct {
	logger  *logrus.Logger
	catalog *catalog.Catalog
}

// NewDiplotypeResolver creates a new resolver over the given catalog.
func NewDiplotypeResolver(logger *logrus.Logger, cat *catalog.Catalog) *DiplotypeResolver {
	return &DiplotypeResolver{
		logger:  logger,
		catalog: cat,
	}
}

// Resolve derives the phenotype for a diplotype. Fails with UnknownAllele
// if either allele is absent from the catalog for the gene. The result is
// a total, deterministic function of the two alleles; allele order does
// not matter because activity contributions are summed.
func (r *DiplotypeResolver) Resolve(gene, allele1, allele2 string) (*Resolution, error) {
	g, err := r.catalog.Gene(gene)
	if err != nil {
		return nil, err
	}

	a1, err := r.catalog.Allele(g.Symbol, allele1)
	if err != nil {
		return nil, err
	}
	a2, err := r.catalog.Allele(g.Symbol, allele2)
	if err != nil {
		return nil, err
	}

	activity := a1.Activity + a2.Activity
	phenotype := g.PhenotypeFor(activity)

	r.logger.WithFields(logrus.Fields{
		"gene":           g.Symbol,
		"diplotype":      domain.Diplotype{Gene: g.Symbol, Allele1: a1.Label, Allele2: a2.Label}.String(),
		"activity_score": activity,
		"phenotype":      string(phenotype),
	}).Debug("Resolved diplotype to phenotype")

	return &Resolution{
		Gene:          g.Symbol,
		Diplotype:     domain.Diplotype{Gene: g.Symbol, Allele1: a1.Label, Allele2: a2.Label},
		Phenotype:     phenotype,
		ActivityScore: activity,
	}, nil
}

// phenotypeSeverityOrder ranks phenotypes worst-first for multi-gene
// drugs, where the overall verdict follows the most impaired gene.
var phenotypeSeverityOrder = []domain.Phenotype{
	domain.NO_FUNCTION,
	domain.POOR,
	domain.INTERMEDIATE,
	domain.RAPID,
	domain.ULTRA_RAPID,
	domain.NORMAL,
}

// MergeWorst picks the most clinically impaired phenotype from a set, for
// drugs whose response is driven by more than one gene. Returns NORMAL
// for an empty set.
func MergeWorst(phenotypes []domain.Phenotype) domain.Phenotype {
	if len(phenotypes) == 0 {
		return domain.NORMAL
	}
	present := make(map[domain.Phenotype]bool, len(phenotypes))
	for _, p := range phenotypes {
		present[p] = true
	}
	for _, p := range phenotypeSeverityOrder {
		if present[p] {
			return p
		}
	}
	return domain.NORMAL
}

// Package catalog holds the static pharmacogene reference data: recognized
// star alleles per gene with their activity contribution, and per-gene
// activity tier tables mapping a diplotype activity score to a phenotype.
// Adding a gene is a data change in alleles.go, never a logic change.
package catalog

import (
	"sort"
	"strings"

	"github.com/pharmaguard-server/internal/domain"
)

// Allele is one recognized star allele with its functional status and
// activity score contribution. Immutable reference data.
type Allele struct {
	Label    string
	Function domain.AlleleFunction
	Activity float64
}

// ActivityTier maps a minimum diplotype activity score to a phenotype.
// Tiers are evaluated in descending Min order; the last tier has Min 0
// and acts as the catch-all, making resolution total.
type ActivityTier struct {
	Phenotype domain.Phenotype
	Min       float64
}

// Gene is the catalog entry for one pharmacogene.
type Gene struct {
	Symbol     string
	Chromosome string
	Alleles    map[string]Allele
	Tiers      []ActivityTier
}

// Phenotypes returns every phenotype this gene's tier table can produce,
// in tier order. The rule table must cover this full set for every drug
// it claims to handle against this gene.
func (g *Gene) Phenotypes() []domain.Phenotype {
	out := make([]domain.Phenotype, 0, len(g.Tiers))
	for _, t := range g.Tiers {
		out = append(out, t.Phenotype)
	}
	return out
}

// PhenotypeFor maps a summed activity score to a phenotype via the tier
// table. Total over all non-negative scores.
func (g *Gene) PhenotypeFor(activity float64) domain.Phenotype {
	for _, t := range g.Tiers {
		if activity >= t.Min {
			return t.Phenotype
		}
	}
	// last tier has Min 0, so this is only reachable on a malformed
	// tier table; fall back to the lowest tier rather than guessing up
	return g.Tiers[len(g.Tiers)-1].Phenotype
}

// Catalog is the immutable allele/diplotype reference lookup. Read-only
// at runtime; safe for concurrent use without locking.
type Catalog struct {
	genes map[string]*Gene
}

// New builds the catalog from the built-in reference data.
func New() *Catalog {
	return &Catalog{genes: referenceGenes()}
}

// geneAliases maps historical and misspelled gene symbols to the
// canonical catalog symbol. SLC01B1 (digit zero) appears in older
// genotype exports.
var geneAliases = map[string]string{
	"SLC01B1": "SLCO1B1",
}

// NormalizeGene canonicalizes a gene symbol for catalog lookup.
func NormalizeGene(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if canon, ok := geneAliases[s]; ok {
		return canon
	}
	return s
}

// Gene returns the catalog entry for a gene symbol.
func (c *Catalog) Gene(symbol string) (*Gene, error) {
	g, ok := c.genes[NormalizeGene(symbol)]
	if !ok {
		return nil, domain.ErrUnknownGene
	}
	return g, nil
}

// HasGene reports whether the catalog covers a gene symbol.
func (c *Catalog) HasGene(symbol string) bool {
	_, ok := c.genes[NormalizeGene(symbol)]
	return ok
}

// Allele returns the allele entry for (gene, label). Allele labels are
// matched case-insensitively on the suffix letter (*3a == *3A).
func (c *Catalog) Allele(gene, label string) (Allele, error) {
	g, err := c.Gene(gene)
	if err != nil {
		return Allele{}, err
	}
	a, ok := g.Alleles[normalizeAllele(label)]
	if !ok {
		return Allele{}, &domain.UnknownAlleleError{Gene: g.Symbol, Allele: label}
	}
	return a, nil
}

// Genes returns the covered gene symbols in sorted order.
func (c *Catalog) Genes() []string {
	out := make([]string, 0, len(c.genes))
	for symbol := range c.genes {
		out = append(out, symbol)
	}
	sort.Strings(out)
	return out
}

func normalizeAllele(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}

// functionFor derives the functional status enum from an activity score.
// Keeps the allele tables in alleles.go down to one number per allele.
func functionFor(activity float64) domain.AlleleFunction {
	switch {
	case activity == 0:
		return domain.FUNCTION_NONE
	case activity < 1.0:
		return domain.FUNCTION_REDUCED
	case activity == 1.0:
		return domain.FUNCTION_NORMAL
	default:
		return domain.FUNCTION_INCREASED
	}
}

// alleles builds an allele map from label → activity score.
func alleles(scores map[string]float64) map[string]Allele {
	out := make(map[string]Allele, len(scores))
	for label, activity := range scores {
		key := normalizeAllele(label)
		out[key] = Allele{
			Label:    key,
			Function: functionFor(activity),
			Activity: activity,
		}
	}
	return out
}

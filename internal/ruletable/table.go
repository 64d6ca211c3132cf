// Package ruletable holds the curated gene-drug guideline table keyed by
// (gene, drug, phenotype), the drug→gene map and the drug alias map.
// Immutable reference data; read-only at runtime, no locking required.
package ruletable

import (
	"fmt"

	"github.com/pharmaguard-server/internal/catalog"
	"github.com/pharmaguard-server/internal/domain"
)

type ruleKey struct {
	gene      string
	drug      string
	phenotype domain.Phenotype
}

// Table is the immutable rule lookup indexed by composite key.
type Table struct {
	rules map[ruleKey]domain.DrugRule
}

// New builds the rule table from the built-in reference entries.
func New() (*Table, error) {
	entries := referenceRules()
	rules := make(map[ruleKey]domain.DrugRule, len(entries))
	for i := range entries {
		r := entries[i]
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("rule table entry %d: %w", i, err)
		}
		key := ruleKey{gene: r.Gene, drug: r.Drug, phenotype: r.Phenotype}
		if _, dup := rules[key]; dup {
			return nil, fmt.Errorf("duplicate rule for gene=%s drug=%s phenotype=%s", r.Gene, r.Drug, r.Phenotype)
		}
		rules[key] = r
	}
	return &Table{rules: rules}, nil
}

// Lookup returns the rule for (gene, drug, phenotype). A miss surfaces
// RuleNotFound to the caller; it is never downgraded to a default safe
// verdict, because under-reporting risk is the unacceptable failure mode.
func (t *Table) Lookup(gene, drug string, phenotype domain.Phenotype) (domain.DrugRule, error) {
	r, ok := t.rules[ruleKey{gene: gene, drug: drug, phenotype: phenotype}]
	if !ok {
		return domain.DrugRule{}, &domain.RuleNotFoundError{Gene: gene, Drug: drug, Phenotype: phenotype}
	}
	return r, nil
}

// Covers reports whether the table has any rule for (gene, drug).
func (t *Table) Covers(gene, drug string) bool {
	for key := range t.rules {
		if key.gene == gene && key.drug == drug {
			return true
		}
	}
	return false
}

// ValidateCoverage checks that for every covered drug, each phenotype the
// catalog's tier tables can produce for any of the drug's genes has a rule
// under the drug's primary gene. A gap is a configuration defect and must
// fail startup; absence of a rule is never a runtime condition to default.
func (t *Table) ValidateCoverage(cat *catalog.Catalog) error {
	for drug, genes := range drugGenes {
		primary := genes[0]
		required := make(map[domain.Phenotype]struct{})
		for _, gene := range genes {
			g, err := cat.Gene(gene)
			if err != nil {
				return fmt.Errorf("rule table references gene %s absent from catalog: %w", gene, err)
			}
			for _, p := range g.Phenotypes() {
				required[p] = struct{}{}
			}
		}
		for phenotype := range required {
			if _, ok := t.rules[ruleKey{gene: primary, drug: drug, phenotype: phenotype}]; !ok {
				return fmt.Errorf("coverage gap: gene=%s drug=%s phenotype=%s has no rule", primary, drug, phenotype)
			}
		}
	}
	return nil
}

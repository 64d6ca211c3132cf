package ruletable

import (
	"sort"
	"strings"
)

// drugAliases maps brand names, abbreviations and common misspellings to
// the canonical drug name used as the rule table key.
var drugAliases = map[string]string{
	"warfarin":      "Warfarin",
	"warfarine":     "Warfarin",
	"coumarin":      "Warfarin",
	"coumarine":     "Warfarin",
	"codeine":       "Codeine",
	"tylenol 3":     "Codeine",
	"clopidogrel":   "Clopidogrel",
	"clopidogel":    "Clopidogrel",
	"plavix":        "Clopidogrel",
	"simvastatin":   "Simvastatin",
	"simvastine":    "Simvastatin",
	"zocor":         "Simvastatin",
	"azathioprine":  "Azathioprine",
	"imuran":        "Azathioprine",
	"aza":           "Azathioprine",
	"fluorouracil":  "Fluorouracil",
	"fluorouracile": "Fluorouracil",
	"5fu":           "Fluorouracil",
	"5-fu":          "Fluorouracil",
	"adrucil":       "Fluorouracil",
	"metoprolol":    "Metoprolol",
	"metaprolol":    "Metoprolol",
	"lopressor":     "Metoprolol",
	"amitriptyline": "Amitriptyline",
	"amitrityline":  "Amitriptyline",
	"elavil":        "Amitriptyline",
}

// drugGenes maps each covered drug to the genes that drive its
// pharmacokinetics. The first gene is the primary gene used for rule
// lookup; for multi-gene drugs the resolver merges phenotypes across
// all listed genes before classification.
var drugGenes = map[string][]string{
	"Codeine":       {"CYP2D6"},
	"Warfarin":      {"CYP2C9"},
	"Clopidogrel":   {"CYP2C19"},
	"Simvastatin":   {"SLCO1B1", "CYP3A4"},
	"Azathioprine":  {"TPMT"},
	"Fluorouracil":  {"DPYD"},
	"Metoprolol":    {"CYP2D6"},
	"Amitriptyline": {"CYP2D6", "CYP2C19"},
}

// NormalizeDrug canonicalizes a drug name, resolving aliases and brand
// names. Returns ("", false) for drugs outside the rule table.
func NormalizeDrug(name string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if canon, ok := drugAliases[key]; ok {
		return canon, true
	}
	return "", false
}

// GenesFor returns the genes driving a canonical drug's response, primary
// gene first.
func GenesFor(drug string) ([]string, bool) {
	genes, ok := drugGenes[drug]
	return genes, ok
}

// Drugs returns all covered canonical drug names in sorted order.
func Drugs() []string {
	out := make([]string, 0, len(drugGenes))
	for drug := range drugGenes {
		out = append(out, drug)
	}
	sort.Strings(out)
	return out
}

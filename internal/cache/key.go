// Package cache implements the content-addressed explanation cache.
// Keys are digests of every explanation-relevant input, so identical
// inputs always map to the same key and a changed input produces a new
// key rather than an overwrite.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// KeyInputs are the explanation-relevant inputs folded into a cache key.
// Fields are normalized before hashing so casing differences in caller
// input cannot split the cache.
type KeyInputs struct {
	Gene       string  `json:"gene"`
	Diplotype  string  `json:"diplotype"`
	Phenotype  string  `json:"phenotype"`
	Drug       string  `json:"drug"`
	RiskLevel  string  `json:"risk_level"`
	Activity   float64 `json:"activity_score"`
	TemplateID string  `json:"template_id"`
	Provider   string  `json:"provider"`
	Model      string  `json:"model"`
}

// Key computes the deterministic cache key for a set of inputs.
// json.Marshal on a struct emits fields in declaration order, which
// keeps the digest stable across processes.
func Key(in KeyInputs) string {
	norm := KeyInputs{
		Gene:       strings.ToUpper(strings.TrimSpace(in.Gene)),
		Diplotype:  strings.ToUpper(strings.TrimSpace(in.Diplotype)),
		Phenotype:  strings.ToLower(strings.TrimSpace(in.Phenotype)),
		Drug:       strings.ToLower(strings.TrimSpace(in.Drug)),
		RiskLevel:  strings.ToLower(strings.TrimSpace(in.RiskLevel)),
		Activity:   in.Activity,
		TemplateID: strings.ToLower(strings.TrimSpace(in.TemplateID)),
		Provider:   strings.ToLower(strings.TrimSpace(in.Provider)),
		Model:      strings.ToLower(strings.TrimSpace(in.Model)),
	}
	payload, _ := json.Marshal(norm)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

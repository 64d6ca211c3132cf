package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/pharmaguard-server/internal/cache"
	"github.com/pharmaguard-server/internal/domain"
	"github.com/pharmaguard-server/internal/generator"
)

// Explainer produces the narrative sections attached to a risk
// assessment. Every section is content-addressed: identical inputs
// reuse the cached text, and concurrent requests for the same key
// collapse into a single generation. Cache writes complete before the
// text is returned, so an acknowledged section is always durably
// recorded.
type Explainer struct {
	logger *logrus.Logger
	store  domain.ExplanationStore
	gen    domain.Generator
	group  singleflight.Group
}

// NewExplainer creates an explainer. gen may be nil when generation is
// disabled; Explain then returns empty narratives without error.
func NewExplainer(logger *logrus.Logger, store domain.ExplanationStore, gen domain.Generator) *Explainer {
	return &Explainer{logger: logger, store: store, gen: gen}
}

type sectionResult struct {
	text      string
	fromCache bool
}

// Explain renders all narrative sections for an assessment. The
// returned FromCache flag is set only when every section was served
// from the cache. A generation failure fails the whole explanation;
// the caller's verdict is unaffected.
func (e *Explainer) Explain(ctx context.Context, assessment *domain.RiskAssessment) (*domain.Explanation, error) {
	if e.gen == nil {
		return &domain.Explanation{}, nil
	}

	out := &domain.Explanation{
		Provider:  e.gen.Provider(),
		Model:     e.gen.Model(),
		FromCache: true,
	}

	for _, templateID := range generator.SectionTemplates() {
		section, err := e.section(ctx, assessment, templateID)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", templateID, err)
		}
		if !section.fromCache {
			out.FromCache = false
		}

		switch templateID {
		case generator.TemplateVariantInterpretation:
			out.VariantInterpretation = section.text
		case generator.TemplateRiskRationale:
			out.RiskRationale = section.text
		case generator.TemplateDosingRationale:
			out.DosingRationale = section.text
		case generator.TemplateMonitoringRationale:
			out.MonitoringRationale = section.text
		}
	}

	return out, nil
}

func (e *Explainer) section(ctx context.Context, a *domain.RiskAssessment, templateID string) (sectionResult, error) {
	key := cache.Key(cache.KeyInputs{
		Gene:       a.Gene,
		Diplotype:  a.Diplotype.String(),
		Phenotype:  a.Phenotype.String(),
		Drug:       a.Drug,
		RiskLevel:  a.Rule.Risk.String(),
		Activity:   a.ActivityScore,
		TemplateID: templateID,
		Provider:   e.gen.Provider(),
		Model:      e.gen.Model(),
	})

	v, err, shared := e.group.Do(key, func() (interface{}, error) {
		return e.getOrGenerate(ctx, a, templateID, key)
	})
	if err != nil {
		return sectionResult{}, err
	}

	res := v.(sectionResult)
	if shared {
		// Concurrent callers that piggybacked on another generation
		// still report a hit; the text came from one upstream call.
		res.fromCache = true
	}
	return res, nil
}

func (e *Explainer) getOrGenerate(ctx context.Context, a *domain.RiskAssessment, templateID, key string) (sectionResult, error) {
	entry, err := e.store.Get(ctx, key)
	if err != nil {
		return sectionResult{}, fmt.Errorf("cache read failed: %w", err)
	}
	if entry != nil {
		e.logger.WithFields(logrus.Fields{
			"template": templateID,
			"drug":     a.Drug,
			"gene":     a.Gene,
		}).Debug("Explanation cache hit")
		return sectionResult{text: entry.Text, fromCache: true}, nil
	}

	tmpl, err := generator.TemplateByID(templateID)
	if err != nil {
		return sectionResult{}, err
	}
	prompt, err := generator.BuildPrompt(templateID, a)
	if err != nil {
		return sectionResult{}, err
	}

	text, err := e.gen.Generate(ctx, tmpl.SystemRole, prompt, tmpl.Temperature, tmpl.MaxTokens)
	if err != nil {
		return sectionResult{}, err
	}

	// Write before acknowledging so a served explanation is never lost
	// to a restart.
	putErr := e.store.Put(ctx, &domain.CacheEntry{
		Key:        key,
		Text:       text,
		TemplateID: templateID,
		Provider:   e.gen.Provider(),
		Model:      e.gen.Model(),
		CreatedAt:  time.Now().UTC(),
	})
	if putErr != nil {
		return sectionResult{}, fmt.Errorf("cache write failed: %w", putErr)
	}

	return sectionResult{text: text, fromCache: false}, nil
}

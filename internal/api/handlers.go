package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pharmaguard-server/internal/catalog"
	"github.com/pharmaguard-server/internal/domain"
	"github.com/pharmaguard-server/internal/ruletable"
	"github.com/pharmaguard-server/internal/service"
)

// submitAnalysisRequest is the submission payload. Genotypes map gene
// symbols to a diplotype rendered as two star alleles, e.g. "*1/*4".
type submitAnalysisRequest struct {
	PatientID string            `json:"patient_id" binding:"required"`
	Genotypes map[string]string `json:"genotypes" binding:"required"`
	Drugs     []string          `json:"drugs" binding:"required"`
}

type submitAnalysisResponse struct {
	JobID string `json:"job_id"`
	State string `json:"state"`
}

func (s *Server) handleSubmitAnalysis(c *gin.Context) {
	var req submitAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "invalid request body", err.Error())
		return
	}

	genotypes := make(service.Genotypes, len(req.Genotypes))
	for gene, diplotype := range req.Genotypes {
		alleles := strings.Split(diplotype, "/")
		if len(alleles) != 2 || strings.TrimSpace(alleles[0]) == "" || strings.TrimSpace(alleles[1]) == "" {
			s.respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidGenotype,
				"diplotype must be two alleles separated by /", gene+"="+diplotype)
			return
		}
		canonical := catalog.NormalizeGene(gene)
		genotypes[canonical] = [2]string{strings.TrimSpace(alleles[0]), strings.TrimSpace(alleles[1])}
	}

	jobID, err := s.orch.Submit(req.PatientID, genotypes, req.Drugs)
	if err != nil {
		s.respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, submitAnalysisResponse{
		JobID: jobID,
		State: string(domain.JOB_QUEUED),
	})
}

func (s *Server) handleGetAnalysis(c *gin.Context) {
	snapshot, err := s.orch.Poll(c.Param("id"))
	if err != nil {
		s.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (s *Server) handleCancelAnalysis(c *gin.Context) {
	id := c.Param("id")
	if err := s.orch.Cancel(id); err != nil {
		s.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"job_id":   id,
		"canceled": true,
	})
}

func (s *Server) handleListDrugs(c *gin.Context) {
	drugs := ruletable.Drugs()
	out := make([]gin.H, 0, len(drugs))
	for _, drug := range drugs {
		genes, _ := ruletable.GenesFor(drug)
		out = append(out, gin.H{
			"name":  drug,
			"genes": genes,
		})
	}
	c.JSON(http.StatusOK, gin.H{"drugs": out})
}

func (s *Server) handleListGenes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"genes": s.catalog.Genes()})
}

func (s *Server) handleListReports(c *gin.Context) {
	if s.reports == nil {
		s.respondError(c, http.StatusNotImplemented, domain.ErrCodeInvalidInput,
			"report persistence is not enabled", "")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	records, err := s.reports.ListByPatient(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeInternal,
			"failed to list reports", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": records})
}

// handleHealth reports generator availability and cache readiness.
// Degraded dependencies do not fail the endpoint; the pipeline keeps
// producing rule-based verdicts without them.
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	generatorStatus := "disabled"
	if s.gen != nil {
		if s.gen.Healthy(ctx) {
			generatorStatus = "available"
		} else {
			generatorStatus = "unavailable"
		}
	}

	cacheStatus := "ready"
	if _, err := s.cache.Get(ctx, "health-probe"); err != nil {
		cacheStatus = "unavailable"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"generator": generatorStatus,
		"cache":     cacheStatus,
		"jobs":      s.orch.JobCount(),
	})
}

func (s *Server) respondError(c *gin.Context, status int, code, message, details string) {
	c.JSON(status, domain.NewAPIError(code, message, details, c.GetString("correlation_id")))
}

// respondDomainError maps pipeline errors onto HTTP statuses.
func (s *Server) respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidGenotype), errors.Is(err, domain.ErrUnknownAllele):
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidGenotype, "genotype rejected", err.Error())
	case errors.Is(err, domain.ErrUnknownDrug):
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "unrecognized drug", err.Error())
	case errors.Is(err, domain.ErrJobNotFound):
		s.respondError(c, http.StatusNotFound, domain.ErrCodeJobNotFound, "job not found", err.Error())
	case errors.Is(err, domain.ErrJobTerminal):
		s.respondError(c, http.StatusConflict, domain.ErrCodeInvalidInput, "job already finished", err.Error())
	default:
		s.logger.WithError(err).Error("Unhandled API error")
		s.respondError(c, http.StatusServiceUnavailable, domain.ErrCodeInternal, "request could not be processed", err.Error())
	}
}

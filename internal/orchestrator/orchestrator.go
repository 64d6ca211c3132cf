// Package orchestrator runs the asynchronous analysis pipeline: jobs
// are queued, picked up by a worker pool, fanned out per drug, and
// exposed to pollers only once every per-drug sub-state is terminal.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pharmaguard-server/internal/domain"
	"github.com/pharmaguard-server/internal/ruletable"
	"github.com/pharmaguard-server/internal/service"
)

const cancellationReason = "analysis canceled before completion"

// job is the orchestrator's mutable record of one analysis. All fields
// past the identifier are guarded by mu; pollers receive copies, never
// the live struct.
type job struct {
	mu sync.Mutex

	id        string
	patientID string
	genotypes service.Genotypes
	drugs     []string

	state       domain.JobState
	drugStates  map[string]domain.DrugState
	results     map[string]*domain.DrugResult
	err         string
	createdAt   time.Time
	completedAt *time.Time

	cancelCh   chan struct{}
	cancelOnce sync.Once
}

func (j *job) requestCancel() {
	j.cancelOnce.Do(func() { close(j.cancelCh) })
}

// Orchestrator owns job lifecycle: submission, worker scheduling,
// per-drug fan-out, and snapshot reads.
type Orchestrator struct {
	logger     *logrus.Logger
	classifier *service.RiskClassifier
	explainer  *service.Explainer
	reports    domain.ReportStore // may be nil

	workers      int
	drugParallel int

	mu    sync.RWMutex
	jobs  map[string]*job
	queue chan *job

	wg       sync.WaitGroup
	shutdown context.CancelFunc
	closed   bool
}

// New creates an orchestrator. reports may be nil when report
// persistence is disabled.
func New(logger *logrus.Logger, classifier *service.RiskClassifier, explainer *service.Explainer, reports domain.ReportStore, cfg domain.OrchestratorConfig) *Orchestrator {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}
	drugParallel := cfg.DrugParallel
	if drugParallel <= 0 {
		drugParallel = 4
	}

	return &Orchestrator{
		logger:       logger,
		classifier:   classifier,
		explainer:    explainer,
		reports:      reports,
		workers:      workers,
		drugParallel: drugParallel,
		jobs:         make(map[string]*job),
		queue:        make(chan *job, queueSize),
	}
}

// Start launches the worker pool. Workers exit when Shutdown is called
// and the queue drains.
func (o *Orchestrator) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	o.shutdown = cancel

	for i := 0; i < o.workers; i++ {
		o.wg.Add(1)
		go o.worker(ctx, i)
	}

	o.logger.WithFields(logrus.Fields{
		"workers":       o.workers,
		"queue_size":    cap(o.queue),
		"drug_parallel": o.drugParallel,
	}).Info("Orchestrator started")
}

// Shutdown stops accepting jobs and waits for in-flight work, up to the
// ctx deadline.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	close(o.queue)
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		if o.shutdown != nil {
			o.shutdown()
		}
		<-done
	}
	return nil
}

// Submit validates the request, creates a queued job, and enqueues it.
// Genotype problems are rejected here so no job record is created for
// unusable input.
func (o *Orchestrator) Submit(patientID string, genotypes service.Genotypes, drugs []string) (string, error) {
	if patientID == "" {
		return "", fmt.Errorf("%w: patient identifier is required", domain.ErrInvalidGenotype)
	}
	if len(genotypes) == 0 {
		return "", fmt.Errorf("%w: at least one gene genotype is required", domain.ErrInvalidGenotype)
	}
	if len(drugs) == 0 {
		return "", fmt.Errorf("%w: at least one drug is required", domain.ErrUnknownDrug)
	}

	if err := o.classifier.ValidateGenotypes(genotypes); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidGenotype, err)
	}

	// Canonicalize and dedupe while preserving request order.
	canonical := make([]string, 0, len(drugs))
	seen := make(map[string]struct{}, len(drugs))
	for _, name := range drugs {
		drug, ok := ruletable.NormalizeDrug(name)
		if !ok {
			return "", fmt.Errorf("%w: %s", domain.ErrUnknownDrug, name)
		}
		if _, dup := seen[drug]; dup {
			continue
		}
		seen[drug] = struct{}{}
		canonical = append(canonical, drug)
	}

	j := &job{
		id:         uuid.New().String(),
		patientID:  patientID,
		genotypes:  genotypes,
		drugs:      canonical,
		state:      domain.JOB_QUEUED,
		drugStates: make(map[string]domain.DrugState, len(canonical)),
		results:    make(map[string]*domain.DrugResult, len(canonical)),
		createdAt:  time.Now().UTC(),
		cancelCh:   make(chan struct{}),
	}
	for _, drug := range canonical {
		j.drugStates[drug] = domain.DRUG_PENDING
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return "", errors.New("orchestrator is shutting down")
	}
	o.jobs[j.id] = j

	select {
	case o.queue <- j:
		o.mu.Unlock()
	default:
		delete(o.jobs, j.id)
		o.mu.Unlock()
		return "", errors.New("analysis queue is full")
	}

	o.logger.WithFields(logrus.Fields{
		"job_id":     j.id,
		"patient_id": patientID,
		"drugs":      canonical,
	}).Info("Analysis job queued")

	return j.id, nil
}

// Poll returns a read-only snapshot of the job. Per-drug results appear
// only once the job reached a terminal state.
func (o *Orchestrator) Poll(id string) (*domain.JobSnapshot, error) {
	o.mu.RLock()
	j, ok := o.jobs[id]
	o.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrJobNotFound, id)
	}
	return j.snapshot(), nil
}

// Cancel aborts a job that has not yet completed. Remaining non-terminal
// drugs are marked failed with a cancellation reason; entries already
// written to the explanation cache stay, they are valid independent of
// the job that produced them.
func (o *Orchestrator) Cancel(id string) error {
	o.mu.RLock()
	j, ok := o.jobs[id]
	o.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrJobNotFound, id)
	}

	j.mu.Lock()
	if j.state.IsTerminal() {
		j.mu.Unlock()
		return fmt.Errorf("%w: job %s is already %s", domain.ErrJobTerminal, id, j.state)
	}
	if j.state == domain.JOB_QUEUED {
		// Not yet owned by a worker: finalize here. Running jobs are
		// finalized by their worker once in-flight calls unwind.
		j.finalizeCancelLocked()
	}
	j.mu.Unlock()

	j.requestCancel()

	o.logger.WithFields(logrus.Fields{"job_id": id}).Info("Analysis job canceled")
	return nil
}

// JobCount reports tracked jobs, for the health endpoint.
func (o *Orchestrator) JobCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.jobs)
}

func (o *Orchestrator) worker(ctx context.Context, n int) {
	defer o.wg.Done()

	log := o.logger.WithFields(logrus.Fields{"worker": n})
	for j := range o.queue {
		select {
		case <-ctx.Done():
			return
		default:
		}
		o.run(ctx, j, log)
	}
}

// run executes one job. Exactly one worker owns a job at a time.
func (o *Orchestrator) run(ctx context.Context, j *job, log *logrus.Entry) {
	jobCtx, cancelJob := context.WithCancel(ctx)
	defer cancelJob()

	j.mu.Lock()
	if j.state.IsTerminal() {
		// Canceled while still queued.
		j.mu.Unlock()
		return
	}
	j.state = domain.JOB_RUNNING
	j.mu.Unlock()

	go func() {
		select {
		case <-j.cancelCh:
			cancelJob()
		case <-jobCtx.Done():
		}
	}()

	log.WithFields(logrus.Fields{"job_id": j.id, "drugs": len(j.drugs)}).Info("Analysis job started")

	sem := make(chan struct{}, o.drugParallel)
	var wg sync.WaitGroup
	for _, drug := range j.drugs {
		wg.Add(1)
		sem <- struct{}{}
		go func(drug string) {
			defer wg.Done()
			defer func() { <-sem }()
			o.runDrug(jobCtx, j, drug)
		}(drug)
	}
	wg.Wait()

	j.mu.Lock()
	if !j.state.IsTerminal() {
		if jobCtx.Err() != nil {
			j.finalizeCancelLocked()
		} else {
			now := time.Now().UTC()
			j.state = domain.JOB_COMPLETED
			j.completedAt = &now
		}
	}
	state := j.state
	j.mu.Unlock()

	log.WithFields(logrus.Fields{"job_id": j.id, "state": string(state)}).Info("Analysis job finished")

	if state == domain.JOB_COMPLETED {
		o.persistReports(j)
	}
}

func (o *Orchestrator) runDrug(ctx context.Context, j *job, drug string) {
	if err := ctx.Err(); err != nil {
		j.failDrug(drug, cancellationReason, nil)
		return
	}

	if !j.advanceDrug(drug, domain.DRUG_RESOLVING) {
		return
	}

	j.mu.Lock()
	genotypes := j.genotypes
	j.mu.Unlock()

	assessment, err := o.classifier.Classify(drug, genotypes)
	if err != nil {
		o.logger.WithFields(logrus.Fields{
			"job_id": j.id,
			"drug":   drug,
			"error":  err.Error(),
		}).Warn("Drug classification failed")
		j.failDrug(drug, err.Error(), nil)
		return
	}

	if !j.advanceDrug(drug, domain.DRUG_EXPLAINING) {
		return
	}

	explanation, err := o.explainer.Explain(ctx, assessment)
	if err != nil {
		reason := err.Error()
		if ctx.Err() != nil {
			reason = cancellationReason
		}
		o.logger.WithFields(logrus.Fields{
			"job_id": j.id,
			"drug":   drug,
			"error":  err.Error(),
		}).Warn("Explanation generation failed, verdict kept")
		// The verdict stands; only the narrative enrichment failed.
		j.failDrug(drug, reason, assessment)
		return
	}

	j.completeDrug(drug, assessment, explanation)
}

func (o *Orchestrator) persistReports(j *job) {
	if o.reports == nil {
		return
	}

	j.mu.Lock()
	patientID := j.patientID
	genesAnalyzed := len(j.genotypes)
	results := make([]*domain.DrugResult, 0, len(j.drugs))
	for _, drug := range j.drugs {
		if r, ok := j.results[drug]; ok {
			results = append(results, r)
		}
	}
	j.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, result := range results {
		if result.Assessment == nil {
			continue
		}
		record := domain.NewReportRecord(patientID, genesAnalyzed, result)
		if err := o.reports.Save(ctx, record); err != nil {
			// Persistence is an enrichment; the job outcome stands.
			o.logger.WithFields(logrus.Fields{
				"job_id": j.id,
				"drug":   result.Drug,
				"error":  err.Error(),
			}).Error("Failed to persist analysis report")
		}
	}
}

// advanceDrug applies a forward transition, refusing movement out of a
// terminal sub-state (e.g. after cancellation already failed the drug).
func (j *job) advanceDrug(drug string, next domain.DrugState) bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	current := j.drugStates[drug]
	if !current.CanTransitionTo(next) {
		return false
	}
	j.drugStates[drug] = next
	return true
}

// failDrug marks the drug failed. A verdict produced before the failure
// is kept on the result.
func (j *job) failDrug(drug, reason string, assessment *domain.RiskAssessment) {
	j.mu.Lock()
	defer j.mu.Unlock()

	current := j.drugStates[drug]
	if current.IsTerminal() {
		return
	}
	j.drugStates[drug] = domain.DRUG_FAILED
	j.results[drug] = &domain.DrugResult{
		Drug:          drug,
		State:         domain.DRUG_FAILED,
		Assessment:    assessment,
		FailureReason: reason,
	}
}

func (j *job) completeDrug(drug string, assessment *domain.RiskAssessment, explanation *domain.Explanation) {
	j.mu.Lock()
	defer j.mu.Unlock()

	current := j.drugStates[drug]
	if !current.CanTransitionTo(domain.DRUG_DONE) {
		return
	}
	j.drugStates[drug] = domain.DRUG_DONE
	j.results[drug] = &domain.DrugResult{
		Drug:        drug,
		State:       domain.DRUG_DONE,
		Assessment:  assessment,
		Explanation: explanation,
		CacheHit:    explanation != nil && explanation.FromCache,
	}
}

// finalizeCancelLocked fails every non-terminal drug and closes the job.
// Caller holds j.mu.
func (j *job) finalizeCancelLocked() {
	for drug, state := range j.drugStates {
		if state.IsTerminal() {
			continue
		}
		j.drugStates[drug] = domain.DRUG_FAILED
		j.results[drug] = &domain.DrugResult{
			Drug:          drug,
			State:         domain.DRUG_FAILED,
			FailureReason: cancellationReason,
		}
	}
	now := time.Now().UTC()
	j.state = domain.JOB_FAILED
	j.err = cancellationReason
	j.completedAt = &now
}

// snapshot copies the job for pollers. Results are attached only once
// the job is terminal so readers never see a half-finished verdict set.
func (j *job) snapshot() *domain.JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()

	snap := &domain.JobSnapshot{
		ID:        j.id,
		PatientID: j.patientID,
		State:     j.state,
		Drugs:     append([]string(nil), j.drugs...),
		CreatedAt: j.createdAt,
		Error:     j.err,
	}
	snap.DrugStates = make(map[string]domain.DrugState, len(j.drugStates))
	for drug, state := range j.drugStates {
		snap.DrugStates[drug] = state
	}
	if j.completedAt != nil {
		t := *j.completedAt
		snap.CompletedAt = &t
	}
	if j.state.IsTerminal() {
		snap.Results = make([]domain.DrugResult, 0, len(j.drugs))
		for _, drug := range j.drugs {
			if r, ok := j.results[drug]; ok {
				snap.Results = append(snap.Results, *r)
			}
		}
	}
	return snap
}

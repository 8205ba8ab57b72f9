package service

import (
	"context"
	"fmt"

	"github.com/accessivision/backend/internal/domain"
	"github.com/accessivision/backend/internal/logger"
	"github.com/accessivision/backend/internal/repository"
	"github.com/accessivision/backend/internal/scraper"
	"github.com/accessivision/backend/internal/workerpool"
)

// AuditService drives listing audit jobs through their phases:
// fetch -> per-photo audit -> per-photo generation -> completed.
//
// Each job is owned by a single goroutine; all registry writes go through
// the repository's atomic Mutate so pollers always see a consistent
// snapshot. Per-item failures are recorded on the item and never escalate;
// only a fetch failure or an unexpected internal error fails the job.
type AuditService struct {
	jobs      *repository.JobRepository
	cache     *repository.RenderCache
	scraper   scraper.Scraper
	auditor   Auditor
	generator Generator
	pool      *workerpool.Pool
	log       *logger.Logger
	maxImages int
}

// PipelineConfig holds configuration for the audit pipeline.
type PipelineConfig struct {
	MaxImages int // upper bound on photos per job regardless of the request
}

// NewAuditService creates a new audit pipeline service.
func NewAuditService(
	jobs *repository.JobRepository,
	cache *repository.RenderCache,
	listingScraper scraper.Scraper,
	auditor Auditor,
	generator Generator,
	pool *workerpool.Pool,
	log *logger.Logger,
	cfg *PipelineConfig,
) *AuditService {
	maxImages := cfg.MaxImages
	if maxImages <= 0 {
		maxImages = 5
	}
	return &AuditService{
		jobs:      jobs,
		cache:     cache,
		scraper:   listingScraper,
		auditor:   auditor,
		generator: generator,
		pool:      pool,
		log:       log,
		maxImages: maxImages,
	}
}

// CreateJob registers a new job and starts its pipeline in the background.
// The caller gets the job ID immediately and polls for progress.
func (s *AuditService) CreateJob(listingURL string, maxImages int, wheelchairAccessible bool) string {
	if maxImages <= 0 || maxImages > s.maxImages {
		maxImages = s.maxImages
	}

	jobID := s.jobs.Create()

	// The request context dies with the HTTP response; the job does not.
	ctx := logger.SetJobID(context.Background(), jobID)

	go s.run(ctx, jobID, listingURL, maxImages, wheelchairAccessible)

	return jobID
}

// GetJob returns a snapshot of the job, or false for an unknown ID.
func (s *AuditService) GetJob(id string) (*domain.Job, bool) {
	return s.jobs.Get(id)
}

// run executes all phases for one job. It is the only writer for this job's
// record. Once the job reaches a terminal status it is never touched again.
func (s *AuditService) run(ctx context.Context, jobID, listingURL string, maxImages int, wheelchairAccessible bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.CtxError(ctx, "Pipeline panicked: job_id=%s, panic=%v", jobID, r)
			s.fail(jobID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	listing, ok := s.fetch(ctx, jobID, listingURL, maxImages)
	if !ok {
		return
	}

	results := s.audit(ctx, jobID, listing.PhotoURLs, wheelchairAccessible)
	s.generate(ctx, jobID, results, wheelchairAccessible)

	s.jobs.Mutate(jobID, func(j *domain.Job) {
		j.Status = domain.JobStatusCompleted
		j.AuditProgress = 100
		j.GenerationProgress = 100
		j.CurrentStatusText = "Complete"
	})
	logger.CtxInfo(ctx, "Job completed: job_id=%s, images=%d", jobID, len(results))
}

// fetch runs the Fetching phase. It reports false when the job has been
// moved to failed and the pipeline must stop.
func (s *AuditService) fetch(ctx context.Context, jobID, listingURL string, maxImages int) (*domain.ListingData, bool) {
	s.jobs.Mutate(jobID, func(j *domain.Job) {
		j.CurrentStatusText = "Fetching listing"
	})
	logger.CtxInfo(ctx, "Fetching listing: url=%s", listingURL)

	var listing *domain.ListingData
	err := s.pool.Do(ctx, func() error {
		var fetchErr error
		listing, fetchErr = s.scraper.FetchListing(ctx, listingURL)
		return fetchErr
	})
	if err != nil {
		s.fail(jobID, "Failed to fetch listing: "+err.Error())
		return nil, false
	}

	if len(listing.PhotoURLs) == 0 {
		s.fail(jobID, "No images found in listing. The listing may have no photos or the page could not be read.")
		return nil, false
	}

	// Excess photos are silently dropped, not an error.
	if len(listing.PhotoURLs) > maxImages {
		listing.PhotoURLs = listing.PhotoURLs[:maxImages]
	}

	s.jobs.Mutate(jobID, func(j *domain.Job) {
		j.PropertyInfo = listing.PropertyInfo
		j.TotalItems = len(listing.PhotoURLs)
	})

	logger.CtxInfo(ctx, "Listing fetched: photos=%d", len(listing.PhotoURLs))
	return listing, true
}

// audit runs the Auditing phase over every photo in fetch order. An item
// whose audit fails carries the error on its Result and is excluded from
// generation; the loop always continues.
func (s *AuditService) audit(ctx context.Context, jobID string, photoURLs []string, wheelchairAccessible bool) []domain.Result {
	total := len(photoURLs)
	results := make([]domain.Result, 0, total)

	for i, photoURL := range photoURLs {
		index := i + 1
		s.jobs.Mutate(jobID, func(j *domain.Job) {
			j.CurrentStatusText = fmt.Sprintf("Auditing image %d/%d", index, total)
		})

		result := domain.Result{
			ItemIndex: index,
			SourceURL: photoURL,
		}

		var outcome *domain.AuditOutcome
		err := s.pool.Do(ctx, func() error {
			var auditErr error
			outcome, auditErr = s.auditor.Analyze(ctx, photoURL, wheelchairAccessible)
			return auditErr
		})
		if err != nil {
			logger.CtxWarn(ctx, "Audit failed for image %d/%d: %v", index, total, err)
			result.Error = err.Error()
		} else {
			result.Audit = outcome
		}

		results = append(results, result)

		// Publish the growing list so pollers see partial progress mid-loop.
		published := result
		s.jobs.Mutate(jobID, func(j *domain.Job) {
			j.Results = append(j.Results, published)
			j.AuditProgress = index * 100 / total
		})
	}

	return results
}

// generate runs the Generating phase over the audited items in the same
// order. Items without a usable audit or without a barrier are skipped
// silently; a failed or empty generation leaves the item artifact-less
// without recording an error.
func (s *AuditService) generate(ctx context.Context, jobID string, results []domain.Result, wheelchairAccessible bool) {
	total := len(results)

	for i := range results {
		result := results[i]
		index := result.ItemIndex

		if result.Audit.HasBarrier() {
			s.jobs.Mutate(jobID, func(j *domain.Job) {
				j.CurrentStatusText = fmt.Sprintf("Generating renovation %d/%d", index, total)
			})

			if artifact := s.renderOne(ctx, result.SourceURL, result.Audit, wheelchairAccessible); artifact != "" {
				s.jobs.Mutate(jobID, func(j *domain.Job) {
					j.Results[i].RenovatedImage = artifact
				})
			}
		}

		s.jobs.Mutate(jobID, func(j *domain.Job) {
			j.GenerationProgress = index * 100 / total
		})
	}
}

// renderOne resolves one item's artifact through the cache, invoking the
// generator only on a miss. It returns "" when no artifact could be made.
func (s *AuditService) renderOne(ctx context.Context, sourceURL string, audit *domain.AuditOutcome, wheelchairAccessible bool) string {
	spec := domain.NewRenderSpec(audit, wheelchairAccessible)
	key := spec.CacheKey(sourceURL)

	if cached, ok := s.cache.Get(key); ok {
		logger.CtxDebug(ctx, "Render cache hit: key=%s", key[:16])
		return cached.Image
	}

	var rendered []byte
	err := s.pool.Do(ctx, func() error {
		var renderErr error
		rendered, renderErr = s.generator.Render(ctx, sourceURL, spec)
		return renderErr
	})
	if err != nil {
		logger.CtxWarn(ctx, "Generation failed: url=%s, error=%v", sourceURL, err)
		return ""
	}
	if rendered == nil {
		logger.CtxInfo(ctx, "Generation produced no image: url=%s", sourceURL)
		return ""
	}

	artifact, _ := s.cache.PutIfAbsent(key, repository.RenderArtifact{
		Image:       EncodeArtifact(rendered),
		OriginalURL: sourceURL,
	})
	return artifact.Image
}

// fail moves the job to its failed terminal state with the raw error text.
func (s *AuditService) fail(jobID, message string) {
	s.jobs.Mutate(jobID, func(j *domain.Job) {
		j.Status = domain.JobStatusFailed
		j.Error = message
	})
}

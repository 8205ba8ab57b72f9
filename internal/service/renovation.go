package service

import (
	"context"
	"errors"

	"github.com/accessivision/backend/internal/domain"
	"github.com/accessivision/backend/internal/logger"
	"github.com/accessivision/backend/internal/repository"
	"github.com/accessivision/backend/internal/workerpool"
	"golang.org/x/sync/singleflight"
)

// ErrNoRenovationPrompts is returned when the supplied audit carries no
// usable generation prompts.
var ErrNoRenovationPrompts = errors.New("no renovation prompts found in audit data")

// ErrNoImageProduced is returned when the generator declines to produce an
// artifact for the request.
var ErrNoImageProduced = errors.New("image generation returned no data")

// RenovationService serves on-demand renovation requests, typically issued
// when a user clicks a single photo. Identical concurrent requests are
// collapsed onto one generator invocation, and completed artifacts are kept
// in the content-addressed render cache for the life of the process.
type RenovationService struct {
	cache     *repository.RenderCache
	generator Generator
	pool      *workerpool.Pool
	group     singleflight.Group
	log       *logger.Logger
}

// NewRenovationService creates a new on-demand renovation service.
func NewRenovationService(cache *repository.RenderCache, generator Generator, pool *workerpool.Pool, log *logger.Logger) *RenovationService {
	return &RenovationService{
		cache:     cache,
		generator: generator,
		pool:      pool,
		log:       log,
	}
}

// RenovationResult is the outcome of an on-demand generation request.
// Cached is true when the request performed no generation of its own, whether
// the artifact came from the cache or from another caller's in-flight run.
type RenovationResult struct {
	Artifact repository.RenderArtifact
	Cached   bool
}

// Generate renders the renovation for one photo, deduplicated by cache key.
// Two callers racing on the same (photo, prompts, mode) share a single
// generator call and observe the same artifact.
func (s *RenovationService) Generate(ctx context.Context, imageURL string, audit *domain.AuditOutcome, wheelchairAccessible bool) (*RenovationResult, error) {
	if !audit.HasBarrier() {
		return nil, ErrNoRenovationPrompts
	}

	spec := domain.NewRenderSpec(audit, wheelchairAccessible)
	key := spec.CacheKey(imageURL)

	if artifact, ok := s.cache.Get(key); ok {
		logger.CtxInfo(ctx, "Render cache hit: key=%s", key[:16])
		return &RenovationResult{Artifact: artifact, Cached: true}, nil
	}

	logger.CtxInfo(ctx, "Render cache miss, generating: url=%s", imageURL)

	// Set only by the flight leader; followers never run the function and
	// report the leader's artifact as cached.
	generated := false
	value, err, _ := s.group.Do(key, func() (interface{}, error) {
		// Re-check under the flight: a pipeline run may have filled the
		// entry while this request waited.
		if artifact, ok := s.cache.Get(key); ok {
			return artifact, nil
		}

		var rendered []byte
		poolErr := s.pool.Do(ctx, func() error {
			var renderErr error
			rendered, renderErr = s.generator.Render(ctx, imageURL, spec)
			return renderErr
		})
		if poolErr != nil {
			return nil, poolErr
		}
		if rendered == nil {
			return nil, ErrNoImageProduced
		}
		generated = true

		artifact, _ := s.cache.PutIfAbsent(key, repository.RenderArtifact{
			Image:       EncodeArtifact(rendered),
			OriginalURL: imageURL,
		})
		return artifact, nil
	})
	if err != nil {
		return nil, err
	}

	return &RenovationResult{
		Artifact: value.(repository.RenderArtifact),
		Cached:   !generated,
	}, nil
}

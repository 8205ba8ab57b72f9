package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/accessivision/backend/internal/domain"
	"github.com/accessivision/backend/internal/logger"
	"github.com/accessivision/backend/internal/repository"
	"github.com/accessivision/backend/internal/workerpool"
)

func newRenovationService(gen *fakeGenerator) (*RenovationService, *repository.RenderCache) {
	cache := repository.NewRenderCache()
	return NewRenovationService(cache, gen, workerpool.New(3), logger.New(nil)), cache
}

func TestRenovationRejectsAuditWithoutPrompts(t *testing.T) {
	svc, _ := newRenovationService(&fakeGenerator{})

	_, err := svc.Generate(context.Background(), "https://cdn.example.com/1.jpg", &domain.AuditOutcome{
		BarrierDetected: "stairs",
	}, false)
	if !errors.Is(err, ErrNoRenovationPrompts) {
		t.Errorf("got %v, want ErrNoRenovationPrompts", err)
	}

	_, err = svc.Generate(context.Background(), "https://cdn.example.com/1.jpg", nil, false)
	if !errors.Is(err, ErrNoRenovationPrompts) {
		t.Errorf("nil audit: got %v, want ErrNoRenovationPrompts", err)
	}
}

func TestRenovationSecondRequestHitsCache(t *testing.T) {
	gen := &fakeGenerator{}
	svc, _ := newRenovationService(gen)

	audit := barrierOutcome()
	url := "https://cdn.example.com/1.jpg"

	first, err := svc.Generate(context.Background(), url, audit, false)
	if err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if first.Cached {
		t.Error("first request reported a cached artifact")
	}
	if first.Artifact.Image == "" || first.Artifact.OriginalURL != url {
		t.Errorf("unexpected artifact: %+v", first.Artifact)
	}

	second, err := svc.Generate(context.Background(), url, audit, false)
	if err != nil {
		t.Fatalf("second request failed: %v", err)
	}
	if !second.Cached {
		t.Error("second request did not report the cached artifact")
	}
	if second.Artifact.Image != first.Artifact.Image {
		t.Error("second request returned a different artifact")
	}
	if gen.callCount() != 1 {
		t.Errorf("generator invoked %d times, want 1", gen.callCount())
	}
}

func TestRenovationDistinctModesGenerateSeparately(t *testing.T) {
	gen := &fakeGenerator{}
	svc, _ := newRenovationService(gen)

	audit := barrierOutcome()
	url := "https://cdn.example.com/1.jpg"

	if _, err := svc.Generate(context.Background(), url, audit, false); err != nil {
		t.Fatalf("standard request failed: %v", err)
	}
	res, err := svc.Generate(context.Background(), url, audit, true)
	if err != nil {
		t.Fatalf("wheelchair request failed: %v", err)
	}
	if res.Cached {
		t.Error("wheelchair request reused the standard-mode artifact")
	}
	if gen.callCount() != 2 {
		t.Errorf("generator invoked %d times, want 2", gen.callCount())
	}
}

func TestRenovationConcurrentIdenticalRequestsShareOneGeneration(t *testing.T) {
	gen := &fakeGenerator{fn: func(string, domain.RenderSpec) ([]byte, error) {
		time.Sleep(20 * time.Millisecond)
		return []byte("rendered"), nil
	}}
	svc, _ := newRenovationService(gen)

	audit := barrierOutcome()
	url := "https://cdn.example.com/1.jpg"

	const callers = 8
	images := make([]string, callers)
	cached := make([]bool, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			res, err := svc.Generate(context.Background(), url, audit, false)
			errs[n] = err
			if err == nil {
				images[n] = res.Artifact.Image
				cached[n] = res.Cached
			}
		}(i)
	}
	wg.Wait()

	fresh := 0
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d failed: %v", i, errs[i])
		}
		if images[i] != images[0] {
			t.Errorf("caller %d observed a different artifact", i)
		}
		if !cached[i] {
			fresh++
		}
	}
	if got := gen.callCount(); got != 1 {
		t.Errorf("generator invoked %d times for identical requests, want 1", got)
	}
	// Only the caller that ran the generator reports a fresh artifact.
	if fresh != 1 {
		t.Errorf("%d callers reported a fresh generation, want 1", fresh)
	}
}

func TestRenovationGeneratorProducingNothingIsAnError(t *testing.T) {
	gen := &fakeGenerator{fn: func(string, domain.RenderSpec) ([]byte, error) {
		return nil, nil
	}}
	svc, cache := newRenovationService(gen)

	_, err := svc.Generate(context.Background(), "https://cdn.example.com/1.jpg", barrierOutcome(), false)
	if !errors.Is(err, ErrNoImageProduced) {
		t.Errorf("got %v, want ErrNoImageProduced", err)
	}
	if cache.Len() != 0 {
		t.Error("a failed generation must not populate the cache")
	}
}

func TestRenovationGeneratorErrorPropagates(t *testing.T) {
	wantErr := errors.New("edit API request failed")
	gen := &fakeGenerator{fn: func(string, domain.RenderSpec) ([]byte, error) {
		return nil, wantErr
	}}
	svc, _ := newRenovationService(gen)

	_, err := svc.Generate(context.Background(), "https://cdn.example.com/1.jpg", barrierOutcome(), false)
	if !errors.Is(err, wantErr) {
		t.Errorf("got %v, want the generator error", err)
	}
}

func TestRenovationObservesArtifactFilledElsewhere(t *testing.T) {
	// A pipeline run may fill the cache between the miss check and the
	// flight; the service must return that artifact without generating.
	gen := &fakeGenerator{}
	svc, cache := newRenovationService(gen)

	audit := barrierOutcome()
	url := "https://cdn.example.com/1.jpg"
	key := domain.NewRenderSpec(audit, false).CacheKey(url)
	cache.PutIfAbsent(key, repository.RenderArtifact{
		Image:       "data:image/webp;base64,pipeline",
		OriginalURL: url,
	})

	res, err := svc.Generate(context.Background(), url, audit, false)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if !res.Cached || res.Artifact.Image != "data:image/webp;base64,pipeline" {
		t.Errorf("expected the pipeline artifact, got %+v", res)
	}
	if gen.callCount() != 0 {
		t.Errorf("generator invoked %d times, want 0", gen.callCount())
	}
}

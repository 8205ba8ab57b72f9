package repository

import (
	"fmt"
	"sync"
	"testing"
)

func TestRenderCacheGetMiss(t *testing.T) {
	cache := NewRenderCache()

	if _, ok := cache.Get("missing"); ok {
		t.Error("expected miss on empty cache")
	}
}

func TestRenderCachePutIfAbsentFirstWriterWins(t *testing.T) {
	cache := NewRenderCache()

	first := RenderArtifact{Image: "data:image/webp;base64,first", OriginalURL: "https://a"}
	second := RenderArtifact{Image: "data:image/webp;base64,second", OriginalURL: "https://a"}

	stored, existed := cache.PutIfAbsent("k", first)
	if existed {
		t.Error("first write reported an existing entry")
	}
	if stored.Image != first.Image {
		t.Errorf("first write returned %q", stored.Image)
	}

	stored, existed = cache.PutIfAbsent("k", second)
	if !existed {
		t.Error("second write did not report the existing entry")
	}
	if stored.Image != first.Image {
		t.Errorf("second writer overwrote the entry: got %q", stored.Image)
	}

	got, ok := cache.Get("k")
	if !ok || got.Image != first.Image {
		t.Errorf("cache holds %q, want first writer's artifact", got.Image)
	}
}

func TestRenderCacheConcurrentWritersObserveOneArtifact(t *testing.T) {
	cache := NewRenderCache()

	const writers = 20
	observed := make([]RenderArtifact, writers)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			artifact := RenderArtifact{
				Image:       fmt.Sprintf("data:image/webp;base64,writer-%d", n),
				OriginalURL: "https://a",
			}
			observed[n], _ = cache.PutIfAbsent("k", artifact)
		}(i)
	}
	wg.Wait()

	winner := observed[0]
	for i, artifact := range observed {
		if artifact != winner {
			t.Fatalf("writer %d observed %q, winner was %q", i, artifact.Image, winner.Image)
		}
	}
	if cache.Len() != 1 {
		t.Errorf("expected exactly one stored entry, got %d", cache.Len())
	}
}

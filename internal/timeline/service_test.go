package timeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/chirp-app/chirp/internal/db"
)

// fakeSource serves canned records, newest first, like the repository does
type fakeSource struct {
	all         []db.CheepRecord
	byAuthor    map[string][]db.CheepRecord
	timeline    map[string][]db.CheepRecord
	getAllCalls int
}

func (f *fakeSource) GetAll(ctx context.Context) ([]db.CheepRecord, error) {
	f.getAllCalls++
	return f.all, nil
}

func (f *fakeSource) GetByAuthor(ctx context.Context, name string) ([]db.CheepRecord, error) {
	return f.byAuthor[name], nil
}

func (f *fakeSource) GetTimeline(ctx context.Context, name string) ([]db.CheepRecord, error) {
	return f.timeline[name], nil
}

// fakePageCache is an in-memory stand-in for the redis wrapper
type fakePageCache struct {
	data map[string]string
	ttls map[string]time.Duration
	down bool
}

func newFakePageCache() *fakePageCache {
	return &fakePageCache{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (f *fakePageCache) Get(key string) (string, error) {
	if f.down {
		return "", errors.New("connection refused")
	}
	value, ok := f.data[key]
	if !ok {
		return "", errors.New("cache miss")
	}
	return value, nil
}

func (f *fakePageCache) Set(key string, value interface{}, ttl time.Duration) error {
	if f.down {
		return errors.New("connection refused")
	}
	f.data[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakePageCache) Delete(key string) error {
	if f.down {
		return errors.New("connection refused")
	}
	delete(f.data, key)
	delete(f.ttls, key)
	return nil
}

// makeRecords builds n records in newest-first order
func makeRecords(n int, authors ...string) []db.CheepRecord {
	if len(authors) == 0 {
		authors = []string{"alice"}
	}
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	records := make([]db.CheepRecord, n)
	for i := 0; i < n; i++ {
		records[i] = db.CheepRecord{
			ID:         int64(n - i),
			Text:       fmt.Sprintf("cheep %d", n-i),
			AuthorName: authors[(n-i)%len(authors)],
			CreatedAt:  base.Add(time.Duration(n-i) * time.Minute),
		}
	}
	return records
}

func TestPublicTimelinePagination(t *testing.T) {
	source := &fakeSource{all: makeRecords(40)}
	svc := NewService(source, nil)
	ctx := context.Background()

	page1, err := svc.PublicTimeline(ctx, 1)
	if err != nil {
		t.Fatalf("PublicTimeline failed: %v", err)
	}
	page2, err := svc.PublicTimeline(ctx, 2)
	if err != nil {
		t.Fatalf("PublicTimeline failed: %v", err)
	}

	if len(page1) != 32 {
		t.Errorf("Expected 32 items on page 1, got %d", len(page1))
	}
	if len(page2) != 8 {
		t.Errorf("Expected 8 items on page 2, got %d", len(page2))
	}

	// Pages must be disjoint
	seen := make(map[string]bool)
	for _, v := range page1 {
		seen[v.Text] = true
	}
	for _, v := range page2 {
		if seen[v.Text] {
			t.Errorf("Item %q appears on both pages", v.Text)
		}
	}
}

func TestPageBelowOneMeansPageOne(t *testing.T) {
	source := &fakeSource{all: makeRecords(40)}
	svc := NewService(source, nil)
	ctx := context.Background()

	page1, err := svc.PublicTimeline(ctx, 1)
	if err != nil {
		t.Fatalf("PublicTimeline failed: %v", err)
	}

	for _, page := range []int{0, -1, -32} {
		views, err := svc.PublicTimeline(ctx, page)
		if err != nil {
			t.Fatalf("PublicTimeline(%d) failed: %v", page, err)
		}
		if len(views) != len(page1) {
			t.Fatalf("Page %d should equal page 1", page)
		}
		for i := range views {
			if views[i] != page1[i] {
				t.Errorf("Page %d item %d differs from page 1", page, i)
			}
		}
	}
}

func TestPagePastEndIsEmpty(t *testing.T) {
	source := &fakeSource{all: makeRecords(5)}
	svc := NewService(source, nil)

	views, err := svc.PublicTimeline(context.Background(), 7)
	if err != nil {
		t.Fatalf("PublicTimeline should not error past the end: %v", err)
	}
	if len(views) != 0 {
		t.Errorf("Expected empty page past the end, got %d items", len(views))
	}
}

func TestRoundRobinScenario(t *testing.T) {
	// 50 posts over 8 authors: page 1 has 32, page 2 has 18, disjoint
	source := &fakeSource{all: makeRecords(50, "a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8")}
	svc := NewService(source, nil)
	ctx := context.Background()

	page1, err := svc.PublicTimeline(ctx, 1)
	if err != nil {
		t.Fatalf("PublicTimeline failed: %v", err)
	}
	page2, err := svc.PublicTimeline(ctx, 2)
	if err != nil {
		t.Fatalf("PublicTimeline failed: %v", err)
	}

	if len(page1) != 32 || len(page2) != 18 {
		t.Fatalf("Expected pages of 32 and 18, got %d and %d", len(page1), len(page2))
	}

	seen := make(map[string]bool)
	for _, v := range page1 {
		seen[v.Text] = true
	}
	for _, v := range page2 {
		if seen[v.Text] {
			t.Errorf("Item %q appears on both pages", v.Text)
		}
	}
}

func TestTimestampFormatting(t *testing.T) {
	source := &fakeSource{all: []db.CheepRecord{
		{
			ID:         1,
			Text:       "Hello",
			AuthorName: "alice",
			CreatedAt:  time.Date(2025, 8, 1, 13, 8, 28, 0, time.UTC),
		},
	}}
	svc := NewService(source, nil)

	views, err := svc.PublicTimeline(context.Background(), 1)
	if err != nil {
		t.Fatalf("PublicTimeline failed: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("Expected one view, got %d", len(views))
	}
	if views[0].Timestamp != "08/01/25 13:08:28" {
		t.Errorf("Expected formatted timestamp 08/01/25 13:08:28, got %q", views[0].Timestamp)
	}
}

func TestAuthorTimeline(t *testing.T) {
	source := &fakeSource{
		all: makeRecords(3),
		byAuthor: map[string][]db.CheepRecord{
			"alice": makeRecords(2),
		},
	}
	svc := NewService(source, nil)
	ctx := context.Background()

	views, err := svc.AuthorTimeline(ctx, "alice", 1)
	if err != nil {
		t.Fatalf("AuthorTimeline failed: %v", err)
	}
	if len(views) != 2 {
		t.Errorf("Expected 2 views, got %d", len(views))
	}

	// Unknown author gets an empty page
	views, err = svc.AuthorTimeline(ctx, "nobody", 1)
	if err != nil {
		t.Fatalf("AuthorTimeline for unknown author should not error: %v", err)
	}
	if len(views) != 0 {
		t.Errorf("Expected empty page, got %d views", len(views))
	}
}

func TestPrivateTimeline(t *testing.T) {
	source := &fakeSource{
		timeline: map[string][]db.CheepRecord{
			"bob": {
				{ID: 2, Text: "My own", AuthorName: "bob", CreatedAt: time.Date(2025, 3, 1, 9, 1, 0, 0, time.UTC)},
				{ID: 1, Text: "Hello", AuthorName: "alice", CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)},
			},
		},
	}
	svc := NewService(source, nil)

	views, err := svc.PrivateTimeline(context.Background(), "bob", 0)
	if err != nil {
		t.Fatalf("PrivateTimeline failed: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("Expected 2 views, got %d", len(views))
	}
	if views[0].Author != "bob" || views[1].Author != "alice" {
		t.Errorf("Expected [bob, alice] newest first, got %+v", views)
	}
}

func TestPublicPageOneServedFromCache(t *testing.T) {
	source := &fakeSource{all: makeRecords(3)}
	pages := newFakePageCache()
	svc := NewService(source, pages)
	ctx := context.Background()

	first, err := svc.PublicTimeline(ctx, 1)
	if err != nil {
		t.Fatalf("PublicTimeline failed: %v", err)
	}
	if source.getAllCalls != 1 {
		t.Fatalf("Expected one store read, got %d", source.getAllCalls)
	}
	if ttl, ok := pages.ttls["timeline:public:1"]; !ok || ttl != publicPageTTL {
		t.Errorf("Expected page 1 cached with TTL %v, got %v (present: %v)", publicPageTTL, ttl, ok)
	}

	// A cache hit must not reach the store, even when the store has new data
	source.all = makeRecords(5)
	second, err := svc.PublicTimeline(ctx, 1)
	if err != nil {
		t.Fatalf("PublicTimeline failed: %v", err)
	}
	if source.getAllCalls != 1 {
		t.Errorf("Expected cached page to skip the store, got %d reads", source.getAllCalls)
	}
	if len(second) != len(first) {
		t.Errorf("Expected cached contents, got %d views", len(second))
	}
}

func TestPublicPageTwoIsNotCached(t *testing.T) {
	source := &fakeSource{all: makeRecords(40)}
	pages := newFakePageCache()
	svc := NewService(source, pages)

	if _, err := svc.PublicTimeline(context.Background(), 2); err != nil {
		t.Fatalf("PublicTimeline failed: %v", err)
	}
	if len(pages.data) != 0 {
		t.Errorf("Expected nothing cached for page 2, got %d entries", len(pages.data))
	}
}

func TestInvalidatePublicDropsCachedPage(t *testing.T) {
	source := &fakeSource{all: makeRecords(3)}
	pages := newFakePageCache()
	svc := NewService(source, pages)
	ctx := context.Background()

	if _, err := svc.PublicTimeline(ctx, 1); err != nil {
		t.Fatalf("PublicTimeline failed: %v", err)
	}
	svc.InvalidatePublic()

	if _, ok := pages.data["timeline:public:1"]; ok {
		t.Error("Expected cached page to be dropped")
	}

	// The next read rebuilds the page from the store
	source.all = makeRecords(4)
	views, err := svc.PublicTimeline(ctx, 1)
	if err != nil {
		t.Fatalf("PublicTimeline failed: %v", err)
	}
	if source.getAllCalls != 2 {
		t.Errorf("Expected a store read after invalidation, got %d reads", source.getAllCalls)
	}
	if len(views) != 4 {
		t.Errorf("Expected rebuilt page with 4 views, got %d", len(views))
	}
}

func TestCacheErrorsFallThroughToStore(t *testing.T) {
	source := &fakeSource{all: makeRecords(3)}
	pages := newFakePageCache()
	pages.down = true
	svc := NewService(source, pages)

	views, err := svc.PublicTimeline(context.Background(), 1)
	if err != nil {
		t.Fatalf("PublicTimeline should survive a failing cache: %v", err)
	}
	if len(views) != 3 {
		t.Errorf("Expected 3 views from the store, got %d", len(views))
	}
	svc.InvalidatePublic()
}

package timeline

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/chirp-app/chirp/internal/cache"
	"github.com/chirp-app/chirp/internal/db"
	"github.com/chirp-app/chirp/pkg/logging"
)

// PageSize is the fixed number of cheeps per timeline page.
const PageSize = 32

// timestampLayout renders creation times for display. Storage and display
// both use UTC.
const timestampLayout = "01/02/06 15:04:05"

// publicPageTTL bounds staleness of the cached first public page.
const publicPageTTL = 30 * time.Second

// CheepView is the display-ready shape of a cheep
type CheepView struct {
	Author    string `json:"author"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	ImageURL  string `json:"image_url,omitempty"`
}

// CheepSource is the slice of the repository the service reads from
type CheepSource interface {
	GetAll(ctx context.Context) ([]db.CheepRecord, error)
	GetByAuthor(ctx context.Context, name string) ([]db.CheepRecord, error)
	GetTimeline(ctx context.Context, name string) ([]db.CheepRecord, error)
}

// PageCache is the slice of the cache the service stores rendered pages in
type PageCache interface {
	Get(key string) (string, error)
	Set(key string, value interface{}, ttl time.Duration) error
	Delete(key string) error
}

// Service applies fixed-size pagination and display formatting over
// repository results. Each call is stateless given its inputs.
type Service struct {
	source CheepSource
	cache  PageCache
	logger *zap.Logger
}

// NewService creates a new timeline service. The cache may be nil.
func NewService(source CheepSource, pages PageCache) *Service {
	return &Service{
		source: source,
		cache:  pages,
		logger: logging.WithComponent("timeline"),
	}
}

// PublicTimeline returns one page of the public timeline, newest first.
// Page one is served from cache when available; cache errors fall through
// to the store.
func (s *Service) PublicTimeline(ctx context.Context, page int) ([]CheepView, error) {
	page = normalizePage(page)

	if page == 1 {
		if views, ok := s.cachedPublicPage(); ok {
			return views, nil
		}
	}

	records, err := s.source.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	views := formatViews(paginate(records, page))

	if page == 1 {
		s.storePublicPage(views)
	}
	return views, nil
}

// AuthorTimeline returns one page of the named author's own cheeps
func (s *Service) AuthorTimeline(ctx context.Context, name string, page int) ([]CheepView, error) {
	records, err := s.source.GetByAuthor(ctx, name)
	if err != nil {
		return nil, err
	}
	return formatViews(paginate(records, normalizePage(page))), nil
}

// PrivateTimeline returns one page of the union of the named author's own
// cheeps and those of everyone they follow
func (s *Service) PrivateTimeline(ctx context.Context, name string, page int) ([]CheepView, error) {
	records, err := s.source.GetTimeline(ctx, name)
	if err != nil {
		return nil, err
	}
	return formatViews(paginate(records, normalizePage(page))), nil
}

// InvalidatePublic drops the cached public page. Called after any write
// that changes timeline contents.
func (s *Service) InvalidatePublic() {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(publicPageKey()); err != nil && err != cache.ErrCacheDisabled {
		s.logger.Warn("Failed to invalidate public timeline cache", zap.Error(err))
	}
}

func (s *Service) cachedPublicPage() ([]CheepView, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(publicPageKey())
	if err != nil {
		return nil, false
	}
	var views []CheepView
	if err := json.Unmarshal([]byte(raw), &views); err != nil {
		return nil, false
	}
	return views, true
}

func (s *Service) storePublicPage(views []CheepView) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(views)
	if err != nil {
		return
	}
	if err := s.cache.Set(publicPageKey(), string(raw), publicPageTTL); err != nil && err != cache.ErrCacheDisabled {
		s.logger.Warn("Failed to cache public timeline page", zap.Error(err))
	}
}

func publicPageKey() string {
	return "timeline:public:1"
}

// normalizePage treats any page below one, including absent, as page one.
// There is no upper bound; pages past the end come back empty.
func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// paginate slices one page out of an ordered sequence
func paginate(records []db.CheepRecord, page int) []db.CheepRecord {
	offset := (page - 1) * PageSize
	if offset >= len(records) {
		return nil
	}
	end := offset + PageSize
	if end > len(records) {
		end = len(records)
	}
	return records[offset:end]
}

func formatViews(records []db.CheepRecord) []CheepView {
	views := make([]CheepView, len(records))
	for i, r := range records {
		views[i] = CheepView{
			Author:    r.AuthorName,
			Text:      r.Text,
			Timestamp: r.CreatedAt.UTC().Format(timestampLayout),
			ImageURL:  r.ImageURL,
		}
	}
	return views
}
